// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "io"

// Perk function types whose following EPF2/EPFD subrecords carry
// translatable text rather than numeric data (spec.md §4.3).
const (
	PerkTypeEPF2Text uint8 = 4
	PerkTypeEPFDText uint8 = 7
)

// EPFTSubrecord is a PERK record's function-type marker. Its PerkType
// decides, for every EPF2/EPFD subrecord after it up to the next EPFT,
// whether that subrecord is parsed as translatable text or as opaque
// numeric data (spec.md §4.3).
type EPFTSubrecord struct {
	Subrecord
	PerkType uint8
}

func (s *EPFTSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	perkType, err := ParseIntBytes(s.Data, UInt8)
	if err != nil {
		return err
	}
	s.PerkType = uint8(perkType)
	return nil
}

func (s *EPFTSubrecord) Dump() []byte {
	s.Data = DumpInt(int64(s.PerkType), UInt8)
	return s.Subrecord.Dump()
}
