// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "io"

// HEDRSubrecord is the plugin header's "HEDR" subrecord: format
// version, record count, and the next free FormID object index.
type HEDRSubrecord struct {
	Subrecord
	Version      float32
	RecordsNum   uint32
	NextObjectID string
}

func (s *HEDRSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	pr := s.payloadReader()

	version, err := ParseFloat32(pr)
	if err != nil {
		return err
	}
	s.Version = version

	recordsNum, err := ParseInt(pr, UInt32)
	if err != nil {
		return err
	}
	s.RecordsNum = uint32(recordsNum)

	nextObjectID, err := ParseHex(pr, DefaultHexSize)
	if err != nil {
		return err
	}
	s.NextObjectID = nextObjectID
	return nil
}

func (s *HEDRSubrecord) Dump() []byte {
	data := make([]byte, 0, 12)
	data = append(data, DumpFloat32(s.Version)...)
	data = append(data, DumpInt(int64(s.RecordsNum), UInt32)...)
	data = append(data, DumpHex(s.NextObjectID, DefaultHexSize)...)
	s.Data = data
	return s.Subrecord.Dump()
}
