// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "io"

// MASTSubrecord names one master plugin this plugin depends on. The
// header's masters list (in file order) is what FormID master-index
// resolution is relative to (spec.md §3).
type MASTSubrecord struct {
	Subrecord
	File RawString
}

func (s *MASTSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	str, err := ParseString(s.payloadReader(), ZStringVariant, len(s.Data))
	if err != nil {
		return err
	}
	s.File = str
	return nil
}

func (s *MASTSubrecord) Dump() []byte {
	s.Data = DumpString(s.File, ZStringVariant)
	return s.Subrecord.Dump()
}
