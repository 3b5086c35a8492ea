// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "io"

// EDIDSubrecord carries a record's editor ID, a NUL-terminated
// identifier string used for logging and for record/subrecord lookup
// (spec.md §3), never itself translated.
type EDIDSubrecord struct {
	Subrecord
	EditorID RawString
}

func (s *EDIDSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	str, err := ParseString(s.payloadReader(), ZStringVariant, len(s.Data))
	if err != nil {
		return err
	}
	s.EditorID = str
	return nil
}

func (s *EDIDSubrecord) Dump() []byte {
	s.Data = DumpString(s.EditorID, ZStringVariant)
	return s.Subrecord.Dump()
}
