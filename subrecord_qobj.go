// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "io"

// QOBJSubrecord is a QUST record's objective-index marker. Its Index
// tracks which objective the NNAM display-text subrecords that follow
// it belong to, until the next QOBJ (spec.md §4.3).
type QOBJSubrecord struct {
	Subrecord
	Index int16
}

func (s *QOBJSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	index, err := ParseIntBytes(s.Data, Int16)
	if err != nil {
		return err
	}
	s.Index = int16(index)
	return nil
}

func (s *QOBJSubrecord) Dump() []byte {
	s.Data = DumpInt(int64(s.Index), Int16)
	return s.Subrecord.Dump()
}
