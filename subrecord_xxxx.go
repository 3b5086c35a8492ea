// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "io"

// XXXXSubrecord is the extended-size sentinel: its own declared size
// is the byte width of an integer giving the real size of the
// subrecord that immediately follows. The field_size+7 bytes after the
// sentinel are captured verbatim as one opaque blob rather than being
// re-parsed structurally: that subrecord's 4-byte tag, its 2-byte (now
// meaningless) size field, its field_size-byte payload, and the one
// byte after that payload (spec.md §4.2).
type XXXXSubrecord struct {
	Subrecord
	FieldSize int64
	Raw       []byte
}

func (s *XXXXSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	fieldSize, err := ParseIntBytes(s.Data, widthIntType(len(s.Data)))
	if err != nil {
		return err
	}
	s.FieldSize = fieldSize

	raw, err := readRaw(r, int(fieldSize)+7)
	if err != nil {
		return err
	}
	s.Raw = raw
	return nil
}

func (s *XXXXSubrecord) Dump() []byte {
	width := len(s.Data)
	if width == 0 {
		width = 4
	}
	s.Data = DumpInt(s.FieldSize, widthIntType(width))
	out := s.Subrecord.Dump()
	out = append(out, s.Raw...)
	return out
}

// widthIntType maps a byte width to the matching unsigned IntType,
// since XXXX's own size field names the width of its value rather than
// a fixed type.
func widthIntType(width int) IntType {
	switch width {
	case 1:
		return UInt8
	case 2:
		return UInt16
	case 4:
		return UInt32
	case 8:
		return UInt64
	default:
		return UInt32
	}
}
