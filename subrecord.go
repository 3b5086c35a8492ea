// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bytes"
	"fmt"
	"io"
)

// SubrecordNode is implemented by every parsed subrecord, specialized
// or generic/opaque. Record holds an ordered []SubrecordNode exactly
// mirroring AIO.py's Record.subrecords list.
type SubrecordNode interface {
	GetTag() string
	Dump() []byte
}

// Subrecord is the generic (opaque) subrecord: a 4-ASCII tag, 2-byte
// size, and raw payload bytes, round-tripped verbatim whenever no
// specialized handler recognizes the tag. It also serves as the
// embeddable base every specialized subrecord type builds on, mirroring
// AIO.py's Subrecord base class.
type Subrecord struct {
	TypeTag string
	Size    uint16
	Data    []byte
}

// GetTag returns the subrecord's 4-ASCII tag.
func (s *Subrecord) GetTag() string { return s.TypeTag }

// ParseFrom reads the subrecord header (tag, size) and payload from r.
// localized is accepted so every subrecord type shares one call
// signature from the record-level dispatch loop; the generic subrecord
// ignores it.
func (s *Subrecord) ParseFrom(r io.Reader, localized bool) error {
	return s.parseHeader(r)
}

func (s *Subrecord) parseHeader(r io.Reader) error {
	tagBytes := make([]byte, 4)
	if _, err := io.ReadFull(r, tagBytes); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTag, err)
	}
	s.TypeTag = string(tagBytes)

	size, err := ParseInt(r, UInt16)
	if err != nil {
		return err
	}
	s.Size = uint16(size)

	data := make([]byte, s.Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	s.Data = data
	return nil
}

// Dump re-concatenates the subrecord's tag, recomputed size, and
// payload.
func (s *Subrecord) Dump() []byte {
	s.Size = uint16(len(s.Data))
	out := make([]byte, 0, 6+len(s.Data))
	out = append(out, []byte(s.TypeTag)...)
	out = append(out, DumpInt(int64(s.Size), UInt16)...)
	out = append(out, s.Data...)
	return out
}

// payloadReader returns a fresh reader over s.Data for specialized
// subrecords to decode their typed fields from, matching AIO.py's
// pattern of wrapping self.data in a new BytesIO per subclass.
func (s *Subrecord) payloadReader() *bytes.Reader {
	return bytes.NewReader(s.Data)
}

// newSpecializedSubrecord constructs the specialized handler for tag,
// or a generic Subrecord if tag has no specialized handler, mirroring
// AIO.py's SUBRECORD_MAP.get(subrecord_type, Subrecord)().
func newSpecializedSubrecord(tag string) SubrecordNode {
	switch tag {
	case "HEDR":
		return &HEDRSubrecord{}
	case "EDID":
		return &EDIDSubrecord{}
	case "MAST":
		return &MASTSubrecord{}
	case "TRDT":
		return &TRDTSubrecord{}
	case "QOBJ":
		return &QOBJSubrecord{}
	case "EPFT":
		return &EPFTSubrecord{}
	case "XXXX":
		return &XXXXSubrecord{}
	default:
		return &Subrecord{}
	}
}

// subrecordParser is implemented by every subrecord type, specialized
// or generic.
type subrecordParser interface {
	SubrecordNode
	ParseFrom(r io.Reader, localized bool) error
}
