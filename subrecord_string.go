// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "io"

// StringSubrecord is any subrecord recognized as carrying translatable
// text, whether by static STRING_RECORDS configuration (spec.md §6) or
// by one of the context-sensitive dispatch rules in QUST/INFO/PERK
// records (spec.md §4.3). Its payload is either a plain NUL-terminated
// string, or, when the plugin's header declares localized strings, a
// 4-byte index into the companion .strings/.dlstrings/.ilstrings file.
//
// Index distinguishes otherwise-identical tags within one record (e.g.
// a QUST's several CNAM/NNAM subrecords, one per stage or objective)
// so extraction and replacement can address the correct occurrence. It
// defaults to 0 and is only reassigned by the context-sensitive
// dispatch rules (QUST CNAM/NNAM, INFO NAM1, PERK EPFD/EPF2); tags that
// only ever appear once per record keep the default.
type StringSubrecord struct {
	Subrecord
	IsLocalized bool
	LocalizedID uint32
	Text        RawString
	Index       int
}

func (s *StringSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	s.IsLocalized = localized

	if localized {
		localizedID, err := ParseIntBytes(s.Data, UInt32)
		if err != nil {
			return err
		}
		s.LocalizedID = uint32(localizedID)
		return nil
	}

	str, err := ParseString(s.payloadReader(), ZStringVariant, len(s.Data))
	if err != nil {
		return err
	}
	s.Text = str
	return nil
}

func (s *StringSubrecord) Dump() []byte {
	if s.IsLocalized {
		s.Data = DumpInt(int64(s.LocalizedID), UInt32)
	} else {
		s.Data = DumpString(s.Text, ZStringVariant)
	}
	return s.Subrecord.Dump()
}

// StringValue returns the subrecord's current translatable text, or
// the empty string when it carries a localized string-table index
// instead of inline text.
func (s *StringSubrecord) StringValue() string {
	if s.IsLocalized {
		return ""
	}
	return s.Text.Value
}

// SetStringValue replaces the subrecord's inline text, preserving its
// originally detected encoding. It is a no-op on localized subrecords,
// whose text lives in a companion string-table file instead.
func (s *StringSubrecord) SetStringValue(value string) {
	if s.IsLocalized {
		return
	}
	s.Text.SetValue(value)
}
