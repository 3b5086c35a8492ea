// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Supported text encodings, tried in this fixed order by Decode and
// used (starting from the attached tag) by Encode. Names match
// spec.md §3's "utf-8" spelling.
var SupportedEncodings = []string{"utf-8", "cp1250", "cp1252", "cp1251"}

// StrType names a RawString wire variant (size prefix / terminator
// convention), mirroring AIO.py's RawString.StrType enum.
type StrType int

const (
	CharString StrType = iota
	WCharString
	BStringVariant
	BZStringVariant
	WStringVariant
	WZStringVariant
	ZStringVariant
	FixedString
	StringListVariant
)

// RawString is a decoded text value with its source encoding attached,
// so that re-emitting it (after an optional translation) can round-trip
// through the same encoding, per spec.md §3/§4.1.
type RawString struct {
	Value    string
	Encoding string
}

func charmapFor(name string) *charmap.Charmap {
	switch name {
	case "cp1250":
		return charmap.Windows1250
	case "cp1252":
		return charmap.Windows1252
	case "cp1251":
		return charmap.Windows1251
	default:
		return nil
	}
}

// decodeCharmapStrict decodes data under cm, failing (ok=false) if any
// byte has no defined mapping in the code page -- emulating Python's
// strict-mode decode errors for bytes like 0x81/0x8D/0x8F/0x90/0x9D in
// cp1252.
func decodeCharmapStrict(cm *charmap.Charmap, data []byte) (string, bool) {
	var b strings.Builder
	b.Grow(len(data))
	for _, raw := range data {
		r := cm.DecodeByte(raw)
		// x/text decodes an unassigned Windows code-page byte either to
		// U+FFFD or to the C1 control of the same value; no assigned byte
		// of these code pages maps into U+0080..U+009F.
		if r == utf8.RuneError || (r >= 0x80 && r <= 0x9F) {
			return "", false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// encodeCharmapStrict encodes s under cm, failing (ok=false) if any
// rune has no representation in the code page.
func encodeCharmapStrict(cm *charmap.Charmap, s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := cm.EncodeRune(r)
		if !ok {
			return nil, false
		}
		out = append(out, b)
	}
	return out, true
}

// decodeUTF8Replace decodes data as UTF-8, substituting U+FFFD for any
// invalid byte sequence, matching Python's decode("utf8", errors="replace").
func decodeUTF8Replace(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		b.WriteRune(r)
		data = data[size:]
	}
	return b.String()
}

// DecodeRawString decodes data, trying each of SupportedEncodings in
// order and attaching whichever succeeds first. If none succeed it
// falls back to UTF-8 with replacement, per spec.md §4.1.
func DecodeRawString(data []byte) RawString {
	for _, enc := range SupportedEncodings {
		if enc == "utf-8" {
			if utf8.Valid(data) {
				return RawString{Value: string(data), Encoding: enc}
			}
			continue
		}
		if s, ok := decodeCharmapStrict(charmapFor(enc), data); ok {
			return RawString{Value: s, Encoding: enc}
		}
	}
	return RawString{Value: decodeUTF8Replace(data), Encoding: "utf-8"}
}

// orderedEncodings returns SupportedEncodings reordered so that tag (if
// one of them) is tried first, per spec.md §4.1's Encode semantics.
func orderedEncodings(tag string) []string {
	order := make([]string, 0, len(SupportedEncodings))
	found := false
	for _, enc := range SupportedEncodings {
		if enc == tag {
			found = true
		}
	}
	if found {
		order = append(order, tag)
	}
	for _, enc := range SupportedEncodings {
		if enc != tag {
			order = append(order, enc)
		}
	}
	return order
}

// Encode re-encodes s.Value, starting from s.Encoding and falling
// through the remaining supported encodings, finally UTF-8 with
// replacement. It updates s.Encoding to whichever encoding was used.
func (s *RawString) Encode() []byte {
	for _, enc := range orderedEncodings(s.Encoding) {
		if enc == "utf-8" {
			s.Encoding = enc
			return []byte(s.Value)
		}
		if data, ok := encodeCharmapStrict(charmapFor(enc), s.Value); ok {
			s.Encoding = enc
			return data
		}
	}
	s.Encoding = "utf-8"
	return []byte(s.Value)
}

// SetValue replaces the text of s while preserving its attached
// encoding tag, mirroring StringSubrecord.set_string in AIO.py.
func (s *RawString) SetValue(value string) {
	s.Value = value
}

// ParseString reads a RawString of the given variant from r. size is
// only consulted for FixedString (it names the exact payload width,
// taken from an outer size field the caller has already resolved).
func ParseString(r io.Reader, typ StrType, size int) (RawString, error) {
	switch typ {
	case CharString:
		return readFixedRaw(r, 1)
	case WCharString:
		return readFixedRaw(r, 2)
	case BStringVariant, BZStringVariant:
		n, err := ParseInt(r, UInt8)
		if err != nil {
			return RawString{}, err
		}
		return readTrimmedRaw(r, int(n))
	case WStringVariant, WZStringVariant:
		n, err := ParseInt(r, Int16)
		if err != nil {
			return RawString{}, err
		}
		return readTrimmedRaw(r, int(n))
	case ZStringVariant:
		data, err := readUntilNUL(r)
		if err != nil {
			return RawString{}, err
		}
		return DecodeRawString(data), nil
	case FixedString:
		return readFixedRaw(r, size)
	default:
		return RawString{}, fmt.Errorf("espplugin: ParseString does not support variant %d, use ParseStringList", typ)
	}
}

func readFixedRaw(r io.Reader, size int) (RawString, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return RawString{}, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return DecodeRawString(buf), nil
}

func readTrimmedRaw(r io.Reader, size int) (RawString, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return RawString{}, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return DecodeRawString(bytes.Trim(buf, "\x00")), nil
}

func readUntilNUL(r io.Reader) ([]byte, error) {
	var out []byte
	one := make([]byte, 1)
	for {
		n, err := r.Read(one)
		if n == 1 {
			if one[0] == 0 {
				return out, nil
			}
			out = append(out, one[0])
			continue
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
		}
	}
}

// ParseStringList reads n NUL-terminated, non-empty strings from r
// (skipping empty segments without counting them), per spec.md §4.1.
func ParseStringList(r io.Reader, n int) ([]RawString, error) {
	var strs []RawString
	for len(strs) < n {
		data, err := readUntilNUL(r)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			strs = append(strs, DecodeRawString(data))
		}
	}
	return strs, nil
}

// DumpString encodes value as the given variant.
func DumpString(value RawString, typ StrType) []byte {
	v := value
	switch typ {
	case CharString, WCharString, FixedString:
		return v.Encode()
	case BStringVariant:
		text := v.Encode()
		return append(DumpInt(int64(len(text)), UInt8), text...)
	case BZStringVariant:
		text := append(v.Encode(), 0)
		return append(DumpInt(int64(len(text)), UInt8), text...)
	case WStringVariant:
		text := v.Encode()
		return append(DumpInt(int64(len(text)), Int16), text...)
	case WZStringVariant:
		text := append(v.Encode(), 0)
		return append(DumpInt(int64(len(text)), Int16), text...)
	case ZStringVariant:
		return append(v.Encode(), 0)
	default:
		panic(fmt.Sprintf("espplugin: DumpString does not support variant %d, use DumpStringList", typ))
	}
}

// DumpStringList encodes values as NUL-separated items followed by a
// trailing NUL.
func DumpStringList(values []RawString) []byte {
	parts := make([][]byte, len(values))
	for i := range values {
		v := values[i]
		parts[i] = v.Encode()
	}
	return append(bytes.Join(parts, []byte{0}), 0)
}
