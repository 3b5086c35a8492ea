// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"encoding/binary"
	"fmt"
	"io"
)

// IntType names the width and signedness of an integer value.
type IntType int

const (
	UInt8 IntType = iota
	UInt16
	UInt32
	UInt64
	Int8
	Int16
	Int32
	Int64
)

// widthAndSign returns the byte width and signedness of typ.
func (typ IntType) widthAndSign() (int, bool) {
	switch typ {
	case UInt8:
		return 1, false
	case UInt16:
		return 2, false
	case UInt32:
		return 4, false
	case UInt64:
		return 8, false
	case Int8:
		return 1, true
	case Int16:
		return 2, true
	case Int32:
		return 4, true
	case Int64:
		return 8, true
	default:
		panic(fmt.Sprintf("espplugin: unknown IntType %d", typ))
	}
}

// ParseInt reads a little-endian integer of the width and signedness
// named by typ from r and returns it widened to int64.
func ParseInt(r io.Reader, typ IntType) (int64, error) {
	size, signed := typ.widthAndSign()
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return decodeInt(buf, signed), nil
}

// ParseIntBytes is the byte-slice counterpart of ParseInt, reading from
// the front of data (used when a subrecord's payload has already been
// sliced out of the stream).
func ParseIntBytes(data []byte, typ IntType) (int64, error) {
	size, signed := typ.widthAndSign()
	if len(data) < size {
		return 0, ErrTruncatedInput
	}
	return decodeInt(data[:size], signed), nil
}

func decodeInt(buf []byte, signed bool) int64 {
	switch len(buf) {
	case 1:
		if signed {
			return int64(int8(buf[0]))
		}
		return int64(buf[0])
	case 2:
		v := binary.LittleEndian.Uint16(buf)
		if signed {
			return int64(int16(v))
		}
		return int64(v)
	case 4:
		v := binary.LittleEndian.Uint32(buf)
		if signed {
			return int64(int32(v))
		}
		return int64(v)
	case 8:
		v := binary.LittleEndian.Uint64(buf)
		if signed {
			return int64(v)
		}
		return int64(v)
	default:
		panic("espplugin: unsupported integer width")
	}
}

// DumpInt encodes value as a little-endian integer of the width named
// by typ.
func DumpInt(value int64, typ IntType) []byte {
	size, _ := typ.widthAndSign()
	buf := make([]byte, size)
	switch size {
	case 1:
		buf[0] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(value))
	case 8:
		binary.LittleEndian.PutUint64(buf, uint64(value))
	}
	return buf
}
