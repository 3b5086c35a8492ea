// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ParseFloat32 reads a little-endian IEEE754 32-bit float from r.
func ParseFloat32(r io.Reader) (float32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf)), nil
}

// ParseFloat64 reads a little-endian IEEE754 64-bit float from r.
func ParseFloat64(r io.Reader) (float64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// DumpFloat32 encodes value as a little-endian IEEE754 32-bit float.
func DumpFloat32(value float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(value))
	return buf
}

// DumpFloat64 encodes value as a little-endian IEEE754 64-bit float.
func DumpFloat64(value float64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(value))
	return buf
}
