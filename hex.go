// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultHexSize is the width, in bytes, of a FormID-shaped hex
// identifier when no explicit size is given (4 bytes -> 8 hex chars).
const DefaultHexSize = 4

// ParseHex reads size little-endian bytes from r and renders them as an
// uppercase hex string zero-padded to 2*size characters.
func ParseHex(r io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return hexFromLittleEndian(buf), nil
}

// ParseHexBytes is the byte-slice counterpart of ParseHex.
func ParseHexBytes(data []byte, size int) (string, error) {
	if len(data) < size {
		return "", ErrTruncatedInput
	}
	return hexFromLittleEndian(data[:size]), nil
}

func hexFromLittleEndian(buf []byte) string {
	var value uint64
	for i := len(buf) - 1; i >= 0; i-- {
		value = value<<8 | uint64(buf[i])
	}
	return strings.ToUpper(fmt.Sprintf("%0*x", len(buf)*2, value))
}

// DumpHex parses value as base-16 and emits size little-endian bytes.
// It panics on malformed input since all call sites hold values
// produced either by ParseHex or validated externally; callers that
// need a recoverable error should use DumpHexChecked.
func DumpHex(value string, size int) []byte {
	buf, err := DumpHexChecked(value, size)
	if err != nil {
		panic(err)
	}
	return buf
}

// DumpHexChecked is the error-returning form of DumpHex.
func DumpHexChecked(value string, size int) ([]byte, error) {
	number, err := strconv.ParseUint(value, 16, size*8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, number)
	return buf[:size], nil
}
