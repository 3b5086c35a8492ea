// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bytes"
	"testing"
)

func TestParseIntDumpIntRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		typ   IntType
		value int64
	}{
		{"uint8", UInt8, 0xFE},
		{"uint16", UInt16, 0xBEEF},
		{"uint32", UInt32, 0xDEADBEEF},
		{"uint64", UInt64, 0x0123456789ABCDEF},
		{"int8 negative", Int8, -12},
		{"int16 negative", Int16, -1234},
		{"int32 negative", Int32, -123456},
		{"int64 negative", Int64, -123456789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dumped := DumpInt(tt.value, tt.typ)
			got, err := ParseInt(bytes.NewReader(dumped), tt.typ)
			if err != nil {
				t.Fatalf("ParseInt: %v", err)
			}
			if got != tt.value {
				t.Errorf("got %d, want %d", got, tt.value)
			}
		})
	}
}

func TestParseIntTruncated(t *testing.T) {
	_, err := ParseInt(bytes.NewReader([]byte{0x01}), UInt32)
	if err == nil {
		t.Fatal("expected error on truncated input")
	}
}

func TestParseIntBytes(t *testing.T) {
	data := []byte{0xEF, 0xBE, 0x00, 0x00, 0xFF}
	got, err := ParseIntBytes(data, UInt16)
	if err != nil {
		t.Fatalf("ParseIntBytes: %v", err)
	}
	if got != 0xBEEF {
		t.Errorf("got %#x, want 0xBEEF", got)
	}
}
