// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "errors"

// Errors returned by the plugin codec. All other runtime anomalies
// (an EPF2 subrecord without a following EPF3, a replace_strings miss)
// are logged but non-fatal; see internal/log.
var (
	// ErrTruncatedInput is returned when a declared length exceeds the
	// remaining bytes in the stream.
	ErrTruncatedInput = errors.New("espplugin: truncated input")

	// ErrMalformedTag is returned when a 4-ASCII record or subrecord tag
	// cannot be decoded.
	ErrMalformedTag = errors.New("espplugin: malformed record tag")

	// ErrCorruptCompressedRecord is returned when a record's zlib payload
	// fails to decompress.
	ErrCorruptCompressedRecord = errors.New("espplugin: corrupt compressed record")

	// ErrUnknownGroupType is returned when a GRUP header carries a group
	// type this codec does not recognize.
	ErrUnknownGroupType = errors.New("espplugin: unknown group type")

	// ErrInvalidHex is returned when a hex identifier string cannot be
	// parsed as base-16.
	ErrInvalidHex = errors.New("espplugin: invalid hex identifier")

	// ErrFileNotFound is returned when Plugin.Load cannot open the
	// underlying file.
	ErrFileNotFound = errors.New("espplugin: file not found")

	// ErrSubrecordNotFound names the failure to match a PluginString
	// descriptor back to a parsed subrecord. ReplaceStrings does not
	// return it: it logs such a miss at error level and continues.
	ErrSubrecordNotFound = errors.New("espplugin: subrecord not found for string")
)
