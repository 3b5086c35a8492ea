// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
)

// StringRecords is the static, load-once configuration mapping a
// record type (e.g. "WEAP") to the list of subrecord tags inside it
// that carry translatable text (e.g. []string{"FULL", "DESC"}),
// per spec.md §6. It is immutable once loaded and safe to share across
// concurrently-parsed plugins (spec.md §5).
type StringRecords map[string][]string

// Has reports whether subrecordTag is a translatable string field of
// recordType under this configuration.
func (sr StringRecords) Has(recordType, subrecordTag string) bool {
	for _, tag := range sr[recordType] {
		if tag == subrecordTag {
			return true
		}
	}
	return false
}

// LoadStringRecords reads a StringRecords mapping from r as JSON.
func LoadStringRecords(r io.Reader) (StringRecords, error) {
	var sr StringRecords
	if err := json.NewDecoder(r).Decode(&sr); err != nil {
		return nil, fmt.Errorf("espplugin: decoding string_records.json: %w", err)
	}
	return sr, nil
}

// LoadStringRecordsFS reads a StringRecords mapping from name inside
// fsys, for callers that embed their configuration (e.g. via
// //go:embed) rather than reading it off disk at a fixed path.
func LoadStringRecordsFS(fsys fs.FS, name string) (StringRecords, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("espplugin: opening %s: %w", name, err)
	}
	defer f.Close()
	return LoadStringRecords(f)
}
