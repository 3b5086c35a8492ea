// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"encoding/json"
	"strings"
)

// StringStatus is a PluginString's translation-workflow status.
type StringStatus int

const (
	StatusNoTranslationRequired StringStatus = iota
	StatusTranslationComplete
	StatusTranslationIncomplete
	StatusTranslationRequired
)

func (s StringStatus) String() string {
	switch s {
	case StatusNoTranslationRequired:
		return "NoTranslationRequired"
	case StatusTranslationComplete:
		return "TranslationComplete"
	case StatusTranslationIncomplete:
		return "TranslationIncomplete"
	case StatusTranslationRequired:
		return "TranslationRequired"
	default:
		return "Unknown"
	}
}

// ParseStringStatus maps a status name back to a StringStatus, falling
// back to fallback for an unrecognized or empty name.
func ParseStringStatus(name string, fallback StringStatus) StringStatus {
	switch name {
	case "NoTranslationRequired":
		return StatusNoTranslationRequired
	case "TranslationComplete":
		return StatusTranslationComplete
	case "TranslationIncomplete":
		return StatusTranslationIncomplete
	case "TranslationRequired":
		return StatusTranslationRequired
	default:
		return fallback
	}
}

// PluginString is one extracted translatable string, with enough
// context (FormID, EditorID, record/subrecord type, and a disambiguating
// index) to locate the exact subrecord it came from again later, per
// spec.md §5.
type PluginString struct {
	EditorID         *string
	FormID           *string
	Index            *int
	Type             string
	OriginalString   string
	TranslatedString *string
	Status           StringStatus
}

// stringKey is PluginString's identity for deduplication and lookup:
// (form_id lowercased, editor_id, index, type), matching the original
// implementation's __hash__.
type stringKey struct {
	FormID   string
	EditorID string
	Index    int
	Type     string
}

// Key returns ps's deduplication/lookup identity.
func (ps *PluginString) Key() stringKey {
	formID := ""
	if ps.FormID != nil {
		formID = strings.ToLower(*ps.FormID)
	}
	editorID := ""
	if ps.EditorID != nil {
		editorID = *ps.EditorID
	}
	index := -1
	if ps.Index != nil {
		index = *ps.Index
	}
	return stringKey{FormID: formID, EditorID: editorID, Index: index, Type: ps.Type}
}

// PluginStringFromData builds a PluginString from a decoded JSON
// object. Two shapes are accepted: one carrying a completed
// translation ("original" plus "string"), and one carrying only the
// plugin's original text ("string" alone). An editor_id shaped like
// "[...]" with no form_id is treated as a bracket-form FormID instead
// (spec.md §5).
func PluginStringFromData(data map[string]any) PluginString {
	editorID, hasEditorID := stringField(data, "editor_id")
	formIDValue, hasFormID := stringField(data, "form_id")

	if hasEditorID && !hasFormID && strings.HasPrefix(editorID, "[") && strings.HasSuffix(editorID, "]") {
		formIDValue = editorID
		hasFormID = true
		hasEditorID = false
	}

	var ps PluginString
	if hasEditorID {
		ps.EditorID = &editorID
	}
	if hasFormID {
		ps.FormID = &formIDValue
	}
	if idx, ok := intField(data, "index"); ok {
		ps.Index = &idx
	}
	if t, ok := stringField(data, "type"); ok {
		ps.Type = t
	}

	if original, ok := stringField(data, "original"); ok {
		ps.OriginalString = original
		ps.Status = statusFromField(data, StatusTranslationComplete)
		if translated, ok := stringField(data, "string"); ok {
			ps.TranslatedString = &translated
		}
	} else {
		if original, ok := stringField(data, "string"); ok {
			ps.OriginalString = original
		}
		ps.Status = statusFromField(data, StatusTranslationRequired)
	}

	return ps
}

func statusFromField(data map[string]any, fallback StringStatus) StringStatus {
	if name, ok := stringField(data, "status"); ok {
		return ParseStringStatus(name, fallback)
	}
	return fallback
}

func stringField(data map[string]any, key string) (string, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intField(data map[string]any, key string) (int, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// ToStringData renders ps back to the JSON-object shape consumed by
// PluginStringFromData.
func (ps *PluginString) ToStringData() map[string]any {
	out := map[string]any{
		"editor_id": derefStringOrNil(ps.EditorID),
		"form_id":   derefStringOrNil(ps.FormID),
		"index":     derefIntOrNil(ps.Index),
		"type":      ps.Type,
		"status":    ps.Status.String(),
	}
	if ps.TranslatedString != nil {
		out["original"] = ps.OriginalString
		out["string"] = *ps.TranslatedString
	} else {
		out["string"] = ps.OriginalString
	}
	return out
}

func derefStringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefIntOrNil(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

// MarshalJSON renders ps via ToStringData, so the canonical
// editor_id/form_id/index/type/original/string/status shape is what
// reaches disk whenever a PluginString is marshalled directly.
func (ps PluginString) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.ToStringData())
}

// UnmarshalJSON decodes a string-data object via PluginStringFromData.
func (ps *PluginString) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*ps = PluginStringFromData(m)
	return nil
}
