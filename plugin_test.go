// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bytes"
	"testing"
)

func weapStringRecords() StringRecords {
	return StringRecords{"WEAP": {"FULL"}}
}

func buildMinimalHeader() *Record {
	return &Record{
		TypeTag: "TES4",
		FormID:  "00000000",
		Subrecords: []SubrecordNode{
			&HEDRSubrecord{Subrecord: Subrecord{TypeTag: "HEDR"}, Version: 1.71, RecordsNum: 1, NextObjectID: "00000800"},
		},
	}
}

func buildWeaponGroup() *Group {
	weap := &Record{
		TypeTag: "WEAP",
		FormID:  "01000001",
		Subrecords: []SubrecordNode{
			&EDIDSubrecord{Subrecord: Subrecord{TypeTag: "EDID"}, EditorID: RawString{Value: "IronSword", Encoding: "utf-8"}},
			&StringSubrecord{Subrecord: Subrecord{TypeTag: "FULL"}, Text: RawString{Value: "Iron Sword", Encoding: "utf-8"}},
		},
	}
	return &Group{Type: GroupNormal, Label: "WEAP", Children: []GroupChild{weap}}
}

func TestPluginMinimalHeaderRoundTrip(t *testing.T) {
	header := buildMinimalHeader()
	dumped := header.Dump()

	plugin := &Plugin{}
	if err := plugin.Parse(bytes.NewReader(dumped)); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out := plugin.Dump()
	if !bytes.Equal(out, dumped) {
		t.Errorf("round-trip mismatch:\n got  % x\n want % x", out, dumped)
	}
}

func TestPluginExtractStringsSingleWeapon(t *testing.T) {
	header := buildMinimalHeader()
	var buf bytes.Buffer
	buf.Write(header.Dump())
	buf.Write(buildWeaponGroup().Dump())

	plugin := &Plugin{StringRecords: weapStringRecords(), Path: "test.esp"}
	if err := plugin.Parse(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	strs := plugin.ExtractStrings(false, false)
	if len(strs) != 1 {
		t.Fatalf("got %d strings, want 1", len(strs))
	}
	s := strs[0]
	if s.EditorID == nil || *s.EditorID != "IronSword" {
		t.Errorf("editor_id = %v, want IronSword", s.EditorID)
	}
	if s.Type != "WEAP FULL" {
		t.Errorf("type = %q, want %q", s.Type, "WEAP FULL")
	}
	if s.OriginalString != "Iron Sword" {
		t.Errorf("original_string = %q, want %q", s.OriginalString, "Iron Sword")
	}
	if s.Status != StatusTranslationRequired {
		t.Errorf("status = %v, want TranslationRequired", s.Status)
	}
}

func TestPluginReplaceStringsThenReparse(t *testing.T) {
	header := buildMinimalHeader()
	var buf bytes.Buffer
	buf.Write(header.Dump())
	buf.Write(buildWeaponGroup().Dump())

	plugin := &Plugin{StringRecords: weapStringRecords(), Path: "test.esp"}
	if err := plugin.Parse(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	strs := plugin.ExtractStrings(false, false)
	translated := "铁剑"
	strs[0].TranslatedString = &translated
	plugin.ReplaceStrings(strs)

	dumped := plugin.Dump()

	reparsed := &Plugin{StringRecords: weapStringRecords(), Path: "test.esp"}
	if err := reparsed.Parse(bytes.NewReader(dumped)); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	got := reparsed.ExtractStrings(false, false)
	if len(got) != 1 {
		t.Fatalf("got %d strings, want 1", len(got))
	}
	if got[0].OriginalString != translated {
		t.Errorf("original_string after replace = %q, want %q", got[0].OriginalString, translated)
	}
}

func TestPluginCompressedRecordRoundTrip(t *testing.T) {
	header := buildMinimalHeader()

	weap := &Record{
		TypeTag: "WEAP",
		Flags:   FlagCompressed,
		FormID:  "01000001",
		Subrecords: []SubrecordNode{
			&EDIDSubrecord{Subrecord: Subrecord{TypeTag: "EDID"}, EditorID: RawString{Value: "IronSword", Encoding: "utf-8"}},
		},
	}
	group := &Group{Type: GroupNormal, Label: "WEAP", Children: []GroupChild{weap}}

	var buf bytes.Buffer
	buf.Write(header.Dump())
	buf.Write(group.Dump())

	plugin := &Plugin{StringRecords: weapStringRecords(), Path: "test.esp"}
	if err := plugin.Parse(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	dumped := plugin.Dump()

	reparsed := &Plugin{StringRecords: weapStringRecords(), Path: "test.esp"}
	if err := reparsed.Parse(bytes.NewReader(dumped)); err != nil {
		t.Fatalf("reparse: %v", err)
	}

	rgroup := reparsed.Groups[0]
	rrec, ok := rgroup.Children[0].(*Record)
	if !ok {
		t.Fatalf("expected a record child, got %T", rgroup.Children[0])
	}
	edid, ok := rrec.Subrecords[0].(*EDIDSubrecord)
	if !ok || edid.EditorID.Value != "IronSword" {
		t.Errorf("EDID mismatch after compressed round-trip: %+v", rrec.Subrecords[0])
	}
}

func TestPluginXXXXOversizedSubrecordRoundTrip(t *testing.T) {
	header := buildMinimalHeader()

	big := &XXXXSubrecord{
		Subrecord: Subrecord{TypeTag: "XXXX"},
		FieldSize: 260,
		Raw:       bytes.Repeat([]byte{0x11}, 260+7),
	}
	weap := &Record{
		TypeTag:    "WEAP",
		FormID:     "01000001",
		Subrecords: []SubrecordNode{big},
	}
	group := &Group{Type: GroupNormal, Label: "WEAP", Children: []GroupChild{weap}}

	var buf bytes.Buffer
	buf.Write(header.Dump())
	buf.Write(group.Dump())

	plugin := &Plugin{Path: "test.esp"}
	if err := plugin.Parse(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	dumped := plugin.Dump()
	if !bytes.Equal(dumped, buf.Bytes()) {
		t.Errorf("XXXX round-trip mismatch")
	}
}

func TestPluginExtractionIsIdempotent(t *testing.T) {
	header := buildMinimalHeader()
	var buf bytes.Buffer
	buf.Write(header.Dump())
	buf.Write(buildWeaponGroup().Dump())

	plugin := &Plugin{StringRecords: weapStringRecords(), Path: "test.esp"}
	if err := plugin.Parse(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	first := plugin.ExtractStrings(false, false)
	second := plugin.ExtractStrings(false, false)
	if len(first) != len(second) {
		t.Fatalf("got %d then %d strings", len(first), len(second))
	}
	for i := range first {
		if first[i].OriginalString != second[i].OriginalString || first[i].Type != second[i].Type {
			t.Errorf("entry %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestPluginLightFormIDRewrite(t *testing.T) {
	header := buildMinimalHeader()
	var buf bytes.Buffer
	buf.Write(header.Dump())
	buf.Write(buildWeaponGroup().Dump())

	plugin := &Plugin{StringRecords: weapStringRecords(), Path: "test.esl"}
	if err := plugin.Parse(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !plugin.IsLight() {
		t.Fatal("expected .esl plugin to report as light")
	}

	strs := plugin.ExtractStrings(false, false)
	if len(strs) != 1 {
		t.Fatalf("got %d strings, want 1", len(strs))
	}
	if strs[0].FormID == nil || len(*strs[0].FormID) < 2 || (*strs[0].FormID)[:2] != "FE" {
		t.Errorf("form_id = %v, want FE-prefixed", strs[0].FormID)
	}
}

func TestIsLightFileRequiresOpenFile(t *testing.T) {
	if _, err := IsLightFile("/nonexistent/path.esp"); err == nil {
		t.Fatal("expected an error for a nonexistent file")
	}
}
