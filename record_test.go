// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func genericSubrecord(tag string, data []byte) *Subrecord {
	return &Subrecord{TypeTag: tag, Size: uint16(len(data)), Data: data}
}

func buildRecordBody(subs ...SubrecordNode) []byte {
	var buf bytes.Buffer
	for _, s := range subs {
		buf.Write(s.Dump())
	}
	return buf.Bytes()
}

func TestParseQuestRecordCNAMIndexing(t *testing.T) {
	stageData := []byte{0x01, 0x02, 0x03, 0x04}
	ctda1 := genericSubrecord("CTDA", bytes.Repeat([]byte{0xAA}, 8))
	ctda2 := genericSubrecord("CTDA", bytes.Repeat([]byte{0xBB}, 8))

	body := buildRecordBody(
		genericSubrecord("INDX", stageData),
		ctda1,
		ctda2,
		&StringSubrecord{Subrecord: Subrecord{TypeTag: "CNAM"}, Text: RawString{Value: "condition text", Encoding: "utf-8"}},
	)

	rec := &Record{TypeTag: "QUST"}
	require.NoError(t, rec.parseQuestRecord(body, nil, false))

	stageIndex := stableHash(stageData)
	want := GetChecksum(stableHash(ctda1.Data) + stableHash(ctda2.Data) - stageIndex)

	cnam, ok := rec.Subrecords[len(rec.Subrecords)-1].(*StringSubrecord)
	if !ok {
		t.Fatalf("last subrecord is not a StringSubrecord: %T", rec.Subrecords[len(rec.Subrecords)-1])
	}
	if int64(cnam.Index) != want {
		t.Errorf("CNAM index = %d, want %d", cnam.Index, want)
	}
}

func TestParseQuestRecordNNAMFollowsObjective(t *testing.T) {
	body := buildRecordBody(
		&QOBJSubrecord{Subrecord: Subrecord{TypeTag: "QOBJ"}, Index: 7},
		&StringSubrecord{Subrecord: Subrecord{TypeTag: "NNAM"}, Text: RawString{Value: "objective text", Encoding: "utf-8"}},
	)

	rec := &Record{TypeTag: "QUST"}
	require.NoError(t, rec.parseQuestRecord(body, nil, false))

	nnam, ok := rec.Subrecords[len(rec.Subrecords)-1].(*StringSubrecord)
	if !ok {
		t.Fatalf("last subrecord is not a StringSubrecord: %T", rec.Subrecords[len(rec.Subrecords)-1])
	}
	if nnam.Index != 7 {
		t.Errorf("NNAM index = %d, want 7", nnam.Index)
	}
}

func TestParseInfoRecordNAM1Indexing(t *testing.T) {
	body := buildRecordBody(
		&TRDTSubrecord{Subrecord: Subrecord{TypeTag: "TRDT"}, ResponseID: 5, SoundFile: "00000000"},
		&StringSubrecord{Subrecord: Subrecord{TypeTag: "NAM1"}, Text: RawString{Value: "response a", Encoding: "utf-8"}},
		&TRDTSubrecord{Subrecord: Subrecord{TypeTag: "TRDT"}, ResponseID: 7, SoundFile: "00000000"},
		&StringSubrecord{Subrecord: Subrecord{TypeTag: "NAM1"}, Text: RawString{Value: "response b", Encoding: "utf-8"}},
	)

	rec := &Record{TypeTag: "INFO"}
	if err := rec.parseInfoRecord(body, nil, false); err != nil {
		t.Fatalf("parseInfoRecord: %v", err)
	}

	var nam1s []*StringSubrecord
	for _, sr := range rec.Subrecords {
		if ss, ok := sr.(*StringSubrecord); ok {
			nam1s = append(nam1s, ss)
		}
	}
	if len(nam1s) != 2 {
		t.Fatalf("got %d NAM1 subrecords, want 2", len(nam1s))
	}
	if nam1s[0].Index != 5 || nam1s[1].Index != 7 {
		t.Errorf("got indices %d,%d, want 5,7", nam1s[0].Index, nam1s[1].Index)
	}
}

func TestParsePerkRecordEPFDSpecialization(t *testing.T) {
	body := buildRecordBody(
		&EPFTSubrecord{Subrecord: Subrecord{TypeTag: "EPFT"}, PerkType: PerkTypeEPFDText},
		genericSubrecord("EPFD", []byte{0, 0, 0, 0, 0, 0, 0, 0}),
	)

	rec := &Record{TypeTag: "PERK"}
	if err := rec.parsePerkRecord(body, false); err != nil {
		t.Fatalf("parsePerkRecord: %v", err)
	}

	epfd, ok := rec.Subrecords[len(rec.Subrecords)-1].(*StringSubrecord)
	if !ok {
		t.Fatalf("EPFD was not dispatched as StringSubrecord, got %T", rec.Subrecords[len(rec.Subrecords)-1])
	}
	if epfd.Index != 0 {
		t.Errorf("EPFD index = %d, want 0", epfd.Index)
	}
}

func TestParsePerkRecordEPF2IndexFromEPF3(t *testing.T) {
	epf3Data := []byte{0x00, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x00, 0x00}
	body := buildRecordBody(
		&EPFTSubrecord{Subrecord: Subrecord{TypeTag: "EPFT"}, PerkType: PerkTypeEPF2Text},
		genericSubrecord("EPF2", []byte{}),
		genericSubrecord("EPF3", epf3Data),
	)

	rec := &Record{TypeTag: "PERK"}
	var warned bool
	rec.Warnf = func(format string, args ...any) { warned = true }
	if err := rec.parsePerkRecord(body, false); err != nil {
		t.Fatalf("parsePerkRecord: %v", err)
	}
	if warned {
		t.Error("unexpected warning when EPF3 is present")
	}

	var epf2 *StringSubrecord
	for _, sr := range rec.Subrecords {
		if ss, ok := sr.(*StringSubrecord); ok {
			epf2 = ss
		}
	}
	if epf2 == nil {
		t.Fatal("EPF2 was not dispatched as StringSubrecord")
	}
	if epf2.Index != 0x2A {
		t.Errorf("EPF2 index = %d, want 42", epf2.Index)
	}
}

func TestParsePerkRecordEPF2WithoutEPF3Warns(t *testing.T) {
	body := buildRecordBody(
		&EPFTSubrecord{Subrecord: Subrecord{TypeTag: "EPFT"}, PerkType: PerkTypeEPF2Text},
		genericSubrecord("EPF2", []byte{}),
	)

	rec := &Record{TypeTag: "PERK", FormID: "00000001"}
	var warned bool
	rec.Warnf = func(format string, args ...any) { warned = true }
	if err := rec.parsePerkRecord(body, false); err != nil {
		t.Fatalf("parsePerkRecord: %v", err)
	}
	if !warned {
		t.Error("expected a warning when EPF2 has no following EPF3")
	}
}

func TestRecordCompressedRoundTrip(t *testing.T) {
	original := &Record{
		TypeTag: "WEAP",
		Flags:   FlagCompressed,
		FormID:  "01000001",
		Subrecords: []SubrecordNode{
			&EDIDSubrecord{Subrecord: Subrecord{TypeTag: "EDID"}, EditorID: RawString{Value: "IronSword", Encoding: "utf-8"}},
			&StringSubrecord{Subrecord: Subrecord{TypeTag: "FULL"}, Text: RawString{Value: "Iron Sword", Encoding: "utf-8"}},
		},
	}

	dumped := original.Dump()

	var reparsed Record
	if err := reparsed.ParseFrom(bytes.NewReader(dumped), weapStringRecords(), false); err != nil {
		t.Fatalf("ParseFrom: %v", err)
	}

	if reparsed.TypeTag != "WEAP" || reparsed.FormID != "01000001" {
		t.Errorf("got type=%s formid=%s", reparsed.TypeTag, reparsed.FormID)
	}
	if !reparsed.Flags.Has(FlagCompressed) {
		t.Error("compressed flag lost on round-trip")
	}
	if len(reparsed.Subrecords) != 2 {
		t.Fatalf("got %d subrecords, want 2", len(reparsed.Subrecords))
	}
	edid, ok := reparsed.Subrecords[0].(*EDIDSubrecord)
	if !ok || edid.EditorID.Value != "IronSword" {
		t.Errorf("EDID round-trip mismatch: %+v", reparsed.Subrecords[0])
	}
	full, ok := reparsed.Subrecords[1].(*StringSubrecord)
	if !ok || full.Text.Value != "Iron Sword" {
		t.Errorf("FULL round-trip mismatch: %+v", reparsed.Subrecords[1])
	}
}

func TestXXXXSubrecordRoundTrip(t *testing.T) {
	sub := &XXXXSubrecord{
		Subrecord: Subrecord{TypeTag: "XXXX"},
		FieldSize: 300,
		Raw:       bytes.Repeat([]byte{0x7A}, 300+7),
	}
	dumped := sub.Dump()

	var reparsed XXXXSubrecord
	if err := reparsed.ParseFrom(bytes.NewReader(dumped), false); err != nil {
		t.Fatalf("ParseFrom: %v", err)
	}
	if reparsed.FieldSize != 300 {
		t.Errorf("FieldSize = %d, want 300", reparsed.FieldSize)
	}
	if !bytes.Equal(reparsed.Raw, sub.Raw) {
		t.Errorf("raw payload mismatch after round-trip")
	}
}
