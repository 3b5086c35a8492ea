// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Record is a single parsed record: a 24-byte header followed by a
// flat or compressed run of subrecords, per spec.md §3/§4.2.
type Record struct {
	TypeTag            string
	Flags              RecordFlags
	FormID             string
	Timestamp          uint16
	VersionControlInfo uint16
	InternalVersion    uint16
	Unknown            uint16

	Subrecords []SubrecordNode

	// Warnf, if set, receives a formatted warning for recoverable
	// anomalies (e.g. a PERK's EPF2 subrecord with no following EPF3).
	Warnf func(format string, args ...any)
}

func (rec *Record) warn(format string, args ...any) {
	if rec.Warnf != nil {
		rec.Warnf(format, args...)
	}
}

// ParseFrom reads one record, including its header, decompressing its
// body when RecordFlags.Compressed is set, then dispatches to the
// record type's subrecord parser. localized is the plugin header's
// own localized-strings flag (spec.md §3), constant for the whole
// plugin, not this record's own flags.
func (rec *Record) ParseFrom(r io.Reader, stringRecords StringRecords, localized bool) error {
	tagBytes, err := readRaw(r, 4)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTag, err)
	}
	rec.TypeTag = string(tagBytes)

	size, err := ParseInt(r, UInt32)
	if err != nil {
		return err
	}

	flags, err := ParseInt(r, UInt32)
	if err != nil {
		return err
	}
	rec.Flags = RecordFlags(flags)

	formID, err := ParseHex(r, DefaultHexSize)
	if err != nil {
		return err
	}
	rec.FormID = formID

	timestamp, err := ParseInt(r, UInt16)
	if err != nil {
		return err
	}
	rec.Timestamp = uint16(timestamp)

	vcInfo, err := ParseInt(r, UInt16)
	if err != nil {
		return err
	}
	rec.VersionControlInfo = uint16(vcInfo)

	internalVersion, err := ParseInt(r, UInt16)
	if err != nil {
		return err
	}
	rec.InternalVersion = uint16(internalVersion)

	unknown, err := ParseInt(r, UInt16)
	if err != nil {
		return err
	}
	rec.Unknown = uint16(unknown)

	var data []byte
	if rec.Flags.Has(FlagCompressed) {
		decompressedSize, err := ParseInt(r, UInt32)
		if err != nil {
			return err
		}
		compressed, err := readRaw(r, int(size)-4)
		if err != nil {
			return err
		}
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptCompressedRecord, err)
		}
		decoded, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptCompressedRecord, err)
		}
		_ = decompressedSize
		data = decoded
	} else {
		data, err = readRaw(r, int(size))
		if err != nil {
			return err
		}
	}

	switch rec.TypeTag {
	case "INFO":
		return rec.parseInfoRecord(data, stringRecords, localized)
	case "PERK":
		return rec.parsePerkRecord(data, localized)
	case "QUST":
		return rec.parseQuestRecord(data, stringRecords, localized)
	default:
		return rec.parseGenericSubrecords(data, stringRecords, localized)
	}
}

// Dump re-serializes the record, recompressing its body when
// RecordFlags.Compressed is set.
func (rec *Record) Dump() []byte {
	var payload bytes.Buffer
	for _, sr := range rec.Subrecords {
		payload.Write(sr.Dump())
	}
	data := payload.Bytes()

	if rec.Flags.Has(FlagCompressed) {
		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		zw.Write(data)
		zw.Close()
		data = append(DumpInt(int64(len(data)), UInt32), zbuf.Bytes()...)
	}

	var out bytes.Buffer
	out.WriteString(rec.TypeTag)
	out.Write(DumpInt(int64(len(data)), UInt32))
	out.Write(DumpInt(int64(rec.Flags), UInt32))
	out.Write(DumpHex(rec.FormID, DefaultHexSize))
	out.Write(DumpInt(int64(rec.Timestamp), UInt16))
	out.Write(DumpInt(int64(rec.VersionControlInfo), UInt16))
	out.Write(DumpInt(int64(rec.InternalVersion), UInt16))
	out.Write(DumpInt(int64(rec.Unknown), UInt16))
	out.Write(data)
	return out.Bytes()
}

// parseOneSubrecord peeks tag (already known) and constructs the
// matching specialized, string, or generic subrecord node.
func parseOneSubrecord(br *bufio.Reader, recordType, tag string, stringRecords StringRecords, localized bool) (SubrecordNode, error) {
	var node subrecordParser
	if stringRecords.Has(recordType, tag) {
		node = &StringSubrecord{}
	} else {
		node = newSpecializedSubrecord(tag).(subrecordParser)
	}
	if err := node.ParseFrom(br, localized); err != nil {
		return nil, err
	}
	return node, nil
}

// parseGenericSubrecords is the default subrecord-parsing loop used by
// every record type without its own context-sensitive dispatch rules.
// It tags every ITXT subrecord with a sequential index, since a record
// can carry several (spec.md §4.3).
func (rec *Record) parseGenericSubrecords(data []byte, stringRecords StringRecords, localized bool) error {
	br := bufio.NewReader(bytes.NewReader(data))
	itxtIndex := 0

	for {
		tagBytes, err := br.Peek(4)
		if err != nil || len(tagBytes) < 4 {
			break
		}
		tag := string(tagBytes)

		node, err := parseOneSubrecord(br, rec.TypeTag, tag, stringRecords, localized)
		if err != nil {
			return err
		}

		if tag == "ITXT" {
			if ss, ok := node.(*StringSubrecord); ok {
				ss.Index = itxtIndex
				itxtIndex++
			}
		}

		rec.Subrecords = append(rec.Subrecords, node)
	}
	return nil
}

// parseQuestRecord implements QUST's context-sensitive dispatch
// (spec.md §4.3): INDX opens a new quest stage, CNAM's index is a
// checksum over the stage's trailing CTDA condition hashes, QOBJ opens
// a new objective, and NNAM's index follows the current objective.
func (rec *Record) parseQuestRecord(data []byte, stringRecords StringRecords, localized bool) error {
	br := bufio.NewReader(bytes.NewReader(data))
	var currentStageIndex int64
	var currentObjectiveIndex int16

	calcConditionIndex := func(stageIndex int64) int64 {
		var ctda []*Subrecord
		for i := len(rec.Subrecords) - 1; i >= 0; i-- {
			g, ok := rec.Subrecords[i].(*Subrecord)
			if !ok || g.TypeTag != "CTDA" {
				break
			}
			ctda = append(ctda, g)
		}

		var sum int64
		for i := len(ctda) - 1; i >= 0; i-- {
			sum += stableHash(ctda[i].Data)
		}
		return GetChecksum(sum - stageIndex)
	}

	for {
		tagBytes, err := br.Peek(4)
		if err != nil || len(tagBytes) < 4 {
			break
		}
		tag := string(tagBytes)

		// CNAM and NNAM always carry text in a QUST record, whether or
		// not stringRecords lists them.
		var node SubrecordNode
		if tag == "CNAM" || tag == "NNAM" {
			ss := &StringSubrecord{}
			err = ss.ParseFrom(br, localized)
			node = ss
		} else {
			node, err = parseOneSubrecord(br, rec.TypeTag, tag, stringRecords, localized)
		}
		if err != nil {
			return err
		}

		switch tag {
		case "INDX":
			if g, ok := node.(*Subrecord); ok {
				currentStageIndex = stableHash(g.Data)
			}
		case "CNAM":
			if ss, ok := node.(*StringSubrecord); ok {
				ss.Index = int(calcConditionIndex(currentStageIndex))
			}
		case "QOBJ":
			if q, ok := node.(*QOBJSubrecord); ok {
				currentObjectiveIndex = q.Index
			}
		case "NNAM":
			if ss, ok := node.(*StringSubrecord); ok {
				ss.Index = int(currentObjectiveIndex)
			}
		}

		rec.Subrecords = append(rec.Subrecords, node)
	}
	return nil
}

// parseInfoRecord implements INFO's context-sensitive dispatch
// (spec.md §4.3): each TRDT opens a new dialogue response, and every
// NAM1 up to the next TRDT is indexed under that response's id.
func (rec *Record) parseInfoRecord(data []byte, stringRecords StringRecords, localized bool) error {
	br := bufio.NewReader(bytes.NewReader(data))
	var currentIndex uint8

	for {
		tagBytes, err := br.Peek(4)
		if err != nil || len(tagBytes) < 4 {
			break
		}
		tag := string(tagBytes)

		// NAM1 always carries text in an INFO record, whether or not
		// stringRecords lists it.
		var node SubrecordNode
		if tag == "NAM1" {
			ss := &StringSubrecord{}
			err = ss.ParseFrom(br, localized)
			node = ss
		} else {
			node, err = parseOneSubrecord(br, rec.TypeTag, tag, stringRecords, localized)
		}
		if err != nil {
			return err
		}

		switch tag {
		case "TRDT":
			if t, ok := node.(*TRDTSubrecord); ok {
				currentIndex = t.ResponseID
			}
		case "NAM1":
			if ss, ok := node.(*StringSubrecord); ok {
				ss.Index = int(currentIndex)
			}
		}

		rec.Subrecords = append(rec.Subrecords, node)
	}
	return nil
}

// littleEndianUint decodes buf as an unsigned little-endian integer of
// arbitrary width, for PERK's EPF3 index field (spec.md §4.3), which
// is a trailing variable-width tail rather than a fixed IntType.
func littleEndianUint(buf []byte) uint64 {
	var v uint64
	for i := len(buf) - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// parsePerkRecord implements PERK's context-sensitive dispatch
// (spec.md §4.3): an EPFT's perk_type decides whether the EPF2/EPFD
// subrecords after it, up to the next EPFT, carry translatable text; an
// EPFD's index is simply sequential, while an EPF2's index comes from
// a following EPF3 subrecord (logged and left unindexed if absent).
func (rec *Record) parsePerkRecord(data []byte, localized bool) error {
	br := bufio.NewReader(bytes.NewReader(data))
	var perkType uint8
	epfdIndex := 0

	for {
		tagBytes, err := br.Peek(4)
		if err != nil || len(tagBytes) < 4 {
			break
		}
		tag := string(tagBytes)

		var node subrecordParser
		if (perkType == PerkTypeEPF2Text && tag == "EPF2") || (perkType == PerkTypeEPFDText && tag == "EPFD") {
			node = &StringSubrecord{}
		} else {
			node = newSpecializedSubrecord(tag).(subrecordParser)
		}
		if err := node.ParseFrom(br, localized); err != nil {
			return err
		}
		rec.Subrecords = append(rec.Subrecords, node)

		switch tag {
		case "EPFT":
			if e, ok := node.(*EPFTSubrecord); ok {
				perkType = e.PerkType
			}
		case "EPFD":
			if ss, ok := node.(*StringSubrecord); ok {
				ss.Index = epfdIndex
			}
			epfdIndex++
		case "EPF2":
			next, peekErr := br.Peek(4)
			if peekErr == nil && string(next) == "EPF3" {
				idx := &Subrecord{}
				if err := idx.ParseFrom(br, localized); err != nil {
					return err
				}
				rec.Subrecords = append(rec.Subrecords, idx)
				if ss, ok := node.(*StringSubrecord); ok && len(idx.Data) >= 2 {
					ss.Index = int(littleEndianUint(idx.Data[2:]))
				}
			} else {
				rec.warn("EPF2 subrecord without following EPF3 in record %s %s", rec.TypeTag, rec.FormID)
			}
		}
	}
	return nil
}
