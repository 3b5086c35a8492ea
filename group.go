// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// GroupType names how a GRUP's 4-byte label field is interpreted, per
// spec.md §4.2's group-label table.
type GroupType int32

const (
	GroupNormal GroupType = iota
	GroupWorldChildren
	GroupInteriorCellBlock
	GroupInteriorCellSubBlock
	GroupExteriorCellBlock
	GroupExteriorCellSubBlock
	GroupCellChildren
	GroupTopicChildren
	GroupCellPersistentChildren
	GroupCellTemporaryChildren
)

// GroupChild is implemented by *Group and *Record, the two kinds of
// node a GRUP's body can hold.
type GroupChild interface {
	Dump() []byte
}

// Group is a parsed GRUP container: a 24-byte header (whose label
// field's meaning depends on Type) followed by a run of child groups
// and/or records, recursively, per spec.md §4.2.
type Group struct {
	GroupSize          uint32
	Type               GroupType
	Timestamp          uint16
	VersionControlInfo uint16
	Unknown            uint32

	// Label holds the decoded label for Normal (the 4-char record type
	// this group contains), WorldChildren/TopicChildren (a hex FormID),
	// and CellChildren/CellPersistentChildren/CellTemporaryChildren (the
	// parent cell's hex FormID).
	Label string
	// Grid holds the (X, Y) cell coordinates for ExteriorCellBlock and
	// ExteriorCellSubBlock groups.
	Grid [2]int16
	// BlockNumber and SubblockNumber hold the label's decoded value for
	// InteriorCellBlock and InteriorCellSubBlock groups respectively.
	BlockNumber    int32
	SubblockNumber int32

	Children []GroupChild

	// Warnf is propagated to every Record parsed under this group.
	Warnf func(format string, args ...any)
}

// ParseFrom reads one GRUP, including its nested children, recursively.
// headerFlags is the plugin header's own flags, threaded down to every
// descendant Record for localized-string dispatch.
func (g *Group) ParseFrom(r io.Reader, stringRecords StringRecords, headerFlags RecordFlags) error {
	if _, err := readRaw(r, 4); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTag, err)
	}

	groupSize, err := ParseInt(r, UInt32)
	if err != nil {
		return err
	}
	g.GroupSize = uint32(groupSize)

	labelRaw, err := readRaw(r, 4)
	if err != nil {
		return err
	}

	groupTypeVal, err := ParseInt(r, Int32)
	if err != nil {
		return err
	}
	g.Type = GroupType(groupTypeVal)

	timestamp, err := ParseInt(r, UInt16)
	if err != nil {
		return err
	}
	g.Timestamp = uint16(timestamp)

	vcInfo, err := ParseInt(r, UInt16)
	if err != nil {
		return err
	}
	g.VersionControlInfo = uint16(vcInfo)

	unknown, err := ParseInt(r, UInt32)
	if err != nil {
		return err
	}
	g.Unknown = uint32(unknown)

	body, err := readRaw(r, int(g.GroupSize)-24)
	if err != nil {
		return err
	}

	switch g.Type {
	case GroupNormal:
		g.Label = string(labelRaw)
	case GroupWorldChildren, GroupTopicChildren:
		g.Label, err = ParseHexBytes(labelRaw, DefaultHexSize)
	case GroupExteriorCellBlock, GroupExteriorCellSubBlock:
		var x, y int64
		x, err = ParseIntBytes(labelRaw, Int16)
		if err == nil {
			y, err = ParseIntBytes(labelRaw[2:], Int16)
		}
		g.Grid = [2]int16{int16(x), int16(y)}
	case GroupInteriorCellBlock:
		var v int64
		v, err = ParseIntBytes(labelRaw, Int32)
		g.BlockNumber = int32(v)
	case GroupInteriorCellSubBlock:
		var v int64
		v, err = ParseIntBytes(labelRaw, Int32)
		g.SubblockNumber = int32(v)
	case GroupCellChildren, GroupCellPersistentChildren, GroupCellTemporaryChildren:
		g.Label, err = ParseHexBytes(labelRaw, DefaultHexSize)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownGroupType, g.Type)
	}
	if err != nil {
		return err
	}

	return g.parseChildren(body, stringRecords, headerFlags)
}

func (g *Group) parseChildren(data []byte, stringRecords StringRecords, headerFlags RecordFlags) error {
	br := bufio.NewReader(bytes.NewReader(data))
	localized := headerFlags.Has(FlagLocalized)

	for {
		tagBytes, err := br.Peek(4)
		if err != nil || len(tagBytes) < 4 {
			break
		}

		if string(tagBytes) == "GRUP" {
			child := &Group{Warnf: g.Warnf}
			if err := child.ParseFrom(br, stringRecords, headerFlags); err != nil {
				return err
			}
			g.Children = append(g.Children, child)
			continue
		}

		child := &Record{Warnf: g.Warnf}
		if err := child.ParseFrom(br, stringRecords, localized); err != nil {
			return err
		}
		g.Children = append(g.Children, child)
	}
	return nil
}

// Dump re-serializes the group and its children, recomputing
// GroupSize from the dumped child data.
func (g *Group) Dump() []byte {
	var childData bytes.Buffer
	for _, c := range g.Children {
		childData.Write(c.Dump())
	}
	g.GroupSize = uint32(childData.Len()) + 24

	var out bytes.Buffer
	out.WriteString("GRUP")
	out.Write(DumpInt(int64(g.GroupSize), UInt32))

	switch g.Type {
	case GroupNormal:
		out.WriteString(g.Label)
	case GroupWorldChildren, GroupTopicChildren:
		out.Write(DumpHex(g.Label, DefaultHexSize))
	case GroupCellChildren, GroupCellPersistentChildren, GroupCellTemporaryChildren:
		out.Write(DumpHex(g.Label, DefaultHexSize))
	case GroupExteriorCellBlock, GroupExteriorCellSubBlock:
		out.Write(DumpInt(int64(g.Grid[0]), Int16))
		out.Write(DumpInt(int64(g.Grid[1]), Int16))
	case GroupInteriorCellBlock:
		out.Write(DumpInt(int64(g.BlockNumber), Int32))
	case GroupInteriorCellSubBlock:
		out.Write(DumpInt(int64(g.SubblockNumber), Int32))
	}

	out.Write(DumpInt(int64(g.Type), Int32))
	out.Write(DumpInt(int64(g.Timestamp), UInt16))
	out.Write(DumpInt(int64(g.VersionControlInfo), UInt16))
	out.Write(DumpInt(int64(g.Unknown), UInt32))
	out.Write(childData.Bytes())
	return out.Bytes()
}
