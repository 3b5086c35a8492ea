// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/cutleast/esp-codec/internal/log"
)

// Plugin is a fully parsed .esp/.esm/.esl file: a TES4 header record
// followed by a flat run of top-level GRUP groups, per spec.md §2/§3.
type Plugin struct {
	Path          string
	Header        Record
	Groups        []*Group
	StringRecords StringRecords
	Logger        *log.Helper

	stringEntries []stringEntry
}

type stringEntry struct {
	str PluginString
	sub *StringSubrecord
}

func (p *Plugin) warnf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Warnf(format, args...)
	}
}

func (p *Plugin) errorf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Errorf(format, args...)
	}
}

// Load reads, mmaps, and fully parses the plugin at path.
func Load(path string, stringRecords StringRecords, logger *log.Helper) (*Plugin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("espplugin: mmapping %s: %w", path, err)
	}
	defer data.Unmap()

	p := &Plugin{Path: path, StringRecords: stringRecords, Logger: logger}
	if logger != nil {
		logger.Infof("parsing %q...", path)
	}
	if err := p.Parse(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Infof("parsing complete")
	}
	return p, nil
}

// Parse reads a whole plugin (header, then every top-level group) from
// r. The header itself is parsed with localized=false, matching the
// fact that its own subrecords (HEDR, MAST, ...) never carry
// translatable, localization-gated text.
func (p *Plugin) Parse(r *bytes.Reader) error {
	p.Header = Record{Warnf: p.warnf}
	if err := p.Header.ParseFrom(r, p.StringRecords, false); err != nil {
		return err
	}

	br := bufio.NewReader(r)
	p.Groups = nil
	for {
		b, err := br.Peek(1)
		if err != nil || len(b) == 0 {
			break
		}
		g := &Group{Warnf: p.warnf}
		if err := g.ParseFrom(br, p.StringRecords, p.Header.Flags); err != nil {
			return err
		}
		p.Groups = append(p.Groups, g)
	}
	return nil
}

// Dump re-serializes the plugin: the header followed by every
// top-level group, in file order.
func (p *Plugin) Dump() []byte {
	var out bytes.Buffer
	out.Write(p.Header.Dump())
	for _, g := range p.Groups {
		out.Write(g.Dump())
	}
	return out.Bytes()
}

// IsLight reports whether this plugin is a light master (.esl
// extension, or the plugin header's LightMaster flag for a plugin
// with another extension), per spec.md §3.
func (p *Plugin) IsLight() bool {
	return hasESLExtension(p.Path) || p.Header.Flags.Has(FlagLightMaster)
}

// IsLightFile reports whether the plugin at path is a light master,
// reading only its header rather than fully parsing the file.
func IsLightFile(path string) (bool, error) {
	if hasESLExtension(path) {
		return true, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer f.Close()

	var header Record
	if err := header.ParseFrom(f, nil, false); err != nil {
		return false, err
	}
	return header.Flags.Has(FlagLightMaster), nil
}

func hasESLExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".esl")
}

func (p *Plugin) masterFiles() []string {
	var out []string
	for _, sr := range p.Header.Subrecords {
		if m, ok := sr.(*MASTSubrecord); ok {
			out = append(out, m.File.Value)
		}
	}
	return out
}

// getRecordEditorID returns rec's EDID editor ID, if it has one.
func getRecordEditorID(rec *Record) *string {
	for _, sr := range rec.Subrecords {
		if e, ok := sr.(*EDIDSubrecord); ok {
			v := e.EditorID.Value
			return &v
		}
	}
	return nil
}

// collectGroupStrings recursively walks group, appending one
// PluginString/StringSubrecord pair per qualifying StringSubrecord to
// out, in encounter order, per spec.md §5.
func (p *Plugin) collectGroupStrings(group *Group, extractLocalized, unfiltered bool, out *[]stringEntry, seen map[stringKey]int) {
	masters := p.masterFiles()
	light := p.IsLight()
	base := filepath.Base(p.Path)

	for _, child := range group.Children {
		switch c := child.(type) {
		case *Group:
			p.collectGroupStrings(c, extractLocalized, unfiltered, out, seen)
		case *Record:
			edid := getRecordEditorID(c)

			var master string
			if len(c.FormID) >= 2 {
				if n, err := strconv.ParseUint(c.FormID[:2], 16, 8); err == nil && int(n) < len(masters) {
					master = masters[n]
				}
			}
			if master == "" {
				master = base
			}

			formID := c.FormID + "|" + master
			if light && master == base && len(formID) >= 2 {
				formID = "FE" + formID[2:]
			}

			for _, sr := range c.Subrecords {
				ss, ok := sr.(*StringSubrecord)
				if !ok {
					continue
				}

				var text string
				var isValid bool
				if ss.IsLocalized {
					if !extractLocalized {
						continue
					}
					// A localized string's payload is a string-table
					// index, not text, so validity filtering (which
					// inspects text content) does not apply to it.
					text = strconv.FormatUint(uint64(ss.LocalizedID), 10)
					isValid = true
				} else {
					text = ss.Text.Value
					isValid = IsValidString(text)
					if !isValid && !unfiltered {
						continue
					}
				}

				status := StatusTranslationRequired
				if !ss.IsLocalized && !isValid {
					status = StatusNoTranslationRequired
				}

				fid := formID
				idx := ss.Index
				ps := PluginString{
					EditorID:       edid,
					FormID:         &fid,
					Index:          &idx,
					Type:           c.TypeTag + " " + ss.GetTag(),
					OriginalString: text,
					Status:         status,
				}

				key := ps.Key()
				if i, exists := seen[key]; exists {
					(*out)[i] = stringEntry{str: ps, sub: ss}
					continue
				}
				seen[key] = len(*out)
				*out = append(*out, stringEntry{str: ps, sub: ss})
			}
		}
	}
}

// ExtractStrings returns every translatable string in the plugin, in
// first-seen order. Deduplication by (form_id, editor_id, index, type)
// happens within each top-level group's own subtree, then each group's
// results are concatenated, per spec.md §5 (so a fingerprint repeated
// across two distinct top-level groups is not collapsed).
// extractLocalized additionally includes subrecords that carry a
// localized string-table index rather than inline text; unfiltered
// disables the IsValidString plausibility filter.
func (p *Plugin) ExtractStrings(extractLocalized, unfiltered bool) []PluginString {
	var out []PluginString
	for _, g := range p.Groups {
		var entries []stringEntry
		seen := map[stringKey]int{}
		p.collectGroupStrings(g, extractLocalized, unfiltered, &entries, seen)
		for _, e := range entries {
			out = append(out, e.str)
		}
	}
	return out
}

func (p *Plugin) ensureStringEntries() {
	if p.stringEntries != nil {
		return
	}
	var entries []stringEntry
	for _, g := range p.Groups {
		var groupEntries []stringEntry
		seen := map[stringKey]int{}
		p.collectGroupStrings(g, false, false, &groupEntries, seen)
		entries = append(entries, groupEntries...)
	}
	p.stringEntries = entries
}

// FindStringSubrecord locates the StringSubrecord matching formID
// (compared ignoring the leading master-index byte), typ, text, and
// index, building (and caching) the plugin's full string index on
// first use.
func (p *Plugin) FindStringSubrecord(formID, typ, text string, index int) *StringSubrecord {
	p.ensureStringEntries()
	for _, e := range p.stringEntries {
		var entryFormID string
		if e.str.FormID != nil {
			entryFormID = *e.str.FormID
		}
		if formIDSuffix(entryFormID) != formIDSuffix(formID) {
			continue
		}
		if e.str.Type != typ || e.str.OriginalString != text {
			continue
		}
		if e.str.Index == nil || *e.str.Index != index {
			continue
		}
		return e.sub
	}
	return nil
}

func formIDSuffix(formID string) string {
	if len(formID) < 2 {
		return formID
	}
	return formID[2:]
}

// ReplaceStrings applies every translated string in strs to the
// matching StringSubrecord in place, logging (rather than failing)
// when a match cannot be found, per spec.md §5.
func (p *Plugin) ReplaceStrings(strs []PluginString) {
	for _, s := range strs {
		index := -1
		if s.Index != nil {
			index = *s.Index
		}
		formID := ""
		if s.FormID != nil {
			formID = *s.FormID
		}

		sub := p.FindStringSubrecord(formID, s.Type, s.OriginalString, index)
		if sub == nil {
			p.errorf("failed to replace string %s %q: subrecord not found", s.Type, s.OriginalString)
			continue
		}
		if s.TranslatedString != nil {
			sub.SetStringValue(*s.TranslatedString)
		}
	}
}
