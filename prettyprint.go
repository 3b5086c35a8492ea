// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"fmt"
	"reflect"
	"strings"
)

// prettyPrintObject renders obj as an indented "{ field: type = value }"
// block, truncating long strings/byte slices, for Record/Group/Plugin's
// String() methods. It walks exported struct fields via reflection
// rather than a fixed template, so it works uniformly across every
// codec type without per-type formatting code.
func prettyPrintObject(obj any) string {
	var b strings.Builder
	writePrettyObject(&b, reflect.ValueOf(obj), 0)
	return b.String()
}

var byteSliceType = reflect.TypeOf([]byte(nil))

func writePrettyObject(b *strings.Builder, v reflect.Value, depth int) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
			b.WriteString("nil")
			return
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		b.WriteString(fmt.Sprintf("%v", v.Interface()))
		return
	}

	indent := strings.Repeat("    ", depth+1)
	b.WriteString("{\n")
	b.WriteString(fmt.Sprintf("%sclass = %s\n", indent, v.Type().Name()))

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := v.Field(i)
		writePrettyField(b, field.Name, fv, depth)
	}
	b.WriteString(strings.Repeat("    ", depth) + "}")
}

func writePrettyField(b *strings.Builder, name string, fv reflect.Value, depth int) {
	indent := strings.Repeat("    ", depth+1)

	switch {
	case fv.Type() == byteSliceType:
		b.WriteString(fmt.Sprintf("%s%s: bytes = %s (%d bytes)\n", indent, name, truncateQuote(string(fv.Bytes())), fv.Len()))
	case fv.Kind() == reflect.Slice, fv.Kind() == reflect.Array:
		writePrettySlice(b, name, fv, depth)
	case fv.Kind() == reflect.String:
		b.WriteString(fmt.Sprintf("%s%s: string = %s\n", indent, name, truncateQuote(fv.String())))
	case fv.Kind() == reflect.Struct, fv.Kind() == reflect.Ptr, fv.Kind() == reflect.Interface:
		b.WriteString(fmt.Sprintf("%s%s: %s = ", indent, name, fv.Type().String()))
		writePrettyObject(b, fv, depth+1)
		b.WriteString("\n")
	default:
		b.WriteString(fmt.Sprintf("%s%s: %s = %v\n", indent, name, fv.Type().String(), fv.Interface()))
	}
}

func writePrettySlice(b *strings.Builder, name string, fv reflect.Value, depth int) {
	indent := strings.Repeat("    ", depth+1)
	if fv.Len() == 0 {
		b.WriteString(fmt.Sprintf("%s%s: list = []\n", indent, name))
		return
	}
	b.WriteString(fmt.Sprintf("%s%s: list = [\n", indent, name))
	for i := 0; i < fv.Len(); i++ {
		b.WriteString(indent + "    ")
		writePrettyObject(b, fv.Index(i), depth+2)
		b.WriteString(",\n")
	}
	b.WriteString(indent + "]\n")
}

func truncateQuote(s string) string {
	if len(s) > 20 {
		s = s[:20]
	}
	return fmt.Sprintf("%q", s)
}

func (rec *Record) String() string  { return prettyPrintObject(rec) }
func (g *Group) String() string     { return prettyPrintObject(g) }
func (p *Plugin) String() string    { return prettyPrintObject(p) }
func (s *Subrecord) String() string { return prettyPrintObject(s) }

func (ps *PluginString) String() string {
	return fmt.Sprintf("PluginString{type=%s original=%q}", ps.Type, ps.OriginalString)
}
