// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "bytes"

// FuzzParsePlugin is a go-fuzz entry point exercising the full
// Parse/Dump round trip.
func FuzzParsePlugin(data []byte) int {
	var p Plugin
	if err := p.Parse(bytes.NewReader(data)); err != nil {
		return 0
	}
	_ = p.Dump()
	return 1
}
