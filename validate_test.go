// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "testing"

func TestIsValidString(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"camelCase", false},
		{"snake_case", false},
		{"Hello world", true},
		{"<Alias=PlayerRef>", true},
		{"WoollyRhino", true},
		{"UPPERCASE", true},
		{"<p>", false},
	}

	for _, tt := range cases {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsValidString(tt.text); got != tt.want {
				t.Errorf("IsValidString(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
