// SPDX-License-Identifier: MIT

// Package strutil contains small string helpers for flag parsing.
package strutil

import "strings"

// SplitCSV splits a comma-separated value list, trimming whitespace and
// dropping empty entries. A blank input yields a nil slice.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
