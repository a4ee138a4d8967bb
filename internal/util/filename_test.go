package util

/*
hostcull — domain extraction and wildcard reduction for DNS blocklists
Copyright (C) 2026  Pieter van den Akker <hostcull@vandenakker.dev>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"strings"
	"testing"
)

// TestSanitizeFilename checks path separators, stdin sentinels and the
// length cap.
func TestSanitizeFilename(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple name", "hosts.txt", "hosts.txt"},
		{"Relative path", "lists/ads/hosts.txt", "lists_ads_hosts.txt"},
		{"Absolute path", "/etc/hosts", "etc_hosts"},
		{"Windows path", "C:\\lists\\hosts.txt", "C__lists_hosts.txt"},
		{"Spaces", "my list.txt", "my_list.txt"},
		{"Stdin dash", "-", "stdin"},
		{"Empty", "", "stdin"},
		{"Leading dots trimmed", "./hosts.txt", "hosts.txt"},
		{"Length capped", strings.Repeat("a", 200), strings.Repeat("a", 100)},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeFilename(tc.input); got != tc.expected {
				t.Errorf("SanitizeFilename(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}
