// Package extract wraps the domain matcher with line-oriented
// preprocessing for the inputs this tool actually sees: hosts files,
// blocklist sources, and free text fed in line by line.
package extract

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

	"github.com/hostcull/hostcull/internal/match"
)

// hostsAddrs are the literal redirect addresses conventionally used at the
// start of hosts-file lines. A single leading occurrence is stripped; an
// occurrence glued to another token anywhere in the line disqualifies the
// whole line.
var hostsAddrs = [...]string{"127.0.0.1", "0.0.0.0"}

// Extractor applies line preprocessing and delegates to a Matcher. Like
// the Matcher it holds no per-instance state and is cheap to copy.
type Extractor struct {
	m match.Matcher
}

// New returns an Extractor scanning with m.
func New(m match.Matcher) Extractor {
	return Extractor{m: m}
}

// Line returns the first valid domain on the line, or ok=false when the
// line yields none. Feeding an already-extracted domain back through Line
// returns it unchanged.
func (e Extractor) Line(line string) (string, bool) {
	prepared, ok := prepare(line)
	if !ok {
		return "", false
	}
	return e.m.First(prepared)
}

// LineAll returns every valid domain on the line in input order,
// duplicates preserved.
func (e Extractor) LineAll(line string) []string {
	prepared, ok := prepare(line)
	if !ok {
		return nil
	}
	return e.m.All(prepared)
}

// prepare performs the preprocessing steps in their fixed order: newline
// stripping, comment/blank short-circuit, leading hosts-address stripping,
// glued-address rejection, case folding. ok=false means the line yields
// no domains and the matcher must not run at all.
func prepare(line string) (string, bool) {
	line = chomp(line)

	s := strings.TrimLeft(line, " \t")
	if s == "" || s[0] == '#' {
		return "", false
	}

	// Hosts-file convention: strip one leading redirect address plus the
	// whitespace around it. The address only counts when it stands alone;
	// "127.0.0.100 ..." keeps its prefix intact.
	for _, addr := range hostsAddrs {
		if rest, found := strings.CutPrefix(s, addr); found {
			if rest == "" {
				return "", false
			}
			if rest[0] == ' ' || rest[0] == '\t' {
				s = strings.TrimLeft(rest, " \t")
				break
			}
		}
	}

	// A redirect address fused to another token anywhere else on the line
	// is a trap: "example.com127.0.0.1" must not yield "example.com".
	for _, addr := range hostsAddrs {
		if gluedOccurrence(s, addr) {
			return "", false
		}
	}

	return strings.ToLower(s), true
}

// chomp removes one trailing '\n' then one trailing '\r', accepting "\n",
// "\r\n" and bare "\r" endings. Idempotent on already-stripped lines.
func chomp(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// gluedOccurrence reports whether addr appears in s directly adjacent to
// non-separator bytes, i.e. as part of a larger token rather than a clean
// standalone occurrence.
func gluedOccurrence(s, addr string) bool {
	for from := 0; ; {
		idx := strings.Index(s[from:], addr)
		if idx < 0 {
			return false
		}
		idx += from
		if (idx > 0 && !isSeparator(s[idx-1])) ||
			(idx+len(addr) < len(s) && !isSeparator(s[idx+len(addr)])) {
			return true
		}
		from = idx + len(addr)
	}
}

// isSeparator reports whether c cleanly delimits tokens on a line. Label
// bytes and dots extend a token; everything else separates.
func isSeparator(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return false
	case c == '.' || c == '-' || c == '_':
		return false
	}
	return true
}
