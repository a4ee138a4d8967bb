// Package tld holds the reference table of valid top-level domains.
//
// The table is built once from an IANA-format list (one TLD per line,
// uppercase by convention, '#'-led comment lines and blank lines ignored)
// and is immutable afterwards. Lookups are case-insensitive. A copy of
// tlds-alpha-by-domain.txt is embedded so the tool works without any
// external data file; callers can substitute their own list via Load.
package tld

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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	_ "embed"
)

//go:generate curl -s https://data.iana.org/TLD/tlds-alpha-by-domain.txt -o tlds-alpha-by-domain.txt

//go:embed tlds-alpha-by-domain.txt
var embeddedList string

// MinTableSize is the corruption guard: the IANA registry has held well
// over 1,400 TLDs for years, so a smaller table means the reference list
// is truncated or mangled and the process must not start with it.
const MinTableSize = 1400

// ErrTableTooSmall is returned by Load when the reference list parses but
// yields an implausibly small table.
var ErrTableTooSmall = errors.New("tld: reference list implausibly small")

// Table is an immutable set of valid top-level domains. The zero value is
// not usable; construct via Load, LoadFile or Default. A Table is safe for
// use by any number of concurrent readers without locking.
type Table struct {
	set map[string]struct{}
}

// Load reads an IANA-format TLD list and builds a Table from it.
// Entries are stored uppercase; blank lines and '#'-led comments are
// skipped. It fails with ErrTableTooSmall when fewer than MinTableSize
// entries survive parsing.
func Load(r io.Reader) (*Table, error) {
	set := make(map[string]struct{}, 1536)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToUpper(line)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tld: reading reference list: %w", err)
	}
	if len(set) < MinTableSize {
		return nil, fmt.Errorf("%w: %d entries, want at least %d", ErrTableTooSmall, len(set), MinTableSize)
	}
	return &Table{set: set}, nil
}

// LoadFile builds a Table from a reference list on disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tld: opening reference list: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// IsValid reports whether candidate is a known top-level domain.
// The candidate is case-folded to uppercase before lookup; the empty
// string is never valid.
func (t *Table) IsValid(candidate string) bool {
	if t == nil || candidate == "" {
		return false
	}
	_, ok := t.set[strings.ToUpper(candidate)]
	return ok
}

// Len returns the number of TLDs in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.set)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the process-wide Table built from the embedded IANA
// list. The table is constructed on first use and shared by every caller
// thereafter; matchers hold only a reference to it.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Load(strings.NewReader(embeddedList))
	})
	return defaultTable, defaultErr
}
