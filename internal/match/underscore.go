package match

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

import "strings"

// hasInvalidUnderscore reports whether domain places an underscore where
// the label grammar does not tolerate one. Underscore-prefixed labels are
// legitimate DNS metadata (RFC 8552: _dmarc, _443._tcp, DKIM selectors,
// ACME challenges) and must pass; everything else involving an underscore
// is rejected.
//
// Rejected placements:
//   - two consecutive underscores anywhere
//   - an underscore between two alphanumerics (only a leading underscore
//     per label is allowed)
//   - an underscore directly before a dot or at the end of the domain
//     (an underscore-only label tail)
//   - an underscore at a label start directly followed by a hyphen
//   - a hyphen directly followed by an underscore, anywhere
//
// The function is a pure predicate with a fast path for the overwhelmingly
// common underscore-free case.
func hasInvalidUnderscore(domain string) bool {
	if strings.IndexByte(domain, '_') < 0 {
		return false
	}
	n := len(domain)
	for i := 0; i < n; i++ {
		switch domain[i] {
		case '_':
			if i+1 == n || domain[i+1] == '.' {
				return true
			}
			if domain[i+1] == '_' {
				return true
			}
			if i > 0 && isAlnum(domain[i-1]) && isAlnum(domain[i+1]) {
				return true
			}
			if (i == 0 || domain[i-1] == '.') && domain[i+1] == '-' {
				return true
			}
		case '-':
			if i+1 < n && domain[i+1] == '_' {
				return true
			}
		}
	}
	return false
}
