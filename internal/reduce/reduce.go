// Package reduce collapses a domain set to its minimal covering form for
// wildcard-based blocking: any domain that is a strict subdomain of
// another member is redundant, because a wildcard on the ancestor already
// matches it.
package reduce

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

// Reduce removes from set every domain that is a strict subdomain of
// another key, mutating set in place, and returns the removed-to-parent
// mapping. The associated value type is irrelevant to the algorithm.
//
// The recorded parent is the covering ancestor that itself survives the
// reduction, i.e. the member a wildcard actually ends up on. Because fate is
// decided against the full original key set before anything is deleted,
// the kept/removed partition and the parent assignment are independent of
// map iteration order. A domain with no dot beyond its TLD boundary has
// no ancestors and is always kept. The caller must hold exclusive access
// to set for the duration of the call.
func Reduce[V any](set map[string]V) map[string]string {
	removed := make(map[string]string)
	for d := range set {
		if parent, ok := coveringParent(set, d); ok {
			removed[d] = parent
		}
	}
	for d := range removed {
		delete(set, d)
	}
	return removed
}

// coveringParent walks d's ancestor chain by truncating at successive dot
// boundaries (b.c before a.b.c) and returns the surviving ancestor
// present in set. An ancestor present in set survives exactly when none
// of its own ancestors is present, so the survivor is the most distant
// present ancestor on the chain. The walk never descends past the TLD
// boundary: a bare TLD is not a domain.
func coveringParent[V any](set map[string]V, d string) (string, bool) {
	parent := ""
	rest := d
	for {
		dot := strings.IndexByte(rest, '.')
		if dot < 0 {
			break
		}
		rest = rest[dot+1:]
		if strings.IndexByte(rest, '.') < 0 {
			break // rest is the bare TLD
		}
		if _, ok := set[rest]; ok {
			parent = rest
		}
	}
	return parent, parent != ""
}
