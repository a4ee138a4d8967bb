// Package match implements the domain recognition engine: a single-pass,
// non-backtracking scanner over unstructured text that finds substrings
// conforming to the DNS label grammar and validates them against the TLD
// table and the underscore placement rules.
//
// The scanner is hand-rolled rather than regexp-based so that rejecting a
// malformed label at position k never re-reads bytes before k; matching is
// linear in the input length even on adversarial buffers.
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

import (
	"strings"

	"github.com/hostcull/hostcull/internal/tld"
)

const (
	// maxLabelLen is the DNS limit on a single label.
	maxLabelLen = 63
	// maxDomainLen is the DNS limit on a full domain name.
	maxDomainLen = 253
	// minPunycodeSuffix and maxPunycodeSuffix bound the characters that
	// may follow the "xn--" ACE prefix in a punycode TLD label.
	minPunycodeSuffix = 2
	maxPunycodeSuffix = 59
)

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

// isWordByte mirrors the \w character class: alphanumerics plus
// underscore. Word boundaries anchor candidate starts and ends.
func isWordByte(c byte) bool { return isAlnum(c) || c == '_' }

// isLabelByte reports whether c may appear inside a domain label.
func isLabelByte(c byte) bool { return isAlnum(c) || c == '_' || c == '-' }

// Matcher scans text buffers for valid domain names. It holds no state of
// its own beyond a shared reference to the TLD table, so it is cheap to
// construct, cheap to copy, and safe for concurrent use.
type Matcher struct {
	tlds *tld.Table
}

// New returns a Matcher validating TLDs against t.
func New(t *tld.Table) Matcher {
	return Matcher{tlds: t}
}

// First returns the leftmost accepted domain in text, lowercased, or
// ok=false when the buffer contains none.
func (m Matcher) First(text string) (domain string, ok bool) {
	m.scan(text, func(d string) bool {
		domain, ok = d, true
		return false
	})
	return domain, ok
}

// All returns every accepted domain in text in left-to-right order.
// Duplicates are preserved. The result is empty when nothing matches;
// rejected candidates never abort the scan.
func (m Matcher) All(text string) []string {
	var out []string
	m.scan(text, func(d string) bool {
		out = append(out, d)
		return true
	})
	return out
}

// scan drives the match loop, calling yield for each accepted domain until
// yield returns false or the buffer is exhausted. Candidates must begin on
// a word boundary; after any candidate, accepted or rejected, scanning
// resumes at the candidate's end, never before it.
func (m Matcher) scan(text string, yield func(string) bool) {
	i := 0
	for i < len(text) {
		c := text[i]
		if !isLabelByte(c) || c == '-' {
			// Not a possible label start. A hyphen cannot begin a label
			// but is itself a non-word byte, so the byte after it may
			// still anchor a candidate.
			i++
			continue
		}
		if i > 0 && isWordByte(text[i-1]) {
			// Mid-word: a domain embedded in a longer alphanumeric run
			// must not match. Skip the remainder of the run.
			for i < len(text) && isLabelByte(text[i]) {
				i++
			}
			continue
		}
		resume, candidate, ok := m.parse(text, i)
		if ok && m.accept(candidate) && !yield(strings.ToLower(candidate)) {
			return
		}
		if resume <= i {
			resume = i + 1
		}
		i = resume
	}
}

// parse reads one syntactic candidate anchored at start: one or more
// labels of 1–63 bytes from [A-Za-z0-9_-] with no hyphen at either edge,
// dot-separated, ending in a TLD-shaped label, with at most one trailing
// dot (FQDN form) which is consumed but excluded from the candidate.
//
// Label consumption is possessive: once a label and its separating dot
// have been committed they are never given back, so a failure at offset k
// returns resume=k and no byte before k is scanned twice.
func (m Matcher) parse(text string, start int) (resume int, candidate string, ok bool) {
	i := start
	labels := 0
	lastStart := start
	for {
		ls := i
		for i < len(text) && isLabelByte(text[i]) {
			i++
		}
		if i-ls > maxLabelLen {
			return i, "", false
		}
		if text[ls] == '-' || text[i-1] == '-' {
			return i, "", false
		}
		labels++
		lastStart = ls
		if i+1 < len(text) && text[i] == '.' && isLabelByte(text[i+1]) && text[i+1] != '-' {
			i++
			continue
		}
		break
	}
	if labels < 2 || !isTLDLabel(text[lastStart:i]) {
		return i, "", false
	}
	candidate = text[start:i]
	if i < len(text) && text[i] == '.' {
		i++ // fully-qualified form: consume the dot, keep it out of the match
	}
	return i, candidate, true
}

// accept applies the semantic checks to a syntactic candidate: total
// length, underscore placement, and TLD table membership. Rejections are
// silent; the caller simply moves on.
func (m Matcher) accept(candidate string) bool {
	if len(candidate) > maxDomainLen {
		return false
	}
	if hasInvalidUnderscore(candidate) {
		return false
	}
	dot := strings.LastIndexByte(candidate, '.')
	return m.tlds.IsValid(candidate[dot+1:])
}

// isTLDLabel reports whether label has the shape of a top-level label:
// 2–63 alphabetic characters, or an "xn--" punycode label followed by
// 2–59 alphanumeric-or-hyphen characters.
func isTLDLabel(label string) bool {
	if len(label) > 4 &&
		(label[0] == 'x' || label[0] == 'X') &&
		(label[1] == 'n' || label[1] == 'N') &&
		label[2] == '-' && label[3] == '-' {
		rest := label[4:]
		if len(rest) < minPunycodeSuffix || len(rest) > maxPunycodeSuffix {
			return false
		}
		for i := 0; i < len(rest); i++ {
			if !isAlnum(rest[i]) && rest[i] != '-' {
				return false
			}
		}
		return true
	}
	if len(label) < 2 || len(label) > maxLabelLen {
		return false
	}
	for i := 0; i < len(label); i++ {
		if !isAlpha(label[i]) {
			return false
		}
	}
	return true
}
