package format

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
	"fmt"
	"strings"
	"testing"

	"github.com/miekg/dns"
)

// TestParseKind maps format names, case-insensitively, and rejects junk.
func TestParseKind(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"plain", Plain, false},
		{"unbound", Unbound, false},
		{"rpz", RPZ, false},
		{"PLAIN", Plain, false},
		{"Rpz", RPZ, false},
		{"", "", true},
		{"hosts", "", true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseKind(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseKind(%q) accepted; want error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) failed: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseKind(%q) = %q; want %q", tc.input, got, tc.want)
			}
		})
	}
}

// TestWildcardable pins down which templates warrant reduction.
func TestWildcardable(t *testing.T) {
	t.Parallel()
	if Plain.Wildcardable() {
		t.Error("plain must not be wildcardable")
	}
	if !Unbound.Wildcardable() {
		t.Error("unbound must be wildcardable")
	}
	if !RPZ.Wildcardable() {
		t.Error("rpz must be wildcardable")
	}
}

// TestWritePlain checks the exact one-domain-per-line rendering.
func TestWritePlain(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	err := Write(&sb, []string{"a.com", "b.org"}, Options{Kind: Plain})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got, want := sb.String(), "a.com\nb.org\n"; got != want {
		t.Errorf("plain output = %q; want %q", got, want)
	}
}

// TestWritePlainEmpty ensures an empty set renders as an empty file.
func TestWritePlainEmpty(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	if err := Write(&sb, nil, Options{Kind: Plain}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if sb.Len() != 0 {
		t.Errorf("empty set rendered %q; want empty output", sb.String())
	}
}

// TestWriteUnbound checks the include header and per-domain local-zone lines.
func TestWriteUnbound(t *testing.T) {
	t.Parallel()
	domains := []string{"ads.example.com", "tracker.example.org"}
	var sb strings.Builder
	if err := Write(&sb, domains, Options{Kind: Unbound}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := sb.String()
	wantHeader := fmt.Sprintf("# 2 blocked domains, fingerprint %016x\nserver:\n", Fingerprint(domains))
	if !strings.HasPrefix(out, wantHeader) {
		t.Errorf("unbound output does not start with %q:\n%s", wantHeader, out)
	}
	for _, line := range []string{
		"    local-zone: \"ads.example.com.\" always_nxdomain\n",
		"    local-zone: \"tracker.example.org.\" always_nxdomain\n",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("unbound output missing %q:\n%s", line, out)
		}
	}
}

// TestWriteRPZ renders a zone and parses it back with the zone parser it
// was built for, verifying the scaffolding and both rewrites per domain.
func TestWriteRPZ(t *testing.T) {
	t.Parallel()
	domains := []string{"ads.example.com", "tracker.example.org"}
	var sb strings.Builder
	if err := Write(&sb, domains, Options{Kind: RPZ, Origin: "rpz.test."}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "$ORIGIN rpz.test.\n") {
		t.Errorf("zone does not start with $ORIGIN:\n%s", out)
	}

	var types []uint16
	var owners []string
	zp := dns.NewZoneParser(strings.NewReader(out), "", "")
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		types = append(types, rr.Header().Rrtype)
		owners = append(owners, rr.Header().Name)
		if cname, isCNAME := rr.(*dns.CNAME); isCNAME && cname.Target != "." {
			t.Errorf("CNAME %s targets %q; want the root", rr.Header().Name, cname.Target)
		}
	}
	if err := zp.Err(); err != nil {
		t.Fatalf("rendered zone does not parse: %v", err)
	}

	if len(types) != 2+2*len(domains) {
		t.Fatalf("zone has %d records; want %d", len(types), 2+2*len(domains))
	}
	if types[0] != dns.TypeSOA || types[1] != dns.TypeNS {
		t.Errorf("zone scaffolding types = %v; want SOA then NS", types[:2])
	}
	wantOwners := []string{
		"rpz.test.", "rpz.test.",
		"ads.example.com.rpz.test.", "*.ads.example.com.rpz.test.",
		"tracker.example.org.rpz.test.", "*.tracker.example.org.rpz.test.",
	}
	for i, want := range wantOwners {
		if owners[i] != want {
			t.Errorf("record %d owner = %q; want %q", i, owners[i], want)
		}
	}
}

// TestWriteRPZDefaultOrigin covers the empty-origin fallback.
func TestWriteRPZDefaultOrigin(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	if err := Write(&sb, []string{"a.com"}, Options{Kind: RPZ}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.HasPrefix(sb.String(), "$ORIGIN "+DefaultRPZOrigin+"\n") {
		t.Errorf("default origin missing:\n%s", sb.String())
	}
}

// TestRPZSerialStability ensures the SOA serial is a pure function of the
// domain list: same data, same zone, byte for byte.
func TestRPZSerialStability(t *testing.T) {
	t.Parallel()
	domains := []string{"a.com", "b.org", "c.net"}
	render := func() string {
		var sb strings.Builder
		if err := Write(&sb, domains, Options{Kind: RPZ}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		return sb.String()
	}
	if first, second := render(), render(); first != second {
		t.Error("identical input produced different zones")
	}
}

// TestFingerprint checks determinism and sensitivity to content.
func TestFingerprint(t *testing.T) {
	t.Parallel()
	a := Fingerprint([]string{"a.com", "b.org"})
	if a != Fingerprint([]string{"a.com", "b.org"}) {
		t.Error("fingerprint is not deterministic")
	}
	if a == Fingerprint([]string{"a.com", "b.net"}) {
		t.Error("different lists share a fingerprint")
	}
	if a == Fingerprint([]string{"b.org", "a.com"}) {
		t.Error("fingerprint ignores order; callers rely on it not to")
	}
}

// BenchmarkWriteRPZ measures zone rendering throughput.
func BenchmarkWriteRPZ(b *testing.B) {
	domains := make([]string, 1000)
	for i := range domains {
		domains[i] = fmt.Sprintf("host%04d.example.com", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var sb strings.Builder
		if err := Write(&sb, domains, Options{Kind: RPZ}); err != nil {
			b.Fatal(err)
		}
	}
}
