// Package format renders an aggregated domain set as one of the three
// output templates: a plain list, an Unbound resolver include, or a
// response-policy zone (RPZ).
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
	"io"
	"strings"

	"github.com/miekg/dns"
	"github.com/zeebo/xxh3"
)

// Kind selects the output template.
type Kind string

const (
	// Plain is one domain per line.
	Plain Kind = "plain"
	// Unbound is a local-zone include file for the Unbound resolver.
	Unbound Kind = "unbound"
	// RPZ is a response-policy zone mapping each domain and its wildcard
	// to NXDOMAIN.
	RPZ Kind = "rpz"
)

// DefaultRPZOrigin is the zone origin used when the caller does not
// supply one.
const DefaultRPZOrigin = "rpz.hostcull.local."

// ParseKind maps a command-line format name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case Plain:
		return Plain, nil
	case Unbound:
		return Unbound, nil
	case RPZ:
		return RPZ, nil
	}
	return "", fmt.Errorf("unknown output format %q (want plain, unbound or rpz)", s)
}

// Wildcardable reports whether the template blocks whole subtrees, i.e.
// whether subdomain reduction is worthwhile before rendering.
func (k Kind) Wildcardable() bool {
	return k == Unbound || k == RPZ
}

// Options configures rendering.
type Options struct {
	Kind   Kind
	Origin string // RPZ zone origin; DefaultRPZOrigin when empty
}

// Fingerprint returns a content hash over the domain list. Identical
// sorted inputs yield identical fingerprints, which also seed the RPZ
// SOA serial so regenerated zones only change when the data does.
func Fingerprint(domains []string) uint64 {
	return xxh3.HashString(strings.Join(domains, "\n"))
}

// Write renders domains, already deduplicated and sorted by the caller,
// to w in the selected template.
func Write(w io.Writer, domains []string, opts Options) error {
	switch opts.Kind {
	case Plain, "":
		return writePlain(w, domains)
	case Unbound:
		return writeUnbound(w, domains)
	case RPZ:
		return writeRPZ(w, domains, opts.Origin)
	}
	return fmt.Errorf("unknown output format %q", opts.Kind)
}

func writePlain(w io.Writer, domains []string) error {
	for _, d := range domains {
		if _, err := io.WriteString(w, d+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeUnbound(w io.Writer, domains []string) error {
	if _, err := fmt.Fprintf(w, "# %d blocked domains, fingerprint %016x\nserver:\n",
		len(domains), Fingerprint(domains)); err != nil {
		return err
	}
	for _, d := range domains {
		if _, err := fmt.Fprintf(w, "    local-zone: %q always_nxdomain\n", d+"."); err != nil {
			return err
		}
	}
	return nil
}

// writeRPZ emits a response-policy zone. The scaffolding records are
// built as real RR structs and rendered through their zone-file form, so
// the output is guaranteed parseable by anything that speaks RFC 1035.
// Each domain yields two CNAME-to-root rewrites: the name itself and its
// wildcard.
func writeRPZ(w io.Writer, domains []string, origin string) error {
	if origin == "" {
		origin = DefaultRPZOrigin
	}
	origin = strings.ToLower(dns.Fqdn(origin))

	serial := uint32(Fingerprint(domains))
	soa := &dns.SOA{
		Hdr:     dns.RR_Header{Name: origin, Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: 3600},
		Ns:      "localhost.",
		Mbox:    "nobody.invalid.",
		Serial:  serial,
		Refresh: 43200,
		Retry:   3600,
		Expire:  259200,
		Minttl:  300,
	}
	ns := &dns.NS{
		Hdr: dns.RR_Header{Name: origin, Rrtype: dns.TypeNS, Class: dns.ClassINET, Ttl: 3600},
		Ns:  "localhost.",
	}

	if _, err := fmt.Fprintf(w, "$ORIGIN %s\n%s\n%s\n", origin, soa.String(), ns.String()); err != nil {
		return err
	}
	for _, d := range domains {
		for _, owner := range [2]string{d + "." + origin, "*." + d + "." + origin} {
			rr := &dns.CNAME{
				Hdr:    dns.RR_Header{Name: owner, Rrtype: dns.TypeCNAME, Class: dns.ClassINET, Ttl: 300},
				Target: ".",
			}
			if _, err := io.WriteString(w, rr.String()+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
