/*
Package core provides the central logic for hostcull: the extraction
pipeline that reads blocklist sources line by line, funnels them through
the domain matcher, aggregates the results, optionally reduces the set to
its wildcard-minimal form, and renders the selected output template.
*/
package core

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
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hostcull/hostcull/internal/extract"
	"github.com/hostcull/hostcull/internal/format"
	hostio "github.com/hostcull/hostcull/internal/io"
	"github.com/hostcull/hostcull/internal/match"
	"github.com/hostcull/hostcull/internal/metrics"
	"github.com/hostcull/hostcull/internal/reduce"
	"github.com/hostcull/hostcull/internal/tld"
	"github.com/hostcull/hostcull/internal/util"
)

const (
	// scanBufferInitial and scanBufferMax size the line scanner. Blocklist
	// sources occasionally carry absurdly long lines; grow rather than fail.
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 10 * 1024 * 1024

	// ctxCheckInterval is how many lines to process between context
	// cancellation checks.
	ctxCheckInterval = 4096
)

// Config holds operational parameters for one pipeline run.
type Config struct {
	Inputs     []string // source files; empty or "-" entries mean stdin
	Output     string   // aggregate output path; empty or "-" means stdout
	OutputDir  string   // when set, split mode: one output file per source
	Format     format.Kind
	RPZOrigin  string
	Reduce     bool // force reduction even for non-wildcard templates
	FirstOnly  bool // take only the first domain per line (strict hosts-file reading)
	Compress   bool // gzip output
	BufferSize int  // output buffer size in bytes
	TLDFile    string
}

// Stats uses atomic counters so a progress reporter or metrics scrape can
// observe a run without coordination.
type Stats struct {
	LinesRead    atomic.Int64
	LinesSkipped atomic.Int64
	DomainsFound atomic.Int64
	Duplicates   atomic.Int64
	Removed      atomic.Int64
	BytesWritten atomic.Int64
	StartTime    time.Time
}

// Pipeline runs extraction end to end. Processing is sequential and
// synchronous: every stage is a pure or in-place computation, and the only
// I/O is reading the sources and writing the rendered output.
type Pipeline struct {
	config   *Config
	ex       extract.Extractor
	stats    *Stats
	progress rate.Sometimes // throttles per-source progress logging
}

// NewPipeline loads the TLD table (the embedded default, or the file
// named in the config), wires up the matcher and extractor, and returns a
// ready-to-run pipeline. Table loading failures are fatal here; there is
// no degraded mode without a trustworthy TLD table.
func NewPipeline(cfg *Config) (*Pipeline, error) {
	var (
		table *tld.Table
		err   error
	)
	if cfg.TLDFile != "" {
		table, err = tld.LoadFile(cfg.TLDFile)
	} else {
		table, err = tld.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing TLD table: %w", err)
	}

	return &Pipeline{
		config:   cfg,
		ex:       extract.New(match.New(table)),
		stats:    &Stats{StartTime: time.Now()},
		progress: rate.Sometimes{First: 1, Interval: 2 * time.Second},
	}, nil
}

// GetStats returns the pointer.
func (p *Pipeline) GetStats() *Stats { return p.stats }

// Run executes the configured pipeline. In aggregate mode all sources
// feed one deduplicated set and one output; in split mode each source is
// processed and rendered independently into the output directory.
func (p *Pipeline) Run(ctx context.Context) error {
	sources := p.config.Inputs
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	if p.config.OutputDir != "" {
		return p.runSplit(ctx, sources)
	}
	return p.runAggregate(ctx, sources)
}

func (p *Pipeline) runAggregate(ctx context.Context, sources []string) error {
	set := make(map[string]struct{})
	for _, src := range sources {
		if err := p.scanSource(ctx, src, set); err != nil {
			return err
		}
	}
	return p.render(set, p.config.Output)
}

func (p *Pipeline) runSplit(ctx context.Context, sources []string) error {
	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", p.config.OutputDir, err)
	}
	for _, src := range sources {
		set := make(map[string]struct{})
		if err := p.scanSource(ctx, src, set); err != nil {
			return err
		}
		name := util.SanitizeFilename(src) + outputSuffix(p.config.Format)
		if p.config.Compress {
			name += ".gz"
		}
		if err := p.render(set, filepath.Join(p.config.OutputDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// scanSource feeds one source through the extractor into set.
func (p *Pipeline) scanSource(ctx context.Context, src string, set map[string]struct{}) error {
	r, closer, err := openSource(src)
	if err != nil {
		return err
	}
	defer closer()

	m := metrics.GetMetrics()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, scanBufferInitial), scanBufferMax)

	var lines int64
	for sc.Scan() {
		lines++
		if lines%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		p.stats.LinesRead.Add(1)

		var found []string
		if p.config.FirstOnly {
			if d, ok := p.ex.Line(sc.Text()); ok {
				found = append(found, d)
			}
		} else {
			found = p.ex.LineAll(sc.Text())
		}
		if len(found) == 0 {
			p.stats.LinesSkipped.Add(1)
			if metrics.IsMetricsEnabled() {
				m.LinesSkipped.WithLabelValues(src).Inc()
			}
			continue
		}

		for _, d := range found {
			p.stats.DomainsFound.Add(1)
			if _, dup := set[d]; dup {
				p.stats.Duplicates.Add(1)
				if metrics.IsMetricsEnabled() {
					m.DuplicateDomains.Inc()
				}
				continue
			}
			set[d] = struct{}{}
		}
		if metrics.IsMetricsEnabled() {
			m.DomainsExtracted.WithLabelValues(src).Add(float64(len(found)))
		}

		p.progress.Do(func() {
			log.Printf("%s: %d lines read, %d domains collected",
				sourceName(src), p.stats.LinesRead.Load(), len(set))
		})
	}
	if metrics.IsMetricsEnabled() {
		m.LinesProcessed.WithLabelValues(src).Add(float64(lines))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", sourceName(src), err)
	}
	return nil
}

// render reduces (when the template calls for it), sorts and writes set.
func (p *Pipeline) render(set map[string]struct{}, dest string) error {
	m := metrics.GetMetrics()

	if p.config.Reduce || p.config.Format.Wildcardable() {
		done := metrics.MeasureDuration(m.PhaseDuration, map[string]string{"phase": "reduce"})
		removed := reduce.Reduce(set)
		done()
		p.stats.Removed.Add(int64(len(removed)))
		if metrics.IsMetricsEnabled() {
			m.ReductionRemovals.Add(float64(len(removed)))
		}
		if len(removed) > 0 {
			log.Printf("reduced %d redundant subdomains", len(removed))
		}
	}

	domains := make([]string, 0, len(set))
	for d := range set {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	w, err := hostio.Create(dest, p.config.Compress, p.config.BufferSize)
	if err != nil {
		return err
	}
	renderErr := format.Write(w, domains, format.Options{
		Kind:   p.config.Format,
		Origin: p.config.RPZOrigin,
	})
	if cerr := w.Close(); renderErr == nil {
		renderErr = cerr
	}
	if renderErr != nil {
		return fmt.Errorf("writing %s: %w", destName(dest), renderErr)
	}

	p.stats.BytesWritten.Add(w.BytesWritten())
	if metrics.IsMetricsEnabled() {
		m.OutputBytes.WithLabelValues(destName(dest)).Add(float64(w.BytesWritten()))
	}
	log.Printf("%s: wrote %d domains (%d bytes) in %v",
		destName(dest), len(domains), w.BytesWritten(), time.Since(p.stats.StartTime).Round(time.Millisecond))
	return nil
}

func openSource(src string) (io.Reader, func(), error) {
	if src == "" || src == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", src, err)
	}
	return f, func() { f.Close() }, nil
}

func outputSuffix(k format.Kind) string {
	switch k {
	case format.Unbound:
		return ".conf"
	case format.RPZ:
		return ".rpz"
	}
	return ".txt"
}

func sourceName(src string) string {
	if src == "" || src == "-" {
		return "stdin"
	}
	return src
}

func destName(dest string) string {
	if dest == "" || dest == "-" {
		return "stdout"
	}
	return dest
}
