/*
Package main is the entry point for the hostcull command-line application.

hostcull is a tool for turning messy blocklist material into clean,
minimal DNS blocking data. Its primary functionalities include:
  - Extracting syntactically and semantically valid domain names from
    unstructured text: hosts files, blocklist sources, free text.
  - Reducing a domain set to its minimal covering form, removing every
    domain already covered by a wildcard on an ancestor in the same set.
  - Rendering the result as a plain list, an Unbound resolver include, or
    a response-policy zone (RPZ).

The application uses the Cobra library for command-line interface
structure and flag parsing. It leverages several internal packages:
  - `internal/tld`: the reference table of valid top-level domains.
  - `internal/match`: the single-pass domain scanner and validators.
  - `internal/extract`: line-oriented preprocessing over the scanner.
  - `internal/reduce`: the subdomain redundancy reducer.
  - `internal/format`: the three output templates.
  - `internal/core`: the sequential extraction pipeline.
  - `internal/metrics`: optional Prometheus metrics exposition.

Graceful shutdown is handled via context cancellation triggered by OS
signals (SIGINT, SIGTERM).
*/
package main

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
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hostcull/hostcull/internal/core"
	"github.com/hostcull/hostcull/internal/extract"
	"github.com/hostcull/hostcull/internal/format"
	"github.com/hostcull/hostcull/internal/match"
	"github.com/hostcull/hostcull/internal/metrics"
	"github.com/hostcull/hostcull/internal/reduce"
	"github.com/hostcull/hostcull/internal/tld"
)

// Global flags (persistent across commands)
var (
	metricsPort int
	tldFile     string
)

// Flags specific to the extract command
var (
	outputPath  string
	outputDir   string
	formatName  string
	rpzOrigin   string
	forceReduce bool
	firstOnly   bool
	compress    bool
	bufferSize  int
)

// Flags specific to the reduce command
var showMapping bool

var rootCmd = &cobra.Command{
	Use:   "hostcull",
	Short: "hostcull - extract domains from blocklist text and cull redundant subdomains",
}

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract valid domains from files or stdin and render a blocking template",
	Long: `Extracts every valid domain from the given files (or stdin when no file is
given), deduplicates and sorts the result, reduces it to its wildcard-minimal
form for wildcard-capable templates, and renders one of three formats:
plain (one domain per line), unbound (local-zone include) or rpz
(response-policy zone).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(args)
	},
}

var reduceCmd = &cobra.Command{
	Use:   "reduce [file]",
	Short: "Reduce an already-extracted domain list to its minimal covering form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := "-"
		if len(args) == 1 {
			src = args[0]
		}
		return runReduce(src)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <candidate>...",
	Short: "Report whether each argument contains a valid domain",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args)
	},
}

var tldsCmd = &cobra.Command{
	Use:   "tlds [candidate...]",
	Short: "Show the TLD table size, or test candidates against it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTLDs(args)
	},
}

func init() {
	// Persistent flags (available for all commands)
	rootCmd.PersistentFlags().IntVar(&metricsPort, "metrics-port", 0, "Expose Prometheus metrics on this port (0 to disable)")
	rootCmd.PersistentFlags().StringVar(&tldFile, "tld-file", "", "Path to an IANA-format TLD list (default: embedded copy)")

	// Flags for the extract command
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().StringVar(&outputDir, "output-dir", "", "Write one output file per input source into this directory")
	extractCmd.Flags().StringVarP(&formatName, "format", "f", "plain", "Output format: plain, unbound or rpz")
	extractCmd.Flags().StringVar(&rpzOrigin, "rpz-origin", format.DefaultRPZOrigin, "Zone origin for the rpz format")
	extractCmd.Flags().BoolVar(&forceReduce, "reduce", false, "Reduce redundant subdomains even for the plain format")
	extractCmd.Flags().BoolVar(&firstOnly, "first-only", false, "Take only the first domain per line (strict hosts-file reading)")
	extractCmd.Flags().BoolVar(&compress, "compress", false, "Compress output with gzip")
	extractCmd.Flags().IntVarP(&bufferSize, "buffer", "b", 0, "Output buffer size in bytes (0 for default)")

	// Flags for the reduce command
	reduceCmd.Flags().BoolVar(&showMapping, "mapping", false, "Print removed -> parent mappings as comments")

	// Add subcommands to the root command
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tldsCmd)
}

func main() {
	log.SetFlags(0)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startMetrics enables and starts the metrics endpoint when requested.
func startMetrics() {
	if metricsPort <= 0 {
		return
	}
	metrics.EnableMetrics()
	if err := metrics.StartMetricsServer(fmt.Sprintf(":%d", metricsPort)); err != nil {
		log.Printf("Failed to start metrics server: %v", err)
	}
}

func runExtract(inputs []string) error {
	startMetrics()
	ctx, cancel := signalContext()
	defer cancel()

	kind, err := format.ParseKind(formatName)
	if err != nil {
		return err
	}

	p, err := core.NewPipeline(&core.Config{
		Inputs:     inputs,
		Output:     outputPath,
		OutputDir:  outputDir,
		Format:     kind,
		RPZOrigin:  rpzOrigin,
		Reduce:     forceReduce,
		FirstOnly:  firstOnly,
		Compress:   compress,
		BufferSize: bufferSize,
		TLDFile:    tldFile,
	})
	if err != nil {
		return err
	}

	if err := p.Run(ctx); err != nil {
		return err
	}

	if metricsPort > 0 {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		_ = metrics.ShutdownMetricsServer(shutdownCtx)
	}
	stats := p.GetStats()
	log.Printf("done: %d lines, %d domains found, %d duplicates, %d reduced",
		stats.LinesRead.Load(), stats.DomainsFound.Load(),
		stats.Duplicates.Load(), stats.Removed.Load())
	return nil
}

func runReduce(src string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	ex := extract.New(match.New(table))

	var r *os.File
	if src == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(src)
		if err != nil {
			return fmt.Errorf("opening %s: %w", src, err)
		}
		defer f.Close()
		r = f
	}

	set := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if d, ok := ex.Line(sc.Text()); ok {
			set[d] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	removed := reduce.Reduce(set)

	if showMapping {
		mapped := make([]string, 0, len(removed))
		for d := range removed {
			mapped = append(mapped, d)
		}
		sort.Strings(mapped)
		for _, d := range mapped {
			fmt.Printf("# %s -> %s\n", d, removed[d])
		}
	}

	kept := make([]string, 0, len(set))
	for d := range set {
		kept = append(kept, d)
	}
	sort.Strings(kept)
	for _, d := range kept {
		fmt.Println(d)
	}
	log.Printf("kept %d domains, removed %d redundant subdomains", len(kept), len(removed))
	return nil
}

func runCheck(candidates []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	ex := extract.New(match.New(table))

	invalid := 0
	for _, c := range candidates {
		if d, ok := ex.Line(c); ok {
			fmt.Printf("%s: ok (%s)\n", c, d)
		} else {
			fmt.Printf("%s: no valid domain\n", c)
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d candidates contained no valid domain", invalid, len(candidates))
	}
	return nil
}

func runTLDs(candidates []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Printf("%d top-level domains loaded\n", table.Len())
		return nil
	}
	for _, c := range candidates {
		if table.IsValid(c) {
			fmt.Printf("%s: valid TLD\n", c)
		} else {
			fmt.Printf("%s: unknown TLD\n", c)
		}
	}
	return nil
}

func loadTable() (*tld.Table, error) {
	if tldFile != "" {
		return tld.LoadFile(tldFile)
	}
	return tld.Default()
}
