package metrics

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
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry           = prometheus.NewRegistry()
	defaultRegisterer  = promauto.With(registry)
	metricsInitialized sync.Once
	metricsEnabled     bool
	metricsServer      *http.Server
)

// Metrics contains all the Prometheus metrics for the application.
type Metrics struct {
	// Extraction metrics
	LinesProcessed   *prometheus.CounterVec
	LinesSkipped     *prometheus.CounterVec
	DomainsExtracted *prometheus.CounterVec
	DuplicateDomains prometheus.Counter

	// Reduction metrics
	ReductionRemovals prometheus.Counter

	// Output metrics
	OutputBytes *prometheus.CounterVec

	// Phase timing
	PhaseDuration *prometheus.HistogramVec
}

// Global instance of metrics
var globalMetrics *Metrics
var metricsOnce sync.Once

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics()
	})
	return globalMetrics
}

// EnableMetrics enables metrics collection.
func EnableMetrics() {
	metricsEnabled = true
}

// IsMetricsEnabled returns whether metrics collection is enabled.
func IsMetricsEnabled() bool {
	return metricsEnabled
}

// newMetrics creates and registers all metrics.
func newMetrics() *Metrics {
	buckets := []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

	return &Metrics{
		LinesProcessed: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostcull_lines_processed_total",
				Help: "Total number of input lines scanned",
			},
			[]string{"source"},
		),
		LinesSkipped: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostcull_lines_skipped_total",
				Help: "Total number of lines that yielded no domain",
			},
			[]string{"source"},
		),
		DomainsExtracted: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostcull_domains_extracted_total",
				Help: "Total number of valid domains extracted",
			},
			[]string{"source"},
		),
		DuplicateDomains: defaultRegisterer.NewCounter(
			prometheus.CounterOpts{
				Name: "hostcull_duplicate_domains_total",
				Help: "Extracted domains already present in the aggregate set",
			},
		),
		ReductionRemovals: defaultRegisterer.NewCounter(
			prometheus.CounterOpts{
				Name: "hostcull_reduction_removals_total",
				Help: "Domains removed because a wildcarded ancestor covers them",
			},
		),
		OutputBytes: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostcull_output_bytes_total",
				Help: "Uncompressed bytes written to output",
			},
			[]string{"destination"},
		),
		PhaseDuration: defaultRegisterer.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostcull_phase_duration_seconds",
				Help:    "Time spent in each pipeline phase",
				Buckets: buckets,
			},
			[]string{"phase"},
		),
	}
}

// MeasureDuration is a helper to measure the duration of a pipeline phase.
func MeasureDuration(histogram *prometheus.HistogramVec, labels prometheus.Labels) func() {
	if !metricsEnabled {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		histogram.With(labels).Observe(duration.Seconds())
	}
}

// StartMetricsServer starts an HTTP server to expose Prometheus metrics.
func StartMetricsServer(addr string) error {
	if !metricsEnabled {
		return nil
	}

	// Only start once
	var startErr error
	metricsInitialized.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		metricsServer = &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		go func() {
			log.Printf("Starting metrics server on %s", addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	})

	return startErr
}

// ShutdownMetricsServer gracefully shuts down the metrics server.
func ShutdownMetricsServer(ctx context.Context) error {
	if metricsServer != nil {
		log.Println("Shutting down metrics server...")
		return metricsServer.Shutdown(ctx)
	}
	return nil
}
