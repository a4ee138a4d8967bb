package io

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
	"bytes"
	"compress/gzip"
	stdio "io"
	"os"
	"path/filepath"
	"testing"
)

// TestWriterPlainFile verifies the write-then-close lifecycle and the
// byte accounting against the file on disk.
func TestWriterPlainFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.txt")

	w, err := Create(path, false, 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.WriteString("a.com\n"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if _, err := w.Write([]byte("b.org\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output back: %v", err)
	}
	if got, want := string(data), "a.com\nb.org\n"; got != want {
		t.Errorf("file contents = %q; want %q", got, want)
	}
	if got := w.BytesWritten(); got != int64(len(data)) {
		t.Errorf("BytesWritten() = %d; want %d", got, len(data))
	}
}

// TestWriterCompressed round-trips gzip output and checks that byte
// accounting stays pre-compression.
func TestWriterCompressed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.txt.gz")
	payload := "ads.example.com\ntracker.example.org\n"

	w, err := Create(path, true, 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.WriteString(payload); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := w.BytesWritten(); got != int64(len(payload)) {
		t.Errorf("BytesWritten() = %d; want uncompressed size %d", got, len(payload))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output back: %v", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not valid gzip: %v", err)
	}
	defer zr.Close()
	decompressed, err := stdio.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	if string(decompressed) != payload {
		t.Errorf("round-trip = %q; want %q", decompressed, payload)
	}
}

// TestWriterStdout ensures the stdout sentinel paths do not close stdout.
func TestWriterStdout(t *testing.T) {
	for _, path := range []string{"", "-"} {
		w, err := Create(path, false, 0)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", path, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close after Create(%q) failed: %v", path, err)
		}
		// Stdout must still be usable after the writer is gone.
		if _, err := os.Stdout.Stat(); err != nil {
			t.Fatalf("stdout unusable after Create(%q): %v", path, err)
		}
	}
}

// TestWriterCreateError surfaces unwritable destinations at Create time.
func TestWriterCreateError(t *testing.T) {
	t.Parallel()
	if _, err := Create(filepath.Join(t.TempDir(), "missing", "out.txt"), false, 0); err == nil {
		t.Fatal("Create into a missing directory succeeded")
	}
}
