// Package io provides the buffered output sink used by the extraction
// pipeline: a file or stdout, optionally gzip-compressed, with the
// flush/close ordering handled in one place.
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
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
)

// DefaultBufferSize is the default buffer size for disk I/O.
const DefaultBufferSize = 256 * 1024 // 256KB

// Writer layers bufio (and optionally gzip) over a file or stdout. The
// pipeline owns a Writer exclusively; there is no internal locking.
type Writer struct {
	file     *os.File
	gz       *gzip.Writer
	bw       *bufio.Writer
	ownsFile bool
	bytes    int64
}

// Create opens path for writing through a buffer of bufferSize bytes,
// gzip-compressing when compress is set. An empty path or "-" selects
// stdout, which Close will flush but not close.
func Create(path string, compress bool, bufferSize int) (*Writer, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	w := &Writer{}
	if path == "" || path == "-" {
		w.file = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating output file %s: %w", path, err)
		}
		w.file = f
		w.ownsFile = true
	}
	if compress {
		w.gz, _ = gzip.NewWriterLevel(w.file, gzip.BestSpeed)
		w.bw = bufio.NewWriterSize(w.gz, bufferSize)
	} else {
		w.bw = bufio.NewWriterSize(w.file, bufferSize)
	}
	return w, nil
}

// Write implements io.Writer. Byte accounting is pre-compression.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	w.bytes += int64(n)
	return n, err
}

// WriteString writes s through the buffer.
func (w *Writer) WriteString(s string) (int, error) {
	n, err := w.bw.WriteString(s)
	w.bytes += int64(n)
	return n, err
}

// BytesWritten returns the number of uncompressed bytes written so far.
func (w *Writer) BytesWritten() int64 {
	return w.bytes
}

// Close flushes and tears down the stack in the only safe order:
// bufio, then gzip, then the file. Stdout is flushed but left open.
func (w *Writer) Close() error {
	err := w.bw.Flush()
	if w.gz != nil {
		if cerr := w.gz.Close(); err == nil {
			err = cerr
		}
	}
	if w.ownsFile {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
