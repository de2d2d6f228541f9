/*
 * xvg.go, part of goSHG
 *
 * Copyright 2024 The goSHG authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package xvg writes data series in the xvg format read by Grace (xmgrace).
package xvg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer writes an xvg file. The first write error is kept and returned by Close,
// so the calls in between don't need to be checked.
type Writer struct {
	w      *bufio.Writer
	c      io.Closer
	name   string
	err    error
	inSet  bool
	ncols  int
	closed bool
}

// Create creates the file name and writes the xvg header to it.
func Create(name, title, xlabel, ylabel string) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("goSHG/xvg.Create: %w", err)
	}
	W := New(f, title, xlabel, ylabel)
	W.c = f
	W.name = name
	return W, nil
}

// New returns a Writer on w, and writes the xvg header.
func New(w io.Writer, title, xlabel, ylabel string) *Writer {
	W := &Writer{w: bufio.NewWriter(w), ncols: -1}
	W.printf("# This file was created by goSHG\n")
	W.printf("@    title %q\n", title)
	W.printf("@    xaxis  label %q\n", xlabel)
	W.printf("@    yaxis  label %q\n", ylabel)
	W.printf("@TYPE xy\n")
	return W
}

func (W *Writer) printf(format string, a ...interface{}) {
	if W.err != nil {
		return
	}
	_, W.err = fmt.Fprintf(W.w, format, a...)
}

// Subtitle writes the subtitle of the graph.
func (W *Writer) Subtitle(s string) {
	W.printf("@ subtitle %q\n", s)
}

// Legends writes a legend box with one entry per set, in order.
func (W *Writer) Legends(legends []string) {
	W.printf("@ legend on\n@ legend box on\n@ legend loctype view\n@ legend 0.78, 0.8\n@ legend length 2\n")
	for i, l := range legends {
		W.printf("@ s%d legend %q\n", i, l)
	}
}

// BeginSet starts the set n, with the given legend, if not empty. Sets must be begun
// in order, and the previous one ended.
func (W *Writer) BeginSet(n int, legend string) {
	if W.inSet {
		W.EndSet()
	}
	if legend != "" {
		W.printf("@    s%d legend %q\n", n, legend)
	}
	W.printf("@target G0.S%d\n", n)
	if n > 0 {
		W.printf("@type xy\n")
	}
	W.inSet = true
	W.ncols = -1
}

// Row writes x and the values in ys. All rows of a set must have the same number of values.
func (W *Writer) Row(x float64, ys ...float64) {
	if W.err != nil {
		return
	}
	if W.ncols >= 0 && len(ys) != W.ncols {
		W.err = fmt.Errorf("goSHG/xvg.Writer.Row: %d values in a row, previous rows had %d", len(ys), W.ncols)
		return
	}
	W.ncols = len(ys)
	var b strings.Builder
	fmt.Fprintf(&b, "%10g", x)
	for _, y := range ys {
		fmt.Fprintf(&b, " %10g", y)
	}
	b.WriteByte('\n')
	_, W.err = W.w.WriteString(b.String())
}

// EndSet ends the current set.
func (W *Writer) EndSet() {
	if !W.inSet {
		return
	}
	W.printf("&\n")
	W.inSet = false
}

// Close flushes the output, closes the file if the Writer was obtained with Create, and
// returns the first error found while writing.
func (W *Writer) Close() error {
	if W.closed {
		return W.err
	}
	W.closed = true
	if W.err == nil {
		W.err = W.w.Flush()
	}
	if W.c != nil {
		if err := W.c.Close(); W.err == nil {
			W.err = err
		}
	}
	if W.err != nil && W.name != "" {
		W.err = fmt.Errorf("goSHG/xvg: writing %s: %w", W.name, W.err)
	}
	return W.err
}
