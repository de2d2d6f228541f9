/*
 * gro.go, part of goSHG
 *
 * Copyright 2024 The goSHG authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

// Package gro reads multi-frame Gromacs GRO files, as trajectories and as topologies.
package gro

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	shg "github.com/rmera/goshg"
	"github.com/rmera/goshg/top"
	v3 "github.com/rmera/goshg/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Columns of the fixed-width atom lines.
const (
	resnrEnd   = 5
	resnameEnd = 10
	nameEnd    = 15
	coordStart = 20
)

// Traj is a GRO trajectory open for reading. It fulfills shg.Traj.
type Traj struct {
	f        *os.File
	r        *bufio.Reader
	natoms   int
	width    int // width of each coordinate field
	filename string
	readable bool
	frames   int
	pending  string // title line of the next frame, already read
}

// New opens a GRO file and reads the header of its first frame.
func New(filename string) (*Traj, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), filename, []string{"New"}, true}
	}
	T := &Traj{f: f, r: bufio.NewReader(f), filename: filename}
	T.pending, err = T.r.ReadString('\n')
	if err != nil {
		f.Close()
		return nil, Error{"Can't read the title line: " + err.Error(), filename, []string{"New"}, true}
	}
	n, err := T.r.Peek(64)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, Error{"Can't read the atom count: " + err.Error(), filename, []string{"New"}, true}
	}
	first, _, _ := strings.Cut(string(n), "\n")
	T.natoms, err = strconv.Atoi(strings.TrimSpace(first))
	if err != nil || T.natoms <= 0 {
		f.Close()
		return nil, Error{fmt.Sprintf("Invalid atom count '%s'", first), filename, []string{"New"}, true}
	}
	T.readable = true
	return T, nil
}

// Readable returns true while frames can be read.
func (T *Traj) Readable() bool {
	return T.readable
}

// Len returns the number of atoms per frame.
func (T *Traj) Len() int {
	return T.natoms
}

// Next reads the next frame into c, or discards it, if c is nil, and the box vectors, row by row,
// into box[0], if given. When the file ends, an error that fulfills shg.LastFrameError is returned.
func (T *Traj) Next(c *v3.Matrix, box ...[]float64) error {
	if !T.readable {
		return Error{TrajUnIni, T.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != T.natoms {
		return Error{fmt.Sprintf("got a %d-atom matrix, need %d", c.NVecs(), T.natoms), T.filename, []string{"Next"}, true}
	}
	var err error
	if T.pending == "" {
		T.pending, err = T.r.ReadString('\n')
		if strings.TrimSpace(T.pending) == "" && err == io.EOF {
			T.Close()
			return newlastFrameError(T.filename, "Next")
		}
		if err != nil {
			return T.frameError("can't read the title line", err)
		}
	}
	T.pending = ""
	l, err := T.r.ReadString('\n')
	if err != nil {
		return T.frameError("can't read the atom count", err)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(l)); err != nil || n != T.natoms {
		return T.frameError(fmt.Sprintf("frame has '%s' atoms, expected %d", strings.TrimSpace(l), T.natoms), nil)
	}
	var x [3]float64
	for i := 0; i < T.natoms; i++ {
		l, err = T.r.ReadString('\n')
		if err != nil && !(err == io.EOF && l != "") {
			return T.frameError(fmt.Sprintf("can't read atom %d", i+1), err)
		}
		if c == nil {
			continue
		}
		if T.width == 0 {
			T.width = fieldWidth(l)
		}
		if err = parseCoords(l, T.width, &x); err != nil {
			return T.frameError(fmt.Sprintf("atom %d", i+1), err)
		}
		c.SetVec(i, r3.Vec{X: x[0], Y: x[1], Z: x[2]})
	}
	l, err = T.r.ReadString('\n')
	if err != nil && !(err == io.EOF && l != "") {
		return T.frameError("can't read the box line", err)
	}
	b, err := parseBox(l)
	if err != nil {
		return T.frameError("box line", err)
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		copy(box[0], b[:])
	}
	T.frames++
	return nil
}

func (T *Traj) frameError(msg string, err error) error {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return Error{fmt.Sprintf("frame %d: %s", T.frames, msg), T.filename, []string{"Next"}, true}
}

// Close closes the file. The trajectory can't be read afterwards.
func (T *Traj) Close() {
	if !T.readable {
		return
	}
	T.f.Close()
	T.readable = false
}

// fieldWidth obtains the width of the coordinate fields from the distance between
// the first two decimal points, as Gromacs allows any precision.
func fieldWidth(line string) int {
	if len(line) <= coordStart {
		return 8
	}
	s := line[coordStart:]
	first := strings.IndexByte(s, '.')
	if first < 0 {
		return 8
	}
	second := strings.IndexByte(s[first+1:], '.')
	if second < 0 {
		return 8
	}
	return second + 1
}

func parseCoords(line string, width int, x *[3]float64) error {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < coordStart+3*width {
		return fmt.Errorf("line too short for coordinates: '%s'", line)
	}
	for j := 0; j < 3; j++ {
		s := strings.TrimSpace(line[coordStart+j*width : coordStart+(j+1)*width])
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %w", j, s, err)
		}
		x[j] = v
	}
	return nil
}

// parseBox reads the 3 or 9 numbers of the GRO box line, in the Gromacs order
// v1(x) v2(y) v3(z) v1(y) v1(z) v2(x) v2(z) v3(x) v3(y), and returns the box vectors row by row.
func parseBox(line string) ([9]float64, error) {
	var b [9]float64
	f := strings.Fields(line)
	if len(f) != 3 && len(f) != 9 {
		return b, fmt.Errorf("%d numbers in '%s', need 3 or 9", len(f), strings.TrimSpace(line))
	}
	var v [9]float64
	for i, s := range f {
		var err error
		v[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return b, fmt.Errorf("can't parse box component %d (%s): %w", i, s, err)
		}
	}
	b[0], b[4], b[8] = v[0], v[1], v[2]
	b[1], b[2], b[3], b[5], b[6], b[7] = v[3], v[4], v[5], v[6], v[7], v[8]
	return b, nil
}

// Topology holds the per-atom data of a GRO file.
type Topology struct {
	Title    string
	ResIDs   []int
	ResNames []string
	Names    []string
}

// Len returns the number of atoms.
func (T *Topology) Len() int {
	return len(T.Names)
}

// Molecules splits the atoms into molecules, one per residue.
func (T *Topology) Molecules() (*top.Molecules, error) {
	M, err := top.FromResidues(T.ResIDs, T.ResNames)
	if err != nil {
		return nil, shg.ErrDecorate(err, "Topology.Molecules")
	}
	return M, nil
}

// ReadTopology reads the atom and residue information in the first frame of a GRO file.
func ReadTopology(filename string) (*Topology, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), filename, []string{"ReadTopology"}, true}
	}
	defer f.Close()
	return readTopology(bufio.NewReader(f), filename)
}

func readTopology(r *bufio.Reader, filename string) (*Topology, error) {
	errf := func(msg string) error { return Error{msg, filename, []string{"ReadTopology"}, true} }
	title, err := r.ReadString('\n')
	if err != nil {
		return nil, errf("can't read the title line: " + err.Error())
	}
	l, err := r.ReadString('\n')
	if err != nil {
		return nil, errf("can't read the atom count: " + err.Error())
	}
	n, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil || n <= 0 {
		return nil, errf(fmt.Sprintf("invalid atom count '%s'", strings.TrimSpace(l)))
	}
	T := &Topology{
		Title:    strings.TrimSpace(title),
		ResIDs:   make([]int, n),
		ResNames: make([]string, n),
		Names:    make([]string, n),
	}
	for i := 0; i < n; i++ {
		l, err = r.ReadString('\n')
		if err != nil && !(err == io.EOF && l != "") {
			return nil, errf(fmt.Sprintf("can't read atom %d: %s", i+1, err.Error()))
		}
		if len(l) < coordStart {
			return nil, errf(fmt.Sprintf("atom line %d too short: '%s'", i+1, strings.TrimSpace(l)))
		}
		T.ResIDs[i], err = strconv.Atoi(strings.TrimSpace(l[:resnrEnd]))
		if err != nil {
			return nil, errf(fmt.Sprintf("can't read the residue number of atom %d: %s", i+1, err.Error()))
		}
		T.ResNames[i] = strings.TrimSpace(l[resnrEnd:resnameEnd])
		T.Names[i] = strings.TrimSpace(l[resnameEnd:nameEnd])
	}
	return T, nil
}

// Error is the general structure for GRO file errors. It fullfills shg.Error and shg.TrajError
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("gro file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "gro") associated to the error
func (err Error) Format() string { return "gro" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIni    = "Traj object uninitialized to read"
	UnableToOpen = "Unable to open file"
)

// lastFrameError implements shg.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// lastFrameError does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "gro" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}

var _ shg.Traj = (*Traj)(nil)
