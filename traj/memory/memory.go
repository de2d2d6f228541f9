/*
 * memory.go, part of goSHG.
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

// Package memory implements a trajectory held in memory. It is mostly useful to
// feed synthetic systems to the analysis code.
package memory

import (
	"fmt"

	v3 "github.com/rmera/goshg/v3"
)

// Traj is a trajectory made of frames in memory. It fulfills shg.Traj.
type Traj struct {
	frames []*v3.Matrix
	boxes  [][]float64
	natoms int
	cur    int
	reads  int
	failAt int
}

// New returns a trajectory with the given frames, all with the same number of atoms.
// boxes can have one element per frame, a single element used for all frames, or be nil.
func New(frames []*v3.Matrix, boxes [][]float64) (*Traj, error) {
	if len(frames) == 0 {
		return nil, Error{"no frames given", []string{"New"}}
	}
	natoms := frames[0].NVecs()
	for i, f := range frames {
		if f.NVecs() != natoms {
			return nil, Error{fmt.Sprintf("frame %d has %d atoms, expected %d", i, f.NVecs(), natoms), []string{"New"}}
		}
	}
	if len(boxes) > 1 && len(boxes) != len(frames) {
		return nil, Error{fmt.Sprintf("%d boxes for %d frames", len(boxes), len(frames)), []string{"New"}}
	}
	return &Traj{frames: frames, boxes: boxes, natoms: natoms, failAt: -1}, nil
}

// FailAt makes the trajectory return a read error when frame i is requested.
func (T *Traj) FailAt(i int) {
	T.failAt = i
}

// Readable returns true while there are frames left.
func (T *Traj) Readable() bool {
	return T.cur < len(T.frames)
}

// Len returns the number of atoms per frame.
func (T *Traj) Len() int {
	return T.natoms
}

// Reads returns how many times Next has been called.
func (T *Traj) Reads() int {
	return T.reads
}

// Next copies the next frame into c, if c is not nil, and the box into box[0], if given.
func (T *Traj) Next(c *v3.Matrix, box ...[]float64) error {
	T.reads++
	if T.cur == T.failAt {
		return Error{fmt.Sprintf("frame %d could not be read", T.cur), []string{"Next"}}
	}
	if T.cur >= len(T.frames) {
		return lastFrameError{}
	}
	if c != nil {
		if c.NVecs() != T.natoms {
			return Error{fmt.Sprintf("got a %d-atom matrix, need %d", c.NVecs(), T.natoms), []string{"Next"}}
		}
		c.Copy(T.frames[T.cur])
	}
	if len(box) > 0 && len(T.boxes) > 0 {
		b := T.boxes[0]
		if len(T.boxes) > 1 {
			b = T.boxes[T.cur]
		}
		copy(box[0], b)
	}
	T.cur++
	return nil
}

// Error is the error of the package. It fulfills shg.TrajError.
type Error struct {
	message string
	deco    []string
}

func (E Error) Error() string { return "memory trajectory: " + E.message }

// Decorate adds dec to the decoration slice and returns it.
func (E Error) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

func (E Error) Critical() bool   { return true }
func (E Error) FileName() string { return "" }
func (E Error) Format() string   { return "memory" }

// lastFrameError implements shg.LastFrameError
type lastFrameError struct{}

func (E lastFrameError) NormalLastFrameTermination() {}
func (E lastFrameError) FileName() string           { return "" }
func (E lastFrameError) Error() string              { return "EOF" }
func (E lastFrameError) Critical() bool             { return false }
func (E lastFrameError) Format() string             { return "memory" }
func (E lastFrameError) Decorate(string) []string   { return nil }
