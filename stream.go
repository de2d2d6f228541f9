/*
 * stream.go, part of goSHG.
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

package shg

import (
	"github.com/rmera/goshg/pbc"
	v3 "github.com/rmera/goshg/v3"
)

// Frame is one snapshot of a trajectory. It is borrowed from the Stream
// that produced it, and overwritten by the next call to Stream.Next.
type Frame struct {
	Index  int
	Coords *v3.Matrix
	Box    pbc.Box
}

// Stream is a lazy, finite sequence of frames read from a Traj.
// It can't be restarted. Use it as:
//
//	for S.Next() {
//		f := S.Frame()
//		...
//	}
//	if err := S.Err(); err != nil {
//		...
//	}
type Stream struct {
	traj  Traj
	frame *Frame
	box   []float64
	count int
	err   error
	done  bool
}

// NewStream returns a Stream over traj. The trajectory must be readable and have
// at least one atom per frame.
func NewStream(traj Traj) (*Stream, error) {
	if traj == nil || !traj.Readable() {
		return nil, NewStreamError("NewStream", 0, nil, "trajectory not readable")
	}
	if traj.Len() <= 0 {
		return nil, NewStreamError("NewStream", 0, nil, "trajectory has %d atoms per frame", traj.Len())
	}
	S := &Stream{traj: traj, box: make([]float64, 9)}
	S.frame = &Frame{Coords: v3.Zeros(traj.Len())}
	return S, nil
}

// Next reads the next frame. It returns false when the trajectory is over
// or a read fails; Err tells both cases apart.
func (S *Stream) Next() bool {
	if S.done {
		return false
	}
	for i := range S.box {
		S.box[i] = 0
	}
	err := S.traj.Next(S.frame.Coords, S.box)
	if err != nil {
		S.done = true
		if _, ok := err.(LastFrameError); ok {
			return false
		}
		S.err = NewStreamError("Stream.Next", S.count, err, "can't read frame")
		return false
	}
	//BoxFromSlice never fails with 9 numbers.
	S.frame.Box, _ = pbc.BoxFromSlice(S.box)
	S.frame.Index = S.count
	S.count++
	return true
}

// Frame returns the current frame. Only valid after Next returned true.
func (S *Stream) Frame() *Frame {
	return S.frame
}

// Err returns the error that stopped the stream, or nil if the trajectory
// simply ended.
func (S *Stream) Err() error {
	return S.err
}

// Count returns the number of frames read so far.
func (S *Stream) Count() int {
	return S.count
}

// Atoms returns the number of atoms per frame.
func (S *Stream) Atoms() int {
	return S.traj.Len()
}
