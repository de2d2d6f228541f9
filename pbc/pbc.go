/*
 * pbc.go, part of goSHG.
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

// Package pbc implements simulation boxes and minimum-image displacements
// for rectangular and triclinic cells, following the GROMACS conventions
// (box vectors as rows, a along x, b in the xy plane).
package pbc

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Type is the kind of periodicity of a system.
type Type int

const (
	None Type = iota
	XYZ
	XY
)

func (t Type) String() string {
	switch t {
	case None:
		return "no"
	case XYZ:
		return "xyz"
	case XY:
		return "xy"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType returns the Type named by s ("xyz", "xy", "no"/"none").
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xyz", "":
		return XYZ, nil
	case "xy":
		return XY, nil
	case "no", "none", "off":
		return None, nil
	}
	return None, &Error{fmt.Sprintf("unknown periodicity %q", s), []string{"ParseType"}}
}

// Box is a simulation cell. Each row is one box vector.
type Box [3]r3.Vec

// BoxFromSlice builds a Box from 9 numbers, row-major (a, then b, then c).
// Shorter slices are an error. A slice of exactly 3 numbers is taken as a
// rectangular box.
func BoxFromSlice(b []float64) (Box, error) {
	var B Box
	switch {
	case len(b) >= 9:
		for i := 0; i < 3; i++ {
			B[i] = r3.Vec{X: b[3*i], Y: b[3*i+1], Z: b[3*i+2]}
		}
	case len(b) == 3:
		B[0].X, B[1].Y, B[2].Z = b[0], b[1], b[2]
	default:
		return B, &Error{fmt.Sprintf("box needs 3 or 9 numbers, got %d", len(b)), []string{"BoxFromSlice"}}
	}
	return B, nil
}

// Slice returns the box as 9 row-major numbers.
func (B Box) Slice() []float64 {
	ret := make([]float64, 9)
	for i, v := range B {
		ret[3*i], ret[3*i+1], ret[3*i+2] = v.X, v.Y, v.Z
	}
	return ret
}

// Dense returns the box as a 3x3 gonum matrix.
func (B Box) Dense() *mat.Dense {
	return mat.NewDense(3, 3, B.Slice())
}

// Volume returns the volume of the cell, the determinant of the box matrix.
func (B Box) Volume() float64 {
	return mat.Det(B.Dense())
}

// Area returns the area of the xy face of the cell.
func (B Box) Area() float64 {
	return math.Abs(B[0].X*B[1].Y - B[0].Y*B[1].X)
}

// IsZero is true if the box has no volume information.
func (B Box) IsZero() bool {
	return B == Box{}
}

// InvVolume returns the inverse of the volume of the box, or the inverse of
// the area of its xy face for XY periodicity.
func (B Box) InvVolume(t Type) float64 {
	if t == XY {
		return 1 / B.Area()
	}
	return 1 / B.Volume()
}

// Guess returns the most likely periodicity for a box. A zero box is not periodic,
// a box with no height is periodic in x and y only.
func Guess(B Box) Type {
	switch {
	case B[0].X == 0 || B[1].Y == 0:
		return None
	case B[2].Z == 0:
		return XY
	}
	return XYZ
}

// MaxCutoff2 returns the square of the largest cutoff for which
// a minimum-image displacement is unique for any pair of points.
func (B Box) MaxCutoff2(t Type) float64 {
	// half the shortest box vector
	minhv2 := math.Min(r3.Norm2(B[0]), r3.Norm2(B[1]))
	if t != XY {
		minhv2 = math.Min(minhv2, r3.Norm2(B[2]))
	}
	minhv2 *= 0.25
	// shortest perpendicular height, assuming a lower-triangular box
	minss := math.Min(B[0].X, B[1].Y)
	if t != XY {
		minss = math.Min(B[0].X, math.Min(B[1].Y-math.Abs(B[2].Y), B[2].Z))
	}
	return math.Min(minhv2, minss*minss)
}

// RMax2 returns the squared largest pair distance considered in a run.
// Periodic systems use the largest unique minimum-image distance, non-periodic
// ones (3 times the largest edge)^2.
func RMax2(t Type, B Box) float64 {
	if t == None {
		l := 3 * math.Max(B[0].X, math.Max(B[1].Y, B[2].Z))
		return l * l
	}
	return B.MaxCutoff2(t)
}

// Dx returns the minimum-image displacement a-b. Triclinic cells are
// handled by shifting from the last box vector down; no further corrections
// are attempted, so the result is exact only within MaxCutoff2.
func (B Box) Dx(t Type, a, b r3.Vec) r3.Vec {
	d := r3.Sub(a, b)
	switch t {
	case XYZ:
		if B[2].Z != 0 {
			d = r3.Sub(d, r3.Scale(math.Round(d.Z/B[2].Z), B[2]))
		}
		fallthrough
	case XY:
		if B[1].Y != 0 {
			d = r3.Sub(d, r3.Scale(math.Round(d.Y/B[1].Y), B[1]))
		}
		if B[0].X != 0 {
			d = r3.Sub(d, r3.Scale(math.Round(d.X/B[0].X), B[0]))
		}
	}
	return d
}

// Error is the error type of the package, it fulfills shg.Error.
// It is always returned as a pointer, so decorations stick.
type Error struct {
	message string
	deco    []string
}

func (err *Error) Error() string {
	return "pbc: " + err.message + " [" + strings.Join(err.deco, " <- ") + "]"
}

// Decorate adds dec to the decoration slice of the error, and returns it.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical is always true for pbc errors.
func (err *Error) Critical() bool { return true }
