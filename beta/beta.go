/*
 * beta.go, part of goSHG.
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

// Package beta handles the first hyperpolarizability of rigid 3-atom
// molecules with C2v symmetry: the molecular tensor, the lab polarization
// directions and the projection of the tensor, rotated into the lab frame,
// onto those directions.
package beta

import (
	"fmt"
	"math"

	shg "github.com/rmera/goshg"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tensor holds the non-zero components of a C2v first hyperpolarizability,
// in the molecular frame. The first index is the output (second harmonic) direction.
type Tensor struct {
	ZXX, ZYY, ZZZ float64
	XXZ, XZX      float64
	YYZ, YZY      float64
}

// Water returns the hyperpolarizability of liquid water, in atomic units.
// With kleinmann, the xxz, xzx, yyz and yzy components take the values of
// zxx and zyy; without it they are zero.
func Water(kleinmann bool) Tensor {
	t := Tensor{ZXX: 5.7, ZYY: 10.9, ZZZ: 31.6}
	if kleinmann {
		t.XXZ, t.XZX = t.ZXX, t.ZXX
		t.YYZ, t.YZY = t.ZYY, t.ZYY
	}
	return t
}

// At returns the i,j,k component of the full rank-3 tensor, with 0,1,2 for x,y,z.
func (T Tensor) At(i, j, k int) float64 {
	switch [3]int{i, j, k} {
	case [3]int{2, 0, 0}:
		return T.ZXX
	case [3]int{2, 1, 1}:
		return T.ZYY
	case [3]int{2, 2, 2}:
		return T.ZZZ
	case [3]int{0, 0, 2}:
		return T.XXZ
	case [3]int{0, 2, 0}:
		return T.XZX
	case [3]int{1, 1, 2}:
		return T.YYZ
	case [3]int{1, 2, 1}:
		return T.YZY
	}
	return 0
}

// Project returns the tensor rotated into the lab frame defined by f and
// contracted with the polarizations. Only the 7 non-zero components are used.
func (T Tensor) Project(f MolFrame, p Polarization) float64 {
	xo, xi1, xi2 := r3.Dot(f.X, p.Out), r3.Dot(f.X, p.In1), r3.Dot(f.X, p.In2)
	yo, yi1, yi2 := r3.Dot(f.Y, p.Out), r3.Dot(f.Y, p.In1), r3.Dot(f.Y, p.In2)
	zo, zi1, zi2 := r3.Dot(f.Z, p.Out), r3.Dot(f.Z, p.In1), r3.Dot(f.Z, p.In2)
	return T.ZXX*zo*xi1*xi2 +
		T.ZYY*zo*yi1*yi2 +
		T.ZZZ*zo*zi1*zi2 +
		T.XXZ*xo*xi1*zi2 +
		T.XZX*xo*zi1*xi2 +
		T.YYZ*yo*yi1*zi2 +
		T.YZY*yo*zi1*yi2
}

// Polarization holds the lab directions of the outgoing and the two incoming fields.
type Polarization struct {
	Out, In1, In2 r3.Vec
}

// NewPolarization returns the polarization given the lab axes (0, 1 or 2, for x, y and z)
// of the outgoing and incoming fields.
func NewPolarization(out, in1, in2 int) (Polarization, error) {
	var p Polarization
	var err error
	if p.Out, err = axis(out, "out"); err != nil {
		return p, err
	}
	if p.In1, err = axis(in1, "in1"); err != nil {
		return p, err
	}
	p.In2, err = axis(in2, "in2")
	return p, err
}

func axis(i int, name string) (r3.Vec, error) {
	switch i {
	case 0:
		return r3.Vec{X: 1}, nil
	case 1:
		return r3.Vec{Y: 1}, nil
	case 2:
		return r3.Vec{Z: 1}, nil
	}
	return r3.Vec{}, shg.NewConfigError("NewPolarization", "polarization p%s=%d, must be 0, 1 or 2", name, i)
}

// MolFrame is the local frame of a molecule. X and Z are obtained from the
// bond vectors, Y is X cross Z.
type MolFrame struct {
	X, Y, Z r3.Vec
}

// Normalization holds the inverse lengths used to turn the (unnormalized) x and z
// molecular axes into unit vectors.
type Normalization struct {
	InvX, InvZ float64
}

// NewNormalization obtains the normalization from the displacements d1=origin-partner1 and
// d2=origin-partner2 of a reference molecule.
func NewNormalization(d1, d2 r3.Vec) (Normalization, error) {
	lx := r3.Norm(r3.Sub(d1, d2))
	lz := r3.Norm(r3.Add(d1, d2))
	if lx == 0 || lz == 0 || math.IsNaN(lx+lz) {
		return Normalization{}, shg.NewConfigError("NewNormalization", "degenerate reference molecule: |x|=%g |z|=%g", lx, lz)
	}
	return Normalization{InvX: 1 / lx, InvZ: 1 / lz}, nil
}

func (N Normalization) String() string {
	return fmt.Sprintf("1/|x|=%.6g 1/|z|=%.6g", N.InvX, N.InvZ)
}

// Builder produces the lab-frame hyperpolarizability of each molecule.
// With Renormalize false, every molecule is scaled by Norm, which is exact
// only for perfectly rigid molecules. Renormalize makes each frame exact at
// the cost of two square roots per molecule.
type Builder struct {
	Tensor      Tensor
	Pol         Polarization
	Norm        Normalization
	Renormalize bool
}

// Frame returns the molecular frame from the displacements d1=origin-partner1 and d2=origin-partner2.
func (B *Builder) Frame(d1, d2 r3.Vec) MolFrame {
	x := r3.Sub(d1, d2)
	z := r3.Add(d1, d2)
	if B.Renormalize {
		x = r3.Unit(x)
		z = r3.Unit(z)
	} else {
		x = r3.Scale(B.Norm.InvX, x)
		z = r3.Scale(B.Norm.InvZ, z)
	}
	return MolFrame{X: x, Y: r3.Cross(x, z), Z: z}
}

// Project returns the lab-frame hyperpolarizability, projected on the polarizations,
// of the molecule with displacements d1=origin-partner1 and d2=origin-partner2.
func (B *Builder) Project(d1, d2 r3.Vec) float64 {
	return B.Tensor.Project(B.Frame(d1, d2), B.Pol)
}
