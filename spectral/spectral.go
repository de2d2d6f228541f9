/*
 * spectral.go, part of goSHG
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

// Package spectral handles the reciprocal-space side of the scattering calculation:
// the grid of scattering vector moduli, the window that damps real-space kernels near
// the cutoff, and the transform of a radial distribution function into a structure factor.
package spectral

import (
	"fmt"
	"math"

	shg "github.com/rmera/goshg"
)

// QGrid is a set of evenly spaced scattering vector moduli, Q[i]=Min+i*Step.
type QGrid struct {
	Min  float64
	Step float64
	Q    []float64
}

// NewQGrid returns the grid of nbinq points from the smallest modulus that fits in a sphere
// of radius rmax, sqrt(2)*2pi/rmax, towards maxq. maxq itself is not included.
func NewQGrid(rmax, maxq float64, nbinq int) (*QGrid, error) {
	if rmax <= 0 {
		return nil, shg.NewConfigError("NewQGrid", "invalid cutoff radius %g", rmax)
	}
	if nbinq < 1 {
		return nil, shg.NewConfigError("NewQGrid", "nbinq=%d, need at least one q point", nbinq)
	}
	min := MinQ(rmax)
	if maxq <= min {
		return nil, shg.NewConfigError("NewQGrid", "maxq=%g is not larger than the smallest q=%g allowed by rmax=%g", maxq, min, rmax)
	}
	G := &QGrid{Min: min, Step: (maxq - min) / float64(nbinq), Q: make([]float64, nbinq)}
	for i := range G.Q {
		G.Q[i] = G.Min + G.Step*float64(i)
	}
	return G, nil
}

// MinQ returns the smallest scattering vector modulus that can be sampled within
// a sphere of radius rmax.
func MinQ(rmax float64) float64 {
	return math.Sqrt2 * 2 * math.Pi / rmax
}

// Len returns the number of points in the grid.
func (G *QGrid) Len() int {
	return len(G.Q)
}

func (G *QGrid) String() string {
	if len(G.Q) == 0 {
		return "empty q grid"
	}
	return fmt.Sprintf("%d q points from %.4g to %.4g, step %.4g", len(G.Q), G.Q[0], G.Q[len(G.Q)-1], G.Step)
}

// Window damps real-space contributions between Fade and RMax. Weight is 1 up to Fade
// and cos^2 beyond it, reaching 0 at RMax. A zero Fade disables the window.
type Window struct {
	Fade float64
	RMax float64
	k    float64 // pi/(2*(RMax-Fade))
}

// NewWindow returns the window for the given fade and cutoff radii.
// fade must be 0, or between 0 and rmax.
func NewWindow(fade, rmax float64) (Window, error) {
	if fade < 0 || (fade > 0 && fade >= rmax) {
		return Window{}, shg.NewConfigError("NewWindow", "fade=%g must be 0 or smaller than rmax=%g", fade, rmax)
	}
	w := Window{Fade: fade, RMax: rmax}
	if fade > 0 {
		w.k = math.Pi / (2 * (rmax - fade))
	}
	return w, nil
}

// Enabled is true if the window actually damps anything.
func (w Window) Enabled() bool {
	return w.Fade > 0
}

// Weight returns the window value at r.
func (w Window) Weight(r float64) float64 {
	if w.Fade == 0 || r <= w.Fade {
		return 1
	}
	if r >= w.RMax {
		return 0
	}
	c := math.Cos((r - w.Fade) * w.k)
	return c * c
}

// FromRDF returns the structure factor at each q from the radial distribution function g
// sampled at r, with spacing binwidth, for a system of number density rho:
// S(q) = 1 + 4 pi rho sum binwidth*r*(g(r)-1)*sin(qr)/q*w(r).
func FromRDF(r, g, q []float64, binwidth, rho float64, w Window) []float64 {
	if len(r) != len(g) {
		panic(fmt.Sprintf("goSHG/spectral.FromRDF: %d radii for %d g(r) values", len(r), len(g)))
	}
	ret := make([]float64, len(q))
	for k, qq := range q {
		var s float64
		for i, ri := range r {
			s += w.Weight(ri) * binwidth * ri * math.Sin(qq*ri) * (g[i] - 1) / qq
		}
		ret[k] = s*4*math.Pi*rho + 1
	}
	return ret
}

// AnalyticalIntegral returns, for each q, 4 pi n times the integral from 0 to rmax of
// r*sin(qr)/q*w(r), the contribution of an uncorrelated (g=1) sphere of radius rmax
// with n molecules.
func AnalyticalIntegral(q []float64, rmax, fade float64, n int) []float64 {
	ret := make([]float64, len(q))
	fn := 4 * math.Pi * float64(n)
	for i, qq := range q {
		if fade == 0 {
			ret[i] = fn * (math.Sin(qq*rmax) - qq*rmax*math.Cos(qq*rmax)) / (qq * qq * qq)
			continue
		}
		ret[i] = fn * (math.Sin(fade*qq) - fade*qq*math.Cos(fade*qq)) / (qq * qq * qq)
		ret[i] += fn * fadeTail(qq, rmax, fade)
	}
	return ret
}

// fadeTail is the integral from fade to rmax of r*sin(qr)/q*cos^2((r-fade)*pi/(2(rmax-fade))).
func fadeTail(q, rmax, fade float64) float64 {
	pi2 := math.Pi * math.Pi
	d := fade - rmax
	d2 := d * d
	q2 := q * q
	a := math.Pi + q*d // pi + q(fade-rmax)
	b := math.Pi - q*d // pi + q(rmax-fade)
	num := fade*q*a*(pi2-2*q2*d2)*b*math.Cos(fade*q) -
		pi2*q*a*rmax*b*math.Cos(q*rmax) +
		(-pi2*pi2+pi2*q2*d2-2*q2*q2*d2*d2)*math.Sin(fade*q) +
		pi2*(pi2-3*q2*d2)*math.Sin(q*rmax)
	return num / (2 * q2 * q * a * a * b * b)
}
