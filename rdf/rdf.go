/*
 * rdf.go, part of goSHG
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

// Package rdf obtains molecular radial distribution functions from
// histograms of pair distances accumulated over a trajectory.
package rdf

import (
	"math"

	"github.com/rmera/goshg/histo"
)

type Options struct {
	binwidth  float64
	faderdf   float64
	normalize bool
	dims      int
}

// DefaultOptions returns an Options with the default options.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.binwidth = 0.002
	ret.faderdf = 0
	ret.normalize = true
	ret.dims = 3
	return ret
}

// BinWidth returns the spacing of the g(r) points, and sets it
// if a valid value is given.
func (o *Options) BinWidth(bw ...float64) float64 {
	ret := o.binwidth
	if len(bw) > 0 && bw[0] > 0 {
		o.binwidth = bw[0]
	}
	return ret
}

// FadeRDF returns the distance beyond which g(r) is smoothly taken to 1,
// and sets it if a valid value is given. 0 means no fading.
func (o *Options) FadeRDF(f ...float64) float64 {
	ret := o.faderdf
	if len(f) > 0 && f[0] >= 0 {
		o.faderdf = f[0]
	}
	return ret
}

// Normalize returns whether g(r) is normalized by the ideal-gas shell populations,
// and sets it, if a value is given. Unnormalized functions are raw count densities.
func (o *Options) Normalize(n ...bool) bool {
	ret := o.normalize
	if len(n) > 0 {
		o.normalize = n[0]
	}
	return ret
}

// Dims returns the dimensionality of the system, 3, or 2 for systems periodic only in xy,
// and sets it if 2 or 3 is given.
func (o *Options) Dims(d ...int) int {
	ret := o.dims
	if len(d) > 0 && (d[0] == 2 || d[0] == 3) {
		o.dims = d[0]
	}
	return ret
}

// NewCounts returns an empty histogram for pair distances up to rmax. Bins are half as
// wide as binwidth, so that two consecutive bins are centered at a multiple of binwidth.
func NewCounts(rmax, binwidth float64, ID ...int) *histo.Data {
	nbin := int(rmax * 2 / binwidth)
	return histo.NewUniform(binwidth/2, nbin+1, ID...)
}

// Bin adds a pair at distance r to h, which must have been obtained with NewCounts.
// Distances beyond the histogram go to the last bin.
func Bin(h *histo.Data, r float64) {
	i := int(r / h.Uniform())
	if i >= h.Bins() {
		i = h.Bins() - 1
	}
	h.AddIndex(i)
}

// ShellVolumes returns the volume of the shells between radii (i-1/2)*binwidth and
// (i+1/2)*binwidth for i in [0,n), the first one being a sphere of radius binwidth/2.
// For 2 dims, the shells are annuli and their areas are returned.
func ShellVolumes(n int, binwidth float64, dims int) []float64 {
	ret := make([]float64, n)
	prev := 0.0
	for i := range ret {
		r := (float64(i) + 0.5) * binwidth
		v := (4.0 / 3.0) * math.Pi * r * r * r
		if dims == 2 {
			v = math.Pi * r * r
		}
		ret[i] = v - prev
		prev = v
	}
	return ret
}

// RDF is a radial distribution function at R[i]=i*binwidth.
type RDF struct {
	R []float64
	G []float64
	// Data is the number of points obtained from actual pair counts. Points beyond
	// were filled with 1.
	Data int
}

// Compute obtains g(r) from the pair counts accumulated over frames for a group of n molecules,
// with invvol the inverse volume (or area) averaged over the frames.
func Compute(counts *histo.Data, frames, n int, invvol float64, o *Options) *RDF {
	if o == nil {
		o = DefaultOptions()
	}
	bw := o.binwidth
	c := counts.View()
	npoints := len(c) / 2
	shells := ShellVolumes(npoints, bw, o.dims)
	fn, ff := float64(n), float64(frames)
	normfac := 2.0 / (ff * invvol * fn * fn)
	total := int(math.Max(float64(npoints), 1+2*o.faderdf/bw))
	ret := &RDF{R: make([]float64, total), G: make([]float64, total), Data: npoints}
	for i := 0; i < npoints; i++ {
		r := float64(i) * bw
		ret.R[i] = r
		j := c[0]
		if i > 0 {
			j = c[2*i-1] + c[2*i]
		}
		switch {
		case o.faderdf > 0 && r >= o.faderdf:
			ret.G[i] = Fade(r, j*normfac/shells[i], o.faderdf)
		case o.normalize:
			ret.G[i] = j * normfac / shells[i]
		default:
			ret.G[i] = j / (bw * fn * ff)
		}
	}
	for i := npoints; i < total; i++ {
		ret.R[i] = float64(i) * bw
		ret.G[i] = 1
	}
	return ret
}

// Fade takes the g value at r smoothly towards 1, starting from faderdf.
func Fade(r, g, faderdf float64) float64 {
	d := r/faderdf - 1
	return 1 + (g-1)*math.Exp(-16*d*d)
}
