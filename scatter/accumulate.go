/*
 * accumulate.go, part of goSHG
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

package scatter

import (
	"math"

	"github.com/rmera/goshg/histo"
	"github.com/rmera/goshg/pbc"
	"github.com/rmera/goshg/rdf"
	"github.com/rmera/goshg/spectral"
	"github.com/rmera/goshg/top"
	"gonum.org/v1/gonum/spatial/r3"
)

// Accumulator holds the running sums of one group. The sums are per frame
// until Run divides them by the number of frames.
type Accumulator struct {
	Group      top.Group
	N          int
	Incoherent float64
	Coherent   []float64 // one element per q
	Total      []float64
	Counts     *histo.Data // pair distances, nil for methods that don't enumerate pairs
}

func newAccumulator(g top.Group, nq int, rmax, binwidth float64, pairwise bool, id int) *Accumulator {
	A := &Accumulator{
		Group:    g,
		N:        g.Len(),
		Coherent: make([]float64, nq),
		Total:    make([]float64, nq),
	}
	if pairwise {
		A.Counts = rdf.NewCounts(rmax, binwidth, id)
	}
	return A
}

// frameState holds the data of one group in the current frame, and the scratch
// space of the accumulation. It is cleared at the beginning of each group and frame.
type frameState struct {
	box   pbc.Box
	pbc   pbc.Type
	rmax2 float64
	q     []float64
	qdir  r3.Vec
	w     spectral.Window

	pos   []r3.Vec  // position of the first atom of each molecule
	beta  []float64 // lab-frame hyperpolarizability of each molecule
	sumsq float64   // sum of beta^2
	a, b  []float64 // per-q scratch
}

func newFrameState(maxmols int, q []float64, qdir r3.Vec, w spectral.Window, t pbc.Type, rmax2 float64) *frameState {
	return &frameState{
		pbc:   t,
		rmax2: rmax2,
		q:     q,
		qdir:  qdir,
		w:     w,
		pos:   make([]r3.Vec, 0, maxmols),
		beta:  make([]float64, 0, maxmols),
		a:     make([]float64, len(q)),
		b:     make([]float64, len(q)),
	}
}

func (s *frameState) reset(box pbc.Box) {
	s.box = box
	s.pos = s.pos[:0]
	s.beta = s.beta[:0]
	s.sumsq = 0
	for i := range s.a {
		s.a[i] = 0
		s.b[i] = 0
	}
}

func (s *frameState) add(pos r3.Vec, b float64) {
	s.pos = append(s.pos, pos)
	s.beta = append(s.beta, b)
	s.sumsq += b * b
}

// strategy folds one frame of one group into its accumulator.
type strategy interface {
	accumulate(s *frameState, acc *Accumulator)
}

// resolve returns the strategy for a validated configuration.
func resolve(c *Config) strategy {
	switch c.Method {
	case ModSumExp:
		return modSumExp{}
	case SumExp:
		if c.Spectrum {
			return sumExpSpectrum{}
		}
		return sumExpScalar{}
	default:
		if c.Spectrum {
			return cosmoSpectrum{}
		}
		return cosmoScalar{}
	}
}

// pairs calls kernel for every pair i<j within the cutoff, with the minimum-image
// displacement pos_i-pos_j, its length and beta_i*beta_j, and bins the distance.
func pairs(s *frameState, counts *histo.Data, kernel func(d r3.Vec, r, bb float64)) {
	n := len(s.pos)
	for i := 0; i < n-1; i++ {
		xi, bi := s.pos[i], s.beta[i]
		for j := i + 1; j < n; j++ {
			d := s.box.Dx(s.pbc, xi, s.pos[j])
			r2 := r3.Norm2(d)
			if r2 > s.rmax2 {
				continue
			}
			r := math.Sqrt(r2)
			rdf.Bin(counts, r)
			kernel(d, r, bi*s.beta[j])
		}
	}
}

// foldPairs adds the pair sums in s.a, each multiplied by scale(k), to the accumulator.
func foldPairs(s *frameState, acc *Accumulator, scale func(k int) float64) {
	invn := 1 / float64(len(s.pos))
	incoh := s.sumsq * invn
	acc.Incoherent += incoh
	for k, v := range s.a {
		coh := 2 * v * scale(k) * invn
		acc.Coherent[k] += coh
		acc.Total[k] += coh + incoh
	}
}

func one(int) float64 { return 1 }

// modSumExp: sum over pairs of beta_i*beta_j*cos(q k.r_ij), windowed beyond fade.
type modSumExp struct{}

func (modSumExp) accumulate(s *frameState, acc *Accumulator) {
	pairs(s, acc.Counts, func(d r3.Vec, r, bb float64) {
		bb *= s.w.Weight(r)
		proj := r3.Dot(s.qdir, d)
		for k, q := range s.q {
			s.a[k] += bb * math.Cos(q*proj)
		}
	})
	foldPairs(s, acc, one)
}

// cosmoSpectrum: sum over pairs of beta_i*beta_j*sin(qr)/r, divided by q at the end.
type cosmoSpectrum struct{}

func (cosmoSpectrum) accumulate(s *frameState, acc *Accumulator) {
	pairs(s, acc.Counts, func(_ r3.Vec, r, bb float64) {
		for k, q := range s.q {
			if r == 0 {
				s.a[k] += bb * q
				continue
			}
			s.a[k] += bb * math.Sin(q*r) / r
		}
	})
	foldPairs(s, acc, func(k int) float64 { return 1 / s.q[k] })
}

// cosmoScalar: sum over pairs of beta_i*beta_j*sin(q0 r)/(q0 r), windowed beyond fade.
type cosmoScalar struct{}

func (cosmoScalar) accumulate(s *frameState, acc *Accumulator) {
	q0 := s.q[0]
	pairs(s, acc.Counts, func(_ r3.Vec, r, bb float64) {
		s.a[0] += bb * s.w.Weight(r) * sinc(q0*r)
	})
	foldPairs(s, acc, one)
}

// sumExpSpectrum: |sum_i beta_i exp(i q k.x_i)|^2 at each q.
type sumExpSpectrum struct{}

func (sumExpSpectrum) accumulate(s *frameState, acc *Accumulator) {
	for i, x := range s.pos {
		proj := r3.Dot(s.qdir, x)
		b := s.beta[i]
		for k, q := range s.q {
			s.a[k] += b * math.Cos(q*proj)
			s.b[k] += b * math.Sin(q*proj)
		}
	}
	foldModulus(s, acc)
}

// sumExpScalar: |sum_i beta_i exp(i q0 k.x_i)|^2.
type sumExpScalar struct{}

func (sumExpScalar) accumulate(s *frameState, acc *Accumulator) {
	q0 := s.q[0]
	for i, x := range s.pos {
		proj := q0 * r3.Dot(s.qdir, x)
		s.a[0] += s.beta[i] * math.Cos(proj)
		s.b[0] += s.beta[i] * math.Sin(proj)
	}
	foldModulus(s, acc)
}

// foldModulus adds the squared modulus of the sums in s.a (real part) and s.b (imaginary part).
// The self terms are removed to obtain the coherent part.
func foldModulus(s *frameState, acc *Accumulator) {
	invn := 1 / float64(len(s.pos))
	acc.Incoherent += s.sumsq * invn
	for k := range s.a {
		mod2 := s.a[k]*s.a[k] + s.b[k]*s.b[k]
		acc.Coherent[k] += (mod2 - s.sumsq) * invn
		acc.Total[k] += mod2 * invn
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}
