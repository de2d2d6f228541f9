/*
 * driver.go, part of goSHG
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

	shg "github.com/rmera/goshg"
	"github.com/rmera/goshg/beta"
	"github.com/rmera/goshg/histo"
	"github.com/rmera/goshg/pbc"
	"github.com/rmera/goshg/rdf"
	"github.com/rmera/goshg/spectral"
	"github.com/rmera/goshg/top"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// GroupResult contains the final, frame-averaged, results for one group.
type GroupResult struct {
	Name       string
	N          int
	Incoherent float64
	Coherent   []float64 // one value per q in Result.Q
	Total      []float64
	RDF        *rdf.RDF  // nil for sumexp
	SofQ       []float64 // structure factor from g(r), only for modsumexp
	// Counts holds the pair distances within rmax over all frames, in bins of half
	// BinWidth. nil for sumexp.
	Counts     *histo.Data
}

// Result is the outcome of a run.
type Result struct {
	Method   Method
	Spectrum bool
	// Q holds the grid of scattering vector moduli, or only the smallest one
	// if no spectrum was requested.
	Q         []float64
	Frames    int
	InvVolume float64 // inverse volume (or area) averaged over the frames
	RMax      float64
	BinWidth  float64
	Norm      beta.Normalization
	// AnalyticalIntegral is the contribution of an uncorrelated sphere of radius RMax
	// holding the molecules of the first group, at each q. It is not subtracted from anything.
	AnalyticalIntegral []float64
	Groups             []GroupResult
}

// driver keeps the state of a run between frames.
type driver struct {
	cfg      *Config
	mols     *top.Molecules
	groups   []top.Group
	strat    strategy
	builder  *beta.Builder
	state    *frameState
	accs     []*Accumulator
	q        []float64
	window   spectral.Window
	rmax     float64
	invvol   float64 // sum over frames
	pbc      pbc.Type
	initDone bool
}

// Run reads every frame in traj, and obtains the scattering intensity of each group
// of molecules. The first atom of each molecule and the next two are taken as the origin and
// the two partners of a rigid 3-atom molecule. The first molecule of the first group in the
// first frame is the reference for the molecular axes. Errors are returned without partial results.
func Run(traj shg.Traj, mols *top.Molecules, groups []top.Group, cfg *Config) (*Result, error) {
	const caller = "scatter.Run"
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, shg.ErrDecorate(err, caller)
	}
	if len(groups) == 0 {
		return nil, shg.NewConfigError(caller, "no groups given")
	}
	if mols == nil || mols.Len() == 0 {
		return nil, shg.NewConfigError(caller, "no molecules given")
	}
	for _, g := range groups {
		if g.Len() == 0 {
			return nil, shg.NewSelectionError(caller, g.Name, "no molecules in the group")
		}
		if err := top.CheckSize(g, mols, 3); err != nil {
			return nil, shg.ErrDecorate(err, caller)
		}
	}
	S, err := shg.NewStream(traj)
	if err != nil {
		return nil, shg.ErrDecorate(err, caller)
	}
	if S.Atoms() != mols.Atoms() {
		return nil, shg.NewStreamError(caller, 0, nil, "the trajectory has %d atoms, the molecule table %d", S.Atoms(), mols.Atoms())
	}
	d := &driver{cfg: cfg, mols: mols, groups: groups, strat: resolve(cfg), pbc: cfg.PBC}
	for S.Next() {
		f := S.Frame()
		if !d.initDone {
			if err := d.init(f); err != nil {
				return nil, shg.ErrDecorate(err, caller)
			}
		}
		if err := d.frame(f); err != nil {
			return nil, shg.ErrDecorate(err, caller)
		}
		if cfg.Progress != nil {
			cfg.Progress(f.Index)
		}
	}
	if err := S.Err(); err != nil {
		return nil, shg.ErrDecorate(err, caller)
	}
	if S.Count() == 0 {
		return nil, shg.NewStreamError(caller, 0, nil, "the trajectory contains no frames")
	}
	return d.finish(S.Count()), nil
}

// init sets up everything that depends on the geometry of the first frame.
func (d *driver) init(f *shg.Frame) error {
	c := d.cfg
	if f.Box.IsZero() {
		return shg.NewStreamError("init", f.Index, nil, "the first frame has no box")
	}
	rmax2 := pbc.RMax2(d.pbc, f.Box)
	d.rmax = math.Sqrt(rmax2)
	var err error
	d.window, err = spectral.NewWindow(c.Fade, d.rmax)
	if err != nil {
		return shg.ErrDecorate(err, "init")
	}
	if c.Spectrum {
		grid, err := spectral.NewQGrid(d.rmax, c.MaxQ, c.NBinQ)
		if err != nil {
			return shg.ErrDecorate(err, "init")
		}
		d.q = grid.Q
	} else {
		d.q = []float64{spectral.MinQ(d.rmax)}
	}
	pol, err := beta.NewPolarization(c.Pout, c.Pin1, c.Pin2)
	if err != nil {
		return shg.ErrDecorate(err, "init")
	}
	d1, d2 := d.bonds(f, d.groups[0].Molecules[0])
	norm, err := beta.NewNormalization(d1, d2)
	if err != nil {
		return shg.ErrDecorate(err, "init")
	}
	d.builder = &beta.Builder{Tensor: c.tensor(), Pol: pol, Norm: norm, Renormalize: c.Renormalize}
	maxmols := 0
	d.accs = make([]*Accumulator, len(d.groups))
	for i, g := range d.groups {
		d.accs[i] = newAccumulator(g, len(d.q), d.rmax, c.BinWidth, c.Method.Pairwise(), i)
		maxmols = max(maxmols, g.Len())
	}
	qdir := r3.Vec{}
	if r3.Norm(c.QDir) > 0 {
		qdir = r3.Unit(c.QDir)
	}
	d.state = newFrameState(maxmols, d.q, qdir, d.window, d.pbc, rmax2)
	d.initDone = true
	return nil
}

// bonds returns the displacements from the two partners to the origin of molecule m.
func (d *driver) bonds(f *shg.Frame, m int) (r3.Vec, r3.Vec) {
	a := d.mols.First(m)
	o := f.Coords.Vec(a)
	return f.Box.Dx(d.pbc, o, f.Coords.Vec(a+1)), f.Box.Dx(d.pbc, o, f.Coords.Vec(a+2))
}

func (d *driver) frame(f *shg.Frame) error {
	if f.Box.IsZero() {
		return shg.NewStreamError("frame", f.Index, nil, "frame has no box")
	}
	d.invvol += f.Box.InvVolume(d.pbc)
	s := d.state
	for gi, g := range d.groups {
		s.reset(f.Box)
		for _, m := range g.Molecules {
			d1, d2 := d.bonds(f, m)
			s.add(f.Coords.Vec(d.mols.First(m)), d.builder.Project(d1, d2))
		}
		d.strat.accumulate(s, d.accs[gi])
	}
	return nil
}

// finish averages the accumulated sums over the frames and builds the result.
func (d *driver) finish(frames int) *Result {
	c := d.cfg
	nf := float64(frames)
	R := &Result{
		Method:    c.Method,
		Spectrum:  c.Spectrum,
		Q:         d.q,
		Frames:    frames,
		InvVolume: d.invvol / nf,
		RMax:      d.rmax,
		BinWidth:  c.BinWidth,
		Norm:      d.builder.Norm,
		Groups:    make([]GroupResult, len(d.accs)),
	}
	R.AnalyticalIntegral = spectral.AnalyticalIntegral(d.q, d.rmax, c.Fade, d.accs[0].N)
	o := rdf.DefaultOptions()
	o.BinWidth(c.BinWidth)
	o.FadeRDF(c.FadeRDF)
	o.Normalize(c.Normalize)
	if d.pbc == pbc.XY {
		o.Dims(2)
	}
	for i, A := range d.accs {
		floats.Scale(1/nf, A.Coherent)
		floats.Scale(1/nf, A.Total)
		G := GroupResult{
			Name:       A.Group.Name,
			N:          A.N,
			Incoherent: A.Incoherent / nf,
			Coherent:   A.Coherent,
			Total:      A.Total,
			Counts:     A.Counts,
		}
		if A.Counts != nil {
			G.RDF = rdf.Compute(A.Counts, frames, A.N, R.InvVolume, o)
			if c.Method == ModSumExp {
				n := G.RDF.Data
				rho := float64(A.N) * R.InvVolume
				G.SofQ = spectral.FromRDF(G.RDF.R[:n], G.RDF.G[:n], d.q, c.BinWidth, rho, d.window)
			}
		}
		R.Groups[i] = G
	}
	return R
}
