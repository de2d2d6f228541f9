package scatter

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	shg "github.com/rmera/goshg"
	"github.com/rmera/goshg/beta"
	"github.com/rmera/goshg/pbc"
	"github.com/rmera/goshg/spectral"
	"github.com/rmera/goshg/top"
	"github.com/rmera/goshg/traj/memory"
	v3 "github.com/rmera/goshg/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestInvalidCombinations(Te *testing.T) {
	bad := []struct {
		m        Method
		spectrum bool
		fade     float64
	}{
		{SumExp, true, 0.5},
		{SumExp, false, 0.5},
		{ModSumExp, false, 0},
		{ModSumExp, false, 0.5},
		{Cosmo, true, 0.5},
	}
	for _, b := range bad {
		traj, mols := cluster(1, 5, 2, 1, 4)
		c := DefaultConfig()
		c.Method, c.Spectrum, c.Fade = b.m, b.spectrum, b.fade
		_, err := Run(traj, mols, allGroup(mols), c)
		var cerr *shg.ConfigError
		if !errors.As(err, &cerr) {
			Te.Errorf("%v spectrum=%v fade=%v: expected a ConfigError, got %v", b.m, b.spectrum, b.fade, err)
		}
		if traj.Reads() != 0 {
			Te.Errorf("%v spectrum=%v fade=%v: %d frames read before failing", b.m, b.spectrum, b.fade, traj.Reads())
		}
	}
	// a fade beyond the cutoff can only be detected once the box is known.
	traj, mols := cluster(1, 5, 2, 1, 4)
	c := DefaultConfig()
	c.Spectrum = false
	c.Fade = 2.5
	var cerr *shg.ConfigError
	if _, err := Run(traj, mols, allGroup(mols), c); !errors.As(err, &cerr) {
		Te.Errorf("expected a ConfigError for fade beyond rmax, got %v", err)
	}
	// the same goes for maxq below the smallest q, sqrt(2)*2pi/rmax = 4.44 for rmax 2.
	traj, mols = cluster(1, 5, 2, 1, 4)
	c = DefaultConfig()
	c.MaxQ = 3
	if _, err := Run(traj, mols, allGroup(mols), c); !errors.As(err, &cerr) {
		Te.Errorf("expected a ConfigError for maxq below the smallest q, got %v", err)
	}
}

// reference obtains, with a naive double loop over all ordered pairs, the coherent
// intensity per molecule of one frame. Pair terms are weighted by w.
func reference(c *Config, f *v3.Matrix, box pbc.Box, B *beta.Builder, q []float64, w spectral.Window) ([]float64, float64) {
	n := f.NVecs() / 3
	pos := make([]r3.Vec, n)
	b := make([]float64, n)
	var sumsq float64
	for i := range pos {
		pos[i] = f.Vec(3 * i)
		d1 := box.Dx(c.PBC, pos[i], f.Vec(3*i+1))
		d2 := box.Dx(c.PBC, pos[i], f.Vec(3*i+2))
		b[i] = B.Project(d1, d2)
		sumsq += b[i] * b[i]
	}
	k := r3.Unit(c.QDir)
	rmax2 := pbc.RMax2(c.PBC, box)
	coh := make([]float64, len(q))
	for iq, qq := range q {
		if c.Method == SumExp {
			var s complex128
			for i := range pos {
				s += complex(b[i], 0) * cmplx.Exp(complex(0, qq*r3.Dot(k, pos[i])))
			}
			a := cmplx.Abs(s)
			coh[iq] = (a*a - sumsq) / float64(n)
			continue
		}
		for i := range pos {
			for j := range pos {
				if i == j {
					continue
				}
				d := box.Dx(c.PBC, pos[i], pos[j])
				if r3.Norm2(d) > rmax2 {
					continue
				}
				r := r3.Norm(d)
				bb := b[i] * b[j] * w.Weight(r)
				switch c.Method {
				case ModSumExp:
					coh[iq] += bb * math.Cos(qq*r3.Dot(k, d))
				case Cosmo:
					coh[iq] += bb * math.Sin(qq*r) / (qq * r)
				}
			}
		}
		coh[iq] /= float64(n)
	}
	return coh, sumsq / float64(n)
}

func TestAgainstReference(Te *testing.T) {
	cases := []struct {
		m        Method
		spectrum bool
		fade     float64
	}{
		{Cosmo, true, 0},
		{Cosmo, false, 0},
		{Cosmo, false, 0.6},
		{SumExp, true, 0},
		{SumExp, false, 0},
		{ModSumExp, true, 0},
		{ModSumExp, true, 0.6},
	}
	for _, cs := range cases {
		c := DefaultConfig()
		c.Method, c.Spectrum, c.Fade = cs.m, cs.spectrum, cs.fade
		c.NBinQ = 15
		c.MaxQ = 40
		traj, mols := cluster(3, 12, 1, 1.2, 4)
		res, err := Run(traj, mols, allGroup(mols), c)
		if err != nil {
			Te.Fatal(err)
		}
		// same frame again, for the reference
		traj2, _ := cluster(3, 12, 1, 1.2, 4)
		f := v3.Zeros(traj2.Len())
		boxs := make([]float64, 9)
		if err := traj2.Next(f, boxs); err != nil {
			Te.Fatal(err)
		}
		box, _ := pbc.BoxFromSlice(boxs)
		B := &beta.Builder{Tensor: beta.Water(c.Kleinmann), Norm: res.Norm}
		B.Pol, _ = beta.NewPolarization(c.Pout, c.Pin1, c.Pin2)
		w, err := spectral.NewWindow(c.Fade, res.RMax)
		if err != nil {
			Te.Fatal(err)
		}
		if cs.fade > 0 && w.Weight(1.5) >= 1 {
			Te.Fatalf("fade=%v: the window must damp pairs at r=1.5 (rmax %v)", cs.fade, res.RMax)
		}
		coh, incoh := reference(c, f, box, B, res.Q, w)
		g := res.Groups[0]
		if !scalar.EqualWithinAbsOrRel(g.Incoherent, incoh, 1e-9, 1e-9) {
			Te.Errorf("%v spectrum=%v fade=%v: incoherent %v, reference %v", c.Method, cs.spectrum, cs.fade, g.Incoherent, incoh)
		}
		for i := range coh {
			if !scalar.EqualWithinAbsOrRel(g.Coherent[i], coh[i], 1e-8, 1e-8) {
				Te.Errorf("%v spectrum=%v fade=%v q=%v: coherent %v, reference %v", c.Method, cs.spectrum, cs.fade, res.Q[i], g.Coherent[i], coh[i])
			}
			if !scalar.EqualWithinAbsOrRel(g.Total[i], coh[i]+incoh, 1e-8, 1e-8) {
				Te.Errorf("%v spectrum=%v fade=%v q=%v: total %v, reference %v", c.Method, cs.spectrum, cs.fade, res.Q[i], g.Total[i], coh[i]+incoh)
			}
		}
	}
}

// Without periodic images in play, the complex sum and the pair sum along the same
// direction are the same quantity.
func TestSumExpEqualsModSumExp(Te *testing.T) {
	var res [2]*Result
	for i, m := range []Method{SumExp, ModSumExp} {
		traj, mols := cluster(11, 30, 3, 1, 4)
		c := DefaultConfig()
		c.Method = m
		c.NBinQ = 25
		r, err := Run(traj, mols, allGroup(mols), c)
		if err != nil {
			Te.Fatal(err)
		}
		res[i] = r
	}
	a, b := res[0].Groups[0], res[1].Groups[0]
	for i := range a.Coherent {
		if !scalar.EqualWithinAbsOrRel(a.Coherent[i], b.Coherent[i], 1e-7, 1e-7) {
			Te.Errorf("q=%v: sumexp %v, modsumexp %v", res[0].Q[i], a.Coherent[i], b.Coherent[i])
		}
	}
	if a.RDF != nil || b.RDF == nil || b.SofQ == nil {
		Te.Error("only the pair methods produce g(r), and only modsumexp S(q) from g(r)")
	}
}

// line returns a single frame with n identically oriented waters, their oxygens on
// the x axis at the given positions.
func line(xs []float64, l float64) (*memory.Traj, *top.Molecules) {
	f := v3.Zeros(3 * len(xs))
	for i, x := range xs {
		water(f, 3*i, r3.Vec{X: x, Y: 1, Z: 1}, r3.Vec{X: 1}, r3.Vec{Z: 1})
	}
	traj, _ := memory.New([]*v3.Matrix{f}, [][]float64{{l, 0, 0, 0, l, 0, 0, 0, l}})
	mols, _ := top.Uniform(3*len(xs), 3)
	return traj, mols
}

// The pair sum obtained directly, and the one recovered from g(r) through the
// spectral transform, must agree when all distances fall on the g(r) grid.
func TestRoundTrip(Te *testing.T) {
	xs := []float64{0.2, 0.5, 0.9}
	c := DefaultConfig()
	traj, mols := line(xs, 3)
	direct, err := Run(traj, mols, allGroup(mols), c)
	if err != nil {
		Te.Fatal(err)
	}
	c.Method = ModSumExp
	traj, mols = line(xs, 3)
	synth, err := Run(traj, mols, allGroup(mols), c)
	if err != nil {
		Te.Fatal(err)
	}
	if !floats.Equal(direct.Q, synth.Q) {
		Te.Fatal("both runs must use the same q grid")
	}
	g := synth.Groups[0]
	if g.Counts == nil || g.Counts.Total() != 3 || direct.Groups[0].Counts.Total() != 3 {
		Te.Fatal("three molecules within the cutoff must give three binned pairs")
	}
	// 0.3 nm is on the grid: half bins 299 and 300 of 0.001 nm.
	if v := g.Counts.View(); v[299]+v[300] != 1 {
		Te.Errorf("the pair at 0.3 nm was not binned around 0.3 nm")
	}
	rho := float64(g.N) * synth.InvVolume
	r := g.RDF.R[:g.RDF.Data]
	// all molecules have the same orientation, so every beta is the same
	b := direct.Groups[0].Incoherent
	for k, q := range synth.Q {
		ideal := 0.0
		for _, ri := range r {
			ideal += c.BinWidth * ri * math.Sin(q*ri) / q
		}
		recovered := g.SofQ[k] - 1 + 4*math.Pi*rho*ideal
		want := direct.Groups[0].Coherent[k] / b
		if !scalar.EqualWithinAbsOrRel(recovered, want, 1e-3, 1e-3) {
			Te.Errorf("q=%.3f: direct %v, from g(r) %v", q, want, recovered)
		}
	}
}

func TestIdempotence(Te *testing.T) {
	for _, m := range []Method{Cosmo, SumExp, ModSumExp} {
		var res [2]*Result
		for i := range res {
			traj, mols := cluster(5, 15, 2, 2, 3)
			c := DefaultConfig()
			c.Method = m
			c.NBinQ = 10
			r, err := Run(traj, mols, allGroup(mols), c)
			if err != nil {
				Te.Fatal(err)
			}
			res[i] = r
		}
		a, b := res[0].Groups[0], res[1].Groups[0]
		if a.Incoherent != b.Incoherent || !floats.Equal(a.Coherent, b.Coherent) || !floats.Equal(a.Total, b.Total) {
			Te.Errorf("%v: two runs on the same input differ", m)
		}
		if a.RDF != nil && !floats.Equal(a.RDF.G, b.RDF.G) {
			Te.Errorf("%v: two runs gave different g(r)", m)
		}
	}
}

// With fade=0 the window is an exact identity.
func TestFadeDisabled(Te *testing.T) {
	traj, mols := cluster(8, 10, 1, 2, 3)
	c := DefaultConfig()
	c.Method = ModSumExp
	c.NBinQ = 10
	windowed, err := Run(traj, mols, allGroup(mols), c)
	if err != nil {
		Te.Fatal(err)
	}
	traj, mols = cluster(8, 10, 1, 2, 3)
	w, err := spectral.NewWindow(0, windowed.RMax)
	if err != nil {
		Te.Fatal(err)
	}
	if w.Weight(windowed.RMax*0.999) != 1 {
		Te.Fatal("a disabled window must weight every pair by 1")
	}
	again, err := Run(traj, mols, allGroup(mols), c)
	if err != nil {
		Te.Fatal(err)
	}
	if !floats.Equal(windowed.Groups[0].Coherent, again.Groups[0].Coherent) {
		Te.Error("fade=0 runs differ")
	}
	// a real window changes the result
	traj, mols = cluster(8, 10, 1, 2, 3)
	c.Fade = 0.5
	faded, err := Run(traj, mols, allGroup(mols), c)
	if err != nil {
		Te.Fatal(err)
	}
	if floats.Equal(windowed.Groups[0].Coherent, faded.Groups[0].Coherent) {
		Te.Error("fade=0.5 did not change the modsumexp intensity")
	}
	Te.Logf("coherent at q0: %v with fade=0.5, %v without", faded.Groups[0].Coherent[0], windowed.Groups[0].Coherent[0])
}

type emptyTraj struct{ n int }

func (e emptyTraj) Readable() bool { return true }
func (e emptyTraj) Len() int       { return e.n }
func (e emptyTraj) Next(*v3.Matrix, ...[]float64) error {
	return eof{}
}

type eof struct{}

func (eof) NormalLastFrameTermination() {}
func (eof) FileName() string           { return "" }
func (eof) Error() string              { return "EOF" }
func (eof) Critical() bool             { return false }
func (eof) Format() string             { return "test" }
func (eof) Decorate(string) []string   { return nil }

func TestStreamErrors(Te *testing.T) {
	mols, _ := top.Uniform(9, 3)
	var serr *shg.StreamError
	if _, err := Run(emptyTraj{9}, mols, allGroup(mols), nil); !errors.As(err, &serr) {
		Te.Errorf("expected a StreamError for an empty trajectory, got %v", err)
	}
	traj, mols := cluster(2, 5, 4, 1, 4)
	traj.FailAt(2)
	res, err := Run(traj, mols, allGroup(mols), nil)
	if !errors.As(err, &serr) || res != nil {
		Te.Errorf("expected a StreamError and no result, got %v, %v", res, err)
	}
	traj, _ = cluster(2, 5, 4, 1, 4)
	wrong, _ := top.Uniform(12, 3)
	if _, err := Run(traj, wrong, allGroup(wrong), nil); !errors.As(err, &serr) {
		Te.Errorf("expected a StreamError for mismatched atom counts, got %v", err)
	}
}

func TestGroups(Te *testing.T) {
	traj, mols := cluster(4, 12, 2, 1.5, 4)
	groups := []top.Group{top.AllMolecules("SOL", mols, 3), {Name: "half", Molecules: []int{0, 2, 4, 6, 8, 10}}}
	c := DefaultConfig()
	c.NBinQ = 5
	res, err := Run(traj, mols, groups, c)
	if err != nil {
		Te.Fatal(err)
	}
	if len(res.Groups) != 2 || res.Groups[1].N != 6 || res.Groups[1].Name != "half" {
		Te.Fatalf("wrong groups in result %v", res.Groups)
	}
	if res.Frames != 2 || len(res.AnalyticalIntegral) != 5 || len(res.Groups[1].Total) != 5 {
		Te.Errorf("wrong sizes in result")
	}
	bad := []top.Group{{Name: "ghost", Molecules: []int{40}}}
	var selerr *shg.SelectionError
	if _, err := Run(traj, mols, bad, c); !errors.As(err, &selerr) {
		Te.Errorf("expected a SelectionError, got %v", err)
	}
}

func TestParseMethod(Te *testing.T) {
	for _, m := range []Method{Cosmo, SumExp, ModSumExp} {
		p, err := ParseMethod(m.String())
		if err != nil || p != m {
			Te.Errorf("ParseMethod(%q) = %v, %v", m.String(), p, err)
		}
	}
	if _, err := ParseMethod("fft"); err == nil {
		Te.Error("expected an error for an unknown method")
	}
}
