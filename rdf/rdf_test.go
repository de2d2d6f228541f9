package rdf

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rmera/goshg/pbc"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// An ideal gas has g(r)=(N-1)/N at every distance.
func TestIdealGas(Te *testing.T) {
	const (
		n      = 400
		frames = 20
		l      = 3.0
	)
	rng := rand.New(rand.NewSource(1))
	box, _ := pbc.BoxFromSlice([]float64{l, l, l})
	rmax2 := box.MaxCutoff2(pbc.XYZ)
	o := DefaultOptions()
	o.BinWidth(0.05)
	counts := NewCounts(math.Sqrt(rmax2), o.BinWidth())
	pos := make([]r3.Vec, n)
	for f := 0; f < frames; f++ {
		for i := range pos {
			pos[i] = r3.Vec{X: l * rng.Float64(), Y: l * rng.Float64(), Z: l * rng.Float64()}
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := box.Dx(pbc.XYZ, pos[i], pos[j])
				if r2 := r3.Norm2(d); r2 <= rmax2 {
					Bin(counts, math.Sqrt(r2))
				}
			}
		}
	}
	g := Compute(counts, frames, n, 1/box.Volume(), o)
	var mid []float64
	for i, r := range g.R[:g.Data] {
		if r < 0.5 || r > 1.4 {
			continue
		}
		if math.Abs(g.G[i]-1) > 0.05 {
			Te.Errorf("g(%.2f) = %.4f, too far from 1", r, g.G[i])
		}
		mid = append(mid, g.G[i])
	}
	if m := stat.Mean(mid, nil); !scalar.EqualWithinAbs(m, 1-1.0/n, 0.01) {
		Te.Errorf("mean g(r) %.4f, expected %.4f", m, 1-1.0/n)
	}
}

func TestFadeAndFill(Te *testing.T) {
	o := DefaultOptions()
	o.BinWidth(0.1)
	o.FadeRDF(1.0)
	counts := NewCounts(1.0, 0.1) // 21 half bins, 10 points
	for i := range counts.View() {
		counts.View()[i] = 5
	}
	g := Compute(counts, 1, 10, 1, o)
	if g.Data != 10 {
		Te.Fatalf("expected 10 points from data, got %d", g.Data)
	}
	if len(g.G) != 21 {
		Te.Fatalf("expected the series to reach 1+2*faderdf/binwidth=21 points, got %d", len(g.G))
	}
	for i := g.Data; i < len(g.G); i++ {
		if g.G[i] != 1 {
			Te.Errorf("point %d beyond the data is %v, not 1", i, g.G[i])
		}
	}
	if Fade(1.0, 3, 1.0) != 3 {
		Te.Errorf("fading must start at faderdf")
	}
	if f := Fade(2.0, 3, 1.0); !scalar.EqualWithinAbs(f, 1+2*math.Exp(-16), 1e-15) {
		Te.Errorf("Fade(2*faderdf) = %v", f)
	}
}

func TestRawDensity(Te *testing.T) {
	o := DefaultOptions()
	o.BinWidth(0.5)
	o.Normalize(false)
	counts := NewCounts(2, 0.5)
	Bin(counts, 0.1)
	Bin(counts, 0.3)
	Bin(counts, 0.6)
	Bin(counts, 10) // goes to the last bin
	g := Compute(counts, 2, 1, 1, o)
	want := []float64{1, 2, 0, 0}
	for i, w := range want {
		if g.G[i] != w {
			Te.Errorf("raw g[%d]=%v, want %v", i, g.G[i], w)
		}
	}
	if counts.View()[counts.Bins()-1] != 1 {
		Te.Error("out of range distance not clamped to the last bin")
	}
}

func TestShellVolumes(Te *testing.T) {
	v := ShellVolumes(3, 1, 3)
	total := v[0] + v[1] + v[2]
	if !scalar.EqualWithinAbsOrRel(total, 4.0/3*math.Pi*2.5*2.5*2.5, 1e-12, 1e-12) {
		Te.Errorf("shells don't add up to a sphere: %v", total)
	}
	a := ShellVolumes(2, 1, 2)
	if !scalar.EqualWithinAbsOrRel(a[1], math.Pi*(1.5*1.5-0.25), 1e-12, 1e-12) {
		Te.Errorf("wrong annulus area %v", a[1])
	}
}
