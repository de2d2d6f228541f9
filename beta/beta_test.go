package beta

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	shg "github.com/rmera/goshg"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// a water molecule lying on the xz plane, with the HOH angle at 90 degrees.
var (
	o  = r3.Vec{}
	h1 = r3.Vec{X: -1, Z: -1}
	h2 = r3.Vec{X: 1, Z: -1}
)

func builder(Te *testing.T, kleinmann bool, out, in1, in2 int) *Builder {
	pol, err := NewPolarization(out, in1, in2)
	if err != nil {
		Te.Fatal(err)
	}
	norm, err := NewNormalization(r3.Sub(o, h1), r3.Sub(o, h2))
	if err != nil {
		Te.Fatal(err)
	}
	return &Builder{Tensor: Water(kleinmann), Pol: pol, Norm: norm}
}

func TestRightAngleWater(Te *testing.T) {
	cases := []struct {
		klein         bool
		out, in1, in2 int
		want          float64
	}{
		{true, 2, 2, 2, 31.6},
		{false, 2, 2, 2, 31.6},
		{true, 2, 0, 0, 5.7},
		{true, 2, 1, 1, 10.9},
		{true, 0, 0, 2, 5.7},
		{false, 0, 0, 2, 0},
		{true, 1, 1, 2, 10.9},
		{true, 0, 1, 2, 0},
	}
	for _, c := range cases {
		B := builder(Te, c.klein, c.out, c.in1, c.in2)
		got := B.Project(r3.Sub(o, h1), r3.Sub(o, h2))
		if !scalar.EqualWithinAbs(got, c.want, 1e-12) {
			Te.Errorf("kleinmann %v, pol %d%d%d: got %v want %v", c.klein, c.out, c.in1, c.in2, got, c.want)
		}
	}
}

// full27 contracts all 27 components of the tensor.
func full27(T Tensor, f MolFrame, p Polarization) float64 {
	axes := [3]r3.Vec{f.X, f.Y, f.Z}
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				s += T.At(i, j, k) * r3.Dot(axes[i], p.Out) * r3.Dot(axes[j], p.In1) * r3.Dot(axes[k], p.In2)
			}
		}
	}
	return s
}

func TestProjectMatchesFullContraction(Te *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		B := builder(Te, n%2 == 0, rng.Intn(3), rng.Intn(3), rng.Intn(3))
		B.Renormalize = true
		ori := r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
		d1 := r3.Sub(ori, r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()})
		d2 := r3.Sub(ori, r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()})
		f := B.Frame(d1, d2)
		if got, want := B.Project(d1, d2), full27(B.Tensor, f, B.Pol); !scalar.EqualWithinAbsOrRel(got, want, 1e-12, 1e-12) {
			Te.Errorf("sample %d: 7-term %v, 27-term %v", n, got, want)
		}
	}
}

func TestReferenceNormalization(Te *testing.T) {
	B := builder(Te, true, 2, 2, 2)
	// the same molecule, with bonds twice as long, is scaled by the reference lengths.
	d1, d2 := r3.Scale(2, r3.Sub(o, h1)), r3.Scale(2, r3.Sub(o, h2))
	if got := B.Project(d1, d2); !scalar.EqualWithinAbs(got, 8*31.6, 1e-10) {
		Te.Errorf("reference normalization: got %v", got)
	}
	B.Renormalize = true
	if got := B.Project(d1, d2); !scalar.EqualWithinAbs(got, 31.6, 1e-10) {
		Te.Errorf("per-molecule normalization: got %v", got)
	}
	fmt.Println(B.Norm)
}

func TestBadInput(Te *testing.T) {
	var cerr *shg.ConfigError
	if _, err := NewPolarization(0, 3, 1); !errors.As(err, &cerr) {
		Te.Errorf("expected a ConfigError for pin1=3, got %v", err)
	}
	if _, err := NewNormalization(r3.Vec{X: 1}, r3.Vec{X: 1}); !errors.As(err, &cerr) {
		Te.Errorf("expected a ConfigError for a degenerate molecule, got %v", err)
	}
}
