package scatter

import (
	"math/rand"

	"github.com/rmera/goshg/top"
	"github.com/rmera/goshg/traj/memory"
	v3 "github.com/rmera/goshg/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// O-H bond projections of a rigid water, in nm.
const (
	hx = 0.0757
	hz = 0.0586
)

// water puts a water molecule with its oxygen at o and its axes along x and z
// (which must be orthonormal) in the rows a, a+1 and a+2 of c.
func water(c *v3.Matrix, a int, o, x, z r3.Vec) {
	c.SetVec(a, o)
	c.SetVec(a+1, r3.Add(o, r3.Add(r3.Scale(-hx, x), r3.Scale(-hz, z))))
	c.SetVec(a+2, r3.Add(o, r3.Add(r3.Scale(hx, x), r3.Scale(-hz, z))))
}

func randomAxes(rng *rand.Rand) (r3.Vec, r3.Vec) {
	u := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
	v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
	z := r3.Unit(u)
	x := r3.Unit(r3.Sub(v, r3.Scale(r3.Dot(v, z), z)))
	return x, z
}

// cluster returns a trajectory of frames with n randomly oriented waters inside a cube of
// side side, in a cubic box of side l, and the molecule table.
func cluster(seed int64, n, frames int, side, l float64) (*memory.Traj, *top.Molecules) {
	rng := rand.New(rand.NewSource(seed))
	fr := make([]*v3.Matrix, frames)
	for f := range fr {
		fr[f] = v3.Zeros(3 * n)
		for i := 0; i < n; i++ {
			o := r3.Vec{X: 0.5 + side*rng.Float64(), Y: 0.5 + side*rng.Float64(), Z: 0.5 + side*rng.Float64()}
			x, z := randomAxes(rng)
			water(fr[f], 3*i, o, x, z)
		}
	}
	traj, err := memory.New(fr, [][]float64{{l, 0, 0, 0, l, 0, 0, 0, l}})
	if err != nil {
		panic(err)
	}
	mols, _ := top.Uniform(3*n, 3)
	return traj, mols
}

func allGroup(mols *top.Molecules) []top.Group {
	return []top.Group{top.AllMolecules("SOL", mols, 3)}
}
