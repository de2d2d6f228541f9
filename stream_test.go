package shg_test

import (
	"errors"
	"testing"

	shg "github.com/rmera/goshg"
	"github.com/rmera/goshg/traj/memory"
	v3 "github.com/rmera/goshg/v3"
)

func frames(n, atoms int) []*v3.Matrix {
	ret := make([]*v3.Matrix, n)
	for i := range ret {
		ret[i] = v3.Zeros(atoms)
		ret[i].Set(0, 0, float64(i))
	}
	return ret
}

func TestStream(Te *testing.T) {
	traj, err := memory.New(frames(4, 3), [][]float64{{2, 0, 0, 0, 2, 0, 0, 0, 2}})
	if err != nil {
		Te.Fatal(err)
	}
	S, err := shg.NewStream(traj)
	if err != nil {
		Te.Fatal(err)
	}
	n := 0
	for S.Next() {
		f := S.Frame()
		if f.Index != n || f.Coords.At(0, 0) != float64(n) {
			Te.Errorf("frame %d out of order: index %d, x %v", n, f.Index, f.Coords.At(0, 0))
		}
		if f.Box.Volume() != 8 {
			Te.Errorf("wrong box volume %v", f.Box.Volume())
		}
		n++
	}
	if S.Err() != nil {
		Te.Error(S.Err())
	}
	if n != 4 || S.Count() != 4 {
		Te.Errorf("read %d frames (count %d), expected 4", n, S.Count())
	}
	if S.Next() {
		Te.Error("a finished stream can't be restarted")
	}
}

func TestStreamError(Te *testing.T) {
	traj, _ := memory.New(frames(4, 3), nil)
	traj.FailAt(2)
	S, err := shg.NewStream(traj)
	if err != nil {
		Te.Fatal(err)
	}
	for S.Next() {
	}
	var serr *shg.StreamError
	if !errors.As(S.Err(), &serr) {
		Te.Fatalf("expected a StreamError, got %v", S.Err())
	}
	if serr.Frame != 2 || S.Count() != 2 {
		Te.Errorf("error at frame %d after %d frames, expected 2", serr.Frame, S.Count())
	}
}
