package stf

import (
	"fmt"
	"path/filepath"
	"testing"

	shg "github.com/rmera/goshg"
	v3 "github.com/rmera/goshg/v3"
)

func frames(n, natoms int) []*v3.Matrix {
	ret := make([]*v3.Matrix, n)
	for f := range ret {
		ret[f] = v3.Zeros(natoms)
		for i := 0; i < natoms; i++ {
			for j := 0; j < 3; j++ {
				ret[f].Set(i, j, float64(f)+0.0123*float64(i)-0.5*float64(j))
			}
		}
	}
	return ret
}

func TestSTFWriteRead(Te *testing.T) {
	box := []float64{3, 0, 0, 0, 3.1, 0, 0, 0, 2.9}
	for _, ext := range []string{"stf", "stz", "stl", "str"} {
		name := filepath.Join(Te.TempDir(), "test."+ext)
		in := frames(3, 7)
		w, err := NewWriter(name, 7, map[string]string{"units": "nm"})
		if err != nil {
			Te.Fatal(err)
		}
		for _, f := range in {
			if err := w.WNext(f, box); err != nil {
				Te.Fatal(err)
			}
		}
		if err := w.Close(); err != nil {
			Te.Fatal(err)
		}
		r, head, err := New(name)
		if err != nil {
			Te.Fatal(err)
		}
		if head["units"] != "nm" || head["prec"] != "3" || r.Len() != 7 {
			Te.Errorf("%s: wrong header %v or atoms %d", ext, head, r.Len())
		}
		c := v3.Zeros(7)
		b := make([]float64, 9)
		read := 0
		for ; ; read++ {
			err := r.Next(c, b)
			if err != nil {
				if _, ok := err.(shg.LastFrameError); ok {
					break
				}
				Te.Fatal(err)
			}
			for i := 0; i < 7; i++ {
				for j := 0; j < 3; j++ {
					if d := c.At(i, j) - in[read].At(i, j); d > 6e-4 || d < -6e-4 {
						Te.Fatalf("%s: frame %d atom %d differs: %v vs %v", ext, read, i, c.Vec(i), in[read].Vec(i))
					}
				}
			}
			if b[4] != 3.1 {
				Te.Errorf("%s: box not read: %v", ext, b)
			}
		}
		if read != 3 || r.Readable() {
			Te.Errorf("%s: read %d frames, readable after the end: %v", ext, read, r.Readable())
		}
		fmt.Println(ext, "frames read:", read)
	}
}

func TestSTFPrecision(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "prec.stf")
	w, err := NewWriter(name, 2, map[string]string{"prec": "1"})
	if err != nil {
		Te.Fatal(err)
	}
	c := v3.Zeros(2)
	c.Set(0, 0, 1.26)
	if err := w.WNext(c); err != nil {
		Te.Fatal(err)
	}
	if err := w.WNext(v3.Zeros(3)); err == nil {
		Te.Error("expected an error for a wrong number of atoms")
	}
	w.Close()
	r, head, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if head["prec"] != "1" {
		Te.Errorf("precision not kept: %v", head)
	}
	b := make([]float64, 9)
	if err := r.Next(c, b); err != nil {
		Te.Fatal(err)
	}
	if c.At(0, 0) != 1.3 || b[0] != 0 {
		Te.Errorf("got %v and box %v", c.At(0, 0), b)
	}
}

func TestSTFBadFile(Te *testing.T) {
	if _, _, err := New(filepath.Join(Te.TempDir(), "nothere.stf")); err == nil {
		Te.Error("expected an error for a missing file")
	}
	name := filepath.Join(Te.TempDir(), "bad.stl")
	w, _ := NewWriter(name, 2, nil)
	w.Close()
	r, _, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	if err := r.Next(nil); err == nil {
		Te.Error("an empty trajectory must end at once")
	} else if _, ok := err.(shg.LastFrameError); !ok {
		Te.Errorf("expected a LastFrameError, got %v", err)
	}
}
