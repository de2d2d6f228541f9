/*
 * main.go, part of goSHG
 *
 * Copyright 2024 The goSHG authors
 *
 *  This program is free software; you can redistribute it and/or modify
 *  it under the terms of the GNU General Public License as published by
 *  the Free Software Foundation; either version 2 of the License, or
 *  (at your option) any later version.
 *
 *  This program is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU General Public License for more details.
 *
 *  You should have received a copy of the GNU General Public License along
 *  with this program; if not, write to the Free Software Foundation, Inc.,
 *  51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 *
 */

// goSHG computes the second harmonic (hyper-Rayleigh) scattering intensity of a
// molecular dynamics trajectory of rigid 3-site molecules.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	shg "github.com/rmera/goshg"
	"github.com/rmera/goshg/config"
	"github.com/rmera/goshg/scatter"
	"github.com/rmera/goshg/top"
	"github.com/rmera/goshg/traj/gro"
	"github.com/rmera/goshg/traj/stf"
)

// Global variables... Sometimes, you gotta use'em
var verb int

// LogV prints the d arguments to stderr if v is at least vref.
func LogV(v int, vref int, d ...interface{}) {
	if v >= vref {
		fmt.Fprintln(os.Stderr, d...)
	}
}

// CErr exits with status 1 if err is not nil.
func CErr(err error, info string) {
	if err != nil {
		log.Fatal(info+": ", err)
	}
}

func main() {
	d := config.Default()
	conf := flag.String("config", "", "YAML (.yaml, .yml) or TOML (.toml) file with the parameters. Flags given explicitly override it")
	trajname := flag.String("f", d.Traj, "trajectory, .gro or .stf (also .stz .stl .str)")
	structure := flag.String("s", d.Structure, "structure (.gro) used to split the atoms into molecules, one per residue. By default, the trajectory, if it is a .gro file")
	index := flag.String("n", d.Index, "Gromacs index file (.ndx) with the groups")
	groups := flag.String("groups", "", "comma-separated names (or numbers) of the index groups to analyze")
	ng := flag.Int("ng", d.NGroups, "number of index groups to analyze, if no names are given")
	output := flag.String("o", d.Output, "structure factor output (.xvg)")
	osrdf := flag.String("osrdf", d.OSRDF, "structure factor from g(r) output (.xvg), modsumexp only")
	ordf := flag.String("ordf", d.ORDF, "radial distribution function output (.xvg), cosmo and modsumexp only")
	jsonout := flag.String("json", d.JSON, "JSON summary of the run")
	plot := flag.String("plot", d.Plot, "prefix for PNG plots of the results")
	method := flag.String("method", d.Method, "cosmo, sumexp or modsumexp")
	spectrum := flag.Bool("spectrum", d.Spectrum, "compute the intensity on a grid of q values, not only at the smallest q")
	klein := flag.Bool("klein", d.Kleinmann, "apply Kleinmann symmetry to the hyperpolarizability tensor")
	pbcs := flag.String("pbc", d.PBC, "periodic boundary conditions: xyz, xy or no")
	norm := flag.Bool("norm", d.Normalize, "normalize g(r) by the shell volumes and the density")
	maxq := flag.Float64("maxq", d.MaxQ, "largest q (1/nm)")
	nbinq := flag.Int("nbinq", d.NBinQ, "number of q values")
	qx := flag.Float64("qx", d.QDir[0], "x component of the direction of q, for sumexp and modsumexp")
	qy := flag.Float64("qy", d.QDir[1], "y component of the direction of q")
	qz := flag.Float64("qz", d.QDir[2], "z component of the direction of q")
	pout := flag.Int("pout", d.Pout, "polarization of the scattered light: 0=x 1=y 2=z")
	pin1 := flag.Int("pin1", d.Pin1, "polarization of the first incident photon: 0=x 1=y 2=z")
	pin2 := flag.Int("pin2", d.Pin2, "polarization of the second incident photon: 0=x 1=y 2=z")
	bin := flag.Float64("bin", d.BinWidth, "bin width of g(r) (nm)")
	fade := flag.Float64("fade", d.Fade, "distance (nm) from which pair contributions are smoothly taken to 0 at the cutoff. 0 disables it")
	faderdf := flag.Float64("faderdf", d.FadeRDF, "distance (nm) from which g(r) is smoothly taken to 1. 0 disables it")
	renorm := flag.Bool("renorm", d.Renormalize, "use unit molecular axes, instead of the axes scaled by the reference molecule")
	convert := flag.String("convert", "", "convert the trajectory to the given STF file and exit")
	verbose := flag.Int("v", 0, "level of verbosity, the higher, the more verbose")
	flag.Parse()
	verb = *verbose
	F := d
	if *conf != "" {
		var err error
		F, err = config.Load(*conf)
		CErr(err, "main")
		LogV(verb, 1, "Parameters read from", *conf)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "f":
			F.Traj = *trajname
		case "s":
			F.Structure = *structure
		case "n":
			F.Index = *index
		case "groups":
			F.Groups = splitList(*groups)
		case "ng":
			F.NGroups = *ng
		case "o":
			F.Output = *output
		case "osrdf":
			F.OSRDF = *osrdf
		case "ordf":
			F.ORDF = *ordf
		case "json":
			F.JSON = *jsonout
		case "plot":
			F.Plot = *plot
		case "method":
			F.Method = *method
		case "spectrum":
			F.Spectrum = *spectrum
		case "klein":
			F.Kleinmann = *klein
		case "pbc":
			F.PBC = *pbcs
		case "norm":
			F.Normalize = *norm
		case "maxq":
			F.MaxQ = *maxq
		case "nbinq":
			F.NBinQ = *nbinq
		case "qx":
			F.QDir[0] = *qx
		case "qy":
			F.QDir[1] = *qy
		case "qz":
			F.QDir[2] = *qz
		case "pout":
			F.Pout = *pout
		case "pin1":
			F.Pin1 = *pin1
		case "pin2":
			F.Pin2 = *pin2
		case "bin":
			F.BinWidth = *bin
		case "fade":
			F.Fade = *fade
		case "faderdf":
			F.FadeRDF = *faderdf
		case "renorm":
			F.Renormalize = *renorm
		}
	})
	if *convert != "" {
		n, err := convertTraj(F.Traj, *convert)
		CErr(err, "main")
		LogV(verb, 1, n, "frames written to", *convert)
		return
	}
	CErr(run(F), "main")
}

func splitList(s string) []string {
	var ret []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

// run does the whole analysis with the parameters in F, and writes the outputs.
func run(F *config.File) error {
	cfg, err := F.Scatter()
	if err != nil {
		return err
	}
	LogV(verb, 1, "Parameters:", cfg)
	mols, groups, err := selection(F)
	if err != nil {
		return err
	}
	traj, closer, err := openTraj(F.Traj)
	if err != nil {
		return err
	}
	defer closer()
	cfg.Progress = func(frame int) {
		if (frame+1)%100 == 0 {
			LogV(verb, 1, "frame", frame+1)
		}
	}
	for _, g := range groups {
		LogV(verb, 1, "Group", g.Name, "with", g.Len(), "molecules")
	}
	res, err := scatter.Run(traj, mols, groups, cfg)
	if err != nil {
		return err
	}
	LogV(verb, 1, res.Frames, "frames read, rmax", res.RMax, "nm")
	LogV(verb, 2, "Reference molecule:", res.Norm)
	return writeOutputs(F, res)
}

// selection reads the molecule table and the groups to analyze.
func selection(F *config.File) (*top.Molecules, []top.Group, error) {
	sname := F.Structure
	if sname == "" {
		sname = F.Traj
	}
	if !strings.HasSuffix(strings.ToLower(sname), ".gro") {
		return nil, nil, shg.NewConfigError("selection", "a .gro structure file is needed to find the molecules, got %q", sname)
	}
	T, err := gro.ReadTopology(sname)
	if err != nil {
		return nil, nil, err
	}
	mols, err := T.Molecules()
	if err != nil {
		return nil, nil, err
	}
	if F.Index == "" {
		if len(F.Groups) > 0 {
			return nil, nil, shg.NewConfigError("selection", "groups %v requested, but no index file given", F.Groups)
		}
		name := T.ResNames[0]
		G := top.AllMolecules(name, mols, 3)
		if G.Len() == 0 {
			return nil, nil, shg.NewSelectionError("selection", name, "no 3-atom molecules in %s", sname)
		}
		return mols, []top.Group{G}, nil
	}
	ndx, err := top.ReadNdxFile(F.Index)
	if err != nil {
		return nil, nil, err
	}
	names := F.Groups
	if len(names) == 0 {
		if F.NGroups < 1 || F.NGroups > len(ndx) {
			return nil, nil, shg.NewConfigError("selection", "can't use %d groups from an index file with %d", F.NGroups, len(ndx))
		}
		for _, g := range ndx[:F.NGroups] {
			names = append(names, g.Name)
		}
	}
	groups := make([]top.Group, 0, len(names))
	for _, n := range names {
		ig, err := top.FindGroup(ndx, n)
		if err != nil {
			return nil, nil, err
		}
		G, err := top.AtomsToMolecules(ig.Name, ig.Atoms, mols)
		if err != nil {
			return nil, nil, err
		}
		groups = append(groups, G)
	}
	return mols, groups, nil
}

// openTraj opens a .gro or STF trajectory, and returns it with a function that closes it.
func openTraj(name string) (shg.Traj, func(), error) {
	if strings.HasSuffix(strings.ToLower(name), ".gro") {
		T, err := gro.New(name)
		if err != nil {
			return nil, nil, err
		}
		return T, T.Close, nil
	}
	T, head, err := stf.New(name)
	if err != nil {
		return nil, nil, err
	}
	if u, ok := head["units"]; ok && u != "nm" {
		T.Close()
		return nil, nil, shg.NewConfigError("openTraj", "trajectory %s is in %s, need nm", name, u)
	}
	return T, T.Close, nil
}

// convertTraj writes the trajectory in to the STF file out, and returns the number
// of frames written.
func convertTraj(in, out string) (int, error) {
	traj, closer, err := openTraj(in)
	if err != nil {
		return 0, err
	}
	defer closer()
	S, err := shg.NewStream(traj)
	if err != nil {
		return 0, err
	}
	w, err := stf.NewWriter(out, S.Atoms(), map[string]string{"units": "nm", "source": in})
	if err != nil {
		return 0, err
	}
	for S.Next() {
		f := S.Frame()
		if err := w.WNext(f.Coords, f.Box.Slice()); err != nil {
			w.Close()
			return S.Count(), err
		}
	}
	if err := S.Err(); err != nil {
		w.Close()
		return S.Count(), err
	}
	return S.Count(), w.Close()
}
