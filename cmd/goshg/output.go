/*
 * output.go, part of goSHG
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

package main

import (
	"io"
	"os"

	"github.com/rmera/goshg/config"
	"github.com/rmera/goshg/report"
	"github.com/rmera/goshg/scatter"
	"github.com/rmera/goshg/scatplot"
	"github.com/rmera/goshg/xvg"
)

func names(res *scatter.Result) []string {
	ret := make([]string, len(res.Groups))
	for i, g := range res.Groups {
		ret[i] = g.Name
	}
	return ret
}

// labels writes the subtitle, with the group name if there is only one group, or
// a legend with all of them.
func labels(W *xvg.Writer, res *scatter.Result) {
	if len(res.Groups) == 1 {
		W.Subtitle(res.Groups[0].Name)
		return
	}
	W.Legends(names(res))
}

// column returns the value at q index k of the series of every group.
func column(res *scatter.Result, k int, series func(g *scatter.GroupResult) []float64) []float64 {
	ret := make([]float64, len(res.Groups))
	for i := range res.Groups {
		ret[i] = series(&res.Groups[i])[k]
	}
	return ret
}

func coherent(g *scatter.GroupResult) []float64 { return g.Coherent }
func total(g *scatter.GroupResult) []float64    { return g.Total }
func sofq(g *scatter.GroupResult) []float64     { return g.SofQ }

// writeSQ writes the coherent, incoherent and total intensities as three sets.
func writeSQ(w io.Writer, res *scatter.Result) error {
	W := xvg.New(w, "Structure factor", "q", "S(q)")
	labels(W, res)
	W.BeginSet(0, "coherent")
	for k, q := range res.Q {
		W.Row(q, column(res, k, coherent)...)
	}
	W.BeginSet(1, "incoherent")
	incoh := make([]float64, len(res.Groups))
	for i, g := range res.Groups {
		incoh[i] = g.Incoherent
	}
	for _, q := range res.Q {
		W.Row(q, incoh...)
	}
	W.BeginSet(2, "total")
	for k, q := range res.Q {
		W.Row(q, column(res, k, total)...)
	}
	return W.Close()
}

// writeSofQRDF writes the structure factor obtained from g(r).
func writeSofQRDF(w io.Writer, res *scatter.Result) error {
	W := xvg.New(w, "S(q) evaluated from g(r)", "q", "S(q)")
	labels(W, res)
	for k, q := range res.Q {
		W.Row(q, column(res, k, sofq)...)
	}
	return W.Close()
}

// writeRDF writes g(r) of every group.
func writeRDF(w io.Writer, res *scatter.Result) error {
	W := xvg.New(w, "Radial distribution function", "r", "g(r)")
	labels(W, res)
	r := res.Groups[0].RDF.R
	for i, x := range r {
		row := make([]float64, len(res.Groups))
		for j, g := range res.Groups {
			row[j] = g.RDF.G[i]
		}
		W.Row(x, row...)
	}
	return W.Close()
}

func toFile(name string, res *scatter.Result, write func(io.Writer, *scatter.Result) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	err = write(f, res)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return err
}

// writeOutputs writes every output requested in F.
func writeOutputs(F *config.File, res *scatter.Result) error {
	if F.Output != "" {
		if err := toFile(F.Output, res, writeSQ); err != nil {
			return err
		}
		LogV(verb, 1, "Structure factor written to", F.Output)
	}
	pairwise := res.Groups[0].RDF != nil
	if F.ORDF != "" {
		if !pairwise {
			LogV(verb, 0, "goSHG: no g(r) is obtained with", res.Method, "so", F.ORDF, "will not be written")
		} else if err := toFile(F.ORDF, res, writeRDF); err != nil {
			return err
		}
	}
	if F.OSRDF != "" {
		if res.Groups[0].SofQ == nil {
			LogV(verb, 0, "goSHG: S(q) from g(r) is only obtained with modsumexp, so", F.OSRDF, "will not be written")
		} else if err := toFile(F.OSRDF, res, writeSofQRDF); err != nil {
			return err
		}
	}
	if F.JSON != "" {
		if err := report.WriteFile(F.JSON, res, F.Params()); err != nil {
			return err
		}
	}
	if F.Plot != "" {
		return plots(F.Plot, res)
	}
	return nil
}

func plots(prefix string, res *scatter.Result) error {
	if !res.Spectrum {
		LogV(verb, 1, "Only one q value, no plots drawn")
		return nil
	}
	leg := names(res)
	ys := make([][]float64, len(res.Groups))
	for i := range res.Groups {
		ys[i] = res.Groups[i].Total
	}
	if err := scatplot.Series(prefix+"_sq.png", "Structure factor", "q (1/nm)", "S(q)", res.Q, ys, leg); err != nil {
		return err
	}
	if res.Groups[0].RDF == nil {
		return nil
	}
	for i := range res.Groups {
		ys[i] = res.Groups[i].RDF.G
	}
	return scatplot.Series(prefix+"_rdf.png", "Radial distribution function", "r (nm)", "g(r)", res.Groups[0].RDF.R, ys, leg)
}
