/*
 * report.go, part of goSHG
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

// Package report writes a JSON summary of a scattering run, with its parameters and every
// numeric series, so a run can be identified and reproduced.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rmera/goshg/histo"
	"github.com/rmera/goshg/scatter"
)

// Version is written to every summary.
const Version = "1.0.0"

// Group holds the series of one group.
type Group struct {
	Name       string      `json:"name"`
	Molecules  int         `json:"molecules"`
	Incoherent float64     `json:"incoherent"`
	Coherent   []float64   `json:"coherent"`
	Total      []float64   `json:"total"`
	R          []float64   `json:"r,omitempty"`
	RDF        []float64   `json:"rdf,omitempty"`
	SofQ       []float64   `json:"sq_from_rdf,omitempty"`
	// Pairs within rmax over all frames, and their raw distance histogram.
	Pairs      int         `json:"pairs,omitempty"`
	PairCounts *histo.Data `json:"pair_counts,omitempty"`
}

// Summary is the JSON document.
type Summary struct {
	ID          string            `json:"id"`
	ToolVersion string            `json:"tool_version"`
	GeneratedAt string            `json:"generated_at"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Method      string            `json:"method"`
	Spectrum    bool              `json:"spectrum"`
	Frames      int               `json:"frames"`
	InvVolume   float64           `json:"inverse_volume"`
	RMax        float64           `json:"rmax"`
	BinWidth    float64           `json:"binwidth"`
	// Inverse lengths of the difference and sum of the bond vectors of the reference molecule.
	NormX              float64   `json:"norm_x"`
	NormZ              float64   `json:"norm_z"`
	Q                  []float64 `json:"q"`
	AnalyticalIntegral []float64 `json:"analytical_integral"`
	Groups             []Group   `json:"groups"`
}

// New builds the summary of res, with a new random identifier.
func New(res *scatter.Result, params map[string]string) *Summary {
	S := &Summary{
		ID:                 uuid.New().String(),
		ToolVersion:        Version,
		GeneratedAt:        time.Now().UTC().Format(time.RFC3339),
		Parameters:         params,
		Method:             res.Method.String(),
		Spectrum:           res.Spectrum,
		Frames:             res.Frames,
		InvVolume:          res.InvVolume,
		RMax:               res.RMax,
		BinWidth:           res.BinWidth,
		NormX:              res.Norm.InvX,
		NormZ:              res.Norm.InvZ,
		Q:                  res.Q,
		AnalyticalIntegral: res.AnalyticalIntegral,
		Groups:             make([]Group, len(res.Groups)),
	}
	for i, g := range res.Groups {
		G := Group{
			Name:       g.Name,
			Molecules:  g.N,
			Incoherent: g.Incoherent,
			Coherent:   g.Coherent,
			Total:      g.Total,
			SofQ:       g.SofQ,
		}
		if g.RDF != nil {
			G.R = g.RDF.R
			G.RDF = g.RDF.G
		}
		if g.Counts != nil {
			G.Pairs = g.Counts.Total()
			G.PairCounts = g.Counts
		}
		S.Groups[i] = G
	}
	return S
}

// Write writes the summary of res, as indented JSON, to w.
func Write(w io.Writer, res *scatter.Result, params map[string]string) error {
	data, err := json.MarshalIndent(New(res, params), "", "  ")
	if err != nil {
		return fmt.Errorf("goSHG/report.Write: %w", err)
	}
	data = append(data, '\n')
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("goSHG/report.Write: %w", err)
	}
	return nil
}

// WriteFile writes the summary of res to the file name.
func WriteFile(name string, res *scatter.Result, params map[string]string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("goSHG/report.WriteFile: %w", err)
	}
	err = Write(f, res, params)
	if err2 := f.Close(); err == nil && err2 != nil {
		err = fmt.Errorf("goSHG/report.WriteFile: %w", err2)
	}
	return err
}
