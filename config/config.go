/*
 * config.go, part of goSHG
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

// Package config reads run parameters from YAML or TOML files.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	shg "github.com/rmera/goshg"
	"github.com/rmera/goshg/pbc"
	"github.com/rmera/goshg/scatter"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// File holds every parameter of a run. Keys missing from a file keep their default values.
type File struct {
	// Input and output files.
	Traj      string `yaml:"traj" toml:"traj"`
	Structure string `yaml:"structure" toml:"structure"`
	Index     string `yaml:"index" toml:"index"`
	Output    string `yaml:"output" toml:"output"`
	ORDF      string `yaml:"ordf" toml:"ordf"`
	OSRDF     string `yaml:"osrdf" toml:"osrdf"`
	JSON      string `yaml:"json" toml:"json"`
	Plot      string `yaml:"plot" toml:"plot"`

	// Groups are index group names (or numbers). NGroups is used when no names are given:
	// the first NGroups groups of the index file.
	Groups  []string `yaml:"groups" toml:"groups"`
	NGroups int      `yaml:"ng" toml:"ng"`

	Method      string    `yaml:"method" toml:"method"`
	Spectrum    bool      `yaml:"spectrum" toml:"spectrum"`
	Kleinmann   bool      `yaml:"klein" toml:"klein"`
	PBC         string    `yaml:"pbc" toml:"pbc"`
	Normalize   bool      `yaml:"norm" toml:"norm"`
	MaxQ        float64   `yaml:"maxq" toml:"maxq"`
	NBinQ       int       `yaml:"nbinq" toml:"nbinq"`
	QDir        []float64 `yaml:"qdir" toml:"qdir"`
	Pout        int       `yaml:"pout" toml:"pout"`
	Pin1        int       `yaml:"pin1" toml:"pin1"`
	Pin2        int       `yaml:"pin2" toml:"pin2"`
	BinWidth    float64   `yaml:"bin" toml:"bin"`
	Fade        float64   `yaml:"fade" toml:"fade"`
	FadeRDF     float64   `yaml:"faderdf" toml:"faderdf"`
	Renormalize bool      `yaml:"renorm" toml:"renorm"`
}

// Default returns the parameters used when nothing else is given.
func Default() *File {
	c := scatter.DefaultConfig()
	return &File{
		Traj:      "traj.gro",
		Structure: "",
		Output:    "sq.xvg",
		NGroups:   1,
		Method:    c.Method.String(),
		Spectrum:  c.Spectrum,
		Kleinmann: c.Kleinmann,
		PBC:       c.PBC.String(),
		Normalize: c.Normalize,
		MaxQ:      c.MaxQ,
		NBinQ:     c.NBinQ,
		QDir:      []float64{c.QDir.X, c.QDir.Y, c.QDir.Z},
		Pout:      c.Pout,
		Pin1:      c.Pin1,
		Pin2:      c.Pin2,
		BinWidth:  c.BinWidth,
		Fade:      c.Fade,
		FadeRDF:   c.FadeRDF,
	}
}

// Load reads the file at path, which must end in .yaml, .yml or .toml, on top of the
// default parameters.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, shg.NewConfigError("config.Load", "%s", err.Error())
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Decode(bufio.NewReader(f), "yaml")
	case ".toml":
		return Decode(bufio.NewReader(f), "toml")
	default:
		return nil, shg.NewConfigError("config.Load", "unknown configuration format for %s, use .yaml, .yml or .toml", path)
	}
}

// Decode reads a configuration in the given format ("yaml" or "toml") from r, on top of the
// default parameters.
func Decode(r io.Reader, format string) (*File, error) {
	F := Default()
	var err error
	switch format {
	case "yaml":
		err = yaml.NewDecoder(r).Decode(F)
		if err == io.EOF {
			//empty file
			err = nil
		}
	case "toml":
		err = toml.NewDecoder(r).Decode(F)
	default:
		return nil, shg.NewConfigError("config.Decode", "unknown format %q", format)
	}
	if err != nil {
		return nil, shg.NewConfigError("config.Decode", "%s: %s", format, err.Error())
	}
	return F, nil
}

// Scatter returns the validated scattering configuration.
func (F *File) Scatter() (*scatter.Config, error) {
	const caller = "File.Scatter"
	c := scatter.DefaultConfig()
	var err error
	if c.Method, err = scatter.ParseMethod(F.Method); err != nil {
		return nil, shg.ErrDecorate(err, caller)
	}
	if c.PBC, err = pbc.ParseType(F.PBC); err != nil {
		return nil, shg.NewConfigError(caller, "%s", err.Error())
	}
	if len(F.QDir) != 3 {
		return nil, shg.NewConfigError(caller, "the q direction needs 3 components, got %d", len(F.QDir))
	}
	c.Spectrum = F.Spectrum
	c.Kleinmann = F.Kleinmann
	c.Normalize = F.Normalize
	c.MaxQ = F.MaxQ
	c.NBinQ = F.NBinQ
	c.QDir = r3.Vec{X: F.QDir[0], Y: F.QDir[1], Z: F.QDir[2]}
	c.Pout, c.Pin1, c.Pin2 = F.Pout, F.Pin1, F.Pin2
	c.BinWidth = F.BinWidth
	c.Fade = F.Fade
	c.FadeRDF = F.FadeRDF
	c.Renormalize = F.Renormalize
	if err = c.Validate(); err != nil {
		return nil, shg.ErrDecorate(err, caller)
	}
	return c, nil
}

// Params returns the parameters as strings, keyed as in the configuration files.
func (F *File) Params() map[string]string {
	return map[string]string{
		"traj":      F.Traj,
		"structure": F.Structure,
		"index":     F.Index,
		"groups":    strings.Join(F.Groups, ","),
		"ng":        fmt.Sprint(F.NGroups),
		"method":    F.Method,
		"spectrum":  fmt.Sprint(F.Spectrum),
		"klein":     fmt.Sprint(F.Kleinmann),
		"pbc":       F.PBC,
		"norm":      fmt.Sprint(F.Normalize),
		"maxq":      fmt.Sprint(F.MaxQ),
		"nbinq":     fmt.Sprint(F.NBinQ),
		"qdir":      fmt.Sprint(F.QDir),
		"pol":       fmt.Sprintf("%d %d %d", F.Pout, F.Pin1, F.Pin2),
		"bin":       fmt.Sprint(F.BinWidth),
		"fade":      fmt.Sprint(F.Fade),
		"faderdf":   fmt.Sprint(F.FadeRDF),
		"renorm":    fmt.Sprint(F.Renormalize),
	}
}
