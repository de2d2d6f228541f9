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

package scatter

import (
	"fmt"
	"math"
	"strings"

	shg "github.com/rmera/goshg"
	"github.com/rmera/goshg/beta"
	"github.com/rmera/goshg/pbc"
	"gonum.org/v1/gonum/spatial/r3"
)

// Method is the way the scattering intensity is accumulated.
type Method int

const (
	// Cosmo sums beta_i*beta_j*sin(qr)/(qr) over pairs: the orientationally averaged intensity.
	Cosmo Method = iota
	// SumExp obtains |sum_i beta_i exp(iq.r_i)|^2 for a single q direction.
	SumExp
	// ModSumExp sums beta_i*beta_j*cos(q.r_ij) over pairs, for a single q direction.
	ModSumExp
)

func (m Method) String() string {
	switch m {
	case Cosmo:
		return "cosmo"
	case SumExp:
		return "sumexp"
	case ModSumExp:
		return "modsumexp"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod returns the method with the given name.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosmo":
		return Cosmo, nil
	case "sumexp":
		return SumExp, nil
	case "modsumexp":
		return ModSumExp, nil
	}
	return Cosmo, shg.NewConfigError("ParseMethod", "unknown method %q, use cosmo, sumexp or modsumexp", s)
}

// Pairwise is true for the methods that enumerate molecule pairs, and therefore produce g(r).
func (m Method) Pairwise() bool {
	return m == Cosmo || m == ModSumExp
}

// Config holds the parameters of a run.
type Config struct {
	Method    Method
	Spectrum  bool // compute a q grid, instead of only the smallest q
	Kleinmann bool
	PBC       pbc.Type
	Normalize bool // normalize g(r)

	MaxQ  float64
	NBinQ int
	QDir  r3.Vec // direction of the scattering vector, for SumExp and ModSumExp

	Pout, Pin1, Pin2 int // lab axes of the polarizations, 0, 1 or 2

	BinWidth float64 // g(r) spacing
	Fade     float64 // start of the window on pair contributions, 0 for no window
	FadeRDF  float64 // start of the fading of g(r) to 1, 0 for no fading

	// Renormalize obtains the molecular axes of each molecule exactly, instead of
	// using the lengths of the first molecule in the first frame.
	Renormalize bool

	// Tensor is the molecular hyperpolarizability. If nil, that of water is used.
	Tensor *beta.Tensor

	// Progress, if not nil, is called after each frame is processed.
	Progress func(frame int)
}

// DefaultConfig returns a Config with the default values.
func DefaultConfig() *Config {
	return &Config{
		Method:    Cosmo,
		Spectrum:  true,
		Kleinmann: true,
		PBC:       pbc.XYZ,
		Normalize: true,
		MaxQ:      100,
		NBinQ:     100,
		QDir:      r3.Vec{X: 0, Y: -1, Z: -1},
		Pout:      2,
		Pin1:      1,
		Pin2:      1,
		BinWidth:  0.002,
	}
}

// Validate returns a ConfigError if the configuration can't be run.
// Only the following combinations of method, spectrum and window are supported:
//
//	modsumexp  spectrum     any fade
//	cosmo      spectrum     no fade
//	cosmo      no spectrum  any fade
//	sumexp     any          no fade
func (c *Config) Validate() error {
	const caller = "Config.Validate"
	if c.Method != Cosmo && c.Method != SumExp && c.Method != ModSumExp {
		return shg.NewConfigError(caller, "unknown method %v", c.Method)
	}
	if c.Fade < 0 || c.FadeRDF < 0 {
		return shg.NewConfigError(caller, "fade (%g) and faderdf (%g) can't be negative", c.Fade, c.FadeRDF)
	}
	switch {
	case c.Method == SumExp && c.Fade > 0:
		return shg.NewConfigError(caller, "method sumexp does not support fade=%g", c.Fade)
	case c.Method == ModSumExp && !c.Spectrum:
		return shg.NewConfigError(caller, "method modsumexp requires spectrum")
	case c.Method == Cosmo && c.Spectrum && c.Fade > 0:
		return shg.NewConfigError(caller, "method cosmo with spectrum does not support fade=%g", c.Fade)
	}
	if c.BinWidth <= 0 || math.IsNaN(c.BinWidth) {
		return shg.NewConfigError(caller, "invalid bin width %g", c.BinWidth)
	}
	if c.Spectrum && c.NBinQ < 1 {
		return shg.NewConfigError(caller, "nbinq=%d, need at least one q point", c.NBinQ)
	}
	if c.Method != Cosmo && r3.Norm(c.QDir) == 0 {
		return shg.NewConfigError(caller, "the scattering vector direction can't be zero")
	}
	if c.PBC != pbc.None && c.PBC != pbc.XYZ && c.PBC != pbc.XY {
		return shg.NewConfigError(caller, "unknown periodicity %v", c.PBC)
	}
	if _, err := beta.NewPolarization(c.Pout, c.Pin1, c.Pin2); err != nil {
		return shg.ErrDecorate(err, caller)
	}
	return nil
}

func (c *Config) tensor() beta.Tensor {
	if c.Tensor != nil {
		return *c.Tensor
	}
	return beta.Water(c.Kleinmann)
}

func (c *Config) String() string {
	return fmt.Sprintf("method=%v spectrum=%v kleinmann=%v pbc=%v normalize=%v maxq=%g nbinq=%d qdir=%v pol=%d%d%d bin=%g fade=%g faderdf=%g renormalize=%v",
		c.Method, c.Spectrum, c.Kleinmann, c.PBC, c.Normalize, c.MaxQ, c.NBinQ, c.QDir, c.Pout, c.Pin1, c.Pin2, c.BinWidth, c.Fade, c.FadeRDF, c.Renormalize)
}
