/*
 * scatplot.go, part of goSHG
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

// Package scatplot draws structure factors and radial distribution functions as PNG images.
package scatplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Size of the images.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// Series draws one line per element of ys, all sharing the abscissas x, and saves the plot
// to filename. The format is given by the extension. legends can be nil.
func Series(filename, title, xlabel, ylabel string, x []float64, ys [][]float64, legends []string) error {
	if len(ys) == 0 {
		return fmt.Errorf("goSHG/scatplot.Series: no data to plot")
	}
	if legends != nil && len(legends) != len(ys) {
		return fmt.Errorf("goSHG/scatplot.Series: %d legends for %d series", len(legends), len(ys))
	}
	p := basicPlot(title, xlabel, ylabel)
	for i, y := range ys {
		if len(y) != len(x) {
			return fmt.Errorf("goSHG/scatplot.Series: series %d has %d points, need %d", i, len(y), len(x))
		}
		pts := make(plotter.XYs, 0, len(x))
		for j, v := range y {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: x[j], Y: v})
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("goSHG/scatplot.Series: series %d: %w", i, err)
		}
		r, g, b := colors(i, len(ys))
		l.LineStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		if legends != nil {
			p.Legend.Add(legends[i], l)
		}
	}
	if err := p.Save(Width, Height, filename); err != nil {
		return fmt.Errorf("goSHG/scatplot.Series: %w", err)
	}
	return nil
}

// hsv2RGB converts a color with hue h (in degrees), value v and saturation s to RGB.
func hsv2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var r, g, b float64
	conversion := 255.0 * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := 1 - s
	q := 1 - s*f
	t := 1 - s*(1-f)
	switch int(i) {
	case 0:
		r, g, b = 1, t, p
	case 1:
		r, g, b = q, 1, p
	case 2:
		r, g, b = p, 1, t
	case 3:
		r, g, b = p, q, 1
	case 4:
		r, g, b = t, p, 1
	default: //case 5
		r, g, b = 1, p, q
	}
	return uint8(r * conversion), uint8(g * conversion), uint8(b * conversion)
}

// colors returns the color for the series key of steps, going through the hue circle
// from red towards magenta, skipping yellow, which is hard to see on white.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	return hsv2RGB(h, 1, 1)
}
