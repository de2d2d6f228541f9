/*
 * doc.go, part of goSHG
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

// Package stf reads and writes the simple trajectory format, a compressed text format
// goSHG uses to cache trajectories converted from GRO files, which are slow to parse and large.
//
// An STF file is ASCII text, compressed according to the last letter of its name:
// l means lzw, z gzip, r raw deflate, and anything else (.stf) z-standard.
//
// The file starts with a header of key=value lines. The key prec, an integer
// greater than 0, is always written. The header ends with a line "** N", N being the number
// of atoms per frame.
//
// Each frame is N lines with the x y and z coordinates of an atom, in nm, multiplied by
// 10^prec and rounded to integers, followed by a line that starts with "*". That line
// may contain, after the asterisk, the 9 components of the box vectors (in nm, row by row).
// The "**" sequence only appears at the end of the header.
package stf
