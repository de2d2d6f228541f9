/*
 * doc.go, part of goSHG.
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

/*
Package shg contains the pieces shared by all of goSHG: the trajectory
interface, the error kinds and the frame stream consumed by the scattering
driver.

goSHG computes the coherent and incoherent second-harmonic (hyper-Rayleigh)
scattering intensity of a liquid of rigid 3-atom molecules from a molecular
dynamics trajectory. The numerical work lives in the subpackages:

	beta      hyperpolarizability tensor, polarizations and molecular frames
	scatter   per-frame accumulation of the structure factor, and the frame driver
	rdf       radial distribution functions from pair-distance counts
	spectral  q grids, fade window and the g(r) to S(q) transform
	pbc       boxes and minimum-image displacements
	top       molecule tables and index groups
	traj/...  trajectory readers

The command goshg, in cmd/goshg, puts everything together.
*/
package shg
