/*
 * molecules.go, part of goSHG
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

package top

import (
	"fmt"
	"slices"

	shg "github.com/rmera/goshg"
)

// Molecules splits the atoms of a system in molecules. Molecule m spans
// the atoms Index[m] to Index[m+1]-1, so Index has one element more than
// there are molecules.
type Molecules struct {
	Index []int
}

// Uniform returns the table for natoms atoms split in molecules of size atoms each.
func Uniform(natoms, size int) (*Molecules, error) {
	if size < 1 || natoms < size || natoms%size != 0 {
		return nil, fmt.Errorf("goSHG/top.Uniform: can't split %d atoms in molecules of %d atoms", natoms, size)
	}
	M := &Molecules{Index: make([]int, natoms/size+1)}
	for i := range M.Index {
		M.Index[i] = i * size
	}
	return M, nil
}

// FromResidues returns the table where a new molecule starts each time the residue
// number or the residue name changes. resnames can be nil.
func FromResidues(resids []int, resnames []string) (*Molecules, error) {
	if len(resids) == 0 {
		return nil, fmt.Errorf("goSHG/top.FromResidues: no atoms given")
	}
	if resnames != nil && len(resnames) != len(resids) {
		return nil, fmt.Errorf("goSHG/top.FromResidues: %d residue numbers but %d residue names", len(resids), len(resnames))
	}
	M := &Molecules{Index: []int{0}}
	for i := 1; i < len(resids); i++ {
		if resids[i] != resids[i-1] || (resnames != nil && resnames[i] != resnames[i-1]) {
			M.Index = append(M.Index, i)
		}
	}
	M.Index = append(M.Index, len(resids))
	return M, nil
}

// Len returns the number of molecules.
func (M *Molecules) Len() int {
	return len(M.Index) - 1
}

// Atoms returns the total number of atoms.
func (M *Molecules) Atoms() int {
	return M.Index[len(M.Index)-1]
}

// First returns the index of the first atom of molecule m.
func (M *Molecules) First(m int) int {
	return M.Index[m]
}

// Size returns the number of atoms in molecule m.
func (M *Molecules) Size(m int) int {
	return M.Index[m+1] - M.Index[m]
}

// MolOf returns the molecule to which the given atom belongs, or -1 if
// the atom is out of range.
func (M *Molecules) MolOf(atom int) int {
	if atom < 0 || atom >= M.Atoms() {
		return -1
	}
	i, found := slices.BinarySearch(M.Index, atom)
	if found {
		return i
	}
	return i - 1
}

// Group is a named, ordered set of molecules.
type Group struct {
	Name      string
	Molecules []int
}

// Len returns the number of molecules in the group.
func (G Group) Len() int {
	return len(G.Molecules)
}

// AllMolecules returns a group with every molecule that has exactly size atoms.
func AllMolecules(name string, M *Molecules, size int) Group {
	G := Group{Name: name}
	for m := 0; m < M.Len(); m++ {
		if M.Size(m) == size {
			G.Molecules = append(G.Molecules, m)
		}
	}
	return G
}

// AtomsToMolecules turns a list of atoms into the group of molecules they form.
// The atoms must be a set of whole molecules, each listed in order starting from its first atom.
func AtomsToMolecules(name string, atoms []int, M *Molecules) (Group, error) {
	G := Group{Name: name}
	for i := 0; i < len(atoms); {
		m := M.MolOf(atoms[i])
		if m < 0 || M.First(m) != atoms[i] {
			// 1-based numbers, as in the index file.
			return G, shg.NewSelectionError("AtomsToMolecules", name, "index[%d]=%d does not correspond to the first atom of a molecule", i+1, atoms[i]+1)
		}
		for j := M.Index[m]; j < M.Index[m+1]; j++ {
			if i >= len(atoms) || atoms[i] != j {
				return G, shg.NewSelectionError("AtomsToMolecules", name, "the index group is not a set of whole molecules: molecule %d (atoms %d-%d) is incomplete", m+1, M.Index[m]+1, M.Index[m+1])
			}
			i++
		}
		G.Molecules = append(G.Molecules, m)
	}
	if len(G.Molecules) == 0 {
		return G, shg.NewSelectionError("AtomsToMolecules", name, "empty group")
	}
	return G, nil
}

// CheckSize returns a SelectionError if any molecule in G has fewer than min atoms.
func CheckSize(G Group, M *Molecules, min int) error {
	for _, m := range G.Molecules {
		if m < 0 || m >= M.Len() {
			return shg.NewSelectionError("CheckSize", G.Name, "molecule %d out of range (%d molecules)", m+1, M.Len())
		}
		if s := M.Size(m); s < min {
			return shg.NewSelectionError("CheckSize", G.Name, "molecule %d has %d atoms, need at least %d", m+1, s, min)
		}
	}
	return nil
}
