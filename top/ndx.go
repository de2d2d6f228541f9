/*
 * ndx.go, part of goSHG
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
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	shg "github.com/rmera/goshg"
)

// IndexGroup is a group of atoms from a Gromacs index file, with 0-based atom indexes.
type IndexGroup struct {
	Name  string
	Atoms []int
}

var ndxHeader = regexp.MustCompile(`^\[\p{Zs}*(.*?)\p{Zs}*\]$`)

// ReadNdx reads all the groups in a Gromacs ndx file.
func ReadNdx(r io.Reader) ([]IndexGroup, error) {
	var ret []IndexGroup
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for s.Scan() {
		line++
		l := cleanString(s.Text())
		if l == "" {
			continue
		}
		if m := ndxHeader.FindStringSubmatch(l); m != nil {
			ret = append(ret, IndexGroup{Name: m[1]})
			continue
		}
		if len(ret) == 0 {
			return nil, fmt.Errorf("goSHG/top.ReadNdx: line %d: atom numbers before the first group header", line)
		}
		cur := &ret[len(ret)-1]
		for _, f := range strings.Fields(l) {
			a, err := strconv.Atoi(f)
			if err != nil || a < 1 {
				return nil, fmt.Errorf("goSHG/top.ReadNdx: line %d: invalid atom number %q", line, f)
			}
			cur.Atoms = append(cur.Atoms, a-1)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("goSHG/top.ReadNdx: %w", err)
	}
	return ret, nil
}

// ReadNdxFile reads the groups in the given ndx file.
func ReadNdxFile(name string) ([]IndexGroup, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadNdx(f)
}

// FindGroup returns the group with the given name, ignoring case, or the group at that
// position if name is a (0-based) number.
func FindGroup(groups []IndexGroup, name string) (IndexGroup, error) {
	i := slices.IndexFunc(groups, func(g IndexGroup) bool { return strings.EqualFold(g.Name, name) })
	if i < 0 {
		if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < len(groups) {
			i = n
		}
	}
	if i < 0 {
		return IndexGroup{}, shg.NewSelectionError("FindGroup", name, "no such group in the index (%d groups)", len(groups))
	}
	return groups[i], nil
}

// Returns a string without gromacs comments (sequences starting with ';'),
// trailing and leading spaces, tabs and newlines
func cleanString(s string) string {
	f := strings.Split(s, ";")[0]
	return strings.Trim(f, "\n\t\r ")
}
