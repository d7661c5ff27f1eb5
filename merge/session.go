// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package merge

import "github.com/jetsetilly/dwarfmerge/dwire"

// syntheticUnit returns the session's designated synthetic CU (§4.3
// "fall back to a designated synthetic CU created once per session"),
// creating it on first use. It also serves as the home for every
// synthesized type and global variable: the spec allows either a
// dedicated type CU or the synthetic one, and one CU is simplest to
// reason about deterministically.
func (s *Session) syntheticUnit() *dwire.Unit {
	if s.synthetic != nil {
		return s.synthetic
	}

	addrSize := 8
	if len(s.Forest.Units) > 0 {
		addrSize = s.Forest.Units[0].AddrSize
	}

	u := &dwire.Unit{AddrSize: addrSize, Version: 4}
	idx := u.NewEntry(dwire.TagCompileUnit, -1)
	root := u.Entries[idx]
	root.Set(dwire.AttrName, dwire.Str(dwire.ProducerVersion))
	root.Set(dwire.AttrProducer, dwire.Str(dwire.ProducerVersion))

	s.Forest.Units = append(s.Forest.Units, u)
	s.synthetic = u
	return u
}

// homeCUFor picks the compilation unit a new subprogram at addr belongs
// under (§4.3 "prefer the CU whose PC range covers the function's
// entry; fall back to a designated synthetic CU").
func (s *Session) homeCUFor(addr uint64) *dwire.Unit {
	for _, u := range s.Forest.Units {
		if u == s.synthetic {
			continue
		}
		if low, high, ok := u.PCRange(); ok && addr >= low && addr < high {
			return u
		}
	}
	return s.syntheticUnit()
}
