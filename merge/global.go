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

import (
	"github.com/jetsetilly/dwarfmerge/dwire"
	"github.com/jetsetilly/dwarfmerge/fact"
)

// mergeGlobal implements §4.3 "Merging a global variable fact": lookup by
// name; update location/type if found, otherwise create under the
// synthetic CU (suppressed by OmitVariables).
func (s *Session) mergeGlobal(g fact.GlobalVariable) {
	if g.Name == "" {
		return
	}

	if d, ok := s.nameIndex[g.Name]; ok {
		s.updateGlobal(d, g)
		s.Stats.GlobalsUpdated++
		return
	}

	if s.OmitVariables {
		return
	}

	cu := s.syntheticUnit()
	idx := cu.NewEntry(dwire.TagVariable, 0)
	d := cu.Entries[idx]
	d.Set(dwire.AttrName, dwire.Str(g.Name))
	d.Set(dwire.AttrExternal, dwire.Flag(true))
	if g.Type != nil {
		if t := s.resolveType(g.Type, s.syntheticUnit()); t != nil {
			d.SetRef(dwire.AttrType, t)
		}
	}
	if len(g.Location.Expr) > 0 {
		d.Set(dwire.AttrLocation, dwire.Block(g.Location.Expr))
	} else {
		d.Set(dwire.AttrLocation, addressLocation(g.Address, cu.AddrSize))
	}

	s.nameIndex[g.Name] = d
	s.Stats.GlobalsCreated++
}

func (s *Session) updateGlobal(d *dwire.DIE, g fact.GlobalVariable) {
	if g.Type != nil {
		if _, hasExisting := d.Find(dwire.AttrType); !hasExisting {
			if t := s.resolveType(g.Type, s.syntheticUnit()); t != nil {
				d.SetRef(dwire.AttrType, t)
			}
		}
	}
	if len(g.Location.Expr) > 0 {
		setIfAbsent(d, dwire.AttrLocation, dwire.Block(g.Location.Expr))
	}
}

// addressLocation builds a minimal DW_OP_addr location expression for a
// global whose decoder gave an address but no richer location. addrSize
// must match the target unit's address size (4 for ELF32, 8 for ELF64);
// DW_OP_addr's operand is exactly that many bytes wide.
func addressLocation(addr uint64, addrSize int) dwire.Value {
	const dwOpAddr = 0x03
	buf := make([]byte, 1+addrSize)
	buf[0] = dwOpAddr
	for i := 0; i < addrSize; i++ {
		buf[1+i] = byte(addr >> (8 * i))
	}
	return dwire.Block(buf)
}
