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

package symtab

import (
	"encoding/binary"
)

// Encode renders t back to the on-wire .symtab/.strtab pair (debug/elf has
// no writer counterpart to its reader, so this mirrors dwire.StringTable's
// encode-by-first-occurrence approach for the symbol string pool). addrSize
// selects the ELF32 or ELF64 Sym layout.
func (t *Table) Encode(addrSize int, order binary.ByteOrder) (symtab, strtab []byte) {
	nameOff := make(map[string]uint32)
	strtab = []byte{0}
	for _, s := range t.Symbols {
		if s.Name == "" {
			nameOff[s.Name] = 0
			continue
		}
		if _, ok := nameOff[s.Name]; ok {
			continue
		}
		nameOff[s.Name] = uint32(len(strtab))
		strtab = append(strtab, s.Name...)
		strtab = append(strtab, 0)
	}

	entrySize := 16
	if addrSize == 8 {
		entrySize = 24
	}
	// row 0 is the all-zero null symbol, which debug/elf's Symbols omits
	symtab = make([]byte, entrySize*(len(t.Symbols)+1))
	for i, s := range t.Symbols {
		row := symtab[(i+1)*entrySize : (i+2)*entrySize]
		name := nameOff[s.Name]
		shndx := uint16(s.Section)
		if addrSize == 8 {
			order.PutUint32(row[0:4], name)
			row[4] = s.Info
			row[5] = s.Other
			order.PutUint16(row[6:8], shndx)
			order.PutUint64(row[8:16], s.Value)
			order.PutUint64(row[16:24], s.Size)
		} else {
			order.PutUint32(row[0:4], name)
			order.PutUint32(row[4:8], uint32(s.Value))
			order.PutUint32(row[8:12], uint32(s.Size))
			row[12] = s.Info
			row[13] = s.Other
			order.PutUint16(row[14:16], shndx)
		}
	}
	return symtab, strtab
}
