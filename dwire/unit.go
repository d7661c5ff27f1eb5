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

package dwire

// Unit is one compilation unit: a header plus a dense arena of DIEs,
// indexed by position rather than offset so cyclic references can be
// built by inserting a placeholder before recursing (§9 design notes).
type Unit struct {
	Version    uint16
	Is64Bit    bool
	AddrSize   int
	AbbrevOff  uint64 // offset into .debug_abbrev this unit originally used
	HeaderOff  Offset // offset of this unit's header in .debug_info

	Abbrev *Table

	// Entries is the dense arena. Entries[0] is always the compile_unit
	// root DIE.
	Entries []*DIE
}

// Root returns the CU's compile_unit DIE.
func (u *Unit) Root() *DIE {
	if len(u.Entries) == 0 {
		return nil
	}
	return u.Entries[0]
}

// NewEntry appends a fresh DIE to the arena under parent (by index, -1 for
// the root) and returns its index. The returned index is stable for the
// lifetime of the Unit and is what cyclic type construction inserts before
// recursing into members (§4.3 type resolution).
func (u *Unit) NewEntry(tag Tag, parent int) int {
	idx := len(u.Entries)
	d := &DIE{Tag: tag, Parent: parent, Unit: u}
	u.Entries = append(u.Entries, d)
	if parent >= 0 && parent < len(u.Entries)-1 {
		u.Entries[parent].Children = append(u.Entries[parent].Children, idx)
	}
	return idx
}

// ByOffset returns the arena index of the DIE that was at byte offset off
// after the most recent parse or serialize, and whether it was found.
func (u *Unit) ByOffset(off Offset) (int, bool) {
	for i, d := range u.Entries {
		if d.Offset == off {
			return i, true
		}
	}
	return 0, false
}

// PCRange returns the root DIE's low_pc/high_pc range, if both are present.
// high_pc in DWARF4 is usually an offset-from-low_pc ("size"), which this
// normalizes to an absolute end address.
func (u *Unit) PCRange() (low, high uint64, ok bool) {
	root := u.Root()
	if root == nil {
		return 0, 0, false
	}
	lv, lok := root.Find(AttrLowPC)
	hv, hok := root.Find(AttrHighPC)
	if !lok || !hok {
		return 0, 0, false
	}
	low = lv.Addr
	switch hv.Kind {
	case ValueAddress:
		high = hv.Addr
	default:
		high = low + hv.U
	}
	return low, high, true
}

// Forest is every compilation unit parsed from (or to be serialized into)
// a binary's DWARF sections, plus the string pool they share.
type Forest struct {
	Units []*Unit
	Str   *StringTable
}

// NewForest creates an empty Forest with a fresh string pool.
func NewForest() *Forest {
	return &Forest{Str: NewStringTable()}
}
