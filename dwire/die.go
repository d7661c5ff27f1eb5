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

// DIE is a single debug information entry. DIEs are addressed by index
// within their owning CU's arena (see design notes §9 "Cyclic DIE graph");
// Offset is only meaningful after a parse (the entry's original position)
// or after a serialization pass has run (its new position).
type DIE struct {
	Tag      Tag
	Offset   Offset
	Parent   int // index into the owning CU's arena, -1 for the root
	Children []int
	Attrs    []Attribute

	// Unit is the CU this DIE belongs to. Used at serialize time to decide
	// whether a reference to another DIE can use a CU-relative form
	// (ref4) or needs an absolute one (ref_addr).
	Unit *Unit
}

// Attribute is one (attr, form, value) triple attached to a DIE. Form is
// retained so round-tripping an unmerged DIE reproduces the original
// encoding exactly; the merge engine may widen it (§4.1 Edge-case policy).
type Attribute struct {
	Attr Attr
	Form Form
	Val  Value

	// RefTarget is the resolved identity of a ValueReference attribute.
	// References are never followed by raw offset during merge (§4.1:
	// "references are resolved lazily to DIE identities during merge");
	// Val.Ref only carries a wire offset immediately after parsing (before
	// ResolveReferences runs) or immediately before writing (after the
	// serializer's offset-assignment pass).
	RefTarget *DIE
}

// Find returns the first attribute of kind a, and whether it was present.
func (d *DIE) Find(a Attr) (Value, bool) {
	for _, at := range d.Attrs {
		if at.Attr == a {
			return at.Val, true
		}
	}
	return Value{}, false
}

// Set replaces the value of attribute a if present (keeping its form
// unless the value no longer fits, in which case the form is widened to
// the value's preferred form), or appends a new
// attribute with that value's preferred form if absent.
func (d *DIE) Set(a Attr, v Value) {
	for i := range d.Attrs {
		if d.Attrs[i].Attr == a {
			d.Attrs[i].Val = v
			if d.Attrs[i].Form.fixedSize(8) != 0 && d.Attrs[i].Form.fixedSize(8) < v.preferredForm().fixedSize(8) {
				// existing form can no longer represent the value: widen it
				// (§4.1 edge-case policy)
				d.Attrs[i].Form = v.preferredForm()
			}
			return
		}
	}
	d.Attrs = append(d.Attrs, Attribute{Attr: a, Form: v.preferredForm(), Val: v})
}

// SetRef sets (or appends) a reference attribute pointing at target. The
// actual wire offset is computed by the serializer once every DIE has a
// final position; until then only the identity matters.
func (d *DIE) SetRef(a Attr, target *DIE) {
	for i := range d.Attrs {
		if d.Attrs[i].Attr == a {
			d.Attrs[i].RefTarget = target
			d.Attrs[i].Val = Value{Kind: ValueReference}
			return
		}
	}
	d.Attrs = append(d.Attrs, Attribute{Attr: a, Form: FormRef4, Val: Value{Kind: ValueReference}, RefTarget: target})
}

// Remove deletes attribute a if present.
func (d *DIE) Remove(a Attr) {
	for i := range d.Attrs {
		if d.Attrs[i].Attr == a {
			d.Attrs = append(d.Attrs[:i], d.Attrs[i+1:]...)
			return
		}
	}
}

// Name returns the DW_AT_name string, or "" if absent.
func (d *DIE) Name() string {
	if v, ok := d.Find(AttrName); ok {
		return v.Str
	}
	return ""
}

// Standard attribute constants not defined by debug/dwarf's Attr type in
// older Go versions, or spelled out here for clarity at call sites. Values
// match the DWARF4 standard.
const (
	AttrLocation          Attr = 0x02
	AttrName              Attr = 0x03
	AttrByteSize          Attr = 0x0b
	AttrStmtList          Attr = 0x10
	AttrLowPC             Attr = 0x11
	AttrHighPC            Attr = 0x12
	AttrLanguage          Attr = 0x13
	AttrCompDir           Attr = 0x1b
	AttrConstValue        Attr = 0x1c
	AttrLowerBound        Attr = 0x22
	AttrProducer          Attr = 0x25
	AttrPrototyped        Attr = 0x27
	AttrReturnAddr        Attr = 0x2a
	AttrCount             Attr = 0x37
	AttrDataMemberLoc     Attr = 0x38
	AttrDeclFile          Attr = 0x3a
	AttrDeclLine          Attr = 0x3b
	AttrDeclaration       Attr = 0x3c
	AttrEncoding          Attr = 0x3e
	AttrExternal          Attr = 0x3f
	AttrFrameBase         Attr = 0x40
	AttrType              Attr = 0x49
	AttrNoreturn          Attr = 0x87
)

// Standard tag constants, spelled out for readability alongside the
// debug/dwarf equivalents this package aliases them to.
const (
	TagArrayType          Tag = 0x01
	TagFormalParameter    Tag = 0x05
	TagCompileUnit        Tag = 0x11
	TagStructureType      Tag = 0x13
	TagSubroutineType     Tag = 0x15
	TagTypedef            Tag = 0x16
	TagMember             Tag = 0x0d
	TagPointerType        Tag = 0x0f
	TagUnionType          Tag = 0x17
	TagUnspecifiedParams  Tag = 0x18
	TagVariable           Tag = 0x34
	TagBaseType           Tag = 0x24
	TagConstType          Tag = 0x26
	TagVolatileType       Tag = 0x35
	TagSubrangeType       Tag = 0x21
	TagSubprogram         Tag = 0x2e
)
