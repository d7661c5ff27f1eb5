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

// DW_ATE_* encodings (DWARF4 §7.8) used when seeding base types.
const (
	dwAteAddress       = 0x01
	dwAteBoolean       = 0x02
	dwAteFloat         = 0x04
	dwAteSigned        = 0x05
	dwAteSignedChar    = 0x06
	dwAteUnsigned      = 0x07
	dwAteUnsignedChar  = 0x08
)

// seedTypes are created once per session (§4.3 "Base types are seeded
// once"). Named the way a C toolchain would name them, since that's what
// every decoder's type names are drawn from.
var seedTypes = []fact.Type{
	{Kind: fact.TypeVoid},
	{Kind: fact.TypeBase, Name: "int8_t", ByteSize: 1, Encoding: dwAteSigned},
	{Kind: fact.TypeBase, Name: "uint8_t", ByteSize: 1, Encoding: dwAteUnsigned},
	{Kind: fact.TypeBase, Name: "int16_t", ByteSize: 2, Encoding: dwAteSigned},
	{Kind: fact.TypeBase, Name: "uint16_t", ByteSize: 2, Encoding: dwAteUnsigned},
	{Kind: fact.TypeBase, Name: "int32_t", ByteSize: 4, Encoding: dwAteSigned},
	{Kind: fact.TypeBase, Name: "uint32_t", ByteSize: 4, Encoding: dwAteUnsigned},
	{Kind: fact.TypeBase, Name: "int64_t", ByteSize: 8, Encoding: dwAteSigned},
	{Kind: fact.TypeBase, Name: "uint64_t", ByteSize: 8, Encoding: dwAteUnsigned},
	{Kind: fact.TypeBase, Name: "float", ByteSize: 4, Encoding: dwAteFloat},
	{Kind: fact.TypeBase, Name: "double", ByteSize: 8, Encoding: dwAteFloat},
	{Kind: fact.TypeBase, Name: "char", ByteSize: 1, Encoding: dwAteSignedChar},
}

// seedBaseTypes registers the fixed base-type set in the session's type
// index, synthesizing their DIEs in the synthetic CU up front so later
// type resolution hits them by fingerprint instead of recreating
// structurally-identical base types under different names.
func (s *Session) seedBaseTypes() {
	cu := s.syntheticUnit()
	for i := range seedTypes {
		s.resolveType(&seedTypes[i], cu)
	}
}

// typeResolver tracks in-flight fact.Type pointers for one resolveType
// call tree, so a cyclic type (struct containing a pointer to itself)
// resolves to a single DIE instead of recursing forever (§4.3 "Cyclic
// types... supported by inserting a placeholder DIE into the index
// before recursing into members, so the self-reference resolves").
type typeResolver struct {
	s        *Session
	inFlight map[*fact.Type]*dwire.DIE
}

// resolveType returns the DIE for t, synthesizing it (and any type it
// depends on) if the fingerprint index has no match yet. A nil or
// TypeVoid t returns nil: void is represented by the absence of
// DW_AT_type, not a type DIE.
func (s *Session) resolveType(t *fact.Type, cu *dwire.Unit) *dwire.DIE {
	r := &typeResolver{s: s, inFlight: make(map[*fact.Type]*dwire.DIE)}
	return r.resolve(t, cu)
}

func (r *typeResolver) resolve(t *fact.Type, cu *dwire.Unit) *dwire.DIE {
	if t == nil || t.Kind == fact.TypeVoid {
		return nil
	}
	if d, ok := r.inFlight[t]; ok {
		return d
	}

	fp := t.Fingerprint()
	if d, ok := r.s.typeIndex[fp]; ok {
		return d
	}

	idx := cu.NewEntry(tagFor(t.Kind), 0)
	d := cu.Entries[idx]
	r.inFlight[t] = d
	r.s.typeIndex[fp] = d
	r.s.Stats.TypesCreated++

	switch t.Kind {
	case fact.TypeBase:
		d.Set(dwire.AttrName, dwire.Str(t.Name))
		d.Set(dwire.AttrByteSize, dwire.Unsigned(t.ByteSize))
		d.Set(dwire.AttrEncoding, dwire.Unsigned(t.Encoding))

	case fact.TypePointer:
		if inner := r.resolve(t.Inner, cu); inner != nil {
			d.SetRef(dwire.AttrType, inner)
		}

	case fact.TypeConst, fact.TypeVolatile:
		if inner := r.resolve(t.Inner, cu); inner != nil {
			d.SetRef(dwire.AttrType, inner)
		}

	case fact.TypeTypedef:
		d.Set(dwire.AttrName, dwire.Str(t.Name))
		if inner := r.resolve(t.Inner, cu); inner != nil {
			d.SetRef(dwire.AttrType, inner)
		}

	case fact.TypeArray:
		if elem := r.resolve(t.Element, cu); elem != nil {
			d.SetRef(dwire.AttrType, elem)
		}
		for _, c := range t.Counts {
			sub := cu.NewEntry(dwire.TagSubrangeType, idx)
			cu.Entries[sub].Set(dwire.AttrCount, dwire.Unsigned(c))
		}

	case fact.TypeStruct, fact.TypeUnion:
		d.Set(dwire.AttrName, dwire.Str(t.Name))
		d.Set(dwire.AttrByteSize, dwire.Unsigned(t.ByteSize))
		for _, m := range t.Members {
			midx := cu.NewEntry(dwire.TagMember, idx)
			md := cu.Entries[midx]
			md.Set(dwire.AttrName, dwire.Str(m.Name))
			md.Set(dwire.AttrDataMemberLoc, dwire.Unsigned(m.Offset))
			if mt := r.resolve(m.Type, cu); mt != nil {
				md.SetRef(dwire.AttrType, mt)
			}
		}

	case fact.TypeFunction:
		if ret := r.resolve(t.Return, cu); ret != nil {
			d.SetRef(dwire.AttrType, ret)
		}
		for _, p := range t.Params {
			pidx := cu.NewEntry(dwire.TagFormalParameter, idx)
			if pt := r.resolve(p, cu); pt != nil {
				cu.Entries[pidx].SetRef(dwire.AttrType, pt)
			}
		}
	}

	delete(r.inFlight, t)
	return d
}

func tagFor(k fact.TypeKind) dwire.Tag {
	switch k {
	case fact.TypePointer:
		return dwire.TagPointerType
	case fact.TypeArray:
		return dwire.TagArrayType
	case fact.TypeStruct:
		return dwire.TagStructureType
	case fact.TypeUnion:
		return dwire.TagUnionType
	case fact.TypeTypedef:
		return dwire.TagTypedef
	case fact.TypeConst:
		return dwire.TagConstType
	case fact.TypeVolatile:
		return dwire.TagVolatileType
	case fact.TypeFunction:
		return dwire.TagSubroutineType
	default:
		return dwire.TagBaseType
	}
}

// dieToType converts an existing type DIE back into the neutral model so
// it can be fingerprinted the same way a fact's type is (buildIndexes
// uses this to seed typeIndex from whatever the input binary already
// has). seen guards against a DIE cycle the same way typeResolver does
// for the opposite direction.
func dieToType(d *dwire.DIE, seen map[*dwire.DIE]*fact.Type) *fact.Type {
	if d == nil {
		return &fact.Type{Kind: fact.TypeVoid}
	}
	if t, ok := seen[d]; ok {
		return t
	}

	t := &fact.Type{}
	seen[d] = t

	if v, ok := d.Find(dwire.AttrName); ok {
		t.Name = v.Str
	}
	if v, ok := d.Find(dwire.AttrByteSize); ok {
		t.ByteSize = v.U
	}
	if v, ok := d.Find(dwire.AttrEncoding); ok {
		t.Encoding = v.U
	}

	switch d.Tag {
	case dwire.TagBaseType:
		t.Kind = fact.TypeBase
	case dwire.TagPointerType:
		t.Kind = fact.TypePointer
		t.Inner = refType(d, dwire.AttrType, seen)
	case dwire.TagConstType:
		t.Kind = fact.TypeConst
		t.Inner = refType(d, dwire.AttrType, seen)
	case dwire.TagVolatileType:
		t.Kind = fact.TypeVolatile
		t.Inner = refType(d, dwire.AttrType, seen)
	case dwire.TagTypedef:
		t.Kind = fact.TypeTypedef
		t.Inner = refType(d, dwire.AttrType, seen)
	case dwire.TagArrayType:
		t.Kind = fact.TypeArray
		t.Element = refType(d, dwire.AttrType, seen)
		for _, ci := range d.Children {
			child := d.Unit.Entries[ci]
			if child.Tag == dwire.TagSubrangeType {
				if v, ok := child.Find(dwire.AttrCount); ok {
					t.Counts = append(t.Counts, v.U)
				}
			}
		}
	case dwire.TagStructureType, dwire.TagUnionType:
		if d.Tag == dwire.TagStructureType {
			t.Kind = fact.TypeStruct
		} else {
			t.Kind = fact.TypeUnion
		}
		for _, ci := range d.Children {
			child := d.Unit.Entries[ci]
			if child.Tag != dwire.TagMember {
				continue
			}
			m := fact.Member{Name: child.Name(), Type: refType(child, dwire.AttrType, seen)}
			if v, ok := child.Find(dwire.AttrDataMemberLoc); ok {
				m.Offset = v.U
			}
			t.Members = append(t.Members, m)
		}
	case dwire.TagSubroutineType:
		t.Kind = fact.TypeFunction
		t.Return = refType(d, dwire.AttrType, seen)
		for _, ci := range d.Children {
			child := d.Unit.Entries[ci]
			if child.Tag == dwire.TagFormalParameter {
				t.Params = append(t.Params, refType(child, dwire.AttrType, seen))
			}
		}
	default:
		t.Kind = fact.TypeVoid
	}

	return t
}

func refType(d *dwire.DIE, attr dwire.Attr, seen map[*dwire.DIE]*fact.Type) *fact.Type {
	v, ok := d.Find(attr)
	if !ok || v.Kind != dwire.ValueReference {
		return nil
	}
	for i := range d.Attrs {
		if d.Attrs[i].Attr == attr {
			if d.Attrs[i].RefTarget == nil {
				return nil
			}
			return dieToType(d.Attrs[i].RefTarget, seen)
		}
	}
	return nil
}
