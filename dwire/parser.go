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

import (
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/dwarfmerge/dwire/leb128"
	"github.com/jetsetilly/dwarfmerge/errors"
)

// Sections bundles the raw bytes of the four DWARF sections dwarfmerge
// reads and writes, named after their ELF section names (§6 inputs).
// Parse and Serialize handle Info, Abbrev and Str only; Line is carried
// through unchanged by the caller.
type Sections struct {
	Info   []byte
	Abbrev []byte
	Str    []byte
	Line   []byte
}

// reader walks a byte slice, tracking the current section-relative offset so
// every DIE can record its original position.
type reader struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

func (r *reader) u8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) u16() uint16 {
	v := r.order.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u32() uint32 {
	v := r.order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) u64() uint64 {
	v := r.order.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

func (r *reader) uleb() uint64 {
	v, n := leb128.DecodeULEB128(r.buf[r.pos:])
	r.pos += n
	return v
}

func (r *reader) sleb() int64 {
	v, n := leb128.DecodeSLEB128(r.buf[r.pos:])
	r.pos += n
	return v
}

func (r *reader) bytes(n int) []byte {
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v
}

func (r *reader) cstring() string {
	start := r.pos
	for r.buf[r.pos] != 0 {
		r.pos++
	}
	s := string(r.buf[start:r.pos])
	r.pos++
	return s
}

func (r *reader) done() bool { return r.pos >= len(r.buf) }

// Parse decodes an entire .debug_info stream into a Forest. order is the
// ELF file's byte order (§4.1: "understands little/big-endian").
func Parse(sec Sections, order binary.ByteOrder) (*Forest, error) {
	f := NewForest()
	f.Str = ParseStringTable(sec.Str)

	r := &reader{buf: sec.Info, order: order}
	for !r.done() {
		u, err := parseUnit(r, sec.Abbrev, order)
		if err != nil {
			return nil, err
		}
		f.Units = append(f.Units, u)
	}
	f.ResolveStrings()
	f.ResolveReferences()
	return f, nil
}

// ResolveReferences converts every ValueReference attribute's raw wire
// offset into a RefTarget identity (§4.1: "References are resolved lazily
// to DIE identities during merge"). Call after any structural edit that
// might have invalidated stale RefTarget pointers from a prior parse is
// unnecessary — RefTarget, once resolved, survives merge edits regardless
// of offset changes, since it's a pointer, not a position.
func (f *Forest) ResolveReferences() {
	byOffset := make(map[Offset]*DIE)
	for _, u := range f.Units {
		for _, d := range u.Entries {
			byOffset[d.Offset] = d
		}
	}
	for _, u := range f.Units {
		for _, d := range u.Entries {
			for i := range d.Attrs {
				if d.Attrs[i].Val.Kind == ValueReference && d.Attrs[i].RefTarget == nil {
					if target, ok := byOffset[d.Attrs[i].Val.Ref]; ok {
						d.Attrs[i].RefTarget = target
					}
				}
			}
		}
	}
}

func parseUnit(r *reader, abbrevSection []byte, order binary.ByteOrder) (*Unit, error) {
	headerOff := Offset(r.pos)

	initialLength := r.u32()
	is64 := initialLength == 0xffffffff
	var unitLength uint64
	if is64 {
		unitLength = r.u64()
	} else {
		unitLength = uint64(initialLength)
	}
	unitEnd := r.pos + int(unitLength)

	version := r.u16()
	var abbrevOff uint64
	if is64 {
		abbrevOff = r.u64()
	} else {
		abbrevOff = uint64(r.u32())
	}
	addrSize := int(r.u8())

	table, err := DecodeTable(abbrevSection, abbrevOff)
	if err != nil {
		return nil, fmt.Errorf("decoding abbrev table for CU at %#x: %w", headerOff, err)
	}

	u := &Unit{
		Version:   version,
		Is64Bit:   is64,
		AddrSize:  addrSize,
		AbbrevOff: abbrevOff,
		HeaderOff: headerOff,
		Abbrev:    table,
	}

	// parent stack of arena indices; -1 sentinel root parent
	stack := []int{-1}
	for r.pos < unitEnd {
		dieOff := Offset(r.pos)
		code := r.uleb()
		if code == 0 {
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		ab := table.Lookup(code)
		if ab == nil {
			return nil, fmt.Errorf("abbreviation code %d not present in table for CU at %#x", code, headerOff)
		}

		parent := stack[len(stack)-1]
		idx := len(u.Entries)
		d := &DIE{Tag: ab.Tag, Offset: dieOff, Parent: parent, Unit: u}
		u.Entries = append(u.Entries, d)
		if parent >= 0 {
			u.Entries[parent].Children = append(u.Entries[parent].Children, idx)
		}

		for _, af := range ab.Attrs {
			val, newForm, err := decodeValue(r, af.Attr, af.Form, is64, addrSize, headerOff)
			if err != nil {
				return nil, err
			}
			d.Attrs = append(d.Attrs, Attribute{Attr: af.Attr, Form: newForm, Val: val})
		}

		if ab.HasChildren {
			stack = append(stack, idx)
		}
	}

	return u, nil
}

// decodeValue reads one attribute's value per its form. Indirect forms
// (DW_FORM_indirect) recurse to read the real form first. Reference forms
// other than ref_addr are CU-relative on the wire; headerOff normalizes
// them to an absolute section offset so every reference, regardless of
// form, can be resolved the same way by ResolveReferences.
func decodeValue(r *reader, attr Attr, form Form, is64 bool, addrSize int, headerOff Offset) (Value, Form, error) {
	switch form {
	case FormAddr:
		if addrSize == 8 {
			return Addr(r.u64()), form, nil
		}
		return Addr(uint64(r.u32())), form, nil
	case FormData1:
		return Unsigned(uint64(r.u8())), form, nil
	case FormData2:
		return Unsigned(uint64(r.u16())), form, nil
	case FormData4:
		return Unsigned(uint64(r.u32())), form, nil
	case FormData8:
		return Unsigned(r.u64()), form, nil
	case FormSdata:
		return Signed(r.sleb()), form, nil
	case FormUdata:
		return Unsigned(r.uleb()), form, nil
	case FormString:
		return Str(r.cstring()), form, nil
	case FormStrp:
		var off uint32
		if is64 {
			off = uint32(r.u64())
		} else {
			off = r.u32()
		}
		return Value{Kind: ValueString, U: uint64(off)}, form, nil
	case FormFlag:
		return Flag(r.u8() != 0), form, nil
	case FormFlagPresent:
		return Flag(true), form, nil
	case FormBlock1:
		n := int(r.u8())
		return Block(r.bytes(n)), form, nil
	case FormBlock2:
		n := int(r.u16())
		return Block(r.bytes(n)), form, nil
	case FormBlock4:
		n := int(r.u32())
		return Block(r.bytes(n)), form, nil
	case FormBlock, FormExprloc:
		n := int(r.uleb())
		return Block(r.bytes(n)), form, nil
	case FormRef1:
		return Ref(headerOff + Offset(r.u8())), form, nil
	case FormRef2:
		return Ref(headerOff + Offset(r.u16())), form, nil
	case FormRef4:
		return Ref(headerOff + Offset(r.u32())), form, nil
	case FormRef8:
		return Ref(headerOff + Offset(r.u64())), form, nil
	case FormRefUdata:
		return Ref(headerOff + Offset(r.uleb())), form, nil
	case FormRefAddr:
		if is64 {
			return Ref(Offset(r.u64())), form, nil
		}
		return Ref(Offset(r.u32())), form, nil
	case FormSecOffset:
		if is64 {
			return Unsigned(r.u64()), form, nil
		}
		return Unsigned(uint64(r.u32())), form, nil
	case FormRefSig8:
		return Unsigned(r.u64()), form, nil
	case FormIndirect:
		real := Form(r.uleb())
		return decodeValue(r, attr, real, is64, addrSize, headerOff)
	default:
		// unknown forms are fatal per §7 DWARF-parse errors.
		return Value{}, form, errors.Categorised(errors.CategoryDWARFParse, errors.DWARFUnknownForm, uint64(form), attr)
	}
}

// resolveString resolves a ValueString's Kind carrying a pool offset (as
// produced for FormStrp by decodeValue) to its actual text. Call once a
// Forest's string table is available; decodeValue can't do this itself
// since it has no pool reference.
func resolveString(v Value, pool *StringTable) Value {
	if v.Kind != ValueString || v.Str != "" {
		return v
	}
	s, _ := pool.Lookup(uint32(v.U))
	return Value{Kind: ValueString, Str: s}
}

// ResolveStrings walks every DIE in the Forest and fills in the literal
// text for any FormStrp attribute decoded as a bare offset. Parse calls
// this automatically.
func (f *Forest) ResolveStrings() {
	for _, u := range f.Units {
		for _, d := range u.Entries {
			for i := range d.Attrs {
				if d.Attrs[i].Form == FormStrp {
					d.Attrs[i].Val = resolveString(d.Attrs[i].Val, f.Str)
				}
			}
		}
	}
}
