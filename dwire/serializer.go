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

	"github.com/jetsetilly/dwarfmerge/dwire/leb128"
)

// ProducerVersion is recorded in DW_AT_producer (and DW_AT_name) on the root
// DIE of the synthetic unit the merge engine creates, and names the DWARF v4
// target this serializer always emits, regardless of the input's version.
const ProducerVersion = "dwarfmerge (DWARF v4)"

// Serialize re-encodes every unit in f to wire-format DWARF v4 sections
// (§9 open question: v4 output regardless of input version), assigning
// fresh offsets to every DIE in a pre-order walk and patching every
// reference attribute to its target's new offset (§4.1 Serialize).
//
// order is the endianness to write with; it should match the endianness
// Parse was called with so the round-trip invariant holds.
func Serialize(f *Forest, order binary.ByteOrder) Sections {
	str := NewStringTable()

	// pass 0: mark string usage across the whole forest, in the same
	// traversal order everything else uses, so the "shared by >=2 DIEs"
	// rule in the string-pool policy sees accurate counts before any
	// offsets are handed out.
	walkForest(f, func(d *DIE) {
		for _, a := range d.Attrs {
			if a.Val.Kind == ValueString {
				str.Mark(a.Val.Str)
			}
		}
	})

	// pass 1: decide final forms (string inline-vs-strp, reference
	// ref4-vs-ref_addr) and rebuild each unit's abbreviation table from
	// the DIEs actually present (§4.3 abbreviation policy: never leave
	// orphan abbreviations).
	for _, u := range f.Units {
		if u.AddrSize == 0 {
			u.AddrSize = 4
		}
		u.Abbrev = NewTable()
		walkUnit(u, func(d *DIE) {
			for i := range d.Attrs {
				a := &d.Attrs[i]
				switch a.Val.Kind {
				case ValueString:
					if str.PreferIndirect(a.Val.Str) {
						a.Form = FormStrp
					} else {
						a.Form = FormString
					}
				case ValueReference:
					if a.RefTarget != nil && a.RefTarget.Unit == u {
						a.Form = FormRef4
					} else {
						a.Form = FormRefAddr
					}
				}
			}
			var afs []AttrForm
			for _, a := range d.Attrs {
				afs = append(afs, AttrForm{Attr: a.Attr, Form: a.Form})
			}
			u.Abbrev.intern(d.Tag, len(d.Children) > 0, afs)
		})
	}

	// pass 2: concatenate abbreviation tables, recording each unit's
	// AbbrevOff as the running byte length before its table is appended.
	var abbrevSec []byte
	for _, u := range f.Units {
		u.AbbrevOff = uint64(len(abbrevSec))
		abbrevSec = append(abbrevSec, u.Abbrev.Encode()...)
	}

	// pass 3: assign fresh, section-global offsets to every DIE in every
	// unit, in pre-order, tracking each unit's new header offset as we go.
	globalPos := Offset(0)
	const headerSize = Offset(11) // 32-bit DWARF v4: length(4)+version(2)+abbrev_off(4)+addr_size(1)
	for _, u := range f.Units {
		u.HeaderOff = globalPos
		pos := globalPos + headerSize
		if root := u.Root(); root != nil {
			assignOffsets(root, u, &pos)
		}
		globalPos = pos
	}

	// pass 4: write every unit's bytes, now that every DIE's final offset
	// and every unit's header offset is known. String offsets are
	// assigned here, in the same traversal order as pass 0, so
	// first-occurrence order is identical and the result is deterministic.
	var info []byte
	for _, u := range f.Units {
		unitStart := len(info)
		root := u.Root()

		// placeholder length; patched once the unit body is known
		info = append(info, make([]byte, 4)...)
		var body []byte
		body = appendU16(body, order, 4) // version, always 4 per the producer decision
		body = appendU32(body, order, uint32(u.AbbrevOff))
		body = append(body, byte(u.AddrSize))

		if root != nil {
			body = encodeDIE(body, root, u, order, str)
		}

		order.PutUint32(info[unitStart:unitStart+4], uint32(len(body)))
		info = append(info, body...)
	}

	return Sections{
		Info:   info,
		Abbrev: abbrevSec,
		Str:    str.Encode(),
	}
}

// walkForest visits every DIE in every unit, pre-order.
func walkForest(f *Forest, visit func(*DIE)) {
	for _, u := range f.Units {
		walkUnit(u, visit)
	}
}

// walkUnit visits every DIE in u, pre-order.
func walkUnit(u *Unit, visit func(*DIE)) {
	if root := u.Root(); root != nil {
		walkDIE(root, u, visit)
	}
}

func walkDIE(d *DIE, u *Unit, visit func(*DIE)) {
	visit(d)
	for _, ci := range d.Children {
		walkDIE(u.Entries[ci], u, visit)
	}
}

// assignOffsets is the §4.1 "assign fresh offsets to every DIE in a
// pre-order walk" step. pos is section-global; d.Offset ends up
// section-global too, matching the convention ResolveReferences uses.
func assignOffsets(d *DIE, u *Unit, pos *Offset) {
	d.Offset = *pos
	code := u.Abbrev.codeFor(d, len(d.Children) > 0)
	*pos += Offset(leb128.SizeULEB128(code))
	for _, a := range d.Attrs {
		*pos += Offset(attrSize(a, u.AddrSize))
	}
	for _, ci := range d.Children {
		assignOffsets(u.Entries[ci], u, pos)
	}
	if len(d.Children) > 0 {
		*pos++ // terminator abbrev code 0
	}
}

// attrSize returns the exact number of bytes encodeValue will write for a,
// needed by assignOffsets before any bytes are actually written.
func attrSize(a Attribute, addrSize int) int {
	switch a.Form {
	case FormAddr:
		return addrSize
	case FormData1, FormFlag, FormRef1:
		return 1
	case FormData2, FormRef2:
		return 2
	case FormData4, FormSecOffset, FormStrp, FormRefAddr, FormRef4:
		return 4
	case FormData8, FormRef8, FormRefSig8:
		return 8
	case FormSdata:
		return leb128.SizeSLEB128(a.Val.S)
	case FormUdata:
		return leb128.SizeULEB128(a.Val.U)
	case FormString:
		return len(a.Val.Str) + 1
	case FormBlock1:
		return 1 + len(a.Val.Block)
	case FormBlock2:
		return 2 + len(a.Val.Block)
	case FormBlock4:
		return 4 + len(a.Val.Block)
	case FormBlock, FormExprloc:
		return leb128.SizeULEB128(uint64(len(a.Val.Block))) + len(a.Val.Block)
	case FormFlagPresent:
		return 0
	default:
		return 0
	}
}

// encodeDIE writes d and its subtree to buf, in the same pre-order used by
// assignOffsets, and returns the extended slice.
func encodeDIE(buf []byte, d *DIE, u *Unit, order binary.ByteOrder, str *StringTable) []byte {
	hasChildren := len(d.Children) > 0
	code := u.Abbrev.codeFor(d, hasChildren)
	buf = leb128.EncodeULEB128(buf, code)

	for _, a := range d.Attrs {
		buf = encodeValue(buf, a, u, order, str)
	}

	for _, ci := range d.Children {
		buf = encodeDIE(buf, u.Entries[ci], u, order, str)
	}

	if hasChildren {
		buf = leb128.EncodeULEB128(buf, 0)
	}

	return buf
}

func encodeValue(buf []byte, a Attribute, u *Unit, order binary.ByteOrder, str *StringTable) []byte {
	switch a.Form {
	case FormAddr:
		if u.AddrSize == 8 {
			return appendU64(buf, order, a.Val.Addr)
		}
		return appendU32(buf, order, uint32(a.Val.Addr))
	case FormData1:
		return append(buf, byte(a.Val.U))
	case FormData2:
		return appendU16(buf, order, uint16(a.Val.U))
	case FormData4:
		return appendU32(buf, order, uint32(a.Val.U))
	case FormData8:
		return appendU64(buf, order, a.Val.U)
	case FormSdata:
		return leb128.EncodeSLEB128(buf, a.Val.S)
	case FormUdata:
		return leb128.EncodeULEB128(buf, a.Val.U)
	case FormString:
		buf = append(buf, a.Val.Str...)
		return append(buf, 0)
	case FormStrp:
		off := str.Offset(a.Val.Str)
		return appendU32(buf, order, off)
	case FormSecOffset:
		return appendU32(buf, order, uint32(a.Val.U))
	case FormFlag:
		if a.Val.Flag {
			return append(buf, 1)
		}
		return append(buf, 0)
	case FormFlagPresent:
		return buf
	case FormBlock1:
		buf = append(buf, byte(len(a.Val.Block)))
		return append(buf, a.Val.Block...)
	case FormBlock2:
		buf = appendU16(buf, order, uint16(len(a.Val.Block)))
		return append(buf, a.Val.Block...)
	case FormBlock4:
		buf = appendU32(buf, order, uint32(len(a.Val.Block)))
		return append(buf, a.Val.Block...)
	case FormBlock, FormExprloc:
		buf = leb128.EncodeULEB128(buf, uint64(len(a.Val.Block)))
		return append(buf, a.Val.Block...)
	case FormRef4:
		target := a.RefTarget
		if target == nil {
			return appendU32(buf, order, 0)
		}
		return appendU32(buf, order, uint32(target.Offset-u.HeaderOff))
	case FormRefAddr:
		target := a.RefTarget
		if target == nil {
			return appendU32(buf, order, 0)
		}
		return appendU32(buf, order, uint32(target.Offset))
	default:
		return buf
	}
}

func appendU16(buf []byte, order binary.ByteOrder, v uint16) []byte {
	b := make([]byte, 2)
	order.PutUint16(b, v)
	return append(buf, b...)
}

func appendU32(buf []byte, order binary.ByteOrder, v uint32) []byte {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return append(buf, b...)
}

func appendU64(buf []byte, order binary.ByteOrder, v uint64) []byte {
	b := make([]byte, 8)
	order.PutUint64(b, v)
	return append(buf, b...)
}
