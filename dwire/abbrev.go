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
	"fmt"
	"strings"

	"github.com/jetsetilly/dwarfmerge/dwire/leb128"
)

// AttrForm pairs an attribute with the form it's encoded as. Abbreviation
// tables are sequences of these.
type AttrForm struct {
	Attr Attr
	Form Form
}

// Abbrev is one (code, tag, has-children, [(attr, form)...]) entry from
// .debug_abbrev. Every DIE in a CU names one of these by code.
type Abbrev struct {
	Code        uint64
	Tag         Tag
	HasChildren bool
	Attrs       []AttrForm
}

// signature is the (tag, has-children, attribute-shape) tuple the merge
// engine's abbreviation policy groups DIEs by (§4.3 Abbreviation policy).
// Two DIEs sharing a signature can share an abbreviation code.
func (a Abbrev) signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%v/", a.Tag, a.HasChildren)
	for _, af := range a.Attrs {
		fmt.Fprintf(&b, "%d:%d,", af.Attr, af.Form)
	}
	return b.String()
}

// Table is one CU's abbreviation table, keyed by code. Codes start at 1;
// code 0 terminates a sibling list and must never appear as a key.
type Table struct {
	byCode map[uint64]*Abbrev
	order  []uint64 // codes in first-use order, for deterministic serialization
}

// NewTable creates an empty abbreviation table.
func NewTable() *Table {
	return &Table{byCode: make(map[uint64]*Abbrev)}
}

// Lookup returns the abbreviation for code, or nil if it isn't present.
func (t *Table) Lookup(code uint64) *Abbrev {
	return t.byCode[code]
}

// Codes returns the table's codes in first-use order.
func (t *Table) Codes() []uint64 {
	return t.order
}

// add inserts ab under the next available code and returns that code. The
// caller is responsible for ensuring ab's signature isn't already present
// (see intern), as required by the "no duplicate abbreviations" invariant.
func (t *Table) add(ab Abbrev) uint64 {
	code := uint64(len(t.order) + 1)
	ab.Code = code
	cp := ab
	t.byCode[code] = &cp
	t.order = append(t.order, code)
	return code
}

// intern returns the code for an abbreviation matching (tag, hasChildren,
// attrs) exactly, creating a new entry if none exists. This keeps codes
// stable across a serialization pass and guarantees the "no duplicate
// abbreviations" invariant from spec §3.
func (t *Table) intern(tag Tag, hasChildren bool, attrs []AttrForm) uint64 {
	cand := Abbrev{Tag: tag, HasChildren: hasChildren, Attrs: attrs}
	sig := cand.signature()
	for _, code := range t.order {
		if t.byCode[code].signature() == sig {
			return code
		}
	}
	return t.add(cand)
}

// codeFor returns the abbreviation code matching d's current (tag,
// hasChildren, attribute-shape) signature. The serializer calls this after
// intern has already populated the table for every DIE in the unit, so the
// lookup always succeeds.
func (t *Table) codeFor(d *DIE, hasChildren bool) uint64 {
	var afs []AttrForm
	for _, a := range d.Attrs {
		afs = append(afs, AttrForm{Attr: a.Attr, Form: a.Form})
	}
	cand := Abbrev{Tag: d.Tag, HasChildren: hasChildren, Attrs: afs}
	sig := cand.signature()
	for _, code := range t.order {
		if t.byCode[code].signature() == sig {
			return code
		}
	}
	return 0
}

// DecodeTable parses one CU's abbreviation table out of .debug_abbrev
// starting at offset off, stopping at the table terminator (abbrev code 0).
func DecodeTable(abbrevSection []byte, off uint64) (*Table, error) {
	t := NewTable()
	b := abbrevSection[off:]
	pos := 0
	for {
		if pos >= len(b) {
			return nil, fmt.Errorf("abbrev table truncated at offset %#x", off)
		}
		code, n := leb128.DecodeULEB128(b[pos:])
		pos += n
		if code == 0 {
			break
		}
		tagVal, n := leb128.DecodeULEB128(b[pos:])
		pos += n
		hasChildren := b[pos] != 0
		pos++

		var attrs []AttrForm
		for {
			a, n := leb128.DecodeULEB128(b[pos:])
			pos += n
			f, n := leb128.DecodeULEB128(b[pos:])
			pos += n
			if a == 0 && f == 0 {
				break
			}
			attrs = append(attrs, AttrForm{Attr: Attr(a), Form: Form(f)})
		}

		ab := Abbrev{Code: code, Tag: Tag(tagVal), HasChildren: hasChildren, Attrs: attrs}
		cp := ab
		t.byCode[code] = &cp
		t.order = append(t.order, code)
	}
	return t, nil
}

// Encode renders the table to wire format, terminated with a zero code, and
// returns the encoded bytes.
func (t *Table) Encode() []byte {
	var buf []byte
	for _, code := range t.order {
		ab := t.byCode[code]
		buf = leb128.EncodeULEB128(buf, ab.Code)
		buf = leb128.EncodeULEB128(buf, uint64(ab.Tag))
		if ab.HasChildren {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		for _, af := range ab.Attrs {
			buf = leb128.EncodeULEB128(buf, uint64(af.Attr))
			buf = leb128.EncodeULEB128(buf, uint64(af.Form))
		}
		buf = leb128.EncodeULEB128(buf, 0)
		buf = leb128.EncodeULEB128(buf, 0)
	}
	buf = leb128.EncodeULEB128(buf, 0)
	return buf
}
