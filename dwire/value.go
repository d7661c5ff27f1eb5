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

import "fmt"

// ValueKind discriminates the Value variant. Attribute values are always
// represented this way, never as a bare interface{}, so that the merge
// engine can switch on kind without type assertions scattered everywhere.
type ValueKind int

const (
	ValueAddress ValueKind = iota
	ValueUnsigned
	ValueSigned
	ValueBlock
	ValueFlag
	ValueString
	ValueReference
)

// Offset identifies a DIE by its section-relative byte offset in the original
// (or, after serialization, the new) .debug_info stream.
type Offset uint64

// Value is a tagged attribute value. Exactly one field is meaningful,
// selected by Kind.
type Value struct {
	Kind ValueKind

	Addr  uint64
	U     uint64
	S     int64
	Block []byte
	Flag  bool
	Str   string
	Ref   Offset
}

func Addr(v uint64) Value      { return Value{Kind: ValueAddress, Addr: v} }
func Unsigned(v uint64) Value  { return Value{Kind: ValueUnsigned, U: v} }
func Signed(v int64) Value     { return Value{Kind: ValueSigned, S: v} }
func Block(v []byte) Value     { return Value{Kind: ValueBlock, Block: v} }
func Flag(v bool) Value        { return Value{Kind: ValueFlag, Flag: v} }
func Str(v string) Value       { return Value{Kind: ValueString, Str: v} }
func Ref(v Offset) Value       { return Value{Kind: ValueReference, Ref: v} }

// Equal reports whether two values are the same kind and payload. Used by
// the merge engine's override policy and by type fingerprinting.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueAddress:
		return v.Addr == o.Addr
	case ValueUnsigned:
		return v.U == o.U
	case ValueSigned:
		return v.S == o.S
	case ValueBlock:
		if len(v.Block) != len(o.Block) {
			return false
		}
		for i := range v.Block {
			if v.Block[i] != o.Block[i] {
				return false
			}
		}
		return true
	case ValueFlag:
		return v.Flag == o.Flag
	case ValueString:
		return v.Str == o.Str
	case ValueReference:
		return v.Ref == o.Ref
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueAddress:
		return fmt.Sprintf("%#x", v.Addr)
	case ValueUnsigned:
		return fmt.Sprintf("%d", v.U)
	case ValueSigned:
		return fmt.Sprintf("%d", v.S)
	case ValueBlock:
		return fmt.Sprintf("block[%d]", len(v.Block))
	case ValueFlag:
		return fmt.Sprintf("%v", v.Flag)
	case ValueString:
		return v.Str
	case ValueReference:
		return fmt.Sprintf("@%#x", v.Ref)
	default:
		return "<invalid>"
	}
}

// preferredForm returns the smallest form able to represent v without
// consulting context (the string pool's strp/inline choice is decided
// separately in strtab.go, since it depends on sharing, not just value).
func (v Value) preferredForm() Form {
	switch v.Kind {
	case ValueAddress:
		return FormAddr
	case ValueUnsigned:
		switch {
		case v.U <= 0xff:
			return FormData1
		case v.U <= 0xffff:
			return FormData2
		case v.U <= 0xffffffff:
			return FormData4
		default:
			return FormData8
		}
	case ValueSigned:
		return FormSdata
	case ValueBlock:
		return FormExprloc
	case ValueFlag:
		return FormFlagPresent
	case ValueString:
		return FormStrp
	case ValueReference:
		return FormRef4
	default:
		return FormData1
	}
}
