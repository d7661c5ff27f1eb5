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

// Package fact is the neutral, source-agnostic representation of what a
// disassembler can tell us about a binary (spec.md §3 Fact set). Every
// decoder (decode/anvill, decode/strbsi, decode/ghidra) produces a Set;
// the merge engine never sees a source-specific type (§9 "Fact-source
// polymorphism").
package fact

// TypeKind discriminates the Type variant (§3: "one of: base; pointer;
// array; struct/union; typedef; const/volatile; function; void").
type TypeKind int

const (
	TypeVoid TypeKind = iota
	TypeBase
	TypePointer
	TypeArray
	TypeStruct
	TypeUnion
	TypeTypedef
	TypeConst
	TypeVolatile
	TypeFunction
)

// Member is one field of a struct or union type.
type Member struct {
	Name   string
	Offset uint64
	Type   *Type
}

// Type is a recursive, neutral description of a DWARF type. Exactly the
// fields relevant to Kind are meaningful; this mirrors dwire.Value's
// tagged-variant design rather than a loosely-typed map.
type Type struct {
	Kind TypeKind

	// TypeBase
	Name     string
	ByteSize uint64
	Encoding uint64 // DW_ATE_* value

	// TypePointer, TypeConst, TypeVolatile, TypeTypedef
	Inner *Type

	// TypeArray
	Element *Type
	Counts  []uint64 // one subrange count per array dimension

	// TypeStruct, TypeUnion (Name above names the tag)
	Members []Member

	// TypeFunction
	Return *Type
	Params []*Type
}

// Location is a DWARF location expression, carried opaquely: decoders
// translate whatever addressing scheme their source uses (register,
// stack-offset, absolute address) into the wire bytes DW_AT_location or
// DW_AT_frame_base expects. An empty Location means "no location known".
type Location struct {
	Expr []byte
}

// Parameter is one formal parameter of a Function.
type Parameter struct {
	Name     string // "" if unknown
	Type     *Type
	Location Location
}

// Local is one local variable of a Function.
type Local struct {
	Name     string
	Type     *Type
	Location Location
}

// Function is one disassembled function (§3: "entry PC required, optional
// end PC, optional name, parameters (ordered), return type ref, flags,
// return-address location expression").
type Function struct {
	Address     uint64
	EndAddress  uint64 // 0 if unknown
	HasEnd      bool
	Name        string
	Parameters  []Parameter
	Locals      []Local
	Return      *Type
	NoReturn    bool
	Prototyped  bool
	ReturnAddr  Location

	// Confidence is the probability a confidence-filtered source (STR BSI)
	// attaches to this record; sources that don't carry a confidence score
	// leave this at 1.
	Confidence float64
}

// GlobalVariable is one disassembled global (§3: "address, optional name,
// type ref, optional location expression").
type GlobalVariable struct {
	Address  uint64
	Name     string
	Type     *Type
	Location Location
}

// Set is everything one decoder invocation produced from one source file
// (§4.2: "a pure function from source bytes to a fact set"). The merge
// engine consumes Sets only.
type Set struct {
	Functions []Function
	Globals   []GlobalVariable

	// Source names the decoder that produced this set (e.g. "anvill",
	// "strbsi", "ghidra"), used only for error/warning context.
	Source string
}

// IsAutoGenerated reports whether name looks like a disassembler-synthesized
// placeholder rather than a name recovered from debug info or a symbol
// table (§4.3 override policy, §4.4 symbol policy: "sub_HEX / FUN_HEX /
// VAR_HEX never overwrite a real name").
func IsAutoGenerated(name string) bool {
	for _, prefix := range []string{"sub_", "FUN_", "VAR_", "loc_", "unk_"} {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix && isHex(name[len(prefix):]) {
			return true
		}
	}
	return false
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
