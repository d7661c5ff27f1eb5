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

// Package anvill decodes Anvill-format JSON (spec.md §6 Inputs) into
// fact.Set. Anvill describes functions and global variables recovered by
// static analysis, with a recursive tagged type shape.
package anvill

import (
	"encoding/json"

	"github.com/jetsetilly/dwarfmerge/errors"
	"github.com/jetsetilly/dwarfmerge/fact"
	"github.com/jetsetilly/dwarfmerge/logger"
)

// Decoder implements decode.Source for Anvill JSON.
type Decoder struct{}

type document struct {
	Functions []function `json:"functions"`
	Variables []variable `json:"variables"`
}

type function struct {
	Address            uint64    `json:"address"`
	Name               string    `json:"name"`
	Parameters         []param   `json:"parameters"`
	Locals             []param   `json:"locals"`
	Return             *jsonType `json:"return"`
	ReturnAddress      *location `json:"return_address"`
	ReturnStackPointer *int64    `json:"return_stack_pointer"`
	IsNoreturn         bool      `json:"is_noreturn"`
	IsVariadic         bool      `json:"is_variadic"`
	EndAddress         *uint64   `json:"end_address"`
}

type variable struct {
	Address  uint64    `json:"address"`
	Name     string    `json:"name"`
	Type     *jsonType `json:"type"`
	Location *location `json:"location"`
}

type param struct {
	Name     string    `json:"name"`
	Type     jsonType  `json:"type"`
	Location *location `json:"location"`
}

// location is a minimal addressing-expression shape: either a named
// register or a signed offset from a frame base. Anvill's actual location
// vocabulary is richer; this covers the two cases the merge engine needs
// to carry through to DW_AT_location/DW_AT_frame_base unchanged.
type location struct {
	Register     string `json:"register,omitempty"`
	StackOffset  *int64 `json:"stack_offset,omitempty"`
	MemoryOffset *int64 `json:"memory_offset,omitempty"`
}

// jsonType is Anvill's recursive tagged type shape (§6: "a recursive
// tagged shape {kind: "int"|"ptr"|"array"|"struct"|...}").
type jsonType struct {
	Kind     string         `json:"kind"`
	Name     string         `json:"name,omitempty"`
	Size     uint64         `json:"size,omitempty"`
	Encoding uint64         `json:"encoding,omitempty"`
	Pointee  *jsonType      `json:"pointee,omitempty"`
	Element  *jsonType      `json:"element,omitempty"`
	Counts   []uint64       `json:"counts,omitempty"`
	Members  []jsonMember   `json:"members,omitempty"`
	Aliased  *jsonType      `json:"aliased,omitempty"`
	Inner    *jsonType      `json:"inner,omitempty"`
	Return   *jsonType      `json:"return,omitempty"`
	Params   []jsonType     `json:"params,omitempty"`
}

type jsonMember struct {
	Name   string   `json:"name"`
	Offset uint64   `json:"offset"`
	Type   jsonType `json:"type"`
}

// Decode parses data as an Anvill document, resolving every type reference
// to the neutral model before returning (§4.2: "must resolve all
// cross-references inside their source to the neutral type model before
// handing facts to the merge engine").
func (Decoder) Decode(data []byte) (fact.Set, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fact.Set{}, errors.Categorised(errors.CategoryInputFormat, errors.DecodeMalformedJSON, "anvill", "document", err)
	}

	var set fact.Set
	set.Source = "anvill"

	for i, fn := range doc.Functions {
		f, err := convertFunction(fn)
		if err != nil {
			// §4.2: "Errors in a single record are reported and that
			// record skipped; the rest continue."
			logger.Logf("decode", "anvill: skipping functions[%d]: %v", i, err)
			continue
		}
		set.Functions = append(set.Functions, f)
	}

	for i, v := range doc.Variables {
		g, err := convertVariable(v)
		if err != nil {
			logger.Logf("decode", "anvill: skipping variables[%d]: %v", i, err)
			continue
		}
		set.Globals = append(set.Globals, g)
	}

	return set, nil
}

func convertFunction(fn function) (fact.Function, error) {
	f := fact.Function{
		Address:    fn.Address,
		Name:       fn.Name,
		NoReturn:   fn.IsNoreturn,
		Prototyped: !fn.IsVariadic,
		Confidence: 1,
	}
	if fn.EndAddress != nil {
		f.EndAddress = *fn.EndAddress
		f.HasEnd = true
	}
	if fn.Return != nil {
		f.Return = convertType(fn.Return)
	}
	if fn.ReturnAddress != nil {
		f.ReturnAddr = convertLocation(fn.ReturnAddress)
	}
	for _, p := range fn.Parameters {
		f.Parameters = append(f.Parameters, fact.Parameter{
			Name:     p.Name,
			Type:     convertType(&p.Type),
			Location: convertLocation(p.Location),
		})
	}
	for _, l := range fn.Locals {
		f.Locals = append(f.Locals, fact.Local{
			Name:     l.Name,
			Type:     convertType(&l.Type),
			Location: convertLocation(l.Location),
		})
	}
	return f, nil
}

func convertVariable(v variable) (fact.GlobalVariable, error) {
	g := fact.GlobalVariable{
		Address:  v.Address,
		Name:     v.Name,
		Location: convertLocation(v.Location),
	}
	if v.Type != nil {
		g.Type = convertType(v.Type)
	}
	return g, nil
}

func convertLocation(l *location) fact.Location {
	if l == nil {
		return fact.Location{}
	}
	switch {
	case l.Register != "":
		return fact.Location{Expr: encodeRegister(l.Register)}
	case l.StackOffset != nil:
		return fact.Location{Expr: encodeFrameOffset(*l.StackOffset)}
	case l.MemoryOffset != nil:
		return fact.Location{Expr: encodeFrameOffset(*l.MemoryOffset)}
	default:
		return fact.Location{}
	}
}

// convertType maps Anvill's tagged type shape onto the neutral model
// (§3 Type variants). Unknown kinds fall back to void rather than failing
// the whole record, matching the decoder's per-record error tolerance.
func convertType(t *jsonType) *fact.Type {
	if t == nil {
		return &fact.Type{Kind: fact.TypeVoid}
	}
	switch t.Kind {
	case "void", "":
		return &fact.Type{Kind: fact.TypeVoid}
	case "int", "float", "base":
		return &fact.Type{Kind: fact.TypeBase, Name: t.Name, ByteSize: t.Size, Encoding: t.Encoding}
	case "ptr", "pointer":
		return &fact.Type{Kind: fact.TypePointer, Inner: convertType(t.Pointee)}
	case "array":
		return &fact.Type{Kind: fact.TypeArray, Element: convertType(t.Element), Counts: t.Counts}
	case "struct":
		return convertAggregate(fact.TypeStruct, t)
	case "union":
		return convertAggregate(fact.TypeUnion, t)
	case "typedef":
		return &fact.Type{Kind: fact.TypeTypedef, Name: t.Name, Inner: convertType(t.Aliased)}
	case "const":
		return &fact.Type{Kind: fact.TypeConst, Inner: convertType(t.Inner)}
	case "volatile":
		return &fact.Type{Kind: fact.TypeVolatile, Inner: convertType(t.Inner)}
	case "function":
		ft := &fact.Type{Kind: fact.TypeFunction, Return: convertType(t.Return)}
		for i := range t.Params {
			ft.Params = append(ft.Params, convertType(&t.Params[i]))
		}
		return ft
	default:
		return &fact.Type{Kind: fact.TypeVoid}
	}
}

func convertAggregate(kind fact.TypeKind, t *jsonType) *fact.Type {
	agg := &fact.Type{Kind: kind, Name: t.Name, ByteSize: t.Size}
	for _, m := range t.Members {
		agg.Members = append(agg.Members, fact.Member{
			Name:   m.Name,
			Offset: m.Offset,
			Type:   convertType(&m.Type),
		})
	}
	return agg
}
