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

// Package strbsi decodes STR BSI-format JSON (spec.md §6 Inputs): a list
// of function records each carrying a confidence score. Records below the
// threshold are dropped unless the caller opts in to accepting them all
// (the CLI's -u flag).
package strbsi

import (
	"encoding/json"
	"fmt"

	"github.com/jetsetilly/dwarfmerge/errors"
	"github.com/jetsetilly/dwarfmerge/fact"
	"github.com/jetsetilly/dwarfmerge/logger"
)

// Decoder implements decode.Source for STR BSI JSON.
type Decoder struct {
	// AcceptAll disables the confidence filter (§4.2, §6 "-u: accept
	// low-confidence STR records").
	AcceptAll bool
}

type record struct {
	Address    uint64    `json:"address"`
	Name       string    `json:"name"`
	DeclFile   string    `json:"decl_file"`
	DeclLine   int       `json:"decl_line"`
	Parameters []varInfo `json:"parameters"`
	Locals     []varInfo `json:"locals"`
	Confidence float64   `json:"confidence"`
}

type varInfo struct {
	Name string   `json:"name"`
	Type jsonType `json:"type"`
}

// jsonType is a minimal recursive type shape, a subset of anvill's (no
// alias, inner, return or params fields; both sources describe the same
// neutral model, independently,
// since STR BSI and Anvill are unrelated tools in practice).
type jsonType struct {
	Kind     string       `json:"kind"`
	Name     string       `json:"name,omitempty"`
	Size     uint64       `json:"size,omitempty"`
	Encoding uint64       `json:"encoding,omitempty"`
	Pointee  *jsonType    `json:"pointee,omitempty"`
	Element  *jsonType    `json:"element,omitempty"`
	Counts   []uint64     `json:"counts,omitempty"`
	Members  []jsonMember `json:"members,omitempty"`
}

type jsonMember struct {
	Name   string   `json:"name"`
	Offset uint64   `json:"offset"`
	Type   jsonType `json:"type"`
}

// Decode parses data as a list of STR BSI function records (§6: "a list
// of function records with address, name, decl_file, decl_line,
// parameters, locals, and confidence"). Confidence-filtered records are
// dropped per §4.2 unless d.AcceptAll.
func (d Decoder) Decode(data []byte) (fact.Set, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return fact.Set{}, errors.Categorised(errors.CategoryInputFormat, errors.DecodeMalformedJSON, "strbsi", "document", err)
	}

	set := fact.Set{Source: "strbsi"}
	for i, r := range records {
		if r.Confidence < 1 && !d.AcceptAll {
			logger.Logf("decode", "strbsi: skipping %s (confidence %.2f < 1)", recordLabel(r, i), r.Confidence)
			continue
		}
		f, err := convertRecord(r)
		if err != nil {
			logger.Logf("decode", "strbsi: skipping %s: %v", recordLabel(r, i), err)
			continue
		}
		set.Functions = append(set.Functions, f)
	}
	return set, nil
}

func recordLabel(r record, i int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("record[%d]", i)
}

func convertRecord(r record) (fact.Function, error) {
	f := fact.Function{
		Address:    r.Address,
		Name:       r.Name,
		Confidence: r.Confidence,
		Prototyped: true,
	}
	for _, p := range r.Parameters {
		f.Parameters = append(f.Parameters, fact.Parameter{Name: p.Name, Type: convertType(&p.Type)})
	}
	for _, l := range r.Locals {
		f.Locals = append(f.Locals, fact.Local{Name: l.Name, Type: convertType(&l.Type)})
	}
	return f, nil
}

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
		agg := &fact.Type{Kind: fact.TypeStruct, Name: t.Name, ByteSize: t.Size}
		for _, m := range t.Members {
			agg.Members = append(agg.Members, fact.Member{Name: m.Name, Offset: m.Offset, Type: convertType(&m.Type)})
		}
		return agg
	default:
		return &fact.Type{Kind: fact.TypeVoid}
	}
}
