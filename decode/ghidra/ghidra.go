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

// Package ghidra decodes Ghidra's function-list CSV export (spec.md §6
// Inputs: "rows with Name, Location, Function Size, Function Signature;
// the header row is authoritative for column order"). A function's
// signature is parsed for a minimal return-type/parameter-list shape;
// Ghidra's own type system is otherwise opaque to this decoder, so most
// parameters come through untyped (return fact.TypeVoid) unless the
// signature names a recognised primitive.
package ghidra

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jetsetilly/dwarfmerge/errors"
	"github.com/jetsetilly/dwarfmerge/fact"
	"github.com/jetsetilly/dwarfmerge/logger"
)

// canonical column names, and their default header text in a Ghidra export.
const (
	colName      = "name"
	colLocation  = "location"
	colSize      = "size"
	colSignature = "signature"
)

var defaultHeaders = map[string]string{
	colName:      "Name",
	colLocation:  "Location",
	colSize:      "Function Size",
	colSignature: "Function Signature",
}

// ColumnMap overrides defaultHeaders when a caller's export renames
// columns. LoadColumnMap reads one from a YAML sidecar
// (<csv-path>.column-map.yaml, per SPEC_FULL.md's domain-stack wiring of
// gopkg.in/yaml.v3): a flat mapping of canonical names (name, location,
// size, signature) to the header text actually used.
type ColumnMap map[string]string

// LoadColumnMap parses a column-map sidecar. Missing canonical keys fall
// back to defaultHeaders at Decode time.
func LoadColumnMap(data []byte) (ColumnMap, error) {
	var m ColumnMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Categorised(errors.CategoryInputFormat, errors.DecodeMalformedJSON, "ghidra column-map", "sidecar", err)
	}
	return m, nil
}

// Decoder implements decode.Source for Ghidra CSV.
type Decoder struct {
	// Columns overrides the default header names; nil uses
	// defaultHeaders unchanged.
	Columns ColumnMap
}

func (d Decoder) header(canonical string) string {
	if h, ok := d.Columns[canonical]; ok {
		return h
	}
	return defaultHeaders[canonical]
}

// Decode parses data as Ghidra's CSV export.
func (d Decoder) Decode(data []byte) (fact.Set, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return fact.Set{}, errors.Categorised(errors.CategoryInputFormat, errors.DecodeMalformedCSV, "ghidra", 0, "ghidra", err)
	}
	if len(rows) == 0 {
		return fact.Set{}, errors.Categorised(errors.CategoryInputFormat, errors.DecodeMissingField, "ghidra", "header row")
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	nameCol, okName := index[d.header(colName)]
	locCol, okLoc := index[d.header(colLocation)]
	sizeCol, okSize := index[d.header(colSize)]
	sigCol, okSig := index[d.header(colSignature)]
	if !okName || !okLoc {
		return fact.Set{}, errors.Categorised(errors.CategoryInputFormat, errors.DecodeMissingField, "ghidra", d.header(colName)+"/"+d.header(colLocation))
	}

	set := fact.Set{Source: "ghidra"}
	for i, row := range rows[1:] {
		f, err := convertRow(row, nameCol, locCol, sizeCol, sigCol, okSize, okSig)
		if err != nil {
			logger.Logf("decode", "ghidra: skipping row %d: %v", i+1, err)
			continue
		}
		set.Functions = append(set.Functions, f)
	}
	return set, nil
}

func convertRow(row []string, nameCol, locCol, sizeCol, sigCol int, hasSize, hasSig bool) (fact.Function, error) {
	if nameCol >= len(row) || locCol >= len(row) {
		return fact.Function{}, fmt.Errorf("row has %d fields, need at least %d", len(row), max(nameCol, locCol)+1)
	}

	addr, err := parseLocation(row[locCol])
	if err != nil {
		return fact.Function{}, fmt.Errorf("bad location %q: %w", row[locCol], err)
	}

	f := fact.Function{
		Address:    addr,
		Name:       strings.TrimSpace(row[nameCol]),
		Prototyped: true,
	}

	if hasSize && sizeCol < len(row) {
		if n, err := strconv.ParseUint(strings.TrimSpace(row[sizeCol]), 10, 64); err == nil && n > 0 {
			f.EndAddress = addr + n
			f.HasEnd = true
		}
	}

	if hasSig && sigCol < len(row) {
		ret, params := parseSignature(row[sigCol])
		f.Return = ret
		f.Parameters = params
	}

	return f, nil
}

// parseLocation accepts Ghidra's usual hex address forms: "0x401000" or
// bare "00401000".
func parseLocation(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return strconv.ParseUint(s, 16, 64)
}

// parseSignature extracts a minimal return-type/parameter shape from a C-like
// signature string, e.g. "undefined4 main(int argc, char ** argv)". Ghidra's
// own type system is otherwise opaque to this decoder (see package doc);
// unrecognised type tokens become fact.TypeVoid rather than failing the row.
func parseSignature(sig string) (*fact.Type, []fact.Parameter) {
	sig = strings.TrimSpace(sig)
	open := strings.IndexByte(sig, '(')
	closeIdx := strings.LastIndexByte(sig, ')')
	if open < 0 || closeIdx < 0 || closeIdx < open {
		return &fact.Type{Kind: fact.TypeVoid}, nil
	}

	head := strings.TrimSpace(sig[:open])
	headParts := strings.Fields(head)
	var retName string
	if len(headParts) > 0 {
		retName = headParts[0]
	}
	ret := primitiveType(retName)

	body := strings.TrimSpace(sig[open+1 : closeIdx])
	if body == "" || body == "void" {
		return ret, nil
	}

	var params []fact.Parameter
	for _, raw := range strings.Split(body, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		name := ""
		typeTokens := fields
		if len(fields) > 1 {
			last := fields[len(fields)-1]
			name = strings.TrimLeft(last, "*")
			typeTokens = fields[:len(fields)-1]
			if stars := last[:len(last)-len(name)]; stars != "" {
				typeTokens = append(append([]string{}, typeTokens...), stars)
			}
		}
		t := primitiveType(strings.Join(typeTokens, " "))
		params = append(params, fact.Parameter{Name: name, Type: t})
	}
	return ret, params
}

var primitiveSizes = map[string]uint64{
	"void": 0, "undefined": 1, "char": 1, "byte": 1, "bool": 1,
	"undefined2": 2, "short": 2,
	"undefined4": 4, "int": 4, "uint": 4, "float": 4,
	"undefined8": 8, "long": 8, "ulong": 8, "double": 8,
}

func primitiveType(name string) *fact.Type {
	base := strings.TrimSuffix(strings.TrimSpace(name), "*")
	base = strings.TrimSpace(base)
	if strings.HasSuffix(strings.TrimSpace(name), "*") {
		return &fact.Type{Kind: fact.TypePointer, Inner: primitiveType(base)}
	}
	if base == "void" || base == "" {
		return &fact.Type{Kind: fact.TypeVoid}
	}
	size, ok := primitiveSizes[base]
	if !ok {
		return &fact.Type{Kind: fact.TypeVoid}
	}
	return &fact.Type{Kind: fact.TypeBase, Name: base, ByteSize: size}
}
