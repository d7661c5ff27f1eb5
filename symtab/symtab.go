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

// Package symtab implements the symbol-table update policy (spec.md §4.4),
// layered on the symbol slice elfio.File.Symbols reads. Suppressible
// entirely by the CLI's --omit-symbols flag (the caller simply never calls
// Apply).
package symtab

import (
	"debug/elf"

	"github.com/jetsetilly/dwarfmerge/fact"
	"github.com/jetsetilly/dwarfmerge/logger"
)

// Kind distinguishes a function symbol from a data symbol, used to pick
// STT_FUNC vs STT_OBJECT when a fresh symbol must be inserted.
type Kind int

const (
	KindFunction Kind = iota
	KindObject
)

// Table is the mutable symbol table the merge engine's symbol step applies
// facts against. Built once from an ELF file's existing symbols, mutated
// in place by Apply, and handed back to the caller for writing.
type Table struct {
	Symbols []elf.Symbol

	byAddr map[uint64]int
	byName map[string]int
}

// New builds a Table from the symbols read out of an ELF file.
func New(symbols []elf.Symbol) *Table {
	t := &Table{
		Symbols: symbols,
		byAddr:  make(map[uint64]int),
		byName:  make(map[string]int),
	}
	for i, s := range symbols {
		if _, ok := t.byAddr[s.Value]; !ok {
			t.byAddr[s.Value] = i
		}
		if _, ok := t.byName[s.Name]; !ok {
			t.byName[s.Name] = i
		}
	}
	return t
}

// Apply updates or inserts a symbol for one function or global-variable
// fact, per §4.4:
//
//   - a symbol at the same address: renamed if its name differs and the
//     new name is non-auto-generated;
//   - a symbol with the same name: its address is updated if it differs;
//   - otherwise a fresh symbol is inserted, bound SHN_ABS, typed
//     STT_FUNC/STT_OBJECT, STB_GLOBAL.
//
// Auto-generated names never overwrite a real name (§4.3, §4.4).
func (t *Table) Apply(name string, addr uint64, kind Kind) {
	if i, ok := t.byAddr[addr]; ok {
		existing := &t.Symbols[i]
		if existing.Name != name {
			if fact.IsAutoGenerated(name) {
				logger.Logf("symtab", "keeping existing symbol name %q over auto-generated %q at %#x", existing.Name, name, addr)
				return
			}
			logger.Logf("symtab", "renaming symbol %q to %q at %#x", existing.Name, name, addr)
			delete(t.byName, existing.Name)
			existing.Name = name
			t.byName[name] = i
		}
		return
	}

	if i, ok := t.byName[name]; ok {
		existing := &t.Symbols[i]
		if existing.Value != addr {
			logger.Logf("symtab", "updating address of symbol %q from %#x to %#x", name, existing.Value, addr)
			delete(t.byAddr, existing.Value)
			existing.Value = addr
			t.byAddr[addr] = i
		}
		return
	}

	sym := elf.Symbol{
		Name:    name,
		Value:   addr,
		Section: elf.SHN_ABS,
		Info:    elf.ST_INFO(elf.STB_GLOBAL, symbolType(kind)),
	}
	idx := len(t.Symbols)
	t.Symbols = append(t.Symbols, sym)
	t.byAddr[addr] = idx
	t.byName[name] = idx
	logger.Logf("symtab", "inserted new symbol %q at %#x", name, addr)
}

func symbolType(kind Kind) elf.SymType {
	if kind == KindFunction {
		return elf.STT_FUNC
	}
	return elf.STT_OBJECT
}
