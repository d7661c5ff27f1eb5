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

// Package merge is the core of dwarfmerge (spec.md §4.3): it takes a
// parsed DWARF forest and a sequence of fact.Set values and mutates the
// forest in place, creating or updating subprogram, variable and type
// DIEs. It never touches section bytes directly; the caller serializes
// the forest (dwire.Serialize) once every fact.Set has been applied.
package merge

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/jetsetilly/dwarfmerge/dwire"
	"github.com/jetsetilly/dwarfmerge/fact"
	"github.com/jetsetilly/dwarfmerge/logger"
)

// Session owns the mutable forest and the indexes built over it for the
// lifetime of a merge run (§4.3 "On entering merge, build three maps over
// the existing forest").
type Session struct {
	Forest *dwire.Forest

	// OmitFunctions and OmitVariables suppress creation of new DIEs
	// (never updates of existing ones), per the CLI's --omit-functions
	// and --omit-variables flags (spec.md §6).
	OmitFunctions bool
	OmitVariables bool

	pcIndex   map[uint64]*dwire.DIE
	nameIndex map[string]*dwire.DIE
	typeIndex map[fact.Fingerprint]*dwire.DIE

	synthetic *dwire.Unit

	Stats Stats
}

// Stats is the supplemented --dry-run / -v result: a summary of what a
// merge run did or would do, without requiring the caller to inspect the
// forest itself.
type Stats struct {
	FunctionsCreated int
	FunctionsUpdated int
	GlobalsCreated   int
	GlobalsUpdated   int
	TypesCreated     int
	Overrides        []string
	SkippedRecords   []string
}

func (s *Stats) override(msg string) {
	s.Overrides = append(s.Overrides, msg)
	logger.Logf("merge", "%s", msg)
}

// Lines renders the stats as a stable, human-readable summary (the CLI's
// -v / --dry-run output). Sorted so two runs over the same inputs print
// identically even though overrides are appended in fact-iteration order.
func (s Stats) Lines() []string {
	lines := []string{
		fmt.Sprintf("functions: %d created, %d updated", s.FunctionsCreated, s.FunctionsUpdated),
		fmt.Sprintf("globals: %d created, %d updated", s.GlobalsCreated, s.GlobalsUpdated),
		fmt.Sprintf("types: %d created", s.TypesCreated),
	}
	overrides := slices.Clone(s.Overrides)
	slices.Sort(overrides)
	lines = append(lines, overrides...)
	skipped := slices.Clone(s.SkippedRecords)
	slices.Sort(skipped)
	lines = append(lines, skipped...)
	return lines
}

// NewSession builds a Session over f, indexing every existing subprogram,
// global variable and type DIE already present in the forest.
func NewSession(f *dwire.Forest) *Session {
	s := &Session{
		Forest:    f,
		pcIndex:   make(map[uint64]*dwire.DIE),
		nameIndex: make(map[string]*dwire.DIE),
		typeIndex: make(map[fact.Fingerprint]*dwire.DIE),
	}
	s.buildIndexes()
	s.seedBaseTypes()
	return s
}

// buildIndexes populates pcIndex, nameIndex and typeIndex from whatever
// the forest already contains (§4.3 "build three maps over the existing
// forest"). First occurrence wins on a duplicate key ("ties resolved by
// first-seen").
func (s *Session) buildIndexes() {
	for _, u := range s.Forest.Units {
		for _, d := range u.Entries {
			switch d.Tag {
			case dwire.TagSubprogram:
				if lv, ok := d.Find(dwire.AttrLowPC); ok {
					if _, exists := s.pcIndex[lv.Addr]; !exists {
						s.pcIndex[lv.Addr] = d
					}
				}
			case dwire.TagVariable:
				if d.Parent >= 0 && u.Entries[d.Parent].Tag == dwire.TagSubprogram {
					// a function-local, not a global: skip
					continue
				}
				if name := d.Name(); name != "" {
					if _, exists := s.nameIndex[name]; !exists {
						s.nameIndex[name] = d
					}
				}
			case dwire.TagBaseType, dwire.TagPointerType, dwire.TagArrayType,
				dwire.TagStructureType, dwire.TagUnionType, dwire.TagTypedef,
				dwire.TagConstType, dwire.TagVolatileType, dwire.TagSubroutineType:
				t := dieToType(d, make(map[*dwire.DIE]*fact.Type))
				fp := t.Fingerprint()
				if _, exists := s.typeIndex[fp]; !exists {
					s.typeIndex[fp] = d
				}
			}
		}
	}
}

// Apply merges every fact.Set in sets, in the order given, into the
// forest, and returns the session's Stats, which accumulate over every
// Apply call on s. The caller is responsible for ordering (SPEC_FULL.md's
// fixed Anvill -> Ghidra -> STR BSI precedence): Apply itself never
// reorders. A later set only fills attributes still absent (see
// override.go), with two exceptions: a real name replaces an
// auto-generated one, and formal parameters and the types of named locals
// are reconciled in place, so a later set overwrites them (see
// mergeParameters and mergeLocals).
func (s *Session) Apply(sets ...fact.Set) Stats {
	for _, set := range sets {
		for _, fn := range set.Functions {
			s.mergeFunction(fn)
		}
		for _, g := range set.Globals {
			s.mergeGlobal(g)
		}
	}
	return s.Stats
}
