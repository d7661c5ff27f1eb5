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

package merge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/dwarfmerge/dwire"
	"github.com/jetsetilly/dwarfmerge/fact"
	"github.com/jetsetilly/dwarfmerge/merge"
)

// emptyForest builds a forest with a single, otherwise-empty compile_unit,
// standing in for a binary with no prior debug info of its own (scenario S1).
func emptyForest() *dwire.Forest {
	f := dwire.NewForest()
	u := &dwire.Unit{AddrSize: 4, Version: 4}
	root := u.NewEntry(dwire.TagCompileUnit, -1)
	u.Entries[root].Set(dwire.AttrName, dwire.Str("cart"))
	f.Units = append(f.Units, u)
	return f
}

// TestNewFunctionCreatesSubprogram covers S1: a function fact for an address
// absent from any existing index creates a new subprogram DIE and registers
// it so a second Apply sees it as already-present.
func TestNewFunctionCreatesSubprogram(t *testing.T) {
	f := emptyForest()
	s := merge.NewSession(f)

	stats := s.Apply(fact.Set{
		Functions: []fact.Function{
			{Address: 0x1000, HasEnd: true, EndAddress: 0x1020, Name: "main", Prototyped: true},
		},
	})
	require.Equal(t, 1, stats.FunctionsCreated)
	require.Equal(t, 0, stats.FunctionsUpdated)

	var sub *dwire.DIE
	for _, u := range f.Units {
		for _, d := range u.Entries {
			if d.Tag == dwire.TagSubprogram {
				sub = d
			}
		}
	}
	require.NotNil(t, sub)
	require.Equal(t, "main", sub.Name())

	low, ok := sub.Find(dwire.AttrLowPC)
	require.True(t, ok)
	require.Equal(t, uint64(0x1000), low.Addr)

	// a second Apply with the same address must update, not duplicate
	stats2 := s.Apply(fact.Set{
		Functions: []fact.Function{{Address: 0x1000, Name: "sub_1000"}},
	})
	require.Equal(t, 0, stats2.FunctionsCreated)
	require.Equal(t, 1, stats2.FunctionsUpdated)
	require.Equal(t, "main", sub.Name(), "auto-generated name must not clobber a real one")
}

// TestAutoGeneratedNameNeverClobbers covers S2: once a real name is on a
// DIE, a later auto-generated name (sub_HEX/FUN_HEX/...) never replaces it,
// whether the DIE already existed or was created earlier in the same run.
func TestAutoGeneratedNameNeverClobbers(t *testing.T) {
	f := dwire.NewForest()
	u := &dwire.Unit{AddrSize: 4, Version: 4}
	root := u.NewEntry(dwire.TagCompileUnit, -1)
	u.Entries[root].Set(dwire.AttrLowPC, dwire.Addr(0x1000))
	u.Entries[root].Set(dwire.AttrHighPC, dwire.Unsigned(0x1000))
	sub := u.NewEntry(dwire.TagSubprogram, root)
	u.Entries[sub].Set(dwire.AttrLowPC, dwire.Addr(0x2000))
	u.Entries[sub].Set(dwire.AttrName, dwire.Str("real_work"))
	f.Units = append(f.Units, u)

	s := merge.NewSession(f)
	stats := s.Apply(fact.Set{
		Functions: []fact.Function{{Address: 0x2000, Name: "sub_2000"}},
	})
	require.Equal(t, 1, stats.FunctionsUpdated)
	require.Equal(t, "real_work", u.Entries[sub].Name())
	require.NotEmpty(t, stats.Overrides, "the clobber attempt must be recorded")
}

// TestRealNameReplacesAutoGenerated covers the reverse of S2: when the
// existing name on a DIE is itself auto-generated (set by an earlier,
// lower-precedence fact), a later fact's genuine name must still win.
func TestRealNameReplacesAutoGenerated(t *testing.T) {
	f := dwire.NewForest()
	u := &dwire.Unit{AddrSize: 4, Version: 4}
	root := u.NewEntry(dwire.TagCompileUnit, -1)
	sub := u.NewEntry(dwire.TagSubprogram, root)
	u.Entries[sub].Set(dwire.AttrLowPC, dwire.Addr(0x1000))
	u.Entries[sub].Set(dwire.AttrName, dwire.Str("sub_1000"))
	f.Units = append(f.Units, u)

	s := merge.NewSession(f)
	stats := s.Apply(fact.Set{
		Functions: []fact.Function{{Address: 0x1000, Name: "main"}},
	})
	require.Equal(t, 1, stats.FunctionsUpdated)
	require.Equal(t, "main", u.Entries[sub].Name(), "a genuine name must replace an auto-generated one")
}

// TestCyclicTypeResolvesToOneDIE covers S3: a self-referential struct
// (Node{value int32, next *Node}) built with a genuine shared Go pointer
// resolves to exactly one struct DIE, and the pointer field's type
// reference targets that same DIE.
func TestCyclicTypeResolvesToOneDIE(t *testing.T) {
	f := emptyForest()
	s := merge.NewSession(f)

	i32 := &fact.Type{Kind: fact.TypeBase, Name: "int32_t", ByteSize: 4, Encoding: 5}
	node := &fact.Type{Kind: fact.TypeStruct, Name: "Node", ByteSize: 16}
	nextPtr := &fact.Type{Kind: fact.TypePointer, Inner: node}
	node.Members = []fact.Member{
		{Name: "value", Offset: 0, Type: i32},
		{Name: "next", Offset: 8, Type: nextPtr},
	}

	stats := s.Apply(fact.Set{
		Globals: []fact.GlobalVariable{{Address: 0x3000, Name: "head", Type: nextPtr}},
	})
	require.Equal(t, 1, stats.GlobalsCreated)

	var structDIEs, pointerDIEs []*dwire.DIE
	for _, u := range f.Units {
		for _, d := range u.Entries {
			switch d.Tag {
			case dwire.TagStructureType:
				if d.Name() == "Node" {
					structDIEs = append(structDIEs, d)
				}
			case dwire.TagPointerType:
				pointerDIEs = append(pointerDIEs, d)
			}
		}
	}
	require.Len(t, structDIEs, 1, "a cyclic type must synthesize exactly one DIE, not recurse forever")
	require.Len(t, pointerDIEs, 1)

	var nextMember *dwire.DIE
	for _, ci := range structDIEs[0].Children {
		child := structDIEs[0].Unit.Entries[ci]
		if child.Name() == "next" {
			nextMember = child
		}
	}
	require.NotNil(t, nextMember)
	typeAttr, ok := nextMember.Find(dwire.AttrType)
	require.True(t, ok)
	require.Equal(t, dwire.ValueReference, typeAttr.Kind)

	for i := range nextMember.Attrs {
		if nextMember.Attrs[i].Attr == dwire.AttrType {
			require.Equal(t, pointerDIEs[0], nextMember.Attrs[i].RefTarget)
		}
	}
}

// TestParameterCountMismatchIsPositional covers S4: reconciling an existing
// subprogram's formal parameters against a fact supplying fewer of them
// updates the shared prefix and leaves the surplus untouched.
func TestParameterCountMismatchIsPositional(t *testing.T) {
	f := dwire.NewForest()
	u := &dwire.Unit{AddrSize: 4, Version: 4}
	root := u.NewEntry(dwire.TagCompileUnit, -1)
	sub := u.NewEntry(dwire.TagSubprogram, root)
	u.Entries[sub].Set(dwire.AttrLowPC, dwire.Addr(0x4000))

	p0 := u.NewEntry(dwire.TagFormalParameter, sub)
	u.Entries[p0].Set(dwire.AttrName, dwire.Str("a"))
	p1 := u.NewEntry(dwire.TagFormalParameter, sub)
	u.Entries[p1].Set(dwire.AttrName, dwire.Str("b"))
	p2 := u.NewEntry(dwire.TagFormalParameter, sub)
	u.Entries[p2].Set(dwire.AttrName, dwire.Str("c"))
	f.Units = append(f.Units, u)

	s := merge.NewSession(f)
	s.Apply(fact.Set{
		Functions: []fact.Function{
			{
				Address: 0x4000,
				Parameters: []fact.Parameter{
					{Name: "argc"},
					{Name: "argv"},
				},
			},
		},
	})

	require.Equal(t, "argc", u.Entries[p0].Name())
	require.Equal(t, "argv", u.Entries[p1].Name())
	require.Equal(t, "c", u.Entries[p2].Name(), "surplus parameter must be left untouched")
	require.Len(t, u.Entries[sub].Children, 3, "mergeParameters must not drop or duplicate children")
}

// TestOmitFunctionsSuppressesCreationOnly checks that OmitFunctions blocks
// new subprogram creation but still lets an existing one be updated.
func TestOmitFunctionsSuppressesCreationOnly(t *testing.T) {
	f := dwire.NewForest()
	u := &dwire.Unit{AddrSize: 4, Version: 4}
	root := u.NewEntry(dwire.TagCompileUnit, -1)
	sub := u.NewEntry(dwire.TagSubprogram, root)
	u.Entries[sub].Set(dwire.AttrLowPC, dwire.Addr(0x5000))
	f.Units = append(f.Units, u)

	s := merge.NewSession(f)
	s.OmitFunctions = true

	stats := s.Apply(fact.Set{
		Functions: []fact.Function{
			{Address: 0x5000, Name: "known"},
			{Address: 0x6000, Name: "unknown"},
		},
	})
	require.Equal(t, 0, stats.FunctionsCreated)
	require.Equal(t, 1, stats.FunctionsUpdated)
	require.Equal(t, "known", u.Entries[sub].Name())
}

// TestGlobalVariableCreateAndUpdate exercises the global-variable half of
// §4.3: a fresh global is created under the synthetic CU with a default
// DW_OP_addr location, and a second fact for the same name only fills in
// what's still missing.
func TestGlobalVariableCreateAndUpdate(t *testing.T) {
	f := emptyForest()
	s := merge.NewSession(f)

	i32 := &fact.Type{Kind: fact.TypeBase, Name: "int32_t", ByteSize: 4, Encoding: 5}
	stats := s.Apply(fact.Set{
		Globals: []fact.GlobalVariable{{Address: 0x7000, Name: "counter"}},
	})
	require.Equal(t, 1, stats.GlobalsCreated)

	stats2 := s.Apply(fact.Set{
		Globals: []fact.GlobalVariable{{Address: 0x7000, Name: "counter", Type: i32}},
	})
	require.Equal(t, 1, stats2.GlobalsUpdated)

	var v *dwire.DIE
	for _, u := range f.Units {
		for _, d := range u.Entries {
			if d.Tag == dwire.TagVariable && d.Name() == "counter" {
				v = d
			}
		}
	}
	require.NotNil(t, v)
	_, hasType := v.Find(dwire.AttrType)
	require.True(t, hasType, "a later fact must fill in a type the first one left absent")
	_, hasLoc := v.Find(dwire.AttrLocation)
	require.True(t, hasLoc)
}

// TestBaseTypesAreSeededOnce checks that the fixed base-type set is created
// exactly once per session and later resolutions for the same structural
// type hit the index instead of synthesizing duplicates.
func TestBaseTypesAreSeededOnce(t *testing.T) {
	f := emptyForest()
	s := merge.NewSession(f)

	seeded := s.Stats.TypesCreated
	require.Greater(t, seeded, 0)

	s.Apply(fact.Set{
		Globals: []fact.GlobalVariable{
			{Address: 0x8000, Name: "a", Type: &fact.Type{Kind: fact.TypeBase, Name: "int32_t", ByteSize: 4, Encoding: 5}},
			{Address: 0x8004, Name: "b", Type: &fact.Type{Kind: fact.TypeBase, Name: "int32_t", ByteSize: 4, Encoding: 5}},
		},
	})
	require.Equal(t, seeded, s.Stats.TypesCreated, "structurally-identical base types must reuse the seeded DIE")
}
