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

// TestSourcePrecedenceFirstWriterWins covers the Anvill -> Ghidra -> STR BSI
// precedence decision: Session.Apply takes fact sets in caller order, and
// whichever set supplies an attribute first keeps it; a later set's value
// for the same attribute is dropped, only filling in what's still absent
// (the CLI is responsible for always calling Apply with sets in that fixed
// order; this test exercises the mechanism Apply provides for it).
func TestSourcePrecedenceFirstWriterWins(t *testing.T) {
	f := emptyForest()
	s := merge.NewSession(f)

	anvillSet := fact.Set{
		Source: "anvill",
		Functions: []fact.Function{
			{Address: 0x9000, Name: "handler", Prototyped: true},
		},
	}
	ghidraSet := fact.Set{
		Source: "ghidra",
		Functions: []fact.Function{
			{Address: 0x9000, Name: "FUN_00009000", NoReturn: true},
		},
	}
	strbsiSet := fact.Set{
		Source: "strbsi",
		Functions: []fact.Function{
			{Address: 0x9000, Name: "sub_9000"},
		},
	}

	s.Apply(anvillSet, ghidraSet, strbsiSet)

	var sub *dwire.DIE
	for _, u := range f.Units {
		for _, d := range u.Entries {
			if d.Tag == dwire.TagSubprogram {
				sub = d
			}
		}
	}
	require.NotNil(t, sub)

	// anvill named it first: ghidra's and strbsi's auto-generated names
	// must never have been allowed to clobber it.
	require.Equal(t, "handler", sub.Name())

	// prototyped came from anvill (the only set to supply it); noreturn
	// came from ghidra, the next set in precedence order, and was free to
	// fill in an attribute anvill's set never set.
	proto, ok := sub.Find(dwire.AttrPrototyped)
	require.True(t, ok)
	require.True(t, proto.Flag)

	noreturn, ok := sub.Find(dwire.AttrNoreturn)
	require.True(t, ok)
	require.True(t, noreturn.Flag)
}
