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

package fact_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/dwarfmerge/fact"
)

func TestIsAutoGenerated(t *testing.T) {
	require.True(t, fact.IsAutoGenerated("sub_401000"))
	require.True(t, fact.IsAutoGenerated("FUN_004011a0"))
	require.True(t, fact.IsAutoGenerated("VAR_00402000"))
	require.False(t, fact.IsAutoGenerated("main"))
	require.False(t, fact.IsAutoGenerated("real_work"))
	require.False(t, fact.IsAutoGenerated("sub_")) // no hex suffix
	require.False(t, fact.IsAutoGenerated("sub_zzz"))
}

func TestFingerprintStableAndDistinct(t *testing.T) {
	i32 := &fact.Type{Kind: fact.TypeBase, Name: "int32_t", ByteSize: 4, Encoding: 5}
	i32b := &fact.Type{Kind: fact.TypeBase, Name: "int32_t", ByteSize: 4, Encoding: 5}
	u32 := &fact.Type{Kind: fact.TypeBase, Name: "uint32_t", ByteSize: 4, Encoding: 8}

	require.Equal(t, i32.Fingerprint(), i32b.Fingerprint())
	require.NotEqual(t, i32.Fingerprint(), u32.Fingerprint())
}

// TestFingerprintCyclic checks that a self-referential struct (scenario S3:
// Node = struct{value int32, next *Node}) fingerprints without infinite
// recursion and produces a stable value across two independently built but
// structurally identical cyclic graphs.
func TestFingerprintCyclic(t *testing.T) {
	build := func() *fact.Type {
		i32 := &fact.Type{Kind: fact.TypeBase, Name: "int32", ByteSize: 4, Encoding: 5}
		node := &fact.Type{Kind: fact.TypeStruct, Name: "Node"}
		ptr := &fact.Type{Kind: fact.TypePointer, Inner: node}
		node.Members = []fact.Member{
			{Name: "value", Offset: 0, Type: i32},
			{Name: "next", Offset: 8, Type: ptr},
		}
		return node
	}

	a := build()
	b := build()
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	other := &fact.Type{Kind: fact.TypeStruct, Name: "Other"}
	require.NotEqual(t, a.Fingerprint(), other.Fingerprint())
}
