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

package splice_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/dwarfmerge/splice"
)

func TestSpliceUpdatesExistingSection(t *testing.T) {
	m := splice.NewMemory()
	err := splice.Splice(m, "a.elf", map[string][]byte{".debug_info": []byte("abc")})
	require.NoError(t, err)

	got, ok := m.Section("a.elf", ".debug_info")
	require.True(t, ok)
	require.Equal(t, []byte("abc"), got)
	require.Len(t, m.Updates, 1)
	require.Empty(t, m.Adds)
}

// TestSpliceFallsBackToAddSection exercises §4.5/§7's add-section fallback:
// when a section didn't exist before, UpdateSection fails and Splice must
// retry with AddSection rather than propagating the failure.
func TestSpliceFallsBackToAddSection(t *testing.T) {
	m := splice.NewMemory()
	m.FailUpdateFor = map[string]bool{".debug_line": true}

	err := splice.Splice(m, "a.elf", map[string][]byte{".debug_line": []byte("xyz")})
	require.NoError(t, err)

	got, ok := m.Section("a.elf", ".debug_line")
	require.True(t, ok)
	require.Equal(t, []byte("xyz"), got)
	require.Empty(t, m.Updates)
	require.Len(t, m.Adds, 1)
}

// failAlwaysTool fails both operations, to exercise the "add-section also
// fails -> fatal" path from §7.
type failAlwaysTool struct{}

func (failAlwaysTool) UpdateSection(binary, name string, data []byte) error {
	return require.AnError
}

func (failAlwaysTool) AddSection(binary, name string, data []byte) error {
	return require.AnError
}

func TestSpliceFatalWhenBothFail(t *testing.T) {
	err := splice.Splice(failAlwaysTool{}, "a.elf", map[string][]byte{".debug_info": []byte("x")})
	require.Error(t, err)
}
