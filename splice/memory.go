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

package splice

import "fmt"

// Memory is an in-memory Tool double (§9: "provide an in-memory test
// double for tests"). It tracks section contents per binary path without
// touching the filesystem or spawning a process, and can be told to fail
// UpdateSection to exercise the add-section fallback path.
type Memory struct {
	Binaries map[string]map[string][]byte

	// FailUpdateFor, if non-nil, names sections whose UpdateSection call
	// should fail (simulating "section doesn't exist yet").
	FailUpdateFor map[string]bool

	Updates []Call
	Adds    []Call
}

// Call records one UpdateSection or AddSection invocation, for assertions
// in tests that care about call order or arguments.
type Call struct {
	Binary string
	Name   string
	Data   []byte
}

// NewMemory creates an empty double.
func NewMemory() *Memory {
	return &Memory{Binaries: make(map[string]map[string][]byte)}
}

func (m *Memory) UpdateSection(binary, name string, data []byte) error {
	if m.FailUpdateFor[name] {
		return fmt.Errorf("section %s does not exist in %s", name, binary)
	}
	m.Updates = append(m.Updates, Call{Binary: binary, Name: name, Data: data})
	m.put(binary, name, data)
	return nil
}

func (m *Memory) AddSection(binary, name string, data []byte) error {
	m.Adds = append(m.Adds, Call{Binary: binary, Name: name, Data: data})
	m.put(binary, name, data)
	return nil
}

func (m *Memory) put(binary, name string, data []byte) {
	if m.Binaries[binary] == nil {
		m.Binaries[binary] = make(map[string][]byte)
	}
	m.Binaries[binary][name] = data
}

// Section returns the current contents of a section previously written via
// UpdateSection or AddSection.
func (m *Memory) Section(binary, name string) ([]byte, bool) {
	b, ok := m.Binaries[binary]
	if !ok {
		return nil, false
	}
	d, ok := b[name]
	return d, ok
}
