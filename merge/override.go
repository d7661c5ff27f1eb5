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

package merge

import (
	"fmt"

	"github.com/jetsetilly/dwarfmerge/dwire"
	"github.com/jetsetilly/dwarfmerge/fact"
)

// overrideName implements §4.3's name half of the attribute override
// policy, which doubles as source precedence within one Apply call: the
// first fact (of any source) to put a real name on a DIE wins; every
// later fact can still rename it as long as the later name isn't
// auto-generated and the slot wasn't already filled by a real name.
// Scenario S2 is the auto-generated branch.
func (s *Session) overrideName(d *dwire.DIE, newName string, addr uint64) {
	if newName == "" {
		return
	}
	existing := d.Name()
	if existing == "" {
		d.Set(dwire.AttrName, dwire.Str(newName))
		return
	}
	if fact.IsAutoGenerated(newName) {
		s.Stats.override(fmt.Sprintf("kept name %q over auto-generated %q at %#x", existing, newName, addr))
		return
	}
	if fact.IsAutoGenerated(existing) {
		d.Set(dwire.AttrName, dwire.Str(newName))
		s.Stats.override(fmt.Sprintf("replaced auto-generated name %q with %q at %#x", existing, newName, addr))
		return
	}
	s.Stats.override(fmt.Sprintf("kept name %q (already set this run) over %q at %#x", existing, newName, addr))
}

// overrideReturnType implements §4.3's type half of the override policy:
// an existing type beats a bare void fact, and (mirroring overrideName)
// the first fact to supply a concrete type for a slot wins over later
// ones in the same Apply call.
func (s *Session) overrideReturnType(d *dwire.DIE, t *fact.Type, addr uint64) {
	_, hasExisting := d.Find(dwire.AttrType)
	if t == nil || t.Kind == fact.TypeVoid {
		if hasExisting {
			s.Stats.override(fmt.Sprintf("kept existing return type over void fact for function at %#x", addr))
		}
		return
	}
	if hasExisting {
		s.Stats.override(fmt.Sprintf("kept existing return type (already set this run) for function at %#x", addr))
		return
	}
	if die := s.resolveType(t, s.syntheticUnit()); die != nil {
		d.SetRef(dwire.AttrType, die)
	}
}

// setIfAbsent sets attr to val only if d has no value for it yet. Every
// non-name, non-type attribute in a function or global merge uses this:
// first writer wins, which is both "don't clobber a more specific
// existing value" (§4.3) and "later sources fill only what's still
// absent" (SPEC_FULL.md's precedence decision) at once.
func setIfAbsent(d *dwire.DIE, attr dwire.Attr, val dwire.Value) {
	if _, ok := d.Find(attr); ok {
		return
	}
	d.Set(attr, val)
}
