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

// Package decode defines the common capability every fact decoder
// implements (spec.md §9 "Fact-source polymorphism": "each decoder
// implements a common capability decode(bytes) -> FactSet; the engine
// consumes FactSet only, never source-specific types"). The concrete
// decoders live in decode/anvill, decode/strbsi and decode/ghidra.
package decode

import "github.com/jetsetilly/dwarfmerge/fact"

// Source is a pure function from source bytes to a fact set (§4.2: "Each
// decoder is a pure function from source bytes to a fact set"). Options
// (such as strbsi's accept-all confidence override) are carried by the
// concrete decoder type, not this interface.
type Source interface {
	Decode(data []byte) (fact.Set, error)
}
