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

package fact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Fingerprint is a structural hash of a Type (§4.3: "a fingerprint is a
// structural hash of the neutral type model (kind, name, byte-size,
// children recursively)"). Two types with the same Fingerprint are
// considered the same type by the merge engine's type index, and only one
// DIE is ever synthesized for them.
type Fingerprint string

// Fingerprint computes t's structural hash. Cyclic types (a struct whose
// member eventually points back to itself) terminate the recursion by
// fingerprinting the cycle-closing pointer as a reference to "self" rather
// than recursing forever; visiting is tracked by pointer identity.
func (t *Type) Fingerprint() Fingerprint {
	h := sha256.New()
	t.hash(h, make(map[*Type]bool))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

func (t *Type) hash(h interface{ Write([]byte) (int, error) }, seen map[*Type]bool) {
	if t == nil {
		fmt.Fprint(h, "nil;")
		return
	}
	if seen[t] {
		fmt.Fprint(h, "cycle;")
		return
	}
	seen[t] = true
	defer delete(seen, t)

	fmt.Fprintf(h, "k%d;n%s;b%s;e%s;", t.Kind, t.Name, strconv.FormatUint(t.ByteSize, 10), strconv.FormatUint(t.Encoding, 10))

	switch t.Kind {
	case TypePointer, TypeConst, TypeVolatile, TypeTypedef:
		t.Inner.hash(h, seen)
	case TypeArray:
		t.Element.hash(h, seen)
		for _, c := range t.Counts {
			fmt.Fprintf(h, "c%s;", strconv.FormatUint(c, 10))
		}
	case TypeStruct, TypeUnion:
		for _, m := range t.Members {
			fmt.Fprintf(h, "m%s@%s:", m.Name, strconv.FormatUint(m.Offset, 10))
			m.Type.hash(h, seen)
		}
	case TypeFunction:
		t.Return.hash(h, seen)
		for _, p := range t.Params {
			p.hash(h, seen)
		}
	}
}
