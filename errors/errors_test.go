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

package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/dwarfmerge/errors"
)

const testError = "test error: %s"
const testErrorB = "test error B: %s"

func TestDuplicateErrors(t *testing.T) {
	e := errors.Errorf(testError, "foo")
	require.Equal(t, "test error: foo", e.Error())

	// packing errors of the same type next to each other causes
	// one of them to be dropped
	f := errors.Errorf(testError, e)
	require.Equal(t, "test error: foo", f.Error())
}

func TestIs(t *testing.T) {
	e := errors.Errorf(testError, "foo")
	require.True(t, errors.Is(e, testError))
	require.False(t, errors.Has(e, testErrorB))

	f := errors.Errorf(testErrorB, e)
	require.False(t, errors.Is(f, testError))
	require.True(t, errors.Is(f, testErrorB))
	require.True(t, errors.Has(f, testError))
	require.True(t, errors.Has(f, testErrorB))

	require.True(t, errors.IsAny(e))
	require.True(t, errors.IsAny(f))
}

func TestPlainErrors(t *testing.T) {
	e := fmt.Errorf("plain test error")
	require.False(t, errors.IsAny(e))
	require.False(t, errors.Has(e, testError))
}

func TestCategory(t *testing.T) {
	e := errors.Categorised(errors.CategoryDWARFParse, errors.DWARFUnknownForm, 0x99, "low_pc")
	require.Equal(t, errors.CategoryDWARFParse, errors.CategoryOf(e))
	require.Equal(t, "dwarf parse", errors.CategoryOf(e).String())

	plain := errors.Errorf("uncategorised")
	require.Equal(t, errors.CategoryNone, errors.CategoryOf(plain))

	notCurated := fmt.Errorf("not curated")
	require.Equal(t, errors.CategoryNone, errors.CategoryOf(notCurated))
}
