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

package leb128_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/dwarfmerge/dwire/leb128"
)

func TestDecodeULEB128(t *testing.T) {
	// tests from page 162 of the "DWARF4 Standard"
	v := []uint8{0x7f, 0x00}
	r, n := leb128.DecodeULEB128(v)
	require.Equal(t, 1, n)
	require.Equal(t, uint64(127), r)

	v = []uint8{0x80, 0x01, 0x00}
	r, n = leb128.DecodeULEB128(v)
	require.Equal(t, 2, n)
	require.Equal(t, uint64(128), r)

	v = []uint8{0x81, 0x01, 0x00}
	r, n = leb128.DecodeULEB128(v)
	require.Equal(t, 2, n)
	require.Equal(t, uint64(129), r)

	v = []uint8{0xb9, 0x64, 0x00}
	r, n = leb128.DecodeULEB128(v)
	require.Equal(t, 2, n)
	require.Equal(t, uint64(12857), r)
}

func TestDecodeSLEB128(t *testing.T) {
	// tests from page 163 of the "DWARF4 Standard"
	v := []uint8{0x02, 0x00}
	r, n := leb128.DecodeSLEB128(v)
	require.Equal(t, 1, n)
	require.Equal(t, int64(2), r)

	v = []uint8{0x7e, 0x00}
	r, n = leb128.DecodeSLEB128(v)
	require.Equal(t, 1, n)
	require.Equal(t, int64(-2), r)

	v = []uint8{0xff, 0x00}
	r, n = leb128.DecodeSLEB128(v)
	require.Equal(t, 2, n)
	require.Equal(t, int64(127), r)

	v = []uint8{0x81, 0x7f}
	r, n = leb128.DecodeSLEB128(v)
	require.Equal(t, 2, n)
	require.Equal(t, int64(-127), r)

	v = []uint8{0x80, 0x01}
	r, n = leb128.DecodeSLEB128(v)
	require.Equal(t, 2, n)
	require.Equal(t, int64(128), r)

	v = []uint8{0x80, 0x7f}
	r, n = leb128.DecodeSLEB128(v)
	require.Equal(t, 2, n)
	require.Equal(t, int64(-128), r)
}

// TestEncodeRoundTrip checks that every value EncodeULEB128/EncodeSLEB128
// produces decodes back to itself, and that Size*LEB128 agrees with the
// actual encoded length - the property the serializer's offset-assignment
// pass depends on.
func TestEncodeRoundTrip(t *testing.T) {
	uvalues := []uint64{0, 1, 127, 128, 129, 130, 12857, 0xffffffff, ^uint64(0)}
	for _, v := range uvalues {
		buf := leb128.EncodeULEB128(nil, v)
		require.Equal(t, leb128.SizeULEB128(v), len(buf))
		got, n := leb128.DecodeULEB128(buf)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}

	svalues := []int64{0, 2, -2, 127, -127, 128, -128, 129, -129, 1<<40 - 1, -(1 << 40)}
	for _, v := range svalues {
		buf := leb128.EncodeSLEB128(nil, v)
		require.Equal(t, leb128.SizeSLEB128(v), len(buf))
		got, n := leb128.DecodeSLEB128(buf)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

// TestEncodeULEB128Prefix checks EncodeULEB128 appends rather than
// overwrites, since the serializer relies on this to build up .debug_info
// incrementally in a single growing slice.
func TestEncodeULEB128Prefix(t *testing.T) {
	buf := []byte{0xaa, 0xbb}
	buf = leb128.EncodeULEB128(buf, 300)
	require.Equal(t, []byte{0xaa, 0xbb}, buf[:2])
	got, _ := leb128.DecodeULEB128(buf[2:])
	require.Equal(t, uint64(300), got)
}
