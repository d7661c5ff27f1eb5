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

package anvill

import "github.com/jetsetilly/dwarfmerge/dwire/leb128"

// dwarfRegisterNumbers maps the register names Anvill emits to DWARF
// register numbers. Covers the x86-64 System V ABI set; unknown names
// encode as DW_OP_nop so a bad register name doesn't abort the whole
// record.
var dwarfRegisterNumbers = map[string]byte{
	"rax": 0, "rdx": 1, "rcx": 2, "rbx": 3, "rsi": 4, "rdi": 5,
	"rbp": 6, "rsp": 7, "r8": 8, "r9": 9, "r10": 10, "r11": 11,
	"r12": 12, "r13": 13, "r14": 14, "r15": 15,
}

const (
	dwOpReg0   = 0x50 // DW_OP_reg0, + register number for regs 0-31
	dwOpFbreg  = 0x91 // DW_OP_fbreg
	dwOpNop    = 0x96 // DW_OP_nop
)

// encodeRegister builds a one-byte DW_OP_regN expression for a named
// register, the DWARF encoding for "this value lives in a register,
// unambiguously, for its whole lifetime".
func encodeRegister(name string) []byte {
	n, ok := dwarfRegisterNumbers[name]
	if !ok {
		return []byte{dwOpNop}
	}
	return []byte{dwOpReg0 + n}
}

// encodeFrameOffset builds a DW_OP_fbreg expression: value lives at a
// fixed offset from the function's frame base.
func encodeFrameOffset(offset int64) []byte {
	buf := []byte{dwOpFbreg}
	return leb128.EncodeSLEB128(buf, offset)
}
