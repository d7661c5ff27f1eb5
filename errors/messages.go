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

package errors

// error messages, grouped by the component that raises them. these are
// passed to Errorf/Categorised as the format string.
const (
	// decoders
	DecodeUnreadableFile = "cannot open %s: %v"
	DecodeMalformedJSON  = "malformed %s record in %s: %v"
	DecodeMalformedCSV   = "malformed %s row %d in %s: %v"
	DecodeMissingField   = "%s record missing required field %q"

	// ELF / section I/O
	ELFUnreadable     = "cannot read ELF file %s: %v"
	ELFMissingSection = "ELF file has no %s section"
	ELFMissingSymtab  = "ELF file has no symbol table"

	// dwire parser/serializer
	DWARFTruncatedSection  = "%s section is truncated at offset %#x"
	DWARFUnknownForm       = "unsupported DWARF form %#x for attribute %v"
	DWARFUnknownAbbrevCode = "abbreviation code %d not present in table for CU at %#x"
	DWARFBadUnitLength     = "compilation unit at %#x has an inconsistent unit length"

	// merge engine
	MergeFingerprintCollision = "type fingerprint collision: %v and %v hash identically but differ structurally"
	MergeDanglingReference    = "reference to offset %#x does not resolve to any DIE"
	MergeUnresolvedType       = "could not resolve type reference for %v"

	// splicing
	SpliceToolFailed     = "splicing tool %s failed: %v"
	SpliceMissingSection = "section %s missing from output and could not be added: %v"
	SpliceOutputFailed   = "cannot write section output %s: %v"

	// CLI
	CLIBadFlags  = "%v"
	CLINoSources = "no fact sources given (use at least one of -a, -b, -g)"
)
