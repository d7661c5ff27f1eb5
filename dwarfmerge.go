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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/jetsetilly/dwarfmerge/decode/anvill"
	"github.com/jetsetilly/dwarfmerge/decode/ghidra"
	"github.com/jetsetilly/dwarfmerge/decode/strbsi"
	"github.com/jetsetilly/dwarfmerge/dwire"
	"github.com/jetsetilly/dwarfmerge/elfio"
	"github.com/jetsetilly/dwarfmerge/errors"
	"github.com/jetsetilly/dwarfmerge/fact"
	"github.com/jetsetilly/dwarfmerge/logger"
	"github.com/jetsetilly/dwarfmerge/merge"
	"github.com/jetsetilly/dwarfmerge/splice"
	"github.com/jetsetilly/dwarfmerge/symtab"
)

// options collects every value parseFlags can set, per spec.md §6's CLI
// surface table.
type options struct {
	input  string
	output string

	anvillPath string
	strbsiPath string
	ghidraPath string

	splitDir    string
	splicerPath string

	acceptLowConfidence bool
	omitFunctions       bool
	omitVariables       bool
	omitSymbols         bool

	logTail int
	verbose bool
	dryRun  bool
}

// parseFlags builds a flag.FlagSet in the same style as the teacher's root
// command (a small helper separate from main, so it can be tested without
// touching os.Args or os.Exit).
func parseFlags(args []string) (options, error) {
	var opts options

	flgs := flag.NewFlagSet("dwarfmerge", flag.ContinueOnError)
	flgs.StringVar(&opts.anvillPath, "a", "", "Anvill JSON source")
	flgs.StringVar(&opts.strbsiPath, "b", "", "STR BSI JSON source")
	flgs.StringVar(&opts.ghidraPath, "g", "", "Ghidra CSV source")
	flgs.StringVar(&opts.splitDir, "s", "", "write section files to DIR; skip in-place mode")
	flgs.StringVar(&opts.splicerPath, "x", "", "path to splicing tool (default: resolve objcopy from $PATH)")
	flgs.BoolVar(&opts.acceptLowConfidence, "u", false, "accept low-confidence STR records")
	flgs.BoolVar(&opts.omitFunctions, "omit-functions", false, "do not create new subprogram DIEs")
	flgs.BoolVar(&opts.omitVariables, "omit-variables", false, "do not create new variable DIEs")
	flgs.BoolVar(&opts.omitSymbols, "omit-symbols", false, "do not touch the symbol table")
	flgs.IntVar(&opts.logTail, "l", 0, "logging verbosity: number of log lines to flush to stderr on exit")
	flgs.BoolVar(&opts.verbose, "v", false, "shorthand for -l with a generous tail")
	flgs.BoolVar(&opts.dryRun, "dry-run", false, "report what a merge would do without writing any output")

	if err := flgs.Parse(args); err != nil {
		return opts, err
	}

	if opts.verbose && opts.logTail == 0 {
		opts.logTail = 1000
	}

	rest := flgs.Args()
	switch len(rest) {
	case 0:
		return opts, errors.Categorised(errors.CategoryInputFormat, errors.CLIBadFlags, fmt.Errorf("input ELF required"))
	case 1:
		opts.input = rest[0]
		opts.output = rest[0]
	case 2:
		opts.input = rest[0]
		opts.output = rest[1]
	default:
		return opts, errors.Categorised(errors.CategoryInputFormat, errors.CLIBadFlags, fmt.Errorf("too many arguments"))
	}

	if opts.anvillPath == "" && opts.strbsiPath == "" && opts.ghidraPath == "" {
		return opts, errors.Categorised(errors.CategoryInputFormat, errors.CLINoSources)
	}

	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}

	if err := run(opts); err != nil {
		fatal(err)
	}

	if opts.logTail > 0 {
		logger.Tail(os.Stderr, opts.logTail)
	}
}

// fatal prints a one-line diagnostic plus the error's category (§7
// "the CLI maps fatal errors to a short diagnostic line plus a nonzero
// exit"), colorized when stdout is a terminal, and exits with a nonzero
// status.
func fatal(err error) {
	msg := fmt.Sprintf("* error: %s", err)
	if cat := errors.CategoryOf(err); cat != errors.CategoryNone {
		msg = fmt.Sprintf("%s [%s]", msg, cat)
	}
	color.New(color.FgRed).Fprintln(os.Stderr, msg)
	os.Exit(1)
}

// run dispatches the whole pipeline: open the ELF, parse its DWARF
// sections, apply every supplied fact source in the fixed Anvill → Ghidra
// → STR BSI precedence (SPEC_FULL.md Open Question Decisions), update the
// symbol table, and write the result either as section files or spliced
// back into a binary.
func run(opts options) error {
	ef, err := elfio.Open(opts.input)
	if err != nil {
		return err
	}
	defer ef.Close()

	forest, err := dwire.Parse(ef.DebugSections(), ef.ByteOrder())
	if err != nil {
		return err
	}

	sets, err := loadSources(opts)
	if err != nil {
		return err
	}

	sess := merge.NewSession(forest)
	sess.OmitFunctions = opts.omitFunctions
	sess.OmitVariables = opts.omitVariables
	stats := sess.Apply(sets...)

	if opts.verbose || opts.dryRun {
		for _, line := range stats.Lines() {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	if opts.dryRun {
		return nil
	}

	sections := dwire.Serialize(forest, ef.ByteOrder())
	// Serialize does not produce a line program; the input's .debug_line is
	// written back unchanged so DW_AT_stmt_list offsets stay valid.
	sections.Line = ef.DebugSections().Line

	if opts.splitDir != "" {
		return elfio.WriteSectionFiles(opts.splitDir, sections)
	}

	out := map[string][]byte{
		".debug_info":   sections.Info,
		".debug_abbrev": sections.Abbrev,
		".debug_str":    sections.Str,
		".debug_line":   sections.Line,
	}

	if !opts.omitSymbols {
		symBytes, strBytes, err := mergedSymbols(ef, sets)
		if err != nil {
			return err
		}
		out[".symtab"] = symBytes
		out[".strtab"] = strBytes
	}

	if opts.output != opts.input {
		if err := copyFile(opts.input, opts.output); err != nil {
			return err
		}
	}

	tool := splice.ObjcopyTool{Path: opts.splicerPath}
	return splice.Splice(tool, opts.output, out)
}

// loadSources reads and decodes every fact source the CLI was given, in
// the fixed precedence order regardless of which -a/-b/-g flags were
// actually passed (SPEC_FULL.md Open Question Decisions).
func loadSources(opts options) ([]fact.Set, error) {
	var sets []fact.Set

	if opts.anvillPath != "" {
		data, err := os.ReadFile(opts.anvillPath)
		if err != nil {
			return nil, errors.Categorised(errors.CategoryInputFormat, errors.DecodeUnreadableFile, opts.anvillPath, err)
		}
		set, err := (anvill.Decoder{}).Decode(data)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	if opts.ghidraPath != "" {
		data, err := os.ReadFile(opts.ghidraPath)
		if err != nil {
			return nil, errors.Categorised(errors.CategoryInputFormat, errors.DecodeUnreadableFile, opts.ghidraPath, err)
		}
		dec := ghidra.Decoder{}
		if sidecar, err := os.ReadFile(opts.ghidraPath + ".column-map.yaml"); err == nil {
			cols, err := ghidra.LoadColumnMap(sidecar)
			if err != nil {
				return nil, err
			}
			dec.Columns = cols
		}
		set, err := dec.Decode(data)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	if opts.strbsiPath != "" {
		data, err := os.ReadFile(opts.strbsiPath)
		if err != nil {
			return nil, errors.Categorised(errors.CategoryInputFormat, errors.DecodeUnreadableFile, opts.strbsiPath, err)
		}
		dec := strbsi.Decoder{AcceptAll: opts.acceptLowConfidence}
		set, err := dec.Decode(data)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return sets, nil
}

// mergedSymbols applies the same fact sets to the ELF file's existing
// symbol table (spec.md §4.4) and encodes the result back to wire form.
func mergedSymbols(ef *elfio.File, sets []fact.Set) (symBytes, strBytes []byte, err error) {
	syms, err := ef.Symbols()
	if err != nil {
		return nil, nil, err
	}

	tbl := symtab.New(syms)
	for _, set := range sets {
		for _, fn := range set.Functions {
			if fn.Name != "" {
				tbl.Apply(fn.Name, fn.Address, symtab.KindFunction)
			}
		}
		for _, g := range set.Globals {
			if g.Name != "" {
				tbl.Apply(g.Name, g.Address, symtab.KindObject)
			}
		}
	}

	symBytes, strBytes = tbl.Encode(ef.AddrSize(), ef.ByteOrder())
	return symBytes, strBytes, nil
}

// copyFile duplicates src to dst before splicing, so the distinct-output-path
// form of the CLI (spec.md §6: "optional output path") never mutates the
// original input.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Categorised(errors.CategoryInputFormat, errors.DecodeUnreadableFile, src, err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return errors.Categorised(errors.CategoryInputFormat, errors.DecodeUnreadableFile, src, err)
	}
	if err := os.WriteFile(dst, data, info.Mode()); err != nil {
		return errors.Categorised(errors.CategorySplice, errors.SpliceOutputFailed, dst, err)
	}
	return nil
}
