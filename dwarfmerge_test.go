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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlagsRequiresInput(t *testing.T) {
	_, err := parseFlags([]string{"-a", "facts.json"})
	require.Error(t, err)
}

func TestParseFlagsRequiresAtLeastOneSource(t *testing.T) {
	_, err := parseFlags([]string{"cart.elf"})
	require.Error(t, err)
}

func TestParseFlagsOutputDefaultsToInput(t *testing.T) {
	opts, err := parseFlags([]string{"-a", "facts.json", "cart.elf"})
	require.NoError(t, err)
	require.Equal(t, "cart.elf", opts.input)
	require.Equal(t, "cart.elf", opts.output)
}

func TestParseFlagsTwoPositionalArgsSetDistinctOutput(t *testing.T) {
	opts, err := parseFlags([]string{"-a", "facts.json", "cart.elf", "cart.out.elf"})
	require.NoError(t, err)
	require.Equal(t, "cart.elf", opts.input)
	require.Equal(t, "cart.out.elf", opts.output)
}

func TestParseFlagsTooManyPositionalArgs(t *testing.T) {
	_, err := parseFlags([]string{"-a", "facts.json", "cart.elf", "out.elf", "extra"})
	require.Error(t, err)
}

func TestParseFlagsOmitAndSourceFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-a", "facts.json",
		"-b", "strbsi.json",
		"-g", "ghidra.csv",
		"-u",
		"--omit-functions",
		"--omit-variables",
		"--omit-symbols",
		"cart.elf",
	})
	require.NoError(t, err)
	require.Equal(t, "facts.json", opts.anvillPath)
	require.Equal(t, "strbsi.json", opts.strbsiPath)
	require.Equal(t, "ghidra.csv", opts.ghidraPath)
	require.True(t, opts.acceptLowConfidence)
	require.True(t, opts.omitFunctions)
	require.True(t, opts.omitVariables)
	require.True(t, opts.omitSymbols)
}

func TestParseFlagsVerboseDefaultsLogTail(t *testing.T) {
	opts, err := parseFlags([]string{"-a", "facts.json", "-v", "cart.elf"})
	require.NoError(t, err)
	require.Greater(t, opts.logTail, 0)
}

func TestParseFlagsExplicitLogTailWins(t *testing.T) {
	opts, err := parseFlags([]string{"-a", "facts.json", "-v", "-l", "5", "cart.elf"})
	require.NoError(t, err)
	require.Equal(t, 5, opts.logTail)
}

func TestParseFlagsSplitDirSkipsInPlaceMode(t *testing.T) {
	opts, err := parseFlags([]string{"-a", "facts.json", "-s", "out/", "cart.elf"})
	require.NoError(t, err)
	require.Equal(t, "out/", opts.splitDir)
}
