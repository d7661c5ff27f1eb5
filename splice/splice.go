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

// Package splice is the injected objcopy-like collaborator (spec.md §4.5,
// §9 "External tool invocation": "treat the splicing tool as an injected
// collaborator with an interface {update_section, add_section}; provide an
// in-memory test double for tests").
package splice

import (
	"os"
	"os/exec"

	"github.com/jetsetilly/dwarfmerge/errors"
	"github.com/jetsetilly/dwarfmerge/logger"
)

// Tool is the collaborator the merge engine's final write step depends on.
// UpdateSection patches an existing section in place; AddSection appends a
// section that wasn't present before (§4.5: "the latter as fallback when
// the section did not previously exist").
type Tool interface {
	UpdateSection(binary, name string, data []byte) error
	AddSection(binary, name string, data []byte) error
}

// Splice writes every named section in sections into binary, preferring
// UpdateSection and falling back to AddSection when the update fails
// because the section doesn't exist yet (§4.5, §7 "Splice errors: ...
// attempt --add-section fallback; if that also fails, fatal").
func Splice(t Tool, binary string, sections map[string][]byte) error {
	for name, data := range sections {
		if err := t.UpdateSection(binary, name, data); err != nil {
			logger.Logf("splice", "update-section %s failed, falling back to add-section: %v", name, err)
			if addErr := t.AddSection(binary, name, data); addErr != nil {
				return errors.Categorised(errors.CategorySplice, errors.SpliceMissingSection, name, addErr)
			}
		}
	}
	return nil
}

// ObjcopyTool shells out to a binutils-style objcopy (or llvm-objcopy)
// executable (§4.5: "invoke an external objcopy-like tool ... The tool
// path is configurable; default is resolved from the environment search
// path"). Its stdout/stderr are propagated to the parent process (§5: "The
// external objcopy invocation is a child process whose stdout/stderr are
// propagated; its non-zero exit is a fatal error").
type ObjcopyTool struct {
	// Path is the objcopy executable to invoke. Empty means resolve
	// "objcopy" from $PATH.
	Path string
}

func (o ObjcopyTool) path() string {
	if o.Path != "" {
		return o.Path
	}
	return "objcopy"
}

func (o ObjcopyTool) run(binary string, args ...string) error {
	args = append(args, binary)
	cmd := exec.Command(o.path(), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Categorised(errors.CategorySplice, errors.SpliceToolFailed, o.path(), err)
	}
	return nil
}

// UpdateSection shells out to `objcopy --update-section NAME=FILE binary`.
// data is written to a temporary file first since objcopy's
// --update-section takes a file path, not stdin.
func (o ObjcopyTool) UpdateSection(binary, name string, data []byte) error {
	f, err := writeTemp(name, data)
	if err != nil {
		return err
	}
	defer os.Remove(f)
	return o.run(binary, "--update-section", name+"="+f)
}

// AddSection shells out to `objcopy --add-section NAME=FILE binary`.
func (o ObjcopyTool) AddSection(binary, name string, data []byte) error {
	f, err := writeTemp(name, data)
	if err != nil {
		return err
	}
	defer os.Remove(f)
	return o.run(binary, "--add-section", name+"="+f)
}

func writeTemp(name string, data []byte) (string, error) {
	f, err := os.CreateTemp("", "dwarfmerge-"+name+"-*")
	if err != nil {
		return "", errors.Categorised(errors.CategorySplice, errors.SpliceOutputFailed, name, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", errors.Categorised(errors.CategorySplice, errors.SpliceOutputFailed, name, err)
	}
	return f.Name(), nil
}
