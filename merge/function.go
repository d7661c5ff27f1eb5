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
	"github.com/jetsetilly/dwarfmerge/dwire"
	"github.com/jetsetilly/dwarfmerge/fact"
)

// mergeFunction implements §4.3 "Merging a function fact" end to end:
// update the existing subprogram DIE at this PC if one exists, otherwise
// create one (unless suppressed by OmitFunctions).
func (s *Session) mergeFunction(fn fact.Function) {
	if d, ok := s.pcIndex[fn.Address]; ok {
		s.updateFunction(d, fn)
		s.Stats.FunctionsUpdated++
		return
	}

	if s.OmitFunctions {
		return
	}

	cu := s.homeCUFor(fn.Address)
	idx := cu.NewEntry(dwire.TagSubprogram, 0)
	d := cu.Entries[idx]
	d.Set(dwire.AttrLowPC, dwire.Addr(fn.Address))
	if fn.Name != "" {
		d.Set(dwire.AttrName, dwire.Str(fn.Name))
	}
	if fn.HasEnd {
		d.Set(dwire.AttrHighPC, dwire.Unsigned(fn.EndAddress-fn.Address))
	}
	if fn.NoReturn {
		d.Set(dwire.AttrNoreturn, dwire.Flag(true))
	}
	if fn.Prototyped {
		d.Set(dwire.AttrPrototyped, dwire.Flag(true))
	}
	if len(fn.ReturnAddr.Expr) > 0 {
		d.Set(dwire.AttrReturnAddr, dwire.Block(fn.ReturnAddr.Expr))
	}
	if fn.Return != nil {
		if t := s.resolveType(fn.Return, s.syntheticUnit()); t != nil {
			d.SetRef(dwire.AttrType, t)
		}
	}
	for _, p := range fn.Parameters {
		s.appendParameter(cu, idx, p)
	}
	for _, l := range fn.Locals {
		s.appendLocal(cu, idx, l)
	}

	s.pcIndex[fn.Address] = d
	s.Stats.FunctionsCreated++
}

// updateFunction applies the override policy to every attribute of an
// already-existing subprogram DIE, then reconciles parameters and locals
// (§8 scenario S4).
func (s *Session) updateFunction(d *dwire.DIE, fn fact.Function) {
	cu := d.Unit

	s.overrideName(d, fn.Name, fn.Address)

	if fn.HasEnd {
		setIfAbsent(d, dwire.AttrHighPC, dwire.Unsigned(fn.EndAddress-fn.Address))
	}
	if fn.NoReturn {
		setIfAbsent(d, dwire.AttrNoreturn, dwire.Flag(true))
	}
	if fn.Prototyped {
		setIfAbsent(d, dwire.AttrPrototyped, dwire.Flag(true))
	}
	if len(fn.ReturnAddr.Expr) > 0 {
		setIfAbsent(d, dwire.AttrReturnAddr, dwire.Block(fn.ReturnAddr.Expr))
	}

	s.overrideReturnType(d, fn.Return, fn.Address)

	s.mergeParameters(cu, d, fn.Parameters)
	s.mergeLocals(cu, d, fn.Locals)
}

// mergeParameters reconciles a subprogram's formal-parameter children
// positionally against fn's list (§4.3, §8 scenario S4): parameters
// shared by both are updated in place (a reconciliation, not an
// override conflict, so it overwrites rather than defers to existing
// data); a fact with fewer parameters than exist leaves the surplus
// untouched; a longer one appends fresh children.
func (s *Session) mergeParameters(cu *dwire.Unit, d *dwire.DIE, params []fact.Parameter) {
	existing := childrenByTag(cu, d, dwire.TagFormalParameter)
	parentIdx := indexOfDIE(cu, d)
	for i, p := range params {
		if i < len(existing) {
			s.updateParameter(existing[i], p)
			continue
		}
		s.appendParameter(cu, parentIdx, p)
	}
}

// mergeLocals reconciles local-variable children by name: the sources that
// supply locals (STR BSI and Anvill) name them, so
// name is the natural join key (unlike parameters, which are positional
// and frequently unnamed). This is a best-effort supplement beyond
// spec.md's explicit scenarios, so a type-resolution miss just leaves
// the local untyped rather than failing the merge.
func (s *Session) mergeLocals(cu *dwire.Unit, d *dwire.DIE, locals []fact.Local) {
	byName := make(map[string]*dwire.DIE)
	for _, ci := range d.Children {
		child := cu.Entries[ci]
		if child.Tag == dwire.TagVariable && child.Name() != "" {
			byName[child.Name()] = child
		}
	}
	parentIdx := indexOfDIE(cu, d)
	for _, l := range locals {
		if l.Name == "" {
			continue
		}
		if existing, ok := byName[l.Name]; ok {
			if l.Type != nil {
				if t := s.resolveType(l.Type, s.syntheticUnit()); t != nil {
					existing.SetRef(dwire.AttrType, t)
				}
			}
			if len(l.Location.Expr) > 0 {
				setIfAbsent(existing, dwire.AttrLocation, dwire.Block(l.Location.Expr))
			}
			continue
		}
		s.appendLocal(cu, parentIdx, l)
	}
}

func (s *Session) updateParameter(d *dwire.DIE, p fact.Parameter) {
	if p.Name != "" {
		d.Set(dwire.AttrName, dwire.Str(p.Name))
	}
	if p.Type != nil {
		if t := s.resolveType(p.Type, s.syntheticUnit()); t != nil {
			d.SetRef(dwire.AttrType, t)
		}
	}
	if len(p.Location.Expr) > 0 {
		d.Set(dwire.AttrLocation, dwire.Block(p.Location.Expr))
	}
}

func (s *Session) appendParameter(cu *dwire.Unit, parent int, p fact.Parameter) {
	idx := cu.NewEntry(dwire.TagFormalParameter, parent)
	d := cu.Entries[idx]
	if p.Name != "" {
		d.Set(dwire.AttrName, dwire.Str(p.Name))
	}
	if p.Type != nil {
		if t := s.resolveType(p.Type, s.syntheticUnit()); t != nil {
			d.SetRef(dwire.AttrType, t)
		}
	}
	if len(p.Location.Expr) > 0 {
		d.Set(dwire.AttrLocation, dwire.Block(p.Location.Expr))
	}
}

func (s *Session) appendLocal(cu *dwire.Unit, parent int, l fact.Local) {
	idx := cu.NewEntry(dwire.TagVariable, parent)
	d := cu.Entries[idx]
	if l.Name != "" {
		d.Set(dwire.AttrName, dwire.Str(l.Name))
	}
	if l.Type != nil {
		if t := s.resolveType(l.Type, s.syntheticUnit()); t != nil {
			d.SetRef(dwire.AttrType, t)
		}
	}
	if len(l.Location.Expr) > 0 {
		d.Set(dwire.AttrLocation, dwire.Block(l.Location.Expr))
	}
}

// childrenByTag returns d's children with the given tag, in DIE order.
func childrenByTag(cu *dwire.Unit, d *dwire.DIE, tag dwire.Tag) []*dwire.DIE {
	var out []*dwire.DIE
	for _, ci := range d.Children {
		if cu.Entries[ci].Tag == tag {
			out = append(out, cu.Entries[ci])
		}
	}
	return out
}

// indexOfDIE finds d's arena index within cu, needed whenever a freshly
// reconciled DIE has to parent a newly appended child (NewEntry takes a
// parent index, not a pointer).
func indexOfDIE(cu *dwire.Unit, d *dwire.DIE) int {
	for i, e := range cu.Entries {
		if e == d {
			return i
		}
	}
	return -1
}
