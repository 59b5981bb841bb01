// Copyright 2025 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import (
	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/keymap"
	"github.com/xkbgo/xkbcore/keysym"
	"github.com/xkbgo/xkbcore/xkbtext"
)

// compileCompat is pass 3 (spec §4.4, item 3): materialize the
// interpret list sorted by priority, the indicator maps, and the
// modifier_map assignments. Keysym-named modifier_map entries cannot
// resolve to keycodes until the symbols pass has bound syms to keys,
// so those are queued on the context for finalize.
func (c *compileCtx) compileCompat(mf *ast.MapFile) error {
	for _, stmt := range mf.Statements {
		switch s := stmt.(type) {
		case *ast.VModsDef:
			if err := c.declareVMods(s); err != nil {
				return err
			}
		case *ast.InterpretDef:
			if err := c.compileInterpret(s); err != nil {
				return err
			}
		case *ast.IndicatorDef:
			if err := c.compileIndicator(s); err != nil {
				return err
			}
		case *ast.ModMapDef:
			if err := c.compileModMap(s); err != nil {
				return err
			}
		}
	}

	// More-specific match beats less-specific; declaration order breaks
	// ties (spec §4.4 item 3). The sort is stable, so equal priorities
	// keep their relative order across include boundaries (spec §9 open
	// question, decided in DESIGN.md).
	c.km.SortInterprets(func(a, b keymap.Interpret) bool {
		return a.Priority > b.Priority
	})
	return nil
}

func (c *compileCtx) compileInterpret(s *ast.InterpretDef) error {
	in := keymap.Interpret{VMod: -1, AutoRepeat: false}

	if xkbtext.FoldKeyword(s.Keysym) == "any" {
		in.Any = true
	} else {
		in.Keysym = keysym.NameToKeysym(s.Keysym, false)
		if in.Keysym == keysym.NoSymbol {
			c.warn("interpret names unknown keysym %q", s.Keysym)
		}
	}

	in.Match = keymap.MatchPredicate(s.Match)
	in.Mods = c.evalModMask(s.Mods)

	if s.Action != nil {
		a, err := c.decodeAction(s.Action, 0)
		if err != nil {
			return err
		}
		in.Action = a
	}
	if s.AutoRepeat != nil {
		in.AutoRepeat = *s.AutoRepeat
	}
	if s.VMod != "" {
		vi, ok := c.km.VModByName(s.VMod)
		if !ok {
			vi = c.km.AddVMod(keymap.VirtualMod{Name: s.VMod})
		}
		in.VMod = vi
	}

	in.Priority = interpretPriority(in)
	c.km.AddInterpret(in)
	return nil
}

// interpretPriority ranks interprets so a concrete keysym beats the
// Any wildcard and an exact modifier predicate beats a looser one.
func interpretPriority(in keymap.Interpret) int {
	p := 0
	if !in.Any {
		p += 8
	}
	switch in.Match {
	case keymap.MatchExactly:
		p += 4
	case keymap.MatchAllOf:
		p += 3
	case keymap.MatchAnyOf:
		p += 2
	case keymap.MatchAnyOfOrNone:
		p += 1
	case keymap.MatchNone:
		p += 0
	}
	return p
}

var whichGroupsNames = map[string]keymap.WhichGroups{
	"base":      keymap.WhichGroupsBase,
	"latched":   keymap.WhichGroupsLatched,
	"locked":    keymap.WhichGroupsLocked,
	"effective": keymap.WhichGroupsEffective,
	"any":       keymap.WhichGroupsAny,
	"none":      0,
}

var whichModsNames = map[string]keymap.WhichMods{
	"base":      keymap.WhichModsBase,
	"latched":   keymap.WhichModsLatched,
	"locked":    keymap.WhichModsLocked,
	"effective": keymap.WhichModsEffective,
	"compat":    keymap.WhichModsCompat,
	"any":       keymap.WhichModsAny,
	"none":      0,
}

func (c *compileCtx) compileIndicator(s *ast.IndicatorDef) error {
	if len(c.km.Indicators) >= keymap.MaxLeds {
		return newError(ErrReferenceBeyondMax, "too many indicators declaring %q", s.Name)
	}
	ind := keymap.Indicator{
		Name:      keysym.NormalizeLiteral(s.Name),
		WhichMods: keymap.WhichModsEffective,
	}

	if s.WhichGroups != nil {
		ind.WhichGroups = evalWhichGroups(s.WhichGroups)
	}
	if s.Groups != nil {
		ind.Groups = c.evalGroupMask(s.Groups)
		if ind.WhichGroups == 0 {
			ind.WhichGroups = keymap.WhichGroupsEffective
		}
	}
	if s.WhichMods != nil {
		ind.WhichMods = evalWhichMods(s.WhichMods)
	}
	if s.Mods != nil {
		mask := c.evalModMask(s.Mods)
		ind.Mods = mask
		ind.ExplicitMods = mask
	}
	if s.Controls != nil {
		ind.Controls = c.evalControlMask(s.Controls)
	}

	if idx, ok := c.km.IndicatorByName(ind.Name); ok {
		c.km.Indicators[idx] = ind
	} else {
		c.km.AddIndicator(ind)
	}
	return nil
}

func evalWhichGroups(e *ast.Expr) keymap.WhichGroups {
	switch e.Kind {
	case ast.ExprIdent:
		return whichGroupsNames[xkbtext.FoldKeyword(e.Ident)]
	case ast.ExprSum, ast.ExprUnion:
		return evalWhichGroups(e.Lhs) | evalWhichGroups(e.Rhs)
	case ast.ExprGroup:
		return evalWhichGroups(e.Sub)
	}
	return 0
}

func evalWhichMods(e *ast.Expr) keymap.WhichMods {
	switch e.Kind {
	case ast.ExprIdent:
		return whichModsNames[xkbtext.FoldKeyword(e.Ident)]
	case ast.ExprSum, ast.ExprUnion:
		return evalWhichMods(e.Lhs) | evalWhichMods(e.Rhs)
	case ast.ExprGroup:
		return evalWhichMods(e.Sub)
	}
	return 0
}

// evalGroupMask interprets e as a group bitset: `Group1+Group3` or a
// raw integer mask.
func (c *compileCtx) evalGroupMask(e *ast.Expr) keymap.GroupMask {
	if e == nil {
		return 0
	}
	switch e.Kind {
	case ast.ExprIdent:
		if xkbtext.FoldKeyword(e.Ident) == "all" {
			return ^keymap.GroupMask(0)
		}
		if n, ok := groupNameToIndexCompiler(e.Ident); ok {
			return keymap.GroupMask(1) << uint(n)
		}
		c.warn("undefined group name %q", e.Ident)
		return 0
	case ast.ExprInt:
		return keymap.GroupMask(e.Int)
	case ast.ExprSum, ast.ExprUnion:
		return c.evalGroupMask(e.Lhs) | c.evalGroupMask(e.Rhs)
	case ast.ExprGroup:
		return c.evalGroupMask(e.Sub)
	}
	return 0
}

// pendingModMap is a modifier_map member that could not be resolved to
// a keycode during the compat pass (it names a keysym rather than a
// key, and symbols are not bound yet).
type pendingModMap struct {
	mask keymap.ModMask
	sym  keysym.Keysym
}

func (c *compileCtx) compileModMap(s *ast.ModMapDef) error {
	mask, ok := c.resolveModName(s.Modifier)
	if !ok {
		return newError(ErrUndefinedModifier, "modifier_map names unknown modifier %q", s.Modifier)
	}
	for _, ref := range s.Keys {
		if key, found := c.km.KeyByName(ref); found {
			c.km.ModMapAssignments[mask] = append(c.km.ModMapAssignments[mask], key.Keycode)
			continue
		}
		if ks := keysym.NameToKeysym(ref, false); ks != keysym.NoSymbol {
			c.modMapSyms = append(c.modMapSyms, pendingModMap{mask: mask, sym: ks})
			continue
		}
		c.warn("modifier_map %s names unknown key or keysym %q", s.Modifier, ref)
	}
	return nil
}
