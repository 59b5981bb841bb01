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
)

// maxGroupsV1 is the named-group limit of format v1 (invariant 5);
// format v2 accepts any GroupN within keymap.MaxGroups.
const maxGroupsV1 = 4

var realModBit = map[string]int{
	"Shift": 0, "Lock": 1, "Control": 2,
	"Mod1": 3, "Mod2": 4, "Mod3": 5, "Mod4": 6, "Mod5": 7,
}

// resolveModName resolves a bare modifier name to a ModMask bit,
// checking real modifiers, then already-declared virtual modifiers,
// then the legacy vmod->real synonym table (spec §3.2, SPEC_FULL.md
// §3 item 2).
func (c *compileCtx) resolveModName(name string) (keymap.ModMask, bool) {
	if bit, ok := realModBit[name]; ok {
		return keymap.ModMask(1) << uint(bit), true
	}
	for i, v := range c.km.VMods {
		if v.Name == name {
			return keymap.ModMask(1) << uint(keymap.NumRealMods+i), true
		}
	}
	if real, ok := keysym.LegacyVModReal[name]; ok {
		return c.resolveModName(real)
	}
	switch name {
	case "None", "none":
		return 0, true
	case "All", "all", "Any", "any":
		return keymap.ModMask(0xffffffff), true
	}
	return 0, false
}

// evalModMask interprets e as a modifier-mask expression: a name, or a
// `+`/`|`-joined sum of names (spec §3.2, §4.4.1). Unknown modifier
// names are a lenient no-op (mask bit simply absent) rather than a
// hard error, matching the "unresolved vmod references are permitted"
// rule (spec §4.4.1) — a genuinely unresolvable reference only matters
// if something downstream requires it to contribute to real modifiers.
func (c *compileCtx) evalModMask(e *ast.Expr) keymap.ModMask {
	if e == nil {
		return 0
	}
	switch e.Kind {
	case ast.ExprIdent:
		if m, ok := c.resolveModName(e.Ident); ok {
			return m
		}
		c.warn("undefined modifier %q", e.Ident)
		return 0
	case ast.ExprInt:
		return keymap.ModMask(e.Int)
	case ast.ExprSum, ast.ExprUnion:
		return c.evalModMask(e.Lhs) | c.evalModMask(e.Rhs)
	case ast.ExprNot:
		return ^c.evalModMask(e.Sub)
	case ast.ExprGroup:
		return c.evalModMask(e.Sub)
	}
	return 0
}

// groupRef is the decoded form of a SetGroup/LatchGroup/LockGroup
// group-index argument (spec §4.4.4): either an absolute (unsigned,
// 1-based-in-source, stored 0-based) index, or a signed relative delta.
type groupRef struct {
	Absolute bool
	Value    int32
}

// evalGroupExpr decodes a group-index expression: bare integers and
// `GroupN`/`First`/`Last` identifiers are absolute; `+N`/`-N` are
// relative (spec §4.4.4). numGroups resolves `Last`; 0 if not yet known
// (resolved again at finalize once every group is known).
func (c *compileCtx) evalGroupExpr(e *ast.Expr, numGroups int) groupRef {
	if e == nil {
		return groupRef{Absolute: true, Value: 0}
	}
	switch e.Kind {
	case ast.ExprInt:
		return groupRef{Absolute: true, Value: int32(e.Int) - 1}
	case ast.ExprPlus:
		inner := c.evalGroupExpr(e.Sub, numGroups)
		return groupRef{Absolute: false, Value: inner.Value + 1}
	case ast.ExprNeg:
		inner := c.evalGroupExpr(e.Sub, numGroups)
		return groupRef{Absolute: false, Value: -(inner.Value + 1)}
	case ast.ExprIdent:
		switch e.Ident {
		case "First":
			return groupRef{Absolute: true, Value: 0}
		case "Last":
			if numGroups > 0 {
				return groupRef{Absolute: true, Value: int32(numGroups - 1)}
			}
			return groupRef{Absolute: true, Value: -1}
		}
		if n, ok := groupNameToIndexCompiler(e.Ident); ok {
			return groupRef{Absolute: true, Value: int32(n)}
		}
	case ast.ExprGroup:
		return c.evalGroupExpr(e.Sub, numGroups)
	}
	return groupRef{Absolute: true, Value: 0}
}

func groupNameToIndexCompiler(name string) (int, bool) {
	if len(name) > 5 && name[:5] == "Group" {
		n := 0
		for i := 5; i < len(name); i++ {
			ch := name[i]
			if ch < '0' || ch > '9' {
				return 0, false
			}
			n = n*10 + int(ch-'0')
		}
		if n >= 1 {
			return n - 1, true
		}
	}
	return 0, false
}

// evalInt evaluates a plain integer-shaped expression (no modifiers
// involved): bare ints, and unary +/- over them.
func evalInt(e *ast.Expr) int64 {
	if e == nil {
		return 0
	}
	switch e.Kind {
	case ast.ExprInt:
		return e.Int
	case ast.ExprPlus:
		return evalInt(e.Sub)
	case ast.ExprNeg:
		return -evalInt(e.Sub)
	case ast.ExprGroup:
		return evalInt(e.Sub)
	}
	return 0
}

// evalBoolIdent evaluates a bare boolean-shaped identifier expression
// (e.g. `clearLocks` as a flag, or `same=yes`).
func evalBoolIdent(e *ast.Expr) bool {
	if e == nil {
		return true // bare flag arg with no value defaults to true
	}
	if e.Kind == ast.ExprIdent {
		switch e.Ident {
		case "true", "yes", "on", "True", "Yes", "On":
			return true
		case "false", "no", "off", "False", "No", "Off":
			return false
		}
	}
	return true
}
