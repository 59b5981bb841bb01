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

// compileKeycodes is pass 1 (spec §4.4, item 1): build the
// keycode<->name bimap, apply aliases (which may predate the name they
// target), and compute min/max keycode as the actual bound over named
// keycodes.
func (c *compileCtx) compileKeycodes(mf *ast.MapFile) error {
	for _, stmt := range mf.Statements {
		switch s := stmt.(type) {
		case *ast.KeycodeDef:
			if s.Keycode > keymap.MaxKeycode {
				return newError(ErrReferenceBeyondMax, "keycode %d for %s exceeds MAX_KEYCODE", s.Keycode, s.Name)
			}
			c.km.AddKey(keymap.Key{Keycode: s.Keycode, Name: s.Name})
		case *ast.AliasDef:
			c.km.AddAlias(keymap.Alias{Alias: s.Alias, Canonical: s.Canonical})
		case *ast.IndicatorKeycodeDef:
			// xkb_keycodes names an LED index ahead of the compat
			// pass, which later fills in the predicate by name.
			if s.Index < 1 || s.Index > keymap.MaxLeds {
				return newError(ErrReferenceBeyondMax, "indicator index %d out of range", s.Index)
			}
			c.km.EnsureIndicatorAt(s.Index-1, keysym.NormalizeLiteral(s.Name))
		}
	}

	c.resolveAliasChains()

	if len(c.km.Keys) == 0 {
		c.km.MinKeycode, c.km.MaxKeycode = keymap.MinKeycode, keymap.MinKeycode
		return nil
	}
	minKC, maxKC := c.km.Keys[0].Keycode, c.km.Keys[0].Keycode
	for _, k := range c.km.Keys {
		if k.Keycode < minKC {
			minKC = k.Keycode
		}
		if k.Keycode > maxKC {
			maxKC = k.Keycode
		}
	}
	c.km.MinKeycode, c.km.MaxKeycode = minKC, maxKC
	return nil
}

// resolveAliasChains follows chains of aliases so that an alias
// declared before its canonical target (spec §4.4, item 1: "alias may
// predate the defining name") still resolves correctly, and flattens
// multi-hop alias-to-alias chains to a single hop.
func (c *compileCtx) resolveAliasChains() {
	canon := map[string]string{}
	for _, a := range c.km.Aliases {
		canon[a.Alias] = a.Canonical
	}
	for i, a := range c.km.Aliases {
		target := a.Canonical
		seen := map[string]bool{a.Alias: true}
		for {
			next, ok := canon[target]
			if !ok || seen[target] {
				break
			}
			seen[target] = true
			target = next
		}
		c.km.Aliases[i].Canonical = target
	}
}
