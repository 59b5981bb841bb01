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

// realPart masks off the virtual-modifier bits of a combined mask.
const realPart = keymap.ModMask(1)<<keymap.NumRealMods - 1

// compileTypes is pass 2 (spec §4.4, item 2): materialize key types,
// split each modifier expression into its real and virtual halves,
// validate level indices, and attach level names. Mask resolution
// against virtual modifiers happens later, in finalize, once every
// vmod binding has been seen.
func (c *compileCtx) compileTypes(mf *ast.MapFile) error {
	for _, stmt := range mf.Statements {
		switch s := stmt.(type) {
		case *ast.VModsDef:
			if err := c.declareVMods(s); err != nil {
				return err
			}
		case *ast.TypeDef:
			if err := c.compileTypeDef(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// declareVMods registers the named virtual modifiers, applying any
// explicit `= Mod2`-style binding immediately (spec §4.4.1: a vmod
// carries a real-mod mask; unbound ones stay empty and legal).
func (c *compileCtx) declareVMods(s *ast.VModsDef) error {
	for _, name := range s.Names {
		var real keymap.ModMask
		if b := s.Bindings[name]; b != nil {
			real = c.evalModMask(b) & realPart
		}
		if i, ok := c.km.VModByName(name); ok {
			if real != 0 {
				c.km.VMods[i].Real |= real
			}
			continue
		}
		if len(c.km.VMods) >= keymap.MaxMods-keymap.NumRealMods {
			return newError(ErrReferenceBeyondMax, "too many virtual modifiers declaring %s", name)
		}
		c.km.AddVMod(keymap.VirtualMod{Name: name, Real: real})
	}
	return nil
}

func (c *compileCtx) compileTypeDef(s *ast.TypeDef) error {
	mask := c.evalModMask(s.Mods)
	t := keymap.KeyType{
		Name:     s.Name,
		RealMods: mask & realPart,
		VMods:    mask &^ realPart,
	}

	maxLevel := 0
	for _, m := range s.Maps {
		if m.Level >= keymap.MaxLevels {
			return newError(ErrReferenceBeyondMax, "level %d in type %s exceeds MAX_LEVELS", m.Level+1, s.Name)
		}
		em := c.evalModMask(m.Mods)
		t.Entries = append(t.Entries, keymap.TypeMapEntry{
			RealMods: em & realPart,
			VMods:    em &^ realPart,
			Level:    m.Level,
		})
		if m.Level > maxLevel {
			maxLevel = m.Level
		}
	}

	// Preserve entries attach to the map entry with the same mask
	// expression; a preserve with no matching map entry is a lenient
	// no-op, matching the reference compiler's warning-and-continue.
	for _, p := range s.Preserve {
		pm := c.evalModMask(p.Mods)
		found := false
		for i := range t.Entries {
			if t.Entries[i].RealMods|t.Entries[i].VMods == pm {
				t.Entries[i].Preserve = c.evalModMask(p.Preserve)
				found = true
			}
		}
		if !found {
			c.warn("preserve entry in type %s matches no map entry", s.Name)
		}
	}

	for _, ln := range s.Levels {
		if ln.Level >= keymap.MaxLevels {
			return newError(ErrReferenceBeyondMax, "level_name index %d in type %s exceeds MAX_LEVELS", ln.Level+1, s.Name)
		}
		for len(t.Levels) <= ln.Level {
			t.Levels = append(t.Levels, "")
		}
		t.Levels[ln.Level] = keysym.NormalizeLiteral(ln.Name)
		if ln.Level > maxLevel {
			maxLevel = ln.Level
		}
	}

	t.NumLevels = maxLevel + 1

	if idx, ok := c.km.TypeByName(s.Name); ok {
		c.km.ReplaceType(idx, t)
	} else {
		c.km.AddType(t)
	}
	return nil
}
