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

// compileSymbols is pass 4 (spec §4.4, item 4): attach keysym and
// action arrays to every key, group by group, and run the interpret
// machinery over keys without explicit actions.
func (c *compileCtx) compileSymbols(mf *ast.MapFile) error {
	c.defaultTypes = map[int]string{}
	for _, stmt := range mf.Statements {
		switch s := stmt.(type) {
		case *ast.VModsDef:
			if err := c.declareVMods(s); err != nil {
				return err
			}
		case *ast.AliasDef:
			c.km.AddAlias(keymap.Alias{Alias: s.Alias, Canonical: s.Canonical})
		case *ast.GroupNameDef:
			if s.Group > keymap.MaxGroups {
				return newError(ErrReferenceBeyondMax, "group %d exceeds MAX_GROUPS", s.Group)
			}
			if c.opts.FormatVersion < 2 && s.Group > maxGroupsV1 {
				// Invariant 5: format v1 only knows Group1..Group4 by
				// name; v2 accepts anything within MAX_GROUPS.
				return newError(ErrUndefinedGroupName, "group name Group%d not valid in format v1", s.Group)
			}
			c.km.SetGroupName(s.Group-1, keysym.NormalizeLiteral(s.Name))
		case *ast.KeyTypeAssign:
			c.defaultTypes[s.Group] = s.Type
		case *ast.KeyDef:
			if err := c.compileKeyDef(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compileCtx) compileKeyDef(kd *ast.KeyDef) error {
	canonical := c.km.ResolveAlias(kd.Name)
	key, ok := c.km.KeyByName(canonical)
	if !ok {
		if !c.opts.Lenient {
			return newError(ErrUndefinedKey, "symbols bind key <%s> with no keycode", kd.Name)
		}
		c.warn("symbols bind key <%s> with no keycode; ignored", kd.Name)
		return nil
	}

	numGroups := 0
	for _, g := range kd.Groups {
		if g.Group > numGroups {
			numGroups = g.Group
		}
	}
	if numGroups > keymap.MaxGroups {
		return newError(ErrReferenceBeyondMax, "key <%s> uses group %d, exceeding MAX_GROUPS", kd.Name, numGroups)
	}

	modmap := c.keyModMapMask(key.Keycode)
	groups := make([]keymap.KeyGroupBinding, numGroups)
	for i := range groups {
		groups[i].Type = 0 // ONE_LEVEL for unpopulated slots
	}

	for _, g := range kd.Groups {
		binding, err := c.compileKeyGroup(kd, g, modmap)
		if err != nil {
			return err
		}
		groups[g.Group-1] = binding
	}

	repeats := true
	vmods := keymap.ModMask(0)
	if !kd.Actions {
		// No explicit actions: per level, the highest-priority interpret
		// whose predicate matches supplies the action, the auto-repeat
		// flag, and a virtual-modifier contribution (spec §4.4 item 4).
		matchedRepeat := false
		for gi := range groups {
			b := &groups[gi]
			if len(b.Syms) == 0 {
				continue
			}
			if b.Actions == nil {
				b.Actions = make([]keymap.Action, len(b.Syms))
			}
			for li, syms := range b.Syms {
				if len(syms) == 0 {
					continue
				}
				matchMods := keymap.ModMask(0)
				if li == 0 {
					matchMods = modmap
				}
				in := c.findInterpret(syms[0], matchMods)
				if in == nil {
					continue
				}
				act := in.Action
				if act.Flags&keymap.FlagISOLockUseModMapMods != 0 {
					act.Mods = modmap
				}
				b.Actions[li] = act
				if in.VMod >= 0 {
					vmods |= keymap.ModMask(1) << uint(keymap.NumRealMods+in.VMod)
				}
				if !matchedRepeat {
					repeats = in.AutoRepeat
					matchedRepeat = true
				}
			}
		}
	}
	if kd.Repeats != nil {
		repeats = *kd.Repeats
	}
	if kd.VMod != "" {
		vi, ok := c.km.VModByName(kd.VMod)
		if !ok {
			vi = c.km.AddVMod(keymap.VirtualMod{Name: kd.VMod})
		}
		vmods |= keymap.ModMask(1) << uint(keymap.NumRealMods+vi)
	}

	idx, _ := c.km.IndexByKeycode(key.Keycode)
	c.km.SetKeyGroups(idx, groups, kd.Actions, repeats, vmods)
	return nil
}

func (c *compileCtx) compileKeyGroup(kd *ast.KeyDef, g ast.KeyGroup, modmap keymap.ModMask) (keymap.KeyGroupBinding, error) {
	var b keymap.KeyGroupBinding

	syms := make([]keymap.LevelSyms, len(g.Symbols))
	for i, name := range g.Symbols {
		if name == "" || name == "NoSymbol" {
			continue
		}
		ks := c.resolveKeysymName(name)
		if ks == keysym.NoSymbol {
			c.warn("key <%s> names unknown keysym %q", kd.Name, name)
			continue
		}
		syms[i] = keymap.LevelSyms{ks}
	}

	width := len(syms)
	if len(g.Actions) > width {
		width = len(g.Actions)
	}

	typeIdx, numLevels, err := c.resolveKeyType(kd, g.Group, syms, width)
	if err != nil {
		return b, err
	}

	// Invariant 2: per group the level slot count equals the type's
	// level count. Pad with "no symbol"; truncate (with a diagnostic)
	// when the source supplies more levels than the type has.
	if len(syms) > numLevels {
		c.warn("key <%s> group %d has %d levels but type has %d; extra levels dropped",
			kd.Name, g.Group, len(syms), numLevels)
		syms = syms[:numLevels]
	}
	for len(syms) < numLevels {
		syms = append(syms, nil)
	}

	b.Type = typeIdx
	b.Syms = syms

	if g.Actions != nil {
		acts := make([]keymap.Action, numLevels)
		for i, ae := range g.Actions {
			if i >= numLevels {
				break
			}
			if ae == nil {
				continue
			}
			a, err := c.decodeAction(ae, modmap)
			if err != nil {
				return b, err
			}
			acts[i] = a
		}
		b.Actions = acts
	}
	return b, nil
}

// resolveKeysymName resolves a symbol name from a symbols list:
// named keysyms, `UXXXX` Unicode-direct forms, and raw `0x...`
// hexadecimal keysym values (format v2 relaxed syntax, spec §6.1).
func (c *compileCtx) resolveKeysymName(name string) keysym.Keysym {
	if ks := keysym.NameToKeysym(name, false); ks != keysym.NoSymbol {
		return ks
	}
	if len(name) > 1 && (name[0] == 'U' || name[0] == 'u') {
		if cp, ok := parseHex(name[1:]); ok {
			return keysym.FromUTF32(cp)
		}
	}
	if len(name) > 2 && name[0] == '0' && (name[1] == 'x' || name[1] == 'X') {
		if v, ok := parseHex(name[2:]); ok {
			return keysym.Keysym(v)
		}
	}
	// A bare numeric keysym value; the scanner has already folded hex
	// literals to their integer value by the time they reach here.
	if v, ok := parseDecimal(name); ok {
		return keysym.Keysym(v)
	}
	return keysym.NoSymbol
}

func parseDecimal(s string) (uint32, bool) {
	if s == "" || s[0] == '0' && len(s) > 1 {
		return 0, false
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
		if v > 0xffffffff {
			return 0, false
		}
	}
	return uint32(v), true
}

func parseHex(s string) (uint32, bool) {
	if s == "" || len(s) > 8 {
		return 0, false
	}
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint32(c-'A') + 10
		default:
			return 0, false
		}
		v = v<<4 | d
	}
	return v, true
}

// resolveKeyType picks the key type for one group of one key: an
// explicit per-group override, the key's all-group override, the
// file-scoped `key.type` default, or automatic inference from the
// symbols themselves. Returns the type index and its level count.
func (c *compileCtx) resolveKeyType(kd *ast.KeyDef, group int, syms []keymap.LevelSyms, width int) (int, int, error) {
	name := kd.Type[group]
	if name == "" {
		name = kd.Type[0]
	}
	if name == "" {
		name = c.defaultTypes[group]
	}
	if name == "" {
		name = c.defaultTypes[0]
	}
	if name != "" {
		if idx, ok := c.km.TypeByName(name); ok {
			return idx, c.km.Types[idx].NumLevels, nil
		}
		if !c.opts.Lenient {
			return 0, 0, newError(ErrUndefinedKeyType, "key <%s> references type %q", kd.Name, name)
		}
		// Missing referenced type degrades to ONE_LEVEL with a
		// diagnostic, leaving the keymap usable (spec §7 policy).
		c.warn("key <%s> references undefined type %q; using ONE_LEVEL", kd.Name, name)
		idx, _ := c.km.TypeByName(keymap.TypeOneLevel)
		return idx, c.km.Types[idx].NumLevels, nil
	}

	inferred := c.inferKeyType(syms, width)
	idx, _ := c.km.TypeByName(inferred)
	return idx, c.km.Types[idx].NumLevels, nil
}

// inferKeyType reproduces the reference compiler's automatic type
// assignment: one level is ONE_LEVEL; two levels pick ALPHABETIC for a
// lower/upper pair, KEYPAD for KP_* syms, TWO_LEVEL otherwise; wider
// keys fall back to a FOUR_LEVEL-family type when the keymap defines
// one.
func (c *compileCtx) inferKeyType(syms []keymap.LevelSyms, width int) string {
	if width <= 1 {
		return keymap.TypeOneLevel
	}
	if width == 2 {
		s0, s1 := levelSym(syms, 0), levelSym(syms, 1)
		if keysym.IsLower(s0) && keysym.IsUpperOrTitle(s1) {
			return keymap.TypeAlphabetic
		}
		if keysym.IsKeypad(s0) || keysym.IsKeypad(s1) {
			return keymap.TypeKeypad
		}
		return keymap.TypeTwoLevel
	}
	for _, name := range []string{"FOUR_LEVEL_ALPHABETIC", "FOUR_LEVEL_SEMIALPHABETIC", "FOUR_LEVEL"} {
		if _, ok := c.km.TypeByName(name); ok {
			return name
		}
	}
	return keymap.TypeTwoLevel
}

func levelSym(syms []keymap.LevelSyms, i int) keysym.Keysym {
	if i < len(syms) && len(syms[i]) > 0 {
		return syms[i][0]
	}
	return keysym.NoSymbol
}

// keyModMapMask returns the union of real-modifier masks the
// modifier_map statements assign to keycode kc.
func (c *compileCtx) keyModMapMask(kc uint32) keymap.ModMask {
	var m keymap.ModMask
	for mask, kcs := range c.km.ModMapAssignments {
		for _, other := range kcs {
			if other == kc {
				m |= mask
			}
		}
	}
	return m
}

// findInterpret returns the highest-priority interpret matching sym
// under the key's modifier-map mask, or nil. The Interprets table is
// already priority-sorted, so the first match wins.
func (c *compileCtx) findInterpret(sym keysym.Keysym, modmap keymap.ModMask) *keymap.Interpret {
	for i := range c.km.Interprets {
		in := &c.km.Interprets[i]
		if !in.Any && in.Keysym != sym {
			continue
		}
		if interpretModsMatch(in, modmap) {
			return in
		}
	}
	return nil
}

func interpretModsMatch(in *keymap.Interpret, mods keymap.ModMask) bool {
	switch in.Match {
	case keymap.MatchNone:
		return mods == 0
	case keymap.MatchAnyOfOrNone:
		return mods == 0 || mods&in.Mods != 0
	case keymap.MatchAnyOf:
		return mods&in.Mods != 0
	case keymap.MatchAllOf:
		return mods&in.Mods == in.Mods
	case keymap.MatchExactly:
		return mods == in.Mods
	}
	return false
}
