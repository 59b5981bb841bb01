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
	"github.com/xkbgo/xkbcore/keymap"
)

// finalize is pass 5 (spec §4.4, item 5): bind virtual modifiers to
// their real masks, substitute resolved masks everywhere virtual bits
// occur (key types, actions, indicator maps, modifier map), resolve
// deferred group references, and settle the remaining modifier_map
// entries that named keysyms.
func (c *compileCtx) finalize() error {
	c.bindVModsFromModMap()
	c.resolveModMapSyms()
	c.resolveTypeMasks()
	c.resolveActionsAndIndicators()
	if err := c.checkGroupBounds(); err != nil {
		return err
	}
	return nil
}

// bindVModsFromModMap gives each virtual modifier the union of the
// real-modifier masks of every key that contributes to it (the
// modifier_map + interpret virtualModifier route, spec §4.4.1): a key
// whose VMods set names vmod v donates its own modmap mask to v.
func (c *compileCtx) bindVModsFromModMap() {
	for ki := range c.km.Keys {
		key := &c.km.Keys[ki]
		if key.VMods == 0 {
			continue
		}
		modmap := c.keyModMapMask(key.Keycode) & realPart
		if modmap == 0 {
			continue
		}
		for vi := range c.km.VMods {
			if key.VMods&(keymap.ModMask(1)<<uint(keymap.NumRealMods+vi)) != 0 {
				c.km.VMods[vi].Real |= modmap
			}
		}
	}
}

// resolveModMapSyms settles modifier_map members that named a keysym:
// every key whose first group's first level carries that keysym joins
// the mask's key set.
func (c *compileCtx) resolveModMapSyms() {
	for _, p := range c.modMapSyms {
		for ki := range c.km.Keys {
			key := &c.km.Keys[ki]
			if len(key.Groups) == 0 {
				continue
			}
			for _, syms := range key.Groups[0].Syms {
				if len(syms) > 0 && syms[0] == p.sym {
					c.km.ModMapAssignments[p.mask] = append(c.km.ModMapAssignments[p.mask], key.Keycode)
					break
				}
			}
		}
	}
	c.modMapSyms = nil
}

// resolveVMask substitutes each virtual bit of m with its real-mod
// mapping while keeping the virtual bit itself set, so canonical
// folding holds: two vmods with the same real mapping are
// indistinguishable in effective-mask queries (spec §4.4.6).
func (c *compileCtx) resolveVMask(m keymap.ModMask) keymap.ModMask {
	out := m
	for vi := range c.km.VMods {
		if m&(keymap.ModMask(1)<<uint(keymap.NumRealMods+vi)) != 0 {
			out |= c.km.VMods[vi].Real
		}
	}
	return out
}

// resolveTypeMasks computes each type's effective mask and each map
// entry's lookup mask (spec §4.4.2). An entry whose vmods were
// non-empty but resolved to nothing becomes inactive.
func (c *compileCtx) resolveTypeMasks() {
	types := c.km.AllTypes()
	for ti := range types {
		t := &types[ti]
		t.EffMask = c.resolveVMask(t.RealMods | t.VMods)
		for ei := range t.Entries {
			e := &t.Entries[ei]
			e.Active = true
			if e.VMods != 0 && c.resolveVMask(e.VMods)&realPart == 0 {
				e.Active = false
			}
			e.Mask = c.resolveVMask(e.RealMods|e.VMods) & t.EffMask
			e.Preserve = c.resolveVMask(e.Preserve) & e.Mask
		}
	}
}

// resolveActionsAndIndicators rewrites every stored action and
// indicator so that virtual-modifier bits carry their real mapping
// too, and resolves `Last` group references deferred from decode time
// (stored as absolute -1).
func (c *compileCtx) resolveActionsAndIndicators() {
	numGroups := c.km.NumGroups()
	fix := func(a *keymap.Action) {
		a.Mods = c.resolveVMask(a.Mods)
		a.ModsClear = c.resolveVMask(a.ModsClear)
		if a.Flags&keymap.FlagGroupAbsolute != 0 && a.GroupAbs < 0 {
			a.GroupAbs = int32(numGroups - 1)
		}
	}
	for ki := range c.km.Keys {
		key := &c.km.Keys[ki]
		for gi := range key.Groups {
			for ai := range key.Groups[gi].Actions {
				fix(&key.Groups[gi].Actions[ai])
			}
		}
	}
	ins := c.km.AllInterprets()
	for i := range ins {
		ins[i].Mods = c.resolveVMask(ins[i].Mods)
		fix(&ins[i].Action)
	}
	inds := c.km.AllIndicators()
	for i := range inds {
		inds[i].Mods = c.resolveVMask(inds[i].Mods)
	}
}

// checkGroupBounds enforces the ReferenceBeyondMax policy on absolute
// group indices in key actions: in either format version an index at
// or beyond MAX_GROUPS is rejected, and anything below it is kept
// (wrapped at runtime). The v1 group-name limit is checked earlier,
// when group names and action arguments are decoded.
func (c *compileCtx) checkGroupBounds() error {
	limit := int32(keymap.MaxGroups)
	for ki := range c.km.Keys {
		key := &c.km.Keys[ki]
		for gi := range key.Groups {
			for ai := range key.Groups[gi].Actions {
				a := &key.Groups[gi].Actions[ai]
				if a.Flags&keymap.FlagGroupAbsolute != 0 && a.GroupAbs >= limit {
					return newError(ErrReferenceBeyondMax, "key <%s> targets group %d", key.Name, a.GroupAbs+1)
				}
			}
		}
	}
	return nil
}
