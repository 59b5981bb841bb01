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

package xkbstate

import (
	"github.com/xkbgo/xkbcore/keymap"
	"github.com/xkbgo/xkbcore/keysym"
)

// Which selects state components for serialization and is-active
// queries (spec §4.6.6).
type Which uint8

const (
	WhichDepressed Which = 1 << iota
	WhichLatched
	WhichLocked
	WhichEffective
)

// ConsumedMode selects the consumed-modifier computation (spec §4.6.2).
type ConsumedMode int

const (
	// ConsumedModeXKB counts every modifier the key's type could use
	// to select a different level.
	ConsumedModeXKB ConsumedMode = iota
	// ConsumedModeGTK counts only the modifiers relevant to the entry
	// actually used.
	ConsumedModeGTK
)

// levelFor computes the shift level of key at (already key-wrapped)
// group g under the current effective modifiers (spec §4.6.2): the
// type entry whose mask equals the state's mods restricted to the
// type's effective mask, or level 0 when none matches.
func (s *State) levelFor(key *keymap.Key, g int) int {
	t := &s.km.Types[key.Groups[g].Type]
	entry := typeEntryFor(t, s.comp.EffectiveMods)
	if entry == nil {
		return 0
	}
	return entry.Level
}

func typeEntryFor(t *keymap.KeyType, mods keymap.ModMask) *keymap.TypeMapEntry {
	masked := mods & t.EffMask
	for i := range t.Entries {
		e := &t.Entries[i]
		if e.Active && e.Mask == masked {
			return e
		}
	}
	return nil
}

// KeyLevel returns the shift level that kc resolves to right now, with
// its effective group, or (0, 0) for an unbound keycode.
func (s *State) KeyLevel(kc uint32) (group, level int) {
	key, ok := s.km.KeyByKeycode(kc)
	if !ok || len(key.Groups) == 0 {
		return 0, 0
	}
	g := keymap.WrapGroup(int32(s.comp.EffectiveGroup), len(key.Groups))
	return g, s.levelFor(key, g)
}

// Syms returns the keysyms kc produces in the current state.
func (s *State) Syms(kc uint32) []keysym.Keysym {
	key, ok := s.km.KeyByKeycode(kc)
	if !ok || len(key.Groups) == 0 {
		return nil
	}
	g := keymap.WrapGroup(int32(s.comp.EffectiveGroup), len(key.Groups))
	level := s.levelFor(key, g)
	syms := key.Groups[g].Syms
	if level >= len(syms) {
		return nil
	}
	return syms[level]
}

// OneSym returns the single keysym for kc, or NoSymbol when the level
// holds zero or several syms.
func (s *State) OneSym(kc uint32) keysym.Keysym {
	syms := s.Syms(kc)
	if len(syms) != 1 {
		return keysym.NoSymbol
	}
	return syms[0]
}

// UTF8 returns the text kc produces in the current state, or "".
func (s *State) UTF8(kc uint32) string {
	var buf [keysym.Utf8MaxSize]byte
	total := 0
	var outBuf []byte
	for _, ks := range s.Syms(kc) {
		n := keysym.ToUTF8(ks, buf[:])
		if n > 0 {
			outBuf = append(outBuf, buf[:n]...)
			total += n
		}
	}
	if total == 0 {
		return ""
	}
	return string(outBuf)
}

// ConsumedMods reports the modifiers consumed by level selection for
// kc (spec §4.6.2) under the given mode.
func (s *State) ConsumedMods(kc uint32, mode ConsumedMode) keymap.ModMask {
	key, ok := s.km.KeyByKeycode(kc)
	if !ok || len(key.Groups) == 0 {
		return 0
	}
	g := keymap.WrapGroup(int32(s.comp.EffectiveGroup), len(key.Groups))
	t := &s.km.Types[key.Groups[g].Type]

	switch mode {
	case ConsumedModeGTK:
		return s.consumedGTK(key, g, t)
	default:
		entry := typeEntryFor(t, s.comp.EffectiveMods)
		var preserve keymap.ModMask
		if entry != nil {
			preserve = entry.Preserve
		}
		return t.EffMask &^ preserve
	}
}

// consumedGTK counts only entries that are reachable and whose level
// produces different syms than the no-modifier level, each restricted
// to its own mask minus preserved mods.
func (s *State) consumedGTK(key *keymap.Key, g int, t *keymap.KeyType) keymap.ModMask {
	baseEntry := typeEntryFor(t, 0)
	baseLevel := 0
	if baseEntry != nil {
		baseLevel = baseEntry.Level
	}
	syms := key.Groups[g].Syms
	var consumed keymap.ModMask
	for i := range t.Entries {
		e := &t.Entries[i]
		if !e.Active || e.Level == baseLevel {
			continue
		}
		if sameSyms(syms, e.Level, baseLevel) {
			continue
		}
		if match := typeEntryFor(t, e.Mask); match == e {
			consumed |= e.Mask &^ e.Preserve
		}
	}
	return consumed
}

func sameSyms(syms []keymap.LevelSyms, a, b int) bool {
	var sa, sb keymap.LevelSyms
	if a < len(syms) {
		sa = syms[a]
	}
	if b < len(syms) {
		sb = syms[b]
	}
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// SerializeMods ORs the requested modifier sub-fields together (spec
// §4.6.6).
func (s *State) SerializeMods(which Which) keymap.ModMask {
	var m keymap.ModMask
	if which&WhichDepressed != 0 {
		m |= s.comp.BaseMods
	}
	if which&WhichLatched != 0 {
		m |= s.comp.LatchedMods
	}
	if which&WhichLocked != 0 {
		m |= s.comp.LockedMods
	}
	if which&WhichEffective != 0 {
		m |= s.comp.EffectiveMods
	}
	return m
}

// SerializeLayout ORs the requested layout sub-fields together (spec
// §4.6.6). Locked and effective contribute wrapped indices; base and
// latched contribute their raw accumulated deltas.
func (s *State) SerializeLayout(which Which) int32 {
	var g int32
	if which&WhichDepressed != 0 {
		g += s.comp.BaseGroup
	}
	if which&WhichLatched != 0 {
		g += s.comp.LatchedGroup
	}
	if which&WhichLocked != 0 {
		g += s.comp.LockedGroup
	}
	if which&WhichEffective != 0 {
		g += int32(s.comp.EffectiveGroup)
	}
	return g
}

// LayoutIsActive reports whether layout i equals the selected field;
// locked and effective compare after wrapping (spec §4.6.6).
func (s *State) LayoutIsActive(i int32, which Which) bool {
	if which&WhichEffective != 0 && int(i) == s.comp.EffectiveGroup {
		return true
	}
	if which&WhichLocked != 0 && i == s.comp.LockedGroup {
		return true
	}
	if which&WhichDepressed != 0 && i == s.comp.BaseGroup {
		return true
	}
	if which&WhichLatched != 0 && i == s.comp.LatchedGroup {
		return true
	}
	return false
}

// ModIndexIsActive reports whether modifier index i is set in the
// selected component. Virtual modifier indices are checked through
// their canonical resolved mask, so two virtual modifiers with equal
// real mappings agree (spec §4.4.6, §8.1).
func (s *State) ModIndexIsActive(i int, which Which) bool {
	if i < 0 || i >= keymap.MaxMods {
		return false
	}
	mask := keymap.ModMask(1) << uint(i)
	if i >= keymap.NumRealMods {
		vi := i - keymap.NumRealMods
		if real := s.km.VModReal(vi); real != 0 {
			mask |= real
		}
	}
	return s.SerializeMods(which)&mask != 0
}

// ModNameIsActive is ModIndexIsActive by real- or virtual-modifier
// name.
func (s *State) ModNameIsActive(name string, which Which) bool {
	for i, n := range realModNames {
		if n == name {
			return s.ModIndexIsActive(i, which)
		}
	}
	if vi, ok := s.km.VModByName(name); ok {
		return s.ModIndexIsActive(keymap.NumRealMods+vi, which)
	}
	return false
}

var realModNames = [keymap.NumRealMods]string{
	"Shift", "Lock", "Control", "Mod1", "Mod2", "Mod3", "Mod4", "Mod5",
}

// LedIsActive reports whether the named indicator is lit.
func (s *State) LedIsActive(name string) bool {
	i, ok := s.km.IndicatorByName(name)
	if !ok {
		return false
	}
	return s.comp.Leds&(keymap.LedMask(1)<<uint(i)) != 0
}
