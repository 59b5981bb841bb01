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

// Package xkbstate is the runtime keyboard state machine (spec §4.6):
// it ingests key-down/key-up/control/latch-lock events against an
// immutable keymap and emits a deterministic stream of derived events
// carrying the base/latched/locked/effective modifiers, layout
// indices, LEDs, and control bits.
package xkbstate

import (
	"github.com/xkbgo/xkbcore/keymap"
)

// ComponentMask identifies which state components changed in a
// ComponentsChange event (spec §4.6.1).
type ComponentMask uint16

const (
	ComponentModsDepressed ComponentMask = 1 << iota
	ComponentModsLatched
	ComponentModsLocked
	ComponentModsEffective
	ComponentLayoutDepressed
	ComponentLayoutLatched
	ComponentLayoutLocked
	ComponentLayoutEffective
	ComponentLeds
	ComponentControls
)

// Components is the full runtime state snapshot (spec §3.4). Only
// EffectiveGroup and LockedGroup are wrapped into [0, num_groups); the
// base and latched groups preserve the signedness of accumulated
// deltas.
type Components struct {
	BaseGroup      int32
	LatchedGroup   int32
	LockedGroup    int32
	EffectiveGroup int

	BaseMods      keymap.ModMask
	LatchedMods   keymap.ModMask
	LockedMods    keymap.ModMask
	EffectiveMods keymap.ModMask

	Leds     keymap.LedMask
	Controls keymap.Controls
}

// EventType tags an output event.
type EventType int

const (
	EventKeyDown EventType = iota
	EventKeyUp
	EventComponents
)

// Event is one element of the derived event stream. The payload
// fields are tagged by Type, matching the single-struct style the
// keymap package uses for actions: Keycode is set for key events,
// Changed/Components for component-change events.
type Event struct {
	Type       EventType
	Keycode    uint32
	Changed    ComponentMask
	Components Components
}

// State evolves in response to events against a shared, immutable
// keymap (spec §3.5, §5). A State is single-threaded; distinct states
// cloned from the same keymap may live on different goroutines.
type State struct {
	km      *keymap.Keymap
	comp    Components
	filters []filter
}

// New clones a state from km, taking a new keymap reference. The
// initial derived group is 0 and the modifier state empty (spec §4.4
// item 5); RepeatKeys starts enabled.
func New(km *keymap.Keymap) *State {
	s := &State{km: km.Ref()}
	s.comp.Controls = keymap.ControlRepeatKeys
	s.updateDerived()
	return s
}

// Release drops the state's keymap reference. The state must not be
// used afterwards.
func (s *State) Release() {
	if s.km != nil {
		s.km.Unref()
		s.km = nil
	}
}

// Keymap returns the shared keymap this state was cloned from.
func (s *State) Keymap() *keymap.Keymap { return s.km }

// Components returns a snapshot of the current state.
func (s *State) Components() Components { return s.comp }

// numGroups is the wrap modulus for derived group computation.
func (s *State) numGroups() int { return s.km.NumGroups() }

// updateDerived recomputes every derived field after a mutation (spec
// §3.4: "All derived fields are recomputed on every mutation").
func (s *State) updateDerived() {
	s.comp.EffectiveMods = s.comp.BaseMods | s.comp.LatchedMods | s.comp.LockedMods
	n := s.numGroups()
	s.comp.LockedGroup = int32(keymap.WrapGroup(s.comp.LockedGroup, n))
	s.comp.EffectiveGroup = keymap.WrapGroup(
		s.comp.BaseGroup+s.comp.LatchedGroup+s.comp.LockedGroup, n)
	s.comp.Leds = s.ledState()
}

// diff computes the changed-component bitset between two snapshots.
func diff(old, new Components) ComponentMask {
	var m ComponentMask
	if old.BaseMods != new.BaseMods {
		m |= ComponentModsDepressed
	}
	if old.LatchedMods != new.LatchedMods {
		m |= ComponentModsLatched
	}
	if old.LockedMods != new.LockedMods {
		m |= ComponentModsLocked
	}
	if old.EffectiveMods != new.EffectiveMods {
		m |= ComponentModsEffective
	}
	if old.BaseGroup != new.BaseGroup {
		m |= ComponentLayoutDepressed
	}
	if old.LatchedGroup != new.LatchedGroup {
		m |= ComponentLayoutLatched
	}
	if old.LockedGroup != new.LockedGroup {
		m |= ComponentLayoutLocked
	}
	if old.EffectiveGroup != new.EffectiveGroup {
		m |= ComponentLayoutEffective
	}
	if old.Leds != new.Leds {
		m |= ComponentLeds
	}
	if old.Controls != new.Controls {
		m |= ComponentControls
	}
	return m
}

// ledState evaluates every indicator predicate against the current
// components (spec §4.4.5: the LED is on iff all non-zero conditions
// match).
func (s *State) ledState() keymap.LedMask {
	var leds keymap.LedMask
	for i := range s.km.Indicators {
		if s.ledActive(&s.km.Indicators[i]) {
			leds |= keymap.LedMask(1) << uint(i)
		}
	}
	return leds
}

func (s *State) ledActive(led *keymap.Indicator) bool {
	matched := false

	if led.WhichMods != 0 && led.Mods != 0 {
		var mods keymap.ModMask
		if led.WhichMods&(keymap.WhichModsBase|keymap.WhichModsAny) != 0 {
			mods |= s.comp.BaseMods
		}
		if led.WhichMods&(keymap.WhichModsLatched|keymap.WhichModsAny) != 0 {
			mods |= s.comp.LatchedMods
		}
		if led.WhichMods&(keymap.WhichModsLocked|keymap.WhichModsAny) != 0 {
			mods |= s.comp.LockedMods
		}
		if led.WhichMods&(keymap.WhichModsEffective|keymap.WhichModsCompat) != 0 {
			mods |= s.comp.EffectiveMods
		}
		if mods&led.Mods == 0 {
			return false
		}
		matched = true
	}

	if led.WhichGroups != 0 && led.Groups != 0 {
		var hit bool
		if led.WhichGroups&(keymap.WhichGroupsEffective|keymap.WhichGroupsAny) != 0 {
			hit = hit || led.Groups&(keymap.GroupMask(1)<<uint(s.comp.EffectiveGroup)) != 0
		}
		if led.WhichGroups&keymap.WhichGroupsBase != 0 {
			g := keymap.WrapGroup(s.comp.BaseGroup, s.numGroups())
			hit = hit || led.Groups&(keymap.GroupMask(1)<<uint(g)) != 0
		}
		if led.WhichGroups&keymap.WhichGroupsLatched != 0 {
			g := keymap.WrapGroup(s.comp.LatchedGroup, s.numGroups())
			hit = hit || led.Groups&(keymap.GroupMask(1)<<uint(g)) != 0
		}
		if led.WhichGroups&keymap.WhichGroupsLocked != 0 {
			hit = hit || led.Groups&(keymap.GroupMask(1)<<uint(s.comp.LockedGroup)) != 0
		}
		if !hit {
			return false
		}
		matched = true
	}

	if led.Controls != 0 {
		if s.comp.Controls&led.Controls == 0 {
			return false
		}
		matched = true
	}

	return matched
}
