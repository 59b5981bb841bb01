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
)

// UpdateKey ingests one physical key event and returns the derived
// event stream (spec §4.6.1, §4.6.5): at most one aggregated
// ComponentsChange before the key event, plus the redirect-key
// sequence where applicable. Keycodes outside [min, max] or without a
// bound key are a no-op returning no events (spec §6.2, §7).
func (s *State) UpdateKey(kc uint32, down bool) []Event {
	if s.km == nil || kc < s.km.MinKeycode || kc > s.km.MaxKeycode {
		return nil
	}
	key, ok := s.km.KeyByKeycode(kc)
	if !ok {
		return nil
	}

	old := s.comp
	var sideEvents []Event
	redirected := false

	if down {
		// Actions are selected at the state in force when the key goes
		// down, before this key's own actions mutate anything.
		actions := s.actionsFor(key)
		consumed := s.applyFilters(kc, true, &sideEvents)
		if !consumed {
			redirected = s.startActions(kc, actions, &sideEvents)
		}
	} else {
		redirected = s.filtersRedirect(kc)
		s.applyFilters(kc, false, &sideEvents)
	}

	s.updateDerived()
	changed := diff(old, s.comp)

	events := make([]Event, 0, len(sideEvents)+2)
	if changed != 0 {
		events = append(events, Event{Type: EventComponents, Changed: changed, Components: s.comp})
	}
	events = append(events, sideEvents...)
	if !redirected {
		t := EventKeyDown
		if !down {
			t = EventKeyUp
		}
		events = append(events, Event{Type: t, Keycode: kc})
	}
	return events
}

// filtersRedirect reports whether an active redirect filter will
// replace the key event for kc's release.
func (s *State) filtersRedirect(kc uint32) bool {
	for i := range s.filters {
		f := &s.filters[i]
		if f.active && f.key == kc && f.action.Kind == keymap.ActionRedirectKey {
			return true
		}
	}
	return false
}

// actionsFor returns the action list for key at the current effective
// group and level, or nil when the key has none.
func (s *State) actionsFor(key *keymap.Key) []keymap.Action {
	if len(key.Groups) == 0 {
		return nil
	}
	g := keymap.WrapGroup(int32(s.comp.EffectiveGroup), len(key.Groups))
	binding := &key.Groups[g]
	if binding.Actions == nil {
		return nil
	}
	level := s.levelFor(key, g)
	if level >= len(binding.Actions) {
		return nil
	}
	a := binding.Actions[level]
	if a.Kind == keymap.ActionNone {
		return nil
	}
	return []keymap.Action{a}
}

// UpdateControls sets every control bit named in affect to the
// corresponding bit of values (spec §6.3); unknown bits are ignored.
func (s *State) UpdateControls(affect, values keymap.Controls) []Event {
	old := s.comp
	s.setControls(affect, values)
	s.updateDerived()
	return s.componentEvent(old)
}

// UpdateLatchLock applies an external latch/lock synchronization
// (spec §4.6.1, §6.3): each affect selector gates whether the paired
// value replaces the current field.
func (s *State) UpdateLatchLock(
	affectLatchedMods, latchedMods keymap.ModMask,
	affectLatchedGroup bool, latchedGroup int32,
	affectLockedMods, lockedMods keymap.ModMask,
	affectLockedGroup bool, lockedGroup int32,
) []Event {
	old := s.comp
	s.comp.LatchedMods = (s.comp.LatchedMods &^ affectLatchedMods) | (latchedMods & affectLatchedMods)
	if affectLatchedGroup {
		s.comp.LatchedGroup = latchedGroup
	}
	s.comp.LockedMods = (s.comp.LockedMods &^ affectLockedMods) | (lockedMods & affectLockedMods)
	if affectLockedGroup {
		s.comp.LockedGroup = lockedGroup
	}
	s.updateDerived()
	return s.componentEvent(old)
}

// UpdateMask replaces every component at once, for synchronizing from
// an external authority (spec §6.3). Filters are discarded: the
// external authority owns the press bookkeeping now.
func (s *State) UpdateMask(
	baseMods, latchedMods, lockedMods keymap.ModMask,
	baseGroup, latchedGroup, lockedGroup int32,
) []Event {
	old := s.comp
	s.comp.BaseMods = baseMods
	s.comp.LatchedMods = latchedMods
	s.comp.LockedMods = lockedMods
	s.comp.BaseGroup = baseGroup
	s.comp.LatchedGroup = latchedGroup
	s.comp.LockedGroup = lockedGroup
	for i := range s.filters {
		s.filters[i].active = false
	}
	s.updateDerived()
	return s.componentEvent(old)
}

func (s *State) componentEvent(old Components) []Event {
	changed := diff(old, s.comp)
	if changed == 0 {
		return nil
	}
	return []Event{{Type: EventComponents, Changed: changed, Components: s.comp}}
}
