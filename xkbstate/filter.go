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

// latch lifecycle values carried in filter.priv for latch filters.
const (
	latchPending int32 = iota
	latchBroken
	latchLatched
	latchPromoted
)

// filter is the per-pressed-key action tracker: each action of a
// pressed key owns one filter that intercepts subsequent key events
// until the matching release (and, for latches, one keypress beyond
// it). Mirrors the reference state machine's filter list.
type filter struct {
	active bool
	key    uint32
	action keymap.Action
	priv   int32

	savedGroup    int32
	savedControls keymap.Controls
	savedLocked   keymap.ModMask
}

func (s *State) addFilter(f filter) {
	f.active = true
	for i := range s.filters {
		if !s.filters[i].active {
			s.filters[i] = f
			return
		}
	}
	s.filters = append(s.filters, f)
}

// applyFilters feeds a key event through every live filter before the
// key's own actions run. A filter may mutate components, deactivate
// itself, or (for redirects) append events to out. It reports whether
// a filter consumed the event outright (a second press of a standing
// latch key promoting to a lock), in which case the key's own actions
// must not run.
func (s *State) applyFilters(kc uint32, down bool, out *[]Event) (consumed bool) {
	for i := range s.filters {
		f := &s.filters[i]
		if !f.active {
			continue
		}
		switch f.action.Kind {
		case keymap.ActionSetMods:
			s.filterModSet(f, kc, down)
		case keymap.ActionLatchMods:
			consumed = s.filterModLatch(f, kc, down) || consumed
		case keymap.ActionLockMods:
			s.filterModLock(f, kc, down)
		case keymap.ActionSetGroup:
			s.filterGroupSet(f, kc, down)
		case keymap.ActionLatchGroup:
			consumed = s.filterGroupLatch(f, kc, down) || consumed
		case keymap.ActionLockGroup:
			s.filterGroupLock(f, kc, down)
		case keymap.ActionRedirectKey:
			s.filterRedirect(f, kc, down, out)
		case keymap.ActionSetControls:
			s.filterControlsSet(f, kc, down)
		default:
			if kc == f.key && !down {
				f.active = false
			}
		}
	}
	return consumed
}

// startActions spawns the filters for a fresh key press and applies
// each action's press-time effect (spec §4.6.3). It reports whether a
// redirect replaced the key's own down event.
func (s *State) startActions(kc uint32, actions []keymap.Action, out *[]Event) (redirected bool) {
	for _, a := range actions {
		a = s.stickyRewrite(a)
		switch a.Kind {
		case keymap.ActionSetMods:
			s.comp.BaseMods |= a.Mods
			s.addFilter(filter{key: kc, action: a})
		case keymap.ActionLatchMods:
			s.comp.BaseMods |= a.Mods
			s.addFilter(filter{key: kc, action: a, priv: latchPending})
		case keymap.ActionLockMods:
			f := filter{key: kc, action: a, savedLocked: s.comp.LockedMods & a.Mods}
			s.comp.BaseMods |= a.Mods
			if a.Flags&keymap.FlagUnlockOnPress != 0 && f.savedLocked != 0 {
				if a.Flags&keymap.FlagISOLockNoUnlock == 0 {
					s.comp.LockedMods &^= a.Mods
				}
			} else if a.Flags&keymap.FlagISOLockNoLock == 0 {
				s.comp.LockedMods |= a.Mods
			}
			s.addFilter(f)
		case keymap.ActionSetGroup:
			f := filter{key: kc, action: a, savedGroup: s.comp.BaseGroup}
			if a.Flags&keymap.FlagGroupAbsolute != 0 {
				s.comp.BaseGroup = a.GroupAbs
			} else {
				s.comp.BaseGroup += a.GroupDelta
			}
			s.addFilter(f)
		case keymap.ActionLatchGroup:
			f := filter{key: kc, action: a, priv: latchPending, savedGroup: s.comp.BaseGroup}
			if a.Flags&keymap.FlagGroupAbsolute != 0 {
				s.comp.BaseGroup = a.GroupAbs
			} else {
				s.comp.BaseGroup += a.GroupDelta
			}
			s.addFilter(f)
		case keymap.ActionLockGroup:
			if a.Flags&keymap.FlagGroupAbsolute != 0 {
				s.comp.LockedGroup = a.GroupAbs
			} else {
				s.comp.LockedGroup += a.GroupDelta
			}
			s.addFilter(filter{key: kc, action: a})
		case keymap.ActionRedirectKey:
			if _, ok := s.km.KeyByKeycode(a.Keycode); !ok {
				continue // degrades to NoAction (spec §4.6.3)
			}
			s.addFilter(filter{key: kc, action: a})
			s.emitRedirect(a, true, out)
			redirected = true
		case keymap.ActionSetControls:
			f := filter{key: kc, action: a, savedControls: s.comp.Controls}
			s.setControls(a.Affect, a.Controls)
			s.addFilter(f)
		case keymap.ActionLockControls:
			s.toggleControls(a.Affect)
			s.addFilter(filter{key: kc, action: a})
		case keymap.ActionMovePointer, keymap.ActionPointerButton,
			keymap.ActionLockPointerButton, keymap.ActionSetPointerDefault,
			keymap.ActionSwitchScreen, keymap.ActionTerminateServer,
			keymap.ActionPrivate, keymap.ActionISOLock,
			keymap.ActionDeviceButton, keymap.ActionDeviceValuator,
			keymap.ActionMessage:
			// Side effects outside the modifier/group state (spec
			// §4.6.3); the filter only swallows the matching release.
			s.addFilter(filter{key: kc, action: a})
		}
	}
	return redirected
}

// stickyRewrite turns a plain modifier set into a latch when
// StickyKeys is active (spec §4.6.4), inheriting the latch-to-lock
// behavior from the matching control bit.
func (s *State) stickyRewrite(a keymap.Action) keymap.Action {
	if a.Kind != keymap.ActionSetMods || s.comp.Controls&keymap.ControlStickyKeys == 0 {
		return a
	}
	a.Kind = keymap.ActionLatchMods
	if s.comp.Controls&keymap.ControlStickyKeysLatchToLock != 0 {
		a.Flags |= keymap.FlagLatchToLock
	}
	return a
}

func (s *State) filterModSet(f *filter, kc uint32, down bool) {
	if kc != f.key || down {
		return
	}
	s.comp.BaseMods &^= f.action.Mods
	if f.action.Flags&keymap.FlagClearLocks != 0 {
		s.comp.LockedMods &^= f.action.Mods
	}
	f.active = false
}

func (s *State) filterModLatch(f *filter, kc uint32, down bool) bool {
	mask := f.action.Mods
	switch f.priv {
	case latchPending:
		if kc == f.key && !down {
			// Clean release: the base contribution becomes a latch.
			s.comp.BaseMods &^= mask
			s.comp.LatchedMods |= mask
			f.priv = latchLatched
			return false
		}
		if down {
			// Another key pressed before our release: latch broken
			// (spec §4.6.3, §8.1 latch-cancellation property).
			f.priv = latchBroken
		}
	case latchBroken:
		if kc == f.key && !down {
			s.comp.BaseMods &^= mask
			f.active = false
		}
	case latchLatched:
		if down && kc == f.key && f.action.Flags&keymap.FlagLatchToLock != 0 {
			// The user pressed the latch key again: promote the
			// standing latch to a lock and swallow the press
			// (spec §4.6.3 latch-to-lock).
			s.comp.LockedMods ^= mask
			s.comp.LatchedMods &^= mask
			f.priv = latchPromoted
			return true
		}
		if down {
			// Any other key press consumes the latch.
			s.comp.LatchedMods &^= mask
			f.active = false
		}
	case latchPromoted:
		// Waiting out the release of the promoting press.
		if kc == f.key && !down {
			f.active = false
			return true
		}
	}
	return false
}

func (s *State) filterModLock(f *filter, kc uint32, down bool) {
	if kc != f.key || down {
		return
	}
	a := f.action
	s.comp.BaseMods &^= a.Mods
	if a.Flags&keymap.FlagUnlockOnPress == 0 && f.savedLocked != 0 {
		if a.Flags&keymap.FlagISOLockNoUnlock == 0 {
			s.comp.LockedMods &^= a.Mods
		}
	}
	f.active = false
}

func (s *State) filterGroupSet(f *filter, kc uint32, down bool) {
	if kc != f.key || down {
		return
	}
	s.comp.BaseGroup = f.savedGroup
	if f.action.Flags&keymap.FlagClearLocks != 0 {
		s.comp.LockedGroup = 0
	}
	f.active = false
}

func (s *State) filterGroupLatch(f *filter, kc uint32, down bool) bool {
	a := f.action
	switch f.priv {
	case latchPending:
		if kc == f.key && !down {
			s.comp.BaseGroup = f.savedGroup
			if a.Flags&keymap.FlagGroupAbsolute != 0 {
				s.comp.LatchedGroup = a.GroupAbs
			} else {
				s.comp.LatchedGroup += a.GroupDelta
			}
			f.priv = latchLatched
			return false
		}
		if down {
			f.priv = latchBroken
		}
	case latchBroken:
		if kc == f.key && !down {
			s.comp.BaseGroup = f.savedGroup
			// A group latch broken by a non-group key keeps the group
			// lock untouched, clearLocks or not; see DESIGN.md on the
			// open question.
			f.active = false
		}
	case latchLatched:
		if down && kc == f.key && a.Flags&keymap.FlagLatchToLock != 0 {
			if a.Flags&keymap.FlagGroupAbsolute != 0 {
				s.comp.LockedGroup = a.GroupAbs
				s.comp.LatchedGroup = 0
			} else {
				s.comp.LockedGroup += a.GroupDelta
				s.comp.LatchedGroup -= a.GroupDelta
			}
			f.priv = latchPromoted
			return true
		}
		if down {
			if a.Flags&keymap.FlagGroupAbsolute != 0 {
				s.comp.LatchedGroup = 0
			} else {
				s.comp.LatchedGroup -= a.GroupDelta
			}
			f.active = false
		}
	case latchPromoted:
		if kc == f.key && !down {
			f.active = false
			return true
		}
	}
	return false
}

func (s *State) filterGroupLock(f *filter, kc uint32, down bool) {
	if kc == f.key && !down {
		f.active = false
	}
}

func (s *State) filterControlsSet(f *filter, kc uint32, down bool) {
	if kc != f.key || down {
		return
	}
	old := s.comp.Controls
	s.comp.Controls = f.savedControls
	s.stickyDisableCheck(old)
	f.active = false
}

func (s *State) filterRedirect(f *filter, kc uint32, down bool, out *[]Event) {
	if kc != f.key || down {
		return
	}
	s.emitRedirect(f.action, false, out)
	f.active = false
}

// emitRedirect produces the redirect-key triple (spec §4.6.3, §8.2
// scenario 5): a ComponentsChange temporarily overriding the
// modifiers, the synthetic key event, and the restoring
// ComponentsChange. The override never persists in the state.
func (s *State) emitRedirect(a keymap.Action, down bool, out *[]Event) {
	overridden := s.comp
	overridden.EffectiveMods = (s.comp.EffectiveMods | a.Mods) &^ a.ModsClear

	changed := diff(s.comp, overridden)
	if changed != 0 {
		*out = append(*out, Event{Type: EventComponents, Changed: changed, Components: overridden})
	}
	t := EventKeyDown
	if !down {
		t = EventKeyUp
	}
	*out = append(*out, Event{Type: t, Keycode: a.Keycode})
	if changed != 0 {
		*out = append(*out, Event{Type: EventComponents, Changed: changed, Components: s.comp})
	}
}

// setControls applies an (affect, values) pair (spec §6.3) and runs
// the StickyKeys-disable cleanup when the transition calls for it.
func (s *State) setControls(affect, values keymap.Controls) {
	affect &= keymap.KnownControls
	old := s.comp.Controls
	s.comp.Controls = (s.comp.Controls &^ affect) | (values & affect)
	s.stickyDisableCheck(old)
}

func (s *State) toggleControls(affect keymap.Controls) {
	old := s.comp.Controls
	s.comp.Controls ^= affect & keymap.KnownControls
	s.stickyDisableCheck(old)
}

// stickyDisableCheck clears all latches when StickyKeys transitions
// from on to off (spec §4.6.3, §8.1 sticky-clear property: latched
// mods and group reset, locks untouched).
func (s *State) stickyDisableCheck(old keymap.Controls) {
	if old&keymap.ControlStickyKeys != 0 && s.comp.Controls&keymap.ControlStickyKeys == 0 {
		s.comp.LatchedMods = 0
		s.comp.LatchedGroup = 0
		for i := range s.filters {
			f := &s.filters[i]
			if f.active && f.priv == latchLatched &&
				(f.action.Kind == keymap.ActionLatchMods || f.action.Kind == keymap.ActionLatchGroup) {
				f.active = false
			}
		}
	}
}
