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
	"reflect"
	"testing"

	"github.com/xkbgo/xkbcore/compiler"
	"github.com/xkbgo/xkbcore/keymap"
	"github.com/xkbgo/xkbcore/linker"
	"github.com/xkbgo/xkbcore/parser"
)

const (
	shiftMask   = keymap.ModMask(1) << 0
	lockMask    = keymap.ModMask(1) << 1
	controlMask = keymap.ModMask(1) << 2
)

func mustKeymap(t *testing.T, src string) *keymap.Keymap {
	t.Helper()
	f, err := parser.Parse([]byte(src), "test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	linked, err := linker.Link(f, linker.Options{})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	km, _, err := compiler.Compile(linked, compiler.Options{FormatVersion: 1, Lenient: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return km
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

// Scenario 1 (spec §8.2): a plain key produces its sym and no
// component change.
func TestScenarioPlainA(t *testing.T) {
	km := mustKeymap(t, `xkb_keymap {
		xkb_keycodes { <A> = 1; };
		xkb_symbols { key <A> { [ a ] }; };
	};`)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	events := s.UpdateKey(1, true)
	if len(events) != 1 || events[0].Type != EventKeyDown || events[0].Keycode != 1 {
		t.Fatalf("events = %+v", events)
	}
	if got := s.OneSym(1); got != 0x0061 {
		t.Fatalf("OneSym = %#x", got)
	}
}

const shiftKeymap = `xkb_keymap {
	xkb_keycodes { <LFSH> = 50; <AE01> = 1; };
	xkb_compat {
		interpret Shift_L+AnyOfOrNone(All) { action = SetMods(modifiers=Shift); };
	};
	xkb_symbols {
		key <LFSH> { [ Shift_L ] };
		key <AE01> { [ a, A ] };
	};
};`

// Scenario 2: Shift selects level 2; the modifier change is announced
// once, before the key event, and the unchanged second press emits no
// ComponentsChange.
func TestScenarioShiftA(t *testing.T) {
	km := mustKeymap(t, shiftKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	down1 := s.UpdateKey(50, true)
	want1 := []EventType{EventComponents, EventKeyDown}
	if !reflect.DeepEqual(eventTypes(down1), want1) {
		t.Fatalf("LFSH down events = %+v", down1)
	}
	if down1[0].Changed&ComponentModsDepressed == 0 ||
		down1[0].Components.BaseMods != shiftMask {
		t.Fatalf("components event = %+v", down1[0])
	}

	down2 := s.UpdateKey(1, true)
	if !reflect.DeepEqual(eventTypes(down2), []EventType{EventKeyDown}) {
		t.Fatalf("AE01 down events = %+v", down2)
	}
	if got := s.OneSym(1); got != 0x0041 {
		t.Fatalf("OneSym under Shift = %#x", got)
	}

	s.UpdateKey(1, false)
	s.UpdateKey(50, false)
	if s.Components().BaseMods != 0 || s.Components().EffectiveMods != 0 {
		t.Fatalf("mods not cleared: %+v", s.Components())
	}
	if got := s.OneSym(1); got != 0x0061 {
		t.Fatalf("OneSym after release = %#x", got)
	}
}

const groupLatchKeymap = `xkb_keymap {
	xkb_keycodes { <SWCH> = 10; <AE02> = 11; };
	xkb_symbols {
		key <SWCH> { [ ISO_Group_Latch ], actions[Group1] = [ LatchGroup(group=+1) ] };
		key <AE02> { [ a ], [ b ] };
	};
};`

// Scenario 3: a group latch survives its own release and is consumed
// by the next key press.
func TestScenarioGroupLatchThenBreak(t *testing.T) {
	km := mustKeymap(t, groupLatchKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(10, true)
	if c := s.Components(); c.BaseGroup != 1 || c.EffectiveGroup != 1 {
		t.Fatalf("after latch down: %+v", c)
	}
	s.UpdateKey(10, false)
	if c := s.Components(); c.LatchedGroup != 1 || c.EffectiveGroup != 1 || c.BaseGroup != 0 {
		t.Fatalf("after latch up: %+v", c)
	}
	if got := s.OneSym(11); got != 0x0062 { // 'b' from group 2
		t.Fatalf("latched sym = %#x", got)
	}

	s.UpdateKey(11, true)
	if c := s.Components(); c.LatchedGroup != 0 || c.EffectiveGroup != 0 {
		t.Fatalf("latch not consumed: %+v", c)
	}
	s.UpdateKey(11, false)
	if c := s.Components(); c.EffectiveGroup != 0 {
		t.Fatalf("after consume: %+v", c)
	}
}

const capsKeymap = `xkb_keymap {
	xkb_keycodes { <CAPS> = 66; };
	xkb_compat {
		interpret Caps_Lock+AnyOfOrNone(All) { action = LockMods(modifiers=Lock); };
		indicator "Caps Lock" { whichModState = Locked; modifiers = Lock; };
	};
	xkb_symbols { key <CAPS> { [ Caps_Lock ] }; };
};`

// Scenario 4: Caps Lock locks on the first press/release cycle and
// unlocks on the second; the LED follows the locked modifier.
func TestScenarioCapsLock(t *testing.T) {
	km := mustKeymap(t, capsKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(66, true)
	s.UpdateKey(66, false)
	if c := s.Components(); c.LockedMods != lockMask || c.BaseMods != 0 {
		t.Fatalf("after first cycle: %+v", c)
	}
	if !s.LedIsActive("Caps Lock") {
		t.Fatalf("Caps Lock LED should be lit")
	}

	s.UpdateKey(66, true)
	s.UpdateKey(66, false)
	if c := s.Components(); c.LockedMods != 0 {
		t.Fatalf("after second cycle: %+v", c)
	}
	if s.LedIsActive("Caps Lock") {
		t.Fatalf("Caps Lock LED should be off")
	}
}

const redirectKeymap = `xkb_keymap {
	xkb_keycodes { <RDIR> = 20; <AC02> = 39; <LCTL> = 37; };
	xkb_compat {
		interpret Control_L+AnyOfOrNone(All) { action = LockMods(modifiers=Control); };
	};
	xkb_symbols {
		key <LCTL> { [ Control_L ] };
		key <AC02> { [ s ] };
		key <RDIR> { [ r ], actions[Group1] = [ RedirectKey(keycode=<AC02>, modifiers=Shift, clearModifiers=Control) ] };
	};
};`

// Scenario 5: RedirectKey emits the override change, the synthetic key
// event, and the restoring change, in that order.
func TestScenarioRedirectKey(t *testing.T) {
	km := mustKeymap(t, redirectKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	// Lock Control first.
	s.UpdateKey(37, true)
	s.UpdateKey(37, false)
	if c := s.Components(); c.LockedMods != controlMask {
		t.Fatalf("setup: %+v", c)
	}

	events := s.UpdateKey(20, true)
	want := []EventType{EventComponents, EventKeyDown, EventComponents}
	if !reflect.DeepEqual(eventTypes(events), want) {
		t.Fatalf("redirect events = %+v", events)
	}
	if events[0].Components.EffectiveMods != shiftMask {
		t.Fatalf("override mods = %#x", events[0].Components.EffectiveMods)
	}
	if events[1].Keycode != 39 {
		t.Fatalf("redirect target = %d", events[1].Keycode)
	}
	if events[2].Components.EffectiveMods != controlMask {
		t.Fatalf("restore mods = %#x", events[2].Components.EffectiveMods)
	}

	up := s.UpdateKey(20, false)
	wantUp := []EventType{EventComponents, EventKeyUp, EventComponents}
	if !reflect.DeepEqual(eventTypes(up), wantUp) || up[1].Keycode != 39 {
		t.Fatalf("redirect up events = %+v", up)
	}
}

const threeGroupKeymap = `xkb_keymap {
	xkb_keycodes { <LOCK> = 10; <AE03> = 11; };
	xkb_symbols {
		key <LOCK> { [ ISO_Group_Lock ], actions[Group1] = [ LockGroup(group=6) ] };
		key <AE03> { [ a ], [ b ], [ c ] };
	};
};`

// Scenario 6: an absolute group lock past the populated count wraps by
// the canonical modulo.
func TestScenarioGroupWrapOnLock(t *testing.T) {
	km := mustKeymap(t, threeGroupKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(10, true)
	s.UpdateKey(10, false)
	if c := s.Components(); c.LockedGroup != 2 || c.EffectiveGroup != 2 {
		t.Fatalf("lock wrap: %+v", c)
	}
	if got := s.OneSym(11); got != 0x0063 { // 'c'
		t.Fatalf("wrapped group sym = %#x", got)
	}
}

const modLatchKeymap = `xkb_keymap {
	xkb_keycodes { <LTCH> = 10; <AE01> = 11; };
	xkb_symbols {
		key <LTCH> { [ ISO_Level2_Latch ], actions[Group1] = [ LatchMods(modifiers=Shift) ] };
		key <AE01> { [ a, A ] };
	};
};`

// Latch-cancellation property (spec §8.1): a key pressed between the
// latch's down and up clears the base contribution without latching.
func TestLatchCancellation(t *testing.T) {
	km := mustKeymap(t, modLatchKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(10, true)
	s.UpdateKey(11, true)
	s.UpdateKey(11, false)
	s.UpdateKey(10, false)
	if c := s.Components(); c.LatchedMods != 0 || c.BaseMods != 0 {
		t.Fatalf("broken latch left mods: %+v", c)
	}
}

func TestLatchSuccessAndConsume(t *testing.T) {
	km := mustKeymap(t, modLatchKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(10, true)
	s.UpdateKey(10, false)
	if c := s.Components(); c.LatchedMods != shiftMask || c.BaseMods != 0 {
		t.Fatalf("latch did not stick: %+v", c)
	}
	if got := s.OneSym(11); got != 0x0041 {
		t.Fatalf("latched sym = %#x", got)
	}
	s.UpdateKey(11, true)
	if c := s.Components(); c.LatchedMods != 0 {
		t.Fatalf("latch not consumed: %+v", c)
	}
}

const latchToLockKeymap = `xkb_keymap {
	xkb_keycodes { <LTCH> = 10; <AE01> = 11; };
	xkb_symbols {
		key <LTCH> { [ ISO_Level2_Latch ], actions[Group1] = [ LatchMods(modifiers=Shift,latchToLock) ] };
		key <AE01> { [ a, A ] };
	};
};`

// A second press of the latch key while the latch stands promotes it
// to a lock (spec §4.6.3 latchToLock).
func TestLatchToLockPromotion(t *testing.T) {
	km := mustKeymap(t, latchToLockKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(10, true)
	s.UpdateKey(10, false)
	if c := s.Components(); c.LatchedMods != shiftMask {
		t.Fatalf("first cycle: %+v", c)
	}
	s.UpdateKey(10, true)
	if c := s.Components(); c.LockedMods != shiftMask || c.LatchedMods != 0 || c.BaseMods != 0 {
		t.Fatalf("promotion press: %+v", c)
	}
	s.UpdateKey(10, false)
	if c := s.Components(); c.LockedMods != shiftMask {
		t.Fatalf("promotion release: %+v", c)
	}
	// Ordinary keys no longer disturb the lock.
	s.UpdateKey(11, true)
	s.UpdateKey(11, false)
	if c := s.Components(); c.LockedMods != shiftMask {
		t.Fatalf("lock not persistent: %+v", c)
	}
}

// Sticky-clear property (spec §8.1): disabling StickyKeys clears the
// latches, keeps the locks, and announces it in exactly one event.
func TestStickyClearOnDisable(t *testing.T) {
	km := mustKeymap(t, shiftKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateControls(keymap.ControlStickyKeys, keymap.ControlStickyKeys)
	s.UpdateKey(50, true) // sticky: SetMods behaves as a latch
	s.UpdateKey(50, false)
	if c := s.Components(); c.LatchedMods != shiftMask {
		t.Fatalf("sticky latch missing: %+v", c)
	}
	s.UpdateLatchLock(0, 0, false, 0, lockMask, lockMask, false, 0)
	if c := s.Components(); c.LockedMods != lockMask {
		t.Fatalf("setup lock missing: %+v", c)
	}

	events := s.UpdateControls(keymap.ControlStickyKeys, 0)
	if len(events) != 1 || events[0].Type != EventComponents {
		t.Fatalf("events = %+v", events)
	}
	want := ComponentControls | ComponentModsLatched | ComponentModsEffective
	if events[0].Changed != want {
		t.Fatalf("changed = %#x, want %#x", events[0].Changed, want)
	}
	c := s.Components()
	if c.LatchedMods != 0 || c.LatchedGroup != 0 || c.LockedMods != lockMask {
		t.Fatalf("after disable: %+v", c)
	}
}

// Deterministic-events property (spec §8.1): the same input sequence
// against the same keymap yields an identical event stream.
func TestDeterministicEvents(t *testing.T) {
	km := mustKeymap(t, shiftKeymap)
	defer km.Unref()

	run := func() [][]Event {
		s := New(km)
		defer s.Release()
		var all [][]Event
		for _, in := range []struct {
			kc   uint32
			down bool
		}{
			{50, true}, {1, true}, {1, false}, {50, false},
			{1, true}, {1, false},
		} {
			all = append(all, s.UpdateKey(in.kc, in.down))
		}
		return all
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Fatalf("event stream differs between runs")
	}
}

func TestOutOfRangeKeycodeIsNoOp(t *testing.T) {
	km := mustKeymap(t, shiftKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	if events := s.UpdateKey(9999, true); events != nil {
		t.Fatalf("events = %+v", events)
	}
	if events := s.UpdateKey(2, true); events != nil { // inside range, unbound
		t.Fatalf("events = %+v", events)
	}
}

func TestUpdateMask(t *testing.T) {
	km := mustKeymap(t, groupLatchKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	events := s.UpdateMask(shiftMask, 0, lockMask, 0, 0, 1)
	if len(events) != 1 {
		t.Fatalf("events = %+v", events)
	}
	c := s.Components()
	if c.BaseMods != shiftMask || c.LockedMods != lockMask ||
		c.EffectiveMods != shiftMask|lockMask {
		t.Fatalf("mods = %+v", c)
	}
	if c.LockedGroup != 1 || c.EffectiveGroup != 1 {
		t.Fatalf("groups = %+v", c)
	}
}

func TestSerializeAndIsActive(t *testing.T) {
	km := mustKeymap(t, shiftKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(50, true)
	if got := s.SerializeMods(WhichDepressed); got != shiftMask {
		t.Fatalf("depressed = %#x", got)
	}
	if got := s.SerializeMods(WhichLatched | WhichLocked); got != 0 {
		t.Fatalf("latched|locked = %#x", got)
	}
	if !s.ModNameIsActive("Shift", WhichEffective) {
		t.Fatalf("Shift should be effective-active")
	}
	if s.ModNameIsActive("Control", WhichEffective) {
		t.Fatalf("Control should be inactive")
	}
	if !s.LayoutIsActive(0, WhichEffective) {
		t.Fatalf("layout 0 should be active")
	}
}

// Modifier-canonicalization property (spec §8.1): two virtual
// modifiers with the same real mapping agree on is-active for every
// state.
func TestVModCanonicalization(t *testing.T) {
	km := mustKeymap(t, `xkb_keymap {
		xkb_keycodes { <LALT> = 64; };
		xkb_types { virtual_modifiers Alt = Mod1, Meta = Mod1; };
		xkb_symbols {
			key <LALT> { [ Alt_L ], actions[Group1] = [ SetMods(modifiers=Mod1) ] };
		};
	};`)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	s.UpdateKey(64, true)
	if !s.ModNameIsActive("Alt", WhichEffective) || !s.ModNameIsActive("Meta", WhichEffective) {
		t.Fatalf("Alt/Meta disagree: alt=%v meta=%v",
			s.ModNameIsActive("Alt", WhichEffective),
			s.ModNameIsActive("Meta", WhichEffective))
	}
	s.UpdateKey(64, false)
	if s.ModNameIsActive("Alt", WhichEffective) || s.ModNameIsActive("Meta", WhichEffective) {
		t.Fatalf("Alt/Meta should both be inactive")
	}
}

func TestConsumedMods(t *testing.T) {
	km := mustKeymap(t, shiftKeymap)
	defer km.Unref()
	s := New(km)
	defer s.Release()

	// AE01 is ALPHABETIC: Shift and Lock select levels.
	got := s.ConsumedMods(1, ConsumedModeXKB)
	if got != shiftMask|lockMask {
		t.Fatalf("XKB consumed = %#x", got)
	}
}
