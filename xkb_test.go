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

package xkb

import (
	"errors"
	"testing"

	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/linker"
)

const fullKeymap = `xkb_keymap {
	xkb_keycodes {
		<LFSH> = 50;
		<CAPS> = 66;
		<AD01> = 24;
		<SWCH> = 20;
		alias <Q> = <AD01>;
	};
	xkb_types {
		virtual_modifiers LevelThree = Mod5;
		type "EXTRA" {
			modifiers = Shift+LevelThree;
			map[Shift] = Level2;
			map[LevelThree] = Level3;
			level_name[Level1] = "Base";
		};
	};
	xkb_compat {
		interpret Shift_L+AnyOfOrNone(All) { action = SetMods(modifiers=Shift); };
		interpret Caps_Lock+AnyOfOrNone(All) { action = LockMods(modifiers=Lock); };
		indicator "Caps Lock" { whichModState = Locked; modifiers = Lock; };
		modifier_map Shift { <LFSH> };
	};
	xkb_symbols {
		name[Group1] = "Basic";
		key <LFSH> { [ Shift_L ] };
		key <CAPS> { [ Caps_Lock ] };
		key <AD01> { [ q, Q ] };
		key <SWCH> { [ ISO_Next_Group ], actions[Group1] = [ LockGroup(group=+1) ] };
	};
};`

func TestRoundTrip(t *testing.T) {
	// Spec §8.1: parse ∘ serialize ∘ parse = parse, and serialization
	// of the same keymap is byte-equal on two invocations.
	km1, _, err := NewKeymapFromString(fullKeymap, Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	defer km1.Unref()

	out1 := WriteKeymap(km1)
	if out2 := WriteKeymap(km1); out2 != out1 {
		t.Fatalf("serialization not deterministic:\n%s\n----\n%s", out1, out2)
	}

	km2, _, err := NewKeymapFromString(out1, Options{})
	if err != nil {
		t.Fatalf("re-parse of serialized keymap: %v\n%s", err, out1)
	}
	defer km2.Unref()

	out3 := WriteKeymap(km2)
	if out3 != out1 {
		t.Fatalf("round trip diverged:\n%s\n----\n%s", out1, out3)
	}
}

func TestFacadeQueries(t *testing.T) {
	km, _, err := NewKeymapFromString(fullKeymap, Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	defer km.Unref()

	if key, ok := km.KeyByName("Q"); !ok || key.Keycode != 24 {
		t.Fatalf("alias lookup failed")
	}
	if _, ok := km.IndicatorByName("Caps Lock"); !ok {
		t.Fatalf("indicator missing")
	}
	if km.GroupName(0) != "Basic" {
		t.Fatalf("group name = %q", km.GroupName(0))
	}
}

func TestIncludeResolution(t *testing.T) {
	sources := map[string]string{
		"base-codes": `xkb_keycodes "basic" { <AE01> = 10; };`,
		"base-syms":  `xkb_symbols "basic" { key <AE01> { [ a ] }; };`,
	}
	resolve := func(name string, kind ast.SectionKind) ([]byte, string, bool) {
		src, ok := sources[name]
		return []byte(src), name, ok
	}
	km, _, err := NewKeymapFromString(`xkb_keymap {
		xkb_keycodes { include "base-codes"; };
		xkb_symbols { include "base-syms"; };
	};`, Options{Resolve: resolve})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	defer km.Unref()
	if _, ok := km.KeyByName("AE01"); !ok {
		t.Fatalf("included key missing")
	}
}

func TestRecursiveIncludeRejected(t *testing.T) {
	resolve := func(name string, kind ast.SectionKind) ([]byte, string, bool) {
		return []byte(`xkb_keycodes "loop" { include "self"; };`), "self", true
	}
	_, _, err := NewKeymapFromString(`xkb_keymap {
		xkb_keycodes { include "self"; };
	};`, Options{Resolve: resolve})
	if !errors.Is(err, linker.ErrRecursiveInclude) {
		t.Fatalf("err = %v, want ErrRecursiveInclude", err)
	}
}

func TestComponentsEntry(t *testing.T) {
	sources := map[string]string{
		"pc":    `xkb_keycodes "pc" { <AE01> = 10; };`,
		"types": `xkb_types "t" { };`,
		"cmpt":  `xkb_compat "c" { };`,
		"us":    `xkb_symbols "us" { key <AE01> { [ a ] }; };`,
	}
	resolve := func(name string, kind ast.SectionKind) ([]byte, string, bool) {
		src, ok := sources[name]
		return []byte(src), name, ok
	}
	km, _, err := NewKeymapFromComponents("pc", "types", "cmpt", "us", Options{Resolve: resolve})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	defer km.Unref()
	st := NewState(km)
	defer st.Release()
	if got := st.OneSym(10); got != 0x61 {
		t.Fatalf("OneSym = %#x", got)
	}
}
