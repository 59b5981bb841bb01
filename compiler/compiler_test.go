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
	"errors"
	"testing"

	"github.com/xkbgo/xkbcore/keymap"
	"github.com/xkbgo/xkbcore/keysym"
	"github.com/xkbgo/xkbcore/linker"
	"github.com/xkbgo/xkbcore/parser"
)

func compile(t *testing.T, src string, opts Options) (*keymap.Keymap, []Diagnostic) {
	t.Helper()
	km, diags, err := tryCompile(src, opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return km, diags
}

func tryCompile(src string, opts Options) (*keymap.Keymap, []Diagnostic, error) {
	f, err := parser.Parse([]byte(src), "test")
	if err != nil {
		return nil, nil, err
	}
	linked, err := linker.Link(f, linker.Options{})
	if err != nil {
		return nil, nil, err
	}
	return Compile(linked, opts)
}

func TestCompileKeycodes(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <AE01> = 10; <AE02> = 11; alias <AB01> = <AE01>; };
		xkb_symbols { key <AE01> { [ a ] }; };
	};`, Options{})
	defer km.Unref()

	if km.MinKeycode != 10 || km.MaxKeycode != 11 {
		t.Fatalf("bounds = [%d, %d]", km.MinKeycode, km.MaxKeycode)
	}
	key, ok := km.KeyByName("AB01")
	if !ok || key.Keycode != 10 {
		t.Fatalf("alias resolution failed: %+v %v", key, ok)
	}
}

func TestCompileAliasBeforeTarget(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { alias <AB01> = <AE01>; <AE01> = 10; };
	};`, Options{})
	defer km.Unref()
	if key, ok := km.KeyByName("AB01"); !ok || key.Keycode != 10 {
		t.Fatalf("alias predating target did not resolve")
	}
}

func TestCompileTypeMasks(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <AE01> = 10; };
		xkb_types {
			virtual_modifiers LevelThree = Mod5;
			type "EIGHT_LEVEL" {
				modifiers = Shift+LevelThree;
				map[Shift] = Level2;
				map[LevelThree] = Level3;
				map[Shift+LevelThree] = Level4;
				level_name[Level1] = "Base";
			};
		};
	};`, Options{})
	defer km.Unref()

	ti, ok := km.TypeByName("EIGHT_LEVEL")
	if !ok {
		t.Fatalf("type not found")
	}
	typ := km.Types[ti]
	if typ.NumLevels != 4 {
		t.Fatalf("NumLevels = %d", typ.NumLevels)
	}
	// Shift is bit 0, Mod5 bit 7; LevelThree resolves to Mod5 and its
	// own virtual bit stays set (canonical folding, spec §4.4.6).
	vi, _ := km.VModByName("LevelThree")
	vbit := keymap.ModMask(1) << uint(keymap.NumRealMods+vi)
	wantEff := keymap.ModMask(1) | keymap.ModMask(0x80) | vbit
	if typ.EffMask != wantEff {
		t.Fatalf("EffMask = %#x, want %#x", typ.EffMask, wantEff)
	}
	if typ.Entries[1].Mask != keymap.ModMask(0x80)|vbit {
		t.Fatalf("LevelThree entry mask = %#x", typ.Entries[1].Mask)
	}
}

func TestCompileUnboundVModEntryInactive(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <AE01> = 10; };
		xkb_types {
			virtual_modifiers Dangling;
			type "T" { modifiers = Shift+Dangling; map[Dangling] = Level2; };
		};
	};`, Options{})
	defer km.Unref()

	ti, _ := km.TypeByName("T")
	if km.Types[ti].Entries[0].Active {
		t.Fatalf("entry with unbound vmods should be inactive (spec §4.4.2)")
	}
}

func TestCompileInterpretAttachesAction(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <LFSH> = 50; };
		xkb_compat {
			interpret Shift_L+AnyOfOrNone(All) { action = SetMods(modifiers=Shift); };
		};
		xkb_symbols { key <LFSH> { [ Shift_L ] }; };
	};`, Options{})
	defer km.Unref()

	key, _ := km.KeyByName("LFSH")
	if key.Explicit {
		t.Fatalf("interpret-synthesized actions must not set the explicit flag")
	}
	a := key.Groups[0].Actions[0]
	if a.Kind != keymap.ActionSetMods || a.Mods != 1 {
		t.Fatalf("action = %+v", a)
	}
}

func TestCompileInterpretPriority(t *testing.T) {
	// The concrete-keysym interpret must beat the Any wildcard even
	// though it is declared second.
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <LFSH> = 50; };
		xkb_compat {
			interpret Any+AnyOfOrNone(All) { action = LockMods(modifiers=Lock); };
			interpret Shift_L+AnyOfOrNone(All) { action = SetMods(modifiers=Shift); };
		};
		xkb_symbols { key <LFSH> { [ Shift_L ] }; };
	};`, Options{})
	defer km.Unref()

	key, _ := km.KeyByName("LFSH")
	if key.Groups[0].Actions[0].Kind != keymap.ActionSetMods {
		t.Fatalf("wildcard outranked concrete interpret: %+v", key.Groups[0].Actions[0])
	}
}

func TestCompileModMapBindsVMod(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <LALT> = 64; };
		xkb_compat {
			virtual_modifiers Alt;
			interpret Alt_L+AnyOfOrNone(All) {
				virtualModifier = Alt;
				action = SetMods(modifiers=modMapMods);
			};
			modifier_map Mod1 { <LALT> };
		};
		xkb_symbols { key <LALT> { [ Alt_L ] }; };
	};`, Options{})
	defer km.Unref()

	vi, ok := km.VModByName("Alt")
	if !ok {
		t.Fatalf("Alt vmod missing")
	}
	if km.VMods[vi].Real != keymap.ModMask(1)<<3 { // Mod1
		t.Fatalf("Alt resolved to %#x", km.VMods[vi].Real)
	}
	key, _ := km.KeyByName("LALT")
	if a := key.Groups[0].Actions[0]; a.Mods&(keymap.ModMask(1)<<3) == 0 {
		t.Fatalf("modMapMods did not instantiate to Mod1: %+v", a)
	}
}

func TestCompileAutomaticTypes(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <AE01> = 10; <AD01> = 24; <KP7> = 79; };
		xkb_symbols {
			key <AE01> { [ 1, exclam ] };
			key <AD01> { [ a, A ] };
			key <KP7>  { [ KP_7, KP_Home ] };
		};
	};`, Options{})
	defer km.Unref()

	wantType := func(name, typeName string) {
		t.Helper()
		key, _ := km.KeyByName(name)
		got := km.Types[key.Groups[0].Type].Name
		if got != typeName {
			t.Fatalf("key %s inferred type %s, want %s", name, got, typeName)
		}
	}
	wantType("AD01", keymap.TypeAlphabetic)
	wantType("KP7", keymap.TypeKeypad)
}

func TestCompileMissingTypeLenient(t *testing.T) {
	km, diags := compile(t, `xkb_keymap {
		xkb_keycodes { <AE01> = 10; };
		xkb_symbols { key <AE01> { type = "NOSUCH", [ a ] }; };
	};`, Options{FormatVersion: 1, Lenient: true})
	defer km.Unref()

	key, _ := km.KeyByName("AE01")
	if km.Types[key.Groups[0].Type].Name != keymap.TypeOneLevel {
		t.Fatalf("missing type did not fall back to ONE_LEVEL")
	}
	if len(diags) == 0 {
		t.Fatalf("lenient fallback must produce a diagnostic (spec §7)")
	}
}

func TestCompileMissingTypeStrict(t *testing.T) {
	_, _, err := tryCompile(`xkb_keymap {
		xkb_keycodes { <AE01> = 10; };
		xkb_symbols { key <AE01> { type = "NOSUCH", [ a ] }; };
	};`, Options{FormatVersion: 1, Lenient: false})
	if !errors.Is(err, ErrUndefinedKeyType) {
		t.Fatalf("err = %v, want ErrUndefinedKeyType", err)
	}
}

func TestCompileGroupNameV1VsV2(t *testing.T) {
	src := `xkb_keymap {
		xkb_keycodes { <AE01> = 10; };
		xkb_symbols { name[Group6] = "Sixth"; key <AE01> { [ a ] }; };
	};`
	if _, _, err := tryCompile(src, Options{FormatVersion: 1, Lenient: true}); !errors.Is(err, ErrUndefinedGroupName) {
		t.Fatalf("v1 err = %v, want ErrUndefinedGroupName", err)
	}
	km, _, err := tryCompile(src, Options{FormatVersion: 2, Lenient: true})
	if err != nil {
		t.Fatalf("v2: %v", err)
	}
	defer km.Unref()
	if km.GroupName(5) != "Sixth" {
		t.Fatalf("v2 group name = %q", km.GroupName(5))
	}
}

func TestCompileKeycodeBeyondMax(t *testing.T) {
	_, _, err := tryCompile(`xkb_keymap {
		xkb_keycodes { <X> = 4294967295; };
	};`, Options{FormatVersion: 1})
	if !errors.Is(err, ErrReferenceBeyondMax) {
		t.Fatalf("err = %v, want ErrReferenceBeyondMax", err)
	}
}

func TestCompileExplicitActions(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <SWCH> = 20; };
		xkb_symbols {
			key <SWCH> { [ ISO_Next_Group ], actions[Group1] = [ LockGroup(group=+1) ] };
		};
	};`, Options{})
	defer km.Unref()

	key, _ := km.KeyByName("SWCH")
	if !key.Explicit {
		t.Fatalf("explicit-actions flag not set")
	}
	a := key.Groups[0].Actions[0]
	if a.Kind != keymap.ActionLockGroup || a.Flags&keymap.FlagGroupAbsolute != 0 || a.GroupDelta != 1 {
		t.Fatalf("action = %+v", a)
	}
}

func TestCompileAbsoluteGroupAction(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <SWCH> = 20; };
		xkb_symbols {
			key <SWCH> { [ ISO_Last_Group ], actions[Group1] = [ SetGroup(group=Group2) ] };
		};
	};`, Options{})
	defer km.Unref()

	a := mustKey(t, km, "SWCH").Groups[0].Actions[0]
	if a.Flags&keymap.FlagGroupAbsolute == 0 || a.GroupAbs != 1 {
		t.Fatalf("Group2 literal must compile to absolute index 1: %+v", a)
	}
}

func mustKey(t *testing.T, km *keymap.Keymap, name string) *keymap.Key {
	t.Helper()
	key, ok := km.KeyByName(name)
	if !ok {
		t.Fatalf("key %s missing", name)
	}
	return key
}

func TestCompileUnknownActionField(t *testing.T) {
	_, _, err := tryCompile(`xkb_keymap {
		xkb_keycodes { <A> = 1; };
		xkb_symbols { key <A> { [ a ], actions[Group1] = [ SetMods(bogus=1) ] }; };
	};`, Options{FormatVersion: 1})
	if err == nil {
		t.Fatalf("unknown action field must be rejected (spec §9)")
	}
}

func TestCompileSymbolPaddingToTypeWidth(t *testing.T) {
	km, _ := compile(t, `xkb_keymap {
		xkb_keycodes { <AE01> = 10; };
		xkb_symbols { key <AE01> { type = "TWO_LEVEL", [ a ] }; };
	};`, Options{})
	defer km.Unref()

	key := mustKey(t, km, "AE01")
	syms := key.Groups[0].Syms
	if len(syms) != 2 || len(syms[1]) != 0 {
		t.Fatalf("level padding wrong: %+v", syms)
	}
	if syms[0][0] != keysym.Keysym(0x61) {
		t.Fatalf("level 0 = %v", syms[0])
	}
}
