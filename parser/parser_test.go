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

package parser

import (
	"testing"

	"github.com/xkbgo/xkbcore/ast"
)

const plainAKeymap = `
xkb_keymap {
	xkb_keycodes "test" { <AE01> = 1; };
	xkb_types "test" { };
	xkb_compat "test" { };
	xkb_symbols "test" { key <AE01> { [ a ] }; };
};
`

func TestParseMinimalKeymap(t *testing.T) {
	f, err := Parse([]byte(plainAKeymap), "test.xkb")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Maps) != 4 {
		t.Fatalf("got %d maps, want 4", len(f.Maps))
	}
	if f.Maps[0].Kind != ast.SectionKeycodes {
		t.Fatalf("maps[0].Kind = %v", f.Maps[0].Kind)
	}
	kc, ok := f.Maps[0].Statements[0].(*ast.KeycodeDef)
	if !ok {
		t.Fatalf("statement 0 = %T", f.Maps[0].Statements[0])
	}
	if kc.Name != "AE01" || kc.Keycode != 1 {
		t.Fatalf("kc = %+v", kc)
	}
	kd, ok := f.Maps[3].Statements[0].(*ast.KeyDef)
	if !ok {
		t.Fatalf("symbols statement = %T", f.Maps[3].Statements[0])
	}
	if kd.Name != "AE01" || len(kd.Groups) != 1 || kd.Groups[0].Symbols[0] != "a" {
		t.Fatalf("kd = %+v", kd)
	}
}

func TestParseInclude(t *testing.T) {
	src := `xkb_symbols "x" { include "pc+us:2"; key <AE01> { [ a, A ] }; };`
	f, err := Parse([]byte(src), "test.xkb")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	inc, ok := f.Maps[0].Statements[0].(*ast.IncludeStmt)
	if !ok {
		t.Fatalf("statement 0 = %T", f.Maps[0].Statements[0])
	}
	if len(inc.Terms) != 2 || inc.Terms[0].File != "pc" || inc.Terms[1].File != "us" || inc.Terms[1].Map != "2" {
		t.Fatalf("terms = %+v", inc.Terms)
	}
}

func TestParseMergePrefix(t *testing.T) {
	src := `xkb_symbols "x" { override key <AE01> { [ a ] }; };`
	f, err := Parse([]byte(src), "t")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	kd := f.Maps[0].Statements[0].(*ast.KeyDef)
	if kd.MergeMode() != ast.MergeOverride {
		t.Fatalf("merge = %v", kd.MergeMode())
	}
}

func TestParseType(t *testing.T) {
	src := `xkb_types "x" {
		virtual_modifiers LevelThree;
		type "TWO_LEVEL" {
			modifiers = Shift;
			map[Shift] = Level2;
			level_name[Level1] = "Base";
			level_name[Level2] = "Shift";
		};
	};`
	f, err := Parse([]byte(src), "t")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := f.Maps[0].Statements[0].(*ast.VModsDef); !ok {
		t.Fatalf("statement 0 = %T", f.Maps[0].Statements[0])
	}
	td, ok := f.Maps[0].Statements[1].(*ast.TypeDef)
	if !ok {
		t.Fatalf("statement 1 = %T", f.Maps[0].Statements[1])
	}
	if td.Name != "TWO_LEVEL" || len(td.Maps) != 1 || td.Maps[0].Level != 1 {
		t.Fatalf("td = %+v", td)
	}
	if len(td.Levels) != 2 || td.Levels[1].Name != "Shift" {
		t.Fatalf("levels = %+v", td.Levels)
	}
}

func TestParseInterpretAndAction(t *testing.T) {
	src := `xkb_compat "x" {
		interpret Shift_L+AnyOf(all) {
			action = SetMods(modifiers=Shift,clearLocks);
		};
	};`
	f, err := Parse([]byte(src), "t")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id, ok := f.Maps[0].Statements[0].(*ast.InterpretDef)
	if !ok {
		t.Fatalf("statement 0 = %T", f.Maps[0].Statements[0])
	}
	if id.Keysym != "Shift_L" || id.Match != ast.MatchAnyOf {
		t.Fatalf("id = %+v", id)
	}
	if id.Action == nil || id.Action.Name != "SetMods" || len(id.Action.Args) != 2 {
		t.Fatalf("action = %+v", id.Action)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte(`xkb_symbols "x" { key <AE01 [ a ] }; };`), "t")
	if err == nil {
		t.Fatal("expected syntax error")
	}
}
