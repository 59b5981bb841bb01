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

package linker

import (
	"testing"

	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/parser"
)

func mustParse(t *testing.T, src string) *ast.KeymapFile {
	t.Helper()
	f, err := parser.Parse([]byte(src), "t")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func TestLinkNoIncludes(t *testing.T) {
	f := mustParse(t, `xkb_symbols "x" { key <AE01> { [ a ] }; key <AE02> { [ b ] }; };`)
	out, err := Link(f, Options{})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if out.Symbols == nil || len(out.Symbols.Statements) != 2 {
		t.Fatalf("symbols = %+v", out.Symbols)
	}
}

func TestLinkOverrideWins(t *testing.T) {
	f := mustParse(t, `xkb_symbols "x" { key <AE01> { [ a ] }; override key <AE01> { [ b ] }; };`)
	out, err := Link(f, Options{})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(out.Symbols.Statements) != 1 {
		t.Fatalf("want 1 statement, got %d", len(out.Symbols.Statements))
	}
	kd := out.Symbols.Statements[0].(*ast.KeyDef)
	if kd.Groups[0].Symbols[0] != "b" {
		t.Fatalf("kd = %+v", kd)
	}
}

func TestLinkAugmentKeepsExisting(t *testing.T) {
	f := mustParse(t, `xkb_symbols "x" { key <AE01> { [ a ] }; augment key <AE01> { [ b ] }; };`)
	out, err := Link(f, Options{})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	kd := out.Symbols.Statements[0].(*ast.KeyDef)
	if kd.Groups[0].Symbols[0] != "a" {
		t.Fatalf("kd = %+v", kd)
	}
}

func TestLinkIncludeResolution(t *testing.T) {
	included := []byte(`xkb_symbols "basic" { key <AE01> { [ a ] }; };`)
	resolver := func(name string, kind ast.SectionKind) ([]byte, string, bool) {
		if name == "pc" && kind == ast.SectionSymbols {
			return included, "pc.xkb_symbols", true
		}
		return nil, "", false
	}
	f := mustParse(t, `xkb_symbols "x" { include "pc(basic)"; key <AE02> { [ b ] }; };`)
	out, err := Link(f, Options{Resolve: resolver})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(out.Symbols.Statements) != 2 {
		t.Fatalf("want 2 statements, got %d: %+v", len(out.Symbols.Statements), out.Symbols.Statements)
	}
}

func TestLinkRecursiveIncludeDetected(t *testing.T) {
	var resolver Resolver
	resolver = func(name string, kind ast.SectionKind) ([]byte, string, bool) {
		return []byte(`xkb_symbols "x" { include "self"; };`), "self", true
	}
	f := mustParse(t, `xkb_symbols "x" { include "self"; };`)
	_, err := Link(f, Options{Resolve: resolver})
	if err == nil {
		t.Fatal("expected recursive include error")
	}
}

func TestLinkUnresolvedInclude(t *testing.T) {
	f := mustParse(t, `xkb_symbols "x" { include "missing"; };`)
	_, err := Link(f, Options{})
	if err == nil {
		t.Fatal("expected unresolved include error")
	}
}
