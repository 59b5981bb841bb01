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

// Package xkb glues the keymap compiler pipeline together: scan,
// parse, link, compile, and hand back the immutable keymap plus a
// state-machine constructor. The subpackages do the work; this
// package only wires them, the way the terminal-screen library this
// codebase is modeled on glues its terminfo, encoding, and input
// subpackages behind one front door.
package xkb

import (
	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/compiler"
	"github.com/xkbgo/xkbcore/keymap"
	"github.com/xkbgo/xkbcore/linker"
	"github.com/xkbgo/xkbcore/parser"
	"github.com/xkbgo/xkbcore/xkbstate"
)

// Resolver is re-exported from the linker: the injected include-path
// collaborator (spec §6.3). A nil resolver fails every include.
type Resolver = linker.Resolver

// Options configures keymap construction.
type Options struct {
	// FormatVersion selects serializer/compiler format v1 or v2
	// (default 1).
	FormatVersion int

	// Resolve handles `include` statements; nil rejects all includes.
	Resolve Resolver

	// Strict disables the lenient fallbacks (missing key type →
	// ONE_LEVEL and similar) that are otherwise taken with a
	// diagnostic.
	Strict bool
}

// NewKeymapFromString compiles keymap source text into an immutable
// Keymap (spec §3.5: refcounted, frozen on return). On error no
// keymap is returned; compilation is all-or-nothing (spec §7).
func NewKeymapFromString(src string, opts Options) (*keymap.Keymap, []compiler.Diagnostic, error) {
	return NewKeymapFromBytes([]byte(src), opts)
}

// NewKeymapFromBytes is NewKeymapFromString for a raw byte buffer
// (UTF-8, optional BOM; UTF-16 is rejected by the scanner).
func NewKeymapFromBytes(src []byte, opts Options) (*keymap.Keymap, []compiler.Diagnostic, error) {
	file, err := parser.Parse(src, "(input)")
	if err != nil {
		return nil, nil, err
	}
	return compileFile(file, opts)
}

// NewKeymapFromComponents compiles a resolved KcCGST component set:
// one named source file per section kind, each fetched through the
// resolver (spec §1: the core consumes resolved component file paths).
func NewKeymapFromComponents(keycodes, types, compat, symbols string, opts Options) (*keymap.Keymap, []compiler.Diagnostic, error) {
	if opts.Resolve == nil {
		return nil, nil, linker.ErrUnresolvedInclude
	}
	file := &ast.KeymapFile{}
	for _, c := range []struct {
		name string
		kind ast.SectionKind
	}{
		{keycodes, ast.SectionKeycodes},
		{types, ast.SectionTypes},
		{compat, ast.SectionCompat},
		{symbols, ast.SectionSymbols},
	} {
		if c.name == "" {
			continue
		}
		mf := &ast.MapFile{Kind: c.kind}
		mf.Statements = append(mf.Statements, &ast.IncludeStmt{
			Terms: []ast.IncludeTerm{{File: c.name}},
		})
		file.Maps = append(file.Maps, mf)
	}
	return compileFile(file, opts)
}

func compileFile(file *ast.KeymapFile, opts Options) (*keymap.Keymap, []compiler.Diagnostic, error) {
	linked, err := linker.Link(file, linker.Options{Resolve: opts.Resolve})
	if err != nil {
		return nil, nil, err
	}
	fv := opts.FormatVersion
	if fv == 0 {
		fv = 1
	}
	return compiler.Compile(linked, compiler.Options{
		FormatVersion: fv,
		Lenient:       !opts.Strict,
	})
}

// NewState clones a fresh state machine from km (spec §3.5).
func NewState(km *keymap.Keymap) *xkbstate.State {
	return xkbstate.New(km)
}

// WriteKeymap renders km back to canonical keymap text (spec §4.5).
func WriteKeymap(km *keymap.Keymap) string {
	return km.Serialize()
}
