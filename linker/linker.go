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

// Package linker resolves `include` statements and merges overlapping
// declarations using each statement's merge mode (spec §4.3). It sits
// between the parser and the compiler: its output is one merged
// ast.MapFile per section category, with every include expanded away.
package linker

import (
	"errors"
	"fmt"

	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/parser"
)

// ErrRecursiveInclude is returned when the include stack detects a
// self-include or a cycle (spec §7, RecursiveInclude).
var ErrRecursiveInclude = errors.New("linker: recursive include")

// ErrUnresolvedInclude is returned when the Resolver cannot find a
// named include term (spec §7, UnresolvedInclude).
var ErrUnresolvedInclude = errors.New("linker: unresolved include")

// Resolver is the injected include-path collaborator (spec §6.3): given
// a file name and the section kind of the including MapFile, it returns
// the component's source bytes and a canonical path used for recursion
// detection and diagnostics.
type Resolver func(fileName string, kind ast.SectionKind) (src []byte, canonicalPath string, ok bool)

// Options configures a Link call.
type Options struct {
	Resolve Resolver
}

// Linked is the merged result: exactly one MapFile per section kind
// that was present anywhere in the input (geometry sections are
// dropped, per spec §4.2/§4.3).
type Linked struct {
	Keycodes *ast.MapFile
	Types    *ast.MapFile
	Compat   *ast.MapFile
	Symbols  *ast.MapFile
}

type linker struct {
	opts  Options
	stack []string // canonical paths of includes currently open
}

// Link expands and merges every MapFile in file.
func Link(file *ast.KeymapFile, opts Options) (*Linked, error) {
	l := &linker{opts: opts}
	out := &Linked{}
	for _, mf := range file.Maps {
		merged, err := l.linkMapFile(mf)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			continue
		}
		if err := attach(out, merged); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func attach(out *Linked, mf *ast.MapFile) error {
	switch mf.Kind {
	case ast.SectionKeycodes:
		out.Keycodes = mergeSection(out.Keycodes, mf)
	case ast.SectionTypes:
		out.Types = mergeSection(out.Types, mf)
	case ast.SectionCompat:
		out.Compat = mergeSection(out.Compat, mf)
	case ast.SectionSymbols:
		out.Symbols = mergeSection(out.Symbols, mf)
	case ast.SectionGeometry:
		// discarded
	default:
		return fmt.Errorf("linker: unknown section kind %v", mf.Kind)
	}
	return nil
}

// mergeSection combines mf into the running accumulation for its
// section kind (prev may be nil on first sight).
func mergeSection(prev, mf *ast.MapFile) *ast.MapFile {
	if prev == nil {
		cp := *mf
		cp.Statements = append([]ast.Statement(nil), mf.Statements...)
		return mergeEntities(&cp)
	}
	combined := append(append([]ast.Statement(nil), prev.Statements...), mf.Statements...)
	prev.Statements = combined
	return mergeEntities(prev)
}

// linkMapFile expands the includes inside a single MapFile and returns
// the fully-merged result for that one file's section.
func (l *linker) linkMapFile(mf *ast.MapFile) (*ast.MapFile, error) {
	out := &ast.MapFile{Kind: mf.Kind, Name: mf.Name, Flags: mf.Flags, Pos: mf.Pos}
	for _, stmt := range mf.Statements {
		inc, ok := stmt.(*ast.IncludeStmt)
		if !ok {
			out.Statements = append(out.Statements, stmt)
			continue
		}
		expanded, err := l.expandInclude(mf.Kind, inc)
		if err != nil {
			return nil, err
		}
		out.Statements = mergeStatementSets(out.Statements, expanded, inc)
	}
	return mergeEntities(out), nil
}

// expandInclude resolves and recursively links every term of an
// include spec, in order, applying each term's own merge mode when
// folding it into the ones before it within the same include spec.
func (l *linker) expandInclude(kind ast.SectionKind, inc *ast.IncludeStmt) ([]ast.Statement, error) {
	var acc []ast.Statement
	for _, term := range inc.Terms {
		if l.opts.Resolve == nil {
			return nil, fmt.Errorf("%w: %s (no resolver configured)", ErrUnresolvedInclude, term.File)
		}
		src, canonical, ok := l.opts.Resolve(term.File, kind)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedInclude, term.File)
		}
		for _, open := range l.stack {
			if open == canonical {
				return nil, fmt.Errorf("%w: %s", ErrRecursiveInclude, canonical)
			}
		}
		l.stack = append(l.stack, canonical)
		termStmts, err := l.linkIncludeTerm(kind, src, term.Map)
		l.stack = l.stack[:len(l.stack)-1]
		if err != nil {
			return nil, err
		}
		acc = mergeStatementSets(acc, termStmts, &ast.IncludeStmt{Terms: []ast.IncludeTerm{term}})
	}
	return acc, nil
}

func (l *linker) linkIncludeTerm(kind ast.SectionKind, src []byte, mapName string) ([]ast.Statement, error) {
	kf, err := parser.Parse(src, mapName)
	if err != nil {
		return nil, err
	}
	var all []ast.Statement
	for _, mf := range kf.Maps {
		if mf.Kind != kind {
			continue
		}
		if mapName != "" && mf.Name != mapName {
			continue
		}
		linked, err := l.linkMapFile(mf)
		if err != nil {
			return nil, err
		}
		all = append(all, linked.Statements...)
	}
	return all, nil
}

// mergeStatementSets folds `incoming` (the statements contributed by
// one include term) into `base` using the merge mode recorded on the
// include statement that produced them (spec §4.3 table): DEFAULT/
// OVERRIDE let the new value win on conflict, AUGMENT keeps the
// existing value, REPLACE discards prior content for the conflicting
// entity before inserting the new one. Statements with no entity key
// (directives like VModsDef, KeyTypeAssign) are simply appended.
func mergeStatementSets(base, incoming []ast.Statement, inc *ast.IncludeStmt) []ast.Statement {
	merge := ast.MergeDefault
	if len(inc.Terms) > 0 {
		merge = inc.Terms[0].Merge
	}
	for _, stmt := range incoming {
		key := entityKey(stmt)
		if key == "" {
			base = append(base, stmt)
			continue
		}
		idx := findEntity(base, key)
		switch merge {
		case ast.MergeAugment:
			if idx < 0 {
				base = append(base, stmt)
			}
		case ast.MergeReplace:
			if idx >= 0 {
				base = append(base[:idx], base[idx+1:]...)
			}
			base = append(base, stmt)
		default: // MergeDefault, MergeOverride
			if idx >= 0 {
				base = append(base[:idx], base[idx+1:]...)
			}
			base = append(base, stmt)
		}
	}
	return base
}

// mergeEntities applies each statement's own merge-mode prefix
// (independent of any enclosing include) within a single flattened
// statement list, producing the final per-entity-deduplicated set.
func mergeEntities(mf *ast.MapFile) *ast.MapFile {
	var out []ast.Statement
	for _, stmt := range mf.Statements {
		key := entityKey(stmt)
		if key == "" {
			out = append(out, stmt)
			continue
		}
		idx := findEntity(out, key)
		switch stmt.MergeMode() {
		case ast.MergeAugment:
			if idx < 0 {
				out = append(out, stmt)
			}
		case ast.MergeReplace:
			if idx >= 0 {
				out = append(out[:idx], out[idx+1:]...)
			}
			out = append(out, stmt)
		default:
			if idx >= 0 {
				out = append(out[:idx], out[idx+1:]...)
			}
			out = append(out, stmt)
		}
	}
	mf.Statements = out
	return mf
}

func findEntity(stmts []ast.Statement, key string) int {
	for i, s := range stmts {
		if entityKey(s) == key {
			return i
		}
	}
	return -1
}

// entityKey returns the per-statement merge-grain key (spec §4.3:
// "per key name, per key-type name, per interpret predicate, per
// indicator slot, per alias"), or "" for directive-shaped statements
// that are never merge-deduplicated.
func entityKey(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.KeycodeDef:
		return "keycode:" + s.Name
	case *ast.AliasDef:
		return "alias:" + s.Alias
	case *ast.IndicatorKeycodeDef:
		return fmt.Sprintf("led-idx:%d", s.Index)
	case *ast.TypeDef:
		return "type:" + s.Name
	case *ast.InterpretDef:
		return fmt.Sprintf("interp:%s:%d:%s", s.Keysym, s.Match, exprKey(s.Mods))
	case *ast.IndicatorDef:
		return "indicator:" + s.Name
	case *ast.ModMapDef:
		return "modmap:" + s.Modifier
	case *ast.KeyDef:
		return "key:" + s.Name
	case *ast.GroupNameDef:
		return fmt.Sprintf("groupname:%d", s.Group)
	}
	return ""
}

func exprKey(e *ast.Expr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ast.ExprIdent:
		return e.Ident
	case ast.ExprInt:
		return fmt.Sprintf("%d", e.Int)
	case ast.ExprSum, ast.ExprUnion:
		return exprKey(e.Lhs) + "+" + exprKey(e.Rhs)
	case ast.ExprNot:
		return "!" + exprKey(e.Sub)
	case ast.ExprNeg:
		return "-" + exprKey(e.Sub)
	case ast.ExprGroup:
		return "(" + exprKey(e.Sub) + ")"
	}
	return ""
}
