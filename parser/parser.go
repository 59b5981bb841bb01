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

// Package parser builds an ast.KeymapFile out of the xkbtext token
// stream (spec §4.2). Syntax errors abort parsing with a single error
// kind and location; the parser holds no resources that would leak on
// a rejected input (it allocates nothing outside the returned tree and
// Go's GC, so there is no explicit free path to get wrong).
package parser

import (
	"fmt"

	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/xkbtext"
)

// Error is the single syntax-error kind the parser returns (spec §7).
type Error struct {
	Line, Column int
	Msg          string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parse scans and parses a complete keymap source buffer (either a
// wrapping `xkb_keymap { ... };` or a single bare component section)
// into an ast.KeymapFile.
func Parse(src []byte, fileName string) (*ast.KeymapFile, error) {
	sc, err := xkbtext.NewScanner(src)
	if err != nil {
		return nil, err
	}
	p := &parser{sc: sc, file: fileName}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

type parser struct {
	sc   *xkbtext.Scanner
	tok  xkbtext.Token
	file string
}

func (p *parser) advance() error {
	tok, err := p.sc.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) pos() ast.Pos {
	return ast.Pos{Line: p.tok.Line, Column: p.tok.Column, File: p.file}
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &Error{Line: p.tok.Line, Column: p.tok.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isIdent(kw string) bool {
	return p.tok.Kind == xkbtext.Ident && xkbtext.FoldKeyword(p.tok.Text) == kw
}

func (p *parser) isOp(s string) bool {
	return p.tok.Kind == xkbtext.Op && p.tok.Text == s
}

func (p *parser) expectOp(s string) error {
	if !p.isOp(s) {
		return p.errf("expected %q, found %q", s, p.tok.Text)
	}
	return p.advance()
}

func (p *parser) expectKw(kw string) error {
	if !p.isIdent(kw) {
		return p.errf("expected keyword %q, found %q", kw, p.tok.Text)
	}
	return p.advance()
}

// parseFile parses the top level: either `xkb_keymap "name" { map* };`
// or a sequence of bare section MapFiles (used when compiling a single
// component file directly, which the linker also supports).
func (p *parser) parseFile() (*ast.KeymapFile, error) {
	file := &ast.KeymapFile{}
	if p.isIdent("xkb_keymap") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind == xkbtext.String {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expectOp("{"); err != nil {
			return nil, err
		}
		for !p.isOp("}") {
			if p.tok.Kind == xkbtext.EOF {
				return nil, p.errf("unexpected EOF inside xkb_keymap")
			}
			m, err := p.parseMapFile()
			if err != nil {
				return nil, err
			}
			file.Maps = append(file.Maps, m)
		}
		if err := p.expectOp("}"); err != nil {
			return nil, err
		}
		if p.isOp(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		return file, nil
	}

	for p.tok.Kind != xkbtext.EOF {
		m, err := p.parseMapFile()
		if err != nil {
			return nil, err
		}
		file.Maps = append(file.Maps, m)
	}
	return file, nil
}

var sectionKeywords = map[string]ast.SectionKind{
	"xkb_keycodes": ast.SectionKeycodes,
	"xkb_types":    ast.SectionTypes,
	"xkb_compat":   ast.SectionCompat,
	"xkb_symbols":  ast.SectionSymbols,
	"xkb_geometry": ast.SectionGeometry,
}

func (p *parser) parseMapFile() (*ast.MapFile, error) {
	pos := p.pos()
	var flags ast.MapFlags
	for {
		switch {
		case p.isIdent("default"):
			flags |= ast.FlagDefault
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.isIdent("partial"):
			flags |= ast.FlagPartial
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.isIdent("hidden"):
			flags |= ast.FlagHidden
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.isIdent("alternate"):
			flags |= ast.FlagAlternate
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			goto done
		}
	}
done:
	kind, ok := sectionKeywords[xkbtext.FoldKeyword(p.tok.Text)]
	if p.tok.Kind != xkbtext.Ident || !ok {
		return nil, p.errf("expected section keyword, found %q", p.tok.Text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	name := ""
	if p.tok.Kind == xkbtext.String {
		name = p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	mf := &ast.MapFile{Kind: kind, Name: name, Flags: flags, Pos: pos}
	if err := p.expectOp("{"); err != nil {
		return nil, err
	}
	for !p.isOp("}") {
		if p.tok.Kind == xkbtext.EOF {
			return nil, p.errf("unexpected EOF inside %s", kind)
		}
		stmt, err := p.parseStatement(kind)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			mf.Statements = append(mf.Statements, stmt)
		}
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return mf, nil
}

// parseMergePrefix consumes a leading override/augment/replace keyword
// and returns the merge mode it implies (MergeDefault if none); a
// following `include` is left for the caller.
func (p *parser) parseMergePrefix() (ast.MergeMode, error) {
	switch {
	case p.isIdent("override"):
		return ast.MergeOverride, p.advance()
	case p.isIdent("augment"):
		return ast.MergeAugment, p.advance()
	case p.isIdent("replace"):
		return ast.MergeReplace, p.advance()
	}
	return ast.MergeDefault, nil
}

func (p *parser) parseStatement(section ast.SectionKind) (ast.Statement, error) {
	merge, err := p.parseMergePrefix()
	if err != nil {
		return nil, err
	}
	pos := p.pos()

	if p.isIdent("include") {
		return p.parseInclude(merge, pos)
	}

	switch section {
	case ast.SectionKeycodes:
		return p.parseKeycodeStatement(merge, pos)
	case ast.SectionTypes:
		return p.parseTypeStatement(merge, pos)
	case ast.SectionCompat:
		return p.parseCompatStatement(merge, pos)
	case ast.SectionSymbols:
		return p.parseSymbolsStatement(merge, pos)
	case ast.SectionGeometry:
		return p.skipGeometryStatement()
	}
	return nil, p.errf("unhandled section %v", section)
}

// skipGeometryStatement discards a statement inside xkb_geometry, which
// the parser recognizes syntactically (balanced braces/semicolons) but
// never interprets (spec §4.2: "optionally xkb_geometry, parsed but
// discarded").
func (p *parser) skipGeometryStatement() (ast.Statement, error) {
	depth := 0
	for {
		switch {
		case p.isOp("{"):
			depth++
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.isOp("}"):
			if depth == 0 {
				return nil, nil
			}
			depth--
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.isOp(";"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if depth == 0 {
				return nil, nil
			}
		case p.tok.Kind == xkbtext.EOF:
			return nil, p.errf("unexpected EOF in xkb_geometry")
		default:
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
}

func (p *parser) parseInclude(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil { // 'include'
		return nil, err
	}
	if p.tok.Kind != xkbtext.String {
		return nil, p.errf("expected include spec string, found %q", p.tok.Text)
	}
	spec := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	terms, err := parseIncludeSpec(spec)
	if err != nil {
		return nil, &Error{Line: pos.Line, Column: pos.Column, Msg: err.Error()}
	}
	return &ast.IncludeStmt{Base: newBase(merge, pos), Terms: terms}, nil
}

func newBase(merge ast.MergeMode, pos ast.Pos) ast.Base {
	return ast.Base{Merge: merge, Pos: pos}
}
