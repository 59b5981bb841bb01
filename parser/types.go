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
	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/xkbtext"
)

// parseTypeStatement parses one statement inside xkb_types:
//
//	virtual_modifiers Alt, Meta;
//	type "NAME" { modifiers = ...; map[...] = N; preserve[...] = ...; level_name[N] = "..."; };
func (p *parser) parseTypeStatement(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if p.isIdent("virtual_modifiers") {
		return p.parseVModsDef(merge, pos)
	}
	if !p.isIdent("type") {
		return nil, p.errf("expected 'type' or 'virtual_modifiers', found %q", p.tok.Text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != xkbtext.String {
		return nil, p.errf("expected type name string, found %q", p.tok.Text)
	}
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	td := &ast.TypeDef{Base: newBase(merge, pos), Name: name}
	if err := p.expectOp("{"); err != nil {
		return nil, err
	}
	for !p.isOp("}") {
		if p.tok.Kind == xkbtext.EOF {
			return nil, p.errf("unexpected EOF in type %q", name)
		}
		if err := p.parseTypeField(td); err != nil {
			return nil, err
		}
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return td, nil
}

func (p *parser) parseVModsDef(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var names []string
	bindings := map[string]*ast.Expr{}
	for {
		if p.tok.Kind != xkbtext.Ident {
			return nil, p.errf("expected virtual modifier name, found %q", p.tok.Text)
		}
		name := p.tok.Text
		names = append(names, name)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isOp("=") {
			// `virtual_modifiers NumLock = Mod2;` pre-binding form.
			if err := p.advance(); err != nil {
				return nil, err
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			bindings[name] = e
		}
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return &ast.VModsDef{Base: newBase(merge, pos), Names: names, Bindings: bindings}, nil
}

func (p *parser) parseTypeField(td *ast.TypeDef) error {
	if p.isIdent("modifiers") {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		td.Mods = e
		return p.expectOp(";")
	}
	if p.isIdent("map") {
		if err := p.advance(); err != nil {
			return err
		}
		idx, err := p.parseIndexExpr()
		if err != nil {
			return err
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		if p.tok.Kind != xkbtext.Ident {
			return p.errf("expected level name after map[...] =, found %q", p.tok.Text)
		}
		level, err := parseLevelName(p.tok.Text)
		if err != nil {
			return p.errf("%v", err)
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return err
		}
		td.Maps = append(td.Maps, ast.TypeMapEntry{Mods: idx, Level: level, Pos: pos})
		return p.expectOp(";")
	}
	if p.isIdent("preserve") {
		if err := p.advance(); err != nil {
			return err
		}
		idx, err := p.parseIndexExpr()
		if err != nil {
			return err
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		pres, err := p.parseExpr()
		if err != nil {
			return err
		}
		td.Preserve = append(td.Preserve, ast.PreserveEntry{Mods: idx, Preserve: pres})
		return p.expectOp(";")
	}
	if p.isIdent("level_name") {
		if err := p.advance(); err != nil {
			return err
		}
		idx, err := p.parseIndexExpr()
		if err != nil {
			return err
		}
		var level int
		if idx.Kind == ast.ExprIdent {
			l, err := parseLevelName(idx.Ident)
			if err != nil {
				return p.errf("%v", err)
			}
			level = l
		} else {
			l, ok := exprAsIntIndex(idx)
			if !ok {
				return p.errf("expected integer level index")
			}
			level = l
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		if p.tok.Kind != xkbtext.String {
			return p.errf("expected level name string, found %q", p.tok.Text)
		}
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return err
		}
		td.Levels = append(td.Levels, ast.LevelNameEntry{Level: level, Name: name})
		return p.expectOp(";")
	}
	return p.errf("unexpected field %q in type %q", p.tok.Text, td.Name)
}

// parseLevelName parses the "LevelN" form used as the value of a
// `map[...] = ...;` entry, returning a zero-based level index.
func parseLevelName(text string) (int, error) {
	folded := xkbtext.FoldKeyword(text)
	const prefix = "level"
	if len(folded) > len(prefix) && folded[:len(prefix)] == prefix {
		n := 0
		any := false
		for i := len(prefix); i < len(text); i++ {
			c := text[i]
			if c == '_' {
				continue
			}
			if c < '0' || c > '9' {
				return 0, &Error{Msg: "malformed level name " + text}
			}
			n = n*10 + int(c-'0')
			any = true
		}
		if any && n >= 1 {
			return n - 1, nil
		}
	}
	return 0, &Error{Msg: "expected LevelN, found " + text}
}
