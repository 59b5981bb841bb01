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

// parseCompatStatement parses one statement inside xkb_compat:
//
//	interpret KEYSYM[+MODS] { ... };
//	indicator "NAME" { ... };
//	modifier_map Shift { <LFSH>, <RTSH> };
//	virtual_modifiers Alt;
func (p *parser) parseCompatStatement(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	switch {
	case p.isIdent("virtual_modifiers"):
		return p.parseVModsDef(merge, pos)
	case p.isIdent("interpret"):
		return p.parseInterpretDef(merge, pos)
	case p.isIdent("indicator"):
		return p.parseIndicatorDef(merge, pos)
	case p.isIdent("modifier_map"):
		return p.parseModMapDef(merge, pos)
	}
	return nil, p.errf("unexpected token %q in xkb_compat", p.tok.Text)
}

func (p *parser) parseInterpretDef(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != xkbtext.Ident {
		return nil, p.errf("expected keysym name or Any, found %q", p.tok.Text)
	}
	keysym := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	id := &ast.InterpretDef{Base: newBase(merge, pos), Keysym: keysym, Match: ast.MatchExactly}
	if p.isOp("+") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		match, explicit, err := p.parseMatchPredicate()
		if err != nil {
			return nil, err
		}
		id.Match = match
		if explicit {
			if err := p.expectOp("("); err != nil {
				return nil, err
			}
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		id.Mods = e
		if explicit {
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectOp("{"); err != nil {
		return nil, err
	}
	for !p.isOp("}") {
		if p.tok.Kind == xkbtext.EOF {
			return nil, p.errf("unexpected EOF in interpret %q", keysym)
		}
		switch {
		case p.isIdent("action"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectOp("="); err != nil {
				return nil, err
			}
			ac, err := p.parseActionExpr()
			if err != nil {
				return nil, err
			}
			id.Action = ac
			if err := p.expectOp(";"); err != nil {
				return nil, err
			}
		case p.isIdent("repeat"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectOp("="); err != nil {
				return nil, err
			}
			v, err := p.parseBoolIdent()
			if err != nil {
				return nil, err
			}
			id.AutoRepeat = &v
			if err := p.expectOp(";"); err != nil {
				return nil, err
			}
		case p.isIdent("virtualmodifier") || p.isIdent("virtualModifier"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectOp("="); err != nil {
				return nil, err
			}
			if p.tok.Kind != xkbtext.Ident {
				return nil, p.errf("expected virtual modifier name, found %q", p.tok.Text)
			}
			id.VMod = p.tok.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectOp(";"); err != nil {
				return nil, err
			}
		default:
			return nil, p.errf("unexpected field %q in interpret %q", p.tok.Text, keysym)
		}
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return id, nil
}

// parseMatchPredicate consumes an optional `Exactly|AllOf|AnyOf|
// AnyOfOrNone|NoneOf` keyword preceding a parenthesized modifier mask
// in an interpret statement. explicit reports whether a keyword (and
// therefore parentheses) was present; when absent, the bare modifier
// expression follows directly and the predicate defaults to AllOf,
// matching the source dialect's `interpret Foo+Shift` shorthand.
func (p *parser) parseMatchPredicate() (pred ast.MatchPredicate, explicit bool, err error) {
	if p.tok.Kind != xkbtext.Ident {
		return 0, false, p.errf("expected match predicate, found %q", p.tok.Text)
	}
	switch xkbtext.FoldKeyword(p.tok.Text) {
	case "exactly":
		pred, explicit = ast.MatchExactly, true
	case "allof":
		pred, explicit = ast.MatchAllOf, true
	case "anyof":
		pred, explicit = ast.MatchAnyOf, true
	case "anyofornone":
		pred, explicit = ast.MatchAnyOfOrNone, true
	case "noneof":
		pred, explicit = ast.MatchNone, true
	default:
		return ast.MatchAllOf, false, nil
	}
	return pred, explicit, p.advance()
}

func (p *parser) parseBoolIdent() (bool, error) {
	if p.tok.Kind != xkbtext.Ident {
		return false, p.errf("expected boolean, found %q", p.tok.Text)
	}
	v := false
	switch xkbtext.FoldKeyword(p.tok.Text) {
	case "true", "yes", "on":
		v = true
	case "false", "no", "off":
		v = false
	default:
		return false, p.errf("expected boolean, found %q", p.tok.Text)
	}
	return v, p.advance()
}

func (p *parser) parseActionExpr() (*ast.ActionExpr, error) {
	pos := p.pos()
	if p.tok.Kind != xkbtext.Ident {
		return nil, p.errf("expected action name, found %q", p.tok.Text)
	}
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	ac := &ast.ActionExpr{Name: name, Pos: pos}
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	for !p.isOp(")") {
		if p.tok.Kind != xkbtext.Ident {
			return nil, p.errf("expected argument name, found %q", p.tok.Text)
		}
		argName := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		var val *ast.Expr
		if p.isOp("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			val = v
		}
		ac.Args = append(ac.Args, ast.ActionArg{Name: argName, Value: val})
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return ac, nil
}

func (p *parser) parseIndicatorDef(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != xkbtext.String {
		return nil, p.errf("expected indicator name string, found %q", p.tok.Text)
	}
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	id := &ast.IndicatorDef{Base: newBase(merge, pos), Name: name, Fields: map[string]*ast.Expr{}}
	if err := p.expectOp("{"); err != nil {
		return nil, err
	}
	for !p.isOp("}") {
		if p.tok.Kind == xkbtext.EOF {
			return nil, p.errf("unexpected EOF in indicator %q", name)
		}
		if p.tok.Kind != xkbtext.Ident {
			return nil, p.errf("expected field name in indicator %q, found %q", name, p.tok.Text)
		}
		field := xkbtext.FoldKeyword(p.tok.Text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		switch field {
		case "whichmodstate", "whichmodifierstate":
			id.WhichMods = e
		case "modifiers":
			id.Mods = e
		case "whichgroupstate":
			id.WhichGroups = e
		case "groups":
			id.Groups = e
		case "controls":
			id.Controls = e
		default:
			id.Fields[field] = e
		}
		if err := p.expectOp(";"); err != nil {
			return nil, err
		}
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return id, nil
}

func (p *parser) parseModMapDef(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != xkbtext.Ident {
		return nil, p.errf("expected modifier name, found %q", p.tok.Text)
	}
	modName := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	mm := &ast.ModMapDef{Base: newBase(merge, pos), Modifier: modName}
	if err := p.expectOp("{"); err != nil {
		return nil, err
	}
	for {
		if p.tok.Kind == xkbtext.KeyName {
			mm.Keys = append(mm.Keys, p.tok.Text)
		} else if p.tok.Kind == xkbtext.Ident {
			mm.Keys = append(mm.Keys, p.tok.Text)
		} else {
			return nil, p.errf("expected key name or keysym, found %q", p.tok.Text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return mm, nil
}
