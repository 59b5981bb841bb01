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

// parseExpr parses a generic right-hand-side value: a `+`/`|`-joined
// sum of primaries, each of which may carry a unary `!`/`-`. The same
// grammar backs modifier masks, keysym lists' element syntax, and
// action arguments; the compiler assigns meaning by context.
func (p *parser) parseExpr() (*ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("|") {
		kind := ast.ExprSum
		if p.isOp("|") {
			kind = ast.ExprUnion
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Expr{Kind: kind, Lhs: lhs, Rhs: rhs, Pos: pos}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (*ast.Expr, error) {
	if p.isOp("+") {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		sub, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprPlus, Sub: sub, Pos: pos}, nil
	}
	if p.isOp("!") {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		sub, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprNot, Sub: sub, Pos: pos}, nil
	}
	if p.isOp("-") {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		sub, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprNeg, Sub: sub, Pos: pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*ast.Expr, error) {
	pos := p.pos()
	switch p.tok.Kind {
	case xkbtext.Ident:
		text := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprIdent, Ident: text, Pos: pos}, nil
	case xkbtext.Integer:
		v := p.tok.Int
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprInt, Int: v, Pos: pos}, nil
	case xkbtext.Float:
		v := p.tok.Float
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprFloat, Float: v, Pos: pos}, nil
	case xkbtext.String:
		s := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprString, Str: s, Pos: pos}, nil
	case xkbtext.KeyName:
		s := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprKeyName, Str: s, Pos: pos}, nil
	case xkbtext.Op:
		if p.tok.Text == "(" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			sub, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &ast.Expr{Kind: ast.ExprGroup, Sub: sub, Pos: pos}, nil
		}
		if p.tok.Text == "[" {
			return p.parseArrayExpr()
		}
	}
	return nil, p.errf("expected expression, found %q", p.tok.Text)
}

// parseArrayExpr parses `[ a, b, c ]`, used for keysym lists and
// bracketed action-argument lists.
func (p *parser) parseArrayExpr() (*ast.Expr, error) {
	pos := p.pos()
	if err := p.expectOp("["); err != nil {
		return nil, err
	}
	var elems []*ast.Expr
	for !p.isOp("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExprArray, Elems: elems, Pos: pos}, nil
}

// parseIndexExpr parses the bracketed index of a `name[INDEX]`
// reference (e.g. `map[Shift]`, `level_name[1]`, `name[Group1]`).
func (p *parser) parseIndexExpr() (*ast.Expr, error) {
	if err := p.expectOp("["); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return e, nil
}

// exprAsIntIndex evaluates an already-parsed index expression that is
// expected to be a simple integer (returned as written) or a `GroupN`
// identifier (returned zero-based); any other shape, `First` and `Last`
// included, reports ok=false. It performs no validation beyond shape;
// the compiler re-validates against the finalized keymap.
func exprAsIntIndex(e *ast.Expr) (int, bool) {
	switch e.Kind {
	case ast.ExprInt:
		return int(e.Int), true
	case ast.ExprIdent:
		return groupNameToIndex(e.Ident)
	}
	return 0, false
}

// groupNameToIndex parses `Group1`.."GroupN" into a zero-based index.
// It returns ok=false for any other name, First and Last included; the
// callers in this package report such an index as a syntax error.
func groupNameToIndex(name string) (int, bool) {
	if len(name) > 5 && name[:5] == "Group" {
		n := 0
		for i := 5; i < len(name); i++ {
			c := name[i]
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		if n >= 1 {
			return n - 1, true
		}
	}
	return 0, false
}
