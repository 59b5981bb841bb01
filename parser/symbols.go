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

// parseSymbolsStatement parses one statement inside xkb_symbols:
//
//	key <NAME> { [ sym1, sym2 ], [ sym3, sym4 ] };
//	key <NAME> { type = "TWO_LEVEL", symbols[Group1] = [...], actions[Group1] = [...] };
//	name[Group1] = "Basic";
//	key.type[Group1] = "TWO_LEVEL";
//	virtual_modifiers Alt;
//	alias <A> = <B>;
func (p *parser) parseSymbolsStatement(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	switch {
	case p.isIdent("virtual_modifiers"):
		return p.parseVModsDef(merge, pos)
	case p.isIdent("alias"):
		return p.parseAliasInSymbols(merge, pos)
	case p.isIdent("name"):
		return p.parseGroupNameDef(merge, pos)
	case p.isIdent("key"):
		return p.parseKeyStmtOrTypeAssign(merge, pos)
	}
	return nil, p.errf("unexpected token %q in xkb_symbols", p.tok.Text)
}

func (p *parser) parseAliasInSymbols(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != xkbtext.KeyName {
		return nil, p.errf("expected key name after 'alias', found %q", p.tok.Text)
	}
	alias := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	if p.tok.Kind != xkbtext.KeyName {
		return nil, p.errf("expected key name, found %q", p.tok.Text)
	}
	canon := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return &ast.AliasDef{Base: newBase(merge, pos), Alias: alias, Canonical: canon}, nil
}

func (p *parser) parseGroupNameDef(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	idx, err := p.parseIndexExpr()
	if err != nil {
		return nil, err
	}
	group, ok := exprAsIntIndex(idx)
	if !ok {
		return nil, p.errf("expected GroupN index")
	}
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	if p.tok.Kind != xkbtext.String {
		return nil, p.errf("expected group name string, found %q", p.tok.Text)
	}
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return &ast.GroupNameDef{Base: newBase(merge, pos), Group: group + 1, Name: name}, nil
}

// parseKeyStmtOrTypeAssign disambiguates `key <NAME> { ... };` from the
// file-scoped default `key.type[...] = "...";`.
func (p *parser) parseKeyStmtOrTypeAssign(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	if err := p.advance(); err != nil { // 'key'
		return nil, err
	}
	if p.isOp(".") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.isIdent("type") {
			return nil, p.errf("expected 'type' after 'key.', found %q", p.tok.Text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		group := 0
		if p.isOp("[") {
			idx, err := p.parseIndexExpr()
			if err != nil {
				return nil, err
			}
			g, ok := exprAsIntIndex(idx)
			if !ok {
				return nil, p.errf("expected GroupN index")
			}
			group = g + 1
		}
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		if p.tok.Kind != xkbtext.String {
			return nil, p.errf("expected type name string, found %q", p.tok.Text)
		}
		typeName := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectOp(";"); err != nil {
			return nil, err
		}
		return &ast.KeyTypeAssign{Base: newBase(merge, pos), Group: group, Type: typeName}, nil
	}

	if p.tok.Kind != xkbtext.KeyName {
		return nil, p.errf("expected key name, found %q", p.tok.Text)
	}
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	kd := &ast.KeyDef{Base: newBase(merge, pos), Name: name, Type: map[int]string{}}
	if err := p.expectOp("{"); err != nil {
		return nil, err
	}
	nextGroup := 1
	for !p.isOp("}") {
		if p.tok.Kind == xkbtext.EOF {
			return nil, p.errf("unexpected EOF in key %q", name)
		}
		if err := p.parseKeyField(kd, &nextGroup); err != nil {
			return nil, err
		}
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	if err := p.expectOp(";"); err != nil {
		return nil, err
	}
	return kd, nil
}

func (p *parser) parseKeyField(kd *ast.KeyDef, nextGroup *int) error {
	switch {
	case p.isOp("["):
		// Positional `[ sym1, sym2 ]` group shorthand.
		arr, err := p.parseArrayExpr()
		if err != nil {
			return err
		}
		group := *nextGroup
		*nextGroup++
		kd.Groups = append(kd.Groups, ast.KeyGroup{Group: group, Symbols: identList(arr)})
		return nil

	case p.isIdent("type"):
		if err := p.advance(); err != nil {
			return err
		}
		group := 0
		if p.isOp("[") {
			idx, err := p.parseIndexExpr()
			if err != nil {
				return err
			}
			g, ok := exprAsIntIndex(idx)
			if !ok {
				return p.errf("expected GroupN index")
			}
			group = g + 1
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		if p.tok.Kind != xkbtext.String {
			return p.errf("expected type name string, found %q", p.tok.Text)
		}
		kd.Type[group] = p.tok.Text
		return p.advance()

	case p.isIdent("symbols"):
		if err := p.advance(); err != nil {
			return err
		}
		group := *nextGroup
		if p.isOp("[") {
			idx, err := p.parseIndexExpr()
			if err != nil {
				return err
			}
			g, ok := exprAsIntIndex(idx)
			if !ok {
				return p.errf("expected GroupN index")
			}
			group = g + 1
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		arr, err := p.parseArrayExpr()
		if err != nil {
			return err
		}
		kd.Groups = append(kd.Groups, ast.KeyGroup{Group: group, Symbols: identList(arr)})
		if group >= *nextGroup {
			*nextGroup = group + 1
		}
		return nil

	case p.isIdent("actions"):
		if err := p.advance(); err != nil {
			return err
		}
		group := 1
		if p.isOp("[") {
			idx, err := p.parseIndexExpr()
			if err != nil {
				return err
			}
			g, ok := exprAsIntIndex(idx)
			if !ok {
				return p.errf("expected GroupN index")
			}
			group = g + 1
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		acts, err := p.parseActionList()
		if err != nil {
			return err
		}
		kd.Actions = true
		attachActionsToGroup(kd, group, acts)
		return nil

	case p.isIdent("repeat"):
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		v, err := p.parseBoolIdent()
		if err != nil {
			return err
		}
		kd.Repeats = &v
		return nil

	case p.isIdent("vmods") || p.isIdent("virtualmods"):
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expectOp("="); err != nil {
			return err
		}
		if p.tok.Kind != xkbtext.Ident {
			return p.errf("expected virtual modifier name, found %q", p.tok.Text)
		}
		kd.VMod = p.tok.Text
		return p.advance()
	}
	return p.errf("unexpected field %q in key %q", p.tok.Text, kd.Name)
}

// parseActionList parses `[ Action1(...), Action2(...) ]`, the
// per-level actions clause.
func (p *parser) parseActionList() ([]*ast.ActionExpr, error) {
	if err := p.expectOp("["); err != nil {
		return nil, err
	}
	var acts []*ast.ActionExpr
	for !p.isOp("]") {
		if p.isIdent("NoAction") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectOp("("); err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			acts = append(acts, nil)
		} else {
			ac, err := p.parseActionExpr()
			if err != nil {
				return nil, err
			}
			acts = append(acts, ac)
		}
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
	return acts, nil
}

func attachActionsToGroup(kd *ast.KeyDef, group int, acts []*ast.ActionExpr) {
	for i := range kd.Groups {
		if kd.Groups[i].Group == group {
			kd.Groups[i].Actions = acts
			return
		}
	}
	kd.Groups = append(kd.Groups, ast.KeyGroup{Group: group, Actions: acts})
}

// identList extracts the flat list of symbol names (identifiers,
// integers rendered back as digit strings, or "NoSymbol"/empty holes)
// from a parsed `[ ... ]` array expression.
func identList(arr *ast.Expr) []string {
	out := make([]string, 0, len(arr.Elems))
	for _, e := range arr.Elems {
		out = append(out, exprToSymbolName(e))
	}
	return out
}

func exprToSymbolName(e *ast.Expr) string {
	switch e.Kind {
	case ast.ExprIdent:
		return e.Ident
	case ast.ExprInt:
		return itoa(e.Int)
	case ast.ExprKeyName:
		return e.Str
	}
	return ""
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
