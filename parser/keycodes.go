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

// parseKeycodeStatement parses one statement inside xkb_keycodes:
//
//	<NAME> = NUMBER;
//	alias <A> = <B>;
//	indicator N = "name";
func (p *parser) parseKeycodeStatement(merge ast.MergeMode, pos ast.Pos) (ast.Statement, error) {
	switch {
	case p.isIdent("alias"):
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

	case p.isIdent("indicator"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind != xkbtext.Integer {
			return nil, p.errf("expected LED index, found %q", p.tok.Text)
		}
		idx := int(p.tok.Int)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		if p.tok.Kind != xkbtext.String {
			return nil, p.errf("expected LED name string, found %q", p.tok.Text)
		}
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectOp(";"); err != nil {
			return nil, err
		}
		return &ast.IndicatorKeycodeDef{Base: newBase(merge, pos), Index: idx, Name: name}, nil

	case p.tok.Kind == xkbtext.KeyName:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		if p.tok.Kind != xkbtext.Integer {
			return nil, p.errf("expected keycode number, found %q", p.tok.Text)
		}
		kc := uint32(p.tok.Int)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectOp(";"); err != nil {
			return nil, err
		}
		return &ast.KeycodeDef{Base: newBase(merge, pos), Name: name, Keycode: kc}, nil
	}
	return nil, p.errf("unexpected token %q in xkb_keycodes", p.tok.Text)
}
