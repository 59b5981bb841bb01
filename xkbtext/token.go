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

// Package xkbtext is the scanner (tokenizer) stage of the keymap
// compiler pipeline (spec §4.1). It turns UTF-8 keymap source bytes
// into a token stream; it has no notion of grammar.
package xkbtext

// Kind identifies the lexical class of a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	KeyName // <...>
	Integer
	Float
	String
	Op // single operator rune: { } [ ] ( ) , ; = + - * / ~ ! | . : < >
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "identifier"
	case KeyName:
		return "key name"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Op:
		return "operator"
	}
	return "unknown"
}

// Token is a single lexical token, with its source position for error
// reporting (spec §7's (line, column, snippet) requirement).
type Token struct {
	Kind   Kind
	Text   string // identifier/key-name/operator text, or decoded string content
	Int    int64  // populated for Integer
	Float  float64
	Line   int
	Column int
}

// keywords is the case-insensitive keyword set recognized by the
// grammar. The scanner itself does not special-case these: it emits
// them as Ident tokens, and the parser does the case-insensitive
// keyword match, since case sensitivity differs between keywords
// (case-insensitive) and plain identifiers (case-sensitive) — folding
// case in the scanner would lose the original identifier spelling.
var keywords = map[string]bool{
	"xkb_keymap": true, "xkb_keycodes": true, "xkb_types": true,
	"xkb_compat": true, "xkb_symbols": true, "xkb_geometry": true,
	"include": true, "override": true, "augment": true, "replace": true,
	"alternate": true, "type": true, "interpret": true, "indicator": true,
	"key": true, "modifier_map": true, "alias": true,
	"virtual_modifiers": true, "action": true, "map": true,
	"level_name": true, "group": true, "name": true, "symbols": true,
	"actions": true, "vmods": true, "repeat": true, "groupswrap": true,
	"groupsredirect": true, "groupsclamp": true, "default": true,
	"hidden": true, "partial": true,
}

// IsKeyword reports whether text, folded to lowercase, is a grammar
// keyword.
func IsKeyword(text string) bool {
	return keywords[foldLower(text)]
}

func foldLower(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// FoldKeyword returns text lower-cased, for keyword comparisons
// (keywords are case-insensitive per spec §4.1).
func FoldKeyword(text string) string {
	return foldLower(text)
}
