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

// Package ast is the parsed-tree stage of the keymap compiler pipeline
// (spec §4.2): a KeymapFile is a sequence of MapFiles, each a section of
// a given kind carrying merge-tagged statements. The parser builds this
// tree; the linker consumes it.
package ast

// SectionKind identifies which of the four (or five, counting the
// discarded xkb_geometry) top-level sections a MapFile belongs to.
type SectionKind int

const (
	SectionKeycodes SectionKind = iota
	SectionTypes
	SectionCompat
	SectionSymbols
	SectionGeometry
)

func (k SectionKind) String() string {
	switch k {
	case SectionKeycodes:
		return "xkb_keycodes"
	case SectionTypes:
		return "xkb_types"
	case SectionCompat:
		return "xkb_compat"
	case SectionSymbols:
		return "xkb_symbols"
	case SectionGeometry:
		return "xkb_geometry"
	}
	return "unknown"
}

// MergeMode is the merge tag carried by every statement (spec §4.2,
// §4.3). It is derived from the statement's own prefix keyword, or
// inherited from the enclosing include term's default.
type MergeMode int

const (
	MergeDefault MergeMode = iota
	MergeOverride
	MergeAugment
	MergeReplace
)

func (m MergeMode) String() string {
	switch m {
	case MergeDefault:
		return "default"
	case MergeOverride:
		return "override"
	case MergeAugment:
		return "augment"
	case MergeReplace:
		return "replace"
	}
	return "unknown"
}

// MapFlags are the optional qualifiers a MapFile declaration may carry
// (`default xkb_symbols "x" { ... }`, `partial`, `hidden`, `alternate`).
type MapFlags int

const (
	FlagNone MapFlags = 0
	FlagDefault MapFlags = 1 << iota
	FlagPartial
	FlagHidden
	FlagAlternate
)

// Pos is a source position, carried on every node for diagnostics.
type Pos struct {
	Line, Column int
	File         string
}

// KeymapFile is the root of a parsed xkb_keymap (or a single-section
// component file, which the parser wraps as a one-MapFile KeymapFile).
type KeymapFile struct {
	Maps []*MapFile
}

// MapFile is one `xkb_keycodes "name" { ... };`-shaped section.
type MapFile struct {
	Kind       SectionKind
	Name       string
	Flags      MapFlags
	Statements []Statement
	Pos        Pos
}

// Statement is any declaration inside a MapFile body. Every concrete
// statement type embeds Merge and Pos.
type Statement interface {
	MergeMode() MergeMode
	Position() Pos
}

// Base is embedded by every concrete Statement to carry the common
// merge tag and source position. It is exported so parser.go can build
// statement literals directly.
type Base struct {
	Merge MergeMode
	Pos   Pos
}

func (b Base) MergeMode() MergeMode { return b.Merge }
func (b Base) Position() Pos        { return b.Pos }

// IncludeStmt is `include "SPEC"`, where SPEC is one or more
// `file(map)` terms joined by merge operators (spec §4.3).
type IncludeStmt struct {
	Base
	Terms []IncludeTerm
}

// IncludeTerm is a single `file(map)` component of an include spec, with
// the merge mode that applies to merging its content into what came
// before (the first term always uses MergeDefault relative to nothing).
type IncludeTerm struct {
	File  string
	Map   string // may be empty (use file's default map)
	Merge MergeMode
}

// KeycodeDef is `<NAME> = NUMBER;` inside xkb_keycodes.
type KeycodeDef struct {
	Base
	Name    string
	Keycode uint32
}

// AliasDef is `alias <A> = <B>;` inside xkb_keycodes.
type AliasDef struct {
	Base
	Alias     string
	Canonical string
}

// IndicatorKeycodeDef is `indicator N = "name";` inside xkb_keycodes,
// naming an LED index (distinct from the xkb_compat `indicator` map).
type IndicatorKeycodeDef struct {
	Base
	Index int
	Name  string
}

// VModsDef is `virtual_modifiers NAME1, NAME2 = Mod1, ...;`.
type VModsDef struct {
	Base
	Names    []string
	Bindings map[string]*Expr // name -> explicit real-mod binding, if given
}

// ExprKind tags the shape of an Expr value.
type ExprKind int

const (
	ExprIdent ExprKind = iota
	ExprInt
	ExprFloat
	ExprString
	ExprKeyName
	ExprNot     // !X
	ExprNeg     // -X (also: relative-negative group/level delta)
	ExprPlus    // +X (relative-positive group/level delta)
	ExprSum     // X + Y (modifier/group masks, OR of names)
	ExprUnion   // X | Y
	ExprGroup   // parenthesized
	ExprArray   // [ a, b, c ]
	ExprAssign  // field = value, used inside braces
	ExprKeyword // bare keyword-like identifier (e.g. "Group1")
)

// Expr is a generic right-hand-side value as produced by the parser.
// The compiler interprets an Expr's meaning according to where it
// appears (a modifier mask, a keysym list, an action argument, ...).
type Expr struct {
	Kind     ExprKind
	Ident    string
	Int      int64
	Float    float64
	Str      string
	Sub      *Expr
	Lhs, Rhs *Expr
	Elems    []*Expr
	Field    string // for ExprAssign
	Pos      Pos
}

// TypeDef is a `type "NAME" { ... };` declaration inside xkb_types.
type TypeDef struct {
	Base
	Name    string
	Mods    *Expr // modifier mask expression, from `modifiers = ...;`
	Maps    []TypeMapEntry
	Levels  []LevelNameEntry
	Preserve []PreserveEntry
}

// TypeMapEntry is `map[MODS] = LEVEL;`.
type TypeMapEntry struct {
	Mods  *Expr
	Level int
	Pos   Pos
}

// PreserveEntry is `preserve[MODS] = MODS2;`.
type PreserveEntry struct {
	Mods    *Expr
	Preserve *Expr
	Pos     Pos
}

// LevelNameEntry is `level_name[LEVEL] = "NAME";`.
type LevelNameEntry struct {
	Level int
	Name  string
}

// InterpretDef is `interpret KEYSYM[+MODS] { ... };` inside xkb_compat.
type InterpretDef struct {
	Base
	Keysym   string // symbol name, or "Any" for the wildcard
	Match    MatchPredicate
	Mods     *Expr
	Action   *ActionExpr
	AutoRepeat *bool
	VMod     string // `virtualModifier = NAME;`
}

// MatchPredicate is the `MatchKind` keyword in an interpret statement.
type MatchPredicate int

const (
	MatchExactly MatchPredicate = iota
	MatchAllOf
	MatchAnyOf
	MatchAnyOfOrNone
	MatchNone
)

// ActionExpr is a parsed `actionName(arg=val, ...)` call.
type ActionExpr struct {
	Name string
	Args []ActionArg
	Pos  Pos
}

// ActionArg is one `name=value` pair inside an action call.
type ActionArg struct {
	Name  string
	Value *Expr
}

// IndicatorDef is `indicator "NAME" { ... };` inside xkb_compat.
type IndicatorDef struct {
	Base
	Name       string
	WhichGroups *Expr
	Groups     *Expr
	WhichMods  *Expr
	Mods       *Expr
	Controls   *Expr
	Fields     map[string]*Expr // catch-all for lesser-used fields
}

// ModMapDef is `modifier_map MODNAME { <K1>, <K2>, ... };` inside
// xkb_compat.
type ModMapDef struct {
	Base
	Modifier string
	Keys     []string // key names or keysym names
}

// KeyDef is `key <NAME> { ... };` inside xkb_symbols.
type KeyDef struct {
	Base
	Name    string
	Groups  []KeyGroup
	Actions bool // explicit-actions flag (symbols had an `actions=` clause)
	Repeats *bool
	VMod    string
	Type    map[int]string // per-group explicit type override ([1]="TYPE")
}

// KeyGroup is one `[ sym1, sym2, ... ]` (or `symbols[N] = [...]`)
// entry, a single group/layout's worth of levels for one key, plus the
// parallel actions clause if present.
type KeyGroup struct {
	Group   int // 1-based source group index, 0 = unspecified/next
	Symbols []string
	Actions []*ActionExpr // nil entries mean "no action" for that level
}

// GroupNameDef is `name[Group1] = "NAME";` inside xkb_symbols.
type GroupNameDef struct {
	Base
	Group int // 1-based
	Name  string
}

// KeyTypeAssign is `key.type = "NAME";` or `key.type[Group1] = "NAME";`
// a default applying to subsequent key statements in the same file.
type KeyTypeAssign struct {
	Base
	Group int // 0 = all groups
	Type  string
}
