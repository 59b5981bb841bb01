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

// Package keymap is the immutable, reference-counted result of
// compilation (spec §4.5): the four tables (keycodes, types, compat,
// symbols) plus the canonical-text serializer. The state machine in
// xkbstate holds a shared reference to a Keymap and never mutates it.
package keymap

import (
	"runtime"
	"sync/atomic"

	"github.com/xkbgo/xkbcore/keysym"
	"github.com/xkbgo/xkbcore/xkbintern"
)

// Bounds on the primitive entities (spec §3.1).
const (
	MinKeycode = uint32(0)
	MaxKeycode = uint32(0xfffffffe)

	MaxMods   = 32 // >= 16 required; 32 keeps a real+virtual mask in one uint32
	MaxGroups = 32
	MaxLeds   = 32
	MaxLevels = 2048

	NumRealMods = 8
)

// ModMask is a bitmask over modifier indices (real modifiers occupy
// bits 0-7; virtual modifiers occupy the remaining bits up to MaxMods).
type ModMask uint32

// GroupMask is a bitmask over layout/group indices.
type GroupMask uint32

// LedMask is a bitmask over LED indices.
type LedMask uint32

// Controls is the bitset of boolean feature toggles (spec §3.2).
type Controls uint32

const (
	ControlRepeatKeys Controls = 1 << iota
	ControlStickyKeys
	ControlSlowKeys
	ControlBounceKeys
	ControlMouseKeys
	ControlMouseKeysAccel
	ControlAccessXKeys
	ControlAccessXTimeout
	ControlAccessXFeedback
	ControlAudibleBell
	ControlOverlay1
	ControlOverlay2
	ControlIgnoreGroupLock
	ControlStickyKeysLatchToLock
	ControlStickyKeysTwoKeys

	// KnownControls covers every control bit above; update_controls
	// ignores bits outside it (spec §7 runtime policy).
	KnownControls = ControlStickyKeysTwoKeys<<1 - 1
)

// VirtualMod describes one virtual modifier: its name and the real-mod
// mask it resolves to (spec §3.1, §4.4.1). An unbound virtual modifier
// has Real == 0 and is still a legal reference in MODS_EFFECTIVE
// queries (spec §4.4.1).
type VirtualMod struct {
	Name string
	Real ModMask
}

// KeyType is a key-type declaration (spec §3.2). Index 0..3 are always
// the canonical ONE_LEVEL, TWO_LEVEL, ALPHABETIC, KEYPAD types.
type KeyType struct {
	Name     string
	RealMods ModMask // modifiers.real, before vmod resolution
	VMods    ModMask // modifiers.vmods (virtual-modifier bits referenced)
	EffMask  ModMask // resolved effective_mask (spec §4.4.2), set at finalize
	Entries  []TypeMapEntry
	Levels   []string // level names, 0-indexed; "" if unnamed
	NumLevels int
}

// TypeMapEntry is one `map[MODS] = LEVEL` entry, after vmod resolution.
type TypeMapEntry struct {
	RealMods ModMask
	VMods    ModMask
	Mask     ModMask // resolved entry.mask (spec §4.4.2)
	Level    int
	Preserve ModMask // preserve[MODS] real-resolved mask, if any
	Active   bool    // false if vmods referenced but resolved to empty (spec §4.4.2)
}

// Canonical key-type names, always present (spec §3.2).
const (
	TypeOneLevel   = "ONE_LEVEL"
	TypeTwoLevel   = "TWO_LEVEL"
	TypeAlphabetic = "ALPHABETIC"
	TypeKeypad     = "KEYPAD"
)

// LevelSyms is the keysym array for one level of one key in one group.
type LevelSyms []keysym.Keysym

// Key is a single physical key's complete binding (spec §3.2).
type Key struct {
	Keycode  uint32
	Name     string
	Repeats  bool
	Explicit bool // explicit-actions flag
	VMods    ModMask
	Groups   []KeyGroupBinding // one entry per populated group/layout
}

// KeyGroupBinding is one (key-type-reference, level syms, level
// actions) triple for a single group (spec §3.2).
type KeyGroupBinding struct {
	Type    int // index into Keymap.Types
	Syms    []LevelSyms
	Actions []Action
}

// Interpret is a compat rule (spec §3.2).
type Interpret struct {
	Keysym     keysym.Keysym
	Any        bool // true for the "Any" wildcard keysym
	Match      MatchPredicate
	Mods       ModMask
	Action     Action
	AutoRepeat bool
	VMod       int // index into Keymap.VMods this interpret contributes to, or -1
	Priority   int // higher wins; computed at compile time from specificity
}

// MatchPredicate mirrors ast.MatchPredicate at the keymap layer.
type MatchPredicate int

const (
	MatchExactly MatchPredicate = iota
	MatchAllOf
	MatchAnyOf
	MatchAnyOfOrNone
	MatchNone
)

// WhichGroups / WhichMods bitsets for indicator predicates (spec
// §4.4.5).
type WhichGroups uint8

const (
	WhichGroupsBase WhichGroups = 1 << iota
	WhichGroupsLatched
	WhichGroupsLocked
	WhichGroupsEffective
	WhichGroupsAny
)

type WhichMods uint8

const (
	WhichModsBase WhichMods = 1 << iota
	WhichModsLatched
	WhichModsLocked
	WhichModsEffective
	WhichModsCompat
	WhichModsAny
)

// Indicator is an LED definition (spec §3.2, §4.4.5).
type Indicator struct {
	Name        string
	WhichGroups WhichGroups
	Groups      GroupMask
	WhichMods   WhichMods
	Mods        ModMask
	ExplicitMods ModMask
	Controls    Controls
}

// Alias maps an alternate key name to its canonical name (spec §3.2).
type Alias struct {
	Alias     string
	Canonical string
}

// Keymap is the immutable, reference-counted compilation result (spec
// §3.5, §4.5). The zero value is not valid; construct with the
// compiler package.
type Keymap struct {
	refs  int32
	atoms *xkbintern.Table

	Format int // 1 or 2 (spec §6.1)

	MinKeycode uint32
	MaxKeycode uint32

	Keys      []Key              // sparse; index by Keycode - MinKeycode is NOT assumed, use KeyByKeycode
	byKeycode map[uint32]int     // keycode -> index into Keys
	byName    map[string]int     // key name -> index into Keys
	Aliases   []Alias

	Types []KeyType
	byTypeName map[string]int

	VMods []VirtualMod
	byVModName map[string]int

	Interprets []Interpret

	Indicators []Indicator
	byIndicatorName map[string]int

	GroupNames []string // index 0 = Group1

	ModMapAssignments map[ModMask][]uint32 // real/virtual mod -> keycodes (spec modifier_map)

	finalized bool
}

// NewEmpty constructs a Keymap with the four canonical key types and
// nothing else; the compiler fills in the rest.
func NewEmpty(format int) *Keymap {
	k := &Keymap{
		refs:       1,
		atoms:      xkbintern.Shared(),
		Format:     format,
		MinKeycode: MinKeycode,
		MaxKeycode: MinKeycode,
		byKeycode:  map[uint32]int{},
		byName:     map[string]int{},
		byTypeName: map[string]int{},
		byVModName: map[string]int{},
		byIndicatorName: map[string]int{},
		ModMapAssignments: map[ModMask][]uint32{},
	}
	k.Types = canonicalTypes()
	for i, t := range k.Types {
		k.byTypeName[t.Name] = i
	}
	return k
}

func canonicalTypes() []KeyType {
	return []KeyType{
		{Name: TypeOneLevel, NumLevels: 1, Levels: []string{"Level1"}, Entries: nil},
		{Name: TypeTwoLevel, NumLevels: 2, Levels: []string{"Level1", "Level2"},
			RealMods: ModMask(1), // Shift
			Entries: []TypeMapEntry{{RealMods: 1, Mask: 1, Level: 1, Active: true}}},
		{Name: TypeAlphabetic, NumLevels: 2, Levels: []string{"Level1", "Level2"},
			RealMods: ModMask(1) | ModMask(2), // Shift, Lock
			Entries: []TypeMapEntry{
				{RealMods: 1, Mask: 1, Level: 1, Active: true},
				{RealMods: 2, Mask: 2, Level: 1, Active: true},
				{RealMods: 3, Mask: 3, Level: 0, Active: true},
			}},
		{Name: TypeKeypad, NumLevels: 2, Levels: []string{"Level1", "Level2"},
			RealMods: ModMask(1), // Shift (NumLock handled via vmod in practice)
			Entries: []TypeMapEntry{{RealMods: 1, Mask: 1, Level: 1, Active: true}}},
	}
}

// Ref increments the reference count and returns k, mirroring the
// source's arena-allocator refcounting discipline (spec §3.5, §5).
func (k *Keymap) Ref() *Keymap {
	atomic.AddInt32(&k.refs, 1)
	return k
}

// Unref decrements the reference count, freeing k's tables when it
// reaches zero. Callers must not use k after a final Unref.
func (k *Keymap) Unref() {
	if atomic.AddInt32(&k.refs, -1) == 0 {
		k.free()
	}
}

func (k *Keymap) free() {
	k.Keys = nil
	k.byKeycode = nil
	k.byName = nil
	k.Types = nil
	k.Interprets = nil
	k.Indicators = nil
}

// finalizerSafetyNet is armed only in tests, to catch missing Unref
// calls without affecting production behavior (mirrors tcell's
// explicit Fini()-over-finalizer convention, SPEC_FULL.md §3.3).
func finalizerSafetyNet(k *Keymap, onLeak func()) {
	runtime.SetFinalizer(k, func(k *Keymap) {
		if atomic.LoadInt32(&k.refs) > 0 {
			onLeak()
		}
	})
}

// ArmLeakDetector installs a test-only finalizer that invokes onLeak if
// k is garbage collected while still holding outstanding references.
func (k *Keymap) ArmLeakDetector(onLeak func()) {
	finalizerSafetyNet(k, onLeak)
}

// AddKey appends key to the Keys table and indexes it by keycode and
// name, returning its index. Used by the compiler's keycodes pass.
func (k *Keymap) AddKey(key Key) int {
	k.atoms.Intern(key.Name)
	idx := len(k.Keys)
	k.Keys = append(k.Keys, key)
	k.byKeycode[key.Keycode] = idx
	k.byName[key.Name] = idx
	return idx
}

// SetKeyGroups replaces the Groups/Explicit/Repeats/VMods fields of the
// key at idx. Used by the compiler's symbols pass, which discovers a
// key's bindings only after the keycodes pass already assigned it an
// index.
func (k *Keymap) SetKeyGroups(idx int, groups []KeyGroupBinding, explicit bool, repeats bool, vmods ModMask) {
	k.Keys[idx].Groups = groups
	k.Keys[idx].Explicit = explicit
	k.Keys[idx].Repeats = repeats
	k.Keys[idx].VMods = vmods
}

// AddAlias appends a to the Aliases table.
func (k *Keymap) AddAlias(a Alias) { k.Aliases = append(k.Aliases, a) }

// AddType appends t to the Types table (after the four canonical
// types) and indexes it by name, returning its index.
func (k *Keymap) AddType(t KeyType) int {
	k.atoms.Intern(t.Name)
	idx := len(k.Types)
	k.Types = append(k.Types, t)
	k.byTypeName[t.Name] = idx
	return idx
}

// ReplaceType overwrites the type at idx (used when a later
// declaration overrides/augments an earlier one with the same name
// within the same compile).
func (k *Keymap) ReplaceType(idx int, t KeyType) { k.Types[idx] = t }

// AddVMod appends v to the VMods table and indexes it by name,
// returning its index.
func (k *Keymap) AddVMod(v VirtualMod) int {
	k.atoms.Intern(v.Name)
	idx := len(k.VMods)
	k.VMods = append(k.VMods, v)
	k.byVModName[v.Name] = idx
	return idx
}

// AddInterpret appends in to the Interprets table.
func (k *Keymap) AddInterpret(in Interpret) { k.Interprets = append(k.Interprets, in) }

// SortInterprets reorders the Interprets table in place using less.
func (k *Keymap) SortInterprets(less func(a, b Interpret) bool) {
	// Simple insertion sort: the interpret table is small (tens of
	// entries even in large keymaps) and this keeps the sort stable,
	// which declaration-order tie-breaking (spec §4.4, item 3) requires.
	for i := 1; i < len(k.Interprets); i++ {
		for j := i; j > 0 && less(k.Interprets[j], k.Interprets[j-1]); j-- {
			k.Interprets[j], k.Interprets[j-1] = k.Interprets[j-1], k.Interprets[j]
		}
	}
}

// AddIndicator appends ind to the Indicators table and indexes it by
// name, returning its index.
func (k *Keymap) AddIndicator(ind Indicator) int {
	k.atoms.Intern(ind.Name)
	idx := len(k.Indicators)
	k.Indicators = append(k.Indicators, ind)
	k.byIndicatorName[ind.Name] = idx
	return idx
}

// EnsureIndicatorAt seats name at LED index i, growing the table with
// anonymous slots as needed. The keycodes pass uses this: xkb_keycodes
// may name LED indices before xkb_compat defines their predicates.
func (k *Keymap) EnsureIndicatorAt(i int, name string) {
	for len(k.Indicators) <= i {
		k.Indicators = append(k.Indicators, Indicator{})
	}
	k.Indicators[i].Name = name
	k.atoms.Intern(name)
	k.byIndicatorName[name] = i
}

// SetGroupName records the name of group g (0-based), growing
// GroupNames as needed.
func (k *Keymap) SetGroupName(g int, name string) {
	for len(k.GroupNames) <= g {
		k.GroupNames = append(k.GroupNames, "")
	}
	k.GroupNames[g] = name
}

// AllTypes returns the live Types slice for in-place mutation during
// the finalize pass (virtual-modifier resolution).
func (k *Keymap) AllTypes() []KeyType { return k.Types }

// AllInterprets returns the live Interprets slice for in-place
// mutation during the finalize pass.
func (k *Keymap) AllInterprets() []Interpret { return k.Interprets }

// AllIndicators returns the live Indicators slice for in-place
// mutation during the finalize pass.
func (k *Keymap) AllIndicators() []Indicator { return k.Indicators }

// AllKeys returns the live Keys slice for in-place mutation during the
// finalize pass.
func (k *Keymap) AllKeys() []Key { return k.Keys }

// VModReal returns the resolved real-modifier mask of virtual modifier
// index i, or 0 if i is out of range.
func (k *Keymap) VModReal(i int) ModMask {
	if i < 0 || i >= len(k.VMods) {
		return 0
	}
	return k.VMods[i].Real
}

// KeyByKeycode returns the Key bound to kc, and whether one exists.
func (k *Keymap) KeyByKeycode(kc uint32) (*Key, bool) {
	i, ok := k.byKeycode[kc]
	if !ok {
		return nil, false
	}
	return &k.Keys[i], true
}

// IndexByKeycode returns the Keys index of the key bound to kc, and
// whether one exists. The compiler's symbols pass uses this to update
// a key in place.
func (k *Keymap) IndexByKeycode(kc uint32) (int, bool) {
	i, ok := k.byKeycode[kc]
	return i, ok
}

// KeyByName returns the Key named name (after alias resolution), and
// whether one exists.
func (k *Keymap) KeyByName(name string) (*Key, bool) {
	name = k.ResolveAlias(name)
	i, ok := k.byName[name]
	if !ok {
		return nil, false
	}
	return &k.Keys[i], true
}

// MarkFinalized records that the compiler's finalize pass has run. It
// is exported so the compiler package (which builds a Keymap field by
// field across its five passes) can flip the bit once compilation
// succeeds; nothing in this package currently branches on it, but it
// documents the point at which the immutability guarantee (spec §3.5)
// begins to hold.
func (k *Keymap) MarkFinalized() { k.finalized = true }

// Finalized reports whether the compiler's finalize pass has run.
func (k *Keymap) Finalized() bool { return k.finalized }

// NameAtom returns the interned atom handle for name, interning it on
// first sight. Names flowing through AddKey/AddType/AddVMod/
// AddIndicator are interned as the compiler builds the keymap, so
// embedders can compare keymap names by atom instead of by string.
func (k *Keymap) NameAtom(name string) xkbintern.Atom {
	return k.atoms.Intern(name)
}

// AtomText resolves an atom previously returned by NameAtom.
func (k *Keymap) AtomText(a xkbintern.Atom) string {
	return k.atoms.Text(a)
}

// ResolveAlias follows a single alias hop (aliases do not chain in a
// well-formed keymap; the compiler flattens multi-hop chains at
// compile time).
func (k *Keymap) ResolveAlias(name string) string {
	for _, a := range k.Aliases {
		if a.Alias == name {
			return a.Canonical
		}
	}
	return name
}

// TypeByName returns the KeyType index named name, and whether one
// exists.
func (k *Keymap) TypeByName(name string) (int, bool) {
	i, ok := k.byTypeName[name]
	return i, ok
}

// VModByName returns the virtual modifier index named name, and
// whether one exists.
func (k *Keymap) VModByName(name string) (int, bool) {
	i, ok := k.byVModName[name]
	return i, ok
}

// NumGroups reports the number of layouts: the widest per-key group
// count seen across all keys, or the length of the group-name table if
// that is larger.
func (k *Keymap) NumGroups() int {
	n := 0
	for _, key := range k.Keys {
		if len(key.Groups) > n {
			n = len(key.Groups)
		}
	}
	if len(k.GroupNames) > n {
		n = len(k.GroupNames)
	}
	return n
}

// GroupName returns the name of group g (0-based), or "" if unnamed.
func (k *Keymap) GroupName(g int) string {
	if g < 0 || g >= len(k.GroupNames) {
		return ""
	}
	return k.GroupNames[g]
}

// IndicatorByName returns the Indicator index named name.
func (k *Keymap) IndicatorByName(name string) (int, bool) {
	i, ok := k.byIndicatorName[name]
	return i, ok
}

// WrapGroup implements the canonical group-wrap (spec §3.3 invariant 4,
// §8.1 "Group wrap" property): negative remainders are shifted up by
// numGroups; numGroups == 0 always yields group 0.
func WrapGroup(g int32, numGroups int) int {
	if numGroups <= 0 {
		return 0
	}
	n := int32(numGroups)
	r := g % n
	if r < 0 {
		r += n
	}
	return int(r)
}
