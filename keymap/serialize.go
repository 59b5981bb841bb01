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

package keymap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/xkbgo/xkbcore/keysym"
)

// keyNameColumn is the column width the serializer pads `<Name>`
// fields to, matching the canonical xkbcomp pretty-printer's layout.
const keyNameColumn = 10

// Serialize renders k as canonical keymap source text (spec §4.5,
// §6.1) in k's format version. The output is deterministic: two
// Serialize calls on the same Keymap are byte-equal, and parsing the
// result reproduces an equivalent keymap (parse ∘ serialize ∘ parse =
// parse, spec §8.1).
func (k *Keymap) Serialize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "xkb_keymap {\n")
	k.writeKeycodes(&b)
	k.writeTypes(&b)
	k.writeCompat(&b)
	k.writeSymbols(&b)
	b.WriteString("};\n")
	return b.String()
}

func padKeyName(name string) string {
	field := "<" + name + ">"
	w := runewidth.StringWidth(field)
	if w >= keyNameColumn {
		return field
	}
	return field + strings.Repeat(" ", keyNameColumn-w)
}

func (k *Keymap) writeKeycodes(b *strings.Builder) {
	fmt.Fprintf(b, "\txkb_keycodes {\n")
	for _, key := range k.Keys {
		fmt.Fprintf(b, "\t\t%s = %d;\n", padKeyName(key.Name), key.Keycode)
	}
	for _, a := range k.Aliases {
		fmt.Fprintf(b, "\t\talias %s = %s;\n", padKeyName(a.Alias), "<"+a.Canonical+">")
	}
	fmt.Fprintf(b, "\t};\n")
}

// formatMask renders a combined real+virtual mask with the virtual
// bits spelled by name, or "None" for an empty mask.
func (k *Keymap) formatMask(m ModMask) string {
	if m == 0 {
		return "None"
	}
	var names []string
	for i := 0; i < NumRealMods; i++ {
		if m&(1<<uint(i)) != 0 {
			names = append(names, realModName(i))
		}
	}
	for vi := range k.VMods {
		if m&(ModMask(1)<<uint(NumRealMods+vi)) != 0 {
			names = append(names, k.VMods[vi].Name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%x", uint32(m))
	}
	return strings.Join(names, "+")
}

func realModName(i int) string {
	names := [NumRealMods]string{"Shift", "Lock", "Control", "Mod1", "Mod2", "Mod3", "Mod4", "Mod5"}
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return "?"
}

func (k *Keymap) writeVMods(b *strings.Builder) {
	if len(k.VMods) == 0 {
		return
	}
	decls := make([]string, len(k.VMods))
	for i, v := range k.VMods {
		if v.Real != 0 {
			decls[i] = v.Name + "=" + k.formatMask(v.Real&(ModMask(1)<<NumRealMods-1))
		} else {
			decls[i] = v.Name
		}
	}
	fmt.Fprintf(b, "\t\tvirtual_modifiers %s;\n", strings.Join(decls, ","))
}

func (k *Keymap) writeTypes(b *strings.Builder) {
	fmt.Fprintf(b, "\txkb_types {\n")
	k.writeVMods(b)
	for i := range k.Types {
		t := &k.Types[i]
		if isCanonicalType(t.Name) && len(t.Entries) == canonicalEntryCount(t.Name) {
			continue // canonical types round-trip implicitly
		}
		fmt.Fprintf(b, "\t\ttype \"%s\" {\n", t.Name)
		fmt.Fprintf(b, "\t\t\tmodifiers = %s;\n", k.formatMask(t.RealMods|t.VMods))
		for _, e := range t.Entries {
			fmt.Fprintf(b, "\t\t\tmap[%s] = Level%d;\n", k.formatMask(e.RealMods|e.VMods), e.Level+1)
			if e.Preserve != 0 {
				fmt.Fprintf(b, "\t\t\tpreserve[%s] = %s;\n",
					k.formatMask(e.RealMods|e.VMods), k.formatMask(e.Preserve))
			}
		}
		for li, name := range t.Levels {
			if name != "" {
				fmt.Fprintf(b, "\t\t\tlevel_name[Level%d] = \"%s\";\n", li+1, name)
			}
		}
		fmt.Fprintf(b, "\t\t};\n")
	}
	fmt.Fprintf(b, "\t};\n")
}

func isCanonicalType(name string) bool {
	switch name {
	case TypeOneLevel, TypeTwoLevel, TypeAlphabetic, TypeKeypad:
		return true
	}
	return false
}

func canonicalEntryCount(name string) int {
	for _, t := range canonicalTypes() {
		if t.Name == name {
			return len(t.Entries)
		}
	}
	return -1
}

var matchNames = map[MatchPredicate]string{
	MatchExactly:     "Exactly",
	MatchAllOf:       "AllOf",
	MatchAnyOf:       "AnyOf",
	MatchAnyOfOrNone: "AnyOfOrNone",
	MatchNone:        "NoneOf",
}

func (k *Keymap) writeCompat(b *strings.Builder) {
	fmt.Fprintf(b, "\txkb_compat {\n")
	for _, in := range k.Interprets {
		name := "Any"
		if !in.Any {
			name = k.keysymName(in.Keysym)
		}
		fmt.Fprintf(b, "\t\tinterpret %s+%s(%s) {\n", name, matchNames[in.Match], k.formatMask(in.Mods))
		if in.VMod >= 0 && in.VMod < len(k.VMods) {
			fmt.Fprintf(b, "\t\t\tvirtualModifier = %s;\n", k.VMods[in.VMod].Name)
		}
		fmt.Fprintf(b, "\t\t\trepeat = %s;\n", boolName(in.AutoRepeat))
		fmt.Fprintf(b, "\t\t\taction = %s;\n", k.formatAction(in.Action))
		fmt.Fprintf(b, "\t\t};\n")
	}
	for _, ind := range k.Indicators {
		if ind.Name == "" {
			continue // anonymous slot reserved by an LED index
		}
		fmt.Fprintf(b, "\t\tindicator \"%s\" {\n", ind.Name)
		if ind.WhichGroups != 0 {
			fmt.Fprintf(b, "\t\t\twhichGroupState = %s;\n", whichGroupsName(ind.WhichGroups))
		}
		if ind.Groups != 0 {
			fmt.Fprintf(b, "\t\t\tgroups = %s;\n", groupMaskText(ind.Groups))
		}
		if ind.Mods != 0 {
			fmt.Fprintf(b, "\t\t\twhichModState = %s;\n", whichModsName(ind.WhichMods))
			fmt.Fprintf(b, "\t\t\tmodifiers = %s;\n", k.formatMask(ind.Mods))
		}
		if ind.Controls != 0 {
			fmt.Fprintf(b, "\t\t\tcontrols = %s;\n", controlsText(ind.Controls))
		}
		fmt.Fprintf(b, "\t\t};\n")
	}
	k.writeModMap(b)
	fmt.Fprintf(b, "\t};\n")
}

func boolName(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func whichGroupsName(w WhichGroups) string {
	var parts []string
	for _, c := range []struct {
		bit  WhichGroups
		name string
	}{
		{WhichGroupsBase, "Base"},
		{WhichGroupsLatched, "Latched"},
		{WhichGroupsLocked, "Locked"},
		{WhichGroupsEffective, "Effective"},
		{WhichGroupsAny, "Any"},
	} {
		if w&c.bit != 0 {
			parts = append(parts, c.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "+")
}

func whichModsName(w WhichMods) string {
	var parts []string
	for _, c := range []struct {
		bit  WhichMods
		name string
	}{
		{WhichModsBase, "Base"},
		{WhichModsLatched, "Latched"},
		{WhichModsLocked, "Locked"},
		{WhichModsEffective, "Effective"},
		{WhichModsCompat, "Compat"},
		{WhichModsAny, "Any"},
	} {
		if w&c.bit != 0 {
			parts = append(parts, c.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "+")
}

func groupMaskText(m GroupMask) string {
	var parts []string
	for i := 0; i < MaxGroups; i++ {
		if m&(GroupMask(1)<<uint(i)) != 0 {
			parts = append(parts, fmt.Sprintf("Group%d", i+1))
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "+")
}

var controlNames = []struct {
	bit  Controls
	name string
}{
	{ControlRepeatKeys, "RepeatKeys"},
	{ControlStickyKeys, "StickyKeys"},
	{ControlSlowKeys, "SlowKeys"},
	{ControlBounceKeys, "BounceKeys"},
	{ControlMouseKeys, "MouseKeys"},
	{ControlMouseKeysAccel, "MouseKeysAccel"},
	{ControlAccessXKeys, "AccessXKeys"},
	{ControlAccessXTimeout, "AccessXTimeout"},
	{ControlAccessXFeedback, "AccessXFeedback"},
	{ControlAudibleBell, "AudibleBell"},
	{ControlOverlay1, "Overlay1"},
	{ControlOverlay2, "Overlay2"},
	{ControlIgnoreGroupLock, "IgnoreGroupLock"},
	{ControlStickyKeysLatchToLock, "LatchToLock"},
	{ControlStickyKeysTwoKeys, "TwoKeys"},
}

func controlsText(c Controls) string {
	var parts []string
	for _, e := range controlNames {
		if c&e.bit != 0 {
			parts = append(parts, e.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "+")
}

func (k *Keymap) writeModMap(b *strings.Builder) {
	masks := make([]int, 0, len(k.ModMapAssignments))
	for m := range k.ModMapAssignments {
		masks = append(masks, int(m))
	}
	sort.Ints(masks)
	for _, m := range masks {
		kcs := append([]uint32(nil), k.ModMapAssignments[ModMask(m)]...)
		sort.Slice(kcs, func(i, j int) bool { return kcs[i] < kcs[j] })
		var names []string
		for _, kc := range kcs {
			if key, ok := k.KeyByKeycode(kc); ok {
				names = append(names, "<"+key.Name+">")
			}
		}
		if len(names) == 0 {
			continue
		}
		bit := 0
		for ModMask(m)&(ModMask(1)<<uint(bit)) == 0 && bit < MaxMods {
			bit++
		}
		modName := realModName(bit)
		if bit >= NumRealMods && bit-NumRealMods < len(k.VMods) {
			modName = k.VMods[bit-NumRealMods].Name
		}
		fmt.Fprintf(b, "\t\tmodifier_map %s { %s };\n", modName, strings.Join(names, ", "))
	}
}

// keysymName renders a keysym in k's format version: v2 uses the
// `UXXXX` Unicode-direct spelling for nameless code points, v1 the
// raw hexadecimal value (spec §4.5: versions differ in Unicode-keysym
// formatting).
func (k *Keymap) keysymName(ks keysym.Keysym) string {
	if n := keysym.KeysymName(ks); n != "" {
		if k.Format < 2 && strings.HasPrefix(n, "U") && ks >= keysym.UnicodeOffset {
			return fmt.Sprintf("0x%08x", uint32(ks))
		}
		return n
	}
	return fmt.Sprintf("0x%x", uint32(ks))
}

func (k *Keymap) formatAction(a Action) string {
	switch a.Kind {
	case ActionNone:
		return "NoAction()"
	case ActionVoid:
		return "VoidAction()"
	case ActionSetMods:
		return fmt.Sprintf("SetMods(modifiers=%s%s)", k.formatMask(a.Mods), modFlagsText(a.Flags))
	case ActionLatchMods:
		return fmt.Sprintf("LatchMods(modifiers=%s%s)", k.formatMask(a.Mods), modFlagsText(a.Flags))
	case ActionLockMods:
		return fmt.Sprintf("LockMods(modifiers=%s)", k.formatMask(a.Mods))
	case ActionSetGroup:
		return fmt.Sprintf("SetGroup(group=%s%s)", formatGroupArg(a), groupFlagsText(a.Flags))
	case ActionLatchGroup:
		return fmt.Sprintf("LatchGroup(group=%s%s)", formatGroupArg(a), groupFlagsText(a.Flags))
	case ActionLockGroup:
		return fmt.Sprintf("LockGroup(group=%s)", formatGroupArg(a))
	case ActionMovePointer:
		return fmt.Sprintf("MovePtr(x=%d,y=%d)", a.DX, a.DY)
	case ActionPointerButton:
		return fmt.Sprintf("PtrBtn(button=%d)", a.Button)
	case ActionLockPointerButton:
		return fmt.Sprintf("LockPtrBtn(button=%d)", a.Button)
	case ActionSetPointerDefault:
		return fmt.Sprintf("SetPtrDflt(button=%d)", a.Button)
	case ActionSetControls:
		return fmt.Sprintf("SetControls(controls=%s)", controlsText(a.Affect))
	case ActionLockControls:
		return fmt.Sprintf("LockControls(controls=%s)", controlsText(a.Affect))
	case ActionTerminateServer:
		return "Terminate()"
	case ActionSwitchScreen:
		return fmt.Sprintf("SwitchScreen(screen=%d,same=%s)", a.Screen, boolName(a.Same))
	case ActionRedirectKey:
		return k.formatRedirect(a)
	case ActionPrivate:
		return fmt.Sprintf("Private(type=%d)", a.Private[0])
	case ActionISOLock:
		return fmt.Sprintf("ISOLock(modifiers=%s)", k.formatMask(a.Mods))
	}
	return "NoAction()"
}

func (k *Keymap) formatRedirect(a Action) string {
	name := fmt.Sprintf("%d", a.Keycode)
	if key, ok := k.KeyByKeycode(a.Keycode); ok {
		name = "<" + key.Name + ">"
	}
	s := fmt.Sprintf("RedirectKey(keycode=%s", name)
	if a.Mods != 0 {
		s += ",modifiers=" + k.formatMask(a.Mods)
	}
	if a.ModsClear != 0 {
		s += ",clearModifiers=" + k.formatMask(a.ModsClear)
	}
	return s + ")"
}

func modFlagsText(f ActionFlags) string {
	s := ""
	if f&FlagClearLocks != 0 {
		s += ",clearLocks"
	}
	if f&FlagLatchToLock != 0 {
		s += ",latchToLock"
	}
	return s
}

func groupFlagsText(f ActionFlags) string {
	if f&FlagClearLocks != 0 {
		return ",clearLocks"
	}
	return ""
}

func formatGroupArg(a Action) string {
	if a.Flags&FlagGroupAbsolute != 0 {
		return fmt.Sprintf("%d", a.GroupAbs+1)
	}
	if a.GroupDelta >= 0 {
		return fmt.Sprintf("+%d", a.GroupDelta)
	}
	return fmt.Sprintf("-%d", -a.GroupDelta)
}

func (k *Keymap) writeSymbols(b *strings.Builder) {
	fmt.Fprintf(b, "\txkb_symbols {\n")
	for gi, name := range k.GroupNames {
		if name != "" {
			fmt.Fprintf(b, "\t\tname[Group%d] = \"%s\";\n", gi+1, name)
		}
	}
	for i := range k.Keys {
		key := &k.Keys[i]
		if len(key.Groups) == 0 {
			continue
		}
		fmt.Fprintf(b, "\t\tkey %s {", padKeyName(key.Name))
		first := true
		for gi := range key.Groups {
			g := &key.Groups[gi]
			if len(g.Syms) == 0 && g.Actions == nil {
				continue // unpopulated slot of a sparse multi-group key
			}
			if !first {
				b.WriteString(",")
			}
			first = false
			fmt.Fprintf(b, "\n\t\t\ttype[Group%d] = \"%s\",", gi+1, k.Types[g.Type].Name)
			fmt.Fprintf(b, "\n\t\t\tsymbols[Group%d] = [ ", gi+1)
			for li, syms := range g.Syms {
				if li > 0 {
					b.WriteString(", ")
				}
				if len(syms) == 0 {
					b.WriteString("NoSymbol")
					continue
				}
				b.WriteString(k.keysymName(syms[0]))
			}
			b.WriteString(" ]")
			if key.Explicit && g.Actions != nil {
				fmt.Fprintf(b, ",\n\t\t\tactions[Group%d] = [ ", gi+1)
				for ai, a := range g.Actions {
					if ai > 0 {
						b.WriteString(", ")
					}
					b.WriteString(k.formatAction(a))
				}
				b.WriteString(" ]")
			}
		}
		if !key.Repeats {
			if !first {
				b.WriteString(",")
			}
			b.WriteString("\n\t\t\trepeat = False")
		}
		fmt.Fprintf(b, "\n\t\t};\n")
	}
	fmt.Fprintf(b, "\t};\n")
}
