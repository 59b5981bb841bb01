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

// Package keysym is the keysym database collaborator described in the
// core's external-interfaces contract: name<->keysym lookup, keysym<->
// Unicode conversion, and the handful of keysym predicates the compiler
// and state machine rely on. The core treats it as a read-only lookup
// service; this package supplies the concrete default implementation.
package keysym

// Keysym is a 32-bit symbolic keyboard output. It either names a symbol
// from the predefined table or carries a Unicode code point offset by
// UnicodeOffset.
type Keysym uint32

const (
	NoSymbol = Keysym(0)

	// UnicodeOffset is added to a Unicode code point to form a keysym
	// that directly encodes that code point.
	UnicodeOffset = Keysym(0x01000000)
	UnicodeMin    = Keysym(0x01000100)
	UnicodeMax    = Keysym(0x0110ffff)

	MinAssigned = Keysym(0x00000000)
	MaxAssigned = Keysym(0x1008ffb8)

	// NameMaxSize bounds the longest canonical keysym name, including
	// the terminating NUL the C API reserves a byte for.
	NameMaxSize = 27

	// Utf8MaxSize bounds the longest UTF-8 encoding of a keysym, 4 data
	// bytes plus a NUL terminator slot.
	Utf8MaxSize = 5
)

// A handful of named keysyms the compiler and state machine reference
// directly (level selection specials, and the keys exercised by the
// end-to-end scenarios in spec §8.2).
const (
	KeySpace     = Keysym(0x0020)
	KeyBackSpace = Keysym(0xff08)
	KeyTab       = Keysym(0xff09)
	KeyClear     = Keysym(0xff0b)
	KeyReturn    = Keysym(0xff0d)
	KeyEscape    = Keysym(0xff1b)
	KeyDelete    = Keysym(0xffff)

	KeyKPSpace    = Keysym(0xff80)
	KeyKPTab      = Keysym(0xff89)
	KeyKPEnter    = Keysym(0xff8d)
	KeyKPMultiply = Keysym(0xffaa)
	KeyKP0        = Keysym(0xffb0)
	KeyKP9        = Keysym(0xffb9)
	KeyKPEqual    = Keysym(0xffbd)

	KeyShiftL   = Keysym(0xffe1)
	KeyShiftR   = Keysym(0xffe2)
	KeyControlL = Keysym(0xffe3)
	KeyControlR = Keysym(0xffe4)
	KeyCapsLock = Keysym(0xffe5)
	KeyAltL     = Keysym(0xffe9)
	KeyAltR     = Keysym(0xffea)
	KeySuperL   = Keysym(0xffeb)
	KeySuperR   = Keysym(0xffec)

	KeyA = Keysym(0x0061)
	Keya = KeyA

	KeyNumLock    = Keysym(0xff7f)
	KeyScrollLock = Keysym(0xff14)
)

var namesToKeysym = map[string]Keysym{
	"NoSymbol":   NoSymbol,
	"space":      KeySpace,
	"BackSpace":  KeyBackSpace,
	"Tab":        KeyTab,
	"Clear":      KeyClear,
	"Return":     KeyReturn,
	"Escape":     KeyEscape,
	"Delete":     KeyDelete,
	"KP_Space":   KeyKPSpace,
	"KP_Tab":     KeyKPTab,
	"KP_Enter":   KeyKPEnter,
	"KP_Multiply": KeyKPMultiply,
	"KP_0":       KeyKP0,
	"KP_9":       KeyKP9,
	"KP_Equal":   KeyKPEqual,
	"Shift_L":    KeyShiftL,
	"Shift_R":    KeyShiftR,
	"Control_L":  KeyControlL,
	"Control_R":  KeyControlR,
	"Caps_Lock":  KeyCapsLock,
	"Alt_L":      KeyAltL,
	"Alt_R":      KeyAltR,
	"Super_L":    KeySuperL,
	"Super_R":    KeySuperR,
	"Num_Lock":   KeyNumLock,
	"Scroll_Lock": KeyScrollLock,
	"a":          KeyA,
	"A":          0x0041,
}

var keysymToName map[Keysym]string

func init() {
	for name, ks := range extendedNames {
		if _, ok := namesToKeysym[name]; !ok {
			namesToKeysym[name] = ks
		}
	}
	// Some keysyms carry several names (Prior/Page_Up); pick the
	// lexically smallest so the reverse mapping, and with it the
	// serializer output, is deterministic.
	keysymToName = make(map[Keysym]string, len(namesToKeysym))
	for name, ks := range namesToKeysym {
		if prev, ok := keysymToName[ks]; !ok || name < prev {
			keysymToName[ks] = name
		}
	}
	// Printable ASCII keysyms equal their code point and are not in the
	// explicit table; synthesize their canonical single-character name
	// lazily in KeysymName instead of bloating this map.
}

// NameToKeysym looks up a keysym by its canonical (or, if
// caseInsensitive, any-case) name. It returns NoSymbol if unknown.
func NameToKeysym(name string, caseInsensitive bool) Keysym {
	if ks, ok := namesToKeysym[name]; ok {
		return ks
	}
	if len(name) == 1 && name[0] >= 0x20 && name[0] < 0x7f {
		return Keysym(name[0])
	}
	if caseInsensitive {
		for n, ks := range namesToKeysym {
			if equalFold(n, name) {
				return ks
			}
		}
	}
	return NoSymbol
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// KeysymName returns the canonical name for ks. A Unicode-direct keysym
// without a table name is spelled `U` plus its code point in hex; any
// other keysym without a name yields "".
func KeysymName(ks Keysym) string {
	if name, ok := keysymToName[ks]; ok {
		return name
	}
	if ks >= 0x20 && ks < 0x7f {
		return string(rune(ks))
	}
	if ks >= UnicodeOffset && ks <= UnicodeMax {
		return "U" + hex(uint32(ks-UnicodeOffset))
	}
	return ""
}

func hex(v uint32) string {
	const digits = "0123456789ABCDEF"
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// IsLower reports whether ks has a lowercase rendering that differs from
// its uppercase one (mirrors xkb_keysym_is_lower).
func IsLower(ks Keysym) bool {
	cp := ToUTF32(ks)
	if cp == 0 {
		return false
	}
	return isUnicodeLower(rune(cp))
}

// IsUpperOrTitle reports whether ks renders as an uppercase or titlecase
// character.
func IsUpperOrTitle(ks Keysym) bool {
	cp := ToUTF32(ks)
	if cp == 0 {
		return false
	}
	return isUnicodeUpperOrTitle(rune(cp))
}

// IsKeypad reports whether ks is one of the KP_* family.
func IsKeypad(ks Keysym) bool {
	return ks >= KeyKPSpace && ks <= Keysym(0xffbd)
}

// IsModifier reports whether ks is itself a modifier-generating key
// (Shift/Control/Alt/Super/CapsLock/NumLock family, not a regular key
// that merely contributes to the type-level selection).
func IsModifier(ks Keysym) bool {
	switch {
	case ks >= 0xffe1 && ks <= 0xffee:
		return true
	case ks == KeyCapsLock || ks == KeyNumLock || ks == KeyScrollLock:
		return true
	case ks == Keysym(0xfe03): // ISO_Level3_Shift
		return true
	case ks == Keysym(0xfe11): // ISO_Level5_Shift
		return true
	}
	return false
}

// IsAssigned reports whether ks falls within the assigned keysym range.
// Name-table membership or Unicode-direct encoding both count.
func IsAssigned(ks Keysym) bool {
	if ks == NoSymbol {
		return false
	}
	if ks >= MinAssigned && ks <= MaxAssigned {
		if _, ok := keysymToName[ks]; ok {
			return true
		}
	}
	if ks >= 0x20 && ks < 0x7f {
		return true
	}
	if ks >= UnicodeOffset && ks <= UnicodeMax {
		return true
	}
	return false
}

// IsDeprecated reports whether ks is a deprecated legacy keysym name.
// None of the seed table's entries are deprecated; kept as a documented
// hook for the full keysym database an external collaborator may supply.
func IsDeprecated(ks Keysym) bool {
	return false
}
