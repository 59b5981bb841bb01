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

package keysym

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// codepair mirrors the legacy non-Latin-1 keysym<->codepoint table in
// the reference keysym-utf.c: keysyms below the Unicode-direct range
// that nonetheless have a Unicode rendering (Hangul jamo, ligatures,
// currency signs picked up before the direct-encoding convention
// existed), plus a deprecated flag for entries keysym_to_utf32 still
// honors but utf32_to_keysym skips.
type codepair struct {
	keysym     Keysym
	deprecated bool
	ucs        rune
}

// legacyTable is sorted by keysym for binary search, matching the
// reference implementation's bin_search. A small representative subset
// is carried; a full build would load the complete ~700-entry table
// from the external keysym database collaborator instead of hardcoding
// it here, but the algorithm shape is exact.
var legacyTable = []codepair{
	{0x0aa2, false, 0x0104}, // Aogonek
	{0x0ab5, false, 0x013d}, // Lcaron
	{0x0ba1, false, 0x0105}, // aogonek
	{0x0bb5, false, 0x013e}, // lcaron
	{0x0ef4, false, 0x3184}, // Hangul_SunkyeongeumPhieuf
	{0x0ef6, false, 0x318d}, // Hangul_AraeA
	{0x0eff, true, 0x20a9},  // Korean_Won (deprecated name, old mapping kept)
	{0x13bc, false, 0x0152}, // OE
	{0x13bd, false, 0x0153}, // oe
	{0x13be, false, 0x0178}, // Ydiaeresis
	{0x20ac, false, 0x20ac}, // EuroSign
}

func legacyToUCS(ks Keysym) (rune, bool) {
	i := sort.Search(len(legacyTable), func(i int) bool { return legacyTable[i].keysym >= ks })
	if i < len(legacyTable) && legacyTable[i].keysym == ks {
		return legacyTable[i].ucs, true
	}
	return 0, false
}

func isSurrogate(cp uint32) bool {
	return cp >= 0xd800 && cp <= 0xdfff
}

// ToUTF32 converts a keysym to its Unicode code point, or 0 ("no
// symbol") if it has none. Follows the reference fast-path + table
// order exactly: Latin-1 range, legacy special keysyms (encoded as
// `keysym & 0x7f`), the direct Unicode-offset range, then the legacy
// table.
func ToUTF32(ks Keysym) uint32 {
	k := uint32(ks)

	if (k >= 0x0020 && k <= 0x007e) || (k >= 0x00a0 && k <= 0x00ff) {
		return k
	}

	if ks == KeyKPSpace {
		return uint32(KeySpace) & 0x7f
	}

	if (k >= uint32(KeyBackSpace) && k <= uint32(KeyClear)) ||
		(k >= uint32(KeyKPMultiply) && k <= uint32(KeyKP9)) ||
		ks == KeyReturn || ks == KeyEscape || ks == KeyDelete ||
		ks == KeyKPTab || ks == KeyKPEnter || ks == KeyKPEqual {
		return k & 0x7f
	}

	if isSurrogate(k) {
		return 0
	}

	if k >= uint32(UnicodeOffset) && k <= uint32(UnicodeMax) {
		return k - uint32(UnicodeOffset)
	}

	if cp, ok := legacyToUCS(ks); ok {
		return uint32(cp)
	}
	return 0
}

// FromUTF32 converts a Unicode code point to a keysym, or NoSymbol if
// cp is zero, a surrogate, or out of the Unicode range.
func FromUTF32(cp uint32) Keysym {
	if (cp >= 0x0020 && cp <= 0x007e) || (cp >= 0x00a0 && cp <= 0x00ff) {
		return Keysym(cp)
	}

	if (cp >= (uint32(KeyBackSpace) & 0x7f) && cp <= (uint32(KeyClear) & 0x7f)) ||
		cp == (uint32(KeyReturn)&0x7f) || cp == (uint32(KeyEscape)&0x7f) {
		return Keysym(cp | 0xff00)
	}
	if cp == (uint32(KeyDelete) & 0x7f) {
		return KeyDelete
	}

	if cp == 0 || isSurrogate(cp) || cp > 0x10ffff {
		return NoSymbol
	}

	for _, e := range legacyTable {
		if uint32(e.ucs) == cp && !e.deprecated {
			return e.keysym
		}
	}

	return Keysym(cp) + UnicodeOffset
}

// ToUTF8 writes the UTF-8 encoding of ks's code point into buf (which
// must be at least Utf8MaxSize bytes) and returns the number of bytes
// written, or 0 if ks has no symbol.
func ToUTF8(ks Keysym, buf []byte) int {
	cp := ToUTF32(ks)
	if cp == 0 {
		return 0
	}
	return utf8.EncodeRune(buf, rune(cp))
}

func isUnicodeLower(r rune) bool {
	return unicode.IsLower(r)
}

func isUnicodeUpperOrTitle(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsTitle(r)
}
