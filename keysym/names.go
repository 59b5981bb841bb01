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

// Predefined names for the eight real modifiers, the common virtual
// modifiers, and the well-known LEDs. Grounded on
// include/xkbcommon/xkbcommon-names.h from the original implementation.
const (
	ModNameShift = "Shift"
	ModNameCaps  = "Lock"
	ModNameCtrl  = "Control"
	ModNameMod1  = "Mod1"
	ModNameMod2  = "Mod2"
	ModNameMod3  = "Mod3"
	ModNameMod4  = "Mod4"
	ModNameMod5  = "Mod5"

	VModNameAlt    = "Alt"
	VModNameHyper  = "Hyper"
	VModNameLevel3 = "LevelThree"
	VModNameLevel5 = "LevelFive"
	VModNameMeta   = "Meta"
	VModNameNum    = "NumLock"
	VModNameScroll = "ScrollLock"
	VModNameSuper  = "Super"

	LedNameNum     = "Num Lock"
	LedNameCaps    = "Caps Lock"
	LedNameScroll  = "Scroll Lock"
	LedNameCompose = "Compose"
	LedNameKana    = "Kana"
)

// LegacyVModReal maps the deprecated legacy names of common virtual
// modifiers to the real-modifier name they have traditionally bound to
// (Mod1 for Alt, Mod4 for Super/"Logo", Mod2 for NumLock). The compiler
// accepts these as synonyms when resolving virtual-modifier bindings
// that a source keymap leaves unspecified (§4.4.1).
var LegacyVModReal = map[string]string{
	VModNameAlt:   ModNameMod1,
	VModNameSuper: ModNameMod4,
	VModNameNum:   ModNameMod2,
}

// RealModifierNames lists the eight real modifiers in bit order.
var RealModifierNames = [8]string{
	ModNameShift, ModNameCaps, ModNameCtrl,
	ModNameMod1, ModNameMod2, ModNameMod3, ModNameMod4, ModNameMod5,
}

// DefaultVirtualModifierNames lists the common virtual modifiers,
// matching the historical set shipped by xkeyboard-config. A keymap is
// not pre-seeded with them: a virtual modifier exists only once the
// source declares or references it.
var DefaultVirtualModifierNames = []string{
	VModNameAlt, VModNameMeta, VModNameSuper, VModNameHyper,
	VModNameNum, VModNameScroll, VModNameLevel3, VModNameLevel5,
}
