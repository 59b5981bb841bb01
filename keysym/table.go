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

// extendedNames carries the named keysyms beyond the seed table in
// keysym.go: ASCII punctuation (whose canonical names are words, not
// the character itself), the keypad family, function and navigation
// keys, and the ISO group/level shift machinery the symbols compiler
// meets in ordinary layouts. Merged into the lookup maps at package
// init.
var extendedNames = map[string]Keysym{
	"exclam":       0x0021,
	"quotedbl":     0x0022,
	"numbersign":   0x0023,
	"dollar":       0x0024,
	"percent":      0x0025,
	"ampersand":    0x0026,
	"apostrophe":   0x0027,
	"parenleft":    0x0028,
	"parenright":   0x0029,
	"asterisk":     0x002a,
	"plus":         0x002b,
	"comma":        0x002c,
	"minus":        0x002d,
	"period":       0x002e,
	"slash":        0x002f,
	"colon":        0x003a,
	"semicolon":    0x003b,
	"less":         0x003c,
	"equal":        0x003d,
	"greater":      0x003e,
	"question":     0x003f,
	"at":           0x0040,
	"bracketleft":  0x005b,
	"backslash":    0x005c,
	"bracketright": 0x005d,
	"asciicircum":  0x005e,
	"underscore":   0x005f,
	"grave":        0x0060,
	"braceleft":    0x007b,
	"bar":          0x007c,
	"braceright":   0x007d,
	"asciitilde":   0x007e,

	"nobreakspace": 0x00a0,
	"EuroSign":     0x20ac,

	"Linefeed":  0xff0a,
	"Pause":     0xff13,
	"Sys_Req":   0xff15,
	"Multi_key": 0xff20,

	"Home":      0xff50,
	"Left":      0xff51,
	"Up":        0xff52,
	"Right":     0xff53,
	"Down":      0xff54,
	"Prior":     0xff55,
	"Page_Up":   0xff55,
	"Next":      0xff56,
	"Page_Down": 0xff56,
	"End":       0xff57,
	"Begin":     0xff58,

	"Select":  0xff60,
	"Print":   0xff61,
	"Execute": 0xff62,
	"Insert":  0xff63,
	"Undo":    0xff65,
	"Redo":    0xff66,
	"Menu":    0xff67,
	"Find":    0xff68,
	"Cancel":  0xff69,
	"Help":    0xff6a,
	"Break":   0xff6b,

	"Mode_switch": 0xff7e,

	"KP_F1":        0xff91,
	"KP_F2":        0xff92,
	"KP_F3":        0xff93,
	"KP_F4":        0xff94,
	"KP_Home":      0xff95,
	"KP_Left":      0xff96,
	"KP_Up":        0xff97,
	"KP_Right":     0xff98,
	"KP_Down":      0xff99,
	"KP_Prior":     0xff9a,
	"KP_Next":      0xff9b,
	"KP_End":       0xff9c,
	"KP_Begin":     0xff9d,
	"KP_Insert":    0xff9e,
	"KP_Delete":    0xff9f,
	"KP_Add":       0xffab,
	"KP_Separator": 0xffac,
	"KP_Subtract":  0xffad,
	"KP_Decimal":   0xffae,
	"KP_Divide":    0xffaf,
	"KP_1":         0xffb1,
	"KP_2":         0xffb2,
	"KP_3":         0xffb3,
	"KP_4":         0xffb4,
	"KP_5":         0xffb5,
	"KP_6":         0xffb6,
	"KP_7":         0xffb7,
	"KP_8":         0xffb8,

	"F1":  0xffbe,
	"F2":  0xffbf,
	"F3":  0xffc0,
	"F4":  0xffc1,
	"F5":  0xffc2,
	"F6":  0xffc3,
	"F7":  0xffc4,
	"F8":  0xffc5,
	"F9":  0xffc6,
	"F10": 0xffc7,
	"F11": 0xffc8,
	"F12": 0xffc9,

	"Meta_L":  0xffe7,
	"Meta_R":  0xffe8,
	"Hyper_L": 0xffed,
	"Hyper_R": 0xffee,

	"ISO_Lock":            0xfe01,
	"ISO_Level2_Latch":    0xfe02,
	"ISO_Level3_Shift":    0xfe03,
	"ISO_Level3_Latch":    0xfe04,
	"ISO_Level3_Lock":     0xfe05,
	"ISO_Group_Latch":     0xfe06,
	"ISO_Group_Lock":      0xfe07,
	"ISO_Next_Group":      0xfe08,
	"ISO_Next_Group_Lock": 0xfe09,
	"ISO_Prev_Group":      0xfe0a,
	"ISO_Prev_Group_Lock": 0xfe0b,
	"ISO_First_Group":     0xfe0c,
	"ISO_First_Group_Lock": 0xfe0d,
	"ISO_Last_Group":      0xfe0e,
	"ISO_Last_Group_Lock": 0xfe0f,
	"ISO_Level5_Shift":    0xfe11,
	"ISO_Level5_Latch":    0xfe12,
	"ISO_Level5_Lock":     0xfe13,
}
