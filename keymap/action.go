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

// ActionKind tags the variant of an Action (spec §4.4.3).
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionVoid
	ActionSetMods
	ActionLatchMods
	ActionLockMods
	ActionSetGroup
	ActionLatchGroup
	ActionLockGroup
	ActionMovePointer
	ActionPointerButton
	ActionLockPointerButton
	ActionSetPointerDefault
	ActionSetControls
	ActionLockControls
	ActionTerminateServer
	ActionSwitchScreen
	ActionRedirectKey
	ActionPrivate
	ActionISOLock
	ActionDeviceButton
	ActionDeviceValuator
	ActionMessage
)

// ActionFlags are the kind-specific bits carried alongside an Action
// (spec §4.4.3: "flags byte whose bits are specific to the kind").
type ActionFlags uint16

const (
	FlagClearLocks ActionFlags = 1 << iota
	FlagLatchToLock
	FlagUnlockOnPress
	FlagGroupAbsolute
	FlagISOLockNoLock
	FlagISOLockNoUnlock
	FlagISOLockUseModMapMods
	FlagISOLockGroupLock
)

// FlagLockOnRelease is the same bit as FlagUnlockOnPress read with the
// opposite sense; see Action.LockOnRelease().
const FlagLockOnRelease = FlagUnlockOnPress

// Action is the tagged union of every action variant the compat/
// symbols compiler can attach to a key level (spec §4.4.3). Only the
// fields relevant to Kind are meaningful; this mirrors the teacher's
// single-struct tagged-field style for events (vt.KbdEvent) rather
// than one Go type per variant (SPEC_FULL.md §0/§3.4).
type Action struct {
	Kind  ActionKind
	Flags ActionFlags

	Mods ModMask // SetMods/LatchMods/LockMods, RedirectKey mods_set
	ModsClear ModMask // RedirectKey mods_clear

	GroupDelta int32 // SetGroup/LatchGroup/LockGroup: signed relative delta
	GroupAbs   int32 // ...or absolute index, selected by FlagGroupAbsolute

	Keycode uint32 // RedirectKey target, DeviceButton

	Button int // PointerButton/LockPointerButton/DeviceButton
	Count  int // PointerButton click count
	DX, DY int // MovePointer

	Affect   Controls // SetControls/LockControls: which bits
	Controls Controls // ...and their new values

	Screen int // SwitchScreen
	Same   bool

	Private [7]byte // opaque Private action payload

	Message string // ActionMessage (legacy)
	Valuator int    // DeviceValuator
}

// LockOnRelease reports whether a LockMods action toggles its mask on
// the matching KeyUp (the default) or is suppressed via the
// lockOnRelease=false flag (spec §4.6.3).
func (a Action) LockOnRelease() bool {
	return a.Flags&FlagUnlockOnPress == 0
}
