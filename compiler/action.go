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

package compiler

import (
	"github.com/xkbgo/xkbcore/ast"
	"github.com/xkbgo/xkbcore/keymap"
	"github.com/xkbgo/xkbcore/xkbtext"
)

// actionKinds maps a folded action name (and its legacy aliases) to
// the keymap-level kind (spec §4.4.3).
var actionKinds = map[string]keymap.ActionKind{
	"noaction":          keymap.ActionNone,
	"voidaction":        keymap.ActionVoid,
	"setmods":           keymap.ActionSetMods,
	"latchmods":         keymap.ActionLatchMods,
	"lockmods":          keymap.ActionLockMods,
	"setgroup":          keymap.ActionSetGroup,
	"latchgroup":        keymap.ActionLatchGroup,
	"lockgroup":         keymap.ActionLockGroup,
	"movepointer":       keymap.ActionMovePointer,
	"moveptr":           keymap.ActionMovePointer,
	"pointerbutton":     keymap.ActionPointerButton,
	"ptrbtn":            keymap.ActionPointerButton,
	"lockpointerbutton": keymap.ActionLockPointerButton,
	"lockptrbtn":        keymap.ActionLockPointerButton,
	"setpointerdefault": keymap.ActionSetPointerDefault,
	"setptrdflt":        keymap.ActionSetPointerDefault,
	"setcontrols":       keymap.ActionSetControls,
	"lockcontrols":      keymap.ActionLockControls,
	"terminateserver":   keymap.ActionTerminateServer,
	"terminate":         keymap.ActionTerminateServer,
	"switchscreen":      keymap.ActionSwitchScreen,
	"redirectkey":       keymap.ActionRedirectKey,
	"redirect":          keymap.ActionRedirectKey,
	"private":           keymap.ActionPrivate,
	"isolock":           keymap.ActionISOLock,
	"devicebutton":      keymap.ActionDeviceButton,
	"devbtn":            keymap.ActionDeviceButton,
	"devicevaluator":    keymap.ActionDeviceValuator,
	"devval":            keymap.ActionDeviceValuator,
	"actionmessage":     keymap.ActionMessage,
	"messageaction":     keymap.ActionMessage,
	"message":           keymap.ActionMessage,
}

var controlBits = map[string]keymap.Controls{
	"repeatkeys":      keymap.ControlRepeatKeys,
	"repeat":          keymap.ControlRepeatKeys,
	"autorepeat":      keymap.ControlRepeatKeys,
	"stickykeys":      keymap.ControlStickyKeys,
	"slowkeys":        keymap.ControlSlowKeys,
	"bouncekeys":      keymap.ControlBounceKeys,
	"mousekeys":       keymap.ControlMouseKeys,
	"mousekeysaccel":  keymap.ControlMouseKeysAccel,
	"accessxkeys":     keymap.ControlAccessXKeys,
	"accessxtimeout":  keymap.ControlAccessXTimeout,
	"accessxfeedback": keymap.ControlAccessXFeedback,
	"audiblebell":     keymap.ControlAudibleBell,
	"overlay1":        keymap.ControlOverlay1,
	"overlay2":        keymap.ControlOverlay2,
	"ignoregrouplock": keymap.ControlIgnoreGroupLock,
	"latchtolock":     keymap.ControlStickyKeysLatchToLock,
	"twokeys":         keymap.ControlStickyKeysTwoKeys,
	"all":             keymap.KnownControls,
	"none":            0,
}

// decodeAction lowers a parsed `Name(arg=val, ...)` call into the
// keymap Action union. Unknown action names and unknown field names
// are hard errors (spec §9: "reject on unknown action field names").
// modMapMods defers to the key's modifier-map mask; the caller passes
// it for symbols-attached actions and zero for interpret templates
// (interpret templates are re-instantiated per key).
func (c *compileCtx) decodeAction(ae *ast.ActionExpr, modMapMods keymap.ModMask) (keymap.Action, error) {
	if ae == nil {
		return keymap.Action{Kind: keymap.ActionNone}, nil
	}
	kind, ok := actionKinds[xkbtext.FoldKeyword(ae.Name)]
	if !ok {
		return keymap.Action{}, newError(ErrUndefinedModifier, "unknown action %q", ae.Name)
	}
	a := keymap.Action{Kind: kind}
	for _, arg := range ae.Args {
		if err := c.decodeActionArg(&a, arg, modMapMods); err != nil {
			return keymap.Action{}, err
		}
	}
	return a, nil
}

func (c *compileCtx) decodeActionArg(a *keymap.Action, arg ast.ActionArg, modMapMods keymap.ModMask) error {
	name := xkbtext.FoldKeyword(arg.Name)
	switch name {
	case "modifiers", "mods":
		if isIdentNamed(arg.Value, "modmapmods") {
			a.Mods = modMapMods
			a.Flags |= keymap.FlagISOLockUseModMapMods
			return nil
		}
		a.Mods = c.evalModMask(arg.Value)
		return nil
	case "clearmodifiers", "clearmods":
		a.ModsClear = c.evalModMask(arg.Value)
		return nil
	case "clearlocks":
		setFlag(a, keymap.FlagClearLocks, evalBoolIdent(arg.Value))
		return nil
	case "latchtolock":
		setFlag(a, keymap.FlagLatchToLock, evalBoolIdent(arg.Value))
		return nil
	case "unlockonpress", "unlock":
		setFlag(a, keymap.FlagUnlockOnPress, evalBoolIdent(arg.Value))
		return nil
	case "lockonrelease":
		setFlag(a, keymap.FlagUnlockOnPress, !evalBoolIdent(arg.Value))
		return nil
	case "group":
		if arg.Value != nil && arg.Value.Kind == ast.ExprIdent {
			if n, ok := groupNameToIndexCompiler(arg.Value.Ident); ok &&
				c.opts.FormatVersion < 2 && n >= maxGroupsV1 {
				return newError(ErrUndefinedGroupName, "group name %s not valid in format v1", arg.Value.Ident)
			}
		}
		ref := c.evalGroupExpr(arg.Value, c.km.NumGroups())
		if ref.Absolute {
			a.Flags |= keymap.FlagGroupAbsolute
			a.GroupAbs = ref.Value
		} else {
			a.Flags &^= keymap.FlagGroupAbsolute
			a.GroupDelta = ref.Value
		}
		return nil
	case "affect":
		switch a.Kind {
		case keymap.ActionSetControls, keymap.ActionLockControls:
			a.Affect = c.evalControlMask(arg.Value)
		case keymap.ActionLockMods, keymap.ActionISOLock:
			switch foldIdent(arg.Value) {
			case "lock":
				a.Flags |= keymap.FlagISOLockNoUnlock
			case "unlock":
				a.Flags |= keymap.FlagISOLockNoLock
			case "both", "all":
				a.Flags &^= keymap.FlagISOLockNoLock | keymap.FlagISOLockNoUnlock
			case "neither", "none":
				a.Flags |= keymap.FlagISOLockNoLock | keymap.FlagISOLockNoUnlock
			default:
				return newError(ErrUndefinedModifier, "bad affect value in %v", a.Kind)
			}
		default:
			return newError(ErrUndefinedModifier, "affect= not valid for this action")
		}
		return nil
	case "controls":
		a.Controls = c.evalControlMask(arg.Value)
		if a.Affect == 0 {
			a.Affect = a.Controls
		}
		return nil
	case "keycode", "key", "kc":
		return c.decodeKeycodeArg(a, arg.Value)
	case "button":
		a.Button = int(evalInt(arg.Value))
		return nil
	case "count":
		a.Count = int(evalInt(arg.Value))
		return nil
	case "x":
		a.DX = int(evalInt(arg.Value))
		return nil
	case "y":
		a.DY = int(evalInt(arg.Value))
		return nil
	case "accel", "accelerate", "repeat":
		// Pointer acceleration flags carry no state-machine meaning
		// here; accepted for source compatibility.
		return nil
	case "screen":
		a.Screen = int(evalInt(arg.Value))
		return nil
	case "same", "sameserver":
		a.Same = evalBoolIdent(arg.Value)
		return nil
	case "type":
		if a.Kind == keymap.ActionPrivate {
			v := evalInt(arg.Value)
			a.Private[0] = byte(v)
			return nil
		}
		return newError(ErrUndefinedModifier, "type= not valid for this action")
	case "data":
		if a.Kind == keymap.ActionPrivate {
			var s string
			if arg.Value != nil && arg.Value.Kind == ast.ExprString {
				s = arg.Value.Str
			}
			for i := 0; i < len(s) && i < len(a.Private)-1; i++ {
				a.Private[i+1] = s[i]
			}
			return nil
		}
		if a.Kind == keymap.ActionMessage {
			if arg.Value != nil && arg.Value.Kind == ast.ExprString {
				a.Message = arg.Value.Str
			}
			return nil
		}
		return newError(ErrUndefinedModifier, "data= not valid for this action")
	case "device", "dev":
		if a.Kind == keymap.ActionDeviceButton || a.Kind == keymap.ActionDeviceValuator {
			a.Valuator = int(evalInt(arg.Value))
			return nil
		}
		return newError(ErrUndefinedModifier, "device= not valid for this action")
	}
	return newError(ErrUndefinedModifier, "unknown field %q in action %v", arg.Name, a.Kind)
}

func (c *compileCtx) decodeKeycodeArg(a *keymap.Action, v *ast.Expr) error {
	if v == nil {
		return newError(ErrUndefinedKey, "missing keycode value")
	}
	switch v.Kind {
	case ast.ExprKeyName:
		if key, ok := c.km.KeyByName(v.Str); ok {
			a.Keycode = key.Keycode
			return nil
		}
		// The keycodes pass has already run, so an unknown name here
		// is genuinely absent: degrade to NoAction (spec §4.6.3).
		c.warn("redirect target <%s> does not exist", v.Str)
		a.Kind = keymap.ActionNone
		return nil
	case ast.ExprInt:
		if uint64(v.Int) > uint64(keymap.MaxKeycode) {
			return newError(ErrReferenceBeyondMax, "keycode %d exceeds MAX_KEYCODE", v.Int)
		}
		a.Keycode = uint32(v.Int)
		return nil
	}
	return newError(ErrUndefinedKey, "bad keycode argument")
}

// evalControlMask interprets e as a controls bitset expression: one or
// more control names joined by `+`/`|`. Unknown control names are
// ignored (spec §7: "update_controls with unknown bits ignores them",
// applied at decode time for symmetry).
func (c *compileCtx) evalControlMask(e *ast.Expr) keymap.Controls {
	if e == nil {
		return 0
	}
	switch e.Kind {
	case ast.ExprIdent:
		if bits, ok := controlBits[xkbtext.FoldKeyword(e.Ident)]; ok {
			return bits
		}
		c.warn("unknown control %q", e.Ident)
		return 0
	case ast.ExprInt:
		return keymap.Controls(e.Int) & keymap.KnownControls
	case ast.ExprSum, ast.ExprUnion:
		return c.evalControlMask(e.Lhs) | c.evalControlMask(e.Rhs)
	case ast.ExprNot:
		return ^c.evalControlMask(e.Sub) & keymap.KnownControls
	case ast.ExprGroup:
		return c.evalControlMask(e.Sub)
	}
	return 0
}

func setFlag(a *keymap.Action, f keymap.ActionFlags, on bool) {
	if on {
		a.Flags |= f
	} else {
		a.Flags &^= f
	}
}

func isIdentNamed(e *ast.Expr, folded string) bool {
	return e != nil && e.Kind == ast.ExprIdent && xkbtext.FoldKeyword(e.Ident) == folded
}

func foldIdent(e *ast.Expr) string {
	if e == nil || e.Kind != ast.ExprIdent {
		return ""
	}
	return xkbtext.FoldKeyword(e.Ident)
}
