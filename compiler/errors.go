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

// Package compiler lowers a linker.Linked AST into a keymap.Keymap
// through five passes (spec §4.4): keycodes, types, compat, symbols,
// finalize. Compilation is all-or-nothing (spec §7): any CompileError
// means no Keymap is returned.
package compiler

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, matched with errors.Is, mirroring tcell's
// errors.go package-level sentinel style (SPEC_FULL.md §1).
var (
	ErrUndefinedKeyType   = errors.New("compiler: undefined key type")
	ErrUndefinedModifier  = errors.New("compiler: undefined modifier")
	ErrUndefinedKey       = errors.New("compiler: undefined key")
	ErrUndefinedIndicator = errors.New("compiler: undefined indicator")
	ErrUndefinedGroupName = errors.New("compiler: undefined group name")
	ErrReferenceBeyondMax = errors.New("compiler: reference beyond maximum")
)

// CompileError carries a wrapped sentinel kind and a detail message
// (spec §7); it records no source location. It is returned instead of
// a partially built Keymap.
type CompileError struct {
	Kind    error
	Detail  string
}

func (e *CompileError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Detail)
}

func (e *CompileError) Unwrap() error { return e.Kind }

func newError(kind error, detail string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Detail: fmt.Sprintf(detail, args...)}
}

// Diagnostic is a non-fatal compile-time note: a lenient fallback was
// taken (e.g. a key's referenced type was missing and ONE_LEVEL was
// substituted, spec §7) but compilation otherwise succeeded. Returned
// as a slice, never logged, matching how tcell's terminfo package
// returns errors/warnings instead of calling a logger (SPEC_FULL.md §1).
type Diagnostic struct {
	Message string
}
