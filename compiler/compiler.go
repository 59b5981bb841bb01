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
	"fmt"

	"github.com/xkbgo/xkbcore/keymap"
	"github.com/xkbgo/xkbcore/linker"
)

// Options configures a Compile call (spec SPEC_FULL.md §1's
// CompileOptions, mirroring tcell's NewTerminfoFromBuf option-struct
// pattern).
type Options struct {
	// FormatVersion selects v1 (strict Group-name resolution) or v2
	// (relaxed keysym syntax, larger group-name leniency), spec §3.3
	// invariant 5 and §6.1. Defaults to 1.
	FormatVersion int

	// Lenient, when true, lets individual unresolved
	// references that the spec explicitly permits to degrade (a key's
	// missing type) fall back instead of aborting compilation (spec §7).
	Lenient bool
}

func (o Options) formatVersion() int {
	if o.FormatVersion == 0 {
		return 1
	}
	return o.FormatVersion
}

type compileCtx struct {
	km    *keymap.Keymap
	opts  Options
	diags []Diagnostic

	// modifier_map members that named a keysym instead of a key;
	// resolved in finalize once symbols are bound (spec §4.4 item 5).
	modMapSyms []pendingModMap

	// file-scoped `key.type[...] = "..."` defaults from the symbols
	// section, 0 keyed for the all-groups form.
	defaultTypes map[int]string
}

// Compile runs the five lowering passes over a linked AST (spec §4.4)
// and returns the resulting immutable Keymap plus any non-fatal
// diagnostics. On any CompileError the Keymap return is nil (spec §7:
// "Compilation is all-or-nothing").
func Compile(linked *linker.Linked, opts Options) (*keymap.Keymap, []Diagnostic, error) {
	opts.FormatVersion = opts.formatVersion()
	km := keymap.NewEmpty(opts.FormatVersion)
	c := &compileCtx{km: km, opts: opts}

	if linked.Keycodes != nil {
		if err := c.compileKeycodes(linked.Keycodes); err != nil {
			return nil, nil, err
		}
	}
	if linked.Types != nil {
		if err := c.compileTypes(linked.Types); err != nil {
			return nil, nil, err
		}
	}
	if linked.Compat != nil {
		if err := c.compileCompat(linked.Compat); err != nil {
			return nil, nil, err
		}
	}
	if linked.Symbols != nil {
		if err := c.compileSymbols(linked.Symbols); err != nil {
			return nil, nil, err
		}
	}
	if err := c.finalize(); err != nil {
		return nil, nil, err
	}
	km.MarkFinalized()
	return km, c.diags, nil
}

func (c *compileCtx) warn(format string, args ...interface{}) {
	c.diags = append(c.diags, Diagnostic{Message: fmt.Sprintf(format, args...)})
}
