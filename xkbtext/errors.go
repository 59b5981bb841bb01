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

package xkbtext

import (
	"errors"
	"fmt"
)

// ErrNotUTF8 is returned by NewScanner when the source begins with a
// UTF-16 byte-order mark or a leading byte that cannot start a UTF-8
// keymap source (spec §4.1, error kind EncodingError).
var ErrNotUTF8 = errors.New("xkbtext: input is not UTF-8 keymap source")

// SyntaxError reports a lexical error with its source position, per
// spec §7's (line, column, snippet) requirement.
type SyntaxError struct {
	Line    int
	Column  int
	Snippet string
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %q", e.Line, e.Column, e.Msg, e.Snippet)
}

// IntegerOverflow is returned when a scanned integer literal does not
// fit in the width the grammar promises (32 bits, or explicitly 64).
type IntegerOverflow struct {
	Line, Column int
	Text         string
}

func (e *IntegerOverflow) Error() string {
	return fmt.Sprintf("%d:%d: integer literal %q overflows", e.Line, e.Column, e.Text)
}

// InvalidEscape is returned for a malformed string-literal escape
// sequence (spec §7).
type InvalidEscape struct {
	Line, Column int
	Text         string
}

func (e *InvalidEscape) Error() string {
	return fmt.Sprintf("%d:%d: invalid escape sequence %q", e.Line, e.Column, e.Text)
}
