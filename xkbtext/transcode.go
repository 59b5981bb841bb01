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
	"unicode/utf8"

	gencoding "github.com/gdamore/encoding"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// legacyCharsets are the encodings legacy keymap fragments are known
// to ship in. Lookup is by the names include metadata uses.
var legacyCharsets = map[string]encoding.Encoding{
	"ISO8859-1":    gencoding.ISO8859_1,
	"ISO-8859-1":   gencoding.ISO8859_1,
	"Latin1":       gencoding.ISO8859_1,
	"US-ASCII":     gencoding.ASCII,
	"ASCII":        gencoding.ASCII,
	"CP1252":       charmap.Windows1252,
	"Windows-1252": charmap.Windows1252,
}

// TranscodeLegacy converts a keymap source fragment from a legacy
// single-byte charset to the UTF-8 the scanner requires. Input that
// is already valid UTF-8 passes through unchanged; an unknown charset
// name or a decode failure returns ErrNotUTF8. This is a front-end
// convenience for feeding old component files into NewScanner, not a
// scanner encoding mode.
func TranscodeLegacy(src []byte, charset string) ([]byte, error) {
	if utf8.Valid(src) {
		return src, nil
	}
	enc, ok := legacyCharsets[charset]
	if !ok {
		return nil, ErrNotUTF8
	}
	out, err := enc.NewDecoder().Bytes(src)
	if err != nil {
		return nil, ErrNotUTF8
	}
	return out, nil
}
