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

import "golang.org/x/text/unicode/norm"

// NormalizeLiteral canonicalizes a scanned string literal (the content
// between quotes in an `xkb_symbols` declaration, after escape
// processing) to Unicode Normalization Form C before it reaches the
// atom-intern table. Source files are authored in a variety of editors
// and a keysym name or embedded symbol text that is visually identical
// but differently composed would otherwise intern as a distinct atom.
func NormalizeLiteral(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
