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

package parser

import (
	"fmt"
	"strings"

	"github.com/xkbgo/xkbcore/ast"
)

// parseIncludeSpec parses the quoted string argument of an `include`
// statement: `FILE(map)|FILE(map)+...` (spec §4.3). The leading term
// always carries MergeDefault (there is nothing before it to merge
// against); every subsequent term's leading `+`/`|` becomes its merge
// mode (`+` = augment, `|` = override), matching the source dialect's
// overloading of those operators inside include specs.
func parseIncludeSpec(spec string) ([]ast.IncludeTerm, error) {
	if spec == "" {
		return nil, fmt.Errorf("empty include spec")
	}
	var terms []ast.IncludeTerm
	i := 0
	merge := ast.MergeDefault
	for i < len(spec) {
		if i > 0 {
			switch spec[i] {
			case '+':
				merge = ast.MergeAugment
			case '|':
				merge = ast.MergeOverride
			default:
				return nil, fmt.Errorf("malformed include spec %q: expected '+' or '|' at offset %d", spec, i)
			}
			i++
		}
		start := i
		for i < len(spec) && spec[i] != '+' && spec[i] != '|' {
			i++
		}
		term := spec[start:i]
		file, mapName, err := splitFileMap(term)
		if err != nil {
			return nil, fmt.Errorf("malformed include spec %q: %w", spec, err)
		}
		terms = append(terms, ast.IncludeTerm{File: file, Map: mapName, Merge: merge})
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty include spec")
	}
	return terms, nil
}

func splitFileMap(term string) (file, mapName string, err error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", "", fmt.Errorf("empty include term")
	}
	open := strings.IndexByte(term, '(')
	if open < 0 {
		return term, "", nil
	}
	if !strings.HasSuffix(term, ")") {
		return "", "", fmt.Errorf("unbalanced parens in %q", term)
	}
	return term[:open], term[open+1 : len(term)-1], nil
}
