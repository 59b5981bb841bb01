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

// Package xkbintern is the string-intern ("atom") table, the single
// piece of process-wide mutable state the core's design allows (spec
// §5, §9). Keymap names, key names, key-type names, and virtual
// modifier names are all interned here so that downstream tables can
// compare names by a cheap integer rather than a string.
package xkbintern

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Atom is an interned string handle. The zero Atom never corresponds to
// a real string ("no name").
type Atom uint32

// Table is a bidirectional string<->Atom interning table. The zero
// value is ready to use. A Table may be shared by multiple concurrent
// compilations; Intern is safe to call from multiple goroutines, which
// matters because compilation of independent keymaps is the one place
// the core's single-threaded-per-object rule (spec §5) allows genuine
// concurrency — each compile owns its own keymap and state, but all of
// them may share one process-wide atom table.
type Table struct {
	mu      sync.RWMutex
	byName  map[string]Atom
	byAtom  []string
	inflight singleflight.Group
}

// shared is the process-wide table (spec §5, §9: the one piece of
// global state the core allows). Embedders that want fully isolated
// instances construct their own Table instead.
var shared = NewTable()

// Shared returns the process-wide atom table.
func Shared() *Table { return shared }

// NewTable constructs an empty interning table. The zero value also
// works; NewTable exists for symmetry with the rest of the package's
// constructors and to pre-size the tables.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]Atom, 256),
		byAtom: make([]string, 1, 256), // index 0 reserved, never assigned
	}
}

func (t *Table) ensure() {
	if t.byName == nil {
		t.byName = make(map[string]Atom, 256)
		t.byAtom = make([]string, 1, 256)
	}
}

// Intern returns the Atom for name, allocating a new one if this is the
// first time name has been seen. Concurrent first-interns of the same
// name are coalesced via singleflight so only one allocation wins.
func (t *Table) Intern(name string) Atom {
	if name == "" {
		return 0
	}
	t.mu.RLock()
	if t.byName != nil {
		if a, ok := t.byName[name]; ok {
			t.mu.RUnlock()
			return a
		}
	}
	t.mu.RUnlock()

	v, _, _ := t.inflight.Do(name, func() (interface{}, error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.ensure()
		if a, ok := t.byName[name]; ok {
			return a, nil
		}
		a := Atom(len(t.byAtom))
		t.byAtom = append(t.byAtom, name)
		t.byName[name] = a
		return a, nil
	})
	return v.(Atom)
}

// Lookup returns the Atom for name without allocating one, and whether
// it was found.
func (t *Table) Lookup(name string) (Atom, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.byName == nil {
		return 0, false
	}
	a, ok := t.byName[name]
	return a, ok
}

// Text returns the string a previously interned Atom stands for, or ""
// for the zero Atom or an Atom from a different table.
func (t *Table) Text(a Atom) string {
	if a == 0 {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(a) >= len(t.byAtom) {
		return ""
	}
	return t.byAtom[a]
}

// Len reports the number of distinct non-zero atoms interned so far.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.byAtom == nil {
		return 0
	}
	return len(t.byAtom) - 1
}
