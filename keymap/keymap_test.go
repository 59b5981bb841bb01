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

import (
	"testing"
)

func TestWrapGroupProperty(t *testing.T) {
	// Spec §8.1: f(g, 0) = 0; otherwise 0 <= f < N with f ≡ g (mod N)
	// and a non-negative remainder.
	for _, n := range []int{0, 1, 2, 3, 4, 7, 32} {
		for g := int32(-70); g <= 70; g++ {
			f := WrapGroup(g, n)
			if n == 0 {
				if f != 0 {
					t.Fatalf("WrapGroup(%d, 0) = %d", g, f)
				}
				continue
			}
			if f < 0 || f >= n {
				t.Fatalf("WrapGroup(%d, %d) = %d out of range", g, n, f)
			}
			if (int(g)-f)%n != 0 {
				t.Fatalf("WrapGroup(%d, %d) = %d not congruent", g, n, f)
			}
		}
	}
}

func TestWrapGroupExamples(t *testing.T) {
	cases := []struct {
		g    int32
		n    int
		want int
	}{
		{0, 3, 0},
		{2, 3, 2},
		{3, 3, 0},
		{5, 3, 2},
		{-1, 3, 2},
		{-4, 3, 2},
		{7, 0, 0},
	}
	for _, c := range cases {
		if got := WrapGroup(c.g, c.n); got != c.want {
			t.Errorf("WrapGroup(%d, %d) = %d, want %d", c.g, c.n, got, c.want)
		}
	}
}

func TestRefCounting(t *testing.T) {
	km := NewEmpty(1)
	km.Ref()
	km.Unref()
	if len(km.Types) == 0 {
		t.Fatalf("tables freed while a reference is still held")
	}
	km.Unref()
	if km.Types != nil {
		t.Fatalf("tables not freed on last unref")
	}
}

func TestCanonicalTypesAlwaysPresent(t *testing.T) {
	km := NewEmpty(1)
	defer km.Unref()
	for _, name := range []string{TypeOneLevel, TypeTwoLevel, TypeAlphabetic, TypeKeypad} {
		if _, ok := km.TypeByName(name); !ok {
			t.Errorf("canonical type %s missing", name)
		}
	}
}

func TestNumGroupsFromWidestKey(t *testing.T) {
	km := NewEmpty(1)
	defer km.Unref()
	km.AddKey(Key{Keycode: 1, Name: "A", Groups: make([]KeyGroupBinding, 1)})
	km.AddKey(Key{Keycode: 2, Name: "B", Groups: make([]KeyGroupBinding, 3)})
	if n := km.NumGroups(); n != 3 {
		t.Fatalf("NumGroups = %d", n)
	}
}
