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

import "testing"

func TestLatin1RoundTrip(t *testing.T) {
	for cp := uint32(0x20); cp <= 0x7e; cp++ {
		ks := FromUTF32(cp)
		if got := ToUTF32(ks); got != cp {
			t.Errorf("cp %#x: round trip got %#x", cp, got)
		}
	}
}

func TestUnicodeDirectRoundTrip(t *testing.T) {
	cases := []uint32{0x100, 0x1234, 0x10000, 0x10ffff}
	for _, cp := range cases {
		ks := FromUTF32(cp)
		if got := ToUTF32(ks); got != cp {
			t.Errorf("cp %#x: round trip got %#x via keysym %#x", cp, got, ks)
		}
	}
}

func TestSurrogatesRejected(t *testing.T) {
	if ks := FromUTF32(0xd800); ks != NoSymbol {
		t.Errorf("surrogate accepted: %#x", ks)
	}
	if got := ToUTF32(Keysym(0xd800)); got != 0 {
		t.Errorf("surrogate keysym converted: %#x", got)
	}
}

func TestNamedKeysymLookup(t *testing.T) {
	if ks := NameToKeysym("space", false); ks != KeySpace {
		t.Fatalf("space: got %#x", ks)
	}
	if ks := NameToKeysym("a", false); ks != KeyA {
		t.Fatalf("a: got %#x", ks)
	}
	if ks := NameToKeysym("SPACE", true); ks != KeySpace {
		t.Fatalf("case-insensitive space: got %#x", ks)
	}
	if ks := NameToKeysym("SPACE", false); ks != NoSymbol {
		t.Fatalf("case-sensitive SPACE should miss, got %#x", ks)
	}
}

func TestSpecialKeysymUTF32(t *testing.T) {
	if got := ToUTF32(KeyReturn); got != '\r' {
		t.Errorf("Return: got %#x", got)
	}
	if got := ToUTF32(KeyEscape); got != 0x1b {
		t.Errorf("Escape: got %#x", got)
	}
	if got := ToUTF32(KeyDelete); got != 0x7f {
		t.Errorf("Delete: got %#x", got)
	}
}

func TestLegacyTableLookup(t *testing.T) {
	if got := ToUTF32(Keysym(0x20ac)); got != 0x20ac {
		t.Errorf("EuroSign: got %#x", got)
	}
	if got := ToUTF32(Keysym(0x13bc)); got != 0x0152 {
		t.Errorf("OE: got %#x", got)
	}
}
