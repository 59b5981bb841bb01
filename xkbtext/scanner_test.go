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

import "testing"

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	sc, err := NewScanner([]byte(src))
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	var toks []Token
	for {
		tok, err := sc.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestScannerIdentAndKeyName(t *testing.T) {
	toks := scanAll(t, `xkb_keycodes "foo" { <AE01> = 1; };`)
	if len(toks) == 0 {
		t.Fatal("expected tokens")
	}
	if toks[0].Kind != Ident || toks[0].Text != "xkb_keycodes" {
		t.Fatalf("tok0 = %+v", toks[0])
	}
	foundKeyName := false
	for _, tk := range toks {
		if tk.Kind == KeyName && tk.Text == "AE01" {
			foundKeyName = true
		}
	}
	if !foundKeyName {
		t.Fatal("expected key name token AE01")
	}
}

func TestScannerIntegers(t *testing.T) {
	toks := scanAll(t, "1 0x1F 3.5")
	if toks[0].Kind != Integer || toks[0].Int != 1 {
		t.Fatalf("tok0 = %+v", toks[0])
	}
	if toks[1].Kind != Integer || toks[1].Int != 0x1F {
		t.Fatalf("tok1 = %+v", toks[1])
	}
	if toks[2].Kind != Float || toks[2].Float != 3.5 {
		t.Fatalf("tok2 = %+v", toks[2])
	}
}

func TestScannerIntegerOverflow(t *testing.T) {
	sc, err := NewScanner([]byte("4294967296"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = sc.Next()
	if _, ok := err.(*IntegerOverflow); !ok {
		t.Fatalf("expected IntegerOverflow, got %v", err)
	}
}

func TestScannerStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\101\u{48}"`)
	if len(toks) != 1 || toks[0].Kind != String {
		t.Fatalf("toks = %+v", toks)
	}
	want := "a\nbA" + "H"
	if toks[0].Text != want {
		t.Fatalf("got %q want %q", toks[0].Text, want)
	}
}

func TestScannerInvalidUnicodeEscape(t *testing.T) {
	sc, _ := NewScanner([]byte(`"\u{D800}"`))
	_, err := sc.Next()
	if _, ok := err.(*InvalidEscape); !ok {
		t.Fatalf("expected InvalidEscape, got %v", err)
	}
}

func TestScannerRejectsUTF16(t *testing.T) {
	if _, err := NewScanner([]byte("\xff\xfe\x00\x00")); err != ErrNotUTF8 {
		t.Fatalf("expected ErrNotUTF8, got %v", err)
	}
	if _, err := NewScanner([]byte("\xfe\xff\x00\x00")); err != ErrNotUTF8 {
		t.Fatalf("expected ErrNotUTF8, got %v", err)
	}
}

func TestScannerAcceptsLeadingBOM(t *testing.T) {
	sc, err := NewScanner([]byte("\xef\xbb\xbfxkb_keycodes"))
	if err != nil {
		t.Fatal(err)
	}
	tok, err := sc.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Text != "xkb_keycodes" {
		t.Fatalf("got %q", tok.Text)
	}
}

func TestScannerOperators(t *testing.T) {
	toks := scanAll(t, "{ } [ ] ( ) , ; = + - * / ~ ! | . : < >")
	if len(toks) != 20 {
		t.Fatalf("got %d tokens", len(toks))
	}
	for _, tk := range toks {
		if tk.Kind != Op {
			t.Fatalf("tok %+v not Op", tk)
		}
	}
}

func TestScannerUnterminatedStringAtEOF(t *testing.T) {
	sc, _ := NewScanner([]byte(`"abc`))
	_, err := sc.Next()
	if err == nil {
		t.Fatal("expected error")
	}
}
