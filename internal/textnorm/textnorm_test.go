package textnorm

import (
	"reflect"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func mustNew(t *testing.T, form norm.Form, minLength int) *Subtokenizer {
	t.Helper()
	s, err := New(form, minLength)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestParseForm(t *testing.T) {
	tests := []struct {
		name string
		want norm.Form
	}{
		{"NFC", norm.NFC},
		{"nfd", norm.NFD},
		{"NFKC", norm.NFKC},
		{" nfkd ", norm.NFKD},
		{"", norm.NFKC},
	}
	for _, tt := range tests {
		got, err := ParseForm(tt.name)
		if err != nil {
			t.Fatalf("ParseForm(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("ParseForm(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := ParseForm("NFX"); err == nil {
		t.Fatal("ParseForm(NFX) should fail")
	}
}

func TestSubtokens(t *testing.T) {
	s := mustNew(t, norm.NFKC, 1)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"plain words", "The quick brown fox", []string{"the", "quick", "brown", "fox"}},
		{"punctuation separates", "end.of,line!", []string{"end", "of", "line"}},
		{"digits kept", "page 12 col 3", []string{"page", "12", "col", "3"}},
		{"symbols split from words", "5€ fee", []string{"5", "€", "fee"}},
		{"only punctuation", "... -- !!", []string{}},
		{"apostrophe splits", "l'année", []string{"l", "année"}},
		{"newlines and tabs", "a\tb\nc", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Subtokens(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Subtokens(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSubtokensAppliesNormalization(t *testing.T) {
	// NFKC folds the ﬁ ligature into "fi"; NFC leaves it alone.
	nfkc := mustNew(t, norm.NFKC, 1)
	if got := nfkc.Subtokens("ﬁne"); !reflect.DeepEqual(got, []string{"fine"}) {
		t.Fatalf("NFKC subtokens = %v", got)
	}
	nfc := mustNew(t, norm.NFC, 1)
	if got := nfc.Subtokens("ﬁne"); !reflect.DeepEqual(got, []string{"ﬁne"}) {
		t.Fatalf("NFC subtokens = %v", got)
	}
}

func TestSubtokensMinLength(t *testing.T) {
	s := mustNew(t, norm.NFKC, 2)
	got := s.Subtokens("a bb ccc d")
	if !reflect.DeepEqual(got, []string{"bb", "ccc"}) {
		t.Fatalf("min-length filter: got %v", got)
	}

	if _, err := New(norm.NFKC, 0); err == nil {
		t.Fatal("New with minLength 0 should fail")
	}
}

func TestTypes(t *testing.T) {
	got := Types([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Types = %v", got)
	}
	if got := Types(nil); len(got) != 0 {
		t.Fatalf("Types(nil) = %v", got)
	}
}

func TestSingleRuneHelpers(t *testing.T) {
	if !IsSingleLetter("a") || !IsSingleLetter("é") {
		t.Fatal("single letters not recognized")
	}
	if IsSingleLetter("ab") || IsSingleLetter("1") || IsSingleLetter("€") || IsSingleLetter("") {
		t.Fatal("non-letters classified as single letter")
	}
	if !IsSingleRune("€") || !IsSingleRune("1") {
		t.Fatal("single runes not recognized")
	}
	if IsSingleRune("ab") || IsSingleRune("") {
		t.Fatal("multi-rune or empty classified as single rune")
	}
}
