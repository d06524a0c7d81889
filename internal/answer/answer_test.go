package answer

import (
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/conorfennell/knolcard/internal/domain"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  To   Eat \r\n quickly ")
	expected := "to eat quickly"
	if got != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, got)
	}
}

func TestNormalizeComposesHangul(t *testing.T) {
	decomposed := norm.NFD.String("고양이")
	if decomposed == "고양이" {
		t.Fatal("test input should be decomposed")
	}
	if got := Normalize(decomposed); got != "고양이" {
		t.Errorf("Normalize(NFD) = %q, want %q", got, "고양이")
	}
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
		given    string
		want     bool
	}{
		{name: "exact", expected: "apple", given: "apple", want: true},
		{name: "case and spacing", expected: "to eat", given: "  To  Eat ", want: true},
		{name: "hangul", expected: "사과", given: "사과", want: true},
		{name: "hangul spacing", expected: "안녕 하세요", given: "안녕  하세요", want: true},
		{name: "decomposed jamo answer", expected: "사과", given: norm.NFD.String("사과"), want: true},
		{name: "decomposed jamo expected", expected: "\u1106\u116e\u11af", given: "물", want: true},
		{name: "decomposed wrong word", expected: "사과", given: norm.NFD.String("사자"), want: false},
		{name: "wrong word", expected: "apple", given: "pear", want: false},
		{name: "empty answer", expected: "apple", given: "   ", want: false},
		{name: "partial", expected: "to eat", given: "eat", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.expected, tc.given); got != tc.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tc.expected, tc.given, got, tc.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Run("fingerprint is deterministic", func(t *testing.T) {
		a := domain.Card{OriginalText: "물", TranslatedText: "water"}
		b := domain.Card{OriginalText: "물", TranslatedText: "water"}
		if Fingerprint(a) != Fingerprint(b) {
			t.Error("Expected fingerprints for identical cards to be the same")
		}
	})

	t.Run("normalization produces same fingerprint", func(t *testing.T) {
		a := domain.Card{OriginalText: " 물 ", TranslatedText: "Water"}
		b := domain.Card{OriginalText: "물", TranslatedText: "water", Tag: domain.TagNoun}
		if Fingerprint(a) != Fingerprint(b) {
			t.Error("Expected fingerprints to be the same after normalization, but they were different.")
		}
	})

	t.Run("decomposed text shares a fingerprint", func(t *testing.T) {
		a := domain.Card{OriginalText: norm.NFD.String("물"), TranslatedText: "water"}
		b := domain.Card{OriginalText: "물", TranslatedText: "water"}
		if Fingerprint(a) != Fingerprint(b) {
			t.Error("Expected NFD and NFC text to fingerprint the same")
		}
	})

	t.Run("sides do not run together", func(t *testing.T) {
		a := domain.Card{OriginalText: "ab", TranslatedText: "c"}
		b := domain.Card{OriginalText: "a", TranslatedText: "bc"}
		if Fingerprint(a) == Fingerprint(b) {
			t.Error("Expected fingerprints for different splits to differ")
		}
	})

	t.Run("length is a sha256 hex digest", func(t *testing.T) {
		if got := len(Fingerprint(domain.Card{OriginalText: "x"})); got != 64 {
			t.Errorf("Expected 64 hex characters, got %d", got)
		}
	})
}
