// Package answer compares typed answers with card text and fingerprints card
// content for duplicate detection.
package answer

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/conorfennell/knolcard/internal/domain"
)

// Normalize composes the text to Unicode NFC, trims surrounding whitespace,
// lowercases and collapses internal runs of whitespace to a single space.
// Hangul typed as separate jamo compares equal to precomposed syllables.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// Match reports whether given is an acceptable answer for expected.
// An empty answer never matches.
func Match(expected, given string) bool {
	g := Normalize(given)
	if g == "" {
		return false
	}
	return Normalize(expected) == g
}

// Fingerprint returns the SHA-256 of the card's normalized sides as a hex
// string. Two cards with the same text on both sides share a fingerprint
// regardless of tag, collection or scheduling state.
func Fingerprint(card domain.Card) string {
	// Newline separates the sides so "ab"+"c" and "a"+"bc" differ.
	joined := Normalize(card.OriginalText) + "\n" + Normalize(card.TranslatedText)
	sum := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("%x", sum)
}
