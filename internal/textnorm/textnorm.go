// Package textnorm provides the canonical text normalization used across the
// pipeline: a document-level cleanup applied once before segmentation, and a
// lighter string normalization shared by identity resolution and evidence
// verification. Both are idempotent.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// dashVariants folds en/em dashes and the minus sign to a plain hyphen.
var dashVariants = map[rune]rune{
	'–': '-', // en dash
	'—': '-', // em dash
	'−': '-', // minus sign
}

// junk characters removed outright during document normalization.
var junk = map[rune]bool{
	'�':      true, // replacement character
	'­':      true, // soft hyphen
	'\uFEFF': true, // BOM, wherever it appears
}

// Document applies level-0 normalization to a whole document, in order:
// NFKC, newline normalization (CRLF/CR to LF), removal of control and format
// characters (keeping \n and \t), exotic space separators to plain space,
// per-line collapse of space/tab runs and per-line trim, junk removal.
// Newlines are preserved, never collapsed.
func Document(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case junk[r]:
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r):
		case unicode.Is(unicode.Zs, r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	return strings.Join(lines, "\n")
}

// Basic normalizes a single string the way the alias resolver and the
// normalized evidence tier expect: NFKC, dash variants to "-", exotic spaces
// to " ", space/tab runs collapsed, trimmed. Casing is untouched.
func Basic(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if d, ok := dashVariants[r]; ok {
			b.WriteRune(d)
			continue
		}
		if r != '\n' && r != '\t' && unicode.Is(unicode.Zs, r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return collapseSpaces(b.String())
}

// Fold is Basic plus case folding, the form used as a lookup key.
func Fold(s string) string {
	return strings.ToLower(Basic(s))
}

// collapseSpaces collapses runs of spaces and tabs to a single space and
// strips them from both ends.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			inRun = true
			continue
		}
		if inRun {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			inRun = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
