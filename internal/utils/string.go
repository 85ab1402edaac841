package utils

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CasePattern describes how a typed word is capitalised.
type CasePattern int

const (
	// CaseLower covers lowercase and mixed words; corrections are left as they are.
	CaseLower CasePattern = iota
	// CaseTitle is a word whose first letter alone is uppercase.
	CaseTitle
	// CaseUpper is a word of two or more letters, all uppercase.
	CaseUpper
)

// DetectCase classifies the capitalisation of s.
func DetectCase(s string) CasePattern {
	letters, upper := 0, 0
	firstUpper := false
	for i, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
			if i == 0 {
				firstUpper = true
			}
		}
	}
	switch {
	case letters > 1 && upper == letters:
		return CaseUpper
	case firstUpper:
		return CaseTitle
	}
	return CaseLower
}

// ConformCase applies the capitalisation of original to word:
// all caps stays all caps, a leading capital stays a leading capital,
// anything else leaves word unchanged.
func ConformCase(original, word string) string {
	switch DetectCase(original) {
	case CaseUpper:
		return strings.ToUpper(word)
	case CaseTitle:
		return CapitalizeFirst(word)
	}
	return word
}

// CapitalizeFirst uppercases the first rune of s.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// StartsLower reports whether s begins with a lowercase letter.
func StartsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}

// FormatWithCommas renders n with thousands separators.
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
