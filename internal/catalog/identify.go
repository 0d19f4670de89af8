// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"regexp"
	"strings"
	"unicode"
)

// InputKind classifies what a user typed into the search box.
type InputKind int

const (
	KindFreeText InputKind = iota
	KindISBN10
	KindISBN13
	KindVolumeID
)

func (k InputKind) String() string {
	switch k {
	case KindISBN10:
		return "isbn10"
	case KindISBN13:
		return "isbn13"
	case KindVolumeID:
		return "volume_id"
	default:
		return "free_text"
	}
}

// isbn10Pattern matches ten ISBN characters, the last possibly an X.
var isbn10Pattern = regexp.MustCompile(`^\d{9}[\dXx]$`)

// isbn13Pattern matches thirteen digits in the book prefix ranges.
var isbn13Pattern = regexp.MustCompile(`^97[89]\d{10}$`)

// volumeIDPattern matches Google Books volume ids: exactly twelve
// characters of URL-safe base64, e.g. "zyTCAlFPjgYC".
var volumeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{12}$`)

// Classify determines the lookup kind for a user input and returns its
// normalized form. ISBNs are compacted by stripping spaces and hyphens
// and must carry a valid check digit; everything that fails the
// structured checks stays free text.
func Classify(input string) (InputKind, string) {
	input = strings.TrimSpace(input)

	compact := strings.NewReplacer("-", "", " ", "").Replace(input)
	if isbn13Pattern.MatchString(compact) && validISBN13(compact) {
		return KindISBN13, compact
	}
	if isbn10Pattern.MatchString(compact) && validISBN10(compact) {
		return KindISBN10, strings.ToUpper(compact)
	}

	// Volume ids always mix in letters, which keeps plain numbers out.
	if volumeIDPattern.MatchString(input) && strings.ContainsFunc(input, unicode.IsLetter) {
		return KindVolumeID, input
	}

	return KindFreeText, input
}

// SearchTerm returns the catalog query for a classified input. ISBN
// lookups use the isbn: field qualifier; free text passes through for
// the regular query builder downstream.
func SearchTerm(kind InputKind, normalized string) string {
	switch kind {
	case KindISBN10, KindISBN13:
		return "isbn:" + normalized
	default:
		return normalized
	}
}

// validISBN10 checks the mod-11 check digit, where a trailing X counts
// as ten.
func validISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case (c == 'X' || c == 'x') && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

// validISBN13 checks the mod-10 check digit with alternating 1/3 weights.
func validISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v := int(c - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
