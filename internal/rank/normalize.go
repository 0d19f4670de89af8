// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"regexp"
	"strconv"
	"strings"
)

// volumeNumberPatterns extract the volume number named in a title. They run
// against normalized (lowercased) text; order matters, first match wins.
// Comparing the captured number avoids substring traps like "11巻" reading
// as volume one.
var volumeNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`第(\d+)巻`),
	regexp.MustCompile(`(\d+)巻`),
	regexp.MustCompile(`vol\.?\s*(\d+)`),
	regexp.MustCompile(`volume\s*(\d+)`),
	regexp.MustCompile(`#(\d+)`),
	regexp.MustCompile(`\((\d+)\)`),
	regexp.MustCompile(`(\d+)$`),
}

// kanjiFirstVolume matches the spelled-out first volume marker.
var kanjiFirstVolume = regexp.MustCompile(`第?一巻`)

// baseTitleStrip removes volume markers when reducing a title to its series
// base. Applied in order, each replaced with a space.
var baseTitleStrip = []*regexp.Regexp{
	regexp.MustCompile(`第\d+巻`),
	regexp.MustCompile(`\d+巻`),
	regexp.MustCompile(`第?一巻`),
	regexp.MustCompile(`vol\.?\s*\d+`),
	regexp.MustCompile(`volume\s*\d+`),
	regexp.MustCompile(`#\d+`),
	regexp.MustCompile(`\(\d+\)`),
	regexp.MustCompile(`\d+\s*$`),
}

// Normalize lowercases s, trims surrounding whitespace, and collapses
// internal whitespace runs to single spaces. Multi-byte scripts pass through
// untouched apart from whitespace handling. Never fails; empty in, empty out.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DetectVolumeNumber reports the volume number a title names, if any.
// "Naruto 11", "第3巻", "vol.2", "#4", "(5)" all resolve; a title with no
// volume marker reports false.
func DetectVolumeNumber(title string) (int, bool) {
	t := Normalize(title)
	if t == "" {
		return 0, false
	}
	for _, re := range volumeNumberPatterns {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	if kanjiFirstVolume.MatchString(t) {
		return 1, true
	}
	return 0, false
}

// DetectsFirstVolume reports whether a title names volume one of a series:
// trailing " 1", "1巻", "第1巻", "一巻", "vol.1", "#1", "(1)".
func DetectsFirstVolume(title string) bool {
	n, ok := DetectVolumeNumber(title)
	return ok && n == 1
}

// HasExplicitVolumeNumber reports whether a query term already names a
// specific volume, in which case query building leaves the term alone.
func HasExplicitVolumeNumber(term string) bool {
	_, ok := DetectVolumeNumber(term)
	return ok
}

// BaseTitle strips volume markers from a title so entries of the same series
// compare equal: BaseTitle("ワンピース 第3巻") == BaseTitle("ワンピース 1巻").
func BaseTitle(title string) string {
	t := Normalize(title)
	for _, re := range baseTitleStrip {
		t = re.ReplaceAllString(t, " ")
	}
	return strings.Join(strings.Fields(t), " ")
}
