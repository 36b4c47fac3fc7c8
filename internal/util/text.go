package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces  = regexp.MustCompile(`\s+`)
	reUCRuns  = regexp.MustCompile(`[A-ZÁÉÍÓÚÜÑ]+`)
	nullWords = map[string]struct{}{"nan": {}, "none": {}, "null": {}, "<na>": {}}
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// CleanCell collapses pandas-style null markers to the empty string.
func CleanCell(input string) string {
	s := NormalizeSpaces(input)
	if _, ok := nullWords[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

// UpperClean is CleanCell plus upper-casing; applied to every text column so
// substring search and dedup keys are case-insensitive.
func UpperClean(input string) string {
	return strings.ToUpper(CleanCell(input))
}

// Abbreviate shortens text to maxLen. Short input passes through unchanged.
// Otherwise the first letters of the uppercase-letter runs form an acronym;
// an acronym outside [3, maxLen] falls back to truncation with an ellipsis.
func Abbreviate(text string, maxLen int) string {
	t := strings.TrimSpace(text)
	if len([]rune(t)) <= maxLen {
		return t
	}

	runs := reUCRuns.FindAllString(strings.ToUpper(t), -1)
	acr := strings.Builder{}
	for _, run := range runs {
		r := []rune(run)
		acr.WriteRune(r[0])
	}
	if n := acr.Len(); n >= 3 && n <= maxLen {
		return acr.String()
	}

	r := []rune(t)
	return string(r[:maxLen-1]) + "…"
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func ContainsAny(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
