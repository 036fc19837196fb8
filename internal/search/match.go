// Package search ranks tutors and jobs against structured criteria.
//
// Scoring is pure: the same candidates and criteria always produce the same
// ranking. Every text comparison is a case-insensitive substring test.
package search

import (
	"strings"
	"unicode/utf8"
)

// contains reports whether needle appears (case-insensitive) in field.
// An empty needle never matches, so unset criteria neither filter nor score.
func contains(field, needle string) bool {
	if needle == "" || field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

// countContained returns how many needles appear (case-insensitive) anywhere
// in the combined fields.
func countContained(needles []string, fields ...string) int {
	if len(needles) == 0 {
		return 0
	}
	combined := strings.ToLower(strings.Join(fields, " "))
	n := 0
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(needle)) {
			n++
		}
	}
	return n
}

// queryWords splits a free-text query into the distinct lower-case words
// longer than two characters used by the broad pass.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, w := range fields {
		if utf8.RuneCountInString(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}
