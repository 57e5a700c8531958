// Package utils contains general helper functions used across the d2p tool.
package utils

import "path/filepath"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// MatchesAnyPattern reports whether the bare entry name matches at least one of
// the shell-glob patterns. Patterns are evaluated with filepath.Match semantics
// (*, ?, character classes); a malformed pattern never matches.
func MatchesAnyPattern(entryName string, patterns []string) bool {
	for _, patternValue := range patterns {
		isMatched, matchError := filepath.Match(patternValue, entryName)
		if matchError == nil && isMatched {
			return true
		}
	}
	return false
}
