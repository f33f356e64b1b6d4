package services

import (
	"regexp"
	"strconv"
	"strings"

	"clubevents/internal/domain"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\-\s]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// NormalizeSlug lowercases s, strips characters outside [a-z0-9-] and whitespace,
// and joins whitespace runs with single hyphens.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return slugWhitespace.ReplaceAllString(s, "-")
}

// suggestSlug picks a free slug for base given the existing slugs that equal base
// or start with "base-". Only base-<digits> variants count towards the suffix.
func suggestSlug(base string, existing []string) domain.SlugSuggestion {
	exact := false
	maxSuffix := 1
	prefix := base + "-"
	for _, s := range existing {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == base {
			exact = true
			continue
		}
		tail, ok := strings.CutPrefix(s, prefix)
		if !ok || !isDigits(tail) {
			continue
		}
		n, err := strconv.Atoi(tail)
		if err != nil {
			continue
		}
		maxSuffix = max(maxSuffix, n)
	}
	if !exact {
		return domain.SlugSuggestion{Base: base, UniqueSlug: base, IsTaken: false}
	}
	return domain.SlugSuggestion{Base: base, UniqueSlug: prefix + strconv.Itoa(maxSuffix+1), IsTaken: true}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
