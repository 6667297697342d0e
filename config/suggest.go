package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/pthm-cable/biosim/components"
)

// suggestLimit bounds the edit distance that still counts as a typo.
func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Suggest returns the candidate closest to input, or "" if none is close enough.
// Comparison is case-insensitive.
func Suggest(input string, candidates []string) string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(in, strings.ToLower(c))
		if dist > suggestLimit(len(c)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}

func withSuggestion(err error, input string, candidates []string) error {
	if s := Suggest(input, candidates); s != "" {
		return fmt.Errorf("%w (did you mean %q?)", err, s)
	}
	return err
}

// withKeySuggestion decorates an unknown-key error with the nearest valid key.
// The first unknown key in sorted order is the one Apply rejected.
func withKeySuggestion(err error, overrides map[string]float64, valid []string) error {
	if !errors.Is(err, components.ErrUnknownParameter) {
		return err
	}
	known := make(map[string]bool, len(valid))
	for _, k := range valid {
		known[k] = true
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !known[k] {
			return withSuggestion(err, k, valid)
		}
	}
	return err
}
