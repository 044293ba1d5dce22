package widget

import (
	"strings"
	"unicode"

	"browser-journey/internal/domain/entity"
)

// Match picks the option for desired. Tiers are tried in order over the whole
// list and the first option hit in a tier wins:
//
//  1. exact text (surrounding whitespace ignored)
//  2. desired is a case-insensitive substring of the option
//  3. the option shares at least one word with desired
//
// An empty desired text never matches.
func Match(options []string, desired string) (int, entity.MatchKind, bool) {
	want := strings.TrimSpace(desired)
	if want == "" {
		return -1, entity.MatchNone, false
	}

	for i, opt := range options {
		if strings.TrimSpace(opt) == want {
			return i, entity.MatchExact, true
		}
	}

	lower := strings.ToLower(want)
	for i, opt := range options {
		if strings.Contains(strings.ToLower(opt), lower) {
			return i, entity.MatchSubstring, true
		}
	}

	wantTokens := tokens(want)
	for i, opt := range options {
		for tok := range tokens(opt) {
			if _, ok := wantTokens[tok]; ok {
				return i, entity.MatchToken, true
			}
		}
	}

	return -1, entity.MatchNone, false
}

func tokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
