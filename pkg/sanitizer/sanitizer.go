package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims leading/trailing whitespace and collapses internal
// whitespace runs to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// SanitizeReason cleans the free-text visit reason. Content is kept as the
// patient typed it apart from whitespace normalization.
func SanitizeReason(reason string) string {
	return TrimAndNormalize(reason)
}

// SanitizeEnumField lowers case so "Consultation" and "consultation" compare
// equal against the validator's enum.
func SanitizeEnumField(value string) string {
	p := Pipeline{
		TrimAndNormalize,
		strings.ToLower,
	}
	return p.Apply(value)
}
