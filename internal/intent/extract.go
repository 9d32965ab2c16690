package intent

import (
	"regexp"
	"strings"
)

// Entity extraction is deliberately simple pattern matching; it lives behind
// named functions so orchestration code never touches the regexes directly.

// exerciseKeywords anchor the exercise-name pattern. Order matters: the
// first keyword producing a plausible name wins.
var exerciseKeywords = []string{
	"swap",
	"alternative for",
	"alternatives for",
	"replace",
	"instead of",
}

var exercisePatterns = compileExercisePatterns()

func compileExercisePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(exerciseKeywords))
	for _, kw := range exerciseKeywords {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+kw+`\s+([\w\s()-]+?)(?:[.?!"']|$)`))
	}
	return patterns
}

// routineNamePattern captures a routine name following "in"/"from" with an
// optional article, stopping before common follow-up words or punctuation.
var routineNamePattern = regexp.MustCompile(`(?i)(?:in|from)\s+(?:the\s+|my\s+)?([\w\s()-]+?)\s*(?:\bfor\b|\bcan\b|,|\?|!|$)`)

// chosenNamePattern captures a candidate name following selection verbs,
// used to resolve which suggestion the user picked.
var chosenNamePattern = regexp.MustCompile(`(?i)(?:use|with|go with|choose|select)\s+([\w\s()-]+)`)

// ExtractExerciseName pulls an exercise name out of a swap-style request.
// Returns "" when no keyword-anchored name can be found.
func ExtractExerciseName(message string) string {
	for _, p := range exercisePatterns {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) > 0 && len(name) < 100 {
			return name
		}
	}
	return ""
}

// ExtractRoutineName pulls a routine name out of a message, title-cased
// unless it looks like an acronym (e.g. PPL stays PPL).
func ExtractRoutineName(message string) string {
	m := routineNamePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return ""
	}
	if name == strings.ToUpper(name) && len(name) >= 2 {
		return name
	}
	return titleCase(name)
}

// ExtractChosenName pulls the picked candidate from a selection message
// ("let's go with Hack Squat" yields "Hack Squat"). Returns "" when no
// selection verb is present.
func ExtractChosenName(message string) string {
	m := chosenNamePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// MatchSuggestion resolves the exercise choice a message makes against an
// open proposal. Titles are matched case-insensitively as substrings of the
// message first; when none appears verbatim, the selection-verb pattern is
// tried. A capture overlapping one of the titles canonicalizes to that
// title; any other capture is returned as the user spelled it, so the caller
// can resolve a choice that was never among the shown suggestions against
// the full catalog.
func MatchSuggestion(message string, titles []string) (string, bool) {
	lower := strings.ToLower(message)

	for _, title := range titles {
		if title != "" && strings.Contains(lower, strings.ToLower(title)) {
			return title, true
		}
	}

	chosen := ExtractChosenName(message)
	if chosen == "" {
		return "", false
	}
	chosenLower := strings.ToLower(chosen)
	for _, title := range titles {
		if title == "" {
			continue
		}
		titleLower := strings.ToLower(title)
		if strings.Contains(chosenLower, titleLower) || strings.Contains(titleLower, chosenLower) {
			return title, true
		}
	}
	return chosen, true
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
