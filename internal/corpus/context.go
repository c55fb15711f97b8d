package corpus

import (
	"regexp"
	"strings"
)

// DefaultContextBudget is the default excerpt size in characters.
const DefaultContextBudget = 1200

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// RelevantContext returns lines of text that mention a keyword from query,
// capped at budget characters. When the query has no usable keywords or no
// line matches, the leading budget characters of text are returned instead.
func RelevantContext(query, text string, budget int) string {
	if text == "" {
		return ""
	}
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	tokens := keywords(query)
	if len(tokens) == 0 {
		return truncate(text, budget)
	}

	var matches []string
	total := 0
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				kept := strings.TrimSpace(line)
				matches = append(matches, kept)
				total += len([]rune(kept))
				break
			}
		}
		if total >= budget {
			break
		}
	}

	if len(matches) == 0 {
		return truncate(text, budget)
	}
	return truncate(strings.Join(matches, "\n"), budget)
}

// keywords returns the distinct lowercase words of query longer than two characters.
func keywords(query string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
