package search

import (
	"sort"
	"strings"
	"unicode"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"
)

// RankGenres returns the genres matching query, best match first.
// An empty query returns genres in their original order.
func RankGenres(query string, genres []string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]string, len(genres))
		copy(out, genres)
		return out
	}

	matches := sfuzzy.Find(strings.ToLower(query), genres)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = genres[m.Index]
	}
	return out
}

type suggestion struct {
	name  string
	score int // lower is better
}

// Suggest returns up to limit names that nearly match query. It is used when a
// substring search comes back empty, so it tolerates typos and skipped letters.
func Suggest(query string, names []string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	best := make(map[string]int)
	consider := func(name string, score int) {
		if prev, ok := best[name]; !ok || score < prev {
			best[name] = score
		}
	}

	// Letters in order, e.g. "wtchr" -> "The Witcher 3"
	for _, rank := range lfuzzy.RankFindFold(query, names) {
		consider(rank.Target, rank.Distance)
	}

	// Word-level typo tolerance, e.g. "zelba" -> "Zelda"
	maxTypos := allowedTypos(len([]rune(query)))
	if maxTypos > 0 {
		for _, name := range names {
			for _, word := range words(name) {
				if d := lfuzzy.LevenshteinDistance(query, word); d <= maxTypos {
					consider(name, 100+d*20)
				}
			}
		}
	}

	ranked := make([]suggestion, 0, len(best))
	for name, score := range best {
		ranked = append(ranked, suggestion{name: name, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		if len(ranked[i].name) != len(ranked[j].name) {
			return len(ranked[i].name) < len(ranked[j].name)
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.name
	}
	return out
}

// allowedTypos returns the number of typos allowed based on word length
// 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}

// words splits text into lowercase letter/digit runs
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
