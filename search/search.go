// Package search scores document pages against a query.
//
// The scan is deliberately naive: lowercase substring matching, no index,
// no ranking model. It exists to pick a handful of context pages for the
// answer pipeline, not to be an information-retrieval engine.
package search

import (
	"sort"
	"strings"

	"github.com/askpdf/askpdf/docstore"
)

const (
	// MaxHits bounds how many pages feed the answer context.
	MaxHits = 3

	// maxContextLen bounds the per-page text carried into the prompt.
	maxContextLen = 1000

	// Snippet window around the matched term, biased forward so the
	// excerpt reads onward from the match.
	snippetBefore = 40
	snippetAfter  = 120
)

// Hit is one page matched against a query.
type Hit struct {
	Page    int    `json:"page"`
	Text    string `json:"text"`
	Snippet string `json:"snippet"`
	Score   int    `json:"score"`
}

// Search scores every page against the whitespace-split query terms and
// returns at most MaxHits hits, highest score first. Ties keep page order.
//
// A page's score is the number of entries in the term list found as
// substrings of the lowercased page text; a term repeated in the query
// counts once per repetition. The snippet is taken around the last term
// in the list that matched the page.
func Search(query string, pages []docstore.Page) []Hit {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var hits []Hit
	for _, page := range pages {
		textLower := strings.ToLower(page.Text)

		score := 0
		lastMatch := ""
		for _, term := range terms {
			if strings.Contains(textLower, term) {
				score++
				lastMatch = term
			}
		}
		if score == 0 {
			continue
		}

		hits = append(hits, Hit{
			Page:    page.Number,
			Text:    truncate(page.Text, maxContextLen),
			Snippet: Snippet(page.Text, lastMatch),
			Score:   score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > MaxHits {
		hits = hits[:MaxHits]
	}
	return hits
}

// Snippet extracts a short single-line excerpt around the first
// case-insensitive occurrence of term in text. Truncated ends are
// marked with an ellipsis. Returns "" when term does not occur.
func Snippet(text, term string) string {
	if term == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if idx < 0 {
		return ""
	}

	start := idx - snippetBefore
	if start < 0 {
		start = 0
	}
	end := idx + len(term) + snippetAfter
	if end > len(text) {
		end = len(text)
	}

	excerpt := strings.Join(strings.Fields(text[start:end]), " ")
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(text) {
		excerpt += "..."
	}
	return excerpt
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
