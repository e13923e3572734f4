package search

import (
	"strings"
	"testing"

	"github.com/askpdf/askpdf/docstore"
)

func TestSearchSingleTerm(t *testing.T) {
	pages := []docstore.Page{
		{Number: 1, Text: "alpha beta"},
		{Number: 2, Text: "gamma"},
	}

	hits := Search("alpha", pages)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Page != 1 {
		t.Errorf("expected page 1, got %d", hits[0].Page)
	}
	if hits[0].Score != 1 {
		t.Errorf("expected score 1, got %d", hits[0].Score)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	pages := []docstore.Page{{Number: 1, Text: "The QUICK brown fox"}}

	hits := Search("quick FOX", pages)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Score != 2 {
		t.Errorf("expected score 2, got %d", hits[0].Score)
	}
}

func TestSearchDuplicateTermsCountSeparately(t *testing.T) {
	pages := []docstore.Page{{Number: 1, Text: "alpha"}}

	hits := Search("alpha alpha", pages)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Score != 2 {
		t.Errorf("duplicate query terms should each count, expected 2, got %d", hits[0].Score)
	}
}

func TestSearchReturnsAtMostThreeSortedStable(t *testing.T) {
	pages := []docstore.Page{
		{Number: 1, Text: "x"},
		{Number: 2, Text: "x y"},
		{Number: 3, Text: "x y z"},
		{Number: 4, Text: "x y"},
		{Number: 5, Text: "x"},
	}

	hits := Search("x y z", pages)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].Page != 3 {
		t.Errorf("expected highest score first (page 3), got page %d", hits[0].Page)
	}
	// Pages 2 and 4 tie on score; original page order must hold.
	if hits[1].Page != 2 || hits[2].Page != 4 {
		t.Errorf("expected stable tie-break [2 4], got [%d %d]", hits[1].Page, hits[2].Page)
	}
}

func TestSearchNoMatches(t *testing.T) {
	pages := []docstore.Page{{Number: 1, Text: "alpha"}}

	if hits := Search("zeta", pages); len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	pages := []docstore.Page{{Number: 1, Text: "alpha"}}

	if hits := Search("   ", pages); hits != nil {
		t.Errorf("expected nil for empty query, got %v", hits)
	}
}

func TestSearchBoundsContextText(t *testing.T) {
	long := strings.Repeat("alpha ", 500)
	pages := []docstore.Page{{Number: 1, Text: long}}

	hits := Search("alpha", pages)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if len(hits[0].Text) > maxContextLen {
		t.Errorf("context text exceeds bound: %d", len(hits[0].Text))
	}
}

func TestSnippetStripsNewlinesAndMarksTruncation(t *testing.T) {
	text := strings.Repeat("padding ", 30) + "needle\nin the\nhaystack " + strings.Repeat("tail ", 40)

	snippet := Snippet(text, "needle")
	if strings.ContainsAny(snippet, "\n") {
		t.Errorf("snippet contains newline: %q", snippet)
	}
	if !strings.Contains(snippet, "needle") {
		t.Errorf("snippet missing matched term: %q", snippet)
	}
	if !strings.HasPrefix(snippet, "...") || !strings.HasSuffix(snippet, "...") {
		t.Errorf("expected truncation markers on both ends: %q", snippet)
	}
}

func TestSnippetShortText(t *testing.T) {
	snippet := Snippet("just a needle here", "needle")
	if snippet != "just a needle here" {
		t.Errorf("short text should come back whole, got %q", snippet)
	}
}

func TestSnippetTermAbsent(t *testing.T) {
	if got := Snippet("nothing to see", "needle"); got != "" {
		t.Errorf("expected empty snippet, got %q", got)
	}
}

func TestSnippetUsesLastMatchingTerm(t *testing.T) {
	pages := []docstore.Page{{Number: 1, Text: "alpha comes first and omega comes later"}}

	hits := Search("alpha omega", pages)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if !strings.Contains(hits[0].Snippet, "omega") {
		t.Errorf("snippet should centre on the last matching term: %q", hits[0].Snippet)
	}
}
