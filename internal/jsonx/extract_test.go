package jsonx

import "testing"

type payload struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestExtractPureJSON(t *testing.T) {
	got, err := Extract[payload](`{"title": "Report", "count": 4}`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.Title != "Report" || got.Count != 4 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestExtractFencedJSON(t *testing.T) {
	response := "```json\n{\"title\": \"Fenced\", \"count\": 1}\n```"
	got, err := Extract[payload](response)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.Title != "Fenced" {
		t.Errorf("expected title Fenced, got %q", got.Title)
	}
}

func TestExtractFencedWithoutLanguageTag(t *testing.T) {
	response := "```\n{\"title\": \"Plain\", \"count\": 2}\n```"
	got, err := Extract[payload](response)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.Title != "Plain" {
		t.Errorf("expected title Plain, got %q", got.Title)
	}
}

func TestExtractEmbeddedInProse(t *testing.T) {
	response := `Here is the structure you asked for: {"title": "Embedded", "count": 7} hope that helps!`
	got, err := Extract[payload](response)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.Title != "Embedded" || got.Count != 7 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestExtractNoJSON(t *testing.T) {
	if _, err := Extract[payload]("sorry, I cannot produce that"); err == nil {
		t.Fatal("expected error for response without JSON")
	}
}

func TestExtractUnbalancedBraces(t *testing.T) {
	if _, err := Extract[payload](`{"title": "broken`); err == nil {
		t.Fatal("expected error for unbalanced JSON")
	}
}
