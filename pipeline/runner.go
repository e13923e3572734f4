package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/askpdf/askpdf/docstore"
	"github.com/askpdf/askpdf/llm"
	"github.com/askpdf/askpdf/search"
	"github.com/askpdf/askpdf/storage"
)

// Error messages surfaced to the client as error events.
const (
	msgNotLoaded  = "Server Error: PDF not loaded."
	msgMissingKey = "Missing API Key."
)

// summarySnippet is the placeholder citation snippet used when no page
// matched the query and the pipeline falls back to the leading pages.
const summarySnippet = "Document overview"

const answerPrompt = `You are a helpful AI assistant. Answer based ONLY on the context below.
Cite pages like [1] where possible.

Context:
%s

User Question: %s`

// Runner executes the event pipeline for one query at a time. It is
// stateless between runs and safe for concurrent use.
type Runner struct {
	store    *docstore.Store
	provider llm.Provider         // nil when no generation credential is configured
	history  storage.HistoryStore // optional; nil disables transcript recording
}

// NewRunner creates a pipeline runner. provider may be nil when the
// generation credential is absent; each run then reports the missing
// key instead of answering. history may be nil.
func NewRunner(store *docstore.Store, provider llm.Provider, history storage.HistoryStore) *Runner {
	return &Runner{store: store, provider: provider, history: history}
}

// Run executes the stage sequence for query, passing every event to
// emit in order. It returns when the final event has been emitted;
// a stage failure emits exactly one error event and stops. Events
// already emitted are never retracted.
func (r *Runner) Run(ctx context.Context, query string, emit func(Event)) {
	// Preflight: both checks fail the run before any stage event.
	if r.store.Len() == 0 {
		emit(Error(msgNotLoaded))
		return
	}
	if r.provider == nil {
		emit(Error(msgMissingKey))
		return
	}

	emit(Tool("searching_documents"))

	pages := r.store.Pages()
	hits := search.Search(query, pages)
	if len(hits) == 0 {
		// Summary mode: no page matched, answer from the leading pages.
		hits = leadingPages(pages)
	}

	emit(Tool("analyzing_content"))

	r.emitComponents(ctx, query, hits, len(pages), emit)

	answer, err := r.streamAnswer(ctx, query, hits, emit)
	if err != nil {
		emit(Error(fmt.Sprintf("AI Error: %v", err)))
		return
	}

	for _, hit := range hits {
		emit(Citation(hit.Page, hit.Snippet))
	}

	if r.history != nil && answer != "" {
		// Recording failures must not fail an already-answered query.
		_ = r.history.Append(ctx, query, answer)
	}
}

// streamAnswer submits the answer prompt and re-emits each model chunk
// as a text event, preserving arrival order. Returns the full answer.
func (r *Runner) streamAnswer(ctx context.Context, query string, hits []search.Hit, emit func(Event)) (string, error) {
	messages := []llm.ChatMessage{
		llm.UserMessage(fmt.Sprintf(answerPrompt, contextBlock(hits), query)),
	}

	chunks := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		_, err := r.provider.StreamChat(ctx, messages, chunks)
		close(chunks)
		errCh <- err
	}()

	var answer strings.Builder
	for chunk := range chunks {
		emit(Text(chunk))
		answer.WriteString(chunk)
	}
	if err := <-errCh; err != nil {
		return answer.String(), err
	}
	return answer.String(), nil
}

// contextBlock concatenates the hit texts with page labels, the shape
// the answer prompt expects.
func contextBlock(hits []search.Hit) string {
	parts := make([]string, len(hits))
	for i, hit := range hits {
		parts[i] = fmt.Sprintf("Page %d: %s", hit.Page, hit.Text)
	}
	return strings.Join(parts, "\n\n")
}

// leadingPages builds summary-mode hits from the first pages of the
// document, capped at the search hit limit.
func leadingPages(pages []docstore.Page) []search.Hit {
	n := len(pages)
	if n > search.MaxHits {
		n = search.MaxHits
	}
	hits := make([]search.Hit, 0, n)
	for _, page := range pages[:n] {
		text := page.Text
		if len(text) > 1000 {
			text = text[:1000]
		}
		hits = append(hits, search.Hit{
			Page:    page.Number,
			Text:    text,
			Snippet: summarySnippet,
		})
	}
	return hits
}
