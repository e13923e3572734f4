// Package pipeline turns one query against the loaded document into an
// ordered sequence of typed stream events.
package pipeline

// Event kinds, carried on the wire in the "type" field.
const (
	EventTool      = "tool"
	EventComponent = "component"
	EventText      = "text"
	EventCitation  = "citation"
	EventError     = "error"
)

// Event is one unit of pipeline output. It is a tagged union: Type
// selects which of the remaining fields are meaningful, everything
// else stays empty and is omitted from the JSON encoding.
type Event struct {
	Type    string `json:"type"`
	Name    string `json:"name,omitempty"`
	Data    any    `json:"data,omitempty"`
	Content string `json:"content,omitempty"`
	Page    int    `json:"page,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Tool reports a pipeline stage starting, e.g. "searching_documents".
func Tool(name string) Event {
	return Event{Type: EventTool, Name: name}
}

// Component carries a structured UI payload (info card, table, chart).
func Component(name string, data any) Event {
	return Event{Type: EventComponent, Name: name, Data: data}
}

// Text carries one incremental fragment of the generated answer.
func Text(content string) Event {
	return Event{Type: EventText, Content: content}
}

// Citation points at a source page backing the answer.
func Citation(page int, snippet string) Event {
	return Event{Type: EventCitation, Page: page, Snippet: snippet}
}

// Error reports a pipeline-fatal failure. It is always the final
// event of its job.
func Error(message string) Event {
	return Event{Type: EventError, Content: message}
}
