package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/askpdf/askpdf/internal/jsonx"
	"github.com/askpdf/askpdf/llm"
	"github.com/askpdf/askpdf/search"
)

// Component names, emitted in this fixed order when present.
const (
	ComponentInfoCard  = "info_card"
	ComponentDataTable = "data_table"
	ComponentRiskChart = "risk_chart"
)

// InfoCard is a titled bullet list.
type InfoCard struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// DataTable is a header row plus data rows.
type DataTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RiskChart is a labelled series of numeric values.
type RiskChart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// componentResponse is the schema the model is asked to fill. Every key
// is optional; values arrive as loose JSON and are validated per
// sub-object.
type componentResponse struct {
	InfoCard *struct {
		Title   string   `json:"title"`
		Details []string `json:"details"`
	} `json:"info_card"`
	DataTable *struct {
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
	} `json:"data_table"`
	RiskChart *struct {
		Labels []string `json:"labels"`
		Values []any    `json:"values"`
	} `json:"risk_chart"`
}

const componentPrompt = `You are generating structured UI components describing a document excerpt.
Respond with a single JSON object and nothing else. The object may contain
any of these keys, each optional:

  "info_card":  {"title": string, "details": [string, ...]}
  "data_table": {"headers": [string, ...], "rows": [[string, ...], ...]}
  "risk_chart": {"labels": [string, ...], "values": [number, ...]}

Only include a component when the excerpt supports it with concrete content.

Excerpt:
%s

User question: %s`

// emitComponents runs the component-synthesis stage. It never fails the
// pipeline: on any generation or parsing problem it emits the generic
// fallback card, so every successful query yields at least one
// component event.
func (r *Runner) emitComponents(ctx context.Context, query string, hits []search.Hit, pageCount int, emit func(Event)) {
	resp, err := r.provider.Chat(ctx, []llm.ChatMessage{
		llm.UserMessage(fmt.Sprintf(componentPrompt, contextBlock(hits), query)),
	})
	if err != nil {
		emit(Component(ComponentInfoCard, fallbackCard(pageCount, len(hits))))
		return
	}

	parsed, err := jsonx.Extract[componentResponse](resp.Content)
	if err != nil {
		emit(Component(ComponentInfoCard, fallbackCard(pageCount, len(hits))))
		return
	}

	emitted := 0
	if card := parsed.InfoCard; card != nil && strings.TrimSpace(card.Title) != "" {
		emit(Component(ComponentInfoCard, InfoCard{Title: card.Title, Details: card.Details}))
		emitted++
	}
	if table := parsed.DataTable; table != nil && len(table.Headers) > 0 && len(table.Rows) > 0 {
		emit(Component(ComponentDataTable, DataTable{Headers: table.Headers, Rows: table.Rows}))
		emitted++
	}
	if chart := parsed.RiskChart; chart != nil && len(chart.Labels) > 0 && len(chart.Values) > 0 {
		emit(Component(ComponentRiskChart, RiskChart{
			Labels: chart.Labels,
			Values: coerceValues(chart.Values),
		}))
		emitted++
	}

	if emitted == 0 {
		emit(Component(ComponentInfoCard, fallbackCard(pageCount, len(hits))))
	}
}

func fallbackCard(pageCount, hitCount int) InfoCard {
	return InfoCard{
		Title: "Document overview",
		Details: []string{
			fmt.Sprintf("%d pages loaded", pageCount),
			fmt.Sprintf("%d sections matched the question", hitCount),
		},
	}
}

// coerceValues turns loosely-typed chart values into float64s.
// Anything non-numeric becomes 0.
func coerceValues(raw []any) []float64 {
	values := make([]float64, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case float64:
			values[i] = n
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				values[i] = f
			}
		}
	}
	return values
}
