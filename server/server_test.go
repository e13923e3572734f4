package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/askpdf/askpdf/docstore"
	"github.com/askpdf/askpdf/jobs"
	"github.com/askpdf/askpdf/pipeline"
	"github.com/askpdf/askpdf/storage"
)

func testServer(t *testing.T, run jobs.RunFunc) (*Server, *jobs.Registry) {
	t.Helper()
	if run == nil {
		run = func(ctx context.Context, query string, emit func(pipeline.Event)) {}
	}
	registry := jobs.NewRegistry(run)
	t.Cleanup(registry.Close)

	store := docstore.NewStore(func(path string) ([]docstore.Page, error) {
		return []docstore.Page{
			{Number: 1, Text: "alpha beta"},
			{Number: 2, Text: "gamma"},
		}, nil
	})

	return NewServer(registry, store, storage.NewInMemoryHistory(), t.TempDir(), ":0"), registry
}

func TestHandleChatReturnsJobID(t *testing.T) {
	srv, registry := testServer(t, nil)

	body := bytes.NewBufferString(`{"query": "what is alpha?"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	rec := httptest.NewRecorder()
	srv.handleChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["jobId"] == "" {
		t.Error("expected non-empty jobId")
	}
	if registry.Len() != 1 {
		t.Errorf("expected 1 pending job, got %d", registry.Len())
	}
}

func TestHandleChatRejectsBadBody(t *testing.T) {
	srv, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	srv.handleChat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChatRejectsEmptyQuery(t *testing.T) {
	srv, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query": ""}`))
	rec := httptest.NewRecorder()
	srv.handleChat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestStreamDeliversEventsThenDone(t *testing.T) {
	srv, registry := testServer(t, func(ctx context.Context, query string, emit func(pipeline.Event)) {
		emit(pipeline.Tool("searching_documents"))
		emit(pipeline.Text("hello"))
		emit(pipeline.Citation(1, "alpha beta"))
	})

	id := registry.Submit("q")

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	req.SetPathValue("jobId", id)
	rec := httptest.NewRecorder()
	srv.handleStream(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	lines := sseDataLines(rec.Body.String())
	if len(lines) != 4 {
		t.Fatalf("expected 4 data lines, got %d: %v", len(lines), lines)
	}
	if lines[len(lines)-1] != doneMarker {
		t.Errorf("stream must end with %s, got %q", doneMarker, lines[len(lines)-1])
	}

	var first pipeline.Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first event not JSON: %v", err)
	}
	if first.Type != pipeline.EventTool || first.Name != "searching_documents" {
		t.Errorf("unexpected first event: %+v", first)
	}
}

func TestStreamUnknownJob(t *testing.T) {
	srv, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/stream/no-such-job", nil)
	req.SetPathValue("jobId", "no-such-job")
	rec := httptest.NewRecorder()
	srv.handleStream(rec, req)

	lines := sseDataLines(rec.Body.String())
	if len(lines) != 1 || lines[0] != doneMarker {
		t.Errorf("unknown job must yield only the terminal marker, got %v", lines)
	}
}

func TestStreamSecondAttachBehavesAsUnknown(t *testing.T) {
	srv, registry := testServer(t, func(ctx context.Context, query string, emit func(pipeline.Event)) {
		emit(pipeline.Text("once"))
	})

	id := registry.Submit("q")

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	req.SetPathValue("jobId", id)
	first := httptest.NewRecorder()
	srv.handleStream(first, req)

	req2 := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	req2.SetPathValue("jobId", id)
	second := httptest.NewRecorder()
	srv.handleStream(second, req2)

	lines := sseDataLines(second.Body.String())
	if len(lines) != 1 || lines[0] != doneMarker {
		t.Errorf("second attach must close immediately, got %v", lines)
	}
}

func TestHandleUpload(t *testing.T) {
	srv, _ := testServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("%PDF-1.4 fake"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.handleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["pages"] != float64(2) {
		t.Errorf("expected 2 pages, got %v", resp["pages"])
	}
	if srv.store.Len() != 2 {
		t.Errorf("store should hold the uploaded document, got %d pages", srv.store.Len())
	}
}

func TestHandleUploadWithoutFile(t *testing.T) {
	srv, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("no file"))
	rec := httptest.NewRecorder()
	srv.handleUpload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	srv, _ := testServer(t, nil)
	srv.history.Append(context.Background(), "what is alpha?", "Alpha is on page 1.")

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	srv.handleHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var exchanges []storage.Exchange
	if err := json.Unmarshal(rec.Body.Bytes(), &exchanges); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(exchanges) != 1 || exchanges[0].Query != "what is alpha?" {
		t.Errorf("unexpected history: %+v", exchanges)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

// sseDataLines extracts the payload of each "data:" line in an SSE body.
func sseDataLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			out = append(out, strings.TrimPrefix(line, "data: "))
		}
	}
	return out
}
