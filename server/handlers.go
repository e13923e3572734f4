package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/askpdf/askpdf/storage"
)

// handleChat accepts a query and returns a job id immediately. The
// answer is produced in the background and read via /stream/{jobId}.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query required", http.StatusBadRequest)
		return
	}

	id := s.registry.Submit(req.Query)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"jobId": id})
}

// handleUpload accepts a PDF, persists it under the data directory and
// swaps it in as the active document. Running jobs keep the pages they
// already captured.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to prepare data dir: %v", err))
		return
	}

	path := filepath.Join(s.dataDir, filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to persist upload: %v", err))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to persist upload: %v", err))
		return
	}
	dst.Close()

	if err := s.store.Load(path); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed to load document: %v", err))
		return
	}

	log.Printf("[INFO] document loaded: %s (%d pages)", path, s.store.Len())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"pages":  s.store.Len(),
	})
}

// handleHistory lists recent question/answer exchanges.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}

	exchanges, err := s.history.Recent(r.Context(), 50)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read history: %v", err))
		return
	}
	if exchanges == nil {
		exchanges = []storage.Exchange{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exchanges)
}

// handleHealth returns server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"pages":  s.store.Len(),
	})
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
