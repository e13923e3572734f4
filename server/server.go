// Package server exposes the query, stream, upload and history
// endpoints over HTTP. The stream endpoint is the transport adapter
// between a job's event channel and a server-sent event stream.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/askpdf/askpdf/docstore"
	"github.com/askpdf/askpdf/jobs"
	"github.com/askpdf/askpdf/storage"
)

// Server is the HTTP server for the document Q&A API.
type Server struct {
	registry *jobs.Registry
	store    *docstore.Store
	history  storage.HistoryStore
	dataDir  string
	addr     string
}

// NewServer creates a new HTTP server.
func NewServer(registry *jobs.Registry, store *docstore.Store, history storage.HistoryStore, dataDir, addr string) *Server {
	return &Server{
		registry: registry,
		store:    store,
		history:  history,
		dataDir:  dataDir,
		addr:     addr,
	}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /stream/{jobId}", s.handleStream)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /health", s.handleHealth)

	server := &http.Server{
		Addr:        s.addr,
		Handler:     corsMiddleware(loggingMiddleware(mux)),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the stream endpoint holds connections open
		// for as long as generation takes.
	}

	log.Printf("[INFO] askpdf server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
