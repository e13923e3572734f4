package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/askpdf/askpdf/jobs"
)

// doneMarker terminates every event stream, including streams for
// unknown job ids.
const doneMarker = "[DONE]"

// handleStream bridges a job's event channel onto a server-sent event
// stream: one message per event, in order, then the terminal marker.
//
// A client disconnect does not cancel the job. The handler keeps
// draining the channel so the producer can finish and the channel is
// reclaimed; it just stops writing.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	jobID := r.PathValue("jobId")
	events, err := s.registry.Attach(jobID)
	if errors.Is(err, jobs.ErrUnknownJob) {
		fmt.Fprintf(w, "data: %s\n\n", doneMarker)
		flusher.Flush()
		return
	}

	clientGone := r.Context().Done()
	disconnected := false

	for ev := range events {
		if disconnected {
			continue // drain so the producer can finish
		}
		select {
		case <-clientGone:
			disconnected = true
			log.Printf("[INFO] job %s: client disconnected mid-stream", jobID)
			continue
		default:
		}

		payload, err := json.Marshal(ev)
		if err != nil {
			log.Printf("[ERROR] job %s: failed to encode event: %v", jobID, err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	if !disconnected {
		fmt.Fprintf(w, "data: %s\n\n", doneMarker)
		flusher.Flush()
	}
}
