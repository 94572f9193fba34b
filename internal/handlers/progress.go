package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moodcraft/backend/internal/broker"
)

// ProgressHandler serves Server-Sent Events streams of generation progress.
type ProgressHandler struct {
	broker *broker.Broker
}

// NewProgressHandler creates a ProgressHandler backed by the given broker.
func NewProgressHandler(b *broker.Broker) *ProgressHandler {
	return &ProgressHandler{broker: b}
}

// Stream opens an SSE connection scoped to a job. It sends an initial
// "connected" event, then a "progress" event per update, and closes after
// the 100% event. A heartbeat comment every 30 seconds keeps the
// connection alive through proxies.
func (h *ProgressHandler) Stream(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := h.broker.Subscribe(jobID)
	defer h.broker.Unsubscribe(jobID, ch)

	fmt.Fprintf(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-ch:
			data, _ := json.Marshal(p)
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()
			if p.Percent >= 100 {
				return
			}
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
