// Package sse exposes an eventstream.Stream as the Hue SSE channel
// (spec.md §4.I): /eventstream/clip/v2, with Last-Event-ID replay and a
// keepalive comment line on connect.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/eventstream"
)

// Handler serves one or more SSE channels backed by the same Stream.
type Handler struct {
	stream *eventstream.Stream
	log    *logrus.Entry
}

func NewHandler(stream *eventstream.Stream, log *logrus.Entry) *Handler {
	return &Handler{stream: stream, log: log.WithField("component", "sse")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	live, cancel := h.stream.Subscribe()
	defer cancel()

	if lastID := r.Header.Get("Last-Event-ID"); lastID != "" {
		for _, rec := range h.stream.EventsSentAfterID(lastID) {
			if !writeRecord(w, rec) {
				return
			}
		}
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case rec, ok := <-live:
			if !ok {
				return
			}
			if !writeRecord(w, rec) {
				return
			}
			flusher.Flush()
		}
	}
}

func writeRecord(w http.ResponseWriter, rec eventstream.Record) bool {
	data, err := json.Marshal(rec.Event)
	if err != nil {
		return true
	}
	_, err = fmt.Fprintf(w, "id: %s\ndata: %s\n\n", rec.ID(), data)
	return err == nil
}
