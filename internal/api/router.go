package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/eventstream"
	"github.com/yveskaufmann/huebridge/internal/sse"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// NewRouter wires every HTTP surface the bridge exposes (spec.md §6) onto
// one mux: the CLIP v2 resource tree, its legacy v1 projection, the auth
// stub, and the SSE event channel.
func NewRouter(resources *store.Resources, bus *backend.Bus, events *eventstream.Stream, bridgeMAC string, log *logrus.Entry) http.Handler {
	mux := http.NewServeMux()

	resourceHandler := NewResourceHandler(resources, bus, log)
	v1Handler := NewV1Handler(resources, bus, log)
	authHandler := NewAuthHandler(bridgeMAC)
	sseHandler := sse.NewHandler(events, log)

	mux.Handle("/clip/v2/resource", resourceHandler)
	mux.Handle("/clip/v2/resource/", resourceHandler)
	mux.Handle("/api/", v1Handler)
	mux.Handle("/auth/v1", authHandler)
	mux.Handle("/eventstream/clip/v2", sseHandler)

	return mux
}
