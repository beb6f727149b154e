package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// AuthHandler serves /auth/v1 (spec.md §6): a static application id header
// and an empty JSON body. There is no pairing flow to drive a real key
// exchange, so the id is fixed for the life of the process.
type AuthHandler struct {
	appID string
}

func NewAuthHandler(bridgeMAC string) *AuthHandler {
	return &AuthHandler{appID: uuid.NewSHA1(uuid.NameSpaceDNS, []byte(bridgeMAC)).String()}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("hue-application-id", h.appID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{})
}
