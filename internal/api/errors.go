package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// DeleteDeniedError is returned for a DELETE against a resource type the
// API does not allow removing directly (spec.md §7).
type DeleteDeniedError struct{ RType hue.RType }

func (e *DeleteDeniedError) Error() string {
	return fmt.Sprintf("api: delete denied for %s", e.RType)
}

// clipError is the {description} shape CLIP v2 embeds in an errors[] entry.
type clipError struct {
	Description string `json:"description"`
}

// writeEnvelope writes the {data, errors} envelope every CLIP v2 response
// carries, even for single-resource GETs.
func writeEnvelope(w http.ResponseWriter, status int, data []any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "errors": []clipError{}})
}

// writeError maps an internal error to its CLIP v2 status and body, per
// spec.md §7's error table.
func writeError(log *logrus.Entry, w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	log.WithError(err).Warn("api: request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}, "errors": []clipError{{Description: msg}}})
}

func statusFor(err error) (int, string) {
	switch e := err.(type) {
	case *store.NotFoundError:
		return http.StatusNotFound, e.Error()
	case *store.V1NotFoundError:
		return http.StatusNotFound, e.Error()
	case *hue.WrongTypeError:
		return http.StatusNotAcceptable, e.Error()
	case *store.FullError:
		return http.StatusInsufficientStorage, e.Error()
	case *DeleteDeniedError:
		return http.StatusForbidden, e.Error()
	case *hue.UpdateUnsupportedError:
		return http.StatusInternalServerError, e.Error()
	case *hue.UnknownRTypeError:
		return http.StatusNotFound, e.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
