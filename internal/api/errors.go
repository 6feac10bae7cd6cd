package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dthorne/curview/internal/billing"
	"github.com/dthorne/curview/internal/discount"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeDomainError maps billing and discount errors onto HTTP responses.
// An undefined blend rate is a property of the requested scope (422), while
// ambiguous identities and registry inconsistencies are data faults (500)
// that must never be dressed up as a valid figure.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrUndefinedBlendRate):
		writeError(w, http.StatusUnprocessableEntity, "undefined_blend_rate",
			"no positive undiscounted cost in scope; blended rate is undefined")
	case errors.Is(err, billing.ErrAmbiguousProductIdentity):
		writeError(w, http.StatusInternalServerError, "ambiguous_product_identity",
			"a usage line in scope has no product identity")
	case errors.Is(err, discount.ErrRegistryInconsistency):
		writeError(w, http.StatusInternalServerError, "registry_inconsistency",
			"discount registry holds conflicting rates")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "query failed")
	}
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v interface{}) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}
