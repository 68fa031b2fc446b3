// file: internal/httpapi/response.go
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes data with the given status.
func writeJSON(w http.ResponseWriter, logger logging.Logger, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to encode JSON response.", "error", errors.Wrap(err, "marshal"), "dataType", fmt.Sprintf("%T", data))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("Failed to write response body.", "error", err)
	}
}

// writeError writes {"error": message} with the given status.
func writeError(w http.ResponseWriter, logger logging.Logger, status int, message string) {
	writeJSON(w, logger, status, errorBody{Error: message})
}

// writeCatalogError maps a catalog error to its HTTP status and message.
func writeCatalogError(w http.ResponseWriter, logger logging.Logger, err error) {
	status, message := mcperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed.", "error", err)
	}
	writeError(w, logger, status, message)
}
