package ui

import (
	"encoding/json"
	"net/http"

	"seqcode/internal"
	"seqcode/internal/errors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		internal.DefaultLogger.Error("failed to encode response: %v", err)
	}
}

// respondError translates engine errors into HTTP statuses. The message is
// surfaced verbatim; the host decides how to present it.
func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.CodeTemplateError, errors.CodeAttributeNotFound, errors.CodeAttributeType,
		errors.CodeConditionalConfig, errors.CodeInvalidInput, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeDuplicateDefinition:
		status = http.StatusConflict
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeStoreError:
		status = http.StatusBadGateway
	case errors.CodeNoEligibleNumber:
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		internal.DefaultLogger.Error("request failed: %v", err)
	}
	respondJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}
