package httpapi

import (
	"encoding/json"
	"net/http"

	"backend2/internal/apperr"
)

// errorBody is the stub error envelope both routers emit. Real S3 errors
// are XML and real DynamoDB errors are a specific JSON exception shape;
// spec.md §6 marks wire fidelity out of scope, so this single shape stands
// in for both until the (external) wire encoders take over.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError renders any error as JSON with the status the taxonomy in
// internal/apperr assigns it (spec.md §7), falling back to 500 for
// anything that isn't a typed *apperr.Error (an unexpected internal
// failure, never swallowed per spec.md §7's propagation rule).
func writeError(w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err.Error())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorBody{Code: string(appErr.Code), Message: appErr.Message})
}

// writeJSON renders a successful result as JSON.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
