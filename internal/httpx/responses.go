package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the REST error payload.
type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the legacy form-action response shape: {success, data}.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// JSON writes v as a bare JSON body. GET responses on the REST transport
// use this directly.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes a REST error body.
func JSONError(w http.ResponseWriter, status int, code, message string, details []ErrorDetail) {
	JSON(w, status, ErrorBody{Code: code, Message: message, Details: details})
}

// FormSuccess writes the legacy {success:true, data} envelope.
func FormSuccess(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// FormError writes the legacy {success:false, data:{message}} envelope.
// The legacy transport reports every failure with a wire-level status
// matching the error kind but keeps the body shape fixed.
func FormError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Data: map[string]string{"message": message}})
}
