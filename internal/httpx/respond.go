package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes a single error message in the {"error": "..."} shape the
// frontend expects.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// FieldErrors writes a 400 with a per-field error map, mirroring serializer
// validation output.
func FieldErrors(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}
