package api

import (
	"encoding/json"
	"net/http"
)

// OKResponse writes data as a 200 JSON response.
func OKResponse(w http.ResponseWriter, data any) {
	JSONResponse(w, http.StatusOK, data)
}

// JSONResponse writes data as JSON with the given status code.
func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ErrorResponse writes {"error": message} with the given status code.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, map[string]string{"error": message})
}

// MessageResponse writes {"message": message} with the given status code.
func MessageResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, map[string]string{"message": message})
}
