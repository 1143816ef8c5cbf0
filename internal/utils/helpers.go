package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/luqmanbooso/BuildMart-sub001/internal/models"
)

// SendErrorResponse writes an error envelope as JSON, including whatever
// diagnostic context the error carries.
func SendErrorResponse(w http.ResponseWriter, errResp *models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errResp.StatusCode)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.Println(err)
	}
}

// SendJSON writes a success payload as JSON with the given status code.
func SendJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println(err)
	}
}
