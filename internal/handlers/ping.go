package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/luqmanbooso/BuildMart-sub001/internal/models"
	"github.com/luqmanbooso/BuildMart-sub001/internal/utils"
)

// PingHandler handles GET requests to /api/ping.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "invalid method, only GET is allowed"))
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "ok"); err != nil {
		log.Println(err)
	}
}
