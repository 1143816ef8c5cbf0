package router

import (
	"net/http"

	"github.com/luqmanbooso/BuildMart-sub001/internal/handlers"
)

func InitRoutes(bidHandler *handlers.BidHandler, projectHandler *handlers.ProjectHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/bids/submit", bidHandler.SubmitBid)
	mux.HandleFunc("GET /api/bids", bidHandler.GetAllBids)
	mux.HandleFunc("GET /api/bids/project/{projectId}", bidHandler.GetProjectBids)
	mux.HandleFunc("GET /api/bids/project/{projectId}/lowest", bidHandler.GetLowestBid)
	mux.HandleFunc("PUT /api/bids/{bidId}/status", bidHandler.UpdateBidStatus)
	mux.HandleFunc("PUT /api/bids/update/{bidId}", bidHandler.UpdateBid)
	mux.HandleFunc("GET /api/bids/contractor/{contractorId}", bidHandler.GetContractorBids)

	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects", projectHandler.GetAllProjects)
	mux.HandleFunc("GET /api/projects/{projectId}", projectHandler.GetProject)

	return mux
}
