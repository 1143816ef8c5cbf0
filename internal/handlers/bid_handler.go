package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/luqmanbooso/BuildMart-sub001/internal/models"
	"github.com/luqmanbooso/BuildMart-sub001/internal/services"
	"github.com/luqmanbooso/BuildMart-sub001/internal/utils"
)

// BidHandler handles HTTP requests against the bid ledger.
type BidHandler struct {
	Service *services.BidService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewBidHandler creates a new BidHandler instance.
func NewBidHandler(service *services.BidService, logger *log.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *BidHandler) sendError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errResp, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errResp)
		return
	}
	utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusInternalServerError, models.KindStorageError, fallback))
}

// SubmitBid handles submission of a new bid.
func (h *BidHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var bidReq models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&bidReq); err != nil {
		utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "invalid request body"))
		return
	}

	newBid, err := h.Service.SubmitBid(ctx, bidReq)
	if err != nil {
		h.sendError(w, err, "failed to submit bid")
		return
	}

	utils.SendJSON(w, http.StatusCreated, models.BidSubmitResponse{
		Message: "bid submitted successfully",
		Bid:     newBid,
	})
}

// GetAllBids handles listing every bid.
func (h *BidHandler) GetAllBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	bids, err := h.Service.GetAllBids(ctx)
	if err != nil {
		h.sendError(w, err, "failed to retrieve bids")
		return
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	utils.SendJSON(w, http.StatusOK, bids)
}

// GetProjectBids handles listing the bids for one project.
func (h *BidHandler) GetProjectBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectId := r.PathValue("projectId")

	bids, err := h.Service.GetProjectBids(ctx, projectId)
	if err != nil {
		h.sendError(w, err, "failed to retrieve bids for project")
		return
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	utils.SendJSON(w, http.StatusOK, bids)
}

// GetLowestBid handles the market-guidance query for one project.
func (h *BidHandler) GetLowestBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectId := r.PathValue("projectId")

	lowest, err := h.Service.GetLowestBid(ctx, projectId)
	if err != nil {
		h.sendError(w, err, "failed to retrieve lowest bid")
		return
	}
	utils.SendJSON(w, http.StatusOK, lowest)
}

// UpdateBidStatus handles accepting or rejecting a bid.
func (h *BidHandler) UpdateBidStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	bidId := r.PathValue("bidId")

	var statusReq models.BidStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&statusReq); err != nil {
		utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "invalid request body"))
		return
	}

	bid, err := h.Service.UpdateBidStatus(ctx, bidId, statusReq.Status)
	if err != nil {
		h.sendError(w, err, "failed to update bid status")
		return
	}

	utils.SendJSON(w, http.StatusOK, models.BidStatusResponse{
		Message: "bid " + string(bid.Status),
		Bid:     bid,
	})
}

// UpdateBid handles a revision of an existing bid.
func (h *BidHandler) UpdateBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	bidId := r.PathValue("bidId")

	var updateReq models.BidUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "invalid request body"))
		return
	}

	updatedBid, err := h.Service.ReviseBid(ctx, bidId, updateReq)
	if err != nil {
		h.sendError(w, err, "failed to update bid")
		return
	}

	utils.SendJSON(w, http.StatusOK, models.BidUpdateResponse{
		Message:          "bid updated successfully",
		Bid:              updatedBid,
		UpdatesRemaining: models.MaxBidUpdates - updatedBid.UpdateCount,
	})
}

// GetContractorBids handles listing one contractor's bids.
func (h *BidHandler) GetContractorBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	contractorId := r.PathValue("contractorId")

	bids, err := h.Service.GetContractorBids(ctx, contractorId)
	if err != nil {
		h.sendError(w, err, "failed to retrieve contractor bids")
		return
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	utils.SendJSON(w, http.StatusOK, bids)
}
