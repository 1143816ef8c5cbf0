package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/luqmanbooso/BuildMart-sub001/internal/bidrules"
	"github.com/luqmanbooso/BuildMart-sub001/internal/models"
	"github.com/luqmanbooso/BuildMart-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

// BidService owns the request-level checks around the bid ledger: field
// validation, project existence, bid ownership. Admissibility itself is
// decided by the rule engine inside the repository's transaction.
type BidService struct {
	Repo     repository.BidRepository
	Projects repository.ProjectRepository
}

// NewBidService creates a new BidService instance.
func NewBidService(repo repository.BidRepository, projects repository.ProjectRepository) *BidService {
	return &BidService{Repo: repo, Projects: projects}
}

// violationToError maps a rule violation to the 400 error envelope, carrying
// the diagnostic context through unchanged.
func violationToError(v *bidrules.Violation) *models.ErrorResponse {
	return &models.ErrorResponse{
		StatusCode:       http.StatusBadRequest,
		Kind:             v.Kind,
		Message:          v.Message,
		CurrentLowestBid: v.CurrentLowestBid,
		RequiredBid:      v.RequiredBid,
		MinDecrement:     v.MinDecrement,
		MinBudget:        v.MinBudget,
		SuggestedPrice:   v.SuggestedPrice,
		BidStatus:        v.Status,
	}
}

func mapRepoError(err error, notFoundMessage string) *models.ErrorResponse {
	var v *bidrules.Violation
	if errors.As(err, &v) {
		return violationToError(v)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewErrorResponse(http.StatusNotFound, models.KindNotFound, notFoundMessage)
	}
	return models.NewErrorResponse(http.StatusInternalServerError, models.KindStorageError, "unexpected storage failure")
}

// SubmitBid validates and admits a new bid against a project auction.
func (s *BidService) SubmitBid(ctx context.Context, req models.BidRequest) (*models.Bid, error) {
	if req.ProjectID == "" || req.ContractorID == "" || req.ContractorName == "" || req.Qualifications == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "missing required fields")
	}
	if !req.Price.IsPositive() {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "price must be a positive amount")
	}
	if req.Timeline <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "timeline must be a positive number of days")
	}

	project, err := s.Projects.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, mapRepoError(err, "project not found")
	}

	bid, err := s.Repo.SubmitBid(ctx, req, project.MinBudget)
	if err != nil {
		return nil, mapRepoError(err, "project not found")
	}
	return bid, nil
}

// ReviseBid validates and applies a revision to an existing bid.
func (s *BidService) ReviseBid(ctx context.Context, bidId string, upd models.BidUpdateRequest) (*models.Bid, error) {
	if bidId == "" || upd.ContractorID == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "missing required fields: bidId or contractorId")
	}
	if upd.Price != nil && !upd.Price.IsPositive() {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "price must be a positive amount")
	}
	if upd.Timeline != nil && *upd.Timeline <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "timeline must be a positive number of days")
	}

	bid, err := s.Repo.GetBidByID(ctx, bidId)
	if err != nil {
		return nil, mapRepoError(err, "bid not found")
	}
	if bid.ContractorID != upd.ContractorID {
		return nil, models.NewErrorResponse(http.StatusForbidden, models.KindForbidden, "only the contractor who submitted this bid may update it")
	}

	var minBudget *decimal.Decimal
	project, err := s.Projects.GetProjectByID(ctx, bid.ProjectID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, mapRepoError(err, "project not found")
	}
	if project != nil {
		minBudget = project.MinBudget
	}

	updated, err := s.Repo.ReviseBid(ctx, bidId, upd, minBudget)
	if err != nil {
		return nil, mapRepoError(err, "bid not found")
	}
	return updated, nil
}

// UpdateBidStatus finalizes a bid as accepted or rejected.
func (s *BidService) UpdateBidStatus(ctx context.Context, bidId string, status models.BidStatus) (*models.Bid, error) {
	if status != models.AcceptedBid && status != models.RejectedBid {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "status must be either 'accepted' or 'rejected'")
	}

	bid, err := s.Repo.UpdateBidStatus(ctx, bidId, status)
	if err != nil {
		return nil, mapRepoError(err, "bid not found")
	}
	return bid, nil
}

// GetLowestBid answers the market-guidance query for a project.
func (s *BidService) GetLowestBid(ctx context.Context, projectId string) (*models.LowestBidResponse, error) {
	lowest, err := s.Repo.GetLowestBid(ctx, projectId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &models.LowestBidResponse{Exists: false}, nil
		}
		return nil, mapRepoError(err, "")
	}

	minDecrement := bidrules.MinDecrement(lowest.Price)
	return &models.LowestBidResponse{
		Exists:       true,
		Price:        &lowest.Price,
		MinDecrement: &minDecrement,
	}, nil
}

// GetAllBids returns every bid on record.
func (s *BidService) GetAllBids(ctx context.Context) ([]models.Bid, error) {
	bids, err := s.Repo.GetAllBids(ctx)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	return bids, nil
}

// GetProjectBids returns the bids for a project.
func (s *BidService) GetProjectBids(ctx context.Context, projectId string) ([]models.Bid, error) {
	if projectId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "missing required parameter: projectId")
	}
	bids, err := s.Repo.GetProjectBids(ctx, projectId)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	return bids, nil
}

// GetContractorBids returns the bids submitted by a contractor.
func (s *BidService) GetContractorBids(ctx context.Context, contractorId string) ([]models.Bid, error) {
	if contractorId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "missing required parameter: contractorId")
	}
	bids, err := s.Repo.GetContractorBids(ctx, contractorId)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	return bids, nil
}
