package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/luqmanbooso/BuildMart-sub001/internal/bidrules"
	"github.com/luqmanbooso/BuildMart-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryBidRepository is an in-memory BidRepository used by tests. It runs
// the same rule engine as the Postgres implementation; the mutex stands in
// for the serializable transaction.
type MemoryBidRepository struct {
	mu   sync.Mutex
	bids map[string]*models.Bid
}

// NewMemoryBidRepository creates an empty in-memory bid store.
func NewMemoryBidRepository() *MemoryBidRepository {
	return &MemoryBidRepository{bids: make(map[string]*models.Bid)}
}

func copyBid(b *models.Bid) *models.Bid {
	out := *b
	out.PreviousPrices = append([]models.PriceSnapshot(nil), b.PreviousPrices...)
	return &out
}

func (r *MemoryBidRepository) market(projectId, excludeBidId string, minBudget *decimal.Decimal) bidrules.Market {
	market := bidrules.Market{MinBudget: minBudget}
	for _, b := range r.bids {
		if b.ProjectID != projectId || b.ID == excludeBidId {
			continue
		}
		market.Prices = append(market.Prices, b.Price)
		if b.Status != models.RejectedBid && (market.Lowest == nil || b.Price.LessThan(*market.Lowest)) {
			lowest := b.Price
			market.Lowest = &lowest
		}
	}
	sort.Slice(market.Prices, func(i, j int) bool {
		return market.Prices[i].LessThan(market.Prices[j])
	})
	return market
}

// SubmitBid admits and stores a new bid.
func (r *MemoryBidRepository) SubmitBid(_ context.Context, req models.BidRequest, minBudget *decimal.Decimal) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bids {
		if b.ProjectID == req.ProjectID && b.ContractorName == req.ContractorName {
			return nil, bidrules.DuplicateBidder(req.ContractorName)
		}
	}

	if v := bidrules.CheckPrice(req.Price, r.market(req.ProjectID, "", minBudget)); v != nil {
		return nil, v
	}

	now := time.Now().UTC()
	newBid := &models.Bid{
		ID:                uuid.New().String(),
		ProjectID:         req.ProjectID,
		ContractorID:      req.ContractorID,
		ContractorName:    req.ContractorName,
		Price:             req.Price,
		Timeline:          req.Timeline,
		Qualifications:    req.Qualifications,
		Rating:            req.Rating,
		CompletedProjects: req.CompletedProjects,
		Status:            models.PendingBid,
		UpdateCount:       0,
		PreviousPrices:    []models.PriceSnapshot{},
		CostBreakdown:     req.CostBreakdown,
		TimelineBreakdown: req.TimelineBreakdown,
		SpecialRequests:   req.SpecialRequests,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.bids[newBid.ID] = newBid
	return copyBid(newBid), nil
}

// ReviseBid applies a revision to a stored bid.
func (r *MemoryBidRepository) ReviseBid(_ context.Context, bidId string, upd models.BidUpdateRequest, minBudget *decimal.Decimal) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.bids[bidId]
	if !ok {
		return nil, ErrNotFound
	}

	if v := bidrules.CheckRevisable(string(bid.Status), bid.UpdateCount, models.MaxBidUpdates); v != nil {
		return nil, v
	}

	priceChanged := upd.Price != nil && !upd.Price.Equal(bid.Price)
	if priceChanged {
		if v := bidrules.CheckPrice(*upd.Price, r.market(bid.ProjectID, bidId, minBudget)); v != nil {
			return nil, v
		}
	}

	now := time.Now().UTC()
	bid.PreviousPrices = append(bid.PreviousPrices, models.PriceSnapshot{Price: bid.Price, UpdatedAt: now})
	bid.UpdateCount++
	bid.UpdatedAt = now

	if upd.Price != nil {
		bid.Price = *upd.Price
	}
	if upd.Timeline != nil {
		bid.Timeline = *upd.Timeline
	}
	if upd.Qualifications != nil {
		bid.Qualifications = *upd.Qualifications
	}
	if upd.CostBreakdown != nil {
		bid.CostBreakdown = upd.CostBreakdown
	}
	if upd.TimelineBreakdown != nil {
		bid.TimelineBreakdown = upd.TimelineBreakdown
	}
	if upd.SpecialRequests != nil {
		bid.SpecialRequests = *upd.SpecialRequests
	}
	return copyBid(bid), nil
}

// GetAllBids returns every stored bid.
func (r *MemoryBidRepository) GetAllBids(_ context.Context) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bids []models.Bid
	for _, b := range r.bids {
		bids = append(bids, *copyBid(b))
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].CreatedAt.After(bids[j].CreatedAt) })
	return bids, nil
}

// GetProjectBids returns the bids for one project, cheapest first.
func (r *MemoryBidRepository) GetProjectBids(_ context.Context, projectId string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bids []models.Bid
	for _, b := range r.bids {
		if b.ProjectID == projectId {
			bids = append(bids, *copyBid(b))
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price.LessThan(bids[j].Price) })
	return bids, nil
}

// GetContractorBids returns the bids submitted by one contractor.
func (r *MemoryBidRepository) GetContractorBids(_ context.Context, contractorId string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bids []models.Bid
	for _, b := range r.bids {
		if b.ContractorID == contractorId {
			bids = append(bids, *copyBid(b))
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].CreatedAt.After(bids[j].CreatedAt) })
	return bids, nil
}

// GetBidByID returns one stored bid.
func (r *MemoryBidRepository) GetBidByID(_ context.Context, bidId string) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.bids[bidId]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBid(bid), nil
}

// GetLowestBid returns the cheapest non-rejected bid for a project.
func (r *MemoryBidRepository) GetLowestBid(_ context.Context, projectId string) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lowest *models.Bid
	for _, b := range r.bids {
		if b.ProjectID != projectId || b.Status == models.RejectedBid {
			continue
		}
		if lowest == nil || b.Price.LessThan(lowest.Price) {
			lowest = b
		}
	}
	if lowest == nil {
		return nil, ErrNotFound
	}
	return copyBid(lowest), nil
}

// UpdateBidStatus finalizes a bid, cascading rejection over pending siblings
// on acceptance.
func (r *MemoryBidRepository) UpdateBidStatus(_ context.Context, bidId string, status models.BidStatus) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.bids[bidId]
	if !ok {
		return nil, ErrNotFound
	}

	if bid.Status != models.PendingBid {
		return nil, &bidrules.Violation{
			Kind:    bidrules.KindBidFinalized,
			Message: fmt.Sprintf("bid has already been %s", bid.Status),
			Status:  string(bid.Status),
		}
	}

	now := time.Now().UTC()
	bid.Status = status
	bid.UpdatedAt = now

	if status == models.AcceptedBid {
		for _, sibling := range r.bids {
			if sibling.ProjectID == bid.ProjectID && sibling.ID != bid.ID && sibling.Status == models.PendingBid {
				sibling.Status = models.RejectedBid
				sibling.UpdatedAt = now
			}
		}
	}
	return copyBid(bid), nil
}

// MemoryProjectRepository is an in-memory ProjectRepository used by tests.
type MemoryProjectRepository struct {
	mu       sync.Mutex
	projects map[string]*models.Project
}

// NewMemoryProjectRepository creates an empty in-memory project store.
func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{projects: make(map[string]*models.Project)}
}

// CreateProject stores a new open project.
func (r *MemoryProjectRepository) CreateProject(_ context.Context, req models.ProjectRequest) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	newProject := &models.Project{
		ID:          uuid.New().String(),
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		MinBudget:   req.MinBudget,
		MaxBudget:   req.MaxBudget,
		Status:      models.OpenProject,
		CreatedAt:   time.Now().UTC(),
	}
	r.projects[newProject.ID] = newProject
	out := *newProject
	return &out, nil
}

// GetProjectByID returns one stored project.
func (r *MemoryProjectRepository) GetProjectByID(_ context.Context, projectId string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, ok := r.projects[projectId]
	if !ok {
		return nil, ErrNotFound
	}
	out := *project
	return &out, nil
}

// GetAllProjects returns every stored project.
func (r *MemoryProjectRepository) GetAllProjects(_ context.Context) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var projects []models.Project
	for _, p := range r.projects {
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}
