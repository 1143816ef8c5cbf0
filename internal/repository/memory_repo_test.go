package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/luqmanbooso/BuildMart-sub001/internal/bidrules"
	"github.com/luqmanbooso/BuildMart-sub001/internal/models"
	"github.com/luqmanbooso/BuildMart-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func submit(t *testing.T, repo *repository.MemoryBidRepository, projectId, contractor string, price int64) *models.Bid {
	t.Helper()
	bid, err := repo.SubmitBid(context.Background(), models.BidRequest{
		ProjectID:      projectId,
		ContractorID:   contractor,
		ContractorName: contractor,
		Price:          dec(price),
		Timeline:       30,
		Qualifications: "licensed general contractor",
	}, nil)
	if err != nil {
		t.Fatalf("SubmitBid(%s, %d): %v", contractor, price, err)
	}
	return bid
}

func wantViolation(t *testing.T, err error, kind string) *bidrules.Violation {
	t.Helper()
	var v *bidrules.Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected violation %q, got %v", kind, err)
	}
	if v.Kind != kind {
		t.Fatalf("expected violation %q, got %q", kind, v.Kind)
	}
	return v
}

func TestSubmitFirstBid(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	if _, err := repo.GetLowestBid(ctx, "p1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty project, got %v", err)
	}

	bid := submit(t, repo, "p1", "alpha", 50000)
	if bid.Status != models.PendingBid {
		t.Errorf("new bid status = %s, want pending", bid.Status)
	}
	if bid.UpdateCount != 0 || len(bid.PreviousPrices) != 0 {
		t.Errorf("new bid has history: updateCount=%d previousPrices=%d", bid.UpdateCount, len(bid.PreviousPrices))
	}

	lowest, err := repo.GetLowestBid(ctx, "p1")
	if err != nil {
		t.Fatalf("GetLowestBid: %v", err)
	}
	if !lowest.Price.Equal(dec(50000)) {
		t.Errorf("lowest = %s, want 50000", lowest.Price)
	}
}

func TestSingleBidPerContractorPerProject(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	submit(t, repo, "p1", "alpha", 50000)
	_, err := repo.SubmitBid(ctx, models.BidRequest{
		ProjectID:      "p1",
		ContractorID:   "alpha",
		ContractorName: "alpha",
		Price:          dec(40000),
		Timeline:       20,
		Qualifications: "licensed",
	}, nil)
	wantViolation(t, err, bidrules.KindDuplicateBid)

	bids, err := repo.GetProjectBids(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProjectBids: %v", err)
	}
	if len(bids) != 1 {
		t.Fatalf("expected 1 bid after duplicate rejection, got %d", len(bids))
	}
}

func TestDecrementAgainstMarket(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	submit(t, repo, "p1", "alpha", 12000)

	_, err := repo.SubmitBid(ctx, models.BidRequest{
		ProjectID: "p1", ContractorID: "beta", ContractorName: "beta",
		Price: dec(11850), Timeline: 30, Qualifications: "licensed",
	}, nil)
	v := wantViolation(t, err, bidrules.KindInsufficientDecrement)
	if !v.RequiredBid.Equal(dec(11800)) {
		t.Errorf("requiredBid = %s, want 11800", v.RequiredBid)
	}

	submit(t, repo, "p1", "beta", 11800)
}

func TestRevisionHistoryAppendOnly(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	bid := submit(t, repo, "p1", "alpha", 50000)

	prices := []int64{48000, 46000, 44000}
	for _, p := range prices {
		price := dec(p)
		var err error
		bid, err = repo.ReviseBid(ctx, bid.ID, models.BidUpdateRequest{ContractorID: "alpha", Price: &price}, nil)
		if err != nil {
			t.Fatalf("ReviseBid to %d: %v", p, err)
		}
	}

	if bid.UpdateCount != 3 {
		t.Errorf("updateCount = %d, want 3", bid.UpdateCount)
	}
	if len(bid.PreviousPrices) != 3 {
		t.Fatalf("previousPrices length = %d, want 3", len(bid.PreviousPrices))
	}
	wantHistory := []int64{50000, 48000, 46000}
	for i, w := range wantHistory {
		if !bid.PreviousPrices[i].Price.Equal(dec(w)) {
			t.Errorf("previousPrices[%d] = %s, want %d", i, bid.PreviousPrices[i].Price, w)
		}
	}

	// The 4th revision must fail and leave the bid untouched.
	price := dec(42000)
	_, err := repo.ReviseBid(ctx, bid.ID, models.BidUpdateRequest{ContractorID: "alpha", Price: &price}, nil)
	wantViolation(t, err, bidrules.KindUpdateLimitExceeded)

	after, err := repo.GetBidByID(ctx, bid.ID)
	if err != nil {
		t.Fatalf("GetBidByID: %v", err)
	}
	if !after.Price.Equal(dec(44000)) || after.UpdateCount != 3 || len(after.PreviousPrices) != 3 {
		t.Errorf("bid changed by rejected revision: price=%s updateCount=%d history=%d",
			after.Price, after.UpdateCount, len(after.PreviousPrices))
	}
}

func TestRevisionExcludesOwnBidFromMarket(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	bid := submit(t, repo, "p1", "alpha", 50000)

	// Alone in the auction, the bid competes against nobody: any positive
	// revision price is admissible.
	price := dec(49999)
	revised, err := repo.ReviseBid(ctx, bid.ID, models.BidUpdateRequest{ContractorID: "alpha", Price: &price}, nil)
	if err != nil {
		t.Fatalf("ReviseBid: %v", err)
	}
	if !revised.Price.Equal(dec(49999)) {
		t.Errorf("price = %s, want 49999", revised.Price)
	}
}

func TestAcceptanceCascade(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	a := submit(t, repo, "p1", "alpha", 50000)
	submit(t, repo, "p1", "beta", 48000)
	submit(t, repo, "p1", "gamma", 46000)

	accepted, err := repo.UpdateBidStatus(ctx, a.ID, models.AcceptedBid)
	if err != nil {
		t.Fatalf("UpdateBidStatus: %v", err)
	}
	if accepted.Status != models.AcceptedBid {
		t.Errorf("winner status = %s, want accepted", accepted.Status)
	}

	bids, err := repo.GetProjectBids(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProjectBids: %v", err)
	}
	var acceptedCount, pendingCount int
	for _, b := range bids {
		switch b.Status {
		case models.AcceptedBid:
			acceptedCount++
		case models.PendingBid:
			pendingCount++
		}
	}
	if acceptedCount != 1 {
		t.Errorf("accepted bids = %d, want exactly 1", acceptedCount)
	}
	if pendingCount != 0 {
		t.Errorf("pending siblings left after acceptance: %d", pendingCount)
	}
}

func TestFinalizedBidCannotTransition(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	a := submit(t, repo, "p1", "alpha", 50000)
	b := submit(t, repo, "p1", "beta", 48000)

	if _, err := repo.UpdateBidStatus(ctx, a.ID, models.AcceptedBid); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// The cascaded-rejected sibling is terminal too.
	_, err := repo.UpdateBidStatus(ctx, b.ID, models.AcceptedBid)
	wantViolation(t, err, bidrules.KindBidFinalized)

	_, err = repo.UpdateBidStatus(ctx, a.ID, models.RejectedBid)
	wantViolation(t, err, bidrules.KindBidFinalized)

	price := dec(40000)
	_, err = repo.ReviseBid(ctx, b.ID, models.BidUpdateRequest{ContractorID: "beta", Price: &price}, nil)
	v := wantViolation(t, err, bidrules.KindBidFinalized)
	if v.Status != string(models.RejectedBid) {
		t.Errorf("violation status = %q, want rejected", v.Status)
	}
}

func TestDirectRejectionHasNoCascade(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	a := submit(t, repo, "p1", "alpha", 50000)
	b := submit(t, repo, "p1", "beta", 48000)

	if _, err := repo.UpdateBidStatus(ctx, b.ID, models.RejectedBid); err != nil {
		t.Fatalf("reject: %v", err)
	}

	remaining, err := repo.GetBidByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetBidByID: %v", err)
	}
	if remaining.Status != models.PendingBid {
		t.Errorf("sibling status = %s after direct rejection, want pending", remaining.Status)
	}
}

func TestRejectedBidsExcludedFromMarket(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	a := submit(t, repo, "p1", "alpha", 10000)
	if _, err := repo.UpdateBidStatus(ctx, a.ID, models.RejectedBid); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// A rejected bid no longer gates admissions nor answers the lowest query.
	submit(t, repo, "p1", "beta", 50000)

	lowest, err := repo.GetLowestBid(ctx, "p1")
	if err != nil {
		t.Fatalf("GetLowestBid: %v", err)
	}
	if !lowest.Price.Equal(dec(50000)) {
		t.Errorf("lowest = %s, want 50000", lowest.Price)
	}
}

func TestDuplicatePriceRejected(t *testing.T) {
	repo := repository.NewMemoryBidRepository()
	ctx := context.Background()

	// A rejected bid stops gating the decrement but its price remains taken:
	// an admissible new price can still collide with it exactly.
	a := submit(t, repo, "p1", "alpha", 45000)
	if _, err := repo.UpdateBidStatus(ctx, a.ID, models.RejectedBid); err != nil {
		t.Fatalf("reject: %v", err)
	}
	submit(t, repo, "p1", "beta", 50000)

	_, err := repo.SubmitBid(ctx, models.BidRequest{
		ProjectID: "p1", ContractorID: "gamma", ContractorName: "gamma",
		Price: dec(45000), Timeline: 30, Qualifications: "licensed",
	}, nil)
	dup := wantViolation(t, err, bidrules.KindDuplicatePrice)
	if !dup.SuggestedPrice.Equal(dec(45001)) {
		t.Errorf("suggestedPrice = %s, want 45001", dup.SuggestedPrice)
	}

	// The suggested price one unit up is accepted.
	submit(t, repo, "p1", "gamma", 45001)
}
