package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type BidStatus string // Lifecycle state of a bid

const (
	PendingBid  BidStatus = "pending"  // Bid is live and revisable
	AcceptedBid BidStatus = "accepted" // Bid won the auction
	RejectedBid BidStatus = "rejected" // Bid lost or was declined
)

// MaxBidUpdates is the hard cap on revisions per bid.
const MaxBidUpdates = 3

// PriceSnapshot records a bid's price as it was before one revision.
type PriceSnapshot struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Bid represents one contractor's priced proposal against a project auction.
type Bid struct {
	ID                string          `json:"id"`
	ProjectID         string          `json:"projectId"`
	ContractorID      string          `json:"contractorId"`
	ContractorName    string          `json:"contractorName"`
	Price             decimal.Decimal `json:"price"`
	Timeline          int             `json:"timeline"`
	Qualifications    string          `json:"qualifications"`
	Rating            *float64        `json:"rating,omitempty"`
	CompletedProjects *int            `json:"completedProjects,omitempty"`
	Status            BidStatus       `json:"status"`
	UpdateCount       int             `json:"updateCount"`
	PreviousPrices    []PriceSnapshot `json:"previousPrices"`
	CostBreakdown     json.RawMessage `json:"costBreakdown,omitempty"`
	TimelineBreakdown json.RawMessage `json:"timelineBreakdown,omitempty"`
	SpecialRequests   string          `json:"specialRequests,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// BidRequest represents the request body for submitting a new bid.
// The contractorname key is lowercase on the wire; clients depend on it.
type BidRequest struct {
	ProjectID         string          `json:"projectId"`
	ContractorID      string          `json:"contractorId"`
	ContractorName    string          `json:"contractorname"`
	Price             decimal.Decimal `json:"price"`
	Timeline          int             `json:"timeline"`
	Qualifications    string          `json:"qualifications"`
	Rating            *float64        `json:"rating,omitempty"`
	CompletedProjects *int            `json:"completedProjects,omitempty"`
	CostBreakdown     json.RawMessage `json:"costBreakdown,omitempty"`
	TimelineBreakdown json.RawMessage `json:"timelineBreakdown,omitempty"`
	SpecialRequests   string          `json:"specialRequests,omitempty"`
}

// BidUpdateRequest represents the request body for revising an existing bid.
// Nil fields are left unchanged; a nil Price skips price re-validation.
type BidUpdateRequest struct {
	ContractorID      string           `json:"contractorId"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Timeline          *int             `json:"timeline,omitempty"`
	Qualifications    *string          `json:"qualifications,omitempty"`
	CostBreakdown     json.RawMessage  `json:"costBreakdown,omitempty"`
	TimelineBreakdown json.RawMessage  `json:"timelineBreakdown,omitempty"`
	SpecialRequests   *string          `json:"specialRequests,omitempty"`
}

// BidStatusRequest represents the request body for finalizing a bid.
type BidStatusRequest struct {
	Status BidStatus `json:"status"`
}

// BidSubmitResponse is the envelope returned on successful submission.
type BidSubmitResponse struct {
	Message string `json:"message"`
	Bid     *Bid   `json:"bid"`
}

// BidUpdateResponse is the envelope returned on successful revision.
type BidUpdateResponse struct {
	Message          string `json:"message"`
	Bid              *Bid   `json:"bid"`
	UpdatesRemaining int    `json:"updatesRemaining"`
}

// BidStatusResponse is the envelope returned on a status transition.
type BidStatusResponse struct {
	Message string `json:"message"`
	Bid     *Bid   `json:"bid"`
}

// LowestBidResponse answers the market-guidance query for a project.
type LowestBidResponse struct {
	Exists       bool             `json:"exists"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	MinDecrement *decimal.Decimal `json:"minDecrement,omitempty"`
}
