package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProjectStatus string // Status of a project auction

const (
	OpenProject   ProjectStatus = "open"   // Project is accepting bids
	ClosedProject ProjectStatus = "closed" // Project auction has ended
)

// Project represents a job posting being bid on. The rule engine only
// consumes its identity and minBudget; the rest is marketplace metadata.
type Project struct {
	ID          string           `json:"id"`
	ClientID    string           `json:"clientId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category,omitempty"`
	MinBudget   *decimal.Decimal `json:"minBudget,omitempty"`
	MaxBudget   *decimal.Decimal `json:"maxBudget,omitempty"`
	Status      ProjectStatus    `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ProjectRequest represents the request body for creating a project.
type ProjectRequest struct {
	ClientID    string           `json:"clientId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category,omitempty"`
	MinBudget   *decimal.Decimal `json:"minBudget,omitempty"`
	MaxBudget   *decimal.Decimal `json:"maxBudget,omitempty"`
}
