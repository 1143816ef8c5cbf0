package models

import "github.com/shopspring/decimal"

// Error kinds outside the rule engine's taxonomy.
const (
	KindNotFound     = "not_found"
	KindForbidden    = "forbidden"
	KindStorageError = "storage_error"
)

// ErrorResponse describes a failed request: an HTTP status, a machine-readable
// kind, a human message and whatever diagnostic context the kind carries so
// the caller can compute a corrected price without a second round trip.
type ErrorResponse struct {
	StatusCode       int              `json:"-"`
	Kind             string           `json:"error"`
	Message          string           `json:"message"`
	CurrentLowestBid *decimal.Decimal `json:"currentLowestBid,omitempty"`
	RequiredBid      *decimal.Decimal `json:"requiredBid,omitempty"`
	MinDecrement     *decimal.Decimal `json:"minDecrement,omitempty"`
	MinBudget        *decimal.Decimal `json:"minBudget,omitempty"`
	SuggestedPrice   *decimal.Decimal `json:"suggestedPrice,omitempty"`
	BidStatus        string           `json:"status,omitempty"`
}

// NewErrorResponse creates a new error with a status code, kind and message.
func NewErrorResponse(statusCode int, kind, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message,
	}
}

// Error satisfies the error interface.
func (e *ErrorResponse) Error() string {
	return e.Message
}
