package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luqmanbooso/BuildMart-sub001/internal/bidrules"
	"github.com/luqmanbooso/BuildMart-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced bid or project does not exist.
var ErrNotFound = errors.New("not found")

// txAttempts bounds retries of serializable transactions that lose a write
// conflict against a concurrent submission.
const txAttempts = 3

// BidRepository is the storage contract for the bid ledger. SubmitBid and
// ReviseBid evaluate the admissibility rules against a market snapshot taken
// inside the same transaction as the write, so two concurrent submissions
// cannot both be admitted against a stale lowest bid.
type BidRepository interface {
	SubmitBid(ctx context.Context, req models.BidRequest, minBudget *decimal.Decimal) (*models.Bid, error)
	ReviseBid(ctx context.Context, bidId string, upd models.BidUpdateRequest, minBudget *decimal.Decimal) (*models.Bid, error)
	GetAllBids(ctx context.Context) ([]models.Bid, error)
	GetProjectBids(ctx context.Context, projectId string) ([]models.Bid, error)
	GetContractorBids(ctx context.Context, contractorId string) ([]models.Bid, error)
	GetBidByID(ctx context.Context, bidId string) (*models.Bid, error)
	GetLowestBid(ctx context.Context, projectId string) (*models.Bid, error)
	UpdateBidStatus(ctx context.Context, bidId string, status models.BidStatus) (*models.Bid, error)
}

// PostgresBidRepository is the BidRepository implementation for Postgres.
type PostgresBidRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBidRepository creates a new PostgresBidRepository instance.
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

const bidColumns = `id, project_id, contractor_id, contractor_name, price, timeline, qualifications,
	rating, completed_projects, status, update_count, previous_prices,
	cost_breakdown, timeline_breakdown, special_requests, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (*models.Bid, error) {
	var bid models.Bid
	var specialRequests *string
	err := row.Scan(
		&bid.ID,
		&bid.ProjectID,
		&bid.ContractorID,
		&bid.ContractorName,
		&bid.Price,
		&bid.Timeline,
		&bid.Qualifications,
		&bid.Rating,
		&bid.CompletedProjects,
		&bid.Status,
		&bid.UpdateCount,
		&bid.PreviousPrices,
		&bid.CostBreakdown,
		&bid.TimelineBreakdown,
		&specialRequests,
		&bid.CreatedAt,
		&bid.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if specialRequests != nil {
		bid.SpecialRequests = *specialRequests
	}
	return &bid, nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// loadMarket snapshots the competing state for a project inside tx: every
// competing price feeds duplicate detection, only live bids gate the
// decrement, and on revision the bid being revised competes against everyone
// but itself.
func loadMarket(ctx context.Context, tx pgx.Tx, projectId, excludeBidId string, minBudget *decimal.Decimal) (bidrules.Market, error) {
	market := bidrules.Market{MinBudget: minBudget}

	query := `SELECT price, status FROM bid WHERE project_id = $1`
	args := []any{projectId}
	if excludeBidId != "" {
		query += ` AND id <> $2`
		args = append(args, excludeBidId)
	}
	query += ` ORDER BY price ASC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return market, err
	}
	defer rows.Close()

	for rows.Next() {
		var price decimal.Decimal
		var status models.BidStatus
		if err := rows.Scan(&price, &status); err != nil {
			return market, err
		}
		market.Prices = append(market.Prices, price)
		if market.Lowest == nil && status != models.RejectedBid {
			lowest := price
			market.Lowest = &lowest
		}
	}
	return market, rows.Err()
}

// SubmitBid admits and persists a new bid. Admissibility is re-checked inside
// a serializable transaction; lost write conflicts are retried.
func (r *PostgresBidRepository) SubmitBid(ctx context.Context, req models.BidRequest, minBudget *decimal.Decimal) (*models.Bid, error) {
	var bid *models.Bid
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		bid, err = r.submitBidTx(ctx, req, minBudget)
		if !isSerializationFailure(err) {
			break
		}
		time.Sleep(time.Duration(25*(attempt+1)) * time.Millisecond)
	}
	if isUniqueViolation(err) {
		// The unique index on (contractor_name, project_id) is authoritative;
		// the in-transaction existence check is only a fast path.
		return nil, bidrules.DuplicateBidder(req.ContractorName)
	}
	return bid, err
}

func (r *PostgresBidRepository) submitBidTx(ctx context.Context, req models.BidRequest, minBudget *decimal.Decimal) (*models.Bid, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var alreadyBid bool
	existsQuery := `SELECT EXISTS(SELECT 1 FROM bid WHERE contractor_name = $1 AND project_id = $2)`
	if err := tx.QueryRow(ctx, existsQuery, req.ContractorName, req.ProjectID).Scan(&alreadyBid); err != nil {
		return nil, err
	}
	if alreadyBid {
		return nil, bidrules.DuplicateBidder(req.ContractorName)
	}

	market, err := loadMarket(ctx, tx, req.ProjectID, "", minBudget)
	if err != nil {
		return nil, err
	}
	if v := bidrules.CheckPrice(req.Price, market); v != nil {
		return nil, v
	}

	now := time.Now().UTC()
	newBid := models.Bid{
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

	insertQuery := `INSERT INTO bid (id, project_id, contractor_id, contractor_name, price, timeline, qualifications,
	                rating, completed_projects, status, update_count, previous_prices,
	                cost_breakdown, timeline_breakdown, special_requests, created_at, updated_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = tx.Exec(
		ctx,
		insertQuery,
		newBid.ID,
		newBid.ProjectID,
		newBid.ContractorID,
		newBid.ContractorName,
		newBid.Price,
		newBid.Timeline,
		newBid.Qualifications,
		newBid.Rating,
		newBid.CompletedProjects,
		newBid.Status,
		newBid.UpdateCount,
		newBid.PreviousPrices,
		newBid.CostBreakdown,
		newBid.TimelineBreakdown,
		newBid.SpecialRequests,
		newBid.CreatedAt,
		newBid.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &newBid, nil
}

// ReviseBid applies a revision to a pending bid: the old price is appended to
// the history, the update counter advances, and any changed price is
// re-validated against the market excluding the bid itself.
func (r *PostgresBidRepository) ReviseBid(ctx context.Context, bidId string, upd models.BidUpdateRequest, minBudget *decimal.Decimal) (*models.Bid, error) {
	var bid *models.Bid
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		bid, err = r.reviseBidTx(ctx, bidId, upd, minBudget)
		if !isSerializationFailure(err) {
			break
		}
		time.Sleep(time.Duration(25*(attempt+1)) * time.Millisecond)
	}
	return bid, err
}

func (r *PostgresBidRepository) reviseBidTx(ctx context.Context, bidId string, upd models.BidUpdateRequest, minBudget *decimal.Decimal) (*models.Bid, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	selectQuery := fmt.Sprintf(`SELECT %s FROM bid WHERE id = $1 FOR UPDATE`, bidColumns)
	currentBid, err := scanBid(tx.QueryRow(ctx, selectQuery, bidId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if v := bidrules.CheckRevisable(string(currentBid.Status), currentBid.UpdateCount, models.MaxBidUpdates); v != nil {
		return nil, v
	}

	priceChanged := upd.Price != nil && !upd.Price.Equal(currentBid.Price)
	if priceChanged {
		market, err := loadMarket(ctx, tx, currentBid.ProjectID, bidId, minBudget)
		if err != nil {
			return nil, err
		}
		if v := bidrules.CheckPrice(*upd.Price, market); v != nil {
			return nil, v
		}
	}

	now := time.Now().UTC()
	snapshot, err := json.Marshal(models.PriceSnapshot{Price: currentBid.Price, UpdatedAt: now})
	if err != nil {
		return nil, err
	}

	updates := []string{
		"previous_prices = previous_prices || $2::jsonb",
		"update_count = update_count + 1",
		"updated_at = $3",
	}
	args := []any{bidId, snapshot, now}
	argIndex := 4

	if upd.Price != nil {
		updates = append(updates, fmt.Sprintf("price = $%d", argIndex))
		args = append(args, *upd.Price)
		argIndex++
	}
	if upd.Timeline != nil {
		updates = append(updates, fmt.Sprintf("timeline = $%d", argIndex))
		args = append(args, *upd.Timeline)
		argIndex++
	}
	if upd.Qualifications != nil {
		updates = append(updates, fmt.Sprintf("qualifications = $%d", argIndex))
		args = append(args, *upd.Qualifications)
		argIndex++
	}
	if upd.CostBreakdown != nil {
		updates = append(updates, fmt.Sprintf("cost_breakdown = $%d", argIndex))
		args = append(args, upd.CostBreakdown)
		argIndex++
	}
	if upd.TimelineBreakdown != nil {
		updates = append(updates, fmt.Sprintf("timeline_breakdown = $%d", argIndex))
		args = append(args, upd.TimelineBreakdown)
		argIndex++
	}
	if upd.SpecialRequests != nil {
		updates = append(updates, fmt.Sprintf("special_requests = $%d", argIndex))
		args = append(args, *upd.SpecialRequests)
		argIndex++
	}

	updateQuery := fmt.Sprintf("UPDATE bid SET %s WHERE id = $1 RETURNING %s", strings.Join(updates, ", "), bidColumns)
	updatedBid, err := scanBid(tx.QueryRow(ctx, updateQuery, args...))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updatedBid, nil
}

// GetAllBids returns every bid on record.
func (r *PostgresBidRepository) GetAllBids(ctx context.Context) ([]models.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bid ORDER BY created_at DESC`, bidColumns)
	return r.queryBids(ctx, query)
}

// GetProjectBids returns the bids for one project, cheapest first.
func (r *PostgresBidRepository) GetProjectBids(ctx context.Context, projectId string) ([]models.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bid WHERE project_id = $1 ORDER BY price ASC`, bidColumns)
	return r.queryBids(ctx, query, projectId)
}

// GetContractorBids returns the bids submitted by one contractor.
func (r *PostgresBidRepository) GetContractorBids(ctx context.Context, contractorId string) ([]models.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bid WHERE contractor_id = $1 ORDER BY created_at DESC`, bidColumns)
	return r.queryBids(ctx, query, contractorId)
}

func (r *PostgresBidRepository) queryBids(ctx context.Context, query string, args ...any) ([]models.Bid, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, rows.Err()
}

// GetBidByID returns one bid.
func (r *PostgresBidRepository) GetBidByID(ctx context.Context, bidId string) (*models.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bid WHERE id = $1`, bidColumns)
	bid, err := scanBid(r.DB.QueryRow(ctx, query, bidId))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return bid, err
}

// GetLowestBid returns the cheapest non-rejected bid for a project, or
// ErrNotFound when the project has no live bids.
func (r *PostgresBidRepository) GetLowestBid(ctx context.Context, projectId string) (*models.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bid WHERE project_id = $1 AND status <> $2 ORDER BY price ASC LIMIT 1`, bidColumns)
	bid, err := scanBid(r.DB.QueryRow(ctx, query, projectId, models.RejectedBid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return bid, err
}

// UpdateBidStatus finalizes a bid. Accepting a bid also rejects every pending
// sibling for the same project in the same transaction, so no reader can
// observe two accepted bids or a stray pending sibling.
func (r *PostgresBidRepository) UpdateBidStatus(ctx context.Context, bidId string, status models.BidStatus) (*models.Bid, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var currentStatus models.BidStatus
	var projectId string
	err = tx.QueryRow(ctx, `SELECT status, project_id FROM bid WHERE id = $1 FOR UPDATE`, bidId).Scan(&currentStatus, &projectId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if currentStatus != models.PendingBid {
		return nil, &bidrules.Violation{
			Kind:    bidrules.KindBidFinalized,
			Message: fmt.Sprintf("bid has already been %s", currentStatus),
			Status:  string(currentStatus),
		}
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE bid SET status = $1, updated_at = $2 WHERE id = $3`, status, now, bidId); err != nil {
		return nil, err
	}

	if status == models.AcceptedBid {
		cascadeQuery := `UPDATE bid SET status = $1, updated_at = $2 WHERE project_id = $3 AND status = $4 AND id <> $5`
		if _, err := tx.Exec(ctx, cascadeQuery, models.RejectedBid, now, projectId, models.PendingBid, bidId); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM bid WHERE id = $1`, bidColumns)
	bid, err := scanBid(tx.QueryRow(ctx, query, bidId))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return bid, nil
}
