package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
)

const positionColumns = `id, batch_id, stock_code, stock_name, buy_price, shares,
	current_price, price_updated_at, is_sold, sell_price, sell_date, created_at`

// PositionRepository handles position database operations.
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// Create inserts a position into a batch. The batch must exist.
func (r *PositionRepository) Create(batchID int64, stockCode, stockName string, buyPrice float64, shares int64) (int64, error) {
	stockCode = strings.TrimSpace(stockCode)
	if stockCode == "" {
		return 0, fmt.Errorf("%w: stock_code is required", domain.ErrInvalidInput)
	}
	if buyPrice < 0 || shares < 0 {
		return 0, fmt.Errorf("%w: buy_price and shares must be >= 0", domain.ErrInvalidInput)
	}

	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM batches WHERE id = ?)`, batchID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check batch existence: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("batch %d: %w", batchID, domain.ErrNotFound)
	}

	result, err := r.db.Exec(
		`INSERT INTO positions (batch_id, stock_code, stock_name, buy_price, shares) VALUES (?, ?, ?, ?, ?)`,
		batchID, stockCode, stockName, buyPrice, shares,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert position: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get position id: %w", err)
	}

	r.log.Info().Int64("position_id", id).Int64("batch_id", batchID).Str("code", stockCode).Msg("Position created")
	return id, nil
}

// GetByID returns one position, or domain.ErrNotFound.
func (r *PositionRepository) GetByID(id int64) (*domain.Position, error) {
	rows, err := r.db.Query(`SELECT `+positionColumns+` FROM positions WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query position: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query position: %w", err)
		}
		return nil, fmt.Errorf("position %d: %w", id, domain.ErrNotFound)
	}

	pos, err := scanPosition(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan position: %w", err)
	}
	return &pos, nil
}

// GetByBatch returns a batch's positions in insertion order.
func (r *PositionRepository) GetByBatch(batchID int64) ([]domain.Position, error) {
	rows, err := r.db.Query(`SELECT `+positionColumns+` FROM positions WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetAllWithBatch returns every position joined with its batch, ordered the
// same way as the batch list (batch start_date descending) with positions in
// insertion order inside each batch.
func (r *PositionRepository) GetAllWithBatch() ([]domain.PositionWithBatch, error) {
	query := `SELECT p.id, p.batch_id, p.stock_code, p.stock_name, p.buy_price, p.shares,
			p.current_price, p.price_updated_at, p.is_sold, p.sell_price, p.sell_date, p.created_at,
			b.name, b.start_date
		FROM positions p
		JOIN batches b ON p.batch_id = b.id
		ORDER BY b.start_date DESC, b.id DESC, p.id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions with batch: %w", err)
	}
	defer rows.Close()

	var result []domain.PositionWithBatch
	for rows.Next() {
		var row domain.PositionWithBatch
		var currentPrice, sellPrice sql.NullFloat64
		var priceUpdatedAt, sellDate sql.NullString
		var isSold int64

		err := rows.Scan(
			&row.ID, &row.BatchID, &row.StockCode, &row.StockName, &row.BuyPrice, &row.Shares,
			&currentPrice, &priceUpdatedAt, &isSold, &sellPrice, &sellDate, &row.CreatedAt,
			&row.BatchName, &row.BatchDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position with batch: %w", err)
		}

		applyNullables(&row.Position, currentPrice, priceUpdatedAt, isSold, sellPrice, sellDate)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions with batch: %w", err)
	}

	return result, nil
}

// Update overwrites a position's buy price and share count.
func (r *PositionRepository) Update(id int64, buyPrice float64, shares int64) error {
	if buyPrice < 0 || shares < 0 {
		return fmt.Errorf("%w: buy_price and shares must be >= 0", domain.ErrInvalidInput)
	}

	result, err := r.db.Exec(`UPDATE positions SET buy_price = ?, shares = ? WHERE id = ?`, buyPrice, shares, id)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	return requireAffected(result, id)
}

// UpdateCurrentPrice stores a freshly fetched market price and stamps the
// refresh time. Sold positions accept the write, but valuation ignores
// current_price once sold.
func (r *PositionRepository) UpdateCurrentPrice(id int64, price float64) error {
	result, err := r.db.Exec(
		`UPDATE positions SET current_price = ?, price_updated_at = datetime('now', 'localtime') WHERE id = ?`,
		price, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update current price: %w", err)
	}
	if err := requireAffected(result, id); err != nil {
		return err
	}

	r.log.Debug().Int64("position_id", id).Float64("price", price).Msg("Current price updated")
	return nil
}

// Delete removes a position.
func (r *PositionRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if err := requireAffected(result, id); err != nil {
		return err
	}

	r.log.Info().Int64("position_id", id).Msg("Position deleted")
	return nil
}

// Sell marks a position as sold. Calling it again simply overwrites the
// sell price and date.
func (r *PositionRepository) Sell(id int64, sellPrice float64, sellDate string) error {
	if sellPrice < 0 {
		return fmt.Errorf("%w: sell_price must be >= 0", domain.ErrInvalidInput)
	}

	result, err := r.db.Exec(
		`UPDATE positions SET is_sold = 1, sell_price = ?, sell_date = ? WHERE id = ?`,
		sellPrice, sellDate, id,
	)
	if err != nil {
		return fmt.Errorf("failed to sell position: %w", err)
	}
	if err := requireAffected(result, id); err != nil {
		return err
	}

	r.log.Info().Int64("position_id", id).Float64("sell_price", sellPrice).Str("sell_date", sellDate).Msg("Position sold")
	return nil
}

// Unsell reverts a sold position to held. The previous sell price and date
// are discarded, not archived; valuation falls back to current_price.
func (r *PositionRepository) Unsell(id int64) error {
	result, err := r.db.Exec(`UPDATE positions SET is_sold = 0, sell_price = 0, sell_date = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to unsell position: %w", err)
	}
	if err := requireAffected(result, id); err != nil {
		return err
	}

	r.log.Info().Int64("position_id", id).Msg("Position sale reverted")
	return nil
}

// scanPosition scans a database row into a Position struct.
func scanPosition(rows *sql.Rows) (domain.Position, error) {
	var pos domain.Position
	var currentPrice, sellPrice sql.NullFloat64
	var priceUpdatedAt, sellDate sql.NullString
	var isSold int64

	err := rows.Scan(
		&pos.ID, &pos.BatchID, &pos.StockCode, &pos.StockName, &pos.BuyPrice, &pos.Shares,
		&currentPrice, &priceUpdatedAt, &isSold, &sellPrice, &sellDate, &pos.CreatedAt,
	)
	if err != nil {
		return pos, err
	}

	applyNullables(&pos, currentPrice, priceUpdatedAt, isSold, sellPrice, sellDate)
	return pos, nil
}

func applyNullables(pos *domain.Position, currentPrice sql.NullFloat64, priceUpdatedAt sql.NullString, isSold int64, sellPrice sql.NullFloat64, sellDate sql.NullString) {
	if currentPrice.Valid {
		pos.CurrentPrice = currentPrice.Float64
	}
	if priceUpdatedAt.Valid {
		pos.PriceUpdatedAt = &priceUpdatedAt.String
	}
	pos.IsSold = isSold != 0
	if sellPrice.Valid {
		pos.SellPrice = sellPrice.Float64
	}
	if sellDate.Valid {
		pos.SellDate = &sellDate.String
	}
}

func requireAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("position %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err is the not-found condition. Kept here so
// handlers don't need to import errors directly everywhere.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
