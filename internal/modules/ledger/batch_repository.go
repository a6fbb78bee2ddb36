package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/database"
	"github.com/linyuchen/oddlot/internal/domain"
)

// BatchRepository handles batch database operations.
type BatchRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *sql.DB, log zerolog.Logger) *BatchRepository {
	return &BatchRepository{
		db:  db,
		log: log.With().Str("repo", "batch").Logger(),
	}
}

// Create inserts a batch and returns its id.
func (r *BatchRepository) Create(name, startDate string, allocatedCapital float64) (int64, error) {
	if allocatedCapital < 0 {
		return 0, fmt.Errorf("%w: allocated_capital must be >= 0", domain.ErrInvalidInput)
	}

	result, err := r.db.Exec(
		`INSERT INTO batches (name, start_date, allocated_capital) VALUES (?, ?, ?)`,
		name, startDate, allocatedCapital,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get batch id: %w", err)
	}

	r.log.Info().Int64("batch_id", id).Str("name", name).Msg("Batch created")
	return id, nil
}

// GetAll returns all batches, most recent first. The ordering (start_date
// descending, id descending on ties) is part of the API contract.
func (r *BatchRepository) GetAll() ([]domain.Batch, error) {
	query := `SELECT id, name, start_date, allocated_capital, created_at
		FROM batches ORDER BY start_date DESC, id DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		var b domain.Batch
		if err := rows.Scan(&b.ID, &b.Name, &b.StartDate, &b.AllocatedCapital, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	return batches, nil
}

// GetByID returns one batch, or domain.ErrNotFound.
func (r *BatchRepository) GetByID(id int64) (*domain.Batch, error) {
	query := `SELECT id, name, start_date, allocated_capital, created_at
		FROM batches WHERE id = ?`

	var b domain.Batch
	err := r.db.QueryRow(query, id).Scan(&b.ID, &b.Name, &b.StartDate, &b.AllocatedCapital, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}

	return &b, nil
}

// Update overwrites a batch's mutable fields.
func (r *BatchRepository) Update(id int64, name, startDate string, allocatedCapital float64) error {
	if allocatedCapital < 0 {
		return fmt.Errorf("%w: allocated_capital must be >= 0", domain.ErrInvalidInput)
	}

	result, err := r.db.Exec(
		`UPDATE batches SET name = ?, start_date = ?, allocated_capital = ? WHERE id = ?`,
		name, startDate, allocatedCapital, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("batch %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a batch and all of its positions in one transaction, so
// no reader ever observes an orphaned position.
func (r *BatchRepository) Delete(id int64) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM positions WHERE batch_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete batch positions: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM batches WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete batch: %w", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return fmt.Errorf("batch %d: %w", id, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Int64("batch_id", id).Msg("Batch deleted with positions")
	return nil
}
