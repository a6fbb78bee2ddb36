// Package ledger owns the persisted position ledger: the settings singleton,
// batches, and the positions they contain.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
)

// DefaultFeeDiscount is the seeded broker discount (2.8折) used when the
// settings row is somehow absent.
const DefaultFeeDiscount = 0.28

// SettingsRepository handles the singleton settings record.
type SettingsRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB, log zerolog.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:  db,
		log: log.With().Str("repo", "settings").Logger(),
	}
}

// Get returns the settings record. The schema seeds the row, so a missing
// row only happens against an unmigrated database; defaults are returned in
// that case rather than an error.
func (r *SettingsRepository) Get() (domain.Settings, error) {
	query := `SELECT id, initial_capital, fee_discount, created_at, updated_at
		FROM settings WHERE id = 1`

	var s domain.Settings
	err := r.db.QueryRow(query).Scan(&s.ID, &s.InitialCapital, &s.FeeDiscount, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{ID: 1, FeeDiscount: DefaultFeeDiscount}, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}

	return s, nil
}

// Update overwrites the mutable settings fields.
func (r *SettingsRepository) Update(initialCapital, feeDiscount float64) error {
	query := `UPDATE settings
		SET initial_capital = ?, fee_discount = ?, updated_at = datetime('now', 'localtime')
		WHERE id = 1`

	if _, err := r.db.Exec(query, initialCapital, feeDiscount); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	r.log.Info().
		Float64("initial_capital", initialCapital).
		Float64("fee_discount", feeDiscount).
		Msg("Settings updated")
	return nil
}

// FeeDiscount returns the current fee discount multiplier. Convenience for
// the aggregation, planner, and refresh paths that thread it into fee
// calculations.
func (r *SettingsRepository) FeeDiscount() (float64, error) {
	s, err := r.Get()
	if err != nil {
		return 0, err
	}
	if s.FeeDiscount <= 0 || s.FeeDiscount > 1 {
		return DefaultFeeDiscount, nil
	}
	return s.FeeDiscount, nil
}
