package ledger_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linyuchen/oddlot/internal/modules/ledger"
	testingpkg "github.com/linyuchen/oddlot/internal/testing"
)

func TestSettingsSeededDefaults(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewSettingsRepository(db.Conn(), zerolog.Nop())

	s, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)
	assert.Equal(t, ledger.DefaultFeeDiscount, s.FeeDiscount)
	assert.Zero(t, s.InitialCapital)
}

func TestSettingsUpdate(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewSettingsRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Update(300000, 0.6))

	s, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, 300000.0, s.InitialCapital)
	assert.Equal(t, 0.6, s.FeeDiscount)
}

func TestSettingsFeeDiscountClampsInvalid(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewSettingsRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Update(0, 0.5))
	d, err := repo.FeeDiscount()
	require.NoError(t, err)
	assert.Equal(t, 0.5, d)

	// Out-of-range stored values fall back to the seeded default.
	testingpkg.MustExec(t, db, `UPDATE settings SET fee_discount = 0 WHERE id = 1`)
	d, err = repo.FeeDiscount()
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultFeeDiscount, d)

	testingpkg.MustExec(t, db, `UPDATE settings SET fee_discount = 1.5 WHERE id = 1`)
	d, err = repo.FeeDiscount()
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultFeeDiscount, d)
}
