package ledger_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/modules/ledger"
	testingpkg "github.com/linyuchen/oddlot/internal/testing"
)

func TestBatchCreateAndGet(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())

	id, err := repo.Create("第一批", "2026-08-01", 50000)
	require.NoError(t, err)
	assert.NotZero(t, id)

	batch, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "第一批", batch.Name)
	assert.Equal(t, "2026-08-01", batch.StartDate)
	assert.Equal(t, 50000.0, batch.AllocatedCapital)
	assert.NotEmpty(t, batch.CreatedAt)
}

func TestBatchCreateNegativeCapital(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())

	_, err := repo.Create("bad", "2026-08-01", -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBatchGetAllOrdering(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())

	older, err := repo.Create("older", "2026-07-01", 10000)
	require.NoError(t, err)
	newer, err := repo.Create("newer", "2026-08-01", 10000)
	require.NoError(t, err)
	sameDay, err := repo.Create("same day, later id", "2026-08-01", 10000)
	require.NoError(t, err)

	batches, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, batches, 3)

	// Most recent start_date first; higher id wins on a date tie.
	assert.Equal(t, sameDay, batches[0].ID)
	assert.Equal(t, newer, batches[1].ID)
	assert.Equal(t, older, batches[2].ID)
}

func TestBatchGetByIDNotFound(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())

	_, err := repo.GetByID(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchUpdate(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())

	id, err := repo.Create("before", "2026-08-01", 10000)
	require.NoError(t, err)

	require.NoError(t, repo.Update(id, "after", "2026-08-15", 20000))

	batch, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "after", batch.Name)
	assert.Equal(t, "2026-08-15", batch.StartDate)
	assert.Equal(t, 20000.0, batch.AllocatedCapital)

	assert.ErrorIs(t, repo.Update(999, "x", "2026-08-15", 0), domain.ErrNotFound)
}

func TestBatchDeleteCascadesPositions(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	batches := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())
	positions := ledger.NewPositionRepository(db.Conn(), zerolog.Nop())

	batchID, err := batches.Create("doomed", "2026-08-01", 10000)
	require.NoError(t, err)

	posID, err := positions.Create(batchID, "2330", "台積電", 600, 10)
	require.NoError(t, err)
	_, err = positions.Create(batchID, "0050", "元大台灣50", 150, 20)
	require.NoError(t, err)

	require.NoError(t, batches.Delete(batchID))

	_, err = batches.GetByID(batchID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = positions.GetByID(posID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	remaining, err := positions.GetByBatch(batchID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestBatchDeleteNotFound(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())

	assert.ErrorIs(t, repo.Delete(999), domain.ErrNotFound)
}
