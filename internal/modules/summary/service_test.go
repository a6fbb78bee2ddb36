package summary_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/modules/ledger"
	"github.com/linyuchen/oddlot/internal/modules/summary"
	testingpkg "github.com/linyuchen/oddlot/internal/testing"
)

type fixture struct {
	batches   *ledger.BatchRepository
	positions *ledger.PositionRepository
	settings  *ledger.SettingsRepository
	service   *summary.Service
	cleanup   func()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, cleanup := testingpkg.NewTestDB(t)
	batches := ledger.NewBatchRepository(db.Conn(), zerolog.Nop())
	positions := ledger.NewPositionRepository(db.Conn(), zerolog.Nop())
	settings := ledger.NewSettingsRepository(db.Conn(), zerolog.Nop())

	return &fixture{
		batches:   batches,
		positions: positions,
		settings:  settings,
		service:   summary.NewService(batches, positions, settings, zerolog.Nop()),
		cleanup:   cleanup,
	}
}

func TestSummarizeBatchSplitsRealizedAndUnrealized(t *testing.T) {
	batch := domain.Batch{ID: 1, Name: "mixed", StartDate: "2026-08-01"}

	sellDate := "2026-08-20"
	positions := []domain.Position{
		// Sold at a profit: realized.
		{StockCode: "2330", BuyPrice: 100, Shares: 10, IsSold: true, SellPrice: 120, SellDate: &sellDate},
		// Held at a loss: unrealized.
		{StockCode: "0050", BuyPrice: 50, Shares: 10, CurrentPrice: 40},
	}

	s := summary.SummarizeBatch(batch, positions, 1.0)

	assert.Equal(t, 2, s.StockCount)
	assert.Greater(t, s.RealizedPnL, 0.0)
	assert.Less(t, s.UnrealizedPnL, 0.0)
	assert.InDelta(t, s.RealizedPnL+s.UnrealizedPnL, s.PnL, 1e-9)
	assert.Equal(t, s.TotalMarketValue-s.TotalCost, s.PnL)

	// buy 100x10: fee floor(1000*0.001425)=1, cost 1001
	// buy 50x10: fee floor(500*0.001425)=0, cost 500
	assert.Equal(t, 1501.0, s.TotalCost)

	// sold: sell_amount 1200, sell_fee 1, sell_tax floor(1200*0.003)=3, net 1196
	// held: sell_amount 400, sell_fee 0, hypothetical tax floor(400*0.003)=1, net 399
	assert.Equal(t, 1595.0, s.TotalMarketValue)
	assert.Equal(t, 1196.0-1001.0, s.RealizedPnL)
	assert.Equal(t, 399.0-500.0, s.UnrealizedPnL)
}

func TestSummarizeBatchEmptyAndZeroPrice(t *testing.T) {
	batch := domain.Batch{ID: 1, Name: "empty", StartDate: "2026-08-01"}

	s := summary.SummarizeBatch(batch, nil, 0.28)
	assert.Zero(t, s.TotalCost)
	assert.Zero(t, s.PnLPct) // zero denominator guard

	// A held position with no price yet contributes cost but zero value.
	// floor(1000 * 0.001425 * 0.28) = 0, so cost is the bare buy amount.
	s = summary.SummarizeBatch(batch, []domain.Position{
		{StockCode: "2330", BuyPrice: 100, Shares: 10},
	}, 0.28)
	assert.Equal(t, 1000.0, s.TotalCost)
	assert.Zero(t, s.TotalMarketValue)
	assert.Equal(t, -1000.0, s.UnrealizedPnL)
}

func TestBatchDetail(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	batchID, err := f.batches.Create("detail", "2026-08-01", 10000)
	require.NoError(t, err)
	_, err = f.positions.Create(batchID, "2330", "台積電", 100, 10)
	require.NoError(t, err)

	detail, err := f.service.BatchDetail(batchID)
	require.NoError(t, err)
	assert.Equal(t, "detail", detail.Name)
	require.Len(t, detail.Stocks, 1)

	stock := detail.Stocks[0]
	assert.Equal(t, "2330", stock.StockCode)
	assert.Equal(t, 1000.0, stock.BuyAmount)
	// floor(1000 * 0.001425 * 0.28) = 0
	assert.Zero(t, stock.BuyFee)
	assert.Equal(t, 1000.0, stock.TotalCost)

	_, err = f.service.BatchDetail(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchesOverviewOrdering(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	_, err := f.batches.Create("old", "2026-07-01", 10000)
	require.NoError(t, err)
	newID, err := f.batches.Create("new", "2026-08-01", 10000)
	require.NoError(t, err)
	_, err = f.positions.Create(newID, "2330", "台積電", 100, 10)
	require.NoError(t, err)

	overviews, err := f.service.BatchesOverview()
	require.NoError(t, err)
	require.Len(t, overviews, 2)
	assert.Equal(t, "new", overviews[0].Name)
	assert.Equal(t, 1, overviews[0].StockCount)
	assert.Equal(t, "old", overviews[1].Name)
	assert.Zero(t, overviews[1].StockCount)
}

func TestSummarizeAll(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	// Full-price fees so the expected numbers stay readable.
	require.NoError(t, f.settings.Update(0, 1.0))

	b1, err := f.batches.Create("first", "2026-07-01", 10000)
	require.NoError(t, err)
	b2, err := f.batches.Create("second", "2026-08-01", 10000)
	require.NoError(t, err)

	soldID, err := f.positions.Create(b1, "2330", "台積電", 100, 10)
	require.NoError(t, err)
	require.NoError(t, f.positions.Sell(soldID, 120, "2026-08-20"))

	heldID, err := f.positions.Create(b2, "0050", "元大台灣50", 50, 10)
	require.NoError(t, err)
	require.NoError(t, f.positions.UpdateCurrentPrice(heldID, 40))

	overall, err := f.service.SummarizeAll()
	require.NoError(t, err)

	assert.Equal(t, 2, overall.BatchCount)
	require.Len(t, overall.Batches, 2)
	assert.Equal(t, "second", overall.Batches[0].Name)
	assert.Equal(t, "first", overall.Batches[1].Name)

	assert.Equal(t, 1501.0, overall.TotalInvested)
	assert.Equal(t, 1595.0, overall.TotalMarketValue)
	assert.Equal(t, 195.0, overall.RealizedPnL)
	assert.Equal(t, -101.0, overall.UnrealizedPnL)
	assert.Equal(t, overall.RealizedPnL+overall.UnrealizedPnL, overall.TotalPnL)
	assert.InDelta(t, 94.0/1501.0*100, overall.TotalPnLPct, 1e-9)
}
