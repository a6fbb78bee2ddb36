package planner_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/modules/ledger"
	"github.com/linyuchen/oddlot/internal/modules/marketdata"
	"github.com/linyuchen/oddlot/internal/modules/planner"
	testingpkg "github.com/linyuchen/oddlot/internal/testing"
)

func newPlanner(t *testing.T, lookup *testingpkg.MockLookup) (*planner.Service, *ledger.SettingsRepository, func()) {
	t.Helper()

	db, cleanup := testingpkg.NewTestDB(t)
	settings := ledger.NewSettingsRepository(db.Conn(), zerolog.Nop())
	return planner.NewService(lookup, settings, zerolog.Nop()), settings, cleanup
}

func TestPlanEqualSplit(t *testing.T) {
	lookup := testingpkg.NewMockLookup()
	lookup.SetQuote("2330", "台積電", 50)
	lookup.SetQuote("0050", "元大台灣50", 30)

	svc, settings, cleanup := newPlanner(t, lookup)
	defer cleanup()
	require.NoError(t, settings.Update(0, 1.0))

	result, err := svc.Plan(10000, []string{"2330", "0050"})
	require.NoError(t, err)

	assert.Equal(t, 10000.0, result.Budget)
	assert.Equal(t, 5000.0, result.AllocatedPerStock)
	assert.Equal(t, 2, result.NumStocks)
	require.Len(t, result.Results, 2)

	first := result.Results[0]
	assert.Equal(t, "2330", first.StockCode)
	assert.Equal(t, "台積電", first.StockName)
	assert.Equal(t, int64(100), first.Shares)
	assert.Equal(t, 5000.0, first.Cost)
	// floor(5000 * 0.001425) = 7
	assert.Equal(t, 7.0, first.BuyFee)
	assert.Equal(t, 5007.0, first.TotalWithFee)

	second := result.Results[1]
	assert.Equal(t, int64(166), second.Shares)
	assert.Equal(t, 4980.0, second.Cost)
	assert.Equal(t, 7.0, second.BuyFee)

	assert.Equal(t, 5007.0+4987.0, result.TotalCost)
	assert.Equal(t, 10000.0-result.TotalCost, result.Remaining)
}

func TestPlanBlankEntriesStillConsumeBudget(t *testing.T) {
	lookup := testingpkg.NewMockLookup()
	lookup.SetQuote("2330", "台積電", 50)

	svc, _, cleanup := newPlanner(t, lookup)
	defer cleanup()

	// Allocation divides by the raw entry count; the blank entry's share of
	// the budget is simply not spent.
	result, err := svc.Plan(10000, []string{"2330", "  "})
	require.NoError(t, err)

	assert.Equal(t, 5000.0, result.AllocatedPerStock)
	assert.Equal(t, 2, result.NumStocks)
	require.Len(t, result.Results, 1)
	assert.Equal(t, int64(100), result.Results[0].Shares)
}

func TestPlanFailedLookupMarksZeroPrice(t *testing.T) {
	lookup := testingpkg.NewMockLookup()
	lookup.SetQuote("2330", "台積電", 50)

	svc, _, cleanup := newPlanner(t, lookup)
	defer cleanup()

	result, err := svc.Plan(10000, []string{"2330", "9999"})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	failed := result.Results[1]
	assert.Equal(t, "9999", failed.StockCode)
	assert.Equal(t, marketdata.UnknownName, failed.StockName)
	assert.Zero(t, failed.Price)
	assert.Zero(t, failed.Shares)
	assert.Zero(t, failed.Cost)
	assert.Zero(t, failed.TotalWithFee)

	// The failed entry contributes nothing to the spend.
	assert.Equal(t, result.Results[0].TotalWithFee, result.TotalCost)
}

func TestPlanInvalidInput(t *testing.T) {
	svc, _, cleanup := newPlanner(t, testingpkg.NewMockLookup())
	defer cleanup()

	_, err := svc.Plan(0, []string{"2330"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Plan(-100, []string{"2330"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Plan(10000, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlanUnaffordablePrice(t *testing.T) {
	lookup := testingpkg.NewMockLookup()
	lookup.SetQuote("9958", "世紀鋼", 20000)

	svc, _, cleanup := newPlanner(t, lookup)
	defer cleanup()

	result, err := svc.Plan(10000, []string{"9958"})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	// Price known but above the allocation: zero shares, full budget remains.
	assert.Equal(t, 20000.0, result.Results[0].Price)
	assert.Zero(t, result.Results[0].Shares)
	assert.Equal(t, 10000.0, result.Remaining)
}
