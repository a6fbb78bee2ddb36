package testing

import (
	"sync"

	"github.com/linyuchen/oddlot/internal/modules/marketdata"
)

// MockLookup is a configurable in-memory marketdata.Lookup for tests.
// Codes without a configured quote resolve to the unknown-name sentinel
// and fail the price fetch, mirroring the real client's fallback behavior.
type MockLookup struct {
	mu     sync.Mutex
	names  map[string]string
	prices map[string]float64
	calls  []string
}

// NewMockLookup creates an empty mock lookup.
func NewMockLookup() *MockLookup {
	return &MockLookup{
		names:  make(map[string]string),
		prices: make(map[string]float64),
	}
}

// SetQuote configures the name and price returned for a stock code.
func (m *MockLookup) SetQuote(code, name string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[code] = name
	m.prices[code] = price
}

// Calls returns the stock codes passed to FetchPrice, in order.
func (m *MockLookup) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// ResolveName implements marketdata.Lookup.
func (m *MockLookup) ResolveName(code string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name, ok := m.names[code]; ok {
		return name
	}
	return marketdata.UnknownName
}

// FetchPrice implements marketdata.Lookup.
func (m *MockLookup) FetchPrice(code string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, code)
	price, ok := m.prices[code]
	return price, ok
}

var _ marketdata.Lookup = (*MockLookup)(nil)
