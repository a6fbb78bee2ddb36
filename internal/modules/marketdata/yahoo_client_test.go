package marketdata

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartBody(symbol, name string, price float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":%q,"shortName":%q,"regularMarketPrice":%v}}],"error":null}}`,
		symbol, name, price)
}

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newQuoteServer(t *testing.T, quotes map[string]string) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		symbol := r.URL.Path[len("/v8/finance/chart/"):]
		body, ok := quotes[symbol]
		if !ok {
			body = notFoundBody
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestYahooClientFetchesMainBoardListing(t *testing.T) {
	srv, _ := newQuoteServer(t, map[string]string{
		"2330.TW": chartBody("2330.TW", "台積電", 625.5),
	})

	client := NewYahooClient(srv.URL, time.Second, zerolog.Nop())

	assert.Equal(t, "台積電", client.ResolveName("2330"))

	price, ok := client.FetchPrice("2330")
	require.True(t, ok)
	assert.Equal(t, 625.5, price)
}

func TestYahooClientFallsBackToOTCListing(t *testing.T) {
	srv, _ := newQuoteServer(t, map[string]string{
		"6488.TWO": chartBody("6488.TWO", "環球晶", 480),
	})

	client := NewYahooClient(srv.URL, time.Second, zerolog.Nop())

	price, ok := client.FetchPrice("6488")
	require.True(t, ok)
	assert.Equal(t, 480.0, price)
	assert.Equal(t, "環球晶", client.ResolveName("6488"))
}

func TestYahooClientUnknownSymbol(t *testing.T) {
	srv, _ := newQuoteServer(t, nil)

	client := NewYahooClient(srv.URL, time.Second, zerolog.Nop())

	assert.Equal(t, UnknownName, client.ResolveName("9999"))

	price, ok := client.FetchPrice("9999")
	assert.False(t, ok)
	assert.Zero(t, price)
}

func TestYahooClientServerDown(t *testing.T) {
	srv, _ := newQuoteServer(t, nil)
	srv.Close()

	client := NewYahooClient(srv.URL, time.Second, zerolog.Nop())

	_, ok := client.FetchPrice("2330")
	assert.False(t, ok)
	assert.Equal(t, UnknownName, client.ResolveName("2330"))
}

func TestYahooClientCachesQuotes(t *testing.T) {
	srv, requests := newQuoteServer(t, map[string]string{
		"2330.TW": chartBody("2330.TW", "台積電", 625.5),
	})

	client := NewYahooClient(srv.URL, time.Second, zerolog.Nop())

	// Name and price for the same code share one round trip, and repeated
	// calls inside the TTL never hit the server again.
	_ = client.ResolveName("2330")
	_, _ = client.FetchPrice("2330")
	_, _ = client.FetchPrice("2330")

	assert.Equal(t, int64(1), requests.Load())
}

func TestYahooClientRejectsNonPositivePrice(t *testing.T) {
	srv, _ := newQuoteServer(t, map[string]string{
		"2330.TW": chartBody("2330.TW", "台積電", 0),
	})

	client := NewYahooClient(srv.URL, time.Second, zerolog.Nop())

	_, ok := client.FetchPrice("2330")
	assert.False(t, ok)
	// The name still resolves even without a usable price.
	assert.Equal(t, "台積電", client.ResolveName("2330"))
}

func TestYahooClientBlankCode(t *testing.T) {
	client := NewYahooClient("http://127.0.0.1:0", time.Second, zerolog.Nop())

	_, ok := client.FetchPrice("   ")
	assert.False(t, ok)
	assert.Equal(t, UnknownName, client.ResolveName(""))
}
