package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/coinchat/internal/models"
)

// fakeCoinGecko serves canned bodies keyed by request path.
func fakeCoinGecko(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *CoinGeckoClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewCoinGeckoClient(Options{BaseURL: srv.URL, APIKey: "demo-key", Timeout: 5 * time.Second})
}

func body(s string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(s))
	}
}

func TestGetCurrentPrice(t *testing.T) {
	var query map[string]string
	var apiKey string
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/simple/price": func(w http.ResponseWriter, r *http.Request) {
			apiKey = r.Header.Get("x-cg-demo-api-key")
			query = map[string]string{}
			for k := range r.URL.Query() {
				query[k] = r.URL.Query().Get(k)
			}
			body(`{"bitcoin":{"inr":5234567.89,"inr_market_cap":103456789012345,"inr_24h_change":1.7634}}`)(w, r)
		},
	})

	q, err := c.GetCurrentPrice(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, models.PriceQuote{
		Coin:           "bitcoin",
		Price:          5234567.89,
		Change24h:      1.7634,
		MarketCap:      103456789012345,
		CurrencySymbol: "₹",
	}, q)

	assert.Equal(t, "demo-key", apiKey)
	assert.Equal(t, map[string]string{
		"ids":                 "bitcoin",
		"vs_currencies":       "inr",
		"include_24hr_change": "true",
		"include_market_cap":  "true",
	}, query)
}

func TestGetCurrentPrice_MissingEntryIsNotFound(t *testing.T) {
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/simple/price": body(`{}`),
	})

	_, err := c.GetCurrentPrice(context.Background(), "notacoin")
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, kind)
	assert.Equal(t, "failed to fetch price for notacoin: Coin not found", err.Error())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		kind    ErrorKind
		message string
	}{
		{http.StatusNotFound, KindNotFound, "not found"},
		{http.StatusTooManyRequests, KindRateLimited, "rate limit"},
		{http.StatusUnauthorized, KindUnavailable, "HTTP 401"},
		{http.StatusServiceUnavailable, KindUnavailable, "HTTP 503"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
				"/coins/bitcoin": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				},
			})

			_, err := c.GetCoinStats(context.Background(), "bitcoin")
			require.Error(t, err)
			kind, _ := KindOf(err)
			assert.Equal(t, tt.kind, kind)
			assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tt.message))
		})
	}
}

func TestServerErrorIsNotRetriedByDefault(t *testing.T) {
	var calls atomic.Int32
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/trending": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	_, err := c.GetTrendingCoins(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, strings.HasPrefix(err.Error(), "failed to fetch trending coins: "))
}

func TestDecodeFailureIsUnavailable(t *testing.T) {
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/simple/price": body(`not json`),
	})

	_, err := c.GetCurrentPrice(context.Background(), "bitcoin")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, kind)
}

func TestGetTrendingCoins_TruncatesToTen(t *testing.T) {
	var items []string
	for i := 1; i <= 15; i++ {
		items = append(items, `{"item":{"id":"coin-`+strconv.Itoa(i)+`","name":"Coin `+strconv.Itoa(i)+`","symbol":"c`+strconv.Itoa(i)+`","market_cap_rank":`+strconv.Itoa(i*10)+`,"thumb":"https://img/`+strconv.Itoa(i)+`.png"}}`)
	}
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/trending": body(`{"coins":[` + strings.Join(items, ",") + `]}`),
	})

	list, err := c.GetTrendingCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, models.TrendingCoin{ID: "coin-1", Name: "Coin 1", Symbol: "c1", Rank: 10, Thumbnail: "https://img/1.png"}, list[0])
	assert.Equal(t, "coin-10", list[9].ID)
}

func TestGetCoinStats(t *testing.T) {
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/coins/ethereum": body(`{
			"id":"ethereum","name":"Ethereum","symbol":"eth","market_cap_rank":2,
			"description":{"en":"<p>Ethereum is a <a href=\"x\">smart contract</a> platform. It was launched in 2015.</p>"},
			"market_data":{
				"current_price":{"inr":250000,"usd":3000},
				"market_cap":{"inr":30000000000000,"usd":360000000000},
				"total_volume":{"inr":1500000000000,"usd":18000000000},
				"price_change_percentage_24h":-2.5,
				"price_change_percentage_7d":4.25,
				"circulating_supply":120000000,
				"total_supply":120000000
			}}`),
	})

	s, err := c.GetCoinStats(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, models.CoinStats{
		ID:                "ethereum",
		Name:              "Ethereum",
		Symbol:            "ETH",
		Description:       "Ethereum is a smart contract platform.",
		CurrentPrice:      250000,
		MarketCap:         30000000000000,
		MarketCapRank:     2,
		Change24h:         -2.5,
		Change7d:          4.25,
		Volume24h:         1500000000000,
		CirculatingSupply: 120000000,
		TotalSupply:       120000000,
	}, s)
}

func TestGetChartData(t *testing.T) {
	var interval, days string
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/coins/solana/market_chart": func(w http.ResponseWriter, r *http.Request) {
			interval = r.URL.Query().Get("interval")
			days = r.URL.Query().Get("days")
			body(`{"prices":[[1709251200000,9800.5],[1709337600000,10100.25]]}`)(w, r)
		},
	})

	points, err := c.GetChartData(context.Background(), "solana", 7)
	require.NoError(t, err)
	assert.Equal(t, "daily", interval)
	assert.Equal(t, "7", days)
	assert.Equal(t, []models.ChartPoint{
		{Timestamp: 1709251200000, Date: "3/1/2024", Price: 9800.5},
		{Timestamp: 1709337600000, Date: "3/2/2024", Price: 10100.25},
	}, points)

	_, err = c.GetChartData(context.Background(), "solana", 1)
	require.NoError(t, err)
	assert.Equal(t, "hourly", interval)
}

func TestListCoins(t *testing.T) {
	c := fakeCoinGecko(t, map[string]func(http.ResponseWriter, *http.Request){
		"/coins/list": body(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},{"id":"ethereum","symbol":"eth","name":"Ethereum"}]`),
	})

	list, err := c.ListCoins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CoinListing{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	}, list)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	c := NewCoinGeckoClient(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

	_, err := c.GetCurrentPrice(context.Background(), "bitcoin")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, kind)
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "₹", CurrencySymbol("inr"))
	assert.Equal(t, "$", CurrencySymbol("USD"))
	assert.Equal(t, "XYZ ", CurrencySymbol("xyz"))
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Bitcoin is money.", FirstSentence("Bitcoin is money. More text."))
	assert.Equal(t, "No period.", FirstSentence("No period"))
	assert.Equal(t, "", FirstSentence(""))
}
