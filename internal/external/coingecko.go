package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Rhymond/go-money"
	"github.com/go-resty/resty/v2"

	"github.com/kjannette/coinchat/internal/httputil"
	"github.com/kjannette/coinchat/internal/models"
)

const (
	DefaultBaseURL    = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency = "inr"

	apiKeyHeader  = "x-cg-demo-api-key"
	maxTrending   = 10
	chartDateForm = "1/2/2006"
)

type Options struct {
	BaseURL    string
	APIKey     string
	VsCurrency string
	Timeout    time.Duration
	Retry      httputil.RetryConfig
}

type CoinGeckoClient struct {
	client   *resty.Client
	currency string
	symbol   string
}

func NewCoinGeckoClient(opts Options) *CoinGeckoClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.VsCurrency == "" {
		opts.VsCurrency = DefaultVsCurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = httputil.NoRetry
	}

	headers := map[string]string{"Accept": "application/json"}
	if opts.APIKey != "" {
		headers[apiKeyHeader] = opts.APIKey
	}

	currency := strings.ToLower(opts.VsCurrency)
	return &CoinGeckoClient{
		client: httputil.NewClient(httputil.ClientConfig{
			BaseURL: strings.TrimRight(opts.BaseURL, "/"),
			Timeout: opts.Timeout,
			Headers: headers,
			Retry:   opts.Retry,
			Tag:     "coingecko",
		}),
		currency: currency,
		symbol:   CurrencySymbol(currency),
	}
}

// CurrencySymbol returns the display grapheme for an ISO currency code,
// falling back to the upper-cased code.
func CurrencySymbol(code string) string {
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil && c.Grapheme != "" {
		return c.Grapheme
	}
	return strings.ToUpper(code) + " "
}

// Currency is the lower-case vs currency all quotes are priced in.
func (c *CoinGeckoClient) Currency() string {
	return c.currency
}

func (c *CoinGeckoClient) Symbol() string {
	return c.symbol
}

// get issues one GET and decodes a 200 body into out. Status codes and
// transport failures are mapped to UpstreamError kinds.
func (c *CoinGeckoClient) get(ctx context.Context, op, coin, path string, params map[string]string, out any) error {
	resp, err := httputil.Do(ctx, c.client, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(params).Get(path)
	})
	if err != nil {
		return &UpstreamError{Kind: KindUnavailable, Op: op, Coin: coin, Cause: err}
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
	case code == http.StatusNotFound:
		return &UpstreamError{Kind: KindNotFound, Op: op, Coin: coin, Cause: errCoinNotFound}
	case code == http.StatusTooManyRequests:
		return &UpstreamError{Kind: KindRateLimited, Op: op, Coin: coin, Cause: errRateLimited}
	default:
		return &UpstreamError{Kind: KindUnavailable, Op: op, Coin: coin, Cause: fmt.Errorf("HTTP %d", code)}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &UpstreamError{Kind: KindUnavailable, Op: op, Coin: coin, Cause: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// GetCurrentPrice returns the spot price, 24h change and market cap of coin.
func (c *CoinGeckoClient) GetCurrentPrice(ctx context.Context, coin string) (models.PriceQuote, error) {
	var data map[string]map[string]float64
	err := c.get(ctx, "price", coin, "/simple/price", map[string]string{
		"ids":                 coin,
		"vs_currencies":       c.currency,
		"include_24hr_change": "true",
		"include_market_cap":  "true",
	}, &data)
	if err != nil {
		return models.PriceQuote{}, err
	}

	entry, ok := data[coin]
	if !ok || len(entry) == 0 {
		return models.PriceQuote{}, &UpstreamError{Kind: KindNotFound, Op: "price", Coin: coin, Cause: errCoinNotFound}
	}
	return models.PriceQuote{
		Coin:           coin,
		Price:          entry[c.currency],
		Change24h:      entry[c.currency+"_24h_change"],
		MarketCap:      entry[c.currency+"_market_cap"],
		CurrencySymbol: c.symbol,
	}, nil
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
			Thumb         string `json:"thumb"`
		} `json:"item"`
	} `json:"coins"`
}

// GetTrendingCoins returns at most ten trending coins in upstream order.
func (c *CoinGeckoClient) GetTrendingCoins(ctx context.Context) (models.TrendingList, error) {
	var data trendingResponse
	if err := c.get(ctx, "trending coins", "", "/search/trending", nil, &data); err != nil {
		return nil, err
	}

	out := make(models.TrendingList, 0, maxTrending)
	for _, coin := range data.Coins {
		if len(out) == maxTrending {
			break
		}
		out = append(out, models.TrendingCoin{
			ID:        coin.Item.ID,
			Name:      coin.Item.Name,
			Symbol:    coin.Item.Symbol,
			Rank:      coin.Item.MarketCapRank,
			Thumbnail: coin.Item.Thumb,
		})
	}
	return out, nil
}

type coinResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Description   struct {
		En string `json:"en"`
	} `json:"description"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
		PriceChangePercentage7d  float64            `json:"price_change_percentage_7d"`
		CirculatingSupply        float64            `json:"circulating_supply"`
		TotalSupply              float64            `json:"total_supply"`
	} `json:"market_data"`
}

// GetCoinStats returns market statistics and a one-sentence description.
func (c *CoinGeckoClient) GetCoinStats(ctx context.Context, coin string) (models.CoinStats, error) {
	var data coinResponse
	err := c.get(ctx, "stats", coin, "/coins/"+url.PathEscape(coin), map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"community_data": "false",
		"developer_data": "false",
	}, &data)
	if err != nil {
		return models.CoinStats{}, err
	}

	md := data.MarketData
	return models.CoinStats{
		ID:                data.ID,
		Name:              data.Name,
		Symbol:            strings.ToUpper(data.Symbol),
		Description:       FirstSentence(StripHTML(data.Description.En)),
		CurrentPrice:      md.CurrentPrice[c.currency],
		MarketCap:         md.MarketCap[c.currency],
		MarketCapRank:     data.MarketCapRank,
		Change24h:         md.PriceChangePercentage24h,
		Change7d:          md.PriceChangePercentage7d,
		Volume24h:         md.TotalVolume[c.currency],
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
	}, nil
}

// GetChartData returns the price series over the last days, hourly for a
// single day and daily otherwise.
func (c *CoinGeckoClient) GetChartData(ctx context.Context, coin string, days int) ([]models.ChartPoint, error) {
	interval := "daily"
	if days <= 1 {
		interval = "hourly"
	}

	var data struct {
		Prices [][2]float64 `json:"prices"`
	}
	err := c.get(ctx, "chart data", coin, "/coins/"+url.PathEscape(coin)+"/market_chart", map[string]string{
		"vs_currency": c.currency,
		"days":        strconv.Itoa(days),
		"interval":    interval,
	}, &data)
	if err != nil {
		return nil, err
	}

	points := make([]models.ChartPoint, 0, len(data.Prices))
	for _, p := range data.Prices {
		ms := int64(p[0])
		points = append(points, models.ChartPoint{
			Timestamp: ms,
			Date:      time.UnixMilli(ms).UTC().Format(chartDateForm),
			Price:     p[1],
		})
	}
	return points, nil
}

// ListCoins returns the full upstream coin directory.
func (c *CoinGeckoClient) ListCoins(ctx context.Context) ([]models.CoinListing, error) {
	var out []models.CoinListing
	if err := c.get(ctx, "coin list", "", "/coins/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks that the upstream answers.
func (c *CoinGeckoClient) Ping(ctx context.Context) error {
	var out map[string]any
	return c.get(ctx, "ping", "", "/ping", nil, &out)
}

// StripHTML returns the text content of an HTML fragment.
func StripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}

// FirstSentence keeps text up to its first period. Empty text stays empty.
func FirstSentence(text string) string {
	if text == "" {
		return ""
	}
	head, _, _ := strings.Cut(text, ".")
	return strings.TrimSpace(head) + "."
}
