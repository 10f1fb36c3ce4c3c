package models

// Result is a typed payload produced by the dispatcher for one intent.
// The response generator switches on the concrete type, never on raw
// upstream JSON.
type Result interface {
	isResult()
}

type PriceQuote struct {
	Coin           string  `json:"coin"`
	Price          float64 `json:"price"`
	Change24h      float64 `json:"change24h"`
	MarketCap      float64 `json:"marketCap"`
	CurrencySymbol string  `json:"currencySymbol"`
}

type TrendingCoin struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Rank      int    `json:"rank"`
	Thumbnail string `json:"thumb"`
}

// TrendingList keeps upstream order and never holds more than ten coins.
type TrendingList []TrendingCoin

type CoinStats struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	Description       string  `json:"description"`
	CurrentPrice      float64 `json:"currentPrice"`
	MarketCap         float64 `json:"marketCap"`
	MarketCapRank     int     `json:"marketCapRank"`
	Change24h         float64 `json:"change24h"`
	Change7d          float64 `json:"change7d"`
	Volume24h         float64 `json:"volume24h"`
	CirculatingSupply float64 `json:"circulatingSupply"`
	TotalSupply       float64 `json:"totalSupply"`
}

type ChartPoint struct {
	Timestamp int64   `json:"timestamp"` // unix millis
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
}

type ChartResult struct {
	Coin      string       `json:"coin"`
	ChartData []ChartPoint `json:"chartData"`
}

// CoinListing is one entry of the upstream coin directory.
type CoinListing struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (PriceQuote) isResult()     {}
func (TrendingList) isResult()   {}
func (CoinStats) isResult()      {}
func (ChartResult) isResult()    {}
func (HoldingAdded) isResult()   {}
func (PortfolioValue) isResult() {}
