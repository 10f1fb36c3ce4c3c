package models

type Holding struct {
	Coin   string  `json:"coin"`
	Amount float64 `json:"amount"`
}

type HoldingAdded struct {
	Amount       float64 `json:"amount"`
	Coin         string  `json:"coin"`
	CurrentPrice float64 `json:"currentPrice"`
}

type HoldingValue struct {
	Coin         string  `json:"coin"`
	Amount       float64 `json:"amount"`
	CurrentPrice float64 `json:"currentPrice"`
	Value        float64 `json:"value"`
}

// PortfolioValue is the valuation of one session's holdings. TotalValue is
// nil for an empty portfolio so the key is omitted on the wire.
type PortfolioValue struct {
	Holdings   []HoldingValue `json:"holdings"`
	TotalValue *float64       `json:"totalValue,omitempty"`
}
