package models

// Intent is the classified purpose of a chat message. The string values are
// part of the wire contract and are logged verbatim.
type Intent string

const (
	IntentGetPrice          Intent = "getPrice"
	IntentGetTrending       Intent = "getTrending"
	IntentAddHolding        Intent = "addHolding"
	IntentGetPortfolioValue Intent = "getPortfolioValue"
	IntentShowChart         Intent = "showChart"
	IntentGetStats          Intent = "getStats"
	IntentUnknown           Intent = "unknown"
)

type ParsedIntent struct {
	Intent          Intent  `json:"intent"`
	Coin            string  `json:"coin,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	Confidence      float64 `json:"confidence"`
	OriginalMessage string  `json:"originalMessage,omitempty"`
}
