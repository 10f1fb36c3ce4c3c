// Package response renders dispatcher results and errors as chat replies.
package response

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/coinchat/internal/external"
	"github.com/kjannette/coinchat/internal/models"
)

const (
	MsgRateLimited = "Too many requests. Please wait before trying again."
	MsgNotFound    = "Coin not found. Please check the name and try again."
	MsgGeneric     = "Something went wrong. Please try again later."
	MsgServerError = "⚠️ **Server Error**\n\nSomething went wrong on our end. Please try again!"

	msgEmptyPortfolio = "Your portfolio is empty. Add a coin to get started. For example: I have 2 BTC"
	msgUnknownPrefix  = "I didn't understand that. I can help with crypto prices, trending coins, portfolio tracking, and charts. Suggestion: "

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
	defaultSymbol   = "₹"
)

// Suggestions is the pool an unknown-intent reply picks one hint from.
var Suggestions = []string{
	"Try asking: What's the price of Bitcoin?",
	"Ask: Show me trending coins",
	"Say: I have 2 ETH to track your portfolio",
	"Request: Show me a chart for Ethereum",
	"Ask: What are the stats for Solana?",
}

type Options struct {
	// Symbol prefixes amounts that do not carry their own currency symbol.
	Symbol string
	NewID  func() string
	Now    func() time.Time
	// Pick returns an index in [0, n).
	Pick func(n int) int
}

// Generator is safe for concurrent use as long as the injected functions are.
type Generator struct {
	symbol string
	newID  func() string
	now    func() time.Time
	pick   func(n int) int
}

func New(opts Options) *Generator {
	g := &Generator{
		symbol: opts.Symbol,
		newID:  opts.NewID,
		now:    opts.Now,
		pick:   opts.Pick,
	}
	if g.symbol == "" {
		g.symbol = defaultSymbol
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.pick == nil {
		g.pick = rand.Intn
	}
	return g
}

func (g *Generator) reply(blocks ...models.ContentBlock) models.BotResponse {
	return models.BotResponse{
		ID:        g.newID(),
		Role:      models.RoleBot,
		Timestamp: g.now().UTC().Format(timestampLayout),
		Content:   blocks,
	}
}

func (g *Generator) text(s string) models.BotResponse {
	return g.reply(models.TextBlock(s))
}

// ServerError is the fixed reply for failures outside the normal error path.
func (g *Generator) ServerError() models.BotResponse {
	return g.text(MsgServerError)
}

// Generate builds the reply for intent. A non-nil err always produces a
// single text block with the error category message.
func (g *Generator) Generate(intent models.Intent, data models.Result, err error) models.BotResponse {
	if err != nil {
		return g.text(ErrorMessage(err))
	}

	switch intent {
	case models.IntentGetPrice:
		if q, ok := data.(models.PriceQuote); ok {
			return g.price(q)
		}
	case models.IntentGetTrending:
		if list, ok := data.(models.TrendingList); ok {
			return g.trending(list)
		}
	case models.IntentAddHolding:
		if h, ok := data.(models.HoldingAdded); ok {
			return g.holdingAdded(h)
		}
	case models.IntentGetPortfolioValue:
		if pv, ok := data.(models.PortfolioValue); ok {
			return g.portfolio(pv)
		}
	case models.IntentShowChart:
		if c, ok := data.(models.ChartResult); ok {
			return g.chart(c)
		}
	case models.IntentGetStats:
		if s, ok := data.(models.CoinStats); ok {
			return g.stats(s)
		}
	default:
		return g.unknown()
	}
	return g.text(MsgGeneric)
}

// ErrorMessage maps err to a user-facing category message. Typed upstream
// kinds are checked first, then the lower-cased error text.
func ErrorMessage(err error) string {
	var ue *external.UpstreamError
	if errors.As(err, &ue) {
		switch ue.Kind {
		case external.KindRateLimited:
			return MsgRateLimited
		case external.KindNotFound:
			return MsgNotFound
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"):
		return MsgRateLimited
	case strings.Contains(msg, "not found"):
		return MsgNotFound
	}
	return MsgGeneric
}

func (g *Generator) price(q models.PriceQuote) models.BotResponse {
	symbol := q.CurrencySymbol
	if symbol == "" {
		symbol = g.symbol
	}
	return g.text(fmt.Sprintf("%s is trading at %s%s. 24h Change: %s. Market Cap: %s%s",
		strings.ToUpper(q.Coin),
		symbol, formatPrice(q.Price),
		formatChange(q.Change24h),
		symbol, formatMarketCap(q.MarketCap),
	))
}

func (g *Generator) trending(list models.TrendingList) models.BotResponse {
	rows := make([][]any, 0, len(list))
	for _, c := range list {
		var rank any = c.Rank
		if c.Rank == 0 {
			rank = "N/A"
		}
		rows = append(rows, []any{rank, c.Name, strings.ToUpper(c.Symbol)})
	}
	return g.reply(
		models.TextBlock("Trending Cryptocurrencies Today:"),
		models.TableBlock(models.TableData{Headers: []string{"Rank", "Name", "Symbol"}, Rows: rows}),
	)
}

func (g *Generator) holdingAdded(h models.HoldingAdded) models.BotResponse {
	return g.text(fmt.Sprintf("Added %s %s to your portfolio. Current Value: %s%s",
		formatPlain(h.Amount), strings.ToUpper(h.Coin),
		g.symbol, formatGrouped(h.Amount*h.CurrentPrice),
	))
}

func (g *Generator) portfolio(pv models.PortfolioValue) models.BotResponse {
	if len(pv.Holdings) == 0 {
		return g.text(msgEmptyPortfolio)
	}

	var total float64
	if pv.TotalValue != nil {
		total = *pv.TotalValue
	}
	rows := make([][]any, 0, len(pv.Holdings))
	for _, h := range pv.Holdings {
		rows = append(rows, []any{
			strings.ToUpper(h.Coin),
			h.Amount,
			g.symbol + formatGrouped(h.CurrentPrice),
			g.symbol + formatGrouped(h.Value),
		})
	}
	return g.reply(
		models.TextBlock("Your Portfolio Total Value: "+g.symbol+formatGrouped(total)),
		models.TableBlock(models.TableData{Headers: []string{"Asset", "Amount", "Price", "Value"}, Rows: rows}),
	)
}

func (g *Generator) chart(c models.ChartResult) models.BotResponse {
	points := c.ChartData
	if points == nil {
		points = []models.ChartPoint{}
	}
	return g.reply(
		models.TextBlock(strings.ToUpper(c.Coin)+" 7-Day Price Chart"),
		models.ChartBlock(models.ChartData{Type: "line", ChartData: points, Coin: c.Coin}),
	)
}

func (g *Generator) stats(s models.CoinStats) models.BotResponse {
	return g.text(fmt.Sprintf(
		"%s (%s) Stats. Description: %s. Price: %s%s. Market Cap: %s%.2fB. Rank: #%d. "+
			"24h Change: %s%%. 7d Change: %s%%. Volume (24h): %s%.2fB. Circulating Supply: %.2fM",
		s.Name, strings.ToUpper(s.Symbol),
		strings.TrimSuffix(s.Description, "."),
		g.symbol, formatGrouped(s.CurrentPrice),
		g.symbol, s.MarketCap/1e9,
		s.MarketCapRank,
		formatPlain(s.Change24h), formatPlain(s.Change7d),
		g.symbol, s.Volume24h/1e9,
		s.CirculatingSupply/1e6,
	))
}

func (g *Generator) unknown() models.BotResponse {
	return g.text(msgUnknownPrefix + Suggestions[g.pick(len(Suggestions))])
}
