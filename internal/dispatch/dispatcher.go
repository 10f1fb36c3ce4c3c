// Package dispatch routes a parsed intent to the gateway and the portfolio
// store and returns a typed result for the response generator.
package dispatch

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kjannette/coinchat/internal/models"
	"github.com/kjannette/coinchat/internal/portfolio"
)

// ChartDays is the window used for chart requests.
const ChartDays = 7

// Gateway is the market data the dispatcher needs.
type Gateway interface {
	GetCurrentPrice(ctx context.Context, coin string) (models.PriceQuote, error)
	GetTrendingCoins(ctx context.Context) (models.TrendingList, error)
	GetCoinStats(ctx context.Context, coin string) (models.CoinStats, error)
	GetChartData(ctx context.Context, coin string, days int) ([]models.ChartPoint, error)
}

type Dispatcher struct {
	gateway Gateway
	store   portfolio.Store
}

func New(gateway Gateway, store portfolio.Store) *Dispatcher {
	return &Dispatcher{gateway: gateway, store: store}
}

// Process executes the action for parsed. Unknown intents yield (nil, nil).
// Errors from the gateway are returned unchanged; the first failure aborts.
func (d *Dispatcher) Process(ctx context.Context, parsed models.ParsedIntent, sessionID string) (models.Result, error) {
	switch parsed.Intent {
	case models.IntentGetPrice:
		return result(d.gateway.GetCurrentPrice(ctx, parsed.Coin))

	case models.IntentGetTrending:
		return result(d.gateway.GetTrendingCoins(ctx))

	case models.IntentAddHolding:
		return d.addHolding(ctx, parsed, sessionID)

	case models.IntentGetPortfolioValue:
		return d.portfolioValue(ctx, sessionID)

	case models.IntentShowChart:
		points, err := d.gateway.GetChartData(ctx, parsed.Coin, ChartDays)
		if err != nil {
			return nil, err
		}
		return models.ChartResult{Coin: parsed.Coin, ChartData: points}, nil

	case models.IntentGetStats:
		return result(d.gateway.GetCoinStats(ctx, parsed.Coin))
	}
	return nil, nil
}

// result drops the zero value a failed gateway call returns alongside err.
func result[T models.Result](v T, err error) (models.Result, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// addHolding prices the coin before touching the store, so an unknown coin
// never lands in the portfolio.
func (d *Dispatcher) addHolding(ctx context.Context, parsed models.ParsedIntent, sessionID string) (models.Result, error) {
	quote, err := d.gateway.GetCurrentPrice(ctx, parsed.Coin)
	if err != nil {
		return nil, err
	}
	d.store.AddHolding(sessionID, parsed.Coin, parsed.Amount)
	return models.HoldingAdded{
		Amount:       parsed.Amount,
		Coin:         parsed.Coin,
		CurrentPrice: quote.Price,
	}, nil
}

func (d *Dispatcher) portfolioValue(ctx context.Context, sessionID string) (models.Result, error) {
	holdings := d.store.GetPortfolio(sessionID)
	if len(holdings) == 0 {
		return models.PortfolioValue{Holdings: []models.HoldingValue{}}, nil
	}

	total := decimal.Zero
	values := make([]models.HoldingValue, 0, len(holdings))
	for _, h := range holdings {
		quote, err := d.gateway.GetCurrentPrice(ctx, h.Coin)
		if err != nil {
			return nil, err
		}
		value := decimal.NewFromFloat(h.Amount).Mul(decimal.NewFromFloat(quote.Price))
		total = total.Add(value)
		values = append(values, models.HoldingValue{
			Coin:         h.Coin,
			Amount:       h.Amount,
			CurrentPrice: quote.Price,
			Value:        value.InexactFloat64(),
		})
	}

	sum := total.InexactFloat64()
	return models.PortfolioValue{Holdings: values, TotalValue: &sum}, nil
}
