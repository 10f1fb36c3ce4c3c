// Package parser turns a free-form chat message into a ParsedIntent using
// ordered keyword rules.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kjannette/coinchat/internal/lexicon"
	"github.com/kjannette/coinchat/internal/models"
)

const (
	confidenceHigh = 0.9
	confidenceLow  = 0.6
	defaultCoin    = "bitcoin"
)

var (
	priceKeywords          = []string{"price", "trading", "worth", "cost", "value"}
	trendingKeywords       = []string{"trending", "popular", "hot", "top coins", "best"}
	holdingKeywords        = []string{"i have", "holding", "own", "bought", "portfolio"}
	portfolioValueKeywords = []string{"portfolio value", "my holdings", "total worth", "net worth"}
	chartKeywords          = []string{"chart", "graph", "price history", "trend"}
	statsKeywords          = []string{"stats", "information", "details", "about"}
)

const holdingSymbols = `(btc|bitcoin|eth|ethereum|ada|cardano|sol|solana|doge|dogecoin)`

var holdingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:i have|holding|own|bought)\s+(\d+\.?\d*)\s+` + holdingSymbols),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s+` + holdingSymbols),
}

// Parser is stateless apart from its lexicon and safe for concurrent use.
type Parser struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Parser {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Parser{lex: lex}
}

var defaultParser = New(nil)

// Parse classifies message with the built-in lexicon.
func Parse(message string) models.ParsedIntent {
	return defaultParser.Parse(message)
}

// Parse applies the rules in order; the first match wins. An ownership
// phrase without an extractable amount and coin falls through to the
// portfolio-value rule.
func (p *Parser) Parse(message string) models.ParsedIntent {
	text := strings.ToLower(strings.TrimSpace(message))

	if matchesPattern(text, priceKeywords) {
		return p.coinIntent(models.IntentGetPrice, text)
	}

	if matchesPattern(text, trendingKeywords) {
		return models.ParsedIntent{Intent: models.IntentGetTrending, Confidence: confidenceHigh}
	}

	if matchesPattern(text, holdingKeywords) {
		if h, ok := p.ExtractHolding(text); ok {
			return models.ParsedIntent{
				Intent:     models.IntentAddHolding,
				Coin:       h.Coin,
				Amount:     h.Amount,
				Confidence: confidenceHigh,
			}
		}
	}

	if matchesPattern(text, portfolioValueKeywords) {
		return models.ParsedIntent{Intent: models.IntentGetPortfolioValue, Confidence: confidenceHigh}
	}

	if matchesPattern(text, chartKeywords) {
		return p.coinIntent(models.IntentShowChart, text)
	}

	if matchesPattern(text, statsKeywords) {
		return p.coinIntent(models.IntentGetStats, text)
	}

	return models.ParsedIntent{
		Intent:          models.IntentUnknown,
		Confidence:      0,
		OriginalMessage: message,
	}
}

func (p *Parser) coinIntent(intent models.Intent, text string) models.ParsedIntent {
	coin, ok := p.lex.Resolve(text)
	if !ok {
		return models.ParsedIntent{Intent: intent, Coin: defaultCoin, Confidence: confidenceLow}
	}
	return models.ParsedIntent{Intent: intent, Coin: coin, Confidence: confidenceHigh}
}

// ExtractHolding pulls "<amount> <symbol>" out of text. The verb-anchored
// pattern is tried before the bare one; a match only counts when the amount
// is positive and the symbol resolves to a known coin.
func (p *Parser) ExtractHolding(text string) (models.Holding, bool) {
	for _, re := range holdingPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil || amount <= 0 {
			continue
		}
		coin, ok := p.lex.Resolve(strings.ToLower(m[2]))
		if !ok {
			continue
		}
		return models.Holding{Coin: coin, Amount: amount}, true
	}
	return models.Holding{}, false
}

func matchesPattern(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
