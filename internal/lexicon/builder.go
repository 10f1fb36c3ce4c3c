package lexicon

import (
	"strings"

	"github.com/kjannette/coinchat/internal/models"
)

// FromListings turns the upstream coin directory into an alias table keyed by
// lower-cased symbol and name. Symbols shorter than two characters are
// skipped. When several coins share an alias the first listing keeps it.
func FromListings(listings []models.CoinListing) map[string]string {
	out := make(map[string]string, len(listings)*2)
	for _, c := range listings {
		id := strings.ToLower(c.ID)
		if id == "" {
			continue
		}
		symbol := strings.ToLower(c.Symbol)
		if len(symbol) >= minAliasLen {
			if _, taken := out[symbol]; !taken {
				out[symbol] = id
			}
		}
		name := strings.ToLower(c.Name)
		if len(name) >= minAliasLen {
			if _, taken := out[name]; !taken {
				out[name] = id
			}
		}
	}
	return out
}
