package response

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	indian  = message.NewPrinter(language.MustParse("en-IN"))
	english = message.NewPrinter(language.English)
)

// formatPrice renders v with Indian digit grouping and exactly two decimals.
func formatPrice(v float64) string {
	return indian.Sprint(number.Decimal(v, number.Scale(2)))
}

// formatGrouped renders v with thousands grouping and at most three decimals.
func formatGrouped(v float64) string {
	return english.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// formatMarketCap abbreviates large values: trillions, billions and crores.
func formatMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e7:
		return fmt.Sprintf("%.2fCr", v/1e7)
	}
	return indian.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

func formatChange(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// formatPlain prints the shortest decimal that round-trips, e.g. 2 or 1.5.
func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
