package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/finvault/internal/statement"
)

// parseMoney accepts "1234.56" as well as the Brazilian "1.234,56". A comma
// marks the Brazilian form.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		return statement.ParseAmount(s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
