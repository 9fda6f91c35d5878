package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a Brazilian formatted amount such as "-1.234,56":
// dots group thousands and the comma is the decimal mark.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &InvalidAmountError{Raw: raw}
	}
	return d, nil
}

// parsePointAmount parses amounts that use a decimal point, dropping commas
// used as thousands separators.
func parsePointAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &InvalidAmountError{Raw: raw}
	}
	return d, nil
}

// parseDate converts raw in the given layout into the canonical ISO form.
func parseDate(raw, layout string) (string, error) {
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return "", &InvalidDateError{Raw: raw}
	}
	return t.Format("2006-01-02"), nil
}

// optionalAmount parses raw when present.
func optionalAmount(raw string, parse func(string) (decimal.Decimal, error)) (decimal.NullDecimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parse(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func optionalString(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
