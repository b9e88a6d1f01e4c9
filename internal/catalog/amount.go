package catalog

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyPattern accepts non-negative amounts with at most two decimals.
var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// maxAmount is the largest value a decimal(10,2) column holds.
var maxAmount = decimal.RequireFromString("99999999.99")

// Amount is a monetary value exactly as the client sent it. JSON numbers and
// strings are both accepted so "10.999" and 10.999 are rejected alike. Any
// other JSON value is kept as its raw text and fails the money rule.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*a = Amount(raw)
		return nil
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) Valid() bool {
	return moneyPattern.MatchString(string(a))
}

func (a Amount) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(a))
}

func withinColumn(a Amount) bool {
	d, err := a.Decimal()
	if err != nil {
		return false
	}
	return d.LessThanOrEqual(maxAmount)
}

func amountToColumn(a *Amount) decimal.NullDecimal {
	if a == nil {
		return decimal.NullDecimal{}
	}
	d, err := a.Decimal()
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(2))
}

func amountFromColumn(d decimal.NullDecimal) *Amount {
	if !d.Valid {
		return nil
	}
	a := Amount(d.Decimal.StringFixed(2))
	return &a
}

// FormatAmount renders a nullable column value with two decimals.
func FormatAmount(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}
