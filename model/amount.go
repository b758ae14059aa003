package model

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of fractional digits carried by every amount.
// Balances and transaction amounts are stored as int64 minor units
// (1 unit = 0.01).
const AmountPrecision = 2

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a decimal string such as "15.50" into minor units.
// Only strictly positive values with at most two fractional digits are accepted.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q is not a number", value)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal amount into minor units.
func FromDecimal(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, errors.Wrapf(ErrInvalidAmount, "%s must be greater than zero", d.String())
	}

	minor := d.Shift(AmountPrecision)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%s has more than %d decimal places", d.String(), AmountPrecision)
	}
	if minor.GreaterThan(maxAmount) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%s is too large", d.String())
	}
	return minor.IntPart(), nil
}

// ToDecimal converts minor units back into a decimal amount.
func ToDecimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -AmountPrecision)
}

// FormatAmount renders minor units with exactly two decimal places, e.g. 7550 -> "75.50".
func FormatAmount(amount int64) string {
	return ToDecimal(amount).StringFixed(AmountPrecision)
}
