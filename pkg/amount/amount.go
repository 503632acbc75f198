// Package amount converts raw integer token balances to and from their
// human-readable decimal text.
//
// All arithmetic is exact. Raw balances are arbitrary-precision integers
// because ledger totals can exceed 2^64.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when display text cannot be converted.
var ErrInvalidAmount = errors.New("invalid amount")

var ten = big.NewInt(10)

// Scale returns 10^decimals.
func Scale(decimals uint8) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(decimals)), nil)
}

// Format renders balance / 10^decimals with no trailing fractional zeros and
// no decimal point when the division is exact. A nil balance formats as "0".
//
//	Format(123456789, 8) = "1.23456789"
//	Format(100500000, 8) = "1.005"
//	Format(100000000, 8) = "1"
func Format(balance *big.Int, decimals uint8) string {
	if balance == nil {
		return "0"
	}
	if balance.Sign() < 0 {
		return "-" + Format(new(big.Int).Neg(balance), decimals)
	}
	if decimals == 0 {
		return balance.String()
	}

	whole, frac := new(big.Int).QuoRem(balance, Scale(decimals), new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}

	digits := frac.String()
	digits = strings.Repeat("0", int(decimals)-len(digits)) + digits
	return whole.String() + "." + strings.TrimRight(digits, "0")
}

// Parse converts display text to a raw balance with the given number of
// decimal places. It rejects negative values, exponent notation and text
// with more fractional digits than decimals allows.
func Parse(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	// Digits must be spelled out; "1e9" is not a display amount.
	if strings.ContainsAny(s, "eE") {
		return nil, fmt.Errorf("%w: exponent notation not allowed", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount", ErrInvalidAmount)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: too many decimal places (max %d)", ErrInvalidAmount, decimals)
	}
	return shifted.BigInt(), nil
}
