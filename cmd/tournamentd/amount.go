package main

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// parseAmount converts a decimal amount in whole units ("0.97") to base units
// with the given number of decimals.
func parseAmount(s string, decimals int32) (sdkmath.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("invalid amount %q: negative", s)
	}
	base := d.Shift(decimals)
	if !base.Truncate(0).Equal(base) {
		return sdkmath.Int{}, fmt.Errorf("invalid amount %q: more than %d decimal places", s, decimals)
	}
	return sdkmath.NewIntFromBigInt(base.BigInt()), nil
}

// formatAmount is the inverse of parseAmount.
func formatAmount(v sdkmath.Int, decimals int32) string {
	if v.IsNil() {
		return "0"
	}
	return decimal.NewFromBigInt(v.BigInt(), -decimals).String()
}
