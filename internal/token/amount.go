package token

import (
	"math/big"
	"strings"
)

// FormatAmount scales a raw token amount by 10^decimals into a decimal
// string, e.g. 1e18 at 18 decimals becomes "1.0". When scaling is not
// possible the raw integer string is returned unchanged.
func FormatAmount(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	if raw.Sign() < 0 {
		return raw.String()
	}
	if decimals == 0 {
		return raw.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(raw, divisor, new(big.Int))

	fracDigits := strings.Repeat("0", int(decimals)-len(frac.String())) + frac.String()
	fracDigits = strings.TrimRight(fracDigits, "0")
	if fracDigits == "" {
		fracDigits = "0"
	}

	return whole.String() + "." + fracDigits
}
