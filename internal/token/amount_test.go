package token

import (
	"math/big"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	oneToken, _ := new(big.Int).SetString("1000000000000000000", 10)
	half, _ := new(big.Int).SetString("1500000000000000000", 10)
	dust, _ := new(big.Int).SetString("1", 10)

	cases := []struct {
		raw      *big.Int
		decimals uint8
		want     string
	}{
		{oneToken, 18, "1.0"},
		{half, 18, "1.5"},
		{dust, 18, "0.000000000000000001"},
		{big.NewInt(0), 18, "0.0"},
		{big.NewInt(12345), 2, "123.45"},
		{big.NewInt(12300), 2, "123.0"},
		{big.NewInt(42), 0, "42"},
		{nil, 18, "0"},
	}

	for _, tc := range cases {
		if got := FormatAmount(tc.raw, tc.decimals); got != tc.want {
			t.Fatalf("FormatAmount(%v, %d) = %q, want %q", tc.raw, tc.decimals, got, tc.want)
		}
	}
}
