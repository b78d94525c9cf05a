package model

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
}

// FallbackTokenMeta stands in when on-chain metadata cannot be resolved, so
// a mint or burn is still reported.
func FallbackTokenMeta(address string) TokenMeta {
	return TokenMeta{Address: address, Decimals: 18, Symbol: "TOKEN"}
}
