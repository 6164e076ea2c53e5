package entity

// TokenMint describes the play token: supply and the authority allowed to mint and burn.
type TokenMint struct {
	Decimals  uint8  `json:"decimals"`
	Supply    uint64 `json:"supply"`
	Authority string `json:"authority"`
	Bump      uint8  `json:"bump"`
}

// TokenAccount holds the play token balance of one identity.
type TokenAccount struct {
	Owner  Identity `json:"owner"`
	Amount uint64   `json:"amount"`
}
