package model

// PoolCreatedData is the factory's pool deployment payload.
type PoolCreatedData struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
	Pool   string `json:"pool"`
}

// InitializeData carries the pool's first price.
type InitializeData struct {
	Price string `json:"price"`
	Tick  int32  `json:"tick"`
}

// SwapData is the decoded Swap event payload.
type SwapData struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
	Price     string `json:"price"`
	Liquidity string `json:"liquidity"`
	Tick      int32  `json:"tick"`
}

// MintData is the decoded Mint event payload.
type MintData struct {
	Sender          string `json:"sender"`
	Owner           string `json:"owner"`
	BottomTick      int32  `json:"bottom_tick"`
	TopTick         int32  `json:"top_tick"`
	LiquidityAmount string `json:"liquidity_amount"`
	Amount0         string `json:"amount0"`
	Amount1         string `json:"amount1"`
}

// BurnData is the decoded Burn event payload.
type BurnData struct {
	Owner           string `json:"owner"`
	BottomTick      int32  `json:"bottom_tick"`
	TopTick         int32  `json:"top_tick"`
	LiquidityAmount string `json:"liquidity_amount"`
	Amount0         string `json:"amount0"`
	Amount1         string `json:"amount1"`
}

// CollectData is the decoded pool Collect event payload.
type CollectData struct {
	Owner      string `json:"owner"`
	Recipient  string `json:"recipient"`
	BottomTick int32  `json:"bottom_tick"`
	TopTick    int32  `json:"top_tick"`
	Amount0    string `json:"amount0"`
	Amount1    string `json:"amount1"`
}

// FeeData carries a pool fee reconfiguration.
type FeeData struct {
	Fee uint32 `json:"fee"`
}

// CommunityFeeData carries a pool community fee reconfiguration.
type CommunityFeeData struct {
	CommunityFee0 uint32 `json:"community_fee0"`
	CommunityFee1 uint32 `json:"community_fee1"`
}

// IncreaseLiquidityData is the position manager's deposit payload.
type IncreaseLiquidityData struct {
	TokenID   string `json:"token_id"`
	Liquidity string `json:"liquidity"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// DecreaseLiquidityData is the position manager's withdrawal payload.
type DecreaseLiquidityData struct {
	TokenID   string `json:"token_id"`
	Liquidity string `json:"liquidity"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// NFTCollectData is the position manager's fee collection payload.
type NFTCollectData struct {
	TokenID   string `json:"token_id"`
	Recipient string `json:"recipient"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// NFTTransferData is the position NFT ownership transfer payload.
type NFTTransferData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID string `json:"token_id"`
}
