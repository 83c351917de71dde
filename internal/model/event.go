package model

import (
	"encoding/json"
	"fmt"
)

// Event names emitted by the factory, pools and the position manager.
const (
	EventPoolCreated       = "Pool"
	EventInitialize        = "Initialize"
	EventMint              = "Mint"
	EventBurn              = "Burn"
	EventSwap              = "Swap"
	EventCollect           = "Collect"
	EventFee               = "Fee"
	EventCommunityFee      = "CommunityFee"
	EventIncreaseLiquidity = "IncreaseLiquidity"
	EventDecreaseLiquidity = "DecreaseLiquidity"
	EventNFTCollect        = "NFTCollect"
	EventNFTTransfer       = "Transfer"
)

// Event is a decoded log enriched with block and transaction context.
type Event struct {
	ChainID     uint64      `json:"chain_id"`
	BlockNumber uint64      `json:"block_number"`
	BlockHash   string      `json:"block_hash"`
	TxHash      string      `json:"tx_hash"`
	LogIndex    uint64      `json:"log_index"`
	Address     string      `json:"address"`
	EventName   string      `json:"event_name"`
	Timestamp   uint64      `json:"timestamp"`
	TxOrigin    string      `json:"tx_origin"`
	GasLimit    string      `json:"gas_limit,omitempty"`
	GasPrice    string      `json:"gas_price,omitempty"`
	Decoded     interface{} `json:"decoded"`
}

// EventRecord is the JSON representation of an Event with the payload
// left raw, for replay from storage.
type EventRecord struct {
	ChainID     uint64          `json:"chain_id"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	TxHash      string          `json:"tx_hash"`
	LogIndex    uint64          `json:"log_index"`
	Address     string          `json:"address"`
	EventName   string          `json:"event_name"`
	Timestamp   uint64          `json:"timestamp"`
	TxOrigin    string          `json:"tx_origin"`
	GasLimit    string          `json:"gas_limit,omitempty"`
	GasPrice    string          `json:"gas_price,omitempty"`
	Decoded     json.RawMessage `json:"decoded"`
}

// Decode materializes the raw payload into a typed Event.
func (r *EventRecord) Decode() (*Event, error) {
	payload, err := payloadFor(r.EventName)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.Decoded, payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", r.EventName, err)
	}
	return &Event{
		ChainID:     r.ChainID,
		BlockNumber: r.BlockNumber,
		BlockHash:   r.BlockHash,
		TxHash:      r.TxHash,
		LogIndex:    r.LogIndex,
		Address:     r.Address,
		EventName:   r.EventName,
		Timestamp:   r.Timestamp,
		TxOrigin:    r.TxOrigin,
		GasLimit:    r.GasLimit,
		GasPrice:    r.GasPrice,
		Decoded:     payload,
	}, nil
}

func payloadFor(name string) (interface{}, error) {
	switch name {
	case EventPoolCreated:
		return &PoolCreatedData{}, nil
	case EventInitialize:
		return &InitializeData{}, nil
	case EventMint:
		return &MintData{}, nil
	case EventBurn:
		return &BurnData{}, nil
	case EventSwap:
		return &SwapData{}, nil
	case EventCollect:
		return &CollectData{}, nil
	case EventFee:
		return &FeeData{}, nil
	case EventCommunityFee:
		return &CommunityFeeData{}, nil
	case EventIncreaseLiquidity:
		return &IncreaseLiquidityData{}, nil
	case EventDecreaseLiquidity:
		return &DecreaseLiquidityData{}, nil
	case EventNFTCollect:
		return &NFTCollectData{}, nil
	case EventNFTTransfer:
		return &NFTTransferData{}, nil
	default:
		return nil, fmt.Errorf("unknown event name %q", name)
	}
}
