package dex

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"algebraScope/internal/model"
)

// contract source tags for topic routing. Pool and position manager
// Collect events share a name but not a signature, so routing is by
// topic0, never by name.
type eventSource int

const (
	sourceFactory eventSource = iota
	sourcePool
	sourceManager
)

type eventRoute struct {
	source  eventSource
	abiName string
	name    string
}

// Decoder converts raw logs from the factory, pools and the position
// manager into typed events.
type Decoder struct {
	factoryABI abi.ABI
	poolABI    abi.ABI
	managerABI abi.ABI
	routes     map[string]eventRoute
}

// NewDecoder builds a decoder over the protocol ABIs.
func NewDecoder() (*Decoder, error) {
	factory, err := FactoryABI()
	if err != nil {
		return nil, err
	}
	pool, err := PoolABI()
	if err != nil {
		return nil, err
	}
	manager, err := PositionManagerABI()
	if err != nil {
		return nil, err
	}

	routes := map[string]eventRoute{
		topicKey(factory.Events["Pool"].ID):              {sourceFactory, "Pool", model.EventPoolCreated},
		topicKey(pool.Events["Initialize"].ID):           {sourcePool, "Initialize", model.EventInitialize},
		topicKey(pool.Events["Swap"].ID):                 {sourcePool, "Swap", model.EventSwap},
		topicKey(pool.Events["Mint"].ID):                 {sourcePool, "Mint", model.EventMint},
		topicKey(pool.Events["Burn"].ID):                 {sourcePool, "Burn", model.EventBurn},
		topicKey(pool.Events["Collect"].ID):              {sourcePool, "Collect", model.EventCollect},
		topicKey(pool.Events["Fee"].ID):                  {sourcePool, "Fee", model.EventFee},
		topicKey(pool.Events["CommunityFee"].ID):         {sourcePool, "CommunityFee", model.EventCommunityFee},
		topicKey(manager.Events["IncreaseLiquidity"].ID): {sourceManager, "IncreaseLiquidity", model.EventIncreaseLiquidity},
		topicKey(manager.Events["DecreaseLiquidity"].ID): {sourceManager, "DecreaseLiquidity", model.EventDecreaseLiquidity},
		topicKey(manager.Events["Collect"].ID):           {sourceManager, "Collect", model.EventNFTCollect},
		topicKey(manager.Events["Transfer"].ID):          {sourceManager, "Transfer", model.EventNFTTransfer},
	}

	return &Decoder{
		factoryABI: factory,
		poolABI:    pool,
		managerABI: manager,
		routes:     routes,
	}, nil
}

// Topic0Filter returns every topic0 the decoder understands, for log
// subscription filters.
func (d *Decoder) Topic0Filter() []common.Hash {
	out := make([]common.Hash, 0, len(d.routes))
	for topic := range d.routes {
		out = append(out, common.HexToHash(topic))
	}
	return out
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.routes[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into a typed Event.
func (d *Decoder) Decode(log model.LogRecord) (*model.Event, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	route, ok := d.routes[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid contract address: %s", log.Address)
	}

	var (
		decoded interface{}
		err     error
	)
	switch route.source {
	case sourceFactory:
		decoded, err = d.decodeFactory(route.abiName, log)
	case sourcePool:
		decoded, err = d.decodePool(route.abiName, log)
	case sourceManager:
		decoded, err = d.decodeManager(route.abiName, log)
	}
	if err != nil {
		return nil, err
	}

	return &model.Event{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash,
		TxHash:      strings.ToLower(log.TxHash),
		LogIndex:    log.LogIndex,
		Address:     lowerAddress(log.Address),
		EventName:   route.name,
		Timestamp:   log.Timestamp,
		TxOrigin:    strings.ToLower(log.TxOrigin),
		GasLimit:    log.GasLimit,
		GasPrice:    log.GasPrice,
		Decoded:     decoded,
	}, nil
}

func (d *Decoder) decodeFactory(name string, log model.LogRecord) (interface{}, error) {
	event := d.factoryABI.Events[name]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, err
	}

	var indexed struct {
		Token0 common.Address
		Token1 common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected pool created values: %d", len(values))
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return nil, err
	}

	return &model.PoolCreatedData{
		Token0: lowerHex(indexed.Token0),
		Token1: lowerHex(indexed.Token1),
		Pool:   lowerHex(pool),
	}, nil
}

func (d *Decoder) decodePool(name string, log model.LogRecord) (interface{}, error) {
	event := d.poolABI.Events[name]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, err
	}
	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}

	switch name {
	case "Initialize":
		if len(values) != 2 {
			return nil, fmt.Errorf("unexpected initialize values: %d", len(values))
		}
		price, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		tickInt, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		tick, err := int24FromBig(tickInt)
		if err != nil {
			return nil, err
		}
		return &model.InitializeData{Price: price.String(), Tick: tick}, nil

	case "Swap":
		var indexed struct {
			Sender    common.Address
			Recipient common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if len(values) != 5 {
			return nil, fmt.Errorf("unexpected swap values: %d", len(values))
		}
		amount0, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		amount1, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		price, err := asBigInt(values[2])
		if err != nil {
			return nil, err
		}
		liquidity, err := asBigInt(values[3])
		if err != nil {
			return nil, err
		}
		tickInt, err := asBigInt(values[4])
		if err != nil {
			return nil, err
		}
		tick, err := int24FromBig(tickInt)
		if err != nil {
			return nil, err
		}
		return &model.SwapData{
			Sender:    lowerHex(indexed.Sender),
			Recipient: lowerHex(indexed.Recipient),
			Amount0:   amount0.String(),
			Amount1:   amount1.String(),
			Price:     price.String(),
			Liquidity: liquidity.String(),
			Tick:      tick,
		}, nil

	case "Mint":
		var indexed struct {
			Owner      common.Address
			BottomTick *big.Int
			TopTick    *big.Int
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if len(values) != 4 {
			return nil, fmt.Errorf("unexpected mint values: %d", len(values))
		}
		sender, err := asAddress(values[0])
		if err != nil {
			return nil, err
		}
		liquidity, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		amount0, err := asBigInt(values[2])
		if err != nil {
			return nil, err
		}
		amount1, err := asBigInt(values[3])
		if err != nil {
			return nil, err
		}
		bottom, err := int24FromBig(indexed.BottomTick)
		if err != nil {
			return nil, err
		}
		top, err := int24FromBig(indexed.TopTick)
		if err != nil {
			return nil, err
		}
		return &model.MintData{
			Sender:          lowerHex(sender),
			Owner:           lowerHex(indexed.Owner),
			BottomTick:      bottom,
			TopTick:         top,
			LiquidityAmount: liquidity.String(),
			Amount0:         amount0.String(),
			Amount1:         amount1.String(),
		}, nil

	case "Burn":
		var indexed struct {
			Owner      common.Address
			BottomTick *big.Int
			TopTick    *big.Int
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if len(values) != 3 {
			return nil, fmt.Errorf("unexpected burn values: %d", len(values))
		}
		liquidity, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		amount0, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		amount1, err := asBigInt(values[2])
		if err != nil {
			return nil, err
		}
		bottom, err := int24FromBig(indexed.BottomTick)
		if err != nil {
			return nil, err
		}
		top, err := int24FromBig(indexed.TopTick)
		if err != nil {
			return nil, err
		}
		return &model.BurnData{
			Owner:           lowerHex(indexed.Owner),
			BottomTick:      bottom,
			TopTick:         top,
			LiquidityAmount: liquidity.String(),
			Amount0:         amount0.String(),
			Amount1:         amount1.String(),
		}, nil

	case "Collect":
		var indexed struct {
			Owner      common.Address
			BottomTick *big.Int
			TopTick    *big.Int
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if len(values) != 3 {
			return nil, fmt.Errorf("unexpected collect values: %d", len(values))
		}
		recipient, err := asAddress(values[0])
		if err != nil {
			return nil, err
		}
		amount0, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		amount1, err := asBigInt(values[2])
		if err != nil {
			return nil, err
		}
		bottom, err := int24FromBig(indexed.BottomTick)
		if err != nil {
			return nil, err
		}
		top, err := int24FromBig(indexed.TopTick)
		if err != nil {
			return nil, err
		}
		return &model.CollectData{
			Owner:      lowerHex(indexed.Owner),
			Recipient:  lowerHex(recipient),
			BottomTick: bottom,
			TopTick:    top,
			Amount0:    amount0.String(),
			Amount1:    amount1.String(),
		}, nil

	case "Fee":
		if len(values) != 1 {
			return nil, fmt.Errorf("unexpected fee values: %d", len(values))
		}
		fee, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		return &model.FeeData{Fee: uint32(fee.Uint64())}, nil

	case "CommunityFee":
		if len(values) != 2 {
			return nil, fmt.Errorf("unexpected community fee values: %d", len(values))
		}
		fee0, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		fee1, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		return &model.CommunityFeeData{
			CommunityFee0: uint32(fee0.Uint64()),
			CommunityFee1: uint32(fee1.Uint64()),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported pool event: %s", name)
	}
}

func (d *Decoder) decodeManager(name string, log model.LogRecord) (interface{}, error) {
	event := d.managerABI.Events[name]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, err
	}
	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}

	switch name {
	case "IncreaseLiquidity", "DecreaseLiquidity":
		var indexed struct {
			TokenId *big.Int
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if len(values) != 3 {
			return nil, fmt.Errorf("unexpected liquidity values: %d", len(values))
		}
		liquidity, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		amount0, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		amount1, err := asBigInt(values[2])
		if err != nil {
			return nil, err
		}
		if name == "IncreaseLiquidity" {
			return &model.IncreaseLiquidityData{
				TokenID:   indexed.TokenId.String(),
				Liquidity: liquidity.String(),
				Amount0:   amount0.String(),
				Amount1:   amount1.String(),
			}, nil
		}
		return &model.DecreaseLiquidityData{
			TokenID:   indexed.TokenId.String(),
			Liquidity: liquidity.String(),
			Amount0:   amount0.String(),
			Amount1:   amount1.String(),
		}, nil

	case "Collect":
		var indexed struct {
			TokenId *big.Int
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if len(values) != 3 {
			return nil, fmt.Errorf("unexpected collect values: %d", len(values))
		}
		recipient, err := asAddress(values[0])
		if err != nil {
			return nil, err
		}
		amount0, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		amount1, err := asBigInt(values[2])
		if err != nil {
			return nil, err
		}
		return &model.NFTCollectData{
			TokenID:   indexed.TokenId.String(),
			Recipient: lowerHex(recipient),
			Amount0:   amount0.String(),
			Amount1:   amount1.String(),
		}, nil

	case "Transfer":
		var indexed struct {
			From    common.Address
			To      common.Address
			TokenId *big.Int
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return &model.NFTTransferData{
			From:    lowerHex(indexed.From),
			To:      lowerHex(indexed.To),
			TokenID: indexed.TokenId.String(),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported manager event: %s", name)
	}
}

func topicKey(hash common.Hash) string {
	return strings.ToLower(hash.Hex())
}

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func lowerAddress(addr string) string {
	return strings.ToLower(common.HexToAddress(addr).Hex())
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}
