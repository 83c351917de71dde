package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"algebraScope/internal/chain"
	"algebraScope/internal/engine"
	"algebraScope/internal/positions"
)

// Reader serves contract state over eth_call. It backs both the pool
// accounting engine and the position ledger.
type Reader struct {
	client  *chain.Client
	factory common.Address
	manager common.Address
	log     *zap.Logger

	mu        sync.RWMutex
	metaCache map[string]engine.TokenMetadata
}

// NewReader builds a Reader bound to the factory and position manager.
func NewReader(client *chain.Client, factory, manager string, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{
		client:    client,
		factory:   common.HexToAddress(factory),
		manager:   common.HexToAddress(manager),
		log:       log,
		metaCache: make(map[string]engine.TokenMetadata),
	}
}

func (r *Reader) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return r.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

// TokenMetadata fetches ERC20 metadata, with a bytes32 ABI fallback for
// legacy tokens. Results are cached for the process lifetime.
func (r *Reader) TokenMetadata(ctx context.Context, token string) (engine.TokenMetadata, error) {
	key := strings.ToLower(token)
	r.mu.RLock()
	meta, ok := r.metaCache[key]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	addr := common.HexToAddress(token)
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return engine.TokenMetadata{}, err
	}

	decimals, err := r.callUint8(ctx, addr, stringABI, "decimals")
	if err != nil {
		return engine.TokenMetadata{}, fmt.Errorf("decimals %s: %w", key, err)
	}
	meta = engine.TokenMetadata{Decimals: int32(decimals)}

	meta.Symbol, err = r.callString(ctx, addr, "symbol")
	if err != nil {
		r.log.Warn("token symbol unavailable", zap.String("token", key), zap.Error(err))
		meta.Symbol = "unknown"
	}
	meta.Name, err = r.callString(ctx, addr, "name")
	if err != nil {
		r.log.Warn("token name unavailable", zap.String("token", key), zap.Error(err))
		meta.Name = "unknown"
	}

	meta.TotalSupply, err = r.callBigInt(ctx, addr, stringABI, "totalSupply")
	if err != nil {
		r.log.Warn("token total supply unavailable", zap.String("token", key), zap.Error(err))
		meta.TotalSupply = new(big.Int)
	}

	r.mu.Lock()
	r.metaCache[key] = meta
	r.mu.Unlock()
	return meta, nil
}

// callString reads a string getter, retrying with the bytes32 ABI when
// the standard decoding fails.
func (r *Reader) callString(ctx context.Context, addr common.Address, method string) (string, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return "", err
	}
	data, err := stringABI.Pack(method)
	if err != nil {
		return "", err
	}
	out, err := r.call(ctx, addr, data)
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%s: empty response", method)
	}

	values, err := stringABI.Unpack(method, out)
	if err == nil && len(values) == 1 {
		if s, ok := values[0].(string); ok {
			return s, nil
		}
	}

	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return "", err
	}
	values, err = bytes32ABI.Unpack(method, out)
	if err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}
	if len(values) != 1 {
		return "", fmt.Errorf("%s: unexpected values: %d", method, len(values))
	}
	return bytes32ToString(values[0])
}

func (r *Reader) callUint8(ctx context.Context, addr common.Address, contractABI abi.ABI, method string) (uint8, error) {
	data, err := contractABI.Pack(method)
	if err != nil {
		return 0, err
	}
	out, err := r.call(ctx, addr, data)
	if err != nil {
		return 0, err
	}
	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("%s: unexpected values: %d", method, len(values))
	}
	return asUint8(values[0])
}

func (r *Reader) callBigInt(ctx context.Context, addr common.Address, contractABI abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := r.call(ctx, addr, data)
	if err != nil {
		return nil, err
	}
	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s: unexpected values: %d", method, len(values))
	}
	return asBigInt(values[0])
}

// TickFeeGrowthOutside reads the outer fee growth accumulators of a
// stored tick.
func (r *Reader) TickFeeGrowthOutside(ctx context.Context, pool string, tickIdx int32) (*big.Int, *big.Int, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, nil, err
	}
	data, err := poolABI.Pack("ticks", big.NewInt(int64(tickIdx)))
	if err != nil {
		return nil, nil, err
	}
	out, err := r.call(ctx, common.HexToAddress(pool), data)
	if err != nil {
		return nil, nil, err
	}
	values, err := poolABI.Unpack("ticks", out)
	if err != nil {
		return nil, nil, err
	}
	if len(values) != 8 {
		return nil, nil, fmt.Errorf("ticks: unexpected values: %d", len(values))
	}
	fg0, err := asBigInt(values[2])
	if err != nil {
		return nil, nil, err
	}
	fg1, err := asBigInt(values[3])
	if err != nil {
		return nil, nil, err
	}
	return fg0, fg1, nil
}

// PoolFeeGrowthGlobal reads the pool-wide fee growth accumulators.
func (r *Reader) PoolFeeGrowthGlobal(ctx context.Context, pool string) (*big.Int, *big.Int, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, nil, err
	}
	addr := common.HexToAddress(pool)
	fg0, err := r.callBigInt(ctx, addr, poolABI, "totalFeeGrowth0Token")
	if err != nil {
		return nil, nil, err
	}
	fg1, err := r.callBigInt(ctx, addr, poolABI, "totalFeeGrowth1Token")
	if err != nil {
		return nil, nil, err
	}
	return fg0, fg1, nil
}

// PositionState reads an NFT position from the position manager. A
// reverted call means the position was burned in the minting block and
// maps to ErrPositionReverted.
func (r *Reader) PositionState(ctx context.Context, tokenID string) (positions.PositionState, error) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		return positions.PositionState{}, err
	}
	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return positions.PositionState{}, fmt.Errorf("invalid token id: %s", tokenID)
	}
	data, err := managerABI.Pack("positions", id)
	if err != nil {
		return positions.PositionState{}, err
	}
	out, err := r.call(ctx, r.manager, data)
	if err != nil {
		if strings.Contains(err.Error(), "execution reverted") {
			return positions.PositionState{}, positions.ErrPositionReverted
		}
		return positions.PositionState{}, err
	}
	if len(out) == 0 {
		return positions.PositionState{}, positions.ErrPositionReverted
	}
	values, err := managerABI.Unpack("positions", out)
	if err != nil {
		return positions.PositionState{}, err
	}
	if len(values) != 11 {
		return positions.PositionState{}, fmt.Errorf("positions: unexpected values: %d", len(values))
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return positions.PositionState{}, err
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return positions.PositionState{}, err
	}
	lowerInt, err := asBigInt(values[4])
	if err != nil {
		return positions.PositionState{}, err
	}
	upperInt, err := asBigInt(values[5])
	if err != nil {
		return positions.PositionState{}, err
	}
	tickLower, err := int24FromBig(lowerInt)
	if err != nil {
		return positions.PositionState{}, err
	}
	tickUpper, err := int24FromBig(upperInt)
	if err != nil {
		return positions.PositionState{}, err
	}
	fg0, err := asBigInt(values[7])
	if err != nil {
		return positions.PositionState{}, err
	}
	fg1, err := asBigInt(values[8])
	if err != nil {
		return positions.PositionState{}, err
	}

	return positions.PositionState{
		Token0:           lowerHex(token0),
		Token1:           lowerHex(token1),
		TickLower:        tickLower,
		TickUpper:        tickUpper,
		FeeGrowthInside0: fg0,
		FeeGrowthInside1: fg1,
	}, nil
}

// PoolByTokenPair resolves the pool address for a token pair via the
// factory.
func (r *Reader) PoolByTokenPair(ctx context.Context, token0, token1 string) (string, error) {
	factoryABI, err := FactoryABI()
	if err != nil {
		return "", err
	}
	data, err := factoryABI.Pack("poolByPair", common.HexToAddress(token0), common.HexToAddress(token1))
	if err != nil {
		return "", err
	}
	out, err := r.call(ctx, r.factory, data)
	if err != nil {
		return "", err
	}
	values, err := factoryABI.Unpack("poolByPair", out)
	if err != nil {
		return "", err
	}
	if len(values) != 1 {
		return "", fmt.Errorf("poolByPair: unexpected values: %d", len(values))
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return "", err
	}
	return lowerHex(pool), nil
}
