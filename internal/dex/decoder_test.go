package dex

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"algebraScope/internal/model"
)

func TestDecoderPoolCreated(t *testing.T) {
	factoryABI, err := FactoryABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	factory := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token0 := common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	token1 := common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	pool := common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")

	data, err := factoryABI.Events["Pool"].Inputs.NonIndexed().Pack(pool)
	if err != nil {
		t.Fatalf("pack pool created: %v", err)
	}

	logRecord := buildLogRecord(factory, factoryABI.Events["Pool"].ID, data, []common.Hash{
		topicFromAddress(token0),
		topicFromAddress(token1),
	})

	event, err := decoder.Decode(logRecord)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.EventName != model.EventPoolCreated {
		t.Fatalf("event name mismatch: %s", event.EventName)
	}

	created, ok := event.Decoded.(*model.PoolCreatedData)
	if !ok {
		t.Fatalf("decoded type mismatch")
	}
	if created.Token0 != "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Fatalf("token0 not lowercased: %s", created.Token0)
	}
	if created.Pool != "0xcccccccccccccccccccccccccccccccccccccccc" {
		t.Fatalf("pool mismatch: %s", created.Pool)
	}
	if event.Address != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("address not lowercased: %s", event.Address)
	}
}

func TestDecoderSwap(t *testing.T) {
	poolABI, err := PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")

	data, err := poolABI.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(-1000),
		big.NewInt(2000),
		big.NewInt(123456789),
		big.NewInt(987654321),
		big.NewInt(-15),
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}

	logRecord := buildLogRecord(pool, poolABI.Events["Swap"].ID, data, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(recipient),
	})

	event, err := decoder.Decode(logRecord)
	if err != nil {
		t.Fatalf("decode swap: %v", err)
	}

	swap, ok := event.Decoded.(*model.SwapData)
	if !ok {
		t.Fatalf("decoded type mismatch")
	}
	if swap.Amount0 != "-1000" || swap.Amount1 != "2000" {
		t.Fatalf("amounts mismatch: %+v", swap)
	}
	if swap.Price != "123456789" || swap.Liquidity != "987654321" {
		t.Fatalf("price state mismatch: %+v", swap)
	}
	if swap.Tick != -15 {
		t.Fatalf("tick mismatch: %d", swap.Tick)
	}
	if swap.Sender != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("sender mismatch: %s", swap.Sender)
	}
}

func TestDecoderMint(t *testing.T) {
	poolABI, err := PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x9999999999999999999999999999999999999999")
	sender := common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	owner := common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")

	data, err := poolABI.Events["Mint"].Inputs.NonIndexed().Pack(
		sender,
		big.NewInt(5000),
		big.NewInt(100),
		big.NewInt(200),
	)
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}

	logRecord := buildLogRecord(pool, poolABI.Events["Mint"].ID, data, []common.Hash{
		topicFromAddress(owner),
		topicFromInt24(-120),
		topicFromInt24(120),
	})

	event, err := decoder.Decode(logRecord)
	if err != nil {
		t.Fatalf("decode mint: %v", err)
	}

	mint, ok := event.Decoded.(*model.MintData)
	if !ok {
		t.Fatalf("decoded type mismatch")
	}
	if mint.BottomTick != -120 || mint.TopTick != 120 {
		t.Fatalf("tick mismatch: %+v", mint)
	}
	if mint.LiquidityAmount != "5000" {
		t.Fatalf("liquidity mismatch: %+v", mint)
	}
	if mint.Owner != "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Fatalf("owner mismatch: %s", mint.Owner)
	}
}

func TestDecoderCollectRoutesBySignature(t *testing.T) {
	poolABI, err := PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	managerABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	if poolABI.Events["Collect"].ID == managerABI.Events["Collect"].ID {
		t.Fatalf("collect signatures must differ")
	}

	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	manager := common.HexToAddress("0x4444444444444444444444444444444444444444")
	owner := common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	recipient := common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")

	poolData, err := poolABI.Events["Collect"].Inputs.NonIndexed().Pack(
		recipient,
		big.NewInt(900),
		big.NewInt(1000),
	)
	if err != nil {
		t.Fatalf("pack pool collect: %v", err)
	}
	poolLog := buildLogRecord(pool, poolABI.Events["Collect"].ID, poolData, []common.Hash{
		topicFromAddress(owner),
		topicFromInt24(-10),
		topicFromInt24(10),
	})

	poolEvent, err := decoder.Decode(poolLog)
	if err != nil {
		t.Fatalf("decode pool collect: %v", err)
	}
	if poolEvent.EventName != model.EventCollect {
		t.Fatalf("pool collect routed as %s", poolEvent.EventName)
	}
	collect, ok := poolEvent.Decoded.(*model.CollectData)
	if !ok {
		t.Fatalf("pool collect type mismatch")
	}
	if collect.Amount0 != "900" || collect.Amount1 != "1000" {
		t.Fatalf("pool collect amounts mismatch: %+v", collect)
	}

	managerData, err := managerABI.Events["Collect"].Inputs.NonIndexed().Pack(
		recipient,
		big.NewInt(70),
		big.NewInt(80),
	)
	if err != nil {
		t.Fatalf("pack manager collect: %v", err)
	}
	managerLog := buildLogRecord(manager, managerABI.Events["Collect"].ID, managerData, []common.Hash{
		topicFromBig(big.NewInt(42)),
	})

	managerEvent, err := decoder.Decode(managerLog)
	if err != nil {
		t.Fatalf("decode manager collect: %v", err)
	}
	if managerEvent.EventName != model.EventNFTCollect {
		t.Fatalf("manager collect routed as %s", managerEvent.EventName)
	}
	nftCollect, ok := managerEvent.Decoded.(*model.NFTCollectData)
	if !ok {
		t.Fatalf("manager collect type mismatch")
	}
	if nftCollect.TokenID != "42" {
		t.Fatalf("token id mismatch: %s", nftCollect.TokenID)
	}
	if nftCollect.Amount0 != "70" || nftCollect.Amount1 != "80" {
		t.Fatalf("manager collect amounts mismatch: %+v", nftCollect)
	}
}

func TestDecoderFeeEvents(t *testing.T) {
	poolABI, err := PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")

	feeData, err := poolABI.Events["Fee"].Inputs.NonIndexed().Pack(uint16(3000))
	if err != nil {
		t.Fatalf("pack fee: %v", err)
	}
	feeLog := buildLogRecord(pool, poolABI.Events["Fee"].ID, feeData, nil)

	feeEvent, err := decoder.Decode(feeLog)
	if err != nil {
		t.Fatalf("decode fee: %v", err)
	}
	fee, ok := feeEvent.Decoded.(*model.FeeData)
	if !ok {
		t.Fatalf("fee type mismatch")
	}
	if fee.Fee != 3000 {
		t.Fatalf("fee mismatch: %d", fee.Fee)
	}

	communityData, err := poolABI.Events["CommunityFee"].Inputs.NonIndexed().Pack(uint8(15), uint8(20))
	if err != nil {
		t.Fatalf("pack community fee: %v", err)
	}
	communityLog := buildLogRecord(pool, poolABI.Events["CommunityFee"].ID, communityData, nil)

	communityEvent, err := decoder.Decode(communityLog)
	if err != nil {
		t.Fatalf("decode community fee: %v", err)
	}
	community, ok := communityEvent.Decoded.(*model.CommunityFeeData)
	if !ok {
		t.Fatalf("community fee type mismatch")
	}
	if community.CommunityFee0 != 15 || community.CommunityFee1 != 20 {
		t.Fatalf("community fee mismatch: %+v", community)
	}
}

func TestDecoderNFTTransfer(t *testing.T) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	manager := common.HexToAddress("0x4444444444444444444444444444444444444444")
	from := common.HexToAddress("0x0000000000000000000000000000000000000000")
	to := common.HexToAddress("0x5555555555555555555555555555555555555555")

	logRecord := buildLogRecord(manager, managerABI.Events["Transfer"].ID, nil, []common.Hash{
		topicFromAddress(from),
		topicFromAddress(to),
		topicFromBig(big.NewInt(7)),
	})

	event, err := decoder.Decode(logRecord)
	if err != nil {
		t.Fatalf("decode transfer: %v", err)
	}

	transfer, ok := event.Decoded.(*model.NFTTransferData)
	if !ok {
		t.Fatalf("transfer type mismatch")
	}
	if transfer.TokenID != "7" {
		t.Fatalf("token id mismatch: %s", transfer.TokenID)
	}
	if transfer.To != "0x5555555555555555555555555555555555555555" {
		t.Fatalf("to mismatch: %s", transfer.To)
	}
}

func TestDecoderRejectsUnknownTopic(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	if decoder.CanDecode("") {
		t.Fatalf("empty topic must not decode")
	}

	logRecord := model.LogRecord{
		Address: "0x1111111111111111111111111111111111111111",
		Topics:  []string{"0x0000000000000000000000000000000000000000000000000000000000000001"},
	}
	if _, err := decoder.Decode(logRecord); err == nil {
		t.Fatalf("expected unsupported topic error")
	}
}

func buildLogRecord(contract common.Address, topic0 common.Hash, data []byte, indexed []common.Hash) model.LogRecord {
	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, topic0.Hex())
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     137,
		BlockNumber: 12345,
		BlockHash:   "0xabc",
		TxHash:      "0xDEF",
		LogIndex:    1,
		Address:     contract.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(data),
		Timestamp:   1700000000,
		TxOrigin:    "0x2222222222222222222222222222222222222222",
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func topicFromInt24(value int32) common.Hash {
	bigVal := big.NewInt(int64(value))
	if value < 0 {
		bigVal = new(big.Int).Add(bigVal, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return common.BigToHash(bigVal)
}

func topicFromBig(value *big.Int) common.Hash {
	return common.BigToHash(value)
}
