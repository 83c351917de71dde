package indexer

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"algebraScope/internal/chain"
	"algebraScope/internal/model"
)

func buildLogRecord(chainID uint64, log types.Log, timestamp uint64, tx chain.TransactionDetail) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	record := model.LogRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      strings.ToLower(log.TxHash.Hex()),
		TxIndex:     uint64(log.TxIndex),
		LogIndex:    uint64(log.Index),
		Address:     strings.ToLower(log.Address.Hex()),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		Removed:     log.Removed,
		Timestamp:   timestamp,
		TxOrigin:    strings.ToLower(tx.From.Hex()),
	}
	if tx.GasLimit > 0 {
		record.GasLimit = new(big.Int).SetUint64(tx.GasLimit).String()
	}
	if tx.GasPrice != nil {
		record.GasPrice = tx.GasPrice.String()
	}
	return record
}
