package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"algebraScope/internal/chain"
	"algebraScope/internal/model"
	"algebraScope/internal/storage"
)

// Decoder turns raw log records into typed events.
type Decoder interface {
	CanDecode(topic0 string) bool
	Decode(log model.LogRecord) (*model.Event, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock         uint64
	ToBlock           uint64
	Addresses         []common.Address
	Topic0            []common.Hash
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams logs from the chain, writes them to storage and feeds
// decoded events into the processing pipeline.
type Runner struct {
	cfg        RunConfig
	chain      *chain.Client
	storage    storage.Storage
	decoder    Decoder
	processor  Processor
	logger     *zap.Logger
	seen       map[string]struct{}
	txDetails  map[string]chain.TransactionDetail
	checkpoint *Checkpoint
}

// NewRunner builds a Runner with its dependencies. The decoder and
// processor are optional; without them the runner only ingests raw logs.
func NewRunner(cfg RunConfig, chainClient *chain.Client, storageSink storage.Storage, decoder Decoder, processor Processor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		storage:    storageSink,
		decoder:    decoder,
		processor:  processor,
		logger:     logger,
		seen:       make(map[string]struct{}),
		txDetails:  make(map[string]chain.TransactionDetail),
		checkpoint: NewCheckpoint(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.cfg.Addresses) == 0 && len(r.cfg.Topic0) == 0 {
		return fmt.Errorf("at least one address or topic0 filter is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		block, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok && block >= from {
			from = block + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", block), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	spans, err := splitSpans(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, sp := range spans {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch logs", zap.Uint64("from", sp.from), zap.Uint64("to", sp.to))

		logs, err := r.filterLogsWithRetry(ctx, sp.from, sp.to)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		records := make([]model.LogRecord, 0, len(logs))
		for _, log := range logs {
			if log.Removed || r.isDuplicate(log) {
				continue
			}

			ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}
			tx, err := r.transactionDetailWithRetry(ctx, log)
			if err != nil {
				return fmt.Errorf("transaction detail %s: %w", log.TxHash.Hex(), err)
			}
			records = append(records, buildLogRecord(chainIDValue, log, ts, tx))
		}

		if err := r.storage.PutLogBatch(records); err != nil {
			return fmt.Errorf("store logs: %w", err)
		}

		if err := r.process(ctx, records); err != nil {
			return err
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(sp.to); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("logs", len(records)), zap.Uint64("from", sp.from), zap.Uint64("to", sp.to))
	}

	return nil
}

// process decodes a stored batch and applies it in log order.
func (r *Runner) process(ctx context.Context, records []model.LogRecord) error {
	if r.decoder == nil || r.processor == nil {
		return nil
	}
	for _, record := range records {
		if len(record.Topics) == 0 || !r.decoder.CanDecode(record.Topics[0]) {
			continue
		}
		event, err := r.decoder.Decode(record)
		if err != nil {
			r.logger.Warn("decode failed",
				zap.Uint64("block_number", record.BlockNumber),
				zap.String("tx_hash", record.TxHash),
				zap.Uint64("log_index", record.LogIndex),
				zap.Error(err))
			continue
		}
		if err := r.processor.Apply(ctx, event); err != nil {
			return fmt.Errorf("apply %s at %d:%d: %w", event.EventName, event.BlockNumber, event.LogIndex, err)
		}
	}
	return nil
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := withBackoff(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, r.cfg.Addresses, r.cfg.Topic0)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withBackoff(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) transactionDetailWithRetry(ctx context.Context, log types.Log) (chain.TransactionDetail, error) {
	key := log.TxHash.Hex()
	if detail, ok := r.txDetails[key]; ok {
		return detail, nil
	}

	var detail chain.TransactionDetail
	err := withBackoff(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		detail, err = r.chain.TransactionDetail(ctx, log.BlockHash, log.TxIndex)
		if err != nil {
			r.logger.Warn("transaction detail fetch failed", zap.Error(err), zap.String("tx_hash", key))
		}
		return err
	})
	if err != nil {
		return chain.TransactionDetail{}, err
	}

	r.txDetails[key] = detail
	return detail, nil
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
