package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"algebraScope/internal/chain"
	"algebraScope/internal/config"
	"algebraScope/internal/dex"
	"algebraScope/internal/engine"
	"algebraScope/internal/indexer"
	"algebraScope/internal/intervals"
	"algebraScope/internal/positions"
	"algebraScope/internal/pricing"
	"algebraScope/internal/storage"
	"algebraScope/internal/storage/postgres"
	"algebraScope/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:          "algebrascope",
		Short:        "Algebra DEX state indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Index chain logs and apply them to the accounting state",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "RPC URL")
	runCmd.Flags().String("factory", "", "factory contract address")
	runCmd.Flags().String("position-manager", "", "position manager contract address")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for state flush")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	addPricingFlags(runCmd)

	root.AddCommand(runCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild state from a raw log archive",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("rpc", "", "RPC URL")
	replayCmd.Flags().String("factory", "", "factory contract address")
	replayCmd.Flags().String("position-manager", "", "position manager contract address")
	replayCmd.Flags().String("in", "", "input raw logs JSONL")
	replayCmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	replayCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	replayCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for state flush")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	addPricingFlags(replayCmd)

	root.AddCommand(replayCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPricingFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-token", "", "wrapped native token address")
	cmd.Flags().String("base-stable-pool", "", "native/stable pool used for USD pricing")
	cmd.Flags().StringSlice("whitelist-token", nil, "whitelisted token addresses (comma-separated)")
	cmd.Flags().StringSlice("stablecoin", nil, "stablecoin addresses (comma-separated)")
	cmd.Flags().String("minimum-base-locked", "0", "minimum native-token TVL for price discovery")
	cmd.Flags().StringSlice("reversed-pool", nil, "pools with reversed token order (comma-separated)")
}

// pipeline bundles the state that both commands build.
type pipeline struct {
	store  *store.Store
	router *indexer.Router
}

func newPipeline(cfg config.PricingConfig, factory, manager string, reader *dex.Reader, logger *zap.Logger) (*pipeline, error) {
	minimumLocked, err := decimal.NewFromString(cfg.MinimumBaseLocked)
	if err != nil {
		return nil, fmt.Errorf("parse minimum-base-locked: %w", err)
	}

	st := store.New()
	pricer := pricing.New(st, pricing.Config{
		BaseToken:         cfg.BaseToken,
		BaseStablePool:    cfg.BaseStablePool,
		WhitelistTokens:   cfg.WhitelistTokens,
		Stablecoins:       cfg.Stablecoins,
		MinimumBaseLocked: minimumLocked,
	})
	agg := intervals.New(st)
	eng := engine.New(st, pricer, agg, reader, engine.Config{ReversedPools: cfg.ReversedPools}, logger)
	ledger := positions.New(st, reader, logger)
	router := indexer.NewRouter(factory, manager, st, eng, ledger, logger)

	return &pipeline{store: st, router: router}, nil
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if _, err := indexer.ParseAddresses([]string{cfg.Factory, cfg.PositionManager}); err != nil {
		return err
	}
	if cfg.Factory == "" {
		return fmt.Errorf("factory address is required")
	}
	if cfg.PositionManager == "" {
		return fmt.Errorf("position manager address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	decoder, err := dex.NewDecoder()
	if err != nil {
		return err
	}
	reader := dex.NewReader(chainClient, cfg.Factory, cfg.PositionManager, logger)

	pipe, err := newPipeline(cfg.Pricing, cfg.Factory, cfg.PositionManager, reader, logger)
	if err != nil {
		return err
	}

	storageSink := storage.NewJsonlStorage(cfg.Out)

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		Topic0:            decoder.Topic0Filter(),
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, storageSink, decoder, pipe.router, logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("factory", cfg.Factory),
		zap.String("position_manager", cfg.PositionManager),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	if err := runner.Run(ctx); err != nil {
		return err
	}

	return flushToPostgres(ctx, cfg.PGDSN, pipe.store, logger)
}

func flushToPostgres(ctx context.Context, dsn string, st *store.Store, logger *zap.Logger) error {
	if dsn == "" {
		return nil
	}

	pgStore, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pgStore.Close()

	if err := pgStore.Flush(ctx, st); err != nil {
		return fmt.Errorf("flush state: %w", err)
	}

	logger.Info("state flushed",
		zap.Int("pools", st.Pools.Len()),
		zap.Int("tokens", st.Tokens.Len()),
		zap.Int("positions", st.Positions.Len()),
	)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
