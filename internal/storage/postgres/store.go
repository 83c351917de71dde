package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"algebraScope/internal/entity"
	"algebraScope/internal/store"
)

// Store provides Postgres persistence for indexed state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func tickValue(tick *int32) interface{} {
	if tick == nil {
		return nil
	}
	return int64(*tick)
}

// UpsertPools inserts or updates pool state.
func (s *Store) UpsertPools(ctx context.Context, pools []*entity.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pool_address, created_at_ts, created_at_block, token0, token1, reversed_order,
				fee, community_fee0, community_fee1, liquidity, sqrt_price, tick,
				token0_price, token1_price, volume0, volume1, volume_usd, untracked_volume_usd,
				fees_usd, fees_token0, fees_token1, tx_count,
				collected_fees0, collected_fees1, collected_fees_usd,
				tvl0, tvl1, tvl_matic, tvl_usd, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,now())
			ON CONFLICT (pool_address)
			DO UPDATE SET
				liquidity = EXCLUDED.liquidity,
				sqrt_price = EXCLUDED.sqrt_price,
				tick = EXCLUDED.tick,
				token0_price = EXCLUDED.token0_price,
				token1_price = EXCLUDED.token1_price,
				volume0 = EXCLUDED.volume0,
				volume1 = EXCLUDED.volume1,
				volume_usd = EXCLUDED.volume_usd,
				untracked_volume_usd = EXCLUDED.untracked_volume_usd,
				fees_usd = EXCLUDED.fees_usd,
				fees_token0 = EXCLUDED.fees_token0,
				fees_token1 = EXCLUDED.fees_token1,
				tx_count = EXCLUDED.tx_count,
				collected_fees0 = EXCLUDED.collected_fees0,
				collected_fees1 = EXCLUDED.collected_fees1,
				collected_fees_usd = EXCLUDED.collected_fees_usd,
				fee = EXCLUDED.fee,
				community_fee0 = EXCLUDED.community_fee0,
				community_fee1 = EXCLUDED.community_fee1,
				tvl0 = EXCLUDED.tvl0,
				tvl1 = EXCLUDED.tvl1,
				tvl_matic = EXCLUDED.tvl_matic,
				tvl_usd = EXCLUDED.tvl_usd,
				updated_at = now()
		`,
			pool.ID,
			pool.CreatedAt,
			pool.CreatedAtBlock,
			pool.Token0,
			pool.Token1,
			pool.ReversedOrder,
			pool.Fee,
			pool.CommunityFee0,
			pool.CommunityFee1,
			bigString(pool.Liquidity),
			bigString(pool.SqrtPrice),
			tickValue(pool.Tick),
			pool.Token0Price.String(),
			pool.Token1Price.String(),
			pool.Volume0.String(),
			pool.Volume1.String(),
			pool.VolumeUSD.String(),
			pool.UntrackedVolume.String(),
			pool.FeesUSD.String(),
			pool.FeesToken0.String(),
			pool.FeesToken1.String(),
			pool.TxCount,
			pool.CollectedFees0.String(),
			pool.CollectedFees1.String(),
			pool.CollectedFeesUSD.String(),
			pool.TotalValueLocked0.String(),
			pool.TotalValueLocked1.String(),
			pool.TotalValueLockedMatic.String(),
			pool.TotalValueLockedUSD.String(),
		)
	}
	return s.sendBatch(ctx, batch, len(pools))
}

// UpsertTokens inserts or updates token state.
func (s *Store) UpsertTokens(ctx context.Context, tokens []*entity.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, token := range tokens {
		batch.Queue(`
			INSERT INTO tokens (
				token_address, symbol, name, decimals, total_supply,
				volume, volume_usd, untracked_volume_usd, fees_usd,
				tx_count, pool_count, tvl, tvl_usd, derived_matic, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
			ON CONFLICT (token_address)
			DO UPDATE SET
				volume = EXCLUDED.volume,
				volume_usd = EXCLUDED.volume_usd,
				untracked_volume_usd = EXCLUDED.untracked_volume_usd,
				fees_usd = EXCLUDED.fees_usd,
				tx_count = EXCLUDED.tx_count,
				pool_count = EXCLUDED.pool_count,
				tvl = EXCLUDED.tvl,
				tvl_usd = EXCLUDED.tvl_usd,
				derived_matic = EXCLUDED.derived_matic,
				updated_at = now()
		`,
			token.ID,
			token.Symbol,
			token.Name,
			token.Decimals,
			bigString(token.TotalSupply),
			token.Volume.String(),
			token.VolumeUSD.String(),
			token.UntrackedVolume.String(),
			token.FeesUSD.String(),
			token.TxCount,
			token.PoolCount,
			token.TotalValueLocked.String(),
			token.TotalValueLockedUSD.String(),
			token.DerivedMatic.String(),
		)
	}
	return s.sendBatch(ctx, batch, len(tokens))
}

// UpsertFactory inserts or updates the protocol-wide totals row.
func (s *Store) UpsertFactory(ctx context.Context, factory *entity.Factory) error {
	if factory == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO factory (
			id, pool_count, tx_count, total_volume_usd, total_volume_matic,
			untracked_volume_usd, total_fees_usd, total_fees_matic,
			tvl_usd, tvl_matic, owner, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
		ON CONFLICT (id)
		DO UPDATE SET
			pool_count = EXCLUDED.pool_count,
			tx_count = EXCLUDED.tx_count,
			total_volume_usd = EXCLUDED.total_volume_usd,
			total_volume_matic = EXCLUDED.total_volume_matic,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			total_fees_usd = EXCLUDED.total_fees_usd,
			total_fees_matic = EXCLUDED.total_fees_matic,
			tvl_usd = EXCLUDED.tvl_usd,
			tvl_matic = EXCLUDED.tvl_matic,
			owner = EXCLUDED.owner,
			updated_at = now()
	`,
		factory.ID,
		factory.PoolCount,
		factory.TxCount,
		factory.TotalVolumeUSD.String(),
		factory.TotalVolumeMatic.String(),
		factory.UntrackedVolume.String(),
		factory.TotalFeesUSD.String(),
		factory.TotalFeesMatic.String(),
		factory.TotalValueUSD.String(),
		factory.TotalValueMatic.String(),
		factory.Owner,
	)
	return err
}

// UpsertSwaps inserts swap records. Swaps are immutable; conflicts are
// ignored so replays stay idempotent.
func (s *Store) UpsertSwaps(ctx context.Context, swaps []*entity.Swap) error {
	if len(swaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, swap := range swaps {
		batch.Queue(`
			INSERT INTO swaps (
				id, tx_hash, ts, pool_address, token0, token1, sender, recipient, origin,
				amount0, amount1, amount_usd, sqrt_price, tick, log_index, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now())
			ON CONFLICT (id) DO NOTHING
		`,
			swap.ID,
			swap.Transaction,
			swap.Timestamp,
			swap.Pool,
			swap.Token0,
			swap.Token1,
			swap.Sender,
			swap.Recipient,
			swap.Origin,
			swap.Amount0.String(),
			swap.Amount1.String(),
			swap.AmountUSD.String(),
			bigString(swap.SqrtPriceX96),
			int64(swap.Tick),
			swap.LogIndex,
		)
	}
	return s.sendBatch(ctx, batch, len(swaps))
}

// UpsertPoolDayData inserts or updates daily pool rollups.
func (s *Store) UpsertPoolDayData(ctx context.Context, rows []*entity.PoolDayData) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO pool_day_data (
				id, date, pool_address, liquidity, sqrt_price, token0_price, token1_price, tick,
				tvl_usd, volume0, volume1, volume_usd, fees_usd, token0_fees, token1_fees, tx_count,
				open, high, low, close, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,now())
			ON CONFLICT (id)
			DO UPDATE SET
				liquidity = EXCLUDED.liquidity,
				sqrt_price = EXCLUDED.sqrt_price,
				token0_price = EXCLUDED.token0_price,
				token1_price = EXCLUDED.token1_price,
				tick = EXCLUDED.tick,
				tvl_usd = EXCLUDED.tvl_usd,
				volume0 = EXCLUDED.volume0,
				volume1 = EXCLUDED.volume1,
				volume_usd = EXCLUDED.volume_usd,
				fees_usd = EXCLUDED.fees_usd,
				token0_fees = EXCLUDED.token0_fees,
				token1_fees = EXCLUDED.token1_fees,
				tx_count = EXCLUDED.tx_count,
				high = EXCLUDED.high,
				low = EXCLUDED.low,
				close = EXCLUDED.close,
				updated_at = now()
		`,
			row.ID,
			row.Date,
			row.Pool,
			bigString(row.Liquidity),
			bigString(row.SqrtPrice),
			row.Token0Price.String(),
			row.Token1Price.String(),
			tickValue(row.Tick),
			row.TVLUSD.String(),
			row.Volume0.String(),
			row.Volume1.String(),
			row.VolumeUSD.String(),
			row.FeesUSD.String(),
			row.Token0Fees.String(),
			row.Token1Fees.String(),
			row.TxCount,
			row.Open.String(),
			row.High.String(),
			row.Low.String(),
			row.Close.String(),
		)
	}
	return s.sendBatch(ctx, batch, len(rows))
}

// UpsertTokenDayData inserts or updates daily token rollups.
func (s *Store) UpsertTokenDayData(ctx context.Context, rows []*entity.TokenDayData) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO token_day_data (
				id, date, token_address, volume, volume_usd, untracked_volume_usd, fees_usd,
				tvl, tvl_usd, price_usd, open, high, low, close, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
			ON CONFLICT (id)
			DO UPDATE SET
				volume = EXCLUDED.volume,
				volume_usd = EXCLUDED.volume_usd,
				untracked_volume_usd = EXCLUDED.untracked_volume_usd,
				fees_usd = EXCLUDED.fees_usd,
				tvl = EXCLUDED.tvl,
				tvl_usd = EXCLUDED.tvl_usd,
				price_usd = EXCLUDED.price_usd,
				high = EXCLUDED.high,
				low = EXCLUDED.low,
				close = EXCLUDED.close,
				updated_at = now()
		`,
			row.ID,
			row.Date,
			row.Token,
			row.Volume.String(),
			row.VolumeUSD.String(),
			row.UntrackedVolume.String(),
			row.FeesUSD.String(),
			row.TotalValueLocked.String(),
			row.TotalValueLockedUSD.String(),
			row.PriceUSD.String(),
			row.Open.String(),
			row.High.String(),
			row.Low.String(),
			row.Close.String(),
		)
	}
	return s.sendBatch(ctx, batch, len(rows))
}

// UpsertPositions inserts or updates NFT position state.
func (s *Store) UpsertPositions(ctx context.Context, positions []*entity.Position) error {
	if len(positions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, position := range positions {
		batch.Queue(`
			INSERT INTO positions (
				token_id, owner, pool_address, token0, token1, tick_lower, tick_upper,
				liquidity, deposited_token0, deposited_token1, withdrawn_token0, withdrawn_token1,
				collected_fees_token0, collected_fees_token1, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
			ON CONFLICT (token_id)
			DO UPDATE SET
				owner = EXCLUDED.owner,
				liquidity = EXCLUDED.liquidity,
				deposited_token0 = EXCLUDED.deposited_token0,
				deposited_token1 = EXCLUDED.deposited_token1,
				withdrawn_token0 = EXCLUDED.withdrawn_token0,
				withdrawn_token1 = EXCLUDED.withdrawn_token1,
				collected_fees_token0 = EXCLUDED.collected_fees_token0,
				collected_fees_token1 = EXCLUDED.collected_fees_token1,
				updated_at = now()
		`,
			position.ID,
			position.Owner,
			position.Pool,
			position.Token0,
			position.Token1,
			position.TickLower,
			position.TickUpper,
			bigString(position.Liquidity),
			position.DepositedToken0.String(),
			position.DepositedToken1.String(),
			position.WithdrawnToken0.String(),
			position.WithdrawnToken1.String(),
			position.CollectedFeesToken0.String(),
			position.CollectedFeesToken1.String(),
		)
	}
	return s.sendBatch(ctx, batch, len(positions))
}

// Flush writes the full in-memory state to Postgres.
func (s *Store) Flush(ctx context.Context, st *store.Store) error {
	if factory := st.Factories.Get(entity.FactoryID); factory != nil {
		if err := s.UpsertFactory(ctx, factory); err != nil {
			return fmt.Errorf("upsert factory: %w", err)
		}
	}

	var pools []*entity.Pool
	st.Pools.Range(func(_ string, pool *entity.Pool) bool {
		pools = append(pools, pool)
		return true
	})
	if err := s.UpsertPools(ctx, pools); err != nil {
		return fmt.Errorf("upsert pools: %w", err)
	}

	var tokens []*entity.Token
	st.Tokens.Range(func(_ string, token *entity.Token) bool {
		tokens = append(tokens, token)
		return true
	})
	if err := s.UpsertTokens(ctx, tokens); err != nil {
		return fmt.Errorf("upsert tokens: %w", err)
	}

	var poolDays []*entity.PoolDayData
	st.PoolDayDatas.Range(func(_ string, row *entity.PoolDayData) bool {
		poolDays = append(poolDays, row)
		return true
	})
	if err := s.UpsertPoolDayData(ctx, poolDays); err != nil {
		return fmt.Errorf("upsert pool day data: %w", err)
	}

	var tokenDays []*entity.TokenDayData
	st.TokenDayDatas.Range(func(_ string, row *entity.TokenDayData) bool {
		tokenDays = append(tokenDays, row)
		return true
	})
	if err := s.UpsertTokenDayData(ctx, tokenDays); err != nil {
		return fmt.Errorf("upsert token day data: %w", err)
	}

	var swaps []*entity.Swap
	st.Swaps.Range(func(_ string, swap *entity.Swap) bool {
		swaps = append(swaps, swap)
		return true
	})
	if err := s.UpsertSwaps(ctx, swaps); err != nil {
		return fmt.Errorf("upsert swaps: %w", err)
	}

	var positions []*entity.Position
	st.Positions.Range(func(_ string, position *entity.Position) bool {
		positions = append(positions, position)
		return true
	})
	if err := s.UpsertPositions(ctx, positions); err != nil {
		return fmt.Errorf("upsert positions: %w", err)
	}

	return nil
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, queued int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, block)
	return err
}
