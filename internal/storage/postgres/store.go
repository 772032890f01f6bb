package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"launchScope/internal/model"
)

//go:embed schema.sql
var schema string

// Store provides Postgres persistence for the monitor.
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

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// UpsertTransaction inserts or updates a transaction. Posted flags are never cleared.
func (s *Store) UpsertTransaction(ctx context.Context, rec model.TransactionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			hash, from_address, to_address, value, block_number, block_timestamp, kind, method,
			token_symbol, token_address, creator_address, posted_to_arena, posted_to_discord
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (hash)
		DO UPDATE SET
			kind = EXCLUDED.kind,
			method = EXCLUDED.method,
			token_symbol = COALESCE(EXCLUDED.token_symbol, transactions.token_symbol),
			token_address = COALESCE(EXCLUDED.token_address, transactions.token_address),
			creator_address = EXCLUDED.creator_address,
			posted_to_arena = transactions.posted_to_arena OR EXCLUDED.posted_to_arena,
			posted_to_discord = transactions.posted_to_discord OR EXCLUDED.posted_to_discord,
			updated_at = now()
	`,
		strings.ToLower(rec.Hash),
		strings.ToLower(rec.From),
		strings.ToLower(rec.To),
		numeric(rec.Value),
		int64(rec.BlockNumber),
		rec.BlockTimestamp,
		string(rec.Kind),
		rec.Method,
		nullable(rec.TokenSymbol),
		nullable(strings.ToLower(rec.TokenAddress)),
		strings.ToLower(rec.CreatorAddress),
		rec.Arena,
		rec.Discord,
	)
	return err
}

// UpsertToken inserts or updates a created token keyed by its creation transaction.
func (s *Store) UpsertToken(ctx context.Context, token model.Token) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tokens (
			tx_hash, address, name, symbol, total_supply, creator_address, block_number, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (tx_hash)
		DO UPDATE SET
			address = COALESCE(EXCLUDED.address, tokens.address),
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			total_supply = EXCLUDED.total_supply,
			updated_at = now()
	`,
		strings.ToLower(token.TxHash),
		nullable(strings.ToLower(token.Address)),
		token.Name,
		token.Symbol,
		numeric(token.TotalSupply),
		strings.ToLower(token.CreatorAddress),
		int64(token.BlockNumber),
		time.Unix(token.CreatedAt, 0).UTC(),
	)
	return err
}

// UpsertCreatorProfile stores the profile with its searchable fields split out.
func (s *Store) UpsertCreatorProfile(ctx context.Context, profile *model.CreatorProfile) error {
	if profile == nil {
		return fmt.Errorf("profile required")
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	var price *string
	if profile.TicketPrice != nil {
		v := profile.TicketPrice.String()
		price = &v
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO creator_profiles (
			address, handle, display_name, follower_count, ticket_price, is_champion, profile, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		ON CONFLICT (address)
		DO UPDATE SET
			handle = EXCLUDED.handle,
			display_name = EXCLUDED.display_name,
			follower_count = EXCLUDED.follower_count,
			ticket_price = EXCLUDED.ticket_price,
			is_champion = EXCLUDED.is_champion,
			profile = EXCLUDED.profile,
			updated_at = now()
	`,
		strings.ToLower(profile.Address),
		profile.Handle,
		profile.DisplayName,
		profile.FollowerCount,
		price,
		profile.IsChampion,
		payload,
	)
	return err
}

// GetCreatorByWallet returns the creator aggregate, or nil when unknown.
func (s *Store) GetCreatorByWallet(ctx context.Context, wallet string) (*model.Creator, error) {
	return loadCreator(ctx, s.pool, strings.ToLower(wallet), false)
}

// IncrementCreatorContracts records the contract inside a row-locking transaction.
func (s *Store) IncrementCreatorContracts(ctx context.Context, wallet string, ticker model.Ticker) (int, error) {
	if wallet == "" {
		return 0, fmt.Errorf("wallet required")
	}
	key := strings.ToLower(wallet)

	var count int
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		creator, err := loadCreator(ctx, tx, key, true)
		if err != nil {
			return err
		}
		if creator == nil {
			creator = &model.Creator{WalletAddress: key}
		}
		count = creator.ContractsCreated
		if !creator.RecordContract(ticker) {
			return nil
		}
		count = creator.ContractsCreated

		tickers, err := json.Marshal(creator.Tickers)
		if err != nil {
			return fmt.Errorf("marshal tickers: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO creators (
				wallet_address, contracts_created, tickers, first_seen_at, last_contract_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,now(),now())
			ON CONFLICT (wallet_address)
			DO UPDATE SET
				contracts_created = EXCLUDED.contracts_created,
				tickers = EXCLUDED.tickers,
				first_seen_at = EXCLUDED.first_seen_at,
				last_contract_at = EXCLUDED.last_contract_at,
				updated_at = now()
		`,
			key,
			creator.ContractsCreated,
			tickers,
			creator.FirstSeenAt,
			creator.LastContractAt,
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetTransactionPostFlags returns the posted flags of a stored transaction.
func (s *Store) GetTransactionPostFlags(ctx context.Context, hash string) (model.PostFlags, bool, error) {
	var flags model.PostFlags
	row := s.pool.QueryRow(ctx, `SELECT posted_to_arena, posted_to_discord FROM transactions WHERE hash=$1`, strings.ToLower(hash))
	if err := row.Scan(&flags.Arena, &flags.Discord); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PostFlags{}, false, nil
		}
		return model.PostFlags{}, false, err
	}
	return flags, true, nil
}

// SetTransactionPostFlag marks the transaction as posted to channel.
func (s *Store) SetTransactionPostFlag(ctx context.Context, hash string, channel model.Channel) error {
	column, err := flagColumn(channel)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE transactions SET `+column+` = TRUE, updated_at = now() WHERE hash=$1`,
		strings.ToLower(hash),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", hash)
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadCreator(ctx context.Context, q querier, wallet string, forUpdate bool) (*model.Creator, error) {
	query := `SELECT wallet_address, contracts_created, tickers, first_seen_at, last_contract_at FROM creators WHERE wallet_address=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		c            model.Creator
		tickers      []byte
		firstSeen    *time.Time
		lastContract *time.Time
	)
	err := q.QueryRow(ctx, query, wallet).Scan(&c.WalletAddress, &c.ContractsCreated, &tickers, &firstSeen, &lastContract)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(tickers) > 0 {
		if err := json.Unmarshal(tickers, &c.Tickers); err != nil {
			return nil, fmt.Errorf("decode tickers: %w", err)
		}
	}
	if firstSeen != nil {
		c.FirstSeenAt = *firstSeen
	}
	if lastContract != nil {
		c.LastContractAt = *lastContract
	}
	return &c, nil
}

func flagColumn(channel model.Channel) (string, error) {
	switch channel {
	case model.ChannelArena:
		return "posted_to_arena", nil
	case model.ChannelDiscord:
		return "posted_to_discord", nil
	default:
		return "", fmt.Errorf("unknown channel %q", channel)
	}
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// numeric keeps empty or non-decimal values out of NUMERIC columns.
func numeric(v string) *string {
	if v == "" {
		return nil
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return nil
		}
	}
	return &v
}
