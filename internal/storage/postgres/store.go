package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mintwatch/internal/model"
)

// Store archives dispatched notifications in Postgres.
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

// PutNotifications inserts notifications, ignoring transactions already
// archived in an earlier run.
func (s *Store) PutNotifications(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(`
			INSERT INTO notifications (
				kind, network, symbol, token, from_address, to_address,
				amount, raw_amount, tx_hash, block_number, sent_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
			ON CONFLICT (tx_hash) DO NOTHING
		`,
			n.Kind,
			n.Network,
			n.Symbol,
			n.Token,
			n.From,
			n.To,
			n.Amount,
			n.RawAmount,
			n.TxHash,
			int64(n.BlockNumber),
			n.SentAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range notifications {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
