// Package postgres persists tabulator.Result values. It is grounded on
// internal/backends/postgres/postgres.go's pool/embed/migrate/wait
// shape, adapted from storing individual vote objects behind a poll
// row to storing a contest's round-by-round outcomes behind a contest
// row.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kouellette/rcv/storage"
	"github.com/kouellette/rcv/tabulator"
)

//go:embed schema.sql
var schema string

var _ storage.Backend = (*Backend)(nil)

// Backend holds a connection pool. Must be built with New.
type Backend struct {
	pool *pgxpool.Pool
}

// New creates a lazily-connecting pool against url.
func New(ctx context.Context, url string) (*Backend, error) {
	conf, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid connection url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return &Backend{pool: pool}, nil
}

// Wait blocks until a connection to postgres can be established.
func (b *Backend) Wait(ctx context.Context, log func(format string, a ...interface{})) {
	for ctx.Err() == nil {
		if err := b.pool.Ping(ctx); err == nil {
			return
		} else if log != nil {
			log("waiting for postgres: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// Migrate creates the database schema.
func (b *Backend) Migrate(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Close closes all connections, blocking until they are closed.
func (b *Backend) Close() {
	b.pool.Close()
}

// SaveResult persists a completed tabulation's contest row and every
// round outcome, replacing any rows already recorded for contestID.
func (b *Backend) SaveResult(ctx context.Context, contestID string, result tabulator.Result) error {
	return b.pool.BeginTxFunc(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		var contestRowID int
		sql := `
		INSERT INTO contest (contest_id, number_of_winners, elected_in_order, finalized)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (contest_id) DO UPDATE
			SET number_of_winners = EXCLUDED.number_of_winners,
			    elected_in_order = EXCLUDED.elected_in_order,
			    finalized = true
		RETURNING id;
		`
		if err := tx.QueryRow(ctx, sql, contestID, result.NumberOfWinners, result.ElectedInOrder).Scan(&contestRowID); err != nil {
			return fmt.Errorf("upserting contest: %w", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM round WHERE contest_id = $1", contestRowID); err != nil {
			return fmt.Errorf("clearing prior rounds: %w", err)
		}

		for _, round := range result.Rounds {
			outcome, err := json.Marshal(round)
			if err != nil {
				return fmt.Errorf("encoding round %d: %w", round.Round, err)
			}
			sql = "INSERT INTO round (contest_id, round_number, outcome) VALUES ($1, $2, $3);"
			if _, err := tx.Exec(ctx, sql, contestRowID, round.Round, outcome); err != nil {
				return fmt.Errorf("inserting round %d: %w", round.Round, err)
			}
		}
		return nil
	})
}

// LoadResult reconstructs a previously saved Result.
func (b *Backend) LoadResult(ctx context.Context, contestID string) (tabulator.Result, error) {
	var result tabulator.Result
	err := b.pool.BeginTxFunc(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		var contestRowID int
		sql := "SELECT id, number_of_winners, elected_in_order FROM contest WHERE contest_id = $1;"
		if err := tx.QueryRow(ctx, sql, contestID).Scan(&contestRowID, &result.NumberOfWinners, &result.ElectedInOrder); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return doesNotExistError{fmt.Errorf("contest %q does not exist", contestID)}
			}
			return fmt.Errorf("fetching contest: %w", err)
		}

		rows, err := tx.Query(ctx, "SELECT outcome FROM round WHERE contest_id = $1 ORDER BY round_number;", contestRowID)
		if err != nil {
			return fmt.Errorf("fetching rounds: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return fmt.Errorf("scanning round: %w", err)
			}
			var outcome tabulator.RoundOutcome
			if err := json.Unmarshal(raw, &outcome); err != nil {
				return fmt.Errorf("decoding round: %w", err)
			}
			result.Rounds = append(result.Rounds, outcome)
		}
		return rows.Err()
	})
	if err != nil {
		return tabulator.Result{}, err
	}
	if len(result.Rounds) > 0 {
		result.FinalTallies = result.Rounds[len(result.Rounds)-1].Tally
	}
	return result, nil
}

// doesNotExistError marks a lookup failure for errors.As, mirroring
// the teacher's own marker-method error idiom.
type doesNotExistError struct{ error }

func (doesNotExistError) DoesNotExist() {}
