package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Registers the "postgres" driver used by OpenSQLStore.
	_ "github.com/lib/pq"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

const schemaTransferStates = `
	CREATE TABLE IF NOT EXISTS transfer_states (
		transfer_key              varchar(255) not null,
		source_location_arn       text not null,
		destination_location_arn  text not null,
		task_arn                  text not null,
		task_execution_arn        text not null,

		PRIMARY KEY(transfer_key)
	);`

var _ Store = (*SQLStore)(nil)

// SQLStore keeps states in the transfer_states table of a SQL database, one row per transfer.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore connects to the database with driverName, "postgres" in production, and creates the
// schema if needed. The returned store owns the connection, call Close to release it.
func OpenSQLStore(ctx context.Context, driverName, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	store, err := NewSQLStore(ctx, db)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return store, nil
}

// NewSQLStore creates a SQLStore on an open database and creates the schema if needed.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schemaTransferStates); err != nil {
		return nil, fmt.Errorf("failed to create transfer_states schema: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Get(ctx context.Context, key string) (transfer.TransferState, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_location_arn, destination_location_arn, task_arn, task_execution_arn
		FROM transfer_states
		WHERE transfer_key = $1`, key)
	if err != nil {
		return transfer.TransferState{}, false, fmt.Errorf("failed to query state of %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return transfer.TransferState{}, false, rows.Err()
	}

	var state transfer.TransferState
	if err = rows.Scan(
		&state.SourceLocationARN, &state.DestinationLocationARN, &state.TaskARN, &state.TaskExecutionARN,
	); err != nil {
		return transfer.TransferState{}, false, fmt.Errorf("failed to scan state of %s: %w", key, err)
	}

	return state, true, rows.Err()
}

// Put replaces the row of key in a transaction.
func (s *SQLStore) Put(ctx context.Context, key string, state transfer.TransferState) (err error) {
	if key == "" {
		return ErrInvalidKey
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transfer_states WHERE transfer_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete state of %s: %w", key, err)
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO transfer_states
			(transfer_key, source_location_arn, destination_location_arn, task_arn, task_execution_arn)
		VALUES ($1, $2, $3, $4, $5)`,
		key, state.SourceLocationARN, state.DestinationLocationARN, state.TaskARN, state.TaskExecutionARN,
	); err != nil {
		return fmt.Errorf("failed to insert state of %s: %w", key, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state of %s: %w", key, err)
	}

	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT transfer_key, source_location_arn, destination_location_arn, task_arn, task_execution_arn
		FROM transfer_states`)
	if err != nil {
		return nil, fmt.Errorf("failed to query states: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err = rows.Scan(
			&e.Key, &e.State.SourceLocationARN, &e.State.DestinationLocationARN, &e.State.TaskARN, &e.State.TaskExecutionARN,
		); err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	sortEntries(entries)

	return entries, nil
}
