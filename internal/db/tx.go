package db

import (
	"context"
	"database/sql"
	"errors"
)

// Tx is a Queries bound to a transaction.
type Tx struct {
	*Queries
	tx *sql.Tx
}

func (t Tx) Commit() error {
	return t.tx.Commit()
}

// Discard rolls the transaction back, it does nothing once the transaction was committed.
func (t Tx) Discard() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// MakeTx starts a transaction, stores take one so tests can substitute it.
type MakeTx = func(ctx context.Context) (Tx, error)

func NewMakeTx(database *sql.DB) MakeTx {
	return func(ctx context.Context) (Tx, error) {
		sqltx, err := database.BeginTx(ctx, nil)
		if err != nil {
			return Tx{}, err
		}
		return Tx{Queries: New(sqltx), tx: sqltx}, nil
	}
}
