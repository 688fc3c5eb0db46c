package store

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
)

type contextKey int

const transactionKey contextKey = iota

// Tx is an open database transaction carried through a context so every
// store touched inside a merge shares the same transaction.
type Tx struct {
	tx  *gorm.DB
	log *slog.Logger
}

// Commit commits the transaction carried in ctx, if any.
func Commit(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}

	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Commit()
}

// Rollback rolls back the transaction carried in ctx, if any.
func Rollback(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}

	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Rollback()
}

// FromContext returns the transaction handle in ctx, or nil.
func FromContext(ctx context.Context) *gorm.DB {
	if tx, found := ctx.Value(transactionKey).(*Tx); found && tx != nil {
		if dbTx, err := tx.Db(); err == nil {
			return dbTx
		}
	}
	return nil
}

func newTransactionContext(ctx context.Context, db *gorm.DB, log *slog.Logger) (context.Context, error) {
	// Nested calls reuse the outer transaction.
	if _, found := ctx.Value(transactionKey).(*Tx); found {
		return ctx, nil
	}

	conn := db.Session(&gorm.Session{Context: ctx})

	tx, err := newTransaction(conn, log)
	if err != nil {
		return ctx, err
	}

	return context.WithValue(ctx, transactionKey, tx), nil
}

func newTransaction(db *gorm.DB, log *slog.Logger) (*Tx, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Tx{tx: tx, log: log}, nil
}

// Db returns the underlying gorm handle of an open transaction.
func (t *Tx) Db() (*gorm.DB, error) {
	if t.tx != nil {
		return t.tx, nil
	}
	return nil, errors.New("transaction hasn't started yet")
}

// Commit commits the transaction. Safe to call once.
func (t *Tx) Commit() error {
	if t.tx == nil {
		return errors.New("transaction hasn't started yet")
	}
	if err := t.tx.Commit().Error; err != nil {
		t.log.Error("failed to commit transaction", "error", err)
		return err
	}
	t.tx = nil // in case we call commit twice
	return nil
}

// Rollback aborts the transaction. Safe to call once.
func (t *Tx) Rollback() error {
	if t.tx == nil {
		return errors.New("transaction hasn't started yet")
	}
	if err := t.tx.Rollback().Error; err != nil {
		t.log.Error("failed to rollback transaction", "error", err)
		return err
	}
	t.tx = nil
	return nil
}
