package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
)

type stubTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *stubTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *stubTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *stubTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *stubTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *stubTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type stubBeginner struct {
	tx       *stubTx
	opts     *sql.TxOptions
	beginErr error
	begins   int
}

func (b *stubBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	b.begins++
	b.opts = opts
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestDoSerializable_Commits(t *testing.T) {
	beginner := &stubBeginner{tx: &stubTx{}}
	mgr := NewTransactionManager(beginner)

	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, beginner.tx.committed)
	assert.False(t, beginner.tx.rolledBack)
	assert.Equal(t, sql.LevelSerializable, beginner.opts.Isolation)
}

func TestDoSerializable_RollsBackOnError(t *testing.T) {
	beginner := &stubBeginner{tx: &stubTx{}}
	mgr := NewTransactionManager(beginner)
	fnErr := errors.New("slot taken")

	err := mgr.DoSerializable(context.Background(), func(context.Context) error {
		return fnErr
	})

	assert.ErrorIs(t, err, fnErr)
	assert.True(t, beginner.tx.rolledBack)
	assert.False(t, beginner.tx.committed)
}

func TestDoSerializable_RollsBackOnPanic(t *testing.T) {
	beginner := &stubBeginner{tx: &stubTx{}}
	mgr := NewTransactionManager(beginner)

	assert.Panics(t, func() {
		_ = mgr.DoSerializable(context.Background(), func(context.Context) error {
			panic("boom")
		})
	})
	assert.True(t, beginner.tx.rolledBack)
}

func TestDoSerializable_JoinsOuterTransaction(t *testing.T) {
	beginner := &stubBeginner{tx: &stubTx{}}
	mgr := NewTransactionManager(beginner)

	err := mgr.Do(context.Background(), func(ctx context.Context) error {
		return mgr.DoSerializable(ctx, func(context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Equal(t, 1, beginner.begins)
}

func TestDoSerializable_CommitSerializationFailure(t *testing.T) {
	beginner := &stubBeginner{tx: &stubTx{commitErr: &pq.Error{Code: "40001"}}}
	mgr := NewTransactionManager(beginner)

	err := mgr.DoSerializable(context.Background(), func(context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrSerializationFailure)
}

func TestDoSerializable_BeginError(t *testing.T) {
	beginner := &stubBeginner{beginErr: errors.New("no connection")}
	mgr := NewTransactionManager(beginner)

	err := mgr.DoSerializable(context.Background(), func(context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrBeginTx)
}
