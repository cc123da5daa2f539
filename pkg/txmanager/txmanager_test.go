package txmanager

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TMS-BookingService/pkg/dbmetrics"
)

// fakeTx транзакция с управляемым исходом коммита
type fakeTx struct {
	commitErr error
	commits   int
	rollbacks int
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rollbacks++
	return nil
}

// fakeTxBeginner выдает подготовленные транзакции по очереди
type fakeTxBeginner struct {
	txs    []*fakeTx
	begins int
}

func (b *fakeTxBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := b.txs[b.begins]
	b.begins++
	return tx, nil
}

func serializationFailure() *pq.Error {
	return &pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"}
}

func TestIsSerializationFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"голая ошибка pq 40001", serializationFailure(), true},
		{"другой код pq", &pq.Error{Code: "23505"}, false},
		{"не pq ошибка", assert.AnError, false},
		{"nil", nil, false},
		{
			// Обертка пути коммита в run()
			"ошибка обернута менеджером транзакций",
			fmt.Errorf("%w: commit: %w", ErrTransaction, serializationFailure()),
			true,
		},
		{
			// Обертка репозитория поверх обертки usecase - полный production путь
			"ошибка обернута репозиторием и usecase",
			fmt.Errorf("internal error: failed to get bookings: %w",
				fmt.Errorf("repository error: GetActiveByTutorAndDate - execute query: %w", serializationFailure())),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSerializationFailure(tt.err))
		})
	}
}

func TestDoSerializable_RetriesOnCommitConflict(t *testing.T) {
	// Первые два коммита падают с 40001, третий проходит
	beginner := &fakeTxBeginner{txs: []*fakeTx{
		{commitErr: serializationFailure()},
		{commitErr: serializationFailure()},
		{},
	}}
	m := NewTransactionManager(beginner)

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, beginner.begins)
	assert.Equal(t, 3, calls)
	for _, tx := range beginner.txs {
		assert.Equal(t, 1, tx.commits)
	}
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	beginner := &fakeTxBeginner{txs: []*fakeTx{
		{commitErr: serializationFailure()},
		{commitErr: serializationFailure()},
		{commitErr: serializationFailure()},
	}}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.Error(t, err)
	assert.True(t, IsSerializationFailure(err))
	assert.Equal(t, maxSerializableRetries, beginner.begins)
}

func TestDoSerializable_NoRetryOnOrdinaryError(t *testing.T) {
	beginner := &fakeTxBeginner{txs: []*fakeTx{{}}}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, beginner.begins)
	assert.Equal(t, 1, beginner.txs[0].rollbacks)
}
