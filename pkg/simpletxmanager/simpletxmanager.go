package simpletxmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m04kA/TMS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TMS-BookingService/pkg/txmanager"
)

// Количество повторов сериализуемой транзакции при serialization_failure
const maxSerializableRetries = 3

// ErrTransaction возвращается при ошибках управления транзакцией
var ErrTransaction = errors.New("simpletxmanager: transaction error")

// TransactionManager менеджер транзакций над *sql.DB без сбора метрик
// Используется, когда метрики выключены в конфигурации
type TransactionManager struct {
	db *sql.DB
}

// NewTransactionManager создает новый менеджер транзакций
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции
// При serialization_failure транзакция повторяется до maxSerializableRetries раз
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 1; attempt <= maxSerializableRetries; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || !txmanager.IsSerializationFailure(err) {
			return err
		}
	}
	return err
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTransaction, err)
	}

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w: rollback after %w: %v", ErrTransaction, err, rbErr)
		}
		return err
	}

	// Причина оборачивается через %w: serialization_failure на коммите должен
	// оставаться различимым для IsSerializationFailure в цикле повторов
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}

	return nil
}
