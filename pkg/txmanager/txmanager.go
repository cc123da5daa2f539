package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/TMS-BookingService/pkg/dbmetrics"
)

// Количество повторов сериализуемой транзакции при serialization_failure
const maxSerializableRetries = 3

// pgSerializationFailure код ошибки PostgreSQL "could not serialize access"
const pgSerializationFailure = "40001"

// ErrTransaction возвращается при ошибках управления транзакцией
var ErrTransaction = errors.New("txmanager: transaction error")

// TxBeginner интерфейс для начала транзакций (реализуется *dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager управляет транзакциями над обёрнутой метриками БД
// Транзакция передается вниз по слоям через контекст (dbmetrics.WithTx)
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
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
		if err == nil || !IsSerializationFailure(err) {
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

// IsSerializationFailure проверяет, что ошибка вызвана конфликтом сериализации
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgSerializationFailure
	}
	return false
}
