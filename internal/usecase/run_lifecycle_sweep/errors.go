package run_lifecycle_sweep

import "errors"

var (
	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)
