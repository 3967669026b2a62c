package pgerr

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE коды, которые обрабатываются явно
const (
	UniqueViolation      = "23505"
	ExclusionViolation   = "23P01"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
)

// HasCode проверяет, что в цепочке ошибок есть *pq.Error с указанным кодом
func HasCode(err error, code string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == code
}

// IsExclusionViolation нарушение EXCLUDE-ограничения (пересечение интервалов)
func IsExclusionViolation(err error) bool {
	return HasCode(err, ExclusionViolation)
}

// IsSerializationFailure конфликт сериализуемых транзакций или взаимоблокировка
func IsSerializationFailure(err error) bool {
	return HasCode(err, SerializationFailure) || HasCode(err, DeadlockDetected)
}
