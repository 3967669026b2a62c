// Package migrations содержит схему БД сервиса
package migrations

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
)

//go:embed schema.sql
var schema string

// Schema возвращает SQL схемы
func Schema() string {
	return schema
}

// Apply применяет схему. Все операторы идемпотентны (IF NOT EXISTS)
func Apply(ctx context.Context, db dbmetrics.DBExecutor) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
