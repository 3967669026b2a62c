//go:build integration

// Package storagetest поднимает Postgres в контейнере для интеграционных тестов репозиториев
package storagetest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/migrations"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
)

const (
	testUser     = "test"
	testPassword = "testpass"
	testDatabase = "reservations"
	postgresPort = "5432/tcp"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerErr  error
)

func dsn(host string, port nat.Port) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port.Port(), testUser, testPassword, testDatabase)
}

func startContainer() (testcontainers.Container, error) {
	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{postgresPort},
				Env: map[string]string{
					"POSTGRES_USER":     testUser,
					"POSTGRES_PASSWORD": testPassword,
					"POSTGRES_DB":       testDatabase,
				},
				Cmd: []string{"postgres", "-c", "fsync=off", "-c", "synchronous_commit=off"},
				WaitingFor: wait.ForSQL(postgresPort, "postgres", dsn).
					WithStartupTimeout(90 * time.Second),
			},
			Started: true,
		})
	})
	return container, containerErr
}

// NewDB возвращает подключение к чистой БД с применённой схемой
func NewDB(t *testing.T) *dbmetrics.DB {
	t.Helper()

	c, err := startContainer()
	require.NoError(t, err, "start postgres container")

	ctx := context.Background()
	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, postgresPort)
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn(host, port))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := dbmetrics.Wrap(sqlDB, nil)
	require.NoError(t, migrations.Apply(ctx, db))

	_, err = db.ExecContext(ctx, "TRUNCATE reservations, business_schedules, outbox_events RESTART IDENTITY")
	require.NoError(t, err)

	return db
}
