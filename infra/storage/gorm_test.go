package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/fxchat/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := NewDBConnection("sqlite://file::memory:", "test")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s, err := NewGormStore(db)
	require.NoError(t, err)
	return s
}

func TestGormStore_RoundTrip(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, storage.ConversionHistoryKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Save(ctx, storage.ConversionHistoryKey, []byte(`[]`)))
	require.NoError(t, s.Save(ctx, storage.ConversionHistoryKey, []byte(`[{"amount":"1"}]`)))

	got, err := s.Load(ctx, storage.ConversionHistoryKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"amount":"1"}]`, string(got))

	require.NoError(t, s.Delete(ctx, storage.ConversionHistoryKey))
	_, err = s.Load(ctx, storage.ConversionHistoryKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGormStore_JSONHelpers(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	type custom struct {
		Code string  `json:"codigo"`
		Rate float64 `json:"tasa"`
	}
	require.NoError(t, storage.SaveJSON(ctx, s, storage.CustomCurrenciesKey, []custom{{Code: "XTC", Rate: 2.5}}))

	var out []custom
	found, err := storage.LoadJSON(ctx, s, storage.CustomCurrenciesKey, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []custom{{Code: "XTC", Rate: 2.5}}, out)
}

func TestNewDBConnection_EmptyURL(t *testing.T) {
	_, err := NewDBConnection("", "test")
	assert.Error(t, err)
}

// setupPostgresStore starts a Postgres container and returns a GormStore on it.
func setupPostgresStore(t *testing.T) *GormStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "fxchat",
			"POSTGRES_PASSWORD": "fxchat",
			"POSTGRES_DB":       "fxchat",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://fxchat:fxchat@%s:%s/fxchat?sslmode=disable", host, port.Port())
	db, err := NewDBConnection(url, "test")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s, err := NewGormStore(db)
	require.NoError(t, err)
	return s
}

func TestGormStore_Postgres(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storage.UserNameKey, []byte("Ana")))
	require.NoError(t, s.Save(ctx, storage.UserNameKey, []byte("Lucía")))

	name, err := storage.LoadString(ctx, s, storage.UserNameKey)
	require.NoError(t, err)
	assert.Equal(t, "Lucía", name)

	require.NoError(t, s.Delete(ctx, storage.UserNameKey))
	_, err = s.Load(ctx, storage.UserNameKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
