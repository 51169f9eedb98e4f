package dedup

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPgStore(t *testing.T) *Pg {
	t.Helper()

	dsn, ok := os.LookupEnv("COURIER_TEST_DATABASE_URL")
	if !ok {
		t.Skip("COURIER_TEST_DATABASE_URL not set, skipping Postgres integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	table := fmt.Sprintf("courier_dedup_test_%d", time.Now().UnixNano())
	store := NewPg(pool, table)
	require.NoError(t, store.Setup(ctx))

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
		pool.Close()
	})
	return store
}

func TestPg_MarkAndSeen(t *testing.T) {
	ctx := context.Background()
	store := setupPgStore(t)

	seen, err := store.Seen(ctx, "e-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkProcessed(ctx, "e-1"))

	seen, err = store.Seen(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestPg_MarkTwice(t *testing.T) {
	ctx := context.Background()
	store := setupPgStore(t)

	require.NoError(t, store.MarkProcessed(ctx, "e-1"))
	require.NoError(t, store.MarkProcessed(ctx, "e-1"))

	seen, err := store.Seen(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, seen)
}
