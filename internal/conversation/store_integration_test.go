package conversation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIntegrationDB(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dbURL := os.Getenv("COLOMBIAGPT_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("COLOMBIAGPT_TEST_DATABASE_URL not set - skipping integration test")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		DROP TABLE IF EXISTS messages;
		DROP TABLE IF EXISTS conversations;
		CREATE TABLE conversations (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE messages (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	require.NoError(t, err)

	return pool
}

func TestStoreIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool := setupIntegrationDB(t, ctx)
	store, err := New(pool, nil)
	require.NoError(t, err)

	conv, err := store.Create(ctx, "historia")
	require.NoError(t, err)

	got, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, "historia", got.Name)

	_, err = store.AddMessage(ctx, conv.ID, RoleUser, "¿Cuándo fue la independencia?")
	require.NoError(t, err)
	_, err = store.AddMessage(ctx, conv.ID, RoleAssistant, "La independencia fue en 1810.")
	require.NoError(t, err)

	turns, err := store.Turns(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "¿Cuándo fue la independencia?", turns[0].Text)
	assert.Equal(t, RoleAssistant, turns[1].Role)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, conv.ID))

	_, err = store.Get(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// cascade removed the messages too
	messages, err := store.Messages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
