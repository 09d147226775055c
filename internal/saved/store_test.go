package saved

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store, user string) {
	t.Helper()
	ctx := context.Background()

	list, err := s.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, list)
	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw), "no saved items encodes as an empty array")

	first, err := s.Save(ctx, Item{
		UserID:    user,
		Kind:      "Country",
		Title:     "France",
		Payload:   json.RawMessage(`"France"`),
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second, err := s.Save(ctx, Item{
		UserID:    user,
		Kind:      "Party",
		Title:     "SPD (Germany)",
		Payload:   json.RawMessage(`{"name":"SPD","country":"Germany"}`),
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	list, err = s.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)
	assert.JSONEq(t, `{"name":"SPD","country":"Germany"}`, string(list[0].Payload))

	other, err := s.List(ctx, user+"-other")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.ErrorIs(t, s.Delete(ctx, user+"-other", first.ID), ErrNotFound, "items are scoped to their user")
	require.NoError(t, s.Delete(ctx, user, first.ID))
	assert.ErrorIs(t, s.Delete(ctx, user, first.ID), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, user, uuid.New()), ErrNotFound)

	list, err = s.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Party", list[0].Kind)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory(), "guest-1")
}

func TestSaveValidation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.Save(ctx, Item{Kind: "Country", Title: "France"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Save(ctx, Item{UserID: "u", Kind: "Country", Title: "  "})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Save(ctx, Item{UserID: "u", Kind: "Country", Title: "France", Payload: json.RawMessage(`{"name":`)})
	assert.ErrorIs(t, err, ErrInvalid)

	it, err := s.Save(ctx, Item{UserID: "u", Kind: "Country", Title: "France"})
	require.NoError(t, err)
	assert.Equal(t, "null", string(it.Payload))
	assert.False(t, it.CreatedAt.IsZero())
}

func TestMemorySaveSameIDReplaces(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	it, err := s.Save(ctx, Item{UserID: "u", Kind: "Country", Title: "France"})
	require.NoError(t, err)
	it.Title = "French Republic"
	_, err = s.Save(ctx, it)
	require.NoError(t, err)

	list, err := s.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "French Republic", list[0].Title)
}

func TestPostgresStore(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping postgres test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}

	pg := NewPostgres(pool)
	require.NoError(t, pg.EnsureSchema(ctx))

	user := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM saved_items WHERE user_id LIKE $1`, user+"%")
	})
	exerciseStore(t, pg, user)
}
