package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name    string   `json:"name"`
	Leaders []string `json:"leaders"`
}

func TestKey(t *testing.T) {
	tests := []struct {
		namespace string
		id        string
		expected  string
	}{
		{"country", "France", "country_France"},
		{"country", "New Zealand", "country_New_Zealand"},
		{"country", "  New \t Zealand ", "country_New_Zealand"},
		{"person", "", "person_"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Key(tt.namespace, tt.id), "Key(%q, %q)", tt.namespace, tt.id)
	}
}

func TestKeyParts(t *testing.T) {
	assert.Equal(t, "party_Labour_Party__United_Kingdom", KeyParts("party", "Labour Party", "United Kingdom"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "country_Côte_d'Ivoire.json", FileName("country_Côte d'Ivoire"))
	assert.Equal(t, "a_b_c.json", FileName("a/b:c"))

	long := FileName(strings.Repeat("x", 300))
	assert.True(t, strings.HasPrefix(long, "hash_"))
	assert.True(t, strings.HasSuffix(long, ".json"))
}

func TestMemoryEntryRecordsCreationTime(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[int]()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	require.NoError(t, m.Set(ctx, "k", 1))
	e, ok := m.Entry("k")
	require.True(t, ok)
	assert.Equal(t, fixed, e.CreatedAt)
	assert.Equal(t, 1, m.Len())

	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := NewFileStore[profile](dir)
	require.NoError(t, err)

	assert.False(t, fs.Has(ctx, "country_France"))
	want := profile{Name: "France", Leaders: []string{"Macron"}}
	require.NoError(t, fs.Set(ctx, "country_France", want))
	assert.True(t, fs.Has(ctx, "country_France"))

	// a fresh instance over the same directory sees the entry
	fs2, err := NewFileStore[profile](dir)
	require.NoError(t, err)
	got, ok := fs2.Get(ctx, "country_France")
	require.True(t, ok)
	assert.Equal(t, want, got)

	entry, ok := fs2.Entry("country_France")
	require.True(t, ok)
	assert.Equal(t, "country_France", entry.Key)
	assert.False(t, entry.CreatedAt.IsZero())

	// no temp files left behind
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFileStoreCorruptFileIsMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStore[profile](dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName("k")), []byte("{not json"), 0o600))
	_, ok := fs.Get(ctx, "k")
	assert.False(t, ok)
}

func TestTieredPromotesBackHits(t *testing.T) {
	ctx := context.Background()
	front := NewMemory[string]()
	back := NewMemory[string]()
	tiered := NewTiered[string](front, back)

	require.NoError(t, back.Set(ctx, "k", "warm"))
	assert.True(t, tiered.Has(ctx, "k"))
	assert.False(t, front.Has(ctx, "k"))

	v, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "warm", v)
	assert.True(t, front.Has(ctx, "k"))

	require.NoError(t, tiered.Set(ctx, "k2", "both"))
	assert.True(t, front.Has(ctx, "k2"))
	assert.True(t, back.Has(ctx, "k2"))

	_, ok = tiered.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	prefix := "polisci:test:" + t.Name() + ":"
	rs := NewRedisStore[profile](rdb, WithPrefix(prefix), WithTTL(time.Minute))
	t.Cleanup(func() { _ = rdb.Del(context.Background(), prefix+"country_France").Err() })

	assert.False(t, rs.Has(ctx, "country_France"))
	want := profile{Name: "France"}
	require.NoError(t, rs.Set(ctx, "country_France", want))

	got, ok := rs.Get(ctx, "country_France")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, rs.Has(ctx, "country_France"))
}
