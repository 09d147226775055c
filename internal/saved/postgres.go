package saved

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_items (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	title      TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS saved_items_user_created_idx
	ON saved_items (user_id, created_at DESC);
`

// Postgres is a Store backed by a pgx pool
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgres wraps pool. Call EnsureSchema before first use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

// EnsureSchema creates the saved_items table if missing
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure saved schema: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, item Item) (Item, error) {
	item, err := prepare(item, p.now())
	if err != nil {
		return Item{}, err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO saved_items (id, user_id, kind, title, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET kind = EXCLUDED.kind, title = EXCLUDED.title, payload = EXCLUDED.payload`,
		item.ID, item.UserID, item.Kind, item.Title, []byte(item.Payload), item.CreatedAt,
	)
	if err != nil {
		return Item{}, fmt.Errorf("insert saved item: %w", err)
	}
	return item, nil
}

func (p *Postgres) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM saved_items WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete saved item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, kind, title, payload, created_at
		FROM saved_items
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		var it Item
		var payload []byte
		err := row.Scan(&it.ID, &it.UserID, &it.Kind, &it.Title, &payload, &it.CreatedAt)
		it.Payload = payload
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan saved items: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
