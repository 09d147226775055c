// Package saved stores the entities a user pinned to the Saved tab
package saved

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when an item does not exist for the user
	ErrNotFound = errors.New("saved item not found")

	// ErrInvalid is returned when an item is missing required fields
	ErrInvalid = errors.New("invalid saved item")
)

// Item is one saved entity
type Item struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Title     string          `json:"title"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store persists saved items per user
type Store interface {
	// Save inserts item, assigning ID and CreatedAt when unset
	Save(ctx context.Context, item Item) (Item, error)

	// Delete removes the user's item with id or returns ErrNotFound
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// List returns the user's items, newest first
	List(ctx context.Context, userID string) ([]Item, error)
}

func prepare(item Item, now time.Time) (Item, error) {
	item.UserID = strings.TrimSpace(item.UserID)
	item.Kind = strings.TrimSpace(item.Kind)
	item.Title = strings.TrimSpace(item.Title)
	if item.UserID == "" || item.Kind == "" || item.Title == "" {
		return Item{}, ErrInvalid
	}
	if len(item.Payload) == 0 {
		item.Payload = json.RawMessage("null")
	} else if !json.Valid(item.Payload) {
		return Item{}, ErrInvalid
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now.UTC()
	}
	return item, nil
}
