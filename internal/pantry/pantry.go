package pantry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Item is one line of household stock. The planning pipeline only ever reads
// a snapshot of these; mutation happens through the Repository.
type Item struct {
	Name      string   `json:"name"`
	Quantity  float64  `json:"quantity"`
	Unit      string   `json:"unit"`
	ExpiresOn string   `json:"expires_on,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// ReceiptItem is one already-parsed line from a shopping receipt. Parsing the
// receipt text itself happens upstream.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
}

// Repository is a database-backed store for pantry items, keyed by
// normalized name plus unit.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// List returns the current pantry snapshot.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, quantity, unit, expires_on, tags FROM pantry_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var expiresOn sql.NullString
		var tagsJSON string
		if err := rows.Scan(&item.Name, &item.Quantity, &item.Unit, &expiresOn, &tagsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan pantry row: %w", err)
		}
		item.ExpiresOn = expiresOn.String
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal pantry tags: %w", err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pantry rows: %w", err)
	}
	return items, nil
}

// Upsert inserts an item or adds to the stored quantity when an item with
// the same normalized name and unit already exists.
func (r *Repository) Upsert(ctx context.Context, item Item) error {
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal pantry tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pantry_items (key, name, quantity, unit, expires_on, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			quantity = pantry_items.quantity + excluded.quantity,
			expires_on = excluded.expires_on,
			tags = excluded.tags,
			updated_at = excluded.updated_at`,
		itemKey(item.Name, item.Unit), item.Name, item.Quantity, item.Unit,
		nullable(item.ExpiresOn), string(tagsJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert pantry item: %w", err)
	}
	return nil
}

// SetQuantity overwrites the stored quantity for an item, removing the row
// when the new quantity is zero or below.
func (r *Repository) SetQuantity(ctx context.Context, name, unit string, quantity float64) error {
	if quantity <= 0 {
		return r.Remove(ctx, name, unit)
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE pantry_items SET quantity = ?, updated_at = ? WHERE key = ?`,
		quantity, time.Now(), itemKey(name, unit))
	if err != nil {
		return fmt.Errorf("failed to set pantry quantity: %w", err)
	}
	return nil
}

// Remove deletes an item from the pantry.
func (r *Repository) Remove(ctx context.Context, name, unit string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pantry_items WHERE key = ?`, itemKey(name, unit))
	if err != nil {
		return fmt.Errorf("failed to remove pantry item: %w", err)
	}
	return nil
}

// ApplyReceipt tops up the pantry from already-parsed receipt lines.
func (r *Repository) ApplyReceipt(ctx context.Context, lines []ReceiptItem) error {
	for _, line := range lines {
		item := Item{Name: line.Name, Quantity: line.Quantity, Unit: line.Unit}
		if err := r.Upsert(ctx, item); err != nil {
			return fmt.Errorf("failed to apply receipt line %q: %w", line.Name, err)
		}
	}
	return nil
}

func itemKey(name, unit string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(unit))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
