package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/emberhav/pricewatch/internal/domain"
)

const itemColumns = `id, owner_id, source_url, external_id, title, brand, image_url, note,
	current_price::text, previous_price::text, lowest_price::text, reference_avg::text,
	saved_amount::text, price_history, alternatives, status_text,
	notifications_enabled, deleted, purchased, auto_remove, created_at, updated_at`

// CreateItem inserts a new tracked item.
func (s *Store) CreateItem(ctx context.Context, item *domain.TrackedItem) error {
	history, err := json.Marshal(item.PriceHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal price history: %w", err)
	}
	alts, err := json.Marshal(item.Alternatives)
	if err != nil {
		return fmt.Errorf("failed to marshal alternatives: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tracked_items (
			id, owner_id, source_url, external_id, title, brand, image_url, note,
			current_price, previous_price, lowest_price, reference_avg, saved_amount,
			price_history, alternatives, status_text,
			notifications_enabled, deleted, purchased, auto_remove, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		item.ID, item.OwnerID, item.SourceURL, item.ExternalID,
		item.Title, item.Brand, item.ImageURL, item.Note,
		decArg(item.CurrentPrice), decArg(item.PreviousPrice), decArg(item.LowestPrice),
		decArg(item.ReferenceAvg), item.SavedAmount.String(),
		history, alts, item.StatusText,
		item.NotificationsEnabled, item.Deleted, item.Purchased, item.AutoRemove,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// ItemByID retrieves one item regardless of its deletion state.
func (s *Store) ItemByID(ctx context.Context, id string) (*domain.TrackedItem, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM tracked_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ActiveItems returns every non-deleted item, the price-scan worklist.
func (s *Store) ActiveItems(ctx context.Context) ([]*domain.TrackedItem, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM tracked_items WHERE deleted = false ORDER BY created_at DESC`)
}

// ActiveItemsByOwner returns an owner's non-deleted items.
func (s *Store) ActiveItemsByOwner(ctx context.Context, ownerID string) ([]*domain.TrackedItem, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM tracked_items WHERE owner_id = $1 AND deleted = false ORDER BY created_at DESC`,
		ownerID)
}

// DeletedItemsByOwner returns an owner's soft-deleted items, the
// history aggregate's source.
func (s *Store) DeletedItemsByOwner(ctx context.Context, ownerID string) ([]*domain.TrackedItem, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM tracked_items WHERE owner_id = $1 AND deleted = true ORDER BY created_at DESC`,
		ownerID)
}

// CountActiveByOwner counts an owner's non-deleted items.
func (s *Store) CountActiveByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tracked_items WHERE owner_id = $1 AND deleted = false`,
		ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// ActiveExists reports whether the owner already tracks the URL.
func (s *Store) ActiveExists(ctx context.Context, ownerID, sourceURL string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tracked_items WHERE owner_id = $1 AND source_url = $2 AND deleted = false)`,
		ownerID, sourceURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return exists, nil
}

// UpdatePrices writes an item's price-derived fields in one statement.
// This is the per-item unit of atomicity for concurrent updates.
func (s *Store) UpdatePrices(ctx context.Context, item *domain.TrackedItem) error {
	history, err := json.Marshal(item.PriceHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal price history: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tracked_items SET
			current_price = $2, previous_price = $3, lowest_price = $4,
			reference_avg = $5, price_history = $6, status_text = $7, updated_at = $8
		WHERE id = $1`,
		item.ID,
		decArg(item.CurrentPrice), decArg(item.PreviousPrice), decArg(item.LowestPrice),
		decArg(item.ReferenceAvg), history, item.StatusText, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update prices: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", ErrNotFound, item.ID)
	}
	return nil
}

// UpdateNote sets the free-text note.
func (s *Store) UpdateNote(ctx context.Context, id, note string) error {
	return s.execTargeted(ctx,
		`UPDATE tracked_items SET note = $2, updated_at = now() WHERE id = $1`, id, note)
}

// SetNotificationsEnabled toggles the per-item push preference.
func (s *Store) SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error {
	return s.execTargeted(ctx,
		`UPDATE tracked_items SET notifications_enabled = $2, updated_at = now() WHERE id = $1`, id, enabled)
}

// MarkPurchased flags an item as bought and moves it to history.
func (s *Store) MarkPurchased(ctx context.Context, id string, saved decimal.Decimal) error {
	return s.execTargeted(ctx, `
		UPDATE tracked_items SET purchased = true, deleted = true, saved_amount = $2, updated_at = now()
		WHERE id = $1`, id, saved.String())
}

// SoftDelete moves an item to history without purchase.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.execTargeted(ctx,
		`UPDATE tracked_items SET deleted = true, updated_at = now() WHERE id = $1`, id)
}

// HardDelete removes a history entry permanently.
func (s *Store) HardDelete(ctx context.Context, id string) error {
	return s.execTargeted(ctx, `DELETE FROM tracked_items WHERE id = $1`, id)
}

// UpdateAlternatives replaces an item's alternative set.
func (s *Store) UpdateAlternatives(ctx context.Context, id string, alts []domain.AlternativeRef) error {
	data, err := json.Marshal(alts)
	if err != nil {
		return fmt.Errorf("failed to marshal alternatives: %w", err)
	}
	return s.execTargeted(ctx,
		`UPDATE tracked_items SET alternatives = $2, updated_at = now() WHERE id = $1`, id, data)
}

func (s *Store) execTargeted(ctx context.Context, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, args[0])
	}
	return nil
}

func (s *Store) queryItems(ctx context.Context, sql string, args ...any) ([]*domain.TrackedItem, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*domain.TrackedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (*domain.TrackedItem, error) {
	var (
		item                            domain.TrackedItem
		current, previous, lowest, ref  *string
		saved                           *string
		history, alts                   []byte
		createdAt, updatedAt            time.Time
	)

	err := row.Scan(
		&item.ID, &item.OwnerID, &item.SourceURL, &item.ExternalID,
		&item.Title, &item.Brand, &item.ImageURL, &item.Note,
		&current, &previous, &lowest, &ref, &saved,
		&history, &alts, &item.StatusText,
		&item.NotificationsEnabled, &item.Deleted, &item.Purchased, &item.AutoRemove,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if item.CurrentPrice, err = parseDec(current); err != nil {
		return nil, err
	}
	if item.PreviousPrice, err = parseDec(previous); err != nil {
		return nil, err
	}
	if item.LowestPrice, err = parseDec(lowest); err != nil {
		return nil, err
	}
	if item.ReferenceAvg, err = parseDec(ref); err != nil {
		return nil, err
	}
	if saved != nil {
		d, err := decimal.NewFromString(*saved)
		if err != nil {
			return nil, fmt.Errorf("invalid saved_amount: %w", err)
		}
		item.SavedAmount = d
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &item.PriceHistory); err != nil {
			return nil, fmt.Errorf("invalid price_history: %w", err)
		}
	}
	if len(alts) > 0 {
		if err := json.Unmarshal(alts, &item.Alternatives); err != nil {
			return nil, fmt.Errorf("invalid alternatives: %w", err)
		}
	}

	item.CreatedAt = createdAt
	item.UpdatedAt = updatedAt
	return &item, nil
}

func parseDec(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", *s, err)
	}
	return &d, nil
}

// decArg converts an optional decimal into a SQL argument.
func decArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
