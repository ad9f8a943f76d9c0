package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/emberhav/pricewatch/internal/domain"
)

// OwnerPrefs reads an owner's notification preferences. The engine
// only ever reads these; mutations belong to the account routes.
func (s *Store) OwnerPrefs(ctx context.Context, ownerID string) (*domain.OwnerPrefs, error) {
	prefs := domain.OwnerPrefs{OwnerID: ownerID}
	err := s.pool.QueryRow(ctx,
		`SELECT push_token, push_opted_in, consent_given FROM owners WHERE id = $1`,
		ownerID).Scan(&prefs.PushToken, &prefs.PushOptedIn, &prefs.ConsentGiven)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: owner %s", ErrNotFound, ownerID)
		}
		return nil, fmt.Errorf("failed to get owner prefs: %w", err)
	}
	return &prefs, nil
}
