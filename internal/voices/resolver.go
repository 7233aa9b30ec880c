package voices

import (
	"context"
	"errors"
	"time"

	"voxsmith/internal/services"
	"voxsmith/internal/services/elevenlabs"
)

// Lister fetches the live voice catalog. *elevenlabs.Client satisfies it.
type Lister interface {
	Voices(ctx context.Context) ([]elevenlabs.Voice, error)
}

// Refresh replaces the cached catalog with the service's current one and
// returns the number of voices cached.
func (s *Store) Refresh(ctx context.Context, lister Lister) (int, error) {
	catalog, err := lister.Voices(ctx)
	if err != nil {
		return 0, err
	}
	voices := make([]Voice, 0, len(catalog))
	for _, voice := range catalog {
		voices = append(voices, Voice{ID: voice.ID, Name: voice.Name, Category: voice.Category})
	}
	if err := s.Replace(ctx, voices); err != nil {
		return 0, err
	}
	return len(voices), nil
}

// ResolveFresh resolves a voice name, refreshing the cache first when it
// is stale or when the name is missing from a possibly outdated cache. A
// refresh failure on a stale cache falls back to the cached data rather
// than failing the lookup outright.
func (s *Store) ResolveFresh(ctx context.Context, lister Lister, name string, maxAge time.Duration) (string, error) {
	stale, err := s.Stale(ctx, maxAge)
	if err != nil {
		return "", err
	}
	if stale {
		if _, err := s.Refresh(ctx, lister); err != nil {
			if errors.Is(err, services.ErrValidation) {
				return "", err
			}
			// Stale data beats no data; the lookup below may still hit.
		}
	}
	id, err := s.Resolve(ctx, name)
	if err == nil || stale {
		return id, err
	}
	// Fresh-looking cache but unknown name: the catalog may have changed
	// since the last refresh.
	if _, refreshErr := s.Refresh(ctx, lister); refreshErr != nil {
		return "", err
	}
	return s.Resolve(ctx, name)
}
