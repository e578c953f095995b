package interfaces

import "context"

// FavoritesStore persists the set of favorite place IDs
type FavoritesStore interface {
	IsFavorite(ctx context.Context, placeID string) (bool, error)
	Add(ctx context.Context, placeID string) error
	Remove(ctx context.Context, placeID string) error

	// Toggle flips membership and returns the new state
	Toggle(ctx context.Context, placeID string) (bool, error)

	// List returns all favorite IDs sorted ascending
	List(ctx context.Context) ([]string, error)
}
