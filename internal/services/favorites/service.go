package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/common"
	"github.com/ternarybob/lunchtime/internal/interfaces"
)

// StorageKey is the fixed KV entry holding the favorite set
const StorageKey = "LunchTimeFavoritesKey"

// ErrEmptyPlaceID is returned for operations on an empty place ID
var ErrEmptyPlaceID = errors.New("place id cannot be empty")

// Service persists favorite place IDs as a JSON object mapping each ID to itself
type Service struct {
	storage interfaces.KeyValueStorage
	logger  arbor.ILogger

	// mu serialises every load/save pair so concurrent toggles cannot lose updates
	mu sync.Mutex
}

// NewService creates a new favorites service
func NewService(storage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// IsFavorite reports whether placeID is currently a favorite
func (s *Service) IsFavorite(ctx context.Context, placeID string) (bool, error) {
	if placeID == "" {
		return false, ErrEmptyPlaceID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := set[placeID]
	return ok, nil
}

// Add inserts placeID. Adding an existing favorite is a no-op.
func (s *Service) Add(ctx context.Context, placeID string) error {
	_, err := s.update(ctx, placeID, func(present bool) bool { return true })
	return err
}

// Remove deletes placeID. Removing a missing favorite is a no-op.
func (s *Service) Remove(ctx context.Context, placeID string) error {
	_, err := s.update(ctx, placeID, func(present bool) bool { return false })
	return err
}

// Toggle flips membership of placeID and returns the new state
func (s *Service) Toggle(ctx context.Context, placeID string) (bool, error) {
	return s.update(ctx, placeID, func(present bool) bool { return !present })
}

// List returns every favorite ID in ascending order
func (s *Service) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// update applies next to the current membership of placeID under the lock,
// writing back only when membership changes
func (s *Service) update(ctx context.Context, placeID string, next func(present bool) bool) (bool, error) {
	if placeID == "" {
		return false, ErrEmptyPlaceID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	_, present := set[placeID]
	want := next(present)
	if want == present {
		return want, nil
	}

	if want {
		set[placeID] = placeID
	} else {
		delete(set, placeID)
	}

	if err := s.save(ctx, set); err != nil {
		return present, err
	}

	s.logger.Debug().Str("place_id", placeID).Bool("favorite", want).Int("count", len(set)).Msg("Favorite updated")
	return want, nil
}

func (s *Service) load(ctx context.Context) (map[string]string, error) {
	value, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	set := map[string]string{}
	if value == "" {
		return set, nil
	}
	if err := json.Unmarshal([]byte(value), &set); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	if set == nil {
		// Stored as JSON null
		set = map[string]string{}
	}
	return set, nil
}

func (s *Service) save(ctx context.Context, set map[string]string) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.storage.Set(ctx, StorageKey, string(data), "Favorite place IDs"); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}
