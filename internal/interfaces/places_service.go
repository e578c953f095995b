package interfaces

import (
	"context"

	"github.com/ternarybob/lunchtime/internal/models"
)

// PlacesService defines the interface for Google Places Nearby Search operations
type PlacesService interface {
	// Search performs one blocking Nearby Search request.
	//
	// Returns:
	//   - places in the API's nearest-first order
	//   - *places.TransportError or *places.DecodeError with nil places, or
	//     *places.APIError alongside whatever places the response carried
	Search(ctx context.Context, q models.SearchQuery) ([]models.Place, error)

	// SearchAsync runs Search off the calling goroutine and hands the result to
	// handler on the completion context. Returns the search's sequence number.
	SearchAsync(ctx context.Context, q models.SearchQuery, handler func(models.SearchResult)) uint64

	// SearchChan is SearchAsync with the result delivered on a channel
	SearchChan(ctx context.Context, q models.SearchQuery) <-chan models.SearchResult

	// IsLatest reports whether seq belongs to the most recently started async search
	IsLatest(seq uint64) bool
}
