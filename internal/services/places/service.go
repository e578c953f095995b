package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mmcloughlin/geohash"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/lunchtime/internal/common"
	"github.com/ternarybob/lunchtime/internal/dispatch"
	"github.com/ternarybob/lunchtime/internal/interfaces"
	"github.com/ternarybob/lunchtime/internal/models"
)

// cellPrecision gives a ~1.2km search-centre cell
const cellPrecision = 6

// Service implements the PlacesService interface
type Service struct {
	config     *common.PlacesAPIConfig
	logger     arbor.ILogger
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	dispatcher dispatch.Dispatcher
	validate   *validator.Validate

	// seq is the sequence number of the most recently started async search
	seq atomic.Uint64
}

// Option configures a Service
type Option func(*Service)

// WithBaseURL overrides the Nearby Search endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Service) {
		s.httpClient = httpClient
	}
}

// WithDispatcher sets the completion context for async searches.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithRateLimit enforces a minimum spacing between requests. Zero disables it.
func WithRateLimit(interval time.Duration) Option {
	return func(s *Service) {
		s.limiter = newLimiter(interval)
	}
}

// NewService creates a new Places service instance
func NewService(
	config *common.PlacesAPIConfig,
	kvStorage interfaces.KeyValueStorage,
	logger arbor.ILogger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}

	// Resolution order: env → KV store → config fallback
	apiKey, err := common.ResolveAPIKey(context.Background(), kvStorage, common.PlacesAPIKeyName, config.APIKey)
	if err != nil {
		// Requests still go out; the API answers REQUEST_DENIED with an error_message
		logger.Warn().Err(err).Msg("Google Places API key not configured")
	}

	s := &Service{
		config:     config,
		logger:     logger,
		apiKey:     apiKey,
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: config.RequestTimeoutDuration()},
		limiter:    newLimiter(config.RateLimitDuration()),
		dispatcher: dispatch.Inline{},
		validate:   validator.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Search performs one blocking Nearby Search request
func (s *Service) Search(ctx context.Context, q models.SearchQuery) ([]models.Place, error) {
	result := s.search(ctx, common.NewSearchID(), q)
	return result.Places, result.Err
}

// SearchAsync runs the search on a background goroutine and delivers the
// result to handler through the dispatcher. It returns immediately. If the
// dispatcher refuses the delivery, handler is not called.
func (s *Service) SearchAsync(ctx context.Context, q models.SearchQuery, handler func(models.SearchResult)) uint64 {
	return s.searchAsync(ctx, q, handler, nil)
}

// SearchChan is SearchAsync with the result sent on a channel. The channel
// receives exactly one value and is then closed. When the dispatcher has
// stopped, the value is sent from the search goroutine instead.
func (s *Service) SearchChan(ctx context.Context, q models.SearchQuery) <-chan models.SearchResult {
	ch := make(chan models.SearchResult, 1)
	deliver := func(result models.SearchResult) {
		ch <- result
		close(ch)
	}
	s.searchAsync(ctx, q, deliver, deliver)
	return ch
}

// searchAsync calls refused with the result when the dispatcher will not run handler
func (s *Service) searchAsync(ctx context.Context, q models.SearchQuery, handler, refused func(models.SearchResult)) uint64 {
	seq := s.seq.Add(1)
	searchID := common.NewSearchID()

	common.SafeGo(s.logger, "places.SearchAsync", func() {
		result := s.search(ctx, searchID, q)
		result.Seq = seq

		err := s.dispatcher.Dispatch(func() {
			if handler != nil {
				handler(result)
			}
		})
		if err == nil {
			return
		}

		s.logger.Warn().
			Str("search_id", searchID).
			Int64("seq", int64(seq)).
			Err(err).
			Msg("Search result not delivered")
		if refused != nil {
			refused(result)
		}
	})

	return seq
}

// IsLatest reports whether seq is the most recently started async search
func (s *Service) IsLatest(seq uint64) bool {
	return seq == s.seq.Load()
}

func (s *Service) search(ctx context.Context, searchID string, q models.SearchQuery) models.SearchResult {
	started := time.Now()
	result := models.SearchResult{SearchID: searchID, Query: q, Cell: geohashCell(q.Center)}

	keyword := ""
	if q.Keyword != nil {
		keyword = *q.Keyword
	}

	s.logger.Debug().
		Str("search_id", searchID).
		Str("cell", result.Cell).
		Str("keyword", keyword).
		Str("url", redactedSearchURL(s.baseURL, q)).
		Msg("Starting nearby search")

	raw, err := s.fetch(ctx, q)
	if err != nil {
		s.logger.Warn().
			Str("search_id", searchID).
			Str("cell", result.Cell).
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("Nearby search failed")
		result.Err = err
		return result
	}

	result.Places = MapPlaces(raw.Results)
	result.NextPageToken = raw.NextPageToken

	if raw.ErrorMessage != nil && *raw.ErrorMessage != "" {
		result.Err = &APIError{Status: raw.statusString(), Message: *raw.ErrorMessage}
		s.logger.Warn().
			Str("search_id", searchID).
			Str("status", raw.statusString()).
			Int("results", len(result.Places)).
			Err(result.Err).
			Msg("Nearby search returned an API error")
		return result
	}

	s.logger.Info().
		Str("search_id", searchID).
		Str("cell", result.Cell).
		Str("status", raw.statusString()).
		Int("results", len(result.Places)).
		Bool("has_next_page", raw.NextPageToken != nil).
		Dur("elapsed", time.Since(started)).
		Msg("Nearby search completed")

	return result
}

// fetch performs the GET and decodes the body. A single attempt, never retried.
func (s *Service) fetch(ctx context.Context, q models.SearchQuery) (*RawSearchResponse, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildSearchURL(s.baseURL, s.apiKey, q), nil)
	if err != nil {
		return nil, &TransportError{Err: s.redact(err, q)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: s.redact(err, q)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// A non-2xx response with a body is still decoded; only a missing body short-circuits
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn().
			Int("status_code", resp.StatusCode).
			Int("body_bytes", len(body)).
			Msg("Nearby search returned non-2xx status")
	}

	raw, err := s.decode(body)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return raw, nil
}

// decode parses and schema-checks a response body. All or nothing: one bad
// place fails the whole response.
func (s *Service) decode(body []byte) (*RawSearchResponse, error) {
	var raw RawSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if err := s.validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("response failed schema validation: %w", err)
	}
	return &raw, nil
}

// redact strips the API key from the URL that net/http embeds in its errors
func (s *Service) redact(err error, q models.SearchQuery) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactedSearchURL(s.baseURL, q)
	}
	return err
}

// geohashCell returns the coarse cell of c, empty for coordinates geohash cannot encode
func geohashCell(c models.Coordinate) string {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return ""
	}
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, cellPrecision)
}
