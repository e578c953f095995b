package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/common"
	"github.com/ternarybob/lunchtime/internal/dispatch"
	"github.com/ternarybob/lunchtime/internal/models"
)

const nearbyBody = `{"html_attributions":[],"status":"OK","results":[
  {"icon":"i","name":"Corner Cafe","geometry":{"location":{"lat":51.5008,"lng":-0.1247}},"place_id":"cafe","vicinity":"Westminster","price_level":2,"rating":4.2,"user_ratings_total":88}
]}`

func newTestConfig(t *testing.T, baseURL string) *common.Config {
	t.Helper()
	t.Setenv("LUNCHTIME_PLACES_API_KEY", "")
	config := common.NewDefaultConfig()
	config.Storage.Type = "memory"
	config.PlacesAPI.BaseURL = baseURL
	config.PlacesAPI.APIKey = "config-key"
	config.Display.Locale = "en-GB"
	return config
}

func newTestServer(t *testing.T, keys chan<- string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if keys != nil {
			keys <- r.URL.Query().Get("key")
		}
		_, _ = w.Write([]byte(nearbyBody))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNew_SearchAndFavorite(t *testing.T) {
	server := newTestServer(t, nil)
	app, err := New(newTestConfig(t, server.URL), arbor.NewLogger())
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	here := models.Coordinate{Latitude: 51.5007, Longitude: -0.1246}

	var result models.SearchResult
	select {
	case result = <-app.PlacesService.SearchChan(ctx, models.NewSearchQuery(here, "")):
	case <-time.After(5 * time.Second):
		t.Fatal("search never completed")
	}
	require.NoError(t, result.Err)
	require.Len(t, result.Places, 1)
	place := result.Places[0]

	on, err := app.FavoritesService.Toggle(ctx, place.PlaceID)
	require.NoError(t, err)
	assert.True(t, on)

	fav, err := app.FavoritesService.IsFavorite(ctx, place.PlaceID)
	require.NoError(t, err)
	assert.True(t, fav)

	assert.Equal(t, "$$$", place.PriceLevelString())
	assert.Equal(t, "★★★★☆ (88)", place.RatingString())
	assert.Contains(t, place.DistanceString(&here, app.Locale()), "ft away")
}

func TestNew_UsesInjectedDispatcher(t *testing.T) {
	server := newTestServer(t, nil)
	dispatched := make(chan struct{}, 1)
	d := dispatch.Func(func(fn func()) {
		dispatched <- struct{}{}
		fn()
	})

	app, err := New(newTestConfig(t, server.URL), arbor.NewLogger(), WithDispatcher(d))
	require.NoError(t, err)
	defer app.Close()

	<-app.PlacesService.SearchChan(context.Background(), models.NewSearchQuery(models.Coordinate{}, ""))

	select {
	case <-dispatched:
	default:
		t.Fatal("injected dispatcher was not used")
	}
}

func TestNew_ResolvesKeyReferenceFromStore(t *testing.T) {
	keys := make(chan string, 2)
	server := newTestServer(t, keys)

	config := newTestConfig(t, server.URL)
	config.Storage.Type = "badger"
	config.Storage.Badger.Path = filepath.Join(t.TempDir(), "db")
	config.PlacesAPI.APIKey = "{places_secret}"

	// Seed the store, then restart against it
	seed, err := New(config, arbor.NewLogger())
	require.NoError(t, err)
	require.NoError(t, seed.StorageManager.KeyValueStorage().Set(context.Background(), "places_secret", "stored-key", ""))
	require.NoError(t, seed.Close())

	app, err := New(config, arbor.NewLogger())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.PlacesService.Search(context.Background(), models.NewSearchQuery(models.Coordinate{}, ""))
	require.NoError(t, err)
	assert.Equal(t, "stored-key", <-keys)
}

func TestNew_LoadsVariablesFileIntoStore(t *testing.T) {
	keys := make(chan string, 1)
	server := newTestServer(t, keys)

	dir := t.TempDir()
	variables := filepath.Join(dir, "variables.env")
	require.NoError(t, os.WriteFile(variables, []byte("google_places_api_key=from-variables\n"), 0600))

	config := newTestConfig(t, server.URL)
	config.Storage.VariablesFile = variables

	app, err := New(config, arbor.NewLogger())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.PlacesService.Search(context.Background(), models.NewSearchQuery(models.Coordinate{}, ""))
	require.NoError(t, err)
	// The KV entry beats the config fallback
	assert.Equal(t, "from-variables", <-keys)
}

func TestNew_InvalidStorage(t *testing.T) {
	config := newTestConfig(t, "http://127.0.0.1:1")
	config.Storage.Type = "sqlite"

	_, err := New(config, arbor.NewLogger())

	assert.Error(t, err)
}

func TestClose_StopsLoopAndStorage(t *testing.T) {
	app, err := New(newTestConfig(t, "http://127.0.0.1:1"), arbor.NewLogger())
	require.NoError(t, err)

	assert.NoError(t, app.Close())
}

func TestClose_InFlightSearchStillDelivers(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(nearbyBody))
	}))
	t.Cleanup(server.Close)

	app, err := New(newTestConfig(t, server.URL), arbor.NewLogger())
	require.NoError(t, err)

	results := app.PlacesService.SearchChan(context.Background(), models.NewSearchQuery(models.Coordinate{}, ""))
	require.NoError(t, app.Close())
	close(release)

	select {
	case r, ok := <-results:
		require.True(t, ok)
		assert.NoError(t, r.Err)
		assert.Len(t, r.Places, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("search started before Close was never delivered")
	}
}

func TestNew_NilLoggerUsesGlobal(t *testing.T) {
	app, err := New(newTestConfig(t, "http://127.0.0.1:1"), nil)
	require.NoError(t, err)
	defer app.Close()

	assert.Same(t, common.GetLogger(), app.Logger)
}

func TestNew_ProductionRequiresAPIKey(t *testing.T) {
	config := newTestConfig(t, "http://127.0.0.1:1")
	config.Environment = "production"
	config.PlacesAPI.APIKey = ""

	_, err := New(config, arbor.NewLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNew_ProductionWithAPIKey(t *testing.T) {
	config := newTestConfig(t, "http://127.0.0.1:1")
	config.Environment = "production"

	app, err := New(config, arbor.NewLogger())
	require.NoError(t, err)
	assert.NoError(t, app.Close())
}

func TestNew_DevelopmentWithoutAPIKey(t *testing.T) {
	config := newTestConfig(t, "http://127.0.0.1:1")
	config.PlacesAPI.APIKey = ""

	app, err := New(config, arbor.NewLogger())
	require.NoError(t, err)
	assert.NoError(t, app.Close())
}
