// -----------------------------------------------------------------------
// Last Modified: Wednesday, 5th November 2025 8:17:54 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/common"
	"github.com/ternarybob/lunchtime/internal/dispatch"
	"github.com/ternarybob/lunchtime/internal/interfaces"
	"github.com/ternarybob/lunchtime/internal/services/favorites"
	"github.com/ternarybob/lunchtime/internal/services/places"
	"github.com/ternarybob/lunchtime/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	StorageManager interfaces.StorageManager

	// Completion context for async search results
	Dispatcher dispatch.Dispatcher
	loop       *dispatch.Loop

	// Services
	PlacesService    interfaces.PlacesService
	FavoritesService interfaces.FavoritesStore

	placesOptions []places.Option
}

// Option customises App construction
type Option func(*App)

// WithDispatcher delivers async search results through d instead of an
// internally owned dispatch loop, e.g. a UI toolkit's main-thread hook.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(a *App) {
		a.Dispatcher = d
	}
}

// WithPlacesOptions passes extra options to the places service
func WithPlacesOptions(opts ...places.Option) Option {
	return func(a *App) {
		a.placesOptions = append(a.placesOptions, opts...)
	}
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	app := &App{
		Config: cfg,
		Logger: logger,
	}
	for _, opt := range opts {
		opt(app)
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("storage", cfg.Storage.Type).
		Str("locale", cfg.Display.Locale).
		Bool("owned_dispatch_loop", app.loop != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", a.Config.Storage.Type).
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	ctx := context.Background()

	// Load variables (e.g. API keys) into the KV store.
	// This must happen before config replacement so that loaded variables can be used.
	if _, err := storage.LoadVariablesFile(ctx, a.StorageManager.KeyValueStorage(), a.Config.Storage.VariablesFile, a.Logger); err != nil {
		// Log warning but don't fail startup
		a.Logger.Warn().Err(err).Msg("Failed to load variables file")
	}

	// Replace {key-name} references in config with KV store values.
	// Must happen BEFORE services are initialized.
	pairs, err := a.StorageManager.KeyValueStorage().List(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to fetch KV pairs for config replacement, skipping replacement")
		return nil
	}
	if len(pairs) == 0 {
		a.Logger.Debug().Msg("No key/value pairs found, skipping config replacement")
		return nil
	}

	kvMap := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kvMap[pair.Key] = pair.Value
	}
	if err := common.ReplaceInStruct(a.Config, kvMap, a.Logger); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to replace key references in config")
	} else {
		a.Logger.Debug().Int("keys", len(kvMap)).Msg("Applied key/value replacements to config")
	}

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	// 1. Completion context
	if a.Dispatcher == nil {
		a.loop = dispatch.NewLoop(a.Config.Dispatch.QueueSize, a.Logger)
		a.loop.Start()
		a.Dispatcher = a.loop
		a.Logger.Debug().Int("queue_size", a.Config.Dispatch.QueueSize).Msg("Dispatch loop started")
	}

	kv := a.StorageManager.KeyValueStorage()

	// Production refuses to start without a key; development only warns
	if a.Config.IsProduction() {
		if _, err := common.ResolveAPIKey(context.Background(), kv, common.PlacesAPIKeyName, a.Config.PlacesAPI.APIKey); err != nil {
			return fmt.Errorf("production requires a places API key: %w", err)
		}
	}

	// 2. Places search
	placesOpts := append([]places.Option{places.WithDispatcher(a.Dispatcher)}, a.placesOptions...)
	a.PlacesService = places.NewService(&a.Config.PlacesAPI, kv, a.Logger, placesOpts...)
	a.Logger.Debug().Msg("Places service initialized")

	// 3. Favorites
	a.FavoritesService = favorites.NewService(kv, a.Logger)
	a.Logger.Debug().Msg("Favorites service initialized")

	return nil
}

// Locale returns the configured display locale for distance strings
func (a *App) Locale() string {
	return a.Config.Display.Locale
}

// Close closes all application resources
func (a *App) Close() error {
	// Stop the dispatch loop first so queued results are delivered before storage closes
	if a.loop != nil {
		a.loop.Stop()
		a.Logger.Info().Msg("Dispatch loop stopped")
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
