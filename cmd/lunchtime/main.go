// -----------------------------------------------------------------------
// Last Modified: Friday, 8th November 2025 4:00:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/app"
	"github.com/ternarybob/lunchtime/internal/common"
	"github.com/ternarybob/lunchtime/internal/models"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	latitude     = flag.Float64("lat", 0, "Search centre latitude")
	longitude    = flag.Float64("lng", 0, "Search centre longitude")
	keyword      = flag.String("keyword", "", "Optional search keyword")
	toggleID     = flag.String("toggle", "", "Toggle a place ID in favorites and exit")
	listFavs     = flag.Bool("favorites", false, "List favorite place IDs and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Lunchtime version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("lunchtime.toml"); err == nil {
			configFiles = append(configFiles, "lunchtime.toml")
		}
	}

	// Startup sequence: config -> logger -> banner -> app
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.InstallCrashHandler(config.Logging.Dir)
	logger := common.InitLogger(config)
	common.PrintBanner(config, logger)

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, application)
	stop()

	if err := application.Close(); err != nil {
		logger.Warn().Err(err).Msg("Shutdown incomplete")
	}
	os.Exit(code)
}

func run(ctx context.Context, application *app.App) int {
	switch {
	case *toggleID != "":
		on, err := application.FavoritesService.Toggle(ctx, *toggleID)
		if err != nil {
			application.Logger.Error().Err(err).Str("place_id", *toggleID).Msg("Failed to toggle favorite")
			return 1
		}
		fmt.Printf("%s favorite: %v\n", *toggleID, on)
		return 0

	case *listFavs:
		ids, err := application.FavoritesService.List(ctx)
		if err != nil {
			application.Logger.Error().Err(err).Msg("Failed to list favorites")
			return 1
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return 0
	}

	center := models.Coordinate{Latitude: *latitude, Longitude: *longitude}
	query := models.NewSearchQuery(center, *keyword)

	var result models.SearchResult
	select {
	case result = <-application.PlacesService.SearchChan(ctx, query):
	case <-ctx.Done():
		application.Logger.Warn().Msg("Interrupted before search completed")
		return 130
	}

	// An API error still carries whatever places were returned
	if result.Err != nil {
		application.Logger.Error().Err(result.Err).Str("search_id", result.SearchID).Msg("Search reported an error")
	}

	for _, place := range result.Places {
		fav, err := application.FavoritesService.IsFavorite(ctx, place.PlaceID)
		if err != nil {
			application.Logger.Warn().Err(err).Str("place_id", place.PlaceID).Msg("Failed to read favorite state")
		}
		marker := " "
		if fav {
			marker = "♥"
		}
		fmt.Printf("%s %s  %s  %s  %s  %s\n  %s  [%s]\n",
			marker,
			place.Name,
			place.PriceLevelString(),
			place.RatingString(),
			place.DistanceString(&center, application.Locale()),
			place.OpenStatus(),
			place.Address,
			place.PlaceID,
		)
	}

	if result.Err != nil && len(result.Places) == 0 {
		return 1
	}
	return 0
}
