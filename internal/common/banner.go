package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved
// configuration. The API key is reported as present or absent only.
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("Lunchtime", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("storage_type", config.Storage.Type).
		Str("badger_path", config.Storage.Badger.Path).
		Str("log_level", config.Logging.Level).
		Strs("log_output", config.Logging.Output).
		Str("locale", config.Display.Locale).
		Bool("api_key_configured", config.PlacesAPI.APIKey != "").
		Msg("Resolved configuration (sanitized)")
}
