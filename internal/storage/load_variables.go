package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/interfaces"
)

// LoadVariablesFile loads KEY=value pairs from a dotenv-format file into the
// KV store, e.g. google_places_api_key=... A missing file is skipped.
// Returns the number of variables stored.
func LoadVariablesFile(ctx context.Context, kv interfaces.KeyValueStorage, filePath string, logger arbor.ILogger) (int, error) {
	if filePath == "" {
		return 0, nil
	}

	logger.Debug().Str("file", filePath).Msg("Loading variables into KV store")

	vars, err := godotenv.Read(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("file", filePath).Msg("Variables file does not exist, skipping")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read variables file %s: %w", filePath, err)
	}

	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	loaded, skipped := 0, 0
	for _, key := range keys {
		value := vars[key]
		if value == "" {
			logger.Warn().Str("file", filePath).Str("key", key).Msg("Skipping variable with empty value")
			skipped++
			continue
		}
		if err := kv.Set(ctx, key, value, "Loaded from "+filePath); err != nil {
			return loaded, fmt.Errorf("failed to store variable %s: %w", key, err)
		}
		loaded++
	}

	logger.Debug().
		Str("file", filePath).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Finished loading variables")

	return loaded, nil
}
