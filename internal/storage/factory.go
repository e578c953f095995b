package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/common"
	"github.com/ternarybob/lunchtime/internal/interfaces"
	"github.com/ternarybob/lunchtime/internal/storage/badger"
)

// NewStorageManager creates a new storage manager based on config.
// "memory" is Badger in in-memory mode: same code path, nothing written to disk.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "badger", "":
		return badger.NewManager(logger, &config.Storage.Badger)
	case "memory":
		badgerConfig := config.Storage.Badger
		badgerConfig.InMemory = true
		return badger.NewManager(logger, &badgerConfig)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: 'badger', 'memory')", config.Storage.Type)
	}
}
