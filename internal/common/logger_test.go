package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogger_DefaultIsShared(t *testing.T) {
	first := GetLogger()
	assert.NotNil(t, first)
	assert.Same(t, first, GetLogger())
}

func TestInitLogger_ReplacesGlobal(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Output = []string{"stdout"}
	config.Logging.Level = "debug"

	logger := InitLogger(config)

	assert.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())
}

func TestInitLogger_FileOutput(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Output = []string{"file"}
	config.Logging.Dir = t.TempDir()

	logger := InitLogger(config)
	logger.Info().Msg("file output")

	assert.Same(t, logger, GetLogger())
}
