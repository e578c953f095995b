package common

import (
	"github.com/google/uuid"
)

// NewSearchID generates a unique ID used to correlate the log lines of one search
// Format: search_<uuid>
func NewSearchID() string {
	return "search_" + uuid.New().String()
}
