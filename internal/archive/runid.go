package archive

import (
	"time"

	"github.com/google/uuid"

	"pixal/internal/config"
)

// TimestampLayout formats timestamp-mode run identifiers.
const TimestampLayout = "20060102_150405"

// DefaultRunID is used when run identifiers are disabled.
const DefaultRunID = "default"

// NewRunID derives the identifier for a run starting at now.
func NewRunID(cfg *config.Config, now time.Time) string {
	if !cfg.Runtime.EnableRunIDs {
		return DefaultRunID
	}
	switch cfg.Runtime.RunIDMode {
	case "uuid":
		return uuid.NewString()
	default:
		return now.Format(TimestampLayout)
	}
}
