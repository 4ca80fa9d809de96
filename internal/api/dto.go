package api

import (
	"time"

	"github.com/starford/snapcurator/internal/models"
)

// StatusResponse is the latest collector status as seen by the monitor.
type StatusResponse struct {
	Data    *models.CollectorInfo `json:"data"`
	Loading bool                  `json:"loading"`
	Error   string                `json:"error,omitempty"`
}

// RunStepResponse acknowledges a triggered pipeline step.
type RunStepResponse struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// HistoryEntry is one journaled mutation.
type HistoryEntry struct {
	At         time.Time `json:"at"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	Outcome    string    `json:"outcome"`
	Applied    bool      `json:"applied"`
	DurationMS int64     `json:"duration_ms"`
}

// HistoryResponse wraps the journal listing.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}
