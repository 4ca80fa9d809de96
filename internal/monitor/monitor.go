// Package monitor polls the collector status and turns changes into events.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/snapcurator/internal/checksum"
	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
	"github.com/starford/snapcurator/internal/sse"
	"github.com/starford/snapcurator/internal/views"
)

// Publisher receives monitor events. *sse.Broker satisfies it.
type Publisher interface {
	Publish(event sse.Event)
	PublishPolled(data any)
}

// StepEvent is the payload of step.succeeded and step.failed.
type StepEvent struct {
	Step string `json:"step"`
	Name string `json:"name"`
	At   string `json:"at"`
}

// PollEvent is the payload of collector.polled.
type PollEvent struct {
	LastUpdated string `json:"last_updated,omitempty"`
	Error       string `json:"error,omitempty"`
}

type stepRuns struct {
	succeeded string
	failed    string
}

// Monitor periodically refetches the collector status. It publishes
// collector.updated only when the payload fingerprint changes, and a step
// event when a step records a new run.
type Monitor struct {
	collector *views.Collector
	pub       Publisher
	interval  time.Duration
	logger    *slog.Logger

	mu          sync.Mutex
	fingerprint string
	runs        map[string]stepRuns
}

// New creates a monitor over collector.
func New(collector *views.Collector, pub Publisher, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		collector: collector,
		pub:       pub,
		interval:  interval,
		logger:    logger,
	}
}

// Run mounts the status and polls it until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.observe(m.collector.Mount(ctx))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll refetches the status once and publishes what changed.
func (m *Monitor) Poll(ctx context.Context) request.Outcome[models.CollectorInfo] {
	out := m.collector.Refetch(ctx)
	m.observe(out)
	return out
}

// Latest returns the most recent status outcome.
func (m *Monitor) Latest() request.Outcome[models.CollectorInfo] {
	return m.collector.Outcome()
}

// RunStep triggers step and publishes the resulting status changes.
func (m *Monitor) RunStep(ctx context.Context, step string) (request.Outcome[models.RunStepResult], error) {
	out, err := m.collector.Run(ctx, step)
	if err != nil {
		return out, err
	}
	if request.Succeeded(out) {
		m.pub.Publish(sse.Event{Type: sse.TypeStepTriggered, Data: map[string]string{
			"step":    step,
			"message": m.collector.Message(),
		}})
		m.observe(m.collector.Outcome())
	}
	return out, nil
}

func (m *Monitor) observe(out request.Outcome[models.CollectorInfo]) {
	if out.Loading {
		return
	}
	if out.Failure != nil || out.Data == nil {
		m.pub.PublishPolled(PollEvent{Error: request.Message(out.Failure)})
		return
	}
	info := *out.Data
	m.pub.PublishPolled(PollEvent{LastUpdated: info.LastUpdated})

	sum, err := checksum.Of(info)
	if err != nil {
		m.logger.Error("fingerprint collector status", slog.String("error", err.Error()))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sum == m.fingerprint {
		return
	}
	m.fingerprint = sum
	m.pub.Publish(sse.Event{Type: sse.TypeCollectorUpdated, Data: info})

	known := m.runs != nil
	runs := make(map[string]stepRuns, len(info.PipelineSteps))
	for _, s := range info.PipelineSteps {
		cur := stepRuns{succeeded: s.LastSuccessfulRun, failed: s.LastFailedRun}
		runs[s.ID] = cur
		if !known {
			continue
		}
		prev := m.runs[s.ID]
		if cur.succeeded != "" && cur.succeeded != prev.succeeded {
			m.pub.Publish(sse.Event{Type: sse.TypeStepSucceeded, Data: StepEvent{Step: s.ID, Name: s.Name, At: cur.succeeded}})
		}
		if cur.failed != "" && cur.failed != prev.failed {
			m.pub.Publish(sse.Event{Type: sse.TypeStepFailed, Data: StepEvent{Step: s.ID, Name: s.Name, At: cur.failed}})
		}
	}
	m.runs = runs
	m.logger.Info("collector status changed",
		slog.String("last_updated", info.LastUpdated),
		slog.String("fingerprint", sum[:12]))
}
