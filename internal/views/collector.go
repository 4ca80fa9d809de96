package views

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/snapcurator/internal/apperr"
	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

// Collector shows the pipeline status and triggers single steps.
type Collector struct {
	status *request.Fetcher[models.CollectorInfo]
	run    *request.Controller[models.RunStepResult]
}

// NewCollector creates the collector status view.
func NewCollector(c *request.Client) *Collector {
	return &Collector{
		status: request.NewFetcher[models.CollectorInfo](c, "/api/settings"),
		run:    request.NewController[models.RunStepResult](c),
	}
}

// Mount loads the collector status once.
func (v *Collector) Mount(ctx context.Context) request.Outcome[models.CollectorInfo] {
	return v.status.Mount(ctx)
}

// Refetch reloads the pipeline status.
func (v *Collector) Refetch(ctx context.Context) request.Outcome[models.CollectorInfo] {
	return v.status.Refetch(ctx)
}

// Outcome returns the status outcome.
func (v *Collector) Outcome() request.Outcome[models.CollectorInfo] { return v.status.Outcome() }

// Watch observes the status fetcher.
func (v *Collector) Watch(fn func(request.Outcome[models.CollectorInfo])) func() {
	return v.status.Watch(fn)
}

// ValidateStep checks that step names a pipeline step.
func ValidateStep(step string) error {
	allowed := make([]any, len(models.PipelineSteps))
	for i, s := range models.PipelineSteps {
		allowed[i] = s
	}
	if err := validation.Validate(step, validation.Required, validation.In(allowed...)); err != nil {
		return fmt.Errorf("%w %q: %v", apperr.ErrInvalidStep, step, err)
	}
	return nil
}

// Run triggers step and reloads the status once the backend accepted it.
func (v *Collector) Run(ctx context.Context, step string) (request.Outcome[models.RunStepResult], error) {
	if err := ValidateStep(step); err != nil {
		return v.run.Outcome(), err
	}
	out := v.run.Invoke(ctx, "/api/run_pipeline_step", request.Options{
		Method: http.MethodPost,
		Body:   models.RunStepRequest{StepName: step},
	})
	if request.Succeeded(out) {
		v.status.Refetch(ctx)
	}
	return out, nil
}

// Message returns the backend's answer to the last successful run.
func (v *Collector) Message() string {
	if d := v.run.Outcome().Data; d != nil {
		return d.Message
	}
	return ""
}

// Error returns the message to render, the run failure first.
func (v *Collector) Error() string {
	if msg := v.run.Outcome().Error; msg != "" {
		return msg
	}
	return v.status.Outcome().Error
}

// Close releases both controllers.
func (v *Collector) Close() {
	v.status.Close()
	v.run.Close()
}
