package models

// Pipeline step ids accepted by POST /api/run_pipeline_step.
const (
	StepCollect     = "collect"
	StepFilter      = "filter"
	StepExtraFields = "extra_fields"
	StepScore       = "score"
)

// PipelineSteps lists every step id in pipeline order.
var PipelineSteps = []string{StepCollect, StepFilter, StepExtraFields, StepScore}

// CollectorStep is the latest run information for one pipeline step.
type CollectorStep struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Success           *bool  `json:"success"`
	Message           string `json:"message,omitempty"`
	LastSuccessfulRun string `json:"last_successful_run"`
	LastFailedRun     string `json:"last_failed_run"`
}

// CollectorInfo is the payload of GET /api/settings.
type CollectorInfo struct {
	LastUpdated   string          `json:"last_updated"`
	PipelineSteps []CollectorStep `json:"pipeline_steps"`
}

// RunStepRequest is the body of POST /api/run_pipeline_step.
type RunStepRequest struct {
	StepName string `json:"step_name"`
}

// RunStepResult is the answer to POST /api/run_pipeline_step.
type RunStepResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
