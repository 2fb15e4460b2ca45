package xmlship

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// Workflow sequences retrieval, encoding, optional persistence, and delivery
// for one collection. Each run builds its own WorkflowResult; a Workflow
// holds no mutable state and is safe for concurrent use.
type Workflow struct {
	source  Source
	encoder Encoder
	client  *Client
	cfg     WorkflowConfig
}

// WorkflowConfig defines workflow collaborators beyond the required three.
type WorkflowConfig struct {
	Writer    FileWriter
	OutputDir string
	Clock     Clock
	Logger    Logger
}

func (c WorkflowConfig) withDefaults() WorkflowConfig {
	if c.Writer == nil {
		c.Writer = OSFileWriter{}
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}

	return c
}

// WorkflowOption configures Workflow behavior.
type WorkflowOption func(*WorkflowConfig)

// WithFileWriter sets the persistence collaborator.
func WithFileWriter(writer FileWriter) WorkflowOption {
	return func(c *WorkflowConfig) {
		c.Writer = writer
	}
}

// WithOutputDir sets the directory for persisted documents.
func WithOutputDir(dir string) WorkflowOption {
	return func(c *WorkflowConfig) {
		c.OutputDir = dir
	}
}

// WithClock sets the workflow clock.
func WithClock(clock Clock) WorkflowOption {
	return func(c *WorkflowConfig) {
		c.Clock = clock
	}
}

// WithWorkflowLogger sets the workflow logger.
func WithWorkflowLogger(logger Logger) WorkflowOption {
	return func(c *WorkflowConfig) {
		c.Logger = logger
	}
}

// NewWorkflow constructs a Workflow with defaults and optional settings.
func NewWorkflow(source Source, encoder Encoder, client *Client, opts ...WorkflowOption) *Workflow {
	if source == nil {
		panic("xmlship: nil Source")
	}
	if encoder == nil {
		panic("xmlship: nil Encoder")
	}
	if client == nil {
		panic("xmlship: nil Client")
	}

	var cfg WorkflowConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Workflow{
		source:  source,
		encoder: encoder,
		client:  client,
		cfg:     cfg,
	}
}

type runConfig struct {
	saveToFile bool
	endpoint   string
}

// RunOption configures a single workflow run.
type RunOption func(*runConfig)

// WithSaveToFile persists the encoded document before delivery.
func WithSaveToFile() RunOption {
	return func(c *runConfig) {
		c.saveToFile = true
	}
}

// WithEndpoint overrides the client's default endpoint for this run.
func WithEndpoint(endpoint string) RunOption {
	return func(c *runConfig) {
		c.endpoint = endpoint
	}
}

// Run executes the workflow with a single delivery attempt. It never returns
// an error: failures, including panics in collaborators, are reported
// through the result.
func (w *Workflow) Run(ctx context.Context, collection string, opts ...RunOption) (result WorkflowResult) {
	rc := buildRunConfig(opts)
	result = w.newResult()
	defer w.recoverInto(&result, collection)

	if !w.prepare(ctx, collection, rc, &result) {
		return result
	}

	outcome := w.client.Post(ctx, rc.endpoint, result.XMLPayload, nil)

	return w.finish(result, outcome)
}

// RunWithRetry executes the workflow delivering with PostWithRetry. The
// preparation steps are shared with Run, so the recorded step list cannot
// drift between the two entry points.
func (w *Workflow) RunWithRetry(ctx context.Context, collection string, maxAttempts int, opts ...RunOption) (result WorkflowResult) {
	rc := buildRunConfig(opts)
	result = w.newResult()
	defer w.recoverInto(&result, collection)

	if !w.prepare(ctx, collection, rc, &result) {
		return result
	}

	outcome := w.client.PostWithRetry(ctx, rc.endpoint, result.XMLPayload, maxAttempts)

	return w.finish(result, outcome)
}

// prepare runs retrieval, encoding, and optional persistence, mutating the
// result in place. It reports whether delivery should proceed.
func (w *Workflow) prepare(ctx context.Context, collection string, rc runConfig, result *WorkflowResult) bool {
	records, err := w.source.Fetch(ctx, collection)
	if err != nil {
		w.cfg.Logger.Error("retrieval failed", "collection", collection, "err", err)
		result.ErrorMessage = err.Error()

		return false
	}
	if len(records) == 0 {
		w.cfg.Logger.Warn("collection is empty", "collection", collection)
		result.ErrorMessage = ErrNoData.Error()

		return false
	}
	result.RecordCount = len(records)
	result.StepsCompleted = append(result.StepsCompleted, StepRetrieval)

	text, err := w.encoder.Encode(records, collection)
	if err != nil {
		w.cfg.Logger.Error("encoding failed", "collection", collection, "err", err)
		result.ErrorMessage = err.Error()

		return false
	}
	result.XMLPayload = text
	result.StepsCompleted = append(result.StepsCompleted, StepConversion)

	if rc.saveToFile {
		path := filepath.Join(w.cfg.OutputDir, collection+".xml")
		if err := w.cfg.Writer.Write(path, []byte(text)); err != nil {
			w.cfg.Logger.Error("file save failed", "path", path, "err", err)
			result.ErrorMessage = err.Error()

			return false
		}
		result.OutputPath = path
		result.StepsCompleted = append(result.StepsCompleted, StepFileSave)
	}

	return true
}

func (w *Workflow) finish(result WorkflowResult, outcome DeliveryOutcome) WorkflowResult {
	result.Delivery = &outcome
	result.Success = outcome.Success

	if outcome.Success {
		result.StepsCompleted = append(result.StepsCompleted, StepDelivery)
		w.cfg.Logger.Info("collection delivered",
			"run_id", result.RunID,
			"records", result.RecordCount,
			"status", outcome.StatusCode,
		)

		return result
	}

	if result.ErrorMessage == "" {
		result.ErrorMessage = deliveryError(outcome)
	}
	w.cfg.Logger.Error("delivery failed",
		"run_id", result.RunID,
		"status", outcome.StatusCode,
		"err", result.ErrorMessage,
	)

	return result
}

func (w *Workflow) newResult() WorkflowResult {
	return WorkflowResult{
		RunID:          uuid.NewString(),
		Timestamp:      w.cfg.Clock.Now(),
		StepsCompleted: []string{},
	}
}

// recoverInto converts a collaborator panic into a failed result so the
// entry points never propagate one.
func (w *Workflow) recoverInto(result *WorkflowResult, collection string) {
	rec := recover()
	if rec == nil {
		return
	}
	w.cfg.Logger.Error("workflow panic", "collection", collection, "panic", rec)
	result.Success = false
	result.Delivery = nil
	result.ErrorMessage = fmt.Sprintf("%v", rec)
}

func buildRunConfig(opts []RunOption) runConfig {
	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}

	return rc
}

func deliveryError(outcome DeliveryOutcome) string {
	if outcome.StatusCode == StatusTransportFailure {
		return fmt.Sprintf("delivery failed: %s", outcome.Body)
	}

	return fmt.Sprintf("delivery failed with status %d", outcome.StatusCode)
}
