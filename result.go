package xmlship

import "time"

// Step names recorded in WorkflowResult.StepsCompleted, in execution order.
// A name is appended only when its step finished successfully.
const (
	StepRetrieval  = "Database Retrieval"
	StepConversion = "XML Conversion"
	StepFileSave   = "File Save"
	StepDelivery   = "REST Posting"
)

// WorkflowResult aggregates one export run. It is built incrementally while
// the workflow executes and never mutated after it is returned.
type WorkflowResult struct {
	RunID          string           `json:"run_id"`
	Success        bool             `json:"success"`
	RecordCount    int              `json:"record_count"`
	XMLPayload     string           `json:"xml_payload,omitempty"`
	OutputPath     string           `json:"output_path,omitempty"`
	Delivery       *DeliveryOutcome `json:"delivery_outcome,omitempty"`
	StepsCompleted []string         `json:"steps_completed"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}
