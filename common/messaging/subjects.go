package messaging

// Subject constants for the opsboard message bus.
// Follow the pattern: {domain}.{resource}
const (
	// SubjectWorkflowEvents carries JSON-encoded workflow events.
	SubjectWorkflowEvents = "workflow.events"
)
