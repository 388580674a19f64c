package models

// Status is the classifier outcome for one reading against one range.
type Status string

const (
	StatusCritical   Status = "critical"
	StatusAcceptable Status = "acceptable"
	StatusOptimal    Status = "optimal"
)

// Severity tells the presentation layer whether an advisory blocks work.
type Severity string

const (
	SeverityCritical Severity = "critical" // Blocking: postpone the operation
	SeverityInfo     Severity = "info"     // Suggestion: amendment, not a blocker
	SeverityOk       Severity = "ok"
)

// Advisory is one generated recommendation tied to one parameter.
type Advisory struct {
	Parameter Parameter `json:"parameter"`
	Severity  Severity  `json:"severity"`
	Status    Status    `json:"status"`
	Value     float64   `json:"value"`
	Range     Range     `json:"range"`
	Message   string    `json:"message"`
}
