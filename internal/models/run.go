package models

const (
	RunStatusValid      = "valid"
	RunStatusInvalid    = "invalid"
	RunStatusLoadFailed = "load_failed"
)

// ValidationRun is the record of one invocation, published as an event and kept as run history.
type ValidationRun struct {
	ID             string   `json:"id"`
	Dataset        string   `json:"dataset"`
	Status         string   `json:"status"`
	Errors         []string `json:"errors"`
	ErrorCount     int      `json:"errorCount"`
	Orders         int      `json:"orders"`
	ExportLocation string   `json:"exportLocation,omitempty"`
	Timestamp      int64    `json:"timestamp"`
}
