package model

// ErrorLocation points at the query text position a failure originated from.
type ErrorLocation struct {
	LineNumber   int `json:"lineNumber"`
	ColumnNumber int `json:"columnNumber"`
}

// ExecutionFailureInfo describes why a stage or task failed. The aggregator
// passes it through unmodified.
type ExecutionFailureInfo struct {
	Type          string                `json:"type"`
	Message       string                `json:"message,omitempty"`
	Cause         *ExecutionFailureInfo `json:"cause,omitempty"`
	Stack         []string              `json:"stack,omitempty"`
	ErrorLocation *ErrorLocation        `json:"errorLocation,omitempty"`
	ErrorCode     int                   `json:"errorCode,omitempty"`
	ErrorName     string                `json:"errorName,omitempty"`
	RemoteHost    string                `json:"remoteHost,omitempty"`
}

// Error implements the error interface.
func (f *ExecutionFailureInfo) Error() string {
	if f.Message != "" {
		return f.Type + ": " + f.Message
	}
	return f.Type
}
