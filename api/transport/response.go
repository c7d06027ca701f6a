package transport

import (
	"encoding/json"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API reply. Exactly one of Data or Error is set.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
	Meta   any    `json:"meta,omitempty"`
}

// ListMeta describes a paged listing.
type ListMeta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ServiceHealth is one backend row of the health report.
type ServiceHealth struct {
	Online bool   `json:"online"`
	Error  string `json:"error,omitempty"`
}

// HealthReport is the body of the health endpoint.
type HealthReport struct {
	Timestamp time.Time                `json:"timestamp"`
	Storage   string                   `json:"storage,omitempty"`
	Services  map[string]ServiceHealth `json:"services"`
}

func NewSuccess(data, meta any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewError builds a failure reply; code is one of the domain error codes or a
// transport specific marker such as DEGRADED.
func NewError(code, message string, meta any) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message, Meta: meta}
}

// OK reports whether the envelope carries a successful result.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// String renders the envelope for log lines.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
