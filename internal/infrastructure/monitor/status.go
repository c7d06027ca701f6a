package monitor

import "time"

// BackendStatus is the last check result for one backend.
type BackendStatus struct {
	Online bool   `json:"online"`
	Error  string `json:"error,omitempty"`
}

type Status struct {
	Healthy   bool                     `json:"healthy"`
	Backends  map[string]BackendStatus `json:"backends"`
	LastCheck time.Time                `json:"last_check"`
}
