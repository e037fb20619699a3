package report

import "go.uber.org/atomic"

type RunState struct {
	StartTimestamp atomic.Int64 `json:"start_timestamp"`
}

type RunReport struct {
	State RunState `json:"state"`
}
