package aggregate

import "github.com/nao1215/listat/internal/model"

// Status is the lifecycle of one batch.
type Status int

const (
	// StatusLoading means the batch has started and no table exists yet.
	StatusLoading Status = iota

	// StatusFailed means the batch could not complete as a whole.
	StatusFailed

	// StatusReady means the table is available.
	StatusReady
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is the complete, immutable view state of a batch. Transitions return
// new values.
type State struct {
	period model.Period
	status Status
	table  Table
	err    error
}

// Loading returns the initial state for a batch of period.
func Loading(period model.Period) State {
	return State{period: period, status: StatusLoading}
}

// Ready returns the state after the batch produced table.
func (s State) Ready(table Table) State {
	return State{period: s.period, status: StatusReady, table: table}
}

// Failed returns the state after the batch failed with err.
func (s State) Failed(err error) State {
	return State{period: s.period, status: StatusFailed, err: err}
}

// Select changes the selected date of a ready state.
func (s State) Select(token string) (State, error) {
	if s.status != StatusReady {
		return s, ErrNotReady
	}
	table, err := s.table.Select(token)
	if err != nil {
		return s, err
	}
	s.table = table
	return s, nil
}

// Period returns the batch period.
func (s State) Period() model.Period { return s.period }

// Status returns the batch status.
func (s State) Status() Status { return s.status }

// Err returns the failure of a failed state.
func (s State) Err() error { return s.err }

// Table returns the table of a ready state.
func (s State) Table() (Table, error) {
	if s.status != StatusReady {
		return Table{}, ErrNotReady
	}
	return s.table, nil
}
