package engine

import "time"

// UnitResult records the outcome of one unit in a run.
type UnitResult struct {
	Name     string
	Path     string
	Duration time.Duration
	Err      error
}

// OK reports whether the unit ran to completion.
func (r UnitResult) OK() bool { return r.Err == nil }

// Summary collects per-unit results for a run, in execution order.
type Summary struct {
	Results []UnitResult
}

func (s *Summary) add(r UnitResult) {
	s.Results = append(s.Results, r)
}

// FailureCount returns the number of failed units.
func (s *Summary) FailureCount() int {
	n := 0
	for _, r := range s.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// SuccessCount returns the number of completed units.
func (s *Summary) SuccessCount() int {
	return len(s.Results) - s.FailureCount()
}
