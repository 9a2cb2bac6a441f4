package dynamo

import "fmt"

// Trajectory is an immutable sequence of states sampled at strictly
// increasing times. It is built once and only read afterwards.
type Trajectory struct {
	times  []float64
	states []State
	stats  Stats
}

// NewTrajectory copies times and states into a new Trajectory.
func NewTrajectory(times []float64, states []State, stats Stats) (*Trajectory, error) {
	if len(times) != len(states) {
		return nil, fmt.Errorf("%w: %d times, %d states", ErrDimensionMismatch, len(times), len(states))
	}
	if len(times) == 0 {
		return nil, ErrInvalidSamples
	}
	dim := len(states[0])
	tr := &Trajectory{
		times:  make([]float64, len(times)),
		states: make([]State, len(states)),
		stats:  stats,
	}
	copy(tr.times, times)
	for i, s := range states {
		if len(s) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(s), dim)
		}
		if i > 0 && !(times[i] > times[i-1]) {
			return nil, fmt.Errorf("dynamo: times not strictly increasing at row %d", i)
		}
		tr.states[i] = s.Clone()
	}
	return tr, nil
}

func (tr *Trajectory) Len() int {
	return len(tr.times)
}

func (tr *Trajectory) Dim() int {
	return len(tr.states[0])
}

func (tr *Trajectory) Time(i int) float64 {
	return tr.times[i]
}

// State returns a copy of the i-th sample.
func (tr *Trajectory) State(i int) State {
	return tr.states[i].Clone()
}

// Times returns a copy of the time column.
func (tr *Trajectory) Times() []float64 {
	out := make([]float64, len(tr.times))
	copy(out, tr.times)
	return out
}

// Column returns state component j over all samples.
func (tr *Trajectory) Column(j int) []float64 {
	out := make([]float64, len(tr.states))
	for i, s := range tr.states {
		out[i] = s[j]
	}
	return out
}

func (tr *Trajectory) Span() Span {
	return Span{Start: tr.times[0], End: tr.times[len(tr.times)-1]}
}

func (tr *Trajectory) Stats() Stats {
	return tr.stats
}

// Each calls fn for every sample in time order. The state passed to fn is
// a copy.
func (tr *Trajectory) Each(fn func(i int, t float64, x State)) {
	for i := range tr.times {
		fn(i, tr.times[i], tr.states[i].Clone())
	}
}
