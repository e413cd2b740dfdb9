package markov

import (
	"sort"
	"strings"
)

// State is an n-gram: exactly n tokens joined by a single space.
type State string

const (
	// NoState is returned when there is no prediction for a state.
	NoState State = ""
	// EndMarker stands in for a window position past the end of the token
	// sequence. It is a control character, so the Cleaner can never produce it.
	EndMarker State = "\x03"
)

// IsTerminal reports whether s contains at least one end-marker position.
func (s State) IsTerminal() bool {
	return strings.Contains(string(s), string(EndMarker))
}

// Tokens splits s back into its tokens. End-marker positions are kept.
func (s State) Tokens() []string {
	return strings.Fields(string(s))
}

// Transition is one outgoing edge of a state with its probability.
type Transition struct {
	Next        State
	Probability float64
}

// Model maps each state to the probability distribution over the states that
// follow it. A Model is never modified after BuildModel returns it.
type Model struct {
	order  int
	states []State                // sorted, for reproducible sampling
	rows   map[State][]Transition // each row sorted by Next
}

func newEmptyModel(order int) *Model {
	return &Model{order: order, rows: make(map[State][]Transition)}
}

// Order returns the n-gram size the model was built with.
func (m *Model) Order() int {
	return m.order
}

// Len returns the number of states in the model.
func (m *Model) Len() int {
	return len(m.states)
}

// IsEmpty reports whether the model has no states.
func (m *Model) IsEmpty() bool {
	return len(m.states) == 0
}

// Has reports whether s is a key of the model.
func (m *Model) Has(s State) bool {
	_, ok := m.rows[s]
	return ok
}

// States returns a copy of the model's state keys in sorted order.
func (m *Model) States() []State {
	out := make([]State, len(m.states))
	copy(out, m.states)
	return out
}

// Row returns a copy of the transitions of s, sorted by next state, or nil
// if s is not in the model.
func (m *Model) Row(s State) []Transition {
	row, ok := m.rows[s]
	if !ok {
		return nil
	}
	out := make([]Transition, len(row))
	copy(out, row)
	return out
}

// Transitions returns the distribution of s as a map, or nil if s is not in
// the model.
func (m *Model) Transitions(s State) map[State]float64 {
	row, ok := m.rows[s]
	if !ok {
		return nil
	}
	probs := make(map[State]float64, len(row))
	for _, t := range row {
		probs[t.Next] = t.Probability
	}
	return probs
}

// finalize normalizes raw counts into a new Model. It runs exactly once per
// build, after every count has been accumulated.
func finalize(order int, counts map[State]map[State]int) *Model {
	m := newEmptyModel(order)
	m.states = make([]State, 0, len(counts))

	for cur, nexts := range counts {
		var total int
		for _, c := range nexts {
			total += c
		}
		if total == 0 {
			continue
		}
		row := make([]Transition, 0, len(nexts))
		for next, c := range nexts {
			row = append(row, Transition{Next: next, Probability: float64(c) / float64(total)})
		}
		sort.Slice(row, func(i, j int) bool {
			return row[i].Next < row[j].Next
		})
		m.rows[cur] = row
		m.states = append(m.states, cur)
	}

	sort.Slice(m.states, func(i, j int) bool {
		return m.states[i] < m.states[j]
	})
	return m
}
