package markov

// ModelStats holds aggregated statistics for a single Markov model.
type ModelStats struct {
	Order               int `json:"order"`                // The n-gram size.
	States              int `json:"states"`               // The number of states with outgoing transitions.
	Transitions         int `json:"transitions"`          // The number of unique state->next links.
	TerminalTransitions int `json:"terminal_transitions"` // Links whose next state runs into the end-marker.
	MaxBranching        int `json:"max_branching"`        // The largest number of next states of any state.
}

// Stats returns a snapshot of statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		Order:  m.order,
		States: len(m.states),
	}
	for _, row := range m.rows {
		stats.Transitions += len(row)
		if len(row) > stats.MaxBranching {
			stats.MaxBranching = len(row)
		}
		for _, t := range row {
			if t.Next.IsTerminal() {
				stats.TerminalTransitions++
			}
		}
	}
	return stats
}
