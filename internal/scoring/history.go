package scoring

// Snapshot is a complete copy of the mutable match state taken before a rally is applied.
type Snapshot struct {
	Scores        []GameScore
	CurrentGame   int
	Server        Side
	TeamA         Team
	TeamB         Team
	GameCompleted bool
}

func (s Snapshot) clone() Snapshot {
	s.Scores = append([]GameScore(nil), s.Scores...)
	return s
}

// History is a LIFO stack of snapshots.
// Entries are cloned on the way in and on the way out so no caller can alias them.
type History struct {
	entries []Snapshot
}

// Push records s as the most recent entry.
func (h *History) Push(s Snapshot) {
	h.entries = append(h.entries, s.clone())
}

// Pop removes and returns the most recent entry.
// It reports false when there is nothing to undo.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return Snapshot{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries[len(h.entries)-1] = Snapshot{}
	h.entries = h.entries[:len(h.entries)-1]
	return last.clone(), true
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear drops every entry.
func (h *History) Clear() {
	h.entries = nil
}
