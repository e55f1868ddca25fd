package scoring

// View is a read-only rendering of a match, safe to hand to other goroutines.
type View struct {
	Status          Status      `json:"status"`
	Scores          []GameScore `json:"scores"`
	CurrentGame     int         `json:"currentGame"`
	Server          Side        `json:"server"`
	ServingCourt    Court       `json:"servingCourt"`
	ServingPlayer   Player      `json:"servingPlayer"`
	ReceivingPlayer Player      `json:"receivingPlayer"`
	TeamA           Team        `json:"teamA"`
	TeamB           Team        `json:"teamB"`
	WinsA           int         `json:"winsA"`
	WinsB           int         `json:"winsB"`
	ElapsedSeconds  int         `json:"elapsedSeconds"`
	Clock           string      `json:"clock"`
	ClockRunning    bool        `json:"clockRunning"`
	Winner          Side        `json:"winner,omitempty"`
	CanAddPoint     bool        `json:"canAddPoint"`
	CanUndo         bool        `json:"canUndo"`
}

// View captures the current match state.
func (m *Match) View() View {
	winsA, winsB := m.Wins()
	elapsed := m.clock.ElapsedSeconds()
	v := View{
		Status:          m.Status(),
		Scores:          m.Scores(),
		CurrentGame:     m.current,
		Server:          m.court.Server,
		ServingCourt:    m.ServingCourt(),
		ServingPlayer:   m.ServingPlayer(),
		ReceivingPlayer: m.ReceivingPlayer(),
		TeamA:           m.court.TeamA,
		TeamB:           m.court.TeamB,
		WinsA:           winsA,
		WinsB:           winsB,
		ElapsedSeconds:  elapsed,
		Clock:           FormatElapsed(elapsed),
		ClockRunning:    m.clock.Running(),
		CanAddPoint:     m.CanAddPoint(),
		CanUndo:         m.CanUndo(),
	}
	if m.result != nil {
		v.Winner = m.result.Winner
	}
	return v
}
