package scoring

// courtState is who serves and where everyone stands.
type courtState struct {
	Server Side
	TeamA  Team
	TeamB  Team
}

func (c courtState) team(s Side) Team {
	if s == SideA {
		return c.TeamA
	}
	return c.TeamB
}

func (c courtState) withTeam(s Side, t Team) courtState {
	if s == SideA {
		c.TeamA = t
	} else {
		c.TeamB = t
	}
	return c
}

// afterRally applies the serve and position rules for a rally won by winner.
//
// If the serving side wins, its two players change courts and it keeps the
// serve. If the receiving side wins, nobody moves and the serve passes to it.
func (c courtState) afterRally(winner Side) courtState {
	if winner == c.Server {
		return c.withTeam(winner, c.team(winner).Swapped())
	}
	c.Server = winner
	return c
}

// ServiceCourt returns the court a side serves from given its own score in the current game.
func ServiceCourt(teamScore int) Court {
	if teamScore%2 == 0 {
		return CourtRight
	}
	return CourtLeft
}
