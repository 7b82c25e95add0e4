package domain

// Direction represents the side of a binary-options trade (CALL or PUT).
type Direction string

const (
	Call Direction = "CALL"
	Put  Direction = "PUT"
)

// IsValid reports whether the direction is one of the two supported sides.
func (d Direction) IsValid() bool {
	return d == Call || d == Put
}

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	StatusOpen TradeStatus = "open"
	StatusWon  TradeStatus = "won"
	StatusLost TradeStatus = "lost"
)

// IsTerminal reports whether the status is a settled (final) state.
func (s TradeStatus) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}
