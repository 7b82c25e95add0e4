package domain

import "time"

// Trade represents a single binary-options trade. Identity fields are fixed at
// placement; SettlePrice, Payout, SettledAt and Status are written exactly once
// when the trade settles.
type Trade struct {
	ID          string      // Unique identifier assigned at placement
	Symbol      string      // Instrument symbol (e.g., "EUR/USD")
	Direction   Direction   // CALL or PUT
	Amount      float64     // Stake debited from the balance at placement
	EntryPrice  float64     // Instrument price captured at placement
	SettlePrice float64     // Instrument price at settlement (0 while open)
	Payout      float64     // Total credited on a win, 0 on a loss or while open
	OpenedAt    time.Time   // Timestamp of placement
	ExpiresAt   time.Time   // Timestamp at which the trade becomes due
	SettledAt   time.Time   // Timestamp of settlement (zero value while open)
	Status      TradeStatus // open, won or lost
}

// IsOpen checks if the trade has not settled yet.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// Profit returns the realized profit of a settled trade: payout minus stake on
// a win, the forfeited stake on a loss. Open trades have no realized profit.
func (t *Trade) Profit() float64 {
	switch t.Status {
	case StatusWon:
		return t.Payout - t.Amount
	case StatusLost:
		return -t.Amount
	default:
		return 0
	}
}

// TradeReceipt is returned by a successful placement.
type TradeReceipt struct {
	TradeID    string    `json:"trade_id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Amount     float64   `json:"amount"`
	EntryPrice float64   `json:"entry_price"`
	ExpiresAt  time.Time `json:"expires_at"`
	Balance    float64   `json:"balance"`
}

// ActiveTradeView is a read-only snapshot of an open trade, including the
// current price and a derived winning flag using the same comparison rule as
// settlement. Informational only; settlement re-evaluates at expiry.
type ActiveTradeView struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Direction     Direction `json:"direction"`
	Amount        float64   `json:"amount"`
	EntryPrice    float64   `json:"entry_price"`
	CurrentPrice  float64   `json:"current_price"`
	RemainingSecs int64     `json:"remaining_seconds"`
	Winning       bool      `json:"winning"`
}

// WinsAt applies the settlement comparison rule at the given price.
// CALL wins iff the price rose above entry, PUT wins iff it fell below.
// Equality is a loss for both directions.
func (t *Trade) WinsAt(price float64) bool {
	if t.Direction == Call {
		return price > t.EntryPrice
	}
	return price < t.EntryPrice
}
