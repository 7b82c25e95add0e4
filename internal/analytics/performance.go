package analytics

import (
	"sort"
	"time"

	"optionSim/internal/domain"
)

// Summary holds session performance metrics derived from settled trades.
// Stakes are fixed per trade, so the usual position-sizing metrics reduce to
// counts, streaks and stake-denominated profit figures.
type Summary struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	TotalStaked float64 `json:"total_staked"`
	GrossPayout float64 `json:"gross_payout"`
	NetProfit   float64 `json:"net_profit"`
	AverageWin  float64 `json:"average_win"`
	AverageLoss float64 `json:"average_loss"`
	// ProfitFactor is gross win profit divided by gross loss.
	ProfitFactor float64 `json:"profit_factor"`

	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	FinalBalance       float64 `json:"final_balance"`
	ReturnOnInvestment float64 `json:"return_on_investment"`
}

// Analyze calculates performance metrics from settled trades and the balance
// the session started with. Open trades are ignored.
func Analyze(trades []*domain.Trade, initialBalance float64) *Summary {
	s := &Summary{FinalBalance: initialBalance}
	if len(trades) == 0 {
		return s
	}

	// Process in settlement order regardless of the order handed in.
	ordered := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Status.IsTerminal() {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SettledAt.Before(ordered[j].SettledAt)
	})

	var grossWin, grossLoss float64
	var consecutiveWins, consecutiveLosses int

	for _, trade := range ordered {
		profit := trade.Profit()
		s.TotalTrades++
		s.TotalStaked += trade.Amount
		s.GrossPayout += trade.Payout
		s.NetProfit += profit
		s.FinalBalance += profit

		if trade.Status == domain.StatusWon {
			s.WinningTrades++
			grossWin += profit
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			s.LosingTrades++
			grossLoss += -profit
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = consecutiveLosses
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	}
	if s.WinningTrades > 0 {
		s.AverageWin = grossWin / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = grossLoss / float64(s.LosingTrades)
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossWin / grossLoss
	}
	if initialBalance > 0 {
		s.ReturnOnInvestment = s.NetProfit / initialBalance
	}
	return s
}

// AverageTradeDuration returns the mean open-to-settlement duration of the
// given settled trades.
func AverageTradeDuration(trades []*domain.Trade) time.Duration {
	var total time.Duration
	var n int
	for _, t := range trades {
		if !t.Status.IsTerminal() {
			continue
		}
		total += t.SettledAt.Sub(t.OpenedAt)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}
