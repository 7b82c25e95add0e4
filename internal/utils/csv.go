package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"optionSim/internal/domain"
)

// WriteTradesToCSV dumps settled trades to a CSV file, one row per trade.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"id", "symbol", "direction", "amount", "entry_price", "settle_price", "payout", "profit", "status", "opened_at", "settled_at"})

	for _, t := range trades {
		writer.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Direction),
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.SettlePrice, 'f', -1, 64),
			strconv.FormatFloat(t.Payout, 'f', -1, 64),
			strconv.FormatFloat(t.Profit(), 'f', -1, 64),
			string(t.Status),
			t.OpenedAt.Format(time.RFC3339),
			t.SettledAt.Format(time.RFC3339),
		})
	}
	return writer.Error()
}
