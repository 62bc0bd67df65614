package ranking

import (
	"fmt"
	"strings"
	"time"
)

// FormatElapsed renders milliseconds as mm:ss.mmm.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}

// FormatDate renders a play time as dd/MM/yyyy HH:mm.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// FormatRank renders a rank with two decimals.
func FormatRank(rank float64) string {
	return fmt.Sprintf("%.2f", rank)
}

// Table renders records as a fixed-width text table, one line per record.
func Table(records []Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-3s %-20s %7s %10s %9s  %-16s %s\n", "#", "PLAYER", "SCORE", "TIME", "PTS/S", "DATE", "FRUITS")
	for i, r := range records {
		fmt.Fprintf(&b, "%-3d %-20s %7d %10s %9s  %-16s %s\n",
			i+1, r.PlayerName, r.TotalScore, FormatElapsed(r.ElapsedMillis),
			FormatRank(r.Rank), FormatDate(r.PlayedAt), strings.Join(r.FruitsEaten, ", "))
	}
	return b.String()
}
