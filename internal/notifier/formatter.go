package notifier

import (
	"fmt"
	"strings"

	"MACross/internal/backtest"
	"MACross/internal/model"
)

// FormatRunReport formats a backtest result into a Telegram HTML message.
func FormatRunReport(res *backtest.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", res.Symbol, res.Strategy))
	if n := len(res.Bars); n > 0 {
		b.WriteString(fmt.Sprintf("Period: %s → %s (%d bars)\n",
			res.Bars[0].Time.Format("2006-01-02"), res.Bars[n-1].Time.Format("2006-01-02"), n))
	}

	sig, ret, ok := res.Last()
	if ok {
		b.WriteString(fmt.Sprintf("Close: %.2f | short MA: %.2f | long MA: %.2f\n",
			ret.AdjClose, sig.ShortMAvg, sig.LongMAvg))
		state := "flat"
		if sig.Position > 0 {
			state = fmt.Sprintf("long %.0f shares", ret.Shares)
		}
		b.WriteString(fmt.Sprintf("Position: %s\n", state))
	}

	if n := len(res.Markers); n > 0 {
		m := res.Markers[n-1]
		icon := "🔺"
		if m.Side == model.SideSell {
			icon = "🔻"
		}
		b.WriteString(fmt.Sprintf("Last trade: %s %s on %s\n", icon, m.Side, m.Time.Format("2006-01-02")))
	}

	b.WriteString(fmt.Sprintf("\n💰 Final equity: $%.2f (%+.2f%%)\n", res.FinalEquity, res.TotalReturn*100))
	b.WriteString(fmt.Sprintf("Trades: %d\n", len(res.Markers)))
	return b.String()
}
