package report

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"MACross/internal/analysis"
	"MACross/internal/backtest"
)

const dateLayout = "2006-01-02"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func num(v float64, prec int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// SummaryTable renders the headline numbers of a run.
func SummaryTable(res *backtest.Result) string {
	t := newTable("", "")
	t.Row("Symbol", res.Symbol)
	t.Row("Source", res.Source)
	t.Row("Strategy", res.Strategy)
	if n := len(res.Bars); n > 0 {
		t.Row("Period", res.Bars[0].Time.Format(dateLayout)+" → "+res.Bars[n-1].Time.Format(dateLayout))
	}
	t.Row("Bars", fmt.Sprint(len(res.Bars)))
	t.Row("Trades", fmt.Sprint(len(res.Markers)))
	t.Row("Initial capital", num(res.InitialCapital, 2))
	t.Row("Final equity", num(res.FinalEquity, 2))
	t.Row("Total return", num(res.TotalReturn*100, 2)+"%")
	if sig, ret, ok := res.Last(); ok {
		t.Row("Last position", fmt.Sprintf("%.0f shares (signal %.0f)", ret.Shares, sig.Position))
	}
	return t.String()
}

// TradesTable lists every buy and sell with the equity at that bar.
func TradesTable(res *backtest.Result) string {
	t := newTable("Date", "Side", "Adj Close", "Short MA", "Long MA", "Total")
	for _, m := range res.Markers {
		sig := res.Signals[m.Index]
		ret := res.Returns[m.Index]
		t.Row(
			m.Time.Format(dateLayout),
			string(m.Side),
			num(ret.AdjClose, 2),
			num(sig.ShortMAvg, 2),
			num(sig.LongMAvg, 2),
			num(ret.Total, 2),
		)
	}
	return t.String()
}

// ExploreTable prints the annotated bars. When there are more than 2*edge
// rows only the first and last edge rows are shown.
func ExploreTable(ex *analysis.Exploration, edge int) string {
	t := newTable("Date", "Open", "High", "Low", "Close", "Adj Close", "Volume", "Chg", "VChg")
	n := len(ex.Bars)
	for i, b := range ex.Bars {
		if edge > 0 && n > 2*edge && i >= edge && i < n-edge {
			if i == edge {
				t.Row("...", "...", "...", "...", "...", "...", "...", "...", "...")
			}
			continue
		}
		t.Row(
			b.Time.Format(dateLayout),
			num(b.Open, 2),
			num(b.High, 2),
			num(b.Low, 2),
			num(b.Close, 2),
			num(b.AdjClose, 2),
			num(b.Volume, 0),
			num(b.CloseChange, 2),
			num(b.VolumeChange, 0),
		)
	}
	return t.String()
}
