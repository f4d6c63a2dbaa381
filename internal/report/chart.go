// Package report renders backtest results for people: a PNG chart and
// terminal tables.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"MACross/internal/backtest"
	"MACross/internal/model"
)

var (
	colorClose   = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	colorShort   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorLong    = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorEquity  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorBuy     = color.RGBA{R: 191, G: 0, B: 191, A: 255}
	colorSell    = color.RGBA{A: 255}
	chartWidth   = 12 * vg.Inch
	chartHeight  = 8 * vg.Inch
	markerRadius = vg.Points(5)
)

// RenderChart writes a two-panel PNG to path: close price with both moving
// averages and trade markers on top, the equity curve with the same markers
// below.
func RenderChart(res *backtest.Result, path string) error {
	if len(res.Bars) == 0 {
		return fmt.Errorf("render chart: empty result")
	}

	price, err := pricePlot(res)
	if err != nil {
		return fmt.Errorf("price panel: %w", err)
	}
	equity, err := equityPlot(res)
	if err != nil {
		return fmt.Errorf("equity panel: %w", err)
	}

	img := vgimg.New(chartWidth, chartHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Points(10), PadTop: vg.Points(5), PadBottom: vg.Points(5)}
	plots := [][]*plot.Plot{{price}, {equity}}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		plots[row][0].Draw(canvases[row][0])
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return f.Close()
}

func pricePlot(res *backtest.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s", res.Symbol, res.Strategy)
	p.Y.Label.Text = "Price in $"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Legend.Top = true
	p.Legend.Left = true

	closes := make(plotter.XYs, len(res.Bars))
	for i, b := range res.Bars {
		closes[i] = plotter.XY{X: float64(b.Time.Unix()), Y: b.Close}
	}
	shortMA := make(plotter.XYs, len(res.Signals))
	longMA := make(plotter.XYs, len(res.Signals))
	for i, s := range res.Signals {
		x := float64(s.Time.Unix())
		shortMA[i] = plotter.XY{X: x, Y: s.ShortMAvg}
		longMA[i] = plotter.XY{X: x, Y: s.LongMAvg}
	}

	series := []struct {
		name  string
		xys   plotter.XYs
		color color.Color
	}{
		{"Close", closes, colorClose},
		{"short_mavg", shortMA, colorShort},
		{"long_mavg", longMA, colorLong},
	}
	for _, s := range series {
		l, err := plotter.NewLine(s.xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = s.color
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(s.name, l)
	}

	if err := addMarkers(p, res.Markers, func(m model.TradeMarker) float64 { return m.Price }); err != nil {
		return nil, err
	}
	return p, nil
}

func equityPlot(res *backtest.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = "Portfolio value in $"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	total := make(plotter.XYs, len(res.Returns))
	for i, r := range res.Returns {
		total[i] = plotter.XY{X: float64(r.Time.Unix()), Y: r.Total}
	}
	l, err := plotter.NewLine(total)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = colorEquity
	l.LineStyle.Width = vg.Points(1.5)
	p.Add(l)

	returns := res.Returns
	err = addMarkers(p, res.Markers, func(m model.TradeMarker) float64 { return returns[m.Index].Total })
	return p, err
}

// addMarkers overlays buy (triangle) and sell (cross) glyphs at the marker
// dates, using y to place each one.
func addMarkers(p *plot.Plot, markers []model.TradeMarker, y func(model.TradeMarker) float64) error {
	var buys, sells plotter.XYs
	for _, m := range markers {
		pt := plotter.XY{X: float64(m.Time.Unix()), Y: y(m)}
		if m.Side == model.SideBuy {
			buys = append(buys, pt)
		} else {
			sells = append(sells, pt)
		}
	}

	groups := []struct {
		name  string
		xys   plotter.XYs
		shape draw.GlyphDrawer
		color color.Color
	}{
		{"buy", buys, draw.TriangleGlyph{}, colorBuy},
		{"sell", sells, draw.CrossGlyph{}, colorSell},
	}
	for _, g := range groups {
		if len(g.xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(g.xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Shape = g.shape
		sc.GlyphStyle.Color = g.color
		sc.GlyphStyle.Radius = markerRadius
		p.Add(sc)
	}
	return nil
}
