package model

import "time"

// PositionRecord is the share count held on one bar.
type PositionRecord struct {
	Time        time.Time
	Shares      float64
	ShareChange float64
}

// ReturnRecord is one point of the equity curve.
type ReturnRecord struct {
	Time     time.Time
	Shares   float64
	AdjClose float64
	Holdings float64
	Cash     float64
	Total    float64
	// ReturnPct is NaN on the first bar and whenever the previous total is zero.
	ReturnPct float64
}
