package core

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	GrowthFinite GrowthKind = iota
	GrowthFlat
	GrowthNew
	GrowthStopped
)

// GrowthKind separates ordinary year-over-year rates from the cases a plain
// percentage cannot express.
type GrowthKind int

// Growth is the year-over-year change between a base and a current amount.
type Growth struct {
	Kind    GrowthKind
	Percent float64
}

// NewGrowth classifies the change from base to current.
//
// Both zero is flat (0%). A zero base with a non-zero current is new.
// A zero current with a non-zero base is stopped (-100%).
func NewGrowth(base, current decimal.Decimal) Growth {
	switch {
	case base.IsZero() && current.IsZero():
		return Growth{Kind: GrowthFlat}
	case base.IsZero():
		return Growth{Kind: GrowthNew, Percent: math.Inf(1)}
	case current.IsZero():
		return Growth{Kind: GrowthStopped, Percent: -100}
	}
	pct := current.Sub(base).Div(base).InexactFloat64() * 100
	return Growth{Kind: GrowthFinite, Percent: pct}
}

// Comparable reports whether the rate can take part in rankings and averages.
func (g Growth) Comparable() bool {
	return g.Kind == GrowthFinite || g.Kind == GrowthFlat
}

// PlotValue clamps new and stopped entries to +100 and -100 for charts.
func (g Growth) PlotValue() float64 {
	switch g.Kind {
	case GrowthNew:
		return 100
	case GrowthStopped:
		return -100
	}
	return g.Percent
}

// Label renders the rate for tables: 新增, 停止 or one decimal with a percent sign.
func (g Growth) Label() string {
	switch g.Kind {
	case GrowthNew:
		return "新增"
	case GrowthStopped:
		return "停止"
	}
	return formatPercent(g.Percent)
}

// Below reports whether the rate is a comparable value strictly under limit,
// or a stopped entry and limit is above -100.
func (g Growth) Below(limit float64) bool {
	if g.Kind == GrowthNew {
		return false
	}
	return g.Percent < limit
}

// Above reports whether the rate is strictly over limit. New entries are
// always above any finite limit.
func (g Growth) Above(limit float64) bool {
	if g.Kind == GrowthNew {
		return true
	}
	return g.Percent > limit
}
