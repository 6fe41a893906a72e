package http

import (
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendboard/internal/core"
	"spendboard/internal/format"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount":      format.Amount,
		"wan":         format.Wan,
		"yi":          format.Yi,
		"pct":         format.Percent,
		"spct":        format.SignedPercent,
		"rawpct":      format.RawPercent,
		"growth":      format.Growth,
		"growthClass": growthClass,
		"short":       shortFingerprint,
		"plant":       plantLabel,
		"when":        when,
		"join":        strings.Join,
		"inc":         func(i int) int { return i + 1 },
		"sub":         func(a, b decimal.Decimal) decimal.Decimal { return a.Sub(b) },
		"signedInt":   signedInt,
	}
}

// growthClass picks the CSS modifier for a rate.
func growthClass(g core.Growth) string {
	switch {
	case g.Kind == core.GrowthNew:
		return "growth--new"
	case g.Kind == core.GrowthStopped || g.Percent < 0:
		return "growth--down"
	case g.Percent > 0:
		return "growth--up"
	}
	return "growth--flat"
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func signedInt(n int) string {
	s := format.Float(float64(n))
	if n > 0 {
		return "+" + s
	}
	return s
}
