// Package format renders amounts and rates the way the dashboard shows them:
// grouped integers for yuan, 万/亿 short forms, one-decimal percentages.
package format

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"spendboard/internal/core"
)

var (
	tenThousand   = decimal.NewFromInt(10_000)
	hundredMillon = decimal.NewFromInt(100_000_000)
)

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// Amount renders a yuan amount rounded to the unit with thousands separators.
func Amount(d decimal.Decimal) string {
	return printer().Sprintf("%d", d.Round(0).IntPart())
}

// Float renders v rounded to the unit with thousands separators.
func Float(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return printer().Sprintf("%d", int64(math.Round(v)))
}

// Percent renders v with one decimal and a percent sign.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// SignedPercent is Percent with an explicit plus sign for non-negative values.
func SignedPercent(v float64) string {
	s := Percent(v)
	if v >= 0 && s != "-" {
		return "+" + s
	}
	return s
}

// RawPercent renders a source rate cell, or "-" when the cell was missing.
func RawPercent(p core.Percent) string {
	if !p.Valid {
		return "-"
	}
	return Percent(p.Value)
}

// Wan renders an amount in units of ten thousand, e.g. "461万".
func Wan(d decimal.Decimal) string {
	return printer().Sprintf("%d", d.Div(tenThousand).Round(0).IntPart()) + "万"
}

// Yi renders an amount in units of one hundred million with two decimals, e.g. "4.61亿".
func Yi(d decimal.Decimal) string {
	return d.Div(hundredMillon).StringFixed(2) + "亿"
}

// Growth renders a year-over-year rate, using 新增 and 停止 for the edge cases.
func Growth(g core.Growth) string {
	return g.Label()
}
