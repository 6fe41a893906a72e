package format

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"spendboard/internal/core"
)

func TestAmount(t *testing.T) {
	assert.Equal(t, "1,234,568", Amount(decimal.RequireFromString("1234567.6")))
	assert.Equal(t, "0", Amount(decimal.Zero))
	assert.Equal(t, "-9,000", Amount(decimal.NewFromInt(-9000)))
}

func TestFloat(t *testing.T) {
	assert.Equal(t, "12,346", Float(12345.5))
	assert.Equal(t, "-", Float(math.NaN()))
	assert.Equal(t, "-", Float(math.Inf(1)))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.3%", Percent(12.34))
	assert.Equal(t, "+1.5%", SignedPercent(1.5))
	assert.Equal(t, "-2.0%", SignedPercent(-2))
	assert.Equal(t, "-", RawPercent(core.Percent{}))
	assert.Equal(t, "7.0%", RawPercent(core.Percent{Value: 7, Valid: true}))
}

func TestShortUnits(t *testing.T) {
	d := decimal.NewFromInt(461_000_000)
	assert.Equal(t, "46,100万", Wan(d))
	assert.Equal(t, "4.61亿", Yi(d))
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, "新增", Growth(core.Growth{Kind: core.GrowthNew}))
	assert.Equal(t, "停止", Growth(core.Growth{Kind: core.GrowthStopped, Percent: -100}))
}
