package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendboard/internal/source"
)

func TestParseSuppliersDetectsPlants(t *testing.T) {
	raw := [][]string{
		{"\ufeff供应商", "Category", "Sub Category", "2024合计入库金额", "2025合计预算金额", "增长金额", "增长率",
			"2024汇风入库金额", "2024铜盟入库金额", "2025汇风预算金额", "2025铜盟预算金额", "2025苏州预算金额"},
		{"Acme", "Steel", "Plate", "1,000", "1,500", "500", "50%", "400", "600", "500", "800", "200"},
		{"", "", "", "", "", "", "", "", "", "", "", ""},
	}
	rows, plants, warnings, err := parseSuppliers(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"汇风", "铜盟", "苏州"}, plants)
	require.Len(t, rows, 1)

	s := rows[0]
	assert.Equal(t, "Acme", s.Supplier)
	assert.Equal(t, "1000", s.Actual2024.String())
	assert.True(t, s.RawGrowth.Valid)
	require.Len(t, s.Plants, 3)
	assert.Equal(t, "苏州", s.Plants[2].Plant)
	assert.True(t, s.Plants[2].Actual2024.IsZero(), "plant without a 2024 column defaults to zero")
	assert.Equal(t, "200", s.Plants[2].Budget2025.String())
}

func TestParseCoercesBadCellsWithWarnings(t *testing.T) {
	raw := [][]string{
		{"Category", "Sub category", "2024年Spend", "2025年Spend", "增长金额", "增长率"},
		{"Steel", "Plate", "n/a", "2,000", "2,000", ""},
	}
	rows, warnings, err := parseSubcategories(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Spend2024.IsZero())
	assert.False(t, rows[0].RawGrowth.Valid)

	require.Len(t, warnings, 2)
	assert.Equal(t, Warning{Table: source.CategoryTable, Row: 1, Column: "2024年Spend", Value: "n/a"}, warnings[0])
	assert.Equal(t, "增长率", warnings[1].Column)
}

func TestParseMissingHeader(t *testing.T) {
	raw := [][]string{{"Business Unit", "2024年入库金额"}}
	_, _, err := parseFactories(raw)
	require.ErrorIs(t, err, ErrMissingHeader)
	assert.Contains(t, err.Error(), "2025年预测采购额")

	_, _, err = parseFactories(nil)
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestParseFactoriesKeepsTotalRow(t *testing.T) {
	raw := [][]string{
		{" Business Unit ", "2025年预测采购额", "2024年入库金额", "增长金额", "增长率"},
		{"天津铜盟", "120", "100", "20", "20%"},
		{"合计", "120", "100", "20", "20%"},
		{"", "1", "1", "0", "0%"},
	}
	rows, warnings, err := parseFactories(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[1].IsTotal())
	require.Len(t, warnings, 1, "row without a unit is skipped and reported")
	assert.Equal(t, 3, warnings[0].Row)
}

func TestDetectPlantsIgnoresTotals(t *testing.T) {
	header := []string{"2024合计入库金额", "2025合计预算金额", "2024苏州入库金额", "2025苏州预算金额"}
	assert.Equal(t, []string{"苏州"}, detectPlants(header))
}
