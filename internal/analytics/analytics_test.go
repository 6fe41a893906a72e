package analytics

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendboard/internal/core"
	"spendboard/internal/dataset"
	"spendboard/internal/source/memory"
)

func loadDemo(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.NewLoader(memory.NewDemo()).Load(context.Background())
	require.NoError(t, err)
	return ds
}

func mio(v int64) decimal.Decimal {
	return decimal.NewFromInt(v * 1000000)
}

func TestAggregatesPreserveTotal(t *testing.T) {
	ds := loadDemo(t)
	records := ds.Records()
	want := SumRecords(records)

	s24, s25 := ds.SupplierTotals()
	assert.True(t, want.Y2024.Equal(s24))
	assert.True(t, want.Y2025.Equal(s25))

	for name, groups := range map[string][]Group{
		"subcategory": BySubcategory(records),
		"supplier":    BySupplier(records),
		"factory":     ByFactory(records),
		"category":    ByCategory(records),
	} {
		var got Totals
		for _, g := range groups {
			got.Y2024 = got.Y2024.Add(g.Y2024)
			got.Y2025 = got.Y2025.Add(g.Y2025)
		}
		assert.True(t, want.Y2024.Equal(got.Y2024), "%s 2024 total", name)
		assert.True(t, want.Y2025.Equal(got.Y2025), "%s 2025 total", name)
	}

	factories := ByFactory(records)
	require.Len(t, factories, 3)
	assert.Equal(t, "铜盟", factories[0].Key)
}

func TestCategorySummariesMatchSubcategoryTable(t *testing.T) {
	ds := loadDemo(t)
	var got Totals
	var shares24 float64
	for _, c := range CategorySummaries(ds) {
		got.Y2024 = got.Y2024.Add(c.Y2024)
		got.Y2025 = got.Y2025.Add(c.Y2025)
		shares24 += c.Share2024
	}
	w24, w25 := ds.SubcategoryTotals()
	assert.True(t, w24.Equal(got.Y2024))
	assert.True(t, w25.Equal(got.Y2025))
	assert.InDelta(t, 100, shares24, 1e-9)

	assert.Equal(t, []string{"Assembly &Mechanical Parts", "Chemicals", "Copper &Aluminum", "Electrical &Electronic", "Steel"}, Categories(ds))
}

func TestTopGrowthAndDecline(t *testing.T) {
	ds := loadDemo(t)

	up := TopGrowth(ds, 3)
	require.Len(t, up, 3)
	assert.Equal(t, []string{"导热脂", "变频器", "接线盒"}, []string{up[0].Subcategory, up[1].Subcategory, up[2].Subcategory})

	down := TopDecline(ds, 2)
	require.Len(t, down, 2)
	assert.Equal(t, "继电器", down[0].Subcategory)
	assert.Equal(t, "镀锌板", down[1].Subcategory)

	for _, s := range TopGrowth(ds, 0) {
		assert.True(t, s.Growth.Comparable(), "%s should be finite", s.Subcategory)
		assert.True(t, s.Spend2024.GreaterThan(decimal.NewFromInt(MinRankingBase)))
	}
}

func TestSubcategoryBreakdown(t *testing.T) {
	ds := loadDemo(t)

	elec := SubcategoryBreakdownOf(ds, "Electrical &Electronic")
	require.Len(t, elec.Rows, 3)
	require.Len(t, elec.HighGrowth, 2)
	assert.Equal(t, "变频器", elec.HighGrowth[0].Subcategory)
	require.Len(t, elec.LowGrowth, 1)
	assert.Equal(t, "继电器", elec.LowGrowth[0].Subcategory)
	assert.InDelta(t, 75, elec.Max, 1e-9)

	chem := SubcategoryBreakdownOf(ds, "Chemicals")
	assert.Equal(t, []string{"绝缘漆"}, chem.New)
	assert.Equal(t, []string{"胶粘剂"}, chem.Stopped)
	assert.True(t, chem.HasFinite)
	assert.InDelta(t, 87.5, chem.Mean, 1e-9)

	none := SubcategoryBreakdownOf(ds, "Unknown")
	assert.False(t, none.HasFinite)
	assert.Empty(t, none.Rows)
}

func TestSubcategoryColour(t *testing.T) {
	cases := []struct {
		base, cur int64
		want      string
	}{
		{100, 50, "red"},
		{100, 140, "green"},
		{0, 10, "green"},
		{100, 0, "red"},
		{100, 110, "orange"},
		{100, 70, "orange"},
	}
	for _, c := range cases {
		s := SubcategoryGrowth{Growth: core.NewGrowth(decimal.NewFromInt(c.base), decimal.NewFromInt(c.cur))}
		assert.Equal(t, c.want, s.Colour(), "%d -> %d", c.base, c.cur)
	}
}

func TestCategoryMatrix(t *testing.T) {
	summaries := []CategorySummary{
		{Category: "A", Share2024: 50, Share2025: 40, Growth: core.Growth{Percent: 5}},
		{Category: "B", Share2024: 10, Share2025: 30, Growth: core.Growth{Percent: 80}},
		{Category: "C", Share2024: 30, Share2025: 20, Growth: core.Growth{Percent: -20}},
		{Category: "D", Share2024: 10, Share2025: 10, Growth: core.Growth{Percent: -5}},
	}
	for i := range summaries {
		summaries[i].ShareChange = summaries[i].Share2025 - summaries[i].Share2024
	}
	m := NewCategoryMatrix(summaries)

	assert.InDelta(t, 25, m.MeanShare2024, 1e-9)
	assert.InDelta(t, 25, m.MeanShare2025, 1e-9)
	assert.Equal(t, "B", m.Riser.Category)
	assert.Equal(t, "C", m.Faller.Category, "ties keep input order")
	assert.Equal(t, []string{"B"}, m.NewlyImportant)
	assert.Equal(t, []string{"C"}, m.Declining)
	assert.Equal(t, []string{"A"}, m.Quadrants[QuadrantFocus])
	assert.Equal(t, []string{"C"}, m.Quadrants[QuadrantOptimise])
	assert.Equal(t, []string{"B"}, m.Quadrants[QuadrantCultivate])
	assert.Equal(t, []string{"D"}, m.Quadrants[QuadrantObserve])

	empty := NewCategoryMatrix(nil)
	assert.Nil(t, empty.Riser)
}

func TestQuantileInterpolates(t *testing.T) {
	v := []float64{4, 1, 3, 2}
	assert.InDelta(t, 1.75, Quantile(v, 0.25), 1e-9)
	assert.InDelta(t, 2.5, Quantile(v, 0.5), 1e-9)
	assert.InDelta(t, 4, Quantile(v, 1), 1e-9)
	assert.InDelta(t, 3.7, Quantile(v, 0.9), 1e-9)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestTiersCoverEverySupplierOnce(t *testing.T) {
	ds := loadDemo(t)
	tiered := AssignTiers(ds)
	require.Len(t, tiered, len(ds.Suppliers))

	seen := map[string]bool{}
	counts := map[Tier]int{}
	for _, s := range tiered {
		assert.False(t, seen[s.Supplier], "%s tiered twice", s.Supplier)
		seen[s.Supplier] = true
		counts[s.Tier]++
	}
	assert.Equal(t, map[Tier]int{TierA: 3, TierB: 3, TierC: 3, TierD: 4}, counts)
	assert.Equal(t, TierA, tiered[0].Tier, "largest supplier is tier A")
	assert.Equal(t, "江铜贸易", tiered[0].Supplier)

	dist := TierDistribution(tiered)
	var share float64
	for _, d := range dist {
		share += d.SpendShare
	}
	assert.InDelta(t, 100, share, 1e-9)

	a := TierDetailOf(tiered, TierA)
	assert.Equal(t, 3, a.Count)
	assert.True(t, a.Total.Equal(mio(345)))
	assert.True(t, a.Mean.Equal(mio(115)))
	require.NotEmpty(t, a.Categories)
	assert.Equal(t, "Copper &Aluminum", a.Categories[0].Key)

	d := TierDetailOf(tiered, TierD)
	assert.True(t, d.HasMeanGrowth, "new suppliers are skipped, the rest still average")
}

func TestTierBoundariesAreRightClosed(t *testing.T) {
	edges := QuartileEdges([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, TierD, tierFor(1, edges))
	assert.Equal(t, TierD, tierFor(2, edges))
	assert.Equal(t, TierC, tierFor(3, edges))
	assert.Equal(t, TierB, tierFor(4, edges))
	assert.Equal(t, TierA, tierFor(5, edges))

	tier, ok := ParseTier("B级")
	assert.True(t, ok)
	assert.Equal(t, TierB, tier)
	_, ok = ParseTier("E")
	assert.False(t, ok)
}

func TestTopSuppliersAndChanges(t *testing.T) {
	ds := loadDemo(t)
	top24 := TopSuppliers(ds, core.Period2024, TopSize)
	top25 := TopSuppliers(ds, core.Period2025, TopSize)
	require.Len(t, top24, TopSize)
	assert.Equal(t, "江铜贸易", top24[0].Supplier)
	assert.InDelta(t, 180.0/552*100, top24[0].Share, 1e-9)
	assert.Equal(t, "南山铝业", top25[2].Supplier)

	before := []SupplierShare{{SupplierRow: core.SupplierRow{Supplier: "a"}}, {SupplierRow: core.SupplierRow{Supplier: "b"}}}
	after := []SupplierShare{{SupplierRow: core.SupplierRow{Supplier: "b"}}, {SupplierRow: core.SupplierRow{Supplier: "c"}}}
	c := CompareTop(before, after)
	assert.Equal(t, []string{"c"}, c.Entered)
	assert.Equal(t, []string{"a"}, c.Exited)

	assert.Len(t, SupplierMatrix(ds, MatrixSize), len(ds.Suppliers))
	assert.Len(t, SupplierMatrix(ds, 5), 5)
}

func TestCategorySupplierStats(t *testing.T) {
	ds := loadDemo(t)
	stats, total := CategorySupplierStats(ds)
	assert.Equal(t, 13, total)
	require.Len(t, stats, 5)
	var share float64
	for _, s := range stats {
		share += s.CountShare
	}
	assert.InDelta(t, 100, share, 1e-9)
	assert.Equal(t, "Assembly &Mechanical Parts", stats[0].Category)
	assert.Equal(t, 2, stats[0].Suppliers)
}

func TestOverviewAndRegions(t *testing.T) {
	ds := loadDemo(t)
	o := NewOverview(ds, []string{"天津", "苏州"})

	require.Len(t, o.Factories, 3)
	assert.True(t, o.Total.Y2024.Equal(mio(826)))
	require.Len(t, o.Regions, 2)
	assert.Equal(t, "天津", o.Regions[0].Region)
	assert.Equal(t, []string{"天津铜盟", "天津汇风"}, o.Regions[0].Units)
	assert.True(t, o.Regions[0].Y2025.Equal(mio(656)))
	assert.InDelta(t, 656.0/884*100, o.Regions[0].Share2025, 1e-9)

	require.NotNil(t, o.LargestCategory)
	assert.Equal(t, "Copper &Aluminum", o.LargestCategory.Category)
	assert.Equal(t, 4, o.Concentration.HighDependency)
	assert.InDelta(t, 445.0/552*100, o.Concentration.Top5Share, 1e-9)

	other := Regions(ds, []string{"天津"})
	require.Len(t, other, 2)
	assert.Equal(t, "其他", other[1].Region)
}

func TestDecisionNotes(t *testing.T) {
	ds := loadDemo(t)
	n := NewDecisionNotes(ds, nil)
	// 镀锌板, 继电器 and the stopped 胶粘剂.
	assert.Equal(t, 3, n.SignificantDecliners)
	assert.True(t, n.DeclinerSpend2024.Equal(mio(53)))
	assert.InDelta(t, 180.0/552*100, n.Concentration.MaxShare, 1e-9)
	assert.True(t, n.HasBulkMaterial)
}

func TestSupplierDetails(t *testing.T) {
	ds := loadDemo(t)
	rows := SupplierDetailsOf(ds, "铜杆")
	require.Len(t, rows, 1)
	assert.InDelta(t, 100, rows[0].Share, 1e-9)
	assert.InDelta(t, 100, rows[0].Share2025, 1e-9)
	assert.Len(t, rows[0].Plants, 3)

	subs := SubcategoriesOf(ds, "Steel")
	require.Len(t, subs, 2)
	assert.True(t, subs[0].RawGrowth.Valid)
}
