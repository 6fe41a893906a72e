package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendboard/internal/core"
	"spendboard/internal/dataset"
)

const (
	// MinRankingBase excludes tiny subcategories from growth rankings.
	MinRankingBase = 100000
	HighGrowth     = 30.0
	LowGrowth      = -30.0
)

// CategorySummary is one category of the subcategory spend table.
type CategorySummary struct {
	Category string
	Totals
	Growth core.Growth
	// GrowthRate is the rate rounded to one decimal for charts.
	GrowthRate  float64
	Share2024   float64
	Share2025   float64
	ShareChange float64
}

// CategorySummaries sums the subcategory table per category, ordered by name.
func CategorySummaries(ds *dataset.Dataset) []CategorySummary {
	idx := map[string]int{}
	var out []CategorySummary
	var all Totals
	for _, s := range ds.Subcategories {
		i, ok := idx[s.Category]
		if !ok {
			i = len(out)
			idx[s.Category] = i
			out = append(out, CategorySummary{Category: s.Category})
		}
		out[i].Y2024 = out[i].Y2024.Add(s.Spend2024)
		out[i].Y2025 = out[i].Y2025.Add(s.Spend2025)
		all.Y2024 = all.Y2024.Add(s.Spend2024)
		all.Y2025 = all.Y2025.Add(s.Spend2025)
	}
	for i := range out {
		c := &out[i]
		c.Growth = c.Totals.Growth()
		c.GrowthRate = round1(c.Growth.PlotValue())
		c.Share2024 = core.Share(c.Y2024, all.Y2024)
		c.Share2025 = core.Share(c.Y2025, all.Y2025)
		c.ShareChange = c.Share2025 - c.Share2024
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Categories lists the category names of the subcategory table, sorted.
func Categories(ds *dataset.Dataset) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range ds.Subcategories {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	sort.Strings(out)
	return out
}

// SubcategoryGrowth is a subcategory row with growth derived from its amounts.
type SubcategoryGrowth struct {
	core.SubcategoryRow
	Growth core.Growth
}

// Colour classifies the growth bar: red below -30%, green above 30% or new,
// orange otherwise.
func (s SubcategoryGrowth) Colour() string {
	switch {
	case s.Growth.Kind == core.GrowthNew || s.Growth.Percent > HighGrowth:
		return "green"
	case s.Growth.Percent < LowGrowth:
		return "red"
	}
	return "orange"
}

func subcategoryGrowth(rows []core.SubcategoryRow) []SubcategoryGrowth {
	out := make([]SubcategoryGrowth, len(rows))
	for i, r := range rows {
		out[i] = SubcategoryGrowth{SubcategoryRow: r, Growth: r.Growth()}
	}
	return out
}

func rankable(ds *dataset.Dataset) []SubcategoryGrowth {
	minBase := decimal.NewFromInt(MinRankingBase)
	var out []SubcategoryGrowth
	for _, s := range subcategoryGrowth(ds.Subcategories) {
		if s.Growth.Comparable() && s.Spend2024.GreaterThan(minBase) {
			out = append(out, s)
		}
	}
	return out
}

// TopGrowth returns the n fastest growing subcategories. New and stopped
// entries and bases of 100,000 or less are excluded.
func TopGrowth(ds *dataset.Dataset, n int) []SubcategoryGrowth {
	rows := rankable(ds)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Growth.Percent > rows[j].Growth.Percent })
	return head(rows, n)
}

// TopDecline returns the n fastest shrinking subcategories under the same
// exclusions as TopGrowth.
func TopDecline(ds *dataset.Dataset, n int) []SubcategoryGrowth {
	rows := rankable(ds)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Growth.Percent < rows[j].Growth.Percent })
	return head(rows, n)
}

func head[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// Quadrant places a category against the mean 2024 share and zero growth.
type Quadrant string

const (
	QuadrantFocus     Quadrant = "focus"
	QuadrantOptimise  Quadrant = "optimise"
	QuadrantCultivate Quadrant = "cultivate"
	QuadrantObserve   Quadrant = "observe"
)

func Quadrants() []Quadrant {
	return []Quadrant{QuadrantFocus, QuadrantOptimise, QuadrantCultivate, QuadrantObserve}
}

func (q Quadrant) Label() string {
	switch q {
	case QuadrantFocus:
		return "重点关注品类"
	case QuadrantOptimise:
		return "优化管理品类"
	case QuadrantCultivate:
		return "培育发展品类"
	}
	return "观察调整品类"
}

func quadrantOf(share, meanShare, growth float64) Quadrant {
	switch {
	case share > meanShare && growth > 0:
		return QuadrantFocus
	case share > meanShare:
		return QuadrantOptimise
	case growth > 0:
		return QuadrantCultivate
	}
	return QuadrantObserve
}

// CategoryMatrix compares the category structure of both years.
type CategoryMatrix struct {
	// Changes is ordered by share change, largest gain first.
	Changes        []CategorySummary
	MeanShare2024  float64
	MeanShare2025  float64
	Riser          *CategorySummary
	Faller         *CategorySummary
	NewlyImportant []string
	Declining      []string
	Quadrants      map[Quadrant][]string
}

func NewCategoryMatrix(summaries []CategorySummary) CategoryMatrix {
	m := CategoryMatrix{Quadrants: map[Quadrant][]string{}}
	if len(summaries) == 0 {
		return m
	}
	s24 := make([]float64, len(summaries))
	s25 := make([]float64, len(summaries))
	for i, c := range summaries {
		s24[i], s25[i] = c.Share2024, c.Share2025
	}
	m.MeanShare2024, _ = mean(s24)
	m.MeanShare2025, _ = mean(s25)

	m.Changes = append([]CategorySummary(nil), summaries...)
	sort.SliceStable(m.Changes, func(i, j int) bool { return m.Changes[i].ShareChange > m.Changes[j].ShareChange })
	m.Riser = &m.Changes[0]
	m.Faller = &m.Changes[len(m.Changes)-1]

	for _, c := range m.Changes {
		if c.Share2024 < m.MeanShare2024 && c.Share2025 > m.MeanShare2025 {
			m.NewlyImportant = append(m.NewlyImportant, c.Category)
		}
		if c.Share2024 > m.MeanShare2024 && c.Share2025 < m.MeanShare2025 {
			m.Declining = append(m.Declining, c.Category)
		}
	}
	for _, c := range summaries {
		q := quadrantOf(c.Share2024, m.MeanShare2024, c.Growth.PlotValue())
		m.Quadrants[q] = append(m.Quadrants[q], c.Category)
	}
	return m
}

// CategoryDetail is the KPI block and supplier list of one category.
type CategoryDetail struct {
	Summary CategorySummary
	// Suppliers carry their share of the category's 2024 supplier spend.
	Suppliers []SupplierShare
}

func CategoryDetailOf(ds *dataset.Dataset, category string) (CategoryDetail, bool) {
	var d CategoryDetail
	found := false
	for _, c := range CategorySummaries(ds) {
		if c.Category == category {
			d.Summary, found = c, true
			break
		}
	}
	if !found {
		return d, false
	}
	var rows []core.SupplierRow
	for _, s := range ds.Suppliers {
		if s.Category == category {
			rows = append(rows, s)
		}
	}
	d.Suppliers = shareOf(rows, actual2024)
	sortByAmount(d.Suppliers, actual2024)
	return d, true
}

// SubcategoryBreakdown is the growth analysis of one category's subcategories.
type SubcategoryBreakdown struct {
	Category string
	Rows     []SubcategoryGrowth
	// Mean, Max and Min cover finite rates only.
	Mean, Max, Min float64
	HasFinite      bool
	New            []string
	Stopped        []string
	HighGrowth     []SubcategoryGrowth
	LowGrowth      []SubcategoryGrowth
}

func SubcategoryBreakdownOf(ds *dataset.Dataset, category string) SubcategoryBreakdown {
	b := SubcategoryBreakdown{Category: category}
	var finite []float64
	for _, s := range subcategoryGrowth(ds.Subcategories) {
		if s.Category != category {
			continue
		}
		b.Rows = append(b.Rows, s)
		switch s.Growth.Kind {
		case core.GrowthNew:
			b.New = append(b.New, s.Subcategory)
			continue
		case core.GrowthStopped:
			b.Stopped = append(b.Stopped, s.Subcategory)
			continue
		}
		finite = append(finite, s.Growth.Percent)
		if s.Growth.Percent > HighGrowth {
			b.HighGrowth = append(b.HighGrowth, s)
		}
		if s.Growth.Percent < LowGrowth {
			b.LowGrowth = append(b.LowGrowth, s)
		}
	}
	if len(finite) > 0 {
		b.HasFinite = true
		b.Mean, _ = mean(finite)
		b.Max, b.Min = finite[0], finite[0]
		for _, v := range finite[1:] {
			if v > b.Max {
				b.Max = v
			}
			if v < b.Min {
				b.Min = v
			}
		}
	}
	sort.SliceStable(b.HighGrowth, func(i, j int) bool { return b.HighGrowth[i].Growth.Percent > b.HighGrowth[j].Growth.Percent })
	sort.SliceStable(b.LowGrowth, func(i, j int) bool { return b.LowGrowth[i].Growth.Percent < b.LowGrowth[j].Growth.Percent })
	return b
}
