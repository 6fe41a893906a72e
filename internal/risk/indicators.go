package risk

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendboard/internal/analytics"
	"spendboard/internal/dataset"
)

const (
	HighDependencyLimit = 5
	DeclineLimit        = 5
	DeclineRate         = -30.0
	DeclineMinBase      = 1000000
	ConcentrationLimit  = 50.0
)

// Indicators are the three headline risk metrics.
type Indicators struct {
	HighDependency     int
	HighDependencyFlag bool
	// SignificantDecline lists subcategories with growth under -30% and a
	// 2024 base over 1,000,000, steepest first.
	SignificantDecline []analytics.SubcategoryGrowth
	DeclineFlag        bool
	Top5Share          float64
	ConcentrationFlag  bool
}

func ComputeIndicators(ds *dataset.Dataset) Indicators {
	c := analytics.SupplierConcentration(ds)
	ind := Indicators{
		HighDependency:     c.HighDependency,
		HighDependencyFlag: c.HighDependency > HighDependencyLimit,
		Top5Share:          c.Top5Share,
		ConcentrationFlag:  c.Top5Share > ConcentrationLimit,
	}
	minBase := decimal.NewFromInt(DeclineMinBase)
	for _, cat := range analytics.Categories(ds) {
		for _, s := range analytics.SubcategoriesOf(ds, cat) {
			if s.Growth.Below(DeclineRate) && s.Spend2024.GreaterThan(minBase) {
				ind.SignificantDecline = append(ind.SignificantDecline, s)
			}
		}
	}
	sort.SliceStable(ind.SignificantDecline, func(i, j int) bool {
		return ind.SignificantDecline[i].Growth.Percent < ind.SignificantDecline[j].Growth.Percent
	})
	ind.DeclineFlag = len(ind.SignificantDecline) > DeclineLimit
	return ind
}

// Flagged counts the indicators over their limit.
func (i Indicators) Flagged() int {
	n := 0
	for _, f := range []bool{i.HighDependencyFlag, i.DeclineFlag, i.ConcentrationFlag} {
		if f {
			n++
		}
	}
	return n
}
