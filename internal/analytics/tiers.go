package analytics

import (
	"github.com/shopspring/decimal"

	"spendboard/internal/core"
	"spendboard/internal/dataset"
)

// Tier ranks suppliers into 2024-spend quartiles. A holds the largest.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Tiers lists tiers from largest to smallest.
func Tiers() []Tier {
	return []Tier{TierA, TierB, TierC, TierD}
}

func ParseTier(s string) (Tier, bool) {
	for _, t := range Tiers() {
		if string(t) == s || string(t)+"级" == s {
			return t, true
		}
	}
	return "", false
}

// Label is the display name, e.g. "A级".
func (t Tier) Label() string {
	return string(t) + "级"
}

type TieredSupplier struct {
	SupplierShare
	Tier Tier
}

// QuartileEdges returns the 0, 25, 50, 75 and 100 percent quantiles.
func QuartileEdges(values []float64) [5]float64 {
	var e [5]float64
	for i := range e {
		e[i] = Quantile(values, float64(i)/4)
	}
	return e
}

// tierFor places v in right-closed bins over edges; the lowest value
// falls into the first bin.
func tierFor(v float64, edges [5]float64) Tier {
	switch {
	case v <= edges[1]:
		return TierD
	case v <= edges[2]:
		return TierC
	case v <= edges[3]:
		return TierB
	}
	return TierA
}

// AssignTiers tiers every supplier exactly once, largest first.
func AssignTiers(ds *dataset.Dataset) []TieredSupplier {
	rows := SupplierShares(ds)
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.Actual2024.InexactFloat64()
	}
	edges := QuartileEdges(values)
	out := make([]TieredSupplier, len(rows))
	for i, r := range rows {
		out[i] = TieredSupplier{SupplierShare: r, Tier: tierFor(values[i], edges)}
	}
	return out
}

type TierStat struct {
	Tier       Tier
	Count      int
	Spend2024  decimal.Decimal
	SpendShare float64
}

// TierDistribution counts suppliers and spend per tier, A first.
func TierDistribution(tiered []TieredSupplier) []TierStat {
	total := decimal.Zero
	byTier := map[Tier]*TierStat{}
	for _, t := range Tiers() {
		byTier[t] = &TierStat{Tier: t}
	}
	for _, s := range tiered {
		st := byTier[s.Tier]
		st.Count++
		st.Spend2024 = st.Spend2024.Add(s.Actual2024)
		total = total.Add(s.Actual2024)
	}
	out := make([]TierStat, 0, 4)
	for _, t := range Tiers() {
		st := *byTier[t]
		st.SpendShare = core.Share(st.Spend2024, total)
		out = append(out, st)
	}
	return out
}

type TierDetail struct {
	Tier          Tier
	Count         int
	Total         decimal.Decimal
	Mean          decimal.Decimal
	MeanGrowth    float64
	HasMeanGrowth bool
	Categories    []Group
	Suppliers     []TieredSupplier
}

// TierDetailOf summarises one tier; suppliers stay ordered by 2024 amount.
func TierDetailOf(tiered []TieredSupplier, tier Tier) TierDetail {
	d := TierDetail{Tier: tier, Total: decimal.Zero, Mean: decimal.Zero}
	var growth []core.Growth
	var records []core.SpendRecord
	for _, s := range tiered {
		if s.Tier != tier {
			continue
		}
		d.Suppliers = append(d.Suppliers, s)
		d.Total = d.Total.Add(s.Actual2024)
		growth = append(growth, s.Growth)
		records = append(records, core.SpendRecord{Category: s.Category, Period: core.Period2024, Amount: s.Actual2024})
	}
	d.Count = len(d.Suppliers)
	if d.Count > 0 {
		d.Mean = d.Total.Div(decimal.NewFromInt(int64(d.Count)))
	}
	d.MeanGrowth, d.HasMeanGrowth = MeanGrowth(growth)
	d.Categories = ByCategory(records)
	return d
}
