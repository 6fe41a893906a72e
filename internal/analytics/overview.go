package analytics

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"spendboard/internal/core"
	"spendboard/internal/dataset"
)

const (
	// HighDependencyShare is the 2024 share above which a single supplier
	// counts as a dependency.
	HighDependencyShare = 10.0
	OverviewDecline     = -15.0
	otherRegion         = "其他"
)

var bulkMaterial = regexp.MustCompile(`Copper|Aluminum`)

type FactoryView struct {
	Unit string
	Totals
	Growth core.Growth
}

// Factories returns the business units in file order, total row excluded.
func Factories(ds *dataset.Dataset) []FactoryView {
	units := ds.Units()
	out := make([]FactoryView, len(units))
	for i, f := range units {
		t := Totals{Y2024: f.Actual2024, Y2025: f.Forecast2025}
		out[i] = FactoryView{Unit: f.Unit, Totals: t, Growth: t.Growth()}
	}
	return out
}

// RegionView groups business units whose name starts with a region prefix.
type RegionView struct {
	Region string
	Units  []string
	Totals
	Growth    core.Growth
	Share2025 float64
}

// Regions groups units by the first matching prefix. Units matching none
// fall into a trailing "其他" region.
func Regions(ds *dataset.Dataset, prefixes []string) []RegionView {
	factories := Factories(ds)
	var all Totals
	for _, f := range factories {
		all.Y2024 = all.Y2024.Add(f.Y2024)
		all.Y2025 = all.Y2025.Add(f.Y2025)
	}

	var out []RegionView
	idx := map[string]int{}
	add := func(region string, f FactoryView) {
		i, ok := idx[region]
		if !ok {
			i = len(out)
			idx[region] = i
			out = append(out, RegionView{Region: region})
		}
		r := &out[i]
		r.Units = append(r.Units, f.Unit)
		r.Y2024 = r.Y2024.Add(f.Y2024)
		r.Y2025 = r.Y2025.Add(f.Y2025)
	}
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" {
			idx[p] = len(out)
			out = append(out, RegionView{Region: p})
		}
	}
	for _, f := range factories {
		region := otherRegion
		for _, p := range prefixes {
			p = strings.TrimSpace(p)
			if p != "" && strings.HasPrefix(f.Unit, p) {
				region = p
				break
			}
		}
		add(region, f)
	}

	kept := out[:0]
	for _, r := range out {
		if len(r.Units) == 0 {
			continue
		}
		r.Growth = r.Totals.Growth()
		r.Share2025 = core.Share(r.Y2025, all.Y2025)
		kept = append(kept, r)
	}
	return kept
}

// Concentration summarises how 2024 spend is spread across suppliers.
type Concentration struct {
	Top5Share      float64
	Top10Share     float64
	MaxShare       float64
	HighDependency int
}

func SupplierConcentration(ds *dataset.Dataset) Concentration {
	rows := SupplierShares(ds)
	var c Concentration
	for i, r := range rows {
		if i < 5 {
			c.Top5Share += r.Share
		}
		if i < TopSize {
			c.Top10Share += r.Share
		}
		if r.Share > c.MaxShare {
			c.MaxShare = r.Share
		}
		if r.Share > HighDependencyShare {
			c.HighDependency++
		}
	}
	return c
}

// Overview feeds the factory tab.
type Overview struct {
	Factories       []FactoryView
	Total           Totals
	Regions         []RegionView
	LargestCategory *CategorySummary
	FastGrowing     []SubcategoryGrowth
	Declining       []SubcategoryGrowth
	Concentration   Concentration
}

func NewOverview(ds *dataset.Dataset, regionPrefixes []string) Overview {
	o := Overview{
		Factories:     Factories(ds),
		Regions:       Regions(ds, regionPrefixes),
		Concentration: SupplierConcentration(ds),
	}
	for _, f := range o.Factories {
		o.Total.Y2024 = o.Total.Y2024.Add(f.Y2024)
		o.Total.Y2025 = o.Total.Y2025.Add(f.Y2025)
	}
	for _, c := range CategorySummaries(ds) {
		c := c
		if o.LargestCategory == nil || c.Share2024 > o.LargestCategory.Share2024 {
			o.LargestCategory = &c
		}
	}
	for _, s := range subcategoryGrowth(ds.Subcategories) {
		if s.Growth.Above(HighGrowth) {
			o.FastGrowing = append(o.FastGrowing, s)
		}
		if s.Growth.Below(OverviewDecline) {
			o.Declining = append(o.Declining, s)
		}
	}
	return o
}

// DecisionNotes are the footer metrics shown under every tab.
type DecisionNotes struct {
	Regions              []RegionView
	Concentration        Concentration
	SignificantDecliners int
	DeclinerSpend2024    decimal.Decimal
	BulkMaterialGrowth   float64
	HasBulkMaterial      bool
}

func NewDecisionNotes(ds *dataset.Dataset, regionPrefixes []string) DecisionNotes {
	n := DecisionNotes{
		Regions:           Regions(ds, regionPrefixes),
		Concentration:     SupplierConcentration(ds),
		DeclinerSpend2024: decimal.Zero,
	}
	for _, s := range subcategoryGrowth(ds.Subcategories) {
		if s.Growth.Below(LowGrowth) {
			n.SignificantDecliners++
			n.DeclinerSpend2024 = n.DeclinerSpend2024.Add(s.Spend2024)
		}
	}
	var bulk []core.Growth
	for _, s := range ds.Suppliers {
		if bulkMaterial.MatchString(s.Category) {
			bulk = append(bulk, s.Growth())
		}
	}
	n.BulkMaterialGrowth, n.HasBulkMaterial = MeanGrowth(bulk)
	return n
}
