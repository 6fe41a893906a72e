package http

import (
	"fmt"

	"spendboard/internal/analytics"
	"spendboard/internal/core"
	"spendboard/internal/dataset"
	"spendboard/internal/format"
	"spendboard/internal/risk"
)

// Selections are the query selectors a tab partial accepts. Unknown values
// fall back to the first available option.
type selections struct {
	Category    string
	Detail      string
	Tier        string
	Risk        string
	Subcategory string
}

func (s selections) params() []string {
	return []string{s.Category, s.Detail, s.Tier, s.Risk, s.Subcategory}
}

// resolve maps the raw selectors onto the values view will actually render,
// so every fallback request shares one cache entry. Selectors view does not
// read are cleared.
func (s selections) resolve(view string, ds *dataset.Dataset, reg *risk.Register) selections {
	var out selections
	switch view {
	case "categories":
		cats := analytics.Categories(ds)
		out.Category = pick(cats, s.Category)
		out.Detail = pick(cats, s.Detail)
	case "suppliers":
		tier, ok := analytics.ParseTier(s.Tier)
		if !ok {
			tier = analytics.TierA
		}
		out.Tier = string(tier)
	case "risks":
		if len(reg.Risks) > 0 {
			out.Risk = reg.Risks[0].ID
			if _, err := reg.Find(s.Risk); err == nil {
				out.Risk = s.Risk
			}
		}
	case "data":
		out.Category = pick(analytics.Categories(ds), s.Category)
		if out.Category != "" {
			var names []string
			for _, sub := range analytics.SubcategoriesOf(ds, out.Category) {
				names = append(names, sub.Subcategory)
			}
			out.Subcategory = pick(names, s.Subcategory)
		}
	}
	return out
}

type overviewView struct {
	analytics.Overview
	Factories int
	Insights  []string
	Notes     analytics.DecisionNotes
}

func newOverviewView(ds *dataset.Dataset, prefixes []string) overviewView {
	o := analytics.NewOverview(ds, prefixes)
	return overviewView{
		Overview:  o,
		Factories: len(o.Factories),
		Insights:  overviewInsights(o),
		Notes:     analytics.NewDecisionNotes(ds, prefixes),
	}
}

// overviewInsights writes the narrative lines under the factory charts.
func overviewInsights(o analytics.Overview) []string {
	var lines []string
	for _, f := range o.Factories {
		lines = append(lines, fmt.Sprintf("%s 2024年入库%s, 2025年预计%s, %s",
			f.Unit, format.Yi(f.Y2024), format.Yi(f.Y2025), growthPhrase(f.Growth)))
	}
	for _, r := range o.Regions {
		if len(r.Units) < 2 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s地区总采购额从%s至%s, %s, 占2025年预测%s",
			r.Region, format.Yi(r.Y2024), format.Yi(r.Y2025), growthPhrase(r.Growth), format.Percent(r.Share2025)))
	}
	if c := o.LargestCategory; c != nil {
		lines = append(lines, fmt.Sprintf("%s占总采购额的%s, 是最大品类", c.Category, format.Percent(c.Share2024)))
	}
	lines = append(lines,
		fmt.Sprintf("%d个子品类增长率超过30%%", len(o.FastGrowing)),
		fmt.Sprintf("%d个子品类降幅超过15%%", len(o.Declining)),
		fmt.Sprintf("Top10供应商采购占比%s, Top5供应商采购占比%s", format.Percent(o.Concentration.Top10Share), format.Percent(o.Concentration.Top5Share)),
		fmt.Sprintf("%d个供应商采购占比超过10%%", o.Concentration.HighDependency),
	)
	return lines
}

func growthPhrase(g core.Growth) string {
	switch {
	case g.Kind == core.GrowthNew:
		return "新增"
	case g.Kind == core.GrowthStopped:
		return "停止"
	case g.Percent < 0:
		return "下降" + format.Percent(-g.Percent)
	}
	return "增长" + format.Percent(g.Percent)
}

type categoriesView struct {
	Summaries  []analytics.CategorySummary
	Matrix     analytics.CategoryMatrix
	Quadrants  []quadrantView
	TopGrowth  []analytics.SubcategoryGrowth
	TopDecline []analytics.SubcategoryGrowth
	Categories []string
	Selected   string
	Detail     analytics.CategoryDetail
	HasDetail  bool
	// Breakdown is selected independently with the detail selector.
	BreakdownOf string
	Breakdown   analytics.SubcategoryBreakdown
	Notes       analytics.DecisionNotes
}

type quadrantView struct {
	Quadrant   analytics.Quadrant
	Label      string
	Categories []string
}

func newCategoriesView(ds *dataset.Dataset, sel selections, prefixes []string) categoriesView {
	sums := analytics.CategorySummaries(ds)
	v := categoriesView{
		Summaries:  sums,
		Matrix:     analytics.NewCategoryMatrix(sums),
		TopGrowth:  analytics.TopGrowth(ds, analytics.TopSize),
		TopDecline: analytics.TopDecline(ds, analytics.TopSize),
		Categories: analytics.Categories(ds),
		Notes:      analytics.NewDecisionNotes(ds, prefixes),
	}
	for _, q := range analytics.Quadrants() {
		v.Quadrants = append(v.Quadrants, quadrantView{Quadrant: q, Label: q.Label(), Categories: v.Matrix.Quadrants[q]})
	}
	v.Selected = pick(v.Categories, sel.Category)
	if v.Selected != "" {
		v.Detail, v.HasDetail = analytics.CategoryDetailOf(ds, v.Selected)
	}
	v.BreakdownOf = pick(v.Categories, sel.Detail)
	if v.BreakdownOf != "" {
		v.Breakdown = analytics.SubcategoryBreakdownOf(ds, v.BreakdownOf)
	}
	return v
}

type suppliersView struct {
	Top2024       []analytics.SupplierShare
	Top2025       []analytics.SupplierShare
	Changes       analytics.TopChanges
	CategoryStats []analytics.CategorySupplierStat
	Suppliers     int
	Tiers         []analytics.TierStat
	Tier          analytics.Tier
	TierDetail    analytics.TierDetail
	Notes         analytics.DecisionNotes
}

func newSuppliersView(ds *dataset.Dataset, sel selections, prefixes []string) suppliersView {
	v := suppliersView{
		Top2024: analytics.TopSuppliers(ds, core.Period2024, analytics.TopSize),
		Top2025: analytics.TopSuppliers(ds, core.Period2025, analytics.TopSize),
		Notes:   analytics.NewDecisionNotes(ds, prefixes),
	}
	v.Changes = analytics.CompareTop(v.Top2024, v.Top2025)
	v.CategoryStats, v.Suppliers = analytics.CategorySupplierStats(ds)

	tiered := analytics.AssignTiers(ds)
	v.Tiers = analytics.TierDistribution(tiered)
	tier, ok := analytics.ParseTier(sel.Tier)
	if !ok {
		tier = analytics.TierA
	}
	v.Tier = tier
	v.TierDetail = analytics.TierDetailOf(tiered, tier)
	return v
}

type risksView struct {
	Indicators  risk.Indicators
	Tracking    risk.Tracking
	HasTracking bool
	Items       []risk.Item
	Selected    risk.Item
	Exposures   []risk.Exposure
	Notes       analytics.DecisionNotes
}

func newRisksView(ds *dataset.Dataset, reg *risk.Register, tracking *risk.Tracking, sel selections, prefixes []string) risksView {
	v := risksView{
		Indicators: risk.ComputeIndicators(ds),
		Items:      reg.Risks,
		Notes:      analytics.NewDecisionNotes(ds, prefixes),
	}
	if tracking != nil {
		v.Tracking, v.HasTracking = *tracking, true
	}
	if len(reg.Risks) == 0 {
		return v
	}
	id := sel.Risk
	if _, err := reg.Find(id); err != nil {
		id = reg.Risks[0].ID
	}
	v.Selected, v.Exposures, _ = risk.Detail(reg, ds, id)
	return v
}

type dataView struct {
	Factories     []core.FactoryRow
	Summaries     []analytics.CategorySummary
	Categories    []string
	Category      string
	Subcategories []analytics.SubcategoryGrowth
	Names         []string
	Subcategory   string
	Suppliers     []analytics.SupplierDetail
	Plants        []string
	PlantSplit    []analytics.Group
	RecordTotal   analytics.Totals
	Warnings      []dataset.Warning
	Notes         analytics.DecisionNotes
}

func newDataView(ds *dataset.Dataset, sel selections, prefixes []string) dataView {
	v := dataView{
		Factories:  ds.Factories,
		Summaries:  analytics.CategorySummaries(ds),
		Categories: analytics.Categories(ds),
		Plants:     ds.Plants,
		Warnings:   ds.Warnings,
		Notes:      analytics.NewDecisionNotes(ds, prefixes),
	}
	records := ds.Records()
	v.PlantSplit = analytics.ByFactory(records)
	v.RecordTotal = analytics.SumRecords(records)
	v.Category = pick(v.Categories, sel.Category)
	if v.Category == "" {
		return v
	}
	v.Subcategories = analytics.SubcategoriesOf(ds, v.Category)
	for _, s := range v.Subcategories {
		v.Names = append(v.Names, s.Subcategory)
	}
	v.Subcategory = pick(v.Names, sel.Subcategory)
	if v.Subcategory != "" {
		v.Suppliers = analytics.SupplierDetailsOf(ds, v.Subcategory)
	}
	return v
}

// pick returns want when it is one of options, else the first option.
func pick(options []string, want string) string {
	for _, o := range options {
		if o == want {
			return o
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
