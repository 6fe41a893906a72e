package http

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"spendboard/internal/analytics"
	"spendboard/internal/core"
	"spendboard/internal/dataset"
	"spendboard/internal/format"
	"spendboard/internal/risk"
)

var errUnknownChart = errors.New("unknown chart")

// Chart is a Chart.js configuration object.
type Chart struct {
	Type    string         `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

type ChartData struct {
	Labels   []string       `json:"labels,omitempty"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string `json:"label,omitempty"`
	Data            any    `json:"data"`
	BackgroundColor any    `json:"backgroundColor,omitempty"`
	// DataLabels are shown by the client next to bars, e.g. "461万".
	DataLabels []string `json:"datalabels,omitempty"`
}

// Point is a bubble chart point.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Label string  `json:"label"`
}

const (
	colour2024  = "rgba(54, 162, 235, 0.7)"
	colour2025  = "rgba(255, 159, 64, 0.7)"
	colourUp    = "rgba(75, 192, 92, 0.7)"
	colourDown  = "rgba(235, 64, 52, 0.7)"
	colourFlat  = "rgba(255, 165, 0, 0.7)"
	maxBubble   = 40.0
	minBubble   = 4.0
	chartYear24 = "2024年"
	chartYear25 = "2025年"
)

var palette = []string{
	"rgba(54, 162, 235, 0.7)", "rgba(255, 99, 132, 0.7)", "rgba(75, 192, 192, 0.7)",
	"rgba(255, 206, 86, 0.7)", "rgba(153, 102, 255, 0.7)", "rgba(255, 159, 64, 0.7)",
	"rgba(201, 203, 207, 0.7)", "rgba(46, 139, 87, 0.7)",
}

var coloursByName = map[string]string{"green": colourUp, "red": colourDown, "orange": colourFlat}

type chartParams struct {
	Category string
	Prefixes []string
	Register *risk.Register
}

type chartFunc func(ds *dataset.Dataset, p chartParams) Chart

var charts = map[string]chartFunc{
	"factory-compare":     factoryCompareChart,
	"factory-growth":      factoryGrowthChart,
	"plant-split":         plantSplitChart,
	"region-split":        regionSplitChart,
	"category-summary":    categorySummaryChart,
	"category-bubble":     categoryBubbleChart,
	"category-share":      categoryShareChart,
	"top-growth":          topGrowthChart,
	"top-decline":         topDeclineChart,
	"subcategory-compare": subcategoryCompareChart,
	"subcategory-growth":  subcategoryGrowthChart,
	"supplier-matrix":     supplierMatrixChart,
	"supplier-categories": supplierCategoriesChart,
	"tier-distribution":   tierDistributionChart,
	"risk-matrix":         riskMatrixChart,
}

// ChartNames lists the charts served under /api/charts/.
func ChartNames() []string {
	names := make([]string, 0, len(charts))
	for n := range charts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func buildChart(name string, ds *dataset.Dataset, p chartParams) (Chart, error) {
	fn, ok := charts[name]
	if !ok {
		return Chart{}, errUnknownChart
	}
	return fn(ds, p), nil
}

func title(text string) map[string]any {
	return map[string]any{"plugins": map[string]any{"title": map[string]any{"display": true, "text": text}}}
}

func f64(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func wanLabels(ds []decimal.Decimal) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = format.Wan(d)
	}
	return out
}

func growthColour(g core.Growth) string {
	switch {
	case g.Kind == core.GrowthNew || g.PlotValue() > 0:
		return colourUp
	case g.PlotValue() < 0:
		return colourDown
	}
	return colourFlat
}

// bubbleRadius scales v against max onto the bubble size range.
func bubbleRadius(v, max float64) float64 {
	if max <= 0 {
		return minBubble
	}
	r := maxBubble * v / max
	if r < minBubble {
		return minBubble
	}
	return r
}

func factoryCompareChart(ds *dataset.Dataset, _ chartParams) Chart {
	var labels []string
	var a, b []decimal.Decimal
	for _, f := range analytics.Factories(ds) {
		labels = append(labels, f.Unit)
		a = append(a, f.Y2024)
		b = append(b, f.Y2025)
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: chartYear24, Data: floats(a), BackgroundColor: colour2024, DataLabels: wanLabels(a)},
			{Label: chartYear25, Data: floats(b), BackgroundColor: colour2025, DataLabels: wanLabels(b)},
		}},
		Options: title("各工厂采购规模对比"),
	}
}

// unsplitPlant labels records from supplier rows without plant columns.
const unsplitPlant = "未拆分"

// plantSplitChart groups the unpivoted supplier records by plant.
func plantSplitChart(ds *dataset.Dataset, _ chartParams) Chart {
	var labels []string
	var a, b []decimal.Decimal
	for _, g := range analytics.ByFactory(ds.Records()) {
		labels = append(labels, plantLabel(g.Key))
		a = append(a, g.Y2024)
		b = append(b, g.Y2025)
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: chartYear24, Data: floats(a), BackgroundColor: colour2024, DataLabels: wanLabels(a)},
			{Label: chartYear25, Data: floats(b), BackgroundColor: colour2025, DataLabels: wanLabels(b)},
		}},
		Options: title("供应商采购额工厂拆分"),
	}
}

func plantLabel(key string) string {
	if key == "" {
		return unsplitPlant
	}
	return key
}

func floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = f64(d)
	}
	return out
}

func factoryGrowthChart(ds *dataset.Dataset, _ chartParams) Chart {
	var labels, text, colours []string
	var values []float64
	for _, f := range analytics.Factories(ds) {
		labels = append(labels, f.Unit)
		values = append(values, f.Growth.PlotValue())
		text = append(text, f.Growth.Label())
		colours = append(colours, growthColour(f.Growth))
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: "增长率(%)", Data: values, BackgroundColor: colours, DataLabels: text},
		}},
		Options: title("各工厂2025年预测增长率"),
	}
}

func regionSplitChart(ds *dataset.Dataset, p chartParams) Chart {
	var labels []string
	var values []float64
	for _, r := range analytics.Regions(ds, p.Prefixes) {
		labels = append(labels, r.Region)
		values = append(values, r.Share2025)
	}
	return Chart{
		Type:    "doughnut",
		Data:    ChartData{Labels: labels, Datasets: []ChartDataset{{Data: values, BackgroundColor: palette}}},
		Options: title("2025年预测区域占比(%)"),
	}
}

func categorySummaryChart(ds *dataset.Dataset, _ chartParams) Chart {
	var labels []string
	var a, b []decimal.Decimal
	for _, c := range analytics.CategorySummaries(ds) {
		labels = append(labels, c.Category)
		a = append(a, c.Y2024)
		b = append(b, c.Y2025)
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: chartYear24, Data: floats(a), BackgroundColor: colour2024, DataLabels: wanLabels(a)},
			{Label: chartYear25, Data: floats(b), BackgroundColor: colour2025, DataLabels: wanLabels(b)},
		}},
		Options: title("品类采购额对比"),
	}
}

// categoryBubbleChart plots 2024 spend against growth, sized by 2025 spend.
func categoryBubbleChart(ds *dataset.Dataset, _ chartParams) Chart {
	sums := analytics.CategorySummaries(ds)
	var max float64
	for _, c := range sums {
		if v := f64(c.Y2025); v > max {
			max = v
		}
	}
	var ds2 []ChartDataset
	for i, c := range sums {
		ds2 = append(ds2, ChartDataset{
			Label: c.Category,
			Data: []Point{{
				X:     f64(c.Y2024),
				Y:     c.GrowthRate,
				R:     bubbleRadius(f64(c.Y2025), max),
				Label: c.Category,
			}},
			BackgroundColor: palette[i%len(palette)],
		})
	}
	return Chart{Type: "bubble", Data: ChartData{Datasets: ds2}, Options: title("品类战略矩阵")}
}

func categoryShareChart(ds *dataset.Dataset, _ chartParams) Chart {
	var labels []string
	var a, b []float64
	for _, c := range analytics.CategorySummaries(ds) {
		labels = append(labels, c.Category)
		a = append(a, c.Share2024)
		b = append(b, c.Share2025)
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: chartYear24 + "占比(%)", Data: a, BackgroundColor: colour2024},
			{Label: chartYear25 + "占比(%)", Data: b, BackgroundColor: colour2025},
		}},
		Options: title("品类趋势矩阵对比"),
	}
}

func subcategoryBars(rows []analytics.SubcategoryGrowth, label, text string) Chart {
	var labels, colours, tags []string
	var values []float64
	for _, s := range rows {
		labels = append(labels, s.Subcategory)
		values = append(values, s.Growth.PlotValue())
		colours = append(colours, coloursByName[s.Colour()])
		tags = append(tags, s.Growth.Label())
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: label, Data: values, BackgroundColor: colours, DataLabels: tags},
		}},
		Options: mergeOptions(title(text), map[string]any{"indexAxis": "y"}),
	}
}

func mergeOptions(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func topGrowthChart(ds *dataset.Dataset, _ chartParams) Chart {
	return subcategoryBars(analytics.TopGrowth(ds, analytics.TopSize), "增长率(%)", "增长最快的子品类 Top 10")
}

func topDeclineChart(ds *dataset.Dataset, _ chartParams) Chart {
	return subcategoryBars(analytics.TopDecline(ds, analytics.TopSize), "增长率(%)", "下降最快的子品类 Top 10")
}

func subcategoryCompareChart(ds *dataset.Dataset, p chartParams) Chart {
	var labels []string
	var a, b []decimal.Decimal
	for _, s := range analytics.SubcategoriesOf(ds, p.Category) {
		labels = append(labels, s.Subcategory)
		a = append(a, s.Spend2024)
		b = append(b, s.Spend2025)
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: chartYear24, Data: floats(a), BackgroundColor: colour2024, DataLabels: wanLabels(a)},
			{Label: chartYear25, Data: floats(b), BackgroundColor: colour2025, DataLabels: wanLabels(b)},
		}},
		Options: title(p.Category + " 子品类采购额对比"),
	}
}

func subcategoryGrowthChart(ds *dataset.Dataset, p chartParams) Chart {
	c := subcategoryBars(analytics.SubcategoriesOf(ds, p.Category), "增长率(%)", p.Category+" 子品类增长率")
	delete(c.Options, "indexAxis")
	return c
}

// supplierMatrixChart plots the largest suppliers by 2024 spend against growth.
func supplierMatrixChart(ds *dataset.Dataset, _ chartParams) Chart {
	rows := analytics.SupplierMatrix(ds, analytics.MatrixSize)
	var max float64
	for _, s := range rows {
		if v := f64(s.Budget2025); v > max {
			max = v
		}
	}
	byCategory := map[string]int{}
	var out []ChartDataset
	for _, s := range rows {
		i, ok := byCategory[s.Category]
		if !ok {
			i = len(out)
			byCategory[s.Category] = i
			out = append(out, ChartDataset{Label: s.Category, Data: []Point{}, BackgroundColor: palette[i%len(palette)]})
		}
		pts := out[i].Data.([]Point)
		out[i].Data = append(pts, Point{
			X:     f64(s.Actual2024),
			Y:     s.Growth.PlotValue(),
			R:     bubbleRadius(f64(s.Budget2025), max),
			Label: s.Supplier,
		})
	}
	return Chart{Type: "bubble", Data: ChartData{Datasets: out}, Options: title("供应商管理矩阵")}
}

func supplierCategoriesChart(ds *dataset.Dataset, _ chartParams) Chart {
	stats, total := analytics.CategorySupplierStats(ds)
	var labels []string
	var counts []int
	for _, s := range stats {
		labels = append(labels, s.Category)
		counts = append(counts, s.Suppliers)
	}
	return Chart{
		Type: "doughnut",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: "供应商数量", Data: counts, BackgroundColor: palette},
		}},
		Options: title("各品类供应商分布 (总数 " + format.Float(float64(total)) + ")"),
	}
}

func tierDistributionChart(ds *dataset.Dataset, _ chartParams) Chart {
	dist := analytics.TierDistribution(analytics.AssignTiers(ds))
	var labels []string
	var counts []int
	var shares []float64
	for _, t := range dist {
		labels = append(labels, t.Tier.Label())
		counts = append(counts, t.Count)
		shares = append(shares, t.SpendShare)
	}
	return Chart{
		Type: "bar",
		Data: ChartData{Labels: labels, Datasets: []ChartDataset{
			{Label: "供应商数量", Data: counts, BackgroundColor: colour2024},
			{Label: "采购额占比(%)", Data: shares, BackgroundColor: colour2025},
		}},
		Options: title("供应商等级分布"),
	}
}

// riskMatrixChart places every register item by probability and impact.
func riskMatrixChart(_ *dataset.Dataset, p chartParams) Chart {
	colours := map[risk.Level]string{risk.LevelHigh: colourDown, risk.LevelMedium: colourFlat, risk.LevelLow: colourUp}
	var out []ChartDataset
	if p.Register != nil {
		for _, it := range p.Register.Risks {
			out = append(out, ChartDataset{
				Label: it.Name,
				Data: []Point{{
					X:     float64(it.Probability),
					Y:     float64(it.Impact),
					R:     float64(it.Score()) * 1.5,
					Label: it.Short,
				}},
				BackgroundColor: colours[it.Level()],
			})
		}
	}
	return Chart{
		Type: "bubble",
		Data: ChartData{Datasets: out},
		Options: mergeOptions(title("风险地图"), map[string]any{
			"scales": map[string]any{
				"x": map[string]any{"min": 0, "max": 6, "title": map[string]any{"display": true, "text": "发生概率"}},
				"y": map[string]any{"min": 0, "max": 6, "title": map[string]any{"display": true, "text": "影响程度"}},
			},
		}),
	}
}
