package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"spendboard/internal/core"
	"spendboard/internal/source"
)

var (
	ErrMissingHeader = errors.New("missing header")
	ErrEmptyTable    = errors.New("empty table")
)

// Column headers of the finance extracts.
const (
	colUnit         = "Business Unit"
	colForecast2025 = "2025年预测采购额"
	colActual2024   = "2024年入库金额"
	colGrowthAmount = "增长金额"
	colGrowthRate   = "增长率"

	colSupplier       = "供应商"
	colCategory       = "Category"
	colSupSubcategory = "Sub Category"
	colSupTotal2024   = "2024合计入库金额"
	colSupTotal2025   = "2025合计预算金额"

	colSubcategory = "Sub category"
	colSpend2024   = "2024年Spend"
	colSpend2025   = "2025年Spend"

	totalPlant = "合计"
)

var (
	plant2024Col = regexp.MustCompile(`^2024(.+)入库金额$`)
	plant2025Col = regexp.MustCompile(`^2025(.+)预算金额$`)
)

// table wraps raw cells with a normalised header index.
type table struct {
	name     source.Table
	header   []string
	index    map[string]int
	rows     [][]string
	warnings []Warning
}

func newTable(name source.Table, raw [][]string, required ...string) (*table, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, name)
	}
	t := &table{name: name, index: map[string]int{}, rows: raw[1:]}
	for i, h := range raw[0] {
		h = normaliseHeader(h)
		t.header = append(t.header, h)
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	for _, h := range required {
		if _, ok := t.index[h]; !ok {
			return nil, fmt.Errorf("%w: %s table lacks %q", ErrMissingHeader, name, h)
		}
	}
	return t, nil
}

func normaliseHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

func (t *table) text(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// amount reads a numeric cell; unreadable cells count as zero and are reported.
func (t *table) amount(rowNum int, row []string, col string) decimal.Decimal {
	raw := t.text(row, col)
	d, err := core.ParseNumber(raw)
	if err != nil {
		t.warn(rowNum, col, raw)
		return decimal.Zero
	}
	return d
}

func (t *table) percent(rowNum int, row []string, col string) core.Percent {
	raw := t.text(row, col)
	p := core.ParsePercent(raw)
	if !p.Valid {
		t.warn(rowNum, col, raw)
	}
	return p
}

func (t *table) warn(rowNum int, col, raw string) {
	t.warnings = append(t.warnings, Warning{Table: t.name, Row: rowNum, Column: col, Value: raw})
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseFactories(raw [][]string) ([]core.FactoryRow, []Warning, error) {
	t, err := newTable(source.FactoryTable, raw,
		colUnit, colForecast2025, colActual2024, colGrowthAmount, colGrowthRate)
	if err != nil {
		return nil, nil, err
	}
	var out []core.FactoryRow
	for i, row := range t.rows {
		n := i + 1
		if blankRow(row) {
			continue
		}
		f := core.FactoryRow{
			Unit:         t.text(row, colUnit),
			Actual2024:   t.amount(n, row, colActual2024),
			Forecast2025: t.amount(n, row, colForecast2025),
			GrowthAmount: t.amount(n, row, colGrowthAmount),
			RawGrowth:    t.percent(n, row, colGrowthRate),
		}
		if err := f.Validate(); err != nil {
			t.warn(n, colUnit, "")
			continue
		}
		out = append(out, f)
	}
	return out, t.warnings, nil
}

// detectPlants returns the plant names that have a 2024 or 2025 column,
// ordered by first appearance in the header.
func detectPlants(header []string) []string {
	var plants []string
	seen := map[string]bool{}
	for _, h := range header {
		var m []string
		if m = plant2024Col.FindStringSubmatch(h); m == nil {
			m = plant2025Col.FindStringSubmatch(h)
		}
		if m == nil {
			continue
		}
		p := strings.TrimSpace(m[1])
		if p == "" || p == totalPlant || seen[p] {
			continue
		}
		seen[p] = true
		plants = append(plants, p)
	}
	return plants
}

func plantColumns(plant string) (string, string) {
	return "2024" + plant + "入库金额", "2025" + plant + "预算金额"
}

func parseSuppliers(raw [][]string) ([]core.SupplierRow, []string, []Warning, error) {
	t, err := newTable(source.SupplierTable, raw,
		colSupplier, colCategory, colSupSubcategory, colSupTotal2024, colSupTotal2025,
		colGrowthAmount, colGrowthRate)
	if err != nil {
		return nil, nil, nil, err
	}
	plants := detectPlants(t.header)

	var out []core.SupplierRow
	for i, row := range t.rows {
		n := i + 1
		if blankRow(row) {
			continue
		}
		s := core.SupplierRow{
			Supplier:     t.text(row, colSupplier),
			Category:     t.text(row, colCategory),
			Subcategory:  t.text(row, colSupSubcategory),
			Actual2024:   t.amount(n, row, colSupTotal2024),
			Budget2025:   t.amount(n, row, colSupTotal2025),
			GrowthAmount: t.amount(n, row, colGrowthAmount),
			RawGrowth:    t.percent(n, row, colGrowthRate),
		}
		if err := s.Validate(); err != nil {
			t.warn(n, colSupplier, s.Supplier)
			continue
		}
		for _, p := range plants {
			c24, c25 := plantColumns(p)
			pa := core.PlantAmount{Plant: p}
			if _, ok := t.index[c24]; ok {
				pa.Actual2024 = t.amount(n, row, c24)
			}
			if _, ok := t.index[c25]; ok {
				pa.Budget2025 = t.amount(n, row, c25)
			}
			s.Plants = append(s.Plants, pa)
		}
		out = append(out, s)
	}
	return out, plants, t.warnings, nil
}

func parseSubcategories(raw [][]string) ([]core.SubcategoryRow, []Warning, error) {
	t, err := newTable(source.CategoryTable, raw,
		colCategory, colSubcategory, colSpend2024, colSpend2025, colGrowthAmount, colGrowthRate)
	if err != nil {
		return nil, nil, err
	}
	var out []core.SubcategoryRow
	for i, row := range t.rows {
		n := i + 1
		if blankRow(row) {
			continue
		}
		s := core.SubcategoryRow{
			Category:     t.text(row, colCategory),
			Subcategory:  t.text(row, colSubcategory),
			Spend2024:    t.amount(n, row, colSpend2024),
			Spend2025:    t.amount(n, row, colSpend2025),
			GrowthAmount: t.amount(n, row, colGrowthAmount),
			RawGrowth:    t.percent(n, row, colGrowthRate),
		}
		if err := s.Validate(); err != nil {
			t.warn(n, colSubcategory, s.Subcategory)
			continue
		}
		out = append(out, s)
	}
	return out, t.warnings, nil
}
