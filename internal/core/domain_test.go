package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFactoryRowIsTotal(t *testing.T) {
	if !(FactoryRow{Unit: " 合计 "}).IsTotal() {
		t.Fatalf("expected total row")
	}
	if (FactoryRow{Unit: "天津铜盟"}).IsTotal() {
		t.Fatalf("unexpected total row")
	}
}

func TestRowValidate(t *testing.T) {
	if err := (FactoryRow{}).Validate(); err != ErrEmptyUnit {
		t.Fatalf("expected ErrEmptyUnit, got %v", err)
	}
	if err := (SupplierRow{Category: "Steel"}).Validate(); err != ErrEmptySupplier {
		t.Fatalf("expected ErrEmptySupplier, got %v", err)
	}
	if err := (SupplierRow{Supplier: "A"}).Validate(); err != ErrEmptyCategory {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	if err := (SubcategoryRow{Category: "Steel"}).Validate(); err != ErrEmptySubcategory {
		t.Fatalf("expected ErrEmptySubcategory, got %v", err)
	}
	good := SubcategoryRow{Category: "Steel", Subcategory: "Plate"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestSupplierSpendRecords(t *testing.T) {
	row := SupplierRow{
		Supplier:    "Acme",
		Category:    "Steel",
		Subcategory: "Plate",
		Actual2024:  dec("300"),
		Budget2025:  dec("330"),
		Plants: []PlantAmount{
			{Plant: "汇风", Actual2024: dec("100"), Budget2025: dec("110")},
			{Plant: "苏州", Actual2024: dec("200"), Budget2025: dec("220")},
		},
	}
	recs := row.SpendRecords()
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	sum := map[Period]decimal.Decimal{}
	for _, r := range recs {
		if r.Supplier != "Acme" || r.Subcategory != "Plate" || r.Factory == "" {
			t.Fatalf("unexpected record %+v", r)
		}
		sum[r.Period] = sum[r.Period].Add(r.Amount)
	}
	if !sum[Period2024].Equal(dec("300")) || !sum[Period2025].Equal(dec("330")) {
		t.Fatalf("unexpected sums %v", sum)
	}

	row.Plants = nil
	recs = row.SpendRecords()
	if len(recs) != 2 || recs[0].Factory != "" || !recs[1].Amount.Equal(dec("330")) {
		t.Fatalf("unexpected fallback records %+v", recs)
	}
}
