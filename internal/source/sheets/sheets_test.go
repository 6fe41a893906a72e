package sheets

import (
	"context"
	"testing"
)

func TestValuesToRowsPadsAndTrims(t *testing.T) {
	values := [][]interface{}{
		{"Category", "Sub category", "2024年Spend"},
		{"Steel", " Plate ", 1200},
		{"Copper &Aluminum"},
		{},
	}
	rows := valuesToRows(values)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][1] != "Plate" || rows[1][2] != "1200" {
		t.Errorf("unexpected row: %#v", rows[1])
	}
	if len(rows[2]) != 3 || rows[2][2] != "" {
		t.Errorf("expected padded row, got %#v", rows[2])
	}
}

func TestValuesToRowsEmpty(t *testing.T) {
	if rows := valuesToRows(nil); rows != nil {
		t.Fatalf("expected nil, got %#v", rows)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "abc"}); err == nil {
		t.Fatal("expected error without credentials")
	}
}
