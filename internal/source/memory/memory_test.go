package memory

import (
	"context"
	"errors"
	"testing"

	"spendboard/internal/source"
)

func TestStoreReadTableReturnsCopy(t *testing.T) {
	s := New(map[source.Table][][]string{
		source.CategoryTable: {{"Category", "Sub category"}, {"Steel", "Plate"}},
	})
	rows, err := s.ReadTable(context.Background(), source.CategoryTable)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	rows[1][0] = "mutated"

	again, _ := s.ReadTable(context.Background(), source.CategoryTable)
	if again[1][0] != "Steel" {
		t.Fatalf("store was mutated through returned rows")
	}
	if s.Reads() != 2 {
		t.Fatalf("expected 2 reads, got %d", s.Reads())
	}
}

func TestStoreMissingTable(t *testing.T) {
	s := New(nil)
	_, err := s.ReadTable(context.Background(), source.FactoryTable)
	if !errors.Is(err, source.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
	s.Set(source.FactoryTable, [][]string{{"Business Unit"}})
	if _, err := s.ReadTable(context.Background(), source.FactoryTable); err != nil {
		t.Fatalf("expected table after Set, got %v", err)
	}
}

func TestDemoTablesComplete(t *testing.T) {
	s := NewDemo()
	for _, tbl := range source.Tables() {
		rows, err := s.ReadTable(context.Background(), tbl)
		if err != nil || len(rows) < 2 {
			t.Fatalf("demo table %s incomplete: rows=%d err=%v", tbl, len(rows), err)
		}
	}
}
