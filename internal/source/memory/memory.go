package memory

import (
	"context"
	"fmt"
	"sync"

	"spendboard/internal/source"
)

// Store keeps tables in memory. It backs tests and the demo data source.
type Store struct {
	mu     sync.Mutex
	tables map[source.Table][][]string
	reads  int
}

var (
	_ source.TableReader = (*Store)(nil)
	_ source.Describer   = (*Store)(nil)
)

func New(tables map[source.Table][][]string) *Store {
	s := &Store{tables: map[source.Table][][]string{}}
	for t, rows := range tables {
		s.tables[t] = cloneRows(rows)
	}
	return s
}

// NewDemo returns a Store seeded with the bundled sample extracts.
func NewDemo() *Store {
	return New(DemoTables())
}

func (s *Store) Describe() string {
	return "memory"
}

// Set replaces a table.
func (s *Store) Set(t source.Table, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t] = cloneRows(rows)
}

// Reads returns how many tables were read so far.
func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *Store) ReadTable(_ context.Context, t source.Table) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrTableNotFound, t)
	}
	s.reads++
	return cloneRows(rows), nil
}

func cloneRows(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
