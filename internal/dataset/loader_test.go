package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendboard/internal/source"
	"spendboard/internal/source/memory"
)

func TestLoaderLoadsDemoData(t *testing.T) {
	ds, err := NewLoader(memory.NewDemo()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "memory", ds.Source)
	assert.Len(t, ds.Fingerprint, 16)
	assert.Equal(t, []string{"汇风", "铜盟", "苏州"}, ds.Plants)
	assert.Len(t, ds.Units(), 3)
	_, ok := ds.Total()
	assert.True(t, ok)

	// Every supplier row splits across plants consistently with its totals.
	for _, s := range ds.Suppliers {
		sum24, sum25 := decimal.Zero, decimal.Zero
		for _, p := range s.Plants {
			sum24 = sum24.Add(p.Actual2024)
			sum25 = sum25.Add(p.Budget2025)
		}
		assert.True(t, sum24.Equal(s.Actual2024), "2024 split of %s", s.Supplier)
		assert.True(t, sum25.Equal(s.Budget2025), "2025 split of %s", s.Supplier)
	}
}

func TestLoaderFingerprintTracksContent(t *testing.T) {
	src := memory.NewDemo()
	l := NewLoader(src)
	a, err := l.Load(context.Background())
	require.NoError(t, err)
	b, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	tables := memory.DemoTables()
	cat := tables[source.CategoryTable]
	cat[1][2] = "1"
	src.Set(source.CategoryTable, cat)
	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestLoaderWrapsTableErrors(t *testing.T) {
	tables := memory.DemoTables()
	delete(tables, source.SupplierTable)
	_, err := NewLoader(memory.New(tables)).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrTableNotFound))
	assert.Contains(t, err.Error(), "supplier")

	tables = memory.DemoTables()
	tables[source.FactoryTable] = [][]string{{"Business Unit"}}
	_, err = NewLoader(memory.New(tables)).Load(context.Background())
	require.ErrorIs(t, err, ErrMissingHeader)
}
