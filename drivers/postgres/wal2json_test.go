package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIdentity_PrefersIdentityOverColumns(t *testing.T) {
	ch := walChange{
		Kind:     "update",
		Table:    "orders",
		Columns:  []walColumn{{Name: "id", Type: "int4", Value: float64(1)}, {Name: "total", Type: "int4", Value: float64(99)}},
		Identity: []walColumn{{Name: "id", Type: "int4", Value: float64(1)}},
		PK:       []walPKCol{{Name: "id", Type: "int4"}},
	}
	cols, err := extractIdentity(ch)
	require.NoError(t, err)
	assert.Len(t, cols, 1)
	assert.Equal(t, "id", cols[0].Name)
}

func TestExtractIdentity_FallsBackToColumnsWhenNoIdentity(t *testing.T) {
	ch := walChange{
		Kind:    "insert",
		Table:   "orders",
		Columns: []walColumn{{Name: "id", Type: "int4", Value: float64(7)}},
		PK:      []walPKCol{{Name: "id", Type: "int4"}},
	}
	cols, err := extractIdentity(ch)
	require.NoError(t, err)
	assert.Len(t, cols, 1)
	assert.Equal(t, float64(7), cols[0].Value)
}

func TestExtractIdentity_CompositePKPreservesDeclaredOrder(t *testing.T) {
	ch := walChange{
		Table: "order_items",
		Columns: []walColumn{
			{Name: "line_no", Type: "int4", Value: float64(2)},
			{Name: "order_id", Type: "int4", Value: float64(1)},
		},
		PK: []walPKCol{{Name: "order_id", Type: "int4"}, {Name: "line_no", Type: "int4"}},
	}
	cols, err := extractIdentity(ch)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "order_id", cols[0].Name)
	assert.Equal(t, "line_no", cols[1].Name)
}

func TestExtractIdentity_FallsBackToPlainIdColumnWhenNoPK(t *testing.T) {
	ch := walChange{
		Table:   "orders",
		Columns: []walColumn{{Name: "id", Type: "int4", Value: float64(3)}, {Name: "total", Type: "int4", Value: float64(10)}},
	}
	cols, err := extractIdentity(ch)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "id", cols[0].Name)
}

func TestExtractIdentity_ErrorsWhenNoPKInfoAndNoIdColumn(t *testing.T) {
	ch := walChange{
		Table:   "orders",
		Columns: []walColumn{{Name: "total", Type: "int4", Value: float64(10)}},
	}
	_, err := extractIdentity(ch)
	assert.Error(t, err)
}

func TestExtractIdentity_ErrorsWhenDeclaredPKColumnMissingFromRow(t *testing.T) {
	ch := walChange{
		Table:   "orders",
		Columns: []walColumn{{Name: "total", Type: "int4", Value: float64(10)}},
		PK:      []walPKCol{{Name: "id", Type: "int4"}},
	}
	_, err := extractIdentity(ch)
	assert.Error(t, err)
}
