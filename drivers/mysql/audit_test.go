package mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerSQL_CoversInsertUpdateDelete(t *testing.T) {
	stmts := triggerSQL("orders", []string{"id"}, []string{"id", "total"})
	assert.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "AFTER INSERT ON orders")
	assert.Contains(t, stmts[0], "'I'")
	assert.Contains(t, stmts[1], "AFTER UPDATE ON orders")
	assert.Contains(t, stmts[1], "'U'")
	assert.Contains(t, stmts[2], "AFTER DELETE ON orders")
	assert.Contains(t, stmts[2], "'D'")
	assert.Contains(t, stmts[2], "NULL")
}

func TestTriggerSQL_CompositeKeyRowIdentityIsOrderedArray(t *testing.T) {
	stmts := triggerSQL("order_items", []string{"order_id", "line_no"}, []string{"order_id", "line_no", "qty"})
	assert.Contains(t, stmts[0], "JSON_ARRAY(NEW.order_id, NEW.line_no)")
	assert.Contains(t, stmts[2], "JSON_ARRAY(OLD.order_id, OLD.line_no)")
}

func TestDropTriggerSQL_NamesMatchCreated(t *testing.T) {
	created := triggerSQL("orders", []string{"id"}, []string{"id"})
	dropped := dropTriggerSQL("orders")
	assert.Len(t, dropped, 3)
	for i, stmt := range dropped {
		assert.Contains(t, stmt, "DROP TRIGGER IF EXISTS")
		name := strings.TrimPrefix(stmt, "DROP TRIGGER IF EXISTS ")
		assert.Contains(t, created[i], "CREATE TRIGGER "+name+" ")
	}
}

func TestCreateAuditTableSQL_NamesTheAuditTable(t *testing.T) {
	sql := createAuditTableSQL()
	assert.Contains(t, sql, auditTable)
	assert.Contains(t, sql, "row_identity JSON NOT NULL")
}

func TestIdFromParts_SingleValueIsPrimitive(t *testing.T) {
	id := idFromParts([]any{int64(7)})
	assert.False(t, id.IsComposite())
	assert.Equal(t, int64(7), id.Raw())
}

func TestIdFromParts_MultipleValuesAreComposite(t *testing.T) {
	id := idFromParts([]any{int64(1), int64(2)})
	assert.True(t, id.IsComposite())
	assert.Equal(t, []any{int64(1), int64(2)}, id.Raw())
}

func TestPkIndex_FindsColumnPosition(t *testing.T) {
	assert.Equal(t, 1, pkIndex([]string{"a", "b"}, "b"))
	assert.Equal(t, -1, pkIndex([]string{"a", "b"}, "c"))
}

func TestConvertJSONRecord_PassesValuesThrough(t *testing.T) {
	rec := convertJSONRecord(map[string]any{"name": "alice", "age": float64(30)})
	assert.Equal(t, "alice", rec["name"])
	assert.Equal(t, float64(30), rec["age"])
}
