package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surreal-sync/types"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFullIterator_FilenameBecomesTableName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.csv", "id,name\nu1,alice\nu2,bob\n")

	a := New(Options{Dir: dir})
	next, closeFn, err := a.FullIterator(context.Background())
	require.NoError(t, err)
	defer closeFn()

	var tables []string
	var ids []any
	for {
		rec, ok, err := next()
		require.NoError(t, err)
		if !ok {
			break
		}
		tables = append(tables, rec.Table)
		ids = append(ids, rec.ID.Raw())
	}

	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0])
	assert.Equal(t, "u1", ids[0])
}

func TestFullIterator_IDColumnExcludedFromFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.csv", "id,name\nu1,alice\n")

	a := New(Options{Dir: dir})
	next, closeFn, err := a.FullIterator(context.Background())
	require.NoError(t, err)
	defer closeFn()

	rec, ok, err := next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.Record{"name": "alice"}, rec.Fields)
}

func TestFullIterator_MultipleFilesProduceMultipleTables(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.csv", "id,name\nu1,alice\n")
	writeFile(t, dir, "orders.csv", "id,total\no1,42\n")

	a := New(Options{Dir: dir})
	next, closeFn, err := a.FullIterator(context.Background())
	require.NoError(t, err)
	defer closeFn()

	tables := map[string]bool{}
	for {
		rec, ok, err := next()
		require.NoError(t, err)
		if !ok {
			break
		}
		tables[rec.Table] = true
	}
	assert.True(t, tables["users"])
	assert.True(t, tables["orders"])
}

func TestFullIterator_MissingIDColumnErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.csv", "name\nalice\n")

	a := New(Options{Dir: dir})
	next, closeFn, err := a.FullIterator(context.Background())
	require.NoError(t, err)
	defer closeFn()

	_, _, err = next()
	assert.Error(t, err)
}

func TestCapabilities_FullOnlyNoIncremental(t *testing.T) {
	a := New(Options{Dir: t.TempDir()})
	caps := a.Capabilities()
	assert.True(t, caps.SupportsFull)
	assert.False(t, caps.SupportsIncremental)
}

func TestPeek_ReturnsConfigurationError(t *testing.T) {
	a := New(Options{Dir: t.TempDir()})
	_, err := a.Peek(context.Background(), types.NoCheckpoint{}, 10)
	assert.Error(t, err)
}
