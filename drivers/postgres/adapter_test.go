package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTableFilter_NilWhenNoTablesConfigured(t *testing.T) {
	a := &Adapter{opts: Options{}}
	assert.Nil(t, a.tableFilter())
}

func TestTableFilter_OnlyIncludesConfiguredTables(t *testing.T) {
	a := &Adapter{opts: Options{Tables: []string{"orders", "customers"}}}
	set := a.tableFilter()
	assert.True(t, set["orders"])
	assert.True(t, set["customers"])
	assert.False(t, set["audit_log"])
}

func TestIsSlotGoneErr_TrueForUndefinedObjectPgError(t *testing.T) {
	err := &pgconn.PgError{Code: "42704", Message: `replication slot "sync" does not exist`}
	assert.True(t, isSlotGoneErr(err))
}

func TestIsSlotGoneErr_FalseForConnectionFailure(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.False(t, isSlotGoneErr(err))
}
