package postgres

import (
	"github.com/jackc/pglogrepl"

	"github.com/surrealdb/surreal-sync/types"
)

// LSNCheckpoint wraps a PostgreSQL log sequence number in its
// canonical "hi/lo" text form. LSNs are totally ordered, so this
// implements types.Ordered.
type LSNCheckpoint struct {
	LSN string `json:"lsn"`
}

func (c LSNCheckpoint) Backend() string { return "postgresql_wal2json" }

func (c LSNCheckpoint) IsZero() bool { return c.LSN == "" }

func (c LSNCheckpoint) Compare(other types.Checkpoint) int {
	o := other.(LSNCheckpoint)
	a, _ := pglogrepl.ParseLSN(c.LSN)
	b, _ := pglogrepl.ParseLSN(o.LSN)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

var (
	_ types.Checkpoint = LSNCheckpoint{}
	_ types.Ordered    = LSNCheckpoint{}
)
