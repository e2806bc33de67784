package postgres

import (
	"fmt"
)

// The wal2json format-version 2 shapes this adapter decodes. Peeked
// rows from pg_logical_slot_peek_changes are one JSON document per
// transaction; each document's `change` array holds one entry per
// row-level event within that transaction.
type walTransaction struct {
	Change []walChange `json:"change"`
}

type walChange struct {
	Kind     string      `json:"kind"` // "insert" | "update" | "delete"
	Schema   string      `json:"schema"`
	Table    string      `json:"table"`
	Columns  []walColumn `json:"columns"`
	Identity []walColumn `json:"identity"`
	PK       []walPKCol  `json:"pk"`
}

type walColumn struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type walPKCol struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func findColumn(cols []walColumn, name string) (walColumn, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return walColumn{}, false
}

// extractIdentity derives the row identity per spec §4.2.3: prefer the
// `identity` column set (the pre-image, present on delete/update with
// REPLICA IDENTITY FULL), fall back to `columns` (the post-image on
// insert/update), then to a `pk` name list against whichever set was
// chosen, then to a plain `id` column, otherwise error.
func extractIdentity(ch walChange) ([]walColumn, error) {
	source := ch.Columns
	if len(ch.Identity) > 0 {
		source = ch.Identity
	}
	if len(source) == 0 {
		return nil, fmt.Errorf("wal2json: no columns or identity for %s.%s", ch.Schema, ch.Table)
	}

	if len(ch.PK) > 0 {
		out := make([]walColumn, 0, len(ch.PK))
		for _, pk := range ch.PK {
			col, ok := findColumn(source, pk.Name)
			if !ok {
				return nil, fmt.Errorf("wal2json: pk column %q missing from row for %s.%s", pk.Name, ch.Schema, ch.Table)
			}
			out = append(out, col)
		}
		return out, nil
	}
	if col, ok := findColumn(source, "id"); ok {
		return []walColumn{col}, nil
	}
	return nil, fmt.Errorf("wal2json: no pk info and no id column for %s.%s", ch.Schema, ch.Table)
}
