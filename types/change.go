package types

// Change is the backend-independent representation of a single change
// event: Upsert(table, id, record) | Delete(table, id). Changes are
// totally ordered within one backend by its Checkpoint; cross-backend
// ordering is undefined.
type Change struct {
	Table  string
	ID     ID
	Record Record // nil for Delete
	Delete bool
}

// NewUpsert builds an upsert change event.
func NewUpsert(table string, id ID, record Record) Change {
	return Change{Table: table, ID: id, Record: record}
}

// NewDelete builds a delete change event.
func NewDelete(table string, id ID) Change {
	return Change{Table: table, ID: id, Delete: true}
}

func (c Change) IsUpsert() bool {
	return !c.Delete
}
