// Package mysql implements the MySQL source adapter (§4.2.2):
// trigger+audit-table CDC. Full dump uses ordinary table scans; the
// audit table's identity column is a totally ordered, sequence-based
// checkpoint.
package mysql

import (
	"context"
	"fmt"

	"github.com/go-mysql-org/go-mysql/client"
	gomysql "github.com/go-mysql-org/go-mysql/mysql"
	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"

	"github.com/surrealdb/surreal-sync/convert"
	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/types"
)

type Options struct {
	Addr     string // host:port
	User     string
	Password string
	Database string
	Tables   []string // user tables to capture; empty means "discover at connect time"
}

type Adapter struct {
	opts   Options
	conn   *client.Conn
	pkCols map[string][]string
}

func Connect(ctx context.Context, opts Options) (*Adapter, error) {
	conn, err := client.Connect(opts.Addr, opts.User, opts.Password, opts.Database)
	if err != nil {
		return nil, errs.New(errs.Connectivity, "mysql.connect", err)
	}
	a := &Adapter{opts: opts, conn: conn, pkCols: map[string][]string{}}
	if len(a.opts.Tables) == 0 {
		tables, err := a.listTables()
		if err != nil {
			return nil, err
		}
		a.opts.Tables = tables
	}
	for _, t := range a.opts.Tables {
		cols, err := a.primaryKeyColumns(t)
		if err != nil {
			return nil, err
		}
		a.pkCols[t] = cols
	}
	return a, nil
}

func (a *Adapter) Name() string { return "mysql" }

func (a *Adapter) Capabilities() drivers.Capabilities {
	return drivers.Capabilities{SupportsFull: true, SupportsIncremental: true, CapturesDeletes: true}
}

func (a *Adapter) listTables() ([]string, error) {
	res, err := a.conn.Execute("SHOW TABLES")
	if err != nil {
		return nil, errs.New(errs.Connectivity, "mysql.list_tables", err)
	}
	var tables []string
	for i := 0; i < res.RowNumber(); i++ {
		name, err := res.GetString(i, string(res.Fields[0].Name))
		if err != nil {
			return nil, err
		}
		if name == auditTable {
			continue
		}
		tables = append(tables, name)
	}
	return tables, nil
}

func (a *Adapter) primaryKeyColumns(table string) ([]string, error) {
	res, err := a.conn.Execute(fmt.Sprintf("SHOW KEYS FROM `%s` WHERE Key_name = 'PRIMARY'", table))
	if err != nil {
		return nil, errs.New(errs.CaptureSetup, "mysql.primary_key", err)
	}
	cols := make([]string, res.RowNumber())
	for i := 0; i < res.RowNumber(); i++ {
		col, err := res.GetString(i, "Column_name")
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return cols, nil
}

func (a *Adapter) columnNames(table string) ([]string, error) {
	res, err := a.conn.Execute(fmt.Sprintf("SHOW COLUMNS FROM `%s`", table))
	if err != nil {
		return nil, err
	}
	cols := make([]string, res.RowNumber())
	for i := 0; i < res.RowNumber(); i++ {
		name, err := res.GetString(i, "Field")
		if err != nil {
			return nil, err
		}
		cols[i] = name
	}
	return cols, nil
}

// PrepareFull creates the audit table and per-table triggers (idempotent
// via IF NOT EXISTS / a prior DROP TRIGGER), then reads MAX(seq) as cp_t1.
func (a *Adapter) PrepareFull(ctx context.Context) (types.Checkpoint, error) {
	if _, err := a.conn.Execute(createAuditTableSQL()); err != nil {
		return nil, errs.New(errs.CaptureSetup, "mysql.create_audit_table", err)
	}
	for _, table := range a.opts.Tables {
		allCols, err := a.columnNames(table)
		if err != nil {
			return nil, errs.New(errs.CaptureSetup, "mysql.columns", err)
		}
		for _, stmt := range dropTriggerSQL(table) {
			if _, err := a.conn.Execute(stmt); err != nil {
				return nil, errs.New(errs.CaptureSetup, "mysql.drop_trigger", err)
			}
		}
		for _, stmt := range triggerSQL(table, a.pkCols[table], allCols) {
			if _, err := a.conn.Execute(stmt); err != nil {
				return nil, errs.New(errs.CaptureSetup, "mysql.create_trigger", err)
			}
		}
	}
	return a.CurrentCheckpoint(ctx)
}

func (a *Adapter) FullIterator(ctx context.Context) (func() (*drivers.Record, bool, error), func() error, error) {
	tables := append([]string(nil), a.opts.Tables...)
	idx := -1
	var rows *gomysql.Resultset
	var row int

	advanceTable := func() error {
		idx++
		if idx >= len(tables) {
			rows = nil
			return nil
		}
		res, err := a.conn.Execute(fmt.Sprintf("SELECT * FROM `%s`", tables[idx]))
		if err != nil {
			return err
		}
		rows = res.Resultset
		row = 0
		return nil
	}
	if err := advanceTable(); err != nil {
		return nil, nil, err
	}

	next := func() (*drivers.Record, bool, error) {
		for {
			if rows == nil {
				return nil, false, nil
			}
			if row >= len(rows.Values) {
				if err := advanceTable(); err != nil {
					return nil, false, err
				}
				continue
			}
			table := tables[idx]
			rec, id, err := convertRow(rows, row, a.pkCols[table])
			row++
			if err != nil {
				return nil, false, err
			}
			return &drivers.Record{Table: table, ID: id, Fields: rec}, true, nil
		}
	}
	return next, func() error { return nil }, nil
}

func (a *Adapter) CurrentCheckpoint(ctx context.Context) (types.Checkpoint, error) {
	res, err := a.conn.Execute(fmt.Sprintf("SELECT COALESCE(MAX(seq), 0) AS m FROM %s", auditTable))
	if err != nil {
		return nil, errs.New(errs.Connectivity, "mysql.current_checkpoint", err)
	}
	seq, err := res.GetUint(0, "m")
	if err != nil {
		return nil, err
	}
	return SequenceCheckpoint{Sequence: seq}, nil
}

type auditRow struct {
	Seq         uint64          `json:"seq"`
	TableName   string          `json:"table_name"`
	Operation   string          `json:"operation"`
	RowIdentity json.RawMessage `json:"row_identity"`
	RowData     json.RawMessage `json:"row_data"`
}

func (a *Adapter) Peek(ctx context.Context, from types.Checkpoint, max int) (drivers.PeekResult, error) {
	seqCp, _ := from.(SequenceCheckpoint)
	res, err := a.conn.Execute(fmt.Sprintf(
		"SELECT seq, table_name, operation, row_identity, row_data FROM %s WHERE seq > ? ORDER BY seq LIMIT ?",
		auditTable), seqCp.Sequence, max)
	if err != nil {
		return drivers.PeekResult{}, errs.New(errs.Connectivity, "mysql.peek", err)
	}

	var result drivers.PeekResult
	last := seqCp
	for i := 0; i < res.RowNumber(); i++ {
		seq, _ := res.GetUint(i, "seq")
		table, _ := res.GetString(i, "table_name")
		op, _ := res.GetString(i, "operation")
		identityRaw, _ := res.GetString(i, "row_identity")
		dataRaw, _ := res.GetString(i, "row_data")

		var idParts []any
		if err := json.Unmarshal([]byte(identityRaw), &idParts); err != nil {
			return drivers.PeekResult{}, errs.New(errs.Conversion, "mysql.peek.row_identity", err)
		}
		id := idFromParts(idParts)

		if op == "D" {
			result.Changes = append(result.Changes, types.NewDelete(table, id))
		} else {
			var raw map[string]any
			if err := json.Unmarshal([]byte(dataRaw), &raw); err != nil {
				return drivers.PeekResult{}, errs.New(errs.Conversion, "mysql.peek.row_data", err)
			}
			result.Changes = append(result.Changes, types.NewUpsert(table, id, convertJSONRecord(raw)))
		}
		last = SequenceCheckpoint{Sequence: seq}
	}
	result.NextAfter = last
	return result, nil
}

// Advance is logical: there is no server-side pointer to move, since
// every row past `to` is simply left in the audit table for the next
// peek. A separate housekeeping pass (PruneBefore, invoked from
// `teardown --prune-before`) is what reclaims space.
func (a *Adapter) Advance(ctx context.Context, to types.Checkpoint) error {
	return nil
}

// PruneBefore deletes audit rows older than before, per the §10
// supplement "MySQL audit-table prune/housekeeping."
func (a *Adapter) PruneBefore(ctx context.Context, beforeSeq uint64) error {
	_, err := a.conn.Execute(fmt.Sprintf("DELETE FROM %s WHERE seq < ?", auditTable), beforeSeq)
	if err != nil {
		return errs.New(errs.Connectivity, "mysql.prune", err)
	}
	return nil
}

// Teardown drops every installed trigger and the audit table. Invoked
// only by the explicit `teardown` CLI subcommand. Every table's
// triggers are attempted even if an earlier one fails, so one bad
// trigger doesn't leave the rest orphaned; failures are aggregated and
// returned together.
func (a *Adapter) Teardown(ctx context.Context) error {
	var result *multierror.Error
	for _, table := range a.opts.Tables {
		for _, stmt := range dropTriggerSQL(table) {
			if _, err := a.conn.Execute(stmt); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", table, err))
			}
		}
	}
	if _, err := a.conn.Execute("DROP TABLE IF EXISTS " + auditTable); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: %w", auditTable, err))
	}
	if result != nil {
		return errs.New(errs.Connectivity, "mysql.teardown", result.ErrorOrNil())
	}
	return nil
}

func (a *Adapter) Close(ctx context.Context) error {
	return a.conn.Close()
}

var (
	_ drivers.Adapter    = (*Adapter)(nil)
	_ drivers.Teardowner = (*Adapter)(nil)
)

func idFromParts(parts []any) types.ID {
	if len(parts) == 1 {
		return types.NewID(parts[0])
	}
	return types.NewCompositeID(parts...)
}

// convertRow converts one result-set row into a unified record and id,
// widening numeric types via convert.ValueFromMySQL. Temporal columns
// are not converted to time.Time or normalised to UTC: they keep the
// value the driver returned for them.
func convertRow(rs *gomysql.Resultset, row int, pkCols []string) (types.Record, types.ID, error) {
	pk := map[string]bool{}
	for _, c := range pkCols {
		pk[c] = true
	}
	rec := make(types.Record, len(rs.Fields))
	idParts := make([]any, len(pkCols))
	for i, f := range rs.Fields {
		name := string(f.Name)
		v, err := rs.GetValue(row, i)
		if err != nil {
			return nil, types.ID{}, err
		}
		cv := convert.ValueFromMySQL(v)
		if pkIdx := pkIndex(pkCols, name); pkIdx >= 0 {
			idParts[pkIdx] = cv
			continue
		}
		rec[name] = cv
	}
	return rec, idFromParts(idParts), nil
}

func pkIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

// convertJSONRecord copies the values decoded from the audit table's
// row_data JSON into a record unchanged: JSON numbers stay float64 and
// no numeric widening is applied.
func convertJSONRecord(raw map[string]any) types.Record {
	rec := make(types.Record, len(raw))
	for k, v := range raw {
		rec[k] = v
	}
	return rec
}
