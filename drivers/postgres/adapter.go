// Package postgres implements the PostgreSQL wal2json source adapter
// (§4.2.3): a named logical replication slot, captured and advanced
// entirely through SQL functions because the pgx family cannot
// negotiate the streaming replication protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/surrealdb/surreal-sync/convert"
	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/types"
)

type Options struct {
	DSN      string
	Slot     string
	Tables   []string // bare table names; empty means "discover public schema". Schema-qualified names are not supported: each name is quoted as one identifier and matched against wal2json's bare table field
}

type Adapter struct {
	opts Options
	conn *pgx.Conn
}

func Connect(ctx context.Context, opts Options) (*Adapter, error) {
	conn, err := pgx.Connect(ctx, opts.DSN)
	if err != nil {
		return nil, errs.New(errs.Connectivity, "postgres.connect", err)
	}
	a := &Adapter{opts: opts, conn: conn}
	if len(a.opts.Tables) == 0 {
		tables, err := a.listTables(ctx)
		if err != nil {
			return nil, err
		}
		a.opts.Tables = tables
	}
	return a, nil
}

func (a *Adapter) Name() string { return "postgresql_wal2json" }

func (a *Adapter) Capabilities() drivers.Capabilities {
	return drivers.Capabilities{SupportsFull: true, SupportsIncremental: true, CapturesDeletes: true}
}

func (a *Adapter) listTables(ctx context.Context) ([]string, error) {
	rows, err := a.conn.Query(ctx, `SELECT tablename FROM pg_tables WHERE schemaname = 'public'`)
	if err != nil {
		return nil, errs.New(errs.Connectivity, "postgres.list_tables", err)
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// PrepareFull creates the logical replication slot with the wal2json
// output plugin and returns its confirmed_flush_lsn as cp_t1.
func (a *Adapter) PrepareFull(ctx context.Context) (types.Checkpoint, error) {
	var lsn string
	row := a.conn.QueryRow(ctx,
		`SELECT lsn FROM pg_create_logical_replication_slot($1, 'wal2json')`, a.opts.Slot)
	if err := row.Scan(&lsn); err != nil {
		// Slot may already exist from a prior run; fall back to its
		// current confirmed_flush_lsn rather than failing outright.
		existing, lookupErr := a.currentSlotLSN(ctx)
		if lookupErr != nil {
			return nil, errs.New(errs.CaptureSetup, "postgres.create_slot", err)
		}
		lsn = existing
	}
	return LSNCheckpoint{LSN: lsn}, nil
}

func (a *Adapter) currentSlotLSN(ctx context.Context) (string, error) {
	var lsn string
	row := a.conn.QueryRow(ctx,
		`SELECT confirmed_flush_lsn::text FROM pg_replication_slots WHERE slot_name = $1`, a.opts.Slot)
	if err := row.Scan(&lsn); err != nil {
		return "", err
	}
	return lsn, nil
}

func (a *Adapter) FullIterator(ctx context.Context) (func() (*drivers.Record, bool, error), func() error, error) {
	tables := append([]string(nil), a.opts.Tables...)
	idx := -1
	var rows pgx.Rows
	var fieldNames []string

	advanceTable := func() error {
		if rows != nil {
			rows.Close()
			rows = nil
		}
		idx++
		if idx >= len(tables) {
			return nil
		}
		r, err := a.conn.Query(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, tables[idx]))
		if err != nil {
			return err
		}
		rows = r
		fieldNames = fieldNames[:0]
		for _, fd := range r.FieldDescriptions() {
			fieldNames = append(fieldNames, string(fd.Name))
		}
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
			if !rows.Next() {
				if err := rows.Err(); err != nil {
					return nil, false, err
				}
				if err := advanceTable(); err != nil {
					return nil, false, err
				}
				continue
			}
			values, err := rows.Values()
			if err != nil {
				return nil, false, err
			}
			table := tables[idx]
			rec := make(types.Record, len(values))
			var idVal any
			for i, v := range values {
				cv := convertPGXValue(v)
				if fieldNames[i] == "id" {
					idVal = cv
				}
				rec[fieldNames[i]] = cv
			}
			delete(rec, "id")
			id := types.NewID(idVal)
			return &drivers.Record{Table: table, ID: id, Fields: rec}, true, nil
		}
	}
	return next, func() error {
		if rows != nil {
			rows.Close()
		}
		return nil
	}, nil
}

// convertPGXValue widens pgx's native decode results into the unified
// value model.
func convertPGXValue(v any) types.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case int16:
		return convert.WidenInt(t)
	case int32:
		return convert.WidenInt(t)
	case int64:
		return t
	case float32:
		return convert.WidenFloat(t)
	case float64:
		return t
	case time.Time:
		return convert.UTC(t)
	case decimal.Decimal:
		return t
	case [16]byte: // uuid.UUID's underlying array form, decoded generically
		return t
	default:
		return v
	}
}

func (a *Adapter) CurrentCheckpoint(ctx context.Context) (types.Checkpoint, error) {
	lsn, err := a.currentSlotLSN(ctx)
	if err != nil {
		return nil, errs.New(errs.Connectivity, "postgres.current_checkpoint", err)
	}
	return LSNCheckpoint{LSN: lsn}, nil
}

// Peek reads up to max committed transactions from the slot without
// consuming them, via pg_logical_slot_peek_changes.
func (a *Adapter) Peek(ctx context.Context, from types.Checkpoint, max int) (drivers.PeekResult, error) {
	rows, err := a.conn.Query(ctx,
		`SELECT lsn, data FROM pg_logical_slot_peek_changes($1, NULL, $2, 'format-version', '2')`,
		a.opts.Slot, max)
	if err != nil {
		if isSlotGoneErr(err) {
			return drivers.PeekResult{}, errs.New(errs.StaleCheckpoint, "postgres.peek", err)
		}
		return drivers.PeekResult{}, errs.New(errs.Connectivity, "postgres.peek", err)
	}
	defer rows.Close()

	tableSet := a.tableFilter()

	var result drivers.PeekResult
	last, _ := from.(LSNCheckpoint)
	for rows.Next() {
		var lsn, data string
		if err := rows.Scan(&lsn, &data); err != nil {
			return drivers.PeekResult{}, err
		}
		var tx walTransaction
		if err := json.Unmarshal([]byte(data), &tx); err != nil {
			return drivers.PeekResult{}, errs.New(errs.Conversion, "postgres.peek.decode", err)
		}
		for _, ch := range tx.Change {
			if tableSet != nil && !tableSet[ch.Table] {
				continue
			}
			change, err := toChange(ch)
			if err != nil {
				return drivers.PeekResult{}, errs.New(errs.Conversion, "postgres.peek.convert", err)
			}
			result.Changes = append(result.Changes, change)
		}
		last = LSNCheckpoint{LSN: lsn}
	}
	if err := rows.Err(); err != nil {
		return drivers.PeekResult{}, errs.New(errs.Connectivity, "postgres.peek", err)
	}
	result.NextAfter = last
	return result, nil
}

// tableFilter returns the set of tables the incremental stream should
// keep, per §4.2.3 "table filtering is done after reading WAL" - the
// replication slot itself emits every table's changes, so Peek drops
// anything outside a.opts.Tables (explicit --source-tables, or the
// full public-schema listing Connect discovered when none was given).
func (a *Adapter) tableFilter() map[string]bool {
	if len(a.opts.Tables) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a.opts.Tables))
	for _, t := range a.opts.Tables {
		set[t] = true
	}
	return set
}

// isSlotGoneErr reports whether err reflects the replication slot
// itself being invalid (dropped, rotated past the requested position)
// rather than a transient connection problem - Postgres raises
// undefined_object (42704) for an unknown slot name and object_not_in_prerequisite_state
// (55000) when the slot's data has already been consumed past.
func isSlotGoneErr(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42704" || pgErr.Code == "55000"
	}
	return strings.Contains(err.Error(), "replication slot") && strings.Contains(err.Error(), "does not exist")
}

func toChange(ch walChange) (types.Change, error) {
	identity, err := extractIdentity(ch)
	if err != nil {
		return types.Change{}, err
	}
	idParts := make([]any, len(identity))
	for i, c := range identity {
		v, err := convertColumn(c)
		if err != nil {
			return types.Change{}, err
		}
		idParts[i] = v
	}
	var id types.ID
	if len(idParts) == 1 {
		id = types.NewID(idParts[0])
	} else {
		id = types.NewCompositeID(idParts...)
	}

	table := ch.Table
	if ch.Kind == "delete" {
		return types.NewDelete(table, id), nil
	}
	rec, err := convertRow(ch.Columns)
	if err != nil {
		return types.Change{}, err
	}
	return types.NewUpsert(table, id, rec), nil
}

// Advance commits the slot's position via pg_replication_slot_advance,
// the non-streaming-protocol equivalent of standby_status_update.
func (a *Adapter) Advance(ctx context.Context, to types.Checkpoint) error {
	lsnCp, _ := to.(LSNCheckpoint)
	_, err := a.conn.Exec(ctx, `SELECT pg_replication_slot_advance($1, $2::pg_lsn)`, a.opts.Slot, lsnCp.LSN)
	if err != nil {
		return errs.New(errs.Connectivity, "postgres.advance", err)
	}
	return nil
}

// Teardown drops the replication slot. An inactive slot retains WAL
// indefinitely, so this must be reachable even if the process crashed
// mid-run; invoked only by the explicit `teardown` CLI subcommand.
func (a *Adapter) Teardown(ctx context.Context) error {
	_, err := a.conn.Exec(ctx, `SELECT pg_drop_replication_slot($1)`, a.opts.Slot)
	if err != nil {
		return errs.New(errs.Connectivity, "postgres.teardown", err)
	}
	return nil
}

func (a *Adapter) Close(ctx context.Context) error {
	return a.conn.Close(ctx)
}

var (
	_ drivers.Adapter    = (*Adapter)(nil)
	_ drivers.Teardowner = (*Adapter)(nil)
)
