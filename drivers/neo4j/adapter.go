// Package neo4j implements the Neo4j source adapter (§4.2.4):
// timestamp watermarking against an application-populated updated_at
// property. Deletions cannot be observed by this mechanism.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/types"
)

type Options struct {
	URI             string
	Username        string
	Password        string
	Database        string
	TimestampField  string         // defaults to "updated_at"
	Timezone        *time.Location // defaults to UTC
}

type Adapter struct {
	opts   Options
	driver neo4j.DriverWithContext
}

func Connect(ctx context.Context, opts Options) (*Adapter, error) {
	if opts.TimestampField == "" {
		opts.TimestampField = "updated_at"
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.Username, opts.Password, ""))
	if err != nil {
		return nil, errs.New(errs.Connectivity, "neo4j.connect", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, errs.New(errs.Connectivity, "neo4j.verify", err)
	}
	return &Adapter{opts: opts, driver: driver}, nil
}

func (a *Adapter) Name() string { return "neo4j" }

func (a *Adapter) Capabilities() drivers.Capabilities {
	return drivers.Capabilities{SupportsFull: true, SupportsIncremental: true, CapturesDeletes: false}
}

func (a *Adapter) session(ctx context.Context) neo4j.SessionWithContext {
	return a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.opts.Database, AccessMode: neo4j.AccessModeRead})
}

func (a *Adapter) now() time.Time {
	return time.Now().In(a.opts.Timezone)
}

// PrepareFull captures the current instant as cp_t1. Full dump itself
// performs no filtering - it is explicitly allowed to be inconsistent.
func (a *Adapter) PrepareFull(ctx context.Context) (types.Checkpoint, error) {
	return TimestampCheckpoint{Timestamp: a.now()}, nil
}

func (a *Adapter) CurrentCheckpoint(ctx context.Context) (types.Checkpoint, error) {
	return TimestampCheckpoint{Timestamp: a.now()}, nil
}

func (a *Adapter) FullIterator(ctx context.Context) (func() (*drivers.Record, bool, error), func() error, error) {
	sess := a.session(ctx)

	nodeResult, err := sess.Run(ctx, "MATCH (n) RETURN n", nil)
	if err != nil {
		sess.Close(ctx)
		return nil, nil, errs.New(errs.Connectivity, "neo4j.full.nodes", err)
	}
	stage := 0 // 0 = nodes, 1 = relationships, 2 = done
	var relResult neo4j.ResultWithContext

	next := func() (*drivers.Record, bool, error) {
		for {
			switch stage {
			case 0:
				if nodeResult.Next(ctx) {
					node, ok := nodeResult.Record().Get("n")
					if !ok {
						continue
					}
					n := node.(neo4j.Node)
					table := "node"
					if len(n.Labels) > 0 {
						table = n.Labels[0]
					}
					return &drivers.Record{
						Table:  table,
						ID:     types.NewID(n.ElementId),
						Fields: convertProps(n.Props),
					}, true, nil
				}
				if err := nodeResult.Err(); err != nil {
					return nil, false, err
				}
				r, err := sess.Run(ctx, "MATCH ()-[r]->() RETURN r", nil)
				if err != nil {
					return nil, false, err
				}
				relResult = r
				stage = 1
			case 1:
				if relResult.Next(ctx) {
					relAny, ok := relResult.Record().Get("r")
					if !ok {
						continue
					}
					rel := relAny.(neo4j.Relationship)
					props := convertProps(rel.Props)
					props["_start"] = rel.StartElementId
					props["_end"] = rel.EndElementId
					return &drivers.Record{
						Table:  rel.Type,
						ID:     types.NewID(rel.ElementId),
						Fields: props,
					}, true, nil
				}
				if err := relResult.Err(); err != nil {
					return nil, false, err
				}
				stage = 2
			case 2:
				return nil, false, nil
			}
		}
	}
	closeFn := func() error {
		sess.Close(ctx)
		return nil
	}
	return next, closeFn, nil
}

// Peek queries both nodes and relationships whose timestamp field
// exceeds from, merges them in timestamp order, and returns up to max.
func (a *Adapter) Peek(ctx context.Context, from types.Checkpoint, max int) (drivers.PeekResult, error) {
	fromCp, _ := from.(TimestampCheckpoint)
	sess := a.session(ctx)
	defer sess.Close(ctx)

	field := a.opts.TimestampField
	query := fmt.Sprintf(
		`MATCH (n) WHERE n.%s > datetime($from) RETURN n AS entity, n.%s AS ts, "node" AS kind
		 UNION ALL
		 MATCH ()-[r]->() WHERE r.%s > datetime($from) RETURN r AS entity, r.%s AS ts, "rel" AS kind
		 ORDER BY ts LIMIT $max`, field, field, field, field)

	res, err := sess.Run(ctx, query, map[string]any{
		"from": fromCp.Timestamp.Format(time.RFC3339),
		"max":  int64(max),
	})
	if err != nil {
		return drivers.PeekResult{}, errs.New(errs.Connectivity, "neo4j.peek", err)
	}

	var result drivers.PeekResult
	last := fromCp
	for res.Next(ctx) {
		rec := res.Record()
		entityAny, _ := rec.Get("entity")
		kindAny, _ := rec.Get("kind")
		tsAny, _ := rec.Get("ts")

		kind, _ := kindAny.(string)
		var table string
		var id types.ID
		var props types.Record
		if kind == "node" {
			n := entityAny.(neo4j.Node)
			table = "node"
			if len(n.Labels) > 0 {
				table = n.Labels[0]
			}
			id = types.NewID(n.ElementId)
			props = convertProps(n.Props)
		} else {
			r := entityAny.(neo4j.Relationship)
			table = r.Type
			id = types.NewID(r.ElementId)
			props = convertProps(r.Props)
		}
		result.Changes = append(result.Changes, types.NewUpsert(table, id, props))

		if ts, ok := tsAny.(time.Time); ok {
			last = TimestampCheckpoint{Timestamp: ts}
		}
	}
	if err := res.Err(); err != nil {
		return drivers.PeekResult{}, errs.New(errs.Connectivity, "neo4j.peek", err)
	}
	result.NextAfter = last
	return result, nil
}

// Advance is a no-op: the watermark is a plain timestamp comparison,
// nothing server-side to acknowledge.
func (a *Adapter) Advance(ctx context.Context, to types.Checkpoint) error {
	return nil
}

func (a *Adapter) Close(ctx context.Context) error {
	return a.driver.Close(ctx)
}

var _ drivers.Adapter = (*Adapter)(nil)
