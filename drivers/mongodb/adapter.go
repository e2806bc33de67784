// Package mongodb implements the MongoDB source adapter (§4.2.1):
// native change streams for incremental capture, find cursors for the
// full dump. Requires a replica-set deployment.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/types"
	"github.com/surrealdb/surreal-sync/utils/logger"
)

const resumeTokenField = "_data"

type Options struct {
	URI         string
	Database    string
	Collections []string // empty means "discover at connect time"
}

type Adapter struct {
	opts   Options
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, opts Options) (*Adapter, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errs.New(errs.Connectivity, "mongodb.connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errs.New(errs.Connectivity, "mongodb.ping", err)
	}
	a := &Adapter{opts: opts, client: client, db: client.Database(opts.Database, options.Database().SetReadConcern(readconcern.Majority()))}
	if len(a.opts.Collections) == 0 {
		names, err := a.db.ListCollectionNames(ctx, bson.D{})
		if err != nil {
			return nil, errs.New(errs.Connectivity, "mongodb.list_collections", err)
		}
		a.opts.Collections = names
	}
	return a, nil
}

func (a *Adapter) Name() string { return "mongodb" }

func (a *Adapter) Capabilities() drivers.Capabilities {
	return drivers.Capabilities{SupportsFull: true, SupportsIncremental: true, CapturesDeletes: true}
}

func (a *Adapter) changeStreamPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}}}},
		}}},
	}
}

// PrepareFull opens a whole-database change stream long enough to
// capture its starting resume token (cp_t1), then closes it; Peek
// reopens a fresh cursor with ResumeAfter for each call.
func (a *Adapter) PrepareFull(ctx context.Context) (types.Checkpoint, error) {
	cursor, err := a.db.Watch(ctx, a.changeStreamPipeline())
	if err != nil {
		return nil, fmt.Errorf("open change stream: %w", err)
	}
	defer cursor.Close(ctx)
	return resumeCheckpointFrom(cursor.ResumeToken())
}

func resumeCheckpointFrom(raw bson.Raw) (ResumeCheckpoint, error) {
	if raw == nil {
		return ResumeCheckpoint{}, nil
	}
	token := raw.Lookup(resumeTokenField).StringValue()
	return ResumeCheckpoint{ResumeToken: token}, nil
}

func (a *Adapter) FullIterator(ctx context.Context) (func() (*drivers.Record, bool, error), func() error, error) {
	collections := append([]string(nil), a.opts.Collections...)
	idx := 0
	var cursor *mongo.Cursor

	advanceCollection := func() error {
		if cursor != nil {
			_ = cursor.Close(ctx)
			cursor = nil
		}
		if idx >= len(collections) {
			return nil
		}
		coll := a.db.Collection(collections[idx])
		c, err := coll.Find(ctx, bson.D{})
		if err != nil {
			return err
		}
		cursor = c
		idx++
		return nil
	}
	if err := advanceCollection(); err != nil {
		return nil, nil, err
	}

	next := func() (*drivers.Record, bool, error) {
		for {
			if cursor == nil {
				return nil, false, nil
			}
			if !cursor.Next(ctx) {
				if err := cursor.Err(); err != nil {
					return nil, false, err
				}
				if err := advanceCollection(); err != nil {
					return nil, false, err
				}
				continue
			}
			var doc bson.M
			if err := cursor.Decode(&doc); err != nil {
				return nil, false, err
			}
			table := collections[idx-1]
			rawID := doc["_id"]
			delete(doc, "_id")
			return &drivers.Record{
				Table:  table,
				ID:     idFromRaw(rawID),
				Fields: convertRecord(doc),
			}, true, nil
		}
	}
	closeFn := func() error {
		if cursor != nil {
			return cursor.Close(ctx)
		}
		return nil
	}
	return next, closeFn, nil
}

func (a *Adapter) CurrentCheckpoint(ctx context.Context) (types.Checkpoint, error) {
	cursor, err := a.db.Watch(ctx, a.changeStreamPipeline())
	if err != nil {
		return nil, errs.New(errs.Connectivity, "mongodb.current_checkpoint", err)
	}
	defer cursor.Close(ctx)
	return resumeCheckpointFrom(cursor.ResumeToken())
}

func (a *Adapter) Peek(ctx context.Context, from types.Checkpoint, max int) (drivers.PeekResult, error) {
	resumeCp, _ := from.(ResumeCheckpoint)

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if resumeCp.ResumeToken != "" {
		opts = opts.SetResumeAfter(bson.M{resumeTokenField: resumeCp.ResumeToken})
	}
	cursor, err := a.db.Watch(ctx, a.changeStreamPipeline(), opts)
	if err != nil {
		if isResumeTokenGoneErr(err) {
			return drivers.PeekResult{}, errs.New(errs.StaleCheckpoint, "mongodb.peek", err)
		}
		return drivers.PeekResult{}, errs.New(errs.Connectivity, "mongodb.peek", err)
	}
	defer cursor.Close(ctx)

	var result drivers.PeekResult
	lastToken := resumeCp
	for len(result.Changes) < max && cursor.TryNext(ctx) {
		var ev changeEvent
		if err := cursor.Decode(&ev); err != nil {
			return drivers.PeekResult{}, errs.New(errs.Conversion, "mongodb.peek.decode", err)
		}
		change, err := toChange(ev)
		if err != nil {
			logger.Warnf("mongodb: skipping change event: %v", err)
			continue
		}
		result.Changes = append(result.Changes, change)
		tokCp, _ := resumeCheckpointFrom(cursor.ResumeToken())
		lastToken = tokCp
	}
	if err := cursor.Err(); err != nil {
		if isResumeTokenGoneErr(err) {
			return drivers.PeekResult{}, errs.New(errs.StaleCheckpoint, "mongodb.peek", err)
		}
		return drivers.PeekResult{}, errs.New(errs.Connectivity, "mongodb.peek", err)
	}
	result.NextAfter = lastToken
	return result, nil
}

// isResumeTokenGoneErr reports whether err reflects the change
// stream's resume point itself being invalid - ChangeStreamHistoryLost
// (server error code 286) when the oplog has rotated past the
// requested resume token - rather than a transient connection drop.
func isResumeTokenGoneErr(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 286
	}
	return strings.Contains(err.Error(), "ChangeStreamHistoryLost") ||
		strings.Contains(err.Error(), "resume of change stream was not possible")
}

type changeEvent struct {
	OperationType string         `bson:"operationType"`
	FullDocument  bson.M         `bson:"fullDocument"`
	DocumentKey   bson.M         `bson:"documentKey"`
	Ns            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
}

func toChange(ev changeEvent) (types.Change, error) {
	rawID := ev.DocumentKey["_id"]
	id := idFromRaw(rawID)
	if ev.OperationType == "delete" {
		return types.NewDelete(ev.Ns.Coll, id), nil
	}
	doc := ev.FullDocument
	if doc == nil {
		return types.Change{}, fmt.Errorf("missing fullDocument for operation %q", ev.OperationType)
	}
	delete(doc, "_id")
	return types.NewUpsert(ev.Ns.Coll, id, convertRecord(doc)), nil
}

// Advance is a no-op at the wire level: MongoDB holds change-stream
// position server-side via the resume token passed to the next Peek;
// there is nothing to commit here. Progress is durable only in the
// checkpoint store.
func (a *Adapter) Advance(ctx context.Context, to types.Checkpoint) error {
	return nil
}

func (a *Adapter) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

var _ drivers.Adapter = (*Adapter)(nil)
