// Package jsonl implements the JSONL source adapter (§4.2.5): full
// dump only, no checkpoints. Every *.jsonl file in the source
// directory becomes one table, named after its basename.
package jsonl

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/types"
)

type Options struct {
	Dir     string
	IDField string // defaults to "id"
	Rules   []Rule
}

type Adapter struct {
	opts Options
}

func New(opts Options) *Adapter {
	if opts.IDField == "" {
		opts.IDField = "id"
	}
	return &Adapter{opts: opts}
}

func (a *Adapter) Name() string { return "jsonl" }

func (a *Adapter) Capabilities() drivers.Capabilities {
	return drivers.Capabilities{SupportsFull: true, SupportsIncremental: false, CapturesDeletes: false}
}

func (a *Adapter) PrepareFull(ctx context.Context) (types.Checkpoint, error) {
	return types.NoCheckpoint{Source: "jsonl"}, nil
}

func (a *Adapter) CurrentCheckpoint(ctx context.Context) (types.Checkpoint, error) {
	return types.NoCheckpoint{Source: "jsonl"}, nil
}

func (a *Adapter) FullIterator(ctx context.Context) (func() (*drivers.Record, bool, error), func() error, error) {
	entries, err := os.ReadDir(a.opts.Dir)
	if err != nil {
		return nil, nil, errs.New(errs.Configuration, "jsonl.readdir", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, filepath.Join(a.opts.Dir, e.Name()))
		}
	}

	idx := -1
	var file *os.File
	var scanner *bufio.Scanner
	var table string

	advanceFile := func() error {
		if file != nil {
			file.Close()
			file = nil
		}
		idx++
		if idx >= len(files) {
			return nil
		}
		f, err := os.Open(files[idx])
		if err != nil {
			return err
		}
		file = f
		scanner = bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		base := filepath.Base(files[idx])
		table = strings.TrimSuffix(base, filepath.Ext(base))
		return nil
	}
	if err := advanceFile(); err != nil {
		return nil, nil, err
	}

	next := func() (*drivers.Record, bool, error) {
		for {
			if file == nil {
				return nil, false, nil
			}
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, false, err
				}
				if err := advanceFile(); err != nil {
					return nil, false, err
				}
				continue
			}
			line := scanner.Bytes()
			if len(strings.TrimSpace(string(line))) == 0 {
				continue
			}
			var raw map[string]any
			if err := json.Unmarshal(line, &raw); err != nil {
				return nil, false, errs.New(errs.Conversion, "jsonl.decode", err)
			}
			rawID, ok := raw[a.opts.IDField]
			if !ok {
				return nil, false, errs.New(errs.Conversion, "jsonl.missing_id",
					errMissingID(table, a.opts.IDField))
			}
			delete(raw, a.opts.IDField)
			rewritten := applyRules(a.opts.Rules, raw).(map[string]any)
			return &drivers.Record{
				Table:  table,
				ID:     types.NewID(rawID),
				Fields: types.Record(rewritten),
			}, true, nil
		}
	}
	closeFn := func() error {
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return next, closeFn, nil
}

func (a *Adapter) Peek(ctx context.Context, from types.Checkpoint, max int) (drivers.PeekResult, error) {
	return drivers.PeekResult{}, errs.New(errs.Configuration, "jsonl.peek", errNoIncremental)
}

func (a *Adapter) Advance(ctx context.Context, to types.Checkpoint) error {
	return errs.New(errs.Configuration, "jsonl.advance", errNoIncremental)
}

func (a *Adapter) Close(ctx context.Context) error {
	return nil
}

var _ drivers.Adapter = (*Adapter)(nil)
