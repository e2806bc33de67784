// Package csv implements the CSV source adapter (§4.2.5): full dump
// only, no checkpoints. Every *.csv file becomes one table, the first
// row is the header and supplies field names.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/types"
)

type Options struct {
	Dir     string
	IDField string // defaults to "id"
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

func (a *Adapter) Name() string { return "csv" }

func (a *Adapter) Capabilities() drivers.Capabilities {
	return drivers.Capabilities{SupportsFull: true, SupportsIncremental: false, CapturesDeletes: false}
}

func (a *Adapter) PrepareFull(ctx context.Context) (types.Checkpoint, error) {
	return types.NoCheckpoint{Source: "csv"}, nil
}

func (a *Adapter) CurrentCheckpoint(ctx context.Context) (types.Checkpoint, error) {
	return types.NoCheckpoint{Source: "csv"}, nil
}

func (a *Adapter) FullIterator(ctx context.Context) (func() (*drivers.Record, bool, error), func() error, error) {
	entries, err := os.ReadDir(a.opts.Dir)
	if err != nil {
		return nil, nil, errs.New(errs.Configuration, "csv.readdir", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			files = append(files, filepath.Join(a.opts.Dir, e.Name()))
		}
	}

	idx := -1
	var file *os.File
	var reader *csv.Reader
	var header []string
	var table string
	idCol := -1

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
		reader = csv.NewReader(f)
		header, err = reader.Read()
		if err != nil {
			return err
		}
		idCol = -1
		for i, h := range header {
			if h == a.opts.IDField {
				idCol = i
			}
		}
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
			row, err := reader.Read()
			if err == io.EOF {
				if err := advanceFile(); err != nil {
					return nil, false, err
				}
				continue
			}
			if err != nil {
				return nil, false, err
			}
			if idCol < 0 {
				return nil, false, errs.New(errs.Conversion, "csv.missing_id",
					errMissingID(table, a.opts.IDField))
			}
			rec := make(types.Record, len(header))
			for i, h := range header {
				if i == idCol {
					continue
				}
				if i < len(row) {
					rec[h] = row[i]
				}
			}
			return &drivers.Record{
				Table:  table,
				ID:     types.NewID(row[idCol]),
				Fields: rec,
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
	return drivers.PeekResult{}, errs.New(errs.Configuration, "csv.peek", errNoIncremental)
}

func (a *Adapter) Advance(ctx context.Context, to types.Checkpoint) error {
	return errs.New(errs.Configuration, "csv.advance", errNoIncremental)
}

func (a *Adapter) Close(ctx context.Context) error {
	return nil
}

var _ drivers.Adapter = (*Adapter)(nil)
