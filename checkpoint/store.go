/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package checkpoint implements the checkpoint store (C4): a
// directory of JSON envelope files, one per persisted checkpoint,
// named so that a plain lexicographic sort equals chronological order.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/surrealdb/surreal-sync/utils/logger"
)

// Envelope is the on-disk schema from spec §4.4. Checkpoint carries the
// backend-specific payload verbatim (already marshalled by the adapter
// that produced it).
type Envelope struct {
	DatabaseType string          `json:"database_type"`
	Checkpoint   json.RawMessage `json:"checkpoint"`
	Phase        Phase           `json:"phase"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Store persists checkpoint envelopes under Dir, one file per save,
// named by the caller's tag (the coordinator uses the source name, e.g.
// mysql or csv). The phase is recorded inside each envelope, not in the
// file name.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create dir %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

// Save writes a new checkpoint envelope for tag. Writes are atomic:
// write-to-temp-file in the same directory, then rename, so a reader
// never observes a partially-written envelope.
func (s *Store) Save(tag string, databaseType string, phase Phase, payload json.RawMessage) error {
	now := time.Now().UTC()
	env := Envelope{
		DatabaseType: databaseType,
		Checkpoint:   payload,
		Phase:        phase,
		CreatedAt:    now,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal envelope: %w", err)
	}

	name := fmt.Sprintf("checkpoint_%s_%s.json", tag, sortableTimestamp(now))
	final := filepath.Join(s.Dir, name)

	tmp, err := os.CreateTemp(s.Dir, ".checkpoint_*.tmp")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: rename into place: %w", err)
	}
	logger.Debugf("checkpoint: wrote %s (phase=%s)", final, phase)
	return nil
}

// Load returns the most recently written envelope for tag, or
// (nil, nil) if none exists yet.
func (s *Store) Load(tag string) (*Envelope, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checkpoint: read dir %s: %w", s.Dir, err)
	}

	prefix := fmt.Sprintf("checkpoint_%s_", tag)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	// Filenames embed a sortable timestamp, so the lexicographic
	// maximum is the most recently written envelope - no need to
	// parse every file to find it.
	sort.Strings(names)
	latest := names[len(names)-1]

	data, err := os.ReadFile(filepath.Join(s.Dir, latest))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %s: %w", latest, err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", latest, err)
	}
	return &env, nil
}

// LoadPhase returns the most recently written envelope for tag whose
// Phase is phase, or (nil, nil) if none exists. Used to resume
// incremental sync from cp_t1 specifically, since Load's "most recent
// envelope" is cp_t2 (FullSyncEnd) right after a full run completes.
func (s *Store) LoadPhase(tag string, phase Phase) (*Envelope, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checkpoint: read dir %s: %w", s.Dir, err)
	}

	prefix := fmt.Sprintf("checkpoint_%s_", tag)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("checkpoint: read %s: %w", name, err)
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("checkpoint: decode %s: %w", name, err)
		}
		if env.Phase == phase {
			return &env, nil
		}
	}
	return nil, nil
}

// sortableTimestamp renders t so that string comparison equals
// chronological comparison: a fixed-width UTC timestamp in basic format
// (20060102T150405.000000000Z), with no dashes or colons, so it is also
// safe in a filename.
func sortableTimestamp(t time.Time) string {
	s := t.Format("20060102T150405.000000000Z")
	return s
}
