/*
Copyright 2024 Robert Terhaar <robbyt@robbyt.net>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Snapshot is a point-in-time copy of a store's state.
type Snapshot[S any] struct {
	ID         string `json:"id"         yaml:"id"`
	Status     string `json:"status"     yaml:"status"`
	Dispatches int    `json:"dispatches" yaml:"dispatches"`
	State      S      `json:"state"      yaml:"state"`
}

// Persister saves and loads snapshots.
type Persister[S any] interface {
	Save(ctx context.Context, snapshot Snapshot[S]) error
	Load(ctx context.Context, id string) (Snapshot[S], error)
}

// Snapshot captures the current state under id.
func (s *Store[S, A]) Snapshot(id string) Snapshot[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[S]{
		ID:         id,
		Status:     s.reducer.Status(s.state),
		Dispatches: s.dispatches,
		State:      s.state,
	}
}

// Restore replaces the store's state with the snapshot's. The snapshot's
// recorded status must agree with the status its state resolves to.
func (s *Store[S, A]) Restore(snapshot Snapshot[S]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := s.reducer.Status(snapshot.State)
	if snapshot.Status != "" && snapshot.Status != resolved {
		return fmt.Errorf("%w: recorded %q, state has %q", ErrSnapshotStatus, snapshot.Status, resolved)
	}

	from := s.reducer.Status(s.state)
	s.state = snapshot.State
	s.previous = snapshot.State
	s.dispatches = snapshot.Dispatches

	if from != resolved {
		id := uuid.New()
		s.logger.Debug("Status restored from snapshot", "dispatch_id", id, "snapshot", snapshot.ID, "from", from, "to", resolved)
		s.changes.Broadcast(Change{DispatchID: id, From: from, To: resolved})
	}
	return nil
}

// Save writes a snapshot of the store to p.
func (s *Store[S, A]) Save(ctx context.Context, p Persister[S], id string) error {
	return p.Save(ctx, s.Snapshot(id))
}

// Load reads snapshot id from p and restores it.
func (s *Store[S, A]) Load(ctx context.Context, p Persister[S], id string) error {
	snapshot, err := p.Load(ctx, id)
	if err != nil {
		return err
	}
	return s.Restore(snapshot)
}

// snapshotPath returns the file for snapshot id in dir. The id must be a plain
// file name so snapshots cannot be written outside dir.
func snapshotPath(dir, id, ext string) (string, error) {
	if id == "" {
		return "", ErrEmptySnapshotID
	}
	if id == "." || id == ".." || filepath.Base(id) != id || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return filepath.Join(dir, id+ext), nil
}

// JSONPersister is a file-based persister using JSON serialization.
type JSONPersister[S any] struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister[S any](dir string) (*JSONPersister[S], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister[S]{dir: dir}, nil
}

func (p *JSONPersister[S]) Save(_ context.Context, snapshot Snapshot[S]) error {
	fn, err := snapshotPath(p.dir, snapshot.ID, ".json")
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *JSONPersister[S]) Load(_ context.Context, id string) (Snapshot[S], error) {
	fn, err := snapshotPath(p.dir, id, ".json")
	if err != nil {
		return Snapshot[S]{}, err
	}

	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot[S]{}, fmt.Errorf("snapshot %q: %w", id, os.ErrNotExist)
		}
		return Snapshot[S]{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var snapshot Snapshot[S]
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot[S]{}, fmt.Errorf("json unmarshal: %w", err)
	}
	snapshot.ID = id
	return snapshot, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister[S any] struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister[S any](dir string) (*YAMLPersister[S], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister[S]{dir: dir}, nil
}

func (p *YAMLPersister[S]) Save(_ context.Context, snapshot Snapshot[S]) error {
	fn, err := snapshotPath(p.dir, snapshot.ID, ".yaml")
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *YAMLPersister[S]) Load(_ context.Context, id string) (Snapshot[S], error) {
	fn, err := snapshotPath(p.dir, id, ".yaml")
	if err != nil {
		return Snapshot[S]{}, err
	}

	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot[S]{}, fmt.Errorf("snapshot %q: %w", id, os.ErrNotExist)
		}
		return Snapshot[S]{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var snapshot Snapshot[S]
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return Snapshot[S]{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	snapshot.ID = id
	return snapshot, nil
}
