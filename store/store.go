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

// Package store is a minimal dispatch loop around a reducer. It owns the
// canonical state, replaces it with the reducer's result on every dispatch, and
// notifies subscribers when the status changes.
//
// Example usage:
//
//	s, err := store.New(r, nil, store.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := s.Dispatch(Action{Type: "FETCH_USERS"}); err != nil {
//	    logger.Error("Dispatch failed", "error", err)
//	}
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/robbyt/go-reducer/store/broadcast"
)

// Change describes one status change caused by a dispatch.
type Change = broadcast.Change

// Reducer is the part of reducer.Reducer a Store uses.
type Reducer[S, A any] interface {
	ReduceWithExtra(state S, action A, extra any) (S, error)
	Status(state S) string
}

// Store serializes dispatches against a reducer.
type Store[S, A any] struct {
	mu         sync.Mutex
	reducer    Reducer[S, A]
	state      S
	previous   S
	dispatches int
	extra      any
	logger     *slog.Logger
	changes    *broadcast.Manager
}

// New creates a store holding initial, which may be the zero value.
func New[S, A any](r Reducer[S, A], initial S, opts ...Option) (*Store[S, A], error) {
	if r == nil {
		return nil, ErrNilReducer
	}

	cfg := &settings{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default().WithGroup("store")
	}

	return &Store[S, A]{
		reducer:  r,
		state:    initial,
		previous: initial,
		extra:    cfg.extra,
		logger:   cfg.logger,
		changes:  broadcast.NewManager(cfg.logger),
	}, nil
}

// Dispatch runs action through the reducer and keeps the result. On error the
// stored state is left as it was.
func (s *Store[S, A]) Dispatch(action A) error {
	id := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.reducer.Status(s.state)
	next, err := s.reducer.ReduceWithExtra(s.state, action, s.extra)
	if err != nil {
		s.logger.Error("Dispatch failed", "dispatch_id", id, "status", from, "error", err)
		return fmt.Errorf("dispatch %s: %w", id, err)
	}

	s.previous, s.state = s.state, next
	s.dispatches++

	to := s.reducer.Status(next)
	if from != to {
		s.logger.Debug("Status changed", "dispatch_id", id, "from", from, "to", to)
		s.changes.Broadcast(Change{DispatchID: id, From: from, To: to})
	}
	return nil
}

// State returns the current state.
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Previous returns the state as it was before the last successful dispatch.
func (s *Store[S, A]) Previous() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previous
}

// Status returns the status the next dispatch will be routed to.
func (s *Store[S, A]) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reducer.Status(s.state)
}

// Dispatches returns the number of successful dispatches.
func (s *Store[S, A]) Dispatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatches
}

// Subscribe returns a channel receiving every status change. See broadcast.Manager.Subscribe.
func (s *Store[S, A]) Subscribe(ctx context.Context, opts ...broadcast.Option) (<-chan Change, error) {
	return s.changes.Subscribe(ctx, opts...)
}
