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

// Package broadcast fans status changes out to subscriber channels.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Change describes one status change caused by a dispatch.
type Change struct {
	DispatchID uuid.UUID
	From       string
	To         string
}

// Manager delivers status changes to subscribers, in the order they are broadcast.
type Manager struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	logger      *slog.Logger
}

// NewManager creates a new broadcast manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		subscribers: make(map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe returns a channel that receives status changes matching the
// subscriber's filters. Once ctx is done the subscriber stops receiving, any
// delivery blocked on it is abandoned, and a channel created by the manager is
// closed. A channel passed with WithCustomChannel is left open.
func (m *Manager) Subscribe(ctx context.Context, opts ...Option) (<-chan Change, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	sub := &subscriber{ctx: ctx}
	for _, opt := range opts {
		opt(sub)
	}
	if sub.ch == nil {
		sub.ch = make(chan Change, 1)
	}

	m.mu.Lock()
	m.subscribers[sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		// waits for any broadcast in flight, which gives up on sub once ctx is done
		m.mu.Lock()
		delete(m.subscribers, sub)
		m.mu.Unlock()
		if !sub.external {
			close(sub.ch)
		}
	}()

	return sub.ch, nil
}

// Broadcast sends change to every matching subscriber and returns once each
// delivery has finished, timed out, been dropped, or been abandoned because the
// subscriber went away.
func (m *Manager) Broadcast(change Change) {
	logger := m.logger.WithGroup("broadcast").With("from", change.From, "to", change.To)

	m.mu.Lock()
	defer m.mu.Unlock()

	var wg sync.WaitGroup
	for sub := range m.subscribers {
		if !sub.wants(change) {
			continue
		}
		if sub.timeout == 0 {
			sub.offer(logger, change)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub.send(logger, change)
		}()
	}
	wg.Wait()
}

// subscriber is one Subscribe call.
type subscriber struct {
	ctx      context.Context
	ch       chan Change
	external bool
	timeout  time.Duration
	from     map[string]struct{}
	to       map[string]struct{}
}

func (s *subscriber) wants(change Change) bool {
	if s.ctx.Err() != nil {
		return false
	}
	if len(s.from) > 0 {
		if _, ok := s.from[change.From]; !ok {
			return false
		}
	}
	if len(s.to) > 0 {
		if _, ok := s.to[change.To]; !ok {
			return false
		}
	}
	return true
}

// offer delivers without waiting.
func (s *subscriber) offer(logger *slog.Logger, change Change) {
	select {
	case s.ch <- change:
		logger.Debug("Change delivered")
	default:
		logger.Debug("Subscriber channel full; change dropped",
			"channel_capacity", cap(s.ch), "channel_length", len(s.ch))
	}
}

// send waits for the subscriber, up to its timeout when positive.
func (s *subscriber) send(logger *slog.Logger, change Change) {
	var expired <-chan time.Time
	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case s.ch <- change:
		logger.Debug("Change delivered to waiting subscriber")
	case <-expired:
		logger.Warn("Subscriber blocked; change delivery timed out",
			"timeout", s.timeout,
			"channel_capacity", cap(s.ch), "channel_length", len(s.ch))
	case <-s.ctx.Done():
		logger.Debug("Subscriber cancelled; change abandoned")
	}
}
