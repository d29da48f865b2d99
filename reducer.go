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

// Package reducer turns a table of status handlers into a single reducer
// function. The state carries a status naming the handler that owns it; each
// call looks up that handler, runs it, and merges its result into a new state
// stamped with the status the handler asked for.
//
// Example usage:
//
//	r, err := reducer.NewObject(map[string]reducer.Handler[reducer.State, Action]{
//	    status.Init:   reducer.Simple(idle),
//	    "IN_PROGRESS": reducer.Simple(fetching),
//	})
//	if err != nil {
//	    return err
//	}
//
//	state, err = r.Reduce(state, Action{Type: "FETCH_USERS"})
//
// A Reducer keeps no status of its own: everything it needs is read from the
// state passed in, so one instance can be shared between goroutines as long as
// the handlers are pure.
package reducer

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/robbyt/go-reducer/status"
)

// step is a handler normalized to report the status it requested.
type step[S, A any] func(state S, action A, extra any) (update S, next string)

// Reducer dispatches actions to the handler registered for the state's status.
type Reducer[S, A any] struct {
	steps     map[string]step[S, A]
	container Container[S]
	getStatus func(S) (string, bool)
	setStatus func(S, string) S
	validate  func(S) error
	logger    *slog.Logger
}

// New creates a reducer using the implicit-field convention: a handler requests
// a status change by setting the status on the value it returns.
//
// Unless WithLenient is given, handlers must contain an entry for status.Init,
// otherwise ErrConfiguration is returned.
func New[S, A any](c Container[S], handlers map[string]Handler[S, A], opts ...Option) (*Reducer[S, A], error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, ErrNilContainer)
	}

	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	get, set, err := resolveAccessor(c, cfg)
	if err != nil {
		return nil, err
	}

	steps := make(map[string]step[S, A], len(handlers))
	var errs []error
	for name, h := range handlers {
		if h == nil {
			errs = append(errs, fmt.Errorf("%w: status %q", ErrNilHandler, name))
			continue
		}
		steps[name] = func(state S, action A, extra any) (S, string) {
			update := h(state, action, extra)
			next, _ := get(update)
			return update, next
		}
	}

	return build(c, cfg, get, set, steps, errs)
}

// NewMarked creates a reducer using the marker convention: a handler requests a
// status change by returning Become(update, next). The status field of the
// returned value is ignored and always overwritten by the reducer.
func NewMarked[S, A any](c Container[S], handlers map[string]MarkedHandler[S, A], opts ...Option) (*Reducer[S, A], error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, ErrNilContainer)
	}

	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	get, set, err := resolveAccessor(c, cfg)
	if err != nil {
		return nil, err
	}

	steps := make(map[string]step[S, A], len(handlers))
	var errs []error
	for name, h := range handlers {
		if h == nil {
			errs = append(errs, fmt.Errorf("%w: status %q", ErrNilHandler, name))
			continue
		}
		steps[name] = func(state S, action A, extra any) (S, string) {
			t := h(state, action, extra)
			return t.State, t.next
		}
	}

	return build(c, cfg, get, set, steps, errs)
}

// MustNew creates a new Reducer and panics if there's an error.
func MustNew[S, A any](c Container[S], handlers map[string]Handler[S, A], opts ...Option) *Reducer[S, A] {
	r, err := New(c, handlers, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create reducer: %v", err))
	}
	return r
}

// MustNewMarked creates a new marker-convention Reducer and panics if there's an error.
func MustNewMarked[S, A any](c Container[S], handlers map[string]MarkedHandler[S, A], opts ...Option) *Reducer[S, A] {
	r, err := NewMarked(c, handlers, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create reducer: %v", err))
	}
	return r
}

func applyOptions(opts []Option) (*settings, error) {
	cfg := &settings{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default().WithGroup("reducer")
	}
	return cfg, nil
}

// resolveAccessor picks the status get/set pair: the one from WithStatusAccessor
// when present, else the container's own.
func resolveAccessor[S any](c Container[S], cfg *settings) (func(S) (string, bool), func(S, string) S, error) {
	if cfg.accessor == nil {
		return c.Status, c.WithStatus, nil
	}
	a, ok := cfg.accessor.(accessor[S])
	if !ok {
		var zero S
		return nil, nil, fmt.Errorf("%w: %w: reducer state is %T", ErrConfiguration, ErrAccessorType, zero)
	}
	return a.get, a.set, nil
}

func build[S, A any](
	c Container[S],
	cfg *settings,
	get func(S) (string, bool),
	set func(S, string) S,
	steps map[string]step[S, A],
	errs []error,
) (*Reducer[S, A], error) {
	for _, name := range slices.Sorted(maps.Keys(steps)) {
		if err := status.Validate(name); err != nil {
			errs = append(errs, err)
		}
	}

	if !cfg.lenient {
		if _, ok := steps[status.Init]; !ok {
			errs = append(errs, ErrMissingInitHandler)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
	}

	r := &Reducer[S, A]{
		steps:     steps,
		container: c,
		getStatus: get,
		setStatus: set,
		logger:    cfg.logger,
	}
	if v, ok := c.(stateValidator[S]); ok {
		r.validate = v.Validate
	}
	return r, nil
}

// Status returns the status that the next dispatch against state would use.
func (r *Reducer[S, A]) Status(state S) string {
	current, _ := r.getStatus(state)
	return status.Resolve(current)
}

// Statuses returns the sorted list of statuses that have a handler.
func (r *Reducer[S, A]) Statuses() []string {
	return slices.Sorted(maps.Keys(r.steps))
}

// Reduce runs action through the handler owning state's status.
func (r *Reducer[S, A]) Reduce(state S, action A) (S, error) {
	return r.ReduceWithExtra(state, action, nil)
}

// ReduceWithExtra is like Reduce, and forwards extra to the handler unchanged.
//
// When the handler returns state itself and asks for no other status, state is
// returned as-is. Otherwise the handler's result is merged over state and the
// merged value is stamped with the requested status, or with the current one if
// none was requested. Returns a *MissingHandlerError when the current status has
// no handler. Containers that validate states check both the incoming state and
// the handler's result.
func (r *Reducer[S, A]) ReduceWithExtra(state S, action A, extra any) (S, error) {
	var zero S

	if r.validate != nil {
		if err := r.validate(state); err != nil {
			return zero, err
		}
	}

	raw, stamped := r.getStatus(state)
	stamped = stamped && raw != ""
	current := status.Resolve(raw)

	handle, ok := r.steps[current]
	if !ok {
		return zero, &MissingHandlerError{Status: current}
	}

	update, next := handle(state, action, extra)
	if r.validate != nil {
		if err := r.validate(update); err != nil {
			return zero, fmt.Errorf("handler for status %s returned an invalid state: %w", current, err)
		}
	}
	if next == "" {
		next = current
	}

	// no transition: keep the caller's value so unchanged dispatches are referentially stable
	if stamped && next == current && r.container.Same(update, state) {
		return state, nil
	}

	merged := r.setStatus(r.container.Merge(state, update), next)

	if next != current {
		if _, ok := r.steps[next]; !ok {
			r.logger.Warn("Transition to status without a handler", "from", current, "to", next)
		} else {
			r.logger.Debug("Transition successful", "from", current, "to", next)
		}
	}

	return merged, nil
}

// Func returns the reducer as a plain function, for dispatchers that only need
// the (state, action) signature.
func (r *Reducer[S, A]) Func() func(S, A) (S, error) {
	return r.Reduce
}
