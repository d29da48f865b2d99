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

package reducer

import (
	"fmt"
	"log/slog"
)

// Option is a functional option for configuring a Reducer during construction.
type Option func(*settings) error

type settings struct {
	logger   *slog.Logger
	accessor any
	lenient  bool
}

// accessor is the typed form of the functions passed to WithStatusAccessor.
type accessor[S any] struct {
	get func(S) (string, bool)
	set func(S, string) S
}

// WithLogger sets the logger for the reducer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithLogHandler creates a new slog instance for the reducer using your slog.Handler implementation.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *settings) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		s.logger = slog.New(handler)
		return nil
	}
}

// WithStatusAccessor replaces the container's own status field with the given
// get and set functions, so the status can live anywhere in the state.
// The state type of the accessor must match the reducer's state type.
//
// Example:
//
//	r, err := reducer.NewObject(handlers, reducer.WithStatusAccessor(
//	    func(s reducer.State) (string, bool) { v, ok := s["phase"].(string); return v, ok },
//	    func(s reducer.State, status string) reducer.State { return s.With(reducer.State{"phase": status}) },
//	))
func WithStatusAccessor[S any](get func(S) (string, bool), set func(S, string) S) Option {
	return func(s *settings) error {
		if get == nil || set == nil {
			return fmt.Errorf("status accessor functions cannot be nil")
		}
		s.accessor = accessor[S]{get: get, set: set}
		return nil
	}
}

// WithLenient defers the INIT handler check from construction to dispatch.
// A lenient reducer only fails when the status it resolves has no handler.
func WithLenient() Option {
	return func(s *settings) error {
		s.lenient = true
		return nil
	}
}
