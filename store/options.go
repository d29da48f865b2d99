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
	"fmt"
	"log/slog"
)

// Option is a functional option for configuring a Store.
type Option func(*settings) error

type settings struct {
	logger *slog.Logger
	extra  any
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithLogHandler creates a new slog instance for the store using your slog.Handler implementation.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *settings) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		s.logger = slog.New(handler)
		return nil
	}
}

// WithExtra sets a value handed to every handler as its extra argument, such
// as feature flags or read-only configuration.
func WithExtra(v any) Option {
	return func(s *settings) error {
		s.extra = v
		return nil
	}
}
