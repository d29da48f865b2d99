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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robbyt/go-reducer"
	"github.com/robbyt/go-reducer/status"
	"github.com/robbyt/go-reducer/store"
	"github.com/robbyt/go-reducer/store/broadcast"
)

// Statuses of the users request
const (
	StatusIdle       = status.Init
	StatusInProgress = "IN_PROGRESS"
)

// Action is dispatched to the store.
type Action struct {
	Type    string
	Payload any
}

// Config is read from the environment, and from a .env file when one exists.
type Config struct {
	LogLevel    string `env:"REDUCER_LOG_LEVEL"    envDefault:"debug"`
	StatusField string `env:"REDUCER_STATUS_FIELD" envDefault:"status"`
	SnapshotDir string `env:"REDUCER_SNAPSHOT_DIR"`
}

func loadConfig() (Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// newLogger creates a text logger that omits the time attribute.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(handler).WithGroup("example")
}

// getHandlers returns the handlers of a users request, with the status under field.
func getHandlers(field string) map[string]reducer.Handler[reducer.State, Action] {
	idle := func(state reducer.State, action Action) reducer.State {
		switch action.Type {
		case "FETCH_USERS":
			return state.With(reducer.State{"error": nil, field: StatusInProgress})
		default:
			return state
		}
	}

	inProgress := func(state reducer.State, action Action) reducer.State {
		switch action.Type {
		case "FETCH_USERS_RESPONSE":
			return state.With(reducer.State{"error": nil, "users": action.Payload, field: StatusIdle})
		case "FETCH_USERS_FAIL":
			return state.With(reducer.State{"error": action.Payload, field: StatusIdle})
		default:
			return state
		}
	}

	return map[string]reducer.Handler[reducer.State, Action]{
		StatusIdle:       reducer.Simple(idle),
		StatusInProgress: reducer.Simple(inProgress),
	}
}

func newStore(logger *slog.Logger, field string) (*store.Store[reducer.State, Action], error) {
	r, err := reducer.New(reducer.Object(field), getHandlers(field), reducer.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return store.New(r, nil, store.WithLogger(logger))
}

// listenForStatusChanges logs every status change until ctx is done.
func listenForStatusChanges(
	ctx context.Context,
	logger *slog.Logger,
	s *store.Store[reducer.State, Action],
) (<-chan struct{}, error) {
	changes, err := s.Subscribe(ctx, broadcast.WithTimeout(time.Second))
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for change := range changes {
			logger.Info("Status change received", "from", change.From, "to", change.To)
		}
		logger.Debug("Context done, exiting listener")
	}()
	return done, nil
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	s, err := newStore(logger, cfg.StatusField)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	done, err := listenForStatusChanges(ctx, logger, s)
	if err != nil {
		cancel()
		return err
	}

	actions := []Action{
		{Type: "FETCH_USERS"},
		{Type: "FETCH_USERS_FAIL", Payload: "timeout"},
		{Type: "FETCH_USERS"},
		{Type: "FETCH_USERS_RESPONSE", Payload: []string{"userFoo", "userBar", "userBaz"}},
	}
	for _, action := range actions {
		if err := s.Dispatch(action); err != nil {
			cancel()
			return err
		}
	}
	logger.Info("Final state", "state", s.State())

	if cfg.SnapshotDir != "" {
		p, err := store.NewYAMLPersister[reducer.State](cfg.SnapshotDir)
		if err != nil {
			cancel()
			return err
		}
		if err := s.Save(ctx, p, "users"); err != nil {
			cancel()
			return err
		}
		logger.Info("Snapshot saved", "dir", cfg.SnapshotDir)
	}

	cancel()
	<-done
	return nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info("Done.")
}
