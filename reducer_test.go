package reducer

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-reducer/status"
)

type testAction struct {
	Type    string
	Payload any
}

const statusInProgress = "IN_PROGRESS"

var testUsers = []string{"userFoo", "userBar", "userBaz"}

func initHandler(state State, action testAction) State {
	switch action.Type {
	case "FETCH_USERS":
		return state.With(State{"error": nil, StatusField: statusInProgress})
	default:
		return state
	}
}

func inProgressHandler(state State, action testAction) State {
	switch action.Type {
	case "FETCH_USERS_RESPONSE":
		payload, _ := action.Payload.(State)
		return state.With(State{"error": nil, "users": payload.Get("users"), StatusField: status.Init})
	case "FETCH_USERS_FAIL":
		return state.With(State{"error": action.Payload, StatusField: status.Init})
	default:
		return state
	}
}

func newTestHandlers() map[string]Handler[State, testAction] {
	return map[string]Handler[State, testAction]{
		status.Init:      Simple(initHandler),
		statusInProgress: Simple(inProgressHandler),
	}
}

func sameState(a, b State) bool {
	return DefaultObject().Same(a, b)
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates reducer with valid handlers", func(t *testing.T) {
		r, err := NewObject(newTestHandlers())
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, []string{status.Init, statusInProgress}, r.Statuses())
	})

	t.Run("empty handler table fails", func(t *testing.T) {
		r, err := NewObject(map[string]Handler[State, testAction]{})
		require.ErrorIs(t, err, ErrConfiguration)
		require.ErrorIs(t, err, ErrMissingInitHandler)
		assert.Nil(t, r)
	})

	t.Run("nil handler table fails", func(t *testing.T) {
		r, err := NewObject[testAction](nil)
		require.ErrorIs(t, err, ErrConfiguration)
		assert.Nil(t, r)
	})

	t.Run("missing INIT handler fails", func(t *testing.T) {
		r, err := NewObject(map[string]Handler[State, testAction]{
			statusInProgress: Simple(inProgressHandler),
		})
		require.ErrorIs(t, err, ErrMissingInitHandler)
		assert.Nil(t, r)
	})

	t.Run("nil handler fails", func(t *testing.T) {
		r, err := NewObject(map[string]Handler[State, testAction]{
			status.Init:      Simple(initHandler),
			statusInProgress: nil,
		})
		require.ErrorIs(t, err, ErrConfiguration)
		require.ErrorIs(t, err, ErrNilHandler)
		assert.Contains(t, err.Error(), statusInProgress)
		assert.Nil(t, r)
	})

	t.Run("invalid status names are reported together", func(t *testing.T) {
		_, err := NewObject(map[string]Handler[State, testAction]{
			status.Init: Simple(initHandler),
			" DONE":     Simple(initHandler),
			"":          Simple(initHandler),
		})
		require.ErrorIs(t, err, ErrConfiguration)
		require.ErrorIs(t, err, status.ErrInvalidWhitespace)
		require.ErrorIs(t, err, status.ErrEmptyName)
	})

	t.Run("nil container fails", func(t *testing.T) {
		r, err := New[State](nil, newTestHandlers())
		require.ErrorIs(t, err, ErrNilContainer)
		assert.Nil(t, r)
	})

	t.Run("accessor for another state type fails", func(t *testing.T) {
		_, err := NewObject(newTestHandlers(), WithStatusAccessor(
			func(s map[string]int) (string, bool) { return "", false },
			func(s map[string]int, _ string) map[string]int { return s },
		))
		require.ErrorIs(t, err, ErrConfiguration)
		require.ErrorIs(t, err, ErrAccessorType)
	})

	t.Run("nil logger option fails", func(t *testing.T) {
		_, err := NewObject(newTestHandlers(), WithLogger(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to apply option")
	})

	t.Run("nil log handler option fails", func(t *testing.T) {
		_, err := NewObject(newTestHandlers(), WithLogHandler(nil))
		require.Error(t, err)
	})

	t.Run("lenient reducer accepts an empty table", func(t *testing.T) {
		r, err := NewObject(map[string]Handler[State, testAction]{}, WithLenient())
		require.NoError(t, err)

		_, err = r.Reduce(nil, testAction{Type: "DUMMY"})
		var missing *MissingHandlerError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, status.Init, missing.Status)
	})

	t.Run("MustNew panics on invalid table", func(t *testing.T) {
		assert.Panics(t, func() {
			MustNew(DefaultObject(), map[string]Handler[State, testAction]{})
		})
		assert.NotPanics(t, func() {
			MustNew(DefaultObject(), newTestHandlers())
		})
	})
}

func TestReduce(t *testing.T) {
	t.Parallel()

	r, err := NewObject(newTestHandlers())
	require.NoError(t, err)

	t.Run("first dispatch routes through INIT", func(t *testing.T) {
		got, err := r.Reduce(nil, testAction{Type: "DUMMY"})
		require.NoError(t, err)
		assert.Equal(t, State{StatusField: status.Init}, got)
	})

	t.Run("empty status is treated as INIT", func(t *testing.T) {
		got, err := r.Reduce(State{StatusField: ""}, testAction{Type: "FETCH_USERS"})
		require.NoError(t, err)
		assert.Equal(t, statusInProgress, got.GetString(StatusField))
	})

	t.Run("unhandled action returns the same state", func(t *testing.T) {
		state := State{StatusField: status.Init, "users": testUsers}
		got, err := r.Reduce(state, testAction{Type: "FETCH_USERS_RESPONSE"})
		require.NoError(t, err)
		assert.True(t, sameState(state, got))
	})

	t.Run("handler status change routes the next dispatch", func(t *testing.T) {
		state, err := r.Reduce(nil, testAction{Type: "FETCH_USERS"})
		require.NoError(t, err)
		assert.Equal(t, statusInProgress, r.Status(state))

		// FETCH_USERS is not handled while in progress
		next, err := r.Reduce(state, testAction{Type: "FETCH_USERS"})
		require.NoError(t, err)
		assert.True(t, sameState(state, next))

		next, err = r.Reduce(state, testAction{Type: "FETCH_USERS_FAIL", Payload: "timeout"})
		require.NoError(t, err)
		assert.Equal(t, State{"error": "timeout", StatusField: status.Init}, next)
	})

	t.Run("input state is not modified", func(t *testing.T) {
		state := State{StatusField: status.Init, "error": "old"}
		_, err := r.Reduce(state, testAction{Type: "FETCH_USERS"})
		require.NoError(t, err)
		assert.Equal(t, State{StatusField: status.Init, "error": "old"}, state)
	})

	t.Run("unknown status fails with its name", func(t *testing.T) {
		got, err := r.Reduce(State{StatusField: "UNKNOWN"}, testAction{Type: "X"})
		require.ErrorIs(t, err, ErrMissingHandler)
		assert.Contains(t, err.Error(), "UNKNOWN")
		assert.Nil(t, got)

		var missing *MissingHandlerError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "UNKNOWN", missing.Status)
	})

	t.Run("Func exposes the reducer as a function", func(t *testing.T) {
		fn := r.Func()
		got, err := fn(nil, testAction{Type: "FETCH_USERS"})
		require.NoError(t, err)
		assert.Equal(t, statusInProgress, got.GetString(StatusField))
	})
}

func TestReducePartialUpdates(t *testing.T) {
	t.Parallel()

	counter := func(state State, action testAction) State {
		switch action.Type {
		case "INC":
			n, _ := state.Get("count").(int)
			return State{"count": n + 1}
		case "DONE":
			return State{StatusField: "DONE"}
		default:
			return state
		}
	}

	r, err := NewObject(map[string]Handler[State, testAction]{
		status.Init: Simple(counter),
		"DONE":      Simple(func(state State, _ testAction) State { return state }),
	})
	require.NoError(t, err)

	state := State{StatusField: status.Init, "name": "clicks"}

	state, err = r.Reduce(state, testAction{Type: "INC"})
	require.NoError(t, err)
	state, err = r.Reduce(state, testAction{Type: "INC"})
	require.NoError(t, err)
	assert.Equal(t, State{StatusField: status.Init, "name": "clicks", "count": 2}, state)

	state, err = r.Reduce(state, testAction{Type: "DONE"})
	require.NoError(t, err)
	assert.Equal(t, State{StatusField: "DONE", "name": "clicks", "count": 2}, state)
}

func TestReduceWithExtra(t *testing.T) {
	t.Parallel()

	type flags struct {
		Beta bool
	}

	var seen []any
	r, err := NewObject(map[string]Handler[State, testAction]{
		status.Init: func(state State, action testAction, extra any) State {
			seen = append(seen, extra)
			if f, ok := extra.(flags); ok && f.Beta {
				return state.With(State{"beta": true})
			}
			return state
		},
	})
	require.NoError(t, err)

	state, err := r.ReduceWithExtra(State{StatusField: status.Init}, testAction{Type: "X"}, flags{Beta: true})
	require.NoError(t, err)
	assert.Equal(t, true, state.Get("beta"))

	_, err = r.Reduce(state, testAction{Type: "X"})
	require.NoError(t, err)

	assert.Equal(t, []any{flags{Beta: true}, nil}, seen)
}

func TestReduceMarked(t *testing.T) {
	t.Parallel()

	idle := func(state State, action testAction) Transition[State] {
		switch action.Type {
		case "START":
			// the status key here is plain user data and does not drive the transition
			return Become(State{"error": nil, StatusField: "ignored"}, "RUNNING")
		case "TOUCH":
			return Become(state, status.Init)
		case "JUMP":
			return Become(state, "RUNNING")
		default:
			return Stay(state)
		}
	}
	running := func(state State, action testAction) Transition[State] {
		if action.Type == "STOP" {
			return Become(State{"stopped": true}, status.Init)
		}
		return Stay(State{"ticks": 1})
	}

	r, err := NewObjectMarked(map[string]MarkedHandler[State, testAction]{
		status.Init: SimpleMarked(idle),
		"RUNNING":   SimpleMarked(running),
	})
	require.NoError(t, err)

	t.Run("first dispatch stamps INIT", func(t *testing.T) {
		got, err := r.Reduce(nil, testAction{Type: "DUMMY"})
		require.NoError(t, err)
		assert.Equal(t, State{StatusField: status.Init}, got)
	})

	t.Run("Stay with the same state is a no-op", func(t *testing.T) {
		state := State{StatusField: status.Init}
		got, err := r.Reduce(state, testAction{Type: "DUMMY"})
		require.NoError(t, err)
		assert.True(t, sameState(state, got))
	})

	t.Run("Become with the current status is a no-op", func(t *testing.T) {
		state := State{StatusField: status.Init}
		got, err := r.Reduce(state, testAction{Type: "TOUCH"})
		require.NoError(t, err)
		assert.True(t, sameState(state, got))
	})

	t.Run("Become with the same state still changes status", func(t *testing.T) {
		state := State{StatusField: status.Init}
		got, err := r.Reduce(state, testAction{Type: "JUMP"})
		require.NoError(t, err)
		assert.False(t, sameState(state, got))
		assert.Equal(t, "RUNNING", got.GetString(StatusField))
		assert.Equal(t, status.Init, state.GetString(StatusField))
	})

	t.Run("marker overrides the status field of the update", func(t *testing.T) {
		got, err := r.Reduce(State{StatusField: status.Init}, testAction{Type: "START"})
		require.NoError(t, err)
		assert.Equal(t, State{"error": nil, StatusField: "RUNNING"}, got)

		got, err = r.Reduce(got, testAction{Type: "TICK"})
		require.NoError(t, err)
		assert.Equal(t, State{"error": nil, "ticks": 1, StatusField: "RUNNING"}, got)

		got, err = r.Reduce(got, testAction{Type: "STOP"})
		require.NoError(t, err)
		assert.Equal(t, State{"error": nil, "ticks": 1, "stopped": true, StatusField: status.Init}, got)
	})

	t.Run("replayed snapshots resolve their own status", func(t *testing.T) {
		old := State{StatusField: status.Init}
		newer, err := r.Reduce(old, testAction{Type: "JUMP"})
		require.NoError(t, err)
		require.Equal(t, "RUNNING", newer.GetString(StatusField))

		// dispatching against the older snapshot still routes through INIT
		got, err := r.Reduce(old, testAction{Type: "START"})
		require.NoError(t, err)
		assert.Equal(t, "RUNNING", got.GetString(StatusField))
	})

	t.Run("nil marked handler fails", func(t *testing.T) {
		_, err := NewObjectMarked(map[string]MarkedHandler[State, testAction]{status.Init: nil})
		require.ErrorIs(t, err, ErrNilHandler)
	})
}

func TestTransition(t *testing.T) {
	t.Parallel()

	next, ok := Stay(State{}).Next()
	assert.False(t, ok)
	assert.Empty(t, next)

	next, ok = Become(State{}, "DONE").Next()
	assert.True(t, ok)
	assert.Equal(t, "DONE", next)
}

func TestWithStatusAccessor(t *testing.T) {
	t.Parallel()

	t.Run("custom field", func(t *testing.T) {
		handler := func(state State, action testAction) State {
			if action.Type == "GO" {
				return state.With(State{"phase": "GOING"})
			}
			return state
		}
		r, err := NewObject(map[string]Handler[State, testAction]{
			status.Init: Simple(handler),
			"GOING":     Simple(handler),
		}, WithStatusAccessor(
			func(s State) (string, bool) { v, ok := s["phase"].(string); return v, ok },
			func(s State, st string) State { return s.With(State{"phase": st}) },
		))
		require.NoError(t, err)

		got, err := r.Reduce(nil, testAction{Type: "DUMMY"})
		require.NoError(t, err)
		assert.Equal(t, State{"phase": status.Init}, got)

		got, err = r.Reduce(got, testAction{Type: "GO"})
		require.NoError(t, err)
		assert.Equal(t, State{"phase": "GOING"}, got)
		assert.Equal(t, "GOING", r.Status(got))
	})

	t.Run("nested path", func(t *testing.T) {
		r, err := NewObject(newTestHandlers(), WithStatusAccessor(NestedStatus("meta", "machine")))
		require.NoError(t, err)

		got, err := r.Reduce(State{"meta": State{"owner": "ui"}}, testAction{Type: "DUMMY"})
		require.NoError(t, err)
		assert.Equal(t, State{"meta": State{"owner": "ui", "machine": status.Init}}, got)
		assert.Equal(t, status.Init, r.Status(got))
	})

	t.Run("nil accessor functions fail", func(t *testing.T) {
		_, err := NewObject(newTestHandlers(), WithStatusAccessor[State](nil, nil))
		require.Error(t, err)
	})
}

func TestNestedStatus(t *testing.T) {
	t.Parallel()

	get, set := NestedStatus("a", "b")

	_, ok := get(nil)
	assert.False(t, ok)

	_, ok = get(State{"a": "not an object"})
	assert.False(t, ok)

	v, ok := get(State{"a": map[string]any{"b": "X"}})
	assert.True(t, ok)
	assert.Equal(t, "X", v)

	orig := State{"a": State{"b": "X", "c": 1}}
	updated := set(orig, "Y")
	assert.Equal(t, State{"a": State{"b": "Y", "c": 1}}, updated)
	assert.Equal(t, State{"a": State{"b": "X", "c": 1}}, orig)

	get, set = NestedStatus()
	assert.Equal(t, State{StatusField: "Z"}, set(nil, "Z"))
	v, _ = get(State{StatusField: "Z"})
	assert.Equal(t, "Z", v)
}

func TestReduceLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	r, err := NewObject(map[string]Handler[State, testAction]{
		status.Init: Simple(func(state State, action testAction) State {
			return state.With(State{StatusField: action.Type})
		}),
	}, WithLogHandler(handler))
	require.NoError(t, err)

	state, err := r.Reduce(nil, testAction{Type: "NOWHERE"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Transition to status without a handler")
	assert.Contains(t, buf.String(), "to=NOWHERE")

	_, err = r.Reduce(state, testAction{Type: "X"})
	require.ErrorIs(t, err, ErrMissingHandler)
	assert.True(t, errors.Is(err, ErrMissingHandler))
}

func TestState(t *testing.T) {
	t.Parallel()

	var empty State
	assert.Nil(t, empty.Get("x"))
	assert.Empty(t, empty.GetString("x"))
	assert.Nil(t, empty.Clone())
	assert.Equal(t, State{"x": 1}, empty.With(State{"x": 1}))

	s := State{"x": 1}
	c := s.Clone()
	c["x"] = 2
	assert.Equal(t, 1, s.Get("x"))

	assert.True(t, sameState(nil, nil))
	assert.True(t, sameState(s, s))
	assert.False(t, sameState(s, c))

	assert.Equal(t, "phase", Object("phase").(objectContainer).field)
	assert.Equal(t, StatusField, Object("").(objectContainer).field)
}
