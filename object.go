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
	"maps"
	"reflect"
)

// StatusField is the key the default object container stores the status under.
const StatusField = "status"

// State is a plain-object state: a map of field names to values. Reducers never
// modify a State in place, and handlers must not either.
type State map[string]any

// Get returns the value stored under key, or nil. It is safe to call on a nil State.
func (s State) Get(key string) any {
	return s[key]
}

// GetString returns the string stored under key, or "" if there is none.
func (s State) GetString(key string) string {
	v, _ := s[key].(string)
	return v
}

// With returns a copy of s with fields written over it.
func (s State) With(fields State) State {
	out := make(State, len(s)+len(fields))
	maps.Copy(out, s)
	maps.Copy(out, fields)
	return out
}

// Clone returns a shallow copy of s. The clone of a nil State is nil.
func (s State) Clone() State {
	return maps.Clone(s)
}

type objectContainer struct {
	field string
}

// Object returns a Container for State values that keeps the status under field.
func Object(field string) Container[State] {
	if field == "" {
		field = StatusField
	}
	return objectContainer{field: field}
}

// DefaultObject returns a Container for State values that keeps the status under StatusField.
func DefaultObject() Container[State] {
	return objectContainer{field: StatusField}
}

func (c objectContainer) Status(state State) (string, bool) {
	v, ok := state[c.field].(string)
	return v, ok
}

func (c objectContainer) WithStatus(state State, status string) State {
	return state.With(State{c.field: status})
}

func (c objectContainer) Merge(prev, update State) State {
	return prev.With(update)
}

// Same compares map identity: two States are the same when they share storage.
func (c objectContainer) Same(a, b State) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

// NewObject creates an implicit-field reducer over State values with the status under StatusField.
func NewObject[A any](handlers map[string]Handler[State, A], opts ...Option) (*Reducer[State, A], error) {
	return New(DefaultObject(), handlers, opts...)
}

// NewObjectMarked creates a marker-convention reducer over State values with the status under StatusField.
func NewObjectMarked[A any](handlers map[string]MarkedHandler[State, A], opts ...Option) (*Reducer[State, A], error) {
	return NewMarked(DefaultObject(), handlers, opts...)
}

// NestedStatus returns a status accessor pair for a status stored below nested
// objects, such as NestedStatus("meta", "machine", "status"). Intermediate
// objects are copied on write. An empty path means StatusField.
//
//	r, err := reducer.NewObject(handlers, reducer.WithStatusAccessor(reducer.NestedStatus("meta", "status")))
func NestedStatus(path ...string) (func(State) (string, bool), func(State, string) State) {
	if len(path) == 0 {
		path = []string{StatusField}
	}
	path = append([]string(nil), path...)

	get := func(state State) (string, bool) {
		node := state
		for _, key := range path[:len(path)-1] {
			child, ok := asState(node[key])
			if !ok {
				return "", false
			}
			node = child
		}
		v, ok := node[path[len(path)-1]].(string)
		return v, ok
	}

	set := func(state State, status string) State {
		return setPath(state, path, status)
	}

	return get, set
}

func setPath(state State, path []string, value string) State {
	if len(path) == 1 {
		return state.With(State{path[0]: value})
	}
	child, _ := asState(state[path[0]])
	return state.With(State{path[0]: setPath(child, path[1:], value)})
}

func asState(v any) (State, bool) {
	switch m := v.(type) {
	case State:
		return m, true
	case map[string]any:
		return State(m), true
	default:
		return nil, false
	}
}
