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

// Package pmap provides a reducer container backed by persistent (immutable)
// maps. Every update returns a new map that shares structure with the old one,
// so old states stay valid snapshots without copying.
//
// States are passed around as the dynamic type any so that a reducer can reject
// values that are not persistent maps with reducer.ErrStateType.
package pmap

import (
	"fmt"

	"github.com/benbjohnson/immutable"

	"github.com/robbyt/go-reducer"
)

// Map is the persistent map type used as state.
type Map = *immutable.Map[string, any]

// Empty returns an empty persistent map.
func Empty() Map {
	return immutable.NewMap[string, any](nil)
}

// From builds a persistent map holding the entries of m.
func From(m map[string]any) Map {
	b := immutable.NewMapBuilder[string, any](nil)
	for k, v := range m {
		b.Set(k, v)
	}
	return b.Map()
}

// ToObject copies a persistent map into a plain reducer.State.
// A nil map gives a nil State.
func ToObject(m Map) reducer.State {
	if m == nil {
		return nil
	}
	out := make(reducer.State, m.Len())
	itr := m.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		out[k] = v
	}
	return out
}

// Container implements reducer.Container for persistent maps.
type Container struct {
	field string
}

// NewContainer returns a Container that keeps the status under field,
// or reducer.StatusField when field is empty.
func NewContainer(field string) Container {
	if field == "" {
		field = reducer.StatusField
	}
	return Container{field: field}
}

// Validate rejects anything that is not nil or a persistent map.
func (c Container) Validate(state any) error {
	if state == nil {
		return nil
	}
	if _, ok := state.(Map); ok {
		return nil
	}
	return fmt.Errorf(
		"%w: got %T, expected a persistent map (use reducer.NewObject for plain maps)",
		reducer.ErrStateType, state,
	)
}

func (c Container) Status(state any) (string, bool) {
	v, ok := asMap(state).Get(c.field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c Container) WithStatus(state any, status string) any {
	return asMap(state).Set(c.field, status)
}

// Merge sets every entry of update onto prev.
func (c Container) Merge(prev, update any) any {
	out := asMap(prev)
	u, ok := update.(Map)
	if !ok || u == nil {
		return out
	}
	itr := u.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		out = out.Set(k, v)
	}
	return out
}

// Same reports pointer identity. A nil interface and a nil map are the same.
func (c Container) Same(a, b any) bool {
	ma, aok := a.(Map)
	mb, bok := b.(Map)
	switch {
	case aok && bok:
		return ma == mb
	case a == nil && b == nil:
		return true
	case a == nil:
		return bok && mb == nil
	case b == nil:
		return aok && ma == nil
	default:
		return false
	}
}

func asMap(state any) Map {
	if m, ok := state.(Map); ok && m != nil {
		return m
	}
	return Empty()
}

// New creates an implicit-field reducer over persistent maps with the status under reducer.StatusField.
func New[A any](handlers map[string]reducer.Handler[any, A], opts ...reducer.Option) (*reducer.Reducer[any, A], error) {
	return reducer.New[any, A](NewContainer(""), handlers, opts...)
}

// NewMarked creates a marker-convention reducer over persistent maps with the status under reducer.StatusField.
func NewMarked[A any](handlers map[string]reducer.MarkedHandler[any, A], opts ...reducer.Option) (*reducer.Reducer[any, A], error) {
	return reducer.NewMarked[any, A](NewContainer(""), handlers, opts...)
}
