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

// Handler processes an action for the status it is registered under. It returns
// either the state it was given, signaling that nothing changed, or a new value
// that is merged over the prior state. A handler requests a status change by
// writing the new status into the value it returns.
type Handler[S, A any] func(state S, action A, extra any) S

// Simple adapts a handler that has no use for the extra argument.
func Simple[S, A any](fn func(state S, action A) S) Handler[S, A] {
	return func(state S, action A, _ any) S {
		return fn(state, action)
	}
}

// Transition is the result of a MarkedHandler: a state update plus an optional
// request to move to another status. The request travels next to the update
// instead of inside it, so it can never collide with fields of the state.
type Transition[S any] struct {
	State S
	next  string
}

// Stay returns a Transition that keeps the current status.
func Stay[S any](update S) Transition[S] {
	return Transition[S]{State: update}
}

// Become returns a Transition that moves the reducer to status next.
func Become[S any](update S, next string) Transition[S] {
	return Transition[S]{State: update, next: next}
}

// Next returns the requested status, if any.
func (t Transition[S]) Next() (string, bool) {
	return t.next, t.next != ""
}

// MarkedHandler is a handler that signals status changes with Become rather
// than through the state's own status field.
type MarkedHandler[S, A any] func(state S, action A, extra any) Transition[S]

// SimpleMarked adapts a marked handler that has no use for the extra argument.
func SimpleMarked[S, A any](fn func(state S, action A) Transition[S]) MarkedHandler[S, A] {
	return func(state S, action A, _ any) Transition[S] {
		return fn(state, action)
	}
}
