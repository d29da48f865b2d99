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

// Container describes the aggregate type a reducer operates on.
type Container[S any] interface {
	// Status returns the status stored in state, and whether one was present.
	Status(state S) (string, bool)

	// WithStatus returns a copy of state carrying the given status.
	WithStatus(state S, status string) S

	// Merge shallow-merges update over a copy of prev.
	Merge(prev, update S) S

	// Same reports whether a and b are the same value (not merely equal).
	Same(a, b S) bool
}

// stateValidator is an optional interface for containers that can reject a
// state value before it reaches a handler.
type stateValidator[S any] interface {
	Validate(state S) error
}
