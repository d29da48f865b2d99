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
	"errors"
	"fmt"
)

// ErrConfiguration is returned when a reducer cannot be constructed from the given handler table
var ErrConfiguration = errors.New("reducer configuration is invalid")

// ErrMissingInitHandler is returned when a strict reducer has no handler for the INIT status
var ErrMissingInitHandler = errors.New("handler table must have an INIT handler")

// ErrMissingHandler is returned when the current status has no registered handler
var ErrMissingHandler = errors.New("missing handler for status")

// ErrNilHandler is returned when a status is registered with a nil handler
var ErrNilHandler = errors.New("handler cannot be nil")

// ErrNilContainer is returned when no state container is provided
var ErrNilContainer = errors.New("state container cannot be nil")

// ErrAccessorType is returned when a status accessor does not match the reducer's state type
var ErrAccessorType = errors.New("status accessor does not match state type")

// ErrStateType is returned when a state value is not the container type a reducer expects
var ErrStateType = errors.New("state type is not supported by this reducer")

// MissingHandlerError reports the status that could not be resolved to a handler.
// It matches ErrMissingHandler with errors.Is.
type MissingHandlerError struct {
	Status string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("%s %s", ErrMissingHandler, e.Status)
}

func (e *MissingHandlerError) Unwrap() error {
	return ErrMissingHandler
}
