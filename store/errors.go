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

import "errors"

var (
	// ErrNilReducer is returned when a store is created without a reducer
	ErrNilReducer = errors.New("reducer cannot be nil")

	// ErrEmptySnapshotID is returned when a snapshot has no ID to store it under
	ErrEmptySnapshotID = errors.New("snapshot ID cannot be empty")

	// ErrInvalidSnapshotID is returned when a snapshot ID is not a plain file name
	ErrInvalidSnapshotID = errors.New("snapshot ID must be a plain file name")

	// ErrSnapshotStatus is returned when a snapshot's status does not match its state
	ErrSnapshotStatus = errors.New("snapshot status does not match state")
)
