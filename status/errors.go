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

package status

import "errors"

var (
	// ErrEmptyName is returned when a status name is an empty string.
	ErrEmptyName = errors.New("status name cannot be empty")

	// ErrWhitespaceName is returned when a status name contains only whitespace.
	ErrWhitespaceName = errors.New("status name cannot be whitespace-only")

	// ErrInvalidWhitespace is returned when a status name has leading or trailing whitespace.
	ErrInvalidWhitespace = errors.New("status name cannot have leading or trailing whitespace")
)
