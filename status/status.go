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

// Package status holds the status names shared by reducers and the rules for
// what makes a status name valid.
package status

import (
	"fmt"
	"strings"
)

// Init is the status a reducer assumes when the state does not carry one yet.
const Init = "INIT"

// Validate checks if a status name is valid.
// Returns an error if the name is empty, whitespace-only, or has surrounding whitespace.
func Validate(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: %q", ErrWhitespaceName, name)
	}
	if trimmed != name {
		return fmt.Errorf("%w: %q", ErrInvalidWhitespace, name)
	}
	return nil
}

// Resolve returns name, or Init when name is empty.
func Resolve(name string) string {
	if name == "" {
		return Init
	}
	return name
}
