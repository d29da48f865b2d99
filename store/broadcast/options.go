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

package broadcast

import "time"

// Option configures a subscription.
type Option func(*subscriber)

// WithBufferSize gives the subscription a channel buffered for size changes.
func WithBufferSize(size int) Option {
	return func(s *subscriber) {
		s.ch = make(chan Change, size)
		s.external = false
	}
}

// WithCustomChannel delivers into ch. The manager never closes it.
func WithCustomChannel(ch chan Change) Option {
	return func(s *subscriber) {
		s.ch = ch
		s.external = true
	}
}

// WithTimeout controls how long a broadcast waits on a full channel.
// Zero (default) drops the change right away, a positive duration waits up to
// that long, and a negative one waits until delivery or until the
// subscription's context is done.
func WithTimeout(timeout time.Duration) Option {
	return func(s *subscriber) {
		s.timeout = timeout
	}
}

// WithTargets only delivers changes into one of the given statuses.
func WithTargets(statuses ...string) Option {
	return func(s *subscriber) {
		s.to = statusSet(s.to, statuses)
	}
}

// WithSources only delivers changes out of one of the given statuses.
func WithSources(statuses ...string) Option {
	return func(s *subscriber) {
		s.from = statusSet(s.from, statuses)
	}
}

func statusSet(set map[string]struct{}, statuses []string) map[string]struct{} {
	if set == nil {
		set = make(map[string]struct{}, len(statuses))
	}
	for _, st := range statuses {
		set[st] = struct{}{}
	}
	return set
}
