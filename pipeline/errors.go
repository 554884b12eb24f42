// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable indicates the authoritative directory could not
	// be reached. Fails the current query; the index stays at its last
	// fully-synchronized state.
	ErrSourceUnavailable = errors.New("authoritative source unavailable")

	// ErrIndexUnavailable indicates cold start never completed.
	// Queries cannot proceed against an unbuilt index.
	ErrIndexUnavailable = errors.New("index unavailable, cold start required")

	// ErrModelUnavailable indicates the generative call failed.
	// Non-fatal: extraction degrades to an empty result.
	ErrModelUnavailable = errors.New("generative model unavailable")

	// ErrMalformedOutput indicates both the strict schema and the lenient
	// fallback failed to parse the model response.
	// Non-fatal: extraction degrades to an empty result.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrDirectoryRequired is returned when a directory client is not provided.
	ErrDirectoryRequired = errors.New("directory required")

	// ErrIndexRequired is returned when an index is not provided.
	ErrIndexRequired = errors.New("index required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")
)

// QueryError reports which pipeline stage a query failed in.
type QueryError struct {
	Stage Stage
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed in stage %s: %v", e.Stage, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func failedAt(stage Stage, err error) *QueryError {
	return &QueryError{Stage: stage, Err: err}
}
