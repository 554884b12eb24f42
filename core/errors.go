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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidUser indicates a directory payload that cannot be a User.
	ErrInvalidUser = errors.New("invalid user record")

	// ErrMalformedID indicates a value that cannot be coerced to an ID.
	ErrMalformedID = errors.New("malformed identifier")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidEntry indicates an IndexEntry failed validation.
	ErrInvalidEntry = errors.New("invalid index entry")

	// ErrMissingVector indicates an index entry without an embedding.
	ErrMissingVector = errors.New("entry has no embedding vector")
)
