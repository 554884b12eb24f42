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

import "fmt"

// ValidateDocument validates a compact document.
//
// Validation rules:
//   - ID must be non-zero (the directory never assigns id 0)
//
// NOT validated:
//   - Text (an empty bio compacts to an empty about line, which is legal)
func ValidateDocument(doc Document) error {
	if doc.ID == 0 {
		return fmt.Errorf("%w: zero id", ErrInvalidDocument)
	}
	return nil
}

// ValidateEntry validates an index entry before it is persisted.
//
// Validation rules:
//   - ID must be non-zero
//   - Vector must be present (a vectorless entry can never be searched)
func ValidateEntry(entry *IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}
	if entry.ID == 0 {
		return fmt.Errorf("%w: zero id", ErrInvalidEntry)
	}
	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrMissingVector)
	}
	return nil
}
