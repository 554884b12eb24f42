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
	"encoding/json"
	"strings"

	"github.com/poiesic/hobbyfind/core"
)

// parseExtraction turns a raw model response into a tagged Extraction.
//
// The ladder, in order:
//  1. strict: the response must be exactly {"matches": {category: [ints]}}
//  2. lenient: any JSON object with a matches field; values coerced to ids
//     where possible, uncoercible values dropped
//  3. empty: nothing parseable at all
//
// The ladder never returns an error; total failure is the Empty variant.
func parseExtraction(raw string) core.Extraction {
	raw = stripCodeFences(raw)
	if raw == "" {
		return core.Extraction{Status: core.ExtractionEmpty}
	}
	raw = repairJSON(raw)

	if matches, ok := parseStrict(raw); ok {
		return core.Extraction{Status: core.ExtractionValid, Matches: matches}
	}
	if matches, ok := parseLenient(raw); ok {
		return core.Extraction{Status: core.ExtractionRecovered, Matches: matches}
	}
	return core.Extraction{Status: core.ExtractionEmpty}
}

// strictResponse is the exact schema the model is instructed to emit.
type strictResponse struct {
	Matches map[string][]json.Number `json:"matches"`
}

func parseStrict(raw string) (map[string][]core.ID, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var resp strictResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, false
	}
	if resp.Matches == nil {
		return nil, false
	}

	matches := make(map[string][]core.ID, len(resp.Matches))
	for category, nums := range resp.Matches {
		ids := make([]core.ID, 0, len(nums))
		for _, num := range nums {
			n, err := num.Int64()
			if err != nil {
				// Non-integer id under the strict schema fails the
				// whole strict parse; the lenient pass will salvage
				// whatever it can.
				return nil, false
			}
			ids = append(ids, core.ID(n))
		}
		matches[category] = ids
	}
	return matches, true
}

func parseLenient(raw string) (map[string][]core.ID, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}

	inner, ok := obj["matches"].(map[string]any)
	if !ok {
		return nil, false
	}

	matches := make(map[string][]core.ID, len(inner))
	for category, value := range inner {
		list, ok := value.([]any)
		if !ok {
			continue
		}
		ids := make([]core.ID, 0, len(list))
		for _, item := range list {
			id, err := core.ParseID(item)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		matches[category] = ids
	}
	return matches, true
}

// stripCodeFences removes a surrounding markdown code fence, which chat
// models add even when told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON attempts to fix common JSON formatting issues from LLM
// responses. It specifically handles missing opening quotes before keys in
// JSON objects, e.g. `, type":` -> `, "type":`.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+100)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys
		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			// Skip whitespace
			for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
				fixed = append(fixed, result[i])
				i++
			}

			// Check if we have an unquoted key (starts with letter, not with quote)
			if i < len(result) && result[i] != '"' && isLetter(result[i]) {
				keyStart := i
				// Find the end of the key name
				for i < len(result) && (isLetter(result[i]) || result[i] == '_' || result[i] == ' ') {
					i++
				}
				keyEnd := i

				// Followed by ": means the opening quote is missing
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					fixed = append(fixed, '"')
					for j := keyStart; j < keyEnd; j++ {
						if result[j] != ' ' || (j > keyStart && j < keyEnd-1) {
							fixed = append(fixed, result[j])
						}
					}
					// Closing quote is already there at result[i]
					continue
				} else {
					// Not an unquoted key, just copy what we skipped
					for j := keyStart; j < i; j++ {
						fixed = append(fixed, result[j])
					}
				}
			}
		} else {
			fixed = append(fixed, ch)
			i++
		}
	}

	return string(fixed)
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
