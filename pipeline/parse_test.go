package pipeline

import (
	"testing"

	"github.com/poiesic/hobbyfind/core"
	"github.com/stretchr/testify/assert"
)

func TestParseExtraction_Strict(t *testing.T) {
	extraction := parseExtraction(`{"matches": {"hiking": [1, 3], "chess": [2]}}`)
	assert.Equal(t, core.ExtractionValid, extraction.Status)
	assert.Equal(t, []core.ID{1, 3}, extraction.Matches["hiking"])
	assert.Equal(t, []core.ID{2}, extraction.Matches["chess"])
}

func TestParseExtraction_StrictEmptyMatches(t *testing.T) {
	extraction := parseExtraction(`{"matches": {}}`)
	assert.Equal(t, core.ExtractionValid, extraction.Status)
	assert.True(t, extraction.IsEmpty())
}

func TestParseExtraction_CodeFenced(t *testing.T) {
	raw := "```json\n{\"matches\": {\"painting\": [4]}}\n```"
	extraction := parseExtraction(raw)
	assert.Equal(t, core.ExtractionValid, extraction.Status)
	assert.Equal(t, []core.ID{4}, extraction.Matches["painting"])
}

func TestParseExtraction_RepairedUnquotedKey(t *testing.T) {
	extraction := parseExtraction(`{matches": {"chess": [2]}}`)
	assert.Equal(t, core.ExtractionValid, extraction.Status)
	assert.Equal(t, []core.ID{2}, extraction.Matches["chess"])
}

func TestParseExtraction_LenientStringIDs(t *testing.T) {
	// String ids violate the strict schema but are recoverable.
	extraction := parseExtraction(`{"matches": {"hiking": ["1", "3"]}, "note": "here you go"}`)
	assert.Equal(t, core.ExtractionRecovered, extraction.Status)
	assert.Equal(t, []core.ID{1, 3}, extraction.Matches["hiking"])
}

func TestParseExtraction_LenientDropsGarbageEntries(t *testing.T) {
	extraction := parseExtraction(`{"matches": {"hiking": [1, "two", 3], "chess": "not a list"}}`)
	assert.Equal(t, core.ExtractionRecovered, extraction.Status)
	assert.Equal(t, []core.ID{1, 3}, extraction.Matches["hiking"])
	_, ok := extraction.Matches["chess"]
	assert.False(t, ok, "non-list category values are skipped")
}

func TestParseExtraction_NotJSON(t *testing.T) {
	extraction := parseExtraction("Sorry, I cannot help with that.")
	assert.Equal(t, core.ExtractionEmpty, extraction.Status)
	assert.True(t, extraction.IsEmpty())
}

func TestParseExtraction_NoMatchesField(t *testing.T) {
	extraction := parseExtraction(`{"results": {"hiking": [1]}}`)
	assert.Equal(t, core.ExtractionEmpty, extraction.Status)
}

func TestParseExtraction_Blank(t *testing.T) {
	assert.Equal(t, core.ExtractionEmpty, parseExtraction("").Status)
	assert.Equal(t, core.ExtractionEmpty, parseExtraction("   \n").Status)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripCodeFences(`{"a": 1}`))
}
