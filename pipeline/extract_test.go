package pipeline

import (
	"context"
	"errors"
	"testing"

	aimock "github.com/poiesic/hobbyfind/ai/mock"
	"github.com/poiesic/hobbyfind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleDocs = []core.Document{
	{ID: 1, Text: "user_id: 1\nabout: I love hiking\n"},
	{ID: 2, Text: "user_id: 2\nabout: chess player\n"},
}

func TestExtract(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.Response = `{"matches": {"hiking": [1], "chess": [2]}}`
	extractor := newExtractor(completer)

	extraction := extractor.Extract(context.Background(), "who has outdoor hobbies?", sampleDocs)
	assert.Equal(t, core.ExtractionValid, extraction.Status)
	assert.Equal(t, []core.ID{1}, extraction.Matches["hiking"])
	assert.Equal(t, 1, completer.CallCount(), "one model call per extraction, no retries")
}

func TestExtract_PromptContainsSnippetsAndQuestion(t *testing.T) {
	completer := aimock.NewMockCompleter()
	extractor := newExtractor(completer)

	extractor.Extract(context.Background(), "who plays chess?", sampleDocs)

	prompts := completer.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "user_id: 1")
	assert.Contains(t, prompts[0], "chess player")
	assert.Contains(t, prompts[0], "who plays chess?")
}

func TestExtract_NoCandidatesSkipsModel(t *testing.T) {
	completer := aimock.NewMockCompleter()
	extractor := newExtractor(completer)

	extraction := extractor.Extract(context.Background(), "anything", nil)
	assert.True(t, extraction.IsEmpty())
	assert.Equal(t, 0, completer.CallCount(), "no candidates means no model call")
}

func TestExtract_ModelFailureDegradesToEmpty(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("connection refused")
	}
	extractor := newExtractor(completer)

	extraction := extractor.Extract(context.Background(), "anything", sampleDocs)
	assert.Equal(t, core.ExtractionEmpty, extraction.Status)
}

func TestExtract_GarbageOutputDegradesToEmpty(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.Response = "I'm sorry, as a language model I cannot..."
	extractor := newExtractor(completer)

	extraction := extractor.Extract(context.Background(), "anything", sampleDocs)
	assert.Equal(t, core.ExtractionEmpty, extraction.Status)
}
