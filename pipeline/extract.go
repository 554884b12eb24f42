package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/hobbyfind/ai"
	"github.com/poiesic/hobbyfind/core"
)

const extractionPromptTemplate = `Below are user snippets, each carrying a user_id line and an about line,
followed by a question. Identify the hobbies or interests relevant to the
question and map each one to the user ids whose snippet mentions it.

Respond with ONLY a valid JSON object of this exact shape:
{"matches": {"<hobby>": [<user_id>, <user_id>]}}

Rules:
- Hobby names are lowercase free-form strings.
- User ids are integers and MUST be copied from the snippets. Never invent ids.
- A user id may appear under several hobbies.
- If nothing matches, respond with {"matches": {}}.

## USER SNIPPETS:
%s

## QUESTION:
%s`

// Extractor asks the generative model to turn retrieval candidates into a
// category -> ids mapping. The model's output is untrusted: it is parsed
// defensively here and verified against the directory by the Grounder.
type Extractor struct {
	completer ai.Completer
	logger    *slog.Logger
}

func newExtractor(completer ai.Completer) *Extractor {
	return &Extractor{
		completer: completer,
		logger:    slog.Default().With("component", "extractor"),
	}
}

// Extract builds one prompt from all candidates and runs a single model
// call. No retries: a model failure or unparseable response degrades to an
// empty extraction, never an error, since a query with no groundable ids is
// a valid (empty) answer.
func (e *Extractor) Extract(ctx context.Context, query string, docs []core.Document) core.Extraction {
	if len(docs) == 0 {
		return core.Extraction{Status: core.ExtractionEmpty}
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	prompt := fmt.Sprintf(extractionPromptTemplate, strings.Join(texts, "\n"), query)

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("model call failed, treating as empty extraction",
			"err", err, "cause", ErrModelUnavailable)
		return core.Extraction{Status: core.ExtractionEmpty}
	}

	extraction := parseExtraction(raw)
	switch extraction.Status {
	case core.ExtractionEmpty:
		if strings.TrimSpace(raw) != "" {
			e.logger.Warn("unparseable model output, treating as empty extraction",
				"cause", ErrMalformedOutput, "response_length", len(raw))
		}
	case core.ExtractionRecovered:
		e.logger.Debug("strict schema failed, recovered via lenient parse")
	}

	return extraction
}
