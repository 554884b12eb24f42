// Package ai defines the AI collaborator interfaces used by hobbyfind.
//
// Two services are abstracted: Embedder turns text into vectors for the
// similarity index, and Completer runs a single-turn generative call whose
// raw text response the pipeline parses itself. Provider bundles both behind
// one lifecycle.
//
// Production implementations live in ai/openai (any OpenAI-compatible API);
// deterministic test doubles live in ai/mock.
package ai
