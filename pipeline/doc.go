// Package pipeline wires index synchronization, semantic retrieval, model
// extraction, and directory grounding into a single query path.
//
// The ordering of the stages is the whole point. Sync runs before
// retrieval so the index never serves users the directory has already
// forgotten, and grounding runs after extraction so nothing the model
// wrote reaches a caller without the directory confirming it first. The
// stages degrade differently: sync and retrieval failures abort the query
// with a QueryError naming the failed stage, while extraction and
// grounding failures narrow the result instead of aborting it.
package pipeline
