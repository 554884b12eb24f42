// Package index maintains the derived similarity index over directory users.
//
// Three cooperating pieces live here:
//
//   - Index: the persisted (id, text, vector) collection with add, delete,
//     and k-nearest search.
//   - Builder: cold-start construction from a full directory snapshot, with
//     concurrent embedding batches merged into one index.
//   - Syncer: incremental reconciliation against the current directory id
//     set, run before every retrieval, under a single-writer lock.
//
// Immediately after a successful Sync pass, the index id set equals the
// directory snapshot's id set exactly. The index is a derived structure:
// losing it entirely costs a rebuild, never data.
package index
