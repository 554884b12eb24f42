package pipeline

import (
	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/index"
)

// QueryMonitor receives callbacks at each stage of a query.
// Implementations are used for progress display and diagnostics; every
// method may be a no-op. Callbacks run synchronously on the query path,
// so they should return quickly.
type QueryMonitor interface {
	// Start is called when the query begins.
	Start(query string)

	// AfterSync is called after the index has been reconciled.
	AfterSync(stats index.SyncStats)

	// AfterRetrieve is called with the candidates that cleared the
	// relevance floor.
	AfterRetrieve(matches []*core.Match)

	// AfterExtract is called with the untrusted model mapping.
	AfterExtract(extraction core.Extraction)

	// Dropped is called for every extracted id that failed verification.
	// Unlike the other callbacks it may arrive concurrently from the
	// grounding workers; implementations must synchronize their own state.
	Dropped(category string, id core.ID)

	// AfterGround is called with the verified result.
	AfterGround(result core.Grouped)

	// Finish is called when the query completes successfully.
	Finish(result core.Grouped)
}

// noopMonitor is used when no monitor is provided.
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (*noopMonitor) Start(string)                     {}
func (*noopMonitor) AfterSync(index.SyncStats)        {}
func (*noopMonitor) AfterRetrieve([]*core.Match)      {}
func (*noopMonitor) AfterExtract(core.Extraction)     {}
func (*noopMonitor) Dropped(string, core.ID)          {}
func (*noopMonitor) AfterGround(core.Grouped)         {}
func (*noopMonitor) Finish(core.Grouped)              {}
