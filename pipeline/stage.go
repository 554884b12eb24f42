package pipeline

// Stage identifies a step of the per-query state machine. Each query walks
// the stages linearly: sync, retrieve, extract, ground, done. Any failure
// stops the walk and is reported with the stage it happened in.
type Stage int

const (
	// StageSync reconciles the index with the directory.
	StageSync Stage = iota + 1
	// StageRetrieve runs the similarity search.
	StageRetrieve
	// StageExtract asks the model for the category mapping.
	StageExtract
	// StageGround verifies extracted ids against the directory.
	StageGround
	// StageDone is the terminal success state.
	StageDone
)

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageSync:
		return "sync"
	case StageRetrieve:
		return "retrieve"
	case StageExtract:
		return "extract"
	case StageGround:
		return "ground"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
