package domain

// RunState is the lifecycle of a single pipeline run. A run moves strictly
// forward through the states; Failed is terminal and a failed run must be
// restarted from scratch.
type RunState string

const (
	RunLoaded       RunState = "loaded"
	RunSynthesizing RunState = "synthesizing"
	RunRendering    RunState = "rendering"
	RunAssembling   RunState = "assembling"
	RunComplete     RunState = "complete"
	RunFailed       RunState = "failed"
)

// RunRecord is the persisted view of a run, kept so the hosting surface can
// report progress and outcome. Clip payloads are never persisted.
type RunRecord struct {
	RunID       string
	State       RunState
	SlideCount  int
	VideoKey    string
	VideoRegion string
	FailReason  string
}
