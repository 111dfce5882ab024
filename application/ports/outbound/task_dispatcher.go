package outbound

// TaskDispatcher abstracts the shared worker pool so services can fan work out
// without binding to a concrete pool implementation.
type TaskDispatcher interface {
	Submit(task func()) error
}
