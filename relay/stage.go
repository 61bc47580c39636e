package relay

// PollStatus is the three-state result of polling a pipeline stage. It makes
// the suspend/forward/terminate control flow explicit so every stage can be
// driven and tested independently of the scheduler.
type PollStatus int

const (
	// PollPending means the stage has nothing ready; try again next cycle.
	PollPending PollStatus = iota
	// PollReady means the stage produced a value to forward downstream.
	PollReady
	// PollFinished means the stage is exhausted and the pipeline should stop.
	PollFinished
)

func (s PollStatus) String() string {
	switch s {
	case PollPending:
		return "pending"
	case PollReady:
		return "ready"
	case PollFinished:
		return "finished"
	}
	return "unknown"
}
