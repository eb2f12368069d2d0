package syncer

import "github.com/nfsync/nfsync/internal/transfer"

// Event is implemented by all progress events emitted during a run. Events
// for one pair are strictly ordered and bracketed by PairStarted and
// PairFinished; the run result is always delivered after the last event.
type Event interface {
	isEvent()
}

// ProgressFunc receives events from the run worker. It is invoked from the
// worker goroutine; receivers must be safe for that.
type ProgressFunc func(Event)

// PairStarted marks the beginning of one pair's mirror. Index is 1-based.
type PairStarted struct {
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	Local  string `json:"local"`
	Target string `json:"target"`
}

func (PairStarted) isEvent() {}

// PairFinished marks the end of one pair's mirror. Err is empty on success.
type PairFinished struct {
	Index  int             `json:"index"`
	Total  int             `json:"total"`
	Local  string          `json:"local"`
	Target string          `json:"target"`
	Err    string          `json:"error,omitempty"`
	Stats  *transfer.Stats `json:"stats,omitempty"`
}

func (PairFinished) isEvent() {}

// TransferOutput forwards one raw line of tool output for display.
type TransferOutput struct {
	Index int    `json:"index"`
	Local string `json:"local"`
	Line  string `json:"line"`
}

func (TransferOutput) isEvent() {}

// RunCancelled is emitted once when a cancellation request takes effect.
type RunCancelled struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (RunCancelled) isEvent() {}
