package syncer

import (
	"errors"
	"fmt"
	"time"
)

// Precondition errors. These abort a run before any transfer side effect.
var (
	ErrNotMounted     = errors.New("share is not mounted")
	ErrNoPairs        = errors.New("no folder pairs enabled")
	ErrAlreadyRunning = errors.New("a sync run is already active")
)

// PairError records one failed pair; insertion order equals processing order.
type PairError struct {
	Local   string `json:"local"`
	Message string `json:"message"`
}

// Result is the final summary of one run. It is delivered exactly once,
// always after the last progress event.
type Result struct {
	RunID      string      `json:"run_id"`
	Total      int         `json:"total"`
	Completed  int         `json:"completed"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Cancelled  bool        `json:"cancelled"`
	Errors     []PairError `json:"errors,omitempty"`
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`

	// Err is the precondition error for aborted runs, nil otherwise.
	Err error `json:"-"`
}

// ResultFunc receives the final summary. Invoked from the worker goroutine.
type ResultFunc func(Result)

func (r *Result) finalize() {
	r.FinishedAt = time.Now()

	switch {
	case r.Err != nil:
		r.Success = false
		r.Message = r.Err.Error()
	case r.Cancelled:
		r.Success = false
		r.Message = fmt.Sprintf("cancelled after %d of %d folders", r.Completed, r.Total)
	case r.Failed == 0:
		r.Success = true
		r.Message = fmt.Sprintf("all %d folders synced", r.Succeeded)
	default:
		r.Success = false
		r.Message = fmt.Sprintf("%d folders synced, %d failed", r.Succeeded, r.Failed)
	}
}
