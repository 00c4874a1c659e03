// Package orchestrator drives one upload at a time through
// Idle -> Submitting -> Success | Failure and back to Idle.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/filedata"
)

// DismissAfter is how long a success stays on screen.
const DismissAfter = 5 * time.Second

const (
	msgNoFile        = "Please select a file to upload"
	msgUploadFailed  = "Upload failed. Please try again."
	msgUploadErrored = "An error occurred during upload. Please try again."
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "idle"
	}
}

// State is a copy of the page state at one instant.
type State struct {
	Phase  Phase
	File   *filedata.File
	Error  string
	Result *model.UploadResponse
}

func (s State) Busy() bool {
	return s.Phase == PhaseSubmitting
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return s.File != nil && !s.Busy()
}

// CanReset reports whether the reset control is offered.
func (s State) CanReset() bool {
	return !s.Busy() && (s.File != nil || s.Phase == PhaseSuccess)
}

// Control is the part of the upload widget the page drives: its value and
// whether it accepts input.
type Control interface {
	SetValue(ctx context.Context, file *filedata.File)
	SetDisabled(disabled bool)
}

type Options struct {
	Uploader Uploader
	Clock    Clock
	// DismissAfter overrides how long a success stays visible.
	DismissAfter time.Duration
	// OnChange receives every new state. It is called without locks held,
	// possibly from the upload goroutine.
	OnChange func(State)
}

type Page struct {
	mu       sync.Mutex
	opts     Options
	control  Control
	state    State
	gen      uint64
	timer    Timer
	closed   bool
	inflight sync.WaitGroup
}

func New(opts Options) *Page {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.DismissAfter <= 0 {
		opts.DismissAfter = DismissAfter
	}
	return &Page{opts: opts}
}

// Bind attaches the widget the page keeps in sync.
func (p *Page) Bind(c Control) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.control = c
}

func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Page) Busy() bool {
	return p.State().Busy()
}

// SelectFile records the widget's selection. nil means the file was removed.
func (p *Page) SelectFile(ctx context.Context, file *filedata.File) {
	p.update(func() bool {
		p.clearOutcomeLocked()
		p.state.File = file
		return true
	})
}

// SelectionError shows a rejection reported by the widget.
func (p *Page) SelectionError(ctx context.Context, reason string) {
	p.update(func() bool {
		p.clearOutcomeLocked()
		p.state.Error = reason
		if !p.state.Busy() {
			p.state.Phase = PhaseFailure
		}
		return true
	})
}

// Submit starts the upload of the selected file. It returns false when
// nothing was sent: a request is already in flight, no file is selected or
// the page is closed.
func (p *Page) Submit(ctx context.Context) bool {
	p.mu.Lock()
	if p.closed || p.state.Busy() {
		p.mu.Unlock()
		return false
	}
	if p.state.File == nil {
		p.clearOutcomeLocked()
		p.state.Phase = PhaseFailure
		p.state.Error = msgNoFile
		st := p.state
		p.mu.Unlock()
		p.emit(st)
		return false
	}

	p.clearOutcomeLocked()
	p.state.Phase = PhaseSubmitting
	file := p.state.File
	st, control := p.state, p.control
	p.inflight.Add(1)
	p.mu.Unlock()

	slog.InfoContext(ctx, "submitting document", "file", file.Name, "size", file.Size)
	if control != nil {
		control.SetDisabled(true)
	}
	p.emit(st)

	go func() {
		defer p.inflight.Done()
		resp, err := p.opts.Uploader.Upload(context.WithoutCancel(ctx), file)
		p.finish(ctx, resp, err)
	}()
	return true
}

// Reset clears the file, the error and any success. It is ignored while a
// request is in flight and when there is nothing to reset.
func (p *Page) Reset(ctx context.Context) bool {
	p.mu.Lock()
	if p.closed || !p.state.CanReset() {
		p.mu.Unlock()
		return false
	}
	p.clearOutcomeLocked()
	p.state = State{Phase: PhaseIdle}
	st, control := p.state, p.control
	p.mu.Unlock()

	if control != nil {
		control.SetValue(ctx, nil)
	}
	p.emit(st)
	return true
}

// Close cancels the pending dismissal. Results arriving afterwards are
// dropped.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopTimerLocked()
}

// Wait blocks until no upload goroutine is running.
func (p *Page) Wait() {
	p.inflight.Wait()
}

func (p *Page) finish(ctx context.Context, resp *model.UploadResponse, err error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		slog.DebugContext(ctx, "upload finished after close")
		return
	}

	switch {
	case err != nil:
		p.state.Phase = PhaseFailure
		p.state.Error = err.Error()
		if p.state.Error == "" {
			p.state.Error = msgUploadErrored
		}
		slog.WarnContext(ctx, "upload failed", "error", err)
	case resp == nil || !resp.Success:
		p.state.Phase = PhaseFailure
		p.state.Error = msgUploadFailed
		if resp != nil && resp.Message != "" {
			p.state.Error = resp.Message
		}
		slog.WarnContext(ctx, "upload rejected", "message", p.state.Error)
	default:
		p.state.Phase = PhaseSuccess
		p.state.Result = resp
		p.scheduleDismissLocked()
		slog.InfoContext(ctx, "upload accepted")
	}
	st, control := p.state, p.control
	p.mu.Unlock()

	if control != nil {
		control.SetDisabled(false)
	}
	p.emit(st)
}

func (p *Page) scheduleDismissLocked() {
	p.stopTimerLocked()
	gen := p.gen
	p.timer = p.opts.Clock.AfterFunc(p.opts.DismissAfter, func() {
		p.update(func() bool {
			if p.gen != gen || p.state.Phase != PhaseSuccess {
				return false
			}
			p.timer = nil
			p.state.Phase = PhaseIdle
			p.state.Result = nil
			return true
		})
	})
}

// clearOutcomeLocked drops any success or failure on display and
// invalidates a pending dismissal.
func (p *Page) clearOutcomeLocked() {
	p.stopTimerLocked()
	p.state.Error = ""
	p.state.Result = nil
	if !p.state.Busy() {
		p.state.Phase = PhaseIdle
	}
}

func (p *Page) stopTimerLocked() {
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// update applies fn under the lock and emits the new state when fn reports
// a change.
func (p *Page) update(fn func() bool) {
	p.mu.Lock()
	if p.closed || !fn() {
		p.mu.Unlock()
		return
	}
	st := p.state
	p.mu.Unlock()
	p.emit(st)
}

func (p *Page) emit(st State) {
	if p.opts.OnChange != nil {
		p.opts.OnChange(st)
	}
}
