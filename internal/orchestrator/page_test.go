package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/apiclient"
	"github.com/OpenNSW/aadhaar/internal/filedata"
)

type manualTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

type stubUploader struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	resp  *model.UploadResponse
	err   error
}

func (u *stubUploader) Upload(ctx context.Context, file *filedata.File) (*model.UploadResponse, error) {
	u.mu.Lock()
	u.calls++
	gate := u.gate
	u.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return u.resp, u.err
}

func (u *stubUploader) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

type stubControl struct {
	mu       sync.Mutex
	value    *filedata.File
	set      int
	disabled []bool
}

func (c *stubControl) SetValue(ctx context.Context, file *filedata.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = file
	c.set++
}

func (c *stubControl) SetDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = append(c.disabled, disabled)
}

func newPage(u Uploader) (*Page, *manualClock, *stubControl) {
	clock := &manualClock{}
	control := &stubControl{}
	p := New(Options{Uploader: u, Clock: clock})
	p.Bind(control)
	return p, clock, control
}

func validPNG() *filedata.File {
	return filedata.New("card.png", "image/png", make([]byte, 2*1024*1024))
}

func TestSubmit_WithoutFile(t *testing.T) {
	u := &stubUploader{}
	p, _, _ := newPage(u)

	assert.False(t, p.Submit(context.Background()))

	st := p.State()
	assert.Equal(t, PhaseFailure, st.Phase)
	assert.Equal(t, "Please select a file to upload", st.Error)
	assert.Zero(t, u.Calls())
}

func TestSubmit_SuccessThenAutoDismiss(t *testing.T) {
	ctx := context.Background()
	resp := &model.UploadResponse{Success: true, Data: &model.UploadData{Status: model.StatusProcessing, Message: "Queued"}}
	u := &stubUploader{resp: resp}
	p, clock, control := newPage(u)
	file := validPNG()

	p.SelectFile(ctx, file)
	require.True(t, p.Submit(ctx))
	p.Wait()

	st := p.State()
	require.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, "Queued", st.Result.Data.Message)
	assert.Equal(t, model.StatusProcessing, st.Result.Data.Status)
	assert.Same(t, file, st.File)
	assert.Equal(t, []bool{true, false}, control.disabled)

	clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, PhaseSuccess, p.State().Phase)

	clock.Advance(time.Millisecond)
	st = p.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.Result)
	assert.Same(t, file, st.File)
	assert.Equal(t, 1, u.Calls())
}

func TestSubmit_InFlightGuard(t *testing.T) {
	ctx := context.Background()
	u := &stubUploader{gate: make(chan struct{}), resp: &model.UploadResponse{Success: true}}
	p, _, _ := newPage(u)

	p.SelectFile(ctx, validPNG())
	require.True(t, p.Submit(ctx))
	assert.True(t, p.Busy())
	assert.False(t, p.State().CanSubmit())
	assert.False(t, p.Submit(ctx))
	assert.False(t, p.Reset(ctx))

	close(u.gate)
	p.Wait()
	assert.Equal(t, 1, u.Calls())
	assert.False(t, p.Busy())
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name    string
		resp    *model.UploadResponse
		err     error
		message string
	}{
		{"server message", &model.UploadResponse{Success: false, Message: "Blurry image"}, nil, "Blurry image"},
		{"no server message", &model.UploadResponse{Success: false}, nil, "Upload failed. Please try again."},
		{"timeout", nil, &apiclient.ClientError{Message: "Request timeout", StatusCode: 408}, "Request timeout"},
		{"empty error", nil, errors.New(""), "An error occurred during upload. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p, _, _ := newPage(&stubUploader{resp: tt.resp, err: tt.err})

			p.SelectFile(ctx, validPNG())
			require.True(t, p.Submit(ctx))
			p.Wait()

			st := p.State()
			assert.Equal(t, PhaseFailure, st.Phase)
			assert.Equal(t, tt.message, st.Error)
			assert.True(t, st.CanSubmit())
			assert.True(t, st.CanReset())
		})
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	p, clock, control := newPage(&stubUploader{resp: &model.UploadResponse{Success: true}})

	assert.False(t, p.Reset(ctx), "nothing to reset")

	p.SelectFile(ctx, validPNG())
	require.True(t, p.Submit(ctx))
	p.Wait()

	require.True(t, p.Reset(ctx))
	st := p.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.File)
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Error)
	assert.Equal(t, 1, control.set)
	assert.Nil(t, control.value)

	// the pending dismissal was cancelled and must not emit
	changes := 0
	p.opts.OnChange = func(State) { changes++ }
	clock.Advance(DismissAfter)
	assert.Zero(t, changes)
}

func TestNewSelectionClearsOutcome(t *testing.T) {
	ctx := context.Background()
	p, clock, _ := newPage(&stubUploader{resp: &model.UploadResponse{Success: true}})

	p.SelectFile(ctx, validPNG())
	p.Submit(ctx)
	p.Wait()
	require.Equal(t, PhaseSuccess, p.State().Phase)

	next := validPNG()
	p.SelectFile(ctx, next)
	st := p.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.Result)
	assert.Same(t, next, st.File)

	p.SelectionError(ctx, "File size exceeds 5.00 MB limit")
	st = p.State()
	assert.Equal(t, PhaseFailure, st.Phase)
	assert.Equal(t, "File size exceeds 5.00 MB limit", st.Error)

	clock.Advance(DismissAfter)
	assert.Equal(t, PhaseFailure, p.State().Phase)

	p.SelectFile(ctx, nil)
	assert.Empty(t, p.State().Error)
	assert.False(t, p.State().CanReset())
}

func TestClose_DropsLateResult(t *testing.T) {
	ctx := context.Background()
	u := &stubUploader{gate: make(chan struct{}), resp: &model.UploadResponse{Success: true}}
	p, clock, _ := newPage(u)

	p.SelectFile(ctx, validPNG())
	require.True(t, p.Submit(ctx))
	p.Close()
	close(u.gate)
	p.Wait()

	assert.Equal(t, PhaseSubmitting, p.State().Phase)
	assert.Empty(t, clock.timers)
	assert.False(t, p.Submit(ctx))
}

func TestClose_CancelsDismissal(t *testing.T) {
	ctx := context.Background()
	p, clock, _ := newPage(&stubUploader{resp: &model.UploadResponse{Success: true}})

	p.SelectFile(ctx, validPNG())
	p.Submit(ctx)
	p.Wait()
	p.Close()

	require.Len(t, clock.timers, 1)
	assert.True(t, clock.timers[0].stopped)
	clock.Advance(DismissAfter)
	assert.Equal(t, PhaseSuccess, p.State().Phase)
}

func TestOnChangeSeesEveryTransition(t *testing.T) {
	ctx := context.Background()
	var (
		mu     sync.Mutex
		phases []Phase
	)
	clock := &manualClock{}
	p := New(Options{
		Uploader: &stubUploader{resp: &model.UploadResponse{Success: true}},
		Clock:    clock,
		OnChange: func(s State) {
			mu.Lock()
			phases = append(phases, s.Phase)
			mu.Unlock()
		},
	})

	p.SelectFile(ctx, validPNG())
	p.Submit(ctx)
	p.Wait()
	clock.Advance(DismissAfter)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhaseIdle, PhaseSubmitting, PhaseSuccess, PhaseIdle}, phases)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "submitting", PhaseSubmitting.String())
	assert.Equal(t, "success", PhaseSuccess.String())
	assert.Equal(t, "failure", PhaseFailure.String())
}
