// Package widget implements the file-upload surface as an event-driven state
// machine: a drop target, a picker, validation, a preview and removal.
// Front-ends translate their input into the event methods below and render
// Snapshot.
package widget

import (
	"context"
	"log/slog"
	"sync"

	"github.com/OpenNSW/aadhaar/internal/config"
	"github.com/OpenNSW/aadhaar/internal/filedata"
	"github.com/OpenNSW/aadhaar/internal/preview"
	"github.com/OpenNSW/aadhaar/internal/validator"
)

// Keys that activate the drop target like a click.
const (
	KeyEnter = "enter"
	KeySpace = " "
)

// Picker is the native file chooser behind the drop target.
type Picker interface {
	// Open shows the chooser. Its result comes back through PickerChange.
	Open()
	// Clear forgets the last chosen value so picking the same file again
	// still reports a change.
	Clear()
}

// Options configures a Widget. Zero values fall back to the defaults.
type Options struct {
	Accept         string
	MaxSize        int64
	DisablePreview bool
	Disabled       bool

	// Previews holds the preview handle. Defaults to an in-memory store.
	Previews *preview.Manager
	Picker   Picker

	// OnFileSelect receives the accepted file, or nil after removal.
	OnFileSelect func(ctx context.Context, file *filedata.File)
	OnError      func(ctx context.Context, reason string)
}

// View is an immutable rendering of the widget state.
type View struct {
	File         *filedata.File
	Error        string
	Dragging     bool
	Disabled     bool
	PreviewURL   string
	Accept       string
	MaxSizeLabel string
	SizeLabel    string
}

// HasFile reports whether the widget is in the Selected state.
func (v View) HasFile() bool {
	return v.File != nil
}

type Widget struct {
	mu       sync.Mutex
	opts     Options
	file     *filedata.File
	errMsg   string
	dragging bool
	disabled bool
	preview  string
}

func New(opts Options) *Widget {
	if opts.Accept == "" {
		opts.Accept = config.DefaultAccept
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = config.DefaultMaxUploadSize
	}
	if opts.Previews == nil {
		opts.Previews = preview.NewManager(preview.NewMemoryStore())
	}
	return &Widget{opts: opts, disabled: opts.Disabled}
}

func (w *Widget) DragOver() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.disabled {
		w.dragging = true
	}
}

func (w *Widget) DragLeave() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dragging = false
}

// Drop handles files released over the target. Only the first is used.
func (w *Widget) Drop(ctx context.Context, files []*filedata.File) {
	w.mu.Lock()
	w.dragging = false
	if w.disabled || len(files) == 0 {
		w.mu.Unlock()
		return
	}
	notify := w.candidateLocked(ctx, files[0])
	w.mu.Unlock()
	notify()
}

// PickerChange handles the picker's result. Only the first file is used.
func (w *Widget) PickerChange(ctx context.Context, files []*filedata.File) {
	w.mu.Lock()
	if w.disabled || len(files) == 0 {
		w.mu.Unlock()
		return
	}
	notify := w.candidateLocked(ctx, files[0])
	w.mu.Unlock()
	notify()
}

// Click opens the picker unless disabled.
func (w *Widget) Click() {
	w.mu.Lock()
	disabled := w.disabled
	w.mu.Unlock()
	if disabled || w.opts.Picker == nil {
		return
	}
	w.opts.Picker.Open()
}

// KeyDown treats Enter and Space as a click. Other keys are ignored.
func (w *Widget) KeyDown(key string) {
	switch key {
	case KeyEnter, KeySpace, "space":
		w.Click()
	}
}

// Remove clears the selection, releases its preview and tells the caller.
func (w *Widget) Remove(ctx context.Context) {
	w.mu.Lock()
	if w.file == nil || w.disabled {
		w.mu.Unlock()
		return
	}
	w.opts.Previews.Clear(ctx)
	w.file = nil
	w.preview = ""
	w.errMsg = ""
	w.mu.Unlock()

	if w.opts.Picker != nil {
		w.opts.Picker.Clear()
	}
	if w.opts.OnFileSelect != nil {
		w.opts.OnFileSelect(ctx, nil)
	}
}

// SetValue resynchronizes the selection with a value owned by the caller.
// The file is not validated again and no callback fires.
func (w *Widget) SetValue(ctx context.Context, file *filedata.File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if file == w.file {
		return
	}
	w.file = file
	if file == nil {
		w.opts.Previews.Clear(ctx)
		w.preview = ""
		w.errMsg = ""
		return
	}
	w.showPreviewLocked(ctx, file)
}

func (w *Widget) SetDisabled(disabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disabled = disabled
	if disabled {
		w.dragging = false
	}
}

// Close tears the widget down and releases its preview handle.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opts.Previews.Close()
	w.preview = ""
}

func (w *Widget) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		File:         w.file,
		Error:        w.errMsg,
		Dragging:     w.dragging,
		Disabled:     w.disabled,
		PreviewURL:   w.preview,
		Accept:       w.opts.Accept,
		MaxSizeLabel: validator.FormatSize(w.opts.MaxSize),
	}
	if w.file != nil {
		v.SizeLabel = validator.FormatSize(w.file.Size)
	}
	return v
}

// candidateLocked validates file and updates state. The returned func runs
// the caller's callback and must be invoked after the lock is released.
func (w *Widget) candidateLocked(ctx context.Context, file *filedata.File) func() {
	w.errMsg = ""
	if err := validator.Validate(file, w.opts.Accept, w.opts.MaxSize); err != nil {
		reason := err.Error()
		w.errMsg = reason
		slog.DebugContext(ctx, "file rejected", "file", file.Name, "reason", reason)
		return func() {
			if w.opts.OnError != nil {
				w.opts.OnError(ctx, reason)
			}
		}
	}

	w.file = file
	w.showPreviewLocked(ctx, file)
	return func() {
		if w.opts.OnFileSelect != nil {
			w.opts.OnFileSelect(ctx, file)
		}
	}
}

func (w *Widget) showPreviewLocked(ctx context.Context, file *filedata.File) {
	w.preview = ""
	if w.opts.DisablePreview {
		return
	}
	h, err := w.opts.Previews.Show(ctx, file)
	if err != nil {
		slog.WarnContext(ctx, "preview unavailable", "file", file.Name, "error", err)
		return
	}
	w.preview = h.URL
}
