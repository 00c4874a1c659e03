// Package tui renders the Aadhaar upload page in a terminal. A path pasted
// into the terminal (what most terminals do when a file is dropped on them)
// is treated as a drop; Enter or Space opens a file browser.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/filedata"
	"github.com/OpenNSW/aadhaar/internal/orchestrator"
	"github.com/OpenNSW/aadhaar/internal/widget"
)

// Lookup fetches the verification state of an uploaded document.
type Lookup interface {
	Verification(ctx context.Context, id string) (*model.Verification, error)
}

type Options struct {
	Uploader orchestrator.Uploader
	Lookup   Lookup
	// Widget carries the accept-spec, size limit and preview store. Its
	// callbacks and picker are set by the page.
	Widget widget.Options
	Clock  orchestrator.Clock
	// StartDir is where the file browser opens. Defaults to the working
	// directory.
	StartDir string
}

type stateChangedMsg struct{}

type verificationMsg struct {
	verification *model.Verification
	err          error
}

// browser adapts the bubbles file picker to the widget's Picker.
type browser struct {
	open    bool
	pending bool
}

func (b *browser) Open() {
	b.open = true
	b.pending = true
}

func (b *browser) Clear() {
	b.pending = false
}

// Model is the bubbletea model of the upload page
type Model struct {
	ctx     context.Context
	page    *orchestrator.Page
	widget  *widget.Widget
	lookup  Lookup
	browser *browser
	picker  filepicker.Model
	spinner spinner.Model
	help    help.Model
	keyMap  KeyMap
	changes chan struct{}

	lastID       string
	verification *model.Verification
	lookupErr    string
	windowWidth  int
}

// New wires a page, its widget and the terminal view together
func New(ctx context.Context, opts Options) *Model {
	m := &Model{
		ctx:     ctx,
		lookup:  opts.Lookup,
		browser: &browser{},
		help:    help.New(),
		keyMap:  DefaultKeyMap(),
		changes: make(chan struct{}, 1),
	}

	m.page = orchestrator.New(orchestrator.Options{
		Uploader: opts.Uploader,
		Clock:    opts.Clock,
		OnChange: func(orchestrator.State) { m.notify() },
	})

	wopts := opts.Widget
	wopts.Picker = m.browser
	wopts.OnFileSelect = m.page.SelectFile
	wopts.OnError = m.page.SelectionError
	m.widget = widget.New(wopts)
	m.page.Bind(m.widget)

	fp := filepicker.New()
	fp.CurrentDirectory = opts.StartDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}
	fp.Height = 12
	m.picker = fp

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	m.spinner = s

	return m
}

// notify wakes the event loop. Extra signals coalesce since the view reads
// the latest state anyway.
func (m *Model) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return stateChangedMsg{}
	}
}

// Init implements the bubbletea.Model interface
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.spinner.Tick)
}

// Update implements the bubbletea.Model interface
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) && !m.browser.open {
			m.Close()
			return m, tea.Quit
		}
		if m.browser.open {
			return m.updateBrowser(msg)
		}
		return m.handleKey(msg)

	case stateChangedMsg:
		m.rememberUpload()
		return m, m.waitForChange()

	case verificationMsg:
		m.verification = msg.verification
		m.lookupErr = ""
		if msg.err != nil {
			m.lookupErr = msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.help.Width = msg.Width
		m.picker.Height = max(5, msg.Height-16)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		if m.browser.open {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		m.drop(string(msg.Runes))
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Browse):
		m.widget.KeyDown(msg.String())
		if m.browser.pending {
			m.browser.pending = false
			return m, m.picker.Init()
		}
	case key.Matches(msg, m.keyMap.Submit):
		m.page.Submit(m.ctx)
	case key.Matches(msg, m.keyMap.Reset):
		if m.page.Reset(m.ctx) {
			m.lastID = ""
			m.verification = nil
			m.lookupErr = ""
		}
	case key.Matches(msg, m.keyMap.Remove):
		m.widget.Remove(m.ctx)
	case key.Matches(msg, m.keyMap.Refresh):
		return m, m.checkStatus()
	}
	return m, nil
}

func (m *Model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Cancel) {
		m.browser.open = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.browser.open = false
		file, err := filedata.FromPath(path)
		if err != nil {
			m.page.SelectionError(m.ctx, err.Error())
			return m, cmd
		}
		m.widget.PickerChange(m.ctx, []*filedata.File{file})
	}
	return m, cmd
}

// drop treats pasted text as the path of a dropped file. Only the first
// path is used.
func (m *Model) drop(text string) {
	path := firstPath(text)
	if path == "" {
		return
	}
	m.widget.DragOver()
	file, err := filedata.FromPath(path)
	if err != nil {
		m.widget.DragLeave()
		slog.DebugContext(m.ctx, "dropped text is not a file", "text", path, "error", err)
		m.page.SelectionError(m.ctx, fmt.Sprintf("Cannot open %s", path))
		return
	}
	m.widget.Drop(m.ctx, []*filedata.File{file})
}

func firstPath(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimSpace(line)
	if len(line) >= 2 && (line[0] == '\'' || line[0] == '"') && line[len(line)-1] == line[0] {
		return line[1 : len(line)-1]
	}
	return strings.ReplaceAll(line, `\ `, " ")
}

// rememberUpload keeps the ID of the last accepted upload so its status
// can still be checked after the success panel is dismissed.
func (m *Model) rememberUpload() {
	st := m.page.State()
	if st.Result != nil && st.Result.Data != nil && st.Result.Data.ID != "" {
		if st.Result.Data.ID != m.lastID {
			m.verification = nil
			m.lookupErr = ""
		}
		m.lastID = st.Result.Data.ID
	}
}

func (m *Model) checkStatus() tea.Cmd {
	m.rememberUpload()
	if m.lookup == nil || m.lastID == "" {
		return nil
	}
	ctx, id := m.ctx, m.lastID
	return func() tea.Msg {
		v, err := m.lookup.Verification(ctx, id)
		return verificationMsg{verification: v, err: err}
	}
}

// Close releases the preview and stops the success timer
func (m *Model) Close() {
	m.page.Close()
	m.widget.Close()
}

// Page exposes the orchestrator, mainly for tests
func (m *Model) Page() *orchestrator.Page {
	return m.page
}
