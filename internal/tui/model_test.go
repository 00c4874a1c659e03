package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/filedata"
	"github.com/OpenNSW/aadhaar/internal/orchestrator"
	"github.com/OpenNSW/aadhaar/internal/preview"
	"github.com/OpenNSW/aadhaar/internal/widget"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fakeUploader struct {
	mu    sync.Mutex
	files []*filedata.File
	resp  *model.UploadResponse
	err   error
}

func (u *fakeUploader) Upload(ctx context.Context, file *filedata.File) (*model.UploadResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.files = append(u.files, file)
	return u.resp, u.err
}

type fakeLookup struct {
	ids []string
}

func (l *fakeLookup) Verification(ctx context.Context, id string) (*model.Verification, error) {
	l.ids = append(l.ids, id)
	return &model.Verification{ID: id, Status: model.StatusVerified, ReviewerNotes: "clear scan"}, nil
}

type idleClock struct{}

func (idleClock) AfterFunc(d time.Duration, f func()) orchestrator.Timer { return stopped{} }

type stopped struct{}

func (stopped) Stop() bool { return false }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func paste(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Paste: true}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func newModel(u orchestrator.Uploader, l Lookup) (*Model, *preview.MemoryStore) {
	store := preview.NewMemoryStore()
	m := New(context.Background(), Options{
		Uploader: u,
		Lookup:   l,
		Clock:    idleClock{},
		Widget:   widget.Options{Previews: preview.NewManager(store)},
		StartDir: os.TempDir(),
	})
	return m, store
}

func TestPasteDropsFile(t *testing.T) {
	m, store := newModel(&fakeUploader{}, nil)
	path := writeFile(t, "card.png", pngHeader)

	m.Update(paste("'" + path + "'\n"))

	st := m.Page().State()
	require.NotNil(t, st.File)
	assert.Equal(t, "card.png", st.File.Name)
	assert.Equal(t, 1, store.Live())
	assert.Contains(t, m.View(), "card.png")
	assert.Contains(t, m.View(), "Verify Aadhaar")
}

func TestPasteRejectedFile(t *testing.T) {
	m, _ := newModel(&fakeUploader{}, nil)

	m.Update(paste(writeFile(t, "notes.txt", []byte("hello"))))
	st := m.Page().State()
	assert.Nil(t, st.File)
	assert.True(t, strings.HasPrefix(st.Error, "Invalid file type."))

	m.Update(paste("/does/not/exist.png"))
	assert.Equal(t, "Cannot open /does/not/exist.png", m.Page().State().Error)
}

func TestSubmitAndCheckStatus(t *testing.T) {
	u := &fakeUploader{resp: &model.UploadResponse{
		Success: true,
		Data:    &model.UploadData{ID: "v-1", Status: model.StatusProcessing, Message: "Queued"},
	}}
	l := &fakeLookup{}
	m, _ := newModel(u, l)

	m.Update(runes("s"))
	assert.Equal(t, "Please select a file to upload", m.Page().State().Error)
	assert.Empty(t, u.files)

	m.Update(paste(writeFile(t, "card.png", pngHeader)))
	m.Update(runes("s"))
	m.Page().Wait()
	m.Update(stateChangedMsg{})

	view := m.View()
	assert.Contains(t, view, "Upload Successful!")
	assert.Contains(t, view, "Queued")
	assert.Contains(t, view, "Status: processing")
	assert.Len(t, u.files, 1)

	_, cmd := m.Update(runes("v"))
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, []string{"v-1"}, l.ids)
	assert.Contains(t, m.View(), "clear scan")
}

func TestRemoveAndReset(t *testing.T) {
	m, store := newModel(&fakeUploader{}, nil)

	m.Update(paste(writeFile(t, "card.png", pngHeader)))
	m.Update(runes("x"))
	assert.Nil(t, m.Page().State().File)
	assert.Equal(t, 0, store.Live())

	m.Update(paste(writeFile(t, "card.png", pngHeader)))
	m.Update(runes("r"))
	assert.Nil(t, m.Page().State().File)
	assert.Nil(t, m.widget.Snapshot().File)
	assert.Equal(t, 0, store.Live())
}

func TestBrowseOpensAndClosesPicker(t *testing.T) {
	m, _ := newModel(&fakeUploader{}, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.browser.open)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "esc to close the browser")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.browser.open)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, m.browser.open)
}

func TestQuitReleasesPreview(t *testing.T) {
	m, store := newModel(&fakeUploader{}, nil)
	m.Update(paste(writeFile(t, "card.png", pngHeader)))

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, 0, store.Live())
}

func TestFirstPath(t *testing.T) {
	assert.Equal(t, "/tmp/a b.png", firstPath(`/tmp/a\ b.png`))
	assert.Equal(t, "/tmp/a b.png", firstPath(`"/tmp/a b.png"`))
	assert.Equal(t, "/tmp/one.png", firstPath("/tmp/one.png\n/tmp/two.png"))
	assert.Empty(t, firstPath("   "))
}
