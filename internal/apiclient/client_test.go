package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/aadhaar/internal/filedata"
)

type echo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echo{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Verbs(t *testing.T) {
	srv := echoServer(t)
	c := New(srv.URL+"/api/", time.Second)
	ctx := context.Background()

	var got echo
	require.NoError(t, c.Get(ctx, "/items", &got))
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/items", got.Path)
	assert.Equal(t, "application/json", got.ContentType)

	require.NoError(t, c.Post(ctx, "items", map[string]int{"n": 1}, &got))
	assert.Equal(t, http.MethodPost, got.Method)
	assert.JSONEq(t, `{"n":1}`, got.Body)

	require.NoError(t, c.Put(ctx, "items/1", map[string]int{"n": 2}, &got))
	assert.Equal(t, http.MethodPut, got.Method)

	require.NoError(t, c.Patch(ctx, "items/1", map[string]int{"n": 3}, &got))
	assert.Equal(t, http.MethodPatch, got.Method)

	require.NoError(t, c.Delete(ctx, "items/1", &got))
	assert.Equal(t, http.MethodDelete, got.Method)

	require.NoError(t, c.Get(ctx, "items", &got, WithHeader("Content-Type", "text/plain")))
	assert.Equal(t, "text/plain", got.ContentType)
}

func TestClient_UploadFile(t *testing.T) {
	var (
		fileName, fileType, content, note string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		fileName, fileType, content = hdr.Filename, hdr.Header.Get("Content-Type"), string(data)
		note = r.FormValue("note")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	var out struct {
		Success bool `json:"success"`
	}
	err := c.UploadFile(context.Background(), "/aadhaar/upload", Form{
		Files:  map[string]*filedata.File{"file": filedata.New("card.png", "image/png", []byte("png"))},
		Fields: map[string]string{"note": "front"},
	}, &out)

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "card.png", fileName)
	assert.Equal(t, "image/png", fileType)
	assert.Equal(t, "png", content)
	assert.Equal(t, "front", note)
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusBadRequest, `{"success":false,"error":"bad file"}`, "bad file"},
		{"message field", http.StatusConflict, `{"message":"already reviewed"}`, "already reviewed"},
		{"error wins over message", http.StatusBadRequest, `{"error":"e","message":"m"}`, "e"},
		{"no json body", http.StatusInternalServerError, `oops`, "Request failed with status code 500"},
		{"empty body", http.StatusNotFound, ``, "Request failed with status code 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL, time.Second).Get(context.Background(), "/x", nil)
			require.Error(t, err)

			var ce *ClientError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.message, ce.Message)
			assert.Equal(t, tt.status, ce.StatusCode)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := New(srv.URL, 50*time.Millisecond).Get(context.Background(), "/slow", nil)

	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Request timeout", ce.Message)
	assert.Equal(t, StatusTimeout, ce.StatusCode)
}

func TestClient_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, time.Second).Get(context.Background(), "/x", nil)

	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Network error - no response received", ce.Message)
	assert.Equal(t, StatusNoResponse, ce.StatusCode)
}

func TestClient_SetupError(t *testing.T) {
	c := New("http://example.invalid", time.Second)

	err := c.Post(context.Background(), "/x", func() {}, nil)
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StatusSetup, ce.StatusCode)
	assert.Contains(t, ce.Message, "encode request body")

	err = c.UploadFile(context.Background(), "/x", Form{Files: map[string]*filedata.File{"file": nil}}, nil)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StatusSetup, ce.StatusCode)
}

func TestClient_Defaults(t *testing.T) {
	c := New("", 0)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, "http://other/x", c.resolve("http://other/x"))
}

func TestClient_KeepsCookies(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("session"); err == nil {
			seen = ck.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	require.NoError(t, c.Get(context.Background(), "/a", nil))
	require.NoError(t, c.Get(context.Background(), "/b", nil))
	assert.Equal(t, "abc", seen)
}
