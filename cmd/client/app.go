package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/aadhaar/internal/apiclient"
	"github.com/OpenNSW/aadhaar/internal/config"
	"github.com/OpenNSW/aadhaar/internal/orchestrator"
	"github.com/OpenNSW/aadhaar/internal/preview"
	"github.com/OpenNSW/aadhaar/internal/uploads/drivers"
)

// app holds what every subcommand shares once flags are applied
type app struct {
	cfg     *config.ClientConfig
	logFile *os.File
}

type flags struct {
	apiURL  string
	timeout int
	logFile string
	accept  string
	maxSize int64
}

func (f *flags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.apiURL, "api-url", "", "base URL of the verification API (overrides API_BASE_URL)")
	pf.IntVar(&f.timeout, "timeout", 0, "request timeout in seconds (overrides API_TIMEOUT_SECONDS)")
	pf.StringVar(&f.logFile, "log-file", "", "write logs to this file (overrides CLIENT_LOG_FILE)")
	pf.StringVar(&f.accept, "accept", "", "accepted MIME types or extensions, comma-separated")
	pf.Int64Var(&f.maxSize, "max-size", 0, "maximum document size in bytes")
}

// load reads the environment and lays the flags over it
func (f *flags) load() (*config.ClientConfig, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if f.apiURL != "" {
		cfg.APIBaseURL = f.apiURL
	}
	if f.timeout > 0 {
		cfg.TimeoutSeconds = f.timeout
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	if f.accept != "" {
		cfg.Upload.Accept = f.accept
	}
	if f.maxSize > 0 {
		cfg.Upload.MaxSize = f.maxSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging sends slog output to the configured file, or to fallback
// when none is set.
func (a *app) setupLogging(fallback io.Writer) error {
	w := fallback
	if a.cfg.LogFile != "" {
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		w = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) client() *orchestrator.AadhaarClient {
	api := apiclient.New(a.cfg.APIBaseURL, time.Duration(a.cfg.TimeoutSeconds)*time.Second)
	return orchestrator.NewAadhaarClient(api)
}

// previews stores preview copies on local disk under the preview directory
func (a *app) previews() (*preview.Manager, error) {
	driver, err := drivers.NewLocalFSDriver(filepath.Join(a.cfg.PreviewDir, "aadhaar-previews"), "")
	if err != nil {
		return nil, err
	}
	return preview.NewManager(preview.NewDriverStore(driver)), nil
}
