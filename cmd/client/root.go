package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/OpenNSW/aadhaar/internal/tui"
	"github.com/OpenNSW/aadhaar/internal/widget"
)

func rootCmd() *cobra.Command {
	f := &flags{}
	var startDir string

	cmd := &cobra.Command{
		Use:   "aadhaar",
		Short: "Upload an Aadhaar document for verification",
		Long: `Opens the Aadhaar upload page in the terminal.

Drop a file on the terminal window (or paste its path) to select it,
or press Enter to browse. Press s to submit it for verification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			a := &app{cfg: cfg}
			// stdout belongs to the UI
			if err := a.setupLogging(io.Discard); err != nil {
				return err
			}
			defer a.close()

			previews, err := a.previews()
			if err != nil {
				return err
			}
			client := a.client()

			m := tui.New(cmd.Context(), tui.Options{
				Uploader: client,
				Lookup:   client,
				Widget: widget.Options{
					Accept:   cfg.Upload.Accept,
					MaxSize:  cfg.Upload.MaxSize,
					Previews: previews,
				},
				StartDir: startDir,
			})
			defer m.Close()

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&startDir, "dir", "", "directory the file browser opens in")
	cmd.AddCommand(submitCmd(f), statusCmd(f))
	return cmd
}
