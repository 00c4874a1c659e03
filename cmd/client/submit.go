package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/aadhaar/internal/filedata"
	"github.com/OpenNSW/aadhaar/internal/orchestrator"
	"github.com/OpenNSW/aadhaar/internal/validator"
)

func submitCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <path>",
		Short: "Upload a document without the interactive page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			a := &app{cfg: cfg}
			if err := a.setupLogging(os.Stderr); err != nil {
				return err
			}
			defer a.close()

			file, err := filedata.FromPath(args[0])
			if err != nil {
				return err
			}
			if err := validator.Validate(file, cfg.Upload.Accept, cfg.Upload.MaxSize); err != nil {
				return err
			}

			st := submit(cmd.Context(), a.client(), file)
			return report(cmd, st)
		},
	}
}

// submit runs one upload through the page state machine and returns the
// state it settled in.
func submit(ctx context.Context, uploader orchestrator.Uploader, file *filedata.File) orchestrator.State {
	page := orchestrator.New(orchestrator.Options{Uploader: uploader})
	defer page.Close()

	page.SelectFile(ctx, file)
	page.Submit(ctx)
	page.Wait()
	return page.State()
}

func report(cmd *cobra.Command, st orchestrator.State) error {
	if st.Phase != orchestrator.PhaseSuccess {
		if st.Error == "" {
			return errors.New("upload did not complete")
		}
		return errors.New(st.Error)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Upload Successful!")
	if d := st.Result.Data; d != nil {
		if d.Message != "" {
			fmt.Fprintln(out, d.Message)
		}
		fmt.Fprintf(out, "Status: %s\n", d.Status)
		if d.ID != "" {
			fmt.Fprintf(out, "ID: %s\n", d.ID)
		}
	}
	return nil
}
