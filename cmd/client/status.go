package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func statusCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show the verification status of an uploaded document",
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

			v, err := a.client().Verification(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", v.ID)
			fmt.Fprintf(out, "File:     %s\n", v.FileName)
			fmt.Fprintf(out, "Status:   %s\n", v.Status)
			if v.ReviewerNotes != "" {
				fmt.Fprintf(out, "Notes:    %s\n", v.ReviewerNotes)
			}
			if v.ReviewedAt != nil {
				fmt.Fprintf(out, "Reviewed: %s\n", v.ReviewedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
