package cli

import (
	"io"

	"go-trick-analyzer/internal/logger"
	"go-trick-analyzer/internal/ui"
	"go-trick-analyzer/internal/upload"

	"github.com/spf13/cobra"
)

func newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file.png]",
		Short: "Run the interactive terminal UI",
		Long: `Run the interactive terminal UI. When a file is given it is uploaded first.

Keys: u upload, a analyze, c clear, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}

			// The UI owns the terminal
			logger.SetOutput(io.Discard)

			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			return ui.Run(c.State(), upload.LoadCandidate, initial)
		},
	}
}
