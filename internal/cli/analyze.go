package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go-trick-analyzer/internal/upload"
	"go-trick-analyzer/internal/viewstate"
	"go-trick-analyzer/pkg/models"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file.png>",
		Short: "Analyze one PNG and print the result",
		Long: `Upload a PNG to the analysis service once and print the normalized result.

Examples:
  trick-analyzer analyze ./kickflip.png
  trick-analyzer analyze -o json ./kickflip.png
  ANALYSIS_ENDPOINT=http://gpu-box:5000 trick-analyzer analyze ./kickflip.png`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	c, err := setup()
	if err != nil {
		return err
	}

	file, err := upload.LoadCandidate(args[0])
	if err != nil {
		return err
	}

	state := c.State()
	if view, err := state.Upload(file); err != nil {
		if werr := writeView(cmd.OutOrStdout(), view); werr != nil {
			return werr
		}
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	view, err := state.Analyze(ctx)
	if werr := writeView(cmd.OutOrStdout(), view); werr != nil {
		return werr
	}
	return err
}

func writeView(w io.Writer, view viewstate.View) error {
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Response())
	}
	_, err := io.WriteString(w, formatText(view.Response()))
	return err
}

func formatText(resp models.StateResponse) string {
	var b strings.Builder
	if resp.Notice != "" {
		fmt.Fprintf(&b, "%s\n", resp.Notice)
	}

	switch {
	case resp.Result != nil:
		r := resp.Result
		fmt.Fprintf(&b, "Success rate: %d%%\n", r.SuccessRate)
		fmt.Fprintf(&b, "Confidence:   %d%%\n", r.Confidence)
		if r.Verdict != "" {
			fmt.Fprintf(&b, "Verdict:      %s\n", r.Verdict)
		}
		b.WriteString("\nFactors:\n")
		for _, f := range r.Factors {
			fmt.Fprintf(&b, "  %-14s %3d\n", f.Label, f.Score)
		}
		if r.Advice != "" {
			b.WriteString("\nAdvice:\n")
			for _, line := range strings.Split(r.Advice, "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	case resp.Error != "":
		fmt.Fprintf(&b, "Error: %s\n", resp.Error)
	}
	return b.String()
}
