package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
)

func newExtractCmd() *cobra.Command {
	var (
		kind string
		file string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run extraction over a saved model response",
		Long:  "Reads a complete model response from --file or stdin and prints the extracted result as JSON.\nNo model is contacted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open transcript: %w", err)
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}

			markers := markersFrom(cfg)
			var out output
			if k == domain.ProjectKindWeb {
				res := extract.NewCodePipeline(markers, zap.NewNop()).Extract(string(raw))
				out = output{Response: res.ResponseText, Outcome: res.Outcome.String(), Code: &res.Document}
			} else {
				res := extract.NewDocumentPipeline(markers, zap.NewNop()).Extract(string(raw))
				out = output{Response: res.ResponseText, Outcome: res.Outcome.String(), Document: &res.Document}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	addKindFlag(cmd, &kind)
	cmd.Flags().StringVarP(&file, "file", "f", "", "transcript file (default stdin)")
	return cmd
}
