package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pagecrafter/internal/config"
	"pagecrafter/internal/prompt"
)

func newPromptCmd() *cobra.Command {
	var (
		kind         string
		previousHTML string
		previousCSS  string
		previousJS   string
	)
	cmd := &cobra.Command{
		Use:   "prompt <request>",
		Short: "Print the prompt that would be sent to the model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			catalog, err := prompt.Default(markersFrom(cfg))
			if err != nil {
				return err
			}

			text, err := catalog.Render(k, prompt.Data{
				Prompt:       strings.Join(args, " "),
				PreviousHTML: previousHTML,
				PreviousCSS:  previousCSS,
				PreviousJS:   previousJS,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	addKindFlag(cmd, &kind)
	cmd.Flags().StringVar(&previousHTML, "previous-html", "", "HTML of the page being revised")
	cmd.Flags().StringVar(&previousCSS, "previous-css", "", "CSS of the page being revised")
	cmd.Flags().StringVar(&previousJS, "previous-js", "", "JavaScript of the page being revised")
	return cmd
}
