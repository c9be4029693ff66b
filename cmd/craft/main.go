// craft runs the page and document generation pipelines from the command line.
//
// Usage:
//
//	craft extract  --kind=web|document [--file=<transcript>]
//	craft generate --kind=web|document <prompt>
//	craft prompt   --kind=web|document <prompt>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "pagecrafter/internal/generator/claude"
	_ "pagecrafter/internal/generator/gemini"
	_ "pagecrafter/internal/generator/openai"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "craft",
		Short: "Generate and extract web pages and report documents",
		Long: "craft drives the generation pipelines outside the HTTP server:\n" +
			"render prompts, call the configured model, or re-run extraction over a saved transcript.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.AddCommand(newExtractCmd(), newGenerateCmd(), newPromptCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
