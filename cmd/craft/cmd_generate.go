package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/generator"
	"pagecrafter/internal/logger"
	"pagecrafter/internal/prompt"
	"pagecrafter/internal/service"
)

func newGenerateCmd() *cobra.Command {
	var (
		kind    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate <request>",
		Short: "Call the configured model and print the extracted result",
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
			log, flush := logger.Init(cfg.Log)
			defer flush()

			gen, err := generator.NewFromConfig(&cfg.Generator, log)
			if err != nil {
				return err
			}
			catalog, err := prompt.Default(markersFrom(cfg))
			if err != nil {
				return err
			}
			svc := service.NewGenerationService(gen, catalog, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			request := strings.Join(args, " ")
			var out output
			if k == domain.ProjectKindWeb {
				res, err := svc.GenerateCode(ctx, service.CodeRequest{Prompt: request})
				if err != nil {
					return err
				}
				out = output{Response: res.ResponseText, Outcome: res.Outcome.String(), Code: &res.Document}
			} else {
				res, err := svc.GenerateDocument(ctx, service.DocumentRequest{Prompt: request})
				if err != nil {
					return err
				}
				out = output{Response: res.ResponseText, Outcome: res.Outcome.String(), Document: &res.Document}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	addKindFlag(cmd, &kind)
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall time limit for the request")
	return cmd
}
