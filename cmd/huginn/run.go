package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodinsight/huginn/config"
	"github.com/foodinsight/huginn/internal/app"
	"github.com/foodinsight/huginn/internal/pipeline"
	"github.com/spf13/cobra"
)

func runCMD() *cobra.Command {
	var output string
	var requireSearch bool
	var root = &cobra.Command{
		Use:           "huginn",
		Short:         "Research a food trend and write a delivery-app product listing",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Output.Path = output
			}
			if cmd.Flags().Changed("require-search") {
				cfg.Pipeline.RequireSearch = requireSearch
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			if _, err := a.Run(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Relatório gerado: %s\n", cfg.Output.Path)
			return nil
		},
	}
	addConfigFlags(root)
	root.Flags().StringVarP(&output, "output", "o", "", "artifact path (default insight_report.md)")
	root.Flags().BoolVar(&requireSearch, "require-search", false, "fail the research stage when no search credential is set")
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, pipeline.ConfigurationError{Reason: "load config", Err: err}
	}
	if seed != 0 {
		cfg.Pipeline.Seed = seed
	}
	return cfg, nil
}
