package main

import (
	"fmt"

	"github.com/foodinsight/huginn/internal/topic"
	"github.com/spf13/cobra"
)

func topicsCMD() *cobra.Command {
	var pick bool
	var cmd = &cobra.Command{
		Use:   "topics",
		Short: "Print the research angle catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var sel *topic.Selector
			if cfg.Pipeline.Seed != 0 {
				sel, err = topic.NewSeededSelector(cfg.Pipeline.Topics, cfg.Pipeline.Seed)
			} else {
				sel, err = topic.NewSelector(cfg.Pipeline.Topics)
			}
			if err != nil {
				return err
			}
			if pick {
				fmt.Fprintln(cmd.OutOrStdout(), sel.Select())
				return nil
			}
			for _, t := range sel.Catalog() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "print one randomly selected angle instead of the catalogue")
	return cmd
}
