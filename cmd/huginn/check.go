package main

import (
	"fmt"
	"os"

	"github.com/foodinsight/huginn/internal/listing"
	"github.com/spf13/cobra"
)

func checkCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Check a generated listing against the expected layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			report := listing.Check(string(b))
			out := cmd.OutOrStdout()
			if report.OK() {
				fmt.Fprintf(out, "%s: ok (%s, %d hashtags)\n", args[0], report.Listing.Name, len(report.Listing.Hashtags))
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "%s: %s\n", args[0], issue)
			}
			return fmt.Errorf("%d layout issue(s) in %s", len(report.Issues), args[0])
		},
	}
}
