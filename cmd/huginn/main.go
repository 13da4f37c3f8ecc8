package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = runCMD()
	root.AddCommand(topicsCMD(), checkCMD())
	if err := root.Execute(); err != nil {
		log.Printf("Erro: %v", err)
		os.Exit(1)
	}
}

// persistent flags shared by every command
var (
	cfgPath string
	seed    int64
)

func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	cmd.PersistentFlags().Int64Var(&seed, "seed", 0, "seed for topic selection (0 seeds from the clock)")
}
