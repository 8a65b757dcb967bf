package main

import (
	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fsfuzzctl",
		Short: "Differential filesystem fuzzer",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file overlaying the defaults")

	root.AddCommand(newFuzzCmd())
	root.AddCommand(newReduceCmd())
	root.AddCommand(newHashCmd())
	return root
}
