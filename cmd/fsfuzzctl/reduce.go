package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/fuzz"
)

func newReduceCmd() *cobra.Command {
	var (
		testPath     string
		outDir       string
		fs1, fs2     string
		scratchDir   string
		accidentsDir string
	)

	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Delta-debug a reproducing Workload down to a minimal one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fs1") {
				fs1 = cfg.FirstFileSystem
			}
			if !cmd.Flags().Changed("fs2") {
				fs2 = cfg.SecondFileSystem
			}
			r, err := buildRunner(cfg, fs1, fs2, scratchDir, outDir, accidentsDir)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(testPath)
			if err != nil {
				return errors.Wrapf(err, "read testcase %s", testPath)
			}
			var input abstractfs.Workload
			if err := json.Unmarshal(data, &input); err != nil {
				return errors.Wrap(err, "parse testcase json")
			}

			reducer := fuzz.NewReducer(r, log.WithField("component", "reducer"))
			minimised, err := reducer.Reduce(context.Background(), input, outDir)
			if err != nil {
				return err
			}
			log.WithField("length", minimised.Len()).Info("reduction complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&testPath, "test", "", "path to the reproducing Workload")
	cmd.Flags().StringVar(&outDir, "out-dir", "./reduced", "directory to write the minimised reproduction to")
	cmd.Flags().StringVar(&fs1, "fs1", "ext4", "first filesystem")
	cmd.Flags().StringVar(&fs2, "fs2", "btrfs", "second filesystem")
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "/tmp/fsdrift-scratch", "scratch directory for the staged harness build")
	cmd.Flags().StringVar(&accidentsDir, "accidents-dir", "./accidents", "directory for both-sides-errored reports")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}
