package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fsdrift/fsdrift/internal/coverage"
	"github.com/fsdrift/fsdrift/internal/fuzz"
)

func newFuzzCmd() *cobra.Command {
	var (
		mode        string
		fs1, fs2    string
		testPath    string
		seedsPath   string
		count       int64
		scratchDir  string
		crashesDir  string
		accidentsDir string
	)

	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Run the fuzzing loop against two mounted filesystems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// --fs1/--fs2 override the config file only when the user
			// actually passed them; otherwise fst_fs_name/snd_fs_name
			// from the loaded config take effect, preserving the
			// documented defaults -> file -> CLI precedence chain.
			if !cmd.Flags().Changed("fs1") {
				fs1 = cfg.FirstFileSystem
			}
			if !cmd.Flags().Changed("fs2") {
				fs2 = cfg.SecondFileSystem
			}
			r, err := buildRunner(cfg, fs1, fs2, scratchDir, crashesDir, accidentsDir)
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))

			var driver fuzz.Fuzzer
			switch mode {
			case "blackbox":
				driver = fuzz.NewBlackbox(r, rng, cfg.OperationWeights, int(cfg.MaxWorkloadLength))
			case "greybox":
				gb := fuzz.NewGreybox(r, rng, cfg.OperationWeights, cfg.MutationWeights, int(cfg.Greybox.MaxMutations), coverage.NewDummy())
				if seedsPath != "" {
					seeds, err := fuzz.LoadSeedCorpus(seedsPath)
					if err != nil {
						return err
					}
					gb.Seed(seeds)
				}
				driver = gb
			case "duo-single":
				if testPath == "" {
					return errors.New("fuzz --mode=duo-single requires --test")
				}
				driver = fuzz.NewDuoSingle(r, testPath)
			default:
				return errors.Errorf("unknown --mode %q (want blackbox, greybox, or duo-single)", mode)
			}

			heartbeat := time.Duration(cfg.HeartbeatInterval) * time.Second
			var countPtr *uint64
			if count > 0 {
				c := uint64(count)
				countPtr = &c
			}
			if mode == "duo-single" {
				one := uint64(1)
				countPtr = &one
			}
			return fuzz.Run(context.Background(), driver, countPtr, heartbeat)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "blackbox", "blackbox, greybox, or duo-single")
	cmd.Flags().StringVar(&fs1, "fs1", "ext4", "first filesystem")
	cmd.Flags().StringVar(&fs2, "fs2", "btrfs", "second filesystem")
	cmd.Flags().StringVar(&testPath, "test", "", "path to a saved Workload (duo-single mode)")
	cmd.Flags().StringVar(&seedsPath, "seeds", "", "path to a hand-edited YAML seed corpus (greybox mode)")
	cmd.Flags().Int64Var(&count, "count", 0, "number of iterations (0 = run until interrupted)")
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "/tmp/fsdrift-scratch", "scratch directory for the staged harness build")
	cmd.Flags().StringVar(&crashesDir, "crashes-dir", "./crashes", "directory for divergence reports")
	cmd.Flags().StringVar(&accidentsDir, "accidents-dir", "./accidents", "directory for both-sides-errored reports")
	return cmd
}
