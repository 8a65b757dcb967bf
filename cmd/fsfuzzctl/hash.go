package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fsdrift/fsdrift/internal/hasher"
)

func newHashCmd() *cobra.Command {
	var (
		target  string
		out     string
		size    bool
		nlink   bool
		mode    bool
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Fingerprint a directory tree's content and metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := hasher.NewOptions(size, nlink, mode, exclude)
			if err != nil {
				return errors.Wrap(err, "build hash options")
			}
			snapshot, err := hasher.Walk(target, opt)
			if err != nil {
				return errors.Wrapf(err, "walk %s", target)
			}
			data, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return errors.Wrap(err, "marshal snapshot")
			}
			return errors.Wrapf(os.WriteFile(out, data, 0o644), "write %s", out)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "directory to fingerprint")
	cmd.Flags().StringVar(&out, "out", "", "path to write the JSON snapshot to")
	cmd.Flags().BoolVar(&size, "size", true, "include file size in the fingerprint")
	cmd.Flags().BoolVar(&nlink, "nlink", true, "include link count in the fingerprint")
	cmd.Flags().BoolVar(&mode, "mode", true, "include file mode in the fingerprint")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "regex of relative paths to exclude, repeatable")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
