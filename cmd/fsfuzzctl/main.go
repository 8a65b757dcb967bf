// Command fsfuzzctl drives the differential filesystem fuzzer: generate
// or replay a Workload, run it against two mounted filesystems, and
// report any divergence between their syscall traces or on-disk content.
package main

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(colorable.NewColorableStdout())
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("fsfuzzctl failed")
		os.Exit(1)
	}
}
