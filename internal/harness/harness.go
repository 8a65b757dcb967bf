// Package harness ships the fixed C program that runs one encoded
// Workload: the executor.h/executor.cpp sources providing one do_* call
// per operation kind, and the makefile that builds them against a
// generated test.c. The core never compiles or parses C itself; it only
// stages these template files verbatim next to the encoded program.
package harness

import (
	"embed"
	"io/fs"

	"github.com/pkg/errors"
)

//go:embed template/executor.h template/executor.cpp template/makefile
var templateFS embed.FS

// Files lists the fixed harness sources staged into every scratch
// directory; the runner stages them from All(), in no fixed order.
var Files = []string{"executor.h", "executor.cpp", "makefile"}

// Read returns the contents of one embedded template file, named by the
// same base name used in Files.
func Read(name string) ([]byte, error) {
	data, err := templateFS.ReadFile("template/" + name)
	if err != nil {
		return nil, errors.Wrapf(err, "read embedded harness file %s", name)
	}
	return data, nil
}

// All returns every embedded harness file as name -> contents.
func All() (map[string][]byte, error) {
	out := make(map[string][]byte, len(Files))
	for _, name := range Files {
		data, err := Read(name)
		if err != nil {
			return nil, err
		}
		out[name] = data
	}
	return out, nil
}

// Walk exists for completeness when a caller wants raw fs.FS access
// (e.g. to copy the template directory tree directly).
func Walk(fn fs.WalkDirFunc) error {
	return fs.WalkDir(templateFS, "template", fn)
}
