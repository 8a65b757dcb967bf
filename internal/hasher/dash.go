// Package hasher implements the post-run content/metadata fingerprint
// ("dash") used for oracle-free differential testing: a recursive walk of
// a mounted filesystem that produces a stable fingerprint per file and per
// directory, plus a structural diff between two such trees.
package hasher

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Options toggles which file attributes participate in the fingerprint and
// which paths are skipped entirely.
type Options struct {
	Size    bool
	NLink   bool
	Mode    bool
	Exclude []*regexp.Regexp
}

// NewOptions compiles exclude into regexps usable by Walk; it returns an
// error for any invalid pattern.
func NewOptions(size, nlink, mode bool, exclude []string) (Options, error) {
	opt := Options{Size: size, NLink: nlink, Mode: mode}
	for _, pat := range exclude {
		re, err := regexp.Compile(pat)
		if err != nil {
			return Options{}, errors.Wrapf(err, "compile exclude pattern %q", pat)
		}
		opt.Exclude = append(opt.Exclude, re)
	}
	return opt, nil
}

func (o Options) excluded(relPath string) bool {
	for _, re := range o.Exclude {
		if re.MatchString(relPath) {
			return true
		}
	}
	return false
}

// FileFingerprint is the per-file tuple selected by Options plus a content
// hash stable across runs.
type FileFingerprint struct {
	Size    int64  `json:"size,omitempty"`
	NLink   uint64 `json:"nlink,omitempty"`
	Mode    uint32 `json:"mode,omitempty"`
	Content uint64 `json:"content"`
}

// DirFingerprint is the set of (name, child fingerprint) pairs of a
// directory's immediate children, keyed for deterministic JSON output.
type DirFingerprint struct {
	Files map[string]FileFingerprint `json:"files,omitempty"`
	Dirs  map[string]DirFingerprint  `json:"dirs,omitempty"`
}

// Snapshot is the fingerprint of an entire subtree rooted at the walked
// target path.
type Snapshot struct {
	Root DirFingerprint
}

// Walk recursively fingerprints the tree rooted at target, skipping any
// relative path matched by opt.Exclude.
func Walk(target string, opt Options) (Snapshot, error) {
	root, err := walkDir(target, "", opt)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Root: root}, nil
}

func walkDir(absPath, relPath string, opt Options) (DirFingerprint, error) {
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return DirFingerprint{}, errors.Wrapf(err, "read dir %s", absPath)
	}
	out := DirFingerprint{Files: map[string]FileFingerprint{}, Dirs: map[string]DirFingerprint{}}
	names := make([]string, 0, len(entries))
	for _, ent := range entries {
		names = append(names, ent.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		childRel := filepath.Join(relPath, name)
		if opt.excluded(childRel) {
			continue
		}
		childAbs := filepath.Join(absPath, name)
		info, err := os.Lstat(childAbs)
		if err != nil {
			return DirFingerprint{}, errors.Wrapf(err, "stat %s", childAbs)
		}
		if info.IsDir() {
			sub, err := walkDir(childAbs, childRel, opt)
			if err != nil {
				return DirFingerprint{}, err
			}
			out.Dirs[name] = sub
			continue
		}
		fp, err := fingerprintFile(childAbs, info, opt)
		if err != nil {
			return DirFingerprint{}, err
		}
		out.Files[name] = fp
	}
	return out, nil
}

func fingerprintFile(path string, info os.FileInfo, opt Options) (FileFingerprint, error) {
	fp := FileFingerprint{}
	if opt.Size {
		fp.Size = info.Size()
	}
	if opt.Mode {
		fp.Mode = uint32(info.Mode())
	}
	if opt.NLink {
		fp.NLink = nlink(info)
	}
	h, err := hashContent(path, info)
	if err != nil {
		return FileFingerprint{}, err
	}
	fp.Content = h
	return fp, nil
}

// hashContent streams path's bytes through xxhash; symlinks hash their
// target string instead of following the link.
func hashContent(path string, info os.FileInfo) (uint64, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return 0, errors.Wrapf(err, "readlink %s", path)
		}
		return xxhash.Sum64String(target), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, errors.Wrapf(err, "hash %s", path)
	}
	return h.Sum64(), nil
}
