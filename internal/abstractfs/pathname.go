// Package abstractfs implements the in-memory filesystem model that backs
// the generator, mutator and encoder: a node graph cheap enough to replay
// thousands of times per second while predicting which operations a real
// POSIX filesystem would accept.
package abstractfs

import "strings"

// Name is a single path component: non-empty, contains no '/'.
type Name = string

// PathName is a canonical absolute path: non-empty, begins with '/', and
// either equals "/" or does not end with '/'.
type PathName string

// Root is the canonical path of the filesystem root.
const Root PathName = "/"

// IsRoot reports whether p is the root path.
func (p PathName) IsRoot() bool {
	return p == Root
}

// IsValid reports whether p satisfies the PathName invariants.
func (p PathName) IsValid() bool {
	s := string(p)
	if s == "" || s[0] != '/' {
		return false
	}
	if !p.IsRoot() && strings.HasSuffix(s, "/") {
		return false
	}
	return true
}

// Segments splits p into its non-empty path components; Root has none.
func (p PathName) Segments() []string {
	parts := strings.Split(string(p), "/")
	segs := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Split returns the parent path and final component of p. Split on Root
// panics: callers must check IsRoot first, mirroring that root has no name.
func (p PathName) Split() (PathName, Name) {
	s := string(p)
	i := strings.LastIndexByte(s, '/')
	parent, name := s[:i], s[i+1:]
	if parent == "" {
		return Root, name
	}
	return PathName(parent), name
}

// Join appends name as a new final component of p.
func (p PathName) Join(name Name) PathName {
	if p.IsRoot() {
		return PathName("/" + name)
	}
	return PathName(string(p) + "/" + name)
}

// IsPrefixOf reports whether p's segments are a prefix of other's segments,
// segment-wise: "/1/2" is not a prefix of "/1/20".
func (p PathName) IsPrefixOf(other PathName) bool {
	segs, otherSegs := p.Segments(), other.Segments()
	if len(otherSegs) < len(segs) {
		return false
	}
	for i, s := range segs {
		if s != otherSegs[i] {
			return false
		}
	}
	return true
}

func (p PathName) String() string {
	return string(p)
}
