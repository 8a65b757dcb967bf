package abstractfs

import (
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// ModeFlag is one of the fifteen standard POSIX permission/special bits.
type ModeFlag int

// The standard set of mode flags, in the declaration order the encoder
// must preserve when rendering a Mode.
const (
	S_IRWXU ModeFlag = iota
	S_IRUSR
	S_IWUSR
	S_IXUSR
	S_IRWXG
	S_IRGRP
	S_IWGRP
	S_IXGRP
	S_IRWXO
	S_IROTH
	S_IWOTH
	S_IXOTH
	S_ISUID
	S_ISGID
	S_ISVTX
)

var modeFlagName = map[ModeFlag]string{
	S_IRWXU: "S_IRWXU",
	S_IRUSR: "S_IRUSR",
	S_IWUSR: "S_IWUSR",
	S_IXUSR: "S_IXUSR",
	S_IRWXG: "S_IRWXG",
	S_IRGRP: "S_IRGRP",
	S_IWGRP: "S_IWGRP",
	S_IXGRP: "S_IXGRP",
	S_IRWXO: "S_IRWXO",
	S_IROTH: "S_IROTH",
	S_IWOTH: "S_IWOTH",
	S_IXOTH: "S_IXOTH",
	S_ISUID: "S_ISUID",
	S_ISGID: "S_ISGID",
	S_ISVTX: "S_ISVTX",
}

var modeFlagBits = map[ModeFlag]uint32{
	S_IRWXU: unix.S_IRWXU,
	S_IRUSR: unix.S_IRUSR,
	S_IWUSR: unix.S_IWUSR,
	S_IXUSR: unix.S_IXUSR,
	S_IRWXG: unix.S_IRWXG,
	S_IRGRP: unix.S_IRGRP,
	S_IWGRP: unix.S_IWGRP,
	S_IXGRP: unix.S_IXGRP,
	S_IRWXO: unix.S_IRWXO,
	S_IROTH: unix.S_IROTH,
	S_IWOTH: unix.S_IWOTH,
	S_IXOTH: unix.S_IXOTH,
	S_ISUID: unix.S_ISUID,
	S_ISGID: unix.S_ISGID,
	S_ISVTX: unix.S_ISVTX,
}

// AllModeFlags lists every flag in declaration order, used by the generator
// to sample an arbitrary subset.
var AllModeFlags = []ModeFlag{
	S_IRWXU, S_IRUSR, S_IWUSR, S_IXUSR,
	S_IRWXG, S_IRGRP, S_IWGRP, S_IXGRP,
	S_IRWXO, S_IROTH, S_IWOTH, S_IXOTH,
	S_ISUID, S_ISGID, S_ISVTX,
}

func (f ModeFlag) String() string { return modeFlagName[f] }

// Bits returns the underlying POSIX mode bit value for f.
func (f ModeFlag) Bits() uint32 { return modeFlagBits[f] }

// Mode is a set of POSIX mode bits; an empty Mode denotes 0.
type Mode []ModeFlag

// Bits ORs together the bit values of every flag in m.
func (m Mode) Bits() uint32 {
	var bits uint32
	for _, f := range m {
		bits |= f.Bits()
	}
	return bits
}

// EncodeC renders m the way the encoder embeds it in a C literal: "0" for
// the empty set, otherwise flag names joined with " | " in declaration
// order.
func (m Mode) EncodeC() string {
	if len(m) == 0 {
		return "0"
	}
	flags := append(Mode(nil), m...)
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.String()
	}
	return strings.Join(names, " | ")
}
