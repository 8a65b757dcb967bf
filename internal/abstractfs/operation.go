package abstractfs

import "github.com/pkg/errors"

// OperationKind tags which fields of an Operation are meaningful. Go has no
// enum-with-payload like the source language, so Operation carries every
// field and Kind says which ones are live.
type OperationKind int

const (
	OpCreate OperationKind = iota
	OpMkDir
	OpRemove
	OpHardlink
	OpSymlink
	OpRename
	OpOpen
	OpClose
	OpRead
	OpWrite
	OpFSync
)

var operationKindName = map[OperationKind]string{
	OpCreate:   "CREATE",
	OpMkDir:    "MKDIR",
	OpRemove:   "REMOVE",
	OpHardlink: "HARDLINK",
	OpSymlink:  "SYMLINK",
	OpRename:   "RENAME",
	OpOpen:     "OPEN",
	OpClose:    "CLOSE",
	OpRead:     "READ",
	OpWrite:    "WRITE",
	OpFSync:    "FSYNC",
}

func (k OperationKind) String() string { return operationKindName[k] }

var operationKindFromName = func() map[string]OperationKind {
	m := make(map[string]OperationKind, len(operationKindName))
	for k, name := range operationKindName {
		m[name] = k
	}
	return m
}()

// MarshalText renders the kind by its canonical name, so OperationWeights
// decodes from a TOML table keyed by operation name (e.g. `CREATE = 100`).
func (k OperationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *OperationKind) UnmarshalText(text []byte) error {
	v, ok := operationKindFromName[string(text)]
	if !ok {
		return errors.Errorf("unknown operation kind %q", text)
	}
	*k = v
	return nil
}

// AllOperationKinds lists every operation kind the generator can sample.
var AllOperationKinds = []OperationKind{
	OpCreate, OpMkDir, OpRemove, OpHardlink, OpSymlink, OpRename,
	OpOpen, OpClose, OpRead, OpWrite, OpFSync,
}

// Operation is one step of a Workload. Only the fields relevant to Kind are
// populated; the rest are zero values.
type Operation struct {
	Kind OperationKind

	Path    PathName // Create, MkDir, Remove, Open
	Mode    Mode     // Create, MkDir
	OldPath PathName // Hardlink, Rename
	NewPath PathName // Hardlink, Rename
	Target  string   // Symlink
	LinkPath PathName // Symlink

	Des       FileDescriptorIndex // Open, Close, Read, Write, FSync
	SrcOffset int64               // Write
	Size      int64               // Read, Write
}

func OpCreateOp(path PathName, mode Mode) Operation {
	return Operation{Kind: OpCreate, Path: path, Mode: mode}
}

func OpMkDirOp(path PathName, mode Mode) Operation {
	return Operation{Kind: OpMkDir, Path: path, Mode: mode}
}

func OpRemoveOp(path PathName) Operation {
	return Operation{Kind: OpRemove, Path: path}
}

func OpHardlinkOp(oldPath, newPath PathName) Operation {
	return Operation{Kind: OpHardlink, OldPath: oldPath, NewPath: newPath}
}

func OpSymlinkOp(target string, linkPath PathName) Operation {
	return Operation{Kind: OpSymlink, Target: target, LinkPath: linkPath}
}

func OpRenameOp(oldPath, newPath PathName) Operation {
	return Operation{Kind: OpRename, OldPath: oldPath, NewPath: newPath}
}

func OpOpenOp(path PathName, des FileDescriptorIndex) Operation {
	return Operation{Kind: OpOpen, Path: path, Des: des}
}

func OpCloseOp(des FileDescriptorIndex) Operation {
	return Operation{Kind: OpClose, Des: des}
}

func OpReadOp(des FileDescriptorIndex, size int64) Operation {
	return Operation{Kind: OpRead, Des: des, Size: size}
}

func OpWriteOp(des FileDescriptorIndex, srcOffset, size int64) Operation {
	return Operation{Kind: OpWrite, Des: des, SrcOffset: srcOffset, Size: size}
}

func OpFSyncOp(des FileDescriptorIndex) Operation {
	return Operation{Kind: OpFSync, Des: des}
}

// Workload is the ordered sequence of operations that is a test.
type Workload struct {
	Ops []Operation `json:"ops"`
}

// Len returns the number of operations in w.
func (w Workload) Len() int { return len(w.Ops) }

// Without returns a copy of w with the operation at index i removed.
func (w Workload) Without(i int) Workload {
	out := make([]Operation, 0, len(w.Ops)-1)
	out = append(out, w.Ops[:i]...)
	out = append(out, w.Ops[i+1:]...)
	return Workload{Ops: out}
}

// Prefix returns the first k operations of w.
func (w Workload) Prefix(k int) Workload {
	return Workload{Ops: append([]Operation(nil), w.Ops[:k]...)}
}
