package abstractfs

import "errors"

// Sentinel errors returned by the abstract state's mutators. These are
// expected, precondition-violating outcomes: the generator consults them to
// prune its sampling and they never abort fuzzing, per the error policy
// table.
var (
	ErrInvalidPath         = errors.New("abstractfs: invalid path")
	ErrNotFound            = errors.New("abstractfs: not found")
	ErrNotADir             = errors.New("abstractfs: not a directory")
	ErrNotAFile            = errors.New("abstractfs: not a file")
	ErrNameAlreadyExists   = errors.New("abstractfs: name already exists")
	ErrRootRemovalForbidden = errors.New("abstractfs: root removal forbidden")
	ErrDescriptorNotOpen   = errors.New("abstractfs: descriptor not open")
	ErrDescriptorInUse     = errors.New("abstractfs: descriptor already open")
)
