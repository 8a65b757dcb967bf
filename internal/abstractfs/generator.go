package abstractfs

import "math/rand"

// OperationWeights maps each OperationKind to a non-negative sampling
// weight used by the generator.
type OperationWeights map[OperationKind]uint32

// UniformOperationWeights gives every kind the same weight, mirroring the
// source's "uniform" constructor.
func UniformOperationWeights() OperationWeights {
	w := make(OperationWeights, len(AllOperationKinds))
	for _, k := range AllOperationKinds {
		w[k] = 100
	}
	return w
}

// Generator samples legal operations against an Executor's current state.
type Generator struct {
	rng     *rand.Rand
	weights OperationWeights
}

// NewGenerator builds a Generator seeded from rng and weighted by weights.
func NewGenerator(rng *rand.Rand, weights OperationWeights) *Generator {
	return &Generator{rng: rng, weights: weights}
}

// Intn exposes the Generator's rng to callers outside the package (e.g.
// the greybox driver's mutation-count sampling) without exporting the rng
// field itself.
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}

// legalKinds returns every OperationKind that has at least one legal
// instance against e's current state, restricted to pickFrom when it is
// non-nil.
func (g *Generator) legalKinds(e *Executor, pickFrom map[OperationKind]bool) []OperationKind {
	aliveDirs, aliveFiles := e.aliveDirsAndFiles()
	hasNonRoot := len(e.Alive()) > 1
	var out []OperationKind
	consider := func(k OperationKind, ok bool) {
		if !ok {
			return
		}
		if pickFrom != nil && !pickFrom[k] {
			return
		}
		if g.weights[k] == 0 {
			return
		}
		out = append(out, k)
	}
	consider(OpCreate, len(aliveDirs) > 0)
	consider(OpMkDir, len(aliveDirs) > 0)
	consider(OpRemove, hasNonRoot)
	consider(OpHardlink, len(aliveFiles) > 0 && len(aliveDirs) > 0)
	consider(OpSymlink, len(aliveDirs) > 0)
	consider(OpRename, hasNonRoot)
	consider(OpOpen, len(aliveFiles) > 0)
	consider(OpClose, len(e.openDes) > 0)
	consider(OpRead, len(e.openDes) > 0)
	consider(OpWrite, len(e.openDes) > 0)
	consider(OpFSync, len(e.openDes) > 0)
	return out
}

func (e *Executor) aliveDirsAndFiles() (dirs []DirIndex, files []FileIndex) {
	for _, n := range e.Alive() {
		if n.IsDir() {
			dirs = append(dirs, n.Dir)
		} else {
			files = append(files, n.File)
		}
	}
	return dirs, files
}

func (g *Generator) pickKind(kinds []OperationKind) OperationKind {
	total := uint32(0)
	for _, k := range kinds {
		total += g.weights[k]
	}
	target := uint32(g.rng.Int63n(int64(total)))
	for _, k := range kinds {
		if target < g.weights[k] {
			return k
		}
		target -= g.weights[k]
	}
	return kinds[len(kinds)-1]
}

func (g *Generator) randomName() Name {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	n := g.rng.Intn(6) + 1
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[g.rng.Intn(len(alphabet))]
	}
	return string(buf)
}

func (g *Generator) randomMode() Mode {
	var m Mode
	for _, f := range AllModeFlags {
		if g.rng.Intn(2) == 0 {
			m = append(m, f)
		}
	}
	return m
}

func (g *Generator) pickDir(dirs []DirIndex) DirIndex {
	return dirs[g.rng.Intn(len(dirs))]
}

func (g *Generator) pickFile(files []FileIndex) FileIndex {
	return files[g.rng.Intn(len(files))]
}

func (g *Generator) pickDescriptor(open map[FileDescriptorIndex]FileIndex) FileDescriptorIndex {
	keys := make([]FileDescriptorIndex, 0, len(open))
	for k := range open {
		keys = append(keys, k)
	}
	return keys[g.rng.Intn(len(keys))]
}

// appendOne samples one legal operation restricted to pickFrom (nil means
// any kind) and attempts to apply it, returning whether the apply itself
// succeeded and whether any kind was available to sample at all.
func (g *Generator) appendOne(e *Executor, pickFrom map[OperationKind]bool) (applied, sampled bool) {
	kinds := g.legalKinds(e, pickFrom)
	if len(kinds) == 0 {
		return false, false
	}
	dirs, files := e.aliveDirsAndFiles()
	var err error
	switch g.pickKind(kinds) {
	case OpCreate:
		parent := e.ResolveDirPath(g.pickDir(dirs))
		_, err = e.Create(parent.Join(g.randomName()), g.randomMode())
	case OpMkDir:
		parent := e.ResolveDirPath(g.pickDir(dirs))
		_, err = e.MkDir(parent.Join(g.randomName()), g.randomMode())
	case OpRemove:
		err = e.Remove(g.pickNonRootPath(e, dirs, files))
	case OpHardlink:
		oldPath := e.ResolveFilePath(g.pickFile(files))[0]
		newParent := e.ResolveDirPath(g.pickDir(dirs))
		_, err = e.Hardlink(oldPath, newParent.Join(g.randomName()))
	case OpSymlink:
		linkParent := e.ResolveDirPath(g.pickDir(dirs))
		err = e.Symlink(g.randomName(), linkParent.Join(g.randomName()))
	case OpRename:
		oldPath := g.pickNonRootPath(e, dirs, files)
		newParent := e.ResolveDirPath(g.pickDir(dirs))
		err = e.Rename(oldPath, newParent.Join(g.randomName()))
	case OpOpen:
		path := e.ResolveFilePath(g.pickFile(files))[0]
		_, err = e.Open(path)
	case OpClose:
		err = e.Close(g.pickDescriptor(e.openDes))
	case OpRead:
		err = e.Read(g.pickDescriptor(e.openDes), int64(g.rng.Intn(4096)))
	case OpWrite:
		err = e.Write(g.pickDescriptor(e.openDes), int64(g.rng.Intn(1<<20)), int64(g.rng.Intn(4096)))
	case OpFSync:
		err = e.FSync(g.pickDescriptor(e.openDes))
	}
	return err == nil, true
}

func (g *Generator) pickNonRootPath(e *Executor, dirs []DirIndex, files []FileIndex) PathName {
	var candidates []PathName
	for _, d := range dirs {
		if d != 0 {
			candidates = append(candidates, e.ResolveDirPath(d))
		}
	}
	for _, f := range files {
		candidates = append(candidates, e.ResolveFilePath(f)[0])
	}
	return candidates[g.rng.Intn(len(candidates))]
}

// maxAttemptsPerOp bounds retries when a sampled argument combination turns
// out illegal (e.g. a name collision); it prevents generation from looping
// forever on a saturated namespace.
const maxAttemptsPerOp = 64

// GenerateNew runs a fresh Executor forward until n operations have
// succeeded, and returns the resulting recording. It stops early, with
// fewer than n operations, when no operation kind can be sampled or when
// maxAttemptsPerOp attempts in a row all fail.
func (g *Generator) GenerateNew(n int) Workload {
	e := NewExecutor()
	successes := 0
	for successes < n {
		applied, sampled := false, false
		for attempt := 0; attempt < maxAttemptsPerOp && !applied; attempt++ {
			applied, sampled = g.appendOne(e, nil)
		}
		if !sampled || !applied {
			break
		}
		successes++
	}
	return e.Recording()
}
