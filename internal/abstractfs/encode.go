package abstractfs

import (
	"fmt"
	"strings"
)

func descriptorToVar(des FileDescriptorIndex) string {
	return fmt.Sprintf("fd_%d", des)
}

// EncodeC renders w as a single C translation unit against the fixed
// executor.h harness ABI. Paths and free strings are emitted verbatim
// inside double quotes: callers must supply legal C string literals, the
// encoder performs no escaping.
func (w Workload) EncodeC() string {
	var b strings.Builder
	b.WriteString("#include \"executor.h\"\n")

	descriptorsN := 0
	for _, op := range w.Ops {
		if op.Kind == OpOpen && int(op.Des)+1 > descriptorsN {
			descriptorsN = int(op.Des) + 1
		}
	}
	if descriptorsN > 0 {
		vars := make([]string, descriptorsN)
		for i := range vars {
			vars[i] = fmt.Sprintf("fd_%d", i)
		}
		fmt.Fprintf(&b, "\nint %s;\n\n", strings.Join(vars, ", "))
	} else {
		b.WriteString("\n// no descriptors\n\n")
	}

	b.WriteString("void test_workload()\n{\n")
	for _, op := range w.Ops {
		switch op.Kind {
		case OpCreate:
			fmt.Fprintf(&b, "do_create(\"%s\", %s);\n", op.Path, op.Mode.EncodeC())
		case OpMkDir:
			fmt.Fprintf(&b, "do_mkdir(\"%s\", %s);\n", op.Path, op.Mode.EncodeC())
		case OpRemove:
			fmt.Fprintf(&b, "do_remove(\"%s\");\n", op.Path)
		case OpHardlink:
			fmt.Fprintf(&b, "do_hardlink(\"%s\", \"%s\");\n", op.OldPath, op.NewPath)
		case OpRename:
			fmt.Fprintf(&b, "do_rename(\"%s\", \"%s\");\n", op.OldPath, op.NewPath)
		case OpOpen:
			fmt.Fprintf(&b, "%s = do_open(\"%s\");\n", descriptorToVar(op.Des), op.Path)
		case OpClose:
			fmt.Fprintf(&b, "do_close(%s);\n", descriptorToVar(op.Des))
		case OpRead:
			fmt.Fprintf(&b, "do_read(%s, %d);\n", descriptorToVar(op.Des), op.Size)
		case OpWrite:
			fmt.Fprintf(&b, "do_write(%s, %d, %d);\n", descriptorToVar(op.Des), op.SrcOffset, op.Size)
		case OpFSync:
			fmt.Fprintf(&b, "do_fsync(%s);\n", descriptorToVar(op.Des))
		case OpSymlink:
			fmt.Fprintf(&b, "do_symlink(\"%s\", \"%s\");\n", op.Target, op.LinkPath)
		}
	}
	b.WriteString("}")
	return b.String()
}
