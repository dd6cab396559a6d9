package gen

import (
	"fmt"

	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/ngerrors"
)

// Output is which of the two backend pairs the CLI's --generate_nodes /
// --generate_debug flag selected.
type Output int

const (
	OutputNodes Output = iota
	OutputDebug
)

// FileKind is which half of a backend pair the CLI's --generate_h /
// --generate_cpp flag selected.
type FileKind int

const (
	FileHeader FileKind = iota
	FileImpl
)

// Options gathers the knobs a driver needs to pick and construct the right
// Backend: the include-guard token for header output, and (for impl output)
// the path the generated .cpp should #include to reach its own header.
type Options struct {
	GuardToken string
	HeaderPath string
}

// SelectBackend returns the concrete Backend for one (Output, FileKind)
// combination, mirroring the CLI's four-way flag matrix.
func SelectBackend(out Output, kind FileKind, opts Options) Backend {
	switch {
	case out == OutputNodes && kind == FileHeader:
		return NewNodesHeaderBackend(opts.GuardToken)
	case out == OutputNodes && kind == FileImpl:
		return NewNodesImplBackend(opts.HeaderPath)
	case out == OutputDebug && kind == FileHeader:
		return NewDebugHeaderBackend(opts.GuardToken, opts.HeaderPath)
	default:
		return NewDebugImplBackend(opts.HeaderPath)
	}
}

// GenerateFile resolves the backend for (out, kind) and drives it over f's
// declarations in the given order, returning one complete output file's
// text.
func GenerateFile(f *ast.File, order []ast.Declaration, out Output, kind FileKind, opts Options) (string, error) {
	if out == OutputDebug {
		if _, ok := f.Options["visitable"]; !ok {
			return "", ngerrors.ASTNotVisitable()
		}
	}

	b := SelectBackend(out, kind, opts)
	text, err := Generate(f, order, b)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", b.Name(), err)
	}
	return text, nil
}
