package gen

import (
	"fmt"

	"github.com/dekarrin/natsuki/internal/ast"
)

const verbDebugField = "generate_debug_field"

// DebugHeaderBackend emits the header half of the debug-printer pair: one
// free `dump` function declaration per node, taking the node by const
// reference plus an output stream and indent level. Kept separate from the
// nodes header so that pulling in debug printing never forces a dependency
// on <iostream> for callers who only want the node classes themselves.
type DebugHeaderBackend struct {
	GuardToken string
	HeaderPath string
	table      DispatchTable
}

func NewDebugHeaderBackend(guardToken, headerPath string) *DebugHeaderBackend {
	return &DebugHeaderBackend{
		GuardToken: guardToken,
		HeaderPath: headerPath,
		table:      buildTable(verbDebugField, debugDumpEmitter),
	}
}

func (b *DebugHeaderBackend) Name() string { return "debug-header" }

func (b *DebugHeaderBackend) Prolog(f *ast.File, order []ast.Declaration) []string {
	var out []string
	out = append(out, includeGuardOpen(b.GuardToken)...)
	out = append(out, "#include <ostream>", fmt.Sprintf("#include %q", b.HeaderPath))
	out = append(out, namespaceOpen(f.Options["namespace"])...)
	return out
}

func (b *DebugHeaderBackend) Epilog(f *ast.File) []string {
	var out []string
	out = append(out, namespaceClose(f.Options["namespace"])...)
	out = append(out, includeGuardClose(b.GuardToken)...)
	return out
}

func (b *DebugHeaderBackend) Enum(e *ast.Enumeration) []string { return nil }

func (b *DebugHeaderBackend) Union(u *ast.Union) ([]string, error) { return nil, nil }

func (b *DebugHeaderBackend) Node(n *ast.Node) ([]string, error) {
	if n.IsUnionVariant {
		return nil, nil
	}
	return []string{fmt.Sprintf("void dump(const %s& n, std::ostream& out, int indent = 0);", className(n))}, nil
}
