package gen

import (
	"fmt"

	"github.com/dekarrin/natsuki/internal/ast"
)

// DebugImplBackend emits the implementation half of the debug-printer pair:
// a `dump` function body per node that writes an indented, human-readable
// rendering of the node and its fields to an ostream.
type DebugImplBackend struct {
	HeaderPath string
	table      DispatchTable
}

func NewDebugImplBackend(headerPath string) *DebugImplBackend {
	return &DebugImplBackend{
		HeaderPath: headerPath,
		table:      buildTable(verbDebugField, debugDumpEmitter),
	}
}

func (b *DebugImplBackend) Name() string { return "debug-impl" }

func (b *DebugImplBackend) Prolog(f *ast.File, order []ast.Declaration) []string {
	var out []string
	out = append(out, fmt.Sprintf("#include %q", b.HeaderPath), "#include <string>", "")
	out = append(out, namespaceOpen(f.Options["namespace"])...)
	return out
}

func (b *DebugImplBackend) Epilog(f *ast.File) []string {
	return namespaceClose(f.Options["namespace"])
}

func (b *DebugImplBackend) Enum(e *ast.Enumeration) []string { return nil }

func (b *DebugImplBackend) Union(u *ast.Union) ([]string, error) { return nil, nil }

func (b *DebugImplBackend) Node(n *ast.Node) ([]string, error) {
	if n.IsUnionVariant {
		return nil, nil
	}
	name := className(n)
	out := []string{
		fmt.Sprintf("void dump(const %s& n, std::ostream& out, int indent) {", name),
		"    std::string indentStr(indent * 2, ' ');",
		fmt.Sprintf("    out << indentStr << \"%s\\n\";", n.Name),
	}

	if n.IsParent() {
		// A parent node's overload prints only the node name; its own
		// fields are not dumped here, nor by any child's overload.
		out = append(out, "}")
		return out, nil
	}

	for _, f := range n.Fields {
		lines, _, err := b.table.dispatch(verbDebugField, n, f)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			out = append(out, "    "+l)
		}
	}
	out = append(out, "}")
	return out, nil
}
