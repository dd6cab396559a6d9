package gen

import (
	"strings"

	"github.com/dekarrin/natsuki/internal/ast"
)

// Backend is what the generator framework drives over an ordered, resolved
// model. The framework (this file) owns the file boilerplate - namespace
// opening/closing, forward declarations, enumeration emission,
// visitor-interface emission; a Backend only supplies the per-declaration
// bodies.
type Backend interface {
	// Name identifies the backend for diagnostics (e.g. "nodes-header").
	Name() string

	// Prolog emits whatever must appear before any declaration: include
	// guard open, includes, namespace open, forward declarations, the
	// visitor interface.
	Prolog(f *ast.File, order []ast.Declaration) []string

	// Enum emits one enumeration's declaration/definition.
	Enum(e *ast.Enumeration) []string

	// Union emits a union's discriminator-kind enum and the full
	// declaration/definition of each of its variants (each variant is
	// itself a Node).
	Union(u *ast.Union) ([]string, error)

	// Node emits one node's declaration/definition, dispatching to the
	// backend's DispatchTable for its fields.
	Node(n *ast.Node) ([]string, error)

	// Epilog emits whatever must appear after every declaration: namespace
	// close, include guard close.
	Epilog(f *ast.File) []string
}

// Generate drives b over f's declarations in the given emission order
// (normally internal/order.Order's output) and returns the complete text of
// one output file, or the first FeatureUnsupported/ASTNotVisitable error a
// backend reports.
func Generate(f *ast.File, order []ast.Declaration, b Backend) (string, error) {
	var out []string
	out = append(out, b.Prolog(f, order)...)

	for _, d := range order {
		switch v := d.(type) {
		case *ast.Enumeration:
			out = append(out, b.Enum(v)...)
		case *ast.Union:
			lines, err := b.Union(v)
			if err != nil {
				return "", err
			}
			out = append(out, lines...)
		case *ast.Node:
			lines, err := b.Node(v)
			if err != nil {
				return "", err
			}
			out = append(out, lines...)
		}
	}

	out = append(out, b.Epilog(f)...)
	return strings.Join(out, "\n") + "\n", nil
}

// forwardDeclarations emits `class X;` for every node in the resolved model,
// in declaration order, so that sibling node classes can hold pointers to
// each other regardless of emission order.
func forwardDeclarations(f *ast.File) []string {
	var out []string
	for _, n := range f.Symbols.Nodes() {
		out = append(out, "class "+className(n)+";")
	}
	for _, u := range f.Symbols.Aggrs() {
		for _, v := range u.Variants {
			out = append(out, "class "+v.Name+";")
		}
	}
	return out
}

// visitorInterface emits the Visitor protocol: a `visit`/`post_visit` pair
// for every concrete (leaf) node, and `visit` only for abstract parent
// nodes.
func visitorInterface(f *ast.File) []string {
	out := []string{"class Visitor {", "public:", "    virtual ~Visitor() = default;"}
	for _, n := range f.Symbols.Nodes() {
		name := className(n)
		out = append(out, "    virtual bool visit("+name+"*) { return true; }")
		if !n.IsParent() {
			out = append(out, "    virtual void post_visit("+name+"*) {}")
		}
	}
	for _, u := range f.Symbols.Aggrs() {
		for _, v := range u.Variants {
			out = append(out, "    virtual bool visit("+v.Name+"*) { return true; }")
			out = append(out, "    virtual void post_visit("+v.Name+"*) {}")
		}
	}
	out = append(out, "};")
	return out
}

func namespaceOpen(ns string) []string {
	if ns == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(ns, "::") {
		out = append(out, "namespace "+part+" {")
	}
	return out
}

func namespaceClose(ns string) []string {
	if ns == "" {
		return nil
	}
	parts := strings.Split(ns, "::")
	var out []string
	for i := len(parts) - 1; i >= 0; i-- {
		out = append(out, "} // namespace "+parts[i])
	}
	return out
}

func includeGuardOpen(token string) []string {
	return []string{
		"#ifndef " + token,
		"#define " + token,
	}
}

func includeGuardClose(token string) []string {
	return []string{"#endif // " + token}
}

func includeLines(includes []string) []string {
	var out []string
	for _, inc := range includes {
		out = append(out, "#include "+inc)
	}
	return out
}
