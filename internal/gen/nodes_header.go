package gen

import (
	"fmt"
	"strings"

	"github.com/dekarrin/natsuki/internal/ast"
)

// NodesHeaderBackend emits the header half of the nodes-header/
// nodes-implementation backend pair: class declarations for every node,
// rule-of-five deleted copies, constructor/destructor/traverse signatures,
// and is_X/as_X downcasts on parent nodes.
type NodesHeaderBackend struct {
	GuardToken string
	table      DispatchTable
}

// NewNodesHeaderBackend builds the backend's dispatch table once, at
// construction.
func NewNodesHeaderBackend(guardToken string) *NodesHeaderBackend {
	return &NodesHeaderBackend{
		GuardToken: guardToken,
		table:      buildTable(VerbField, fieldDeclEmitter),
	}
}

func (b *NodesHeaderBackend) Name() string { return "nodes-header" }

func (b *NodesHeaderBackend) Prolog(f *ast.File, order []ast.Declaration) []string {
	var out []string
	out = append(out, includeGuardOpen(b.GuardToken)...)
	out = append(out, "#include <map>", "#include <optional>", "#include <string>", "#include <type_traits>", "#include <vector>")
	out = append(out, includeLines(f.Includes)...)
	out = append(out, namespaceOpen(f.Options["namespace"])...)
	out = append(out, forwardDeclarations(f)...)
	out = append(out, visitorInterface(f)...)
	return out
}

func (b *NodesHeaderBackend) Epilog(f *ast.File) []string {
	var out []string
	out = append(out, namespaceClose(f.Options["namespace"])...)
	out = append(out, includeGuardClose(b.GuardToken)...)
	return out
}

func (b *NodesHeaderBackend) Enum(e *ast.Enumeration) []string {
	out := []string{"enum class " + enumName(e) + " {"}
	for _, lit := range e.Literals {
		out = append(out, "    "+lit+",")
	}
	out = append(out, "};")
	return out
}

// Union emits a union's discriminator-kind enum followed by the full class
// declaration of each variant. Every variant is itself a Node, but is never
// visited through the ordinary node-declaration loop since variants are not
// registered in the file's node symbol table.
func (b *NodesHeaderBackend) Union(u *ast.Union) ([]string, error) {
	out := []string{fmt.Sprintf("enum class %sKind {", u.Name), "    None,"}
	for _, v := range u.Variants {
		out = append(out, "    "+v.Name+",")
	}
	out = append(out, "};")

	for _, v := range u.Variants {
		lines, err := b.nodeClass(v)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}

	// a field of this union type embeds raw storage big enough for any
	// variant, plus free helpers its generated code calls; declaring the
	// helpers here keeps the debug implementation file from needing its own
	// forward declarations.
	var variantNames []string
	for _, v := range u.Variants {
		variantNames = append(variantNames, v.Name)
	}
	kindType := u.Name + "Kind"
	out = append(out, fmt.Sprintf("using %sStorage = std::aligned_union_t<0, %s>;", u.Name, strings.Join(variantNames, ", ")))
	out = append(out, fmt.Sprintf("void destroy_%s(%s kind, void* storage);", u.Name, kindType))
	out = append(out, fmt.Sprintf("void traverse_%s(Visitor& visitor, %s kind, void* storage);", u.Name, kindType))
	out = append(out, fmt.Sprintf("const char* %s_kind_name(%s kind);", u.Name, kindType))
	return out, nil
}

func (b *NodesHeaderBackend) Node(n *ast.Node) ([]string, error) {
	return b.nodeClass(n)
}

func (b *NodesHeaderBackend) nodeClass(n *ast.Node) ([]string, error) {
	var out []string
	name := className(n)

	decl := "class " + name
	if n.IsChild() {
		decl += " : public " + className(mustParent(n))
	}
	decl += " {"
	out = append(out, decl, "public:")

	switch {
	case n.IsChild():
		out = append(out, "    "+name+"();", "    ~"+name+"() override;")
	case n.IsParent():
		out = append(out, "    "+name+"();", "    virtual ~"+name+"();")
	default:
		out = append(out, "    "+name+"();", "    ~"+name+"();")
	}
	out = append(out, "    "+name+"(const "+name+"&) = delete;", "    "+name+"& operator=(const "+name+"&) = delete;")

	if n.IsParent() {
		kindLine := "    enum class Kind { "
		for i, childName := range n.Children {
			if i > 0 {
				kindLine += ", "
			}
			kindLine += childName
		}
		kindLine += " };"
		out = append(out, kindLine)
		out = append(out, "    virtual Kind get_kind() const = 0;")
		out = append(out, "    virtual void traverse(Visitor& visitor) = 0;")
		for _, childName := range n.Children {
			out = append(out, fmt.Sprintf("    virtual bool is_%s() const { return false; }", childName))
			out = append(out, fmt.Sprintf("    virtual %s* as_%s() { return nullptr; }", childName, childName))
		}
	} else if n.IsChild() {
		out = append(out, fmt.Sprintf("    Kind get_kind() const override { return Kind::%s; }", n.Name))
		out = append(out, "    void traverse(Visitor& visitor) override;")
		out = append(out, fmt.Sprintf("    bool is_%s() const override { return true; }", n.Name))
		out = append(out, fmt.Sprintf("    %s* as_%s() override { return this; }", name, n.Name))
	} else {
		out = append(out, "    void traverse(Visitor& visitor);")
	}

	for _, f := range n.Fields {
		lines, _, err := b.table.dispatch(VerbField, n, f)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			out = append(out, "    "+l)
		}
	}

	for _, pub := range n.Public {
		out = append(out, pub.Text)
	}

	out = append(out, "private:")
	for _, priv := range n.Private {
		out = append(out, priv.Text)
	}

	out = append(out, "};")
	return out, nil
}

func mustParent(n *ast.Node) *ast.Node {
	if len(n.ResolvedParents) > 0 {
		return n.ResolvedParents[0]
	}
	return &ast.Node{Name: n.Parents[0]}
}
