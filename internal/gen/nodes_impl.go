package gen

import (
	"fmt"
	"strings"

	"github.com/dekarrin/natsuki/internal/ast"
)

// NodesImplBackend emits the implementation half of the nodes pair:
// constructor bodies (member-init-list from VerbInitialiser), destructor
// bodies (VerbDestroyer), traverse() bodies (VerbTraveller), discriminator
// setters for union fields, and the per-union helper functions
// (destroy_X/traverse_X/X_kind_name) its Aggr field emitters reference.
type NodesImplBackend struct {
	HeaderPath string

	initTable    DispatchTable
	destroyTable DispatchTable
	travelTable  DispatchTable
}

func NewNodesImplBackend(headerPath string) *NodesImplBackend {
	return &NodesImplBackend{
		HeaderPath:   headerPath,
		initTable:    buildTable(VerbInitialiser, initialiserEmitter),
		destroyTable: buildTable(VerbDestroyer, destroyerEmitter),
		travelTable:  buildTable(VerbTraveller, travellerEmitter),
	}
}

func (b *NodesImplBackend) Name() string { return "nodes-impl" }

func (b *NodesImplBackend) Prolog(f *ast.File, order []ast.Declaration) []string {
	var out []string
	out = append(out, fmt.Sprintf("#include %q", b.HeaderPath), "#include <new>", "")
	out = append(out, namespaceOpen(f.Options["namespace"])...)
	for _, u := range unionsOf(order) {
		out = append(out, unionHelperFunctions(u)...)
	}
	return out
}

func (b *NodesImplBackend) Epilog(f *ast.File) []string {
	return namespaceClose(f.Options["namespace"])
}

func (b *NodesImplBackend) Enum(e *ast.Enumeration) []string { return nil }

// Union emits the constructor/destructor/traverse bodies of every variant,
// in addition to the helper functions already emitted in Prolog.
func (b *NodesImplBackend) Union(u *ast.Union) ([]string, error) {
	var out []string
	for _, v := range u.Variants {
		lines, err := b.nodeBody(v)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

func (b *NodesImplBackend) Node(n *ast.Node) ([]string, error) {
	return b.nodeBody(n)
}

func (b *NodesImplBackend) nodeBody(n *ast.Node) ([]string, error) {
	name := className(n)
	var out []string

	var inits []string
	for _, f := range n.Fields {
		lines, _, err := b.initTable.dispatch(VerbInitialiser, n, f)
		if err != nil {
			return nil, err
		}
		inits = append(inits, lines...)
	}
	ctor := name + "::" + name + "()"
	if len(inits) > 0 {
		ctor += " : " + strings.Join(inits, ", ")
	}
	out = append(out, ctor+" {}")

	var dtorBody []string
	for _, f := range n.Fields {
		lines, _, err := b.destroyTable.dispatch(VerbDestroyer, n, f)
		if err != nil {
			return nil, err
		}
		dtorBody = append(dtorBody, lines...)
	}
	out = append(out, name+"::~"+name+"() {")
	for _, l := range dtorBody {
		out = append(out, "    "+l)
	}
	out = append(out, "}")

	fieldWalk, err := b.traverseFieldLines(n)
	if err != nil {
		return nil, err
	}

	if n.IsParent() {
		// the declaration is pure virtual, but the out-of-line body still
		// exists so a child's traverse can chain into the parent's own
		// visitable fields with an explicit Parent::traverse call.
		out = append(out, "void "+name+"::traverse(Visitor& visitor) {")
		for _, l := range fieldWalk {
			out = append(out, "    "+l)
		}
		out = append(out, "}")
	} else {
		out = append(out, "void "+name+"::traverse(Visitor& visitor) {")
		out = append(out, "    if (visitor.visit(this)) {")
		for _, l := range fieldWalk {
			out = append(out, "        "+l)
		}
		for _, parentName := range n.Parents {
			out = append(out, "        "+parentName+"::traverse(visitor);")
		}
		out = append(out, "    }")
		out = append(out, "    visitor.post_visit(this);")
		out = append(out, "}")
	}

	for _, fld := range n.Fields {
		if fld.Model == ast.ModelAggr && fld.ResolvedAggr != nil {
			out = append(out, unionSetter(name, fld)...)
		}
	}

	return out, nil
}

// traverseFieldLines collects the traveller lines for every visitable field
// of n, in declaration order.
func (b *NodesImplBackend) traverseFieldLines(n *ast.Node) ([]string, error) {
	var out []string
	for _, f := range n.Fields {
		if !f.IsVisitable {
			continue
		}
		lines, _, err := b.travelTable.dispatch(VerbTraveller, n, f)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

// unionSetter emits the discriminator setter for one Aggr field: destroy
// whatever variant currently occupies the storage, then placement-construct
// the newly selected one.
func unionSetter(owner string, f *ast.Field) []string {
	u := f.ResolvedAggr
	kindType := u.Name + "Kind"
	out := []string{
		fmt.Sprintf("void %s::set_%s_kind(%s kind) {", owner, f.Name, kindType),
		fmt.Sprintf("    destroy_%s(%s_kind, &%s_storage);", u.Name, f.Name, f.Name),
		fmt.Sprintf("    %s_kind = kind;", f.Name),
		"    switch (kind) {",
	}
	for _, v := range u.Variants {
		out = append(out, fmt.Sprintf("    case %s::%s:", kindType, v.Name))
		out = append(out, fmt.Sprintf("        new (&%s_storage) %s();", f.Name, v.Name))
		out = append(out, "        break;")
	}
	out = append(out, "    default: break;", "    }", "}")
	return out
}

func unionsOf(order []ast.Declaration) []*ast.Union {
	var out []*ast.Union
	for _, d := range order {
		if u, ok := d.(*ast.Union); ok {
			out = append(out, u)
		}
	}
	return out
}

// unionHelperFunctions emits the three free functions an Aggr field's
// generated lines call: destroy_X (destruct whichever variant is active),
// traverse_X (chain the active variant's traverse, which announces itself to
// the Visitor), and X_kind_name (debug-printer support).
func unionHelperFunctions(u *ast.Union) []string {
	kindType := u.Name + "Kind"
	var out []string

	out = append(out, fmt.Sprintf("void destroy_%s(%s kind, void* storage) {", u.Name, kindType), "    switch (kind) {")
	for _, v := range u.Variants {
		out = append(out, fmt.Sprintf("    case %s::%s:", kindType, v.Name))
		out = append(out, fmt.Sprintf("        reinterpret_cast<%s*>(storage)->~%s();", v.Name, v.Name))
		out = append(out, "        break;")
	}
	out = append(out, "    default: break;", "    }", "}", "")

	out = append(out, fmt.Sprintf("void traverse_%s(Visitor& visitor, %s kind, void* storage) {", u.Name, kindType), "    switch (kind) {")
	for _, v := range u.Variants {
		out = append(out, fmt.Sprintf("    case %s::%s:", kindType, v.Name))
		out = append(out, fmt.Sprintf("        reinterpret_cast<%s*>(storage)->traverse(visitor);", v.Name))
		out = append(out, "        break;")
	}
	out = append(out, "    default: break;", "    }", "}", "")

	out = append(out, fmt.Sprintf("const char* %s_kind_name(%s kind) {", u.Name, kindType), "    switch (kind) {")
	for _, v := range u.Variants {
		out = append(out, fmt.Sprintf("    case %s::%s: return %q;", kindType, v.Name, v.Name))
	}
	out = append(out, "    default: return \"None\";", "    }", "}", "")

	return out
}
