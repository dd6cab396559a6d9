package resolve

import "github.com/dekarrin/natsuki/internal/ast"

// defaultGuardName is the identifier a `cowned` field's guard normalizes to
// when it does not carry an explicit `guard=` attribute value.
const defaultGuardName = "_owns_fields"

// synthesizeGuards normalizes an empty guard identifier to defaultGuardName
// on every `cowned`-decorated field of n, and (re)builds n.Guards to map
// each guard identifier to the list of field names it covers.
func synthesizeGuards(n *ast.Node) {
	n.Guards = map[string][]string{}
	for _, f := range n.Fields {
		if !f.HasAttr("cowned") {
			continue
		}
		guard := f.Attributes["guard"]
		if guard == "" {
			guard = defaultGuardName
		}
		f.Attributes["guard"] = guard
		n.Guards[guard] = append(n.Guards[guard], f.Name)
	}
}
