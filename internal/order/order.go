// Package order derives emission order for a resolved model: an order a
// single-pass emitter can walk directly, with every enumeration (and union,
// see below) before any node, and every parent node before its children.
package order

import (
	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/util"
)

// Order returns f's declarations re-sorted for emission: enumerations and
// unions first, in their original declaration order (neither carries a
// parent/child relation of its own, and a node field may reference either
// before the node itself is emitted), then nodes with every parent emitted
// before its children, duplicates suppressed via a visited set.
//
// Unions are placed alongside enumerations because a node field naming a
// union type needs that union's C++ declaration already visible, exactly as
// it needs an enum's.
func Order(f *ast.File) []ast.Declaration {
	visited := util.NewSet[string]()
	var out []ast.Declaration

	for _, e := range f.Symbols.Enums() {
		out = append(out, e)
		visited.Add(e.Name)
	}
	for _, u := range f.Symbols.Aggrs() {
		out = append(out, u)
		visited.Add(u.Name)
	}

	var visit func(n *ast.Node)
	visit = func(n *ast.Node) {
		if visited.Has(n.Name) {
			return
		}
		for _, parentName := range n.Parents {
			if parent := f.Symbols.GetNode(parentName); parent != nil {
				visit(parent)
			}
		}
		visited.Add(n.Name)
		out = append(out, n)
	}

	for _, n := range f.Symbols.Nodes() {
		visit(n)
	}

	return out
}
