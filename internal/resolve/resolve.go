// Package resolve implements the resolution pass: it turns the raw ast.File
// a parse.Parser produces into a fully specified, validated model ready for
// ordering and generation. Resolve mutates the File's nodes and fields in
// place; after it returns without error the model is read-only.
package resolve

import (
	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/ngerrors"
)

// Resolve runs every step of the resolution pass over f: fully-qualified
// names, shape checking, trait expansion, guard synthesis, field 4-tuple
// resolution (repeated for union variants), and parent/child
// cross-referencing. The first validation failure aborts the run.
func Resolve(f *ast.File) error {
	applyNamespace(f)

	if err := checkShapes(f); err != nil {
		return err
	}
	if err := expandTraits(f); err != nil {
		return err
	}

	for _, n := range f.Symbols.Nodes() {
		synthesizeGuards(n)
		if err := resolveNodeFields(n, &f.Symbols, ""); err != nil {
			return err
		}
	}

	resolveRelations(f)

	for _, u := range f.Symbols.Aggrs() {
		for _, v := range u.Variants {
			synthesizeGuards(v)
			if err := resolveNodeFields(v, &f.Symbols, u.Name); err != nil {
				return err
			}
		}
	}

	return nil
}

// applyNamespace prefixes every node and enumeration's fully-qualified name
// with the file's `namespace` option, if one is set. Custom types carry no
// FQN of their own; unions stay unprefixed because their generated classes
// are always emitted inside the namespace block alongside their owning
// field's node.
func applyNamespace(f *ast.File) {
	ns := f.Options["namespace"]
	for _, n := range f.Symbols.Nodes() {
		n.FQN = qualify(ns, n.Name)
	}
	for _, e := range f.Symbols.Enums() {
		e.FQN = qualify(ns, e.Name)
	}
	for _, u := range f.Symbols.Aggrs() {
		u.FQN = u.Name
	}
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "::" + name
}

// checkShapes rejects any node that is simultaneously a parent (has
// children) and a child (has parents). parse.Parser already refuses this at
// the moment a subnode is attached; the resolver-level check catches the
// case where a node accrues children and a parent across separate,
// non-adjacent declarations in the source file.
func checkShapes(f *ast.File) error {
	for _, n := range f.Symbols.Nodes() {
		if n.IsParent() && n.IsChild() {
			return ngerrors.SubnodeParentOfSubnode(n.Name, n.Pos.Line, n.Pos.Column)
		}
	}
	return nil
}

// resolveRelations fills in each node's ResolvedParents and ResolvedChildren
// from the name lists the parser recorded. Runs after every name check has
// passed, so a miss here cannot happen for a file that parsed; a nil from
// GetNode is simply skipped.
func resolveRelations(f *ast.File) {
	for _, n := range f.Symbols.Nodes() {
		n.ResolvedParents = n.ResolvedParents[:0]
		n.ResolvedChildren = n.ResolvedChildren[:0]
		for _, name := range n.Parents {
			if p := f.Symbols.GetNode(name); p != nil {
				n.ResolvedParents = append(n.ResolvedParents, p)
			}
		}
		for _, name := range n.Children {
			if c := f.Symbols.GetNode(name); c != nil {
				n.ResolvedChildren = append(n.ResolvedChildren, c)
			}
		}
	}
}
