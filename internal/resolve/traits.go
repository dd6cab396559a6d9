package resolve

import (
	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/ngerrors"
)

// expandTraits propagates traits: every field or verbatim block on a parent
// bearing the `istrait` attribute is deep-copied into every child of that
// parent, the copy's `istrait` marker is replaced with `wastrait`, and the
// original is then removed from the parent's exposed set entirely.
//
// Public and private trait blocks are copied symmetrically under the same
// istrait gate; see DESIGN.md for the history of this decision.
func expandTraits(f *ast.File) error {
	for _, n := range f.Symbols.Nodes() {
		if !n.IsParent() {
			continue
		}

		traitFields, keepFields := partitionTraitFields(n.Fields)
		traitPublic, keepPublic := partitionTraitBlocks(n.Public)
		traitPrivate, keepPrivate := partitionTraitBlocks(n.Private)

		if len(traitFields) == 0 && len(traitPublic) == 0 && len(traitPrivate) == 0 {
			continue
		}

		for _, childName := range n.Children {
			child := f.Symbols.GetNode(childName)
			if child == nil {
				continue
			}
			if err := copyTraitFieldsInto(child, traitFields); err != nil {
				return err
			}
			child.Public = append(child.Public, copyTraitBlocks(traitPublic)...)
			child.Private = append(child.Private, copyTraitBlocks(traitPrivate)...)
		}

		n.Fields = keepFields
		n.Public = keepPublic
		n.Private = keepPrivate
	}
	return nil
}

func partitionTraitFields(fields []*ast.Field) (trait, keep []*ast.Field) {
	for _, fld := range fields {
		if fld.HasAttr("istrait") {
			trait = append(trait, fld)
		} else {
			keep = append(keep, fld)
		}
	}
	return trait, keep
}

func partitionTraitBlocks(blocks []*ast.VerbatimBlock) (trait, keep []*ast.VerbatimBlock) {
	for _, b := range blocks {
		if b.IsTrait() {
			trait = append(trait, b)
		} else {
			keep = append(keep, b)
		}
	}
	return trait, keep
}

func copyTraitFieldsInto(child *ast.Node, traitFields []*ast.Field) error {
	for _, tf := range traitFields {
		if child.FieldByName(tf.Name) != nil {
			return ngerrors.TraitRedefinesField(child.Name, tf.Name)
		}
		cp := tf.Copy()
		delete(cp.Attributes, "istrait")
		cp.Attributes["wastrait"] = ""
		cp.OwningNode = child
		child.Fields = append(child.Fields, cp)
	}
	return nil
}

func copyTraitBlocks(blocks []*ast.VerbatimBlock) []*ast.VerbatimBlock {
	out := make([]*ast.VerbatimBlock, 0, len(blocks))
	for _, b := range blocks {
		cp := b.Copy()
		if cp.Attributes == nil {
			cp.Attributes = map[string]string{}
		}
		delete(cp.Attributes, "istrait")
		cp.Attributes["wastrait"] = ""
		cp.WasTrait = true
		out = append(out, cp)
	}
	return out
}
