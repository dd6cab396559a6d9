package resolve

import (
	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/ngerrors"
)

// conflictPairs enumerates the pairwise decoration incompatibilities. Order
// within a pair does not matter; both directions are checked.
var conflictPairs = [][2]string{
	{"optional", "reference"},
	{"optional", "array"},
	{"optional", "darray"},
	{"map", "array"},
	{"map", "darray"},
	{"optional", "map"},
	{"optional", "mmap"},
	{"map", "mmap"},
	{"array", "mmap"},
	{"cowned", "reference"},
}

// resolveNodeFields resolves every field of n to its full 4-tuple: symbol
// lookup and the initial tuple from the field's model, the incompatibility
// matrix, map/mmap key rewrite, container override, ownership override, and
// visitability override. unionName is non-empty when n is a union variant,
// enabling the "union of union not allowed" rule.
func resolveNodeFields(n *ast.Node, symbols *ast.SymbolTable, unionName string) error {
	for _, f := range n.Fields {
		if err := resolveField(f, n, symbols, unionName); err != nil {
			return err
		}
	}
	return nil
}

func resolveField(f *ast.Field, owner *ast.Node, symbols *ast.SymbolTable, unionName string) error {
	f.OwningNode = owner

	model, node, enum, typ, aggr, ok := symbols.Resolve(f.Type)
	if !ok {
		return ngerrors.UnknownFieldType(f.Type, f.Name, f.Pos.Line, f.Pos.Column)
	}
	f.Model = model
	f.ResolvedNode = node
	f.ResolvedEnum = enum
	f.ResolvedType = typ
	f.ResolvedAggr = aggr

	if unionName != "" && model == ast.ModelAggr {
		return ngerrors.UnionOfUnionNotAllowed(unionName, f.Name, f.Pos.Line, f.Pos.Column)
	}

	applyInitialTuple(f)

	if model == ast.ModelAggr {
		if hasAnyDecoration(f) {
			return ngerrors.AggrFieldCannotBeDecorated(f.Name, f.Pos.Line, f.Pos.Column)
		}
		return nil
	}

	if err := checkConflicts(f); err != nil {
		return err
	}

	if f.HasAttr("map") || f.HasAttr("mmap") {
		if err := rewriteMapKey(f, symbols); err != nil {
			return err
		}
	}

	applyContainerOverride(f)
	applyOwnershipOverride(f)
	applyVisitabilityOverride(f)

	if f.DisplayName == "" {
		f.DisplayName = f.Name
	}

	return nil
}

// applyInitialTuple sets the starting tuple for f based on its resolved
// Model, before any decoration overrides are applied: node fields are owned
// pointers, enum and non-pointer custom-type fields are plain objects, and
// only node and union fields start out visitable.
func applyInitialTuple(f *ast.Field) {
	switch f.Model {
	case ast.ModelNode:
		f.Ownership = ast.OwnershipFull
		f.Access = ast.AccessPointer
		f.Container = ast.ContainerValue
		f.IsVisitable = true
	case ast.ModelEnum:
		f.Ownership = ast.OwnershipFull
		f.Access = ast.AccessObject
		f.Container = ast.ContainerValue
		f.IsVisitable = false
	case ast.ModelType:
		f.Ownership = ast.OwnershipFull
		f.Container = ast.ContainerValue
		f.IsVisitable = false
		if f.ResolvedType != nil && f.ResolvedType.IsPointer() {
			f.Access = ast.AccessPointer
		} else {
			f.Access = ast.AccessObject
		}
	case ast.ModelAggr:
		f.Ownership = ast.OwnershipFull
		f.Access = ast.AccessObject
		f.Container = ast.ContainerValue
		f.IsVisitable = true
	}
}

// decorationAttrs is the set of attribute names that shape a field's
// ownership/access/container tuple, as opposed to attributes like `guard`
// or `namespace` that carry auxiliary data. Aggr-model fields may carry
// none of these.
var decorationAttrs = []string{"optional", "reference", "array", "darray", "map", "mmap", "cowned"}

func hasAnyDecoration(f *ast.Field) bool {
	for _, a := range decorationAttrs {
		if f.HasAttr(a) {
			return true
		}
	}
	return false
}

// checkConflicts rejects any mutually exclusive pair present in f's
// decoration set.
func checkConflicts(f *ast.Field) error {
	for _, pair := range conflictPairs {
		if f.HasAttr(pair[0]) && f.HasAttr(pair[1]) {
			return ngerrors.DecorationConflict(f.Name, pair[0], pair[1], f.Pos.Line, f.Pos.Column)
		}
	}
	return nil
}

// rewriteMapKey requires a `map` or `mmap` key attribute to name a declared
// custom type, and rewrites it in place to that type's underlying textual
// spelling.
func rewriteMapKey(f *ast.Field, symbols *ast.SymbolTable) error {
	attr := "map"
	if f.HasAttr("mmap") {
		attr = "mmap"
	}
	keyName := f.Attributes[attr]
	ct := symbols.GetType(keyName)
	if ct == nil {
		return ngerrors.MapKeyMustBeCustomType(keyName, f.Pos.Line, f.Pos.Column)
	}
	f.Attributes[attr] = ct.Underlying
	return nil
}

// applyContainerOverride maps decorations to containers in precedence
// order: map, then mmap, then array, then darray, then optional (which also
// forces ownership back to Full), else the default of Value stands.
func applyContainerOverride(f *ast.Field) {
	switch {
	case f.HasAttr("map"):
		f.Container = ast.ContainerMap
	case f.HasAttr("mmap"):
		f.Container = ast.ContainerMultiMap
	case f.HasAttr("array"):
		f.Container = ast.ContainerArray
	case f.HasAttr("darray"):
		f.Container = ast.ContainerDoubleArray
	case f.HasAttr("optional"):
		f.Container = ast.ContainerOptional
		f.Ownership = ast.OwnershipFull
	}
}

// applyOwnershipOverride handles the two ownership decorations: `reference`
// forces Reference ownership and strips visitability; `cowned` sets
// Conditional ownership.
func applyOwnershipOverride(f *ast.Field) {
	if f.HasAttr("reference") {
		f.Ownership = ast.OwnershipReference
		f.IsVisitable = false
	}
	if f.HasAttr("cowned") {
		f.Ownership = ast.OwnershipConditional
	}
}

// applyVisitabilityOverride lets an explicit `visitable`/`notvisitable`
// attribute flip whatever the prior steps set.
func applyVisitabilityOverride(f *ast.Field) {
	if f.HasAttr("visitable") {
		f.IsVisitable = true
	}
	if f.HasAttr("notvisitable") {
		f.IsVisitable = false
	}
}
