package gen

import "github.com/dekarrin/natsuki/internal/ast"

// className gives the spelling used for n in generated code. Every
// declaration and reference is emitted inside the file's opened namespace
// block, so the unqualified name is always the right spelling; the
// resolver's FQN is diagnostic metadata, not an emission spelling.
func className(n *ast.Node) string {
	return n.Name
}

func enumName(e *ast.Enumeration) string {
	return e.Name
}

// elementType gives the C++ spelling of one element of f, ignoring any
// container wrapper - what a std::vector<T>/std::optional<T>/... would be
// instantiated with.
func elementType(f *ast.Field) string {
	switch f.Model {
	case ast.ModelNode:
		if f.ResolvedNode != nil {
			return className(f.ResolvedNode) + "*"
		}
	case ast.ModelEnum:
		if f.ResolvedEnum != nil {
			return enumName(f.ResolvedEnum)
		}
	case ast.ModelType:
		if f.ResolvedType != nil {
			return f.ResolvedType.Underlying
		}
	case ast.ModelAggr:
		return f.Type + "Storage"
	}
	return "void"
}

// declType gives the complete declared C++ type of f, including whatever
// container wrapper its Container calls for.
func declType(f *ast.Field) string {
	elem := elementType(f)
	switch f.Container {
	case ast.ContainerOptional:
		return "std::optional<" + elem + ">"
	case ast.ContainerArray:
		return "std::vector<" + elem + ">"
	case ast.ContainerDoubleArray:
		return "std::vector<std::vector<" + elem + ">>"
	case ast.ContainerMap:
		return "std::map<" + f.Attributes["map"] + ", " + elem + ">"
	case ast.ContainerMultiMap:
		return "std::multimap<" + f.Attributes["mmap"] + ", " + elem + ">"
	default:
		return elem
	}
}

// initExpr gives the member-initializer-list expression for f in a
// generated constructor. A field-level default wins over a custom type's
// declared default; containers always value-initialize empty.
func initExpr(f *ast.Field) string {
	if f.Container != ast.ContainerValue {
		return f.Name + "()"
	}
	if f.Default != nil {
		return f.Name + "(" + *f.Default + ")"
	}
	if f.Model == ast.ModelType && f.ResolvedType != nil && f.ResolvedType.Default != nil {
		return f.Name + "(" + *f.ResolvedType.Default + ")"
	}
	if f.Access == ast.AccessPointer {
		return f.Name + "(nullptr)"
	}
	return f.Name + "()"
}

// isOwningPointer reports whether f's storage is a raw owned pointer (or a
// container of them) whose destructor must free it - i.e. access is
// Pointer and ownership is not Reference.
func isOwningPointer(f *ast.Field) bool {
	return f.Access == ast.AccessPointer && f.Ownership != ast.OwnershipReference
}
