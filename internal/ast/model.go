// Package ast holds the raw and resolved data model that natsuki's parser
// builds and its resolver mutates in place: Token classes aside, this is
// everything in the pipeline between "parsed" and "ready to emit" - nodes,
// enumerations, custom types, unions, and the fully-specified fields that
// tie them together.
package ast

import "github.com/dekarrin/natsuki/internal/lex"

// ModelKind is which of the four symbol tables a resolved Field's type
// was found in.
type ModelKind int

const (
	ModelUnresolved ModelKind = iota
	ModelNode
	ModelEnum
	ModelType
	ModelAggr
)

func (m ModelKind) String() string {
	switch m {
	case ModelNode:
		return "Node"
	case ModelEnum:
		return "Enum"
	case ModelType:
		return "Type"
	case ModelAggr:
		return "Aggr"
	default:
		return "Unresolved"
	}
}

// OwnershipKind is how a field's referent is owned relative to its owning
// node.
type OwnershipKind int

const (
	OwnershipUnresolved OwnershipKind = iota
	OwnershipFull
	OwnershipReference
	OwnershipConditional
)

func (o OwnershipKind) String() string {
	switch o {
	case OwnershipFull:
		return "Full"
	case OwnershipReference:
		return "Reference"
	case OwnershipConditional:
		return "Conditional"
	default:
		return "Unresolved"
	}
}

// AccessKind is whether a field is stored by pointer or by value.
type AccessKind int

const (
	AccessUnresolved AccessKind = iota
	AccessPointer
	AccessObject
)

func (a AccessKind) String() string {
	switch a {
	case AccessPointer:
		return "Pointer"
	case AccessObject:
		return "Object"
	default:
		return "Unresolved"
	}
}

// ContainerKind is the shape a field's storage takes.
type ContainerKind int

const (
	ContainerUnresolved ContainerKind = iota
	ContainerValue
	ContainerOptional
	ContainerArray
	ContainerDoubleArray
	ContainerMap
	ContainerMultiMap
)

func (c ContainerKind) String() string {
	switch c {
	case ContainerValue:
		return "Value"
	case ContainerOptional:
		return "Optional"
	case ContainerArray:
		return "Array"
	case ContainerDoubleArray:
		return "DoubleArray"
	case ContainerMap:
		return "Map"
	case ContainerMultiMap:
		return "MultiMap"
	default:
		return "Unresolved"
	}
}

// CustomType is a user-declared scalar or pointer-like alias introduced by
// a `#define` directive. A trailing `*` on Underlying denotes pointer
// semantics and shifts a field's access mode during resolution.
type CustomType struct {
	Name       string
	Underlying string
	Default    *string
}

// IsPointer reports whether the custom type's underlying spelling denotes
// pointer semantics.
func (c *CustomType) IsPointer() bool {
	return len(c.Underlying) > 0 && c.Underlying[len(c.Underlying)-1] == '*'
}

// Enumeration is a closed, ordered list of literal names declared with
// `ENUM`.
type Enumeration struct {
	Name     string
	Literals []string
	FQN      string
}

// VerbatimBlock is an opaque run of text captured by the lexer in
// balanced-delimiter mode (a `PUBLIC:`/`PRIVATE:`/bare `{...}` code block),
// passed through to the generator unmodified. WasTrait records that this
// block is a copy made during trait expansion (see expandTraits in package resolve).
type VerbatimBlock struct {
	Attributes map[string]string
	Text       string
	WasTrait   bool
}

// IsTrait reports whether this block is marked `[[istrait]]` and so should
// be propagated into every child of its owning node during resolution.
func (v *VerbatimBlock) IsTrait() bool {
	_, ok := v.Attributes["istrait"]
	return ok
}

// Copy returns a deep copy of v suitable for propagation into a child node
// during trait expansion.
func (v *VerbatimBlock) Copy() *VerbatimBlock {
	attrs := make(map[string]string, len(v.Attributes))
	for k, val := range v.Attributes {
		attrs[k] = val
	}
	return &VerbatimBlock{Attributes: attrs, Text: v.Text, WasTrait: v.WasTrait}
}

// Field is the central resolved entity: a single data member of a Node or
// union variant. Before resolution only Name, Type, Attributes, and
// Default are meaningful; the resolver fills in the remainder in place.
type Field struct {
	Name       string
	Type       string
	Attributes map[string]string
	Default    *string
	Pos        lex.Position

	// set by the resolver
	Model        ModelKind
	Ownership    OwnershipKind
	Access       AccessKind
	Container    ContainerKind
	IsVisitable  bool
	ResolvedNode *Node
	ResolvedEnum *Enumeration
	ResolvedType *CustomType
	ResolvedAggr *Union
	OwningNode   *Node
	DisplayName  string
	WasTrait     bool
}

// HasAttr reports whether the field carries the named decoration/attribute.
func (f *Field) HasAttr(name string) bool {
	_, ok := f.Attributes[name]
	return ok
}

// Copy returns a deep copy of f, used by trait expansion so that each
// child gets its own Field value to resolve independently.
func (f *Field) Copy() *Field {
	attrs := make(map[string]string, len(f.Attributes))
	for k, v := range f.Attributes {
		attrs[k] = v
	}
	cp := *f
	cp.Attributes = attrs
	cp.WasTrait = true
	return &cp
}

// Node is a named class in the emitted AST: either a free-standing class, a
// parent (abstract) node with Children, or a leaf node with Parents
// pointing to exactly one ancestor.
type Node struct {
	Name       string
	Attributes map[string]string
	Parents    []string
	Children   []string
	Fields     []*Field
	Public     []*VerbatimBlock
	Private    []*VerbatimBlock
	Guards     map[string][]string
	FQN        string
	Pos        lex.Position

	// set by the resolver
	ResolvedParents  []*Node
	ResolvedChildren []*Node

	// IsUnionVariant is true for Nodes that only exist as a variant inside
	// a Union; such nodes are never inserted into the SymbolTable's Nodes
	// map in their own right.
	IsUnionVariant bool
}

// FieldByName returns the node's field with the given name, or nil.
func (n *Node) FieldByName(name string) *Field {
	for _, f := range n.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsParent reports whether n has any children.
func (n *Node) IsParent() bool {
	return len(n.Children) > 0
}

// IsChild reports whether n has a parent.
func (n *Node) IsChild() bool {
	return len(n.Parents) > 0
}

// Union ("Aggr") is a tagged union of variants, each variant itself a Node
// with its own fields and guards. Union variants cannot transitively
// contain other unions.
type Union struct {
	Name     string
	Variants []*Node
	FQN      string
	Pos      lex.Position
}

// VariantByName returns the union's variant node with the given name, or
// nil.
func (u *Union) VariantByName(name string) *Node {
	for _, v := range u.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// File is the top-level container produced by the parser: includes, file
// options, and declarations in the order the Orderer will later re-derive
// emission order from.
type File struct {
	Includes     []string
	Options      map[string]string
	Public       []*VerbatimBlock
	Private      []*VerbatimBlock
	Declarations []Declaration

	Symbols SymbolTable
}

// Declaration is one top-level declaration: a *Node, *Enumeration, or
// *Union. It exists so File.Declarations can hold an ordered, mixed list
// the Orderer later re-sorts into emission order.
type Declaration interface {
	declName() string
}

func (n *Node) declName() string        { return n.Name }
func (e *Enumeration) declName() string { return e.Name }
func (u *Union) declName() string       { return u.Name }

// DeclName returns the identifier of a Declaration, useful for diagnostics
// without a type switch at every call site.
func DeclName(d Declaration) string { return d.declName() }
