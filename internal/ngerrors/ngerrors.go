// Package ngerrors defines the closed set of error kinds the natsuki
// compiler can produce, modeled on tqerrors: a single exported Error type,
// one constructor per kind, and Unwrap support for kinds that wrap an
// underlying cause. Every error is fail-fast - the first one aborts the run,
// there is no aggregation.
package ngerrors

import "fmt"

// Kind identifies which of the closed set of error situations an Error
// represents.
type Kind int

const (
	// lexing
	KindUnexpectedCharacter Kind = iota
	KindUnexpectedEndOfInput

	// parsing
	KindUnexpectedToken
	KindExpectedToken
	KindNameAlreadyDefinesNode
	KindNameAlreadyDefinesEnum
	KindNameAlreadyDefinesType
	KindNameAlreadyDefinesUnion
	KindNameAlreadyDefinesUnionNode
	KindFieldRedefined
	KindUnionOfUnionNotAllowed
	KindMapKeyMustBeCustomType
	KindUnknownAttribute

	// validation
	KindConflictOptionalReference
	KindConflictOptionalArray
	KindConflictOptionalDArray
	KindConflictMapArray
	KindConflictMapDArray
	KindConflictOptionalMap
	KindConflictOptionalMMap
	KindConflictMapMMap
	KindConflictArrayMMap
	KindConflictCownedReference
	KindAggrFieldCannotBeDecorated
	KindSubnodeOfSubnode
	KindSubnodeParentOfSubnode
	KindTraitRedefinesField
	KindUnknownFieldType

	// generation
	KindASTNotVisitable
	KindFeatureUnsupported
)

var kindNames = map[Kind]string{
	KindUnexpectedCharacter:         "unexpected-character",
	KindUnexpectedEndOfInput:        "unexpected-end-of-input",
	KindUnexpectedToken:             "unexpected-token",
	KindExpectedToken:               "expected-token",
	KindNameAlreadyDefinesNode:      "name-already-defines-node",
	KindNameAlreadyDefinesEnum:      "name-already-defines-enum",
	KindNameAlreadyDefinesType:      "name-already-defines-type",
	KindNameAlreadyDefinesUnion:     "name-already-defines-union",
	KindNameAlreadyDefinesUnionNode: "name-already-defines-union-node",
	KindFieldRedefined:              "field-redefined",
	KindUnionOfUnionNotAllowed:      "union-of-union-not-allowed",
	KindMapKeyMustBeCustomType:      "map-key-must-be-custom-type",
	KindUnknownAttribute:            "unknown-attribute",
	KindConflictOptionalReference:   "conflict-optional-reference",
	KindConflictOptionalArray:       "conflict-optional-array",
	KindConflictOptionalDArray:      "conflict-optional-darray",
	KindConflictMapArray:            "conflict-map-array",
	KindConflictMapDArray:           "conflict-map-darray",
	KindConflictOptionalMap:         "conflict-optional-map",
	KindConflictOptionalMMap:        "conflict-optional-mmap",
	KindConflictMapMMap:             "conflict-map-mmap",
	KindConflictArrayMMap:           "conflict-array-mmap",
	KindConflictCownedReference:     "conflict-cowned-reference",
	KindAggrFieldCannotBeDecorated:  "aggr-field-cannot-be-decorated",
	KindSubnodeOfSubnode:            "subnode-of-subnode",
	KindSubnodeParentOfSubnode:      "subnode-parent-of-subnode",
	KindTraitRedefinesField:         "trait-redefines-field",
	KindUnknownFieldType:            "unknown-field-type",
	KindASTNotVisitable:             "ast-not-visitable",
	KindFeatureUnsupported:          "feature-unsupported",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the error type produced by every phase of the compiler. It
// carries the Kind of problem, up to two positional string arguments
// interpolated into the message, and the source position if one is known
// (zero value if not, e.g. for a generation-phase error).
type Error struct {
	Kind     Kind
	Args     []string
	Line     int
	Column   int
	HasPos   bool
	wrapped  error
	template string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf(e.template, interfaceSlice(e.Args)...)
	if e.HasPos {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, msg)
	}
	return msg
}

// Unwrap gives the error that e wraps, if any.
func (e *Error) Unwrap() error {
	return e.wrapped
}

func interfaceSlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i := range ss {
		out[i] = ss[i]
	}
	return out
}

func newPos(kind Kind, tmpl string, line, col int, args ...string) *Error {
	return &Error{Kind: kind, Args: args, Line: line, Column: col, HasPos: true, template: tmpl}
}

func newNoPos(kind Kind, tmpl string, args ...string) *Error {
	return &Error{Kind: kind, Args: args, template: tmpl}
}

// --- lexing ---

// UnexpectedCharacter reports a byte in normal lexer mode that does not
// begin any recognized token.
func UnexpectedCharacter(char string, line, col int) error {
	return newPos(KindUnexpectedCharacter, "unexpected character %q", line, col, char)
}

// UnexpectedEndOfInput reports that a verbatim-mode scan ran off the end of
// the source before reaching its terminator set.
func UnexpectedEndOfInput(line, col int) error {
	return newPos(KindUnexpectedEndOfInput, "unexpected end of input", line, col)
}

// --- parsing ---

// UnexpectedToken reports a token that the parser's current grammar
// position does not accept.
func UnexpectedToken(got string, line, col int) error {
	return newPos(KindUnexpectedToken, "unexpected token %s", line, col, got)
}

// ExpectedToken reports that the parser required one of a set of token
// kinds and got something else.
func ExpectedToken(want, got string, line, col int) error {
	return newPos(KindExpectedToken, "expected %s, got %s", line, col, want, got)
}

// nameAlreadyDefinesHuman gives the human-readable symbol-table name used
// in a NameAlreadyDefines message, since kindNames holds the machine-facing
// spelling of the Kind itself.
var nameAlreadyDefinesHuman = map[Kind]string{
	KindNameAlreadyDefinesNode:      "node",
	KindNameAlreadyDefinesEnum:      "enumeration",
	KindNameAlreadyDefinesType:      "custom type",
	KindNameAlreadyDefinesUnion:     "union",
	KindNameAlreadyDefinesUnionNode: "union variant node",
}

// NameAlreadyDefines reports a name collision against one of the four
// symbol tables (nodes, enumerations, custom types, unions) or against a
// union variant's own node namespace.
func NameAlreadyDefines(kind Kind, name string, line, col int) error {
	return newPos(kind, "name %q is already defined as a %s", line, col, name, nameAlreadyDefinesHuman[kind])
}

// FieldRedefined reports a field name reused within the same node.
func FieldRedefined(node, field string, line, col int) error {
	return newPos(KindFieldRedefined, "field %q is already defined on node %q", line, col, field, node)
}

// UnionOfUnionNotAllowed reports a union variant field whose resolved model
// is itself a union.
func UnionOfUnionNotAllowed(union, field string, line, col int) error {
	return newPos(KindUnionOfUnionNotAllowed, "field %q of union variant in %q cannot itself be a union", line, col, field, union)
}

// MapKeyMustBeCustomType reports a `map`/`mmap` key attribute that does not
// name a declared custom type.
func MapKeyMustBeCustomType(key string, line, col int) error {
	return newPos(KindMapKeyMustBeCustomType, "map/mmap key %q must name a custom type", line, col, key)
}

// UnknownAttribute reports an attribute name the parser does not recognize
// in a position where only known attributes are accepted.
func UnknownAttribute(attr string, line, col int) error {
	return newPos(KindUnknownAttribute, "unknown attribute %q", line, col, attr)
}

// --- validation ---

// attrConflicts maps each mutually exclusive pair of field decorations to
// its Kind.
var attrConflicts = map[[2]string]Kind{
	{"optional", "reference"}: KindConflictOptionalReference,
	{"optional", "array"}:     KindConflictOptionalArray,
	{"optional", "darray"}:    KindConflictOptionalDArray,
	{"map", "array"}:          KindConflictMapArray,
	{"map", "darray"}:         KindConflictMapDArray,
	{"optional", "map"}:       KindConflictOptionalMap,
	{"optional", "mmap"}:      KindConflictOptionalMMap,
	{"map", "mmap"}:           KindConflictMapMMap,
	{"array", "mmap"}:         KindConflictArrayMMap,
	{"cowned", "reference"}:   KindConflictCownedReference,
}

// DecorationConflict reports that a field carries two mutually exclusive
// decorations. The pair (a, b) is looked up in either order.
func DecorationConflict(field, a, b string, line, col int) error {
	kind, ok := attrConflicts[[2]string{a, b}]
	if !ok {
		kind, ok = attrConflicts[[2]string{b, a}]
	}
	if !ok {
		// should never happen for a validated pair; fall back to a generic
		// unsupported-combination report rather than panicking.
		kind = KindFeatureUnsupported
	}
	// the pair is spelled into the template so that the field name is the
	// only positional argument.
	tmpl := fmt.Sprintf("field %%q cannot be both %q and %q", a, b)
	return newPos(kind, tmpl, line, col, field)
}

// AggrFieldCannotBeDecorated reports a decoration attribute on a field whose
// model is Aggr; such fields must always be an undecorated object value.
func AggrFieldCannotBeDecorated(field string, line, col int) error {
	return newPos(KindAggrFieldCannotBeDecorated, "field %q names a union type and cannot carry decorations", line, col, field)
}

// SubnodeOfSubnode reports a `->`-prefixed class that is already a subnode
// of a different parent.
func SubnodeOfSubnode(node string, line, col int) error {
	return newPos(KindSubnodeOfSubnode, "node %q is already a subnode of another node", line, col, node)
}

// SubnodeParentOfSubnode reports the reciprocal case: attaching a subnode
// to a node that is itself someone else's subnode.
func SubnodeParentOfSubnode(node string, line, col int) error {
	return newPos(KindSubnodeParentOfSubnode, "node %q is a subnode and cannot be a parent of subnodes", line, col, node)
}

// TraitRedefinesField reports a trait field from a parent that collides
// with an existing field already present on a child during trait
// expansion.
func TraitRedefinesField(child, field string) error {
	return newNoPos(KindTraitRedefinesField, "trait field %q from parent would shadow an existing field on %q", field, child)
}

// UnknownFieldType reports a field whose textual type does not match any
// entry across nodes, enumerations, custom types, or unions.
func UnknownFieldType(typeName, field string, line, col int) error {
	return newPos(KindUnknownFieldType, "field %q has unknown type %q", line, col, field, typeName)
}

// --- generation ---

// ASTNotVisitable reports that the debug-printer backend was requested
// without the file-level `visitable` option being set.
func ASTNotVisitable() error {
	return newNoPos(KindASTNotVisitable, "debug backend requires the 'visitable' file option to be set")
}

// FeatureUnsupported reports that a backend's dispatch table has no entry
// for a resolved (model, ownership, access, container) tuple.
func FeatureUnsupported(dispatchKey string) error {
	return newNoPos(KindFeatureUnsupported, "no dispatch entry for %q", dispatchKey)
}
