package gen

import (
	"strings"
	"testing"

	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/ngerrors"
	"github.com/dekarrin/natsuki/internal/order"
	"github.com/dekarrin/natsuki/internal/parse"
	"github.com/dekarrin/natsuki/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseResolveOrder(t *testing.T, src string) (*ast.File, []ast.Declaration) {
	t.Helper()
	p := parse.New(strings.NewReader(src))
	f, err := p.Parse()
	require.NoError(t, err)
	require.NoError(t, resolve.Resolve(f))
	return f, order.Order(f)
}

// Dispatch-completeness: every tuple ValidTuples enumerates must resolve in
// every backend's table for every verb that backend actually uses.
func Test_DispatchTables_CoverEveryValidTuple(t *testing.T) {
	fieldTable := buildTable(VerbField, fieldDeclEmitter)
	initTable := buildTable(VerbInitialiser, initialiserEmitter)
	destroyTable := buildTable(VerbDestroyer, destroyerEmitter)
	travelTable := buildTable(VerbTraveller, travellerEmitter)

	for _, key := range keysForVerb(VerbField) {
		_, ok := fieldTable[key]
		assert.True(t, ok, "missing VerbField entry for %s", key)
	}
	for _, key := range keysForVerb(VerbInitialiser) {
		_, ok := initTable[key]
		assert.True(t, ok, "missing VerbInitialiser entry for %s", key)
	}
	for _, key := range keysForVerb(VerbDestroyer) {
		_, ok := destroyTable[key]
		assert.True(t, ok, "missing VerbDestroyer entry for %s", key)
	}
	for _, key := range keysForVerb(VerbTraveller) {
		_, ok := travelTable[key]
		assert.True(t, ok, "missing VerbTraveller entry for %s", key)
	}
}

func Test_DispatchTable_MissingEntry_IsFeatureUnsupported(t *testing.T) {
	table := DispatchTable{}
	_, _, err := table.dispatch(VerbField, &ast.Node{Name: "X"}, &ast.Field{
		Model: ast.ModelNode, Ownership: ast.OwnershipFull, Access: ast.AccessPointer, Container: ast.ContainerValue,
	})
	require.Error(t, err)
	var ngErr *ngerrors.Error
	require.ErrorAs(t, err, &ngErr)
	assert.Equal(t, ngerrors.KindFeatureUnsupported, ngErr.Kind)
}

func Test_Generate_NodesHeader_Smoke(t *testing.T) {
	f, ord := parseResolveOrder(t, `
		#define int_ int = 0
		enum Kind { A, B };
		class Stmt ([[istrait]] line:int_);
		-> class Assign (lhs:Stmt, rhs:Stmt);
		-> class Return (val?:int_);
	`)
	out, err := GenerateFile(f, ord, OutputNodes, FileHeader, Options{GuardToken: "NATSUKI_AST_H"})
	require.NoError(t, err)
	assert.Contains(t, out, "class Stmt {")
	assert.Contains(t, out, "class Assign : public Stmt {")
	assert.Contains(t, out, "virtual bool is_Assign() const { return false; }")
	assert.Contains(t, out, "bool is_Assign() const override { return true; }")
	assert.Contains(t, out, "class Visitor {")
	assert.Contains(t, out, "enum class Kind { Assign, Return };")
	assert.Contains(t, out, "virtual Kind get_kind() const = 0;")
	assert.Contains(t, out, "Kind get_kind() const override { return Kind::Assign; }")
	assert.Contains(t, out, "#ifndef NATSUKI_AST_H")
}

func Test_Generate_NodesImpl_Smoke(t *testing.T) {
	f, ord := parseResolveOrder(t, `
		#define int_ int = 0
		class Stmt;
		-> class Assign (lhs:Stmt, rhs:Stmt);
	`)
	out, err := GenerateFile(f, ord, OutputNodes, FileImpl, Options{HeaderPath: "ast.h"})
	require.NoError(t, err)
	assert.Contains(t, out, "Assign::Assign()")
	assert.Contains(t, out, "Assign::~Assign()")
	assert.Contains(t, out, "void Assign::traverse(Visitor& visitor) {")
	assert.Contains(t, out, "if (visitor.visit(this)) {")
	assert.Contains(t, out, "Stmt::traverse(visitor);")
	assert.Contains(t, out, "visitor.post_visit(this);")
	assert.Contains(t, out, "delete lhs;")
}

func Test_Generate_NodesImpl_UnionHelpers(t *testing.T) {
	f, ord := parseResolveOrder(t, `
		#define int_ int = 0
		union V { class A (x:int_); class B (y:int_); };
		class W (v:V);
	`)
	out, err := GenerateFile(f, ord, OutputNodes, FileImpl, Options{HeaderPath: "ast.h"})
	require.NoError(t, err)
	assert.Contains(t, out, "void destroy_V(VKind kind, void* storage) {")
	assert.Contains(t, out, "void traverse_V(Visitor& visitor, VKind kind, void* storage) {")
	assert.Contains(t, out, "const char* V_kind_name(VKind kind) {")
	assert.Contains(t, out, "void W::set_v_kind(VKind kind) {")
	assert.Contains(t, out, "new (&v_storage) A();")
}

func Test_Generate_Debug_RequiresVisitableOption(t *testing.T) {
	f, ord := parseResolveOrder(t, "class Stmt;")
	_, err := GenerateFile(f, ord, OutputDebug, FileHeader, Options{GuardToken: "NATSUKI_DEBUG_H", HeaderPath: "ast.h"})
	require.Error(t, err)
	var ngErr *ngerrors.Error
	require.ErrorAs(t, err, &ngErr)
	assert.Equal(t, ngerrors.KindASTNotVisitable, ngErr.Kind)
}

func Test_Generate_Debug_Smoke(t *testing.T) {
	f, ord := parseResolveOrder(t, `
		[[visitable]];
		#define int_ int = 0
		class Stmt (note:int_);
	`)
	header, err := GenerateFile(f, ord, OutputDebug, FileHeader, Options{GuardToken: "NATSUKI_DEBUG_H", HeaderPath: "ast.h"})
	require.NoError(t, err)
	assert.Contains(t, header, "void dump(const Stmt& n, std::ostream& out, int indent = 0);")

	impl, err := GenerateFile(f, ord, OutputDebug, FileImpl, Options{HeaderPath: "ast_debug.h"})
	require.NoError(t, err)
	assert.Contains(t, impl, "void dump(const Stmt& n, std::ostream& out, int indent) {")
	assert.Contains(t, impl, `out << indentStr << "note: " << n.note << "\n";`)
}

func Test_Generate_FeatureUnsupported_PropagatesFromBackend(t *testing.T) {
	f, ord := parseResolveOrder(t, "#define int_ int\nclass Stmt (x:int_);")
	b := &NodesHeaderBackend{GuardToken: "X", table: DispatchTable{}}
	_, err := Generate(f, ord, b)
	require.Error(t, err)
	var ngErr *ngerrors.Error
	require.ErrorAs(t, err, &ngErr)
	assert.Equal(t, ngerrors.KindFeatureUnsupported, ngErr.Kind)
}

// reparseHeaderSignatures mechanically scans a generated nodes header for
// class declarations and their member-declaration lines, recovering the set
// of (node, field) pairs the header exposes. Method declarations, downcast
// helpers, and the closing brace are filtered out by shape: a member
// declaration is an indented `<type> <name>;` line with no parentheses and
// no initializer.
func reparseHeaderSignatures(header string) map[string][]string {
	classes := map[string][]string{}
	var current string
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, "class ") && strings.HasSuffix(line, "{") {
			name := strings.TrimPrefix(line, "class ")
			name = strings.TrimSuffix(name, " {")
			if idx := strings.Index(name, " : public "); idx >= 0 {
				name = name[:idx]
			}
			current = name
			classes[current] = nil
			continue
		}
		if line == "};" {
			current = ""
			continue
		}
		if current == "" {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(line, "    ") || !strings.HasSuffix(trimmed, ";") {
			continue
		}
		if strings.ContainsAny(trimmed, "(={~") || strings.HasPrefix(trimmed, "virtual ") {
			continue
		}
		parts := strings.Fields(strings.TrimSuffix(trimmed, ";"))
		if len(parts) < 2 {
			continue
		}
		classes[current] = append(classes[current], parts[len(parts)-1])
	}
	delete(classes, "Visitor") // framework interface, not a model node
	return classes
}

// Emitting a header and mechanically re-parsing its declared signatures must
// recover the same (node, fields) pairs as the resolved model.
func Test_Generate_NodesHeader_RoundTripsSignatures(t *testing.T) {
	src := `
		#define int_ int = 0
		#define id_ std::string
		enum Color { Red, Blue };
		class Stmt (c:Color);
		-> class Assign (lhs:Stmt, rhs:Stmt);
		-> class Block (body:Stmt[]);
		class Scope (names:Stmt<id_>, depth:int_);
	`
	f, ord := parseResolveOrder(t, src)
	header, err := GenerateFile(f, ord, OutputNodes, FileHeader, Options{GuardToken: "NATSUKI_RT_H"})
	require.NoError(t, err)

	got := reparseHeaderSignatures(header)

	for _, n := range f.Symbols.Nodes() {
		require.Contains(t, got, n.Name, "node %s missing from generated header", n.Name)
		var want []string
		for _, fld := range n.Fields {
			want = append(want, fld.Name)
		}
		assert.Equal(t, want, got[n.Name], "field set mismatch for node %s", n.Name)
	}
	assert.Len(t, got, len(f.Symbols.Nodes()), "header declares exactly the model's nodes")
}

// A union field gets a discriminator initialized to none, storage sized for
// any variant, and a setter that destroys the old variant before
// constructing the new one.
func Test_Generate_NodesHeader_UnionField(t *testing.T) {
	f, ord := parseResolveOrder(t, `
		#define int_ int = 0
		union V { class A (x:int_); class B (y:int_); };
		class W (v:V);
	`)
	out, err := GenerateFile(f, ord, OutputNodes, FileHeader, Options{GuardToken: "NATSUKI_U_H"})
	require.NoError(t, err)
	assert.Contains(t, out, "enum class VKind {")
	assert.Contains(t, out, "    None,")
	assert.Contains(t, out, "using VStorage = std::aligned_union_t<0, A, B>;")
	assert.Contains(t, out, "VKind v_kind = VKind::None;")
	assert.Contains(t, out, "VStorage v_storage;")
	assert.Contains(t, out, "void set_v_kind(VKind kind);")
}

func Test_Generate_NodesImpl_DefaultInitialisers(t *testing.T) {
	f, ord := parseResolveOrder(t, "#define int_ int = 0\nclass Expr (value:int_, label:int_ = 7);")
	out, err := GenerateFile(f, ord, OutputNodes, FileImpl, Options{HeaderPath: "ast.h"})
	require.NoError(t, err)
	assert.Contains(t, out, "Expr::Expr() : value(0), label(7) {}")
}

// A cowned field's guard member shows up in the header defaulted to false,
// and its destruction is wrapped in the guard check.
func Test_Generate_GuardedDestruction(t *testing.T) {
	f, ord := parseResolveOrder(t, "class Stmt; class Y (t:Stmt [[cowned]]);")

	header, err := GenerateFile(f, ord, OutputNodes, FileHeader, Options{GuardToken: "NATSUKI_G_H"})
	require.NoError(t, err)
	assert.Contains(t, header, "bool _owns_fields = false;")

	impl, err := GenerateFile(f, ord, OutputNodes, FileImpl, Options{HeaderPath: "ast.h"})
	require.NoError(t, err)
	assert.Contains(t, impl, "if (_owns_fields) {")
	assert.Contains(t, impl, "delete t;")
}
