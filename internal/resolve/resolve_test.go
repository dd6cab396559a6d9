package resolve

import (
	"strings"
	"testing"

	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAndResolve(t *testing.T, src string) *ast.File {
	t.Helper()
	p := parse.New(strings.NewReader(src))
	f, err := p.Parse()
	require.NoError(t, err)
	require.NoError(t, Resolve(f))
	return f
}

// S1 - leaf node with scalars.
func Test_Resolve_S1_LeafNodeWithScalars(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, "#define int_ int = 0\nclass Expr (value: int_);")

	expr := f.Symbols.GetNode("Expr")
	require.NotNil(t, expr)
	assert.Empty(expr.Children)
	assert.Empty(expr.Parents)

	value := expr.FieldByName("value")
	require.NotNil(t, value)
	assert.Equal(ast.ModelType, value.Model)
	assert.Equal(ast.OwnershipFull, value.Ownership)
	assert.Equal(ast.AccessObject, value.Access)
	assert.Equal(ast.ContainerValue, value.Container)
	require.NotNil(t, value.ResolvedType)
	assert.Equal("int", value.ResolvedType.Underlying)
}

// S2 - one-level polymorphism.
func Test_Resolve_S2_OneLevelPolymorphism(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, "class Stmt; -> class Assign (lhs:Stmt, rhs:Stmt);")

	stmt := f.Symbols.GetNode("Stmt")
	assign := f.Symbols.GetNode("Assign")
	require.NotNil(t, stmt)
	require.NotNil(t, assign)

	assert.True(stmt.IsParent())
	assert.False(stmt.IsChild())
	assert.True(assign.IsChild())
	assert.False(assign.IsParent())
	assert.Equal([]string{"Stmt"}, assign.Parents)
	assert.Equal([]string{"Assign"}, stmt.Children)

	lhs := assign.FieldByName("lhs")
	require.NotNil(t, lhs)
	assert.Equal(ast.ModelNode, lhs.Model)
	assert.Equal(ast.OwnershipFull, lhs.Ownership)
	assert.Equal(ast.AccessPointer, lhs.Access)
	assert.True(lhs.IsVisitable)
}

// S3 - optional field and array of owned nodes.
func Test_Resolve_S3_OptionalAndArray(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, "class Stmt; class X (body:Stmt[], note?:Stmt);")

	x := f.Symbols.GetNode("X")
	require.NotNil(t, x)

	body := x.FieldByName("body")
	require.NotNil(t, body)
	assert.Equal(ast.ContainerArray, body.Container)
	assert.Equal(ast.OwnershipFull, body.Ownership)
	assert.Equal(ast.AccessPointer, body.Access)

	note := x.FieldByName("note")
	require.NotNil(t, note)
	assert.Equal(ast.ContainerOptional, note.Container)
	assert.Equal(ast.OwnershipFull, note.Ownership)
}

// S4 - conditionally owned field gets a guard.
func Test_Resolve_S4_ConditionallyOwned(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, "class Stmt; class Y (t:Stmt [[cowned]]);")

	y := f.Symbols.GetNode("Y")
	require.NotNil(t, y)

	field := y.FieldByName("t")
	require.NotNil(t, field)
	assert.Equal(ast.OwnershipConditional, field.Ownership)
	assert.Equal("_owns_fields", field.Attributes["guard"])
	assert.Equal([]string{"t"}, y.Guards["_owns_fields"])
}

// S5 - union with a discriminated set of variants.
func Test_Resolve_S5_Union(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, `
		#define int_ int = 0
		union V { class A (x:int_); class B (y:int_); };
		class W (v:V);
	`)

	w := f.Symbols.GetNode("W")
	require.NotNil(t, w)
	field := w.FieldByName("v")
	require.NotNil(t, field)
	assert.Equal(ast.ModelAggr, field.Model)
	assert.Equal(ast.OwnershipFull, field.Ownership)
	assert.Equal(ast.AccessObject, field.Access)
	assert.True(field.IsVisitable)

	union := f.Symbols.GetAggr("V")
	require.NotNil(t, union)
	require.Len(t, union.Variants, 2)
	av := union.VariantByName("A")
	require.NotNil(t, av)
	xf := av.FieldByName("x")
	require.NotNil(t, xf)
	assert.Equal(ast.ModelType, xf.Model)
}

// S6 - map field with a custom-type key rewritten after resolution.
func Test_Resolve_S6_MapWithCustomKey(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, "class Stmt; #define id_ std::string\nclass Scope (names:Stmt<id_>);")

	scope := f.Symbols.GetNode("Scope")
	require.NotNil(t, scope)
	names := scope.FieldByName("names")
	require.NotNil(t, names)
	assert.Equal(ast.ContainerMap, names.Container)
	assert.Equal("std::string", names.Attributes["map"])
}

func Test_Resolve_TraitExpansion_CopiesIntoChildrenAndRemovesFromParent(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, `
		#define int_ int = 0
		class Stmt ([[istrait]] line:int_);
		-> class Assign (lhs:int_);
		-> class Return (val:int_);
	`)

	stmt := f.Symbols.GetNode("Stmt")
	assign := f.Symbols.GetNode("Assign")
	ret := f.Symbols.GetNode("Return")

	assert.Nil(stmt.FieldByName("line"), "trait field must be removed from the parent's exposed set")

	aLine := assign.FieldByName("line")
	require.NotNil(t, aLine)
	assert.True(aLine.WasTrait)
	assert.False(aLine.HasAttr("istrait"))
	assert.True(aLine.HasAttr("wastrait"))

	rLine := ret.FieldByName("line")
	require.NotNil(t, rLine)
	assert.True(rLine.WasTrait)
	assert.NotSame(aLine, rLine, "each child must get its own deep copy, not a shared reference")
}

func Test_Resolve_TraitRedefinesField_IsAnError(t *testing.T) {
	p := parse.New(strings.NewReader(`
		#define int_ int = 0
		class Stmt ([[istrait]] line:int_);
		-> class Assign (line:int_);
	`))
	f, err := p.Parse()
	require.NoError(t, err)
	err = Resolve(f)
	assert.Error(t, err)
}

func Test_Resolve_DecorationConflicts(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"optional and reference", "class Stmt; class X (f?&:Stmt);"},
		{"optional and array", "class Stmt; class X (f?:Stmt[]);"},
		{"map and array", "#define id_ std::string\nclass Stmt; class X ([[array]] f:Stmt<id_>);"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := parse.New(strings.NewReader(tc.src))
			f, err := p.Parse()
			require.NoError(t, err)
			assert.Error(t, Resolve(f))
		})
	}
}

func Test_Resolve_UnionOfUnionNotAllowed(t *testing.T) {
	p := parse.New(strings.NewReader(`
		union V { class A; };
		union W { class B (v:V); };
	`))
	f, err := p.Parse()
	require.NoError(t, err)
	assert.Error(t, Resolve(f))
}

func Test_Resolve_AggrFieldCannotBeDecorated(t *testing.T) {
	p := parse.New(strings.NewReader(`
		union V { class A; };
		class W (v?:V);
	`))
	f, err := p.Parse()
	require.NoError(t, err)
	assert.Error(t, Resolve(f))
}

func Test_Resolve_UnknownFieldType(t *testing.T) {
	p := parse.New(strings.NewReader("class X (f:DoesNotExist);"))
	f, err := p.Parse()
	require.NoError(t, err)
	assert.Error(t, Resolve(f))
}

func Test_Resolve_Namespace_QualifiesNodesAndEnums(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, "[[namespace=myast]];\nclass Stmt; enum Kind { A, B };")
	assert.Equal("myast::Stmt", f.Symbols.GetNode("Stmt").FQN)
	assert.Equal("myast::Kind", f.Symbols.GetEnum("Kind").FQN)
}

// Invariant 4: tuple totality - every resolved field has all four parts set.
func Test_Resolve_TupleTotality(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, `
		#define int_ int = 0
		enum Kind { A, B };
		class Stmt ([[istrait]] k:Kind);
		-> class Assign (lhs:int_, rhs?:int_, many:int_[], ref&:Stmt);
	`)
	for _, n := range f.Symbols.Nodes() {
		for _, field := range n.Fields {
			assert.NotEqual(ast.ModelUnresolved, field.Model, "field %s.%s", n.Name, field.Name)
			assert.NotEqual(ast.OwnershipUnresolved, field.Ownership, "field %s.%s", n.Name, field.Name)
			assert.NotEqual(ast.AccessUnresolved, field.Access, "field %s.%s", n.Name, field.Name)
			assert.NotEqual(ast.ContainerUnresolved, field.Container, "field %s.%s", n.Name, field.Name)
		}
	}
}

func Test_Resolve_CrossReferencesParentsAndChildren(t *testing.T) {
	assert := assert.New(t)
	f := parseAndResolve(t, "class Stmt; -> class Assign; -> class Return;")

	stmt := f.Symbols.GetNode("Stmt")
	assign := f.Symbols.GetNode("Assign")

	require.Len(t, stmt.ResolvedChildren, 2)
	assert.Same(assign, stmt.ResolvedChildren[0])
	require.Len(t, assign.ResolvedParents, 1)
	assert.Same(stmt, assign.ResolvedParents[0])
}
