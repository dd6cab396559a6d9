package order

import (
	"strings"
	"testing"

	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/parse"
	"github.com/dekarrin/natsuki/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseResolveOrder(t *testing.T, src string) []ast.Declaration {
	t.Helper()
	p := parse.New(strings.NewReader(src))
	f, err := p.Parse()
	require.NoError(t, err)
	require.NoError(t, resolve.Resolve(f))
	return Order(f)
}

func indexOf(decls []ast.Declaration, name string) int {
	for i, d := range decls {
		if ast.DeclName(d) == name {
			return i
		}
	}
	return -1
}

func Test_Order_EnumerationsComeFirst(t *testing.T) {
	decls := parseResolveOrder(t, `
		class Stmt;
		-> class Assign;
		enum Kind { A, B };
	`)
	require.Len(t, decls, 3)
	_, isEnum := decls[0].(*ast.Enumeration)
	assert.True(t, isEnum, "first declaration must be the enumeration regardless of source order")
}

func Test_Order_ParentBeforeChild(t *testing.T) {
	decls := parseResolveOrder(t, `
		class Stmt;
		-> class Assign;
		-> class Return;
	`)
	stmtIdx := indexOf(decls, "Stmt")
	assignIdx := indexOf(decls, "Assign")
	returnIdx := indexOf(decls, "Return")
	require.NotEqual(t, -1, stmtIdx)
	assert.Less(t, stmtIdx, assignIdx)
	assert.Less(t, stmtIdx, returnIdx)
}

func Test_Order_UnionsPlacedWithEnums(t *testing.T) {
	decls := parseResolveOrder(t, `
		class Stmt;
		-> class Assign;
		union V { class A; };
	`)
	unionIdx := indexOf(decls, "V")
	assignIdx := indexOf(decls, "Assign")
	assert.Less(t, unionIdx, assignIdx)
}

func Test_Order_NoDuplicates(t *testing.T) {
	decls := parseResolveOrder(t, `
		class Stmt;
		-> class Assign;
		-> class Return;
		enum Kind { A, B };
	`)
	seen := map[string]int{}
	for _, d := range decls {
		seen[ast.DeclName(d)]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "declaration %q appeared %d times", name, count)
	}
}
