package ast

import "github.com/dekarrin/natsuki/internal/ngerrors"

// symbolEntry tags which of the four typed slots a name in the registry
// occupies, so the disjointness invariant (names across nodes,
// enumerations, custom types, and unions are mutually disjoint) is a
// single map lookup rather than four separate ones.
type symbolEntry struct {
	kind ngerrors.Kind // KindNameAlreadyDefinesNode / Enum / Type / Union
	node *Node
	enum *Enumeration
	typ  *CustomType
	aggr *Union
}

// SymbolTable is the single registry backing the parser and resolver: one
// disjoint name->entry map, plus thin typed views for callers that want
// one kind of declaration. Collapsing the four separate tables the parser
// would otherwise need into one map makes the disjointness rule
// structurally impossible to violate by accident - there is
// only one place a name can be registered.
type SymbolTable struct {
	entries map[string]*symbolEntry
	order   []string // insertion order, for deterministic iteration
}

// NewSymbolTable returns an empty SymbolTable ready for registration.
func NewSymbolTable() SymbolTable {
	return SymbolTable{entries: make(map[string]*symbolEntry)}
}

// lookup returns the entry registered under name, or (nil, false).
func (t *SymbolTable) lookup(name string) (*symbolEntry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// conflictKindFor reports which NameAlreadyDefines* Kind to use if name is
// about to be registered again; ok is false if name is not yet registered.
func (t *SymbolTable) conflictKindFor(name string) (ngerrors.Kind, bool) {
	e, ok := t.lookup(name)
	if !ok {
		return 0, false
	}
	return e.kind, true
}

// AddNode registers n under its Name. Returns an error if the name is
// already registered as any kind of declaration.
func (t *SymbolTable) AddNode(n *Node, line, col int) error {
	if kind, ok := t.conflictKindFor(n.Name); ok {
		return ngerrors.NameAlreadyDefines(kind, n.Name, line, col)
	}
	t.entries[n.Name] = &symbolEntry{kind: ngerrors.KindNameAlreadyDefinesNode, node: n}
	t.order = append(t.order, n.Name)
	return nil
}

// AddEnum registers e under its Name.
func (t *SymbolTable) AddEnum(e *Enumeration, line, col int) error {
	if kind, ok := t.conflictKindFor(e.Name); ok {
		return ngerrors.NameAlreadyDefines(kind, e.Name, line, col)
	}
	t.entries[e.Name] = &symbolEntry{kind: ngerrors.KindNameAlreadyDefinesEnum, enum: e}
	t.order = append(t.order, e.Name)
	return nil
}

// AddType registers c under its Name.
func (t *SymbolTable) AddType(c *CustomType, line, col int) error {
	if kind, ok := t.conflictKindFor(c.Name); ok {
		return ngerrors.NameAlreadyDefines(kind, c.Name, line, col)
	}
	t.entries[c.Name] = &symbolEntry{kind: ngerrors.KindNameAlreadyDefinesType, typ: c}
	t.order = append(t.order, c.Name)
	return nil
}

// AddAggr registers u under its Name.
func (t *SymbolTable) AddAggr(u *Union, line, col int) error {
	if kind, ok := t.conflictKindFor(u.Name); ok {
		return ngerrors.NameAlreadyDefines(kind, u.Name, line, col)
	}
	t.entries[u.Name] = &symbolEntry{kind: ngerrors.KindNameAlreadyDefinesUnion, aggr: u}
	t.order = append(t.order, u.Name)
	return nil
}

// GetNode returns the registered node named name, or nil if name is not
// registered as a node.
func (t *SymbolTable) GetNode(name string) *Node {
	if e, ok := t.lookup(name); ok {
		return e.node
	}
	return nil
}

// GetEnum returns the registered enumeration named name, or nil.
func (t *SymbolTable) GetEnum(name string) *Enumeration {
	if e, ok := t.lookup(name); ok {
		return e.enum
	}
	return nil
}

// GetType returns the registered custom type named name, or nil.
func (t *SymbolTable) GetType(name string) *CustomType {
	if e, ok := t.lookup(name); ok {
		return e.typ
	}
	return nil
}

// GetAggr returns the registered union named name, or nil.
func (t *SymbolTable) GetAggr(name string) *Union {
	if e, ok := t.lookup(name); ok {
		return e.aggr
	}
	return nil
}

// Resolve looks up name across all four symbol kinds, in the order
// nodes -> enums -> types -> aggrs, and reports which kind (if any)
// matched along with the matching value. This is the lookup field
// resolution starts from.
func (t *SymbolTable) Resolve(name string) (model ModelKind, node *Node, enum *Enumeration, typ *CustomType, aggr *Union, ok bool) {
	e, found := t.lookup(name)
	if !found {
		return ModelUnresolved, nil, nil, nil, nil, false
	}
	switch {
	case e.node != nil:
		return ModelNode, e.node, nil, nil, nil, true
	case e.enum != nil:
		return ModelEnum, nil, e.enum, nil, nil, true
	case e.typ != nil:
		return ModelType, nil, nil, e.typ, nil, true
	case e.aggr != nil:
		return ModelAggr, nil, nil, nil, e.aggr, true
	}
	return ModelUnresolved, nil, nil, nil, nil, false
}

// Nodes returns every registered node, in declaration order.
func (t *SymbolTable) Nodes() []*Node {
	var out []*Node
	for _, name := range t.order {
		if n := t.entries[name].node; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Enums returns every registered enumeration, in declaration order.
func (t *SymbolTable) Enums() []*Enumeration {
	var out []*Enumeration
	for _, name := range t.order {
		if e := t.entries[name].enum; e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Types returns every registered custom type, in declaration order.
func (t *SymbolTable) Types() []*CustomType {
	var out []*CustomType
	for _, name := range t.order {
		if c := t.entries[name].typ; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Aggrs returns every registered union, in declaration order.
func (t *SymbolTable) Aggrs() []*Union {
	var out []*Union
	for _, name := range t.order {
		if u := t.entries[name].aggr; u != nil {
			out = append(out, u)
		}
	}
	return out
}
