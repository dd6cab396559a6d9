package gen

import (
	"fmt"

	"github.com/dekarrin/natsuki/internal/ast"
)

// buildTable builds a complete DispatchTable for one verb by calling fn once
// per tuple ValidTuples enumerates, giving every concrete backend the same
// exhaustive-switch-wrapped-by-a-table shape. The traveller verb collapses
// tuples that only differ by Ownership, since its key omits Ownership.
func buildTable(verb string, fn func(tuple) FieldEmitter) DispatchTable {
	table := DispatchTable{}
	seen := map[DispatchKey]bool{}
	for _, t := range ValidTuples() {
		var key DispatchKey
		if verb == VerbTraveller {
			key = DispatchKey{verb, t.Model, ast.OwnershipUnresolved, t.Access, t.Container}
		} else {
			key = DispatchKey{verb, t.Model, t.Ownership, t.Access, t.Container}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		table[key] = fn(t)
	}
	return table
}

// fieldDeclEmitter builds the VerbField entry for tuple t: the member
// declaration line(s) a field of this shape needs in a node's header, plus
// any guard member a Conditional-owned field needs alongside it.
func fieldDeclEmitter(t tuple) FieldEmitter {
	return func(n *ast.Node, f *ast.Field) ([]string, bool) {
		if t.Model == ast.ModelAggr {
			return unionFieldDecl(f), true
		}
		lines := []string{fmt.Sprintf("%s %s;", declType(f), f.Name)}
		if t.Ownership == ast.OwnershipConditional {
			lines = append(lines, fmt.Sprintf("bool %s = false;", f.Attributes["guard"]))
		}
		return lines, true
	}
}

// unionFieldDecl emits the discriminator-plus-storage declaration a union
// ("Aggr") field needs: an enum discriminator initialized to none,
// uninitialized storage sized and aligned for any variant (the XStorage
// alias the header emits alongside the union's variant classes), and the
// setter that swaps the active variant.
func unionFieldDecl(f *ast.Field) []string {
	kindType := f.Type + "Kind"
	return []string{
		fmt.Sprintf("%s %s_kind = %s::None;", kindType, f.Name, kindType),
		fmt.Sprintf("%sStorage %s_storage;", f.Type, f.Name),
		fmt.Sprintf("void set_%s_kind(%s kind);", f.Name, kindType),
	}
}

// initialiserEmitter builds the VerbInitialiser entry: the member-init-list
// expression for a field of this shape.
func initialiserEmitter(t tuple) FieldEmitter {
	return func(n *ast.Node, f *ast.Field) ([]string, bool) {
		if t.Model == ast.ModelAggr {
			return []string{fmt.Sprintf("%s_kind(%sKind::None)", f.Name, f.Type)}, false
		}
		return []string{initExpr(f)}, false
	}
}

// destroyerEmitter builds the VerbDestroyer entry: the destructor-body
// statement(s) for a field of this shape, wrapped in a guard check when
// ownership is Conditional.
func destroyerEmitter(t tuple) FieldEmitter {
	return func(n *ast.Node, f *ast.Field) ([]string, bool) {
		if t.Model == ast.ModelAggr {
			return []string{fmt.Sprintf("destroy_%s(%s_kind, &%s_storage);", f.Type, f.Name, f.Name)}, false
		}
		if !isOwningPointer(f) {
			return nil, false
		}
		var body []string
		switch t.Container {
		case ast.ContainerValue:
			body = []string{fmt.Sprintf("delete %s;", f.Name)}
		case ast.ContainerOptional:
			body = []string{fmt.Sprintf("if (%s) delete *%s;", f.Name, f.Name)}
		case ast.ContainerArray:
			body = []string{fmt.Sprintf("for (auto &_e : %s) delete _e;", f.Name)}
		case ast.ContainerDoubleArray:
			body = []string{fmt.Sprintf("for (auto &_row : %s) for (auto &_e : _row) delete _e;", f.Name)}
		case ast.ContainerMap, ast.ContainerMultiMap:
			body = []string{fmt.Sprintf("for (auto &_kv : %s) delete _kv.second;", f.Name)}
		}
		if t.Ownership == ast.OwnershipConditional {
			guard := f.Attributes["guard"]
			if guard == "" {
				guard = "_owns_fields"
			}
			wrapped := make([]string, 0, len(body)+2)
			wrapped = append(wrapped, fmt.Sprintf("if (%s) {", guard))
			for _, l := range body {
				wrapped = append(wrapped, "    "+l)
			}
			wrapped = append(wrapped, "}")
			return wrapped, false
		}
		return body, false
	}
}

// travellerEmitter builds the VerbTraveller entry: how traverse() recurses
// into a field of this shape. The pointee's own traverse calls visit and
// post_visit for itself, so a field entry only chains into it - calling
// visit here as well would announce every node twice. The caller only
// invokes this for fields where f.IsVisitable is true; non-visitable fields
// are skipped by the framework before dispatch, and a non-node field has
// nothing to recurse into even when forced visitable.
func travellerEmitter(t tuple) FieldEmitter {
	return func(n *ast.Node, f *ast.Field) ([]string, bool) {
		if t.Model == ast.ModelAggr {
			return []string{fmt.Sprintf("traverse_%s(visitor, %s_kind, &%s_storage);", f.Type, f.Name, f.Name)}, false
		}
		if t.Model != ast.ModelNode {
			return nil, false
		}
		switch t.Container {
		case ast.ContainerValue:
			return []string{fmt.Sprintf("if (%s) %s->traverse(visitor);", f.Name, f.Name)}, false
		case ast.ContainerOptional:
			return []string{fmt.Sprintf("if (%s && *%s) (*%s)->traverse(visitor);", f.Name, f.Name, f.Name)}, false
		case ast.ContainerArray:
			return []string{fmt.Sprintf("for (auto &_e : %s) if (_e) _e->traverse(visitor);", f.Name)}, false
		case ast.ContainerDoubleArray:
			return []string{fmt.Sprintf("for (auto &_row : %s) for (auto &_e : _row) if (_e) _e->traverse(visitor);", f.Name)}, false
		case ast.ContainerMap, ast.ContainerMultiMap:
			return []string{fmt.Sprintf("for (auto &_kv : %s) if (_kv.second) _kv.second->traverse(visitor);", f.Name)}, false
		}
		return nil, false
	}
}

// debugDumpEmitter builds the debug-printer backend's VerbField entry: one
// indented line per field rendering its display name and (for
// pointer-to-node fields) recursing into the pointee through the free dump
// function. The
// dumped node is in scope as `n`.
func debugDumpEmitter(t tuple) FieldEmitter {
	return func(n *ast.Node, f *ast.Field) ([]string, bool) {
		name := f.DisplayName
		if t.Model == ast.ModelAggr {
			return []string{fmt.Sprintf(`out << indentStr << "%s: <" << %s_kind_name(n.%s_kind) << ">\n";`, name, f.Type, f.Name)}, false
		}

		// scalarExpr renders one element of a non-node field; enum classes
		// need a cast before they can meet an ostream.
		scalarExpr := func(v string) string {
			if t.Model == ast.ModelEnum {
				return "static_cast<int>(" + v + ")"
			}
			return v
		}

		switch t.Container {
		case ast.ContainerOptional:
			if t.Model == ast.ModelNode {
				return []string{fmt.Sprintf(`if (n.%s) { out << indentStr << "%s:\n"; dump(**n.%s, out, indent + 1); } else { out << indentStr << "%s: <absent>\n"; }`, f.Name, name, f.Name, name)}, false
			}
			return []string{fmt.Sprintf(`if (n.%s) out << indentStr << "%s: " << %s << "\n"; else out << indentStr << "%s: <absent>\n";`, f.Name, name, scalarExpr("*n."+f.Name), name)}, false
		case ast.ContainerArray:
			if t.Model == ast.ModelNode {
				return []string{fmt.Sprintf(`out << indentStr << "%s: [" << n.%s.size() << "]\n"; for (auto &_e : n.%s) if (_e) dump(*_e, out, indent + 1);`, name, f.Name, f.Name)}, false
			}
			return []string{fmt.Sprintf(`out << indentStr << "%s: [" << n.%s.size() << " elements]\n";`, name, f.Name)}, false
		case ast.ContainerDoubleArray:
			if t.Model == ast.ModelNode {
				return []string{fmt.Sprintf(`out << indentStr << "%s: [" << n.%s.size() << " rows]\n"; for (auto &_row : n.%s) for (auto &_e : _row) if (_e) dump(*_e, out, indent + 1);`, name, f.Name, f.Name)}, false
			}
			return []string{fmt.Sprintf(`out << indentStr << "%s: [" << n.%s.size() << " rows]\n";`, name, f.Name)}, false
		case ast.ContainerMap, ast.ContainerMultiMap:
			if t.Model == ast.ModelNode {
				return []string{fmt.Sprintf(`out << indentStr << "%s: {" << n.%s.size() << " entries}\n"; for (auto &_kv : n.%s) if (_kv.second) dump(*_kv.second, out, indent + 1);`, name, f.Name, f.Name)}, false
			}
			return []string{fmt.Sprintf(`out << indentStr << "%s: {" << n.%s.size() << " entries}\n";`, name, f.Name)}, false
		default:
			if t.Model == ast.ModelNode {
				return []string{fmt.Sprintf(`out << indentStr << "%s:\n"; if (n.%s) dump(*n.%s, out, indent + 1);`, name, f.Name, f.Name)}, false
			}
			return []string{fmt.Sprintf(`out << indentStr << "%s: " << %s << "\n";`, name, scalarExpr("n."+f.Name))}, false
		}
	}
}
