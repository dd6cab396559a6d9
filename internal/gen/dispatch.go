// Package gen implements the generator framework: the dispatch contract
// every backend exposes, the file-level boilerplate (namespace, include
// guard, forward declarations, enumeration and visitor emission) the
// framework owns, and four concrete C++ backends that consume the contract.
//
// The per-shape emitter bodies are deliberately tabular one-liners; all of
// the interesting logic lives in the dispatch keying and the framework.
package gen

import (
	"fmt"

	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/ngerrors"
)

// The four dispatch verbs a backend's table is indexed by.
const (
	VerbField       = "generate_field"
	VerbInitialiser = "generate_initialiser"
	VerbDestroyer   = "generate_destroyer"
	VerbTraveller   = "generate_traveller" // key omits Ownership
)

// DispatchKey is the 4-tuple (plus verb) that selects a backend's field
// emitter - the "{verb}_{model}_{ownership}_{access}_{container}" string
// modeled as a struct rather than a reflectively-looked-up method name, so
// the package's own completeness test can reason about it statically.
type DispatchKey struct {
	Verb      string
	Model     ast.ModelKind
	Ownership ast.OwnershipKind
	Access    ast.AccessKind
	Container ast.ContainerKind
}

// String renders the key in its flat underscore spelling, the exact text
// ngerrors.FeatureUnsupported reports on a miss. The traveller verb omits
// Ownership.
func (k DispatchKey) String() string {
	if k.Verb == VerbTraveller {
		return fmt.Sprintf("%s_%s_%s_%s", k.Verb, k.Model, k.Access, k.Container)
	}
	return fmt.Sprintf("%s_%s_%s_%s_%s", k.Verb, k.Model, k.Ownership, k.Access, k.Container)
}

func keyFor(verb string, f *ast.Field) DispatchKey {
	k := DispatchKey{Verb: verb, Model: f.Model, Ownership: f.Ownership, Access: f.Access, Container: f.Container}
	if verb == VerbTraveller {
		// the traveller key omits Ownership, the same way buildTable keys it.
		k.Ownership = ast.OwnershipUnresolved
	}
	return k
}

// FieldEmitter produces the text a dispatch entry emits for a (node, field)
// pair. The second return value only matters for VerbField: it reports
// whether the line belongs in the node's header declaration (true) versus a
// printer implementation body (false). Every other verb ignores it.
type FieldEmitter func(n *ast.Node, f *ast.Field) (lines []string, emitInHeader bool)

// DispatchTable is a backend's complete set of field emitters, built once at
// backend construction. A lookup miss is ngerrors.FeatureUnsupported with
// the exact key string.
type DispatchTable map[DispatchKey]FieldEmitter

func (t DispatchTable) dispatch(verb string, n *ast.Node, f *ast.Field) ([]string, bool, error) {
	key := keyFor(verb, f)
	fn, ok := t[key]
	if !ok {
		return nil, false, ngerrors.FeatureUnsupported(key.String())
	}
	lines, header := fn(n, f)
	return lines, header, nil
}

// tuple is a DispatchKey with the Verb stripped - the part of the key that
// comes from field resolution rather than from which emission verb is being
// invoked.
type tuple struct {
	Model     ast.ModelKind
	Ownership ast.OwnershipKind
	Access    ast.AccessKind
	Container ast.ContainerKind
}

// containersFor enumerates the containers reachable for a given ownership:
// `optional` conflicts with `reference`, so a Reference-owned field can
// never resolve to ContainerOptional.
func containersFor(own ast.OwnershipKind) []ast.ContainerKind {
	all := []ast.ContainerKind{
		ast.ContainerValue, ast.ContainerOptional, ast.ContainerArray,
		ast.ContainerDoubleArray, ast.ContainerMap, ast.ContainerMultiMap,
	}
	if own != ast.OwnershipReference {
		return all
	}
	out := make([]ast.ContainerKind, 0, len(all)-1)
	for _, c := range all {
		if c != ast.ContainerOptional {
			out = append(out, c)
		}
	}
	return out
}

// ValidTuples enumerates every (model, ownership, access, container)
// combination resolve.Resolve can actually produce - each model's initial
// tuple plus every decoration override. Every concrete backend's dispatch
// table is built by iterating this list, which is also what the
// dispatch-completeness test cross-checks against.
func ValidTuples() []tuple {
	var out []tuple

	ownerships := []ast.OwnershipKind{ast.OwnershipFull, ast.OwnershipReference, ast.OwnershipConditional}

	// Node fields: access is always Pointer.
	for _, own := range ownerships {
		for _, c := range containersFor(own) {
			out = append(out, tuple{ast.ModelNode, own, ast.AccessPointer, c})
		}
	}

	// Enum fields: access is always Object (an enum field has no pointer
	// form); ownership and container follow the field's decorations.
	for _, own := range ownerships {
		for _, c := range containersFor(own) {
			out = append(out, tuple{ast.ModelEnum, own, ast.AccessObject, c})
		}
	}

	// Type fields: access depends on the `#define`d underlying spelling
	// (trailing `*` or not), independent of container/ownership decoration.
	for _, acc := range []ast.AccessKind{ast.AccessPointer, ast.AccessObject} {
		for _, own := range ownerships {
			for _, c := range containersFor(own) {
				out = append(out, tuple{ast.ModelType, own, acc, c})
			}
		}
	}

	// Aggr fields: always Full/Object/Value and never decorated, so exactly
	// one tuple.
	out = append(out, tuple{ast.ModelAggr, ast.OwnershipFull, ast.AccessObject, ast.ContainerValue})

	return out
}

// keysForVerb expands ValidTuples into full DispatchKeys for one verb. The
// traveller verb's key omits Ownership, so its tuples are first collapsed to
// remove ownership-only duplicates.
func keysForVerb(verb string) []DispatchKey {
	tuples := ValidTuples()
	if verb != VerbTraveller {
		keys := make([]DispatchKey, 0, len(tuples))
		for _, t := range tuples {
			keys = append(keys, DispatchKey{verb, t.Model, t.Ownership, t.Access, t.Container})
		}
		return keys
	}

	seen := map[DispatchKey]bool{}
	var keys []DispatchKey
	for _, t := range tuples {
		k := DispatchKey{verb, t.Model, ast.OwnershipUnresolved, t.Access, t.Container}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
