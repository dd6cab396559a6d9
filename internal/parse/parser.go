// Package parse implements the recursive-descent parser that turns a
// natsuki AST-definition source file into a raw ast.File: four symbol
// tables (nodes, enumerations, custom types, unions) populated under the
// uniqueness, shape, and decoration constraints of the grammar, ready for
// internal/resolve to fully specify.
package parse

import (
	"io"
	"strings"

	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/lex"
	"github.com/dekarrin/natsuki/internal/ngerrors"
)

// byteSet is a small lookup table used to configure lex.Lexer.NextVerbatim
// calls.
type byteSet map[byte]bool

func set(bs ...byte) byteSet {
	s := make(byteSet, len(bs))
	for _, b := range bs {
		s[b] = true
	}
	return s
}

var (
	untilNewline      = set('\n')
	untilDefaultEnd   = set('\n', ',', ')')
	untilAttrValueEnd = set(',', ']')
	braceNestIn       = set('{')
	braceNestOut      = set('}')
	untilCloseBrace   = set('}')
)

// Parser drives a lex.Lexer over a recursive-descent implementation of the
// AST-definition grammar. First syntactic or semantic violation aborts the
// run and is returned from Parse.
type Parser struct {
	lx   *lex.Lexer
	cur  lex.Token
	file *ast.File
}

// New creates a Parser reading source from r.
func New(r io.Reader) *Parser {
	return &Parser{
		lx: lex.New(r),
		file: &ast.File{
			Options: map[string]string{},
			Symbols: ast.NewSymbolTable(),
		},
	}
}

// Parse consumes the entire input and returns the raw, unresolved File, or
// the first syntax/semantic error encountered.
func (p *Parser) Parse() (*ast.File, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.cur.Kind != lex.KindEOF {
		if err := p.declaration(); err != nil {
			return nil, err
		}
	}
	return p.file, nil
}

func (p *Parser) advance() error {
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) expect(k lex.Kind) error {
	if p.cur.Kind != k {
		return ngerrors.ExpectedToken(k.String(), p.cur.Kind.String(), p.cur.Pos.Line, p.cur.Pos.Column)
	}
	return nil
}

func (p *Parser) expectIdent() (string, lex.Position, error) {
	if p.cur.Kind != lex.KindIdent {
		return "", lex.Position{}, ngerrors.ExpectedToken("identifier", p.cur.Kind.String(), p.cur.Pos.Line, p.cur.Pos.Column)
	}
	name, pos := p.cur.Lexeme, p.cur.Pos
	return name, pos, p.advance()
}

// consume asserts the current token is k and advances past it.
func (p *Parser) consume(k lex.Kind) error {
	if err := p.expect(k); err != nil {
		return err
	}
	return p.advance()
}

// declaration parses one top-level declaration.
func (p *Parser) declaration() error {
	switch p.cur.Kind {
	case lex.KindHash:
		return p.hashDirective()
	case lex.KindDLBracket:
		attrs, err := p.attributes()
		if err != nil {
			return err
		}
		if p.cur.Kind == lex.KindSemi {
			for k, v := range attrs {
				p.file.Options[k] = v
			}
			return p.advance()
		}
		if p.cur.Kind == lex.KindClass {
			_, err := p.node(attrs)
			return err
		}
		return ngerrors.UnexpectedToken(p.cur.Kind.String(), p.cur.Pos.Line, p.cur.Pos.Column)
	case lex.KindClass:
		_, err := p.node(nil)
		return err
	case lex.KindEnum:
		return p.enumeration()
	case lex.KindUnion:
		return p.union()
	case lex.KindPublic, lex.KindPrivate:
		return p.topLevelBlock()
	default:
		return ngerrors.UnexpectedToken(p.cur.Kind.String(), p.cur.Pos.Line, p.cur.Pos.Column)
	}
}

// hashDirective parses `#include ...` or `#define ...`.
func (p *Parser) hashDirective() error {
	if err := p.advance(); err != nil { // consume '#'
		return err
	}
	switch p.cur.Kind {
	case lex.KindInclude:
		// the lexer's cursor sits just past the INCLUDE keyword, so the
		// verbatim run starts here; the terminating newline is consumed by
		// the re-priming advance below.
		raw, err := p.lx.NextVerbatim(lex.KindVerbatim, nil, nil, untilNewline)
		if err != nil {
			return err
		}
		p.file.Includes = append(p.file.Includes, strings.TrimSpace(raw.Lexeme))
		return p.advance()
	case lex.KindDefine:
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expect(lex.KindIdent); err != nil {
			return err
		}
		name, pos := p.cur.Lexeme, p.cur.Pos
		raw, err := p.lx.NextVerbatim(lex.KindVerbatim, nil, nil, untilNewline)
		if err != nil {
			return err
		}
		underlying, def := splitUnderlyingDefault(raw.Lexeme)
		ct := &ast.CustomType{Name: name, Underlying: underlying, Default: def}
		if err := p.file.Symbols.AddType(ct, pos.Line, pos.Column); err != nil {
			return err
		}
		return p.advance()
	default:
		return ngerrors.ExpectedToken("INCLUDE or DEFINE", p.cur.Kind.String(), p.cur.Pos.Line, p.cur.Pos.Column)
	}
}

// splitUnderlyingDefault splits the raw rest-of-line captured after a
// `#define name` into the underlying textual type and an optional default
// expression, on the first '='.
func splitUnderlyingDefault(raw string) (underlying string, def *string) {
	if idx := strings.Index(raw, "="); idx >= 0 {
		u := strings.TrimSpace(raw[:idx])
		d := strings.TrimSpace(raw[idx+1:])
		return u, &d
	}
	return strings.TrimSpace(raw), nil
}

// attributes parses `'[[' attribute (',' attribute)* ']]'`.
func (p *Parser) attributes() (map[string]string, error) {
	if err := p.consume(lex.KindDLBracket); err != nil {
		return nil, err
	}
	attrs := map[string]string{}
	for {
		key, pos, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		val := ""
		if p.cur.Kind == lex.KindEquals {
			raw, err := p.lx.NextVerbatim(lex.KindVerbatim, nil, nil, untilAttrValueEnd)
			if err != nil {
				return nil, err
			}
			val = strings.TrimSpace(raw.Lexeme)
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if !knownAttribute(key) {
			return nil, ngerrors.UnknownAttribute(key, pos.Line, pos.Column)
		}
		attrs[key] = val
		if p.cur.Kind == lex.KindComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return attrs, p.consume(lex.KindDRBracket)
}

// knownAttributes is the closed set of decoration/attribute names the
// parser and resolver understand. An unrecognized name is a parse error
// rather than being silently accepted and ignored.
var knownAttributes = map[string]bool{
	"optional": true, "reference": true, "array": true, "darray": true,
	"map": true, "mmap": true, "cowned": true, "istrait": true,
	"wastrait": true, "visitable": true, "notvisitable": true,
	"namespace": true, "guard": true, "default": true,
}

func knownAttribute(name string) bool {
	return knownAttributes[name]
}

// verbatimBlock parses an optional leading `[[attrs]]`, an optional
// `PUBLIC:`/`PRIVATE:` visibility prefix (bare `{` defaults to private),
// and the `{ ... }` code body itself.
func (p *Parser) verbatimBlock() (block *ast.VerbatimBlock, public bool, err error) {
	var attrs map[string]string
	if p.cur.Kind == lex.KindDLBracket {
		attrs, err = p.attributes()
		if err != nil {
			return nil, false, err
		}
	}
	switch p.cur.Kind {
	case lex.KindPublic:
		public = true
		if err = p.advance(); err != nil {
			return nil, false, err
		}
		if err = p.consume(lex.KindColon); err != nil {
			return nil, false, err
		}
	case lex.KindPrivate:
		public = false
		if err = p.advance(); err != nil {
			return nil, false, err
		}
		if err = p.consume(lex.KindColon); err != nil {
			return nil, false, err
		}
	}
	if err = p.expect(lex.KindLBrace); err != nil {
		return nil, false, err
	}
	// the '{' is the current token, so the lexer's cursor is already inside
	// the block; capture up to the balancing close brace, which the
	// re-priming advance then consumes as an RBrace token.
	raw, err := p.lx.NextVerbatim(lex.KindVerbatim, braceNestIn, braceNestOut, untilCloseBrace)
	if err != nil {
		return nil, false, err
	}
	if err = p.advance(); err != nil {
		return nil, false, err
	}
	if err = p.expect(lex.KindRBrace); err != nil {
		return nil, false, err
	}
	if err = p.advance(); err != nil {
		return nil, false, err
	}
	return &ast.VerbatimBlock{Attributes: attrs, Text: raw.Lexeme}, public, nil
}

func (p *Parser) topLevelBlock() error {
	block, isPublic, err := p.verbatimBlock()
	if err != nil {
		return err
	}
	if isPublic {
		p.file.Public = append(p.file.Public, block)
	} else {
		p.file.Private = append(p.file.Private, block)
	}
	return nil
}

// customCode parses zero or more node-level `[attrs] (PUBLIC:|PRIVATE:)? {
// ... }` blocks, attaching each to n.
func (p *Parser) customCode(n *ast.Node) error {
	for p.cur.Kind == lex.KindDLBracket || p.cur.Kind == lex.KindPublic ||
		p.cur.Kind == lex.KindPrivate || p.cur.Kind == lex.KindLBrace {
		block, public, err := p.verbatimBlock()
		if err != nil {
			return err
		}
		if public {
			n.Public = append(n.Public, block)
		} else {
			n.Private = append(n.Private, block)
		}
	}
	return nil
}

// fields parses `'(' [field (',' field)*] ')'`.
func (p *Parser) fields() ([]*ast.Field, error) {
	if err := p.consume(lex.KindLParen); err != nil {
		return nil, err
	}
	var out []*ast.Field
	if p.cur.Kind == lex.KindRParen {
		return out, p.advance()
	}
	for {
		fs, err := p.field()
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
		if p.cur.Kind == lex.KindComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return out, p.consume(lex.KindRParen)
}

// field parses one `field` production, which may expand to several
// ast.Field values sharing one decoration set when multiple names are
// given before the ':'.
func (p *Parser) field() ([]*ast.Field, error) {
	var attrs map[string]string
	var err error
	if p.cur.Kind == lex.KindDLBracket {
		attrs, err = p.attributes()
		if err != nil {
			return nil, err
		}
	}
	if attrs == nil {
		attrs = map[string]string{}
	}

	name1, pos, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	names := []string{name1}
	for p.cur.Kind == lex.KindComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}

	if p.cur.Kind == lex.KindQuestion {
		attrs["optional"] = ""
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Kind == lex.KindAmp {
		attrs["reference"] = ""
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if err := p.consume(lex.KindColon); err != nil {
		return nil, err
	}
	typeName, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	switch p.cur.Kind {
	case lex.KindLBracket:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.consume(lex.KindRBracket); err != nil {
			return nil, err
		}
		if p.cur.Kind == lex.KindLBracket {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.consume(lex.KindRBracket); err != nil {
				return nil, err
			}
			attrs["darray"] = ""
		} else {
			attrs["array"] = ""
		}
	case lex.KindLAngle:
		if err := p.advance(); err != nil {
			return nil, err
		}
		key, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.consume(lex.KindRAngle); err != nil {
			return nil, err
		}
		attrs["map"] = key
	case lex.KindLBrace:
		if err := p.advance(); err != nil {
			return nil, err
		}
		key, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.consume(lex.KindRBrace); err != nil {
			return nil, err
		}
		attrs["mmap"] = key
	}

	// A second, trailing `[[attrs]]` block may follow the type/shape suffix
	// - this is how decorations with no shorthand token (cowned, guard,
	// visitable, notvisitable, ...) are usually spelled, e.g.
	// `t:Stmt [[cowned]]`, with the block after the type rather than before
	// the field name.
	if p.cur.Kind == lex.KindDLBracket {
		trailing, err := p.attributes()
		if err != nil {
			return nil, err
		}
		for k, v := range trailing {
			attrs[k] = v
		}
	}

	var def *string
	if p.cur.Kind == lex.KindEquals {
		raw, err := p.lx.NextVerbatim(lex.KindVerbatim, nil, nil, untilDefaultEnd)
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(raw.Lexeme)
		def = &trimmed
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	fields := make([]*ast.Field, 0, len(names))
	for _, n := range names {
		fieldAttrs := make(map[string]string, len(attrs))
		for k, v := range attrs {
			fieldAttrs[k] = v
		}
		fields = append(fields, &ast.Field{
			Name:        n,
			Type:        typeName,
			Attributes:  fieldAttrs,
			Default:     def,
			Pos:         pos,
			DisplayName: n,
		})
	}
	return fields, nil
}

// mergeFields extends an already-declared node with additional fields,
// rejecting any name already present on it. This is what lets
// `class X (a:T);` ... `class X (b:U);` behave as one concatenated
// declaration.
func mergeFields(n *ast.Node, newFields []*ast.Field) error {
	for _, f := range newFields {
		if existing := n.FieldByName(f.Name); existing != nil {
			return ngerrors.FieldRedefined(n.Name, f.Name, f.Pos.Line, f.Pos.Column)
		}
		n.Fields = append(n.Fields, f)
	}
	return nil
}

// node parses `node := [attributes] CLASS ident [fields] custom-code* ';'
// subnode*`. attrs has already been consumed by the caller if present.
func (p *Parser) node(attrs map[string]string) (*ast.Node, error) {
	if err := p.consume(lex.KindClass); err != nil {
		return nil, err
	}
	name, pos, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var flds []*ast.Field
	if p.cur.Kind == lex.KindLParen {
		flds, err = p.fields()
		if err != nil {
			return nil, err
		}
	}

	n := p.file.Symbols.GetNode(name)
	if n != nil {
		if err := mergeFields(n, flds); err != nil {
			return nil, err
		}
		for k, v := range attrs {
			if n.Attributes == nil {
				n.Attributes = map[string]string{}
			}
			n.Attributes[k] = v
		}
	} else {
		n = &ast.Node{Name: name, Attributes: attrs, Fields: flds, Guards: map[string][]string{}, Pos: pos}
		if err := p.file.Symbols.AddNode(n, pos.Line, pos.Column); err != nil {
			return nil, err
		}
		p.file.Declarations = append(p.file.Declarations, n)
	}
	for _, f := range flds {
		f.OwningNode = n
	}

	if err := p.customCode(n); err != nil {
		return nil, err
	}
	if err := p.consume(lex.KindSemi); err != nil {
		return nil, err
	}

	for p.cur.Kind == lex.KindArrow {
		if _, err := p.subnode(n); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// subnode parses `subnode := '->' [attributes] CLASS ident [fields]
// custom-code* ';'`, attaching the result as a child of parent.
func (p *Parser) subnode(parent *ast.Node) (*ast.Node, error) {
	if err := p.advance(); err != nil { // consume '->'
		return nil, err
	}
	var attrs map[string]string
	var err error
	if p.cur.Kind == lex.KindDLBracket {
		attrs, err = p.attributes()
		if err != nil {
			return nil, err
		}
	}
	if err := p.consume(lex.KindClass); err != nil {
		return nil, err
	}
	name, pos, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if len(parent.Parents) > 0 {
		return nil, ngerrors.SubnodeParentOfSubnode(parent.Name, pos.Line, pos.Column)
	}

	var flds []*ast.Field
	if p.cur.Kind == lex.KindLParen {
		flds, err = p.fields()
		if err != nil {
			return nil, err
		}
	}

	child := p.file.Symbols.GetNode(name)
	if child != nil {
		for _, parentName := range child.Parents {
			if parentName != parent.Name {
				return nil, ngerrors.SubnodeOfSubnode(name, pos.Line, pos.Column)
			}
		}
		if err := mergeFields(child, flds); err != nil {
			return nil, err
		}
		for k, v := range attrs {
			if child.Attributes == nil {
				child.Attributes = map[string]string{}
			}
			child.Attributes[k] = v
		}
	} else {
		child = &ast.Node{Name: name, Attributes: attrs, Fields: flds, Guards: map[string][]string{}, Pos: pos}
		if err := p.file.Symbols.AddNode(child, pos.Line, pos.Column); err != nil {
			return nil, err
		}
		p.file.Declarations = append(p.file.Declarations, child)
	}
	for _, f := range flds {
		f.OwningNode = child
	}

	if !containsString(parent.Children, name) {
		parent.Children = append(parent.Children, name)
	}
	if !containsString(child.Parents, parent.Name) {
		child.Parents = append(child.Parents, parent.Name)
	}

	if err := p.customCode(child); err != nil {
		return nil, err
	}
	return child, p.consume(lex.KindSemi)
}

// enumeration parses `ENUM ident '{' ident (',' ident)* '}' ';'`.
func (p *Parser) enumeration() error {
	if err := p.advance(); err != nil { // consume ENUM
		return err
	}
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}
	if err := p.consume(lex.KindLBrace); err != nil {
		return err
	}
	lit1, _, err := p.expectIdent()
	if err != nil {
		return err
	}
	lits := []string{lit1}
	for p.cur.Kind == lex.KindComma {
		if err := p.advance(); err != nil {
			return err
		}
		l, _, err := p.expectIdent()
		if err != nil {
			return err
		}
		lits = append(lits, l)
	}
	if err := p.consume(lex.KindRBrace); err != nil {
		return err
	}
	if err := p.consume(lex.KindSemi); err != nil {
		return err
	}
	e := &ast.Enumeration{Name: name, Literals: lits}
	if err := p.file.Symbols.AddEnum(e, pos.Line, pos.Column); err != nil {
		return err
	}
	p.file.Declarations = append(p.file.Declarations, e)
	return nil
}

// union parses `UNION ident ('{' (CLASS ident [fields] ';')+ '}' | ident
// [fields]) ';'`.
func (p *Parser) union() error {
	if err := p.advance(); err != nil { // consume UNION
		return err
	}
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}

	existing := p.file.Symbols.GetAggr(name)
	isNew := existing == nil
	u := existing
	if isNew {
		u = &ast.Union{Name: name, Pos: pos}
	}

	seenThisStmt := map[string]bool{}
	addVariant := func(v *ast.Node) error {
		if seenThisStmt[v.Name] {
			return ngerrors.NameAlreadyDefines(ngerrors.KindNameAlreadyDefinesUnionNode, v.Name, v.Pos.Line, v.Pos.Column)
		}
		seenThisStmt[v.Name] = true
		if existing := u.VariantByName(v.Name); existing != nil {
			if err := mergeFields(existing, v.Fields); err != nil {
				return err
			}
			for _, f := range v.Fields {
				f.OwningNode = existing
			}
		} else {
			u.Variants = append(u.Variants, v)
		}
		return nil
	}

	parseVariant := func() (*ast.Node, error) {
		vname, vpos, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var flds []*ast.Field
		if p.cur.Kind == lex.KindLParen {
			flds, err = p.fields()
			if err != nil {
				return nil, err
			}
		}
		variant := &ast.Node{Name: vname, Fields: flds, IsUnionVariant: true, Guards: map[string][]string{}, Pos: vpos}
		for _, f := range flds {
			f.OwningNode = variant
		}
		return variant, nil
	}

	if p.cur.Kind == lex.KindLBrace {
		if err := p.advance(); err != nil {
			return err
		}
		for p.cur.Kind == lex.KindClass {
			if err := p.advance(); err != nil {
				return err
			}
			v, err := parseVariant()
			if err != nil {
				return err
			}
			if err := p.consume(lex.KindSemi); err != nil {
				return err
			}
			if err := addVariant(v); err != nil {
				return err
			}
		}
		if err := p.consume(lex.KindRBrace); err != nil {
			return err
		}
	} else {
		v, err := parseVariant()
		if err != nil {
			return err
		}
		if err := addVariant(v); err != nil {
			return err
		}
	}

	if err := p.consume(lex.KindSemi); err != nil {
		return err
	}

	if isNew {
		if err := p.file.Symbols.AddAggr(u, pos.Line, pos.Column); err != nil {
			return err
		}
		p.file.Declarations = append(p.file.Declarations, u)
	}
	return nil
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
