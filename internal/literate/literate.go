// Package literate extracts natsuki AST-definition source embedded in a
// markdown document, so an ASTFILE argument ending in .md can hold prose
// alongside its definitions. Extraction is a gomarkdown renderer that only
// reacts to fenced code blocks tagged with the language's own name.
package literate

import (
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	mkast "github.com/gomarkdown/markdown/ast"
	mkparser "github.com/gomarkdown/markdown/parser"
)

const fenceLang = "natsuki"

type astdefScanner bool

func (s astdefScanner) RenderNode(w io.Writer, node mkast.Node, entering bool) mkast.WalkStatus {
	if !entering {
		return mkast.GoToNext
	}
	block, ok := node.(*mkast.CodeBlock)
	if !ok || block == nil {
		return mkast.GoToNext
	}
	if strings.ToLower(strings.TrimSpace(string(block.Info))) == fenceLang {
		w.Write(block.Literal)
	}
	return mkast.GoToNext
}

func (s astdefScanner) RenderHeader(w io.Writer, doc mkast.Node) {}
func (s astdefScanner) RenderFooter(w io.Writer, doc mkast.Node) {}

// ExtractFromMarkdown concatenates the contents of every ```natsuki fenced
// code block in mdText, in document order, discarding all surrounding prose.
func ExtractFromMarkdown(mdText []byte) []byte {
	doc := markdown.Parse(mdText, mkparser.New())
	var scanner astdefScanner
	return markdown.Render(doc, scanner)
}

// IsLiterate reports whether filename's extension marks it as a markdown
// literate source rather than plain astdef text.
func IsLiterate(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
