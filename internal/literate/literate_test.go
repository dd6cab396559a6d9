package literate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ExtractFromMarkdown_ConcatenatesTaggedFences(t *testing.T) {
	md := []byte("# My AST\n\nSome prose.\n\n```natsuki\nclass Stmt;\n```\n\nMore prose.\n\n```natsuki\n-> class Assign;\n```\n")
	got := string(ExtractFromMarkdown(md))
	assert.Equal(t, "class Stmt;\n-> class Assign;\n", got)
}

func Test_ExtractFromMarkdown_IgnoresOtherLanguages(t *testing.T) {
	md := []byte("```cpp\nint main() {}\n```\n\n```natsuki\nclass Stmt;\n```\n")
	got := string(ExtractFromMarkdown(md))
	assert.Equal(t, "class Stmt;\n", got)
}

func Test_ExtractFromMarkdown_FenceTagIsCaseInsensitive(t *testing.T) {
	md := []byte("```Natsuki\nclass Stmt;\n```\n")
	got := string(ExtractFromMarkdown(md))
	assert.Equal(t, "class Stmt;\n", got)
}

func Test_IsLiterate(t *testing.T) {
	assert.True(t, IsLiterate("defs.md"))
	assert.True(t, IsLiterate("DEFS.MD"))
	assert.True(t, IsLiterate("defs.markdown"))
	assert.False(t, IsLiterate("defs.astdef"))
	assert.False(t, IsLiterate("defs"))
}
