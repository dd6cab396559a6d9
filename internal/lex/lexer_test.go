package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	lx := New(strings.NewReader(src))
	var toks []Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			return toks
		}
	}
}

func kindsOf(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func Test_Next_Punctuation(t *testing.T) {
	toks := lexAll(t, "< > ( ) { } # : & * , ; ? ' \" =")
	assert.Equal(t, []Kind{
		KindLAngle, KindRAngle, KindLParen, KindRParen, KindLBrace,
		KindRBrace, KindHash, KindColon, KindAmp, KindStar, KindComma,
		KindSemi, KindQuestion, KindSQuote, KindDQuote, KindEquals, KindEOF,
	}, kindsOf(toks))
}

func Test_Next_TwoCharacterTokens(t *testing.T) {
	toks := lexAll(t, "-> [[ ]] [ ]")
	assert.Equal(t, []Kind{
		KindArrow, KindDLBracket, KindDRBracket, KindLBracket, KindRBracket, KindEOF,
	}, kindsOf(toks))
}

func Test_Next_AdjacentBracketsPreferDouble(t *testing.T) {
	// `[[cowned]]` must lex as DLBracket, ident, DRBracket - never as four
	// single brackets.
	toks := lexAll(t, "[[cowned]]")
	assert.Equal(t, []Kind{KindDLBracket, KindIdent, KindDRBracket, KindEOF}, kindsOf(toks))
	assert.Equal(t, "cowned", toks[1].Lexeme)
}

func Test_Next_KeywordsAreCaseInsensitiveAndStoredUpper(t *testing.T) {
	testCases := []struct {
		input  string
		expect Kind
	}{
		{"class", KindClass},
		{"CLASS", KindClass},
		{"Class", KindClass},
		{"enum", KindEnum},
		{"union", KindUnion},
		{"using", KindUsing},
		{"public", KindPublic},
		{"private", KindPrivate},
		{"include", KindInclude},
		{"define", KindDefine},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			toks := lexAll(t, tc.input)
			require.Len(t, toks, 2)
			assert.Equal(t, tc.expect, toks[0].Kind)
			assert.Equal(t, strings.ToUpper(tc.input), toks[0].Lexeme, "keyword lexemes are stored upper-cased")
		})
	}
}

func Test_Next_IdentifiersKeepTheirSpelling(t *testing.T) {
	toks := lexAll(t, "myNode _priv x2")
	require.Len(t, toks, 4)
	assert.Equal(t, "myNode", toks[0].Lexeme)
	assert.Equal(t, "_priv", toks[1].Lexeme)
	assert.Equal(t, "x2", toks[2].Lexeme)
}

func Test_Next_SkipsLineComments(t *testing.T) {
	toks := lexAll(t, "class // a comment to end of line\nident")
	assert.Equal(t, []Kind{KindClass, KindIdent, KindEOF}, kindsOf(toks))
}

func Test_Next_TracksLineAndColumn(t *testing.T) {
	toks := lexAll(t, "class X\n  ;")
	require.Len(t, toks, 4)
	assert.Equal(t, Position{Line: 1, Column: 1}, toks[0].Pos)
	assert.Equal(t, Position{Line: 1, Column: 7}, toks[1].Pos)
	assert.Equal(t, Position{Line: 2, Column: 3}, toks[2].Pos)
}

func Test_Next_UnexpectedCharacterFails(t *testing.T) {
	lx := New(strings.NewReader("class @"))
	_, err := lx.Next()
	require.NoError(t, err)
	_, err = lx.Next()
	assert.Error(t, err)
}

func Test_NextVerbatim_StopsAtTerminatorWithoutConsuming(t *testing.T) {
	lx := New(strings.NewReader("int x = 0, more"))
	tok, err := lx.NextVerbatim(KindVerbatim, nil, nil, map[byte]bool{',': true})
	require.NoError(t, err)
	assert.Equal(t, KindVerbatim, tok.Kind)
	assert.Equal(t, "int x = 0", tok.Lexeme)

	// the ',' terminator is left unconsumed for the caller to read.
	next, err := lx.Next()
	require.NoError(t, err)
	assert.Equal(t, KindComma, next.Kind)
}

func Test_NextVerbatim_BalancesNestedDelimiters(t *testing.T) {
	lx := New(strings.NewReader("if (x) { y(); } done}rest"))
	tok, err := lx.NextVerbatim(KindVerbatim,
		map[byte]bool{'{': true}, map[byte]bool{'}': true}, map[byte]bool{'}': true})
	require.NoError(t, err)
	assert.Equal(t, "if (x) { y(); } done", tok.Lexeme)
}

func Test_NextVerbatim_MultipleTerminators(t *testing.T) {
	lx := New(strings.NewReader("a + b)tail"))
	tok, err := lx.NextVerbatim(KindVerbatim, nil, nil, map[byte]bool{'\n': true, ',': true, ')': true})
	require.NoError(t, err)
	assert.Equal(t, "a + b", tok.Lexeme)
}

func Test_NextVerbatim_RunningOffEndOfInputFails(t *testing.T) {
	lx := New(strings.NewReader("never terminated"))
	_, err := lx.NextVerbatim(KindVerbatim, nil, nil, map[byte]bool{'}': true})
	assert.Error(t, err)
}
