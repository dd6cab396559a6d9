package lex

import (
	"bufio"
	"io"

	"github.com/dekarrin/natsuki/internal/ngerrors"
)

// Lexer turns a byte stream into a stream of Tokens. Normal-mode scanning is
// driven by Next; balanced-delimiter verbatim runs are driven by
// NextVerbatim, which the parser calls whenever it needs to capture a `{...}`
// code block, a default-value expression, or an `#include` argument as a
// single opaque lexeme.
//
// A Lexer is not safe for concurrent use; it holds the one cursor into the
// source text that the parser drives single-threadedly.
type Lexer struct {
	r    *bufio.Reader
	line int
	col  int
	done bool
}

// New creates a Lexer reading from r.
func New(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), line: 1, col: 1}
}

func (lx *Lexer) pos() Position {
	return Position{Line: lx.line, Column: lx.col}
}

// readByte reads the next byte, tracking line/column. Returns (0, io.EOF) at
// end of input.
func (lx *Lexer) readByte() (byte, error) {
	b, err := lx.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return b, nil
}

func (lx *Lexer) unreadByte() {
	_ = lx.r.UnreadByte()
	// col/line bookkeeping for unread is only ever used to push back a
	// single '/' just consumed while checking for a `//` comment, so a
	// simple decrement is sufficient.
	if lx.col > 1 {
		lx.col--
	}
}

func (lx *Lexer) peekByte() (byte, bool) {
	b, err := lx.r.Peek(1)
	if err != nil || len(b) == 0 {
		return 0, false
	}
	return b[0], true
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// Next produces the next token in normal mode: it skips whitespace and `//`
// line comments, recognizes punctuation and the two-character tokens `->`,
// `[[`, `]]`, and reads identifiers, upper-casing and reclassifying them as
// keyword tokens where they match the reserved-word table.
func (lx *Lexer) Next() (Token, error) {
	if err := lx.skipInsignificant(); err != nil {
		return Token{}, err
	}

	startPos := lx.pos()

	b, err := lx.readByte()
	if err == io.EOF {
		return Token{Kind: KindEOF, Pos: startPos}, nil
	}
	if err != nil {
		return Token{}, err
	}

	switch b {
	case '<':
		return Token{Kind: KindLAngle, Lexeme: "<", Pos: startPos}, nil
	case '>':
		return Token{Kind: KindRAngle, Lexeme: ">", Pos: startPos}, nil
	case '(':
		return Token{Kind: KindLParen, Lexeme: "(", Pos: startPos}, nil
	case ')':
		return Token{Kind: KindRParen, Lexeme: ")", Pos: startPos}, nil
	case '{':
		return Token{Kind: KindLBrace, Lexeme: "{", Pos: startPos}, nil
	case '}':
		return Token{Kind: KindRBrace, Lexeme: "}", Pos: startPos}, nil
	case '#':
		return Token{Kind: KindHash, Lexeme: "#", Pos: startPos}, nil
	case ':':
		return Token{Kind: KindColon, Lexeme: ":", Pos: startPos}, nil
	case '&':
		return Token{Kind: KindAmp, Lexeme: "&", Pos: startPos}, nil
	case '*':
		return Token{Kind: KindStar, Lexeme: "*", Pos: startPos}, nil
	case ',':
		return Token{Kind: KindComma, Lexeme: ",", Pos: startPos}, nil
	case ';':
		return Token{Kind: KindSemi, Lexeme: ";", Pos: startPos}, nil
	case '?':
		return Token{Kind: KindQuestion, Lexeme: "?", Pos: startPos}, nil
	case '\'':
		return Token{Kind: KindSQuote, Lexeme: "'", Pos: startPos}, nil
	case '"':
		return Token{Kind: KindDQuote, Lexeme: `"`, Pos: startPos}, nil
	case '=':
		return Token{Kind: KindEquals, Lexeme: "=", Pos: startPos}, nil
	case '-':
		if nb, ok := lx.peekByte(); ok && nb == '>' {
			lx.mustReadByte()
			return Token{Kind: KindArrow, Lexeme: "->", Pos: startPos}, nil
		}
		return Token{}, ngerrors.UnexpectedCharacter(string(b), startPos.Line, startPos.Column)
	case '[':
		if nb, ok := lx.peekByte(); ok && nb == '[' {
			lx.mustReadByte()
			return Token{Kind: KindDLBracket, Lexeme: "[[", Pos: startPos}, nil
		}
		return Token{Kind: KindLBracket, Lexeme: "[", Pos: startPos}, nil
	case ']':
		if nb, ok := lx.peekByte(); ok && nb == ']' {
			lx.mustReadByte()
			return Token{Kind: KindDRBracket, Lexeme: "]]", Pos: startPos}, nil
		}
		return Token{Kind: KindRBracket, Lexeme: "]", Pos: startPos}, nil
	}

	if isIdentStart(b) {
		lexeme := []byte{b}
		for {
			nb, ok := lx.peekByte()
			if !ok || !isIdentCont(nb) {
				break
			}
			lx.mustReadByte()
			lexeme = append(lexeme, nb)
		}
		word := string(lexeme)
		upper := toUpper(word)
		if kw, ok := keywords[upper]; ok {
			return Token{Kind: kw, Lexeme: upper, Pos: startPos}, nil
		}
		return Token{Kind: KindIdent, Lexeme: word, Pos: startPos}, nil
	}

	return Token{}, ngerrors.UnexpectedCharacter(string(b), startPos.Line, startPos.Column)
}

// mustReadByte consumes a byte already confirmed present by peekByte.
func (lx *Lexer) mustReadByte() {
	_, _ = lx.readByte()
}

// skipInsignificant skips whitespace and `//` line comments.
func (lx *Lexer) skipInsignificant() error {
	for {
		b, ok := lx.peekByte()
		if !ok {
			return nil
		}
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			lx.mustReadByte()
		case b == '/':
			lx.mustReadByte()
			nb, ok := lx.peekByte()
			if ok && nb == '/' {
				for {
					cb, cerr := lx.readByte()
					if cerr == io.EOF || cb == '\n' {
						break
					}
				}
				continue
			}
			lx.unreadByte()
			return nil
		default:
			return nil
		}
	}
}

func toUpper(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// NextVerbatim accumulates characters into a single verbatim lexeme of the
// caller-supplied kind until it sees a byte in until with the nesting
// counter at zero. Every byte in nestIn increments the counter; every byte
// in nestOut decrements it. The terminator byte is not consumed, so the
// caller (the parser) can inspect which terminator ended the run.
func (lx *Lexer) NextVerbatim(kind Kind, nestIn, nestOut, until map[byte]bool) (Token, error) {
	startPos := lx.pos()
	var lexeme []byte
	depth := 0

	for {
		b, ok := lx.peekByte()
		if !ok {
			return Token{}, ngerrors.UnexpectedEndOfInput(startPos.Line, startPos.Column)
		}
		if until[b] && depth == 0 {
			break
		}
		lx.mustReadByte()
		if nestIn[b] {
			depth++
		} else if nestOut[b] {
			depth--
		}
		lexeme = append(lexeme, b)
	}

	return Token{Kind: kind, Lexeme: string(lexeme), Pos: startPos}, nil
}
