// Package lexer presents the top-level nodes of a parsed template as a flat token
// stream for host editors that highlight one region at a time.
package lexer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/template"
)

// Position is a saved cursor. It is a plain value and costs nothing to copy.
type Position struct {
	index  int
	offset int
}

// Offset is the start offset of the token the cursor pointed at, or -1 at end of stream.
func (p Position) Offset() int {
	return p.offset
}

// State is the cursor index captured by the position.
func (p Position) State() int {
	return p.index
}

// Token is one entry of the stream as returned by Tokenize.
type Token struct {
	Type  *elements.ElementType
	Start int
	End   int
	Text  string
}

// Lexer walks the top-level nodes of buffer[start:end]. It is not safe for concurrent
// use; each editor region should own one.
type Lexer struct {
	parser *template.Parser

	buffer      string
	startOffset int
	endOffset   int
	nodes       []*template.Node
	cursor      int
}

// New returns a Lexer that parses with p. A nil parser uses the default options.
func New(p *template.Parser) *Lexer {
	if p == nil {
		p = template.NewParser(template.DefaultOptions())
	}
	return &Lexer{parser: p}
}

// Start re-parses buffer[startOffset:endOffset] and moves the cursor to initialState.
// Any failure leaves an empty stream rather than an error so highlighting degrades.
func (l *Lexer) Start(ctx context.Context, buffer string, startOffset, endOffset, initialState int) {
	l.buffer = buffer
	l.startOffset = startOffset
	l.endOffset = endOffset
	l.nodes = nil
	l.cursor = initialState

	if startOffset < 0 || endOffset > len(buffer) || startOffset > endOffset {
		zerolog.Ctx(ctx).Warn().
			Int("start", startOffset).
			Int("end", endOffset).
			Int("buffer_len", len(buffer)).
			Msg("lexer range outside buffer, producing empty stream")
		return
	}

	tmpl, err := l.parser.Parse(ctx, buffer[startOffset:endOffset])
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("lexer parse failed, producing empty stream")
		return
	}

	l.nodes = tmpl.Children()
}

// Advance moves to the next token. It does not check bounds; callers stop once
// TokenType returns nil.
func (l *Lexer) Advance() {
	l.cursor++
}

// CurrentToken returns the node under the cursor, or nil at end of stream.
func (l *Lexer) CurrentToken() *template.Node {
	if l.cursor < 0 || l.cursor >= len(l.nodes) {
		return nil
	}
	return l.nodes[l.cursor]
}

// TokenType returns the element type of the current token, or nil at end of stream.
func (l *Lexer) TokenType() *elements.ElementType {
	n := l.CurrentToken()
	if n == nil {
		return nil
	}
	return elements.TypeFor(n.Name())
}

// TokenStart returns the absolute start offset of the current token, or -1.
func (l *Lexer) TokenStart() int {
	n := l.CurrentToken()
	if n == nil {
		return -1
	}
	return l.startOffset + n.Start()
}

// TokenEnd returns the absolute end offset of the current token, or -1.
func (l *Lexer) TokenEnd() int {
	n := l.CurrentToken()
	if n == nil {
		return -1
	}
	return l.startOffset + n.End()
}

func (l *Lexer) State() int {
	return l.cursor
}

func (l *Lexer) Buffer() string {
	return l.buffer
}

func (l *Lexer) BufferEnd() int {
	return l.endOffset
}

func (l *Lexer) CurrentPosition() Position {
	return Position{index: l.cursor, offset: l.TokenStart()}
}

// Restore moves the cursor back to a position captured by CurrentPosition.
func (l *Lexer) Restore(p Position) {
	l.cursor = p.index
}

// Tokenize lexes the whole text and collects the stream.
func Tokenize(ctx context.Context, text string) []Token {
	l := New(nil)
	l.Start(ctx, text, 0, len(text), 0)

	var tokens []Token
	for typ := l.TokenType(); typ != nil; typ = l.TokenType() {
		tokens = append(tokens, Token{
			Type:  typ,
			Start: l.TokenStart(),
			End:   l.TokenEnd(),
			Text:  l.CurrentToken().Text(),
		})
		l.Advance()
	}
	return tokens
}
