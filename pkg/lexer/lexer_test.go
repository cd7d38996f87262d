package lexer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/lexer"
)

func TestLexerStream(t *testing.T) {
	ctx := context.Background()
	buffer := "<p>{item.name}</p>{! c !}"

	l := lexer.New(nil)
	l.Start(ctx, buffer, 0, len(buffer), 0)

	type entry struct {
		Type  *elements.ElementType
		Start int
		End   int
	}
	var got []entry
	for l.TokenType() != nil {
		got = append(got, entry{l.TokenType(), l.TokenStart(), l.TokenEnd()})
		l.Advance()
	}

	expected := []entry{
		{elements.Content, 0, 3},
		{elements.TypeFor("#expression"), 3, 14},
		{elements.Content, 14, 18},
		{elements.Comment, 18, 25},
	}
	assert.Equal(t, expected, got)
}

func TestLexerSentinels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		buffer string
		start  int
		end    int
	}{
		{name: "empty", buffer: "", start: 0, end: 0},
		{name: "non_empty", buffer: "a{b}c", start: 0, end: 5},
		{name: "sub_range", buffer: "xx{b}yy", start: 2, end: 5},
		{name: "bad_range", buffer: "abc", start: 2, end: 10},
		{name: "invalid_utf8", buffer: "a\xff", start: 0, end: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lexer.New(nil)
			l.Start(ctx, tt.buffer, tt.start, tt.end, 0)
			for l.TokenType() != nil {
				l.Advance()
			}
			assert.Nil(t, l.TokenType())
			assert.Nil(t, l.CurrentToken())
			assert.Equal(t, -1, l.TokenStart())
			assert.Equal(t, -1, l.TokenEnd())
			assert.Equal(t, tt.end, l.BufferEnd())
		})
	}
}

func TestLexerSubRangeOffsetsAreAbsolute(t *testing.T) {
	buffer := "xx{b}yy"
	l := lexer.New(nil)
	l.Start(context.Background(), buffer, 2, 5, 0)

	require.NotNil(t, l.TokenType())
	assert.Equal(t, 2, l.TokenStart())
	assert.Equal(t, 5, l.TokenEnd())
	assert.Equal(t, "{b}", buffer[l.TokenStart():l.TokenEnd()])
}

func TestLexerRestore(t *testing.T) {
	buffer := "a{b}c{d}e"
	l := lexer.New(nil)
	l.Start(context.Background(), buffer, 0, len(buffer), 0)

	l.Advance()
	saved := l.CurrentPosition()
	assert.Equal(t, 1, saved.State())
	assert.Equal(t, 1, saved.Offset())

	l.Advance()
	l.Advance()
	assert.Equal(t, 5, l.TokenStart())

	l.Restore(saved)
	assert.Equal(t, 1, l.State())
	assert.Equal(t, 1, l.TokenStart())
	assert.Equal(t, "{b}", l.CurrentToken().Text())
}

func TestLexerInitialState(t *testing.T) {
	buffer := "a{b}c"
	l := lexer.New(nil)
	l.Start(context.Background(), buffer, 0, len(buffer), 2)

	assert.Equal(t, 4, l.TokenStart())
	assert.Same(t, elements.Content, l.TokenType())
}

func TestTokenize(t *testing.T) {
	tokens := lexer.Tokenize(context.Background(), "a{b}")
	require.Len(t, tokens, 2)
	assert.Equal(t, "a", tokens[0].Text)
	assert.Equal(t, "{b}", tokens[1].Text)
	assert.Equal(t, "#expression", tokens[1].Type.Name())
}
