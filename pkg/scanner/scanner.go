// Package scanner splits Qute template text into raw tokens.
//
// Lexer State Machine:
//
//	┌──────────────────┐  "{!"  ┌─────────┐
//	│       Root       │ ─────> │ Comment │ ── "!}" ──> Root
//	│                  │  "{|"  ├─────────┤
//	│  [Text outside   │ ─────> │  CData  │ ── "|}" ──> Root
//	│   delimiters]    │ "{#"   ├─────────┤
//	│                  │ "{/"   │   Tag   │ ── "}" or "/}" ──> Root
//	│                  │ "{@" > ├─────────┤
//	│                  │  "{x"  │  Expr   │ ── "}" ──> Root
//	└──────────────────┘ ─────> └─────────┘
//
// A "{" followed by whitespace, "}" or the end of input is plain text, and so is an
// escaped "\{".
package scanner

import (
	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

// Token names, as registered with the lexer definition.
const (
	Text           = "Text"
	CommentStart   = "CommentStart"
	CommentText    = "CommentText"
	CommentEnd     = "CommentEnd"
	CDataStart     = "CDataStart"
	CDataText      = "CDataText"
	CDataEnd       = "CDataEnd"
	SectionStart   = "SectionStart"
	SectionEnd     = "SectionEnd"
	ParamDeclStart = "ParamDeclStart"
	ExprStart      = "ExprStart"
	ExprEnd        = "ExprEnd"
	SelfClose      = "SelfClose"
	Whitespace     = "Whitespace"
	String         = "String"
	Number         = "Number"
	Ident          = "Ident"
	Colon          = "Colon"
	Dot            = "Dot"
	Comma          = "Comma"
	Assign         = "Assign"
	Operator       = "Operator"
	OpenParen      = "OpenParen"
	CloseParen     = "CloseParen"
	OpenSquare     = "OpenSquare"
	CloseSquare    = "CloseSquare"
	Char           = "Char"
)

func expressionRules(closers ...lexer.Rule) []lexer.Rule {
	rules := append([]lexer.Rule{}, closers...)
	return append(rules, []lexer.Rule{
		{Name: Whitespace, Pattern: `\s+`, Action: nil},
		{Name: String, Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`, Action: nil},
		{Name: Number, Pattern: `\d+(?:\.\d+)?[lLfFdD]?`, Action: nil},
		{Name: Ident, Pattern: `[\p{L}_$][\p{L}\p{N}_$]*`, Action: nil},
		{Name: Operator, Pattern: `\?:|==|!=|>=|<=|&&|\|\||[!?<>+\-*/%|&^~]`, Action: nil},
		{Name: Assign, Pattern: `=`, Action: nil},
		{Name: Colon, Pattern: `:`, Action: nil},
		{Name: Dot, Pattern: `\.`, Action: nil},
		{Name: Comma, Pattern: `,`, Action: nil},
		{Name: OpenParen, Pattern: `\(`, Action: nil},
		{Name: CloseParen, Pattern: `\)`, Action: nil},
		{Name: OpenSquare, Pattern: `\[`, Action: nil},
		{Name: CloseSquare, Pattern: `\]`, Action: nil},
		{Name: Char, Pattern: `[\s\S]`, Action: nil},
	}...)
}

var (
	// Rules defines the lexer rules for Qute templates
	Rules = lexer.Rules{
		"Root": {
			{Name: CommentStart, Pattern: `\{!`, Action: lexer.Push("Comment")},
			{Name: CDataStart, Pattern: `\{\|`, Action: lexer.Push("CData")},
			{Name: SectionStart, Pattern: `\{#`, Action: lexer.Push("Tag")},
			{Name: SectionEnd, Pattern: `\{/`, Action: lexer.Push("Tag")},
			{Name: ParamDeclStart, Pattern: `\{@`, Action: lexer.Push("Tag")},
			{Name: Text, Pattern: `(?:[^{\\]+|\\[\s\S]?|\{[\s}]|\{$)+`, Action: nil},
			{Name: ExprStart, Pattern: `\{`, Action: lexer.Push("Expression")},
		},
		"Comment": {
			{Name: CommentEnd, Pattern: `!\}`, Action: lexer.Pop()},
			{Name: CommentText, Pattern: `[^!]+|!`, Action: nil},
		},
		"CData": {
			{Name: CDataEnd, Pattern: `\|\}`, Action: lexer.Pop()},
			{Name: CDataText, Pattern: `[^|]+|\|`, Action: nil},
		},
		"Tag": expressionRules(
			lexer.Rule{Name: SelfClose, Pattern: `/\}`, Action: lexer.Pop()},
			lexer.Rule{Name: ExprEnd, Pattern: `\}`, Action: lexer.Pop()},
		),
		"Expression": expressionRules(
			lexer.Rule{Name: ExprEnd, Pattern: `\}`, Action: lexer.Pop()},
		),
	}

	// Definition is the stateful lexer for Qute templates
	Definition = lexer.MustStateful(Rules)

	names = func() map[lexer.TokenType]string {
		out := map[lexer.TokenType]string{}
		for name, typ := range Definition.Symbols() {
			out[typ] = name
		}
		return out
	}()
)

// Type returns the token type registered for name.
func Type(name string) lexer.TokenType {
	return Definition.Symbols()[name]
}

// Name returns the rule name of a token type, or "EOF".
func Name(typ lexer.TokenType) string {
	if typ == lexer.EOF {
		return "EOF"
	}
	return names[typ]
}

// Is reports whether tok was produced by the rule called name.
func Is(tok lexer.Token, name string) bool {
	return names[tok.Type] == name
}

// Scan tokenizes text. The trailing EOF token is not included.
func Scan(text string) ([]lexer.Token, error) {
	lex, err := Definition.LexString("", text)
	if err != nil {
		return nil, errors.Errorf("creating lexer: %w", err)
	}

	var tokens []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, errors.Errorf("scanning template: %w", err)
		}
		if tok.EOF() {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}
