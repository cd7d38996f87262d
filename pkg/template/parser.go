package template

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/scanner"
)

var (
	ErrInvalidUTF8 = errors.Base("template is not valid UTF-8")
	ErrMaxDepth    = errors.Base("template nesting is too deep")
)

// Options configures a Parser.
type Options struct {
	// MaxDepth bounds the combined nesting of sections and brackets.
	MaxDepth int
	// BlockLabels are section names that split the enclosing section instead of
	// opening a new one, like {#else}.
	BlockLabels []string
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:    128,
		BlockLabels: []string{"else", "case", "is"},
	}
}

// Parser turns template text into a Template. It holds no per-parse state and is safe
// for concurrent use.
type Parser struct {
	maxDepth int
	labels   map[string]bool
}

func NewParser(opts Options) *Parser {
	p := &Parser{
		maxDepth: opts.MaxDepth,
		labels:   make(map[string]bool, len(opts.BlockLabels)),
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultOptions().MaxDepth
	}
	for _, l := range opts.BlockLabels {
		p.labels[l] = true
	}
	return p
}

var defaultParser = NewParser(DefaultOptions())

// Parse parses text with the default options.
func Parse(ctx context.Context, text string) (*Template, error) {
	return defaultParser.Parse(ctx, text)
}

// Parse parses text into a new Template. Malformed constructs are recorded as problems;
// only invalid input encoding, scanner failures and excessive nesting return an error.
func (p *Parser) Parse(ctx context.Context, text string) (tmpl *Template, err error) {
	if !utf8.ValidString(text) {
		return nil, errors.WithStack(ErrInvalidUTF8)
	}

	tokens, err := scanner.Scan(text)
	if err != nil {
		return nil, errors.Errorf("parsing template: %w", err)
	}

	tmpl = &Template{ID: uuid.New(), text: text}
	tmpl.root = &Node{name: NameTemplate, start: 0, end: len(text), template: tmpl}

	s := &state{parser: p, tmpl: tmpl, tokens: tokens}

	defer s.recover(&tmpl, &err)

	s.parseBody(tmpl.root, nil)

	zerolog.Ctx(ctx).Debug().
		Str("template_id", tmpl.ID.String()).
		Int("tokens", len(tokens)).
		Int("nodes", len(tmpl.root.children)).
		Int("problems", len(tmpl.problems)).
		Msg("parsed template")

	return tmpl, nil
}

type parseFailure struct {
	err error
}

// state is the per-parse cursor over the scanned tokens.
type state struct {
	parser *Parser
	tmpl   *Template
	tokens []lexer.Token
	pos    int
	depth  int
}

func (s *state) fail(err error) {
	panic(parseFailure{err: err})
}

// recover turns a parseFailure panic into an error return.
func (s *state) recover(tmplp **Template, errp *error) {
	if r := recover(); r != nil {
		f, ok := r.(parseFailure)
		if !ok {
			panic(r)
		}
		*tmplp = nil
		*errp = f.err
	}
}

func (s *state) enter(at lexer.Token) {
	s.depth++
	if s.depth > s.parser.maxDepth {
		s.fail(errors.Errorf("%w: more than %d levels at offset %d", ErrMaxDepth, s.parser.maxDepth, at.Pos.Offset))
	}
}

func (s *state) leave() {
	s.depth--
}

func (s *state) eof() bool {
	return s.pos >= len(s.tokens)
}

func (s *state) peek() lexer.Token {
	return s.tokens[s.pos]
}

func (s *state) at(name string) bool {
	return !s.eof() && scanner.Is(s.tokens[s.pos], name)
}

func (s *state) next() lexer.Token {
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}

func (s *state) problem(code ProblemCode, rng position.TextRange, format string, args ...any) {
	s.tmpl.problems = append(s.tmpl.problems, Problem{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Range:   rng,
	})
}

func tokStart(tok lexer.Token) int {
	return tok.Pos.Offset
}

func tokEnd(tok lexer.Token) int {
	return tok.Pos.Offset + len(tok.Value)
}

// open appends an empty composite to parent. Its end grows as children are added.
func (s *state) open(parent *Node, name string, start int) *Node {
	n := &Node{name: name, start: start, end: start, parent: parent, template: s.tmpl}
	parent.children = append(parent.children, n)
	return n
}

func (s *state) leaf(parent *Node, name string, start, end int) *Node {
	n := s.open(parent, name, start)
	n.end = end
	grow(parent, end)
	return n
}

func (s *state) tokenLeaf(parent *Node, name string, tok lexer.Token) *Node {
	return s.leaf(parent, name, tokStart(tok), tokEnd(tok))
}

// grow extends n and its composite ancestors so they cover end.
func grow(n *Node, end int) {
	for ; n != nil && n.name != NameTemplate; n = n.parent {
		if n.end >= end {
			return
		}
		n.end = end
	}
}

// parseBody consumes nodes into parent until the input ends or an end tag closes one
// of the open sections.
func (s *state) parseBody(parent *Node, open []string) {
	for !s.eof() {
		tok := s.peek()
		switch scanner.Name(tok.Type) {
		case scanner.CommentStart:
			s.parseDelimited(parent, NameComment, scanner.CommentEnd, ProblemUnclosedComment)
		case scanner.CDataStart:
			s.parseDelimited(parent, NameCData, scanner.CDataEnd, ProblemUnclosedCData)
		case scanner.ExprStart:
			s.parseExpression(parent)
		case scanner.ParamDeclStart:
			s.parseParameterDeclaration(parent)
		case scanner.SectionStart:
			s.parseSection(parent, open)
		case scanner.SectionEnd:
			if closesAny(open, s.peekEndTag()) {
				return
			}
			end := s.parseEndTag(parent)
			s.problem(ProblemOrphanEndTag, end.TextRange(), "end tag %q does not close any section", end.Text())
		default:
			s.parseText(parent)
		}
	}
}

func (s *state) parseText(parent *Node) {
	first := s.next()
	last := first
	for s.at(scanner.Text) {
		last = s.next()
	}
	s.leaf(parent, NameText, tokStart(first), tokEnd(last))
}

func (s *state) parseDelimited(parent *Node, name string, endName string, code ProblemCode) {
	first := s.next()
	last := first
	for !s.eof() {
		last = s.next()
		if scanner.Is(last, endName) {
			s.leaf(parent, name, tokStart(first), tokEnd(last))
			return
		}
	}
	n := s.leaf(parent, name, tokStart(first), tokEnd(last))
	s.problem(code, n.TextRange(), "%s is not closed", name)
}

// collectUntilEnd returns the tokens up to the next ExprEnd or SelfClose. The closing
// token is left unconsumed.
func (s *state) collectUntilEnd() []lexer.Token {
	from := s.pos
	for !s.eof() && !s.at(scanner.ExprEnd) && !s.at(scanner.SelfClose) {
		s.pos++
	}
	return s.tokens[from:s.pos]
}

// closeDelimited emits the end delimiter of n if present and reports whether it was
// self-closing. A missing delimiter is recorded as code.
func (s *state) closeDelimited(n *Node, code ProblemCode) (selfClosed bool, closed bool) {
	if s.eof() {
		s.problem(code, n.TextRange(), "%s is not closed", n.name)
		return false, false
	}
	tok := s.next()
	s.tokenLeaf(n, NameEndDelimiter, tok)
	return scanner.Is(tok, scanner.SelfClose), true
}

func (s *state) parseExpression(parent *Node) {
	open := s.next()
	expr := s.open(parent, NameExpression, tokStart(open))
	s.tokenLeaf(expr, NameStartDelimiter, open)

	s.emitExpression(expr, s.collectUntilEnd())
	s.closeDelimited(expr, ProblemUnclosedExpression)
}

func (s *state) parseParameterDeclaration(parent *Node) {
	open := s.next()
	decl := s.open(parent, NameParameterDeclaration, tokStart(open))
	s.tokenLeaf(decl, NameStartDelimiter, open)

	group := 0
	for _, term := range splitTerms(s.collectUntilEnd(), true) {
		if term.whitespace {
			s.tokenLeaf(decl, NameWhitespace, term.tokens[0])
			continue
		}
		switch group {
		case 0:
			s.leaf(decl, NameParameterType, tokStart(term.tokens[0]), tokEnd(term.tokens[len(term.tokens)-1]))
		case 1:
			s.emitAssignment(decl, term.tokens, NameParameterName)
		default:
			s.emitChain(decl, term.tokens)
		}
		group++
	}

	s.closeDelimited(decl, ProblemUnclosedTag)
}

// peekEndTag returns the name in the end tag at the cursor, or "" for {/}.
func (s *state) peekEndTag() string {
	for i := s.pos + 1; i < len(s.tokens); i++ {
		switch {
		case scanner.Is(s.tokens[i], scanner.Whitespace):
			continue
		case scanner.Is(s.tokens[i], scanner.Ident):
			return s.tokens[i].Value
		}
		return ""
	}
	return ""
}

// peekStartTag returns the section name in the start tag at the cursor.
func (s *state) peekStartTag() string {
	if s.pos+1 < len(s.tokens) && scanner.Is(s.tokens[s.pos+1], scanner.Ident) {
		return s.tokens[s.pos+1].Value
	}
	return ""
}

func closesAny(open []string, tag string) bool {
	if tag == "" {
		return len(open) > 0
	}
	for _, o := range open {
		if o == tag {
			return true
		}
	}
	return false
}

func (s *state) parseSection(parent *Node, open []string) {
	tag := s.peekStartTag()
	if s.parser.labels[tag] {
		s.parseStartTag(parent)
		return
	}

	section := s.open(parent, NameSection, tokStart(s.peek()))
	startTag, selfClosed, closed := s.parseStartTag(section)
	if selfClosed || !closed {
		return
	}

	s.enter(s.tokens[s.pos-1])
	s.parseBody(section, append(open[:len(open):len(open)], tag))
	s.leave()

	if s.at(scanner.SectionEnd) {
		if end := s.peekEndTag(); end == "" || end == tag {
			s.parseEndTag(section)
			return
		}
	}
	s.problem(ProblemUnclosedSection, startTag.TextRange(), "section %q is not closed", tag)
}

func (s *state) parseStartTag(parent *Node) (n *Node, selfClosed bool, closed bool) {
	open := s.next()
	n = s.open(parent, NameSectionStartTag, tokStart(open))
	s.tokenLeaf(n, NameStartDelimiter, open)

	if s.at(scanner.Ident) {
		s.tokenLeaf(n, NameSectionTag, s.next())
	} else {
		s.problem(ProblemMissingSectionTag, n.TextRange(), "section start tag has no name")
	}

	for _, term := range splitTerms(s.collectUntilEnd(), false) {
		if term.whitespace {
			s.tokenLeaf(n, NameWhitespace, term.tokens[0])
			continue
		}
		param := s.open(n, NameParameter, tokStart(term.tokens[0]))
		s.emitAssignment(param, term.tokens, NameParameterName)
	}

	selfClosed, closed = s.closeDelimited(n, ProblemUnclosedTag)
	return n, selfClosed, closed
}

func (s *state) parseEndTag(parent *Node) *Node {
	open := s.next()
	n := s.open(parent, NameSectionEndTag, tokStart(open))
	s.tokenLeaf(n, NameStartDelimiter, open)

	named := false
	for _, tok := range s.collectUntilEnd() {
		switch {
		case scanner.Is(tok, scanner.Whitespace):
			s.tokenLeaf(n, NameWhitespace, tok)
		case scanner.Is(tok, scanner.Ident) && !named:
			s.tokenLeaf(n, NameSectionTag, tok)
			named = true
		default:
			s.tokenLeaf(n, NameUnknown, tok)
		}
	}

	s.closeDelimited(n, ProblemUnclosedTag)
	return n
}

type term struct {
	whitespace bool
	tokens     []lexer.Token
}

// splitTerms splits tokens on whitespace outside brackets. With angles set, "<" and ">"
// also nest, so that generic Java types stay in one term.
func splitTerms(tokens []lexer.Token, angles bool) []term {
	var terms []term
	depth := 0
	from := -1
	flush := func(to int) {
		if from >= 0 {
			terms = append(terms, term{tokens: tokens[from:to]})
			from = -1
		}
	}

	for i, tok := range tokens {
		switch {
		case opens(tok, angles):
			depth++
		case closes(tok, angles) && depth > 0:
			depth--
		case scanner.Is(tok, scanner.Whitespace) && depth == 0:
			flush(i)
			terms = append(terms, term{whitespace: true, tokens: tokens[i : i+1]})
			continue
		}
		if from < 0 {
			from = i
		}
	}
	flush(len(tokens))
	return terms
}

func opens(tok lexer.Token, angles bool) bool {
	return scanner.Is(tok, scanner.OpenParen) || scanner.Is(tok, scanner.OpenSquare) ||
		(angles && scanner.Is(tok, scanner.Operator) && tok.Value == "<")
}

func closes(tok lexer.Token, angles bool) bool {
	return scanner.Is(tok, scanner.CloseParen) || scanner.Is(tok, scanner.CloseSquare) ||
		(angles && scanner.Is(tok, scanner.Operator) && tok.Value == ">")
}

// matchBracket returns the index of the bracket closing tokens[i], or -1.
func matchBracket(tokens []lexer.Token, i int) int {
	depth := 0
	for j := i; j < len(tokens); j++ {
		switch {
		case opens(tokens[j], false):
			depth++
		case closes(tokens[j], false):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// emitExpression emits the content of an expression: a part chain, then alternating
// infix methods and infix parameters separated by whitespace.
func (s *state) emitExpression(parent *Node, tokens []lexer.Token) {
	index := 0
	for _, t := range splitTerms(tokens, false) {
		if t.whitespace {
			s.tokenLeaf(parent, NameWhitespace, t.tokens[0])
			continue
		}
		switch {
		case index == 0:
			s.emitChain(parent, t.tokens)
		case index%2 == 1 && len(t.tokens) == 1 && isInfixName(t.tokens[0]):
			s.tokenLeaf(parent, NameInfixMethodPart, t.tokens[0])
		case index%2 == 1:
			s.emitChain(parent, t.tokens)
		default:
			param := s.open(parent, NameInfixParameter, tokStart(t.tokens[0]))
			s.emitChain(param, t.tokens)
		}
		index++
	}
}

func isInfixName(tok lexer.Token) bool {
	return scanner.Is(tok, scanner.Ident) || scanner.Is(tok, scanner.Operator) || scanner.Is(tok, scanner.Colon)
}

// emitAssignment emits name=value when tokens hold a top-level "=", otherwise a chain.
func (s *state) emitAssignment(parent *Node, tokens []lexer.Token, nameKind string) {
	for i, tok := range tokens {
		if !scanner.Is(tok, scanner.Assign) {
			continue
		}
		if i > 0 {
			s.leaf(parent, nameKind, tokStart(tokens[0]), tokEnd(tokens[i-1]))
		}
		s.tokenLeaf(parent, NameAssign, tok)
		s.emitChain(parent, tokens[i+1:])
		return
	}

	if nameKind == NameParameterName && parent.name == NameParameterDeclaration {
		s.leaf(parent, nameKind, tokStart(tokens[0]), tokEnd(tokens[len(tokens)-1]))
		return
	}
	s.emitChain(parent, tokens)
}

// emitChain emits a part chain such as uri:Todos.getAll()[0].name.
func (s *state) emitChain(parent *Node, tokens []lexer.Token) {
	afterDot := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		wasAfterDot := afterDot
		afterDot = false

		switch scanner.Name(tok.Type) {
		case scanner.Ident:
			switch {
			case wasAfterDot && i+1 < len(tokens) && scanner.Is(tokens[i+1], scanner.OpenParen):
				s.tokenLeaf(parent, NameMethodPart, tok)
			case wasAfterDot:
				s.tokenLeaf(parent, NamePropertyPart, tok)
			case i+2 < len(tokens) && scanner.Is(tokens[i+1], scanner.Colon) && scanner.Is(tokens[i+2], scanner.Ident):
				s.tokenLeaf(parent, NameNamespacePart, tok)
				s.tokenLeaf(parent, NameColonSpace, tokens[i+1])
				s.tokenLeaf(parent, NameObjectPart, tokens[i+2])
				i += 2
			default:
				s.tokenLeaf(parent, NameObjectPart, tok)
			}
		case scanner.Number:
			if wasAfterDot {
				s.tokenLeaf(parent, NamePropertyPart, tok)
			} else {
				s.tokenLeaf(parent, NameNumberLiteral, tok)
			}
		case scanner.Dot:
			s.tokenLeaf(parent, NameDot, tok)
			afterDot = true
		case scanner.String:
			s.tokenLeaf(parent, NameStringLiteral, tok)
		case scanner.OpenParen, scanner.OpenSquare:
			i = s.emitBrackets(parent, tokens, i)
		case scanner.CloseParen, scanner.CloseSquare:
			s.tokenLeaf(parent, NameCloseBracket, tok)
		case scanner.Whitespace:
			s.tokenLeaf(parent, NameWhitespace, tok)
		case scanner.Operator, scanner.Colon:
			s.tokenLeaf(parent, NameOperator, tok)
		case scanner.Comma:
			s.tokenLeaf(parent, NameComma, tok)
		case scanner.Assign:
			s.tokenLeaf(parent, NameAssign, tok)
		default:
			s.tokenLeaf(parent, NameUnknown, tok)
		}
	}
}

// emitBrackets emits the bracket at tokens[i], its arguments and the matching close,
// returning the index of the last consumed token.
func (s *state) emitBrackets(parent *Node, tokens []lexer.Token, i int) int {
	open := tokens[i]
	s.tokenLeaf(parent, NameOpenBracket, open)

	j := matchBracket(tokens, i)
	inner := tokens[i+1:]
	if j >= 0 {
		inner = tokens[i+1 : j]
	}

	if len(inner) > 0 {
		s.enter(open)
		params := s.open(parent, NameMethodParameters, tokStart(inner[0]))
		s.emitArguments(params, inner)
		s.leave()
	}

	if j < 0 {
		s.problem(ProblemUnclosedBracket, position.NewTextRange(tokStart(open), tokEnd(open)), "bracket %q is not closed", open.Value)
		return len(tokens) - 1
	}
	s.tokenLeaf(parent, NameCloseBracket, tokens[j])
	return j
}

// emitArguments emits comma separated arguments, each a full expression.
func (s *state) emitArguments(parent *Node, tokens []lexer.Token) {
	depth := 0
	from := 0
	for i, tok := range tokens {
		switch {
		case opens(tok, false):
			depth++
		case closes(tok, false) && depth > 0:
			depth--
		case scanner.Is(tok, scanner.Comma) && depth == 0:
			s.emitExpression(parent, tokens[from:i])
			s.tokenLeaf(parent, NameComma, tok)
			from = i + 1
		}
	}
	s.emitExpression(parent, tokens[from:])
}
