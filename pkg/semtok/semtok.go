/*
Package semtok provides semantic token support for Qute templates.

Core Functions:
-------------

	       Input
	         |
	         v
	  +------------+
	  | Template   |
	  | Text       |
	  +------------+
	         |
	   Build & Walk
	         |
	         v
	  +------------+
	  | Syntax     |
	  | Leaves     |
	  +------------+
	         |
	Convert to Tokens
	         |
	         v
	  +------------+
	  | Semantic   |
	  | Tokens     |
	  +------------+
*/
package semtok

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/syntax"
	"github.com/walteh/goqute/pkg/template"
)

type mapping struct {
	typ      TokenType
	modifier TokenModifier
}

// leafTokens maps leaf names to token types. Leaves not listed produce no token.
var leafTokens = map[string]mapping{
	template.NameObjectPart:      {typ: TokenVariable},
	template.NamePropertyPart:    {typ: TokenProperty},
	template.NameMethodPart:      {typ: TokenMethod},
	template.NameInfixMethodPart: {typ: TokenFunction},
	template.NameNamespacePart:   {typ: TokenNamespace, modifier: ModifierStatic},
	template.NameSectionTag:      {typ: TokenKeyword},
	template.NameOperator:        {typ: TokenOperator},
	template.NameAssign:          {typ: TokenOperator},
	template.NameStringLiteral:   {typ: TokenString, modifier: ModifierReadonly},
	template.NameNumberLiteral:   {typ: TokenNumber, modifier: ModifierReadonly},
	template.NameComment:         {typ: TokenComment},
	template.NameParameterType:   {typ: TokenTypeName},
	template.NameParameterName:   {typ: TokenParameter, modifier: ModifierDeclaration},
}

var byType = func() map[*elements.ElementType]mapping {
	m := make(map[*elements.ElementType]mapping, len(leafTokens))
	for name, tok := range leafTokens {
		m[elements.TypeFor(name)] = tok
	}
	return m
}()

// GetTokensForText returns semantic tokens for the given template text, parsed with p.
// A nil parser uses the default options.
// This is the main entry point for semantic token generation.
//
//	Example:
//	   tokens, err := GetTokensForText(ctx, nil, []byte("{item.name}"))
//	   if err != nil {
//	       return err
//	   }
//	   // Use tokens...
func GetTokensForText(ctx context.Context, p *template.Parser, content []byte) ([]Token, error) {
	tree, err := syntax.Build(ctx, p, string(content))
	if err != nil {
		return nil, errors.Errorf("building tree for semantic tokens: %w", err)
	}
	return tokensFor(ctx, tree, nil), nil
}

// GetTokensForRange returns semantic tokens overlapping a range of the template.
// This is used for incremental updates in editors.
//
//	Example:
//	   tokens, err := GetTokensForRange(ctx, nil, content, &position.RawPosition{...})
//	   if err != nil {
//	       return err
//	   }
//	   // Use tokens...
func GetTokensForRange(ctx context.Context, p *template.Parser, content []byte, ranged *position.RawPosition) ([]Token, error) {
	if ranged == nil {
		return nil, errors.Errorf("range is nil")
	}
	tree, err := syntax.Build(ctx, p, string(content))
	if err != nil {
		return nil, errors.Errorf("building tree for semantic tokens: %w", err)
	}
	return tokensFor(ctx, tree, ranged), nil
}

func tokensFor(ctx context.Context, tree *syntax.Tree, ranged *position.RawPosition) []Token {
	tokens := make([]Token, 0)
	for _, leaf := range syntax.Leaves(tree.Root()) {
		m, ok := byType[leaf.Type()]
		if !ok {
			continue
		}
		tok := Token{
			Type:     m.typ,
			Modifier: m.modifier,
			Range:    position.NewBasicPosition(leaf.Text(), leaf.TextRange().Start),
		}
		if ranged != nil && !tok.Range.HasRangeOverlapWith(*ranged) {
			continue
		}
		tokens = append(tokens, tok)
	}

	zerolog.Ctx(ctx).Debug().Int("tokens", len(tokens)).Msg("generated semantic tokens")
	return tokens
}
