/*
Token Types and Modifiers:
------------------------
This file defines the core types used for semantic token generation.

Token Types are represented as follows:

	+-------------+     +-----------+
	| TokenType   | --> | Position  |
	+-------------+     +-----------+
	      |                  |
	      v                  v
	[Variable,        [Offset, Text]
	 Property,
	 Method,
	 etc.]

Each token carries both its type and position information.
*/
package semtok

import (
	"github.com/walteh/goqute/pkg/position"
)

// TokenType represents the semantic meaning of a token
type TokenType uint32

const (
	// TokenVariable represents the object an expression starts from (e.g., item)
	TokenVariable TokenType = iota + 1

	// TokenFunction represents an infix method (e.g., or, ?:)
	TokenFunction

	// TokenKeyword represents a section name (e.g., if, for)
	TokenKeyword

	// TokenOperator represents an operator or assignment
	TokenOperator

	// TokenString represents a string literal
	TokenString

	// TokenComment represents a template comment
	TokenComment

	// TokenNumber represents a numeric literal (e.g., 0, 1.5)
	TokenNumber

	// TokenProperty represents a property access (e.g., .name)
	TokenProperty

	// TokenMethod represents a method call (e.g., .getAll())
	TokenMethod

	// TokenNamespace represents a namespace prefix (e.g., uri:)
	TokenNamespace

	// TokenTypeName represents a declared parameter type
	TokenTypeName

	// TokenParameter represents a declared or assigned name
	TokenParameter
)

// TokenModifier represents additional characteristics of a token
type TokenModifier uint32

const (
	// ModifierNone indicates no special characteristics
	ModifierNone TokenModifier = 0

	// ModifierDeclaration indicates first occurrence/declaration
	ModifierDeclaration TokenModifier = 1 << iota

	// ModifierReadonly indicates the token is constant/readonly
	ModifierReadonly

	// ModifierStatic indicates the token is static/global
	ModifierStatic
)

// Token represents a semantic token with its type, modifiers, and position
type Token struct {
	// Type indicates the semantic meaning of the token
	Type TokenType

	// Modifier indicates any special characteristics
	Modifier TokenModifier

	// Range indicates the token's position in the source
	Range position.RawPosition
}

// String returns a human-readable representation of the token type
func (t TokenType) String() string {
	switch t {
	case TokenVariable:
		return "variable"
	case TokenFunction:
		return "function"
	case TokenKeyword:
		return "keyword"
	case TokenOperator:
		return "operator"
	case TokenString:
		return "string"
	case TokenComment:
		return "comment"
	case TokenNumber:
		return "number"
	case TokenProperty:
		return "property"
	case TokenMethod:
		return "method"
	case TokenNamespace:
		return "namespace"
	case TokenTypeName:
		return "type"
	case TokenParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// String returns a human-readable representation of the token modifier
func (m TokenModifier) String() string {
	switch m {
	case ModifierNone:
		return "none"
	case ModifierDeclaration:
		return "declaration"
	case ModifierReadonly:
		return "readonly"
	case ModifierStatic:
		return "static"
	default:
		return "unknown"
	}
}
