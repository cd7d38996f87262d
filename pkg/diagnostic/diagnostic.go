package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/pkg/expr"
	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/syntax"
	"github.com/walteh/goqute/pkg/template"
)

// Generator is responsible for generating diagnostics from a parsed template
type Generator interface {
	// Generate generates diagnostics for the tree's template
	Generate(ctx context.Context, tree *syntax.Tree) (*Diagnostics, error)
}

// Diagnostics represents diagnostic information that can be formatted in different ways
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Hints    []Diagnostic
}

// Len returns the total number of diagnostics
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Hints)
}

// All returns errors, warnings and hints in that order
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)
	return append(all, d.Hints...)
}

// Diagnostic represents a single diagnostic message. Lines and columns are one-based.
type Diagnostic struct {
	Message  string
	Line     int
	Column   int
	EndLine  int
	EndCol   int
	Severity DiagnosticSeverity
	Code     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
	Hint    DiagnosticSeverity = "hint"
)

// CodeUnresolvedPart marks an expression part with no object to resolve against.
const CodeUnresolvedPart = "unresolved-part"

var problemSeverity = map[template.ProblemCode]DiagnosticSeverity{
	template.ProblemUnclosedExpression: Error,
	template.ProblemUnclosedSection:    Error,
	template.ProblemUnclosedTag:        Error,
	template.ProblemUnclosedComment:    Error,
	template.ProblemUnclosedCData:      Error,
	template.ProblemUnclosedBracket:    Error,
	template.ProblemMissingSectionTag:  Error,
	template.ProblemOrphanEndTag:       Warning,
}

// DefaultGenerator is the default implementation of Generator
type DefaultGenerator struct {
	// TabWidth is used for column calculation; zero means one column per tab.
	TabWidth int
}

// NewDefaultGenerator creates a new DefaultGenerator
func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{TabWidth: 1}
}

// Generate implements Generator
func (g *DefaultGenerator) Generate(ctx context.Context, tree *syntax.Tree) (*Diagnostics, error) {
	if tree == nil {
		return nil, errors.Errorf("syntax tree is nil")
	}

	text := tree.Text()
	diagnostics := &Diagnostics{
		Errors:   make([]Diagnostic, 0),
		Warnings: make([]Diagnostic, 0),
	}

	for _, p := range tree.Template().Problems() {
		d := g.at(text, p.Range, p.Message)
		d.Code = string(p.Code)
		d.Severity = problemSeverity[p.Code]
		if d.Severity == Warning {
			diagnostics.Warnings = append(diagnostics.Warnings, d)
		} else {
			d.Severity = Error
			diagnostics.Errors = append(diagnostics.Errors, d)
		}
	}

	for _, part := range expr.Parts(tree.Root()) {
		if part.Kind() == expr.Object || part.RootPart() != nil {
			continue
		}
		d := g.at(text, part.TextRange(), fmt.Sprintf("%s %q has no object to resolve against", part.Kind(), part.Text()))
		d.Code = CodeUnresolvedPart
		d.Severity = Hint
		diagnostics.Hints = append(diagnostics.Hints, d)
	}

	zerolog.Ctx(ctx).Debug().
		Str("template_id", tree.Generation().String()).
		Int("errors", len(diagnostics.Errors)).
		Int("warnings", len(diagnostics.Warnings)).
		Int("hints", len(diagnostics.Hints)).
		Msg("generated diagnostics")

	return diagnostics, nil
}

func (g *DefaultGenerator) at(text string, rng position.TextRange, message string) Diagnostic {
	tab := max(g.TabWidth, 1)
	line, col := position.LineAndColumn(text, rng.Start, tab)
	endLine, endCol := position.LineAndColumn(text, rng.End, tab)
	return Diagnostic{
		Message: message,
		Line:    line + 1,
		Column:  col + 1,
		EndLine: endLine + 1,
		EndCol:  endCol + 1,
	}
}

// GetDiagnostics builds text with the default parser and generates its diagnostics
func GetDiagnostics(ctx context.Context, text string) (*Diagnostics, error) {
	tree, err := syntax.Build(ctx, nil, text)
	if err != nil {
		return nil, errors.Errorf("building tree for diagnostics: %w", err)
	}
	return NewDefaultGenerator().Generate(ctx, tree)
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

// NewVSCodeFormatter creates a new VSCodeFormatter
func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePlace struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePlace `json:"start"`
	End   vscodePlace `json:"end"`
}

type vscodeDiagnostic struct {
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Code     string      `json:"code,omitempty"`
	Range    vscodeRange `json:"range"`
}

var vscodeSeverity = map[DiagnosticSeverity]int{
	Error:   1,
	Warning: 2,
	Info:    3,
	Hint:    4,
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	result := make([]vscodeDiagnostic, 0, diagnostics.Len())
	for _, d := range diagnostics.All() {
		// VSCode is 0-based
		result = append(result, vscodeDiagnostic{
			Severity: vscodeSeverity[d.Severity],
			Message:  d.Message,
			Code:     d.Code,
			Range: vscodeRange{
				Start: vscodePlace{Line: d.Line - 1, Character: d.Column - 1},
				End:   vscodePlace{Line: d.EndLine - 1, Character: d.EndCol - 1},
			},
		})
	}

	return json.Marshal(result)
}
