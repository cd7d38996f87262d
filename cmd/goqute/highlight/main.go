package highlight

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/walteh/goqute/cmd/goqute/input"
	"github.com/walteh/goqute/pkg/semtok"
)

type Handler struct {
	fs   afero.Fs
	ansi bool
}

func NewHighlightCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "highlight <file|->",
		Short: "print the semantic tokens of a template",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().BoolVar(&me.ansi, "ansi", false, "print the template colored by token type instead of a table")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		src, err := input.Read(cmd, me.fs, args[0])
		if err != nil {
			return err
		}
		return me.Run(cmd.Context(), cmd.OutOrStdout(), src)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, w io.Writer, src string) error {
	toks, err := semtok.GetTokensForText(ctx, input.Parser(ctx), []byte(src))
	if err != nil {
		return err
	}

	if me.ansi {
		_, _ = fmt.Fprint(w, Colorize(src, toks))
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Type", "Modifier", "Offset", "Text"})
	for _, tok := range toks {
		tw.AppendRow(table.Row{tok.Type, tok.Modifier, tok.Range.Offset, strconv.Quote(tok.Range.Text)})
	}
	tw.Render()
	return nil
}

var palette = map[semtok.TokenType]*color.Color{
	semtok.TokenVariable:  color.New(color.FgCyan),
	semtok.TokenProperty:  color.New(color.FgBlue),
	semtok.TokenMethod:    color.New(color.FgYellow),
	semtok.TokenFunction:  color.New(color.FgYellow, color.Italic),
	semtok.TokenNamespace: color.New(color.FgMagenta),
	semtok.TokenKeyword:   color.New(color.FgMagenta, color.Bold),
	semtok.TokenOperator:  color.New(color.FgWhite, color.Bold),
	semtok.TokenString:    color.New(color.FgGreen),
	semtok.TokenNumber:    color.New(color.FgRed),
	semtok.TokenComment:   color.New(color.FgHiBlack),
	semtok.TokenTypeName:  color.New(color.FgGreen, color.Bold),
	semtok.TokenParameter: color.New(color.FgCyan, color.Underline),
}

// Colorize wraps every token of src in the color of its type. Tokens must be
// in offset order and not overlap, as semtok returns them.
func Colorize(src string, toks []semtok.Token) string {
	var sb strings.Builder
	last := 0
	for _, tok := range toks {
		start := tok.Range.Offset
		end := start + len(tok.Range.Text)
		if start < last || end > len(src) {
			continue
		}
		sb.WriteString(src[last:start])
		c, ok := palette[tok.Type]
		if !ok {
			sb.WriteString(tok.Range.Text)
		} else {
			sb.WriteString(c.Sprint(tok.Range.Text))
		}
		last = end
	}
	sb.WriteString(src[last:])
	return sb.String()
}
