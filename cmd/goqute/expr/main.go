package expr

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/cmd/goqute/input"
	qexpr "github.com/walteh/goqute/pkg/expr"
	"github.com/walteh/goqute/pkg/syntax"
)

var ErrNoPart = errors.Base("no expression part at offset")

type Handler struct {
	fs     afero.Fs
	offset int
}

func NewExprCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "expr <file|->",
		Short: "resolve expression parts to their root part and expression range",
		Long:  "With --offset, resolves the part under that byte offset. Without it, lists every part.",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().IntVar(&me.offset, "offset", -1, "byte offset of the part to resolve")

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
	t, err := syntax.Build(ctx, input.Parser(ctx), src)
	if err != nil {
		return err
	}

	var parts []*qexpr.Part
	if me.offset >= 0 {
		p, ok := qexpr.At(t, me.offset)
		if !ok {
			return errors.Errorf("%w %d", ErrNoPart, me.offset)
		}
		parts = append(parts, p)
	} else {
		parts = qexpr.Parts(t.Root())
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Kind", "Part", "Range", "Root", "Expression"})

	for _, p := range parts {
		root := "-"
		if r := p.RootPart(); r != nil {
			root = fmt.Sprintf("%s %s", r.Text(), r.TextRange())
		}
		expression := "-"
		if rng, ok := p.TextRangeInExpression(); ok {
			expression = fmt.Sprintf("%s %s", rng.Slice(src), rng)
		}
		tw.AppendRow(table.Row{p.Kind(), p.Text(), p.TextRange(), root, expression})
	}

	tw.Render()
	return nil
}
