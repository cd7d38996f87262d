package splice

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/cmd/goqute/input"
	"github.com/walteh/goqute/pkg/splice"
	"github.com/walteh/goqute/pkg/syntax"
)

type Handler struct {
	fs   afero.Fs
	view string
}

func NewSpliceCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "splice <file|->",
		Short: "split a template into host-language and template spans",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&me.view, "view", "spans", "one of spans, host or template")

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

	switch me.view {
	case "host":
		_, _ = fmt.Fprint(w, splice.HostText(t))
	case "template":
		_, _ = fmt.Fprint(w, splice.TemplateText(t))
	case "spans":
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Kind", "Marker", "Range", "Length"})
		for _, s := range splice.Spans(t) {
			tw.AppendRow(table.Row{s.Kind, s.Marker(), s.Range, s.Range.Len()})
		}
		tw.Render()
	default:
		return errors.Errorf("unknown view %q, want spans, host or template", me.view)
	}
	return nil
}
