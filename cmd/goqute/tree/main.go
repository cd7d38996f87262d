package tree

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/cmd/goqute/input"
	"github.com/walteh/goqute/pkg/diff"
	"github.com/walteh/goqute/pkg/syntax"
)

var ErrTreesDiffer = errors.Base("syntax trees differ")

type Handler struct {
	fs       afero.Fs
	problems bool
	against  string
}

func NewTreeCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "tree <file|->",
		Short: "print the materialized syntax tree of a template",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().BoolVar(&me.problems, "problems", true, "list parse problems after the tree")
	cmd.Flags().StringVar(&me.against, "against", "", "print a diff against the tree of this template instead")

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

	if me.against != "" {
		return me.compare(ctx, w, t)
	}

	_, _ = fmt.Fprint(w, syntax.Dump(t.Root()))

	if me.problems {
		for _, p := range t.Template().Problems() {
			_, _ = fmt.Fprintf(w, "problem: %s\n", p)
		}
	}
	return nil
}

func (me *Handler) compare(ctx context.Context, w io.Writer, t *syntax.Tree) error {
	other, err := afero.ReadFile(me.fs, me.against)
	if err != nil {
		return errors.Errorf("reading %s: %w", me.against, err)
	}

	want, err := syntax.Build(ctx, input.Parser(ctx), string(other))
	if err != nil {
		return errors.Errorf("building %s: %w", me.against, err)
	}

	d := diff.Lines(syntax.Dump(want.Root()), syntax.Dump(t.Root()))
	if d == "" {
		_, _ = fmt.Fprintln(w, "trees match")
		return nil
	}
	_, _ = fmt.Fprintln(w, d)
	return ErrTreesDiffer
}
