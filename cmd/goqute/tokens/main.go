package tokens

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/cmd/goqute/input"
	"github.com/walteh/goqute/pkg/config"
	"github.com/walteh/goqute/pkg/lexer"
	"github.com/walteh/goqute/pkg/position"
)

type Handler struct {
	fs       afero.Fs
	start    int
	end      int
	maxWidth int
}

func NewTokensCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "tokens <file|->",
		Short: "print the top-level token stream of a template",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().IntVar(&me.start, "start", 0, "start offset of the lexed region")
	cmd.Flags().IntVar(&me.end, "end", -1, "end offset of the lexed region, -1 for end of file")
	cmd.Flags().IntVar(&me.maxWidth, "max-width", 40, "truncate token text to this many characters")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		src, err := input.Read(cmd, me.fs, args[0])
		if err != nil {
			return err
		}
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args[0], src)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, w io.Writer, path, src string) error {
	end := me.end
	if end < 0 {
		end = len(src)
	}
	if me.start < 0 || me.start > end || end > len(src) {
		return errors.Errorf("region [%d,%d) is outside the %d byte template", me.start, end, len(src))
	}

	tabWidth := config.TabWidth(path)

	lx := lexer.New(input.Parser(ctx))
	lx.Start(ctx, src, me.start, end, 0)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Type", "Range", "Position", "Text"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, WidthMax: me.maxWidth},
	})

	count := 0
	for typ := lx.TokenType(); typ != nil; typ = lx.TokenType() {
		line, col := position.LineAndColumn(src, lx.TokenStart(), tabWidth)
		rng := position.NewTextRange(lx.TokenStart(), lx.TokenEnd())
		t.AppendRow(table.Row{
			count,
			typ.String(),
			rng.String(),
			fmt.Sprintf("%d:%d", line+1, col+1),
			strconv.Quote(rng.Slice(src)),
		})
		count++
		lx.Advance()
	}

	zerolog.Ctx(ctx).Debug().Int("tokens", count).Int("tab_width", tabWidth).Msg("lexed template")

	if count == 0 {
		_, _ = fmt.Fprintln(w, "(0 tokens)")
		return nil
	}

	t.Render()
	return nil
}
