package check

import (
	"context"
	"fmt"
	"io"
	"path"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/goqute/cmd/goqute/input"
	"github.com/walteh/goqute/pkg/config"
	"github.com/walteh/goqute/pkg/diagnostic"
	"github.com/walteh/goqute/pkg/finder"
	"github.com/walteh/goqute/pkg/syntax"
)

var ErrProblemsFound = errors.Base("templates have errors")

type Handler struct {
	fs       afero.Fs
	jobs     int
	warnings bool
	hints    bool
}

func NewCheckCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "check [dir...]",
		Short: "parse every template under the given directories and report problems",
	}

	cmd.Flags().IntVar(&me.jobs, "jobs", runtime.NumCPU(), "number of templates checked concurrently")
	cmd.Flags().BoolVar(&me.warnings, "warnings", true, "report warnings")
	cmd.Flags().BoolVar(&me.hints, "hints", false, "report hints")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args)
	}

	return cmd
}

type result struct {
	path        string
	diagnostics *diagnostic.Diagnostics
	err         error
}

func (me *Handler) Run(ctx context.Context, w io.Writer, dirs []string) error {
	cfg := config.Ctx(ctx)

	f, err := finder.NewDefaultFinder(me.fs, cfg.Files.Include, cfg.Files.Exclude)
	if err != nil {
		return errors.Errorf("creating finder: %w", err)
	}

	var files []finder.FileInfo
	for _, dir := range dirs {
		found, err := f.FindTemplates(ctx, dir)
		if err != nil {
			return err
		}
		for _, file := range found {
			file.Path = path.Join(dir, file.Path)
			files = append(files, file)
		}
	}

	zerolog.Ctx(ctx).Debug().Int("files", len(files)).Strs("dirs", dirs).Msg("checking templates")

	parser := input.Parser(ctx)
	generator := diagnostic.NewDefaultGenerator()
	results := make([]result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(me.jobs, 1))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = result{path: file.Path}

			tree, err := syntax.Build(gctx, parser, string(file.Content))
			if err != nil {
				results[i].err = err
				return nil
			}

			gen := *generator
			gen.TabWidth = config.TabWidth(file.Path)
			results[i].diagnostics, results[i].err = gen.Generate(gctx, tree)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Errorf("checking templates: %w", err)
	}

	var merr *multierror.Error
	for _, r := range results {
		if r.err != nil {
			merr = multierror.Append(merr, errors.Errorf("%s: %w", r.path, r.err))
			continue
		}
		me.print(w, r)
		if len(r.diagnostics.Errors) > 0 {
			merr = multierror.Append(merr, errors.Errorf("%s: %w", r.path, ErrProblemsFound))
		}
	}

	_, _ = fmt.Fprintf(w, "checked %d templates\n", len(files))
	return merr.ErrorOrNil()
}

func (me *Handler) print(w io.Writer, r result) {
	list := append([]diagnostic.Diagnostic{}, r.diagnostics.Errors...)
	if me.warnings {
		list = append(list, r.diagnostics.Warnings...)
	}
	if me.hints {
		list = append(list, r.diagnostics.Hints...)
	}
	for _, d := range list {
		_, _ = fmt.Fprintf(w, "%s:%s\n", r.path, d)
	}
}
