// Package input reads the template a subcommand operates on.
package input

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/pkg/config"
	"github.com/walteh/goqute/pkg/template"
)

// Read returns the contents of path, or of the command's stdin when path is "-".
func Read(cmd *cobra.Command, fs afero.Fs, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}

// Parser returns a parser configured from the config attached to ctx.
func Parser(ctx context.Context) *template.Parser {
	return template.NewParser(config.Ctx(ctx).ParserOptions())
}
