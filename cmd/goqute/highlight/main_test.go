package highlight

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/goqute/pkg/config"
	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/semtok"
	"github.com/walteh/goqute/pkg/template"
)

func TestRunTable(t *testing.T) {
	var out bytes.Buffer
	h := &Handler{}
	require.NoError(t, h.Run(context.Background(), &out, "{item.name}"))

	got := out.String()
	assert.Contains(t, got, "variable")
	assert.Contains(t, got, `"item"`)
	assert.Contains(t, got, "property")
	assert.Contains(t, got, `"name"`)
}

func TestColorize(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	src := "a {x.y} b"
	toks := []semtok.Token{
		{Type: semtok.TokenVariable, Range: position.NewBasicPosition("x", 3)},
		{Type: semtok.TokenProperty, Range: position.NewBasicPosition("y", 5)},
	}
	assert.Equal(t, src, Colorize(src, toks))

	color.NoColor = false
	colored := Colorize(src, toks)
	assert.NotEqual(t, src, colored)
	assert.Contains(t, colored, "\x1b[")
}

func TestRunInvalid(t *testing.T) {
	h := &Handler{}
	require.Error(t, h.Run(context.Background(), &bytes.Buffer{}, "\xff"))
}

func TestRunUsesConfiguredParser(t *testing.T) {
	cfg := config.Default()
	cfg.Parser.MaxDepth = 3
	ctx := cfg.WithContext(context.Background())

	h := &Handler{}
	err := h.Run(ctx, &bytes.Buffer{}, "{a(b(c(d(e))))}")
	require.ErrorIs(t, err, template.ErrMaxDepth)

	require.NoError(t, h.Run(context.Background(), &bytes.Buffer{}, "{a(b(c(d(e))))}"))
}
