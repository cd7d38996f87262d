package tokens

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer
	h := &Handler{end: -1, maxWidth: 40}
	require.NoError(t, h.Run(context.Background(), &out, "-", "<p>\n\t{item.name}</p>"))

	got := out.String()
	assert.Contains(t, got, "QUTE:#text")
	assert.Contains(t, got, "QUTE:#expression")
	assert.Contains(t, got, "[5,16)")
	assert.Contains(t, got, "2:5", "tab expands to the default width")
	assert.Contains(t, got, `"{item.name}"`)
}

func TestRunRegion(t *testing.T) {
	var out bytes.Buffer
	h := &Handler{start: 2, end: 5, maxWidth: 40}
	require.NoError(t, h.Run(context.Background(), &out, "-", "xx{a}yy"))
	assert.Contains(t, out.String(), "[2,5)")
	assert.NotContains(t, out.String(), `"xx"`)

	h = &Handler{start: 4, end: 100}
	require.Error(t, h.Run(context.Background(), &out, "-", "xx"))
}

func TestRunEmpty(t *testing.T) {
	var out bytes.Buffer
	h := &Handler{end: -1}
	require.NoError(t, h.Run(context.Background(), &out, "-", ""))
	assert.Equal(t, "(0 tokens)\n", out.String())
}
