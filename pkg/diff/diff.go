package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

const header = "\n\nto convert ACTUAL ⏩️ EXPECTED:\n\nadd:    ➕\nremove: ➖\n\n"

// Lines returns a marked line diff that turns got into want, or "" when they match.
func Lines(want, got string) string {
	if want == got {
		return ""
	}
	return header + mark(diff.Diff(got, want))
}

// ExportedOnly pretty prints both values without unexported fields and diffs them.
func ExportedOnly[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)
	return Lines(printer.Sprint(want), printer.Sprint(got))
}

func mark(d string) string {
	if strings.HasPrefix(d, "-") {
		d = "➖" + d[1:]
	} else if strings.HasPrefix(d, "+") {
		d = "➕" + d[1:]
	}
	return strings.ReplaceAll(strings.ReplaceAll(d, "\n-", "\n➖"), "\n+", "\n➕")
}
