package config

import (
	"github.com/editorconfig/editorconfig-core-go/v2"
)

// DefaultTabWidth is used when no .editorconfig sets a width for a file.
const DefaultTabWidth = 4

// TabWidth returns the tab width .editorconfig files on disk declare for path.
func TabWidth(path string) int {
	if path == "" || path == "-" {
		return DefaultTabWidth
	}
	def, err := editorconfig.GetDefinitionForFilename(path)
	if err != nil || def == nil {
		return DefaultTabWidth
	}
	if def.TabWidth > 0 {
		return def.TabWidth
	}
	return DefaultTabWidth
}
