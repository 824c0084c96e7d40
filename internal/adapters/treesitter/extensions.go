package treesitter

import (
	"path/filepath"
	"strings"
)

// FileExtension returns the lower-cased extension of a path, including the dot.
func FileExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
