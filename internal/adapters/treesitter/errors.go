package treesitter

import "errors"

// Grammar and parse failures. Callers match them with errors.Is; the returned
// errors wrap these with the grammar name and module path.
var (
	// ErrModuleNotFound means the path does not resolve to an openable shared library.
	ErrModuleNotFound = errors.New("grammar module not found")

	// ErrSymbolMissing means the module has no usable tree_sitter_* entry point.
	ErrSymbolMissing = errors.New("grammar entry symbol missing")

	// ErrAbiMismatch means the grammar was generated for an ABI this runtime can't read.
	ErrAbiMismatch = errors.New("grammar ABI mismatch")

	// ErrUnsupportedExtension means no registered language matches the file or name.
	ErrUnsupportedExtension = errors.New("unsupported extension")

	// ErrParseFailure means the parser returned no tree at all.
	ErrParseFailure = errors.New("parse failure")
)
