// Package ports declares the interfaces the inspector depends on but does not implement.
package ports

// Watcher reports file changes under a directory tree. The adapter filters out
// VCS metadata, dependency directories and build artefacts before calling onChange.
type Watcher interface {
	// Watch starts monitoring root recursively. onChange receives the absolute
	// path of each created, written, removed or renamed file and may be called
	// from any goroutine. Fails if root does not exist or cannot be read.
	Watch(root string, onChange func(path string)) error

	// Stop ends monitoring. No onChange call starts after Stop returns.
	// Safe to call multiple times.
	Stop() error
}
