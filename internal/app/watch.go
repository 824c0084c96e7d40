package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/corey/astdump/internal/ports"
)

// Watch re-inspects every supported file under dir each time it changes,
// writing a "==> path <==" line before each tree. Failures are logged and the
// watch continues. Watch blocks until ctx is cancelled, then stops watcher.
func (in *Inspector) Watch(ctx context.Context, dir string, watcher ports.Watcher, w io.Writer) error {
	var mu sync.Mutex
	onChange := func(path string) {
		if !in.registry.Supports(path) {
			return
		}
		log := in.log.WithField("file", path)

		mu.Lock()
		defer mu.Unlock()

		if _, err := in.fs.Stat(path); errors.Is(err, fs.ErrNotExist) {
			log.Info("file removed")
			return
		}
		log.Info("file changed")

		var out bytes.Buffer
		fmt.Fprintf(&out, "==> %s <==\n", path)
		if err := in.Inspect(path, &out); err != nil {
			log.WithError(err).Error("inspect failed")
			return
		}
		if _, err := out.WriteTo(w); err != nil {
			log.WithError(err).Error("write failed")
		}
	}

	if err := watcher.Watch(dir, onChange); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	in.log.WithField("dir", dir).Info("watching")

	<-ctx.Done()
	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("stop watcher: %w", err)
	}
	in.log.WithField("dir", dir).Info("stopped watching")
	return nil
}
