package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
	"github.com/secmon-lab/riskdeck/pkg/utils/safe"
)

// watchDebounce merges the burst of events a spreadsheet save produces
const watchDebounce = 300 * time.Millisecond

// watchFile calls onChange after path is written or replaced, until ctx is
// cancelled. It watches the parent directory so that rename-based saves are seen.
func watchFile(ctx context.Context, path string, onChange func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve path", goerr.V("path", path))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create file watcher")
	}
	defer safe.Close(ctx, watcher)

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return goerr.Wrap(err, "failed to watch directory", goerr.V("dir", filepath.Dir(target)))
	}
	logging.Default().Info("Watching workbook", "path", target)

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Default().Warn("file watcher error", "error", err)
		}
	}
}
