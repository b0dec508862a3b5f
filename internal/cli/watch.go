package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tjgokken/solmap/internal/walker"
)

const (
	watchDebounce          = 250 * time.Millisecond
	watchStartedLog        = "watching for changes"
	watchChangeLog         = "change detected"
	watchErrorLog          = "watch error"
	watchReexportedLog     = "re-exported"
	watchReexportFailedLog = "re-export failed"
	errorCreateWatcher     = "create watcher: %w"
	errorWatchDirectory    = "watch %s: %w"
)

// directoryCollector records every retained directory of a walk.
type directoryCollector struct {
	paths []string
}

func (collector *directoryCollector) EnterDirectory(directory walker.Directory) error {
	collector.paths = append(collector.paths, directory.Path)
	return nil
}

func (collector *directoryCollector) VisitFile(walker.File) error { return nil }

func (collector *directoryCollector) LeaveDirectory(walker.Directory) error { return nil }

// watch re-exports after filesystem activity settles, until ctx is done. Events on the
// exported documents themselves and on excluded entries are ignored.
func (app *application) watch(ctx context.Context, settings exportSettings, documents []exportedDocument, reexport func() ([]exportedDocument, error)) error {
	watcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return fmt.Errorf(errorCreateWatcher, watcherError)
	}
	defer watcher.Close()

	if err := watchDirectories(watcher, settings); err != nil {
		return err
	}
	ignoredPaths := writtenPaths(documents)
	app.logger.Info(watchStartedLog, zap.String("root", settings.root.AbsolutePath))

	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if _, ignored := ignoredPaths[event.Name]; ignored || isExcludedEvent(settings, event.Name) {
				continue
			}
			app.logger.Debug(watchChangeLog, zap.String("path", event.Name), zap.String("op", event.Op.String()))
			settled = time.After(watchDebounce)
		case err, open := <-watcher.Errors:
			if !open {
				return nil
			}
			app.logger.Warn(watchErrorLog, zap.Error(err))
		case <-settled:
			settled = nil
			refreshed, exportError := reexport()
			if exportError != nil {
				app.logger.Error(watchReexportFailedLog, zap.Error(exportError))
				continue
			}
			ignoredPaths = writtenPaths(refreshed)
			if err := watchDirectories(watcher, settings); err != nil {
				app.logger.Warn(watchErrorLog, zap.Error(err))
			}
			app.logger.Info(watchReexportedLog, zap.String("root", settings.root.AbsolutePath))
		}
	}
}

// watchDirectories adds every retained directory; fsnotify ignores repeated adds.
func watchDirectories(watcher *fsnotify.Watcher, settings exportSettings) error {
	collector := &directoryCollector{}
	if err := walker.New(settings.policy).Walk(settings.root.AbsolutePath, collector); err != nil {
		return err
	}
	for _, directoryPath := range collector.paths {
		if err := watcher.Add(directoryPath); err != nil {
			return fmt.Errorf(errorWatchDirectory, directoryPath, err)
		}
	}
	return nil
}

func isExcludedEvent(settings exportSettings, path string) bool {
	name := filepath.Base(path)
	return settings.policy.ShouldSkipDirectory(name) || settings.policy.ShouldSkipFile(filepath.Ext(name))
}

func writtenPaths(documents []exportedDocument) map[string]struct{} {
	paths := make(map[string]struct{}, len(documents))
	for _, document := range documents {
		if document.path != "" {
			paths[document.path] = struct{}{}
		}
	}
	return paths
}
