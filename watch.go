package hamal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchPolicies loads declarations from a local file and reloads them on every write until ctx is done.
// onReload, when set, is called after each reload attempt.
func (s *Service) WatchPolicies(ctx context.Context, location string, onReload func(err error)) error {
	location, err := filepath.Abs(location)
	if err != nil {
		return err
	}
	URL := "file://" + filepath.ToSlash(location)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	// editors often replace the file, the parent directory watch survives that
	if err = watcher.Add(filepath.Dir(location)); err != nil {
		return fmt.Errorf("watch %s: %w", location, err)
	}
	if err = s.LoadPolicies(ctx, URL); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != location || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			s.logger.Debug("policy declarations changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			err := s.LoadPolicies(ctx, URL)
			if err != nil {
				s.logger.Warn("failed to reload policies", zap.String("URL", URL), zap.Error(err))
			}
			if onReload != nil {
				onReload(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error", zap.Error(err))
		}
	}
}
