package render

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses editor save bursts into one reload.
const DefaultDebounce = 200 * time.Millisecond

// ErrBundledTemplate reports an attempt to watch the embedded template.
var ErrBundledTemplate = errors.New("bundled template cannot be watched")

// TemplateWatcher reloads a Renderer whenever its template file changes.
type TemplateWatcher struct {
	renderer *Renderer
	watcher  *fsnotify.Watcher
	base     string
	debounce time.Duration
}

// NewTemplateWatcher starts watching the directory holding the renderer's template.
// The directory is watched rather than the file so atomic editor saves are seen.
func NewTemplateWatcher(r *Renderer, debounce time.Duration) (*TemplateWatcher, error) {
	path := r.TemplatePath()
	if path == "" {
		return nil, ErrBundledTemplate
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create template watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch template dir: %w", err)
	}
	return &TemplateWatcher{
		renderer: r,
		watcher:  w,
		base:     filepath.Base(path),
		debounce: debounce,
	}, nil
}

// Run blocks until ctx is done. onReload, when set, receives each reload result.
func (tw *TemplateWatcher) Run(ctx context.Context, onReload func(error)) error {
	defer tw.watcher.Close()

	timer := time.NewTimer(tw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != tw.base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(tw.debounce)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(fmt.Errorf("template watcher: %w", err))
			}
		case <-timer.C:
			err := tw.renderer.Reload()
			if onReload != nil {
				onReload(err)
			}
		}
	}
}
