package keymap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrUnknownExtension is returned for layout files that are neither .uchr
// nor .kchr/.rsrc.
var ErrUnknownExtension = errors.New("unknown keyboard layout file extension")

// FileProvider serves a layout blob from disk. The file's directory is
// watched so that editors and atomic renames are picked up; every write,
// create, rename or removal of the file notifies subscribers.
type FileProvider struct {
	path string

	watcher *fsnotify.Watcher
	subs    subscribers

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewFileProvider watches path. The file need not exist yet.
func NewFileProvider(path string) (*FileProvider, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve layout path: %w", err)
	}
	if _, err := formatForPath(abs); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create layout watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	p := &FileProvider{
		path:    abs,
		watcher: w,
		closeCh: make(chan struct{}),
	}
	p.wg.Add(1)
	go p.processLoop()
	return p, nil
}

func formatForPath(path string) (func([]byte) Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".uchr":
		return func(b []byte) Source { return Source{Rules: b} }, nil
	case ".kchr", ".rsrc":
		return func(b []byte) Source { return Source{Legacy: b} }, nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownExtension)
	}
}

func (p *FileProvider) CurrentLayout(ctx context.Context) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	wrap, err := formatForPath(p.path)
	if err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Source{}, fmt.Errorf("%s: %w", p.path, ErrNoLayout)
		}
		return Source{}, fmt.Errorf("read layout: %w", err)
	}
	src := wrap(data)
	src.ID = "file:" + p.path
	src.LocalizedName = strings.TrimSuffix(filepath.Base(p.path), filepath.Ext(p.path))
	return src, nil
}

func (p *FileProvider) Subscribe(fn func()) func() {
	return p.subs.add(fn)
}

// Path returns the absolute path being served.
func (p *FileProvider) Path() string {
	return p.path
}

// Close stops watching.
func (p *FileProvider) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closeCh)
		err = p.watcher.Close()
		p.wg.Wait()
	})
	return err
}

func (p *FileProvider) processLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.closeCh:
			return

		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != p.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
				ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				p.subs.notify()
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[keymap] layout watcher: %v", err)
		}
	}
}
