package kvstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const fileSuffix = ".json"

// FileStorage stores each key as its own file inside a data directory. Several
// processes may share the directory; Watch reports the files they change.
type FileStorage struct {
	dir string

	mu   sync.Mutex
	last map[string]fileState // last state this handle wrote, per key
}

type fileState struct {
	content string
	removed bool
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable("create data dir", err)
	}
	return &FileStorage{dir: dir, last: map[string]fileState{}}, nil
}

func (f *FileStorage) Dir() string {
	return f.dir
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileSuffix)
}

func keyFromFileName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
	if err != nil {
		return "", false
	}
	return key, true
}

func (f *FileStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, unavailable("read "+key, err)
	}
	return string(raw), true, nil
}

func (f *FileStorage) SetItem(ctx context.Context, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := atomicWrite(f.dir, f.path(key), []byte(value)); err != nil {
		return unavailable("write "+key, err)
	}
	f.last[key] = fileState{content: value}
	return nil
}

func (f *FileStorage) RemoveItem(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return unavailable("remove "+key, err)
	}
	f.last[key] = fileState{removed: true}
	return nil
}

func (f *FileStorage) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, unavailable("list keys", err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if key, ok := keyFromFileName(entry.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStorage) Watch(ctx context.Context, fn func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return unavailable("watch", err)
	}
	if err := watcher.Add(f.dir); err != nil {
		_ = watcher.Close()
		return unavailable("watch "+f.dir, err)
	}
	log.Debugf("watching storage directory %s", f.dir)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				key, ok := keyFromFileName(filepath.Base(event.Name))
				if !ok || f.isOwnWrite(key) {
					continue
				}
				fn(Change{Key: key})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("storage watcher error: %v", err)
			}
		}
	}()
	return nil
}

// isOwnWrite reports whether the file for key is in the state this handle last left it.
func (f *FileStorage) isOwnWrite(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	last, ok := f.last[key]
	if !ok {
		return false
	}
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return last.removed
	}
	if err != nil {
		return false
	}
	return !last.removed && string(raw) == last.content
}

func atomicWrite(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".roamly-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	tmp = nil
	return nil
}
