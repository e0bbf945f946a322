package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shaderdbg/internal/config"

	"github.com/fsnotify/fsnotify"
)

// ShaderWatcher re-runs the debug transform whenever a watched shader file
// changes on disk. In the editor integration this role is played by cursor
// and text-change events; the CLI gets the same live feedback through
// fsnotify.
type ShaderWatcher struct {
	watcher     *fsnotify.Watcher
	config      *config.Config
	watchedDirs map[string]bool
	debouncer   *debouncer
}

type FileChangeEvent struct {
	Path      string
	Operation string
	Timestamp time.Time
}

// ReloadHandler receives the batch of shader paths that changed.
type ReloadHandler func([]string) error

func NewShaderWatcher(cfg *config.Config) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	sw := &ShaderWatcher{
		watcher:     watcher,
		config:      cfg,
		watchedDirs: make(map[string]bool),
		debouncer:   newDebouncer(200 * time.Millisecond),
	}
	return sw, nil
}

func (sw *ShaderWatcher) Watch(paths []string, handler ReloadHandler) error {
	for _, path := range paths {
		if err := sw.addPath(path); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
	}
	go sw.eventLoop(handler)
	return nil
}

func (sw *ShaderWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	// Watching a file means watching its directory; editors replace files
	// on save and the inode watch would go stale.
	if !info.IsDir() {
		path = filepath.Dir(path)
	}
	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if sw.shouldSkipDir(walkPath) {
			return filepath.SkipDir
		}
		if !sw.watchedDirs[walkPath] {
			if err := sw.watcher.Add(walkPath); err != nil {
				return fmt.Errorf("failed to add directory %s to watcher: %w", walkPath, err)
			}
			sw.watchedDirs[walkPath] = true
		}
		return nil
	})
}

func (sw *ShaderWatcher) eventLoop(handler ReloadHandler) {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event, handler)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			fmt.Printf("File watcher error: %v\n", err)
		}
	}
}

func (sw *ShaderWatcher) handleEvent(event fsnotify.Event, handler ReloadHandler) {
	if !sw.isShaderFile(event.Name) {
		return
	}
	if sw.shouldSkipFile(event.Name) {
		return
	}
	changeEvent := FileChangeEvent{
		Path:      event.Name,
		Operation: sw.eventOpToString(event.Op),
		Timestamp: time.Now(),
	}
	sw.debouncer.add(changeEvent, handler)
}

func (sw *ShaderWatcher) isShaderFile(path string) bool {
	if sw.config != nil {
		return sw.config.IsShaderFile(path)
	}
	switch filepath.Ext(path) {
	case ".frag", ".glsl", ".fs", ".fsh":
		return true
	}
	return false
}

func (sw *ShaderWatcher) shouldSkipDir(path string) bool {
	defaultExclusions := []string{
		".git", "node_modules", ".vscode", ".idea", "build", "dist", "tmp", "temp",
	}
	dirName := filepath.Base(path)
	for _, excluded := range defaultExclusions {
		if dirName == excluded {
			return true
		}
	}
	if sw.config != nil {
		for _, pattern := range sw.config.Files.Exclude {
			matched, _ := filepath.Match(pattern, path)
			if matched {
				return true
			}
		}
	}
	return false
}

func (sw *ShaderWatcher) shouldSkipFile(path string) bool {
	filename := filepath.Base(path)
	if strings.HasPrefix(filename, ".") {
		return true
	}
	if strings.HasSuffix(filename, ".tmp") || strings.HasSuffix(filename, "~") {
		return true
	}
	if strings.HasSuffix(filename, ".swp") || strings.HasSuffix(filename, ".swo") {
		return true
	}
	return false
}

func (sw *ShaderWatcher) eventOpToString(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return "CREATE"
	case op&fsnotify.Write == fsnotify.Write:
		return "WRITE"
	case op&fsnotify.Remove == fsnotify.Remove:
		return "REMOVE"
	case op&fsnotify.Rename == fsnotify.Rename:
		return "RENAME"
	case op&fsnotify.Chmod == fsnotify.Chmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

func (sw *ShaderWatcher) Close() error {
	sw.debouncer.stop()
	return sw.watcher.Close()
}

func (sw *ShaderWatcher) GetWatchedPaths() []string {
	paths := make([]string, 0, len(sw.watchedDirs))
	for path := range sw.watchedDirs {
		paths = append(paths, path)
	}
	return paths
}
