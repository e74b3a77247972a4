package adapter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/logfan/logfan/core"
)

// FileConfig configures a File adapter.
type FileConfig struct {
	// Path is the log file location; parent directories are created.
	Path string
	// MaxSize is the size in bytes that triggers rotation (0 = never).
	MaxSize int64
	// MaxBackups bounds how many rotated files are kept (0 = keep all).
	MaxBackups int
	// Compress gzips rotated backups in the background.
	Compress bool
}

// File appends newline-terminated lines to a log file, rotating it by size
// and optionally compressing rotated backups.
type File struct {
	path       string
	maxSize    int64
	maxBackups int
	compress   bool

	mu   sync.Mutex
	file *os.File
	size int64
	wg   sync.WaitGroup // in-flight background compressions
}

// NewFile opens (or creates) the log file and returns the adapter.
func NewFile(cfg FileConfig) (*File, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file adapter: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	return &File{
		path:       cfg.Path,
		maxSize:    cfg.MaxSize,
		maxBackups: cfg.MaxBackups,
		compress:   cfg.Compress,
		file:       file,
		size:       info.Size(),
	}, nil
}

// Handle implements dispatch.Adapter.
func (a *File) Handle(formatted string, _ *core.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return os.ErrClosed
	}
	if err := a.rotateIfNeeded(); err != nil {
		return err
	}

	n, err := io.WriteString(a.file, formatted+"\n")
	a.size += int64(n)
	return err
}

func (a *File) rotateIfNeeded() error {
	if a.maxSize <= 0 || a.size < a.maxSize {
		return nil
	}
	return a.rotate()
}

// rotate renames the current file to a timestamped backup and reopens a
// fresh one. Compression of the backup happens off the write path.
func (a *File) rotate() error {
	if err := a.file.Sync(); err != nil {
		return err
	}
	if err := a.file.Close(); err != nil {
		return err
	}

	backup := fmt.Sprintf("%s.%s", a.path, time.Now().UTC().Format("2006-01-02T15-04-05.000"))
	if err := os.Rename(a.path, backup); err != nil {
		// Keep logging into the original file rather than failing hard.
		file, openErr := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if openErr != nil {
			return fmt.Errorf("rotation failed: %w, reopen failed: %w", err, openErr)
		}
		a.file = file
		return err
	}

	if a.compress {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			compressFile(backup)
		}()
	}
	if a.maxBackups > 0 {
		a.pruneBackups()
	}

	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	a.file = file
	a.size = 0
	return nil
}

// compressFile gzips path to path.gz and removes the original. Failures
// leave the uncompressed backup in place.
func compressFile(path string) {
	src, err := os.Open(path)
	if err != nil {
		return
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return
	}

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		dst.Close()
		os.Remove(path + ".gz")
		return
	}
	if err := gw.Close(); err != nil {
		dst.Close()
		os.Remove(path + ".gz")
		return
	}
	if err := dst.Close(); err != nil {
		return
	}

	os.Remove(path)
}

// pruneBackups removes the oldest rotated files beyond MaxBackups.
func (a *File) pruneBackups() {
	matches, err := filepath.Glob(a.path + ".*")
	if err != nil {
		return
	}

	base := filepath.Base(a.path)
	var backups []string
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), base+".") {
			backups = append(backups, m)
		}
	}
	if len(backups) <= a.maxBackups {
		return
	}

	// Backup names embed their rotation timestamp, so lexical order is
	// chronological (".gz" suffixes only differ after the timestamp).
	sort.Strings(backups)
	for _, old := range backups[:len(backups)-a.maxBackups] {
		os.Remove(old)
	}
}

// Close flushes and closes the file, waiting for background compressions.
func (a *File) Close() error {
	a.mu.Lock()
	file := a.file
	a.file = nil
	a.mu.Unlock()

	a.wg.Wait()
	if file == nil {
		return nil
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
