package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/study-lab/pkg/lifecycle"
)

const (
	dirMode  = 0o750
	fileMode = 0o640
)

type filesystem struct {
	root   string
	logger *slog.Logger
}

// New creates a filesystem System rooted at cfg.BasePath. The root is created in Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("base_path required")
	}

	root, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}

	return &filesystem{
		root:   root,
		logger: logger.With("system", "storage"),
	}, nil
}

func (f *filesystem) Start(lc *lifecycle.Coordinator) error {
	f.logger.Info("starting source storage", "root", f.root)

	lc.OnStartup(func() {
		if err := os.MkdirAll(f.root, dirMode); err != nil {
			f.logger.Error("source storage unavailable", "root", f.root, "error", err)
			return
		}
		f.logger.Info("source storage ready")
	})

	return nil
}

// Store writes through a uniquely named temp file in the target directory, so
// concurrent writers never observe or clobber a partial blob.
func (f *filesystem) Store(ctx context.Context, key string, data []byte) error {
	path, err := f.resolve(ctx, key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return mapFSError(err, "create directory")
	}

	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return mapFSError(err, "create temp file")
	}
	tmpPath := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err := os.Chmod(tmpPath, fileMode); err != nil {
		os.Remove(tmpPath)
		return mapFSError(err, "chmod")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return mapFSError(err, "commit blob")
	}

	return nil
}

func (f *filesystem) Retrieve(ctx context.Context, key string) ([]byte, error) {
	path, err := f.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mapFSError(err, "read blob")
	}
	return data, nil
}

// Delete removes the blob and prunes parent directories it leaves empty.
func (f *filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.resolve(ctx, key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return mapFSError(err, "remove blob")
	}

	f.prune(filepath.Dir(path))
	return nil
}

func (f *filesystem) prune(dir string) {
	for ; dir != f.root && strings.HasPrefix(dir, f.root); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			// ENOTEMPTY ends the walk; another source still lives here.
			if !errors.Is(err, fs.ErrNotExist) {
				return
			}
		}
	}
}

// resolve maps key below the root, rejecting empty, absolute, and escaping keys.
func (f *filesystem) resolve(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" || filepath.IsAbs(key) {
		return "", ErrInvalidKey
	}

	full := filepath.Join(f.root, filepath.Clean(key))
	if !strings.HasPrefix(full, f.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

func mapFSError(err error, op string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
