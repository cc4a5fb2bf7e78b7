// Package filestore implements corkboard.StoragePort on a directory of JSON
// board files.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/phanxgames/corkboard"
	"go.uber.org/zap"
)

// Ext is the extension of board files.
const Ext = ".json"

// Store reads and writes board files under one directory. It is safe for
// concurrent use.
type Store struct {
	dir string
	log *zap.Logger

	mu       sync.Mutex
	openPath string
}

// Option configures a Store.
type Option func(*Store)

// WithOpenPath makes the next OpenBoard read path instead of the newest
// board in the directory. Relative paths are resolved against the directory.
func WithOpenPath(path string) Option {
	return func(s *Store) { s.openPath = path }
}

// WithLogger sets the logger. The default is corkboard.Logger().
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Store rooted at dir. The directory is created on first
// write.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = "."
	}
	s := &Store{dir: dir, log: corkboard.Logger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// SetOpenPath picks the file the next OpenBoard reads. An empty path goes
// back to opening the newest board.
func (s *Store) SetOpenPath(path string) {
	s.mu.Lock()
	s.openPath = path
	s.mu.Unlock()
}

func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

// OpenBoard reads the selected board file, or the most recently modified
// board in the directory. It reports Canceled when there is nothing to open.
func (s *Store) OpenBoard(ctx context.Context) (corkboard.OpenResult, error) {
	if err := ctx.Err(); err != nil {
		return corkboard.OpenResult{}, err
	}
	s.mu.Lock()
	path := s.openPath
	s.openPath = ""
	s.mu.Unlock()

	if path == "" {
		newest, err := s.newest()
		if err != nil {
			return corkboard.OpenResult{}, err
		}
		if newest == "" {
			s.log.Debug("no board to open", zap.String("dir", s.dir))
			return corkboard.OpenResult{Canceled: true}, nil
		}
		path = newest
	} else {
		path = s.resolve(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return corkboard.OpenResult{}, err
	}
	s.log.Debug("board read", zap.String("path", path), zap.Int("bytes", len(content)))
	return corkboard.OpenResult{Path: path, Content: content}, nil
}

// List returns the board files in the directory, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	type file struct {
		path string
		mod  int64
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{filepath.Join(s.dir, e.Name()), info.ModTime().UnixNano()})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].mod > files[j].mod })
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}

func (s *Store) newest() (string, error) {
	files, err := s.List()
	if err != nil || len(files) == 0 {
		return "", err
	}
	return files[0], nil
}

// ChooseSavePath turns the suggested title into a file name under the
// directory.
func (s *Store) ChooseSavePath(ctx context.Context, suggested string) (corkboard.SaveTarget, error) {
	if err := ctx.Err(); err != nil {
		return corkboard.SaveTarget{}, err
	}
	return corkboard.SaveTarget{Path: filepath.Join(s.dir, SanitizeName(suggested)+Ext)}, nil
}

// WriteFile writes content to path through a temporary file and a rename,
// so readers never see a partial board.
func (s *Store) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	s.log.Debug("board written", zap.String("path", path), zap.Int("bytes", len(content)))
	return nil
}

// SanitizeName reduces a board title to a portable file name without
// extension. Runs of other characters collapse to one dash.
func SanitizeName(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.Trim(b.String(), "-.")
	if name == "" {
		return "board"
	}
	return name
}
