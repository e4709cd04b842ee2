package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/quizbook/internal/progress"
)

const fileExt = ".json"

// FileStore keeps one JSON file per user in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// FileKey maps a username to a file name. Every byte outside
// [A-Za-z0-9_-] is written as %XX, so distinct usernames never collide
// and the result never contains a path separator or a dot-only name.
func FileKey(username string) string {
	var b strings.Builder
	for i := 0; i < len(username); i++ {
		c := username[i]
		if isKeySafe(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	b.WriteString(fileExt)
	return b.String()
}

// UsernameFromFileKey reverses FileKey.
func UsernameFromFileKey(key string) (string, error) {
	name, ok := strings.CutSuffix(key, fileExt)
	if !ok {
		return "", fmt.Errorf("progress file %q: missing %s suffix", key, fileExt)
	}

	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '%' {
			if !isKeySafe(c) {
				return "", fmt.Errorf("progress file %q: unescaped byte %q", key, c)
			}
			out = append(out, c)
			continue
		}
		if i+2 >= len(name) {
			return "", fmt.Errorf("progress file %q: truncated escape", key)
		}
		v, err := strconv.ParseUint(name[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("progress file %q: bad escape: %w", key, err)
		}
		out = append(out, byte(v))
		i += 2
	}
	return string(out), nil
}

func isKeySafe(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}

func (s *FileStore) path(username string) string {
	return filepath.Join(s.dir, FileKey(username))
}

func (s *FileStore) Load(_ context.Context, username string) (*progress.Progress, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(username))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	p, err := progress.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode progress for %q: %w", username, err)
	}
	return p, nil
}

// Save writes to a temp file and renames it over the old record, so a
// crash mid-write leaves the previous record intact.
func (s *FileStore) Save(_ context.Context, username string, p *progress.Progress) error {
	if err := checkUsername(username); err != nil {
		return err
	}

	data, err := progress.Marshal(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".progress-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write progress file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close progress file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(username)); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, username string) error {
	if err := checkUsername(username); err != nil {
		return err
	}
	if err := os.Remove(s.path(username)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete progress file: %w", err)
	}
	return nil
}

func (s *FileStore) Usernames(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list progress dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name, err := UsernameFromFileKey(e.Name())
		if err != nil {
			continue // not ours
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
