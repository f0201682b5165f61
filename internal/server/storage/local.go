package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/complaintdesk/internal/filex"
)

// LocalStorage writes attachments into a directory served under URLPrefix.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage creates dir if needed. urlPrefix is the route the
// directory is served from, e.g. "/uploads".
func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStorage{dir: abs, urlPrefix: urlPrefix}, nil
}

// Dir returns the absolute upload directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Save(_ context.Context, name, _ string, r io.Reader) (path string, err error) {
	name = filepath.Base(name)
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(full)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return name, nil
}

func (s *LocalStorage) URL(_ context.Context, path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	return s.urlPrefix + "/" + url.PathEscape(filepath.Base(path)), nil
}
