package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oksasatya/go-places-api/internal/application"
)

// Local writes images below Dir. References are slash separated paths
// starting with Dir, which the router serves as static files.
type Local struct {
	Dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: filepath.Clean(dir)}, nil
}

func (s *Local) Save(ctx context.Context, folder string, img application.Upload) (string, error) {
	name, err := objectName(folder, img)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, img.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return filepath.ToSlash(dst), nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (s *Local) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := filepath.Clean(filepath.FromSlash(ref))
	if !strings.HasPrefix(p, s.Dir+string(filepath.Separator)) {
		return fmt.Errorf("image %q is outside %s", ref, s.Dir)
	}
	err := os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
