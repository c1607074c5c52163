// Package export writes ranked crawl rows to tabular artifacts.
package export

import (
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
)

// writeAtomic streams into a temp file beside path and renames it into place
// once write succeeds, so readers never observe a partial artifact.
func writeAtomic(path string, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create output dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return crerr.Wrapf(err, "create temp file for %s", path)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return crerr.Wrapf(err, "rename %s", path)
	}
	return nil
}
