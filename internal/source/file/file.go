package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"

	"spendboard/internal/source"
)

// Source reads the extracts as CSV files from a local directory.
type Source struct {
	dir   string
	files map[source.Table]string
	enc   encoding.Encoding
}

var (
	_ source.TableReader = (*Source)(nil)
	_ source.Describer   = (*Source)(nil)
)

// New returns a Source rooted at dir. Tables missing from files fall back to
// source.DefaultFiles; encodingName is resolved with source.Encoding.
func New(dir string, files map[source.Table]string, encodingName string) (*Source, error) {
	enc, err := source.Encoding(encodingName)
	if err != nil {
		return nil, err
	}
	merged := source.DefaultFiles()
	for t, name := range files {
		if name != "" {
			merged[t] = name
		}
	}
	return &Source{dir: dir, files: merged, enc: enc}, nil
}

func (s *Source) Describe() string {
	return "file:" + s.dir
}

// Path returns the file a table is read from.
func (s *Source) Path(t source.Table) string {
	return filepath.Join(s.dir, s.files[t])
}

func (s *Source) ReadTable(ctx context.Context, t source.Table) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, ok := s.files[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrTableNotFound, t)
	}
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", source.ErrTableNotFound, t, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := source.DecodeCSV(f, s.enc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
