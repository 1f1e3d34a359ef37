package screenersource

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"screener-service/internal/app/contracts"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"
)

const schemaExtension = ".json"

type fileSource struct {
	dir string
}

// NewFileSource reads <dir>/<screenerType>.json.
func NewFileSource(dir string) contracts.ScreenerSource {
	return &fileSource{dir: filepath.Clean(dir)}
}

func (s *fileSource) Name() string {
	return constvars.ScreenerSourceFile
}

func (s *fileSource) Fetch(ctx context.Context, screenerType string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, screenerType+schemaExtension))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(screenerType, s.Name())
	}
	if err != nil {
		return nil, exceptions.ErrScreenerSourceRead(err, s.Name())
	}
	return raw, nil
}

func (s *fileSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, exceptions.ErrScreenerSourceRead(err, s.Name())
	}
	var types []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), schemaExtension) {
			continue
		}
		types = append(types, strings.TrimSuffix(e.Name(), schemaExtension))
	}
	sort.Strings(types)
	return types, nil
}
