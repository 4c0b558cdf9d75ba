package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// DirSource читает изображения из локальной директории (без рекурсии).
type DirSource struct {
	dir string
}

// NewDirSource создаёт источник для директории.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Load читает все подходящие файлы директории в алфавитном порядке.
func (d *DirSource) Load(ctx context.Context) ([]analyzer.Asset, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isHidden(name) || !isImageFile(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if err := checkBatchSize(len(names)); err != nil {
		return nil, err
	}

	assets := make([]analyzer.Asset, 0, len(names))
	for _, name := range names {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("directory read interrupted: %w", ctx.Err())
		default:
		}

		data, err := os.ReadFile(filepath.Join(d.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		assets = append(assets, analyzer.Asset{Name: name, Data: data})
	}

	utils.Info("Directory scanned", "dir", d.dir, "images", len(assets))
	return assets, nil
}
