package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/events"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// ZipSource читает изображения из ZIP-архива на диске.
//
// Пропускаются директории, записи `__MACOSX` и dotfiles. Битый архив —
// одна ошибка на весь источник, частичные результаты отбрасываются.
type ZipSource struct {
	path    string
	emitter events.Emitter
}

// NewZipSource создаёт источник для архива по указанному пути.
// emitter опционален (nil допустим).
func NewZipSource(path string, emitter events.Emitter) *ZipSource {
	return &ZipSource{path: path, emitter: emitter}
}

// Load извлекает все подходящие изображения архива.
func (z *ZipSource) Load(ctx context.Context) ([]analyzer.Asset, error) {
	data, err := os.ReadFile(z.path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return extractZip(ctx, data, filepath.Base(z.path), z.emitter)
}

// FromZipBytes извлекает изображения из ZIP-архива в памяти.
//
// Та же семантика, что у ZipSource.Load; используется когда архив
// приходит не с диска (например, скачан из S3).
func FromZipBytes(ctx context.Context, data []byte, name string, emitter events.Emitter) ([]analyzer.Asset, error) {
	return extractZip(ctx, data, name, emitter)
}

func extractZip(ctx context.Context, data []byte, name string, emitter events.Emitter) ([]analyzer.Asset, error) {
	events.Emit(ctx, emitter, events.EventExtract, events.ExtractData{Source: name})

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", name, err)
	}

	// Сначала считаем подходящие записи: лимит проверяется до
	// извлечения, чтобы не тратить память на заведомо избыточный батч.
	var entries []*zip.File
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if isHidden(f.Name) || !isImageFile(f.Name) {
			continue
		}
		entries = append(entries, f)
	}

	if err := checkBatchSize(len(entries)); err != nil {
		return nil, err
	}

	assets := make([]analyzer.Asset, 0, len(entries))
	for _, f := range entries {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("extraction interrupted: %w", ctx.Err())
		default:
		}

		content, err := readZipEntry(f)
		if err != nil {
			// Битая запись портит весь архив: частичный батч хуже,
			// чем явная ошибка.
			return nil, fmt.Errorf("extract %s from %s: %w", f.Name, name, err)
		}
		assets = append(assets, analyzer.Asset{
			Name: synthesizeName(f.Name),
			Data: content,
		})
	}

	utils.Info("Archive extracted", "archive", name, "images", len(assets))
	events.Emit(ctx, emitter, events.EventExtract, events.ExtractData{Source: name, Count: len(assets)})

	return assets, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
