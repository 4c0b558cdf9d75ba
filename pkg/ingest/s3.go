package ingest

import (
	"context"
	"fmt"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/s3storage"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// S3Source читает изображения из префикса ("папки") в S3-совместимом
// хранилище. Полезно когда фотографии товаров лежат не локально,
// а в бакете, организованном по цветовым подпапкам.
type S3Source struct {
	client s3storage.ClientInterface
	prefix string
}

// NewS3Source создаёт источник для префикса бакета.
func NewS3Source(client s3storage.ClientInterface, prefix string) *S3Source {
	return &S3Source{client: client, prefix: prefix}
}

// Load скачивает все подходящие объекты префикса.
//
// Синтез имени тот же, что у ZIP: `{папка}_{файл}` для вложенных ключей,
// поэтому цветовые подпапки бакета доходят до эвристик имени файла.
func (s *S3Source) Load(ctx context.Context) ([]analyzer.Asset, error) {
	objects, err := s.client.ListFiles(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("list s3 prefix %s: %w", s.prefix, err)
	}

	var keys []string
	for _, obj := range objects {
		if isHidden(obj.Key) || !isImageFile(obj.Key) {
			continue
		}
		keys = append(keys, obj.Key)
	}

	if err := checkBatchSize(len(keys)); err != nil {
		return nil, err
	}

	assets := make([]analyzer.Asset, 0, len(keys))
	for _, key := range keys {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("s3 download interrupted: %w", ctx.Err())
		default:
		}

		data, err := s.client.DownloadFile(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", key, err)
		}
		assets = append(assets, analyzer.Asset{
			Name: synthesizeName(key),
			Data: data,
		})
	}

	utils.Info("S3 prefix loaded", "prefix", s.prefix, "images", len(assets))
	return assets, nil
}
