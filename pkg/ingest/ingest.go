// Package ingest загружает батч изображений из внешних источников:
// ZIP-архив, локальная директория или префикс в S3.
//
// Все источники реализуют единый интерфейс Source и подчиняются общим
// правилам: фильтр по расширению, жёсткий лимит размера батча и синтез
// имени файла `{папка}_{файл}` для вложенных записей — имя папки часто
// кодирует цвет, и эвристики имени файла должны его видеть.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/lenscraft/optibulk/pkg/analyzer"
)

// MaxBatchSize — жёсткий лимит изображений в одном батче.
//
// Превышение — ошибка, а не усечение: пользователь должен явно разбить
// выборку, а не молча потерять хвост.
const MaxBatchSize = 600

var (
	// ErrBatchTooLarge возвращается когда источник содержит больше
	// MaxBatchSize подходящих изображений.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrNoImages возвращается когда источник не содержит ни одного
	// подходящего изображения.
	ErrNoImages = errors.New("no images found in source")
)

// Source — источник батча изображений.
type Source interface {
	// Load возвращает все подходящие изображения источника.
	//
	// Порядок стабилен (порядок записей архива / сортировка листинга).
	// Возвращает ErrBatchTooLarge или ErrNoImages при нарушении лимитов.
	Load(ctx context.Context) ([]analyzer.Asset, error)
}

// allowedExtensions — расширения, которые пайплайн считает изображениями.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// isImageFile проверяет расширение имени файла (без учёта регистра).
func isImageFile(name string) bool {
	return allowedExtensions[strings.ToLower(path.Ext(name))]
}

// isHidden проверяет, является ли запись скрытой (dotfile) или служебной
// записью macOS-архиватора.
func isHidden(entryPath string) bool {
	if strings.HasPrefix(entryPath, "__MACOSX") {
		return true
	}
	for _, part := range strings.Split(entryPath, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// synthesizeName строит имя ассета из пути записи.
//
// Для вложенной записи `Black/IMG_001.jpg` возвращает `Black_IMG_001.jpg`:
// папки в архивах часто названы по цвету или модели, и эта информация
// должна дойти до эвристик имени файла.
func synthesizeName(entryPath string) string {
	parts := strings.Split(strings.Trim(entryPath, "/"), "/")
	if len(parts) > 1 {
		return parts[len(parts)-2] + "_" + parts[len(parts)-1]
	}
	return parts[len(parts)-1]
}

// checkBatchSize валидирует количество изображений против лимитов.
func checkBatchSize(n int) error {
	if n == 0 {
		return ErrNoImages
	}
	if n > MaxBatchSize {
		return fmt.Errorf("%w: %d images, limit %d", ErrBatchTooLarge, n, MaxBatchSize)
	}
	return nil
}
