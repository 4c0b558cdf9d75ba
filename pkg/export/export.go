// Package export сериализует текущее состояние группировки в JSON-файл.
//
// Это чисто локальная операция (без сети): снимок анализа для передачи
// коллегам или отладки эвристик. Форма документа зависит от режима
// группировки.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/colorx"
	"github.com/lenscraft/optibulk/pkg/grouping"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// imageEntry — одно изображение в экспорте.
type imageEntry struct {
	Filename      string          `json:"filename"`
	DominantColor colorx.Sample   `json:"dominantColor"`
	Palette       []colorx.Sample `json:"palette"`
	Confidence    float64         `json:"confidence"`
	IsPrimary     bool            `json:"isPrimary"`
}

// variantEntry — цветовой вариант товара в экспорте.
type variantEntry struct {
	Color        string       `json:"color"`
	ImageCount   int          `json:"imageCount"`
	PrimaryImage string       `json:"primaryImage"`
	Images       []imageEntry `json:"images"`
}

// productEntry — товар с вариантами в экспорте (режим color).
type productEntry struct {
	ProductName   string         `json:"productName"`
	Brand         string         `json:"brand"`
	Category      string         `json:"category"`
	ColorVariants []variantEntry `json:"colorVariants"`
}

// groupEntry — группа ракурсов в экспорте (режим angle).
type groupEntry struct {
	ProductName  string       `json:"productName"`
	Brand        string       `json:"brand"`
	Category     string       `json:"category"`
	Color        string       `json:"color"`
	PrimaryImage string       `json:"primaryImage"`
	Images       []imageEntry `json:"images"`
}

// singleEntry — одиночное изображение в экспорте (режим none).
type singleEntry struct {
	Filename      string          `json:"filename"`
	Brand         string          `json:"brand"`
	Category      string          `json:"category"`
	Color         string          `json:"color"`
	DominantColor colorx.Sample   `json:"dominantColor"`
	Palette       []colorx.Sample `json:"palette"`
	Confidence    float64         `json:"confidence"`
}

// document — корень экспортируемого JSON.
type document struct {
	Mode       string `json:"mode"`
	ExportedAt string `json:"exportedAt"`
	Items      any    `json:"items"`
}

// modeSlug возвращает слаг режима для имени файла.
func modeSlug(mode grouping.Mode) string {
	switch mode {
	case grouping.ModeColor:
		return "color-variants"
	case grouping.ModeAngle:
		return "angle-grouped"
	default:
		return "individual"
	}
}

// Filename строит имя файла экспорта для режима и момента времени:
// image-analysis-{режим}-{unix millis}.json.
func Filename(mode grouping.Mode, now time.Time) string {
	return fmt.Sprintf("image-analysis-%s-%d.json", modeSlug(mode), now.UnixMilli())
}

// Marshal сериализует активную коллекцию сессии в JSON (с отступами).
func Marshal(session *grouping.Session) ([]byte, error) {
	doc := document{
		Mode:       string(session.Mode()),
		ExportedAt: time.Now().Format(time.RFC3339),
	}

	switch session.Mode() {
	case grouping.ModeColor:
		products := session.Products()
		items := make([]productEntry, 0, len(products))
		for _, p := range products {
			items = append(items, productToEntry(p))
		}
		doc.Items = items

	case grouping.ModeAngle:
		groups := session.Groups()
		items := make([]groupEntry, 0, len(groups))
		for _, g := range groups {
			items = append(items, groupToEntry(g))
		}
		doc.Items = items

	default:
		images := session.Images()
		items := make([]singleEntry, 0, len(images))
		for _, img := range images {
			items = append(items, singleEntry{
				Filename:      img.Asset.Name,
				Brand:         img.Brand,
				Category:      img.Category,
				Color:         img.Color,
				DominantColor: img.Dominant,
				Palette:       img.Palette,
				Confidence:    img.Confidence,
			})
		}
		doc.Items = items
	}

	return json.MarshalIndent(doc, "", "  ")
}

// WriteFile сериализует сессию и сохраняет файл в директорию dir.
//
// Возвращает полный путь записанного файла.
func WriteFile(session *grouping.Session, dir string) (string, error) {
	data, err := Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	path := filepath.Join(dir, Filename(session.Mode(), time.Now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}

	utils.Info("Analysis exported", "path", path, "mode", string(session.Mode()))
	return path, nil
}

func productToEntry(p grouping.ProductWithVariants) productEntry {
	entry := productEntry{
		ProductName:   p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		ColorVariants: make([]variantEntry, 0, len(p.ColorVariants)),
	}
	for _, v := range p.ColorVariants {
		ve := variantEntry{
			Color:        v.Color,
			ImageCount:   len(v.Images),
			PrimaryImage: v.Images[v.PrimaryImageIndex].Asset.Name,
			Images:       imagesToEntries(v.Images, v.PrimaryImageIndex),
		}
		entry.ColorVariants = append(entry.ColorVariants, ve)
	}
	return entry
}

func groupToEntry(g grouping.ProductGroup) groupEntry {
	return groupEntry{
		ProductName:  g.Name,
		Brand:        g.Brand,
		Category:     g.Category,
		Color:        g.Color,
		PrimaryImage: g.Images[g.PrimaryImageIndex].Asset.Name,
		Images:       imagesToEntries(g.Images, g.PrimaryImageIndex),
	}
}

func imagesToEntries(images []analyzer.Image, primary int) []imageEntry {
	entries := make([]imageEntry, 0, len(images))
	for i, img := range images {
		entries = append(entries, imageEntry{
			Filename:      img.Asset.Name,
			DominantColor: img.Dominant,
			Palette:       img.Palette,
			Confidence:    img.Confidence,
			IsPrimary:     i == primary,
		})
	}
	return entries
}
