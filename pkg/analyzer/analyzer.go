// Package analyzer объединяет извлечение цвета, эвристики имени файла
// и классификацию категории в один проход по батчу изображений.
//
// Результат анализа (Image) — это исходный ассет плюс всё, что пайплайн
// смог о нём выяснить: палитра, доминирующий цвет, бренд, категория.
// Дальше с этим набором работает pkg/grouping.
package analyzer

import (
	"context"
	"fmt"

	"github.com/lenscraft/optibulk/pkg/classifier"
	"github.com/lenscraft/optibulk/pkg/colorx"
	"github.com/lenscraft/optibulk/pkg/events"
	"github.com/lenscraft/optibulk/pkg/naming"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// Уровни уверенности анализа. Значение зависит только от того,
// удалось ли декодировать изображение и собрать палитру.
const (
	// ConfidenceFull — изображение декодировано, палитра непустая.
	ConfidenceFull = 0.8
	// ConfidenceLow — декодировано, но палитра пуста (например, весь кадр
	// отфильтрован как фон).
	ConfidenceLow = 0.3
	// ConfidenceNone — изображение не удалось декодировать.
	ConfidenceNone = 0.0
)

// Asset — исходное изображение: имя файла и бинарные данные.
//
// Неизменяемый после создания. Живёт от выбора файла/архива до сброса
// сессии или успешной загрузки.
type Asset struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Image — проанализированное изображение.
//
// Color предпочитает подсказку из имени файла; если вокабуляр не совпал,
// берётся имя доминирующего цвета из палитры. Поля Category, Color и
// Brand могут быть изменены пользователем через операции редактирования
// в pkg/grouping; остальные поля после анализа не меняются.
type Image struct {
	Asset             Asset           `json:"asset"`
	Palette           []colorx.Sample `json:"palette"`
	Dominant          colorx.Sample   `json:"dominantColor"`
	SuggestedCategory string          `json:"suggestedCategory"`
	SuggestedColors   []string        `json:"suggestedColors"`
	Confidence        float64         `json:"confidence"`
	Category          string          `json:"category"`
	Color             string          `json:"color"`
	Brand             string          `json:"brand"`
}

// Analyzer выполняет последовательный анализ батча ассетов.
type Analyzer struct {
	extractor   colorx.Extractor
	strategy    classifier.Strategy
	paletteSize int
	emitter     events.Emitter
}

// Option настраивает Analyzer.
type Option func(*Analyzer)

// WithExtractor задаёт стратегию извлечения цвета.
func WithExtractor(e colorx.Extractor) Option {
	return func(a *Analyzer) { a.extractor = e }
}

// WithStrategy задаёт стратегию классификации категории.
func WithStrategy(s classifier.Strategy) Option {
	return func(a *Analyzer) { a.strategy = s }
}

// WithPaletteSize задаёт количество цветов в палитре.
func WithPaletteSize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.paletteSize = n
		}
	}
}

// WithEmitter подключает эмиттер прогресса. nil допустим.
func WithEmitter(e events.Emitter) Option {
	return func(a *Analyzer) { a.emitter = e }
}

// New создаёт Analyzer с дефолтами: гистограммный экстрактор,
// keyword-классификатор, палитра из 5 цветов.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		extractor:   colorx.NewHistogramExtractor(),
		strategy:    classifier.NewKeywordEngine(nil),
		paletteSize: 5,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeOne анализирует один ассет.
//
// Никогда не возвращает ошибку вызывающему: недекодируемое изображение
// даёт плейсхолдер Unknown с нулевой уверенностью (fail-soft контракт
// экстрактора цвета).
func (a *Analyzer) AnalyzeOne(ctx context.Context, asset Asset) Image {
	img := Image{
		Asset: asset,
		Brand: naming.ExtractBrand(asset.Name),
	}

	palette, err := a.extractor.Palette(asset.Data, a.paletteSize)
	if err != nil {
		utils.Warn("Image decode failed, using placeholder", "file", asset.Name, "error", err)
		img.Palette = []colorx.Sample{}
		img.Dominant = colorx.Unknown()
		img.Confidence = ConfidenceNone
	} else {
		img.Palette = palette
		// Доминирующий цвет — первый цвет ранжированной палитры: имя
		// цвета в fallback всегда согласовано с SuggestedColors[0].
		if len(palette) > 0 {
			img.Dominant = palette[0]
			img.Confidence = ConfidenceFull
		} else {
			img.Dominant = colorx.Unknown()
			img.Confidence = ConfidenceLow
		}
	}

	img.SuggestedColors = paletteNames(img.Palette)

	// Подсказка из имени файла приоритетнее цвета из пикселей.
	if hint := naming.ExtractColor(asset.Name); hint != "" {
		img.Color = hint
	} else {
		img.Color = img.Dominant.Name
	}

	category, err := a.strategy.Classify(ctx, asset.Name, asset.Data)
	if err != nil {
		utils.Warn("Classification failed, defaulting", "file", asset.Name, "error", err)
		category = classifier.CategoryFrames
	}
	img.SuggestedCategory = classifier.Normalize(category)
	img.Category = img.SuggestedCategory

	return img
}

// AnalyzeBatch последовательно анализирует батч ассетов.
//
// Строго по одному элементу за раз, без fan-out: это ограничивает
// нагрузку и даёт точный поэлементный прогресс. Анализ отдельного
// изображения не прерывает батч; прерывается он только отменой
// контекста (graceful shutdown процесса).
//
// Возвращает ошибку только при отмене контекста.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, assets []Asset) ([]Image, error) {
	total := len(assets)
	images := make([]Image, 0, total)

	utils.Info("Batch analysis started", "total", total)

	for i, asset := range assets {
		select {
		case <-ctx.Done():
			return images, fmt.Errorf("analysis interrupted: %w", ctx.Err())
		default:
		}

		img := a.AnalyzeOne(ctx, asset)
		images = append(images, img)

		processed := i + 1
		events.Emit(ctx, a.emitter, events.EventAnalyzeProgress, events.ProgressData{
			Item:      asset.Name,
			Processed: processed,
			Total:     total,
			Percent:   float64(processed) / float64(total) * 100,
		})
	}

	events.Emit(ctx, a.emitter, events.EventDone, events.DoneData{Succeeded: len(images)})
	utils.Info("Batch analysis finished", "analyzed", len(images))

	return images, nil
}

// paletteNames возвращает уникальные имена цветов палитры,
// сохраняя порядок ранжирования.
func paletteNames(palette []colorx.Sample) []string {
	seen := make(map[string]bool, len(palette))
	names := make([]string, 0, len(palette))
	for _, s := range palette {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		names = append(names, s.Name)
	}
	return names
}
