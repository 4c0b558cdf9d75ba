package colorx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Регистрируем GIF декодер
	_ "image/jpeg" // Регистрируем JPEG декодер
	_ "image/png"  // Регистрируем PNG декодер
	"sort"

	"github.com/nfnt/resize"
)

// Размеры даунсемплинга перед подсчётом: палитра считается по более
// крупной выборке, доминирующий цвет — по более мелкой, но с более
// точным квантованием.
const (
	paletteSampleSize  = 150
	dominantSampleSize = 100

	paletteBucket  = 20
	dominantBucket = 10
)

// HistogramExtractor извлекает палитру через квантование цветов по корзинам.
//
// Алгоритм (на пиксельных данных после даунсемплинга):
//  1. Пропускаем прозрачные (alpha < 125), почти белые (все каналы > 240)
//     и почти чёрные (все каналы < 15) пиксели — это фон и тени.
//  2. Квантуем каналы по корзинам (floor(v/bucket)*bucket).
//  3. Считаем частоты корзин, берём топ-N.
//
// Детерминирован: одинаковые пиксельные данные дают одинаковый результат.
// При равных частотах корзины упорядочиваются по значению RGB.
type HistogramExtractor struct{}

var _ Extractor = (*HistogramExtractor)(nil)

// NewHistogramExtractor создаёт дефолтный экстрактор.
func NewHistogramExtractor() *HistogramExtractor {
	return &HistogramExtractor{}
}

// Palette возвращает топ-n цветов изображения по доле пикселей.
func (e *HistogramExtractor) Palette(data []byte, n int) ([]Sample, error) {
	return bucketPalette(data, n, paletteSampleSize, paletteBucket)
}

// Dominant возвращает доминирующий цвет с более точным квантованием.
//
// Если на изображении не осталось значимых пикселей (всё — фон),
// возвращает placeholder Unknown без ошибки.
func (e *HistogramExtractor) Dominant(data []byte) (Sample, error) {
	samples, err := bucketPalette(data, 1, dominantSampleSize, dominantBucket)
	if err != nil {
		return Unknown(), err
	}
	if len(samples) == 0 {
		return Unknown(), nil
	}
	return samples[0], nil
}

// bucketKey упаковывает квантованный цвет в один int для карты частот.
type bucketKey int32

func makeBucketKey(r, g, b uint8) bucketKey {
	return bucketKey(int32(r)<<16 | int32(g)<<8 | int32(b))
}

func (k bucketKey) rgb() RGB {
	return RGB{
		R: uint8(k >> 16 & 0xff),
		G: uint8(k >> 8 & 0xff),
		B: uint8(k & 0xff),
	}
}

func bucketPalette(data []byte, n int, sampleSize uint, bucket uint32) ([]Sample, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Даунсемплинг ради скорости: точность палитры от этого не страдает.
	img = resize.Thumbnail(sampleSize, sampleSize, img, resize.Lanczos3)

	bounds := img.Bounds()
	totalPixels := bounds.Dx() * bounds.Dy()
	if totalPixels == 0 {
		return nil, nil
	}

	counts := make(map[bucketKey]int)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			r := uint32(r16 >> 8)
			g := uint32(g16 >> 8)
			b := uint32(b16 >> 8)
			a := uint32(a16 >> 8)

			// Фон: прозрачное, почти белое, почти чёрное.
			if a < 125 || (r > 240 && g > 240 && b > 240) || (r < 15 && g < 15 && b < 15) {
				continue
			}

			br := uint8(r / bucket * bucket)
			bg := uint8(g / bucket * bucket)
			bb := uint8(b / bucket * bucket)
			counts[makeBucketKey(br, bg, bb)]++
		}
	}

	keys := make([]bucketKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j] // стабильный порядок при равных частотах
	})

	if len(keys) > n {
		keys = keys[:n]
	}

	samples := make([]Sample, 0, len(keys))
	for _, k := range keys {
		rgb := k.rgb()
		samples = append(samples, Sample{
			Name:       NameRGB(rgb),
			RGB:        rgb,
			Hex:        Hex(rgb),
			Percentage: float64(counts[k]) / float64(totalPixels) * 100,
		})
	}

	return samples, nil
}
