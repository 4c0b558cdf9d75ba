package colorx

import (
	"bytes"
	"fmt"
	"image"

	"github.com/EdlinOrg/prominentcolor"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// referenceColors — опорные RGB значения словаря для сопоставления
// кластеров k-means именам цветов по расстоянию в Lab.
var referenceColors = []struct {
	Name string
	RGB  RGB
}{
	{"Black", RGB{0, 0, 0}},
	{"White", RGB{255, 255, 255}},
	{"Gray", RGB{128, 128, 128}},
	{"Silver", RGB{192, 192, 192}},
	{"Gold", RGB{212, 175, 55}},
	{"Brown", RGB{139, 90, 43}},
	{"Red", RGB{220, 30, 30}},
	{"Pink", RGB{240, 120, 170}},
	{"Orange", RGB{255, 140, 0}},
	{"Yellow", RGB{240, 220, 50}},
	{"Green", RGB{40, 160, 60}},
	{"Cyan", RGB{40, 190, 190}},
	{"Blue", RGB{40, 80, 200}},
	{"Purple", RGB{130, 60, 180}},
}

// KMeansExtractor извлекает палитру кластеризацией k-means
// (github.com/EdlinOrg/prominentcolor).
//
// Альтернатива HistogramExtractor: лучше справляется с градиентами,
// но без гарантии детерминизма. Выбирается через analyzer.extractor
// в config.yaml.
type KMeansExtractor struct{}

var _ Extractor = (*KMeansExtractor)(nil)

// NewKMeansExtractor создаёт k-means экстрактор.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{}
}

// Palette возвращает до n кластеров, отсортированных по размеру.
//
// prominentcolor сам маскирует белый фон, поэтому отдельной фильтрации
// фоновых пикселей здесь нет.
func (e *KMeansExtractor) Palette(data []byte, n int) ([]Sample, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	k := n
	if k < 3 {
		k = 3 // prominentcolor работает стабильнее минимум с тремя кластерами
	}

	items, err := prominentcolor.KmeansWithAll(
		k,
		img,
		prominentcolor.ArgumentNoCropping,
		prominentcolor.DefaultSize,
		prominentcolor.GetDefaultMasks(),
	)
	if err != nil {
		return nil, fmt.Errorf("kmeans palette: %w", err)
	}

	total := 0
	for _, it := range items {
		total += it.Cnt
	}
	if total == 0 {
		return nil, nil
	}

	samples := make([]Sample, 0, len(items))
	for _, it := range items {
		rgb := RGB{R: uint8(it.Color.R), G: uint8(it.Color.G), B: uint8(it.Color.B)}
		samples = append(samples, Sample{
			Name:       nearestReferenceName(rgb),
			RGB:        rgb,
			Hex:        Hex(rgb),
			Percentage: float64(it.Cnt) / float64(total) * 100,
		})
	}

	if len(samples) > n {
		samples = samples[:n]
	}
	return samples, nil
}

// Dominant возвращает самый крупный кластер.
func (e *KMeansExtractor) Dominant(data []byte) (Sample, error) {
	samples, err := e.Palette(data, 3)
	if err != nil {
		return Unknown(), err
	}
	if len(samples) == 0 {
		return Unknown(), nil
	}
	return samples[0], nil
}

// nearestReferenceName ищет ближайший опорный цвет в Lab пространстве.
func nearestReferenceName(c RGB) string {
	target := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}

	best := "Mixed"
	bestDist := -1.0
	for _, ref := range referenceColors {
		rc := colorful.Color{
			R: float64(ref.RGB.R) / 255.0,
			G: float64(ref.RGB.G) / 255.0,
			B: float64(ref.RGB.B) / 255.0,
		}
		d := target.DistanceLab(rc)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = ref.Name
		}
	}
	return best
}
