// Package colorx предоставляет извлечение доминирующего цвета и палитры
// из пиксельных данных изображения.
//
// Архитектура:
//
// Extractor — стратегия извлечения палитры. Две реализации:
//   - HistogramExtractor: квантование цветов по корзинам (дефолт).
//     Детерминирован для одинаковых пиксельных данных.
//   - KMeansExtractor: кластеризация через prominentcolor
//     (альтернатива, выбирается в config.yaml).
//
// Ошибки декодирования не пробрасываются наверх как фатальные: у вызывающей
// стороны (pkg/analyzer) есть fail-soft контракт — placeholder Unknown
// с нулевой уверенностью.
package colorx

import (
	"fmt"
)

// Sample — один цвет палитры: имя, RGB, hex и доля пикселей.
type Sample struct {
	Name       string  `json:"name"`
	RGB        RGB     `json:"rgb"`
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// RGB — цвет в 8-битных каналах.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Unknown возвращает placeholder для изображений, которые не удалось
// проанализировать: {Unknown, {0,0,0}, #000000, 0}.
func Unknown() Sample {
	return Sample{
		Name: "Unknown",
		RGB:  RGB{},
		Hex:  "#000000",
	}
}

// Extractor — стратегия извлечения палитры из байтов изображения.
//
// Palette возвращает до n цветов, отсортированных по убыванию доли пикселей.
// Dominant возвращает один доминирующий цвет (может использовать более
// мелкое квантование, чем Palette).
type Extractor interface {
	Palette(data []byte, n int) ([]Sample, error)
	Dominant(data []byte) (Sample, error)
}

// Hex форматирует RGB в строку вида "#1a2b3c".
func Hex(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NameRGB сопоставляет RGB значение имени цвета из словаря каталога.
//
// Таблица порогов проверяется по порядку, первый сработавший порог
// побеждает. Если ни один не сработал — "Mixed".
func NameRGB(c RGB) string {
	r, g, b := int(c.R), int(c.G), int(c.B)

	abs := func(x int) int {
		if x < 0 {
			return -x
		}
		return x
	}

	switch {
	case r < 50 && g < 50 && b < 50:
		return "Black"
	case r > 200 && g > 200 && b > 200:
		return "White"
	case abs(r-g) < 30 && abs(g-b) < 30 && abs(r-b) < 30:
		return "Gray"
	case r > 150 && g < 100 && b < 100:
		return "Red"
	case r > 180 && g < 150 && b > 100 && b < 200:
		return "Pink"
	case r > 200 && g > 100 && g < 180 && b < 100:
		return "Orange"
	case r > 200 && g > 200 && b < 150:
		return "Yellow"
	case g > 150 && r < 150 && b < 150:
		return "Green"
	case g > 150 && b > 150 && r < 100:
		return "Cyan"
	case b > 150 && r < 100 && g < 150:
		return "Blue"
	case r > 100 && b > 150 && g < 150:
		return "Purple"
	case r > 100 && r < 180 && g > 50 && g < 130 && b > 20 && b < 100:
		return "Brown"
	case r > 180 && g > 140 && g < 200 && b < 100:
		return "Gold"
	case r > 150 && g > 150 && b > 150 && abs(r-g) < 20 && abs(g-b) < 20:
		return "Silver"
	default:
		return "Mixed"
	}
}
