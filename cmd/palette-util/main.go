// palette-util — отладочная утилита извлечения цвета.
//
// Показывает доминирующий цвет и палитру одного изображения тем же
// экстрактором, что использует основной пайплайн. Удобно для проверки
// порогов именования цветов на реальных фотографиях товаров.
//
// Использование:
//
//	./palette-util -n 5 photo.jpg
//	./palette-util -kmeans photo.jpg
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/lenscraft/optibulk/pkg/colorx"
	"github.com/lenscraft/optibulk/pkg/naming"
)

func main() {
	var (
		paletteSize = flag.Int("n", 5, "количество цветов в палитре")
		useKMeans   = flag.Bool("kmeans", false, "k-means экстрактор вместо гистограммного")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: palette-util [-n N] [-kmeans] <image>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}

	var extractor colorx.Extractor = colorx.NewHistogramExtractor()
	if *useKMeans {
		extractor = colorx.NewKMeansExtractor()
	}

	dominant, err := extractor.Dominant(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract %s: %v\n", path, err)
		os.Exit(1)
	}
	palette, err := extractor.Palette(data, *paletteSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("File:     %s\n", path)
	if hint := naming.ExtractColor(path); hint != "" {
		fmt.Printf("Filename hint: %s\n", hint)
	}
	fmt.Printf("Dominant: %s\n", renderSample(dominant))
	fmt.Println("Palette:")
	for i, s := range palette {
		fmt.Printf("  %d. %s\n", i+1, renderSample(s))
	}
}

// renderSample рисует цветовой свотч в цвете терминала.
func renderSample(s colorx.Sample) string {
	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(s.Hex)).
		Render("  ")
	return fmt.Sprintf("%s %-8s %s  %5.1f%%", swatch, s.Name, s.Hex, s.Percentage)
}
