package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Регистрируем GIF декодер
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер

	"github.com/nfnt/resize"
)

// ResizeImage ресайзит изображение до указанной ширины, сохраняя пропорции,
// и перекодирует его в JPEG.
//
// Параметры:
//   - data: байты исходного изображения (JPEG, PNG, GIF)
//   - maxWidth: целевая ширина в пикселях. Если 0 или меньше исходной ширины —
//     ресайз не применяется.
//   - quality: качество JPEG при кодировании (1-100). Рекомендуется 85.
//
// Используется vision-классификатором перед base64-кодированием: модели
// не нужен оригинал в полном разрешении.
func ResizeImage(data []byte, maxWidth int, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if maxWidth > 0 && bounds.Dx() > maxWidth {
		aspect := float64(bounds.Dy()) / float64(bounds.Dx())
		newHeight := uint(float64(maxWidth) * aspect)
		img = resize.Resize(uint(maxWidth), newHeight, img, resize.Lanczos3)
	}

	// Конвертируем в JPEG даже без ресайза — для консистентного формата.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode to jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
