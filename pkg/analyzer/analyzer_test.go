package analyzer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenscraft/optibulk/pkg/classifier"
	"github.com/lenscraft/optibulk/pkg/colorx"
	"github.com/lenscraft/optibulk/pkg/events"
)

func encodePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnalyzeOneFilenameColorWins(t *testing.T) {
	a := New()
	// Красное изображение, но в имени файла есть Black.
	data := encodePNG(t, color.RGBA{200, 30, 30, 255})

	img := a.AnalyzeOne(context.Background(), Asset{Name: "RayBan_Aviator_Black.jpg", Data: data})

	assert.Equal(t, "Black", img.Color)
	assert.Equal(t, "Red", img.Dominant.Name)
	assert.Equal(t, "RayBan", img.Brand)
	assert.InDelta(t, ConfidenceFull, img.Confidence, 1e-9)
}

func TestAnalyzeOneDominantFallback(t *testing.T) {
	a := New()
	data := encodePNG(t, color.RGBA{40, 80, 200, 255})

	img := a.AnalyzeOne(context.Background(), Asset{Name: "Oakley_Holbrook_01.jpg", Data: data})

	// Вокабуляр не совпал — берётся имя доминирующего цвета.
	assert.Equal(t, "Blue", img.Color)
	assert.Equal(t, classifier.CategoryFrames, img.Category)
}

func TestAnalyzeOneDominantIsTopPaletteColor(t *testing.T) {
	a := New()
	data := encodePNG(t, color.RGBA{40, 80, 200, 255})

	img := a.AnalyzeOne(context.Background(), Asset{Name: "Oakley_Holbrook_01.jpg", Data: data})

	require.NotEmpty(t, img.Palette)
	assert.Equal(t, img.Palette[0], img.Dominant)
	assert.Equal(t, img.Dominant.Name, img.SuggestedColors[0])
}

func TestAnalyzeOneUndecodable(t *testing.T) {
	a := New()

	img := a.AnalyzeOne(context.Background(), Asset{Name: "broken.jpg", Data: []byte("not an image")})

	assert.Equal(t, colorx.Unknown(), img.Dominant)
	assert.Empty(t, img.Palette)
	assert.Equal(t, ConfidenceNone, img.Confidence)
	// Анализ не падает и всё равно заполняет поля из имени файла.
	assert.Equal(t, "broken", img.Brand)
}

func TestAnalyzeBatchSequentialProgress(t *testing.T) {
	emitter := events.NewChanEmitter(16)
	sub := emitter.Subscribe()
	a := New(WithEmitter(emitter))

	data := encodePNG(t, color.RGBA{200, 30, 30, 255})
	assets := []Asset{
		{Name: "a_black.jpg", Data: data},
		{Name: "b_brown.jpg", Data: data},
		{Name: "c.jpg", Data: data},
	}

	images, err := a.AnalyzeBatch(context.Background(), assets)
	require.NoError(t, err)
	require.Len(t, images, 3)
	emitter.Close()

	var progress []events.ProgressData
	var done int
	for event := range sub.Events() {
		switch data := event.Data.(type) {
		case events.ProgressData:
			progress = append(progress, data)
		case events.DoneData:
			done++
			assert.Equal(t, 3, data.Succeeded)
		}
	}

	require.Len(t, progress, 3)
	assert.Equal(t, 1, done)
	assert.Equal(t, "a_black.jpg", progress[0].Item)
	assert.InDelta(t, 100.0/3.0, progress[0].Percent, 1e-9)
	assert.InDelta(t, 100.0, progress[2].Percent, 1e-9)
}

func TestAnalyzeBatchContextCancel(t *testing.T) {
	a := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	images, err := a.AnalyzeBatch(ctx, []Asset{{Name: "x.jpg"}})
	assert.Error(t, err)
	assert.Empty(t, images)
}

func TestAnalyzeBatchContinuesPastBadImage(t *testing.T) {
	a := New()
	good := encodePNG(t, color.RGBA{200, 30, 30, 255})
	assets := []Asset{
		{Name: "good_1.jpg", Data: good},
		{Name: "broken.jpg", Data: []byte("garbage")},
		{Name: "good_2.jpg", Data: good},
	}

	images, err := a.AnalyzeBatch(context.Background(), assets)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, ConfidenceFull, images[0].Confidence)
	assert.Equal(t, ConfidenceNone, images[1].Confidence)
	assert.Equal(t, ConfidenceFull, images[2].Confidence)
}
