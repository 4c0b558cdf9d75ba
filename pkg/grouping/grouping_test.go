package grouping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/colorx"
	"github.com/lenscraft/optibulk/pkg/naming"
)

// mkImage строит проанализированное изображение из одного имени файла,
// как это сделал бы pkg/analyzer (без декодирования пикселей).
func mkImage(name string) analyzer.Image {
	color := naming.ExtractColor(name)
	if color == "" {
		color = "Mixed"
	}
	return analyzer.Image{
		Asset:    analyzer.Asset{Name: name},
		Dominant: colorx.Unknown(),
		Brand:    naming.ExtractBrand(name),
		Color:    color,
		Category: "Frames",
	}
}

func mkImages(names ...string) []analyzer.Image {
	images := make([]analyzer.Image, 0, len(names))
	for _, n := range names {
		images = append(images, mkImage(n))
	}
	return images
}

func TestColorGroupingScenario(t *testing.T) {
	images := mkImages(
		"RayBan_Aviator_Black_front.jpg",
		"RayBan_Aviator_Black_side.jpg",
		"RayBan_Aviator_Brown_front.jpg",
		"Oakley_Holbrook_Black.jpg",
	)

	s := NewSession(context.Background(), images, nil)
	require.Equal(t, ModeColor, s.Mode())

	products := s.Products()
	require.Len(t, products, 2)

	aviator := products[0]
	assert.Equal(t, "Aviator", aviator.Name)
	assert.Equal(t, "RayBan", aviator.Brand)
	require.Len(t, aviator.ColorVariants, 2)
	assert.Equal(t, "Black", aviator.ColorVariants[0].Color)
	assert.Len(t, aviator.ColorVariants[0].Images, 2)
	assert.Equal(t, "Brown", aviator.ColorVariants[1].Color)
	assert.Len(t, aviator.ColorVariants[1].Images, 1)

	holbrook := products[1]
	assert.Equal(t, "Holbrook", holbrook.Name)
	assert.Equal(t, "Oakley", holbrook.Brand)
	require.Len(t, holbrook.ColorVariants, 1)
	assert.Equal(t, "Black", holbrook.ColorVariants[0].Color)
	assert.Len(t, holbrook.ColorVariants[0].Images, 1)
}

func TestAngleGroupingKey(t *testing.T) {
	images := mkImages(
		"Product_front_02.jpg",
		"Product_back_01.jpg",
		"Other_front_01.jpg",
	)

	s := NewSession(context.Background(), images, nil)
	s.SetMode(context.Background(), ModeAngle)

	groups := s.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Product", groups[0].Name)
	assert.Len(t, groups[0].Images, 2)
	assert.Len(t, groups[1].Images, 1)
}

func TestPrimaryImagePrefersFrontView(t *testing.T) {
	images := mkImages(
		"Aviator_Black_side.jpg",
		"Aviator_Black_back.jpg",
		"Aviator_Black_front.jpg",
	)

	s := NewSession(context.Background(), images, nil)
	products := s.Products()
	require.Len(t, products, 1)
	require.Len(t, products[0].ColorVariants, 1)
	assert.Equal(t, 2, products[0].ColorVariants[0].PrimaryImageIndex)
}

func TestCycleRing(t *testing.T) {
	ctx := context.Background()
	images := mkImages(
		"RayBan_Aviator_Black_front.jpg",
		"RayBan_Aviator_Brown_front.jpg",
	)

	s := NewSession(ctx, images, nil)
	s.SetMode(ctx, ModeNone)

	assert.Equal(t, ModeAngle, s.Cycle(ctx))
	assert.Equal(t, ModeColor, s.Cycle(ctx))
	assert.Equal(t, ModeNone, s.Cycle(ctx))

	// После полного круга пересчёт даёт те же группы.
	s.Cycle(ctx)
	s.Cycle(ctx)
	products := s.Products()
	require.Len(t, products, 1)
	assert.Len(t, products[0].ColorVariants, 2)
}

func TestRegroupIdempotent(t *testing.T) {
	ctx := context.Background()
	images := mkImages(
		"RayBan_Aviator_Black_front.jpg",
		"RayBan_Aviator_Black_side.jpg",
		"RayBan_Aviator_Brown_front.jpg",
		"Oakley_Holbrook_Black.jpg",
	)

	s := NewSession(ctx, images, nil)
	first := snapshot(s.Products())
	s.SetMode(ctx, ModeColor)
	second := snapshot(s.Products())

	assert.Equal(t, first, second)
}

// snapshot сводит товары к сравнимой структуре без сгенерированных ID.
func snapshot(products []ProductWithVariants) [][]string {
	var out [][]string
	for _, p := range products {
		row := []string{p.Name, p.Brand}
		for _, v := range p.ColorVariants {
			row = append(row, v.Color)
			for _, img := range v.Images {
				row = append(row, img.Asset.Name)
			}
		}
		out = append(out, row)
	}
	return out
}

func TestRemoveGroupImageAdjustsPrimary(t *testing.T) {
	ctx := context.Background()
	images := mkImages(
		"Product_side_01.jpg",
		"Product_back_02.jpg",
		"Product_front_03.jpg",
	)

	s := NewSession(ctx, images, nil)
	s.SetMode(ctx, ModeAngle)
	groups := s.Groups()
	require.Len(t, groups, 1)
	id := groups[0].ID
	require.Equal(t, 2, groups[0].PrimaryImageIndex)

	// Удаление изображения до primary сдвигает индекс влево.
	require.NoError(t, s.RemoveGroupImage(id, 0))
	groups = s.Groups()
	assert.Equal(t, 1, groups[0].PrimaryImageIndex)
	assertInvariants(t, s)

	// Опустевшая группа исчезает из сессии.
	require.NoError(t, s.RemoveGroupImage(id, 0))
	require.NoError(t, s.RemoveGroupImage(id, 0))
	assert.Empty(t, s.Groups())
}

func TestRemoveVariantImageDropsEmptyVariant(t *testing.T) {
	ctx := context.Background()
	images := mkImages(
		"RayBan_Aviator_Black_front.jpg",
		"RayBan_Aviator_Brown_front.jpg",
	)

	s := NewSession(ctx, images, nil)
	products := s.Products()
	require.Len(t, products, 1)
	id := products[0].ID

	require.NoError(t, s.RemoveVariantImage(id, 0, 0))
	products = s.Products()
	require.Len(t, products, 1)
	require.Len(t, products[0].ColorVariants, 1)
	assert.Equal(t, "Brown", products[0].ColorVariants[0].Color)
	assertInvariants(t, s)

	// Последний вариант тянет за собой весь товар.
	require.NoError(t, s.RemoveVariantImage(id, 0, 0))
	assert.Empty(t, s.Products())
}

func TestSetVariantColorUniqueness(t *testing.T) {
	ctx := context.Background()
	images := mkImages(
		"RayBan_Aviator_Black_front.jpg",
		"RayBan_Aviator_Brown_front.jpg",
	)

	s := NewSession(ctx, images, nil)
	id := s.Products()[0].ID

	err := s.SetVariantColor(id, 1, "black")
	assert.ErrorIs(t, err, ErrDuplicateColor)

	require.NoError(t, s.SetVariantColor(id, 1, "Havana"))
	assert.Equal(t, "Havana", s.Products()[0].ColorVariants[1].Color)
}

func TestEditSequencePreservesInvariants(t *testing.T) {
	ctx := context.Background()
	images := mkImages(
		"RayBan_Aviator_Black_front.jpg",
		"RayBan_Aviator_Black_side.jpg",
		"RayBan_Aviator_Black_back.jpg",
		"RayBan_Aviator_Brown_front.jpg",
		"Oakley_Holbrook_Black_01.jpg",
	)

	s := NewSession(ctx, images, nil)
	id := s.Products()[0].ID

	require.NoError(t, s.RenameProduct(id, "Aviator Classic"))
	require.NoError(t, s.SetProductCategory(id, "Sunglasses"))
	require.NoError(t, s.SetVariantPrimary(id, 0, 2))
	require.NoError(t, s.RemoveVariantImage(id, 0, 0))
	require.NoError(t, s.SelectVariant(id, 1))
	assertInvariants(t, s)

	// Ошибочные индексы не ломают состояние.
	assert.ErrorIs(t, s.SetVariantPrimary(id, 0, 99), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.SelectVariant(id, -1), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.RenameGroup(id, "x"), ErrWrongMode)
	assertInvariants(t, s)
}

func TestImageEditsInNoneMode(t *testing.T) {
	ctx := context.Background()
	images := mkImages(
		"RayBan_Aviator_Black_front.jpg",
		"Oakley_Holbrook_Black.jpg",
	)

	s := NewSession(ctx, images, nil)
	assert.ErrorIs(t, s.SetImageColor(0, "Gold"), ErrWrongMode)

	s.SetMode(ctx, ModeNone)
	require.NoError(t, s.SetImageCategory(0, "Sunglasses"))
	require.NoError(t, s.SetImageColor(0, "Gold"))
	require.NoError(t, s.SetImageBrand(0, "Luxottica"))
	img := s.Images()[0]
	assert.Equal(t, "Sunglasses", img.Category)
	assert.Equal(t, "Gold", img.Color)
	assert.Equal(t, "Luxottica", img.Brand)

	assert.ErrorIs(t, s.RemoveImage(5), ErrIndexOutOfRange)
	require.NoError(t, s.RemoveImage(1))
	require.Len(t, s.Images(), 1)

	// Перегруппировка строится уже из отредактированного набора.
	s.SetMode(ctx, ModeColor)
	products := s.Products()
	require.Len(t, products, 1)
	require.Len(t, products[0].ColorVariants, 1)
	assert.Equal(t, "Gold", products[0].ColorVariants[0].Color)
}

func TestOperationsOnMissingID(t *testing.T) {
	s := NewSession(context.Background(), mkImages("a_black.jpg"), nil)

	assert.ErrorIs(t, s.RenameProduct("nope", "x"), ErrNotFound)
	assert.ErrorIs(t, s.RemoveProduct("nope"), ErrNotFound)
}

// assertInvariants проверяет структурные инварианты активной коллекции.
func assertInvariants(t *testing.T, s *Session) {
	t.Helper()
	for _, g := range s.Groups() {
		require.NotEmpty(t, g.Images)
		require.GreaterOrEqual(t, g.PrimaryImageIndex, 0)
		require.Less(t, g.PrimaryImageIndex, len(g.Images))
	}
	for _, p := range s.Products() {
		require.NotEmpty(t, p.ColorVariants)
		require.GreaterOrEqual(t, p.SelectedColorIndex, 0)
		require.Less(t, p.SelectedColorIndex, len(p.ColorVariants))
		seen := map[string]bool{}
		for _, v := range p.ColorVariants {
			require.NotEmpty(t, v.Images)
			require.GreaterOrEqual(t, v.PrimaryImageIndex, 0)
			require.Less(t, v.PrimaryImageIndex, len(v.Images))
			require.False(t, seen[v.Color], "duplicate variant color %s", v.Color)
			seen[v.Color] = true
		}
	}
}
