package gallery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/grouping"
	"github.com/lenscraft/optibulk/pkg/naming"
)

// Form — готовое multipart-тело запроса.
//
// Тело собирается один раз и переиспользуется при retry.
type Form struct {
	ContentType string
	Body        []byte
}

// variantMeta — элемент поля color_variants.
type variantMeta struct {
	Color             string `json:"color"`
	PrimaryImageIndex int    `json:"primaryImageIndex"`
	ImageCount        int    `json:"imageCount"`
}

// formBuilder накапливает поля и файлы multipart-формы.
type formBuilder struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newFormBuilder() *formBuilder {
	b := &formBuilder{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

func (b *formBuilder) field(name, value string) {
	if b.err != nil {
		return
	}
	b.err = b.writer.WriteField(name, value)
}

func (b *formBuilder) file(name, filename string, data []byte) {
	if b.err != nil {
		return
	}
	part, err := b.writer.CreateFormFile(name, filename)
	if err != nil {
		b.err = err
		return
	}
	_, b.err = part.Write(data)
}

func (b *formBuilder) build() (*Form, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.writer.Close(); err != nil {
		return nil, err
	}
	return &Form{
		ContentType: b.writer.FormDataContentType(),
		Body:        b.buf.Bytes(),
	}, nil
}

// buildVariantsForm собирает payload для POST /products/create-with-variants.
//
// Контракт endpoint'а: images[] содержит все изображения всех вариантов
// подряд (порядок значим), а сопутствующие поля image_color_{i},
// image_is_primary_{i} и image_variant_index_{i} описывают каждое
// изображение по его глобальному индексу i.
func buildVariantsForm(p grouping.ProductWithVariants) (*Form, error) {
	b := newFormBuilder()

	b.field("name", p.Name)
	b.field("brand", p.Brand)
	b.field("category", p.Category)
	b.field("has_color_variants", "true")
	b.field("price", "0")
	b.field("stock_quantity", "0")
	b.field("description", fmt.Sprintf("%s %s - Available in %d colors", p.Brand, p.Name, len(p.ColorVariants)))

	meta := make([]variantMeta, 0, len(p.ColorVariants))
	for _, v := range p.ColorVariants {
		meta = append(meta, variantMeta{
			Color:             v.Color,
			PrimaryImageIndex: v.PrimaryImageIndex,
			ImageCount:        len(v.Images),
		})
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal color_variants: %w", err)
	}
	b.field("color_variants", string(metaJSON))

	i := 0
	for vi, v := range p.ColorVariants {
		for ii, img := range v.Images {
			b.file("images[]", img.Asset.Name, img.Asset.Data)
			b.field(fmt.Sprintf("image_color_%d", i), v.Color)
			b.field(fmt.Sprintf("image_is_primary_%d", i), strconv.FormatBool(ii == v.PrimaryImageIndex))
			b.field(fmt.Sprintf("image_variant_index_%d", i), strconv.Itoa(vi))
			i++
		}
	}

	return b.build()
}

// buildGroupForm собирает payload для POST /products из группы ракурсов.
func buildGroupForm(g grouping.ProductGroup) (*Form, error) {
	b := newFormBuilder()

	b.field("name", g.Name)
	b.field("brand", g.Brand)
	b.field("category", g.Category)
	b.field("color", g.Color)
	b.field("price", "0")
	b.field("stock_quantity", "0")
	b.field("description", describe(g.Brand, g.Name, g.Category))

	for _, img := range g.Images {
		b.file("images[]", img.Asset.Name, img.Asset.Data)
	}
	b.field("primary_image_index", strconv.Itoa(g.PrimaryImageIndex))

	return b.build()
}

// buildSingleForm собирает payload для POST /products из одиночного
// изображения (режим без группировки: один товар на изображение).
func buildSingleForm(img analyzer.Image) (*Form, error) {
	b := newFormBuilder()

	name := naming.BaseProductName(img.Asset.Name)
	b.field("name", name)
	b.field("brand", img.Brand)
	b.field("category", img.Category)
	b.field("color", img.Color)
	b.field("price", "0")
	b.field("stock_quantity", "0")
	b.field("description", describe(img.Brand, name, img.Category))

	b.file("images[]", img.Asset.Name, img.Asset.Data)
	b.field("primary_image_index", "0")

	return b.build()
}

// describe генерирует описание-заглушку для карточки товара.
func describe(brand, name, category string) string {
	return fmt.Sprintf("%s %s (%s)", brand, name, category)
}
