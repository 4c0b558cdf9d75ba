// Package grouping кластеризует проанализированные изображения в товары.
//
// Поддерживаются три режима:
//   - none  — без группировки, каждое изображение само по себе;
//   - angle — "один товар, разные ракурсы": изображения с одинаковым
//     базовым именем/брендом/цветом образуют одну группу;
//   - color — "один товар, разные цвета": двухуровневая группировка
//     в товар с цветовыми вариантами.
//
// Режимы переключаются по кольцу none → angle → color → none.
// Состояние сессии — tagged union: в каждый момент активна ровно одна
// коллекция, соответствующая текущему режиму; смена режима полностью
// перестраивает группы из неизменного исходного набора.
package grouping

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/xid"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/events"
	"github.com/lenscraft/optibulk/pkg/naming"
)

// Mode — режим группировки.
type Mode string

const (
	ModeNone  Mode = "none"
	ModeAngle Mode = "angle"
	ModeColor Mode = "color"
)

var (
	// ErrWrongMode возвращается при операции, не соответствующей
	// текущему режиму сессии.
	ErrWrongMode = errors.New("operation does not match current grouping mode")

	// ErrNotFound возвращается когда группа/товар с указанным ID
	// отсутствует в сессии.
	ErrNotFound = errors.New("group not found")

	// ErrIndexOutOfRange возвращается при выходе индекса изображения
	// или варианта за границы.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDuplicateColor возвращается при попытке переименовать вариант
	// в цвет, уже занятый внутри того же товара (без учёта регистра).
	ErrDuplicateColor = errors.New("color already used by another variant")
)

// ColorVariant — изображения одного товара, разделяющие один цвет.
//
// Инвариант: Images непустой, 0 <= PrimaryImageIndex < len(Images).
type ColorVariant struct {
	Color             string           `json:"color"`
	Images            []analyzer.Image `json:"images"`
	PrimaryImageIndex int              `json:"primaryImageIndex"`
}

// ProductGroup — группа ракурсов одного товара (режим angle).
//
// Инвариант: Images непустой, 0 <= PrimaryImageIndex < len(Images);
// все изображения группы разделяют один ключ базовое-имя/бренд/цвет.
type ProductGroup struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	Color             string           `json:"color"`
	Brand             string           `json:"brand"`
	Images            []analyzer.Image `json:"images"`
	PrimaryImageIndex int              `json:"primaryImageIndex"`
}

// ProductWithVariants — товар с цветовыми вариантами (режим color).
//
// Инвариант: ColorVariants непустой; цвет каждого варианта уникален
// внутри товара без учёта регистра; варианты отсортированы по цвету.
type ProductWithVariants struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Category           string         `json:"category"`
	Brand              string         `json:"brand"`
	ColorVariants      []ColorVariant `json:"colorVariants"`
	SelectedColorIndex int            `json:"selectedColorIndex"`
}

// Session — состояние группировки поверх неизменного набора
// проанализированных изображений.
//
// Не thread-safe: сессией владеет один вызывающий (цикл CLI/TUI),
// мутации происходят только в ответ на дискретные действия.
type Session struct {
	images   []analyzer.Image
	mode     Mode
	groups   []ProductGroup
	products []ProductWithVariants
	emitter  events.Emitter
}

// NewSession создаёт сессию в режиме color — дефолт после анализа,
// как наиболее полезная группировка для карточек товаров.
func NewSession(ctx context.Context, images []analyzer.Image, emitter events.Emitter) *Session {
	s := &Session{images: images, emitter: emitter}
	s.SetMode(ctx, ModeColor)
	return s
}

// Mode возвращает текущий режим.
func (s *Session) Mode() Mode { return s.mode }

// Images возвращает исходный набор изображений (активен в режиме none).
func (s *Session) Images() []analyzer.Image { return s.images }

// Groups возвращает группы ракурсов; nil вне режима angle.
func (s *Session) Groups() []ProductGroup {
	if s.mode != ModeAngle {
		return nil
	}
	return s.groups
}

// Products возвращает товары с вариантами; nil вне режима color.
func (s *Session) Products() []ProductWithVariants {
	if s.mode != ModeColor {
		return nil
	}
	return s.products
}

// Cycle переключает режим по кольцу none → angle → color → none
// и перестраивает группы.
func (s *Session) Cycle(ctx context.Context) Mode {
	switch s.mode {
	case ModeNone:
		s.SetMode(ctx, ModeAngle)
	case ModeAngle:
		s.SetMode(ctx, ModeColor)
	default:
		s.SetMode(ctx, ModeNone)
	}
	return s.mode
}

// SetMode устанавливает режим и перестраивает группы из исходного
// набора. Повторный вызов с тем же режимом детерминированно даёт
// группы с идентичным составом и порядком.
func (s *Session) SetMode(ctx context.Context, mode Mode) {
	s.mode = mode
	s.groups = nil
	s.products = nil

	variants := 0
	switch mode {
	case ModeAngle:
		s.groups = groupByAngle(s.images)
	case ModeColor:
		s.products = groupByColor(s.images)
		for _, p := range s.products {
			variants += len(p.ColorVariants)
		}
	}

	events.Emit(ctx, s.emitter, events.EventGrouped, events.GroupedData{
		Mode:     string(mode),
		Products: s.itemCount(),
		Variants: variants,
	})
}

// Reset очищает сессию (после полностью успешной загрузки).
func (s *Session) Reset() {
	s.images = nil
	s.groups = nil
	s.products = nil
	s.mode = ModeNone
}

// itemCount возвращает размер активной коллекции.
func (s *Session) itemCount() int {
	switch s.mode {
	case ModeAngle:
		return len(s.groups)
	case ModeColor:
		return len(s.products)
	default:
		return len(s.images)
	}
}

// groupByAngle группирует изображения по ключу
// `базовое-имя_бренд_цвет` (в нижнем регистре).
//
// Порядок групп — порядок первого появления ключа во входном наборе,
// порядок изображений внутри группы — входной порядок.
func groupByAngle(images []analyzer.Image) []ProductGroup {
	index := make(map[string]int)
	var groups []ProductGroup

	for _, img := range images {
		key := strings.ToLower(naming.BaseProductName(img.Asset.Name) + "_" + img.Brand + "_" + img.Color)
		if i, ok := index[key]; ok {
			groups[i].Images = append(groups[i].Images, img)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, ProductGroup{
			ID:       xid.New().String(),
			Name:     naming.BaseProductName(img.Asset.Name),
			Category: img.Category,
			Color:    img.Color,
			Brand:    img.Brand,
			Images:   []analyzer.Image{img},
		})
	}

	for i := range groups {
		groups[i].PrimaryImageIndex = frontImageIndex(groups[i].Images)
	}
	return groups
}

// groupByColor группирует изображения в товары с цветовыми вариантами.
//
// Внешний ключ — `имя-без-цвета_бренд`, внутренний — цвет; варианты
// внутри товара отсортированы по имени цвета для стабильного порядка.
func groupByColor(images []analyzer.Image) []ProductWithVariants {
	productIndex := make(map[string]int)
	variantIndex := make(map[string]map[string]int)
	var products []ProductWithVariants

	for _, img := range images {
		base := naming.ProductNameWithoutColor(img.Asset.Name, img.Color)
		key := strings.ToLower(base + "_" + img.Brand)

		pi, ok := productIndex[key]
		if !ok {
			pi = len(products)
			productIndex[key] = pi
			variantIndex[key] = make(map[string]int)
			products = append(products, ProductWithVariants{
				ID:       xid.New().String(),
				Name:     displayName(base, img.Brand),
				Category: img.Category,
				Brand:    img.Brand,
			})
		}

		colorKey := strings.ToLower(img.Color)
		if vi, ok := variantIndex[key][colorKey]; ok {
			products[pi].ColorVariants[vi].Images = append(products[pi].ColorVariants[vi].Images, img)
			continue
		}
		variantIndex[key][colorKey] = len(products[pi].ColorVariants)
		products[pi].ColorVariants = append(products[pi].ColorVariants, ColorVariant{
			Color:  img.Color,
			Images: []analyzer.Image{img},
		})
	}

	for pi := range products {
		sort.SliceStable(products[pi].ColorVariants, func(a, b int) bool {
			return products[pi].ColorVariants[a].Color < products[pi].ColorVariants[b].Color
		})
		for vi := range products[pi].ColorVariants {
			v := &products[pi].ColorVariants[vi]
			v.PrimaryImageIndex = frontImageIndex(v.Images)
		}
	}
	return products
}

// displayName убирает из имени товара ведущий префикс бренда:
// `RayBan_Aviator` при бренде RayBan отображается как `Aviator`.
// Ключи группировки это не затрагивает.
func displayName(base, brand string) string {
	prefix := strings.ToLower(brand) + "_"
	if strings.HasPrefix(strings.ToLower(base), prefix) && len(base) > len(prefix) {
		return base[len(prefix):]
	}
	return base
}

// frontImageIndex возвращает индекс изображения, похожего на фронтальный
// ракурс; если такого нет — 0 (стабильный входной порядок).
func frontImageIndex(images []analyzer.Image) int {
	for i, img := range images {
		if naming.IsFrontView(img.Asset.Name) {
			return i
		}
	}
	return 0
}
