package grouping

import (
	"fmt"
	"strings"

	"github.com/lenscraft/optibulk/pkg/analyzer"
)

// Операции редактирования. Все мутации сохраняют инварианты:
// непустые списки изображений, валидный primary-индекс, уникальные
// цвета вариантов внутри товара. Опустевшая группа/вариант/товар
// удаляется целиком.

func (s *Session) findGroup(id string) (*ProductGroup, error) {
	if s.mode != ModeAngle {
		return nil, ErrWrongMode
	}
	for i := range s.groups {
		if s.groups[i].ID == id {
			return &s.groups[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Session) findProduct(id string) (*ProductWithVariants, error) {
	if s.mode != ModeColor {
		return nil, ErrWrongMode
	}
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Session) imageAt(index int) (*analyzer.Image, error) {
	if s.mode != ModeNone {
		return nil, ErrWrongMode
	}
	if index < 0 || index >= len(s.images) {
		return nil, fmt.Errorf("%w: image %d of %d", ErrIndexOutOfRange, index, len(s.images))
	}
	return &s.images[index], nil
}

// SetImageCategory меняет категорию одиночного изображения (режим none).
func (s *Session) SetImageCategory(index int, category string) error {
	img, err := s.imageAt(index)
	if err != nil {
		return err
	}
	img.Category = category
	return nil
}

// SetImageColor меняет цвет одиночного изображения (режим none).
func (s *Session) SetImageColor(index int, color string) error {
	img, err := s.imageAt(index)
	if err != nil {
		return err
	}
	img.Color = color
	return nil
}

// SetImageBrand меняет бренд одиночного изображения (режим none).
func (s *Session) SetImageBrand(index int, brand string) error {
	img, err := s.imageAt(index)
	if err != nil {
		return err
	}
	img.Brand = brand
	return nil
}

// RemoveImage удаляет изображение из исходного набора (режим none).
//
// Последующая перегруппировка (SetMode/Cycle) строится уже без него.
func (s *Session) RemoveImage(index int) error {
	if _, err := s.imageAt(index); err != nil {
		return err
	}
	s.images = append(s.images[:index], s.images[index+1:]...)
	return nil
}

// RenameGroup переименовывает группу ракурсов.
func (s *Session) RenameGroup(id, name string) error {
	g, err := s.findGroup(id)
	if err != nil {
		return err
	}
	g.Name = name
	return nil
}

// SetGroupCategory меняет категорию группы.
func (s *Session) SetGroupCategory(id, category string) error {
	g, err := s.findGroup(id)
	if err != nil {
		return err
	}
	g.Category = category
	return nil
}

// SetGroupBrand меняет бренд группы.
func (s *Session) SetGroupBrand(id, brand string) error {
	g, err := s.findGroup(id)
	if err != nil {
		return err
	}
	g.Brand = brand
	return nil
}

// SetGroupColor меняет цвет группы.
func (s *Session) SetGroupColor(id, color string) error {
	g, err := s.findGroup(id)
	if err != nil {
		return err
	}
	g.Color = color
	return nil
}

// SetGroupPrimary назначает главное изображение группы.
func (s *Session) SetGroupPrimary(id string, index int) error {
	g, err := s.findGroup(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(g.Images) {
		return fmt.Errorf("%w: image %d of %d", ErrIndexOutOfRange, index, len(g.Images))
	}
	g.PrimaryImageIndex = index
	return nil
}

// RemoveGroupImage удаляет изображение из группы.
//
// Primary-индекс сдвигается влево если удалённое изображение стояло
// до него; опустевшая группа удаляется из сессии.
func (s *Session) RemoveGroupImage(id string, index int) error {
	g, err := s.findGroup(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(g.Images) {
		return fmt.Errorf("%w: image %d of %d", ErrIndexOutOfRange, index, len(g.Images))
	}

	g.Images = append(g.Images[:index], g.Images[index+1:]...)
	if len(g.Images) == 0 {
		return s.RemoveGroup(id)
	}
	if g.PrimaryImageIndex >= index && g.PrimaryImageIndex > 0 {
		g.PrimaryImageIndex--
	}
	return nil
}

// RemoveGroup удаляет группу целиком.
func (s *Session) RemoveGroup(id string) error {
	if s.mode != ModeAngle {
		return ErrWrongMode
	}
	for i := range s.groups {
		if s.groups[i].ID == id {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// RenameProduct переименовывает товар.
func (s *Session) RenameProduct(id, name string) error {
	p, err := s.findProduct(id)
	if err != nil {
		return err
	}
	p.Name = name
	return nil
}

// SetProductCategory меняет категорию товара.
func (s *Session) SetProductCategory(id, category string) error {
	p, err := s.findProduct(id)
	if err != nil {
		return err
	}
	p.Category = category
	return nil
}

// SetProductBrand меняет бренд товара.
func (s *Session) SetProductBrand(id, brand string) error {
	p, err := s.findProduct(id)
	if err != nil {
		return err
	}
	p.Brand = brand
	return nil
}

// SelectVariant выбирает активный цветовой вариант товара.
func (s *Session) SelectVariant(id string, index int) error {
	p, err := s.findProduct(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(p.ColorVariants) {
		return fmt.Errorf("%w: variant %d of %d", ErrIndexOutOfRange, index, len(p.ColorVariants))
	}
	p.SelectedColorIndex = index
	return nil
}

// SetVariantColor переименовывает цвет варианта.
//
// Цвет должен остаться уникальным внутри товара (без учёта регистра).
func (s *Session) SetVariantColor(id string, variant int, color string) error {
	p, err := s.findProduct(id)
	if err != nil {
		return err
	}
	if variant < 0 || variant >= len(p.ColorVariants) {
		return fmt.Errorf("%w: variant %d of %d", ErrIndexOutOfRange, variant, len(p.ColorVariants))
	}
	for i, v := range p.ColorVariants {
		if i != variant && strings.EqualFold(v.Color, color) {
			return fmt.Errorf("%w: %s", ErrDuplicateColor, color)
		}
	}
	p.ColorVariants[variant].Color = color
	return nil
}

// SetVariantPrimary назначает главное изображение варианта.
func (s *Session) SetVariantPrimary(id string, variant, index int) error {
	p, err := s.findProduct(id)
	if err != nil {
		return err
	}
	if variant < 0 || variant >= len(p.ColorVariants) {
		return fmt.Errorf("%w: variant %d of %d", ErrIndexOutOfRange, variant, len(p.ColorVariants))
	}
	v := &p.ColorVariants[variant]
	if index < 0 || index >= len(v.Images) {
		return fmt.Errorf("%w: image %d of %d", ErrIndexOutOfRange, index, len(v.Images))
	}
	v.PrimaryImageIndex = index
	return nil
}

// RemoveVariantImage удаляет изображение из варианта.
//
// Опустевший вариант удаляется; товар без вариантов удаляется целиком.
func (s *Session) RemoveVariantImage(id string, variant, index int) error {
	p, err := s.findProduct(id)
	if err != nil {
		return err
	}
	if variant < 0 || variant >= len(p.ColorVariants) {
		return fmt.Errorf("%w: variant %d of %d", ErrIndexOutOfRange, variant, len(p.ColorVariants))
	}
	v := &p.ColorVariants[variant]
	if index < 0 || index >= len(v.Images) {
		return fmt.Errorf("%w: image %d of %d", ErrIndexOutOfRange, index, len(v.Images))
	}

	v.Images = append(v.Images[:index], v.Images[index+1:]...)
	if len(v.Images) == 0 {
		p.ColorVariants = append(p.ColorVariants[:variant], p.ColorVariants[variant+1:]...)
		if len(p.ColorVariants) == 0 {
			return s.RemoveProduct(id)
		}
		if p.SelectedColorIndex >= variant && p.SelectedColorIndex > 0 {
			p.SelectedColorIndex--
		}
		return nil
	}
	if v.PrimaryImageIndex >= index && v.PrimaryImageIndex > 0 {
		v.PrimaryImageIndex--
	}
	return nil
}

// RemoveProduct удаляет товар целиком.
func (s *Session) RemoveProduct(id string) error {
	if s.mode != ModeColor {
		return ErrWrongMode
	}
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
