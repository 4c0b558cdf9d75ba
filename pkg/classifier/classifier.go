// Package classifier определяет категорию товара для проанализированного
// изображения.
//
// Категории — закрытое множество каталога оптики. Алгоритм классификации —
// заменяемая стратегия (Strategy): базовая реализация работает по ключевым
// словам в имени файла, опциональная — через vision-модель. Любая стратегия
// обязана возвращать категорию только из закрытого множества; при отсутствии
// сигнала — CategoryFrames.
package classifier

import (
	"context"
	"strings"
)

// Закрытое множество категорий каталога. Не расширяется пользователем.
const (
	CategoryFrames        = "Frames"
	CategorySunglasses    = "Sunglasses"
	CategoryContactLenses = "Contact Lenses"
	CategorySolutions     = "Solutions"
	CategoryAccessories   = "Accessories"
)

// Categories возвращает все категории в порядке отображения.
func Categories() []string {
	return []string{
		CategoryFrames,
		CategorySunglasses,
		CategoryContactLenses,
		CategorySolutions,
		CategoryAccessories,
	}
}

// IsValid проверяет принадлежность категории закрытому множеству.
func IsValid(category string) bool {
	for _, c := range Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// Normalize возвращает category, если она валидна, иначе CategoryFrames.
func Normalize(category string) string {
	if IsValid(category) {
		return category
	}
	return CategoryFrames
}

// Strategy — заменяемый алгоритм классификации.
//
// Классификатор получает имя файла и (опционально) байты изображения.
// Возвращаемая категория всегда принадлежит закрытому множеству.
type Strategy interface {
	Classify(ctx context.Context, filename string, data []byte) (string, error)
}

// Rule — правило сопоставления ключевых слов категории.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules возвращает дефолтную таблицу ключевых слов.
//
// Порядок правил важен: побеждает первое совпадение.
func DefaultRules() []Rule {
	return []Rule{
		{Category: CategorySunglasses, Keywords: []string{"sunglass", "sun"}},
		{Category: CategoryContactLenses, Keywords: []string{"contact", "lens"}},
		{Category: CategorySolutions, Keywords: []string{"solution", "care"}},
		{Category: CategoryFrames, Keywords: []string{"frame", "glass", "eyewear"}},
	}
}

// KeywordEngine классифицирует по ключевым словам в имени файла.
//
// Сравнение регистронезависимое, подстрочное. Если ни одно правило
// не сработало — CategoryFrames.
type KeywordEngine struct {
	rules []Rule
}

var _ Strategy = (*KeywordEngine)(nil)

// NewKeywordEngine создаёт движок с переданными правилами.
// Пустой список правил заменяется на DefaultRules().
func NewKeywordEngine(rules []Rule) *KeywordEngine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &KeywordEngine{rules: rules}
}

// Classify возвращает категорию по имени файла. Байты изображения
// не используются. Ошибок не возвращает.
func (e *KeywordEngine) Classify(_ context.Context, filename string, _ []byte) (string, error) {
	lower := strings.ToLower(filename)

	for _, rule := range e.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return Normalize(rule.Category), nil
			}
		}
	}

	return CategoryFrames, nil
}

// fallbackStrategy пробует primary и при ошибке переключается на
// secondary. Используется для vision → keyword: сбой модели не должен
// ронять батч.
type fallbackStrategy struct {
	primary   Strategy
	secondary Strategy
}

var _ Strategy = (*fallbackStrategy)(nil)

// WithFallback оборачивает primary стратегию запасной.
func WithFallback(primary, secondary Strategy) Strategy {
	return &fallbackStrategy{primary: primary, secondary: secondary}
}

func (f *fallbackStrategy) Classify(ctx context.Context, filename string, data []byte) (string, error) {
	category, err := f.primary.Classify(ctx, filename, data)
	if err == nil {
		return category, nil
	}
	return f.secondary.Classify(ctx, filename, data)
}
