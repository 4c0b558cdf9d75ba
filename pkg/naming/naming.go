// Package naming предоставляет чистые функции для извлечения метаданных
// товара из имени файла изображения.
//
// Все функции — детерминированные строковые преобразования без I/O и без
// разделяемого состояния. Каждая эвристика тестируется независимо.
//
// Типичный входной материал: "RayBan_Aviator_Black_front.jpg" или
// "Gold_IMG_0231.png" (префикс папки добавляется при распаковке архива).
package naming

import (
	"regexp"
	"strings"
)

// ColorVocabulary — фиксированный словарь цветов каталога.
//
// Порядок важен: ExtractColor возвращает первый цвет словаря,
// найденный в имени файла.
var ColorVocabulary = []string{
	"Black",
	"White",
	"Gray",
	"Silver",
	"Gold",
	"Brown",
	"Red",
	"Pink",
	"Orange",
	"Yellow",
	"Green",
	"Cyan",
	"Blue",
	"Purple",
	"Mixed",
	"Transparent",
}

var (
	extRe = regexp.MustCompile(`\.[^/.]+$`)

	// Токены ракурса/вида с опциональным хвостовым индексом: "_front_02", "-side1".
	angleRe = regexp.MustCompile(`(?i)[-_\s]*(front|back|side|top|bottom|detail|angle|view|image|img)[-_\s]*\d*`)

	// Хвостовая нумерация серии: "_001", "-01", " 3".
	trailingSeqRe = regexp.MustCompile(`[-_\s]*\d{1,3}$`)

	separatorsRe = regexp.MustCompile(`[-_\s]+`)

	splitRe = regexp.MustCompile(`[-_\s]`)

	// Прекомпилированные паттерны поиска цвета как отдельного токена.
	colorTokenRes = func() []*regexp.Regexp {
		res := make([]*regexp.Regexp, len(ColorVocabulary))
		for i, color := range ColorVocabulary {
			c := strings.ToLower(color)
			res[i] = regexp.MustCompile(`\b` + c + `\b|[-_]` + c + `[-_]|[-_]` + c + `$|^` + c + `[-_]`)
		}
		return res
	}()

	frontPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bfront\b`),
		regexp.MustCompile(`\bf\b`),
		regexp.MustCompile(`^front[-_]`),
		regexp.MustCompile(`[-_]front[-_]`),
		regexp.MustCompile(`[-_]front\.`),
		regexp.MustCompile(`\b01\b`),
		regexp.MustCompile(`_1\b`),
		regexp.MustCompile(`^1[-_]`),
	}
)

// ExtractBrand извлекает бренд из имени файла.
//
// Берёт первый токен имени (без расширения), разделители: "-", "_", пробел.
// Возвращает "Generic" если имя пустое.
func ExtractBrand(filename string) string {
	name := extRe.ReplaceAllString(filename, "")
	parts := splitRe.Split(name, -1)
	if len(parts) == 0 || parts[0] == "" {
		return "Generic"
	}
	return parts[0]
}

// ExtractColor ищет в имени файла цвет из словаря ColorVocabulary.
//
// Цвет должен встречаться как отдельный токен (границы слова либо
// разделители "-"/"_"), регистр не учитывается.
//
// Возвращает каноническое имя цвета ("Black", не "black") или пустую
// строку, если ни один цвет словаря не найден.
func ExtractColor(filename string) string {
	lower := strings.ToLower(filename)
	// Без расширения: "_" — словесный символ в RE2, поэтому для хвостового
	// токена ("Oakley_Holbrook_Black.jpg") срабатывает только альтернатива
	// "[-_]цвет$", а ей мешает приклеенное ".jpg".
	stripped := strings.ToLower(StripExtension(filename))

	for i, re := range colorTokenRes {
		if re.MatchString(lower) || re.MatchString(stripped) {
			return ColorVocabulary[i]
		}
	}

	return ""
}

// BaseProductName нормализует имя файла до базового имени товара.
//
// Шаги:
//  1. Убирает расширение.
//  2. Убирает токены ракурса (front/back/side/...) с хвостовым индексом.
//  3. Убирает хвостовую нумерацию серии (до 3 цифр).
//  4. Схлопывает серии разделителей в один "_".
//  5. Обрезает разделители по краям.
//
// Инвариант группировки: "Product_front_02.jpg" и "Product_back_01.jpg"
// нормализуются в одно и то же "Product".
func BaseProductName(filename string) string {
	name := extRe.ReplaceAllString(filename, "")
	name = angleRe.ReplaceAllString(name, "")
	name = trailingSeqRe.ReplaceAllString(name, "")
	name = separatorsRe.ReplaceAllString(name, "_")
	return strings.Trim(name, "-_ \t")
}

// ProductNameWithoutColor возвращает базовое имя товара без цветовых токенов.
//
// Применяет BaseProductName, затем вырезает detectedColor и все цвета
// словаря (с прилегающими разделителями), снова схлопывает разделители
// и обрезает их по краям.
//
// Именно этот ключ объединяет цветовые варианты одного товара:
// "RayBan_Aviator_Black.jpg" и "RayBan_Aviator_Brown.jpg" дают одинаковый
// результат.
func ProductNameWithoutColor(filename string, detectedColor string) string {
	name := BaseProductName(filename)

	patterns := make([]string, 0, len(ColorVocabulary)+1)
	if detectedColor != "" {
		patterns = append(patterns, detectedColor)
	}
	patterns = append(patterns, ColorVocabulary...)

	for _, color := range patterns {
		re := regexp.MustCompile(`(?i)[-_\s]*` + regexp.QuoteMeta(strings.ToLower(color)) + `[-_\s]*`)
		name = re.ReplaceAllString(name, "_")
	}

	name = separatorsRe.ReplaceAllString(name, "_")
	return strings.Trim(name, "-_ \t")
}

// IsFrontView определяет, является ли изображение фронтальным ракурсом.
//
// Сигналы: слово "front", одиночный токен "f", индексы "01"/"_1"/"1_"
// в начале имени. Используется при выборе главного изображения группы.
func IsFrontView(filename string) bool {
	lower := strings.ToLower(filename)
	for _, re := range frontPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// StripExtension убирает расширение файла.
func StripExtension(filename string) string {
	return extRe.ReplaceAllString(filename, "")
}
