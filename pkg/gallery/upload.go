package gallery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lenscraft/optibulk/pkg/events"
	"github.com/lenscraft/optibulk/pkg/grouping"
	"github.com/lenscraft/optibulk/pkg/utils"
)

// Пути endpoint'ов продуктового API.
const (
	pathCreateWithVariants = "/products/create-with-variants"
	pathCreateProduct      = "/products"
)

// ItemError — ошибка загрузки одного элемента батча.
type ItemError struct {
	Item string `json:"file"`
	Err  string `json:"error"`
}

// Result — итог одного прогона батчевой загрузки.
//
// Products содержит сырые JSON-ответы сервера по успешно созданным
// товарам (их форма принадлежит backend'у и здесь не интерпретируется).
type Result struct {
	UploadedCount int               `json:"uploaded_count"`
	ErrorCount    int               `json:"error_count"`
	Products      []json.RawMessage `json:"products"`
	Errors        []ItemError       `json:"errors"`
}

// Uploader — координатор батчевой загрузки сгруппированных товаров.
//
// Обходит активную коллекцию сессии строго последовательно: по одному
// запросу за раз, ошибки отдельных элементов не прерывают батч.
type Uploader struct {
	client  *Client
	emitter events.Emitter
}

// NewUploader создаёт координатор. emitter опционален (nil допустим).
func NewUploader(client *Client, emitter events.Emitter) *Uploader {
	return &Uploader{client: client, emitter: emitter}
}

// uploadItem — один элемент батча: имя для отчётов и готовая форма.
type uploadItem struct {
	name string
	path string
	form *Form
	err  error // ошибка построения формы
}

// UploadSession загружает активную коллекцию сессии.
//
// Отсутствие токена обрывает батч до первого запроса (ErrNoToken).
// При полном успехе (ErrorCount == 0) сессия сбрасывается; при
// частичном — неудавшиеся элементы остаются в сессии для повторной
// попытки (автоматического retry на уровне батча нет).
//
// Ошибка возвращается только при невозможности начать батч или отмене
// контекста; поэлементные неудачи отражаются в Result.
func (u *Uploader) UploadSession(ctx context.Context, session *grouping.Session) (*Result, error) {
	if !u.client.HasToken() {
		return nil, ErrNoToken
	}

	items, err := collectItems(session)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("nothing to upload")
	}

	utils.Info("Batch upload started", "mode", string(session.Mode()), "items", len(items))

	result := &Result{}
	total := len(items)

	for i, item := range items {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("upload interrupted: %w", ctx.Err())
		default:
		}

		if err := u.uploadOne(ctx, item, result); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, ItemError{Item: item.name, Err: err.Error()})
			utils.Error("Item upload failed", "item", item.name, "type", u.client.ClassifyError(err).String(), "error", err)
			events.Emit(ctx, u.emitter, events.EventError, events.ErrorData{Item: item.name, Err: err})
		} else {
			result.UploadedCount++
		}

		processed := i + 1
		events.Emit(ctx, u.emitter, events.EventUploadProgress, events.ProgressData{
			Item:      item.name,
			Processed: processed,
			Total:     total,
			Percent:   float64(processed) / float64(total) * 100,
		})
	}

	events.Emit(ctx, u.emitter, events.EventDone, events.DoneData{
		Succeeded: result.UploadedCount,
		Failed:    result.ErrorCount,
	})
	utils.Info("Batch upload finished", "uploaded", result.UploadedCount, "errors", result.ErrorCount)

	if result.ErrorCount == 0 {
		session.Reset()
	}

	return result, nil
}

func (u *Uploader) uploadOne(ctx context.Context, item uploadItem, result *Result) error {
	if item.err != nil {
		return fmt.Errorf("build payload: %w", item.err)
	}
	body, err := u.client.postForm(ctx, item.path, item.path, item.form)
	if err != nil {
		return err
	}
	if len(body) > 0 && json.Valid(body) {
		result.Products = append(result.Products, json.RawMessage(body))
	}
	return nil
}

// collectItems строит формы для всех элементов активной коллекции.
//
// Ошибка построения отдельной формы не валит батч: она превращается
// в поэлементную ошибку при отправке.
func collectItems(session *grouping.Session) ([]uploadItem, error) {
	switch session.Mode() {
	case grouping.ModeColor:
		products := session.Products()
		items := make([]uploadItem, 0, len(products))
		for _, p := range products {
			form, err := buildVariantsForm(p)
			items = append(items, uploadItem{name: p.Name, path: pathCreateWithVariants, form: form, err: err})
		}
		return items, nil

	case grouping.ModeAngle:
		groups := session.Groups()
		items := make([]uploadItem, 0, len(groups))
		for _, g := range groups {
			form, err := buildGroupForm(g)
			items = append(items, uploadItem{name: g.Name, path: pathCreateProduct, form: form, err: err})
		}
		return items, nil

	case grouping.ModeNone:
		images := session.Images()
		items := make([]uploadItem, 0, len(images))
		for _, img := range images {
			form, err := buildSingleForm(img)
			items = append(items, uploadItem{name: img.Asset.Name, path: pathCreateProduct, form: form, err: err})
		}
		return items, nil
	}

	return nil, fmt.Errorf("unknown grouping mode: %s", session.Mode())
}
