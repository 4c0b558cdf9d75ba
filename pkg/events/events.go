// Package events предоставляет интерфейсы для реализации Port & Adapter паттерна.
//
// Это Port (интерфейс) для подписки на события пайплайна импорта.
// Позволяет подключать любые UI (TUI, plain CLI) без изменения
// библиотечной логики.
//
// # Port & Adapter Pattern
//
//	Port — это интерфейс (Emitter, Subscriber), определённый в библиотеке.
//	Adapter — это реализация интерфейса для конкретного UI (TUI, CLI, etc).
//
// # Basic Usage
//
//	// В библиотеке (pkg/analyzer, pkg/gallery):
//	emitter.Emit(ctx, events.Event{Type: events.EventAnalyzeProgress, ...})
//
//	// В UI (internal/ui):
//	for event := range sub.Events() {
//	    switch event.Type {
//	    case events.EventAnalyzeProgress:
//	        ui.updateProgress(event.Data)
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события пайплайна.
type EventType string

const (
	// EventExtract отправляется при начале/завершении распаковки архива.
	EventExtract EventType = "extract"

	// EventAnalyzeProgress отправляется после анализа каждого изображения.
	EventAnalyzeProgress EventType = "analyze_progress"

	// EventGrouped отправляется после перегруппировки набора.
	EventGrouped EventType = "grouped"

	// EventUploadProgress отправляется после отправки каждого товара.
	EventUploadProgress EventType = "upload_progress"

	// EventError отправляется при ошибке отдельного элемента батча.
	EventError EventType = "error"

	// EventDone отправляется когда батч (анализ или загрузка) завершён.
	EventDone EventType = "done"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс,
// что обеспечивает compile-time type safety.
type EventData interface {
	eventData()
}

// ExtractData содержит данные распаковки архива.
type ExtractData struct {
	Source string // Имя архива или префикс источника
	Count  int    // Количество извлечённых изображений (0 в начале)
}

func (ExtractData) eventData() {}

// ProgressData содержит прогресс батчевой операции.
//
// Percent вычисляется как (Processed/Total)*100.
type ProgressData struct {
	Item      string // Имя текущего файла или товара
	Processed int
	Total     int
	Percent   float64
}

func (ProgressData) eventData() {}

// GroupedData содержит сводку перегруппировки.
type GroupedData struct {
	Mode     string // "none", "angle", "color"
	Products int    // Количество товаров/групп
	Variants int    // Суммарное количество цветовых вариантов (color mode)
}

func (GroupedData) eventData() {}

// ErrorData содержит ошибку отдельного элемента батча.
type ErrorData struct {
	Item string
	Err  error
}

func (ErrorData) eventData() {}

// DoneData содержит итог батчевой операции.
type DoneData struct {
	Succeeded int
	Failed    int
}

func (DoneData) eventData() {}

// Event представляет событие пайплайна.
//
// Data содержит типизированные данные события (EventData):
//   - EventExtract: ExtractData
//   - EventAnalyzeProgress: ProgressData
//   - EventGrouped: GroupedData
//   - EventUploadProgress: ProgressData
//   - EventError: ErrorData
//   - EventDone: DoneData
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// Emitter — это Port для отправки событий.
//
// Emitter инвертирует зависимость: библиотека (pkg/analyzer, pkg/gallery)
// зависит от этого интерфейса, а не от конкретного UI.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, операция должна прерваться без блокировки.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при вызове Close() у эмиттера.
	Events() <-chan Event

	// Close закрывает подписчика.
	Close()
}

// Emit — хелпер для отправки события через опциональный эмиттер.
//
// nil-safe: если emitter == nil, событие молча отбрасывается.
// Избавляет пайплайн от проверок на nil в каждой точке отправки.
func Emit(ctx context.Context, emitter Emitter, eventType EventType, data EventData) {
	if emitter == nil {
		return
	}
	emitter.Emit(ctx, Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
