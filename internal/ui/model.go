// Package ui реализует Bubble Tea дашборд прогресса пайплайна.
//
// Дашборд пассивен: он только читает события из events.Subscriber
// (Port & Adapter) и рисует текущую стадию, прогресс-бар и ошибки.
// Сам пайплайн работает в отдельной горутине и ничего не знает о TUI.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lenscraft/optibulk/pkg/events"
	"github.com/lenscraft/optibulk/pkg/tui"
)

// Model — состояние дашборда прогресса.
type Model struct {
	sub events.Subscriber

	spinner  spinner.Model
	progress progress.Model

	stage     string
	item      string
	processed int
	total     int
	percent   float64

	errs []string

	done      bool
	succeeded int
	failed    int

	width int
	ready bool
}

// New создаёт дашборд, подписанный на события пайплайна.
func New(sub events.Subscriber) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		sub:      sub,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		stage:    "Подготовка...",
	}
}

// Init запускает спиннер и чтение событий.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tui.ReceiveEventCmd(m.sub, func(event events.Event) tea.Msg {
			return tui.EventMsg(event)
		}),
	)
}

// Update обрабатывает сообщения Bubble Tea.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tui.EventMsg:
		// Завершение пайплайна приходит закрытием канала событий
		// (ReceiveEventCmd вернёт tea.QuitMsg), поэтому здесь только
		// обновляем состояние и продолжаем читать.
		m.apply(events.Event(msg))
		return m, tui.WaitForEvent(m.sub, func(event events.Event) tea.Msg {
			return tui.EventMsg(event)
		})
	}

	return m, nil
}

// apply переносит событие пайплайна в состояние дашборда.
func (m *Model) apply(event events.Event) {
	switch data := event.Data.(type) {
	case events.ExtractData:
		if data.Count == 0 {
			m.stage = fmt.Sprintf("Распаковка %s...", data.Source)
		} else {
			m.stage = fmt.Sprintf("Извлечено %d изображений из %s", data.Count, data.Source)
		}

	case events.ProgressData:
		switch event.Type {
		case events.EventAnalyzeProgress:
			m.stage = "Анализ изображений"
		case events.EventUploadProgress:
			m.stage = "Загрузка товаров"
		}
		m.item = data.Item
		m.processed = data.Processed
		m.total = data.Total
		m.percent = data.Percent

	case events.GroupedData:
		m.stage = fmt.Sprintf("Группировка (%s): %d товаров, %d вариантов",
			data.Mode, data.Products, data.Variants)

	case events.ErrorData:
		m.errs = append(m.errs, fmt.Sprintf("%s: %v", data.Item, data.Err))

	case events.DoneData:
		m.done = true
		m.succeeded = data.Succeeded
		m.failed = data.Failed
	}
}
