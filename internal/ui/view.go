// Рендер
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	header := headerStyle.
		Width(m.width).
		Render(" optibulk — импорт изображений товаров ")

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.done {
		b.WriteString(summaryStyle(fmt.Sprintf("Готово: %d успешно, %d с ошибками", m.succeeded, m.failed)))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), stageStyle(m.stage)))
		b.WriteString("\n")
	}

	if m.total > 0 {
		b.WriteString("\n")
		b.WriteString(m.progress.ViewAs(m.percent / 100))
		b.WriteString(fmt.Sprintf("  %d/%d", m.processed, m.total))
		b.WriteString("\n")
		if m.item != "" {
			b.WriteString(itemStyle("→ " + m.item))
			b.WriteString("\n")
		}
	}

	if len(m.errs) > 0 {
		border := lipgloss.NewStyle().
			Foreground(grayColor).
			Width(m.width).
			Render(strings.Repeat("─", max(m.width, 1)))
		b.WriteString("\n")
		b.WriteString(border)
		b.WriteString("\n")
		b.WriteString(errorStyle(fmt.Sprintf("Ошибки (%d):", len(m.errs))))
		b.WriteString("\n")
		for _, e := range m.errs {
			b.WriteString(wordwrap.String("  "+e, max(m.width-2, 20)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(itemStyle("q — выход"))
	return b.String()
}
