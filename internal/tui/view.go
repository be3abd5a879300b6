package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/annoforge/annoforge/internal/tasks"
)

// listHeight is how many items are visible at once.
const listHeight = 12

const helpMarkdown = `# annoforge

Caption and annotate an image dataset from the terminal.

## Selection

| key | action |
| --- | ------ |
| enter | select the highlighted item |
| space | toggle it in the checked set |
| v | extend the selection from the anchor |
| a / c | select all / clear |

## Captioning

Press **m** to load the first available model checkpoint, **g** to queue
caption generation for the checked items, then **r** to run the queue.
**p** pauses between items, **s** aborts and discards pending tasks.

## Search

Press **/** and type to filter. Prefix with ` + "`!`" + ` to invert the
match and with ` + "`re:`" + ` to treat the term as a regular expression.
`

func renderHelp() string {
	out, err := glamour.Render(helpMarkdown, "dark")
	if err != nil {
		return helpMarkdown
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	if m.mode == modeHelp {
		return m.helpDoc + dimStyle.Render("press any key to return")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("annoforge"))
	if name := m.projectName(); name != "" {
		b.WriteString(dimStyle.Render("  " + name))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderList())
	b.WriteString("\n")

	if m.mode == modeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	b.WriteString(captionPane.Render(m.caption.View()))
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.toast != "" && m.toastStyle != nil {
		b.WriteString(m.toastStyle(m.toast))
		b.WriteString("\n")
	}

	b.WriteString(m.helpView.View(m.keys))
	return b.String()
}

func (m Model) renderList() string {
	if len(m.items) == 0 {
		return dimStyle.Render("  no items; open a project or adjust the filter")
	}

	// keep the cursor in the visible window
	top := 0
	if m.cursor >= listHeight {
		top = m.cursor - listHeight + 1
	}
	bottom := min(top+listHeight, len(m.items))

	var rows []string
	for i := top; i < bottom; i++ {
		it := m.items[i]

		check := "[ ]"
		style := lipgloss.NewStyle()
		if m.checked[it.ID] {
			check = "[x]"
			style = checkedStyle
		}

		marker := "  "
		if it.ID == m.active {
			marker = "» "
		}

		caption := it.Caption
		if caption == "" {
			caption = dimStyle.Render("(no caption)")
		}
		row := fmt.Sprintf("%s%s %-30s %s", marker, check, it.Filename, caption)

		if i == m.cursor {
			rows = append(rows, cursorStyle.Render(row))
			continue
		}
		rows = append(rows, style.Render(row))
	}

	rows = append(rows, dimStyle.Render(fmt.Sprintf("  %d item(s), %d checked", len(m.items), len(m.checked))))
	return strings.Join(rows, "\n")
}

func (m Model) renderStatus() string {
	var parts []string

	switch m.queueState {
	case tasks.StateRunning:
		parts = append(parts, m.spin.View())
	case tasks.StatePaused:
		parts = append(parts, "⏸")
	}

	parts = append(parts, statusStyle.Render(m.status))

	if m.percent > 0 {
		parts = append(parts, m.bar.ViewAs(m.percent/100))
	} else if m.percent < 0 {
		parts = append(parts, dimStyle.Render("working..."))
	}

	if m.pendingN > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d queued", m.pendingN)))
	}

	return strings.Join(parts, " ")
}

func (m Model) projectName() string {
	desc, _, ok := m.app.Projects.Current()
	if !ok {
		return ""
	}
	return desc.Name
}
