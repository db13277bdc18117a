// Package records is a scrolling table over the filtered record store,
// paging rows in as the selection moves.
package records

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/pkg/errors"

	nt "sift/entity"
	"sift/message"
	"sift/style"
)

const (
	headerHeight = 2

	// id and raw lead every line; typed columns follow
	lineOffset = 2
)

// Panel shows a page of filtered records and tracks the selection.
type Panel struct {
	selected int // absolute position of selected line
	offset   int // offset of page shown
	total    int // filtered record count

	width  int
	height int

	colFmts []colFmt
	lines   []nt.Line
	table   *table.Table
}

type colFmt struct {
	lineIdx   int
	width     int
	fieldName string
	formatter func(nt.Value) string
}

// NewPanel creates a records panel over the given queryable fields.
func NewPanel(fields []nt.Field, count int) Panel {

	tbl := table.New()
	styleTable(tbl)

	pnl := Panel{
		table: tbl,
		total: count,
	}

	return pnl.setColumns(fields)
}

func (pnl Panel) Init() tea.Cmd {
	return nil
}

// SizeMsg resizes the panel.
type SizeMsg struct {
	Width  int
	Height int
}

// ResetMsg scrolls back to the top, typically after the filter changes.
type ResetMsg struct{}

func (pnl Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	switch msg := msg.(type) {

	case SizeMsg:
		pnl.width = msg.Width
		pnl.height = msg.Height

		if pnl.PageSize() > 0 {
			return pnl, pnl.getPage()
		}

	case message.PageMsg:
		pnl.lines = msg.Lines
		pnl.total = msg.Count
		if pnl.selected >= pnl.total && pnl.total > 0 {
			pnl.selected = pnl.total - 1
		}
		return pnl, nil

	case ResetMsg:
		pnl.selected = 0
		pnl.offset = 0
		if pnl.PageSize() > 0 {
			return pnl, pnl.getPage()
		}
		return pnl, nil

	case tea.KeyPressMsg:
		pageSize := pnl.PageSize()

		switch msg.String() {
		case "up", "k":
			if pnl.selected > 0 {
				pnl.selected--
			}

		case "down", "j":
			if pnl.selected < pnl.total-1 {
				pnl.selected++
			}

		case "pgup", "ctrl+u":
			pnl.selected -= pageSize
			if pnl.selected < 0 {
				pnl.selected = 0
			}

		case "pgdown", "ctrl+d":
			pnl.selected += pageSize
			if pnl.selected >= pnl.total {
				pnl.selected = pnl.total - 1
			}

		case "g":
			pnl.selected = 0

		case "G":
			pnl.selected = pnl.total - 1
		}

		// keep the selection on the visible page
		oldOffset := pnl.offset
		if pnl.selected < pnl.offset {
			pnl.offset = pnl.selected
		} else if pnl.selected >= pnl.offset+pageSize {
			pnl.offset = pnl.selected - pageSize + 1
		}

		if pnl.offset != oldOffset {
			return pnl, pnl.getPage()
		}
	}

	return pnl, nil
}

// Render renders the current page with the selection highlighted.
func (pnl Panel) Render() string {

	pnl.table.StyleFunc(style.RowStyler(pnl.selectedLine()))

	pnl.table.ClearRows()
	for _, line := range pnl.lines {
		pnl.table.Row(pnl.row(line)...)
	}

	return pnl.table.Render()
}

func (pnl Panel) View() tea.View {
	return tea.NewView(pnl.Render())
}

// SelectedId returns the id of the currently selected line.
func (pnl Panel) SelectedId() (id string, err error) {

	selected := pnl.selectedLine()
	ln := len(pnl.lines)

	if ln == 0 || selected < 0 || selected >= ln {
		err = errors.Errorf("index %d is out of bounds of %d lines", selected, ln)
		return
	}

	id = pnl.lines[selected].Id
	return
}

// Selected returns the one-indexed position of the selection.
func (pnl Panel) Selected() int {
	return pnl.selected + 1
}

// Total returns the filtered record count.
func (pnl Panel) Total() int {
	return pnl.total
}

// PageSize returns the number of rows that fit on the panel.
func (pnl Panel) PageSize() int {
	return pnl.height - headerHeight
}

// unexported

func (pnl Panel) getPage() tea.Cmd {
	return func() tea.Msg {
		return message.GetPageMsg{
			Offset: pnl.offset,
			Size:   pnl.PageSize(),
		}
	}
}

func (pnl Panel) selectedLine() int {
	return pnl.selected - pnl.offset
}

func (pnl Panel) row(line nt.Line) []string {
	row := make([]string, len(pnl.colFmts))
	for i, cf := range pnl.colFmts {
		formatted := ""
		if cf.lineIdx < len(line.Values) {
			formatted = cf.formatter(line.Values[cf.lineIdx])
		}
		row[i] = truncate(formatted, cf.width)
	}
	return row
}

func (pnl Panel) setColumns(fields []nt.Field) Panel {

	colFmts := make([]colFmt, 0, len(fields))
	for i, field := range fields {
		colFmts = append(colFmts, colFmt{
			lineIdx:   i + lineOffset,
			width:     columnWidth(field.Type),
			fieldName: field.Name,
			formatter: makeFormatter(field.Type),
		})
	}

	var headers []string
	for _, cf := range colFmts {
		headers = append(headers, fmt.Sprintf("%-*s", cf.width+1, cf.fieldName))
	}

	pnl.table.Headers(headers...)
	pnl.colFmts = colFmts

	return pnl
}

// help

func columnWidth(fieldType string) int {

	switch fieldType {
	case "TIMESTAMP":
		return 19
	case "DOUBLE":
		return 10
	case "BOOLEAN":
		return 6
	}
	return 24
}

func makeFormatter(fieldType string) func(nt.Value) string {

	if fieldType == "TIMESTAMP" {
		return func(val nt.Value) string {
			t, err := val.Time()
			if err == nil {
				return t.Format("2006-01-02 15:04:05")
			}
			return val.String()
		}
	}

	return func(val nt.Value) string {
		return val.String()
	}
}

func truncate(in string, width int) string {

	if len(in) <= width {
		return in
	}

	truncated := in[:width-1]
	ellipsis := style.MutedStyle.Render("…")
	return truncated + ellipsis
}

func styleTable(tbl *table.Table) {

	tbl.Border(lipgloss.Border{
		Top:         "─",
		Middle:      "─",
		MiddleLeft:  "─",
		MiddleRight: "─",
	}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(style.BorderStyle)
}
