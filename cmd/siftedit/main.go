package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/marcboeker/go-duckdb"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/clarktrimble/sabot"

	"sift"
	nt "sift/entity"
	"sift/filter"
	"sift/message"
	"sift/records"
	"sift/store/duck"
	"sift/util"
)

const (
	viewFile     = "view.yaml"
	logFile      = "siftedit.log"
	footerHeight = 1
)

type screen int

const (
	recordsScreen screen = iota
	filterScreen
)

func main() {

	ctx := context.Background()

	logWriter := util.OpenLog(logFile, 0644)
	defer util.CloseLog(logWriter)
	lgr := &sabot.Sabot{Writer: logWriter, MaxLen: 999}

	vw, err := sift.LoadView(viewFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}

	dk, err := duck.New(lgr, vw.Schema, vw.Columns)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	defer dk.Close()

	dataFile := "events.ndjson"
	if len(os.Args) > 1 {
		dataFile = os.Args[1]
	}
	err = dk.Load(dataFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}

	st := vw.Config().New(ctx, lgr)

	// persist the filter back into the view file on every mutation
	st.Subscribe(func(root *nt.Group) {
		vw.Filter = st.Input()
		if err := vw.Save(viewFile); err != nil {
			lgr.Error(ctx, "failed to save view", err)
		}
	})

	err = dk.SetView(st.Snapshot())
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}

	fields, count, err := dk.GetView()
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}

	mdl := model{
		filterPanel:  filter.NewPanel(ctx, lgr, st, vw.Schema),
		recordsPanel: records.NewPanel(fields, count),
		dk:           dk,
		ctx:          ctx,
		lgr:          lgr,
	}

	p := tea.NewProgram(mdl)
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
}

type model struct {
	currentScreen screen

	filterPanel  filter.Panel
	recordsPanel records.Panel

	dk     *duck.Duck
	errStr string

	width  int
	height int

	ctx context.Context
	lgr *sabot.Sabot
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		var cmd1, cmd2 tea.Cmd
		m = m.updateFilter(filter.SizeMsg{Width: msg.Width, Height: msg.Height - footerHeight}, &cmd1)
		m = m.updateRecords(records.SizeMsg{Width: msg.Width, Height: msg.Height - footerHeight}, &cmd2)
		return m, tea.Sequence(cmd1, cmd2)

	case message.ApplyMsg:
		err := m.dk.SetView(msg.Root)
		if err != nil {
			return m, message.ErrorCmd(err)
		}
		m.currentScreen = recordsScreen

		var cmd tea.Cmd
		m = m.updateRecords(records.ResetMsg{}, &cmd)
		return m, cmd

	case message.GetPageMsg:
		return m, m.getPage(msg.Offset, msg.Size)

	case message.ErrorMsg:
		m.lgr.Error(m.ctx, "error msg", msg.Err)
		m.errStr = msg.Err.Error()
		return m, nil

	case tea.KeyPressMsg:
		m.errStr = ""
		return m.handleKey(msg)
	}

	return m.broadcast(msg)
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.currentScreen {

	case filterScreen:
		if !m.filterPanel.Editing() && msg.String() == "esc" {
			m.currentScreen = recordsScreen
			return m, nil
		}

		var cmd tea.Cmd
		m = m.updateFilter(msg, &cmd)
		return m, cmd

	case recordsScreen:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "f":
			m.currentScreen = filterScreen
			return m, nil
		}

		var cmd tea.Cmd
		m = m.updateRecords(msg, &cmd)
		return m, cmd
	}

	return m, nil
}

// getPage fetches a page of filtered records from the store.
func (m model) getPage(offset, size int) tea.Cmd {

	return func() tea.Msg {
		lines, err := m.dk.GetPage(offset, size)
		if err != nil {
			return message.ErrorMsg{Err: err}
		}

		_, count, err := m.dk.GetView()
		if err != nil {
			return message.ErrorMsg{Err: err}
		}

		return message.PageMsg{Lines: lines, Count: count}
	}
}

func (m model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {

	var cmd1, cmd2 tea.Cmd
	m = m.updateFilter(msg, &cmd1)
	m = m.updateRecords(msg, &cmd2)
	return m, tea.Sequence(cmd1, cmd2)
}

func (m model) updateFilter(msg tea.Msg, cmd *tea.Cmd) model {

	updated, have := m.filterPanel.Update(msg)
	m.filterPanel = updated.(filter.Panel)
	*cmd = have
	return m
}

func (m model) updateRecords(msg tea.Msg, cmd *tea.Cmd) model {

	updated, have := m.recordsPanel.Update(msg)
	m.recordsPanel = updated.(records.Panel)
	*cmd = have
	return m
}

func (m model) View() tea.View {

	if m.width == 0 {
		return tea.NewView("Loading...")
	}

	canvas := lipgloss.NewCanvas(m.width, m.height)
	canvas.Compose(lipgloss.NewLayer("records", m.recordsPanel.Render()))

	if m.currentScreen == filterScreen {
		dialog, x, y := m.filterPanel.Render()
		canvas.Compose(lipgloss.NewLayer("filter", dialog).X(x).Y(y))
	}

	footerContent := fmt.Sprintf("%d/%d  %s  f: filter  q: quit",
		m.recordsPanel.Selected(), m.recordsPanel.Total(), m.dk.Name())
	if m.errStr != "" {
		footerContent = m.errStr
	}
	canvas.Compose(lipgloss.NewLayer("footer", footerContent).Y(m.height - footerHeight))

	view := tea.NewView(canvas)
	view.AltScreen = true
	return view
}
