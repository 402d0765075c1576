package main

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail fabric system status and recent message traffic in a terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(newWatchModel())
		_, err := p.Run()
		return err
	},
}

var (
	watchBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	watchKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	watchDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type watchDataMsg struct {
	status   map[string]any
	messages []map[string]any
}
type errMsg error

type watchModel struct {
	status   map[string]any
	messages []map[string]any
	err      error
}

func newWatchModel() watchModel {
	return watchModel{}
}

func (m watchModel) Init() tea.Cmd {
	return pollFabric()
}

func pollFabric() tea.Cmd {
	return func() tea.Msg {
		status, err := fetchStatus()
		if err != nil {
			return errMsg(err)
		}
		messages, err := fetchMessages()
		if err != nil {
			return errMsg(err)
		}
		return watchDataMsg{status: status, messages: messages}
	}
}

func tickEvery() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return pollFabric()()
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case watchDataMsg:
		m.status = msg.status
		m.messages = msg.messages
		m.err = nil
		return m, tickEvery()
	case errMsg:
		m.err = msg
		return m, tickEvery()
	}
	return m, nil
}

func (m watchModel) View() string {
	title := watchTitleStyle.Render("taskfabric status")

	if m.err != nil {
		return watchBorderStyle.Render(fmt.Sprintf("%s\n\n%s", title, watchErrStyle.Render(m.err.Error())))
	}
	if m.status == nil {
		return watchBorderStyle.Render(fmt.Sprintf("%s\n\nconnecting...", title))
	}

	statusBody, _ := json.MarshalIndent(m.status, "", "  ")
	messagesHeader := watchDimStyle.Render(fmt.Sprintf("recent messages (%d)", len(m.messages)))
	messagesBody, _ := json.MarshalIndent(m.messages, "", "  ")
	footer := watchKeyStyle.Render("q to quit")

	return watchBorderStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n\n%s",
		title, string(statusBody), messagesHeader, string(messagesBody), footer))
}
