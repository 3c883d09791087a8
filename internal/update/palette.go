package update

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/commands"
	"github.com/sandeepkv93/protodo/internal/views"
)

func (m Model) openInput(mode InputMode) (Model, tea.Cmd) {
	m.Input = mode
	in := m.activeInput()
	switch mode {
	case InputSearch:
		in.SetValue(m.Tasks.Query)
		m.Status = StatusBar{Text: "search: type to filter, enter to keep, esc to clear"}
	case InputCommand:
		in.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
	default:
		in.SetValue("")
		m.Status = StatusBar{Text: "quick add: enter to save, esc to cancel"}
	}
	return m, in.Focus()
}

func (m *Model) closeInput() {
	if in := m.activeInput(); in != nil {
		in.Blur()
		in.SetValue("")
	}
	m.Input = InputNone
}

func (m *Model) activeInput() *textinput.Model {
	switch m.Input {
	case InputAdd:
		return &m.addInput
	case InputSearch:
		return &m.searchInput
	case InputCommand:
		return &m.commandInput
	default:
		return nil
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	in := m.activeInput()
	if in == nil {
		m.Input = InputNone
		return m, nil
	}
	switch msg.String() {
	case "esc":
		if m.Input == InputSearch {
			m.Tasks.Query = ""
			m.Status = StatusBar{Text: "search cleared"}
		} else {
			m.Status = StatusBar{Text: string(m.Input) + " cancelled"}
		}
		m.closeInput()
		m.refresh()
		return m, nil
	case "enter":
		raw := strings.TrimSpace(in.Value())
		mode := m.Input
		m.closeInput()
		switch mode {
		case InputAdd:
			if raw == "" {
				m.Status = StatusBar{Text: "quick add cancelled"}
				return m, nil
			}
			return m.runCommand("add " + raw), nil
		case InputCommand:
			if raw == "" {
				m.Status = StatusBar{Text: "command palette closed"}
				return m, nil
			}
			return m.runCommand(raw), nil
		default:
			m.Tasks.Query = raw
			m.Status = StatusBar{Text: "search: " + raw}
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch msg.Type {
	case tea.KeyRunes:
		in.SetValue(in.Value() + string(msg.Runes))
	case tea.KeySpace:
		in.SetValue(in.Value() + " ")
	default:
		*in, cmd = in.Update(msg)
	}
	if m.Input == InputSearch {
		m.Tasks.Query = in.Value()
		m.refresh()
	}
	return m, cmd
}

// runCommand parses one palette line and dispatches it.
func (m Model) runCommand(raw string) Model {
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.LastError = err
		return m
	}
	return m.dispatch(cmd)
}

func (m Model) dispatch(cmd commands.Command) Model {
	res, err := m.svc.Dispatch(m.ctx, cmd)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		if !app.IsUserError(err) {
			m.notify("Command failed", err.Error())
		}
		m.refresh()
		return m
	}
	m.LastError = nil
	m.Status = StatusBar{Text: res.Message}
	if res.Show != nil {
		m.applyShow(*res.Show)
	}
	m.refresh()
	if res.Task != nil {
		m.selectTask(res.Task.ID)
		m.syncBubbleData()
	}
	return m
}

func (m *Model) applyShow(a commands.ShowArgs) {
	if a.Filter != "" {
		m.Tasks.Filter = a.Filter
	}
	if a.Sort != "" {
		m.Tasks.Sort = a.Sort
	}
	if a.Query != nil {
		m.Tasks.Query = *a.Query
	}
	m.CurrentView = ViewTasks
}

func (m Model) renderInputView() string {
	switch m.Input {
	case InputAdd:
		return m.addInput.View()
	case InputSearch:
		return m.searchInput.View()
	default:
		return ""
	}
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Input == InputCommand, m.commandInput.View())
}
