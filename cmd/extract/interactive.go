package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/tika-bridge/envelope"
	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/extractor"
	"github.com/wippyai/tika-bridge/vm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// previewLimit caps how much streamed text the viewer holds.
const previewLimit = 1 << 20

type modelState int

const (
	stateInput modelState = iota
	stateExtracting
	stateShowResult
)

type interactiveModel struct {
	ctx      context.Context
	ex       *extractor.Extractor
	err      error
	input    textinput.Model
	spinner  spinner.Model
	view     viewport.Model
	source   string
	metadata envelope.Metadata
	state    modelState
	width    int
	height   int
	ready    bool
}

type extractedMsg struct {
	err       error
	metadata  envelope.Metadata
	text      string
	truncated bool
}

func newInteractiveModel(ctx context.Context, ex *extractor.Extractor) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "path or http(s) URL"
	ti.Prompt = "document: "
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &interactiveModel{ctx: ctx, ex: ex, input: ti, spinner: sp, state: stateInput}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) extract(source string) tea.Cmd {
	return func() tea.Msg {
		var (
			res *extractor.Result
			err error
		)
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			res, err = m.ex.ExtractURL(m.ctx, source)
		} else {
			res, err = m.ex.ExtractFile(m.ctx, source)
		}
		if err != nil {
			return extractedMsg{err: err}
		}
		defer res.Close()

		data, err := io.ReadAll(io.LimitReader(res, previewLimit+1))
		if err != nil {
			return extractedMsg{err: err}
		}
		msg := extractedMsg{metadata: res.Metadata}
		if len(data) > previewLimit {
			data = data[:previewLimit]
			msg.truncated = true
		}
		msg.text = string(data)
		return msg
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.view = viewport.New(msg.Width, max(msg.Height-6, 1))
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = max(msg.Height-6, 1)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != stateInput {
				return m, tea.Quit
			}
		case "enter":
			if m.state == stateInput {
				source := strings.TrimSpace(m.input.Value())
				if source == "" {
					return m, nil
				}
				m.source = source
				m.state = stateExtracting
				m.err = nil
				return m, tea.Batch(m.spinner.Tick, m.extract(source))
			}
		case "esc":
			if m.state == stateShowResult {
				m.state = stateInput
				m.input.SetValue("")
				m.input.Focus()
				return m, textinput.Blink
			}
		}

	case extractedMsg:
		m.state = stateShowResult
		m.err = msg.err
		m.metadata = msg.metadata
		content := msg.text
		if msg.truncated {
			content += fmt.Sprintf("\n\n[preview truncated at %d bytes]", previewLimit)
		}
		if len(msg.metadata) > 0 {
			content += "\n\n" + m.renderMetadata()
		}
		m.view.SetContent(content)
		m.view.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateExtracting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.state {
	case stateInput:
		m.input, cmd = m.input.Update(msg)
	case stateShowResult:
		m.view, cmd = m.view.Update(msg)
	}
	return m, cmd
}

func (m *interactiveModel) renderMetadata() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Metadata"))
	b.WriteString("\n")
	for _, name := range m.metadata.Names() {
		b.WriteString(keyStyle.Render(name))
		b.WriteString(": ")
		b.WriteString(strings.Join(m.metadata[name], ", "))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tika Extract"))
	if m.source != "" {
		b.WriteString(" ")
		b.WriteString(m.source)
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateInput:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter extract • ctrl+c quit"))

	case stateExtracting:
		b.WriteString(m.spinner.View())
		b.WriteString(" extracting...")

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(describeError(m.err)))
		} else {
			b.WriteString(m.view.View())
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ scroll • %3.f%% • esc new document • q quit", m.view.ScrollPercent()*100)))
	}
	return b.String()
}

func describeError(err error) string {
	if errors.IsContent(err) {
		return fmt.Sprintf("Could not extract: %s", errors.Message(err))
	}
	if exc, ok := vm.ExceptionCause(err); ok {
		return fmt.Sprintf("Bridge failure: %s", exc.Description)
	}
	return fmt.Sprintf("Error: %v", err)
}

func runInteractive(ctx context.Context, ex *extractor.Extractor) error {
	p := tea.NewProgram(newInteractiveModel(ctx, ex), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
