package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Pick an option number or type an action id..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// log holds every rendered narration so the transcript survives
	// window resizes.
	log []string

	// actions are the options offered by the latest narration, indexed
	// by menu number.
	actions []Action

	showQuitModal bool
}

type narrationsMsg struct {
	narrations []Narration
	err        error
}

type restartMsg struct {
	err error
}

var (
	gamePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:       cfg,
		client:       client,
		textarea:     ta,
		gameViewport: vp,
		loading:      true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	// An empty action makes the engine render the current view, which
	// for a new user is class selection.
	return tea.Batch(textarea.Blink, m.sendAction(""))
}

func (m ConsoleUI) sendAction(action string) tea.Cmd {
	return func() tea.Msg {
		narrations, err := sendEvent(m.client, m.config.APIBaseURL, m.config.UserID, action)
		return narrationsMsg{narrations: narrations, err: err}
	}
}

func (m ConsoleUI) restart() tea.Cmd {
	return func() tea.Msg {
		return restartMsg{err: deleteSession(m.client, m.config.APIBaseURL, m.config.UserID)}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textarea, taCmd = m.textarea.Update(msg)
	m.gameViewport, vpCmd = m.gameViewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gameViewport.Width = msg.Width - 4
		m.gameViewport.Height = msg.Height - 5
		m.textarea.SetWidth(msg.Width - 4)
		m.ready = true
		m.refreshContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.showQuitModal {
				return m, tea.Quit
			}
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.showQuitModal {
				m.showQuitModal = false
				return m, nil
			}
			return m.submit()
		default:
			if m.showQuitModal {
				m.showQuitModal = false
			}
		}

	case narrationsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.appendNarrations(msg.narrations)
		}
		m.refreshContent()
		m.gameViewport.GotoBottom()

	case restartMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			m.refreshContent()
			return m, nil
		}
		m.log = nil
		m.actions = nil
		return m, m.sendAction("")
	}

	return m, tea.Batch(taCmd, vpCmd)
}

// submit resolves the typed input to an action id and sends it. A bare
// number picks from the current menu; "/restart" wipes the session.
func (m ConsoleUI) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	m.textarea.Reset()
	if input == "" || m.loading {
		return m, nil
	}

	if input == "/restart" {
		m.loading = true
		m.log = append(m.log, userStyle.Render("> restart"))
		return m, m.restart()
	}

	action := input
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.actions) {
		action = m.actions[n-1].ID
		m.log = append(m.log, userStyle.Render("> "+m.actions[n-1].Label))
	} else {
		m.log = append(m.log, userStyle.Render("> "+input))
	}

	m.loading = true
	m.refreshContent()
	m.gameViewport.GotoBottom()
	return m, m.sendAction(action)
}

// appendNarrations formats engine output into the transcript and
// replaces the action menu with the last non-empty one.
func (m *ConsoleUI) appendNarrations(narrations []Narration) {
	for _, n := range narrations {
		if n.Text != "" {
			m.log = append(m.log, narratorStyle.Render(n.Text))
		}
		if len(n.Actions) > 0 {
			m.actions = n.Actions
			var menu strings.Builder
			for i, a := range n.Actions {
				fmt.Fprintf(&menu, "%2d. %s\n", i+1, a.Label)
			}
			m.log = append(m.log, actionStyle.Render(strings.TrimRight(menu.String(), "\n")))
		}
	}
}

func (m *ConsoleUI) refreshContent() {
	width := m.gameViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUESTLINE") + "\n")
	content.WriteString(promptStyle.Render("Playing as "+m.config.UserID) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, entry := range m.log {
		content.WriteString(wordwrap.String(entry, width) + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.loading {
		content.WriteString(loadingStyle.Render("...") + "\n")
	}

	m.gameViewport.SetContent(content.String())
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showQuitModal {
		modal := modalStyle.Render("Quit Questline?\n\nCtrl+C again to quit, Enter to stay.")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	return gamePanelStyle.Render(m.gameViewport.View()) + "\n" + m.textarea.View()
}
