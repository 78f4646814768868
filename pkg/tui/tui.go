// Package tui provides a terminal user interface for smfcodec
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/smfcodec/pkg/converter"
)

// Tape-deck color scheme
var (
	amber     = lipgloss.Color("#FFB000")
	paleCream = lipgloss.Color("#F5E6C8")
	tapeGray  = lipgloss.Color("#A8A8A8")
	panelGray = lipgloss.Color("#2B2B2B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			Background(panelGray).
			MarginBottom(1)

	menuStyle     = lipgloss.NewStyle().Foreground(tapeGray)
	selectedStyle = lipgloss.NewStyle().Foreground(amber).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(paleCream).MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4040")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	descStyle = lipgloss.NewStyle().
			Foreground(paleCream).
			PaddingLeft(4)

	helpStyle = lipgloss.NewStyle().
			Foreground(tapeGray).
			Faint(true).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(amber).
			Padding(0, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// Action is what a menu entry does with the picked file
type Action int

const (
	ActionConvert Action = iota
	ActionInspect
	ActionVerify
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
	FromFormat  converter.Format
	ToFormat    converter.Format
}

var menuItems = []MenuItem{
	{Title: "Inspect MIDI", Description: "Show header, tracks and chunks of a MIDI file", Action: ActionInspect, FromFormat: converter.FormatMIDI},
	{Title: "MIDI → JSON", Description: "Dump every chunk and event as JSON", Action: ActionConvert, FromFormat: converter.FormatMIDI, ToFormat: converter.FormatJSON},
	{Title: "JSON → MIDI", Description: "Build a MIDI file from a JSON chunk dump", Action: ActionConvert, FromFormat: converter.FormatJSON, ToFormat: converter.FormatMIDI},
	{Title: "MIDI → SYX", Description: "Extract system exclusive messages to a .syx dump", Action: ActionConvert, FromFormat: converter.FormatMIDI, ToFormat: converter.FormatSyx},
	{Title: "SYX → MIDI", Description: "Wrap a .syx dump in a single-track MIDI file", Action: ActionConvert, FromFormat: converter.FormatSyx, ToFormat: converter.FormatMIDI},
	{Title: "Normalize MIDI", Description: "Decode and re-encode with the configured running status policy", Action: ActionConvert, FromFormat: converter.FormatMIDI, ToFormat: converter.FormatMIDI},
	{Title: "Verify MIDI", Description: "Cross-check channel messages against gomidi", Action: ActionVerify, FromFormat: converter.FormatMIDI},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

var allowedTypes = map[converter.Format][]string{
	converter.FormatMIDI: {".mid", ".midi", ".smf"},
	converter.FormatJSON: {".json"},
	converter.FormatSyx:  {".syx"},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	report       viewport.Model
	opts         converter.Options
	selectedFile string
	outputFile   string
	item         MenuItem
	err          error
	width        int
	height       int
}

// actionDoneMsg signals that the selected action finished
type actionDoneMsg struct {
	outputFile string
	report     string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(opts converter.Options) Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi", ".smf", ".json", ".syx"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(amber)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
		report:     viewport.New(80, 20),
		opts:       opts,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.performAction())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		m.report.Width = max(msg.Width-8, 20)
		m.report.Height = max(msg.Height-16, 5)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.err = msg.err
		m.report.SetContent(msg.report)
		m.report.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.item = menuItems[m.menuIndex]
		if m.item.Action == ActionExit {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		m.filePicker.AllowedTypes = allowedTypes[m.item.FromFormat]
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.report.SetContent("")
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.report, cmd = m.report.Update(msg)
	return m, cmd
}

func (m Model) performAction() tea.Cmd {
	item, path, conv := m.item, m.selectedFile, converter.New(m.opts)
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return actionDoneMsg{err: err}
		}

		switch item.Action {
		case ActionInspect:
			summary, err := conv.Inspect(data)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{report: formatSummary(summary)}
		case ActionVerify:
			report, err := conv.Verify(data)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{report: formatVerify(report)}
		}

		result, err := conv.Convert(data, item.FromFormat, item.ToFormat)
		if err != nil {
			return actionDoneMsg{err: err}
		}

		outputFile := outputPath(path, item)
		if err := os.WriteFile(outputFile, result, 0644); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{outputFile: outputFile}
	}
}

// outputPath places the result next to the input. Normalizing writes a
// .normalized.mid sibling so the input is never overwritten.
func outputPath(input string, item MenuItem) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	switch item.ToFormat {
	case converter.FormatJSON:
		return base + ".json"
	case converter.FormatSyx:
		return base + ".syx"
	}
	if item.FromFormat == converter.FormatMIDI {
		return base + ".normalized.mid"
	}
	return base + ".mid"
}

func formatSummary(s *converter.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Format:   %s\n", s.Format)
	fmt.Fprintf(&b, "Tracks:   %d declared, %d decoded\n", s.TrackCount, len(s.Tracks))
	fmt.Fprintf(&b, "Division: %s\n", s.Division)
	if s.BPM > 0 {
		fmt.Fprintf(&b, "Tempo:    %.2f BPM\n", s.BPM)
	}
	b.WriteString("\n")
	for _, t := range s.Tracks {
		name := t.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "#%-3d %-20s %5d events  %4d ch  %4d meta  %3d sysex  %8d ticks\n",
			t.Index, name, t.Events, t.Channel, t.Meta, t.SysEx, t.Duration)
	}
	if len(s.Unknown) > 0 {
		fmt.Fprintf(&b, "\nUnknown chunks: %s\n", strings.Join(s.Unknown, ", "))
	}
	if len(s.Manufacturers) > 0 {
		fmt.Fprintf(&b, "SysEx from:     %s\n", strings.Join(s.Manufacturers, ", "))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped chunks: %d\n", s.Skipped)
	}
	return b.String()
}

func formatVerify(r *converter.VerifyReport) string {
	var b strings.Builder
	for _, t := range r.Tracks {
		mark := "✓"
		if !t.Matches {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s track %d: %d channel events (gomidi %d)\n", mark, t.Index, t.Ours, t.Gomidi)
	}
	if r.OK {
		b.WriteString("\nBoth decoders agree.\n")
	} else {
		fmt.Fprintf(&b, "\nDecoders disagree (gomidi saw %d tracks).\n", r.GomidiTracks)
	}
	return b.String()
}

// View renders the logo, the panel for the current state and the key help
func (m Model) View() string {
	var body string
	switch m.state {
	case StateMenu:
		body = m.viewMenu()
	case StateFilePicker:
		body = m.viewFilePicker()
	case StateWorking:
		body = m.viewWorking()
	case StateResult:
		body = m.viewResult()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		asciiLogo(),
		body,
		helpStyle.Render(keyHelp[m.state]),
	)
}

var keyHelp = map[State]string{
	StateMenu:       "↑/↓ move • enter choose • q quit",
	StateFilePicker: "↑/↓ move • enter open • esc menu • q quit",
	StateWorking:    "working…",
	StateResult:     "↑/↓ scroll • enter menu • q quit",
}

// panel draws a titled box
func panel(title string, lines ...string) string {
	content := lipgloss.JoinVertical(lipgloss.Left, append([]string{titleStyle.Render(" " + title + " ")}, lines...)...)
	return boxStyle.Render(content)
}

func (m Model) viewMenu() string {
	lines := make([]string, 0, len(menuItems)+1)
	for i, item := range menuItems {
		if i != m.menuIndex {
			lines = append(lines, menuStyle.Render("  "+item.Title))
			continue
		}
		lines = append(lines,
			selectedStyle.Render("▸ "+item.Title),
			descStyle.Render(item.Description),
		)
	}
	return panel("SMF CODEC", lines...)
}

func (m Model) viewFilePicker() string {
	title := fmt.Sprintf("%s: PICK A %s FILE", strings.ToUpper(m.item.Title), strings.ToUpper(string(m.item.FromFormat)))
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(" "+title+" "), m.filePicker.View())
}

func (m Model) viewWorking() string {
	return panel("WORKING",
		m.spinner.View()+" "+filepath.Base(m.selectedFile),
		statusStyle.Render(m.item.Title),
	)
}

func (m Model) viewResult() string {
	name := filepath.Base(m.selectedFile)
	switch {
	case m.err != nil:
		return panel("FAILED", errorStyle.Render("✗ "+name+": "+m.err.Error()))
	case m.outputFile == "":
		return panel(strings.ToUpper(name), m.report.View())
	default:
		return panel("WRITTEN",
			successStyle.Render("✓ "+m.item.Title),
			"",
			"from  "+name,
			"to    "+filepath.Base(m.outputFile),
		)
	}
}

func asciiLogo() string {
	logo := `
  ___ _ __ ___  / _| ___ ___   __| | ___  ___
 / __| '_ ` + "`" + ` _ \| |_ / __/ _ \ / _` + "`" + ` |/ _ \/ __|
 \__ \ | | | | |  _| (_| (_) | (_| |  __/ (__
 |___/_| |_| |_|_|  \___\___/ \__,_|\___|\___|
`
	return lipgloss.NewStyle().Foreground(amber).Render(logo)
}

// Run starts the TUI application
func Run(opts converter.Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
