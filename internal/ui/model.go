// Package ui is the terminal front end over the view state.
package ui

import (
	"context"
	"fmt"
	"strings"

	"go-trick-analyzer/internal/render"
	"go-trick-analyzer/internal/viewstate"
	"go-trick-analyzer/pkg/models"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState is the orchestrator as seen by the terminal UI
type ViewState interface {
	Upload(file models.CandidateFile) (viewstate.View, error)
	Analyze(ctx context.Context) (viewstate.View, error)
	Clear() viewstate.View
	View() viewstate.View
}

// Loader turns a path typed by the user into a candidate file
type Loader func(path string) (models.CandidateFile, error)

type analysisDoneMsg struct {
	view viewstate.View
	err  error
}

// Model is the bubbletea model for the analyzer
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	state  ViewState
	load   Loader
	view   viewstate.View
	loadEr string

	spinner  spinner.Model
	input    textinput.Model
	bar      progress.Model
	entering bool
	waiting  bool
	width    int
	quitting bool
}

// NewModel creates a model over state. initialPath, when set, is uploaded
// before the first frame.
func NewModel(state ViewState, load Loader, initialPath string) *Model {
	ti := textinput.New()
	ti.Placeholder = "./trick.png"
	ti.CharLimit = 512
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusStyle

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
	)

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctx:     ctx,
		cancel:  cancel,
		state:   state,
		load:    load,
		spinner: sp,
		input:   ti,
		bar:     bar,
		width:   80,
	}
	if initialPath != "" {
		m.upload(initialPath)
	} else {
		m.view = state.View()
	}
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		m.view = m.state.View()
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analysisDoneMsg:
		// A superseded response carries a stale view
		m.waiting = false
		m.view = m.state.View()
		return m, nil

	case tea.KeyMsg:
		if m.entering {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case "u":
		m.entering = true
		m.loadEr = ""
		m.input.SetValue("")
		return m, m.input.Focus()
	case "a":
		if m.waiting || !m.view.CanAnalyze() {
			return m, nil
		}
		m.waiting = true
		return m, tea.Batch(m.analyze(), m.spinner.Tick)
	case "c":
		m.loadEr = ""
		m.view = m.state.Clear()
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.entering = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.entering = false
		m.input.Blur()
		m.upload(strings.TrimSpace(m.input.Value()))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) upload(path string) {
	m.loadEr = ""
	file, err := m.load(path)
	if err != nil {
		m.loadEr = err.Error()
		m.view = m.state.View()
		return
	}
	// A rejected file surfaces as the view's notice
	m.view, _ = m.state.Upload(file)
}

func (m *Model) analyze() tea.Cmd {
	ctx := m.ctx
	state := m.state
	return func() tea.Msg {
		v, err := state.Analyze(ctx)
		return analysisDoneMsg{view: v, err: err}
	}
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Trick Analyzer"))
	b.WriteString("\n")

	v := m.view
	if v.Image != nil {
		b.WriteString(MutedStyle.Render("Image: " + v.Image.Ref))
		b.WriteString("\n")
	}
	if v.Status != "" {
		b.WriteString(StatusStyle.Render(v.Status))
		b.WriteString("\n")
	}
	if v.Notice != "" {
		b.WriteString(NoticeStyle.Render(v.Notice))
		b.WriteString("\n")
	}
	if m.loadEr != "" {
		b.WriteString(NoticeStyle.Render(m.loadEr))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	phase := v.Phase
	if m.waiting && v.Image != nil {
		phase = viewstate.Analyzing
	}
	switch phase {
	case viewstate.NoImage:
		b.WriteString("No image yet. Upload a PNG to get started.")
	case viewstate.ImageReady:
		b.WriteString("Ready to analyze.")
	case viewstate.Analyzing:
		b.WriteString(m.spinner.View() + " Analyzing...")
	case viewstate.ResultShown:
		b.WriteString(m.renderResult(v.Result))
	case viewstate.ErrorShown:
		b.WriteString(ErrorStyle.Render(v.Error))
	}
	b.WriteString("\n\n")

	if m.entering {
		b.WriteString("PNG path:\n" + m.input.View() + "\n")
		b.WriteString(m.help([]string{"enter", "upload", "esc", "cancel"}))
	} else {
		b.WriteString(m.help(m.keys()))
	}

	return BoxStyle.Width(max(m.width-4, 40)).Render(b.String())
}

func (m *Model) renderResult(r *models.AnalysisResult) string {
	if r == nil {
		return ""
	}
	rv := render.Result(*r)

	var b strings.Builder
	b.WriteString(ScoreStyle.Render(fmt.Sprintf("Success rate: %d%%", rv.SuccessRate)))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("   confidence %d%%", rv.Confidence)))
	if rv.Verdict != "" {
		b.WriteString(MutedStyle.Render("   (" + rv.Verdict + ")"))
	}
	b.WriteString("\n\n")

	for _, f := range rv.Factors {
		b.WriteString(LabelStyle.Render(f.Label))
		b.WriteString(m.bar.ViewAs(float64(f.Score) / 100))
		b.WriteString(fmt.Sprintf(" %3d\n", f.Score))
	}

	if rv.Advice != "" {
		b.WriteString("\n")
		b.WriteString(AdviceStyle.Render(rv.Advice))
	}
	return b.String()
}

func (m *Model) keys() []string {
	keys := []string{"u", "upload"}
	if !m.waiting && m.view.CanAnalyze() {
		keys = append(keys, "a", "analyze")
	}
	if m.view.Phase != viewstate.NoImage {
		keys = append(keys, "c", "clear")
	}
	return append(keys, "q", "quit")
}

func (m *Model) help(pairs []string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, HelpKeyStyle.Render(pairs[i])+" "+MutedStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

// Run starts the terminal UI and blocks until the user quits
func Run(state ViewState, load Loader, initialPath string) error {
	p := tea.NewProgram(NewModel(state, load, initialPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
