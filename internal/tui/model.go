package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"embedgen/internal/config"
	"embedgen/internal/domain"
	"embedgen/internal/embedding"
	"embedgen/internal/service"
)

// EmbeddingPort is the TUI-facing subset of the embedding service.
type EmbeddingPort interface {
	Generate(raw string, settings service.Settings) (*service.Result, error)
	Similar(row, topK int) ([]domain.SearchResult, error)
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusFailure
)

// previewCols caps how many components of a row are printed.
const previewCols = 6

// Model is the Bubble Tea model for the embedding playground.
type Model struct {
	service    EmbeddingPort
	cfg        config.PlaygroundConfig
	settings   service.Settings
	input      textarea.Model
	viewport   viewport.Model
	result     *service.Result
	neighbors  []domain.SearchResult
	status     string
	statusKind statusKind
	cursor     int
	ready      bool
}

// New creates a new TUI model instance.
func New(svc EmbeddingPort, cfg config.PlaygroundConfig, settings service.Settings) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter text chunks (one per line)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()
	vp := viewport.New(0, 0)
	return Model{
		service:  svc,
		cfg:      cfg,
		settings: settings,
		input:    ta,
		viewport: vp,
		status:   "Type some lines and press ctrl+g to generate.",
	}
}

// Init initializes the model (text area cursor blink).
func (m Model) Init() tea.Cmd { return textarea.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		iw, _ := inputBoxStyle.GetFrameSize()
		inputHeight := 6
		m.input.SetWidth(max(20, msg.Width-iw))
		m.input.SetHeight(inputHeight)
		// header + settings + status + spacer, plus the input box frame
		reserved := 4 + inputHeight + 2
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "esc":
			return m, tea.Quit
		case "ctrl+g":
			m.generate()
			return m, nil
		case "ctrl+t":
			m.settings.Deterministic = !m.settings.Deterministic
			return m, nil
		case "ctrl+n":
			m.settings.Normalize = !m.settings.Normalize
			return m, nil
		case "ctrl+up":
			m.settings.Dimension = m.clampDimension(m.settings.Dimension + m.cfg.Step)
			return m, nil
		case "ctrl+down":
			m.settings.Dimension = m.clampDimension(m.settings.Dimension - m.cfg.Step)
			return m, nil
		case "pgdown":
			if m.result != nil && m.result.Matrix.Len() > 0 {
				m.cursor = (m.cursor + 1) % m.result.Matrix.Len()
				m.refreshNeighbors()
				return m, nil
			}
		case "pgup":
			if m.result != nil && m.result.Matrix.Len() > 0 {
				n := m.result.Matrix.Len()
				m.cursor = (m.cursor - 1 + n) % n
				m.refreshNeighbors()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) generate() {
	res, err := m.service.Generate(m.input.Value(), m.settings)
	if err != nil {
		m.setError(err)
		m.viewport.SetContent(m.renderResult())
		return
	}
	m.result = res
	m.cursor = 0
	rows, cols := res.Matrix.Shape()
	m.status = fmt.Sprintf("Embeddings generated successfully: (%d, %d)", rows, cols)
	m.statusKind = statusSuccess
	m.refreshNeighbors()
}

func (m *Model) refreshNeighbors() {
	m.neighbors = nil
	if m.result != nil && m.result.Matrix.Len() > 0 {
		nb, err := m.service.Similar(m.cursor, m.cfg.Neighbors)
		if err != nil {
			m.setError(err)
		} else {
			m.neighbors = nb
		}
	}
	m.viewport.SetContent(m.renderResult())
}

// setError shows expected user errors as warnings and logs anything else.
func (m *Model) setError(err error) {
	switch classify(err) {
	case statusWarning:
		m.status = "Warning: " + err.Error()
		m.statusKind = statusWarning
	default:
		log.Error().Err(err).Int("dim", m.settings.Dimension).Msg("Embedding generation failed")
		m.status = "Error: " + err.Error()
		m.statusKind = statusFailure
	}
}

func classify(err error) statusKind {
	switch {
	case errors.Is(err, embedding.ErrInvalidConfiguration),
		errors.Is(err, embedding.ErrInvalidInputType),
		errors.Is(err, service.ErrNoInput),
		errors.Is(err, errors.ErrUnsupported):
		return statusWarning
	default:
		return statusFailure
	}
}

func (m Model) clampDimension(d int) int {
	if d < m.cfg.MinDimension {
		return m.cfg.MinDimension
	}
	if d > m.cfg.MaxDimension {
		return m.cfg.MaxDimension
	}
	return d
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Random Embedding Generator")
	settings := mutedStyle.Render(m.renderSettings())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyles[m.statusKind].Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + settings + "\n" + input + "\n" + status + "\n" + results
}

func (m Model) renderSettings() string {
	mode := "random"
	if m.settings.Deterministic {
		mode = "deterministic"
	}
	norm := "off"
	if m.settings.Normalize {
		norm = "on"
	}
	return fmt.Sprintf("dim=%d (ctrl+up/down)  mode=%s (ctrl+t)  normalize=%s (ctrl+n)  generate: ctrl+g  rows: pgup/pgdown",
		m.settings.Dimension, mode, norm)
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No embeddings yet."
	}
	rows, cols := m.result.Matrix.Shape()
	var b strings.Builder
	fmt.Fprintf(&b, "Embedding matrix shape: (%d, %d)  # (number_of_texts, embedding_dimension)\n\n", rows, cols)
	fmt.Fprintf(&b, "Sample embeddings (first %d rows)\n", m.cfg.PreviewRows)
	for i, row := range m.result.Matrix.Head(m.cfg.PreviewRows) {
		line := fmt.Sprintf("%3d  %s  %s", i, FormatRow(row, previewCols), m.result.Texts[i])
		if i == m.cursor {
			line = highlightStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if rows == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\nRow %d/%d: %q\n", m.cursor+1, rows, m.result.Texts[m.cursor])
	if len(m.neighbors) == 0 {
		b.WriteString("No neighbours.")
		return b.String()
	}
	b.WriteString("Nearest rows:\n")
	for _, n := range m.neighbors {
		fmt.Fprintf(&b, "  %3d  cos=%.3f  %s\n", n.Entry.Row, n.Score, n.Entry.Text)
	}
	return b.String()
}

// FormatRow prints the first limit components of vec, eliding the rest.
func FormatRow(vec []float64, limit int) string {
	n := len(vec)
	if limit > 0 && n > limit {
		n = limit
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("%.4f", vec[i])
	}
	s := "[" + strings.Join(parts, " ")
	if n < len(vec) {
		s += fmt.Sprintf(" ... (%d more)", len(vec)-n)
	}
	return s + "]"
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyles   = map[statusKind]lipgloss.Style{
		statusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		statusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		statusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		statusFailure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
