package tui

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/strata-dev/strata/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	acceptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	reviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	rejectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ReviewData is what the review prompt displays: the quality gate outcome and
// the decisions behind it.
type ReviewData struct {
	Root      string
	Quality   types.QualityReport
	Decisions []types.DecisionRecord
	Artifacts []string
}

// Verdict is the reviewer's answer.
type Verdict int

const (
	VerdictUndecided Verdict = iota
	VerdictAccepted
	VerdictRejected
)

// Model is the interactive review prompt shown when the quality gate resolves
// to REVIEW.
type Model struct {
	table    table.Model
	viewport viewport.Model
	data     ReviewData
	verdict  Verdict
	ready    bool
	quitting bool
	width    int
	height   int
	status   string
}

// NewModel builds the review model over the run's outcome.
func NewModel(data ReviewData) Model {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Category", Width: 14},
		{Title: "Technology", Width: 20},
		{Title: "Conf", Width: 6},
		{Title: "Band", Width: 7},
		{Title: "Status", Width: 12},
	}

	rows := make([]table.Row, len(data.Decisions))
	for i, d := range data.Decisions {
		rows[i] = table.Row{
			d.ID,
			string(d.Category),
			d.TechnologyID,
			fmt.Sprintf("%.2f", d.Confidence),
			string(types.BandFor(d.Confidence)),
			string(d.Status),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	return Model{
		table:  t,
		data:   data,
		status: "a: accept | r: reject | j/k: navigate | q: quit (reject)",
	}
}

// Result returns the reviewer's decision after the program exits.
func (m Model) Result() Verdict { return m.verdict }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			m.verdict = VerdictAccepted
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.verdict = VerdictRejected
			m.quitting = true
			return m, tea.Quit
		case "q", "ctrl+c", "esc":
			// Quitting without a decision is a rejection; accepting must be
			// explicit.
			m.verdict = VerdictRejected
			m.quitting = true
			return m, tea.Quit
		case "down", "j", "up", "k":
			m.table, cmd = m.table.Update(msg)
			m.updateViewportContent()
			return m, cmd
		case "g", "home":
			m.table.GotoTop()
			m.updateViewportContent()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			m.updateViewportContent()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		headerHeight := lipgloss.Height(m.headerView())
		availableHeight := m.height - headerHeight - lipgloss.Height(statusStyle.Render("")) - 1
		tableHeight := int(float64(availableHeight) * 0.4)
		if tableHeight < 4 {
			tableHeight = 4
		}
		viewportHeight := availableHeight - tableHeight - detailPaneBorderStyle.GetVerticalFrameSize()

		m.table.SetWidth(m.width)
		m.table.SetHeight(tableHeight)
		if m.viewport.Height == 0 {
			m.viewport = viewport.New(m.width, viewportHeight)
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.updateViewportContent()
		statusStyle = statusStyle.Width(m.width)
	}
	return m, cmd
}

func (m *Model) updateViewportContent() {
	if !m.ready || len(m.data.Decisions) == 0 {
		m.viewport.SetContent("")
		return
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.data.Decisions) {
		m.viewport.SetContent("")
		return
	}
	d := m.data.Decisions[idx]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n\n", titleStyle.Render("Decision Details")))
	b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Technology:"), d.TechnologyID))
	b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Category:"), d.Category))
	b.WriteString(fmt.Sprintf("%s %.2f (%s)\n", keyStyle.Render("Confidence:"), d.Confidence, types.BandFor(d.Confidence)))
	b.WriteString(fmt.Sprintf("%s %s\n\n", keyStyle.Render("Rationale:"), d.Rationale))

	if len(d.EvidenceRefs) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Evidence:"), d.EvidenceRefs[0]))
		path, line := splitRef(d.EvidenceRefs[0])
		if preview := renderPreview(filepath.Join(m.data.Root, path), path, line); preview != "" {
			b.WriteString("\n" + preview)
		}
	}
	m.viewport.SetContent(b.String())
}

// splitRef parses a "path#line" evidence reference.
func splitRef(ref string) (string, int) {
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		line, err := strconv.Atoi(ref[i+1:])
		if err == nil {
			return ref[:i], line
		}
		return ref[:i], 0
	}
	return ref, 0
}

const previewContext = 3

func renderPreview(abs, rel string, target int) string {
	if target <= 0 {
		target = 1
	}
	lines, start, err := readFileContext(abs, target, previewContext)
	if err != nil || len(lines) == 0 {
		return ""
	}

	lineNumStyle := dimStyle
	markStyle := lipgloss.NewStyle().Background(lipgloss.Color("236"))

	var b strings.Builder
	for i, line := range lines {
		n := start + i
		b.WriteString(lineNumStyle.Render(fmt.Sprintf("%4d ", n)))
		highlighted := highlightLine(line, rel)
		if n == target {
			b.WriteString(markStyle.Render(highlighted))
		} else {
			b.WriteString(highlighted)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func readFileContext(path string, targetLine, contextLines int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	startLine := targetLine - contextLines
	if startLine < 1 {
		startLine = 1
	}
	endLine := targetLine + contextLines

	var lines []string
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines, startLine, scanner.Err()
}

func highlightLine(line, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		ext := filepath.Ext(filename)
		if ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		return line
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return line
	}

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (m Model) headerView() string {
	q := m.data.Quality
	var verdictText string
	switch q.Recommendation {
	case types.RecAccept:
		verdictText = acceptStyle.Render(string(q.Recommendation))
	case types.RecReview:
		verdictText = reviewStyle.Render(string(q.Recommendation))
	default:
		verdictText = rejectStyle.Render(string(q.Recommendation))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quality Gate Review"))
	b.WriteString(fmt.Sprintf("  score %.2f  %s\n", q.Score, verdictText))
	for _, is := range q.Issues {
		crit := ""
		if is.Critical {
			crit = rejectStyle.Render(" CRITICAL")
		}
		b.WriteString(fmt.Sprintf("  - %s%s: %s (-%.2f)\n", is.Checker, crit, is.Detail, is.Penalty))
	}
	for _, c := range q.Corrections {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  * corrected: %s\n", c.Action)))
	}
	return b.String()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(detailPaneBorderStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}
