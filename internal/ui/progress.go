package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"symbex/internal/driver"
)

// stages gives each driver stage its row label and how far along an input
// is once it reaches that stage. Exploration dominates, hence the jump
// between specialize and extract.
var stages = map[driver.Stage]struct {
	label  string
	weight float64
}{
	driver.StageLoad:       {"loading", 0.05},
	driver.StageValidate:   {"validating", 0.1},
	driver.StageCallGraph:  {"analyzing", 0.2},
	driver.StageSpecialize: {"specializing", 0.3},
	driver.StageExtract:    {"extracting", 0.8},
	driver.StageWrite:      {"writing", 0.9},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

const statusWidth = 12

type inputRow struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
}

func (r inputRow) finished() bool {
	switch r.status {
	case driver.StatusDone, driver.StatusCached, driver.StatusError:
		return true
	}
	return false
}

func (r inputRow) label() string {
	if r.status == driver.StatusWorking {
		if s, ok := stages[r.stage]; ok {
			return s.label
		}
	}
	return string(r.status)
}

func (r inputRow) style() lipgloss.Style {
	switch r.status {
	case driver.StatusDone, driver.StatusCached:
		return okStyle
	case driver.StatusError:
		return failStyle
	case driver.StatusQueued:
		return idleStyle
	}
	return workingStyle
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []inputRow
	byPath  map[string]int
	width   int
	closed  bool
}

type (
	eventMsg  driver.Event
	closedMsg struct{}
)

// NewProgressModel returns a Bubble Tea model that shows one row per input
// file until events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]inputRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = inputRow{path: file, status: driver.StatusQueued}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.stage, row.status = ev.Stage, ev.Status
	if row.finished() {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		switch {
		case r.finished():
			sum++
		case r.status == driver.StatusWorking:
			sum += stages[r.stage].weight
		}
	}
	return sum / float64(len(m.rows))
}

// tally counts finished rows by outcome.
func (m *progressModel) tally() (done, cached, failed int) {
	for _, r := range m.rows {
		switch r.status {
		case driver.StatusDone:
			done++
		case driver.StatusCached:
			cached++
		case driver.StatusError:
			failed++
		}
	}
	return done, cached, failed
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	done, cached, failed := m.tally()
	header := fmt.Sprintf("%s %s", m.spinner.View(), m.title)
	if m.closed {
		header = "finished " + m.title
	}
	counts := fmt.Sprintf("%d/%d", done+cached+failed, len(m.rows))
	if cached > 0 {
		counts += fmt.Sprintf(", %d cached", cached)
	}
	if failed > 0 {
		counts += fmt.Sprintf(", %d failed", failed)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(counts))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-16, 20)
	for _, r := range m.rows {
		fmt.Fprintf(&b, "  %s %s", r.style().Render(fmt.Sprintf("%*s", statusWidth, r.label())), truncate(r.path, nameWidth))
		if r.finished() && r.elapsed > 0 {
			b.WriteString(dimStyle.Render(" " + r.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate shortens value to width display cells, marking the cut with an
// ellipsis when there is room for one.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
