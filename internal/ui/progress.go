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

	"stackc/internal/driver"
)

const (
	statusColumn = 10
	timeColumn   = 9
	minNameWidth = 20
)

// stageWeight is how far through a unit the bar counts a stage in progress.
var stageWeight = map[driver.Stage]float64{
	driver.StageLoad:     0.1,
	driver.StageAssemble: 0.4,
	driver.StageWrite:    0.9,
}

var stageVerb = map[driver.Stage]string{
	driver.StageLoad:     "loading",
	driver.StageAssemble: "assembling",
	driver.StageWrite:    "writing",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	statusStyles = map[driver.Status]lipgloss.Style{
		driver.StatusQueued:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		driver.StatusWorking: workingStyle,
		driver.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		driver.StatusCached:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		driver.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

type unitRow struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
	err     error
}

// label is what the status column shows: the verb of the running stage, or
// the status itself.
func (r *unitRow) label() string {
	if r.status == driver.StatusWorking {
		if verb, ok := stageVerb[r.stage]; ok {
			return verb
		}
	}
	return string(r.status)
}

func (r *unitRow) fraction() float64 {
	if r.status.Final() {
		return 1
	}
	return stageWeight[r.stage]
}

type (
	eventMsg  driver.Event
	closedMsg struct{}
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []unitRow
	byPath  map[string]*unitRow
	width   int
	closed  bool
}

// NewProgressModel renders one row per unit and an overall bar, fed by
// events. The program quits once events is closed.
func NewProgressModel(title string, units []string, events <-chan driver.Event) tea.Model {
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(workingStyle)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]unitRow, len(units)),
		byPath:  make(map[string]*unitRow, len(units)),
		width:   80,
	}
	for i, u := range units {
		m.rows[i] = unitRow{path: u, status: driver.StatusQueued}
		m.byPath[u] = &m.rows[i]
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for one driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.closed {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	row, ok := m.byPath[ev.Unit]
	if !ok {
		return nil
	}
	row.stage, row.status = ev.Stage, ev.Status
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	if ev.Err != nil {
		row.err = ev.Err
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for i := range m.rows {
		sum += m.rows[i].fraction()
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) summary() string {
	count := make(map[driver.Status]int, 3)
	for i := range m.rows {
		count[m.rows[i].status]++
	}
	return fmt.Sprintf("%d built, %d cached, %d failed",
		count[driver.StatusDone], count[driver.StatusCached], count[driver.StatusError])
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	if m.closed {
		b.WriteString(titleStyle.Render(fmt.Sprintf("done: %s (%s)", m.title, m.summary())))
	} else {
		b.WriteString(titleStyle.Render(m.spinner.View() + " " + m.title))
	}
	b.WriteString("\n\n")

	nameWidth := max(minNameWidth, m.width-statusColumn-timeColumn-6)
	for i := range m.rows {
		r := &m.rows[i]
		status := statusStyles[r.status].Render(fmt.Sprintf("%*s", statusColumn, r.label()))
		fmt.Fprintf(&b, "  %s %s", status, pad(truncate(r.path, nameWidth), nameWidth))
		if r.elapsed > 0 {
			fmt.Fprintf(&b, " %*s", timeColumn, r.elapsed.Round(time.Millisecond))
		}
		b.WriteByte('\n')
		if r.err != nil {
			msg := truncate(firstLine(r.err.Error()), m.width-statusColumn-4)
			fmt.Fprintf(&b, "  %*s %s\n", statusColumn, "", statusStyles[driver.StatusError].Render(msg))
		}
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

// truncate fits value into width cells, marking the cut with "..." when
// there is room for it.
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

func pad(value string, width int) string {
	return runewidth.FillRight(value, width)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
