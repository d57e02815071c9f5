package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sayantanroy47/tasky-timeline/internal/timeline"
	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// pxPerCell maps timeline pixels onto terminal columns.
const pxPerCell = 8.0

// labelColWidth is the fixed item title gutter on the left of the chart.
const labelColWidth = 24

// animInterval drives jump animations and coalesced cache timers.
const animInterval = 50 * time.Millisecond

// Style definitions.
var (
	chartTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerTierStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	gutterStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gutterProjectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	weekendStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	milestoneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	milestoneDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	connectorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	criticalStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	previewStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
	selectedRowStyle   = lipgloss.NewStyle().Reverse(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	chartHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	barStatusStyles = map[models.ItemStatus]lipgloss.Style{
		models.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		models.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		models.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		models.StatusCancelled:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

// viewShared holds the state the scroll-region callbacks write into. It is
// a pointer so bubbletea's value-copied model and the region closures see
// the same data.
type viewShared struct {
	headerX    float64
	scrollbarX float64
	dragX      float64
}

type refreshMsg struct{}

type dataChangedMsg struct{}

type animTickMsg time.Time

type ganttModel struct {
	eng        *timeline.Engine
	projectIDs []string

	shared       *viewShared
	headerRegion *timeline.ScrollRegion
	bodyRegion   *timeline.ScrollRegion
	scrollRegion *timeline.ScrollRegion

	width    int
	height   int
	selected int
	status   string
	err      error
}

func newGanttModel(eng *timeline.Engine, projectIDs []string) ganttModel {
	shared := &viewShared{}
	sync := timeline.NewScrollSync()
	vp := eng.Viewport()

	m := ganttModel{
		eng:        eng,
		projectIDs: projectIDs,
		shared:     shared,
	}
	// Three lock-step regions: the header tier, the chart body (which owns
	// the viewport's real offset), and the scrollbar proxy rendered at the
	// bottom. The shared reentrancy flag inside ScrollSync keeps the pair
	// of listeners from feeding back into each other.
	m.headerRegion = sync.Register("header", func(x float64) { shared.headerX = x })
	m.bodyRegion = sync.Register("body", func(x float64) { vp.SetScrollX(x) })
	m.scrollRegion = sync.Register("scrollbar", func(x float64) { shared.scrollbarX = x })
	return m
}

func (m ganttModel) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

// chartCells returns the chart area width in cells and the body height in
// rows, after subtracting gutter and chrome.
func (m ganttModel) chartCells() (int, int) {
	chartW := m.width - labelColWidth - 1
	if chartW < 10 {
		chartW = 10
	}
	// Title, two header tiers, milestone ruler, status, help.
	bodyH := m.height - 6
	if bodyH < 1 {
		bodyH = 1
	}
	return chartW, bodyH
}

// viewPixels converts the chart cell area into engine pixel dimensions.
func (m ganttModel) viewPixels() (float64, float64) {
	chartW, bodyH := m.chartCells()
	rowH := m.eng.Settings().TaskRowHeight
	return float64(chartW) * pxPerCell, float64(bodyH) * rowH
}

func (m ganttModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg, dataChangedMsg:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.eng.Refresh(ctx, m.projectIDs); err != nil {
			m.err = err
		} else {
			m.err = nil
			m.status = fmt.Sprintf("loaded %d rows", len(m.eng.Rows()))
		}
		return m, nil

	case animTickMsg:
		if m.eng.Viewport().Animating() {
			return m, m.animTick()
		}
		// Animation done: align the passive regions with the final offset.
		m.bodyRegion.SetOffset(m.eng.Viewport().ScrollX())
		return m, nil
	}

	return m, nil
}

func (m ganttModel) animTick() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg { return animTickMsg(t) })
}

func (m ganttModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := m.eng.Viewport()
	drag := m.eng.Drag()
	viewW, viewH := m.viewPixels()
	dragging := drag.State() != timeline.DragIdle

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if !dragging {
			return m, tea.Quit
		}

	case "esc":
		if dragging {
			drag.Cancel()
			m.status = "drag cancelled"
			return m, nil
		}
		return m, tea.Quit

	case "left", "h":
		if dragging {
			m.shared.dragX -= vp.PixelsPerUnit()
			drag.Move(m.shared.dragX)
			return m, nil
		}
		m.bodyRegion.SetOffset(vp.ScrollX() - 4*pxPerCell)
		return m, nil

	case "right", "l":
		if dragging {
			m.shared.dragX += vp.PixelsPerUnit()
			drag.Move(m.shared.dragX)
			return m, nil
		}
		m.bodyRegion.SetOffset(vp.ScrollX() + 4*pxPerCell)
		return m, nil

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		m.ensureSelectedVisible(viewH)
		return m, nil

	case "down", "j":
		if m.selected < len(m.eng.Rows())-1 {
			m.selected++
		}
		m.ensureSelectedVisible(viewH)
		return m, nil

	case " ":
		if dragging {
			return m, nil
		}
		if item, ok := m.eng.ItemAtRow(m.selected); ok {
			m.shared.dragX = 0
			if err := drag.Press(item, timeline.DragMove, 0); err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("moving %s (enter: drop, esc: cancel)", item.Title)
			}
		}
		return m, nil

	case "[":
		return m.grabEdge(timeline.DragResizeStart), nil

	case "]":
		return m.grabEdge(timeline.DragResizeEnd), nil

	case "enter":
		if dragging {
			if err := m.eng.DropDrag(); err != nil {
				m.status = err.Error()
			} else {
				m.status = "dropped"
			}
			return m, nil
		}
		if item, ok := m.eng.ItemAtRow(m.selected); ok {
			m.eng.SelectItem(item.ID)
			m.status = fmt.Sprintf("%s  %s → %s  %d%%", item.Title,
				item.Start.Format("2006-01-02"), item.End.Format("2006-01-02"),
				int(item.Progress*100))
		}
		return m, nil

	case "z":
		next := nextZoom(m.eng.Settings().ZoomLevel)
		if err := m.eng.SetZoom(next); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("zoom: %s", next)
			m.bodyRegion.SetOffset(0)
		}
		return m, nil

	case "+", "=":
		return m.scalePixels(1.25), nil

	case "-":
		return m.scalePixels(0.8), nil

	case "t":
		m.eng.JumpToDate(time.Now(), viewW)
		m.status = "jumping to today"
		return m, m.animTick()

	case "w":
		return m.toggle("weekends", func(p *timeline.SettingsPatch, v bool) { p.ShowWeekends = &v },
			m.eng.Settings().ShowWeekends), nil

	case "d":
		return m.toggle("dependencies", func(p *timeline.SettingsPatch, v bool) { p.ShowDependencies = &v },
			m.eng.Settings().ShowDependencies), nil

	case "c":
		return m.toggle("critical path", func(p *timeline.SettingsPatch, v bool) { p.ShowCriticalPath = &v },
			m.eng.Settings().ShowCriticalPath), nil

	case "r":
		return m, func() tea.Msg { return refreshMsg{} }
	}

	return m, nil
}

func (m ganttModel) grabEdge(mode timeline.DragMode) ganttModel {
	if m.eng.Drag().State() != timeline.DragIdle {
		return m
	}
	item, ok := m.eng.ItemAtRow(m.selected)
	if !ok {
		return m
	}
	m.shared.dragX = 0
	if err := m.eng.Drag().Press(item, mode, 0); err != nil {
		m.status = err.Error()
		return m
	}
	edge := "end"
	if mode == timeline.DragResizeStart {
		edge = "start"
	}
	m.status = fmt.Sprintf("resizing %s of %s", edge, item.Title)
	return m
}

func (m ganttModel) scalePixels(factor float64) ganttModel {
	ppu := m.eng.Settings().PixelsPerUnit * factor
	patch := timeline.SettingsPatch{PixelsPerUnit: &ppu}
	if err := m.eng.UpdateSettings(patch); err != nil {
		m.status = err.Error()
	} else {
		m.status = fmt.Sprintf("column width: %.0fpx", ppu)
	}
	return m
}

func (m ganttModel) toggle(name string, set func(*timeline.SettingsPatch, bool), current bool) ganttModel {
	patch := timeline.SettingsPatch{}
	set(&patch, !current)
	if err := m.eng.UpdateSettings(patch); err != nil {
		m.status = err.Error()
		return m
	}
	state := "off"
	if !current {
		state = "on"
	}
	m.status = fmt.Sprintf("%s %s", name, state)
	return m
}

// ensureSelectedVisible nudges the vertical scroll so the selection stays
// inside the body window. Vertical scroll is deliberately not part of the
// scroll sync: the header never moves with it.
func (m ganttModel) ensureSelectedVisible(viewH float64) {
	vp := m.eng.Viewport()
	rowH := m.eng.Settings().TaskRowHeight
	top := vp.ScrollY()
	selTop := float64(m.selected) * rowH
	if selTop < top {
		vp.SetScrollY(selTop)
	} else if selTop+rowH > top+viewH {
		vp.SetScrollY(selTop + rowH - viewH)
	}
}

func nextZoom(z models.ZoomLevel) models.ZoomLevel {
	switch z {
	case models.ZoomHours:
		return models.ZoomDays
	case models.ZoomDays:
		return models.ZoomWeeks
	case models.ZoomWeeks:
		return models.ZoomMonths
	default:
		return models.ZoomHours
	}
}

func (m ganttModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	chartW, bodyH := m.chartCells()
	viewW, viewH := m.viewPixels()
	frame := m.eng.Frame(viewW, viewH)

	// Keep the passive regions aligned with the body offset; during a jump
	// animation the body offset moves on its own each frame.
	if m.shared.headerX != frame.ScrollX {
		m.bodyRegion.SetOffset(frame.ScrollX)
	}

	title := chartTitleStyle.Render(" Tasky Timeline ")
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	b.WriteString(m.renderTier(frame.Grid.Primary, chartW))
	b.WriteString("\n")
	b.WriteString(m.renderTier(frame.Grid.Secondary, chartW))
	b.WriteString("\n")
	b.WriteString(m.renderRuler(frame, chartW))
	b.WriteString("\n")

	if frame.LoadErr != nil && frame.TotalRows == 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  failed to load timeline: %v", frame.LoadErr)))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("  press r to retry"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderBody(frame, chartW, bodyH))
	}

	status := m.status
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	} else {
		status = statusStyle.Render(status)
	}
	help := chartHelpStyle.Render(
		"←→ scroll | ↑↓ select | space move | [ ] resize | enter drop/select | z zoom | t today | w/d/c toggles | r refresh | q quit")

	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(help)
	return b.String()
}

// renderTier lays one header tier into a fixed-width cell row, offset by
// the synchronized header scroll position.
func (m ganttModel) renderTier(periods []timeline.Period, chartW int) string {
	cells := make([]rune, chartW)
	for i := range cells {
		cells[i] = ' '
	}
	vp := m.eng.Viewport()
	for _, p := range periods {
		startCell := int(math.Round((vp.DateToPixel(p.Start) - m.shared.headerX) / pxPerCell))
		widthCells := int(math.Round(p.Width / pxPerCell))
		if startCell >= chartW || startCell+widthCells <= 0 {
			continue
		}
		if startCell >= 0 && startCell < chartW {
			cells[startCell] = '|'
		}
		label := p.Label
		for j := 0; j < len(label) && j < widthCells-1; j++ {
			pos := startCell + 1 + j
			if pos >= 0 && pos < chartW {
				cells[pos] = rune(label[j])
			}
		}
	}
	return strings.Repeat(" ", labelColWidth) + "|" + headerTierStyle.Render(string(cells))
}

// renderRuler draws the milestone and weekend band line under the headers.
func (m ganttModel) renderRuler(frame timeline.Frame, chartW int) string {
	cells := make([]string, chartW)
	for i := range cells {
		cells[i] = "─"
	}
	for _, band := range frame.Grid.Weekends {
		start := int(math.Round((band.X - frame.ScrollX) / pxPerCell))
		width := int(math.Round(band.Width / pxPerCell))
		for j := start; j < start+width; j++ {
			if j >= 0 && j < chartW {
				cells[j] = weekendStyle.Render("░")
			}
		}
	}
	for _, pin := range frame.Milestones {
		pos := int(math.Round((pin.X - frame.ScrollX) / pxPerCell))
		if pos < 0 || pos >= chartW {
			continue
		}
		style := milestoneStyle
		if pin.Completed {
			style = milestoneDoneStyle
		}
		cells[pos] = style.Render("◆")
	}
	return strings.Repeat(" ", labelColWidth) + "|" + strings.Join(cells, "")
}

// renderBody draws the virtualized bar rows. Only rows inside the frame's
// visible range exist in frame.Bars; everything else was never built.
func (m ganttModel) renderBody(frame timeline.Frame, chartW, bodyH int) string {
	rowH := m.eng.Settings().TaskRowHeight
	topRow := int(frame.ScrollY / rowH)

	barsByRow := make(map[int]timeline.BarGeometry, len(frame.Bars))
	for _, bar := range frame.Bars {
		barsByRow[bar.Row] = bar
	}
	// Connector target anchors, marked on the target row.
	inbound := make(map[int][]timeline.Connector)
	for _, c := range frame.Connectors {
		if len(c.Points) == 0 {
			continue
		}
		last := c.Points[len(c.Points)-1]
		row := int(last.Y / rowH)
		inbound[row] = append(inbound[row], c)
	}

	var b strings.Builder
	for line := 0; line < bodyH; line++ {
		row := topRow + line
		if row >= frame.TotalRows {
			b.WriteString("\n")
			continue
		}
		bar, ok := barsByRow[row]
		if !ok {
			b.WriteString("\n")
			continue
		}
		if frame.DragPreview != nil && frame.DragPreview.Row == row {
			bar = *frame.DragPreview
		}
		b.WriteString(m.renderRow(frame, bar, inbound[row], chartW, row == m.selected))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ganttModel) renderRow(frame timeline.Frame, bar timeline.BarGeometry, inbound []timeline.Connector, chartW int, selected bool) string {
	indent := ""
	gutter := gutterProjectStyle
	if bar.Kind == models.KindTask {
		indent = "  "
		gutter = gutterStyle
	}
	label := indent + bar.Title
	if len(label) > labelColWidth-1 {
		label = label[:labelColWidth-1]
	}
	labelCell := fmt.Sprintf("%-*s", labelColWidth, label)
	if selected {
		labelCell = selectedRowStyle.Render(labelCell)
	} else {
		labelCell = gutter.Render(labelCell)
	}

	cells := make([]string, chartW)
	for i := range cells {
		cells[i] = " "
	}

	start := int(math.Round((bar.X - frame.ScrollX) / pxPerCell))
	width := int(math.Round(bar.Width / pxPerCell))
	if width < 1 {
		width = 1
	}

	style := barStatusStyles[bar.Status]
	if bar.Critical {
		style = criticalStyle
	}
	if frame.DragPreview != nil && frame.DragPreview.ItemID == bar.ItemID {
		style = previewStyle
	}

	fill := width
	if m.eng.Settings().ShowProgress {
		fill = int(math.Round(bar.Progress * float64(width)))
	}
	for j := 0; j < width; j++ {
		pos := start + j
		if pos < 0 || pos >= chartW {
			continue
		}
		glyph := "░"
		if j < fill || !m.eng.Settings().ShowProgress {
			glyph = "█"
		}
		cells[pos] = style.Render(glyph)
	}

	for _, c := range inbound {
		last := c.Points[len(c.Points)-1]
		pos := int(math.Round((last.X-frame.ScrollX)/pxPerCell)) - 1
		if pos >= 0 && pos < chartW {
			s := connectorStyle
			if c.Critical {
				s = criticalStyle
			}
			cells[pos] = s.Render("▸")
		}
	}

	return labelCell + "|" + strings.Join(cells, "")
}

var viewProjects []string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Interactive Gantt timeline TUI",
	Long: `Launch the interactive timeline: scroll and zoom the time axis,
select items, drag bars to reschedule, and watch dependency connectors
and milestones update live. Data file changes are picked up automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("timeline engine not initialized")
		}
		p := tea.NewProgram(newGanttModel(Engine, viewProjects), tea.WithAltScreen())

		// Push updates from the data source re-render in place rather than
		// resetting TUI state.
		cancel, err := DataSrc.Subscribe(func() { p.Send(dataChangedMsg{}) })
		if err != nil {
			return fmt.Errorf("watching data file: %w", err)
		}
		defer cancel()

		_, err = p.Run()
		return err
	},
}

func init() {
	viewCmd.Flags().StringSliceVar(&viewProjects, "projects", nil, "limit the timeline to these project IDs")
	rootCmd.AddCommand(viewCmd)
}
