package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/foldergraph/pkg/cluster"
	"github.com/matzehuels/foldergraph/pkg/headless"
)

var (
	tuiDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	tuiAlertStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// =============================================================================
// Messages
// =============================================================================

// clusterRow is one line of the live cluster table.
type clusterRow struct {
	Group   string
	Members int
	CenterX float64
	CenterY float64
	Radius  float64
	Forced  int
}

// frameMsg carries the result of one rendered frame to the TUI.
type frameMsg struct {
	Info     headless.FrameInfo
	Clusters []clusterRow
}

// doneMsg tells the TUI that the frame loop has finished.
type doneMsg struct{}

// newFrameMsg snapshots the clusters so the TUI never touches live state.
func newFrameMsg(info headless.FrameInfo, clusters []*cluster.Cluster) frameMsg {
	rows := make([]clusterRow, len(clusters))
	for i, c := range clusters {
		center, radius := c.Circle()
		rows[i] = clusterRow{
			Group:   c.Group(),
			Members: len(c.Members()),
			CenterX: center.X,
			CenterY: center.Y,
			Radius:  radius,
			Forced:  c.ForcedCount(),
		}
	}
	return frameMsg{Info: info, Clusters: rows}
}

// =============================================================================
// FrameModel - Live cluster view
// =============================================================================

// FrameModel is the bubbletea model showing the clusters of a running view.
type FrameModel struct {
	Vault      string
	Frame      int
	Duration   time.Duration
	Clusters   []clusterRow
	Pushed     int
	Released   int
	Violations int
	Faults     int
	Done       bool
}

// NewFrameModel creates an empty model for vault.
func NewFrameModel(vault string) FrameModel {
	return FrameModel{Vault: vault}
}

func (m FrameModel) Init() tea.Cmd {
	return nil
}

func (m FrameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case frameMsg:
		m.Frame = msg.Info.Frame
		m.Duration = msg.Info.Duration
		m.Clusters = msg.Clusters
		m.Pushed += msg.Info.Stats.Pushed
		m.Released += msg.Info.Stats.Released
		m.Violations += msg.Info.Stats.Violations
		m.Faults += msg.Info.Stats.Faults
	case doneMsg:
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m FrameModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Folders in " + m.Vault))
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("frame %d  %s  q quit", m.Frame, m.Duration.Round(time.Microsecond))))
	b.WriteString("\n\n")

	if len(m.Clusters) == 0 {
		b.WriteString(tuiDimStyle.Render("  no folders with visible notes"))
		b.WriteString("\n")
	} else {
		rows := make([][]string, len(m.Clusters))
		for i, c := range m.Clusters {
			rows[i] = []string{
				c.Group,
				strconv.Itoa(c.Members),
				fmt.Sprintf("%.1f, %.1f", c.CenterX, c.CenterY),
				fmt.Sprintf("%.1f", c.Radius),
				strconv.Itoa(c.Forced),
			}
		}
		b.WriteString(renderTable([]string{"Folder", "Members", "Center", "Radius", "Pushing"}, rows))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("  %d pushes · %d releases", m.Pushed, m.Released)))
	if m.Violations > 0 || m.Faults > 0 {
		b.WriteString("  ")
		b.WriteString(tuiAlertStyle.Render(fmt.Sprintf("%d violations · %d faults", m.Violations, m.Faults)))
	}
	b.WriteString("\n")
	return b.String()
}
