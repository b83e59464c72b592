// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/unrealex/RS485-WTVB02/pkg/wtvb"
)

var (
	tuiLine     float64
	tuiInterval time.Duration
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live vibration dashboard",
	Long: `Full-screen dashboard showing the decoded vibration data block of every
configured sensor, refreshed as frames arrive.

With --line, the header turns red whenever any acceleration axis leaves the
symmetric threshold band, green while all axes stay inside it.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Float64Var(&tuiLine, "line", 0, "Acceleration threshold in g (0 disables the band check)")
	tuiCmd.Flags().DurationVar(&tuiInterval, "interval", 200*time.Millisecond, "Poll interval per address")
	rootCmd.AddCommand(tuiCmd)
}

// Messages
type snapshotMsg struct {
	addr   byte
	values map[string]float64
}
type statsTickMsg time.Time

// Styles
var (
	tuiTitleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tuiOKStyle    = tuiTitleStyle.Background(lipgloss.Color("28")).Foreground(lipgloss.Color("231"))
	tuiAlertStyle = tuiTitleStyle.Background(lipgloss.Color("160")).Foreground(lipgloss.Color("231"))
	tuiFootStyle  = lipgloss.NewStyle().Faint(true).Padding(0, 1)
)

// axisRows defines the dashboard row order and units.
var axisRows = []struct {
	key  string
	unit string
}{
	{wtvb.KeyAccX, "g"}, {wtvb.KeyAccY, "g"}, {wtvb.KeyAccZ, "g"},
	{wtvb.KeyAsX, "deg/s"}, {wtvb.KeyAsY, "deg/s"}, {wtvb.KeyAsZ, "deg/s"},
	{wtvb.KeyHX, ""}, {wtvb.KeyHY, ""}, {wtvb.KeyHZ, ""},
	{wtvb.KeyAngX, "deg"}, {wtvb.KeyAngY, "deg"}, {wtvb.KeyAngZ, "deg"},
}

type tuiModel struct {
	connInfo string
	line     float64
	table    table.Model
	stats    *wtvb.Statistics
	latest   map[byte]map[string]float64
	lastSeen map[byte]time.Time
	width    int
	quitting bool
}

func newTUIModel(connInfo string, line float64, stats *wtvb.Statistics) tuiModel {
	columns := []table.Column{
		{Title: "Addr", Width: 6},
		{Title: "Register", Width: 10},
		{Title: "Value", Width: 12},
		{Title: "Unit", Width: 7},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(len(axisRows)+2),
		table.WithFocused(true),
	)
	return tuiModel{
		connInfo: connInfo,
		line:     line,
		table:    t,
		stats:    stats,
		latest:   make(map[byte]map[string]float64),
		lastSeen: make(map[byte]time.Time),
	}
}

func (m tuiModel) Init() tea.Cmd {
	return statsTick()
}

func statsTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.latest[msg.addr] = msg.values
		m.lastSeen[msg.addr] = time.Now()
		m.table.SetRows(m.buildRows())
		return m, nil

	case statsTickMsg:
		return m, statsTick()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m tuiModel) buildRows() []table.Row {
	addrs := make([]byte, 0, len(m.latest))
	for a := range m.latest {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var rows []table.Row
	for _, a := range addrs {
		values := m.latest[a]
		for _, row := range axisRows {
			v, ok := values[row.key]
			if !ok {
				continue
			}
			rows = append(rows, table.Row{
				fmt.Sprintf("0x%02X", a),
				row.key,
				fmt.Sprintf("%+.3f", v),
				row.unit,
			})
		}
	}
	return rows
}

// exceeded reports whether any acceleration axis of any sensor is outside
// the threshold band.
func (m tuiModel) exceeded() bool {
	if m.line <= 0 {
		return false
	}
	for _, values := range m.latest {
		for _, key := range accelKeys {
			if v, ok := values[key]; ok && (v > m.line || v < -m.line) {
				return true
			}
		}
	}
	return false
}

func (m tuiModel) View() string {
	if m.quitting {
		return ""
	}

	title := fmt.Sprintf("WTVB02 monitor - %s", m.connInfo)
	style := tuiTitleStyle
	if m.line > 0 {
		if m.exceeded() {
			style = tuiAlertStyle
			title += fmt.Sprintf("  [over %.3fg band]", m.line)
		} else {
			style = tuiOKStyle
			title += fmt.Sprintf("  [within %.3fg band]", m.line)
		}
	}

	foot := tuiFootStyle.Render(m.stats.Summary() + "  |  q to quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		style.Render(title),
		m.table.View(),
		foot,
	)
}

func runTUI(cmd *cobra.Command, args []string) error {
	addrs, err := deviceAddresses()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var program *tea.Program
	dev := wtvb.NewDevice(conn, addrs,
		wtvb.WithPollInterval(tuiInterval),
		wtvb.WithSink(func(addr byte, values map[string]float64) {
			program.Send(snapshotMsg{addr: addr, values: values})
		}))

	program = tea.NewProgram(newTUIModel(connInfo, tuiLine, dev.Stats()), tea.WithAltScreen())

	go dev.Run(ctx)
	go dev.Poll(ctx)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
