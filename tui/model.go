package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-mackie/encoder"
	"go-mackie/midi"
	"go-mackie/surface"
	"go-mackie/theme"
	"go-mackie/widgets"
)

const columnWidth = widgets.RingLEDs + 1

// Model is a read-only monitor of the desk plus a few local toggles.
type Model struct {
	Manager  *surface.Manager
	Mirror   *midi.Mirror
	Theme    *theme.Theme
	ShowHelp bool
	quitting bool
}

type UpdateMsg struct{}

func NewModel(manager *surface.Manager, mirror *midi.Mirror, th *theme.Theme) Model {
	return Model{
		Manager: manager,
		Mirror:  mirror,
		Theme:   th,
	}
}

func ListenForUpdates(manager *surface.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "v":
			m.Manager.Do(m.Manager.ToggleValueMode)

		case "m":
			m.Manager.Do(m.Manager.ToggleMotors)

		case "?":
			m.ShowHelp = !m.ShowHelp

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(msg.String()[0] - '1')
			m.Manager.Do(func() { m.Manager.FocusIndex(idx) })
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	status := m.Manager.Status()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	focused := status.Focused
	if focused == "" {
		focused = "-"
	}
	header := headerStyle.Render(fmt.Sprintf("go-mackie  session:%s  [%d]  timers:%d",
		focused, len(status.Sessions), status.Timers))

	flags := strings.Join([]string{
		widgets.RenderLabeledLED(m.Theme, "VALUE", status.ValueMode),
		widgets.RenderLabeledLED(m.Theme, "MOTORS", status.Motors),
		widgets.RenderLabeledLED(m.Theme, "KNOB", status.KnobMode),
	}, "   ")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(flags)
	out.WriteString("\n")
	if len(status.Sessions) > 0 {
		out.WriteString(m.renderSessions(status))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	for _, u := range m.Mirror.Snapshot() {
		out.WriteString(m.renderUnit(&u))
		out.WriteString("\n\n")
	}

	if m.ShowHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
		out.WriteString("\n")
	} else {
		out.WriteString(dimStyle.Render("1-9:session  v:value mode  m:motors  ?:help  q:quit"))
	}

	return out.String()
}

var keyHelp = []widgets.KeySection{
	{
		Title: "Sessions",
		Keys: []widgets.KeyBinding{
			{Key: "1-9", Desc: "focus session by activation order"},
		},
	},
	{
		Title: "Desk",
		Keys: []widgets.KeyBinding{
			{Key: "v", Desc: "toggle strip value mode"},
			{Key: "m", Desc: "toggle fader motors"},
		},
	},
	{
		Keys: []widgets.KeyBinding{
			{Key: "?", Desc: "toggle this help"},
			{Key: "q", Desc: "quit"},
		},
	},
}

func (m Model) renderSessions(status surface.Status) string {
	parts := make([]string, len(status.Sessions))
	for i, id := range status.Sessions {
		label := fmt.Sprintf("%d:%s", i+1, id)
		style := lipgloss.NewStyle().Foreground(m.Theme.Muted())
		if id == status.Focused {
			style = lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)
		}
		parts[i] = style.Render(label)
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderUnit(u *midi.UnitState) string {
	title := lipgloss.NewStyle().Foreground(m.Theme.Accent()).
		Render(fmt.Sprintf("unit %d  %s  frames:%d", u.Index, u.Role, u.Frames))

	cols := make([]string, 0, midi.ChannelsPerUnit+1)
	for ch := 0; ch < midi.ChannelsPerUnit; ch++ {
		cols = append(cols, m.renderChannel(u, ch))
	}
	if u.Role == midi.Primary {
		cols = append(cols, m.renderMaster(u))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (m Model) renderChannel(u *midi.UnitState, ch int) string {
	pos, mode, center := u.RingPosition(ch)
	base := uint8(ch)

	leds := widgets.RenderLED(m.Theme, u.LEDs[midi.NoteRec+base]) + " " +
		widgets.RenderLED(m.Theme, u.LEDs[midi.NoteSolo+base]) + " " +
		widgets.RenderLED(m.Theme, u.LEDs[midi.NoteMute+base]) + " " +
		widgets.RenderLED(m.Theme, u.LEDs[midi.NoteSelect+base])

	lines := []string{
		widgets.RenderStripText(m.Theme, u.StripText(0, ch), columnWidth),
		widgets.RenderStripText(m.Theme, u.StripText(1, ch), columnWidth),
		widgets.RenderRing(m.Theme, pos, mode, center),
		widgets.RenderMeter(m.Theme, int(u.Meters[ch]), encoder.MaxLevel, columnWidth-1),
		widgets.RenderFader(m.Theme, u.Faders[ch], columnWidth-1),
		leds,
	}
	return lipgloss.NewStyle().PaddingRight(1).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMaster(u *midi.UnitState) string {
	transport := strings.Join([]string{
		widgets.RenderLabeledLED(m.Theme, "<<", u.LEDs[midi.NoteRewind]),
		widgets.RenderLabeledLED(m.Theme, ">>", u.LEDs[midi.NoteForward]),
		widgets.RenderLabeledLED(m.Theme, "STOP", u.LEDs[midi.NoteStop]),
		widgets.RenderLabeledLED(m.Theme, "PLAY", u.LEDs[midi.NotePlay]),
		widgets.RenderLabeledLED(m.Theme, "REC", u.LEDs[midi.NoteRecord]),
	}, " ")

	format := "SMPTE"
	if u.LEDs[midi.NoteLEDBeats] {
		format = "BEATS"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top,
			widgets.RenderSegments(m.Theme, "ASSIGN", u.SegmentText(10, 12)),
			" ",
			widgets.RenderSegments(m.Theme, format, u.SegmentText(0, 10)),
		),
		widgets.RenderFader(m.Theme, u.Faders[midi.MasterChannel], columnWidth-1),
		transport,
	)
}
