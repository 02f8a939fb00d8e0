package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/magicollection/magi/internal/minter"
)

// DashboardController is the part of minter.Controller the dashboard drives.
type DashboardController interface {
	Init(ctx context.Context) minter.Snapshot
	RequestConnection(ctx context.Context) minter.Session
	Mint(ctx context.Context) (*types.Receipt, error)
	Disconnect()
	Snapshot() minter.Snapshot
}

// DashboardInfo holds the static copy and links shown on the dashboard.
type DashboardInfo struct {
	Title         string
	Tagline       string
	CollectionURL string
	TwitterHandle string
	TwitterURL    string
	Network       string
}

// StateMsg signals a state change. Observers may deliver snapshots out of
// order, so the model re-reads the controller instead of trusting the
// payload.
type StateMsg minter.Snapshot

// NoticeMsg raises a blocking notice; it stays until dismissed.
type NoticeMsg string

type (
	initDoneMsg    minter.Snapshot
	connectDoneMsg minter.Session
	mintDoneMsg    struct{ err error }
	disconnectMsg  struct{}
	spinTickMsg    struct{}
)

// DashboardModel is the Bubble Tea model of the minting page.
type DashboardModel struct {
	ctx  context.Context
	ctl  DashboardController
	info DashboardInfo

	snap     minter.Snapshot
	ready    bool
	notices  []string
	flash    string
	frame    int
	quitting bool
}

// NewDashboardModel returns the model. ctx bounds every controller call.
func NewDashboardModel(ctx context.Context, ctl DashboardController, info DashboardInfo, initial minter.Snapshot) DashboardModel {
	return DashboardModel{ctx: ctx, ctl: ctl, info: info, snap: initial}
}

// Snapshot returns the state the model last rendered.
func (m DashboardModel) Snapshot() minter.Snapshot { return m.snap }

// Notice returns the notice on top, if any.
func (m DashboardModel) Notice() string {
	if len(m.notices) == 0 {
		return ""
	}
	return m.notices[0]
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.initCmd(), spinTick())
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m.snap = m.ctl.Snapshot()

	case initDoneMsg:
		m.snap = minter.Snapshot(msg)
		m.ready = true

	case connectDoneMsg:
		m.snap = m.ctl.Snapshot()
		if !minter.Session(msg).Connected() {
			m.flash = "Not connected"
		}

	case mintDoneMsg:
		m.snap = m.ctl.Snapshot()
		switch {
		case msg.err == nil:
			m.flash = "Mined!"
		case errors.Is(msg.err, minter.ErrMintInFlight):
			m.flash = "A mint is already in flight"
		default:
			// Failures are logged by the controller; the page only resets.
			m.flash = "Mint did not complete"
		}

	case disconnectMsg:
		m.snap = m.ctl.Snapshot()
		m.flash = "Disconnected"

	case NoticeMsg:
		m.notices = append(m.notices, string(msg))

	case spinTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, spinTick()
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if len(m.notices) > 0 {
		switch key {
		case "enter", "esc", " ":
			m.notices = m.notices[1:]
		case "o":
			if url := noticeLink(m.notices[0]); url != "" {
				m.flash = m.open(url)
			}
		}
		return m, nil
	}

	m.flash = ""
	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "c":
		if !m.snap.Connected() {
			return m, m.connectCmd()
		}
	case "m":
		if !m.snap.Connected() {
			return m, nil
		}
		if m.snap.IsMining {
			m.flash = "A mint is already in flight"
			return m, nil
		}
		// Show the spinner at once; the controller confirms through StateMsg.
		m.snap.IsMining = true
		return m, m.mintCmd()
	case "d":
		// A pending mint still needs the session to finish.
		if m.snap.Connected() && !m.snap.IsMining {
			return m, m.disconnectCmd()
		}
	case "o":
		m.flash = m.open(m.info.CollectionURL)
	case "t":
		m.flash = m.open(m.info.TwitterURL)
	}
	return m, nil
}

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(Banner(m.info.Title, m.info.Tagline) + "\n")

	if m.snap.NetworkWarning {
		sb.WriteString(StyleError.Render(minter.NetworkWarningText) + "\n\n")
	}

	switch {
	case !m.ready:
		sb.WriteString(StyleMeta.Render(spinnerFrames[m.frame]+" loading…") + "\n")
	case !m.snap.Connected():
		sb.WriteString(StyleButton.Render("Connect to Wallet") + StyleMeta.Render("  press c") + "\n")
	case m.snap.IsMining:
		sb.WriteString(StyleButton.Render(spinnerFrames[m.frame]+" Mining…") + "\n")
	default:
		sb.WriteString(StyleButton.Render("Mint Magi Title") + StyleMeta.Render("  press m") + "\n")
	}
	if m.snap.Connected() {
		sb.WriteString(StyleMeta.Render("connected as ") + Addr(m.snap.Account) + "\n")
	}

	sb.WriteString("\n" + Val(minter.CounterText(m.snap.Minted, m.snap.Capacity)) + "\n")
	sb.WriteString(minter.CollectionLinkText + " " + Link(m.info.CollectionURL) + "\n")

	if len(m.notices) > 0 {
		body := m.notices[0] + "\n\n" + StyleMeta.Render("enter to dismiss · o to open link")
		sb.WriteString("\n" + StyleNotice.Render(body) + "\n")
	}

	sb.WriteString("\n" + StyleMeta.Render("built by ") + Link("@"+m.info.TwitterHandle))
	if m.info.Network != "" {
		sb.WriteString(StyleMeta.Render("  ·  " + m.info.Network))
	}
	sb.WriteString("\n\n")

	if m.flash != "" {
		sb.WriteString(StyleWarning.Render("  "+m.flash) + "\n")
	}
	sb.WriteString(dashboardControls(m.snap))
	sb.WriteString("\n")
	return sb.String()
}

func (m DashboardModel) initCmd() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		return initDoneMsg(ctl.Init(ctx))
	}
}

func (m DashboardModel) connectCmd() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		return connectDoneMsg(ctl.RequestConnection(ctx))
	}
}

func (m DashboardModel) mintCmd() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		_, err := ctl.Mint(ctx)
		return mintDoneMsg{err: err}
	}
}

func (m DashboardModel) disconnectCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctl.Disconnect()
		return disconnectMsg{}
	}
}

func (m DashboardModel) open(url string) string {
	if url == "" {
		return "No link available"
	}
	if err := openURL(url); err != nil {
		if copyText(url) == nil {
			return "Copied link to clipboard"
		}
		return url
	}
	return "Opening in browser…"
}

func dashboardControls(s minter.Snapshot) string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	if s.Connected() {
		sb.WriteString(StyleWarning.Render("[ m ]") + StyleMeta.Render(" mint"))
		sb.WriteString(sep)
		sb.WriteString(StyleInfo.Render("[ d ]") + StyleMeta.Render(" disconnect"))
	} else {
		sb.WriteString(StyleWarning.Render("[ c ]") + StyleMeta.Render(" connect"))
	}
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ o ]") + StyleMeta.Render(" collection"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ t ]") + StyleMeta.Render(" twitter"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ] quit"))
	return sb.String()
}

// noticeLink returns the last URL in a notice.
func noticeLink(notice string) string {
	i := strings.LastIndex(notice, "https://")
	if i < 0 {
		return ""
	}
	return strings.Fields(notice[i:])[0]
}

func spinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinTickMsg{}
	})
}

// ProgramNotifier forwards controller notices and state changes to a
// running Bubble Tea program. Messages sent before Attach are queued.
type ProgramNotifier struct {
	mu      sync.Mutex
	p       *tea.Program
	pending []tea.Msg
}

// Attach starts forwarding to p and flushes queued messages.
func (n *ProgramNotifier) Attach(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()

	go func() {
		for _, msg := range pending {
			p.Send(msg)
		}
	}()
}

// Notify implements minter.Notifier.
func (n *ProgramNotifier) Notify(msg string) {
	n.send(NoticeMsg(msg))
}

// Observe is a minter.State observer.
func (n *ProgramNotifier) Observe(s minter.Snapshot) {
	n.send(StateMsg(s))
}

func (n *ProgramNotifier) send(msg tea.Msg) {
	n.mu.Lock()
	p := n.p
	if p == nil {
		n.pending = append(n.pending, msg)
	}
	n.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// RunDashboard runs the dashboard in the alternate screen until the user
// quits.
func RunDashboard(model DashboardModel, notifier *ProgramNotifier) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	notifier.Attach(p)
	_, err := p.Run()
	return err
}
