package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// MintRow is one NewEpicNFTMinted event in the live feed.
type MintRow struct {
	TokenID  string
	From     string
	TxHash   string
	Block    uint64
	AssetURL string
	TxURL    string
}

// MintFeedMsg adds a row to the feed.
type MintFeedMsg MintRow

// FeedStatusMsg updates the status bar.
type FeedStatusMsg struct {
	Minted   uint64
	Capacity uint64
	Mode     string // "push" or "poll"
	ErrMsg   string
}

// maxFeedRows caps the feed so a long session does not grow without bound.
const maxFeedRows = 200

// MintFeedModel is the Bubble Tea model for `magi watch`.
type MintFeedModel struct {
	Contract string
	Network  string
	Rows     []MintRow
	Status   FeedStatusMsg
	cursor   int
	frame    int
	quitting bool
	flash    string
}

func (m MintFeedModel) Init() tea.Cmd { return spinTick() }

func (m MintFeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.Rows)-1 {
				m.cursor++
			}
		case "o":
			if row, ok := m.selected(); ok {
				if err := openURL(row.AssetURL); err != nil {
					m.flash = "Could not open browser"
				} else {
					m.flash = "Opening in browser…"
				}
			}
		case "e":
			if row, ok := m.selected(); ok && row.TxURL != "" {
				if err := openURL(row.TxURL); err != nil {
					m.flash = "Could not open browser"
				} else {
					m.flash = "Opening explorer…"
				}
			}
		case "c":
			if row, ok := m.selected(); ok {
				if err := copyText(row.AssetURL); err != nil {
					m.flash = "Copy failed"
				} else {
					m.flash = "Copied: " + row.AssetURL
				}
			}
		}

	case spinTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, spinTick()

	case MintFeedMsg:
		// Newest first.
		m.Rows = append([]MintRow{MintRow(msg)}, m.Rows...)
		if len(m.Rows) > maxFeedRows {
			m.Rows = m.Rows[:maxFeedRows]
		}
		if m.cursor > 0 && m.cursor < len(m.Rows)-1 {
			m.cursor++
		}

	case FeedStatusMsg:
		m.Status = msg
	}
	return m, nil
}

func (m MintFeedModel) selected() (MintRow, bool) {
	if m.cursor >= len(m.Rows) {
		return MintRow{}, false
	}
	return m.Rows[m.cursor], true
}

func (m MintFeedModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	title := fmt.Sprintf("🧙 Live Mints  ·  %s  ·  %s", TruncateAddr(m.Contract), m.Network)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	spin := spinnerFrames[m.frame]
	switch {
	case m.Status.ErrMsg != "":
		sb.WriteString(StyleError.Render("✗ "+m.Status.ErrMsg) + "\n")
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d/%d minted", m.Status.Minted, m.Status.Capacity)) + "\n\n")
	case m.Status.Mode != "":
		line := fmt.Sprintf("%s listening (%s)  ·  %d/%d minted", spin, m.Status.Mode, m.Status.Minted, m.Status.Capacity)
		sb.WriteString(StyleInfo.Render(line) + "\n\n")
	default:
		sb.WriteString(StyleMeta.Render("  connecting…") + "\n\n")
	}

	const (
		wToken = 8
		wFrom  = 14
		wHash  = 14
		wBlk   = 10
	)
	sep := StyleMeta.Render(strings.Repeat("─", wToken+wFrom+wHash+wBlk+6))

	sb.WriteString(
		padR(StyleDim.Render("TOKEN"), wToken) + "  " +
			padR(StyleDim.Render("MINTER"), wFrom) + "  " +
			padR(StyleDim.Render("TX"), wHash) + "  " +
			StyleDim.Render("BLOCK") + "\n",
	)
	sb.WriteString(sep + "\n")

	if len(m.Rows) == 0 {
		sb.WriteString(StyleMeta.Render("  Waiting for mints…") + "\n")
	} else {
		for i, row := range m.Rows {
			line := padR(StyleValue.Render("#"+row.TokenID), wToken) + "  " +
				padR(StyleAddress.Render(TruncateAddr(row.From)), wFrom) + "  " +
				padR(StyleAddress.Render(TruncateAddr(row.TxHash)), wHash) + "  " +
				StyleMeta.Render(fmt.Sprintf("#%d", row.Block))
			if i == m.cursor {
				line = StyleSelected.Render(line)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString(sep + "\n")
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d mint(s) seen", len(m.Rows))) + "\n")
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(feedControls())
	}
	sb.WriteString("\n")
	return sb.String()
}

func feedControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ] navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ o ]") + StyleMeta.Render(" open asset"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ e ]") + StyleMeta.Render(" explorer"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]") + StyleMeta.Render(" copy link"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ] quit"))
	return sb.String()
}
