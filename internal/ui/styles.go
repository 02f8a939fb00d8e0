package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: success, confirmed
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: pending, warning
	ColorError     = lipgloss.Color("#FF4444") // red: error, wrong network
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, hashes, links
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold: counts, values
	ColorMeta      = lipgloss.Color("#6B6B6B") // dim gray: metadata
	ColorBorder    = lipgloss.Color("#3A1E5F") // deep violet: UI chrome
	ColorArcane    = lipgloss.Color("#9B5DE5") // purple: headings
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: selection, CTA
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleArcane  = lipgloss.NewStyle().Foreground(ColorArcane).Bold(true)
	StyleLink    = lipgloss.NewStyle().Foreground(ColorAddress).Underline(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleButton = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Padding(0, 2)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorArcane).
			Bold(true).
			MarginBottom(1)

	StyleNotice = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorHighlight).
			Padding(1, 2).
			Width(64)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the collection banner.
func Banner(title, tagline string) string {
	art := `
  ✦  ·  ✧  ·  ✦  ·  ✧  ·  ✦  ·  ✧  ·  ✦`
	return StyleArcane.Render(art) + "\n" +
		StyleHeader.Render("  "+title) + "\n" +
		StyleMeta.Render("  "+tagline) + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Link formats a URL.
func Link(url string) string { return StyleLink.Render(url) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// padR pads s with spaces to n visible cells.
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}
