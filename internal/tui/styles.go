package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/vncview/internal/ui"
	"github.com/muurk/vncview/internal/version"
	"github.com/muurk/vncview/internal/viewer"
)

// Application branding constants
const (
	AppName   = "VNCVIEW"
	GitHubURL = "github.com/muurk/vncview"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth  = 72
	MinTerminalHeight = 16
)

// Neutral colors not shared with the one-shot CLI output
var (
	BorderColor     = ui.PrimaryColor
	HighlightColor  = ui.SuccessColor
	BackgroundColor = lipgloss.Color("#1A1A1A")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Width(12)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	// InputBoxStyle frames the endpoint field
	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// InvalidInputBoxStyle frames the endpoint field while it fails validation
	InvalidInputBoxStyle = InputBoxStyle.
				BorderForeground(ui.ErrorColor)

	ValidationStyle = lipgloss.NewStyle().
			Foreground(ui.ErrorColor).
			PaddingLeft(1)

	StatsStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor)
)

// phaseColor maps a connection phase to its badge color
func phaseColor(p viewer.Phase) lipgloss.Color {
	switch p {
	case viewer.Connected:
		return ui.SuccessColor
	case viewer.Connecting, viewer.Disconnecting:
		return ui.WarningColor
	case viewer.Failed:
		return ui.ErrorColor
	default:
		return ui.MutedColor
	}
}

// RenderPhaseBadge renders the phase as a colored label
func RenderPhaseBadge(p viewer.Phase) string {
	return lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(phaseColor(p)).
		Bold(true).
		Padding(0, 1).
		Render(p.String())
}

// signalLook returns the marker and color for a notification kind
func signalLook(k viewer.SignalKind) (string, lipgloss.Color) {
	switch k {
	case viewer.SignalSuccess:
		return ui.SuccessMarker, ui.SuccessColor
	case viewer.SignalWarning:
		return ui.WarningMarker, ui.WarningColor
	case viewer.SignalError:
		return ui.FailureMarker, ui.ErrorColor
	default:
		return ui.InfoMarker, ui.TextColor
	}
}

// RenderNotice renders one notification line
func RenderNotice(s viewer.Signal) string {
	marker, color := signalLook(s.Kind)
	return lipgloss.NewStyle().Foreground(color).Render(marker + " " + s.Text)
}

// BuildHeaderContent creates header content with app name and project URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(ui.TextColor).
		Bold(true).
		Render(AppName + " " + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(ui.MutedColor).
		Render(GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps a screen with the application header, a
// context-sensitive footer and an outer border filling the terminal.
//
//	func (m Model) View() string {
//	    return RenderApplicationContainer(m.buildContent(), m.Help.View(m.Keys), m.Width, m.Height)
//	}
func RenderApplicationContainer(content, footerText string, width, height int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1).
		Render(BuildHeaderContent())

	footer := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1).
		Render(lipgloss.NewStyle().Foreground(ui.MutedColor).Render(footerText))

	body := lipgloss.NewStyle().
		Width(width-4).
		Padding(1, 2).
		Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(width - 2).
		Height(height - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, bordered)
}
