package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm displays a warning box and prompts the user to type answer to
// proceed. Returns true only if the typed line matches answer.
func (p *Printer) Confirm(in io.Reader, title string, warnings []string, answer string) bool {
	lines := []string{
		"",
		WarningTitleStyle.Render(fmt.Sprintf("   %s  CONFIRM  ─  %s", WarningMarker, title)),
		"",
	}
	for _, warning := range warnings {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+warning))
	}
	lines = append(lines, "")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(p.width-2).
		Padding(0, DefaultPadding).
		Render(strings.Join(lines, "\n"))

	p.Println(box)
	_, _ = fmt.Fprint(p.out, WarningTitleStyle.Render(fmt.Sprintf("Type %q and press Enter: ", answer)))

	input, err := bufio.NewReader(in).ReadString('\n')
	p.Newline()
	if err != nil && input == "" {
		return false
	}

	if strings.TrimSpace(input) == answer {
		return true
	}

	p.Println(lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	return false
}
