package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// CapacityBar renders how full the account store is, e.g. "3/100".
// On a styled terminal the count follows a gradient bar.
func (u *UI) CapacityBar(used, total int) string {
	count := fmt.Sprintf("%d/%d", used, total)
	if !u.shouldStyle() || total <= 0 {
		return count
	}

	pct := float64(used) / float64(total)
	if pct > 1 {
		pct = 1
	}

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(20),
		progress.WithoutPercentage(),
	)
	countStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	return bar.ViewAs(pct) + " " + countStyle.Render(count)
}
