package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apiconnect "github.com/osa030/bandplayer/internal/api/connect"
)

// Colors
var (
	blood = lipgloss.Color("#B91C1C")
	bone  = lipgloss.Color("#E7E5E4")
	mist  = lipgloss.Color("#A8A29E")
	ash   = lipgloss.Color("#44403C")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(bone)
	mutedStyle   = lipgloss.NewStyle().Foreground(mist)
	accentStyle  = lipgloss.NewStyle().Foreground(blood)
	filledStyle  = lipgloss.NewStyle().Foreground(blood)
	emptyStyle   = lipgloss.NewStyle().Foreground(ash)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(blood)
	numberStyle  = lipgloss.NewStyle().Foreground(mist).Width(4)
	durationText = lipgloss.NewStyle().Foreground(mist).Width(6).Align(lipgloss.Right)
)

// progressBar renders fraction (0..1) as a bar of the given width.
func progressBar(fraction float64, width int) string {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// statusIcon returns the play/pause indicator.
func statusIcon(playing bool) string {
	if playing {
		return accentStyle.Render("▶")
	}
	return mutedStyle.Render("⏸")
}

// renderState renders the now-playing block: title line, then
// "elapsed [bar] duration", then volume.
func renderState(v *apiconnect.StateView, width int) string {
	if v.Track == nil {
		return mutedStyle.Render("Player closed")
	}

	title := fmt.Sprintf("%s %s %s",
		statusIcon(v.Playing),
		mutedStyle.Render(fmt.Sprintf("%02d", v.Track.Number)),
		titleStyle.Render(v.Track.Title))
	progress := progressLine(v, width)
	volume := mutedStyle.Render(fmt.Sprintf("vol %d%%", int(math.Round(v.Volume*100))))

	return lipgloss.JoinVertical(lipgloss.Left, title, progress, volume)
}

// progressLine renders "elapsed [bar] duration" in the given width.
func progressLine(v *apiconnect.StateView, width int) string {
	barWidth := width - 12 // Account for times on either side
	if barWidth < 10 {
		barWidth = 10
	}
	return fmt.Sprintf("%s %s %s", v.Elapsed, progressBar(v.Progress, barWidth), v.Duration)
}

// renderCatalog renders the track list with its summary header.
func renderCatalog(c *apiconnect.CatalogView) string {
	lines := []string{
		headerStyle.Render(c.Album) + " " + mutedStyle.Render(c.Artist),
		mutedStyle.Render(c.Summary),
		"",
	}
	for _, t := range c.Tracks {
		lines = append(lines,
			numberStyle.Render(fmt.Sprintf("%02d", t.Number))+
				titleStyle.Width(32).Render(t.Title)+
				durationText.Render(t.Duration)+
				mutedStyle.Render("  ["+t.ID+"]"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
