// Package display renders transcripts, chunks and timelines for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/segment"
)

// Formatting constants for output
const (
	treeChar    = "⎿" // Connector for consecutive lines of one speaker
	iconSpeaker = "●"
	iconWarning = "⚠"
)

var (
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6c6c6c", Dark: "#8a8a8a"}
	warningColor = lipgloss.AdaptiveColor{Light: "#af5f00", Dark: "#ffaf00"}
	headerColor  = lipgloss.AdaptiveColor{Light: "#005f87", Dark: "#5fafff"}

	speakerPalette = []lipgloss.AdaptiveColor{
		{Light: "#5f00af", Dark: "#af87ff"},
		{Light: "#005f00", Dark: "#87d787"},
		{Light: "#875f00", Dark: "#ffd75f"},
		{Light: "#005f5f", Dark: "#5fd7d7"},
		{Light: "#870000", Dark: "#ff8787"},
		{Light: "#00005f", Dark: "#8787ff"},
	}

	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle = lipgloss.NewStyle().Foreground(headerColor).Bold(true)
)

// speakerStyles assigns each speaker a palette color in order of first appearance.
func speakerStyles(speakers []string) map[string]lipgloss.Style {
	styles := make(map[string]lipgloss.Style, len(speakers))
	for i, sp := range speakers {
		styles[sp] = lipgloss.NewStyle().Foreground(speakerPalette[i%len(speakerPalette)]).Bold(true)
	}
	return styles
}

// PrintTranscript writes the merged transcript, one line per segment.
// Consecutive segments of the same speaker are joined under a tree connector.
func PrintTranscript(w io.Writer, m *merge.Transcript) {
	styles := speakerStyles(m.Speakers())
	tree := mutedStyle.Render(treeChar)

	prev := ""
	for _, s := range m.Segments() {
		ts := mutedStyle.Render(segment.FormatTimestamp(s.Start(), true))
		if s.Speaker() == prev {
			fmt.Fprintf(w, "  %s  %s %s\n", tree, ts, s.Text())
			continue
		}
		style := styles[s.Speaker()]
		fmt.Fprintf(w, "%s %s %s\n", style.Render(iconSpeaker), style.Render(s.Speaker()), ts)
		fmt.Fprintf(w, "  %s  %s\n", tree, s.Text())
		prev = s.Speaker()
	}
}

// PrintWarnings writes the run warnings, if any.
func PrintWarnings(w io.Writer, warnings []run.Warning) {
	if len(warnings) == 0 {
		return
	}
	style := lipgloss.NewStyle().Foreground(warningColor)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Warnings (%d)", len(warnings))))
	for _, warn := range warnings {
		fmt.Fprintf(w, "%s %s\n", style.Render(iconWarning), warn.String())
	}
}

// Header renders a section title.
func Header(title string) string {
	return headerStyle.Render(title) + "\n" + mutedStyle.Render(strings.Repeat("─", lipgloss.Width(title)))
}
