package notes

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grovetools/meetinglogs/internal/assemble"
)

// Markdown renders the notes as a markdown page followed by the transcript.
// Empty sections show "None".
func Markdown(doc *Document) string {
	n := doc.Notes
	var lines []string
	add := func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }

	add("# %s", n.Title)
	add("")
	add("Date: %s", n.Date)
	if len(n.Attendees) > 0 {
		add("Attendees: %s", strings.Join(n.Attendees, ", "))
	}
	if n.MeetingType != "" {
		add("Type: %s", n.MeetingType)
	}
	add("")

	section := func(title string, items []string) {
		add("## %s", title)
		if len(items) == 0 {
			add("- None")
		}
		for _, item := range items {
			add("- %s", item)
		}
		add("")
	}

	section("Summary", n.Summary)
	section("Decisions", n.Decisions)

	var actions []string
	for _, a := range n.Actions {
		owner := a.Owner
		if owner == "" {
			owner = "Unassigned"
		}
		item := owner + ": " + a.Task
		if a.Due != "" {
			item += " (due " + a.Due + ")"
		}
		actions = append(actions, item)
	}
	section("Action items", actions)

	var highlights []string
	for _, h := range n.Highlights {
		highlights = append(highlights, fmt.Sprintf("[%s] %s", h.TS, h.Text))
	}
	section("Top highlights", highlights)

	add("## Timeline summary")
	if len(n.Timeline) == 0 {
		add("- None")
		add("")
	}
	for _, e := range n.Timeline {
		add("**%s**", strings.Trim(e.Range+" - "+e.Label, " -"))
		for _, b := range e.Bullets {
			add("- %s", b)
		}
		add("")
	}

	var requests []string
	for _, r := range n.ResearchRequests {
		requests = append(requests, fmt.Sprintf("[%s] %s: %s", r.TS, r.Speaker, r.Query))
	}
	section("Research requests", requests)

	add("## Research results")
	if len(n.ResearchResults) == 0 {
		add("- None")
	}
	for _, r := range n.ResearchResults {
		add("**%s**", r.Query)
		if len(r.Results) == 0 {
			add("- No results")
		}
		for _, h := range r.Results {
			title := h.Title
			if title == "" {
				title = "Result"
			}
			add("- %s", strings.TrimSpace(title+" "+h.URL))
			if h.Snippet != "" {
				add("  %s", h.Snippet)
			}
		}
	}
	add("")

	add("## Transcript")
	add("")
	add("%s", doc.Transcript)
	add("")
	return strings.Join(lines, "\n")
}

// FileNames returns the notes JSON and markdown file names for a meeting date.
func FileNames(date string) (jsonName, mdName string) {
	return date + "_meeting_notes.json", date + "_meeting_notes.md"
}

// WriteFiles writes the notes JSON and markdown into dir and returns both paths.
func WriteFiles(dir string, doc *Document) (string, string, error) {
	jsonName, mdName := FileNames(doc.Notes.Date)
	jsonPath := filepath.Join(dir, jsonName)
	mdPath := filepath.Join(dir, mdName)

	if err := assemble.WriteJSON(jsonPath, doc.Notes); err != nil {
		return "", "", err
	}
	if err := assemble.WriteText(mdPath, Markdown(doc)); err != nil {
		return "", "", err
	}
	logger.WithField("path", mdPath).Info("Saved notes")
	return jsonPath, mdPath, nil
}
