package summarize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grovetools/meetinglogs/internal/research"
	"github.com/grovetools/meetinglogs/internal/segment"
)

const notesSystemPrompt = `You produce accurate meeting notes from transcripts.
Only use content that appears in the transcript.
Do not invent decisions or actions.
Return strict JSON only.`

const notesSchema = `{
  "title": string,
  "topics": [string],
  "summary": [string],
  "decisions": [string],
  "actions": [{"owner": string|null, "task": string, "due": string|null}],
  "highlights": [{"ts": string, "text": string}],
  "key_discussion": [string],
  "open_questions": [string]
}`

const notesRules = `Rules:
- If meeting title hint is blank, generate a short 3-7 word title based on the dominant theme.
- If title hint is provided, use it verbatim.
- Highlights must be 5-8 items, each with timestamp like mm:ss or hh:mm:ss and one sentence.
- Actions must only include tasks clearly stated in transcript.
- Decisions should be explicit.
- Keep summary and key discussion concise.`

const timelineSystemPrompt = `You generate timeline summaries for meeting transcripts.
Only use the provided text. Return strict JSON only.`

// NotesPrompt builds the meeting notes prompt. Chunks are added in order
// until maxChars is reached; the rest are replaced by a truncation marker.
// A non-positive maxChars disables truncation.
func NotesPrompt(req Request, maxChars int) string {
	attendees := "Unknown"
	if len(req.Attendees) > 0 {
		attendees = strings.Join(req.Attendees, ", ")
	}

	var b strings.Builder
	b.WriteString(notesSystemPrompt)
	b.WriteString("\n\nCreate structured meeting notes from this transcript.\n\n")
	fmt.Fprintf(&b, "Date: %s\n", req.Date)
	fmt.Fprintf(&b, "Attendees (from file names): %s\n", attendees)
	fmt.Fprintf(&b, "Meeting title hint (may be blank): %s\n\n", req.TitleHint)
	b.WriteString("JSON schema to output:\n")
	b.WriteString(notesSchema)
	b.WriteString("\n\n")
	b.WriteString(notesRules)
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcriptText(req, maxChars))
	return b.String()
}

func transcriptText(req Request, maxChars int) string {
	var b strings.Builder
	total := 0
	for i, ch := range req.Chunks {
		var part strings.Builder
		for _, r := range ch.Segments {
			ts := segment.FormatTimestamp(segment.Seconds(r.Start), true)
			fmt.Fprintf(&part, "[%s] %s: %s\n", ts, r.Speaker, research.Normalize(r.Text))
		}
		if maxChars > 0 && total+part.Len() > maxChars && i > 0 {
			fmt.Fprintf(&b, "[... %d later chunks truncated ...]\n", len(req.Chunks)-i)
			break
		}
		b.WriteString(part.String())
		total += part.Len()
	}
	return b.String()
}

type timelineWindow struct {
	Range string `json:"range"`
	Text  string `json:"text"`
}

// TimelinePrompt asks for a label and bullets per timeline window. Windows
// without speech are left out.
func TimelinePrompt(req Request) (string, bool) {
	var windows []timelineWindow
	for _, bk := range req.Timeline {
		if bk.SegmentCount == 0 {
			continue
		}
		windows = append(windows, timelineWindow{Range: bk.Range, Text: windowText(req, bk.Start, bk.End)})
	}
	if len(windows) == 0 {
		return "", false
	}

	payload, err := json.Marshal(windows)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	b.WriteString(timelineSystemPrompt)
	b.WriteString("\n\nSummarise each time window into a short chapter label and 3-6 bullets.\n\n")
	b.WriteString("Return JSON:\n{\n  \"timeline\": [\n    {\"range\": string, \"label\": string, \"bullets\": [string]}\n  ]\n}\n\n")
	b.WriteString("Rules:\n- Keep labels short and descriptive.\n- Bullets must be grounded in the text.\n\n")
	b.WriteString("Windows:\n")
	b.Write(payload)
	return b.String(), true
}

// windowText collects "speaker: text" lines of the chunk segments that
// overlap [from, to).
func windowText(req Request, from, to float64) string {
	var lines []string
	for _, ch := range req.Chunks {
		for _, r := range ch.Segments {
			s, err := segment.FromRecord(r)
			if err != nil || !s.Overlaps(segment.Seconds(from), segment.Seconds(to)) {
				continue
			}
			lines = append(lines, r.Speaker+": "+strings.TrimSpace(r.Text))
		}
	}
	return strings.Join(lines, "\n")
}
