package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/grovetools/meetinglogs/internal/archive"
	"github.com/grovetools/meetinglogs/internal/chunk"
	"github.com/grovetools/meetinglogs/internal/segment"
	"github.com/grovetools/meetinglogs/internal/timeline"
)

// PrintChunksTable prints one row per chunk.
func PrintChunksTable(chunks []chunk.Chunk, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CHUNK\tRANGE\tSPAN\tSEGMENTS\tSPEAKERS")
	for _, c := range chunks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			c.Index, segment.FormatRange(c.Start, c.End), c.Span().String(), len(c.Segments), strings.Join(chunkSpeakers(c), ", "))
	}
	w.Flush()
}

// PrintTimelineTable prints one row per bucket. Buckets without speech show a dash.
func PrintTimelineTable(buckets []timeline.Bucket, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RANGE\tSPEAKERS\tSEGMENTS\tEXCERPT")
	for _, b := range buckets {
		speakers, excerpt := "-", "-"
		if !b.Empty() {
			speakers = strings.Join(b.ActiveSpeakers, ", ")
			excerpt = truncate(b.Excerpt, 60)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.Label(), speakers, b.SegmentCount, excerpt)
	}
	w.Flush()
}

// PrintMeetingsTable prints archived meetings.
func PrintMeetingsTable(meetings []archive.Meeting, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tDATE\tTITLE\tATTENDEES\tSEGMENTS")
	for _, m := range meetings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			m.ID, m.Date, m.Title, strings.ReplaceAll(m.Attendees, ",", ", "), m.SegmentCount)
	}
	w.Flush()
}

func chunkSpeakers(c chunk.Chunk) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c.Segments {
		if !seen[s.Speaker()] {
			seen[s.Speaker()] = true
			out = append(out, s.Speaker())
		}
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
