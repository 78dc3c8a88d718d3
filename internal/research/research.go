// Package research finds spoken research requests such as
// "craig, google vector databases" in a merged transcript.
package research

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/segment"
)

// DefaultTriggers are the wake words that start a request.
var DefaultTriggers = []string{"craig", "quag", "crag", "graig"}

// DefaultVerbs are the commands accepted after a trigger.
var DefaultVerbs = []string{"google", "googl", "goodgle", "search", "research", "find", "lookup", "look up", "check"}

// Common mis-transcriptions of the trigger word.
var misheard = regexp.MustCompile(`(?i)\b(quag|crag|graig|craiq|creg)\b`)

// Request is one research request spoken during the meeting.
type Request struct {
	TS      string `json:"ts"`
	Speaker string `json:"speaker"`
	Query   string `json:"query"`
}

// Normalize rewrites misheard trigger words to "craig".
func Normalize(text string) string {
	return misheard.ReplaceAllString(text, "craig")
}

// Extractor matches research requests with a fixed trigger and verb set.
type Extractor struct {
	re *regexp.Regexp
}

// NewExtractor builds an Extractor. Empty lists fall back to the defaults.
func NewExtractor(triggers, verbs []string) *Extractor {
	if len(lo.Compact(triggers)) == 0 {
		triggers = DefaultTriggers
	}
	if len(lo.Compact(verbs)) == 0 {
		verbs = DefaultVerbs
	}
	quote := func(s string, _ int) string { return regexp.QuoteMeta(strings.TrimSpace(s)) }
	pattern := `(?i)\b(` + strings.Join(lo.Map(lo.Compact(triggers), quote), "|") + `)\b\s*[,:\-]?\s*(` +
		strings.Join(lo.Map(lo.Compact(verbs), quote), "|") + `)\s+(.+)$`
	return &Extractor{re: regexp.MustCompile(pattern)}
}

// Match returns the query in text, if text holds a request.
func (e *Extractor) Match(text string) (string, bool) {
	m := e.re.FindStringSubmatch(Normalize(text))
	if m == nil {
		return "", false
	}
	query := strings.TrimSpace(m[3])
	return query, query != ""
}

// Extract scans every merged segment in order.
func (e *Extractor) Extract(t *merge.Transcript) []Request {
	var out []Request
	for _, s := range t.Segments() {
		query, ok := e.Match(s.Text())
		if !ok {
			continue
		}
		out = append(out, Request{
			TS:      segment.FormatTimestamp(s.Start(), true),
			Speaker: s.Speaker(),
			Query:   query,
		})
	}
	return out
}
