package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/grovetools/meetinglogs/internal/run"
)

// DefaultMaxResults caps the hits kept per request.
const DefaultMaxResults = 5

// Hit is one search result.
type Hit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Result pairs a request with what the provider found for it.
type Result struct {
	TS      string `json:"ts"`
	Speaker string `json:"speaker"`
	Query   string `json:"query"`
	Results []Hit  `json:"results"`
}

// Provider looks up a research query.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]Hit, error)
}

// CommandProvider runs an external search command as "<command...> <query>".
// The command prints either a JSON array of hits or an object with a
// "results" array. A "content" field is accepted in place of "snippet".
type CommandProvider struct {
	Command string
}

type commandHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content"`
}

// Search implements Provider.
func (c CommandProvider) Search(ctx context.Context, query string, maxResults int) ([]Hit, error) {
	parts := strings.Fields(c.Command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid research command")
	}

	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], query)...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("research command failed: %v, stderr: %s", err, strings.TrimSpace(errOut.String()))
	}

	var raw []commandHit
	if err := json.Unmarshal(out.Bytes(), &raw); err != nil {
		var wrapped struct {
			Results []commandHit `json:"results"`
		}
		if err := json.Unmarshal(out.Bytes(), &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse research output for %q: %w", query, err)
		}
		raw = wrapped.Results
	}

	hits := make([]Hit, 0, len(raw))
	for _, h := range raw {
		if maxResults > 0 && len(hits) == maxResults {
			break
		}
		snippet := h.Snippet
		if snippet == "" {
			snippet = h.Content
		}
		hits = append(hits, Hit{
			Title:   strings.TrimSpace(h.Title),
			URL:     strings.TrimSpace(h.URL),
			Snippet: strings.TrimSpace(snippet),
		})
	}
	return hits, nil
}

// Run looks up each request in order. A failed lookup is recorded as a
// warning on rc and leaves the request out of the results.
func Run(ctx context.Context, rc *run.Context, p Provider, requests []Request, maxResults int) []Result {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	out := []Result{}
	for _, r := range requests {
		if ctx.Err() != nil {
			rc.Warn(run.Warning{Code: run.CodeResearch, Speaker: r.Speaker, Index: -1, Message: ctx.Err().Error()})
			break
		}
		hits, err := p.Search(ctx, r.Query, maxResults)
		if err != nil {
			rc.Warn(run.Warning{Code: run.CodeResearch, Speaker: r.Speaker, Index: -1, Message: err.Error()})
			continue
		}
		if len(hits) > maxResults {
			hits = hits[:maxResults]
		}
		if hits == nil {
			hits = []Hit{}
		}
		out = append(out, Result{TS: r.TS, Speaker: r.Speaker, Query: r.Query, Results: hits})
	}
	return out
}
