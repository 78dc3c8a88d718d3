package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/meetinglogs/internal/logging"
)

// DefaultLLMCommand is used when no command is configured.
const DefaultLLMCommand = "llm -m gpt-4o-mini"

// Command summarizes by running an LLM command line with the prompt on stdin
// and reading JSON from stdout.
type Command struct {
	LLMCommand    string
	MaxInputChars int

	logger *logrus.Entry
}

// NewCommand returns a Command summarizer.
func NewCommand(llmCommand string, maxInputChars int) *Command {
	if strings.TrimSpace(llmCommand) == "" {
		llmCommand = DefaultLLMCommand
	}
	return &Command{
		LLMCommand:    llmCommand,
		MaxInputChars: maxInputChars,
		logger:        logging.NewLogger("summarizer"),
	}
}

// Summarize implements Summarizer. A failed timeline request is logged and
// leaves the timeline empty; a failed notes request fails the call.
func (c *Command) Summarize(ctx context.Context, req Request) (*Notes, error) {
	out, err := c.callLLM(ctx, NotesPrompt(req, c.MaxInputChars))
	if err != nil {
		return nil, fmt.Errorf("failed to generate notes: %w", err)
	}

	var notes Notes
	if err := decodeJSON(out, &notes); err != nil {
		return nil, fmt.Errorf("failed to parse notes: %w", err)
	}

	if prompt, ok := TimelinePrompt(req); ok {
		var tl struct {
			Timeline List[TimelineEntry] `json:"timeline"`
		}
		out, err := c.callLLM(ctx, prompt)
		if err == nil {
			err = decodeJSON(out, &tl)
		}
		if err != nil {
			c.logger.WithError(err).Warn("Failed to generate timeline summary")
		} else {
			notes.Timeline = tl.Timeline
		}
	}

	c.logger.WithFields(logrus.Fields{
		"title":     notes.Title,
		"decisions": len(notes.Decisions),
		"actions":   len(notes.Actions),
	}).Debug("Generated notes")
	return &notes, nil
}

// callLLM executes the LLM command with the given prompt.
func (c *Command) callLLM(ctx context.Context, prompt string) (string, error) {
	cmdParts := strings.Fields(c.LLMCommand)
	if len(cmdParts) == 0 {
		return "", fmt.Errorf("invalid LLM command")
	}

	cmd := exec.CommandContext(ctx, cmdParts[0], cmdParts[1:]...)
	cmd.Stdin = strings.NewReader(prompt)

	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("LLM command interrupted: %w", ctx.Err())
		}
		return "", fmt.Errorf("LLM command failed: %v, stderr: %s", err, strings.TrimSpace(errOut.String()))
	}

	return strings.TrimSpace(out.String()), nil
}

// decodeJSON parses the first JSON object in out, ignoring any prose or code
// fences around it.
func decodeJSON(out string, v any) error {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in LLM output")
	}
	return json.Unmarshal([]byte(out[start:end+1]), v)
}
