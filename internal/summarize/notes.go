package summarize

import "encoding/json"

// Action is a task stated in the meeting.
type Action struct {
	Owner string `json:"owner"`
	Task  string `json:"task"`
	Due   string `json:"due"`
}

// Highlight is a notable moment with its timestamp.
type Highlight struct {
	TS   string `json:"ts"`
	Text string `json:"text"`
}

// TimelineEntry labels one timeline window.
type TimelineEntry struct {
	Range   string       `json:"range"`
	Label   string       `json:"label"`
	Bullets List[string] `json:"bullets"`
}

// Notes is the structured output of a summarizer.
type Notes struct {
	Title         string              `json:"title"`
	Topics        List[string]        `json:"topics"`
	Summary       List[string]        `json:"summary"`
	Decisions     List[string]        `json:"decisions"`
	Actions       List[Action]        `json:"actions"`
	Highlights    List[Highlight]     `json:"highlights"`
	KeyDiscussion List[string]        `json:"key_discussion"`
	OpenQuestions List[string]        `json:"open_questions"`
	Timeline      List[TimelineEntry] `json:"timeline"`
}

// List decodes leniently: a value that is not an array becomes an empty list
// and array elements of the wrong shape are skipped. It always encodes as an
// array, never null.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = List[T]{}
		return nil
	}
	out := make(List[T], 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

func (l List[T]) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(l))
}
