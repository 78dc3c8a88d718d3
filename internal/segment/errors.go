package segment

import "fmt"

// MalformedSegmentError reports a segment that failed structural validation.
// Index is the position in the originating track, or -1 when unknown.
type MalformedSegmentError struct {
	Speaker string
	Index   int
	Reason  string
}

func (e *MalformedSegmentError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("malformed segment %d for speaker %q: %s", e.Index, e.Speaker, e.Reason)
	}
	return fmt.Sprintf("malformed segment for speaker %q: %s", e.Speaker, e.Reason)
}
